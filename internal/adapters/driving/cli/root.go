// Package cli implements the bookforge command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/ai"
	"github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/config/file"
	"github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/storage/sqlite"
	"github.com/bookforge-labs/bookforge-cli/internal/connectors/filesystem"
	"github.com/bookforge-labs/bookforge-cli/internal/connectors/web"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
	"github.com/bookforge-labs/bookforge-cli/internal/core/services"
	"github.com/bookforge-labs/bookforge-cli/internal/logger"
	"github.com/bookforge-labs/bookforge-cli/internal/normalisers"
	"github.com/bookforge-labs/bookforge-cli/internal/normalisers/docx"
	htmlnorm "github.com/bookforge-labs/bookforge-cli/internal/normalisers/html"
	mdnorm "github.com/bookforge-labs/bookforge-cli/internal/normalisers/markdown"
	pdfnorm "github.com/bookforge-labs/bookforge-cli/internal/normalisers/pdf"
	"github.com/bookforge-labs/bookforge-cli/internal/normalisers/plaintext"
	"github.com/bookforge-labs/bookforge-cli/internal/postprocessors"
)

const version = "0.1.0"

// Global flags.
var (
	verbose bool
	dataDir string
)

// Services wired by initServices and shared by all commands.
var (
	configStore      *file.ConfigStore
	promptStore      *file.PromptStore
	store            *sqlite.Store
	docStore         driven.DocumentStore
	vectorStore      driven.VectorStore
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	ingestService    driving.IngestService
	ragService       driving.RAGService
	themeService     driving.ThemeService
	synthesisService driving.SynthesisService
)

var rootCmd = &cobra.Command{
	Use:   "bookforge",
	Short: "Turn a pile of documents into a book",
	Long: `BookForge ingests documents (PDF, DOCX, Markdown, HTML, plain text,
URLs), discovers the themes running through them, and synthesizes a
citation-tracked narrative book with a local or hosted LLM.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.bookforge)")
}

// Execute runs the root command. Interrupt signals cancel the command
// context so long-running synthesis stops at the next chapter boundary.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// initServices builds the full service graph before any command runs.
// Provider selection comes from config; flags only control logging and
// data location.
func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	dir, err := resolveDataDir()
	if err != nil {
		return err
	}

	logger.Section("init")
	logger.Debug("data directory: %s", dir)

	configStore, err = file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	promptStore, err = file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	store, err = sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	docStore = store.DocumentStore()
	vectorStore = store.VectorStore()

	embeddingService, err = buildEmbedder()
	if err != nil {
		return err
	}

	llmService, err = buildLLM()
	if err != nil {
		return err
	}

	registry := normalisers.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(mdnorm.New())
	registry.Register(htmlnorm.New())
	registry.Register(docx.New())
	registry.Register(pdfnorm.New())

	pipeline, err := buildPipeline()
	if err != nil {
		return err
	}

	fetchers := []driven.Fetcher{
		web.New(),
		filesystem.New(),
	}

	ingestService = services.NewIngestService(fetchers, registry, pipeline, embeddingService, docStore, vectorStore)
	ragService = services.NewRAGService(vectorStore, embeddingService, llmService, promptStore)
	themeService = services.NewThemeService(vectorStore, llmService, promptStore)
	synthesisService = services.NewSynthesisService(ragService, docStore, llmService, promptStore)

	return nil
}

// resolveDataDir returns the data directory, creating it if needed.
func resolveDataDir() (string, error) {
	dir := dataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".bookforge")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	return dir, nil
}

// buildEmbedder constructs the embedding service named by config.
// Defaults to Ollama; "hash" needs no model server and suits offline use.
func buildEmbedder() (driven.EmbeddingService, error) {
	cfg := ai.EmbeddingConfig{
		Provider:   configStore.GetString("embedding.provider"),
		BaseURL:    configStore.GetString("embedding.base_url"),
		Model:      configStore.GetString("embedding.model"),
		APIKey:     apiKey("embedding", "OPENAI_API_KEY"),
		Dimensions: configStore.GetInt("embedding.dimensions"),
	}

	logger.Debug("embedding provider: %s", cfg.Provider)

	svc, err := ai.CreateEmbeddingService(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring embedder: %w", err)
	}
	return svc, nil
}

// buildLLM constructs the LLM service named by config, wrapped in the rate
// limiter when llm.requests_per_second is set.
func buildLLM() (driven.LLMService, error) {
	provider := configStore.GetString("llm.provider")

	envVar := "OPENAI_API_KEY"
	if provider == "anthropic" {
		envVar = "ANTHROPIC_API_KEY"
	}

	cfg := ai.LLMConfig{
		Provider:          provider,
		BaseURL:           configStore.GetString("llm.base_url"),
		Model:             configStore.GetString("llm.model"),
		APIKey:            apiKey("llm", envVar),
		RequestsPerSecond: configStore.GetFloat("llm.requests_per_second"),
		BurstSize:         configStore.GetInt("llm.burst_size"),
	}

	logger.Debug("llm provider: %s", cfg.Provider)

	svc, err := ai.CreateLLMService(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring llm: %w", err)
	}
	return svc, nil
}

// buildPipeline constructs the post-processing pipeline from config via
// the processor registry.
func buildPipeline() (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	cfg := map[string]any{}
	if size := configStore.GetInt("chunker.chunk_size"); size > 0 {
		cfg["chunk_size"] = size
	}
	if overlap := configStore.GetInt("chunker.overlap"); overlap > 0 {
		cfg["overlap"] = overlap
	}

	proc, err := registry.Build("chunker", cfg)
	if err != nil {
		return nil, fmt.Errorf("building chunker: %w", err)
	}

	return postprocessors.NewPipeline(proc), nil
}

// apiKey reads an API key from config, falling back to the environment.
func apiKey(section, envVar string) string {
	if key := configStore.GetString(section + ".api_key"); key != "" {
		return key
	}
	return os.Getenv(envVar)
}
