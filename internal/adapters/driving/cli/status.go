package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/ai"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show collection and provider status",
	Long: `Shows what is ingested and whether the configured embedding and LLM
providers are reachable. Useful before a long synthesis run.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if ingestService == nil || vectorStore == nil {
		return errors.New("services not configured")
	}

	ctx := cmd.Context()

	docs, err := ingestService.ListDocuments(ctx)
	if err != nil {
		return err
	}
	chunks, err := vectorStore.Count(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Collection: %d document(s), %d chunk(s)\n", len(docs), chunks)
	cmd.Println()

	cmd.Printf("Embedding:  %s", embeddingService.ModelName())
	if err := ai.ValidateEmbeddingService(ctx, embeddingService); err != nil {
		cmd.Printf("  UNREACHABLE (%v)\n", err)
	} else {
		cmd.Println("  ok")
	}

	cmd.Printf("LLM:        %s", llmService.ModelName())
	if err := ai.ValidateLLMService(ctx, llmService); err != nil {
		cmd.Printf("  UNREACHABLE (%v)\n", err)
	} else {
		cmd.Println("  ok")
	}

	return nil
}
