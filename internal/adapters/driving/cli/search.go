package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

var (
	searchLimit       int
	searchJSON        bool
	searchAnswer      bool
	searchStream      bool
	searchTemperature float64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the ingested collection",
	Long: `Performs semantic search across all ingested chunks.
With --answer, the top results are fed to the LLM to generate a grounded
answer with bracketed citations instead of a result list.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVarP(&searchAnswer, "answer", "a", false, "generate an answer from the results")
	searchCmd.Flags().BoolVar(&searchStream, "stream", false, "stream the answer as it is generated")
	searchCmd.Flags().Float64VarP(&searchTemperature, "temperature", "t", 0.3, "answer generation temperature")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if ragService == nil {
		return errors.New("rag service not configured")
	}

	ctx := cmd.Context()

	hits, err := ragService.Retrieve(ctx, query, searchLimit, domain.SearchFilter{})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchAnswer {
		return outputAnswer(cmd, query, hits)
	}

	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}

	return outputSearchList(cmd, hits)
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.SearchHit) error {
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchList(cmd *cobra.Command, hits []domain.SearchHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, snippet(hits[i].Content, 120), hits[i].Score)
		cmd.Printf("      document: %s\n", hits[i].DocumentID)
		cmd.Println()
	}

	return nil
}

// outputAnswer builds a context block from the hits and generates a
// grounded answer.
func outputAnswer(cmd *cobra.Command, query string, hits []domain.SearchHit) error {
	if len(hits) == 0 {
		cmd.Println("Nothing ingested matches the query; no answer generated.")
		return nil
	}

	contextBlock := ragService.BuildContext(hits, true)

	if searchStream {
		stream, err := ragService.GenerateStream(cmd.Context(), query, contextBlock, searchTemperature)
		if err != nil {
			return fmt.Errorf("answer generation failed: %w", err)
		}
		for fragment := range stream {
			cmd.Print(fragment)
		}
		cmd.Println()
		return nil
	}

	answer, err := ragService.Generate(cmd.Context(), query, contextBlock, searchTemperature)
	if err != nil {
		return fmt.Errorf("answer generation failed: %w", err)
	}

	cmd.Println(answer)
	return nil
}

// snippet shortens s to at most n runes for single-line display.
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
