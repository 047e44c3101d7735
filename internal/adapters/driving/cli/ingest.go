package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|url]...",
	Short: "Ingest documents into the collection",
	Long: `Ingests one or more inputs: local files (PDF, DOCX, Markdown, HTML,
plain text) or http(s) URLs. Each input is normalised, chunked, embedded
and stored. Re-ingesting an input replaces its previous version.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	report := ingestService.IngestBatch(cmd.Context(), args)

	for i := range report.Items {
		item := &report.Items[i]
		if item.Err != nil {
			cmd.Printf("  FAIL %s: %v\n", item.URI, item.Err)
			continue
		}
		cmd.Printf("  OK   %s (%d chunks, id %s)\n", item.URI, item.ChunkCount, item.DocumentID)
	}

	cmd.Println()
	cmd.Printf("Ingested %d of %d inputs", report.Succeeded, report.Total)
	if report.Failed > 0 {
		cmd.Printf(", %d failed", report.Failed)
	}
	cmd.Println()

	if report.Status() == domain.IngestFailed {
		return fmt.Errorf("all %d inputs failed", report.Total)
	}
	return nil
}
