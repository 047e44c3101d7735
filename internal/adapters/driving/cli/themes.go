package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

var (
	themesCount int
	themesJSON  bool
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Discover themes across the collection",
	Long: `Clusters all stored chunk embeddings and labels each cluster with
the LLM. Every ingested chunk is assigned to exactly one theme.`,
	Args: cobra.NoArgs,
	RunE: runThemes,
}

func init() {
	themesCmd.Flags().IntVarP(&themesCount, "count", "n", 5, "maximum number of themes")
	themesCmd.Flags().BoolVar(&themesJSON, "json", false, "output themes as JSON")
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, _ []string) error {
	if themeService == nil {
		return errors.New("theme service not configured")
	}

	themes, err := themeService.DiscoverThemes(cmd.Context(), themesCount)
	if err != nil {
		if errors.Is(err, domain.ErrNoThemes) {
			cmd.Println("Nothing ingested yet; no themes to discover.")
			return nil
		}
		return fmt.Errorf("theme discovery failed: %w", err)
	}

	if themesJSON {
		data, err := json.MarshalIndent(themes, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal themes: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for i := range themes {
		cmd.Printf("  [%d] %s (%d chunks, %.0f%%)\n",
			i+1, themes[i].Label, themes[i].Size(), themes[i].ImportanceScore*100)
		if themes[i].Description != "" {
			cmd.Printf("      %s\n", themes[i].Description)
		}
		if len(themes[i].Keywords) > 0 {
			cmd.Printf("      keywords: %s\n", strings.Join(themes[i].Keywords, ", "))
		}
		cmd.Println()
	}

	return nil
}
