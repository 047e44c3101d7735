package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
)

var (
	exportTitle       string
	exportObjective   string
	exportThemeCount  int
	exportMaxChapters int
	exportDetail      string
)

var exportCmd = &cobra.Command{
	Use:   "export [output.md]",
	Short: "Synthesize and export a book as Markdown",
	Long: `Runs the full pipeline (theme discovery, chapter planning, chapter
synthesis) and writes the result to the given Markdown file. This is
"synthesize --output" for when the book file is the only thing wanted.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "book title (default: output file name)")
	exportCmd.Flags().StringVar(&exportObjective, "objective", "", "what the book should accomplish")
	exportCmd.Flags().IntVarP(&exportThemeCount, "themes", "n", 5, "maximum number of themes to discover")
	exportCmd.Flags().IntVar(&exportMaxChapters, "max-chapters", 0, "cap the number of chapters (0 = all themes)")
	exportCmd.Flags().StringVar(&exportDetail, "detail", "standard", "chapter detail level: brief, standard or comprehensive")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if themeService == nil || synthesisService == nil {
		return errors.New("synthesis services not configured")
	}

	outPath := args[0]

	detail, err := parseDetailLevel(exportDetail)
	if err != nil {
		return err
	}

	title := exportTitle
	if title == "" {
		base := filepath.Base(outPath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ctx := cmd.Context()

	themes, err := themeService.DiscoverThemes(ctx, exportThemeCount)
	if err != nil {
		if errors.Is(err, domain.ErrNoThemes) {
			return errors.New("nothing ingested yet; ingest documents before exporting")
		}
		return fmt.Errorf("theme discovery failed: %w", err)
	}

	opts := driving.BookOptions{
		Title:       title,
		Objective:   exportObjective,
		MaxChapters: exportMaxChapters,
		DetailLevel: detail,
		Progress: func(current, total int, message string) {
			fmt.Fprintf(cmd.ErrOrStderr(), "  [%d/%d] %s\n", current, total, message)
		},
	}

	chapters, err := synthesisService.SynthesizeBook(ctx, themes, opts)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	book := formatBook(title, chapters)
	if err := os.WriteFile(outPath, []byte(book), 0o644); err != nil {
		return fmt.Errorf("writing book: %w", err)
	}

	cmd.Printf("Exported %d chapter(s) to %s\n", len(chapters), outPath)
	return nil
}
