package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookforge-labs/bookforge-cli/internal/adapters/driving/tui"
	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
)

var (
	synthTitle       string
	synthObjective   string
	synthThemeCount  int
	synthMaxChapters int
	synthDetail      string
	synthOutput      string
	synthTUI         bool
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Synthesize a book from the ingested collection",
	Long: `Discovers themes across everything ingested, plans a chapter order
and writes one citation-tracked chapter per theme. The result is printed
as Markdown, or written to a file with --output.`,
	Args: cobra.NoArgs,
	RunE: runSynthesize,
}

func init() {
	synthesizeCmd.Flags().StringVar(&synthTitle, "title", "", "book title")
	synthesizeCmd.Flags().StringVar(&synthObjective, "objective", "", "what the book should accomplish")
	synthesizeCmd.Flags().IntVarP(&synthThemeCount, "themes", "n", 5, "maximum number of themes to discover")
	synthesizeCmd.Flags().IntVar(&synthMaxChapters, "max-chapters", 0, "cap the number of chapters (0 = all themes)")
	synthesizeCmd.Flags().StringVar(&synthDetail, "detail", "standard", "chapter detail level: brief, standard or comprehensive")
	synthesizeCmd.Flags().StringVarP(&synthOutput, "output", "o", "", "write the book to a file instead of stdout")
	synthesizeCmd.Flags().BoolVar(&synthTUI, "tui", false, "show interactive progress while synthesizing")
	rootCmd.AddCommand(synthesizeCmd)
}

func runSynthesize(cmd *cobra.Command, _ []string) error {
	if themeService == nil || synthesisService == nil {
		return errors.New("synthesis services not configured")
	}

	detail, err := parseDetailLevel(synthDetail)
	if err != nil {
		return err
	}

	opts := driving.BookOptions{
		Title:       synthTitle,
		Objective:   synthObjective,
		MaxChapters: synthMaxChapters,
		DetailLevel: detail,
	}

	var chapters []domain.Chapter
	if synthTUI {
		chapters, err = tui.Run(cmd.Context(), themeService, synthesisService, synthThemeCount, opts)
	} else {
		chapters, err = synthesizePlain(cmd, opts)
	}
	if err != nil {
		return err
	}

	book := formatBook(synthTitle, chapters)

	if synthOutput != "" {
		if err := os.WriteFile(synthOutput, []byte(book), 0o644); err != nil {
			return fmt.Errorf("writing book: %w", err)
		}
		cmd.Printf("Wrote %d chapter(s) to %s\n", len(chapters), synthOutput)
		return nil
	}

	cmd.Println(book)
	return nil
}

// synthesizePlain runs theme discovery and book synthesis with line-based
// progress on stderr.
func synthesizePlain(cmd *cobra.Command, opts driving.BookOptions) ([]domain.Chapter, error) {
	ctx := cmd.Context()

	fmt.Fprintln(cmd.ErrOrStderr(), "Discovering themes...")
	themes, err := themeService.DiscoverThemes(ctx, synthThemeCount)
	if err != nil {
		if errors.Is(err, domain.ErrNoThemes) {
			return nil, errors.New("nothing ingested yet; ingest documents before synthesizing")
		}
		return nil, fmt.Errorf("theme discovery failed: %w", err)
	}

	opts.Progress = func(current, total int, message string) {
		fmt.Fprintf(cmd.ErrOrStderr(), "  [%d/%d] %s\n", current, total, message)
	}

	chapters, err := synthesisService.SynthesizeBook(ctx, themes, opts)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	return chapters, nil
}

// parseDetailLevel maps the --detail flag to a domain value.
func parseDetailLevel(s string) (domain.DetailLevel, error) {
	switch s {
	case "brief":
		return domain.DetailBrief, nil
	case "standard", "":
		return domain.DetailStandard, nil
	case "comprehensive":
		return domain.DetailComprehensive, nil
	default:
		return "", fmt.Errorf("unknown detail level %q (want brief, standard or comprehensive)", s)
	}
}
