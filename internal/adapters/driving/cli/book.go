package cli

import (
	"fmt"
	"strings"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// formatBook renders synthesized chapters as a Markdown book: title,
// table of contents, one section per chapter and a citation footnote
// list after each chapter that has sources.
func formatBook(title string, chapters []domain.Chapter) string {
	var b strings.Builder

	if title == "" {
		title = "Untitled"
	}

	fmt.Fprintf(&b, "# %s\n\n", title)

	if len(chapters) == 0 {
		b.WriteString("_No chapters were synthesized._\n")
		return b.String()
	}

	b.WriteString("## Contents\n\n")
	for i := range chapters {
		fmt.Fprintf(&b, "%d. %s\n", chapters[i].Number, chapters[i].Title)
	}
	b.WriteString("\n")

	for i := range chapters {
		ch := &chapters[i]

		fmt.Fprintf(&b, "## Chapter %d: %s\n\n", ch.Number, ch.Title)
		b.WriteString(strings.TrimSpace(ch.Content))
		b.WriteString("\n")

		if len(ch.Citations) > 0 {
			b.WriteString("\n### Sources\n\n")
			for _, citation := range ch.Citations {
				fmt.Fprintf(&b, "- %s\n", citation)
			}
		}

		if i < len(chapters)-1 {
			b.WriteString("\n---\n\n")
		}
	}

	return b.String()
}
