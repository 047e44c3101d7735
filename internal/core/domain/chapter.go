package domain

import "strings"

// DetailLevel controls how much prose a synthesized chapter carries.
type DetailLevel string

const (
	// DetailBrief produces a compact chapter.
	DetailBrief DetailLevel = "brief"

	// DetailStandard is the default chapter length.
	DetailStandard DetailLevel = "standard"

	// DetailComprehensive produces an in-depth chapter.
	DetailComprehensive DetailLevel = "comprehensive"
)

// Chapter is a synthesized narrative chapter. It is immutable once returned
// by the synthesis engine.
type Chapter struct {
	// Number is the 1-based position in the final narrative order,
	// which may differ from theme discovery order.
	Number int

	// Title defaults to the theme label.
	Title string

	// Content is the generated prose.
	Content string

	// ThemeID links back to the theme this chapter was synthesized from.
	ThemeID string

	// SourceChunkIDs are the chunks actually used as citation sources,
	// in retrieval order.
	SourceChunkIDs []string

	// WordCount is the number of words in Content.
	WordCount int

	// Citations are rendered citation strings, one per source document.
	Citations []string

	// Metadata contains generation details (model, detail level, timings).
	Metadata map[string]any
}

// CountWords returns the whitespace-delimited word count of s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
