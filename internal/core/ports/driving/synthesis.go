package driving

import (
	"context"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// ProgressFunc reports synthesis progress. It is invoked with current
// running from 0 to total inclusive: once before any chapter is written and
// once after each chapter completes, so determinate progress bars work.
type ProgressFunc func(current, total int, message string)

// BookOptions configures a full book synthesis run.
type BookOptions struct {
	// Title is the book title used for chapter sequencing.
	Title string

	// Objective describes the book's purpose to the sequencing prompt.
	Objective string

	// MaxChapters caps the number of chapters; 0 means all themes.
	MaxChapters int

	// DetailLevel controls chapter length (defaults to DetailStandard).
	DetailLevel domain.DetailLevel

	// Progress receives per-chapter progress callbacks. May be nil.
	Progress ProgressFunc
}

// SynthesisService plans and generates citation-tracked chapters.
type SynthesisService interface {
	// PlanChapters orders themes into a narrative sequence. A single theme
	// is returned unchanged without an LLM call. When the LLM response
	// cannot be parsed into an order, the original order is returned;
	// ordering is a quality enhancement, not a correctness requirement.
	PlanChapters(ctx context.Context, themes []domain.Theme, bookTitle, bookObjective string) ([]domain.Theme, error)

	// SynthesizeChapter retrieves the theme's chunks, builds context and
	// generates one chapter. LLM failure propagates to the caller. A theme
	// with no chunks still yields a well-formed, content-sparse chapter.
	// previousSummary threads cross-chapter coherence; callers wanting it
	// must synthesize sequentially and pass the prior chapter's summary.
	SynthesizeChapter(ctx context.Context, theme domain.Theme, chapterNumber, totalChapters int, detail domain.DetailLevel, previousSummary string) (*domain.Chapter, error)

	// SynthesizeBook plans the order, then synthesizes each theme up to
	// MaxChapters, renumbering chapters 1..K in final order. Cancellation is
	// cooperative: ctx is checked between chapter boundaries.
	SynthesizeBook(ctx context.Context, themes []domain.Theme, opts BookOptions) ([]domain.Chapter, error)
}
