package driving

import (
	"context"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// ThemeService discovers thematic clusters across stored chunk embeddings.
type ThemeService interface {
	// DiscoverThemes partitions all stored chunks into at most n themes and
	// labels each via the LLM. Every stored chunk is assigned to exactly one
	// theme. A failed label call degrades that theme to a default label;
	// it does not abort discovery.
	DiscoverThemes(ctx context.Context, n int) ([]domain.Theme, error)
}
