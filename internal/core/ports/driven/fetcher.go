package driven

import (
	"context"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// Fetcher acquires raw document bytes from a location.
// Implementations cover local files and HTTP(S) URLs.
type Fetcher interface {
	// Supports reports whether this fetcher handles the given URI.
	Supports(uri string) bool

	// Fetch retrieves the raw document at the URI, detecting its MIME type.
	Fetch(ctx context.Context, uri string) (*domain.RawDocument, error)
}
