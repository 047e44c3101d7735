package web

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxBodySize caps downloads at 50 MB to avoid unbounded reads.
	MaxBodySize = 50 << 20

	userAgent = "bookforge/1.0"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher downloads documents over HTTP(S).
type Fetcher struct {
	client *http.Client
}

// New creates a new web fetcher with the default timeout.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// NewWithClient creates a web fetcher with a custom HTTP client.
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Supports reports whether this fetcher handles the given URI.
func (f *Fetcher) Supports(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

// Fetch downloads the document at the URL. The MIME type comes from the
// Content-Type response header, defaulting to text/html.
func (f *Fetcher) Fetch(ctx context.Context, uri string) (*domain.RawDocument, error) {
	if !f.Supports(uri) {
		return nil, fmt.Errorf("unsupported URL scheme %q: %w", uri, domain.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", uri, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", uri, resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", uri, err)
	}

	return &domain.RawDocument{
		URI:      uri,
		MIMEType: mimeTypeFromHeader(resp.Header.Get("Content-Type")),
		Content:  content,
		Metadata: map[string]any{
			"fetched_at": time.Now(),
		},
	}, nil
}

// mimeTypeFromHeader parses a Content-Type header, dropping parameters
// like charset. Web pages without a usable header are treated as HTML.
func mimeTypeFromHeader(header string) string {
	if header == "" {
		return "text/html"
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "text/html"
	}
	return mediaType
}
