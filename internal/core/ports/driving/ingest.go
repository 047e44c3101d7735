package driving

import (
	"context"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// IngestService turns raw inputs into stored, embedded chunks.
type IngestService interface {
	// Ingest fetches, normalises, chunks, embeds and stores a single input
	// (file path or URL). Re-ingesting the same input replaces the previous
	// document; chunk IDs are deterministic so retries are idempotent.
	Ingest(ctx context.Context, uri string) (*domain.Document, int, error)

	// IngestBatch ingests many inputs, returning a per-item breakdown
	// instead of aborting on the first failure.
	IngestBatch(ctx context.Context, uris []string) *domain.IngestReport

	// DeleteDocument removes a document and its vector entries.
	DeleteDocument(ctx context.Context, documentID string) error

	// ListDocuments returns all ingested documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
