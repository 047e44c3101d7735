package driven

import (
	"context"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// VectorStore persists (vector, text, metadata) triples keyed by chunk ID
// and serves similarity search over them.
//
// Entries are addressable by ID for exact upsert/deletion and by document ID
// for bulk deletion. Every entry carries a vector of the store's configured
// dimension; AddChunks rejects chunks without embeddings.
type VectorStore interface {
	// AddChunks stores the given chunks. Re-adding a chunk ID is an
	// idempotent upsert. Returns domain.ErrMissingEmbedding if any chunk
	// has no embedding.
	AddChunks(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to k entries ranked by cosine similarity to the
	// query vector, restricted by filter. Ties break by insertion order.
	// Fewer (or zero) candidates is not an error.
	Search(ctx context.Context, query []float32, k int, filter domain.SearchFilter) ([]domain.SearchHit, error)

	// SearchByText embeds the query text with the given embedder, then
	// delegates to Search.
	SearchByText(ctx context.Context, query string, embedder EmbeddingService, k int, filter domain.SearchFilter) ([]domain.SearchHit, error)

	// GetAllChunks enumerates every stored entry in insertion order.
	GetAllChunks(ctx context.Context) ([]domain.SearchHit, error)

	// GetEmbeddings returns the stored vectors keyed by chunk ID,
	// in insertion order.
	GetEmbeddings(ctx context.Context) ([]domain.Chunk, error)

	// DeleteByDocument removes exactly the entries whose document ID
	// matches, leaving others untouched.
	DeleteByDocument(ctx context.Context, documentID string) error

	// ClearCollection removes every entry in the collection.
	ClearCollection(ctx context.Context) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
