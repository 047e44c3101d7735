package driving

import (
	"context"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// RAGService answers queries over the ingested collection using
// retrieval-augmented generation.
type RAGService interface {
	// Retrieve embeds the query and returns the k most similar stored
	// chunks, restricted by filter. An empty store yields an empty slice.
	Retrieve(ctx context.Context, query string, k int, filter domain.SearchFilter) ([]domain.SearchHit, error)

	// BuildContext concatenates hit texts into a prompt context block.
	// When includeMetadata is true each block carries a source tag.
	BuildContext(hits []domain.SearchHit, includeMetadata bool) string

	// Generate renders the RAG prompt with (context, question) and returns
	// the LLM answer. LLM errors propagate unmodified.
	Generate(ctx context.Context, query, contextBlock string, temperature float64) (string, error)

	// GenerateStream is Generate with a streaming response.
	GenerateStream(ctx context.Context, query, contextBlock string, temperature float64) (<-chan string, error)
}
