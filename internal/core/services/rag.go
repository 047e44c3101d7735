package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
	"github.com/bookforge-labs/bookforge-cli/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// DefaultRetrievalK is the number of chunks retrieved when the caller
// passes k <= 0.
const DefaultRetrievalK = 5

// contextDelimiter separates context blocks in the assembled prompt.
const contextDelimiter = "\n\n---\n\n"

// RAGService answers queries over the ingested collection by retrieving
// similar chunks and prompting the LLM with them.
type RAGService struct {
	vectorStore driven.VectorStore
	embedder    driven.EmbeddingService
	llm         driven.LLMService
	prompts     driven.PromptStore
}

// NewRAGService creates a new RAG service.
func NewRAGService(
	vectorStore driven.VectorStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
) *RAGService {
	return &RAGService{
		vectorStore: vectorStore,
		embedder:    embedder,
		llm:         llm,
		prompts:     prompts,
	}
}

// Retrieve embeds the query and returns the k most similar stored chunks.
// An empty store yields an empty slice, not an error.
func (s *RAGService) Retrieve(ctx context.Context, query string, k int, filter domain.SearchFilter) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = DefaultRetrievalK
	}

	logger.Debug("Retrieve: query=%q k=%d", query, k)
	return s.vectorStore.SearchByText(ctx, query, s.embedder, k, filter)
}

// BuildContext concatenates hit texts into a prompt context block.
// When includeMetadata is true each block is prefixed with a source tag of
// the form "[source: <doc-id-fragment>, p.<page>]"; unknown fields render
// as "?".
func (s *RAGService) BuildContext(hits []domain.SearchHit, includeMetadata bool) string {
	blocks := make([]string, 0, len(hits))
	for _, hit := range hits {
		if includeMetadata {
			blocks = append(blocks, sourceTag(hit)+"\n"+hit.Content)
		} else {
			blocks = append(blocks, hit.Content)
		}
	}
	return strings.Join(blocks, contextDelimiter)
}

// Generate renders the RAG prompt with the context and question and returns
// the LLM answer. LLM errors propagate unmodified.
func (s *RAGService) Generate(ctx context.Context, query, contextBlock string, temperature float64) (string, error) {
	system, user, err := s.prompts.Render(driven.PromptRAGQuery, map[string]string{
		"context":  contextBlock,
		"question": query,
	})
	if err != nil {
		return "", err
	}

	return s.llm.Generate(ctx, system, user, driven.GenerateOptions{
		Temperature: temperature,
	})
}

// GenerateStream is Generate with a streaming response.
func (s *RAGService) GenerateStream(ctx context.Context, query, contextBlock string, temperature float64) (<-chan string, error) {
	system, user, err := s.prompts.Render(driven.PromptRAGQuery, map[string]string{
		"context":  contextBlock,
		"question": query,
	})
	if err != nil {
		return nil, err
	}

	return s.llm.GenerateStream(ctx, system, user, driven.GenerateOptions{
		Temperature: temperature,
	})
}

// sourceTag renders the provenance prefix for one hit.
func sourceTag(hit domain.SearchHit) string {
	docFragment := "?"
	if hit.DocumentID != "" {
		docFragment = hit.DocumentID
		if len(docFragment) > 8 {
			docFragment = docFragment[:8]
		}
	}

	page := "?"
	if hit.Metadata != nil {
		if p, ok := hit.Metadata["page_number"]; ok {
			page = fmt.Sprintf("%v", p)
		}
	}

	return fmt.Sprintf("[source: %s, p.%s]", docFragment, page)
}
