package mcp

import (
	"context"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	hits   []domain.SearchHit
	answer string
	err    error
}

func (m *mockRAGService) Retrieve(
	_ context.Context,
	_ string,
	_ int,
	_ domain.SearchFilter,
) ([]domain.SearchHit, error) {
	return m.hits, m.err
}

func (m *mockRAGService) BuildContext(hits []domain.SearchHit, _ bool) string {
	out := ""
	for i := range hits {
		if i > 0 {
			out += "\n\n---\n\n"
		}
		out += hits[i].Content
	}
	return out
}

func (m *mockRAGService) Generate(_ context.Context, _, _ string, _ float64) (string, error) {
	return m.answer, m.err
}

func (m *mockRAGService) GenerateStream(
	_ context.Context,
	_, _ string,
	_ float64,
) (<-chan string, error) {
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan string, 1)
	ch <- m.answer
	close(ch)
	return ch, nil
}

// mockThemeService is a mock implementation of driving.ThemeService.
type mockThemeService struct {
	themes []domain.Theme
	err    error
}

func (m *mockThemeService) DiscoverThemes(_ context.Context, _ int) ([]domain.Theme, error) {
	return m.themes, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	documents []domain.Document
	document  *domain.Document
	report    *domain.IngestReport
	chunks    int
	err       error
}

func (m *mockIngestService) Ingest(_ context.Context, _ string) (*domain.Document, int, error) {
	return m.document, m.chunks, m.err
}

func (m *mockIngestService) IngestBatch(_ context.Context, _ []string) *domain.IngestReport {
	return m.report
}

func (m *mockIngestService) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIngestService) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

// mockDocumentStore is a mock implementation of driven.DocumentStore.
type mockDocumentStore struct {
	document  *domain.Document
	documents []domain.Document
	chunk     *domain.Chunk
	chunks    []domain.Chunk
	err       error
}

func (m *mockDocumentStore) SaveDocument(_ context.Context, _ *domain.Document) error {
	return m.err
}

func (m *mockDocumentStore) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentStore) GetChunk(_ context.Context, _ string) (*domain.Chunk, error) {
	return m.chunk, m.err
}

func (m *mockDocumentStore) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentStore) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}
