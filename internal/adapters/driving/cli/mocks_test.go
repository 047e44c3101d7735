package cli

import (
	"context"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
)

// setupTestServices swaps the package-level services for stubs and disables
// the real service wiring for the duration of a test. The returned cleanup
// restores everything.
func setupTestServices() func() {
	prevPre := rootCmd.PersistentPreRunE
	prevPost := rootCmd.PersistentPostRunE
	prevIngest := ingestService
	prevRAG := ragService
	prevThemes := themeService
	prevSynthesis := synthesisService

	rootCmd.PersistentPreRunE = nil
	rootCmd.PersistentPostRunE = nil

	ingestService = &stubIngestService{
		documents: []domain.Document{
			{ID: "doc-1", Title: "Field Notes", Author: "A. Author", FilePath: "/books/notes.pdf"},
		},
		report: &domain.IngestReport{
			Total:     1,
			Succeeded: 1,
			Items: []domain.IngestItem{
				{URI: "/books/notes.pdf", DocumentID: "doc-1", ChunkCount: 4},
			},
		},
	}
	ragService = &stubRAGService{
		hits: []domain.SearchHit{
			{ChunkID: "chunk-1", DocumentID: "doc-1", Content: "Tides follow the moon.", Score: 0.92},
		},
		answer: "The tides follow the moon [1].",
	}
	themeService = &stubThemeService{
		themes: []domain.Theme{
			{ID: "theme-1", Label: "Tides", Description: "Tidal mechanics", ChunkIDs: []string{"chunk-1"}, ImportanceScore: 1.0},
		},
	}
	synthesisService = &stubSynthesisService{
		chapters: []domain.Chapter{
			{Number: 1, Title: "Tides", Content: "The moon pulls the sea.", Citations: []string{"[1] Field Notes, A. Author"}},
		},
	}

	return func() {
		rootCmd.PersistentPreRunE = prevPre
		rootCmd.PersistentPostRunE = prevPost
		ingestService = prevIngest
		ragService = prevRAG
		themeService = prevThemes
		synthesisService = prevSynthesis
	}
}

type stubIngestService struct {
	documents []domain.Document
	document  *domain.Document
	report    *domain.IngestReport
	chunks    int
	err       error
}

func (s *stubIngestService) Ingest(_ context.Context, _ string) (*domain.Document, int, error) {
	return s.document, s.chunks, s.err
}

func (s *stubIngestService) IngestBatch(_ context.Context, _ []string) *domain.IngestReport {
	return s.report
}

func (s *stubIngestService) DeleteDocument(_ context.Context, _ string) error {
	return s.err
}

func (s *stubIngestService) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return s.documents, s.err
}

type stubRAGService struct {
	hits   []domain.SearchHit
	answer string
	err    error
}

func (s *stubRAGService) Retrieve(
	_ context.Context,
	_ string,
	_ int,
	_ domain.SearchFilter,
) ([]domain.SearchHit, error) {
	return s.hits, s.err
}

func (s *stubRAGService) BuildContext(hits []domain.SearchHit, _ bool) string {
	out := ""
	for i := range hits {
		if i > 0 {
			out += "\n\n---\n\n"
		}
		out += hits[i].Content
	}
	return out
}

func (s *stubRAGService) Generate(_ context.Context, _, _ string, _ float64) (string, error) {
	return s.answer, s.err
}

func (s *stubRAGService) GenerateStream(
	_ context.Context,
	_, _ string,
	_ float64,
) (<-chan string, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan string, 1)
	ch <- s.answer
	close(ch)
	return ch, nil
}

type stubThemeService struct {
	themes []domain.Theme
	err    error
}

func (s *stubThemeService) DiscoverThemes(_ context.Context, _ int) ([]domain.Theme, error) {
	return s.themes, s.err
}

type stubSynthesisService struct {
	chapters []domain.Chapter
	err      error
}

func (s *stubSynthesisService) PlanChapters(
	_ context.Context,
	themes []domain.Theme,
	_, _ string,
) ([]domain.Theme, error) {
	return themes, s.err
}

func (s *stubSynthesisService) SynthesizeChapter(
	_ context.Context,
	theme domain.Theme,
	chapterNumber, _ int,
	_ domain.DetailLevel,
	_ string,
) (*domain.Chapter, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Chapter{Number: chapterNumber, Title: theme.Label}, nil
}

func (s *stubSynthesisService) SynthesizeBook(
	_ context.Context,
	_ []domain.Theme,
	opts driving.BookOptions,
) ([]domain.Chapter, error) {
	if opts.Progress != nil {
		opts.Progress(0, len(s.chapters), "Planned chapters")
		for i := range s.chapters {
			opts.Progress(i+1, len(s.chapters), "Chapter done")
		}
	}
	return s.chapters, s.err
}
