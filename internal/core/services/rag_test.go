package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/storage/memory"
	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/postprocessors/chunker"
)

func newRAGFixture(t *testing.T) (*RAGService, *memory.VectorStore, *stubEmbedder, *stubLLM) {
	t.Helper()
	vectorStore := memory.NewVectorStore()
	embedder := newStubEmbedder(3)
	llm := &stubLLM{responses: []string{"The sky is blue [1]."}}
	svc := NewRAGService(vectorStore, embedder, llm, &stubPrompts{})
	return svc, vectorStore, embedder, llm
}

func seedChunks(t *testing.T, store *memory.VectorStore) {
	t.Helper()
	require.NoError(t, store.AddChunks(context.Background(), []domain.Chunk{
		{
			ID: "c1", DocumentID: "doc-1", Content: "About the sky.",
			Embedding: []float32{1, 0, 0},
			Metadata:  map[string]any{"page_number": 4},
		},
		{
			ID: "c2", DocumentID: "doc-1", Content: "About the sea.",
			Embedding: []float32{0, 1, 0},
		},
		{
			ID: "c3", DocumentID: "doc-2", Content: "About the land.",
			Embedding: []float32{0, 0, 1},
		},
	}))
}

func TestRAGService_Retrieve_RanksBySimilarity(t *testing.T) {
	svc, store, embedder, _ := newRAGFixture(t)
	seedChunks(t, store)
	embedder.vectors["what is the sky?"] = []float32{1, 0, 0}

	hits, err := svc.Retrieve(context.Background(), "what is the sky?", 2, domain.SearchFilter{})

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c1", hits[0].ChunkID)
}

func TestRAGService_Retrieve_EmptyStore(t *testing.T) {
	svc, _, _, _ := newRAGFixture(t)

	hits, err := svc.Retrieve(context.Background(), "anything", 5, domain.SearchFilter{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRAGService_Retrieve_EmptyQuery(t *testing.T) {
	svc, _, _, _ := newRAGFixture(t)

	_, err := svc.Retrieve(context.Background(), "  ", 5, domain.SearchFilter{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRAGService_Retrieve_DefaultK(t *testing.T) {
	svc, store, _, _ := newRAGFixture(t)
	seedChunks(t, store)

	hits, err := svc.Retrieve(context.Background(), "query", 0, domain.SearchFilter{})
	require.NoError(t, err)
	assert.Len(t, hits, 3) // fewer chunks than the default k
}

func TestRAGService_Retrieve_Filter(t *testing.T) {
	svc, store, _, _ := newRAGFixture(t)
	seedChunks(t, store)

	hits, err := svc.Retrieve(context.Background(), "query", 10, domain.SearchFilter{DocumentID: "doc-2"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c3", hits[0].ChunkID)
}

func TestRAGService_BuildContext_Plain(t *testing.T) {
	svc, _, _, _ := newRAGFixture(t)

	got := svc.BuildContext([]domain.SearchHit{
		{ChunkID: "c1", Content: "First block."},
		{ChunkID: "c2", Content: "Second block."},
	}, false)

	assert.Equal(t, "First block.\n\n---\n\nSecond block.", got)
}

func TestRAGService_BuildContext_WithMetadata(t *testing.T) {
	svc, _, _, _ := newRAGFixture(t)

	got := svc.BuildContext([]domain.SearchHit{
		{
			ChunkID:    "c1",
			DocumentID: "abcdef1234567890",
			Content:    "Tagged block.",
			Metadata:   map[string]any{"page_number": 7},
		},
		{
			ChunkID: "c2",
			Content: "Untagged block.",
		},
	}, true)

	assert.Contains(t, got, "[source: abcdef12, p.7]\nTagged block.")
	assert.Contains(t, got, "[source: ?, p.?]\nUntagged block.")
}

func TestRAGService_BuildContext_ChunkerPageMetadata(t *testing.T) {
	svc, store, embedder, _ := newRAGFixture(t)

	doc := &domain.Document{
		ID:        "doc-pages",
		Content:   "First page text about the sky.\n\nSecond page text about the sea.",
		PageCount: 2,
	}
	chunks, err := chunker.New(chunker.WithChunkSize(40)).Process(context.Background(), doc, nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)

	chunks[0].Embedding = []float32{1, 0, 0}
	for i := 1; i < len(chunks); i++ {
		chunks[i].Embedding = []float32{0, 1, 0}
	}
	require.NoError(t, store.AddChunks(context.Background(), chunks))
	embedder.vectors["the sky"] = []float32{1, 0, 0}

	hits, err := svc.Retrieve(context.Background(), "the sky", 1, domain.SearchFilter{})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	got := svc.BuildContext(hits, true)
	assert.Contains(t, got, "[source: doc-page, p.1]")
	assert.NotContains(t, got, "p.?")
}

func TestRAGService_BuildContext_Empty(t *testing.T) {
	svc, _, _, _ := newRAGFixture(t)
	assert.Empty(t, svc.BuildContext(nil, true))
}

func TestRAGService_Generate(t *testing.T) {
	svc, _, _, llm := newRAGFixture(t)

	answer, err := svc.Generate(context.Background(), "what colour is the sky?", "sky context", 0.3)

	require.NoError(t, err)
	assert.Equal(t, "The sky is blue [1].", answer)

	call := llm.lastCall()
	assert.Equal(t, "system:rag_query", call.system)
	assert.Contains(t, call.user, "context=sky context")
	assert.Contains(t, call.user, "question=what colour is the sky?")
	assert.InDelta(t, 0.3, call.opts.Temperature, 1e-9)
}

func TestRAGService_Generate_LLMErrorPropagates(t *testing.T) {
	vectorStore := memory.NewVectorStore()
	llmErr := errors.New("model not loaded")
	svc := NewRAGService(vectorStore, newStubEmbedder(3), &stubLLM{err: llmErr}, &stubPrompts{})

	_, err := svc.Generate(context.Background(), "q", "ctx", 0)
	assert.ErrorIs(t, err, llmErr)
}

func TestRAGService_Generate_PromptErrorPropagates(t *testing.T) {
	vectorStore := memory.NewVectorStore()
	promptErr := errors.New("missing template")
	svc := NewRAGService(vectorStore, newStubEmbedder(3), &stubLLM{}, &stubPrompts{err: promptErr})

	_, err := svc.Generate(context.Background(), "q", "ctx", 0)
	assert.ErrorIs(t, err, promptErr)
}

func TestRAGService_GenerateStream(t *testing.T) {
	svc, _, _, _ := newRAGFixture(t)

	ch, err := svc.GenerateStream(context.Background(), "q", "ctx", 0.5)
	require.NoError(t, err)

	var sb strings.Builder
	for fragment := range ch {
		sb.WriteString(fragment)
	}
	assert.Equal(t, "The sky is blue [1].", sb.String())
}
