package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/storage/memory"
	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
)

// seedTwoClusters stores two well-separated groups of unit vectors:
// three "sky" chunks near (1,0,0) and two "sea" chunks near (0,1,0).
func seedTwoClusters(t *testing.T, store *memory.VectorStore) {
	t.Helper()
	require.NoError(t, store.AddChunks(context.Background(), []domain.Chunk{
		{ID: "sky-1", DocumentID: "doc-1", Content: "Clouds drift across the sky.", Embedding: []float32{1, 0, 0}},
		{ID: "sky-2", DocumentID: "doc-1", Content: "The sky turns red at sunset.", Embedding: []float32{0.99, 0.141, 0}},
		{ID: "sky-3", DocumentID: "doc-2", Content: "Stars fill the night sky.", Embedding: []float32{0.99, 0, 0.141}},
		{ID: "sea-1", DocumentID: "doc-2", Content: "Waves crash on the shore.", Embedding: []float32{0, 1, 0}},
		{ID: "sea-2", DocumentID: "doc-3", Content: "The sea is deep and cold.", Embedding: []float32{0.141, 0.99, 0}},
	}))
}

func TestThemeService_DiscoverThemes_PartitionsAllChunks(t *testing.T) {
	store := memory.NewVectorStore()
	seedTwoClusters(t, store)
	llm := &stubLLM{responses: []string{
		"Theme: The Sky\nDescription: Passages about the sky.",
		"Theme: The Sea\nDescription: Passages about the sea.",
	}}
	svc := NewThemeService(store, llm, &stubPrompts{})

	themes, err := svc.DiscoverThemes(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, themes, 2)

	// Largest cluster first
	assert.Equal(t, "The Sky", themes[0].Label)
	assert.Equal(t, "Passages about the sky.", themes[0].Description)
	assert.ElementsMatch(t, []string{"sky-1", "sky-2", "sky-3"}, themes[0].ChunkIDs)
	assert.Equal(t, "The Sea", themes[1].Label)
	assert.ElementsMatch(t, []string{"sea-1", "sea-2"}, themes[1].ChunkIDs)

	// Every chunk in exactly one theme
	total := 0
	seen := make(map[string]int)
	for _, theme := range themes {
		total += theme.Size()
		for _, id := range theme.ChunkIDs {
			seen[id]++
		}
	}
	assert.Equal(t, 5, total)
	for id, count := range seen {
		assert.Equal(t, 1, count, "chunk %s assigned %d times", id, count)
	}

	// Importance reflects cluster share
	assert.InDelta(t, 0.6, themes[0].ImportanceScore, 1e-9)
	assert.InDelta(t, 0.4, themes[1].ImportanceScore, 1e-9)
}

func TestThemeService_DiscoverThemes_Deterministic(t *testing.T) {
	store := memory.NewVectorStore()
	seedTwoClusters(t, store)
	svc := NewThemeService(store, &stubLLM{responses: []string{"Theme: X\nDescription: Y"}}, &stubPrompts{})

	first, err := svc.DiscoverThemes(context.Background(), 2)
	require.NoError(t, err)
	second, err := svc.DiscoverThemes(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].ChunkIDs, second[i].ChunkIDs)
	}
}

func TestThemeService_DiscoverThemes_LabelFailureDegrades(t *testing.T) {
	store := memory.NewVectorStore()
	seedTwoClusters(t, store)
	llm := &stubLLM{err: errors.New("model offline")}
	svc := NewThemeService(store, llm, &stubPrompts{})

	themes, err := svc.DiscoverThemes(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "Theme 1", themes[0].Label)
	assert.Equal(t, "Theme 2", themes[1].Label)
	assert.Empty(t, themes[0].Description)

	// Clustering still complete despite labelling failure
	assert.Equal(t, 5, themes[0].Size()+themes[1].Size())
}

func TestThemeService_DiscoverThemes_UnparsableLabelDegrades(t *testing.T) {
	store := memory.NewVectorStore()
	seedTwoClusters(t, store)
	llm := &stubLLM{responses: []string{"I cannot help with that."}}
	svc := NewThemeService(store, llm, &stubPrompts{})

	themes, err := svc.DiscoverThemes(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, "Theme 1", themes[0].Label)
}

func TestThemeService_DiscoverThemes_EmptyStore(t *testing.T) {
	svc := NewThemeService(memory.NewVectorStore(), &stubLLM{}, &stubPrompts{})

	_, err := svc.DiscoverThemes(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrNoThemes)
}

func TestThemeService_DiscoverThemes_InvalidCount(t *testing.T) {
	svc := NewThemeService(memory.NewVectorStore(), &stubLLM{}, &stubPrompts{})

	_, err := svc.DiscoverThemes(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestThemeService_DiscoverThemes_FewerChunksThanThemes(t *testing.T) {
	store := memory.NewVectorStore()
	require.NoError(t, store.AddChunks(context.Background(), []domain.Chunk{
		{ID: "only", DocumentID: "doc-1", Content: "Lone chunk.", Embedding: []float32{1, 0, 0}},
	}))
	svc := NewThemeService(store, &stubLLM{responses: []string{"Theme: Solo\nDescription: One."}}, &stubPrompts{})

	themes, err := svc.DiscoverThemes(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Equal(t, []string{"only"}, themes[0].ChunkIDs)
	assert.InDelta(t, 1.0, themes[0].ImportanceScore, 1e-9)
}

func TestThemeService_DiscoverThemes_Keywords(t *testing.T) {
	store := memory.NewVectorStore()
	require.NoError(t, store.AddChunks(context.Background(), []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "gradient descent optimises gradient steps", Embedding: []float32{1, 0, 0}},
		{ID: "c2", DocumentID: "doc-1", Content: "gradient methods converge", Embedding: []float32{0.99, 0.141, 0}},
	}))
	svc := NewThemeService(store, &stubLLM{responses: []string{"Theme: Optimisation\nDescription: d"}}, &stubPrompts{})

	themes, err := svc.DiscoverThemes(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Contains(t, themes[0].Keywords, "gradient")
}

func TestParseThemeLabel(t *testing.T) {
	tests := []struct {
		name            string
		response        string
		wantLabel       string
		wantDescription string
	}{
		{
			name:            "well formed",
			response:        "Theme: Machine Learning\nDescription: Core ML ideas.",
			wantLabel:       "Machine Learning",
			wantDescription: "Core ML ideas.",
		},
		{
			name:            "case insensitive prefixes",
			response:        "theme: lowercase label\ndescription: lowercase description",
			wantLabel:       "lowercase label",
			wantDescription: "lowercase description",
		},
		{
			name:      "missing description",
			response:  "Theme: Bare",
			wantLabel: "Bare",
		},
		{
			name:     "no theme line",
			response: "Some unrelated chatter.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, description := parseThemeLabel(tt.response)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantDescription, description)
		})
	}
}

func TestCluster_EveryChunkAssigned(t *testing.T) {
	chunks := make([]domain.Chunk, 9)
	for i := range chunks {
		v := make([]float32, 3)
		v[i%3] = 1
		chunks[i] = domain.Chunk{ID: fmt.Sprintf("c%d", i), Embedding: v}
	}

	assignments, centroids := cluster(chunks, 3)

	require.Len(t, assignments, 9)
	require.Len(t, centroids, 3)
	for _, c := range assignments {
		assert.GreaterOrEqual(t, c, 0)
		assert.Less(t, c, 3)
	}

	// Orthogonal basis vectors must land in three distinct clusters
	distinct := map[int]bool{}
	for _, c := range assignments {
		distinct[c] = true
	}
	assert.Len(t, distinct, 3)

	// Identical vectors share a cluster
	assert.Equal(t, assignments[0], assignments[3])
	assert.Equal(t, assignments[1], assignments[4])
}
