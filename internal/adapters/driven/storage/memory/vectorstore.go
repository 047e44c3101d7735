package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Entries keep insertion order so equal-score search results rank
// deterministically.
type VectorStore struct {
	mu     sync.RWMutex
	order  []string
	chunks map[string]domain.Chunk
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		chunks: make(map[string]domain.Chunk),
	}
}

// AddChunks stores the given chunks. Re-adding a chunk ID replaces the
// stored entry without changing its insertion position.
func (s *VectorStore) AddChunks(_ context.Context, chunks []domain.Chunk) error {
	for _, chunk := range chunks {
		if !chunk.HasEmbedding() {
			return fmt.Errorf("chunk %s: %w", chunk.ID, domain.ErrMissingEmbedding)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		if _, exists := s.chunks[chunk.ID]; !exists {
			s.order = append(s.order, chunk.ID)
		}
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// Search returns up to k entries ranked by cosine similarity.
func (s *VectorStore) Search(_ context.Context, query []float32, k int, filter domain.SearchFilter) ([]domain.SearchHit, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []domain.SearchHit //nolint:prealloc // size unknown from query
	for _, id := range s.order {
		chunk := s.chunks[id]
		if !filter.Matches(chunk.ID, chunk.DocumentID) {
			continue
		}
		if len(chunk.Embedding) != len(query) {
			return nil, fmt.Errorf("chunk %s has dimension %d, query has %d: %w",
				chunk.ID, len(chunk.Embedding), len(query), domain.ErrDimensionMismatch)
		}
		hits = append(hits, domain.SearchHit{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			Content:    chunk.Content,
			Metadata:   chunk.Metadata,
			Score:      cosineSimilarity(query, chunk.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// SearchByText embeds the query text and delegates to Search.
func (s *VectorStore) SearchByText(ctx context.Context, query string, embedder driven.EmbeddingService, k int, filter domain.SearchFilter) ([]domain.SearchHit, error) {
	vector, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return s.Search(ctx, vector, k, filter)
}

// GetAllChunks enumerates every stored entry in insertion order.
func (s *VectorStore) GetAllChunks(_ context.Context) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]domain.SearchHit, 0, len(s.order))
	for _, id := range s.order {
		chunk := s.chunks[id]
		hits = append(hits, domain.SearchHit{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			Content:    chunk.Content,
			Metadata:   chunk.Metadata,
		})
	}
	return hits, nil
}

// GetEmbeddings returns the stored chunks with vectors in insertion order.
func (s *VectorStore) GetEmbeddings(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make([]domain.Chunk, 0, len(s.order))
	for _, id := range s.order {
		chunks = append(chunks, s.chunks[id])
	}
	return chunks, nil
}

// DeleteByDocument removes entries whose document ID matches.
func (s *VectorStore) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	for _, id := range s.order {
		if s.chunks[id].DocumentID == documentID {
			delete(s.chunks, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return nil
}

// ClearCollection removes every entry.
func (s *VectorStore) ClearCollection(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.chunks = make(map[string]domain.Chunk)
	return nil
}

// Count returns the number of stored entries.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// Close releases resources. No-op for the in-memory store.
func (s *VectorStore) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
