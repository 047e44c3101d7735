package domain

// SearchHit is the single result record returned by vector store search and
// enumeration APIs. All store implementations return this shape uniformly.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the owning document.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Metadata carries the stored chunk metadata (page number, index, ...).
	Metadata map[string]any

	// Score is the cosine similarity to the query vector (0-1).
	// Zero for enumeration results.
	Score float64
}

// SearchFilter restricts a vector search to matching entries.
// Zero-value fields are ignored.
type SearchFilter struct {
	// DocumentID limits hits to one document.
	DocumentID string

	// ChunkIDs limits hits to an explicit chunk set.
	ChunkIDs []string
}

// Empty reports whether the filter imposes no restriction.
func (f SearchFilter) Empty() bool {
	return f.DocumentID == "" && len(f.ChunkIDs) == 0
}

// Matches reports whether a hit passes the filter.
func (f SearchFilter) Matches(chunkID, documentID string) bool {
	if f.DocumentID != "" && f.DocumentID != documentID {
		return false
	}
	if len(f.ChunkIDs) > 0 {
		for _, id := range f.ChunkIDs {
			if id == chunkID {
				return true
			}
		}
		return false
	}
	return true
}
