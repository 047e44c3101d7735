package domain

// Theme represents a thematic cluster of chunks discovered across the
// ingested collection. Themes are created by theme discovery, mutated only
// by relabelling, and consumed by the synthesis engine.
type Theme struct {
	// ID is the unique identifier for the theme.
	ID string

	// Label is the short human-readable name.
	Label string

	// Description expands on the label in a sentence or two.
	Description string

	// ChunkIDs are the member chunks. Each stored chunk belongs to
	// exactly one theme within a discovery run.
	ChunkIDs []string

	// Keywords are the most characteristic terms of the cluster.
	Keywords []string

	// ImportanceScore is the relative weight of the theme, derived from
	// cluster size. Scores are comparable within one discovery run only.
	ImportanceScore float64
}

// Size returns the number of member chunks.
func (t *Theme) Size() int {
	return len(t.ChunkIDs)
}
