package domain

// IngestStatus summarises the outcome of a batch ingestion.
type IngestStatus string

const (
	// IngestCompleted means every item succeeded.
	IngestCompleted IngestStatus = "completed"

	// IngestPartial means some items succeeded and some failed.
	IngestPartial IngestStatus = "completed_with_errors"

	// IngestFailed means every item failed.
	IngestFailed IngestStatus = "failed"
)

// IngestItem is the per-input outcome of a batch ingestion.
type IngestItem struct {
	// URI is the input (file path or URL).
	URI string

	// DocumentID is set when ingestion succeeded.
	DocumentID string

	// ChunkCount is the number of chunks stored for the document.
	ChunkCount int

	// Err is the failure reason, nil on success.
	Err error
}

// IngestReport is the aggregate outcome of a batch ingestion.
// Batch operations complete with a per-item breakdown rather than aborting
// on the first failure.
type IngestReport struct {
	Total     int
	Succeeded int
	Failed    int
	Items     []IngestItem
}

// Status derives the overall batch status from the counters.
func (r *IngestReport) Status() IngestStatus {
	switch {
	case r.Total == 0 || r.Failed == 0:
		return IngestCompleted
	case r.Succeeded == 0:
		return IngestFailed
	default:
		return IngestPartial
	}
}

// Add records a single item outcome and updates the counters.
func (r *IngestReport) Add(item IngestItem) {
	r.Total++
	if item.Err != nil {
		r.Failed++
	} else {
		r.Succeeded++
	}
	r.Items = append(r.Items, item)
}
