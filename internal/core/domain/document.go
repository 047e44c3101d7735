package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewDocumentID derives a deterministic document identifier from the
// document's location. Re-ingesting the same path or URL yields the same ID,
// which makes ingestion retries idempotent end to end.
func NewDocumentID(uri string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("bookforge:document:"+uri)).String()
}

// Document represents an ingested source document.
// It is the canonical representation after normalisation and is read-only
// to the synthesis pipeline.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// FilePath is the original location (file path or URL).
	FilePath string

	// Title is the human-readable title.
	Title string

	// Author is the document author, when known.
	Author string

	// PageCount is the number of pages, when the format provides one.
	PageCount int

	// FileSize is the size of the raw input in bytes.
	FileSize int64

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// Processed reports whether the document has been chunked and embedded.
	Processed bool

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Chunk represents an embeddable unit within a document.
// Documents are split into overlapping chunks for retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk, including any
	// overlap prefix carried from the previous chunk.
	Content string

	// Index is the 0-based ordinal position within the document.
	// Indices are contiguous and strictly increasing per document.
	Index int

	// StartChar and EndChar describe the half-open span [StartChar, EndChar)
	// of this chunk's fresh content within the original document text.
	// The overlap prefix is not part of the span.
	StartChar int
	EndChar   int

	// Embedding is the vector representation, populated after embedding.
	// Nil until the embedder has run.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// HasEmbedding reports whether the chunk carries a non-empty embedding.
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}
