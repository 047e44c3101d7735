package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyContent indicates a document has no text content.
	// Chunking an empty document is a hard precondition failure.
	ErrEmptyContent = errors.New("document has no text content")

	// ErrMissingEmbedding indicates a chunk was handed to the vector store
	// without an embedding. Embedding is a precondition for storage and is
	// never computed implicitly inside the store.
	ErrMissingEmbedding = errors.New("chunk has no embedding")

	// ErrDimensionMismatch indicates a vector does not match the store's
	// configured embedding dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrUnsupportedType indicates an unknown document format or scheme.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrNoThemes indicates theme discovery was asked to run on an empty store.
	ErrNoThemes = errors.New("no chunks available for theme discovery")
)

// RateLimitError reports an upstream HTTP 429 response. RetryAfterSeconds
// is zero when the API sent no Retry-After hint.
type RateLimitError struct {
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfterSeconds > 0 {
		return fmt.Sprintf("rate limited by upstream API, retry after %ds", e.RetryAfterSeconds)
	}
	return "rate limited by upstream API"
}
