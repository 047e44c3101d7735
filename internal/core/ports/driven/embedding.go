package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations must produce fixed-dimension L2-normalised vectors. The
// empty string is valid input and yields a valid (if meaningless) vector of
// the configured dimension. EmbedBatch must be numerically consistent with
// repeated Embed calls on the same strings within floating-point tolerance.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI-compatible endpoints (text-embedding-3-small, ...)
//   - The offline feature-hashing embedder
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This must match the vector store configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
