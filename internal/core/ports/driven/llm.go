package driven

import "context"

// LLMService provides language model generation for labelling, planning
// and chapter synthesis.
//
// Errors from the underlying client (timeout, connection refused, missing
// model) propagate as errors, distinguishable from empty output.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI-compatible chat endpoints
type LLMService interface {
	// Generate produces a text completion from a system and user prompt.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error)

	// GenerateStream produces a completion as a forward-only stream of text
	// fragments. The returned channel is closed when generation completes,
	// fails, or ctx is cancelled. Consumers may stop reading at any point;
	// the producer releases resources when ctx is cancelled.
	GenerateStream(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (<-chan string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
