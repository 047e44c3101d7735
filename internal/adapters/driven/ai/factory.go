// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	hashembed "github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/llm/openai"
	"github.com/bookforge-labs/bookforge-cli/internal/adapters/driven/llm/ratelimit"
	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// EmbeddingConfig selects and configures an embedding provider.
type EmbeddingConfig struct {
	// Provider is one of "ollama", "openai" or "hash".
	Provider string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// Model is the embedding model name.
	Model string

	// APIKey authenticates hosted providers.
	APIKey string

	// Dimensions is the embedding vector size (0 = provider default).
	Dimensions int
}

// LLMConfig selects and configures an LLM provider.
type LLMConfig struct {
	// Provider is one of "ollama", "openai" or "anthropic".
	Provider string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// Model is the completion model name.
	Model string

	// APIKey authenticates hosted providers.
	APIKey string

	// RequestsPerSecond enables the rate-limiting decorator when positive.
	RequestsPerSecond float64

	// BurstSize is the rate limiter burst (only used with RequestsPerSecond).
	BurstSize int
}

// CreateEmbeddingService creates an embedding service from config.
// An empty provider defaults to Ollama.
func CreateEmbeddingService(cfg EmbeddingConfig) (driven.EmbeddingService, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "ollama"
	}

	switch provider {
	case "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	case "openai":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case "hash":
		return hashembed.NewEmbeddingService(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// CreateLLMService creates an LLM service from config, wrapped in the rate
// limiter when RequestsPerSecond is set. An empty provider defaults to
// Ollama.
func CreateLLMService(cfg LLMConfig) (driven.LLMService, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "ollama"
	}

	var (
		svc driven.LLMService
		err error
	)

	switch provider {
	case "ollama":
		svc = ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "openai":
		svc, err = openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "anthropic":
		svc, err = anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerSecond > 0 {
		svc = ratelimit.Wrap(svc, ratelimit.Config{
			RequestsPerSecond: cfg.RequestsPerSecond,
			BurstSize:         cfg.BurstSize,
		})
	}

	return svc, nil
}

// ValidateEmbeddingService pings the embedding provider with a bounded
// timeout. A failure wraps domain.ErrEmbeddingUnavailable.
func ValidateEmbeddingService(ctx context.Context, svc driven.EmbeddingService) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable (%v)",
			domain.ErrEmbeddingUnavailable, svc.ModelName(), err)
	}
	return nil
}

// ValidateLLMService pings the LLM provider with a bounded timeout.
// A failure wraps domain.ErrLLMUnavailable.
func ValidateLLMService(ctx context.Context, svc driven.LLMService) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable (%v)",
			domain.ErrLLMUnavailable, svc.ModelName(), err)
	}
	return nil
}
