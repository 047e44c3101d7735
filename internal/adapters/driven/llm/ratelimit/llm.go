// Package ratelimit decorates an LLM service with a token bucket rate
// limiter. Book synthesis issues many sequential completions; the limiter
// keeps local model servers and paid APIs from being hammered.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultConfig is a conservative default for hosted APIs.
var DefaultConfig = Config{RequestsPerSecond: 1.0, BurstSize: 2}

// LLMService wraps another LLM service and blocks until the token bucket
// permits each request. It also respects backoff periods recorded after
// 429 responses.
type LLMService struct {
	inner   driven.LLMService
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
}

// Wrap decorates an LLM service with rate limiting.
func Wrap(inner driven.LLMService, cfg Config) *LLMService {
	if cfg.RequestsPerSecond <= 0 {
		cfg = DefaultConfig
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}

	return &LLMService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Generate waits for the rate limiter then delegates. A 429 from the
// underlying API starts a backoff period for subsequent requests.
func (s *LLMService) Generate(ctx context.Context, systemPrompt, userPrompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	answer, err := s.inner.Generate(ctx, systemPrompt, userPrompt, opts)
	s.noteRateLimit(err)
	return answer, err
}

// GenerateStream waits for the rate limiter then delegates. Only the
// request is limited, not individual stream fragments.
func (s *LLMService) GenerateStream(ctx context.Context, systemPrompt, userPrompt string, opts driven.GenerateOptions) (<-chan string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	stream, err := s.inner.GenerateStream(ctx, systemPrompt, userPrompt, opts)
	s.noteRateLimit(err)
	return stream, err
}

// ModelName returns the wrapped service's model name.
func (s *LLMService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates without consuming a token; health checks should not
// compete with generation.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (s *LLMService) Close() error {
	return s.inner.Close()
}

// noteRateLimit starts a backoff period when err carries an upstream 429.
func (s *LLMService) noteRateLimit(err error) {
	var rateLimited *domain.RateLimitError
	if !errors.As(err, &rateLimited) {
		return
	}

	retryAfter := rateLimited.RetryAfterSeconds
	if retryAfter <= 0 {
		retryAfter = 60
	}

	s.mu.Lock()
	s.retryAt = time.Now().Add(time.Duration(retryAfter) * time.Second)
	s.mu.Unlock()
}

// wait blocks until a request can be made without exceeding the rate
// limit, respecting any recorded backoff period first.
func (s *LLMService) wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return s.limiter.Wait(ctx)
}
