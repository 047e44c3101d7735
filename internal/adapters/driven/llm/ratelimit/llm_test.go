package ratelimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

// stubLLM counts calls and returns canned output.
type stubLLM struct {
	calls atomic.Int64
	err   error
}

func (s *stubLLM) Generate(context.Context, string, string, driven.GenerateOptions) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return "output", nil
}

func (s *stubLLM) GenerateStream(context.Context, string, string, driven.GenerateOptions) (<-chan string, error) {
	s.calls.Add(1)
	ch := make(chan string, 1)
	ch <- "output"
	close(ch)
	return ch, nil
}

func (s *stubLLM) ModelName() string          { return "stub" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

func TestWrap_Delegates(t *testing.T) {
	inner := &stubLLM{}
	svc := Wrap(inner, Config{RequestsPerSecond: 100, BurstSize: 10})

	out, err := svc.Generate(context.Background(), "sys", "user", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "output", out)
	assert.Equal(t, "stub", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestWrap_ThrottlesSustainedRate(t *testing.T) {
	inner := &stubLLM{}
	// 1 immediate token then 20/s refill: 3 calls need ~100ms.
	svc := Wrap(inner, Config{RequestsPerSecond: 20, BurstSize: 1})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	assert.Equal(t, int64(3), inner.calls.Load())
}

func TestWrap_ContextCancelled(t *testing.T) {
	inner := &stubLLM{}
	svc := Wrap(inner, Config{RequestsPerSecond: 0.001, BurstSize: 1})

	// Use the single burst token.
	_, err := svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.Generate(ctx, "", "q", driven.GenerateOptions{})
	assert.Error(t, err)
}

func TestWrap_BacksOffAfterUpstream429(t *testing.T) {
	inner := &stubLLM{err: &domain.RateLimitError{RetryAfterSeconds: 1}}
	svc := Wrap(inner, Config{RequestsPerSecond: 100, BurstSize: 10})

	_, err := svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})
	var rateLimited *domain.RateLimitError
	require.ErrorAs(t, err, &rateLimited)
	require.Equal(t, int64(1), inner.calls.Load())

	// The next request must wait out the backoff instead of reaching the API
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = svc.Generate(ctx, "", "q", driven.GenerateOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestWrap_ZeroConfigUsesDefault(t *testing.T) {
	svc := Wrap(&stubLLM{}, Config{})
	_, err := svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})
	require.NoError(t, err)
}
