package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

// ==================== LLM stub ====================

// llmCall records one Generate invocation for assertions.
type llmCall struct {
	system string
	user   string
	opts   driven.GenerateOptions
}

// stubLLM is a scripted LLMService. Responses are consumed in order; when
// the script runs out the last response repeats. A non-nil err fails every
// call.
type stubLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     []llmCall
}

func (s *stubLLM) Generate(_ context.Context, system, user string, opts driven.GenerateOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, llmCall{system: system, user: user, opts: opts})
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	response := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return response, nil
}

func (s *stubLLM) GenerateStream(ctx context.Context, system, user string, opts driven.GenerateOptions) (<-chan string, error) {
	response, err := s.Generate(ctx, system, user, opts)
	if err != nil {
		return nil, err
	}
	ch := make(chan string, len(response))
	for _, word := range strings.SplitAfter(response, " ") {
		ch <- word
	}
	close(ch)
	return ch, nil
}

func (s *stubLLM) ModelName() string { return "stub-model" }

func (s *stubLLM) Ping(_ context.Context) error { return nil }

func (s *stubLLM) Close() error { return nil }

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubLLM) lastCall() llmCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

// ==================== Embedder stub ====================

// stubEmbedder returns scripted vectors per input text, defaulting to a
// fixed basis vector. Vectors should be unit length when tests depend on
// cosine ranking.
type stubEmbedder struct {
	dims    int
	vectors map[string][]float32
	err     error
}

func newStubEmbedder(dims int) *stubEmbedder {
	return &stubEmbedder{dims: dims, vectors: make(map[string][]float32)}
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	basis := make([]float32, s.dims)
	basis[0] = 1
	return basis, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dims }

func (s *stubEmbedder) ModelName() string { return "stub-embedder" }

func (s *stubEmbedder) Ping(_ context.Context) error { return nil }

func (s *stubEmbedder) Close() error { return nil }

// ==================== Prompt stub ====================

// stubPrompts renders templates as "name" system prompts and flattens the
// variables into the user prompt, so tests can assert both the template
// chosen and the values threaded through.
type stubPrompts struct {
	err error
}

func (s *stubPrompts) Render(name string, vars map[string]string) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	parts := make([]string, 0, len(vars))
	for _, key := range []string{
		"context", "question", "samples", "theme", "description",
		"chapter_number", "total_chapters", "detail_level",
		"previous_summary", "book_title", "book_objective", "themes",
	} {
		if v, ok := vars[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", key, v))
		}
	}
	return "system:" + name, strings.Join(parts, "\n"), nil
}

func (s *stubPrompts) Reload() {}
