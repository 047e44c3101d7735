package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
)

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		require.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "outline chapters", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, DefaultMaxTokens, req.MaxTokens)

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "chapter one"},
			},
		})
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	out, err := svc.Generate(context.Background(), "outline chapters", "plan the book", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "chapter one", out)
}

func TestGenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		events := []string{
			`{"type":"message_start"}`,
			`{"type":"content_block_delta","delta":{"type":"text_delta","text":"Hello"}}`,
			`{"type":"content_block_delta","delta":{"type":"text_delta","text":" there"}}`,
			`{"type":"message_stop"}`,
		}
		for _, ev := range events {
			w.Write([]byte("data: " + ev + "\n\n"))
		}
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	ch, err := svc.GenerateStream(context.Background(), "", "greet", driven.GenerateOptions{})
	require.NoError(t, err)

	var sb strings.Builder
	for tok := range ch {
		sb.WriteString(tok)
	}
	assert.Equal(t, "Hello there", sb.String())
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad model"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad model")
}

func TestGenerate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})
	var rateLimited *domain.RateLimitError
	require.ErrorAs(t, err, &rateLimited)
	assert.Equal(t, 12, rateLimited.RetryAfterSeconds)
}
