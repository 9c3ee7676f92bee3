package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOllamaProvider verifies the Ollama HTTP client against a mock server.
//
// GOAL: requests go to /api/chat with the sanitised history, buffered replies
// are parsed, and NDJSON streams are forwarded chunk by chunk.
func TestOllamaProvider(t *testing.T) {
	var captured ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		if !captured.Stream {
			_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Hi there"},"done":true}`))
			return
		}
		lines := []string{
			`{"message":{"role":"assistant","content":"Hi"},"done":false}`,
			`{"message":{"role":"assistant","content":" there"},"done":false}`,
			`{"message":{"role":"assistant","content":""},"done":true}`,
		}
		_, _ = w.Write([]byte(strings.Join(lines, "\n") + "\n"))
	}))
	defer server.Close()

	// ARRANGE
	provider := NewOllamaProvider(server.URL, "llama3.2", "You are BizPilot.")
	ctx := context.Background()

	t.Run("Generate", func(t *testing.T) {
		// ACT
		res, err := provider.Generate(ctx, turnRequest("hello"))

		// ASSERT
		require.NoError(t, err)
		assert.Equal(t, "Hi there", res.Text)
		assert.Equal(t, OllamaName, res.Provider)
		assert.False(t, captured.Stream)
		assert.Equal(t, "llama3.2", captured.Model)
		require.Len(t, captured.Messages, 2)
		assert.Equal(t, Message{Role: "system", Content: "You are BizPilot."}, captured.Messages[0])
	})

	t.Run("GenerateStream", func(t *testing.T) {
		// ACT
		var chunks []string
		_, err := provider.GenerateStream(ctx, turnRequest("hello"), collect(&chunks))

		// ASSERT
		require.NoError(t, err)
		assert.True(t, captured.Stream)
		assert.Equal(t, []string{"Hi", " there"}, chunks)
	})
}

func TestOllamaProvider_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()
	provider := NewOllamaProvider(server.URL, "missing", "")

	_, err := provider.Generate(context.Background(), turnRequest("hello"))
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	_, err = provider.GenerateStream(context.Background(), turnRequest("hello"), func(string) error { return nil })
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestOllamaProvider_StreamWithoutDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"partial"},"done":false}` + "\n"))
	}))
	defer server.Close()
	chain := NewChain([]Provider{NewOllamaProvider(server.URL, "llama3.2", "")}, nil, nil)

	var chunks []string
	res, err := chain.GenerateStream(context.Background(), turnRequest("hello"), collect(&chunks))

	// The buffered retry decodes the same single line.
	require.NoError(t, err)
	assert.Equal(t, []string{"partial", "\n\npartial"}, chunks)
	assert.Equal(t, "partial\n\npartial", res.Text)
}
