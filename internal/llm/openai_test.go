package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

// chatCompletionsServer stands in for an OpenAI-compatible API. It records the
// last request body and headers.
type chatCompletionsServer struct {
	*httptest.Server
	lastBody   map[string]interface{}
	lastHeader http.Header
}

func newChatCompletionsServer(t *testing.T, handle func(w http.ResponseWriter, stream bool)) *chatCompletionsServer {
	s := &chatCompletionsServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		s.lastHeader = r.Header.Clone()
		s.lastBody = map[string]interface{}{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&s.lastBody))
		stream, _ := s.lastBody["stream"].(bool)
		handle(w, stream)
	}))
	t.Cleanup(s.Close)
	return s
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"id":"c1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
}

func writeStream(w http.ResponseWriter, deltas ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, d := range deltas {
		_, _ = fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", d)
	}
	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
}

func TestOpenAICompatProvider_Generate(t *testing.T) {
	server := newChatCompletionsServer(t, func(w http.ResponseWriter, stream bool) {
		writeCompletion(w, "Here is your plan.")
	})
	provider := NewOpenAICompatProvider(OpenAICompatConfig{
		Name:         "openrouter",
		APIKey:       "or-key",
		BaseURL:      server.URL,
		Model:        "mistralai/mistral-7b-instruct:free",
		Temperature:  0.4,
		Headers:      map[string]string{"X-Title": "BizPilot"},
		SystemPrompt: "You are BizPilot.",
	})

	history := []model.Entry{
		entry(model.RoleTool, "Document: notes.txt\n\nQ3 numbers"),
		entry(model.RoleUser, "Summarize"),
	}
	history[0].ToolName = "file_upload"

	res, err := provider.Generate(context.Background(), &Request{Messages: history})

	require.NoError(t, err)
	assert.Equal(t, "Here is your plan.", res.Text)
	assert.Equal(t, "openrouter", res.Provider)
	assert.Equal(t, "Bearer or-key", server.lastHeader.Get("Authorization"))
	assert.Equal(t, "BizPilot", server.lastHeader.Get("X-Title"))
	assert.Equal(t, "mistralai/mistral-7b-instruct:free", server.lastBody["model"])

	messages := server.lastBody["messages"].([]interface{})
	require.Len(t, messages, 3)
	assert.Equal(t, map[string]interface{}{"role": "system", "content": "You are BizPilot."}, messages[0])
	assert.Equal(t, map[string]interface{}{"role": "system", "content": "Tool context: file_upload\nDocument: notes.txt\n\nQ3 numbers"}, messages[1])
	assert.Equal(t, map[string]interface{}{"role": "user", "content": "Summarize"}, messages[2])
}

func TestOpenAICompatProvider_GenerateStream(t *testing.T) {
	server := newChatCompletionsServer(t, func(w http.ResponseWriter, stream bool) {
		if !stream {
			writeCompletion(w, "Hello there, friend")
			return
		}
		writeStream(w, "Hello", " there,", " friend")
	})
	provider := NewOpenAICompatProvider(OpenAICompatConfig{Name: "groq", APIKey: "k", BaseURL: server.URL, Model: "llama"})
	chain := NewChain([]Provider{provider}, nil, nil)

	var chunks []string
	streamed, err := chain.GenerateStream(context.Background(), turnRequest("hi"), collect(&chunks))
	require.NoError(t, err)

	buffered, err := chain.Generate(context.Background(), turnRequest("hi"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello", " there,", " friend"}, chunks)
	assert.Equal(t, buffered.Text, strings.Join(chunks, ""))
	assert.Equal(t, "Hello there, friend", streamed.Text)
	assert.Equal(t, "groq", streamed.Provider)
}

func TestOpenAICompatProvider_UpstreamErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()
	provider := NewOpenAICompatProvider(OpenAICompatConfig{Name: "openai", APIKey: "bad", BaseURL: server.URL, Model: "gpt"})

	_, err := provider.Generate(context.Background(), turnRequest("hi"))
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	_, err = provider.GenerateStream(context.Background(), turnRequest("hi"), func(string) error { return nil })
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}
