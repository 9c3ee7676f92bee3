package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaName identifies the local Ollama provider.
const OllamaName = "ollama"

type ollamaProvider struct {
	client       *http.Client
	url          string
	model        string
	systemPrompt string
}

// NewOllamaProvider returns a streaming provider backed by an Ollama server's
// /api/chat endpoint.
func NewOllamaProvider(url, model, systemPrompt string) StreamingProvider {
	return &ollamaProvider{
		client:       &http.Client{},
		url:          url,
		model:        model,
		systemPrompt: systemPrompt,
	}
}

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaChatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

func (p *ollamaProvider) Name() string { return OllamaName }

func (p *ollamaProvider) post(ctx context.Context, req *Request, stream bool) (*http.Response, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model:    p.model,
		Messages: buildMessages(p.systemPrompt, req.Messages),
		Stream:   stream,
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama request failed: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: ollama returned non-200 status %d: %s", ErrProviderUnavailable, resp.StatusCode, string(bodyBytes))
	}
	return resp, nil
}

func (p *ollamaProvider) Generate(ctx context.Context, req *Request) (*Result, error) {
	resp, err := p.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("%w: could not decode ollama response: %v", ErrProviderUnavailable, err)
	}
	if chatResp.Error != "" {
		return nil, fmt.Errorf("%w: ollama: %s", ErrProviderUnavailable, chatResp.Error)
	}
	return &Result{Text: chatResp.Message.Content, Provider: OllamaName}, nil
}

// GenerateStream reads Ollama's newline-delimited JSON chunks until the one
// marked done.
func (p *ollamaProvider) GenerateStream(ctx context.Context, req *Request, onChunk func(string) error) (*Result, error) {
	resp, err := p.post(ctx, req, true)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk ollamaChatResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, fmt.Errorf("%w: failed to decode stream chunk: %v", ErrProviderUnavailable, err)
		}
		if chunk.Error != "" {
			return nil, fmt.Errorf("%w: ollama: %s", ErrProviderUnavailable, chunk.Error)
		}
		if chunk.Message.Content != "" {
			if err := onChunk(chunk.Message.Content); err != nil {
				return nil, err
			}
		}
		if chunk.Done {
			return &Result{Provider: OllamaName}, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: ollama stream read failed: %v", ErrProviderUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: ollama stream ended without done", ErrProviderUnavailable)
}
