package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// OpenAICompatConfig configures a provider speaking the OpenAI chat
// completions protocol: OpenAI itself, Groq and OpenRouter.
type OpenAICompatConfig struct {
	Name        string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	// Headers are added to every upstream request.
	Headers map[string]string
	// SystemPrompt is prepended to every conversation.
	SystemPrompt string
}

type openAICompatProvider struct {
	client       *openai.Client
	name         string
	model        string
	temperature  float32
	systemPrompt string
}

// NewOpenAICompatProvider returns a streaming provider for an
// OpenAI-compatible endpoint.
func NewOpenAICompatProvider(cfg OpenAICompatConfig) StreamingProvider {
	return &openAICompatProvider{
		client:       newOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Headers),
		name:         cfg.Name,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		systemPrompt: cfg.SystemPrompt,
	}
}

func newOpenAIClient(apiKey, baseURL string, headers map[string]string) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if len(headers) > 0 {
		clientCfg.HTTPClient = &http.Client{Transport: &headerTransport{base: http.DefaultTransport, headers: headers}}
	}
	return openai.NewClientWithConfig(clientCfg)
}

// headerTransport sets fixed headers on outgoing requests.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

func (p *openAICompatProvider) Name() string { return p.name }

func (p *openAICompatProvider) request(req *Request, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toOpenAIMessages(buildMessages(p.systemPrompt, req.Messages)),
		Temperature: p.temperature,
		Stream:      stream,
	}
}

func (p *openAICompatProvider) Generate(ctx context.Context, req *Request) (*Result, error) {
	slog.Debug("Generating text via chat completions", "provider", p.name, "model", p.model)
	resp, err := p.client.CreateChatCompletion(ctx, p.request(req, false))
	if err != nil {
		return nil, fmt.Errorf("%w: %s chat completion failed: %v", ErrProviderUnavailable, p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: %s returned no choices", ErrProviderUnavailable, p.name)
	}
	return &Result{Text: resp.Choices[0].Message.Content, Provider: p.name}, nil
}

func (p *openAICompatProvider) GenerateStream(ctx context.Context, req *Request, onChunk func(string) error) (*Result, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, p.request(req, true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s stream failed: %v", ErrProviderUnavailable, p.name, err)
	}
	defer func() { _ = stream.Close() }()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s stream receive failed: %v", ErrProviderUnavailable, p.name, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			if err := onChunk(delta); err != nil {
				return nil, err
			}
		}
	}
	// The chain assembles the text from the delivered deltas.
	return &Result{Provider: p.name}, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
