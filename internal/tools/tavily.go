package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// SearchResult is a single hit returned by the search API.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Searcher queries a web-search backend.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

type tavilyClient struct {
	client *http.Client
	url    string
	apiKey string
}

// NewTavilyClient returns a Searcher backed by the Tavily search API. With an
// empty apiKey every search fails with ErrToolUnavailable without touching the
// network.
func NewTavilyClient(url, apiKey string) Searcher {
	return &tavilyClient{
		client: &http.Client{},
		url:    url,
		apiKey: apiKey,
	}
}

type tavilyRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []SearchResult `json:"results"`
}

func (c *tavilyClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: TAVILY_API_KEY is not set", ErrToolUnavailable)
	}
	body, err := json.Marshal(tavilyRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrToolUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: api returned non-200 status %d: %s", ErrToolUnavailable, resp.StatusCode, string(bodyBytes))
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: could not decode response: %v", ErrToolUnavailable, err)
	}
	if parsed.Results == nil {
		return nil, fmt.Errorf("%w: response has no results field", ErrToolUnavailable)
	}
	return parsed.Results, nil
}
