// Package llm turns a conversation history into assistant text. Providers are
// tried in a fixed preference order by a Chain; a deterministic local
// responder answers when none of them can.
package llm

import (
	"context"
	"errors"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

var (
	// ErrProviderUnavailable marks a provider that could not produce text:
	// missing credentials, network failure or a malformed upstream response.
	// The chain skips such providers.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrStreamInterrupted marks a provider stream that failed after part of
	// its answer was already delivered. Chain.GenerateStream resumes such
	// streams in buffered mode.
	ErrStreamInterrupted = errors.New("stream interrupted")
)

// ChunkSize is the size, in runes, of the pieces a buffered answer is split
// into when it is delivered through the streaming interface.
const ChunkSize = 40

// Request is the input of a single generation.
type Request struct {
	// OwnerID scopes provider-driven tools such as task creation.
	OwnerID string
	// Messages is the full ordered history. Tool observations appear as system
	// entries carrying a ToolName.
	Messages []model.Entry
}

// Result is the output of a generation. It is never persisted directly.
type Result struct {
	Text     string
	Provider string
	// Observations are tool outputs produced by the provider itself, reported
	// alongside the text as citation sources.
	Observations []model.ToolObservation
}

// Provider produces assistant text from a history.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *Request) (*Result, error)
}

// StreamingProvider can deliver its answer incrementally. onChunk receives
// deltas in arrival order; an error from onChunk aborts the stream.
type StreamingProvider interface {
	Provider
	GenerateStream(ctx context.Context, req *Request, onChunk func(string) error) (*Result, error)
}

// Chunks splits text into ChunkSize-rune pieces.
func Chunks(text string) []string {
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/ChunkSize+1)
	for i := 0; i < len(runes); i += ChunkSize {
		end := i + ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

func lastUserMessage(history []model.Entry) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.RoleUser {
			return history[i].Content
		}
	}
	return ""
}
