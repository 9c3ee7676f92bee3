package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/observability"
)

// Chain tries providers in order and answers with the fallback responder when
// all of them fail. With no providers it never touches the network.
type Chain struct {
	providers []Provider
	fallback  Provider
	metrics   *observability.Metrics
}

// NewChain creates a chain over providers. A nil fallback selects the local
// responder.
func NewChain(providers []Provider, fallback Provider, metrics *observability.Metrics) *Chain {
	if fallback == nil {
		fallback = NewFallbackResponder()
	}
	return &Chain{providers: providers, fallback: fallback, metrics: metrics}
}

// Names lists the providers in preference order, fallback last.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.providers)+1)
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return append(names, c.fallback.Name())
}

// Offline reports whether only the fallback responder is configured.
func (c *Chain) Offline() bool {
	return len(c.providers) == 0
}

// Generate returns the first non-empty answer. Provider failures are logged
// and skipped; the only error returned is a cancelled context.
func (c *Chain) Generate(ctx context.Context, req *Request) (*Result, error) {
	for _, p := range c.providers {
		res, err := c.attempt(ctx, p, req)
		if err == nil {
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}
	return c.fallback.Generate(ctx, req)
}

// GenerateStream delivers the answer through onChunk. Streaming providers
// forward their deltas; any other provider's answer is split into ChunkSize
// pieces. A stream that fails before its first delta falls through to the
// next provider. One that fails later is finished in buffered mode (see
// resumeBuffered). An error returned by onChunk stops generation and is
// returned unchanged. The result text always equals the concatenated chunks.
func (c *Chain) GenerateStream(ctx context.Context, req *Request, onChunk func(string) error) (*Result, error) {
	for _, p := range c.providers {
		sp, ok := p.(StreamingProvider)
		if !ok {
			res, err := c.attempt(ctx, p, req)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				continue
			}
			if err := emitChunks(res.Text, onChunk); err != nil {
				return nil, err
			}
			return res, nil
		}

		res, partial, err := c.attemptStream(ctx, sp, req, onChunk)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, errConsumer) {
			return nil, unwrapConsumer(err)
		}
		if errors.Is(err, ErrStreamInterrupted) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return c.resumeBuffered(ctx, req, partial, onChunk)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}

	res, err := c.fallback.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := emitChunks(res.Text, onChunk); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Chain) attempt(ctx context.Context, p Provider, req *Request) (*Result, error) {
	res, err := p.Generate(ctx, req)
	if err != nil {
		slog.Warn("Provider failed, trying next", "provider", p.Name(), "error", err)
		c.metrics.ProviderAttempt(p.Name(), "error")
		return nil, err
	}
	if res == nil || strings.TrimSpace(res.Text) == "" {
		slog.Warn("Provider returned empty text, trying next", "provider", p.Name())
		c.metrics.ProviderAttempt(p.Name(), "empty")
		return nil, fmt.Errorf("%w: %s returned empty text", ErrProviderUnavailable, p.Name())
	}
	c.metrics.ProviderAttempt(p.Name(), "success")
	if res.Provider == "" {
		res.Provider = p.Name()
	}
	return res, nil
}

// errConsumer wraps errors returned by the caller's onChunk.
var errConsumer = errors.New("chunk consumer failed")

type consumerError struct{ err error }

func (e *consumerError) Error() string { return e.err.Error() }
func (e *consumerError) Is(target error) bool {
	return target == errConsumer
}
func (e *consumerError) Unwrap() error { return e.err }

func unwrapConsumer(err error) error {
	var ce *consumerError
	if errors.As(err, &ce) {
		return ce.err
	}
	return err
}

// resumeBuffered finishes a stream that broke after partial text reached the
// caller. The answer is generated again through Generate and delivered as
// chunks after a paragraph break, so nothing already sent is repeated or
// withdrawn.
func (c *Chain) resumeBuffered(ctx context.Context, req *Request, partial string, onChunk func(string) error) (*Result, error) {
	res, err := c.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	rest := res.Text
	if strings.TrimSpace(partial) != "" {
		rest = streamResumeSeparator + rest
	}
	if err := emitChunks(rest, onChunk); err != nil {
		return nil, err
	}
	slog.Info("Stream resumed in buffered mode", "provider", res.Provider)
	res.Text = partial + rest
	return res, nil
}

const streamResumeSeparator = "\n\n"

// attemptStream runs one streaming provider. On failure it also returns the
// text already delivered to onChunk.
func (c *Chain) attemptStream(ctx context.Context, p StreamingProvider, req *Request, onChunk func(string) error) (*Result, string, error) {
	emitted := false
	var text strings.Builder
	forward := func(chunk string) error {
		if chunk == "" {
			return nil
		}
		emitted = true
		text.WriteString(chunk)
		if err := onChunk(chunk); err != nil {
			return &consumerError{err: err}
		}
		return nil
	}

	res, err := p.GenerateStream(ctx, req, forward)
	if err != nil {
		if errors.Is(err, errConsumer) {
			return nil, "", err
		}
		c.metrics.ProviderAttempt(p.Name(), "error")
		if emitted {
			slog.Error("Provider stream failed mid-flight", "provider", p.Name(), "error", err)
			return nil, text.String(), fmt.Errorf("%w: %s: %v", ErrStreamInterrupted, p.Name(), err)
		}
		slog.Warn("Provider stream failed, trying next", "provider", p.Name(), "error", err)
		return nil, "", err
	}
	if !emitted || strings.TrimSpace(text.String()) == "" {
		c.metrics.ProviderAttempt(p.Name(), "empty")
		if emitted {
			// Deltas already reached the caller.
			return nil, text.String(), fmt.Errorf("%w: %s streamed only whitespace", ErrStreamInterrupted, p.Name())
		}
		slog.Warn("Provider stream was empty, trying next", "provider", p.Name())
		return nil, "", fmt.Errorf("%w: %s streamed no text", ErrProviderUnavailable, p.Name())
	}

	c.metrics.ProviderAttempt(p.Name(), "success")
	if res == nil {
		res = &Result{}
	}
	res.Text = text.String()
	res.Provider = p.Name()
	return res, "", nil
}

func emitChunks(text string, onChunk func(string) error) error {
	for _, chunk := range Chunks(text) {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return nil
}
