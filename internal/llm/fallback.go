package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/citation"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

// FallbackName identifies the local responder in results and metrics.
const FallbackName = "fallback"

var (
	nameIntroPattern    = regexp.MustCompile(`(?i)my name is\s+([A-Za-z][A-Za-z\s'-]{1,40})`)
	nameQuestionPattern = regexp.MustCompile(`(?i)what\s+is\s+my\s+name`)
)

type fallbackResponder struct{}

// NewFallbackResponder returns the deterministic, network-free responder.
func NewFallbackResponder() Provider {
	return fallbackResponder{}
}

func (fallbackResponder) Name() string { return FallbackName }

func (fallbackResponder) Generate(ctx context.Context, req *Request) (*Result, error) {
	return &Result{Text: fallbackText(req), Provider: FallbackName}, nil
}

func fallbackText(req *Request) string {
	lastUser := lastUserMessage(req.Messages)

	var name string
	for _, e := range req.Messages {
		if e.Role != model.RoleUser {
			continue
		}
		// Later introductions override earlier ones.
		if m := nameIntroPattern.FindStringSubmatch(e.Content); m != nil {
			name = strings.TrimSpace(m[1])
		}
	}

	var response string
	if name != "" && nameQuestionPattern.MatchString(lastUser) {
		response = fmt.Sprintf("You told me your name is %s.", name)
	} else {
		response = fmt.Sprintf("I couldn't reach the LLM right now. Here's a quick acknowledgment of your request: \"%s\". Please try again shortly.", lastUser)
	}

	obs := observations(req.Messages)
	if len(obs) == 0 {
		return response
	}
	contents := make([]string, 0, len(obs))
	for _, o := range obs {
		contents = append(contents, o.Content)
	}
	urls := citation.Extract(strings.Join(contents, "\n"), citation.DefaultMax)
	if len(urls) == 0 {
		return response
	}
	lines := make([]string, len(urls))
	for i, u := range urls {
		lines[i] = "- " + u
	}
	return response + "\n\nSources (tool):\n" + strings.Join(lines, "\n")
}
