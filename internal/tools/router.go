package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/observability"
)

const (
	// SearchQueryMaxRunes bounds the query sent to the search API.
	SearchQueryMaxRunes = 300
	// SearchMaxResults is the number of results requested per search.
	SearchMaxResults = 5
	snippetMaxRunes  = 300
)

var researchPattern = regexp.MustCompile(`(?i)(latest|news|trends|research|market|compare|vs\b|source|cite|statistics)`)

// Decision is the outcome of Router.Decide.
type Decision struct {
	ShouldInvoke bool
	Tool         string
	// Query is the text the tool should run on.
	Query string
}

// Router decides whether a turn needs a web-search pre-fetch and runs it.
type Router struct {
	searcher Searcher
	metrics  *observability.Metrics
}

// NewRouter creates a Router. searcher may be nil, in which case every search
// is unavailable.
func NewRouter(searcher Searcher, metrics *observability.Metrics) *Router {
	return &Router{searcher: searcher, metrics: metrics}
}

// Decide inspects the most recent user entry of history. The decision depends
// only on that entry's text.
func (r *Router) Decide(history []model.Entry) Decision {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != model.RoleUser {
			continue
		}
		text := history[i].Content
		if researchPattern.MatchString(text) {
			return Decision{
				ShouldInvoke: true,
				Tool:         WebSearchName,
				Query:        model.Truncate(text, SearchQueryMaxRunes),
			}
		}
		return Decision{}
	}
	return Decision{}
}

// Invoke runs tool on query. Any failure is reported as ErrToolUnavailable.
func (r *Router) Invoke(ctx context.Context, tool, query string) (*model.ToolObservation, error) {
	if tool != WebSearchName {
		r.metrics.ToolInvoked(tool, "unavailable")
		return nil, fmt.Errorf("%w: unknown tool %q", ErrToolUnavailable, tool)
	}

	obs, err := r.search(ctx, query)
	if err != nil {
		slog.Warn("Web search unavailable, continuing without it", "error", err)
		r.metrics.ToolInvoked(tool, "unavailable")
		if !errors.Is(err, ErrToolUnavailable) {
			err = fmt.Errorf("%w: %v", ErrToolUnavailable, err)
		}
		return nil, err
	}
	r.metrics.ToolInvoked(tool, "success")
	return obs, nil
}

func (r *Router) search(ctx context.Context, query string) (*model.ToolObservation, error) {
	if r.searcher == nil {
		return nil, fmt.Errorf("%w: no search backend configured", ErrToolUnavailable)
	}
	results, err := r.searcher.Search(ctx, model.Truncate(query, SearchQueryMaxRunes), SearchMaxResults)
	if err != nil {
		return nil, err
	}
	return &model.ToolObservation{ToolName: WebSearchName, Content: Digest(results)}, nil
}

// Digest renders search results as the text folded into the model context.
func Digest(results []SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, res := range results {
		parts = append(parts, fmt.Sprintf("- %s — %s\n%s", res.Title, res.URL, model.Truncate(res.Content, snippetMaxRunes)))
	}
	return strings.Join(parts, "\n\n")
}
