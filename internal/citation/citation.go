// Package citation derives source links from tool output and generated text.
package citation

import (
	"regexp"
	"strings"
)

// DefaultMax is the number of citations surfaced when no explicit cap is given.
const DefaultMax = 5

var urlPattern = regexp.MustCompile(`https?://[^\s)\]]+`)

// Extract returns the distinct URLs in text in first-occurrence order, capped
// at max (DefaultMax when max <= 0). Trailing sentence punctuation is not part
// of a URL.
func Extract(text string, max int) []string {
	if max <= 0 {
		max = DefaultMax
	}
	out := []string{}
	if text == "" {
		return out
	}
	seen := make(map[string]struct{})
	for _, match := range urlPattern.FindAllString(text, -1) {
		url := strings.TrimRight(match, ".,;:!?\"'")
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
		if len(out) == max {
			break
		}
	}
	return out
}
