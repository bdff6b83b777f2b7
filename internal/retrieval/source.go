// Package retrieval gathers academic-style reference material for a topic,
// from LLM-suggested citations and open scholarly APIs, and prepares it for
// inclusion in generation prompts.
package retrieval

import (
	"regexp"
	"strconv"
	"strings"
)

// Source is one normalized reference: an identifier, the abstract text fed
// into the prompt, and short factual strings (years, DOIs, URLs).
type Source struct {
	ID       string   `json:"id"`
	Title    string   `json:"title,omitempty"`
	Abstract string   `json:"abstract"`
	Facts    []string `json:"facts"`
}

var factRe = regexp.MustCompile(`\b\d+\.\d+%|\b\d+%|\b\d+\b`)

// HighlightFacts wraps years, numbers, and percentages in marker tags so
// the generator uses them more reliably in passages. Plain four-digit
// integers are treated as years.
func HighlightFacts(text string) string {
	return factRe.ReplaceAllStringFunc(text, func(m string) string {
		if len(m) == 4 && !strings.ContainsAny(m, ".%") {
			return "<YEAR:" + m + ">"
		}
		return "<NUM:" + m + ">"
	})
}

// ProcessSources returns a copy of sources with highlighted abstracts.
func ProcessSources(sources []Source) []Source {
	out := make([]Source, len(sources))
	for i, s := range sources {
		out[i] = s
		if s.Abstract != "" {
			out[i].Abstract = HighlightFacts(s.Abstract)
		}
	}
	return out
}

// Deduplicate removes sources with case-insensitively identical abstracts.
func Deduplicate(sources []Source) []Source {
	seen := make(map[string]bool)
	var unique []Source
	for _, s := range sources {
		key := strings.ToLower(strings.TrimSpace(s.Abstract))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, s)
	}
	return unique
}

// normalizeSource builds a Source with a prefixed positional identifier.
func normalizeSource(idPrefix string, idx int, title, abstract, url string, facts []string) Source {
	if abstract == "" {
		abstract = title
	}
	if url != "" {
		facts = append(facts, "Source: "+url)
	}
	return Source{
		ID:       idPrefix + strconv.Itoa(idx),
		Title:    title,
		Abstract: abstract,
		Facts:    facts,
	}
}
