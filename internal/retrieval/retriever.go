package retrieval

import (
	"context"
	"fmt"
	"time"

	"ieltsforge/internal/config"
	"ieltsforge/internal/jsonx"
	"ieltsforge/internal/llm"
	"ieltsforge/internal/logging"
)

// Retriever collects reference sources for a topic. The primary channel
// asks the LLM to suggest academic references; open scholarly APIs can be
// layered on top when enabled.
type Retriever struct {
	client   llm.Client
	fetchers []Fetcher
	maxSrc   int
}

// NewRetriever builds a retriever from configuration. client is used for
// LLM-suggested references and may be nil when only API fetchers run.
func NewRetriever(client llm.Client, cfg config.RetrievalConfig) *Retriever {
	r := &Retriever{client: client, maxSrc: cfg.MaxSources}
	if r.maxSrc <= 0 {
		r.maxSrc = 5
	}
	if cfg.UseAcademicAPIs {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		r.fetchers = []Fetcher{
			NewSemanticScholarFetcher(timeout),
			NewOpenAlexFetcher(timeout),
			NewCrossrefFetcher(timeout),
		}
	}
	return r
}

const suggestPromptTemplate = `You are an assistant that finds academic references.

Task: List %d academic papers about the topic "%s".
For each paper, return:
  - title
  - year
  - abstract (1-3 sentences)
  - optional URL if known

Output format: JSON array of objects with keys:
  "title", "year", "abstract", "url"`

type suggestedRef struct {
	Title    string      `json:"title"`
	Year     interface{} `json:"year"`
	Abstract string      `json:"abstract"`
	URL      string      `json:"url"`
}

// Retrieve returns deduplicated, fact-highlighted sources for topic.
// All failures degrade to fewer (possibly zero) sources.
func (r *Retriever) Retrieve(ctx context.Context, topic string) []Source {
	var sources []Source

	if r.client != nil {
		sources = append(sources, r.suggested(ctx, topic)...)
	}
	for _, f := range r.fetchers {
		sources = append(sources, f.Fetch(ctx, topic, 3)...)
	}

	sources = Deduplicate(sources)
	if len(sources) > r.maxSrc {
		sources = sources[:r.maxSrc]
	}
	logging.Get(logging.CategoryRetrieval).Infow("retrieved sources",
		"topic", topic, "count", len(sources))
	return ProcessSources(sources)
}

func (r *Retriever) suggested(ctx context.Context, topic string) []Source {
	prompt := fmt.Sprintf(suggestPromptTemplate, r.maxSrc, topic)
	raw, err := r.client.Complete(ctx, prompt)
	if err != nil {
		logging.Get(logging.CategoryRetrieval).Warnw("reference suggestion failed", "error", err)
		return nil
	}

	var refs []suggestedRef
	if err := jsonx.DecodeInto(raw, &refs); err != nil {
		// Fall back to treating the whole reply as one abstract.
		return []Source{{ID: "L1", Abstract: raw}}
	}

	var out []Source
	for i, ref := range refs {
		if i >= r.maxSrc {
			break
		}
		title := ref.Title
		if title == "" {
			title = "Untitled"
		}
		var facts []string
		if ref.Year != nil && fmt.Sprint(ref.Year) != "" {
			facts = append(facts, fmt.Sprintf("Year: %v", ref.Year))
		}
		out = append(out, normalizeSource("L", i+1, title, ref.Abstract, ref.URL, facts))
	}
	return out
}
