package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ieltsforge/internal/logging"
	"ieltsforge/internal/retry"
)

const (
	semanticScholarURL = "https://api.semanticscholar.org/graph/v1/paper/search"
	openAlexURL        = "https://api.openalex.org/works"
	crossrefURL        = "https://api.crossref.org/works"
)

// Fetcher pulls candidate sources for a topic from one scholarly API.
// Fetch failures degrade to an empty slice with a warning; retrieval is
// always best effort.
type Fetcher interface {
	Fetch(ctx context.Context, topic string, limit int) []Source
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, params url.Values, out interface{}) error {
	return retry.Do(ctx, retry.Policy{MaxAttempts: 2, Delay: time.Second}, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

// SemanticScholarFetcher queries the Semantic Scholar paper search API.
type SemanticScholarFetcher struct {
	client *http.Client
}

func NewSemanticScholarFetcher(timeout time.Duration) *SemanticScholarFetcher {
	return &SemanticScholarFetcher{client: newHTTPClient(timeout)}
}

func (f *SemanticScholarFetcher) Fetch(ctx context.Context, topic string, limit int) []Source {
	params := url.Values{}
	params.Set("query", topic)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", "title,abstract,year,url")

	var data struct {
		Data []struct {
			Title    string `json:"title"`
			Abstract string `json:"abstract"`
			Year     int    `json:"year"`
			URL      string `json:"url"`
		} `json:"data"`
	}
	if err := getJSON(ctx, f.client, semanticScholarURL, params, &data); err != nil {
		logging.Get(logging.CategoryRetrieval).Warnw("Semantic Scholar fetch failed", "error", err)
		return nil
	}

	var out []Source
	for i, paper := range data.Data {
		title := paper.Title
		if title == "" {
			title = "Untitled"
		}
		var facts []string
		if paper.Year != 0 {
			facts = append(facts, fmt.Sprintf("Year: %d", paper.Year))
		}
		out = append(out, normalizeSource("S", i+1, title, paper.Abstract, paper.URL, facts))
	}
	return out
}

// OpenAlexFetcher queries the OpenAlex works API.
type OpenAlexFetcher struct {
	client *http.Client
}

func NewOpenAlexFetcher(timeout time.Duration) *OpenAlexFetcher {
	return &OpenAlexFetcher{client: newHTTPClient(timeout)}
}

func (f *OpenAlexFetcher) Fetch(ctx context.Context, topic string, limit int) []Source {
	params := url.Values{}
	params.Set("search", topic)
	params.Set("per-page", strconv.Itoa(limit))

	var data struct {
		Results []struct {
			Title           string `json:"title"`
			PublicationYear int    `json:"publication_year"`
			DOI             string `json:"doi"`
		} `json:"results"`
	}
	if err := getJSON(ctx, f.client, openAlexURL, params, &data); err != nil {
		logging.Get(logging.CategoryRetrieval).Warnw("OpenAlex fetch failed", "error", err)
		return nil
	}

	var out []Source
	for i, work := range data.Results {
		title := work.Title
		if title == "" {
			title = "Untitled"
		}
		var facts []string
		if work.PublicationYear != 0 {
			facts = append(facts, fmt.Sprintf("Year: %d", work.PublicationYear))
		}
		if work.DOI != "" {
			facts = append(facts, "DOI: "+work.DOI)
		}
		out = append(out, normalizeSource("O", i+1, title, "", "", facts))
	}
	return out
}

// CrossrefFetcher queries the Crossref works API.
type CrossrefFetcher struct {
	client *http.Client
}

func NewCrossrefFetcher(timeout time.Duration) *CrossrefFetcher {
	return &CrossrefFetcher{client: newHTTPClient(timeout)}
}

func (f *CrossrefFetcher) Fetch(ctx context.Context, topic string, limit int) []Source {
	params := url.Values{}
	params.Set("query", topic)
	params.Set("rows", strconv.Itoa(limit))

	var data struct {
		Message struct {
			Items []struct {
				Title  []string `json:"title"`
				DOI    string   `json:"DOI"`
				Issued struct {
					DateParts [][]int `json:"date-parts"`
				} `json:"issued"`
			} `json:"items"`
		} `json:"message"`
	}
	if err := getJSON(ctx, f.client, crossrefURL, params, &data); err != nil {
		logging.Get(logging.CategoryRetrieval).Warnw("CrossRef fetch failed", "error", err)
		return nil
	}

	var out []Source
	for i, item := range data.Message.Items {
		title := "Untitled"
		if len(item.Title) > 0 {
			title = item.Title[0]
		}
		var facts []string
		if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
			facts = append(facts, fmt.Sprintf("Year: %d", item.Issued.DateParts[0][0]))
		}
		if item.DOI != "" {
			facts = append(facts, "DOI: "+item.DOI)
		}
		out = append(out, normalizeSource("C", i+1, title, title, "", facts))
	}
	return out
}
