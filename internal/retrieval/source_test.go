package retrieval

import (
	"context"
	"testing"

	"ieltsforge/internal/config"
)

func TestHighlightFacts(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"published in 1999", "published in <YEAR:1999>"},
		{"grew by 45% over 12 months", "grew by <NUM:45%> over <NUM:12> months"},
		{"a rate of 3.5% annually", "a rate of <NUM:3.5%> annually"},
		{"no digits here", "no digits here"},
	}
	for _, tt := range tests {
		if got := HighlightFacts(tt.in); got != tt.want {
			t.Errorf("HighlightFacts(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeduplicate(t *testing.T) {
	sources := []Source{
		{ID: "L1", Abstract: "Glaciers are retreating."},
		{ID: "S1", Abstract: "glaciers are retreating."},
		{ID: "O1", Abstract: "Coral reefs are bleaching."},
		{ID: "C1", Abstract: ""},
	}
	got := Deduplicate(sources)
	if len(got) != 2 {
		t.Fatalf("got %d sources, want 2: %v", len(got), got)
	}
	if got[0].ID != "L1" || got[1].ID != "O1" {
		t.Errorf("kept wrong sources: %v", got)
	}
}

func TestNormalizeSourceFallsBackToTitle(t *testing.T) {
	s := normalizeSource("S", 2, "A Title", "", "https://example.org/p", nil)
	if s.ID != "S2" {
		t.Errorf("ID = %q, want S2", s.ID)
	}
	if s.Abstract != "A Title" {
		t.Errorf("Abstract = %q, want title fallback", s.Abstract)
	}
	if len(s.Facts) != 1 || s.Facts[0] != "Source: https://example.org/p" {
		t.Errorf("Facts = %v", s.Facts)
	}
}

type suggestClient struct{ reply string }

func (c *suggestClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.reply, nil
}

func (c *suggestClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return c.reply, nil
}

func TestRetrieveSuggestedReferences(t *testing.T) {
	reply := `[
		{"title": "Glacier Dynamics", "year": 2019, "abstract": "Measured retreat of 30% since 1990.", "url": "https://example.org/a"},
		{"title": "Ice Cores", "year": "2021", "abstract": "Analysis of ancient ice."}
	]`
	r := NewRetriever(&suggestClient{reply: reply}, config.RetrievalConfig{MaxSources: 5})

	sources := r.Retrieve(context.Background(), "glaciers")
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2: %v", len(sources), sources)
	}
	if sources[0].ID != "L1" {
		t.Errorf("first ID = %q, want L1", sources[0].ID)
	}
	// Highlighting applied to abstracts.
	if want := "Measured retreat of <NUM:30%> since <YEAR:1990>."; sources[0].Abstract != want {
		t.Errorf("abstract = %q, want %q", sources[0].Abstract, want)
	}
}

func TestRetrieveFallbackNonJSON(t *testing.T) {
	r := NewRetriever(&suggestClient{reply: "I could not find references."}, config.RetrievalConfig{MaxSources: 3})
	sources := r.Retrieve(context.Background(), "glaciers")
	if len(sources) != 1 || sources[0].ID != "L1" {
		t.Fatalf("got %v, want single L1 fallback source", sources)
	}
}
