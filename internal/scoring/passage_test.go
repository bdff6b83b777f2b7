package scoring

import (
	"fmt"
	"strings"
	"testing"
)

// buildPassage produces a passage with the given paragraph count and an
// approximate total word count, optionally with a summary line.
func buildPassage(paragraphs, totalWords int, summary bool) string {
	labels := "ABCDEFGHIJ"
	perPara := totalWords / paragraphs
	var b strings.Builder
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&b, "Text: %c. ", labels[i])
		for w := 0; w < perPara-2; w++ {
			b.WriteString("word ")
		}
		b.WriteString("\n")
	}
	if summary {
		b.WriteString("Summary: a brief recap of the passage.")
	}
	return b.String()
}

func TestValidatePassageIdeal(t *testing.T) {
	passage := buildPassage(7, 900, true)
	res := ValidatePassage(passage)
	if res.Score < 0.99 {
		t.Errorf("ideal passage scored %.3f, want ~1.0 (raw: %v)", res.Score, res.Raw)
	}
	for _, fb := range res.Feedback {
		if strings.Contains(fb, "too short") || strings.Contains(fb, "Too few") || strings.Contains(fb, "Missing") {
			t.Errorf("ideal passage got deficiency feedback: %q", fb)
		}
	}
}

func TestValidatePassageDegenerate(t *testing.T) {
	// 50 words, no paragraph markers, no summary line.
	passage := strings.Repeat("word ", 50)
	res := ValidatePassage(passage)
	if res.Score >= 0.5 {
		t.Errorf("degenerate passage scored %.3f, want < 0.5", res.Score)
	}

	joined := strings.Join(res.Feedback, "\n")
	for _, want := range []string{"too short", "Too few paragraphs", "Missing required summary"} {
		if !strings.Contains(joined, want) {
			t.Errorf("feedback missing %q:\n%s", want, joined)
		}
	}
}

func TestValidatePassageWordCountGradient(t *testing.T) {
	short := ValidatePassage(buildPassage(7, 450, true))
	ideal := ValidatePassage(buildPassage(7, 900, true))
	if short.Score >= ideal.Score {
		t.Errorf("450-word passage (%.3f) should score below 900-word (%.3f)", short.Score, ideal.Score)
	}
}

func TestValidatePassageMissingSummarySoftPenalty(t *testing.T) {
	with := ValidatePassage(buildPassage(7, 900, true))
	without := ValidatePassage(buildPassage(7, 900, false))
	// Summary carries weight 0.2 and a missing one still earns 0.5,
	// so the gap is 0.1.
	gap := with.Score - without.Score
	if gap < 0.05 || gap > 0.15 {
		t.Errorf("summary penalty gap = %.3f, want ~0.10", gap)
	}
}

func TestCleanPassageBodyStripsMetadata(t *testing.T) {
	passage := "Quiz title: Glaciers\nQuiz description: ignore me\nText: A. Ice moves slowly.\nSummary: Ice."
	body := CleanPassageBody(passage)
	if strings.Contains(body, "Quiz title") {
		t.Errorf("metadata not stripped: %q", body)
	}
	if !strings.Contains(body, "Text: A.") || !strings.Contains(body, "Summary:") {
		t.Errorf("body lines lost: %q", body)
	}
}

func TestParagraphCount(t *testing.T) {
	tests := []struct {
		passage string
		want    int
	}{
		{"Text: A. one\nText: B. two\nText: C. three", 3},
		{"Text: A. one\nno marker here", 1},
		{"plain text without markers", 0},
		{"Text:  D. spaced label", 1},
	}
	for _, tt := range tests {
		if got := ParagraphCount(tt.passage); got != tt.want {
			t.Errorf("ParagraphCount(%q) = %d, want %d", tt.passage, got, tt.want)
		}
	}
}

func TestToBand(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{1.0, 9.0},
		{0.5, 4.5},
		{0.72, 6.5},
		{0.0, 0.0},
	}
	for _, tt := range tests {
		if got := ToBand(tt.score); got != tt.want {
			t.Errorf("ToBand(%.2f) = %g, want %g", tt.score, got, tt.want)
		}
	}
}
