package llm

import (
	"context"
	"fmt"
	"strings"
)

// StubClient returns deterministic canned completions without any network
// calls. It is used for offline runs and in tests.
type StubClient struct{}

// NewStubClient creates a stub client.
func NewStubClient() *StubClient { return &StubClient{} }

// Complete returns a deterministic completion keyed on the prompt content.
func (c *StubClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem returns a deterministic completion keyed on the prompt
// content. Passage-shaped prompts get a structured passage, question-shaped
// prompts get a JSON question list, everything else gets an echo.
func (c *StubClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	low := strings.ToLower(userPrompt)
	switch {
	case strings.Contains(low, "ielts") && (strings.Contains(low, "passage") || strings.Contains(low, "academic reading")):
		return stubPassage(snippet(userPrompt, 80)), nil
	case strings.Contains(low, "question"):
		return stubQuestions, nil
	case strings.Contains(low, "distractor"):
		return stubDistractors, nil
	default:
		return "FAKE OUTPUT: " + snippet(userPrompt, 200), nil
	}
}

// Model returns a fixed identifier for run metadata.
func (c *StubClient) Model() string { return "stub" }

func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}

// stubPassage builds a seven-paragraph passage near the 900-word target so
// offline runs exercise the same validation path as live ones.
func stubPassage(topicSnippet string) string {
	labels := []string{"A", "B", "C", "D", "E", "F", "G"}
	sentence := fmt.Sprintf("%s is an important contemporary topic that researchers continue to examine. ", topicSnippet)
	perParagraph := 125

	var b strings.Builder
	for _, label := range labels {
		b.WriteString("Text: ")
		b.WriteString(label)
		b.WriteString(". ")
		words := 0
		for words < perParagraph {
			b.WriteString(sentence)
			words += len(strings.Fields(sentence))
		}
		b.WriteString("\n\n")
	}
	b.WriteString("Summary: This passage briefly discusses the topic and its wider implications.")
	return b.String()
}

const stubQuestions = `[
  {"id": "MCQ_1", "question_text": "Stub: What is X?", "options": ["A", "B", "C", "D"], "answer": "A", "rationale": "sample", "linked_skills": ["Inference"]},
  {"id": "MCQ_2", "question_text": "Stub: Which is true?", "options": ["A", "B", "C", "D"], "answer": "B", "rationale": "sample", "linked_skills": ["Scanning"]},
  {"id": "MCQ_3", "question_text": "Stub: What does the author imply?", "options": ["A", "B", "C", "D"], "answer": "C", "rationale": "sample", "linked_skills": ["Detail"]}
]`

const stubDistractors = `["a plausible but incorrect option", "a partially true statement", "an overgeneralised claim"]`
