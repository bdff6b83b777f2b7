package gepa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ieltsforge/internal/scoring"
)

type cannedClient struct {
	reply string
	err   error
	calls int
}

func (c *cannedClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls++
	return c.reply, c.err
}

func (c *cannedClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return c.Complete(ctx, user)
}

func feedbackExamples(feedback string) []scoring.FeedbackExample {
	return []scoring.FeedbackExample{{Input: "glaciers", Output: "Text: A. ...", Feedback: feedback}}
}

func TestMutateAcceptsReflectiveProposal(t *testing.T) {
	client := &cannedClient{reply: "```\nWrite a longer, more structured passage with labeled paragraphs.\n```"}
	m := NewMutator(client, 2)

	got := m.Mutate(context.Background(), "passage", "old instruction", feedbackExamples("Passage too short"))
	want := "Write a longer, more structured passage with labeled paragraphs."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if client.calls != 1 {
		t.Errorf("client called %d times, want 1", client.calls)
	}
}

func TestMutateRejectsShortProposal(t *testing.T) {
	client := &cannedClient{reply: "```\nok\n```"}
	m := NewMutator(client, 2)

	got := m.Mutate(context.Background(), "passage", "old instruction", feedbackExamples("Passage too short (50 words)"))
	if client.calls != 2 {
		t.Errorf("client called %d times, want all %d attempts", client.calls, 2)
	}
	// Falls back to the scripted length edit.
	if !strings.Contains(got, "target ~900 words") {
		t.Errorf("got %q, want scripted expansion fallback", got)
	}
}

func TestMutateRejectsUnchangedProposal(t *testing.T) {
	current := "an instruction that is already quite long enough"
	client := &cannedClient{reply: current}
	m := NewMutator(client, 2)

	got := m.Mutate(context.Background(), "passage", current, feedbackExamples("fine"))
	if got == current {
		t.Error("mutation must always return a changed instruction")
	}
}

func TestMutateFallsBackOnClientError(t *testing.T) {
	client := &cannedClient{err: errors.New("rate limited")}
	m := NewMutator(client, 2)

	got := m.Mutate(context.Background(), "passage", "old instruction", feedbackExamples("Missing summary line"))
	if !strings.Contains(got, "Include Summary:") {
		t.Errorf("got %q, want scripted summary fallback", got)
	}
}

func TestFallbackMutationKeying(t *testing.T) {
	base := "base instruction"
	tests := []struct {
		feedback string
		want     string
	}{
		{"Passage too short (100 words)", "target ~900 words"},
		{"Missing summary line at end", "Include Summary:"},
		{"tone is too journalistic", "cohesion markers"},
	}
	for _, tt := range tests {
		got := FallbackMutation(base, feedbackExamples(tt.feedback))
		if !strings.Contains(got, tt.want) {
			t.Errorf("FallbackMutation(%q) = %q, want to contain %q", tt.feedback, got, tt.want)
		}
		if !strings.HasPrefix(got, base) {
			t.Errorf("fallback must extend the current instruction, got %q", got)
		}
	}
}

func TestTrimBacktickFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```\nnew instruction\n```", "new instruction"},
		{"```text\nnew instruction\n```", "new instruction"},
		{"no fence here", "no fence here"},
		{"```inline```", "inline"},
	}
	for _, tt := range tests {
		if got := trimBacktickFence(tt.in); got != tt.want {
			t.Errorf("trimBacktickFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildMetaPromptIncludesExamples(t *testing.T) {
	meta := BuildMetaPrompt("current", []scoring.FeedbackExample{
		{Input: "glaciers", Output: "Text: A.", Feedback: "too short"},
	})
	for _, want := range []string{"current", "Input: glaciers", "Feedback: too short", "triple backticks"} {
		if !strings.Contains(meta, want) {
			t.Errorf("meta prompt missing %q", want)
		}
	}
}
