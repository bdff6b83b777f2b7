package gepa

import (
	"context"
	"fmt"
	"strings"

	"ieltsforge/internal/llm"
	"ieltsforge/internal/logging"
	"ieltsforge/internal/scoring"
)

const metaPromptTemplate = `I provided an assistant with the following instruction (the module prompt) delimited by triple quotes:

'''
%s
'''

Here are a few examples of inputs, outputs, and feedback from runs:

%s

Your task: write a new improved instruction for the assistant (the same module) that
- fixes the problems called out in the feedback,
- includes any domain-specific constraints implied by the examples,
- is explicit and repeatable,
- keep it concise.

Return ONLY the new instruction inside triple backticks.`

// Mutator proposes revised prompt instructions by asking an LLM to reflect
// on run feedback, with a scripted feedback-keyed fallback when the LLM
// yields nothing usable.
type Mutator struct {
	client   llm.Client
	attempts int
}

// NewMutator creates a mutator. attempts bounds the reflective LLM tries
// per mutation.
func NewMutator(client llm.Client, attempts int) *Mutator {
	if attempts < 1 {
		attempts = 1
	}
	return &Mutator{client: client, attempts: attempts}
}

// BuildMetaPrompt assembles the reflective meta-prompt for one module.
func BuildMetaPrompt(currentInstruction string, examples []scoring.FeedbackExample) string {
	var ex strings.Builder
	for _, e := range examples {
		fmt.Fprintf(&ex, "Input: %s\nOutput: %s\nFeedback: %s\n---\n", e.Input, e.Output, e.Feedback)
	}
	return fmt.Sprintf(metaPromptTemplate, currentInstruction, ex.String())
}

// Mutate returns a revised instruction for module. The reflective path is
// attempted first; a proposal is accepted when it is non-empty, longer than
// 20 characters, and differs from the current instruction. Otherwise the
// scripted fallback applies a small feedback-driven edit, so Mutate always
// returns a changed instruction.
func (m *Mutator) Mutate(ctx context.Context, module, currentInstruction string, examples []scoring.FeedbackExample) string {
	meta := BuildMetaPrompt(currentInstruction, examples)

	for attempt := 1; attempt <= m.attempts; attempt++ {
		resp, err := m.client.Complete(ctx, meta)
		if err != nil {
			logging.Get(logging.CategoryGEPA).Warnw("reflective mutation call failed",
				"module", module, "attempt", attempt, "error", err)
			continue
		}
		proposal := trimBacktickFence(strings.TrimSpace(resp))
		if proposal != "" && len(proposal) > 20 && proposal != currentInstruction {
			logging.GEPADebug("reflective mutation accepted for module %s (attempt %d)", module, attempt)
			return proposal
		}
	}

	logging.GEPADebug("reflective mutation exhausted for module %s; using scripted fallback", module)
	return FallbackMutation(currentInstruction, examples)
}

// FallbackMutation applies a small scripted edit keyed on feedback text:
// length complaints expand the target, a missing summary adds the summary
// requirement, anything else nudges tone and cohesion.
func FallbackMutation(currentInstruction string, examples []scoring.FeedbackExample) string {
	var fb strings.Builder
	for _, e := range examples {
		fb.WriteString(e.Feedback)
		fb.WriteString("; ")
	}
	concat := strings.ToLower(fb.String())
	if len(concat) > 500 {
		concat = concat[:500]
	}

	switch {
	case strings.Contains(concat, "short"):
		return currentInstruction + "\n(Please expand passage: target ~900 words.)"
	case strings.Contains(concat, "missing summary"):
		return currentInstruction + "\n(Include Summary: at the end.)"
	default:
		return currentInstruction + "\n(Add cohesion markers: however, moreover; add 2 academic words per paragraph.)"
	}
}

// trimBacktickFence strips a surrounding triple-backtick fence, including
// an optional language tag on the opening fence.
func trimBacktickFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") {
		return s
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(inner[:nl])
		// A short first line with no spaces is a language tag.
		if firstLine != "" && !strings.ContainsAny(firstLine, " \t") && len(firstLine) < 16 {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}
