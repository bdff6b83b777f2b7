package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ieltsforge/internal/llm"
	"ieltsforge/internal/logging"
	"ieltsforge/internal/retrieval"
	"ieltsforge/internal/retry"
	"ieltsforge/internal/scoring"
)

const (
	passageMaxAttempts = 3
	passageThreshold   = 0.70
	passageRetryDelay  = 5 * time.Second
)

// SourceProvider supplies reference material for a topic. May be nil when
// retrieval is disabled.
type SourceProvider interface {
	Retrieve(ctx context.Context, topic string) []retrieval.Source
}

// PassageExecutor generates one IELTS reading passage per rollout, with an
// internal validate-and-retry loop. Feedback from a failed validation is
// appended to the prompt for the next attempt.
type PassageExecutor struct {
	client    llm.Client
	sources   SourceProvider
	callRetry retry.Policy
	pause     time.Duration
}

// NewPassageExecutor creates a passage executor. sources may be nil.
func NewPassageExecutor(client llm.Client, sources SourceProvider) *PassageExecutor {
	return &PassageExecutor{
		client:    client,
		sources:   sources,
		callRetry: retry.Policy{MaxAttempts: 2, Delay: passageRetryDelay},
		pause:     passageRetryDelay,
	}
}

// Execute generates a passage for topic using promptText as the instruction
// block. Returns FailurePassage when no attempt meets the validation
// threshold.
func (e *PassageExecutor) Execute(ctx context.Context, promptText, topic string, soFar Outputs) (string, error) {
	log := logging.Get(logging.CategoryRollout)

	sourcesTxt := e.sourcesText(ctx, topic)
	prompt := fmt.Sprintf("%s\n\nTOPIC: %s\n\nSOURCES:\n%s", promptText, topic, sourcesTxt)

	var lastPassage string
	for attempt := 1; attempt <= passageMaxAttempts; attempt++ {
		log.Infow("generating passage", "attempt", attempt, "max", passageMaxAttempts, "topic", topic)

		passage, err := retry.DoValue(ctx, e.callRetry, func(ctx context.Context) (string, error) {
			return e.client.Complete(ctx, prompt)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			log.Warnw("passage generation call failed", "attempt", attempt, "error", err)
			continue
		}
		lastPassage = passage

		res := scoring.ValidatePassage(passage)
		log.Infow("passage validated", "score", res.Score, "raw", res.Raw)
		if res.Score >= passageThreshold {
			return passage, nil
		}

		prompt += "\n\nFEEDBACK: Please regenerate the passage and fix: " + strings.Join(res.Feedback, "; ")
		if attempt < passageMaxAttempts {
			if err := sleepCtx(ctx, e.pause); err != nil {
				return "", err
			}
		}
	}

	log.Warnw("passage failed to meet threshold, returning sentinel",
		"attempts", passageMaxAttempts, "topic", topic, "last_len", len(lastPassage))
	return FailurePassage, nil
}

func (e *PassageExecutor) sourcesText(ctx context.Context, topic string) string {
	if e.sources == nil {
		return "(no sources available)"
	}
	sources := e.sources.Retrieve(ctx, topic)
	if len(sources) == 0 {
		return "(no sources available)"
	}
	var b strings.Builder
	for i, s := range sources {
		if i >= 6 {
			break
		}
		fmt.Fprintf(&b, "[%s] %s", s.ID, s.Abstract)
		if len(s.Facts) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(s.Facts, "; "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
