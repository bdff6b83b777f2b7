package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ieltsforge/internal/llm"
	"ieltsforge/internal/logging"
	"ieltsforge/internal/retry"
	"ieltsforge/internal/scoring"
)

const (
	questionsMaxAttempts = 2
	questionsThreshold   = 0.80
	questionsRetryDelay  = 4 * time.Second
	questionCount        = 3
)

// QuestionsExecutor generates MCQ questions for the passage accumulated by
// an earlier module. The output is the raw JSON array text; parsing is the
// scorer's concern.
type QuestionsExecutor struct {
	client    llm.Client
	callRetry retry.Policy
	pause     time.Duration
}

// NewQuestionsExecutor creates a questions executor.
func NewQuestionsExecutor(client llm.Client) *QuestionsExecutor {
	return &QuestionsExecutor{
		client:    client,
		callRetry: retry.Policy{MaxAttempts: 2, Delay: questionsRetryDelay},
		pause:     questionsRetryDelay,
	}
}

// Execute generates questions. A missing passage in soFar is a fatal
// precondition violation.
func (e *QuestionsExecutor) Execute(ctx context.Context, promptText, topic string, soFar Outputs) (string, error) {
	passage, ok := soFar[ModulePassage]
	if !ok || passage == "" {
		return "", fmt.Errorf("questions executor requires a passage in accumulated outputs")
	}

	log := logging.Get(logging.CategoryRollout)
	prompt := fmt.Sprintf("%s\n\nPASSAGE:\n%s\n\nGenerate exactly %d questions.", promptText, passage, questionCount)

	var lastOut string
	for attempt := 1; attempt <= questionsMaxAttempts; attempt++ {
		log.Infow("generating questions", "attempt", attempt, "max", questionsMaxAttempts)

		out, err := retry.DoValue(ctx, e.callRetry, func(ctx context.Context) (string, error) {
			return e.client.Complete(ctx, prompt)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			log.Warnw("question generation call failed", "attempt", attempt, "error", err)
			continue
		}
		lastOut = out

		parsed := scoring.ParseQuestions(out)
		if parsed == nil {
			log.Warnw("question output not a JSON list", "attempt", attempt)
		} else {
			res := scoring.ValidateQuestions(parsed)
			log.Infow("questions validated", "score", res.Score, "raw", res.Raw)
			if res.Score >= questionsThreshold {
				return out, nil
			}
			prompt += "\n\nFEEDBACK: " + strings.Join(res.Feedback, "; ")
		}

		if attempt < questionsMaxAttempts {
			if err := sleepCtx(ctx, e.pause); err != nil {
				return "", err
			}
		}
	}

	log.Warnw("questions failed validation, returning best effort", "attempts", questionsMaxAttempts)
	return lastOut, nil
}
