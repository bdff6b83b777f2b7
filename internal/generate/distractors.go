package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ieltsforge/internal/jsonx"
	"ieltsforge/internal/llm"
	"ieltsforge/internal/logging"
	"ieltsforge/internal/retry"
)

const (
	distractorsMaxAttempts = 2
	distractorsRetryDelay  = 300 * time.Millisecond
)

// DistractorSet holds the generated wrong options for one question.
type DistractorSet struct {
	ForQuestionID string       `json:"for_question_id"`
	Distractors   []Distractor `json:"distractors"`
}

// Distractor is one wrong option labeled with its design pattern.
type Distractor struct {
	Text    string `json:"text"`
	Pattern string `json:"pattern"`
}

// DistractorsExecutor generates pattern-labeled distractors aligned with
// the passage. Output is the JSON array text of DistractorSet records.
type DistractorsExecutor struct {
	client    llm.Client
	callRetry retry.Policy
	pause     time.Duration
}

// NewDistractorsExecutor creates a distractors executor.
func NewDistractorsExecutor(client llm.Client) *DistractorsExecutor {
	return &DistractorsExecutor{
		client:    client,
		callRetry: retry.Policy{MaxAttempts: 2, Delay: distractorsRetryDelay},
		pause:     distractorsRetryDelay,
	}
}

// Execute generates distractors for the accumulated passage.
func (e *DistractorsExecutor) Execute(ctx context.Context, promptText, topic string, soFar Outputs) (string, error) {
	passage, ok := soFar[ModulePassage]
	if !ok || passage == "" {
		return "", fmt.Errorf("distractors executor requires a passage in accumulated outputs")
	}
	if promptText == "" {
		promptText = baseDistractorsPrompt
	}

	log := logging.Get(logging.CategoryRollout)
	prompt := fmt.Sprintf("%s\n\nPASSAGE:\n%s", promptText, passage)

	var lastOut string
	for attempt := 1; attempt <= distractorsMaxAttempts; attempt++ {
		log.Infow("generating distractors", "attempt", attempt, "max", distractorsMaxAttempts)

		out, err := retry.DoValue(ctx, e.callRetry, func(ctx context.Context) (string, error) {
			return e.client.Complete(ctx, prompt)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			log.Warnw("distractor generation call failed", "attempt", attempt, "error", err)
			continue
		}
		lastOut = out

		var sets []DistractorSet
		if err := jsonx.DecodeInto(out, &sets); err == nil && len(sets) > 0 {
			normalized, _ := json.Marshal(sets)
			return string(normalized), nil
		}

		if attempt < distractorsMaxAttempts {
			if err := sleepCtx(ctx, e.pause); err != nil {
				return "", err
			}
		}
	}

	log.Warnw("distractors failed to parse, returning best effort", "attempts", distractorsMaxAttempts)
	return lastOut, nil
}
