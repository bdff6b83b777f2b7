package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ieltsforge/internal/llm"
	"ieltsforge/internal/logging"
	"ieltsforge/internal/scoring"
)

const (
	rescoreThreshold   = 0.8
	rescoreMaxAttempts = 8
	rewriteMaxAttempts = 3
	rewriteThreshold   = 0.70
	reseedMaxAttempts  = 5
)

// RescoreResult is the product of one rescoring generation run.
type RescoreResult struct {
	Passage   string
	Questions string
	Scores    scoring.ScoreSet
	Attempts  int
}

// Rescorer generates a passage, scores it on all objectives, and rewrites
// it with evaluator feedback until every objective clears the threshold or
// attempts run out. Questions are generated from whatever passage survives.
type Rescorer struct {
	passage   *PassageExecutor
	questions *QuestionsExecutor
	rewriter  llm.Client
	scorer    *scoring.Scorer
	prompts   map[string]string
	delay     time.Duration
}

// NewRescorer wires a rescoring pipeline. rewriter is usually the judge
// model client.
func NewRescorer(passage *PassageExecutor, questions *QuestionsExecutor, rewriter llm.Client, scorer *scoring.Scorer, prompts map[string]string) *Rescorer {
	return &Rescorer{
		passage:   passage,
		questions: questions,
		rewriter:  rewriter,
		scorer:    scorer,
		prompts:   prompts,
		delay:     5 * time.Second,
	}
}

// Run executes the rescoring loop for topic.
func (r *Rescorer) Run(ctx context.Context, topic string) (*RescoreResult, error) {
	log := logging.Get(logging.CategoryGEPA)
	outputs := Outputs{}

	passage, err := r.seedPassage(ctx, topic, outputs)
	if err != nil {
		return nil, err
	}

	var scores scoring.ScoreSet
	attempt := 0
	for attempt < rescoreMaxAttempts {
		attempt++
		if attempt > 1 {
			passage = r.rewrite(ctx, passage, outputs["feedback"])
		}
		outputs[ModulePassage] = passage

		scores = r.scorer.ScorePassageOnly(ctx, passage, topic)
		log.Infow("rescore attempt", "attempt", attempt, "scores", scores.Scores, "band", scores.Band)

		if allAbove(scores.Scores, rescoreThreshold) {
			break
		}
		feedback := strings.Join(scores.Feedback, "; ")
		if feedback == "" {
			feedback = "improve clarity and alignment with IELTS style"
		}
		outputs["feedback"] = feedback
		if err := sleepCtx(ctx, r.delay); err != nil {
			return nil, err
		}
	}
	if !allAbove(scores.Scores, rescoreThreshold) {
		log.Warnw("rescore never cleared threshold, keeping last passage", "attempts", attempt)
	}

	questions, err := r.questions.Execute(ctx, r.prompts[ModuleQuestions], topic, outputs)
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}
	outputs[ModuleQuestions] = questions

	return &RescoreResult{
		Passage:   outputs[ModulePassage],
		Questions: questions,
		Scores:    scores,
		Attempts:  attempt,
	}, nil
}

// seedPassage calls the passage executor until it produces something other
// than the failure sentinel, bounded so a dead model cannot spin forever.
func (r *Rescorer) seedPassage(ctx context.Context, topic string, outputs Outputs) (string, error) {
	for i := 0; i < reseedMaxAttempts; i++ {
		passage, err := r.passage.Execute(ctx, r.prompts[ModulePassage], topic, outputs)
		if err != nil {
			return "", err
		}
		if passage != FailurePassage {
			return passage, nil
		}
		if err := sleepCtx(ctx, r.delay); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("passage generation kept failing after %d seed attempts", reseedMaxAttempts)
}

// rewrite asks the rewriter model to revise the passage per feedback, with
// its own validate-and-retry loop. Falls back to the input passage when
// every rewrite attempt degrades it.
func (r *Rescorer) rewrite(ctx context.Context, passage, feedback string) string {
	log := logging.Get(logging.CategoryGEPA)
	prompt := fmt.Sprintf(rewritePromptTemplate, passage, feedback)

	var last string
	for attempt := 1; attempt <= rewriteMaxAttempts; attempt++ {
		out, err := r.rewriter.CompleteWithSystem(ctx, "You are an IELTS Reading examiner assistant.", prompt)
		if err != nil {
			log.Warnw("rewrite call failed", "attempt", attempt, "error", err)
			continue
		}
		last = strings.TrimSpace(out)

		res := scoring.ValidatePassage(last)
		log.Infow("rewrite validated", "attempt", attempt, "score", res.Score)
		if res.Score >= rewriteThreshold {
			return last
		}
	}
	if last == "" {
		return passage
	}
	return last
}

func allAbove(scores map[string]float64, threshold float64) bool {
	if len(scores) == 0 {
		return false
	}
	for _, v := range scores {
		if v < threshold {
			return false
		}
	}
	return true
}
