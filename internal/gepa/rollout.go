package gepa

import (
	"context"
	"fmt"

	"ieltsforge/internal/generate"
	"ieltsforge/internal/logging"
)

// ScoreFunc grades a complete output set for one topic, returning the
// objective score vector plus raw and feedback trace lists.
type ScoreFunc func(ctx context.Context, outputs generate.Outputs, topic string) (map[string]float64, []string, []string)

// RolloutResult is the ephemeral product of evaluating one candidate on
// one topic.
type RolloutResult struct {
	Topic    string
	Outputs  generate.Outputs
	Scores   map[string]float64
	Raw      []string
	Feedback []string
}

// Runner executes a candidate's module pipeline against topics and scores
// the results. It owns no retry policy; retries live inside each executor.
type Runner struct {
	executors map[string]generate.Executor
	modules   []string
	score     ScoreFunc
}

// NewRunner creates a rollout runner. modules fixes the execution order;
// every module must have an executor.
func NewRunner(executors map[string]generate.Executor, modules []string, score ScoreFunc) (*Runner, error) {
	for _, m := range modules {
		if executors[m] == nil {
			return nil, fmt.Errorf("no executor for module %q", m)
		}
	}
	return &Runner{executors: executors, modules: modules, score: score}, nil
}

// RunRollout evaluates candidate on one topic: each module's executor runs
// in order, seeing the accumulated outputs of earlier modules, then the
// scoring function grades the complete set. The scores and traces are
// recorded onto the candidate. A candidate missing a module prompt is a
// fatal precondition violation.
func (r *Runner) RunRollout(ctx context.Context, c *Candidate, topic string) (*RolloutResult, error) {
	outputs := generate.Outputs{}
	for _, m := range r.modules {
		promptText, ok := c.Prompts[m]
		if !ok {
			return nil, fmt.Errorf("candidate %s missing prompt for module %q", c.ID, m)
		}
		out, err := r.executors[m].Execute(ctx, promptText, topic, outputs)
		if err != nil {
			return nil, fmt.Errorf("module %q failed on topic %q: %w", m, topic, err)
		}
		outputs[m] = out
	}

	scores, raw, feedback := r.score(ctx, outputs, topic)
	c.Scores = cloneScores(scores)
	c.Traces = raw
	c.FeedbackTraces = feedback

	return &RolloutResult{
		Topic:    topic,
		Outputs:  outputs,
		Scores:   scores,
		Raw:      raw,
		Feedback: feedback,
	}, nil
}

// RunMinibatch evaluates candidate on each topic independently. Each topic
// consumes exactly one rollout-budget unit; the caller accounts for the
// spend via the returned result count.
func (r *Runner) RunMinibatch(ctx context.Context, c *Candidate, topics []string) ([]*RolloutResult, error) {
	results := make([]*RolloutResult, 0, len(topics))
	for _, topic := range topics {
		res, err := r.RunRollout(ctx, c, topic)
		if err != nil {
			return results, err
		}
		logging.Get(logging.CategoryRollout).Debugw("rollout complete",
			"candidate", c.ID, "topic", topic, "scores", res.Scores)
		results = append(results, res)
	}
	return results, nil
}

// AggregateResults folds minibatch results into one mean score vector.
func AggregateResults(results []*RolloutResult) map[string]float64 {
	vectors := make([]map[string]float64, len(results))
	for i, r := range results {
		vectors[i] = r.Scores
	}
	return AggregateScores(vectors)
}
