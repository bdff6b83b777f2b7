// Package generate holds the pluggable generation executors that turn a
// prompt and topic into passage text, question lists, and distractors.
package generate

import "context"

// Outputs accumulates module outputs across a rollout so later modules can
// see earlier ones. Values are raw strings; question lists are JSON text.
type Outputs map[string]string

// Executor performs one generation step. Implementations own their retry
// policy; callers never retry.
type Executor interface {
	Execute(ctx context.Context, promptText, topic string, soFar Outputs) (string, error)
}

// FailurePassage is the sentinel returned when passage generation cannot
// meet its validation threshold after all attempts.
const FailurePassage = "Failure Passage"
