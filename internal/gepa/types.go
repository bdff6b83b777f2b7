// Package gepa implements a genetic-evolutionary prompt optimizer: a
// bounded pool of prompt candidates is evolved through LLM-reflective
// mutation, with acceptance decided by epsilon-relaxed Pareto dominance
// over multi-objective rollout scores, under a fixed rollout budget.
package gepa

import (
	"github.com/google/uuid"
)

// Candidate is one versioned set of module prompts under evolutionary
// search. Candidates are never mutated in place after creation; a changed
// candidate is always a new entity with a new identifier.
type Candidate struct {
	ID       string             `json:"id"`
	Prompts  map[string]string  `json:"prompts"`
	Scores   map[string]float64 `json:"scores"`
	Meta     map[string]string  `json:"meta,omitempty"`
	Ancestry []string           `json:"ancestry"`

	// Ephemeral traces from the most recent evaluation.
	Traces         []string `json:"-"`
	FeedbackTraces []string `json:"-"`
}

// NewCandidate creates a candidate by cloning a base prompt set.
func NewCandidate(basePrompts map[string]string) *Candidate {
	return &Candidate{
		ID:      uuid.NewString(),
		Prompts: clonePrompts(basePrompts),
		Scores:  make(map[string]float64),
		Meta:    make(map[string]string),
	}
}

// Child clones the parent into a new candidate with fresh identity and
// extended ancestry. The prompt map is deep-copied so mutation of the child
// never touches the parent.
func (c *Candidate) Child() *Candidate {
	ancestry := make([]string, 0, len(c.Ancestry)+1)
	ancestry = append(ancestry, c.Ancestry...)
	ancestry = append(ancestry, c.ID)
	return &Candidate{
		ID:       uuid.NewString(),
		Prompts:  clonePrompts(c.Prompts),
		Scores:   make(map[string]float64),
		Meta:     make(map[string]string),
		Ancestry: ancestry,
	}
}

// MeanScore averages all recorded objective scores. Returns false when the
// candidate has never been evaluated.
func (c *Candidate) MeanScore() (float64, bool) {
	if len(c.Scores) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range c.Scores {
		sum += v
	}
	return sum / float64(len(c.Scores)), true
}

func clonePrompts(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneScores(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
