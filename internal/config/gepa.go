package config

import "fmt"

// GEPAConfig tunes the evolutionary optimization loop. The dominance
// epsilon and exploration probability are deliberately configuration, not
// constants: they absorb scoring noise and have no empirically "correct"
// values.
type GEPAConfig struct {
	// MinibatchSize is how many topics each comparative evaluation uses.
	MinibatchSize int `yaml:"minibatch_size"`

	// ParetoSetSize is the held-out topic count for extended evaluation.
	ParetoSetSize int `yaml:"pareto_set_size"`

	// MaxCandidates caps the candidate pool.
	MaxCandidates int `yaml:"max_candidates"`

	// MinPoolSize is the floor the pool is refilled to each iteration.
	MinPoolSize int `yaml:"min_pool_size"`

	// InitPopulation is the number of diversity-seeded initial candidates.
	InitPopulation int `yaml:"init_population"`

	// RolloutBudget is the total number of (candidate, topic) evaluations.
	RolloutBudget int `yaml:"rollout_budget"`

	// MutationAttempts bounds reflective mutation retries per iteration.
	MutationAttempts int `yaml:"mutation_attempts"`

	// DominanceEpsilon is the tolerance for epsilon-relaxed Pareto dominance.
	DominanceEpsilon float64 `yaml:"dominance_epsilon"`

	// ExplorationProbability accepts a non-dominating child this often.
	ExplorationProbability float64 `yaml:"exploration_probability"`

	// ParetoLogInterval recomputes the Pareto front every N iterations.
	ParetoLogInterval int `yaml:"pareto_log_interval"`
}

// DefaultGEPA returns the sample-efficient research defaults.
func DefaultGEPA() GEPAConfig {
	return GEPAConfig{
		MinibatchSize:          8,
		ParetoSetSize:          20,
		MaxCandidates:          40,
		MinPoolSize:            3,
		InitPopulation:         12,
		RolloutBudget:          700,
		MutationAttempts:       2,
		DominanceEpsilon:       0.02,
		ExplorationProbability: 0.10,
		ParetoLogInterval:      10,
	}
}

// Validate rejects configurations the loop cannot run with.
func (g GEPAConfig) Validate() error {
	if g.MinibatchSize < 1 {
		return fmt.Errorf("gepa: minibatch_size must be >= 1, got %d", g.MinibatchSize)
	}
	if g.RolloutBudget < 1 {
		return fmt.Errorf("gepa: rollout_budget must be >= 1, got %d", g.RolloutBudget)
	}
	if g.MaxCandidates < g.MinPoolSize {
		return fmt.Errorf("gepa: max_candidates (%d) below min_pool_size (%d)",
			g.MaxCandidates, g.MinPoolSize)
	}
	if g.DominanceEpsilon < 0 {
		return fmt.Errorf("gepa: dominance_epsilon must be >= 0, got %v", g.DominanceEpsilon)
	}
	if g.ExplorationProbability < 0 || g.ExplorationProbability > 1 {
		return fmt.Errorf("gepa: exploration_probability must be in [0,1], got %v",
			g.ExplorationProbability)
	}
	return nil
}
