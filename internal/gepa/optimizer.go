package gepa

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"ieltsforge/internal/config"
	"ieltsforge/internal/generate"
	"ieltsforge/internal/logging"
	"ieltsforge/internal/scoring"
)

// Phase names the optimizer lifecycle states.
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseIterating    Phase = "iterating"
	PhaseDone         Phase = "done"
)

// Optimizer drives the evolutionary loop: sample a parent, evaluate it on
// a minibatch, propose a mutated child, and accept the child only when it
// epsilon-dominates the parent (on the minibatch, then confirmed on a
// held-out Pareto sample), with a small exploration probability keeping
// diversity alive. The loop runs until the rollout budget is exhausted.
type Optimizer struct {
	cfg     config.GEPAConfig
	pool    *Pool
	runner  *Runner
	mutator *Mutator
	journal *Journal
	store   *RunStore
	rng     *rand.Rand

	runID        string
	phase        Phase
	ledger       ScoreLedger
	rolloutsUsed int
	iteration    int
}

// Options wires an Optimizer. Journal and Store may be nil for tests.
type Options struct {
	Config  config.GEPAConfig
	Runner  *Runner
	Mutator *Mutator
	Journal *Journal
	Store   *RunStore
	Rand    *rand.Rand
}

// NewOptimizer builds an optimizer with a freshly seeded candidate pool.
func NewOptimizer(basePrompts map[string]string, modules []string, opts Options) (*Optimizer, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Runner == nil {
		return nil, fmt.Errorf("gepa: a rollout runner is required")
	}
	if opts.Mutator == nil {
		return nil, fmt.Errorf("gepa: a mutator is required")
	}
	for _, m := range modules {
		if _, ok := basePrompts[m]; !ok {
			return nil, fmt.Errorf("gepa: base prompts missing module %q", m)
		}
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	o := &Optimizer{
		cfg:     opts.Config,
		runner:  opts.Runner,
		mutator: opts.Mutator,
		journal: opts.Journal,
		store:   opts.Store,
		rng:     rng,
		runID:   NewRunID(),
		phase:   PhaseInitializing,
		ledger:  make(ScoreLedger),
	}
	o.pool = NewPool(basePrompts, opts.Config.MaxCandidates, opts.Config.InitPopulation, scoring.ObjPassage, rng)
	o.pool.EnsureMin(opts.Config.MinPoolSize)
	return o, nil
}

// Phase returns the current lifecycle state.
func (o *Optimizer) Phase() Phase { return o.phase }

// RolloutsUsed returns the budget spent so far.
func (o *Optimizer) RolloutsUsed() int { return o.rolloutsUsed }

// Pool exposes the candidate pool, mainly for inspection after a run.
func (o *Optimizer) Pool() *Pool { return o.pool }

// Run executes the optimization loop over topics and returns the best
// candidate found. The topic list is shuffled once; a prefix serves as the
// feedback set for minibatches and another as the held-out Pareto set.
func (o *Optimizer) Run(ctx context.Context, modules []string, topics []string) (*Candidate, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("gepa: no topics to optimize over")
	}

	shuffled := make([]string, len(topics))
	copy(shuffled, topics)
	o.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	feedbackSet := shuffled[:min(len(shuffled), 200)]
	paretoSet := shuffled[:min(len(shuffled), o.cfg.ParetoSetSize)]

	o.phase = PhaseIterating
	logging.GEPA("starting run %s: budget=%d pool=%d topics=%d",
		o.runID, o.cfg.RolloutBudget, o.pool.Size(), len(topics))

	for o.rolloutsUsed < o.cfg.RolloutBudget {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.iteration++
		if err := o.iterate(ctx, modules, feedbackSet, paretoSet); err != nil {
			return nil, err
		}

		o.pool.EnsureMin(o.cfg.MinPoolSize)
		if o.cfg.ParetoLogInterval > 0 && o.iteration%o.cfg.ParetoLogInterval == 0 {
			front := o.ledger.ParetoFront(o.cfg.DominanceEpsilon)
			logging.GEPA("iter %d: pareto front size %d", o.iteration, len(front))
		}
	}

	o.phase = PhaseDone
	logging.GEPA("budget exhausted after %d iterations (%d rollouts)", o.iteration, o.rolloutsUsed)

	best := o.pool.Best()
	if best == nil {
		return nil, fmt.Errorf("gepa: pool is empty after optimization")
	}
	if o.store != nil {
		if err := o.store.SaveCandidate(o.runID, best); err != nil {
			logging.Get(logging.CategoryGEPA).Warnw("failed to persist best candidate", "error", err)
		} else if err := o.store.MarkBest(o.runID, best.ID); err != nil {
			logging.Get(logging.CategoryGEPA).Warnw("failed to mark best candidate", "error", err)
		}
	}
	return best, nil
}

// iterate runs one parent/child comparison.
func (o *Optimizer) iterate(ctx context.Context, modules, feedbackSet, paretoSet []string) error {
	logging.GEPA("iter %d: rollouts_used=%d pool_size=%d", o.iteration, o.rolloutsUsed, o.pool.Size())

	parent := o.pool.RandomCandidate()
	module := modules[o.rng.Intn(len(modules))]
	minibatch := o.sampleTopics(feedbackSet, o.cfg.MinibatchSize)

	parentResults, err := o.runner.RunMinibatch(ctx, parent, minibatch)
	o.rolloutsUsed += len(parentResults)
	if err != nil {
		return err
	}
	o.recordResults(parent.ID, parentResults)

	examples := buildExamples(parentResults)
	child := o.mutateChild(ctx, parent, module, examples)

	childResults, err := o.runner.RunMinibatch(ctx, child, minibatch)
	o.rolloutsUsed += len(childResults)
	if err != nil {
		return err
	}

	parentVec := AggregateResults(parentResults)
	childVec := AggregateResults(childResults)
	logging.GEPADebug("iter %d: parent_vec=%v child_vec=%v", o.iteration, parentVec, childVec)

	accepted := false
	exploration := false
	switch {
	case !Dominates(childVec, parentVec, o.cfg.DominanceEpsilon):
		// Occasional exploratory acceptance keeps diversity.
		if o.rng.Float64() < o.cfg.ExplorationProbability {
			logging.GEPA("iter %d: accepting child %s by exploration policy", o.iteration, child.ID)
			o.pool.Add(child)
			o.recordResults(child.ID, childResults)
			accepted, exploration = true, true
		} else {
			logging.GEPADebug("iter %d: child did not dominate parent on minibatch; rejected", o.iteration)
		}
	default:
		// Extended evaluation on a held-out Pareto sample. These rollouts
		// are costlier: both parent and child are re-run.
		sample := o.sampleTopics(paretoSet, extendedSampleSize(o.cfg.ParetoSetSize))

		parentPareto, err := o.runner.RunMinibatch(ctx, parent, sample)
		if err != nil {
			return err
		}
		childPareto, err := o.runner.RunMinibatch(ctx, child, sample)
		if err != nil {
			return err
		}
		o.rolloutsUsed += len(sample) * 2

		parentPVec := AggregateResults(parentPareto)
		childPVec := AggregateResults(childPareto)
		if Dominates(childPVec, parentPVec, o.cfg.DominanceEpsilon) {
			logging.GEPA("iter %d: accepting child %s", o.iteration, child.ID)
			o.pool.Add(child)
			o.recordResults(child.ID, childPareto)
			o.recordResults(parent.ID, parentPareto)
			accepted = true
		} else {
			logging.GEPADebug("iter %d: child failed on pareto set; rejected", o.iteration)
		}
	}

	return o.logIteration(parent, child, module, parentVec, childVec, examples, accepted, exploration)
}

// mutateChild builds the child candidate with one mutated module prompt.
func (o *Optimizer) mutateChild(ctx context.Context, parent *Candidate, module string, examples []scoring.FeedbackExample) *Candidate {
	child := parent.Child()
	child.Prompts[module] = o.mutator.Mutate(ctx, module, parent.Prompts[module], examples)
	return child
}

func (o *Optimizer) recordResults(candidateID string, results []*RolloutResult) {
	for _, r := range results {
		o.ledger.Record(candidateID, r.Topic, r.Scores)
		if o.store != nil {
			if err := o.store.RecordScores(o.runID, candidateID, r.Topic, r.Scores); err != nil {
				logging.Get(logging.CategoryGEPA).Warnw("failed to persist scores", "error", err)
			}
		}
	}
}

func (o *Optimizer) logIteration(parent, child *Candidate, module string, parentVec, childVec map[string]float64, examples []scoring.FeedbackExample, accepted, exploration bool) error {
	if o.journal == nil {
		return nil
	}
	return o.journal.Log(JournalRecord{
		Iteration:    o.iteration,
		RolloutsUsed: o.rolloutsUsed,
		ParentID:     parent.ID,
		ChildID:      child.ID,
		Module:       module,
		ParentScores: parentVec,
		ChildScores:  childVec,
		Accepted:     accepted,
		Exploration:  exploration,
		Examples:     examples,
		Traces:       child.Traces,
	})
}

func (o *Optimizer) sampleTopics(topics []string, n int) []string {
	if n > len(topics) {
		n = len(topics)
	}
	perm := o.rng.Perm(len(topics))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = topics[perm[i]]
	}
	return out
}

// extendedSampleSize is the held-out sample size for confirming minibatch
// dominance: a fifth of the Pareto set, but never fewer than 4 topics.
func extendedSampleSize(paretoSetSize int) int {
	n := paretoSetSize / 5
	if n < 4 {
		n = 4
	}
	return n
}

// buildExamples condenses minibatch results into the input/output/feedback
// triples the reflective meta-prompt consumes.
func buildExamples(results []*RolloutResult) []scoring.FeedbackExample {
	examples := make([]scoring.FeedbackExample, 0, len(results))
	for _, r := range results {
		passage := r.Outputs[generate.ModulePassage]
		summary := strings.ReplaceAll(truncate(passage, 200), "\n", " ")
		examples = append(examples, scoring.FeedbackExample{
			Input:    r.Topic,
			Output:   summary,
			Feedback: strings.Join(r.Feedback, "; "),
		})
	}
	return examples
}

// truncate shortens s to at most n runes, never splitting a multi-byte
// character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
