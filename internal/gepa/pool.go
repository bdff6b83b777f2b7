package gepa

import (
	"fmt"
	"math/rand"

	"ieltsforge/internal/logging"
)

// seedVariations are the synthetic prompt suffixes cycled across the
// initial population to start the search from diverse points.
var seedVariations = []string{
	"\nEnsure ~900 words.",
	"\nUse formal academic tone; avoid contractions.",
	"\nProvide inline citations for factual claims.",
}

const minPoolVariation = "\n(Variation: add connective markers.)"

// Pool holds a bounded set of candidates. When capacity is exceeded the
// candidate with the lowest designated-objective score is evicted, or a
// random one when no scores exist yet.
type Pool struct {
	basePrompts   map[string]string
	candidates    map[string]*Candidate
	maxSize       int
	trimObjective string
	rng           *rand.Rand
}

// NewPool creates a pool seeded with an initial diverse population built
// from basePrompts.
func NewPool(basePrompts map[string]string, maxSize, initPopulation int, trimObjective string, rng *rand.Rand) *Pool {
	p := &Pool{
		basePrompts:   clonePrompts(basePrompts),
		candidates:    make(map[string]*Candidate),
		maxSize:       maxSize,
		trimObjective: trimObjective,
		rng:           rng,
	}
	for i := 0; i < initPopulation; i++ {
		c := NewCandidate(basePrompts)
		c.Meta["seed"] = fmt.Sprintf("init_%d", i)
		suffix := seedVariations[i%len(seedVariations)]
		for m, prompt := range c.Prompts {
			c.Prompts[m] = prompt + suffix
		}
		p.Add(c)
	}
	return p
}

// Add inserts or replaces a candidate by identifier and trims the pool
// back under capacity.
func (p *Pool) Add(c *Candidate) {
	p.candidates[c.ID] = c
	p.trim()
}

// Remove evicts a candidate by identifier.
func (p *Pool) Remove(id string) {
	delete(p.candidates, id)
}

// Size returns the current candidate count.
func (p *Pool) Size() int { return len(p.candidates) }

// List returns a snapshot of the current candidates. Order carries no
// meaning.
func (p *Pool) List() []*Candidate {
	out := make([]*Candidate, 0, len(p.candidates))
	for _, c := range p.candidates {
		out = append(out, c)
	}
	return out
}

func (p *Pool) trim() {
	for len(p.candidates) > p.maxSize {
		victim := ""
		lowest := 0.0
		scored := false
		for id, c := range p.candidates {
			s, ok := c.Scores[p.trimObjective]
			if !ok {
				s = 0.0
			} else {
				scored = true
			}
			if victim == "" || s < lowest {
				victim = id
				lowest = s
			}
		}
		if !scored {
			// No recorded scores anywhere; evict uniformly at random.
			ids := make([]string, 0, len(p.candidates))
			for id := range p.candidates {
				ids = append(ids, id)
			}
			victim = ids[p.rng.Intn(len(ids))]
		}
		logging.GEPADebug("evicting candidate %s (pool %d > cap %d)", victim, len(p.candidates), p.maxSize)
		delete(p.candidates, victim)
	}
}

// EnsureMin tops the pool back up to n candidates so the search cannot
// collapse: existing candidates are cloned with a small synthetic prompt
// variation, or fresh candidates are built from the base prompts when the
// pool is empty.
func (p *Pool) EnsureMin(n int) []*Candidate {
	var added []*Candidate
	for len(p.candidates) < n {
		var c *Candidate
		if len(p.candidates) > 0 {
			parent := p.randomCandidate()
			c = parent.Child()
			for m, prompt := range c.Prompts {
				c.Prompts[m] = prompt + minPoolVariation
			}
		} else {
			c = NewCandidate(p.basePrompts)
		}
		p.Add(c)
		added = append(added, c)
	}
	return added
}

// RandomCandidate picks a uniformly random candidate. Panics on an empty
// pool; callers maintain the minimum-size invariant.
func (p *Pool) RandomCandidate() *Candidate {
	return p.randomCandidate()
}

func (p *Pool) randomCandidate() *Candidate {
	ids := make([]string, 0, len(p.candidates))
	for id := range p.candidates {
		ids = append(ids, id)
	}
	return p.candidates[ids[p.rng.Intn(len(ids))]]
}

// Best returns the candidate with the highest mean of its last recorded
// scores. When no candidate has scores a random one is returned, or nil on
// an empty pool.
func (p *Pool) Best() *Candidate {
	var best *Candidate
	bestScore := 0.0
	for _, c := range p.candidates {
		mean, ok := c.MeanScore()
		if !ok {
			continue
		}
		if best == nil || mean > bestScore {
			best = c
			bestScore = mean
		}
	}
	if best == nil {
		if len(p.candidates) == 0 {
			return nil
		}
		logging.GEPA("no candidate had scores; returning a random one")
		return p.randomCandidate()
	}
	logging.GEPA("best candidate %s with mean score %.2f", best.ID, bestScore)
	return best
}
