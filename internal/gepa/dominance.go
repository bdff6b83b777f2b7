package gepa

// Dominates reports whether score vector a Pareto-dominates b with
// tolerance eps: over the union of objective names (missing entries default
// to 0), every objective of a is at least b's minus eps, and at least one
// objective of a exceeds b's by more than eps. The eps slack prevents
// noise-driven false dominance on near-tied objectives.
func Dominates(a, b map[string]float64, eps float64) bool {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	if len(keys) == 0 {
		return false
	}

	geAll := true
	gtSome := false
	for k := range keys {
		av, bv := a[k], b[k]
		if av < bv-eps {
			geAll = false
			break
		}
		if av > bv+eps {
			gtSome = true
		}
	}
	return geAll && gtSome
}

// AggregateScores averages per-topic score vectors into one vector: the
// arithmetic mean per objective, with objectives absent from a given
// topic's result counted as 0.
func AggregateScores(vectors []map[string]float64) map[string]float64 {
	if len(vectors) == 0 {
		return map[string]float64{}
	}
	keys := make(map[string]struct{})
	for _, v := range vectors {
		for k := range v {
			keys[k] = struct{}{}
		}
	}
	agg := make(map[string]float64, len(keys))
	n := float64(len(vectors))
	for k := range keys {
		var sum float64
		for _, v := range vectors {
			sum += v[k]
		}
		agg[k] = sum / n
	}
	return agg
}

// ScoreLedger records per-candidate, per-topic score vectors across the
// whole run.
type ScoreLedger map[string]map[string]map[string]float64

// Record stores one topic's score vector for a candidate, replacing any
// earlier entry for the same topic.
func (l ScoreLedger) Record(candidateID, topic string, scores map[string]float64) {
	byTopic, ok := l[candidateID]
	if !ok {
		byTopic = make(map[string]map[string]float64)
		l[candidateID] = byTopic
	}
	byTopic[topic] = cloneScores(scores)
}

// Aggregate returns the mean score vector across all topics recorded for
// candidateID.
func (l ScoreLedger) Aggregate(candidateID string) map[string]float64 {
	byTopic := l[candidateID]
	if len(byTopic) == 0 {
		return map[string]float64{}
	}
	vectors := make([]map[string]float64, 0, len(byTopic))
	for _, v := range byTopic {
		vectors = append(vectors, v)
	}
	return AggregateScores(vectors)
}

// ParetoFront returns the candidate identifiers whose aggregate vectors are
// not dominated by any other candidate's aggregate. Quadratic in the number
// of candidates, which is fine for the small bounded pool.
func (l ScoreLedger) ParetoFront(eps float64) []string {
	aggs := make(map[string]map[string]float64, len(l))
	for cid := range l {
		aggs[cid] = l.Aggregate(cid)
	}

	var front []string
	for a, aVec := range aggs {
		dominated := false
		for b, bVec := range aggs {
			if a == b {
				continue
			}
			if Dominates(bVec, aVec, eps) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, a)
		}
	}
	return front
}
