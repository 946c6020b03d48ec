package feed

import "sort"

// scoredCandidate pairs a candidate with its score and its index in the
// candidate pool. The index carries the pool's ordering contract (event
// date ASC for personalized, creation time DESC for bridging) through the
// sort as an explicit tie-break.
type scoredCandidate struct {
	Candidate
	score int
	index int
}

// rankCandidates sorts scored candidates by score DESC, pool index ASC.
// The composite key makes the ordering reproducible regardless of whether
// the underlying sort is stable.
func rankCandidates(scored []scoredCandidate) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].index < scored[j].index
	})
}
