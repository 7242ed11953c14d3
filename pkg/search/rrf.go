package search

import "sort"

// fuse combines the lexical and vector candidate-id lists into RRF-fused
// scores, per spec.md §4.4 step 4: each list contributes 1/(RRFK+r) at
// 1-based rank r; a candidate's score is the sum across the lists it
// appears in. Ties are broken by the smaller of the two ranks, then by
// node_id ascending, for determinism.
func fuse(lexical, vector []string) (ordered []string, scores map[string]float64) {
	scores = make(map[string]float64, len(lexical)+len(vector))
	bestRank := make(map[string]int, len(lexical)+len(vector))

	contribute := func(ids []string) {
		for i, id := range ids {
			rank := i + 1
			scores[id] += 1.0 / float64(RRFK+rank)
			if best, ok := bestRank[id]; !ok || rank < best {
				bestRank[id] = rank
			}
		}
	}
	contribute(lexical)
	contribute(vector)

	ordered = make([]string, 0, len(scores))
	for id := range scores {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		if bestRank[a] != bestRank[b] {
			return bestRank[a] < bestRank[b]
		}
		return a < b
	})
	return ordered, scores
}
