// Package retrieval provides rank-list fusion and cross-encoder reranking for
// hybrid search over dense and lexical signals.
package retrieval

import "sort"

// DefaultKRRF is the standard reciprocal rank fusion constant.
const DefaultKRRF = 60

// Candidate is one entry in a ranked retrieval list. Key identifies the
// underlying record; Payload carries the caller's record for later use.
type Candidate struct {
	Key     string
	Score   float64
	Payload any
}

// FuseRRF combines ranked lists with reciprocal rank fusion: a candidate at
// 1-based rank r in a list contributes 1/(kRRF + r) to its summed score.
// Candidates absent from a list contribute nothing from it. The result is
// sorted by score descending with key ascending as the deterministic
// tie-break, truncated to topN. Payload is taken from the candidate's first
// appearance across the input lists.
func FuseRRF(lists [][]Candidate, kRRF, topN int) []Candidate {
	if kRRF <= 0 {
		kRRF = DefaultKRRF
	}

	scores := make(map[string]float64)
	payloads := make(map[string]any)

	for _, list := range lists {
		for i, c := range list {
			scores[c.Key] += 1.0 / float64(kRRF+i+1)
			if _, ok := payloads[c.Key]; !ok {
				payloads[c.Key] = c.Payload
			}
		}
	}

	fused := make([]Candidate, 0, len(scores))
	for key, score := range scores {
		fused = append(fused, Candidate{Key: key, Score: score, Payload: payloads[key]})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].Key < fused[j].Key
	})

	if topN > 0 && len(fused) > topN {
		fused = fused[:topN]
	}
	return fused
}
