package search

import "sort"

// minMaxEpsilon guards the normalization divisor. Spans below it are
// treated as degenerate and the whole batch maps to zero.
const minMaxEpsilon = 1e-9

// denseNoiseFloor is the minimum similarity for a chunk to count as a
// dense hit. Hash-feature embeddings give unrelated texts small nonzero
// cosine from index collisions; below the floor that is noise, not a
// candidate.
const denseNoiseFloor = 0.15

// Candidate is one fused scoring result, identified by corpus ordinal.
type Candidate struct {
	Ord   int
	Score float64
}

// Fuse combines full per-chunk lexical and dense score vectors into a
// ranked candidate list. The candidate set is the union of the top
// lexicalK lexical positions and the top vectorK dense positions; each
// score array is min-max normalized over the candidates only, then
// blended as alpha*dense + (1-alpha)*lexical. Output is sorted by fused
// score descending, ties keeping first-seen candidate order, and is at
// most lexicalK+vectorK long.
func Fuse(lexical, dense []float64, lexicalK, vectorK int, alpha float64) []Candidate {
	if len(lexical) == 0 {
		return nil
	}

	lexTop := topIndices(lexical, lexicalK, 0)
	denseTop := topIndices(dense, vectorK, denseNoiseFloor)

	denseSet := make(map[int]struct{}, len(denseTop))
	for _, ord := range denseTop {
		denseSet[ord] = struct{}{}
	}

	// Union, first-seen order: lexical window first, then unseen dense
	// positions. Determinism here fixes tie order downstream.
	seen := make(map[int]struct{}, len(lexTop)+len(denseTop))
	ords := make([]int, 0, len(lexTop)+len(denseTop))
	for _, ord := range lexTop {
		if _, dup := seen[ord]; !dup {
			seen[ord] = struct{}{}
			ords = append(ords, ord)
		}
	}
	for _, ord := range denseTop {
		if _, dup := seen[ord]; !dup {
			seen[ord] = struct{}{}
			ords = append(ords, ord)
		}
	}

	rawLex := make([]float64, len(ords))
	rawDense := make([]float64, len(ords))
	for i, ord := range ords {
		rawLex[i] = lexical[ord]
		// Dense raw score counts only inside the dense window.
		if _, ok := denseSet[ord]; ok {
			rawDense[i] = dense[ord]
		}
	}

	if len(ords) == 0 {
		return nil
	}

	normLex := minMaxNormalize(rawLex)
	normDense := minMaxNormalize(rawDense)

	candidates := make([]Candidate, len(ords))
	for i, ord := range ords {
		candidates[i] = Candidate{
			Ord:   ord,
			Score: alpha*normDense[i] + (1-alpha)*normLex[i],
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// topIndices returns the positions of the k highest scores above floor,
// descending, ties broken by lower position first. A score at or below
// the floor is no hit at all, never a candidate.
func topIndices(scores []float64, k int, floor float64) []int {
	if k <= 0 || len(scores) == 0 {
		return nil
	}
	idx := make([]int, 0, len(scores))
	for i, s := range scores {
		if s > floor {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}

// minMaxNormalize maps scores onto [0,1] over their own min-max span. A
// degenerate span (all values equal, within epsilon) maps everything to
// zero rather than dividing by the near-zero width.
func minMaxNormalize(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if max-min < minMaxEpsilon {
		return out
	}
	for i, s := range scores {
		out[i] = (s - min) / (max - min)
	}
	return out
}
