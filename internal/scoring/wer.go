package scoring

// WordErrorRate computes the token-level word error rate between a reference
// text (what should have been said) and a hypothesis (what the recognizer
// heard). Both texts are normalized before comparison, so punctuation, case,
// and contraction spelling never count as errors.
//
// The rate is the Levenshtein edit distance over tokens divided by the
// reference token count. It is not capped: a hypothesis much longer than the
// reference can exceed 1.0, and the band computation caps it there instead.
//
// Two empty texts compare perfectly (0.0). An empty reference against a
// non-empty hypothesis returns ErrEmptyReference.
func WordErrorRate(reference, hypothesis string) (float64, error) {
	ref := Tokens(reference)
	hyp := Tokens(hypothesis)

	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0, nil
		}
		return 0, ErrEmptyReference
	}

	return float64(editDistance(ref, hyp)) / float64(len(ref)), nil
}

// editDistance is the token-level Levenshtein distance with unit costs,
// computed with a two-row DP table.
func editDistance(ref, hyp []string) int {
	prev := make([]int, len(hyp)+1)
	curr := make([]int, len(hyp)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ref); i++ {
		curr[0] = i
		for j := 1; j <= len(hyp); j++ {
			if ref[i-1] == hyp[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j-1], min(prev[j], curr[j-1]))
		}
		prev, curr = curr, prev
	}
	return prev[len(hyp)]
}
