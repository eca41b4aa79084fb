package scoring

import (
	"github.com/antzucaro/matchr"
)

// Phonetic comparison thresholds. A hypothesis word counts as a
// mispronunciation candidate for a reference word when the spellings are
// close enough to be the same intended word but the phonetic encodings
// diverge, or when the encodings nearly agree while the spellings differ.
const (
	spellingSimilarityMin = 0.70
	phoneticSimilarityMin = 0.85
)

// PronunciationHint pairs a word the candidate was expected to say with the
// similar-sounding word the recognizer heard instead.
type PronunciationHint struct {
	// Expected is the reference word.
	Expected string

	// Heard is the recognized word the candidate appears to have produced.
	Heard string
}

// PronunciationHints compares a reference text with the recognized transcript
// and flags words that were likely mispronounced: reference words missing
// from the transcript whose closest transcript-only word sounds or is spelled
// nearly the same. Exact matches anywhere in the transcript are never
// flagged, so word order does not matter.
//
// The hints are heuristic. They feed the review presented to the candidate,
// never the band computation.
func PronunciationHints(reference, hypothesis string) []PronunciationHint {
	refTokens := Tokens(reference)
	hypTokens := Tokens(hypothesis)

	hypSet := make(map[string]bool, len(hypTokens))
	for _, t := range hypTokens {
		hypSet[t] = true
	}
	refSet := make(map[string]bool, len(refTokens))
	for _, t := range refTokens {
		refSet[t] = true
	}

	// Transcript words with no exact counterpart in the reference are the
	// candidate pool for what a missing reference word came out as.
	var extras []string
	seen := make(map[string]bool)
	for _, t := range hypTokens {
		if !refSet[t] && !seen[t] {
			extras = append(extras, t)
			seen[t] = true
		}
	}

	var hints []PronunciationHint
	flagged := make(map[string]bool)
	for _, ref := range refTokens {
		if hypSet[ref] || flagged[ref] {
			continue
		}
		for _, heard := range extras {
			if phoneticallyConfusable(ref, heard) {
				hints = append(hints, PronunciationHint{Expected: ref, Heard: heard})
				flagged[ref] = true
				break
			}
		}
	}
	return hints
}

// phoneticallyConfusable reports whether two distinct words are close enough
// in sound or spelling that one is plausibly a mispronunciation of the other.
func phoneticallyConfusable(a, b string) bool {
	spelling := matchr.JaroWinkler(a, b, false)
	if spelling < spellingSimilarityMin {
		return false
	}

	aPrimary, aSecondary := matchr.DoubleMetaphone(a)
	bPrimary, bSecondary := matchr.DoubleMetaphone(b)
	if aPrimary == bPrimary || (aSecondary != "" && aSecondary == bSecondary) {
		return true
	}
	return matchr.JaroWinkler(aPrimary, bPrimary, false) >= phoneticSimilarityMin
}
