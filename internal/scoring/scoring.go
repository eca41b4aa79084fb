// Package scoring implements the band estimation engine: transcript
// normalization, word error rate, delivery metric analysis, and the blending
// of audio-derived and evaluator-supplied sub-scores into an overall IELTS
// band.
//
// The package is deterministic and side-effect free. Every function is a pure
// computation over its inputs; callers own persistence and orchestration.
package scoring

import "errors"

// ErrInvalidInput reports a structurally invalid input: an out-of-range
// sub-score, a missing required criterion, or malformed word timings. It is
// the caller's bug, never a degraded-signal condition.
var ErrInvalidInput = errors.New("scoring: invalid input")

// ErrZeroDuration reports a delivery analysis request over a recording of
// zero or negative length. Rates and ratios are undefined for such input, so
// the analyzer refuses it rather than guessing.
var ErrZeroDuration = errors.New("scoring: audio duration must be positive")

// ErrEmptyReference reports a word error rate request whose reference text
// normalizes to zero tokens while the hypothesis does not. The rate would be
// a division by zero; the caller must decide what an absent reference means.
var ErrEmptyReference = errors.New("scoring: reference text has no words")
