// Package evaluator defines the Provider interface for content evaluation
// backends.
//
// An evaluator judges what was said or written — coherence, vocabulary,
// grammar, task response — and returns rubric sub-scores with structured
// feedback. It never sees audio; delivery signals are scored separately and
// blended downstream.
//
// Implementations must be safe for concurrent use.
package evaluator

import (
	"context"
	"errors"

	"github.com/veslan/bandly/pkg/types"
)

// ErrMalformedResponse reports that the backend returned output that could
// not be parsed into a complete evaluation: invalid JSON, a missing criterion,
// or an out-of-range score. Callers should treat it as a failed evaluation
// and fall back to audio-only scoring, never as a zero score.
var ErrMalformedResponse = errors.New("evaluator: malformed backend response")

// SpeakingRequest asks for an evaluation of one spoken answer.
type SpeakingRequest struct {
	// Part is the IELTS speaking part (1, 2, or 3).
	Part int

	// Question is the prompt the candidate answered.
	Question string

	// Transcript is the recognised answer text.
	Transcript string
}

// WritingRequest asks for an evaluation of one essay.
type WritingRequest struct {
	// TaskNumber is the IELTS writing task (1 or 2).
	TaskNumber int

	// Prompt is the essay question.
	Prompt string

	// Essay is the candidate's full text.
	Essay string
}

// Provider is the abstraction over any content evaluation backend.
type Provider interface {
	// EvaluateSpeaking scores a transcript against the speaking rubric and
	// returns the detailed review. Returns ErrMalformedResponse when the
	// backend output cannot be validated.
	EvaluateSpeaking(ctx context.Context, req SpeakingRequest) (types.EnhancedReview, error)

	// EvaluateWriting scores an essay against the writing rubric.
	EvaluateWriting(ctx context.Context, req WritingRequest) (types.WritingEnhancedReview, error)
}
