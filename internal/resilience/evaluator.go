package resilience

import (
	"context"

	"github.com/veslan/bandly/pkg/provider/evaluator"
	"github.com/veslan/bandly/pkg/types"
)

// Compile-time assertion that Evaluator satisfies evaluator.Provider.
var _ evaluator.Provider = (*Evaluator)(nil)

// Evaluator decorates an evaluator.Provider with retries. Malformed responses
// are retried too: a model that emitted broken JSON once usually produces a
// valid object on the next attempt. Context cancellation always stops the
// loop.
type Evaluator struct {
	inner evaluator.Provider
	cfg   RetryConfig
}

// NewEvaluator wraps inner with the given retry configuration.
func NewEvaluator(inner evaluator.Provider, cfg RetryConfig) *Evaluator {
	return &Evaluator{inner: inner, cfg: cfg}
}

// EvaluateSpeaking implements evaluator.Provider.
func (e *Evaluator) EvaluateSpeaking(ctx context.Context, req evaluator.SpeakingRequest) (types.EnhancedReview, error) {
	return Retry(ctx, e.cfg, func() (types.EnhancedReview, error) {
		return e.inner.EvaluateSpeaking(ctx, req)
	})
}

// EvaluateWriting implements evaluator.Provider.
func (e *Evaluator) EvaluateWriting(ctx context.Context, req evaluator.WritingRequest) (types.WritingEnhancedReview, error) {
	return Retry(ctx, e.cfg, func() (types.WritingEnhancedReview, error) {
		return e.inner.EvaluateWriting(ctx, req)
	})
}
