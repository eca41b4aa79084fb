// Package mock provides a test double for the evaluator.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/veslan/bandly/pkg/provider/evaluator"
	"github.com/veslan/bandly/pkg/types"
)

// Provider is a mock implementation of evaluator.Provider.
type Provider struct {
	mu sync.Mutex

	// SpeakingReview is returned by EvaluateSpeaking when SpeakingErr is nil.
	SpeakingReview types.EnhancedReview

	// SpeakingErr, if non-nil, is returned from EvaluateSpeaking.
	SpeakingErr error

	// WritingReview is returned by EvaluateWriting when WritingErr is nil.
	WritingReview types.WritingEnhancedReview

	// WritingErr, if non-nil, is returned from EvaluateWriting.
	WritingErr error

	speakingCalls []evaluator.SpeakingRequest
	writingCalls  []evaluator.WritingRequest
}

var _ evaluator.Provider = (*Provider)(nil)

// EvaluateSpeaking records the call and returns the configured review or error.
func (p *Provider) EvaluateSpeaking(ctx context.Context, req evaluator.SpeakingRequest) (types.EnhancedReview, error) {
	if err := ctx.Err(); err != nil {
		return types.EnhancedReview{}, err
	}

	p.mu.Lock()
	p.speakingCalls = append(p.speakingCalls, req)
	p.mu.Unlock()

	if p.SpeakingErr != nil {
		return types.EnhancedReview{}, p.SpeakingErr
	}
	return p.SpeakingReview, nil
}

// EvaluateWriting records the call and returns the configured review or error.
func (p *Provider) EvaluateWriting(ctx context.Context, req evaluator.WritingRequest) (types.WritingEnhancedReview, error) {
	if err := ctx.Err(); err != nil {
		return types.WritingEnhancedReview{}, err
	}

	p.mu.Lock()
	p.writingCalls = append(p.writingCalls, req)
	p.mu.Unlock()

	if p.WritingErr != nil {
		return types.WritingEnhancedReview{}, p.WritingErr
	}
	return p.WritingReview, nil
}

// SpeakingCalls returns a copy of all recorded EvaluateSpeaking requests.
func (p *Provider) SpeakingCalls() []evaluator.SpeakingRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]evaluator.SpeakingRequest, len(p.speakingCalls))
	copy(out, p.speakingCalls)
	return out
}

// WritingCalls returns a copy of all recorded EvaluateWriting requests.
func (p *Provider) WritingCalls() []evaluator.WritingRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]evaluator.WritingRequest, len(p.writingCalls))
	copy(out, p.writingCalls)
	return out
}
