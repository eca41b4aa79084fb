package session

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// mockTestConcurrency caps parallel attempt evaluations so a full test does
// not fan out every recording to the providers at once.
const mockTestConcurrency = 3

// EvaluateMockTest scores every recording of a completed mock test
// concurrently and returns the outcomes in input order. A single failure
// cancels the remaining evaluations and fails the whole batch.
func (e *Evaluator) EvaluateMockTest(ctx context.Context, inputs []SpeakingInput) ([]Outcome, error) {
	e.metrics.ActiveSessions.Add(ctx, 1)
	defer e.metrics.ActiveSessions.Add(ctx, -1)

	outcomes := make([]Outcome, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(mockTestConcurrency)
	for i, in := range inputs {
		g.Go(func() error {
			out, err := e.EvaluateSpeaking(ctx, in)
			if err != nil {
				return fmt.Errorf("part %d question %d: %w", in.Part, i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("session: mock test: %w", err)
	}
	return outcomes, nil
}
