package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/veslan/bandly/internal/observe"
	"github.com/veslan/bandly/internal/scoring"
	"github.com/veslan/bandly/pkg/provider/evaluator"
	"github.com/veslan/bandly/pkg/types"
)

// WritingInput is one essay ready for scoring.
type WritingInput struct {
	SessionID uuid.UUID

	// Task is the writing task number (1 or 2).
	Task   int
	Topic  string
	Prompt string
	Essay  string

	// Source identifies where the prompt came from.
	Source string
}

// EvaluateWriting scores one essay and persists the attempt. Writing has no
// audio fallback: without a content evaluator it fails with [ErrNoEvaluator].
func (e *Evaluator) EvaluateWriting(ctx context.Context, in WritingInput) (_ Outcome, err error) {
	ctx, span := observe.StartSpan(ctx, "session.writing",
		trace.WithAttributes(attribute.Int("task", in.Task)),
	)
	defer func() { observe.EndSpan(span, err) }()

	if e.eval == nil {
		return Outcome{}, ErrNoEvaluator
	}

	start := time.Now()
	review, err := e.eval.EvaluateWriting(ctx, evaluator.WritingRequest{
		TaskNumber: in.Task,
		Prompt:     in.Prompt,
		Essay:      in.Essay,
	})
	e.metrics.EvaluationDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		e.metrics.RecordProviderRequest(ctx, e.cfg.EvaluatorName, "evaluator", "error")
		e.metrics.RecordProviderError(ctx, e.cfg.EvaluatorName, "evaluator")
		return Outcome{}, fmt.Errorf("session: evaluate essay: %w", err)
	}
	e.metrics.RecordProviderRequest(ctx, e.cfg.EvaluatorName, "evaluator", "ok")

	result, err := scoring.EstimateWritingBand(review.WritingEvaluation)
	if err != nil {
		return Outcome{}, fmt.Errorf("session: estimate band: %w", err)
	}

	out := Outcome{
		ParagraphFeedback: review.ParagraphFeedback,
		Attempt: types.Attempt{
			ID:                 uuid.New(),
			SessionID:          in.SessionID,
			Timestamp:          time.Now().UTC(),
			Topic:              in.Topic,
			QuestionText:       in.Prompt,
			Transcript:         in.Essay,
			Result:             result,
			ExaminerFeedback:   review.OverallFeedback,
			GrammarCorrections: review.GrammarCorrections,
			VocabularyUpgrades: review.VocabularyUpgrades,
			ImprovementTips:    review.ImprovementPriorities,
			Strengths:          review.Strengths,
			Source:             in.Source,
		},
	}

	if err := e.repo.SaveAttempt(ctx, out.Attempt); err != nil {
		return Outcome{}, fmt.Errorf("session: save attempt: %w", err)
	}
	e.metrics.RecordAttempt(ctx, string(types.ModeWriting), "writing")
	return out, nil
}
