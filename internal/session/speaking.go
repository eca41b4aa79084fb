package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/veslan/bandly/internal/observe"
	"github.com/veslan/bandly/internal/scoring"
	"github.com/veslan/bandly/pkg/provider/evaluator"
	"github.com/veslan/bandly/pkg/provider/stt"
	"github.com/veslan/bandly/pkg/provider/vad"
	"github.com/veslan/bandly/pkg/types"
)

// SpeakingInput is one spoken answer ready for scoring.
type SpeakingInput struct {
	SessionID uuid.UUID
	Mode      types.Mode

	// Part is the IELTS speaking part (1, 2, or 3).
	Part     int
	Topic    string
	Question string

	// Reference is an optional model answer. When present it feeds the
	// word-error-rate accuracy criterion of the audio-only path and the
	// pronunciation hints.
	Reference string

	// PCM is the raw little-endian 16-bit recording.
	PCM []byte

	// Source identifies where the question came from.
	Source string
}

// EvaluateSpeaking runs the full speaking pipeline on one recording and
// persists the scored attempt. When the content evaluator fails, the attempt
// is scored on delivery metrics alone and the outcome carries the failure in
// EvalErr; transcription and delivery-analysis failures are hard errors.
func (e *Evaluator) EvaluateSpeaking(ctx context.Context, in SpeakingInput) (_ Outcome, err error) {
	ctx, span := observe.StartSpan(ctx, "session.speaking",
		trace.WithAttributes(
			attribute.Int("part", in.Part),
			attribute.String("mode", string(in.Mode)),
		))
	defer func() { observe.EndSpan(span, err) }()

	start := time.Now()
	res, err := e.stt.Transcribe(ctx, in.PCM, stt.Config{
		SampleRate: e.cfg.SampleRate,
		Channels:   e.cfg.Channels,
		Language:   e.cfg.Language,
	})
	e.metrics.TranscriptionDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		e.metrics.RecordProviderRequest(ctx, e.cfg.STTName, "stt", "error")
		e.metrics.RecordProviderError(ctx, e.cfg.STTName, "stt")
		return Outcome{}, fmt.Errorf("session: transcribe: %w", err)
	}
	e.metrics.RecordProviderRequest(ctx, e.cfg.STTName, "stt", "ok")

	silences, err := e.vad.DetectSilence(in.PCM, vad.Config{
		SampleRate: e.cfg.SampleRate,
		Channels:   e.cfg.Channels,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("session: detect silence: %w", err)
	}

	wordCount := len(strings.Fields(res.Text))
	metrics, err := scoring.AnalyzeDelivery(res.Duration, wordCount, res.Words, silences)
	if err != nil {
		return Outcome{}, fmt.Errorf("session: analyse delivery: %w", err)
	}

	out := Outcome{
		Fillers:   scoring.DetectFillers(res.Text),
		AudioOnly: e.eval == nil,
	}
	if in.Reference != "" {
		out.Hints = scoring.PronunciationHints(in.Reference, res.Text)
	}

	var review types.EnhancedReview
	if e.eval != nil {
		evalStart := time.Now()
		review, err = e.eval.EvaluateSpeaking(ctx, evaluator.SpeakingRequest{
			Part:       in.Part,
			Question:   in.Question,
			Transcript: res.Text,
		})
		e.metrics.EvaluationDuration.Record(ctx, time.Since(evalStart).Seconds())
		switch {
		case err == nil:
			e.metrics.RecordProviderRequest(ctx, e.cfg.EvaluatorName, "evaluator", "ok")
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return Outcome{}, fmt.Errorf("session: evaluate content: %w", err)
		default:
			// Degrade to audio-only scoring rather than losing the attempt.
			e.metrics.RecordProviderRequest(ctx, e.cfg.EvaluatorName, "evaluator", "error")
			e.metrics.RecordProviderError(ctx, e.cfg.EvaluatorName, "evaluator")
			observe.Logger(ctx).Warn("content evaluation failed, scoring on audio alone",
				"error", err,
				"part", in.Part,
			)
			out.AudioOnly = true
			out.EvalErr = err
		}
	}

	var result types.BandResult
	if out.AudioOnly {
		reference := in.Reference
		if reference == "" {
			// No model answer to compare against: score the transcript
			// against itself so accuracy carries no penalty.
			reference = res.Text
		}
		wer, werErr := scoring.WordErrorRate(reference, res.Text)
		if werErr != nil {
			return Outcome{}, fmt.Errorf("session: word error rate: %w", werErr)
		}
		result, err = scoring.EstimateAudioBand(wer, metrics)
	} else {
		result, err = scoring.EstimateBlendedBand(metrics, review.ContentEvaluation)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("session: estimate band: %w", err)
	}

	out.Attempt = types.Attempt{
		ID:           uuid.New(),
		SessionID:    in.SessionID,
		Timestamp:    time.Now().UTC(),
		Part:         in.Part,
		Topic:        in.Topic,
		QuestionText: in.Question,
		Transcript:   res.Text,
		Metrics:      &metrics,
		Result:       result,
		Source:       in.Source,
	}
	if !out.AudioOnly {
		out.Attempt.ExaminerFeedback = review.OverallFeedback
		out.Attempt.GrammarCorrections = review.GrammarCorrections
		out.Attempt.VocabularyUpgrades = review.VocabularyUpgrades
		out.Attempt.ImprovementTips = review.ImprovementPriorities
		out.Attempt.Strengths = review.Strengths
		out.Attempt.PronunciationWarnings = review.PronunciationWarnings
	}

	if err := e.repo.SaveAttempt(ctx, out.Attempt); err != nil {
		return Outcome{}, fmt.Errorf("session: save attempt: %w", err)
	}

	path := "blended"
	if out.AudioOnly {
		path = "audio_only"
	}
	e.metrics.RecordAttempt(ctx, string(in.Mode), path)
	return out, nil
}
