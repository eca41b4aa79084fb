// Package session orchestrates one practice attempt end to end: transcribe
// the recording, analyse delivery, evaluate content, blend the band, and
// persist the result. The decision to fall back to audio-only scoring when
// the content evaluator fails lives here, not in the scoring engine.
package session

import (
	"errors"

	"github.com/veslan/bandly/internal/observe"
	"github.com/veslan/bandly/internal/scoring"
	"github.com/veslan/bandly/pkg/provider/evaluator"
	"github.com/veslan/bandly/pkg/provider/stt"
	"github.com/veslan/bandly/pkg/provider/vad"
	"github.com/veslan/bandly/pkg/store"
	"github.com/veslan/bandly/pkg/types"
)

// ErrNoEvaluator is returned when an operation requires a content evaluator
// but none is configured. Writing attempts cannot be scored on audio alone.
var ErrNoEvaluator = errors.New("session: no content evaluator configured")

// Config carries the audio parameters and provider names the orchestrator
// needs. Provider names only label metrics; they do not select providers.
type Config struct {
	SampleRate int
	Channels   int
	Language   string

	STTName       string
	EvaluatorName string
}

// Evaluator runs the full attempt pipeline. The content evaluator is
// optional: when nil, every speaking attempt is scored on audio alone and
// writing attempts fail with [ErrNoEvaluator].
type Evaluator struct {
	stt     stt.Provider
	vad     vad.Detector
	eval    evaluator.Provider
	repo    store.Repository
	metrics *observe.Metrics
	cfg     Config
}

// New creates an attempt Evaluator. stt, vad, repo, and metrics are required;
// eval may be nil.
func New(sttProvider stt.Provider, detector vad.Detector, eval evaluator.Provider, repo store.Repository, metrics *observe.Metrics, cfg Config) *Evaluator {
	return &Evaluator{
		stt:     sttProvider,
		vad:     detector,
		eval:    eval,
		repo:    repo,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Outcome is the full result of one scored attempt: the persisted record plus
// the transient feedback that is shown once but not stored.
type Outcome struct {
	Attempt types.Attempt

	// Fillers reports filler-word usage in the transcript. Speaking only.
	Fillers scoring.FillerReport

	// Hints lists likely mispronunciations found by comparing the transcript
	// against the reference answer. Empty without a reference.
	Hints []scoring.PronunciationHint

	// ParagraphFeedback carries the evaluator's per-paragraph notes.
	// Writing only.
	ParagraphFeedback []string

	// AudioOnly reports that the band was estimated from delivery metrics
	// alone. EvalErr holds the evaluator failure that forced the fallback,
	// nil when no evaluator was configured to begin with.
	AudioOnly bool
	EvalErr   error
}
