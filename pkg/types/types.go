// Package types defines the shared types used across all bandly packages.
//
// These types form the lingua franca between providers, the scoring engine,
// the history aggregator, and the store. They are intentionally minimal — each
// package defines its own domain types, but cross-cutting data structures live
// here to avoid circular imports.
package types

import (
	"time"

	"github.com/google/uuid"
)

// TimedWord is a single recognised token from a speech-to-text provider,
// with word-level timing and an optional recognition confidence.
type TimedWord struct {
	// Text is the recognised word.
	Text string

	// Start and End bound the word within the recording, relative to the
	// start of the audio. Non-decreasing across a transcript.
	Start time.Duration
	End   time.Duration

	// Confidence is the model-reported probability (0.0–1.0) that the word
	// was recognised correctly. Only meaningful when HasConfidence is true.
	Confidence float64

	// HasConfidence reports whether the provider supplied a confidence for
	// this word. Words without one carry zero weight in aggregate confidence
	// — they are excluded from the mean, not counted as zero.
	HasConfidence bool
}

// Interval is a time span [Start, End) within a recording.
// Used for externally detected silence regions.
type Interval struct {
	Start time.Duration
	End   time.Duration
}

// Seconds returns the interval length in seconds.
func (iv Interval) Seconds() float64 {
	return (iv.End - iv.Start).Seconds()
}

// AudioMetrics holds the delivery metrics derived from one audio capture and
// its transcript. Immutable once computed; owned exclusively by the attempt it
// was computed for.
type AudioMetrics struct {
	// Duration is the total length of the recording. Always > 0 for a valid
	// metrics value.
	Duration time.Duration

	// SpeechRateWPM is transcript word count / (duration in minutes).
	SpeechRateWPM float64

	// PauseRatio is the fraction of the recording classified as silence,
	// in [0, 1].
	PauseRatio float64

	// PronunciationConfidence is the mean recognition confidence over all
	// words that carried one, in [0, 1]. Zero when ConfidenceSignal is false.
	PronunciationConfidence float64

	// ConfidenceSignal reports whether any word carried a confidence value.
	// When false, PronunciationConfidence is 0.0 by convention and means
	// "no signal", not "unintelligible".
	ConfidenceSignal bool
}

// Criterion names one IELTS scoring dimension.
type Criterion string

const (
	// CriterionFluency is Fluency & Coherence.
	CriterionFluency Criterion = "fluency_coherence"

	// CriterionLexical is Lexical Resource.
	CriterionLexical Criterion = "lexical_resource"

	// CriterionGrammar is Grammatical Range & Accuracy.
	CriterionGrammar Criterion = "grammatical_range"

	// CriterionPronunciation is Pronunciation (speaking only).
	CriterionPronunciation Criterion = "pronunciation"

	// CriterionTask is Task Achievement / Task Response (writing only).
	CriterionTask Criterion = "task_achievement"

	// CriterionAccuracy is Speech Accuracy, the transcript-vs-reference
	// fidelity criterion. Produced only by the audio-only scoring path,
	// where no content evaluation is available.
	CriterionAccuracy Criterion = "speech_accuracy"
)

// SpeakingCriteria lists the four speaking criteria in display order.
var SpeakingCriteria = []Criterion{
	CriterionFluency,
	CriterionLexical,
	CriterionGrammar,
	CriterionPronunciation,
}

// WritingCriteria lists the four writing criteria in display order.
var WritingCriteria = []Criterion{
	CriterionTask,
	CriterionFluency,
	CriterionLexical,
	CriterionGrammar,
}

// String returns the human-readable criterion label.
func (c Criterion) String() string {
	switch c {
	case CriterionFluency:
		return "Fluency & Coherence"
	case CriterionLexical:
		return "Lexical Resource"
	case CriterionGrammar:
		return "Grammatical Range & Accuracy"
	case CriterionPronunciation:
		return "Pronunciation"
	case CriterionTask:
		return "Task Achievement"
	case CriterionAccuracy:
		return "Speech Accuracy"
	default:
		return string(c)
	}
}

// CriterionScore is one rubric sub-score with its examiner feedback.
// Score is on the 0.0–9.0 band scale; 0.5 granularity is expected from
// evaluators but not enforced at this layer.
type CriterionScore struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// BandResult is the fused scoring outcome for one attempt: the per-criterion
// scores that were actually computed plus the overall band.
//
// Invariant: Overall is always the rounded-and-clamped mean of the criteria
// present in Criteria — missing criteria never contribute as zeros.
type BandResult struct {
	// Criteria maps each scored criterion to its sub-score. Mode-dependent:
	// the audio-only path produces three entries, the blended and writing
	// paths four.
	Criteria map[Criterion]CriterionScore

	// Overall is the blended band, clamped to [4.0, 9.0] and rounded to the
	// nearest 0.5.
	Overall float64
}

// Mode identifies the practice mode an attempt or session was produced in.
type Mode string

const (
	ModeInterview Mode = "interview"
	ModeMockTest  Mode = "mock_test"
	ModePractice  Mode = "practice"
	ModeWriting   Mode = "writing"
)

// IsValid reports whether m is a recognised mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeInterview, ModeMockTest, ModePractice, ModeWriting:
		return true
	}
	return false
}

// Attempt is one completed, scored practice exercise. Immutable after
// creation; owned by its parent Session.
type Attempt struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Timestamp time.Time

	// Part is the IELTS speaking part (1, 2, or 3); 0 for writing attempts.
	Part int

	Topic        string
	QuestionText string

	// Transcript is the recognised speech for speaking modes, or the essay
	// text for writing mode.
	Transcript string

	// Metrics holds the delivery metrics for speaking modes. Nil for writing.
	Metrics *AudioMetrics

	Result BandResult

	// ExaminerFeedback is the evaluator's overall summary, empty when the
	// attempt was scored on audio alone.
	ExaminerFeedback string

	GrammarCorrections    []GrammarCorrection
	VocabularyUpgrades    []VocabularyUpgrade
	ImprovementTips       []string
	Strengths             []string
	PronunciationWarnings []PronunciationWarning

	// Source identifies where the question came from (e.g. "question_bank").
	Source string
}

// Session groups the attempts produced in one practice sitting. OverallBand
// and AttemptCount are derived values, recomputed from the full attempt set
// on every insertion — never incremented — so they cannot drift.
type Session struct {
	ID           uuid.UUID
	Timestamp    time.Time
	Mode         Mode
	OverallBand  float64
	AttemptCount int
}
