package scoring_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/veslan/bandly/internal/scoring"
	"github.com/veslan/bandly/pkg/types"
)

func TestAnalyzeDelivery(t *testing.T) {
	t.Parallel()

	words := []types.TimedWord{
		{Text: "hello", Start: 0, End: 400 * time.Millisecond, Confidence: 0.9, HasConfidence: true},
		{Text: "there", Start: 500 * time.Millisecond, End: time.Second, Confidence: 0.7, HasConfidence: true},
		{Text: "friend", Start: 2 * time.Second, End: 3 * time.Second},
	}
	silences := []types.Interval{
		{Start: time.Second, End: 2 * time.Second},
		{Start: 5 * time.Second, End: 8 * time.Second},
	}

	m, err := scoring.AnalyzeDelivery(20*time.Second, 40, words, silences)
	if err != nil {
		t.Fatalf("AnalyzeDelivery returned error: %v", err)
	}

	// 40 words over 20s is 120 words per minute.
	if math.Abs(m.SpeechRateWPM-120) > 1e-9 {
		t.Errorf("SpeechRateWPM=%g, want 120", m.SpeechRateWPM)
	}
	// 4s of silence over 20s.
	if math.Abs(m.PauseRatio-0.2) > 1e-9 {
		t.Errorf("PauseRatio=%g, want 0.2", m.PauseRatio)
	}
	if !m.ConfidenceSignal {
		t.Fatal("ConfidenceSignal=false, want true")
	}
	// Mean over the two words that carry a confidence; "friend" is excluded.
	if math.Abs(m.PronunciationConfidence-0.8) > 1e-9 {
		t.Errorf("PronunciationConfidence=%g, want 0.8", m.PronunciationConfidence)
	}
}

func TestAnalyzeDeliveryNoConfidenceSignal(t *testing.T) {
	t.Parallel()

	words := []types.TimedWord{{Text: "a"}, {Text: "b"}}
	m, err := scoring.AnalyzeDelivery(10*time.Second, 2, words, nil)
	if err != nil {
		t.Fatalf("AnalyzeDelivery returned error: %v", err)
	}
	if m.ConfidenceSignal {
		t.Error("ConfidenceSignal=true, want false")
	}
	if m.PronunciationConfidence != 0 {
		t.Errorf("PronunciationConfidence=%g, want 0", m.PronunciationConfidence)
	}
}

func TestAnalyzeDeliveryClampsOvershootingSilence(t *testing.T) {
	t.Parallel()

	// Detector overshoots the recording edge; the overshoot must not count.
	silences := []types.Interval{{Start: 8 * time.Second, End: 12 * time.Second}}
	m, err := scoring.AnalyzeDelivery(10*time.Second, 10, nil, silences)
	if err != nil {
		t.Fatalf("AnalyzeDelivery returned error: %v", err)
	}
	if math.Abs(m.PauseRatio-0.2) > 1e-9 {
		t.Errorf("PauseRatio=%g, want 0.2", m.PauseRatio)
	}
}

func TestAnalyzeDeliveryAllowsTouchingIntervals(t *testing.T) {
	t.Parallel()

	// Adjacent intervals share a boundary without overlapping.
	silences := []types.Interval{
		{Start: time.Second, End: 2 * time.Second},
		{Start: 2 * time.Second, End: 3 * time.Second},
	}
	m, err := scoring.AnalyzeDelivery(10*time.Second, 10, nil, silences)
	if err != nil {
		t.Fatalf("AnalyzeDelivery returned error: %v", err)
	}
	if math.Abs(m.PauseRatio-0.2) > 1e-9 {
		t.Errorf("PauseRatio=%g, want 0.2", m.PauseRatio)
	}
}

func TestAnalyzeDeliveryRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := scoring.AnalyzeDelivery(0, 10, nil, nil); !errors.Is(err, scoring.ErrZeroDuration) {
		t.Errorf("zero duration: err=%v, want ErrZeroDuration", err)
	}
	if _, err := scoring.AnalyzeDelivery(time.Second, -1, nil, nil); !errors.Is(err, scoring.ErrInvalidInput) {
		t.Errorf("negative word count: err=%v, want ErrInvalidInput", err)
	}

	inverted := []types.Interval{{Start: 2 * time.Second, End: time.Second}}
	if _, err := scoring.AnalyzeDelivery(10*time.Second, 1, nil, inverted); !errors.Is(err, scoring.ErrInvalidInput) {
		t.Errorf("inverted interval: err=%v, want ErrInvalidInput", err)
	}

	overlapping := []types.Interval{{Start: 4 * time.Second, End: 6 * time.Second}, {Start: 3 * time.Second, End: 6 * time.Second}}
	if _, err := scoring.AnalyzeDelivery(10*time.Second, 20, nil, overlapping); !errors.Is(err, scoring.ErrInvalidInput) {
		t.Errorf("overlapping intervals: err=%v, want ErrInvalidInput", err)
	}

	outOfOrder := []types.Interval{{Start: 5 * time.Second, End: 6 * time.Second}, {Start: time.Second, End: 2 * time.Second}}
	if _, err := scoring.AnalyzeDelivery(10*time.Second, 20, nil, outOfOrder); !errors.Is(err, scoring.ErrInvalidInput) {
		t.Errorf("out-of-order intervals: err=%v, want ErrInvalidInput", err)
	}

	badConf := []types.TimedWord{{Text: "x", Confidence: 1.5, HasConfidence: true}}
	if _, err := scoring.AnalyzeDelivery(10*time.Second, 1, badConf, nil); !errors.Is(err, scoring.ErrInvalidInput) {
		t.Errorf("confidence above 1: err=%v, want ErrInvalidInput", err)
	}
}
