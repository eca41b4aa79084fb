package scoring

import (
	"fmt"
	"time"

	"github.com/veslan/bandly/pkg/types"
)

// AnalyzeDelivery derives the delivery metrics for one recording: speech rate
// from the transcript word count, pause ratio from the detected silence
// intervals, and pronunciation confidence as the mean over words that carried
// a recognition confidence.
//
// Words without a confidence are excluded from the mean rather than counted
// as zero. When no word carries one, ConfidenceSignal is false and the
// confidence is reported as 0.0, meaning "no signal" — the band computation
// treats that case separately from a genuinely low confidence.
func AnalyzeDelivery(duration time.Duration, wordCount int, words []types.TimedWord, silences []types.Interval) (types.AudioMetrics, error) {
	if duration <= 0 {
		return types.AudioMetrics{}, ErrZeroDuration
	}
	if wordCount < 0 {
		return types.AudioMetrics{}, fmt.Errorf("%w: negative word count %d", ErrInvalidInput, wordCount)
	}

	var silent time.Duration
	var prevEnd time.Duration
	for i, iv := range silences {
		if iv.End < iv.Start {
			return types.AudioMetrics{}, fmt.Errorf("%w: silence interval %d ends before it starts", ErrInvalidInput, i)
		}
		// Intervals must ascend without overlap: an overlap would count the
		// same silent span twice and deflate the fluency sub-score.
		if i > 0 && iv.Start < prevEnd {
			return types.AudioMetrics{}, fmt.Errorf("%w: silence interval %d overlaps or precedes interval %d", ErrInvalidInput, i, i-1)
		}
		prevEnd = iv.End

		// Detectors may overshoot the recording edge by a frame; clamp
		// rather than reject.
		start := max(iv.Start, 0)
		end := min(iv.End, duration)
		if end > start {
			silent += end - start
		}
	}

	var confSum float64
	var confN int
	for i, w := range words {
		if !w.HasConfidence {
			continue
		}
		if w.Confidence < 0 || w.Confidence > 1 {
			return types.AudioMetrics{}, fmt.Errorf("%w: word %d confidence %.3f outside [0, 1]", ErrInvalidInput, i, w.Confidence)
		}
		confSum += w.Confidence
		confN++
	}

	m := types.AudioMetrics{
		Duration:      duration,
		SpeechRateWPM: float64(wordCount) / duration.Minutes(),
		PauseRatio:    clamp(silent.Seconds()/duration.Seconds(), 0, 1),
	}
	if confN > 0 {
		m.ConfidenceSignal = true
		m.PronunciationConfidence = confSum / float64(confN)
	}
	return m, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
