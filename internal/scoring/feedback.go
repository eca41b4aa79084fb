package scoring

import (
	"fmt"
	"strings"

	"github.com/veslan/bandly/pkg/types"
)

// Feedback tier boundaries for signals that have no scoring tiers of their
// own. Rate and pause feedback reuse the scoring thresholds directly so the
// message always agrees with the sub-score.
const (
	werExcellentMax = 0.05
	werGoodMax      = 0.15
	werFairMax      = 0.30

	confClearMin       = 0.85
	confMostlyClearMin = 0.70
	confSomeUnclearMin = 0.50
)

func accuracyFeedback(wer float64) string {
	switch {
	case wer < werExcellentMax:
		return "Excellent accuracy. Your answer closely matched the expected response."
	case wer < werGoodMax:
		return "Good accuracy with only minor deviations from the expected response."
	case wer < werFairMax:
		return "Fair accuracy. Several words differed from the expected response; review the model answer."
	default:
		return "Your answer diverged substantially from the expected response. Practice the model answer aloud."
	}
}

func fluencyFeedback(m types.AudioMetrics) string {
	var parts []string

	switch {
	case m.SpeechRateWPM >= rateIdealLo && m.SpeechRateWPM <= rateIdealHi:
		parts = append(parts, fmt.Sprintf("Great pacing at %.0f words per minute.", m.SpeechRateWPM))
	case m.SpeechRateWPM < rateIdealLo:
		parts = append(parts, fmt.Sprintf("You spoke at %.0f words per minute, which is on the slow side. Aim for %.0f–%.0f.", m.SpeechRateWPM, rateIdealLo, rateIdealHi))
	default:
		parts = append(parts, fmt.Sprintf("You spoke at %.0f words per minute, which is quite fast. Aim for %.0f–%.0f.", m.SpeechRateWPM, rateIdealLo, rateIdealHi))
	}

	switch {
	case m.PauseRatio < pauseExcellentMax:
		parts = append(parts, "Your delivery was smooth with minimal hesitation.")
	case m.PauseRatio < pauseGoodMax:
		parts = append(parts, "Mostly fluent delivery with occasional pauses.")
	case m.PauseRatio < pauseFairMax:
		parts = append(parts, "Noticeable pauses interrupted your flow. Try to keep your answer moving.")
	default:
		parts = append(parts, "Long silences broke up your answer. Practice speaking continuously, even if you need filler phrases.")
	}

	return strings.Join(parts, " ")
}

func pronunciationFeedback(confidence float64) string {
	switch {
	case confidence >= confClearMin:
		return "Clear and confident pronunciation throughout."
	case confidence >= confMostlyClearMin:
		return "Generally clear pronunciation; some words could be sharper."
	case confidence >= confSomeUnclearMin:
		return "Some words were unclear. Focus on enunciation."
	default:
		return "Many words were hard to recognise. Slow down and practice individual word clarity."
	}
}
