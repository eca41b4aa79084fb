package scoring

import (
	"fmt"
	"math"

	"github.com/veslan/bandly/pkg/types"
)

// Delivery thresholds shared by the sub-score functions and the feedback
// generator. Feedback tier boundaries must coincide exactly with scoring tier
// boundaries, so both read from these constants.
const (
	// Speech rate bands in words per minute. [rateIdealLo, rateIdealHi] is
	// the conversational sweet spot; the good and fair bands widen
	// symmetrically around it.
	rateFairLo  = 80.0
	rateGoodLo  = 100.0
	rateIdealLo = 120.0
	rateIdealHi = 160.0
	rateGoodHi  = 180.0
	rateFairHi  = 200.0

	// Pause ratio bands: the fraction of the recording spent silent.
	pauseExcellentMax = 0.15
	pauseGoodMax      = 0.25
	pauseFairMax      = 0.40
)

// Band scale bounds. Estimates never leave [BandFloor, BandCeiling].
const (
	BandFloor   = 4.0
	BandCeiling = 9.0
)

// Blend weights for the audio-only path.
const (
	audioWeightAccuracy      = 0.3
	audioWeightFluency       = 0.4
	audioWeightPronunciation = 0.3
)

// rateScore maps a speech rate onto the band scale.
func rateScore(wpm float64) float64 {
	switch {
	case wpm >= rateIdealLo && wpm <= rateIdealHi:
		return 9.0
	case wpm >= rateGoodLo && wpm <= rateGoodHi:
		return 7.0
	case wpm >= rateFairLo && wpm <= rateFairHi:
		return 5.5
	default:
		return 4.0
	}
}

// pauseScore maps a pause ratio onto the band scale.
func pauseScore(ratio float64) float64 {
	switch {
	case ratio < pauseExcellentMax:
		return 9.0
	case ratio < pauseGoodMax:
		return 7.0
	case ratio < pauseFairMax:
		return 5.5
	default:
		return 4.0
	}
}

// accuracyScore maps a word error rate onto the band scale. Rates above 1.0
// are capped before mapping, so a wildly long hypothesis bottoms out at 0
// rather than going negative.
func accuracyScore(wer float64) float64 {
	return (1 - min(wer, 1)) * BandCeiling
}

// fluencyScore combines speech rate and pause ratio with equal weight.
func fluencyScore(m types.AudioMetrics) float64 {
	return (rateScore(m.SpeechRateWPM) + pauseScore(m.PauseRatio)) / 2
}

// pronunciationScore maps a mean recognition confidence onto the band scale.
// Confidence tracks how cleanly the recognizer heard each word, which is the
// closest available proxy for articulation quality.
func pronunciationScore(confidence float64) float64 {
	return clamp(confidence*10, BandFloor, BandCeiling)
}

// roundBand snaps a raw weighted score to the reported band: round half up to
// the nearest 0.5, then clamp to the band scale.
func roundBand(raw float64) float64 {
	return clamp(math.Floor(raw*2+0.5)/2, BandFloor, BandCeiling)
}

// EstimateAudioBand scores an attempt from audio-derived signals alone: word
// error rate against the expected text, delivery metrics, and recognition
// confidence. Used when no content evaluator is available, or as the fallback
// when one fails.
//
// The overall band is the weighted mean of accuracy (0.3), fluency (0.4), and
// pronunciation (0.3). When the recognizer supplied no word confidences the
// pronunciation criterion is omitted and the remaining weights are
// renormalized, so the absence of a signal never drags the band down.
func EstimateAudioBand(wer float64, m types.AudioMetrics) (types.BandResult, error) {
	if math.IsNaN(wer) || wer < 0 {
		return types.BandResult{}, fmt.Errorf("%w: word error rate %f", ErrInvalidInput, wer)
	}
	if m.Duration <= 0 {
		return types.BandResult{}, ErrZeroDuration
	}

	accuracy := accuracyScore(wer)
	fluency := fluencyScore(m)

	criteria := map[types.Criterion]types.CriterionScore{
		types.CriterionAccuracy: {Score: accuracy, Feedback: accuracyFeedback(wer)},
		types.CriterionFluency:  {Score: fluency, Feedback: fluencyFeedback(m)},
	}

	raw := audioWeightAccuracy*accuracy + audioWeightFluency*fluency
	weight := audioWeightAccuracy + audioWeightFluency
	if m.ConfidenceSignal {
		pron := pronunciationScore(m.PronunciationConfidence)
		criteria[types.CriterionPronunciation] = types.CriterionScore{
			Score:    pron,
			Feedback: pronunciationFeedback(m.PronunciationConfidence),
		}
		raw += audioWeightPronunciation * pron
		weight += audioWeightPronunciation
	}

	return types.BandResult{
		Criteria: criteria,
		Overall:  roundBand(raw / weight),
	}, nil
}

// EstimateBlendedBand fuses a content evaluation with audio-derived delivery
// signals. Fluency & Coherence averages the audio fluency score with the
// evaluator's coherence score; Lexical Resource and Grammatical Range come
// from the evaluator alone; Pronunciation comes from recognition confidence.
// All present criteria weigh equally in the overall band.
//
// A missing or out-of-range evaluator sub-score is a hard error: an unset
// score field is indistinguishable from zero, and a silent zero would crater
// the mean. Evaluator adapters must reject such responses upstream, and this
// guard catches any that slip through.
func EstimateBlendedBand(m types.AudioMetrics, eval types.ContentEvaluation) (types.BandResult, error) {
	if m.Duration <= 0 {
		return types.BandResult{}, ErrZeroDuration
	}
	for _, cs := range []struct {
		criterion types.Criterion
		score     types.CriterionScore
	}{
		{types.CriterionFluency, eval.Coherence},
		{types.CriterionLexical, eval.LexicalResource},
		{types.CriterionGrammar, eval.GrammaticalRange},
	} {
		if err := validateScore(cs.criterion, cs.score); err != nil {
			return types.BandResult{}, err
		}
	}

	blendedFluency := 0.5*fluencyScore(m) + 0.5*eval.Coherence.Score
	criteria := map[types.Criterion]types.CriterionScore{
		types.CriterionFluency: {Score: blendedFluency, Feedback: eval.Coherence.Feedback},
		types.CriterionLexical: eval.LexicalResource,
		types.CriterionGrammar: eval.GrammaticalRange,
	}
	if m.ConfidenceSignal {
		criteria[types.CriterionPronunciation] = types.CriterionScore{
			Score:    pronunciationScore(m.PronunciationConfidence),
			Feedback: pronunciationFeedback(m.PronunciationConfidence),
		}
	}

	return types.BandResult{
		Criteria: criteria,
		Overall:  roundBand(meanScore(criteria)),
	}, nil
}

// EstimateWritingBand scores an essay from its content evaluation alone: the
// overall band is the unweighted mean of the four writing criteria. The same
// missing-score guard as the blended path applies.
func EstimateWritingBand(eval types.WritingEvaluation) (types.BandResult, error) {
	criteria := map[types.Criterion]types.CriterionScore{
		types.CriterionTask:    eval.TaskAchievement,
		types.CriterionFluency: eval.Coherence,
		types.CriterionLexical: eval.LexicalResource,
		types.CriterionGrammar: eval.GrammaticalRange,
	}
	for criterion, score := range criteria {
		if err := validateScore(criterion, score); err != nil {
			return types.BandResult{}, err
		}
	}

	return types.BandResult{
		Criteria: criteria,
		Overall:  roundBand(meanScore(criteria)),
	}, nil
}

func validateScore(criterion types.Criterion, cs types.CriterionScore) error {
	if math.IsNaN(cs.Score) || cs.Score <= 0 || cs.Score > 9 {
		return fmt.Errorf("%w: %s score %g outside (0, 9]", ErrInvalidInput, criterion, cs.Score)
	}
	return nil
}

func meanScore(criteria map[types.Criterion]types.CriterionScore) float64 {
	var sum float64
	for _, cs := range criteria {
		sum += cs.Score
	}
	return sum / float64(len(criteria))
}
