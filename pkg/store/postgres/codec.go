package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/veslan/bandly/pkg/types"
)

const attemptSelect = `
		SELECT id, session_id, timestamp, part, topic, question_text, transcript,
		       has_metrics, duration_ns, speech_rate_wpm, pause_ratio, pron_confidence, confidence_signal,
		       criteria, overall_band, examiner_feedback,
		       grammar_corrections, vocabulary_upgrades, improvement_tips, strengths, pronunciation_warnings,
		       source
		FROM   attempts`

// attemptToRow flattens an Attempt into the positional arguments expected by
// the attempts INSERT. Structured lists are marshalled to JSONB explicitly so
// nil slices land as empty arrays, not SQL nulls.
func attemptToRow(a types.Attempt) ([]any, error) {
	var (
		hasMetrics       bool
		durationNS       int64
		rateWPM          float64
		pauseRatio       float64
		pronConfidence   float64
		confidenceSignal bool
	)
	if a.Metrics != nil {
		hasMetrics = true
		durationNS = a.Metrics.Duration.Nanoseconds()
		rateWPM = a.Metrics.SpeechRateWPM
		pauseRatio = a.Metrics.PauseRatio
		pronConfidence = a.Metrics.PronunciationConfidence
		confidenceSignal = a.Metrics.ConfidenceSignal
	}

	criteria, err := json.Marshal(a.Result.Criteria)
	if err != nil {
		return nil, fmt.Errorf("marshal criteria: %w", err)
	}
	corrections, err := marshalList(a.GrammarCorrections)
	if err != nil {
		return nil, fmt.Errorf("marshal grammar corrections: %w", err)
	}
	upgrades, err := marshalList(a.VocabularyUpgrades)
	if err != nil {
		return nil, fmt.Errorf("marshal vocabulary upgrades: %w", err)
	}
	tips, err := marshalList(a.ImprovementTips)
	if err != nil {
		return nil, fmt.Errorf("marshal improvement tips: %w", err)
	}
	strengths, err := marshalList(a.Strengths)
	if err != nil {
		return nil, fmt.Errorf("marshal strengths: %w", err)
	}
	warnings, err := marshalList(a.PronunciationWarnings)
	if err != nil {
		return nil, fmt.Errorf("marshal pronunciation warnings: %w", err)
	}

	return []any{
		a.ID, a.SessionID, a.Timestamp, a.Part, a.Topic, a.QuestionText, a.Transcript,
		hasMetrics, durationNS, rateWPM, pauseRatio, pronConfidence, confidenceSignal,
		criteria, a.Result.Overall, a.ExaminerFeedback,
		corrections, upgrades, tips, strengths, warnings,
		a.Source,
	}, nil
}

func marshalList[T any](list []T) ([]byte, error) {
	if list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(list)
}

// collectAttempts scans pgx rows into Attempt values, reassembling the
// AudioMetrics pointer and unmarshalling the JSONB columns.
func collectAttempts(rows pgx.Rows) ([]types.Attempt, error) {
	attempts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Attempt, error) {
		var (
			a                types.Attempt
			hasMetrics       bool
			durationNS       int64
			rateWPM          float64
			pauseRatio       float64
			pronConfidence   float64
			confidenceSignal bool
			criteria         []byte
			corrections      []byte
			upgrades         []byte
			tips             []byte
			strengths        []byte
			warnings         []byte
		)
		if err := row.Scan(
			&a.ID, &a.SessionID, &a.Timestamp, &a.Part, &a.Topic, &a.QuestionText, &a.Transcript,
			&hasMetrics, &durationNS, &rateWPM, &pauseRatio, &pronConfidence, &confidenceSignal,
			&criteria, &a.Result.Overall, &a.ExaminerFeedback,
			&corrections, &upgrades, &tips, &strengths, &warnings,
			&a.Source,
		); err != nil {
			return types.Attempt{}, err
		}

		if hasMetrics {
			a.Metrics = &types.AudioMetrics{
				Duration:                time.Duration(durationNS),
				SpeechRateWPM:           rateWPM,
				PauseRatio:              pauseRatio,
				PronunciationConfidence: pronConfidence,
				ConfidenceSignal:        confidenceSignal,
			}
		}

		if err := json.Unmarshal(criteria, &a.Result.Criteria); err != nil {
			return types.Attempt{}, fmt.Errorf("unmarshal criteria: %w", err)
		}
		if err := json.Unmarshal(corrections, &a.GrammarCorrections); err != nil {
			return types.Attempt{}, fmt.Errorf("unmarshal grammar corrections: %w", err)
		}
		if err := json.Unmarshal(upgrades, &a.VocabularyUpgrades); err != nil {
			return types.Attempt{}, fmt.Errorf("unmarshal vocabulary upgrades: %w", err)
		}
		if err := json.Unmarshal(tips, &a.ImprovementTips); err != nil {
			return types.Attempt{}, fmt.Errorf("unmarshal improvement tips: %w", err)
		}
		if err := json.Unmarshal(strengths, &a.Strengths); err != nil {
			return types.Attempt{}, fmt.Errorf("unmarshal strengths: %w", err)
		}
		if err := json.Unmarshal(warnings, &a.PronunciationWarnings); err != nil {
			return types.Attempt{}, fmt.Errorf("unmarshal pronunciation warnings: %w", err)
		}
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan attempts: %w", err)
	}
	if attempts == nil {
		attempts = []types.Attempt{}
	}
	return attempts, nil
}
