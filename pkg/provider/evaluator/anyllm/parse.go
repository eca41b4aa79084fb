package anyllm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/veslan/bandly/pkg/provider/evaluator"
	"github.com/veslan/bandly/pkg/types"
)

// Wire shapes for the JSON the model is instructed to return.

type criterionJSON struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

type speakingJSON struct {
	Coherence             *criterionJSON               `json:"coherence"`
	LexicalResource       *criterionJSON               `json:"lexical_resource"`
	GrammaticalRange      *criterionJSON               `json:"grammatical_range"`
	TaskResponse          *criterionJSON               `json:"task_response"`
	OverallFeedback       string                       `json:"overall_feedback"`
	GrammarCorrections    []types.GrammarCorrection    `json:"grammar_corrections"`
	VocabularyUpgrades    []types.VocabularyUpgrade    `json:"vocabulary_upgrades"`
	PronunciationWarnings []types.PronunciationWarning `json:"pronunciation_warnings"`
	Strengths             []string                     `json:"strengths"`
	ImprovementPriorities []string                     `json:"improvement_priorities"`
}

type writingJSON struct {
	TaskAchievement       *criterionJSON            `json:"task_achievement"`
	Coherence             *criterionJSON            `json:"coherence"`
	LexicalResource       *criterionJSON            `json:"lexical_resource"`
	GrammaticalRange      *criterionJSON            `json:"grammatical_range"`
	OverallFeedback       string                    `json:"overall_feedback"`
	GrammarCorrections    []types.GrammarCorrection `json:"grammar_corrections"`
	VocabularyUpgrades    []types.VocabularyUpgrade `json:"vocabulary_upgrades"`
	ParagraphFeedback     []string                  `json:"paragraph_feedback"`
	Strengths             []string                  `json:"strengths"`
	ImprovementPriorities []string                  `json:"improvement_priorities"`
}

// parseSpeaking validates the raw model output into an EnhancedReview. Every
// criterion must be present with a score in (0, 9]; anything less is
// ErrMalformedResponse so the caller can fall back instead of averaging in a
// phantom zero.
func parseSpeaking(content string) (types.EnhancedReview, error) {
	var wire speakingJSON
	if err := json.Unmarshal([]byte(extractJSON(content)), &wire); err != nil {
		return types.EnhancedReview{}, fmt.Errorf("%w: %v", evaluator.ErrMalformedResponse, err)
	}

	coherence, err := requireCriterion("coherence", wire.Coherence)
	if err != nil {
		return types.EnhancedReview{}, err
	}
	lexical, err := requireCriterion("lexical_resource", wire.LexicalResource)
	if err != nil {
		return types.EnhancedReview{}, err
	}
	grammar, err := requireCriterion("grammatical_range", wire.GrammaticalRange)
	if err != nil {
		return types.EnhancedReview{}, err
	}
	task, err := requireCriterion("task_response", wire.TaskResponse)
	if err != nil {
		return types.EnhancedReview{}, err
	}

	return types.EnhancedReview{
		ContentEvaluation: types.ContentEvaluation{
			Coherence:        coherence,
			LexicalResource:  lexical,
			GrammaticalRange: grammar,
			TaskResponse:     task,
			OverallFeedback:  wire.OverallFeedback,
		},
		GrammarCorrections:    wire.GrammarCorrections,
		VocabularyUpgrades:    wire.VocabularyUpgrades,
		PronunciationWarnings: wire.PronunciationWarnings,
		Strengths:             wire.Strengths,
		ImprovementPriorities: wire.ImprovementPriorities,
	}, nil
}

// parseWriting validates the raw model output into a WritingEnhancedReview.
func parseWriting(content string) (types.WritingEnhancedReview, error) {
	var wire writingJSON
	if err := json.Unmarshal([]byte(extractJSON(content)), &wire); err != nil {
		return types.WritingEnhancedReview{}, fmt.Errorf("%w: %v", evaluator.ErrMalformedResponse, err)
	}

	task, err := requireCriterion("task_achievement", wire.TaskAchievement)
	if err != nil {
		return types.WritingEnhancedReview{}, err
	}
	coherence, err := requireCriterion("coherence", wire.Coherence)
	if err != nil {
		return types.WritingEnhancedReview{}, err
	}
	lexical, err := requireCriterion("lexical_resource", wire.LexicalResource)
	if err != nil {
		return types.WritingEnhancedReview{}, err
	}
	grammar, err := requireCriterion("grammatical_range", wire.GrammaticalRange)
	if err != nil {
		return types.WritingEnhancedReview{}, err
	}

	return types.WritingEnhancedReview{
		WritingEvaluation: types.WritingEvaluation{
			TaskAchievement:  task,
			Coherence:        coherence,
			LexicalResource:  lexical,
			GrammaticalRange: grammar,
			OverallFeedback:  wire.OverallFeedback,
		},
		GrammarCorrections:    wire.GrammarCorrections,
		VocabularyUpgrades:    wire.VocabularyUpgrades,
		ParagraphFeedback:     wire.ParagraphFeedback,
		Strengths:             wire.Strengths,
		ImprovementPriorities: wire.ImprovementPriorities,
	}, nil
}

func requireCriterion(name string, c *criterionJSON) (types.CriterionScore, error) {
	if c == nil || c.Score == nil {
		return types.CriterionScore{}, fmt.Errorf("%w: missing criterion %q", evaluator.ErrMalformedResponse, name)
	}
	if *c.Score <= 0 || *c.Score > 9 {
		return types.CriterionScore{}, fmt.Errorf("%w: criterion %q score %g outside (0, 9]", evaluator.ErrMalformedResponse, name, *c.Score)
	}
	return types.CriterionScore{Score: *c.Score, Feedback: c.Feedback}, nil
}

// extractJSON strips markdown code fences and any prose around the outermost
// JSON object. Models occasionally wrap their output despite instructions.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return content
	}
	return content[start : end+1]
}
