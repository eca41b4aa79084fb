package types

// ContentEvaluation is the canonical rubric result produced by a content
// evaluator for a spoken answer. The evaluator adapter is responsible for
// mapping whatever shape its backend returns onto this struct; downstream
// consumers (the band estimator in particular) never see provider-specific
// shapes.
type ContentEvaluation struct {
	// Coherence is the Coherence & Cohesion sub-score. In the blended band
	// it is averaged with the audio-derived fluency score.
	Coherence CriterionScore

	// LexicalResource is the Lexical Resource sub-score.
	LexicalResource CriterionScore

	// GrammaticalRange is the Grammatical Range & Accuracy sub-score.
	GrammaticalRange CriterionScore

	// TaskResponse is the Task Achievement / Response relevance sub-score.
	// Informational for speaking; it does not enter the blended band.
	TaskResponse CriterionScore

	// OverallFeedback is the examiner's summary paragraph.
	OverallFeedback string
}

// EnhancedReview is a ContentEvaluation extended with the structured feedback
// lists a detailed review carries. All list fields may be empty.
type EnhancedReview struct {
	ContentEvaluation

	GrammarCorrections    []GrammarCorrection
	VocabularyUpgrades    []VocabularyUpgrade
	Strengths             []string
	ImprovementPriorities []string
	PronunciationWarnings []PronunciationWarning
}

// WritingEvaluation is the canonical rubric result for an essay. Task
// Achievement replaces Pronunciation relative to the speaking rubric.
type WritingEvaluation struct {
	TaskAchievement  CriterionScore
	Coherence        CriterionScore
	LexicalResource  CriterionScore
	GrammaticalRange CriterionScore
	OverallFeedback  string
}

// WritingEnhancedReview extends WritingEvaluation with structured feedback.
type WritingEnhancedReview struct {
	WritingEvaluation

	GrammarCorrections    []GrammarCorrection
	VocabularyUpgrades    []VocabularyUpgrade
	ParagraphFeedback     []string
	Strengths             []string
	ImprovementPriorities []string
}

// GrammarCorrection is one quoted error from the candidate's own words with
// its correction.
type GrammarCorrection struct {
	// Original is the exact phrase from the transcript containing the error.
	Original string `json:"original"`

	// Corrected is the fixed version.
	Corrected string `json:"corrected"`

	// Explanation is a brief statement of the grammar rule involved.
	Explanation string `json:"explanation"`
}

// VocabularyUpgrade suggests stronger alternatives for a basic word the
// candidate actually used.
type VocabularyUpgrade struct {
	// BasicWord is the basic/common word from the transcript.
	BasicWord string `json:"basic_word"`

	// Alternatives lists 2–3 more advanced replacements.
	Alternatives []string `json:"alternatives"`

	// Example is a sentence using one of the alternatives.
	Example string `json:"example"`
}

// PronunciationWarning flags a word from the transcript that is commonly
// mispronounced, with guidance.
type PronunciationWarning struct {
	// Word is the flagged word from the transcript.
	Word string `json:"word"`

	// Phonetic is a simplified pronunciation guide.
	Phonetic string `json:"phonetic"`

	// Tip describes the common mistake and how to fix it.
	Tip string `json:"tip"`
}
