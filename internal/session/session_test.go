package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veslan/bandly/internal/observe"
	"github.com/veslan/bandly/internal/session"
	evalmock "github.com/veslan/bandly/pkg/provider/evaluator/mock"
	sttlib "github.com/veslan/bandly/pkg/provider/stt"
	sttmock "github.com/veslan/bandly/pkg/provider/stt/mock"
	vadmock "github.com/veslan/bandly/pkg/provider/vad/mock"
	storemock "github.com/veslan/bandly/pkg/store/mock"
	"github.com/veslan/bandly/pkg/types"
)

// fixtures builds providers for a clean recording: nine words over 4.5s
// (120 wpm), a tenth of the recording silent, and confident recognition.
func fixtures() (*sttmock.Provider, *vadmock.Detector) {
	stt := &sttmock.Provider{
		Result: sttlib.Result{
			Text:     "i live in a small town near the coast",
			Duration: 4500 * time.Millisecond,
			Words: []types.TimedWord{
				{Text: "i", Start: 0, End: 200 * time.Millisecond, Confidence: 0.9, HasConfidence: true},
				{Text: "live", Start: 200 * time.Millisecond, End: 500 * time.Millisecond, Confidence: 0.9, HasConfidence: true},
			},
		},
	}
	vad := &vadmock.Detector{
		Intervals: []types.Interval{{Start: 0, End: 450 * time.Millisecond}},
	}
	return stt, vad
}

func contentReview() types.EnhancedReview {
	return types.EnhancedReview{
		ContentEvaluation: types.ContentEvaluation{
			Coherence:        types.CriterionScore{Score: 7.0, Feedback: "well organised"},
			LexicalResource:  types.CriterionScore{Score: 6.5, Feedback: "adequate range"},
			GrammaticalRange: types.CriterionScore{Score: 6.5, Feedback: "minor slips"},
			OverallFeedback:  "a solid answer",
		},
		GrammarCorrections: []types.GrammarCorrection{
			{Original: "i live since 2010", Corrected: "i have lived since 2010"},
		},
		Strengths:             []string{"clear structure"},
		ImprovementPriorities: []string{"extend answers"},
	}
}

func speakingInput(t *testing.T, repo *storemock.Repository) session.SpeakingInput {
	t.Helper()
	s, err := repo.CreateSession(context.Background(), types.ModePractice)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return session.SpeakingInput{
		SessionID: s.ID,
		Mode:      types.ModePractice,
		Part:      1,
		Topic:     "hometown",
		Question:  "Where do you live?",
		PCM:       make([]byte, 32000),
		Source:    "question_bank",
	}
}

func testConfig() session.Config {
	return session.Config{
		SampleRate:    16000,
		Channels:      1,
		Language:      "en",
		STTName:       "whisper",
		EvaluatorName: "openai",
	}
}

func TestEvaluateSpeakingBlended(t *testing.T) {
	t.Parallel()
	stt, vad := fixtures()
	eval := &evalmock.Provider{SpeakingReview: contentReview()}
	repo := &storemock.Repository{}
	e := session.New(stt, vad, eval, repo, observe.DefaultMetrics(), testConfig())

	in := speakingInput(t, repo)
	out, err := e.EvaluateSpeaking(context.Background(), in)
	if err != nil {
		t.Fatalf("EvaluateSpeaking: %v", err)
	}

	if out.AudioOnly {
		t.Error("AudioOnly=true for a successful evaluation")
	}
	// Audio fluency 9.0 blended with coherence 7.0 gives 8.0; with lexical
	// 6.5, grammar 6.5, and pronunciation 9.0 the mean is exactly 7.5.
	if out.Attempt.Result.Overall != 7.5 {
		t.Errorf("Overall=%g, want 7.5", out.Attempt.Result.Overall)
	}
	if got := len(out.Attempt.Result.Criteria); got != 4 {
		t.Errorf("got %d criteria, want 4", got)
	}
	if out.Attempt.ExaminerFeedback != "a solid answer" {
		t.Errorf("ExaminerFeedback=%q", out.Attempt.ExaminerFeedback)
	}
	if out.Attempt.Metrics == nil {
		t.Fatal("Metrics=nil on speaking attempt")
	}
	if out.Attempt.Metrics.SpeechRateWPM != 120 {
		t.Errorf("SpeechRateWPM=%g, want 120", out.Attempt.Metrics.SpeechRateWPM)
	}

	saved, err := repo.AttemptsBySession(context.Background(), in.SessionID)
	if err != nil {
		t.Fatalf("AttemptsBySession: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("got %d persisted attempts, want 1", len(saved))
	}
	if len(saved[0].GrammarCorrections) != 1 {
		t.Errorf("GrammarCorrections=%v", saved[0].GrammarCorrections)
	}
}

func TestEvaluateSpeakingFallsBackOnEvaluatorFailure(t *testing.T) {
	t.Parallel()
	stt, vad := fixtures()
	evalErr := errors.New("backend unavailable")
	eval := &evalmock.Provider{SpeakingErr: evalErr}
	repo := &storemock.Repository{}
	e := session.New(stt, vad, eval, repo, observe.DefaultMetrics(), testConfig())

	in := speakingInput(t, repo)
	out, err := e.EvaluateSpeaking(context.Background(), in)
	if err != nil {
		t.Fatalf("EvaluateSpeaking: %v", err)
	}

	if !out.AudioOnly {
		t.Error("AudioOnly=false after evaluator failure")
	}
	if !errors.Is(out.EvalErr, evalErr) {
		t.Errorf("EvalErr=%v, want the evaluator failure", out.EvalErr)
	}
	if _, ok := out.Attempt.Result.Criteria[types.CriterionAccuracy]; !ok {
		t.Error("audio-only attempt missing the accuracy criterion")
	}
	if out.Attempt.ExaminerFeedback != "" {
		t.Errorf("ExaminerFeedback=%q on audio-only attempt", out.Attempt.ExaminerFeedback)
	}
	// Clean delivery and a transcript matching its own reference: band 9.
	if out.Attempt.Result.Overall != 9.0 {
		t.Errorf("Overall=%g, want 9.0", out.Attempt.Result.Overall)
	}

	saved, err := repo.AttemptsBySession(context.Background(), in.SessionID)
	if err != nil {
		t.Fatalf("AttemptsBySession: %v", err)
	}
	if len(saved) != 1 {
		t.Errorf("got %d persisted attempts, want 1", len(saved))
	}
}

func TestEvaluateSpeakingWithoutEvaluator(t *testing.T) {
	t.Parallel()
	stt, vad := fixtures()
	repo := &storemock.Repository{}
	e := session.New(stt, vad, nil, repo, observe.DefaultMetrics(), testConfig())

	out, err := e.EvaluateSpeaking(context.Background(), speakingInput(t, repo))
	if err != nil {
		t.Fatalf("EvaluateSpeaking: %v", err)
	}
	if !out.AudioOnly {
		t.Error("AudioOnly=false without a configured evaluator")
	}
	if out.EvalErr != nil {
		t.Errorf("EvalErr=%v, want nil when no evaluator exists", out.EvalErr)
	}
}

func TestEvaluateSpeakingTranscribeError(t *testing.T) {
	t.Parallel()
	stt, vad := fixtures()
	stt.Err = sttlib.ErrNoSpeech
	repo := &storemock.Repository{}
	e := session.New(stt, vad, nil, repo, observe.DefaultMetrics(), testConfig())

	in := speakingInput(t, repo)
	if _, err := e.EvaluateSpeaking(context.Background(), in); !errors.Is(err, sttlib.ErrNoSpeech) {
		t.Fatalf("err=%v, want ErrNoSpeech", err)
	}

	saved, err := repo.AttemptsBySession(context.Background(), in.SessionID)
	if err != nil {
		t.Fatalf("AttemptsBySession: %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("attempt persisted despite transcription failure")
	}
}

func TestEvaluateSpeakingCancelledEvaluationIsFatal(t *testing.T) {
	t.Parallel()
	stt, vad := fixtures()
	eval := &evalmock.Provider{SpeakingErr: context.DeadlineExceeded}
	repo := &storemock.Repository{}
	e := session.New(stt, vad, eval, repo, observe.DefaultMetrics(), testConfig())

	_, err := e.EvaluateSpeaking(context.Background(), speakingInput(t, repo))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v, want context.DeadlineExceeded, not a fallback", err)
	}
}

func TestEvaluateWriting(t *testing.T) {
	t.Parallel()
	eval := &evalmock.Provider{
		WritingReview: types.WritingEnhancedReview{
			WritingEvaluation: types.WritingEvaluation{
				TaskAchievement:  types.CriterionScore{Score: 6.0, Feedback: "addresses the task"},
				Coherence:        types.CriterionScore{Score: 7.0, Feedback: "clear progression"},
				LexicalResource:  types.CriterionScore{Score: 6.5, Feedback: "some range"},
				GrammaticalRange: types.CriterionScore{Score: 7.0, Feedback: "mostly accurate"},
				OverallFeedback:  "a competent essay",
			},
			ParagraphFeedback: []string{"introduction states a clear position"},
		},
	}
	repo := &storemock.Repository{}
	e := session.New(nil, nil, eval, repo, observe.DefaultMetrics(), testConfig())

	s, err := repo.CreateSession(context.Background(), types.ModeWriting)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	out, err := e.EvaluateWriting(context.Background(), session.WritingInput{
		SessionID: s.ID,
		Task:      2,
		Topic:     "education",
		Prompt:    "Some believe exams motivate students",
		Essay:     "In my view, examinations serve a purpose...",
		Source:    "question_bank",
	})
	if err != nil {
		t.Fatalf("EvaluateWriting: %v", err)
	}

	// Mean 6.625 rounds down to 6.5.
	if out.Attempt.Result.Overall != 6.5 {
		t.Errorf("Overall=%g, want 6.5", out.Attempt.Result.Overall)
	}
	if out.Attempt.Metrics != nil {
		t.Error("writing attempt carries audio metrics")
	}
	if len(out.ParagraphFeedback) != 1 {
		t.Errorf("ParagraphFeedback=%v", out.ParagraphFeedback)
	}

	saved, err := repo.AttemptsBySession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("AttemptsBySession: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("got %d persisted attempts, want 1", len(saved))
	}
}

func TestEvaluateWritingRequiresEvaluator(t *testing.T) {
	t.Parallel()
	repo := &storemock.Repository{}
	e := session.New(nil, nil, nil, repo, observe.DefaultMetrics(), testConfig())

	_, err := e.EvaluateWriting(context.Background(), session.WritingInput{Task: 2})
	if !errors.Is(err, session.ErrNoEvaluator) {
		t.Fatalf("err=%v, want ErrNoEvaluator", err)
	}
}

func TestEvaluateMockTest(t *testing.T) {
	t.Parallel()
	stt, vad := fixtures()
	eval := &evalmock.Provider{SpeakingReview: contentReview()}
	repo := &storemock.Repository{}
	e := session.New(stt, vad, eval, repo, observe.DefaultMetrics(), testConfig())

	base := speakingInput(t, repo)
	inputs := make([]session.SpeakingInput, 3)
	for i := range inputs {
		inputs[i] = base
		inputs[i].Part = i + 1
	}

	outcomes, err := e.EvaluateMockTest(context.Background(), inputs)
	if err != nil {
		t.Fatalf("EvaluateMockTest: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	for i, out := range outcomes {
		if out.Attempt.Part != i+1 {
			t.Errorf("outcome %d part=%d, want %d (input order)", i, out.Attempt.Part, i+1)
		}
	}

	sess, err := repo.Session(context.Background(), base.SessionID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if sess.AttemptCount != 3 {
		t.Errorf("AttemptCount=%d, want 3", sess.AttemptCount)
	}
}

func TestEvaluateMockTestFailsWhole(t *testing.T) {
	t.Parallel()
	stt, vad := fixtures()
	stt.Err = errors.New("model not loaded")
	repo := &storemock.Repository{}
	e := session.New(stt, vad, nil, repo, observe.DefaultMetrics(), testConfig())

	if _, err := e.EvaluateMockTest(context.Background(), []session.SpeakingInput{speakingInput(t, repo)}); err == nil {
		t.Fatal("EvaluateMockTest returned nil error")
	}
}
