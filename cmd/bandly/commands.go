package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/veslan/bandly/internal/app"
	"github.com/veslan/bandly/internal/config"
	"github.com/veslan/bandly/internal/history"
	"github.com/veslan/bandly/internal/session"
	"github.com/veslan/bandly/pkg/audio"
	"github.com/veslan/bandly/pkg/types"
)

// dispatch routes a CLI command to its implementation.
func dispatch(ctx context.Context, a *app.App, cfg *config.Config, command string, args []string) error {
	switch command {
	case "serve":
		return a.Run(ctx)
	case "speak":
		return cmdSpeak(ctx, a, cfg, args)
	case "write":
		return cmdWrite(ctx, a, args)
	case "mock":
		return cmdMock(ctx, a, cfg, args)
	case "question":
		return cmdQuestion(a, args)
	case "history":
		return cmdHistory(ctx, a, args)
	case "export":
		return cmdExport(ctx, a, args)
	default:
		return fmt.Errorf("unknown command %q (run bandly -h for usage)", command)
	}
}

// ── speak ─────────────────────────────────────────────────────────────────────

func cmdSpeak(ctx context.Context, a *app.App, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("speak", flag.ContinueOnError)
	file := fs.String("file", "", "audio answer (.wav, or raw 16-bit PCM at the configured rate)")
	part := fs.Int("part", 1, "IELTS speaking part (1-3)")
	topic := fs.String("topic", "", "question topic")
	question := fs.String("question", "", "question text")
	reference := fs.String("reference", "", "reference answer to compare the transcript against")
	mode := fs.String("mode", string(types.ModePractice), "practice mode: practice or interview")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("speak: -file is required")
	}
	if !types.Mode(*mode).IsValid() {
		return fmt.Errorf("speak: invalid mode %q", *mode)
	}

	pcm, err := loadPCM(*file, cfg)
	if err != nil {
		return err
	}

	sess, err := a.Store().CreateSession(ctx, types.Mode(*mode))
	if err != nil {
		return fmt.Errorf("speak: create session: %w", err)
	}

	out, err := a.Sessions().EvaluateSpeaking(ctx, session.SpeakingInput{
		SessionID: sess.ID,
		Mode:      types.Mode(*mode),
		Part:      *part,
		Topic:     *topic,
		Question:  *question,
		Reference: *reference,
		PCM:       pcm,
		Source:    "cli",
	})
	if err != nil {
		return err
	}
	printOutcome(out)
	return nil
}

// ── write ─────────────────────────────────────────────────────────────────────

func cmdWrite(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("write", flag.ContinueOnError)
	file := fs.String("file", "", "essay text file")
	task := fs.Int("task", 2, "writing task (1 or 2)")
	topic := fs.String("topic", "", "essay topic")
	prompt := fs.String("prompt", "", "the task prompt the essay answers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("write: -file is required")
	}

	essay, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("write: read essay: %w", err)
	}

	sess, err := a.Store().CreateSession(ctx, types.ModeWriting)
	if err != nil {
		return fmt.Errorf("write: create session: %w", err)
	}

	out, err := a.Sessions().EvaluateWriting(ctx, session.WritingInput{
		SessionID: sess.ID,
		Task:      *task,
		Topic:     *topic,
		Prompt:    *prompt,
		Essay:     string(essay),
		Source:    "cli",
	})
	if err != nil {
		return err
	}
	printOutcome(out)
	return nil
}

// ── mock ──────────────────────────────────────────────────────────────────────

func cmdMock(ctx context.Context, a *app.App, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mock", flag.ContinueOnError)
	seed := fs.Int64("seed", time.Now().UnixNano(), "seed for question selection (same seed, same test)")
	answers := fs.String("answers", "", "comma-separated audio files answering the plan questions in order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	plan, err := a.Bank().AssembleMockTest(*seed)
	if err != nil {
		return err
	}

	questions := plan.Part1
	questions = append(questions, *plan.Part2)
	questions = append(questions, plan.Part3...)

	fmt.Printf("Mock speaking test (seed %d)\n\n", *seed)
	lastPart := 0
	for i, q := range questions {
		if q.Part != lastPart {
			fmt.Printf("── Part %d ──\n", q.Part)
			lastPart = q.Part
		}
		fmt.Printf("%2d. [%s] %s\n", i+1, q.Topic, q.Text)
		if q.CueCard != "" {
			fmt.Println(indent(q.CueCard, "    "))
		}
	}

	if *answers == "" {
		return nil
	}

	files := strings.Split(*answers, ",")
	if len(files) > len(questions) {
		return fmt.Errorf("mock: %d answer files for %d questions", len(files), len(questions))
	}

	sess, err := a.Store().CreateSession(ctx, types.ModeMockTest)
	if err != nil {
		return fmt.Errorf("mock: create session: %w", err)
	}

	inputs := make([]session.SpeakingInput, 0, len(files))
	for i, f := range files {
		pcm, err := loadPCM(strings.TrimSpace(f), cfg)
		if err != nil {
			return err
		}
		q := questions[i]
		inputs = append(inputs, session.SpeakingInput{
			SessionID: sess.ID,
			Mode:      types.ModeMockTest,
			Part:      q.Part,
			Topic:     q.Topic,
			Question:  q.Text,
			Reference: q.Band9Answer,
			PCM:       pcm,
			Source:    q.Source,
		})
	}

	outcomes, err := a.Sessions().EvaluateMockTest(ctx, inputs)
	if err != nil {
		return err
	}
	for i, out := range outcomes {
		fmt.Printf("\n════ Answer %d ════\n", i+1)
		printOutcome(out)
	}

	final, err := a.Store().Session(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("mock: load session: %w", err)
	}
	fmt.Printf("\nMock test band: %.1f over %d answers\n", final.OverallBand, final.AttemptCount)
	return nil
}

// ── question ──────────────────────────────────────────────────────────────────

func cmdQuestion(a *app.App, args []string) error {
	fs := flag.NewFlagSet("question", flag.ContinueOnError)
	part := fs.Int("part", 0, "IELTS speaking part (1-3, 0 for any)")
	seed := fs.Int64("seed", time.Now().UnixNano(), "seed for question selection")
	writing := fs.Bool("writing", false, "pick a writing prompt instead of a speaking question")
	task := fs.Int("task", 2, "writing task (with -writing)")
	topics := fs.Bool("topics", false, "list bank topics per part instead of picking")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *topics {
		byPart := a.Bank().Topics()
		parts := make([]int, 0, len(byPart))
		for p := range byPart {
			parts = append(parts, p)
		}
		sort.Ints(parts)
		for _, p := range parts {
			fmt.Printf("Part %d: %s\n", p, strings.Join(byPart[p], ", "))
		}
		return nil
	}

	if *writing {
		prompt, err := a.Bank().PickWriting(*seed, *task)
		if err != nil {
			return err
		}
		fmt.Printf("Writing Task %d (%s) — %s\n\n%s\n", prompt.Task, prompt.TestType, prompt.Topic, prompt.Text)
		return nil
	}

	q, err := a.Bank().Pick(*seed, *part)
	if err != nil {
		return err
	}
	fmt.Printf("Part %d — %s\n\n%s\n", q.Part, q.Topic, q.Text)
	if q.CueCard != "" {
		fmt.Println("\n" + q.CueCard)
	}
	return nil
}

// ── history ───────────────────────────────────────────────────────────────────

func cmdHistory(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("limit", 10, "how many recent attempts to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	trend, err := a.History().BandTrend(ctx, *limit)
	if err != nil {
		return err
	}
	if len(trend) == 0 {
		fmt.Println("No attempts recorded yet.")
		return nil
	}

	fmt.Println("Band trend (oldest first):")
	for _, p := range trend {
		fmt.Printf("  %s  %.1f\n", p.Timestamp.Local().Format("2006-01-02 15:04"), p.Band)
	}

	weak, err := a.History().WeakAreas(ctx)
	switch {
	case errors.Is(err, history.ErrInsufficientData):
		fmt.Println("\nWeak areas: not enough scored attempts yet — keep practicing.")
	case err != nil:
		return err
	default:
		fmt.Println("\nWeak areas (mean band, weakest first):")
		type entry struct {
			c types.Criterion
			v float64
		}
		entries := make([]entry, 0, len(weak))
		for c, v := range weak {
			entries = append(entries, entry{c, v})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].v < entries[j].v })
		for _, e := range entries {
			fmt.Printf("  %-30s %.1f\n", e.c.String(), e.v)
		}
	}

	report, err := a.History().DetailedWeaknesses(ctx, 0)
	if errors.Is(err, history.ErrInsufficientData) {
		return nil
	}
	if err != nil {
		return err
	}

	if len(report.GrammarErrors) > 0 {
		fmt.Println("\nRecurring grammar mistakes:")
		for _, g := range report.GrammarErrors {
			fmt.Printf("  %dx  %q → %q\n", g.Count, g.Original, g.Corrected)
		}
	}
	if len(report.BasicWords) > 0 {
		fmt.Println("\nWords to upgrade:")
		for _, w := range report.BasicWords {
			fmt.Printf("  %dx  %s\n", w.Count, w.Word)
		}
	}
	if len(report.RecurringTips) > 0 {
		fmt.Println("\nRepeated advice:")
		for _, tip := range report.RecurringTips {
			fmt.Printf("  %dx  %s\n", tip.Count, tip.Tip)
		}
	}
	if len(report.CriterionTrends) > 0 {
		fmt.Println("\nCriterion movement:")
		for _, c := range []types.Criterion{
			types.CriterionFluency, types.CriterionLexical, types.CriterionGrammar,
			types.CriterionPronunciation, types.CriterionTask,
		} {
			t, ok := report.CriterionTrends[c]
			if !ok {
				continue
			}
			fmt.Printf("  %-30s %.1f (%s)\n", c.String(), t.Avg, t.Direction)
		}
	}
	return nil
}

// ── export ────────────────────────────────────────────────────────────────────

func cmdExport(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "progress.xlsx", "output workbook path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.Exporter().Export(ctx, *out); err != nil {
		return err
	}
	abs, err := filepath.Abs(*out)
	if err != nil {
		abs = *out
	}
	fmt.Printf("Progress workbook written to %s\n", abs)
	return nil
}

// ── output helpers ────────────────────────────────────────────────────────────

// printOutcome renders one scored attempt for the terminal.
func printOutcome(out session.Outcome) {
	att := out.Attempt

	fmt.Printf("Overall band: %.1f\n", att.Result.Overall)
	order := types.SpeakingCriteria
	if att.Metrics == nil {
		order = types.WritingCriteria
	}
	printed := make(map[types.Criterion]bool)
	for _, c := range append(append([]types.Criterion{}, order...), types.CriterionAccuracy) {
		cs, ok := att.Result.Criteria[c]
		if !ok {
			continue
		}
		printed[c] = true
		fmt.Printf("  %-30s %.1f", c.String(), cs.Score)
		if cs.Feedback != "" {
			fmt.Printf("  — %s", cs.Feedback)
		}
		fmt.Println()
	}
	for c, cs := range att.Result.Criteria {
		if !printed[c] {
			fmt.Printf("  %-30s %.1f\n", c.String(), cs.Score)
		}
	}

	if out.AudioOnly {
		fmt.Println("\nScored on delivery alone (no content evaluator available).")
		if out.EvalErr != nil {
			fmt.Printf("Evaluator error: %v\n", out.EvalErr)
		}
	}

	if m := att.Metrics; m != nil {
		fmt.Printf("\nDelivery: %.0f wpm, %.0f%% pause time, %.0fs\n",
			m.SpeechRateWPM, m.PauseRatio*100, m.Duration.Seconds())
	}
	if out.Fillers.Total > 0 {
		fmt.Printf("Fillers: %d (%.1f per 100 words)\n", out.Fillers.Total, out.Fillers.PerHundredWords)
	}
	if len(out.Hints) > 0 {
		fmt.Println("\nPossible pronunciation slips:")
		for _, h := range out.Hints {
			fmt.Printf("  expected %q, heard %q\n", h.Expected, h.Heard)
		}
	}

	if att.Transcript != "" {
		fmt.Printf("\nTranscript:\n%s\n", indent(att.Transcript, "  "))
	}
	if att.ExaminerFeedback != "" {
		fmt.Printf("\nExaminer feedback:\n%s\n", indent(att.ExaminerFeedback, "  "))
	}
	for _, g := range att.GrammarCorrections {
		fmt.Printf("\nGrammar: %q → %q\n  %s\n", g.Original, g.Corrected, g.Explanation)
	}
	for _, v := range att.VocabularyUpgrades {
		fmt.Printf("\nVocabulary: %s → %s\n", v.BasicWord, strings.Join(v.Alternatives, ", "))
		if v.Example != "" {
			fmt.Printf("  e.g. %s\n", v.Example)
		}
	}
	for _, p := range out.ParagraphFeedback {
		fmt.Printf("\nParagraph: %s\n", p)
	}
	if len(att.Strengths) > 0 {
		fmt.Println("\nStrengths:")
		for _, s := range att.Strengths {
			fmt.Printf("  + %s\n", s)
		}
	}
	if len(att.ImprovementTips) > 0 {
		fmt.Println("\nWork on next:")
		for _, tip := range att.ImprovementTips {
			fmt.Printf("  - %s\n", tip)
		}
	}
	for _, w := range att.PronunciationWarnings {
		fmt.Printf("\nPronunciation: %s %s\n  %s\n", w.Word, w.Phonetic, w.Tip)
	}
}

// loadPCM reads an answer recording. WAV files are decoded and converted to
// the configured capture format; anything else is treated as raw 16-bit PCM.
func loadPCM(path string, cfg *config.Config) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio %q: %w", path, err)
	}

	pcm, format, err := audio.DecodeWAV(data)
	if errors.Is(err, audio.ErrNotWAV) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	conv := &audio.FormatConverter{Target: audio.Format{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
	}}
	frame := conv.Convert(audio.AudioFrame{
		Data:       pcm,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
	})
	return frame.Data, nil
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
