package history_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/veslan/bandly/internal/history"
	"github.com/veslan/bandly/pkg/store/mock"
	"github.com/veslan/bandly/pkg/types"
)

// seedSession creates one session and returns its ID.
func seedSession(t *testing.T, repo *mock.Repository) uuid.UUID {
	t.Helper()
	s, err := repo.CreateSession(context.Background(), types.ModePractice)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return s.ID
}

// scoredAttempt builds an attempt at base+offset with the given per-criterion
// scores. Criteria with a zero score are left out.
func scoredAttempt(sessionID uuid.UUID, base time.Time, offset time.Duration, scores map[types.Criterion]float64) types.Attempt {
	criteria := make(map[types.Criterion]types.CriterionScore, len(scores))
	var sum float64
	for c, score := range scores {
		criteria[c] = types.CriterionScore{Score: score}
		sum += score
	}
	var overall float64
	if len(scores) > 0 {
		overall = sum / float64(len(scores))
	}
	return types.Attempt{
		ID:        uuid.New(),
		SessionID: sessionID,
		Timestamp: base.Add(offset),
		Part:      1,
		Result:    types.BandResult{Criteria: criteria, Overall: overall},
	}
}

func TestWeakAreasInsufficientData(t *testing.T) {
	t.Parallel()
	repo := &mock.Repository{}
	ctx := context.Background()
	sessionID := seedSession(t, repo)
	base := time.Now().UTC().Add(-time.Hour)

	agg := history.New(repo)
	if _, err := agg.WeakAreas(ctx); !errors.Is(err, history.ErrInsufficientData) {
		t.Fatalf("empty store: err=%v, want ErrInsufficientData", err)
	}

	// Two scored attempts are still below the minimum of three.
	for i := range 2 {
		att := scoredAttempt(sessionID, base, time.Duration(i)*time.Minute, map[types.Criterion]float64{
			types.CriterionFluency: 6.0,
		})
		if err := repo.SaveAttempt(ctx, att); err != nil {
			t.Fatalf("SaveAttempt: %v", err)
		}
	}
	if _, err := agg.WeakAreas(ctx); !errors.Is(err, history.ErrInsufficientData) {
		t.Fatalf("2 scored attempts: err=%v, want ErrInsufficientData", err)
	}
}

func TestWeakAreasMeansRounded(t *testing.T) {
	t.Parallel()
	repo := &mock.Repository{}
	ctx := context.Background()
	sessionID := seedSession(t, repo)
	base := time.Now().UTC().Add(-time.Hour)

	fluency := []float64{6.0, 6.5, 6.5}
	grammar := []float64{5.0, 5.5, 6.0}
	for i := range fluency {
		att := scoredAttempt(sessionID, base, time.Duration(i)*time.Minute, map[types.Criterion]float64{
			types.CriterionFluency: fluency[i],
			types.CriterionGrammar: grammar[i],
		})
		if err := repo.SaveAttempt(ctx, att); err != nil {
			t.Fatalf("SaveAttempt: %v", err)
		}
	}

	areas, err := history.New(repo).WeakAreas(ctx)
	if err != nil {
		t.Fatalf("WeakAreas: %v", err)
	}
	// (6.0+6.5+6.5)/3 = 6.333... rounds to 6.3.
	if got := areas[types.CriterionFluency]; math.Abs(got-6.3) > 1e-9 {
		t.Errorf("fluency mean=%g, want 6.3", got)
	}
	if got := areas[types.CriterionGrammar]; math.Abs(got-5.5) > 1e-9 {
		t.Errorf("grammar mean=%g, want 5.5", got)
	}
	if _, ok := areas[types.CriterionPronunciation]; ok {
		t.Error("pronunciation mean present despite never being scored")
	}
}

func TestBandTrendChronological(t *testing.T) {
	t.Parallel()
	repo := &mock.Repository{}
	ctx := context.Background()
	sessionID := seedSession(t, repo)
	base := time.Now().UTC().Add(-time.Hour)

	bands := []float64{5.5, 6.0, 6.5}
	for i, band := range bands {
		att := scoredAttempt(sessionID, base, time.Duration(i)*time.Minute, map[types.Criterion]float64{
			types.CriterionFluency: band,
		})
		att.Result.Overall = band
		if err := repo.SaveAttempt(ctx, att); err != nil {
			t.Fatalf("SaveAttempt: %v", err)
		}
	}

	points, err := history.New(repo).BandTrend(ctx, 0)
	if err != nil {
		t.Fatalf("BandTrend: %v", err)
	}
	if len(points) != len(bands) {
		t.Fatalf("got %d points, want %d", len(points), len(bands))
	}
	for i, p := range points {
		if p.Band != bands[i] {
			t.Errorf("point %d band=%g, want %g (oldest first)", i, p.Band, bands[i])
		}
	}
	if !points[0].Timestamp.Before(points[len(points)-1].Timestamp) {
		t.Error("points are not in chronological order")
	}
}

func TestCriterionTrendsChronological(t *testing.T) {
	t.Parallel()
	repo := &mock.Repository{}
	ctx := context.Background()
	sessionID := seedSession(t, repo)
	base := time.Now().UTC().Add(-time.Hour)

	scores := []float64{5.0, 6.0}
	for i, score := range scores {
		att := scoredAttempt(sessionID, base, time.Duration(i)*time.Minute, map[types.Criterion]float64{
			types.CriterionLexical: score,
		})
		if err := repo.SaveAttempt(ctx, att); err != nil {
			t.Fatalf("SaveAttempt: %v", err)
		}
	}

	points, err := history.New(repo).CriterionTrends(ctx, 0)
	if err != nil {
		t.Fatalf("CriterionTrends: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	for i, p := range points {
		if got := p.Scores[types.CriterionLexical]; got != scores[i] {
			t.Errorf("point %d lexical=%g, want %g", i, got, scores[i])
		}
		if _, ok := p.Scores[types.CriterionTask]; ok {
			t.Errorf("point %d has task score despite attempt never scoring it", i)
		}
	}
}

func TestDetailedWeaknessesEmpty(t *testing.T) {
	t.Parallel()
	repo := &mock.Repository{}

	_, err := history.New(repo).DetailedWeaknesses(context.Background(), 0)
	if !errors.Is(err, history.ErrInsufficientData) {
		t.Fatalf("err=%v, want ErrInsufficientData", err)
	}
}

func TestDetailedWeaknessesRanking(t *testing.T) {
	t.Parallel()
	repo := &mock.Repository{}
	ctx := context.Background()
	sessionID := seedSession(t, repo)
	base := time.Now().UTC().Add(-time.Hour)

	// Seven attempts, each flagging one distinct word, plus a repeated word
	// in the two oldest. "overused" must rank first; the singles tie and
	// rank newest first; the list caps at five.
	for i := range 7 {
		att := scoredAttempt(sessionID, base, time.Duration(i)*time.Minute, map[types.Criterion]float64{
			types.CriterionLexical: 6.0,
		})
		att.VocabularyUpgrades = []types.VocabularyUpgrade{
			{BasicWord: fmt.Sprintf("word%d", i)},
		}
		if i < 2 {
			att.VocabularyUpgrades = append(att.VocabularyUpgrades, types.VocabularyUpgrade{BasicWord: "Overused"})
		}
		if err := repo.SaveAttempt(ctx, att); err != nil {
			t.Fatalf("SaveAttempt: %v", err)
		}
	}

	report, err := history.New(repo).DetailedWeaknesses(ctx, 0)
	if err != nil {
		t.Fatalf("DetailedWeaknesses: %v", err)
	}
	if len(report.BasicWords) != 5 {
		t.Fatalf("got %d basic words, want 5", len(report.BasicWords))
	}
	if report.BasicWords[0].Word != "overused" || report.BasicWords[0].Count != 2 {
		t.Errorf("top word=%+v, want {overused 2} lowercased", report.BasicWords[0])
	}
	// Ties rank newest attempt first.
	for i, want := range []string{"word6", "word5", "word4", "word3"} {
		if got := report.BasicWords[i+1].Word; got != want {
			t.Errorf("rank %d word=%q, want %q", i+1, got, want)
		}
	}
}

func TestDetailedWeaknessesGrammarAndTips(t *testing.T) {
	t.Parallel()
	repo := &mock.Repository{}
	ctx := context.Background()
	sessionID := seedSession(t, repo)
	base := time.Now().UTC().Add(-time.Hour)

	for i := range 3 {
		att := scoredAttempt(sessionID, base, time.Duration(i)*time.Minute, map[types.Criterion]float64{
			types.CriterionGrammar: 5.5,
		})
		att.GrammarCorrections = []types.GrammarCorrection{
			{Original: "he go", Corrected: "he goes"},
		}
		att.ImprovementTips = []string{"use linking words"}
		if err := repo.SaveAttempt(ctx, att); err != nil {
			t.Fatalf("SaveAttempt: %v", err)
		}
	}

	report, err := history.New(repo).DetailedWeaknesses(ctx, 0)
	if err != nil {
		t.Fatalf("DetailedWeaknesses: %v", err)
	}
	if len(report.GrammarErrors) != 1 {
		t.Fatalf("got %d grammar errors, want 1", len(report.GrammarErrors))
	}
	ge := report.GrammarErrors[0]
	if ge.Original != "he go" || ge.Corrected != "he goes" || ge.Count != 3 {
		t.Errorf("grammar error=%+v, want {he go, he goes, 3}", ge)
	}
	if len(report.RecurringTips) != 1 || report.RecurringTips[0].Count != 3 {
		t.Errorf("recurring tips=%+v, want one tip seen 3 times", report.RecurringTips)
	}
}

func TestCriterionDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scores []float64
		want   history.Direction
	}{
		{name: "improving", scores: []float64{6.0, 6.0, 7.0, 7.0}, want: history.DirectionImproving},
		{name: "declining", scores: []float64{7.0, 7.0, 6.0, 6.0}, want: history.DirectionDeclining},
		{name: "stable at threshold", scores: []float64{6.0, 6.0, 6.3, 6.3}, want: history.DirectionStable},
		{name: "too few attempts", scores: []float64{5.0, 7.0, 7.0}, want: history.DirectionInsufficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &mock.Repository{}
			ctx := context.Background()
			sessionID := seedSession(t, repo)
			base := time.Now().UTC().Add(-time.Hour)

			for i, score := range tt.scores {
				att := scoredAttempt(sessionID, base, time.Duration(i)*time.Minute, map[types.Criterion]float64{
					types.CriterionFluency: score,
				})
				att.ImprovementTips = []string{"tip"}
				if err := repo.SaveAttempt(ctx, att); err != nil {
					t.Fatalf("SaveAttempt: %v", err)
				}
			}

			report, err := history.New(repo).DetailedWeaknesses(ctx, 0)
			if err != nil {
				t.Fatalf("DetailedWeaknesses: %v", err)
			}
			trend, ok := report.CriterionTrends[types.CriterionFluency]
			if !ok {
				t.Fatal("fluency trend missing")
			}
			if trend.Direction != tt.want {
				t.Errorf("direction=%q, want %q", trend.Direction, tt.want)
			}

			var sum float64
			for _, s := range tt.scores {
				sum += s
			}
			want := math.Round(sum/float64(len(tt.scores))*10) / 10
			if math.Abs(trend.Avg-want) > 1e-9 {
				t.Errorf("avg=%g, want %g", trend.Avg, want)
			}
		})
	}
}
