// Package history aggregates scored attempts into progress views: band and
// criterion trends over time, current weak areas, and recurring mistakes.
// Everything here is derived by counting and averaging stored feedback — no
// evaluator calls are made.
package history

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/veslan/bandly/pkg/store"
	"github.com/veslan/bandly/pkg/types"
)

// ErrInsufficientData is returned when too few attempts exist to support the
// requested aggregate. Callers should show "keep practicing" rather than an
// aggregate built on noise.
var ErrInsufficientData = errors.New("history: not enough attempts")

const (
	// weakAreaWindow is how many recent attempts feed the weak-area means.
	weakAreaWindow = 20

	// weakAreaMinSamples is the fewest scored attempts a weak-area mean may
	// be built on.
	weakAreaMinSamples = 3

	// trendMinAttempts is the fewest attempts needed to call a direction.
	trendMinAttempts = 4

	// trendDelta is the half-to-half band difference below which a
	// criterion counts as stable.
	trendDelta = 0.3

	// topMistakes caps each ranked mistake list.
	topMistakes = 5

	defaultTrendLimit = 50
)

// Direction classifies how a criterion has moved across the trend window.
type Direction string

const (
	DirectionImproving    Direction = "improving"
	DirectionDeclining    Direction = "declining"
	DirectionStable       Direction = "stable"
	DirectionInsufficient Direction = "insufficient data"
)

// Aggregator computes progress views over a store.Repository.
type Aggregator struct {
	repo       store.Repository
	window     int
	minSamples int
}

// Option tunes an Aggregator.
type Option func(*Aggregator)

// WithWeakAreaWindow overrides how many recent attempts feed the weak-area
// means. Non-positive values keep the default.
func WithWeakAreaWindow(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.window = n
		}
	}
}

// WithMinSamples overrides the fewest scored attempts a weak-area mean may be
// built on. Non-positive values keep the default.
func WithMinSamples(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.minSamples = n
		}
	}
}

// New creates an Aggregator reading from repo.
func New(repo store.Repository, opts ...Option) *Aggregator {
	a := &Aggregator{repo: repo, window: weakAreaWindow, minSamples: weakAreaMinSamples}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TrendPoint is one attempt's overall band at a point in time.
type TrendPoint struct {
	Timestamp time.Time
	Band      float64
}

// BandTrend returns the overall band of the most recent attempts, oldest
// first, ready for plotting. A non-positive limit uses the default window.
func (a *Aggregator) BandTrend(ctx context.Context, limit int) ([]TrendPoint, error) {
	attempts, err := a.recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	points := make([]TrendPoint, 0, len(attempts))
	// Attempts arrive newest first; reverse into chronological order.
	for i := len(attempts) - 1; i >= 0; i-- {
		points = append(points, TrendPoint{
			Timestamp: attempts[i].Timestamp,
			Band:      attempts[i].Result.Overall,
		})
	}
	return points, nil
}

// CriterionPoint is one attempt's per-criterion scores at a point in time.
// Criteria the attempt was not scored on are absent.
type CriterionPoint struct {
	Timestamp time.Time
	Scores    map[types.Criterion]float64
}

// CriterionTrends returns per-criterion scores of the most recent attempts,
// oldest first.
func (a *Aggregator) CriterionTrends(ctx context.Context, limit int) ([]CriterionPoint, error) {
	attempts, err := a.recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	points := make([]CriterionPoint, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		p := CriterionPoint{
			Timestamp: attempts[i].Timestamp,
			Scores:    make(map[types.Criterion]float64, len(attempts[i].Result.Criteria)),
		}
		for criterion, cs := range attempts[i].Result.Criteria {
			p.Scores[criterion] = cs.Score
		}
		points = append(points, p)
	}
	return points, nil
}

// WeakAreas returns the mean score per criterion over the recent attempt
// window, rounded to one decimal. Returns ErrInsufficientData when fewer than
// three scored attempts exist — a mean of one or two attempts would just echo
// their noise.
func (a *Aggregator) WeakAreas(ctx context.Context) (map[types.Criterion]float64, error) {
	attempts, err := a.repo.RecentAttempts(ctx, a.window)
	if err != nil {
		return nil, fmt.Errorf("history: weak areas: %w", err)
	}

	scored := 0
	sums := make(map[types.Criterion]float64)
	counts := make(map[types.Criterion]int)
	for _, att := range attempts {
		if len(att.Result.Criteria) == 0 {
			continue
		}
		scored++
		for criterion, cs := range att.Result.Criteria {
			if cs.Score > 0 {
				sums[criterion] += cs.Score
				counts[criterion]++
			}
		}
	}
	if scored < a.minSamples {
		return nil, fmt.Errorf("%w: %d scored attempts, need %d", ErrInsufficientData, scored, a.minSamples)
	}

	means := make(map[types.Criterion]float64, len(sums))
	for criterion, sum := range sums {
		means[criterion] = round1(sum / float64(counts[criterion]))
	}
	return means, nil
}

// GrammarErrorCount is one recurring grammar mistake with its frequency.
type GrammarErrorCount struct {
	Original  string
	Corrected string
	Count     int
}

// WordCount is one basic word flagged for upgrade with its frequency.
type WordCount struct {
	Word  string
	Count int
}

// TipCount is one repeated improvement tip with its frequency.
type TipCount struct {
	Tip   string
	Count int
}

// CriterionTrend is the summary for one criterion across the window.
type CriterionTrend struct {
	Avg       float64
	Direction Direction
}

// WeaknessReport aggregates recurring mistakes and per-criterion movement
// from recent attempts.
type WeaknessReport struct {
	// GrammarErrors lists the most frequent (original, corrected) pairs,
	// capped at five, ties broken most recent first.
	GrammarErrors []GrammarErrorCount

	// BasicWords lists the most frequently flagged basic words, lowercased.
	BasicWords []WordCount

	// RecurringTips lists the most repeated improvement tips.
	RecurringTips []TipCount

	// CriterionTrends maps each criterion seen in the window to its mean
	// and direction.
	CriterionTrends map[types.Criterion]CriterionTrend
}

// DetailedWeaknesses builds a WeaknessReport from the most recent attempts.
// A non-positive limit uses the default window.
func (a *Aggregator) DetailedWeaknesses(ctx context.Context, limit int) (WeaknessReport, error) {
	attempts, err := a.recent(ctx, limit)
	if err != nil {
		return WeaknessReport{}, err
	}
	if len(attempts) == 0 {
		return WeaknessReport{}, fmt.Errorf("%w: no attempts recorded", ErrInsufficientData)
	}

	grammar := newCounter()
	words := newCounter()
	tips := newCounter()
	for _, att := range attempts {
		for _, gc := range att.GrammarCorrections {
			orig := strings.TrimSpace(gc.Original)
			corr := strings.TrimSpace(gc.Corrected)
			if orig != "" && corr != "" {
				grammar.add(orig + "\x00" + corr)
			}
		}
		for _, vu := range att.VocabularyUpgrades {
			if word := strings.ToLower(strings.TrimSpace(vu.BasicWord)); word != "" {
				words.add(word)
			}
		}
		for _, tip := range att.ImprovementTips {
			if tip = strings.TrimSpace(tip); tip != "" {
				tips.add(tip)
			}
		}
	}

	report := WeaknessReport{
		CriterionTrends: criterionTrends(attempts),
	}
	for _, e := range grammar.top(topMistakes) {
		orig, corr, _ := strings.Cut(e.key, "\x00")
		report.GrammarErrors = append(report.GrammarErrors, GrammarErrorCount{Original: orig, Corrected: corr, Count: e.count})
	}
	for _, e := range words.top(topMistakes) {
		report.BasicWords = append(report.BasicWords, WordCount{Word: e.key, Count: e.count})
	}
	for _, e := range tips.top(topMistakes) {
		report.RecurringTips = append(report.RecurringTips, TipCount{Tip: e.key, Count: e.count})
	}
	return report, nil
}

// criterionTrends compares the first half of the window with the second to
// call a direction per criterion. Fewer than four attempts can not support a
// direction, only a mean.
func criterionTrends(attempts []types.Attempt) map[types.Criterion]CriterionTrend {
	// Chronological order, oldest first.
	ordered := make([]types.Attempt, len(attempts))
	for i, att := range attempts {
		ordered[len(attempts)-1-i] = att
	}

	trends := make(map[types.Criterion]CriterionTrend)
	mid := len(ordered) / 2
	for _, criterion := range []types.Criterion{
		types.CriterionFluency,
		types.CriterionLexical,
		types.CriterionGrammar,
		types.CriterionPronunciation,
		types.CriterionTask,
	} {
		var all, first, second []float64
		for i, att := range ordered {
			cs, ok := att.Result.Criteria[criterion]
			if !ok || cs.Score <= 0 {
				continue
			}
			all = append(all, cs.Score)
			if i < mid {
				first = append(first, cs.Score)
			} else {
				second = append(second, cs.Score)
			}
		}
		if len(all) == 0 {
			continue
		}

		trend := CriterionTrend{Avg: round1(mean(all)), Direction: DirectionInsufficient}
		if len(ordered) >= trendMinAttempts && len(first) > 0 && len(second) > 0 {
			switch diff := mean(second) - mean(first); {
			case diff > trendDelta:
				trend.Direction = DirectionImproving
			case diff < -trendDelta:
				trend.Direction = DirectionDeclining
			default:
				trend.Direction = DirectionStable
			}
		}
		trends[criterion] = trend
	}
	return trends
}

func (a *Aggregator) recent(ctx context.Context, limit int) ([]types.Attempt, error) {
	if limit <= 0 {
		limit = defaultTrendLimit
	}
	attempts, err := a.repo.RecentAttempts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent attempts: %w", err)
	}
	return attempts, nil
}

// counter tallies keys while remembering first-seen order, so ties rank the
// most recently seen mistake first (attempts are scanned newest first).
type counter struct {
	counts map[string]int
	order  map[string]int
	next   int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int), order: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order[key] = c.next
		c.next++
	}
	c.counts[key]++
}

type counted struct {
	key   string
	count int
}

func (c *counter) top(k int) []counted {
	out := make([]counted, 0, len(c.counts))
	for key, n := range c.counts {
		out = append(out, counted{key: key, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return c.order[out[i].key] < c.order[out[j].key]
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
