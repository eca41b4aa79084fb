package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/veslan/bandly/internal/observe"
	"github.com/veslan/bandly/pkg/store"
	"github.com/veslan/bandly/pkg/types"
)

// Exporter writes progress views into an Excel workbook, one sheet per view.
// The workbook is self-contained so it can be shared with a tutor who never
// sees the application.
type Exporter struct {
	agg     *Aggregator
	repo    store.Repository
	metrics *observe.Metrics
}

// NewExporter creates an Exporter reading through agg and repo.
func NewExporter(agg *Aggregator, repo store.Repository, metrics *observe.Metrics) *Exporter {
	return &Exporter{agg: agg, repo: repo, metrics: metrics}
}

// Export builds the workbook and saves it at path. Views that lack data are
// written with a placeholder note instead of failing the whole export.
func (e *Exporter) Export(ctx context.Context, path string) error {
	start := time.Now()
	defer func() {
		e.metrics.ExportDuration.Record(ctx, time.Since(start).Seconds())
	}()

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeBandTrend(ctx, f); err != nil {
		return err
	}
	if err := e.writeCriterionTrends(ctx, f); err != nil {
		return err
	}
	if err := e.writeWeakAreas(ctx, f); err != nil {
		return err
	}
	if err := e.writeWeaknesses(ctx, f); err != nil {
		return err
	}
	if err := e.writeSessions(ctx, f); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("history export: save %q: %w", path, err)
	}
	return nil
}

func (e *Exporter) writeBandTrend(ctx context.Context, f *excelize.File) error {
	const sheet = "Band Trend"
	// The default sheet becomes the first view.
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("history export: rename sheet: %w", err)
	}

	points, err := e.agg.BandTrend(ctx, 0)
	if err != nil {
		return err
	}

	rows := [][]any{{"Timestamp", "Overall Band"}}
	for _, p := range points {
		rows = append(rows, []any{p.Timestamp, p.Band})
	}
	return writeRows(f, sheet, rows)
}

func (e *Exporter) writeCriterionTrends(ctx context.Context, f *excelize.File) error {
	const sheet = "Criterion Trends"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("history export: new sheet: %w", err)
	}

	points, err := e.agg.CriterionTrends(ctx, 0)
	if err != nil {
		return err
	}

	columns := []types.Criterion{
		types.CriterionFluency,
		types.CriterionLexical,
		types.CriterionGrammar,
		types.CriterionPronunciation,
		types.CriterionTask,
	}
	header := []any{"Timestamp"}
	for _, c := range columns {
		header = append(header, c.String())
	}

	rows := [][]any{header}
	for _, p := range points {
		row := []any{p.Timestamp}
		for _, c := range columns {
			if score, ok := p.Scores[c]; ok {
				row = append(row, score)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return writeRows(f, sheet, rows)
}

func (e *Exporter) writeWeakAreas(ctx context.Context, f *excelize.File) error {
	const sheet = "Weak Areas"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("history export: new sheet: %w", err)
	}

	areas, err := e.agg.WeakAreas(ctx)
	if errors.Is(err, ErrInsufficientData) {
		return writeRows(f, sheet, [][]any{{"Not enough attempts yet — complete at least 3 to see weak areas."}})
	}
	if err != nil {
		return err
	}

	rows := [][]any{{"Criterion", "Average Band"}}
	for _, c := range []types.Criterion{
		types.CriterionFluency,
		types.CriterionLexical,
		types.CriterionGrammar,
		types.CriterionPronunciation,
		types.CriterionTask,
	} {
		if avg, ok := areas[c]; ok {
			rows = append(rows, []any{c.String(), avg})
		}
	}
	return writeRows(f, sheet, rows)
}

func (e *Exporter) writeWeaknesses(ctx context.Context, f *excelize.File) error {
	const sheet = "Recurring Mistakes"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("history export: new sheet: %w", err)
	}

	report, err := e.agg.DetailedWeaknesses(ctx, 0)
	if errors.Is(err, ErrInsufficientData) {
		return writeRows(f, sheet, [][]any{{"No attempts recorded yet."}})
	}
	if err != nil {
		return err
	}

	rows := [][]any{{"Grammar Errors", "", ""}, {"You said", "Correct form", "Times"}}
	for _, ge := range report.GrammarErrors {
		rows = append(rows, []any{ge.Original, ge.Corrected, ge.Count})
	}
	rows = append(rows, []any{}, []any{"Words To Upgrade", ""}, []any{"Word", "Times"})
	for _, w := range report.BasicWords {
		rows = append(rows, []any{w.Word, w.Count})
	}
	rows = append(rows, []any{}, []any{"Recurring Tips", ""}, []any{"Tip", "Times"})
	for _, tip := range report.RecurringTips {
		rows = append(rows, []any{tip.Tip, tip.Count})
	}
	rows = append(rows, []any{}, []any{"Criterion Direction", "", ""}, []any{"Criterion", "Average", "Direction"})
	for _, c := range []types.Criterion{
		types.CriterionFluency,
		types.CriterionLexical,
		types.CriterionGrammar,
		types.CriterionPronunciation,
		types.CriterionTask,
	} {
		if trend, ok := report.CriterionTrends[c]; ok {
			rows = append(rows, []any{c.String(), trend.Avg, string(trend.Direction)})
		}
	}
	return writeRows(f, sheet, rows)
}

func (e *Exporter) writeSessions(ctx context.Context, f *excelize.File) error {
	const sheet = "Sessions"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("history export: new sheet: %w", err)
	}

	sessions, err := e.repo.RecentSessions(ctx, 0)
	if err != nil {
		return fmt.Errorf("history export: sessions: %w", err)
	}

	rows := [][]any{{"Timestamp", "Mode", "Overall Band", "Attempts"}}
	for _, s := range sessions {
		rows = append(rows, []any{s.Timestamp, string(s.Mode), s.OverallBand, s.AttemptCount})
	}
	return writeRows(f, sheet, rows)
}

// writeRows fills sheet from A1 downward, one slice per row.
func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("history export: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("history export: write row %d of %q: %w", i+1, sheet, err)
		}
	}
	return nil
}
