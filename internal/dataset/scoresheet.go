package dataset

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"voice-coach-go/internal/session"
)

const (
	ScoreSheet      = "Score"
	TranscriptSheet = "Transcript"
	TipsSheet       = "Tips"
)

// WriteScoreSheet saves a session snapshot as an xlsx workbook: one row per
// checklist item, the transcript and the tips on separate sheets.
func WriteScoreSheet(path string, snap session.Snapshot) error {
	f, err := buildScoreSheet(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteScoreSheetTo streams the workbook built by WriteScoreSheet.
func WriteScoreSheetTo(w io.Writer, snap session.Snapshot) error {
	f, err := buildScoreSheet(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write score sheet: %w", err)
	}
	return nil
}

func buildScoreSheet(snap session.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := build(f, snap); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func build(f *excelize.File, snap session.Snapshot) error {
	if err := f.SetSheetName("Sheet1", ScoreSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("style: %w", err)
	}

	rep := snap.ScoreReport
	rows := [][]any{{"ID", "Item", "Points", "Max points", "Evidence"}}
	for _, it := range rep.Items {
		rows = append(rows, []any{it.ID, it.Label, it.Points, it.MaxPoints, strings.Join(it.Evidence, "; ")})
	}
	rows = append(rows, []any{"", "Total", rep.Total, rep.MaxTotal, ""})
	if err := writeRows(f, ScoreSheet, rows); err != nil {
		return err
	}
	last := len(rows)
	_ = f.SetCellStyle(ScoreSheet, "A1", "E1", bold)
	_ = f.SetCellStyle(ScoreSheet, cell(1, last), cell(5, last), bold)
	_ = f.SetColWidth(ScoreSheet, "B", "B", 70)
	_ = f.SetColWidth(ScoreSheet, "E", "E", 50)

	if _, err := f.NewSheet(TranscriptSheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	trows := [][]any{{"Timestamp", "Speaker", "Text"}}
	for _, t := range snap.Turns {
		trows = append(trows, []any{t.Timestamp.Format(time.RFC3339), string(t.Speaker), t.Text})
	}
	if err := writeRows(f, TranscriptSheet, trows); err != nil {
		return err
	}
	_ = f.SetCellStyle(TranscriptSheet, "A1", "C1", bold)
	_ = f.SetColWidth(TranscriptSheet, "C", "C", 90)

	if _, err := f.NewSheet(TipsSheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	tips := [][]any{{"Tip"}}
	for _, tip := range rep.Tips {
		tips = append(tips, []any{tip})
	}
	if err := writeRows(f, TipsSheet, tips); err != nil {
		return err
	}
	_ = f.SetCellStyle(TipsSheet, "A1", "A1", bold)
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, r := range rows {
		if err := f.SetSheetRow(sheet, cell(1, i+1), &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
