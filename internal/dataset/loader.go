package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"voice-coach-go/internal/logger"
	"voice-coach-go/internal/scenario"
)

var (
	ErrNoSheets = errors.New("no sheets")
	ErrNoRows   = errors.New("no data rows")
)

// Columns are the detected column indexes of a transcript workbook, -1 when
// missing.
type Columns struct {
	CallID     int `json:"call_id"`
	Transcript int `json:"transcript"`
}

// DetectColumns applies header heuristics. A missing call id falls back to
// the first column, a missing transcript to the last one.
func DetectColumns(header []string) Columns {
	cols := Columns{CallID: -1, Transcript: -1}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "transcri") || strings.Contains(l, "text") || strings.Contains(l, "fala"):
			if cols.Transcript == -1 {
				cols.Transcript = i
			}
		case strings.Contains(l, "idanalysis") || strings.Contains(l, "call id") || strings.Contains(l, "callid") || l == "id" || strings.HasSuffix(l, " id"):
			if cols.CallID == -1 {
				cols.CallID = i
			}
		}
	}
	// fallback heuristics
	if cols.CallID == -1 && len(header) > 1 {
		cols.CallID = 0
	}
	if cols.Transcript == -1 && len(header) > 0 {
		cols.Transcript = len(header) - 1
		if cols.Transcript == cols.CallID {
			cols.Transcript = -1
		}
	}
	return cols
}

// ReadRows reads transcript rows from the first sheet of an xlsx workbook.
func ReadRows(path string, log *logrus.Entry) ([]scenario.Row, error) {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithFields(logrus.Fields{"component": "dataset.loader", "path": path})

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, ErrNoRows
	}

	cols := DetectColumns(rows[0])
	log.WithFields(logrus.Fields{
		"callIdIdx":     cols.CallID,
		"transcriptIdx": cols.Transcript,
	}).Debug("detected column indices")
	if cols.CallID == -1 || cols.Transcript == -1 {
		return nil, fmt.Errorf("cannot detect call id and transcript columns in %q", strings.Join(rows[0], ", "))
	}

	var out []scenario.Row
	for i, r := range rows {
		if i == 0 {
			continue
		}
		var row scenario.Row
		if cols.CallID < len(r) {
			row.CallID = strings.TrimSpace(r[cols.CallID])
		}
		if cols.Transcript < len(r) {
			row.Text = strings.TrimSpace(r[cols.Transcript])
		}
		// skip rows without an id quietly
		if row.CallID == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// LoadScenarios builds the scenario library from a transcript workbook.
func LoadScenarios(path string, log *logrus.Entry) ([]scenario.Scenario, error) {
	rows, err := ReadRows(path, log)
	if err != nil {
		return nil, err
	}
	return scenario.Build(rows), nil
}
