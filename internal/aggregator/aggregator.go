package aggregator

import (
	"fmt"
	"math"
	"strings"

	"voice-coach-go/internal/evaluation"
)

type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
	StatusMissing  Status = "missing"
)

const (
	maxDescription = 60
	maxEvidence    = 2
)

// Row is one display line of the per-item breakdown.
type Row struct {
	ID          int    `json:"id"`
	Status      Status `json:"status"`
	Description string `json:"description"`
	Score       string `json:"score"`
	Evidence    string `json:"evidence"`
}

// Summary condenses a score report into headline metrics.
type Summary struct {
	Total      int     `json:"total"`
	MaxTotal   int     `json:"max_total"`
	Percentage float64 `json:"percentage"`
	Complete   int     `json:"complete"`
	Partial    int     `json:"partial"`
	Missing    int     `json:"missing"`
	Items      int     `json:"items"`
	Rows       []Row   `json:"rows"`
}

func StatusOf(it evaluation.ItemScore) Status {
	switch {
	case it.Points >= it.MaxPoints:
		return StatusComplete
	case it.Points > 0:
		return StatusPartial
	default:
		return StatusMissing
	}
}

func Aggregate(r evaluation.Report) Summary {
	s := Summary{
		Total:    r.Total,
		MaxTotal: r.MaxTotal,
		Items:    len(r.Items),
		Rows:     make([]Row, 0, len(r.Items)),
	}
	if r.MaxTotal > 0 {
		s.Percentage = math.Round(float64(r.Total)/float64(r.MaxTotal)*1000) / 10
	}
	for _, it := range r.Items {
		st := StatusOf(it)
		switch st {
		case StatusComplete:
			s.Complete++
		case StatusPartial:
			s.Partial++
		default:
			s.Missing++
		}
		s.Rows = append(s.Rows, Row{
			ID:          it.ID,
			Status:      st,
			Description: truncate(it.Label, maxDescription),
			Score:       fmt.Sprintf("%d/%d", it.Points, it.MaxPoints),
			Evidence:    evidence(it.Evidence),
		})
	}
	return s
}

// Headline renders the three top-line metrics.
func (s Summary) Headline() string {
	return fmt.Sprintf("Total %d/%d | %.1f%% | Complete items %d/%d", s.Total, s.MaxTotal, s.Percentage, s.Complete, s.Items)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func evidence(ev []string) string {
	if len(ev) == 0 {
		return "None"
	}
	return strings.Join(ev[:min(len(ev), maxEvidence)], "; ")
}
