package evaluation

import "voice-coach-go/internal/actionable"

type ItemScore struct {
	ID        int      `json:"id"`
	Label     string   `json:"label"`
	Points    int      `json:"points"`
	MaxPoints int      `json:"max_points"`
	Evidence  []string `json:"evidence"`
}

// Report is the score report handed to the UI and stored in exports.
type Report struct {
	Items    []ItemScore `json:"items"`
	Total    int         `json:"total"`
	MaxTotal int         `json:"max_total"`
	Tips     []string    `json:"tips"`
}

// Report builds a report without touching the score state.
func (e *Engine) Report() Report {
	items := e.Scores()
	return Report{
		Items:    items,
		Total:    e.Total(),
		MaxTotal: e.maxTotal,
		Tips:     actionable.Tips(e.gaps(items)),
	}
}

// ActionCard summarises the largest gap.
func (e *Engine) ActionCard() actionable.ActionCard {
	return actionable.Generate(e.gaps(e.Scores()))
}

func (e *Engine) gaps(items []ItemScore) []actionable.Gap {
	gaps := make([]actionable.Gap, 0, len(items))
	for i, s := range items {
		gaps = append(gaps, actionable.Gap{
			ID:        s.ID,
			Label:     s.Label,
			Tip:       e.items[i].Tip,
			Points:    s.Points,
			MaxPoints: s.MaxPoints,
		})
	}
	return gaps
}

// Item looks up one item score by id.
func (r Report) Item(id int) (ItemScore, bool) {
	for _, it := range r.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemScore{}, false
}
