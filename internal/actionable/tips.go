package actionable

import (
	"fmt"
	"sort"
)

// AllClearTip is returned when every item earned its full points.
const AllClearTip = "Excellent! Every checklist item was fully met."

// Gap is one checklist item's shortfall.
type Gap struct {
	ID        int
	Label     string
	Tip       string
	Points    int
	MaxPoints int
}

func (g Gap) Missing() int { return g.MaxPoints - g.Points }

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Tips ranks items by missing points (largest first, ties by id) and renders
// one fixed suggestion per item that is not full.
func Tips(gaps []Gap) []string {
	ranked := rank(gaps)
	if len(ranked) == 0 {
		return []string{AllClearTip}
	}
	tips := make([]string, 0, len(ranked))
	for _, g := range ranked {
		tips = append(tips, fmt.Sprintf("Item %d (%d/%d): %s", g.ID, g.Points, g.MaxPoints, g.Tip))
	}
	return tips
}

// Generate builds a single card for the item with the largest gap.
func Generate(gaps []Gap) ActionCard {
	ranked := rank(gaps)
	if len(ranked) == 0 {
		return ActionCard{
			Insight: "All checklist items met",
			Action:  "Keep the same script on the next call",
			Impact:  "No points left on the table",
		}
	}
	worst := ranked[0]
	return ActionCard{
		Insight: fmt.Sprintf("Largest gap on item %d: %s (%d/%d)", worst.ID, worst.Label, worst.Points, worst.MaxPoints),
		Action:  worst.Tip,
		Impact:  fmt.Sprintf("Up to %d more points", worst.Missing()),
	}
}

func rank(gaps []Gap) []Gap {
	var out []Gap
	for _, g := range gaps {
		if g.Missing() > 0 {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Missing() != out[j].Missing() {
			return out[i].Missing() > out[j].Missing()
		}
		return out[i].ID < out[j].ID
	})
	return out
}
