package evaluation

import (
	"github.com/sirupsen/logrus"

	"voice-coach-go/internal/checklist"
	"voice-coach-go/internal/intent"
	"voice-coach-go/internal/logger"
	"voice-coach-go/internal/textnorm"
)

type itemState struct {
	points int
	cues   map[int]bool
	fields map[intent.Field]bool
	debits []string
}

// Engine holds one session's score state. It is not safe for concurrent use;
// each session owns its own Engine.
type Engine struct {
	items    []checklist.Item
	states   []*itemState
	maxTotal int
	observed int
	log      *logrus.Entry
}

type Option func(*Engine)

func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEngine(cl *checklist.Checklist, opts ...Option) *Engine {
	e := &Engine{
		items:    cl.Items(),
		maxTotal: cl.MaxTotal(),
		log:      logger.Discard(),
	}
	e.states = make([]*itemState, len(e.items))
	for i := range e.items {
		e.states[i] = &itemState{
			cues:   map[int]bool{},
			fields: map[intent.Field]bool{},
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithField("component", "evaluation")
	return e
}

// ObserveTurn scores one agent utterance. The utterance is flattened to a
// single line first, the same shape it takes in transcript.AgentText, so
// scoring turn by turn and scoring the joined transcript agree.
func (e *Engine) ObserveTurn(text string) {
	e.Observe(textnorm.Flatten(text))
}

// Observe scores agent text with one utterance per line, usually the
// concatenation of every agent turn so far. Evidence only ever accumulates,
// so repeated observation lands on the same scores. Empty text contributes
// nothing.
func (e *Engine) Observe(text string) {
	norm := textnorm.Normalize(text)
	if norm == "" {
		return
	}
	e.observed++

	var fields []intent.Field
	for i, it := range e.items {
		st := e.states[i]
		switch it.Rule {
		case checklist.RuleProportional, checklist.RuleConjunctive:
			for ci, cue := range it.Cues {
				if !st.cues[ci] && cue.Match(norm) {
					st.cues[ci] = true
				}
			}
		case checklist.RuleDistinctFields:
			if fields == nil {
				fields = intent.DetectFields(norm)
			}
			for _, f := range fields {
				if contains(it.Fields, f) {
					st.fields[f] = true
				}
			}
		}
		e.refresh(i)
	}
}

// Penalize debits the listening item by its step for a genuine repeated
// request. Debits floor at zero and are never restored. It reports whether
// the rubric has a listening item at all.
func (e *Engine) Penalize(reason string) bool {
	for i, it := range e.items {
		if it.Rule != checklist.RuleBaseline {
			continue
		}
		st := e.states[i]
		st.debits = append(st.debits, reason)
		e.refresh(i)
		e.log.WithFields(logrus.Fields{
			"item":   it.ID,
			"reason": reason,
			"points": st.points,
		}).Debug("listening item debited")
		return true
	}
	return false
}

func (e *Engine) refresh(i int) {
	it := e.items[i]
	st := e.states[i]
	switch it.Rule {
	case checklist.RuleBaseline:
		pts := 0
		if e.observed > 0 {
			pts = it.Weight - it.DebitStep*len(st.debits)
		}
		st.points = clamp(pts, 0, it.Weight)
		return
	case checklist.RuleProportional:
		st.points = max(st.points, proportional(it.Weight, len(st.cues), len(it.Cues)))
	case checklist.RuleConjunctive:
		if allGroups(it.Cues, st.cues) {
			st.points = it.Weight
		}
	case checklist.RuleDistinctFields:
		st.points = max(st.points, clamp(it.Weight*len(st.fields)/len(it.Fields), 0, it.Weight))
	}
}

// proportional is min(weight, weight*m/max(3,k)), floored to whole points.
func proportional(weight, m, k int) int {
	return clamp(weight*m/max(3, k), 0, weight)
}

func allGroups(cues []checklist.Cue, hits map[int]bool) bool {
	seen := map[int]bool{}
	need := map[int]bool{}
	for i, cue := range cues {
		need[cue.Group] = true
		if hits[i] {
			seen[cue.Group] = true
		}
	}
	return len(need) > 0 && len(seen) == len(need)
}

// Scores returns a snapshot of every item in rubric order.
func (e *Engine) Scores() []ItemScore {
	out := make([]ItemScore, 0, len(e.items))
	for i, it := range e.items {
		out = append(out, ItemScore{
			ID:        it.ID,
			Label:     it.Label,
			Points:    e.states[i].points,
			MaxPoints: it.Weight,
			Evidence:  e.evidence(i),
		})
	}
	return out
}

func (e *Engine) evidence(i int) []string {
	it := e.items[i]
	st := e.states[i]
	ev := []string{}
	switch it.Rule {
	case checklist.RuleBaseline:
		ev = append(ev, st.debits...)
	case checklist.RuleDistinctFields:
		for _, f := range it.Fields {
			if st.fields[f] {
				ev = append(ev, f.Label())
			}
		}
	default:
		for ci, cue := range it.Cues {
			if st.cues[ci] {
				ev = append(ev, cue.Label)
			}
		}
	}
	return ev
}

func (e *Engine) Total() int {
	total := 0
	for _, st := range e.states {
		total += st.points
	}
	return total
}

func (e *Engine) MaxTotal() int { return e.maxTotal }

// Points returns the current points of item id.
func (e *Engine) Points(id int) int {
	for i, it := range e.items {
		if it.ID == id {
			return e.states[i].points
		}
	}
	return 0
}

// Evaluate scores a full concatenation of agent text on a fresh engine.
func Evaluate(cl *checklist.Checklist, agentText string) Report {
	e := NewEngine(cl)
	e.Observe(agentText)
	return e.Report()
}

func contains(fields []intent.Field, f intent.Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
