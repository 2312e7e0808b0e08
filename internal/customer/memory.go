package customer

import (
	"maps"

	"voice-coach-go/internal/intent"
	"voice-coach-go/internal/scenario"
)

// Signal bounds for patience and satisfaction.
const (
	MinSignal = 0
	MaxSignal = 100
)

type Phase string

const (
	PhaseOpening        Phase = "opening"
	PhaseDataCollection Phase = "data_collection"
	PhaseClosing        Phase = "closing"
)

// Memory is what the simulated customer remembers about the call so far.
type Memory struct {
	Disclosed           map[intent.Field]string `json:"disclosed"`
	Patience            int                     `json:"patience"`
	Satisfaction        int                     `json:"satisfaction"`
	RepetitionCount     int                     `json:"repetition_count"`
	Greeted             bool                    `json:"greeted"`
	ClosingAcknowledged bool                    `json:"closing_acknowledged"`
	Phase               Phase                   `json:"phase"`
}

// Outcome describes what one agent utterance did to the memory.
type Outcome struct {
	Repetition     bool           `json:"repetition"`
	RepeatedFields []intent.Field `json:"repeated_fields,omitempty"`
	Disclosed      []intent.Field `json:"disclosed,omitempty"`
}

func NewMemory(t Tuning) *Memory {
	return &Memory{
		Disclosed:    map[intent.Field]string{},
		Patience:     clamp(t.InitialPatience),
		Satisfaction: clamp(t.InitialSatisfaction),
		Phase:        PhaseOpening,
	}
}

func (m *Memory) IsDisclosed(f intent.Field) bool {
	_, ok := m.Disclosed[f]
	return ok
}

// Disclose records value for f. A field is disclosed at most once; later
// calls are no-ops and return false.
func (m *Memory) Disclose(f intent.Field, value string) bool {
	if m.Disclosed == nil {
		m.Disclosed = map[intent.Field]string{}
	}
	if _, ok := m.Disclosed[f]; ok {
		return false
	}
	m.Disclosed[f] = value
	return true
}

// Adjust shifts both signals and clamps them to [MinSignal, MaxSignal].
func (m *Memory) Adjust(patience, satisfaction int) {
	m.Patience = clamp(m.Patience + patience)
	m.Satisfaction = clamp(m.Satisfaction + satisfaction)
}

// Clone returns a deep copy safe to hand to other goroutines.
func (m *Memory) Clone() Memory {
	c := *m
	c.Disclosed = maps.Clone(m.Disclosed)
	if c.Disclosed == nil {
		c.Disclosed = map[intent.Field]string{}
	}
	return c
}

// Apply moves the memory through one classified agent utterance. It uses no
// randomness, so replaying the same classifications rebuilds the same state.
//
// A field request that names at least one undisclosed field is a disclosure.
// It is a repetition only when every named field was already given.
// Confirmations never count as repetitions.
func (m *Memory) Apply(c intent.Classification, p scenario.Profile, t Tuning) Outcome {
	var out Outcome
	switch c.Kind {
	case intent.KindGreeting:
		m.Greeted = true
		if m.Phase == PhaseOpening {
			m.Phase = PhaseDataCollection
		}
		m.Adjust(0, t.GreetingSatisfaction)

	case intent.KindConfirmation:
		for _, f := range c.Fields {
			if m.Disclose(f, p.Value(f)) {
				out.Disclosed = append(out.Disclosed, f)
			}
		}
		m.Adjust(0, t.ConfirmationSatisfaction)

	case intent.KindFieldRequest:
		if m.Phase == PhaseOpening {
			m.Phase = PhaseDataCollection
		}
		for _, f := range c.Fields {
			if m.Disclose(f, p.Value(f)) {
				out.Disclosed = append(out.Disclosed, f)
			}
		}
		if len(out.Disclosed) > 0 {
			m.Adjust(t.DisclosurePatience, t.DisclosureSatisfaction)
			break
		}
		step := 0
		for _, f := range c.Fields {
			step = max(step, t.RepeatStep(f))
		}
		out.Repetition = true
		out.RepeatedFields = append([]intent.Field(nil), c.Fields...)
		m.RepetitionCount++
		m.Adjust(-step, -t.RepeatSatisfaction)

	case intent.KindClosing:
		m.ClosingAcknowledged = true
		m.Phase = PhaseClosing
	}
	return out
}

func clamp(v int) int {
	return min(max(v, MinSignal), MaxSignal)
}
