package customer

import "voice-coach-go/internal/intent"

// Tier buckets patience so replies can change tone.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	default:
		return "high"
	}
}

// Mood is the phrase handed to external generators for a tier.
func (t Tier) Mood() string {
	switch t {
	case TierLow:
		return "impatient and terse"
	case TierMedium:
		return "neutral"
	default:
		return "cooperative and friendly"
	}
}

// Tuning holds the signal deltas applied by Memory.Apply. Deltas are
// expressed as positive magnitudes.
type Tuning struct {
	InitialPatience     int `json:"initial_patience"`
	InitialSatisfaction int `json:"initial_satisfaction"`

	DisclosurePatience     int `json:"disclosure_patience"`
	DisclosureSatisfaction int `json:"disclosure_satisfaction"`

	HardRepeatPatience int `json:"hard_repeat_patience"`
	SoftRepeatPatience int `json:"soft_repeat_patience"`
	RepeatSatisfaction int `json:"repeat_satisfaction"`

	ConfirmationSatisfaction int `json:"confirmation_satisfaction"`
	GreetingSatisfaction     int `json:"greeting_satisfaction"`

	// Patience below LowBelow is TierLow, below MediumBelow TierMedium.
	LowBelow    int `json:"low_below"`
	MediumBelow int `json:"medium_below"`

	HardFields []intent.Field `json:"hard_fields"`
}

func DefaultTuning() Tuning {
	return Tuning{
		InitialPatience:          70,
		InitialSatisfaction:      60,
		DisclosurePatience:       2,
		DisclosureSatisfaction:   3,
		HardRepeatPatience:       20,
		SoftRepeatPatience:       10,
		RepeatSatisfaction:       10,
		ConfirmationSatisfaction: 1,
		GreetingSatisfaction:     5,
		LowBelow:                 35,
		MediumBelow:              70,
		HardFields:               []intent.Field{intent.FieldPlate, intent.FieldTaxID},
	}
}

// RepeatStep is the patience lost when f is asked for again.
func (t Tuning) RepeatStep(f intent.Field) int {
	for _, h := range t.HardFields {
		if h == f {
			return t.HardRepeatPatience
		}
	}
	return t.SoftRepeatPatience
}

func (t Tuning) Tier(patience int) Tier {
	switch {
	case patience < t.LowBelow:
		return TierLow
	case patience < t.MediumBelow:
		return TierMedium
	default:
		return TierHigh
	}
}
