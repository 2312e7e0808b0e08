package scenario

import "voice-coach-go/internal/intent"

// Profile is the ground truth the simulated customer discloses. It is read
// only for the life of a session.
type Profile struct {
	Name           string `json:"name"`
	TaxID          string `json:"tax_id"`
	Phone          string `json:"phone"`
	SecondPhone    string `json:"second_phone"`
	Plate          string `json:"plate"`
	Address        string `json:"address"`
	Incident       string `json:"incident"`
	City           string `json:"city"`
	Store          string `json:"store"`
	FirstUtterance string `json:"first_utterance"`
	Problem        string `json:"problem"`
}

func DefaultProfile() Profile {
	return Profile{
		Name:           "João da Silva",
		TaxID:          "123.456.789-10",
		Phone:          "(31) 98765-4321",
		SecondPhone:    "(31) 3222-1100",
		Plate:          "ABC1D23",
		Address:        "Rua das Acácias, 250, Funcionários, Belo Horizonte",
		Incident:       "The crack is about 10 cm. It happened yesterday, I hit a pothole.",
		City:           "Belo Horizonte",
		Store:          "the Funcionários store",
		FirstUtterance: "Hello, good morning! I'm a policyholder and I need to sort out a problem with my windshield.",
		Problem:        "My windshield cracked and I'd like to get it repaired through my insurance.",
	}
}

// ForScenario adapts the opening lines to the scenario type.
func ForScenario(s Scenario) Profile {
	p := DefaultProfile()
	switch s.Type {
	case TypeMirror:
		p.FirstUtterance = "Hello, good morning! I'm a policyholder and my side mirror is broken."
		p.Problem = "My side mirror was knocked off and I need a replacement."
		p.Incident = "The mirror housing broke. It happened this morning in a parking lot."
	case TypeTollTag:
		p.FirstUtterance = "Hello, good morning! I'm having trouble with the toll tag on my windshield."
		p.Problem = "The toll tag stopped working after the windshield was replaced."
		p.Incident = "The tag stopped reading last week, right after the service."
	}
	return p
}

// Value returns the disclosed value for f.
func (p Profile) Value(f intent.Field) string {
	switch f {
	case intent.FieldName:
		return p.Name
	case intent.FieldTaxID:
		return p.TaxID
	case intent.FieldPhone:
		return p.Phone
	case intent.FieldSecondPhone:
		return p.SecondPhone
	case intent.FieldPlate:
		return p.Plate
	case intent.FieldAddress:
		return p.Address
	case intent.FieldIncident:
		return p.Incident
	case intent.FieldCityStore:
		return p.City + ", " + p.Store
	default:
		return ""
	}
}
