package scenario

import (
	"math/rand/v2"
	"sort"
	"strings"

	"voice-coach-go/internal/textnorm"
)

const (
	TypeWindshield = "Windshield replacement"
	TypeMirror     = "Mirror replacement"
	TypeTollTag    = "Toll tag problem"
	TypeUndefined  = "Undefined"
	TypeDefault    = "Default"
)

// Scenario is one training situation built from historical call transcripts.
type Scenario struct {
	Type     string `json:"type"`
	Context  string `json:"context"`
	SourceID string `json:"source_id"`
}

// Row is one transcript line of a historical call.
type Row struct {
	CallID string
	Text   string
}

// Default is used when no scenario library is available.
func Default() Scenario {
	return Scenario{
		Type:     TypeDefault,
		Context:  "The customer calls to report a problem with the vehicle.",
		SourceID: "default",
	}
}

// Build groups rows by call id (first-seen order) and infers each type.
func Build(rows []Row) []Scenario {
	var order []string
	texts := map[string][]string{}
	for _, r := range rows {
		id := strings.TrimSpace(r.CallID)
		if id == "" {
			continue
		}
		if _, ok := texts[id]; !ok {
			order = append(order, id)
		}
		if t := strings.TrimSpace(r.Text); t != "" {
			texts[id] = append(texts[id], t)
		}
	}

	out := make([]Scenario, 0, len(order))
	for _, id := range order {
		ctx := strings.Join(texts[id], " ")
		out = append(out, Scenario{Type: InferType(ctx), Context: ctx, SourceID: id})
	}
	return out
}

// InferType maps keywords in the call context onto a scenario type.
func InferType(context string) string {
	norm := textnorm.Normalize(context)
	switch {
	case strings.Contains(norm, "para-brisa") || strings.Contains(norm, "parabrisa") || strings.Contains(norm, "windshield"):
		return TypeWindshield
	case strings.Contains(norm, "retrovisor") || strings.Contains(norm, "mirror"):
		return TypeMirror
	case containsWord(norm, "tag"):
		return TypeTollTag
	default:
		return TypeUndefined
	}
}

// Persona describes the simulated customer derived from the scenario context.
func Persona(s Scenario) string {
	norm := textnorm.Normalize(s.Context)
	switch {
	case strings.Contains(norm, "corretor") || strings.Contains(norm, "broker"):
		return "Insurance broker acting on behalf of the customer, focused on solving the problem quickly."
	case strings.Contains(norm, "caminhao") || strings.Contains(norm, "truck"):
		return "Truck driver, practical and direct, worried about how long the vehicle will be off the road."
	case strings.Contains(norm, "nao estou conseguindo pagar") || strings.Contains(norm, "can t pay"):
		return "Customer frustrated by a payment problem, somewhat impatient."
	default:
		return "Standard policyholder who wants the vehicle problem solved clearly and objectively."
	}
}

// Pick chooses a scenario with rng, falling back to Default on an empty list.
func Pick(scenarios []Scenario, rng *rand.Rand) Scenario {
	if len(scenarios) == 0 {
		return Default()
	}
	if rng == nil {
		return scenarios[0]
	}
	return scenarios[rng.IntN(len(scenarios))]
}

// Find returns the scenario with the given source id.
func Find(scenarios []Scenario, sourceID string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.SourceID == sourceID {
			return s, true
		}
	}
	return Scenario{}, false
}

// CountByType tallies scenarios per type, sorted by type name.
func CountByType(scenarios []Scenario) []TypeCount {
	counts := map[string]int{}
	for _, s := range scenarios {
		counts[s.Type]++
	}
	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func containsWord(s, word string) bool {
	for _, f := range strings.Fields(s) {
		if f == word {
			return true
		}
	}
	return false
}
