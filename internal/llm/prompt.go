package llm

import (
	"fmt"
	"sort"
	"strings"

	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/intent"
)

const maxContext = 300

// BuildPrompt renders the role-play instructions for one customer turn.
func BuildPrompt(p customer.Prompt) string {
	prompt := `You are a Brazilian car insurance policyholder calling a windshield repair service.
Persona: %s
Scenario: %s - %s
Your mood: %s (patience %d/100, satisfaction %d/100)

Facts you have ALREADY given the agent:
%s

Your own data (only reveal what the agent asks for):
%s

The agent just said: "%s"
The agent's utterance was understood as: %s

Reply in one or two short, natural sentences, keeping the call moving.
If the agent asks again for something you already gave, show mild annoyance and repeat it.
Never invent data that is not listed above.
A suitable reply would be: "%s"

Return ONLY JSON: {"reply": "..."}
`
	ctx := p.Scenario.Context
	if r := []rune(ctx); len(r) > maxContext {
		ctx = string(r[:maxContext])
	}
	return fmt.Sprintf(prompt,
		p.Persona,
		p.Scenario.Type, ctx,
		p.Mood, p.Patience, p.Satisfaction,
		disclosedLines(p.Disclosed),
		profileLines(p),
		p.LastUtterance,
		describe(p.Classification),
		p.Fallback,
	)
}

func disclosedLines(d map[intent.Field]string) string {
	if len(d) == 0 {
		return "- nothing yet"
	}
	keys := make([]string, 0, len(d))
	for f := range d {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", intent.Field(k).Label(), d[intent.Field(k)])
	}
	return b.String()
}

func profileLines(p customer.Prompt) string {
	pr := p.Profile
	return strings.Join([]string{
		"- name: " + pr.Name,
		"- tax id (CPF): " + pr.TaxID,
		"- phone: " + pr.Phone,
		"- second phone: " + pr.SecondPhone,
		"- plate: " + pr.Plate,
		"- address: " + pr.Address,
		"- incident: " + pr.Incident,
		"- city and store: " + pr.City + ", " + pr.Store,
	}, "\n")
}

func describe(c intent.Classification) string {
	if len(c.Fields) == 0 && c.Topic == "" {
		return c.Kind.String()
	}
	parts := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		parts = append(parts, f.Label())
	}
	if c.Topic != "" {
		parts = append(parts, c.Topic)
	}
	return c.Kind.String() + " (" + strings.Join(parts, ", ") + ")"
}
