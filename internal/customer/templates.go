package customer

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"voice-coach-go/internal/intent"
	"voice-coach-go/internal/scenario"
)

type bank map[Tier][]string

var greetingReplies = bank{
	TierHigh:   {"Good morning! %s", "Hi, thanks for answering. %s"},
	TierMedium: {"Hello. %s", "Good morning. %s"},
	TierLow:    {"Finally someone answered. %s"},
}

var confirmationReplies = bank{
	TierHigh:   {"Yes, that's right.", "Exactly, that's correct.", "Yes, correct."},
	TierMedium: {"Yes, correct.", "That's right."},
	TierLow:    {"Yes. Can we move on?", "Correct. Let's speed this up, please."},
}

var repeatReplies = bank{
	TierHigh:   {"I believe I already said it, but sure. %s", "Sure, once more: %s"},
	TierMedium: {"I already told you that. %s", "As I said before: %s"},
	TierLow:    {"I've told you this already! %s", "Again? %s Please pay attention."},
}

var fallbackReplies = bank{
	TierHigh:   {"Sure, how can I help you?", "Okay, go ahead.", "Alright, what else do you need?", "Understood, I'm listening."},
	TierMedium: {"Okay.", "Alright.", "Understood.", "Go on."},
	TierLow:    {"Can we hurry, please?", "I need this solved quickly.", "Okay, what else?"},
}

var closingReplies = map[string]string{
	intent.TopicLink:       "Alright, I'll wait for the link. Which document do I need to have at hand for the inspection?",
	intent.TopicDeductible: "Understood. How much is the deductible, and how do I pay it?",
	intent.TopicProtocol:   "Got it, let me write the protocol number down.",
	intent.TopicSurvey:     "Sure, I'll answer the survey.",
	intent.TopicFarewell:   "No, that's all. Thank you for the help!",
}

func (b bank) pick(t Tier, rng *rand.Rand) string {
	opts := b[t]
	if len(opts) == 0 {
		opts = b[TierMedium]
	}
	return opts[rng.IntN(len(opts))]
}

// statement is how the customer says the value of f.
func statement(f intent.Field, p scenario.Profile) string {
	switch f {
	case intent.FieldName:
		return fmt.Sprintf("My name is %s.", p.Name)
	case intent.FieldTaxID:
		return fmt.Sprintf("My CPF is %s.", p.TaxID)
	case intent.FieldPhone:
		return fmt.Sprintf("My phone is %s.", p.Phone)
	case intent.FieldSecondPhone:
		return fmt.Sprintf("The other number is %s.", p.SecondPhone)
	case intent.FieldPlate:
		return fmt.Sprintf("The plate is %s.", p.Plate)
	case intent.FieldAddress:
		return fmt.Sprintf("My address is %s.", p.Address)
	case intent.FieldIncident:
		return p.Incident
	case intent.FieldCityStore:
		return fmt.Sprintf("I'm in %s, I'd rather go to %s.", p.City, p.Store)
	default:
		return ""
	}
}

func statements(fields []intent.Field, p scenario.Profile) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := statement(f, p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// templateReply renders the reply for an already applied utterance. Banks
// with several entries consume one draw from rng; other paths draw nothing.
func templateReply(c intent.Classification, out Outcome, mem *Memory, p scenario.Profile, t Tuning, rng *rand.Rand) string {
	tier := t.Tier(mem.Patience)
	switch c.Kind {
	case intent.KindGreeting:
		return fmt.Sprintf(greetingReplies.pick(tier, rng), p.Problem)

	case intent.KindConfirmation:
		reply := confirmationReplies.pick(tier, rng)
		if len(out.Disclosed) > 0 {
			reply += " " + statements(out.Disclosed, p)
		}
		return reply

	case intent.KindFieldRequest:
		if out.Repetition {
			return fmt.Sprintf(repeatReplies.pick(tier, rng), statements(out.RepeatedFields, p))
		}
		return statements(out.Disclosed, p)

	case intent.KindClosing:
		if r, ok := closingReplies[c.Topic]; ok {
			return r
		}
	}
	return fallbackReplies.pick(tier, rng)
}
