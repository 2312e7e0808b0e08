package intent

import (
	"strings"

	"voice-coach-go/internal/textnorm"
)

// Kind is the category an agent utterance falls into.
type Kind int

const (
	KindFallback Kind = iota
	KindGreeting
	KindConfirmation
	KindFieldRequest
	KindClosing
)

func (k Kind) String() string {
	switch k {
	case KindGreeting:
		return "greeting"
	case KindConfirmation:
		return "confirmation"
	case KindFieldRequest:
		return "field_request"
	case KindClosing:
		return "closing"
	default:
		return "fallback"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "greeting":
		*k = KindGreeting
	case "confirmation":
		*k = KindConfirmation
	case "field_request":
		*k = KindFieldRequest
	case "closing":
		*k = KindClosing
	default:
		*k = KindFallback
	}
	return nil
}

// Classification is computed once per agent utterance and shared by the
// penalty logic and the reply logic.
type Classification struct {
	Kind   Kind    `json:"kind"`
	Fields []Field `json:"fields,omitempty"`
	Topic  string  `json:"topic,omitempty"`
	Text   string  `json:"-"`
}

// Field returns the first field named by a field request.
func (c Classification) Field() Field {
	if len(c.Fields) == 0 {
		return ""
	}
	return c.Fields[0]
}

// Classify maps an agent utterance onto a single Kind, checked in precedence
// order greeting, confirmation, field request, closing, fallback. A greeting
// is only recognised while greeted is false. A closing statement that merely
// mentions a field ("the link goes to your phone") stays a closing unless it
// also asks for something. Classify never fails: anything unrecognised,
// including empty text, is KindFallback.
func Classify(text string, greeted bool) Classification {
	flat := textnorm.Flatten(text)
	norm := textnorm.Normalize(flat)
	c := Classification{Kind: KindFallback, Text: norm}
	if norm == "" {
		return c
	}
	c.Fields = DetectFields(norm)
	topic := ClosingTopic(norm)
	asks := strings.Contains(flat, "?") || HasRequest(norm)

	switch {
	case !greeted && HasSalutation(norm):
		c.Kind = KindGreeting
	case HasConfirmation(norm):
		c.Kind = KindConfirmation
	case len(c.Fields) > 0 && (topic == "" || asks):
		c.Kind = KindFieldRequest
	case topic != "":
		c.Kind = KindClosing
		c.Topic = topic
	}
	return c
}
