package transcript

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"voice-coach-go/internal/textnorm"
)

var ErrUnknownSpeaker = errors.New("unknown speaker")

type Speaker string

const (
	SpeakerAgent    Speaker = "agent"
	SpeakerCustomer Speaker = "customer"
)

func (s Speaker) Valid() bool {
	return s == SpeakerAgent || s == SpeakerCustomer
}

// Turn is immutable once appended.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is an append-only, ordered list of turns.
type Transcript struct {
	turns []Turn
}

func New() *Transcript {
	return &Transcript{}
}

// FromTurns rebuilds a transcript by appending turns in order.
func FromTurns(turns []Turn) (*Transcript, error) {
	t := New()
	for i, turn := range turns {
		if _, err := t.Append(turn.Speaker, turn.Text, turn.Timestamp); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
	}
	return t, nil
}

// Append adds a turn. Timestamps earlier than the previous turn are clamped
// forward to keep the sequence monotonic.
func (t *Transcript) Append(speaker Speaker, text string, ts time.Time) (Turn, error) {
	if !speaker.Valid() {
		return Turn{}, fmt.Errorf("%w: %q", ErrUnknownSpeaker, speaker)
	}
	if n := len(t.turns); n > 0 && ts.Before(t.turns[n-1].Timestamp) {
		ts = t.turns[n-1].Timestamp
	}
	turn := Turn{Speaker: speaker, Text: text, Timestamp: ts}
	t.turns = append(t.turns, turn)
	return turn, nil
}

func (t *Transcript) Len() int { return len(t.turns) }

// Turns returns a copy of all turns in insertion order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// AgentTurns returns the agent turns in insertion order.
func (t *Transcript) AgentTurns() []Turn {
	var out []Turn
	for _, turn := range t.turns {
		if turn.Speaker == SpeakerAgent {
			out = append(out, turn)
		}
	}
	return out
}

// LastAgent returns the agent's most recent utterance.
func (t *Transcript) LastAgent() (Turn, bool) {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].Speaker == SpeakerAgent {
			return t.turns[i], true
		}
	}
	return Turn{}, false
}

// AgentText concatenates agent turns, one flattened turn per line.
func (t *Transcript) AgentText() string {
	var lines []string
	for _, turn := range t.AgentTurns() {
		lines = append(lines, textnorm.Flatten(turn.Text))
	}
	return strings.Join(lines, "\n")
}
