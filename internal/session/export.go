package session

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/evaluation"
	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/transcript"
)

// Snapshot is the archived form of a session.
type Snapshot struct {
	Timestamp   time.Time         `json:"timestamp"`
	SessionID   string            `json:"session_id"`
	Scenario    scenario.Scenario `json:"scenario"`
	Turns       []transcript.Turn `json:"turns"`
	ScoreReport evaluation.Report `json:"score_report"`
	Memory      customer.Memory   `json:"memory"`
	Ended       bool              `json:"ended"`
	APIStatus   map[string]string `json:"api_status,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	turns := s.transcript.Turns()
	if turns == nil {
		turns = []transcript.Turn{}
	}
	return Snapshot{
		Timestamp:   s.now(),
		SessionID:   s.id,
		Scenario:    s.scenario,
		Turns:       turns,
		ScoreReport: s.engine.Report(),
		Memory:      s.memory.Clone(),
		Ended:       s.ended,
		APIStatus:   s.apiStatus,
	}
}

// Export writes the snapshot as indented UTF-8 JSON. Accented characters
// and symbols are written as is.
func (snap Snapshot) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("export session %s: %w", snap.SessionID, err)
	}
	return nil
}

func (s *Session) Export(w io.Writer) error {
	return s.Snapshot().Export(w)
}

// ReadSnapshot decodes an exported session.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
