package types

import (
	"time"

	"voice-coach-go/internal/actionable"
	"voice-coach-go/internal/aggregator"
	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/evaluation"
	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/transcript"
)

type CreateSessionRequest struct {
	ScenarioID string  `json:"scenario_id,omitempty"`
	Seed       *uint64 `json:"seed,omitempty"`
}

type SessionResponse struct {
	SessionID string            `json:"session_id"`
	Scenario  scenario.Scenario `json:"scenario"`
	Persona   string            `json:"persona"`
	Opening   transcript.Turn   `json:"opening"`
	ExpiresAt *time.Time        `json:"expires_at,omitempty"`
	APIStatus map[string]string `json:"api_status,omitempty"`
}

type TurnRequest struct {
	Text string `json:"text"`
}

type TurnResponse struct {
	Customer     string             `json:"customer"`
	Kind         string             `json:"kind"`
	Source       customer.Source    `json:"source"`
	Repetition   bool               `json:"repetition"`
	Patience     int                `json:"patience"`
	Satisfaction int                `json:"satisfaction"`
	Report       evaluation.Report  `json:"report"`
	Summary      aggregator.Summary `json:"summary"`
}

type ReportResponse struct {
	SessionID  string                `json:"session_id"`
	Ended      bool                  `json:"ended"`
	Expired    bool                  `json:"expired"`
	Report     evaluation.Report     `json:"report"`
	Summary    aggregator.Summary    `json:"summary"`
	ActionCard actionable.ActionCard `json:"action_card"`
}

type ScenarioList struct {
	Count     int                  `json:"count"`
	ByType    []scenario.TypeCount `json:"by_type"`
	Scenarios []scenario.Scenario  `json:"scenarios"`
}

type ErrorResponse struct {
	Error  string             `json:"error"`
	Report *evaluation.Report `json:"report,omitempty"`
}
