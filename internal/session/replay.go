package session

import (
	"voice-coach-go/internal/checklist"
	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/evaluation"
	"voice-coach-go/internal/intent"
	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/transcript"
)

// Evaluate scores a finished transcript from scratch. Repetition debits are
// rebuilt by replaying the customer memory, which draws no random numbers,
// so the result matches the live session that produced the transcript.
func Evaluate(cl *checklist.Checklist, turns []transcript.Turn, profile scenario.Profile, tuning customer.Tuning) evaluation.Report {
	engine := evaluation.NewEngine(cl)
	mem := customer.NewMemory(tuning)
	for _, turn := range turns {
		if turn.Speaker != transcript.SpeakerAgent {
			continue
		}
		engine.ObserveTurn(turn.Text)
		cls := intent.Classify(turn.Text, mem.Greeted)
		if reason, ok := repetitionReason(mem.Apply(cls, profile, tuning)); ok {
			engine.Penalize(reason)
		}
	}
	return engine.Report()
}
