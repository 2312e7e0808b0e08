package session

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-coach-go/internal/checklist"
	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/evaluation"
	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/transcript"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 12, 3, 9, 0, 0, 0, time.UTC)}
}

var fullCall = []string{
	"Good morning, Acme Glass, my name is Maria, how can I help you?",
	"I understand. May I have your full name?",
	"And your CPF?",
	"Confirming your CPF, is that correct? Your data is protected under the LGPD.",
	"What is your phone?",
	"Do you have a second phone?",
	"What is the plate?",
	"Sorry, what is the plate?",
	"And your address?",
	"When did it happen and what is the size of the crack?",
	"Which city are you in? The first option is the store downtown, I will schedule it.",
	"I will send the link for tracking, the deductible is 300 and we will contact you. Protocol 123.",
	"You will receive a satisfaction survey, please rate us from 0 to 10.",
}

func run(t *testing.T, s *Session, lines []string) []TurnResult {
	t.Helper()
	out := make([]TurnResult, 0, len(lines))
	for _, line := range lines {
		res, err := s.Turn(context.Background(), line)
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestStartSeedsOpening(t *testing.T) {
	s := New(WithSeed(1))
	first, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, transcript.SpeakerCustomer, first.Speaker)
	assert.Equal(t, scenario.DefaultProfile().FirstUtterance, first.Text)

	again, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Len(t, s.Turns(), 1)
	assert.NotEmpty(t, s.ID())
}

func TestGreetingScenario(t *testing.T) {
	s := New(WithSeed(1))
	res := run(t, s, []string{"Good morning! Acme Glass, my name is Maria."})[0]

	greeting, _ := res.Report.Item(checklist.ItemGreeting)
	data, _ := res.Report.Item(checklist.ItemDataCollection)
	assert.Equal(t, 10, greeting.Points)
	assert.Equal(t, 0, data.Points)
	assert.True(t, res.Memory.Greeted)
}

func TestFullDataCollectionScenario(t *testing.T) {
	s := New(WithSeed(1))
	run(t, s, []string{
		"Good morning, Acme Glass.",
		"What is your name?",
		"What is your tax id?",
		"What is your phone?",
		"Do you have a second phone?",
		"What is the plate?",
		"And your address?",
	})
	data, _ := s.Report().Item(checklist.ItemDataCollection)
	assert.Equal(t, 6, data.Points)
	assert.Equal(t, 0, s.Memory().RepetitionCount)
}

func TestRedundantPlateScenario(t *testing.T) {
	s := New(WithSeed(1))
	res := run(t, s, []string{"Good morning, Acme Glass.", "What is the plate?", "What is the plate?"})

	listeningBefore, _ := res[1].Report.Item(checklist.ItemListening)
	listeningAfter, _ := res[2].Report.Item(checklist.ItemListening)
	assert.Equal(t, 3, listeningBefore.Points)
	assert.Equal(t, 2, listeningAfter.Points)
	assert.Equal(t, []string{"repeated request: plate"}, listeningAfter.Evidence)

	assert.True(t, res[2].Reply.Outcome.Repetition)
	assert.Contains(t, res[2].Customer.Text, "ABC1D23")
	assert.Equal(t, 1, res[2].Memory.RepetitionCount)
	assert.Equal(t, res[1].Memory.Patience-customer.DefaultTuning().HardRepeatPatience, res[2].Memory.Patience)
}

func TestConfirmationDoesNotDebit(t *testing.T) {
	s := New(WithSeed(1))
	res := run(t, s, []string{"What is your CPF?", "Confirming your CPF, is that correct?"})
	listening, _ := res[1].Report.Item(checklist.ItemListening)
	assert.Equal(t, 3, listening.Points)
	assert.Equal(t, 0, res[1].Memory.RepetitionCount)

	res = run(t, s, []string{"What is your CPF again?"})
	listening, _ = res[0].Report.Item(checklist.ItemListening)
	assert.Equal(t, 2, listening.Points)
	assert.Equal(t, 1, res[0].Memory.RepetitionCount)
}

func TestClosingMentioningKnownFieldDoesNotDebit(t *testing.T) {
	s := New(WithSeed(1))
	res := run(t, s, []string{
		"Good morning, Acme Glass.",
		"What is your phone?",
		"I will send the tracking link to your phone, protocol 123.",
	})

	last := res[2]
	assert.False(t, last.Reply.Outcome.Repetition)
	assert.Equal(t, 0, last.Memory.RepetitionCount)
	assert.True(t, last.Memory.ClosingAcknowledged)
	listening, _ := last.Report.Item(checklist.ItemListening)
	assert.Equal(t, 3, listening.Points)
}

func TestMultiLineTurnReplay(t *testing.T) {
	s := New(WithSeed(3))
	run(t, s, []string{
		"Good morning, Acme Glass.",
		"What is the plate?",
		"Confirming the data:\nthe plate is ABC1D23.",
	})
	live := s.Report()

	readBack, _ := live.Item(checklist.ItemReadBack)
	assert.Equal(t, []string{"confirmed plate"}, readBack.Evidence)
	assert.Equal(t, live, Evaluate(checklist.Default(), s.Turns(), scenario.DefaultProfile(), customer.DefaultTuning()))

	tr, err := transcript.FromTurns(s.Turns())
	require.NoError(t, err)
	assert.Equal(t, live, evaluation.Evaluate(checklist.Default(), tr.AgentText()))
}

func TestEmptyTranscript(t *testing.T) {
	s := New(WithSeed(1))
	r := s.Report()
	assert.Equal(t, 0, r.Total)
	for _, it := range r.Items {
		assert.Empty(t, it.Evidence)
	}

	res := run(t, s, []string{"", "   "})
	assert.Equal(t, 0, res[1].Report.Total)
	assert.NotEmpty(t, res[1].Customer.Text)
}

func TestDeterministicSessions(t *testing.T) {
	play := func() ([]TurnResult, string) {
		clock := newClock()
		s := New(WithSeed(99), WithClock(clock.now), WithID("fixed"))
		_, err := s.Start()
		require.NoError(t, err)
		res := run(t, s, fullCall)
		var buf bytes.Buffer
		require.NoError(t, s.Export(&buf))
		return res, buf.String()
	}
	r1, e1 := play()
	r2, e2 := play()
	assert.Equal(t, r1, r2)
	assert.Equal(t, e1, e2)
}

func TestReplayMatchesLiveSession(t *testing.T) {
	s := New(WithSeed(5))
	_, _ = s.Start()
	run(t, s, fullCall)
	live := s.Report()

	replayed := Evaluate(checklist.Default(), s.Turns(), scenario.DefaultProfile(), customer.DefaultTuning())
	assert.Equal(t, live, replayed)
	assert.Equal(t, replayed, Evaluate(checklist.Default(), s.Turns(), scenario.DefaultProfile(), customer.DefaultTuning()))

	listening, _ := live.Item(checklist.ItemListening)
	assert.Equal(t, 2, listening.Points)
	assert.LessOrEqual(t, live.Total, live.MaxTotal)
}

func TestExpiry(t *testing.T) {
	clock := newClock()
	s := New(WithSeed(1), WithClock(clock.now), WithLimit(10*time.Minute))
	run(t, s, []string{"Good morning, Acme Glass."})
	assert.Equal(t, 10*time.Minute, s.Remaining())

	clock.advance(10 * time.Minute)
	assert.True(t, s.Expired())
	assert.Equal(t, time.Duration(0), s.Remaining())

	res, err := s.Turn(context.Background(), "What is the plate?")
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, res.Expired)
	assert.Equal(t, 13, res.Report.Total, "score is frozen")
	assert.Len(t, s.Turns(), 2)
}

func TestEnd(t *testing.T) {
	s := New(WithSeed(1))
	run(t, s, []string{"Good morning, Acme Glass."})
	s.End()
	s.End()
	assert.True(t, s.Ended())

	_, err := s.Turn(context.Background(), "hello?")
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.Equal(t, 13, s.Report().Total)
}

func TestExportPreservesUnicode(t *testing.T) {
	s := New(WithSeed(1), WithAPIStatus(map[string]string{"llm": "not configured"}))
	run(t, s, []string{"Qual é o seu nome completo?"})

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))
	out := buf.String()
	assert.Contains(t, out, "Qual é o seu nome completo?")
	assert.Contains(t, out, "João da Silva")
	assert.NotContains(t, out, `\u00e9`)
	assert.Contains(t, out, `"api_status"`)
	assert.Contains(t, out, `"score_report"`)

	snap, err := ReadSnapshot(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, s.Turns()[0].Text, snap.Turns[0].Text)
	assert.Equal(t, s.Report(), snap.ScoreReport)
}

func TestSessionsAreIndependent(t *testing.T) {
	a := New(WithSeed(1))
	b := New(WithSeed(1))
	run(t, a, []string{"Good morning, Acme Glass.", "What is the plate?", "What is the plate?"})
	assert.Equal(t, 0, b.Memory().RepetitionCount)
	assert.Equal(t, 0, b.Report().Total)
	assert.NotEqual(t, a.ID(), b.ID())
}
