package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"voice-coach-go/internal/actionable"
	"voice-coach-go/internal/checklist"
	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/evaluation"
	"voice-coach-go/internal/logger"
	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/transcript"
)

var (
	ErrSessionEnded   = errors.New("session ended")
	ErrSessionExpired = errors.New("session time limit reached")
)

// Session drives one training call. It owns its transcript, score state and
// customer memory and is not safe for concurrent use.
type Session struct {
	id        string
	started   time.Time
	limit     time.Duration
	now       func() time.Time
	ended     bool
	apiStatus map[string]string

	checklist  *checklist.Checklist
	scenario   scenario.Scenario
	profile    *scenario.Profile
	tuning     customer.Tuning
	seed       *uint64
	gen        customer.Generator
	transcript *transcript.Transcript
	engine     *evaluation.Engine
	responder  *customer.Responder
	memory     *customer.Memory
	log        *logrus.Entry
}

// TurnResult is what one agent turn produced.
type TurnResult struct {
	Agent    transcript.Turn   `json:"agent"`
	Customer transcript.Turn   `json:"customer"`
	Reply    customer.Reply    `json:"reply"`
	Report   evaluation.Report `json:"report"`
	Memory   customer.Memory   `json:"memory"`
	Expired  bool              `json:"expired"`
}

type Option func(*Session)

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithSeed makes customer replies reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Session) { s.seed = &seed }
}

func WithGenerator(g customer.Generator) Option {
	return func(s *Session) { s.gen = g }
}

// WithLimit sets the wall-clock limit. Zero means no limit.
func WithLimit(d time.Duration) Option {
	return func(s *Session) { s.limit = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithChecklist(cl *checklist.Checklist) Option {
	return func(s *Session) {
		if cl != nil {
			s.checklist = cl
		}
	}
}

func WithTuning(t customer.Tuning) Option {
	return func(s *Session) { s.tuning = t }
}

func WithScenario(sc scenario.Scenario) Option {
	return func(s *Session) { s.scenario = sc }
}

// WithProfile overrides the profile derived from the scenario.
func WithProfile(p scenario.Profile) Option {
	return func(s *Session) { s.profile = &p }
}

func WithAPIStatus(status map[string]string) Option {
	return func(s *Session) { s.apiStatus = status }
}

func New(opts ...Option) *Session {
	s := &Session{
		now:       time.Now,
		checklist: checklist.Default(),
		scenario:  scenario.Default(),
		tuning:    customer.DefaultTuning(),
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.profile == nil {
		p := scenario.ForScenario(s.scenario)
		s.profile = &p
	}
	s.log = s.log.WithFields(logrus.Fields{"component": "session", "session_id": s.id})
	s.started = s.now()

	ropts := []customer.Option{
		customer.WithTuning(s.tuning),
		customer.WithScenario(s.scenario),
		customer.WithGenerator(s.gen),
		customer.WithLogger(s.log),
	}
	if s.seed != nil {
		ropts = append(ropts, customer.WithSeed(*s.seed))
	}

	s.transcript = transcript.New()
	s.engine = evaluation.NewEngine(s.checklist, evaluation.WithLogger(s.log))
	s.responder = customer.NewResponder(*s.profile, ropts...)
	s.memory = s.responder.NewMemory()
	return s
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) Scenario() scenario.Scenario { return s.scenario }
func (s *Session) StartedAt() time.Time        { return s.started }

// Start appends the customer's opening line. Calling it again is a no-op
// that returns the first turn.
func (s *Session) Start() (transcript.Turn, error) {
	if turns := s.transcript.Turns(); len(turns) > 0 {
		return turns[0], nil
	}
	if s.ended {
		return transcript.Turn{}, ErrSessionEnded
	}
	turn, err := s.transcript.Append(transcript.SpeakerCustomer, s.responder.Opening(), s.now())
	if err != nil {
		return transcript.Turn{}, err
	}
	s.log.WithField("scenario", s.scenario.Type).Info("session started")
	return turn, nil
}

// Turn processes one agent utterance: it is appended, scored, answered by
// the customer and the answer appended. Once the time limit has passed no
// further turns are accepted and the score is frozen.
func (s *Session) Turn(ctx context.Context, text string) (TurnResult, error) {
	if s.ended {
		return TurnResult{}, ErrSessionEnded
	}
	if s.Expired() {
		s.log.Info("session expired")
		return TurnResult{Report: s.Report(), Memory: s.memory.Clone(), Expired: true}, ErrSessionExpired
	}

	agent, err := s.transcript.Append(transcript.SpeakerAgent, text, s.now())
	if err != nil {
		return TurnResult{}, err
	}
	s.engine.ObserveTurn(text)

	reply := s.responder.Reply(ctx, text, s.memory)
	if reason, ok := repetitionReason(reply.Outcome); ok {
		s.engine.Penalize(reason)
		s.log.WithField("repetition_count", s.memory.RepetitionCount).Debug(reason)
	}

	cust, err := s.transcript.Append(transcript.SpeakerCustomer, reply.Text, s.now())
	if err != nil {
		return TurnResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"kind":     reply.Classification.Kind.String(),
		"source":   reply.Source,
		"patience": s.memory.Patience,
		"total":    s.engine.Total(),
	}).Debug("turn processed")

	return TurnResult{
		Agent:    agent,
		Customer: cust,
		Reply:    reply,
		Report:   s.engine.Report(),
		Memory:   s.memory.Clone(),
	}, nil
}

// End stops the session. The report stays available.
func (s *Session) End() {
	if !s.ended {
		s.ended = true
		s.log.WithField("total", s.engine.Total()).Info("session ended")
	}
}

func (s *Session) Ended() bool { return s.ended }

// Expired reports whether the wall-clock limit has passed.
func (s *Session) Expired() bool {
	return s.limit > 0 && s.now().Sub(s.started) >= s.limit
}

// Remaining is the time left before expiry, or zero without a limit.
func (s *Session) Remaining() time.Duration {
	if s.limit <= 0 {
		return 0
	}
	return max(s.limit-s.now().Sub(s.started), 0)
}

// Report has no side effects and is available at any point.
func (s *Session) Report() evaluation.Report { return s.engine.Report() }

// ActionCard describes the largest gap in the current score.
func (s *Session) ActionCard() actionable.ActionCard { return s.engine.ActionCard() }

func (s *Session) Memory() customer.Memory { return s.memory.Clone() }

func (s *Session) Turns() []transcript.Turn { return s.transcript.Turns() }

func repetitionReason(out customer.Outcome) (string, bool) {
	if !out.Repetition {
		return "", false
	}
	labels := make([]string, 0, len(out.RepeatedFields))
	for _, f := range out.RepeatedFields {
		labels = append(labels, f.Label())
	}
	return fmt.Sprintf("repeated request: %s", strings.Join(labels, ", ")), true
}
