package customer

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"voice-coach-go/internal/intent"
	"voice-coach-go/internal/logger"
	"voice-coach-go/internal/scenario"
)

// Generator writes customer replies in natural language. Implementations
// may block on the network; the Responder falls back to templates on any
// error or empty output.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Prompt is the context handed to a Generator.
type Prompt struct {
	Persona        string                  `json:"persona"`
	Scenario       scenario.Scenario       `json:"scenario"`
	Profile        scenario.Profile        `json:"profile"`
	Disclosed      map[intent.Field]string `json:"disclosed"`
	Patience       int                     `json:"patience"`
	Satisfaction   int                     `json:"satisfaction"`
	Mood           string                  `json:"mood"`
	LastUtterance  string                  `json:"last_utterance"`
	Classification intent.Classification   `json:"classification"`
	Outcome        Outcome                 `json:"outcome"`
	Fallback       string                  `json:"fallback"`
}

type Source string

const (
	SourceTemplate  Source = "template"
	SourceGenerator Source = "generator"
)

// Reply is one customer turn plus the signals the session needs.
type Reply struct {
	Text           string                `json:"text"`
	Classification intent.Classification `json:"classification"`
	Outcome        Outcome               `json:"outcome"`
	Source         Source                `json:"source"`
}

type Responder struct {
	profile  scenario.Profile
	scenario scenario.Scenario
	tuning   Tuning
	rng      *rand.Rand
	gen      Generator
	log      *logrus.Entry
}

type Option func(*Responder)

// WithSeed makes reply selection reproducible.
func WithSeed(seed uint64) Option {
	return func(r *Responder) { r.rng = rand.New(rand.NewPCG(seed, seed)) }
}

func WithRand(rng *rand.Rand) Option {
	return func(r *Responder) {
		if rng != nil {
			r.rng = rng
		}
	}
}

func WithGenerator(g Generator) Option {
	return func(r *Responder) { r.gen = g }
}

func WithTuning(t Tuning) Option {
	return func(r *Responder) { r.tuning = t }
}

func WithScenario(s scenario.Scenario) Option {
	return func(r *Responder) { r.scenario = s }
}

func WithLogger(l *logrus.Entry) Option {
	return func(r *Responder) {
		if l != nil {
			r.log = l
		}
	}
}

func NewResponder(profile scenario.Profile, opts ...Option) *Responder {
	r := &Responder{
		profile:  profile,
		scenario: scenario.Default(),
		tuning:   DefaultTuning(),
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		seed := uint64(time.Now().UnixNano())
		r.rng = rand.New(rand.NewPCG(seed, seed))
	}
	r.log = r.log.WithField("component", "responder")
	return r
}

func (r *Responder) Tuning() Tuning { return r.tuning }

func (r *Responder) Profile() scenario.Profile { return r.profile }

// NewMemory returns a fresh memory initialised from the responder's tuning.
func (r *Responder) NewMemory() *Memory { return NewMemory(r.tuning) }

// Opening is the customer's first line of the call.
func (r *Responder) Opening() string { return r.profile.FirstUtterance }

// Reply classifies agentText, updates mem and returns the customer's answer.
// The template reply is always rendered first so the random stream does not
// depend on whether a generator is configured or succeeds.
func (r *Responder) Reply(ctx context.Context, agentText string, mem *Memory) Reply {
	cls := intent.Classify(agentText, mem.Greeted)
	out := mem.Apply(cls, r.profile, r.tuning)
	text := templateReply(cls, out, mem, r.profile, r.tuning, r.rng)

	reply := Reply{Text: text, Classification: cls, Outcome: out, Source: SourceTemplate}
	if r.gen == nil {
		return reply
	}

	generated, err := r.gen.Generate(ctx, r.prompt(agentText, cls, out, mem, text))
	if err != nil {
		r.log.WithError(err).WithField("kind", cls.Kind.String()).Warn("generator failed, using template reply")
		return reply
	}
	if generated = strings.TrimSpace(generated); generated == "" {
		r.log.WithField("kind", cls.Kind.String()).Warn("generator returned empty reply, using template reply")
		return reply
	}
	reply.Text = generated
	reply.Source = SourceGenerator
	return reply
}

func (r *Responder) prompt(agentText string, cls intent.Classification, out Outcome, mem *Memory, fallback string) Prompt {
	snap := mem.Clone()
	return Prompt{
		Persona:        scenario.Persona(r.scenario),
		Scenario:       r.scenario,
		Profile:        r.profile,
		Disclosed:      snap.Disclosed,
		Patience:       snap.Patience,
		Satisfaction:   snap.Satisfaction,
		Mood:           r.tuning.Tier(snap.Patience).Mood(),
		LastUtterance:  agentText,
		Classification: cls,
		Outcome:        out,
		Fallback:       fallback,
	}
}
