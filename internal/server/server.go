package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"voice-coach-go/internal/aggregator"
	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/dataset"
	"voice-coach-go/internal/evaluation"
	"voice-coach-go/internal/logger"
	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/session"
	"voice-coach-go/internal/types"
)

const (
	maxBody = 64 << 10

	// DefaultRetention is how long an ended session stays available for
	// reports and exports.
	DefaultRetention = 30 * time.Minute
)

type Options struct {
	Logger    *logger.Logger
	Scenarios []scenario.Scenario
	Limit     time.Duration
	Seed      uint64
	Generator customer.Generator
	APIStatus map[string]string
	Clock     func() time.Time
	Retention time.Duration
}

// Server exposes training sessions over HTTP. Each session has its own lock;
// sessions share nothing.
type Server struct {
	opts Options
	log  *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*entry

	rngMu sync.Mutex
	rng   *rand.Rand
}

type entry struct {
	mu sync.Mutex
	s  *session.Session

	// endedAt is guarded by Server.mu.
	endedAt time.Time
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = &logger.Logger{Entry: logger.Discard()}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	return &Server{
		opts:     opts,
		log:      opts.Logger,
		sessions: map[string]*entry{},
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed)),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /scenarios", s.listScenarios)
	mux.HandleFunc("POST /sessions", s.createSession)
	mux.HandleFunc("POST /sessions/{id}/turns", s.turn)
	mux.HandleFunc("GET /sessions/{id}/report", s.report)
	mux.HandleFunc("GET /sessions/{id}/export", s.export)
	mux.HandleFunc("DELETE /sessions/{id}", s.endSession)
	return mux
}

// Len is the number of sessions held, ended ones included until their
// retention runs out.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.log.WithRequest(r).Debug("health check")
	fmt.Fprint(w, "ok")
}

func (s *Server) listScenarios(w http.ResponseWriter, r *http.Request) {
	list := s.opts.Scenarios
	if len(list) == 0 {
		list = []scenario.Scenario{scenario.Default()}
	}
	writeJSON(w, http.StatusOK, types.ScenarioList{
		Count:     len(list),
		ByType:    scenario.CountByType(list),
		Scenarios: list,
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "create_session")

	var req types.CreateSessionRequest
	if err := decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		reqLog.WithError(err).Warn("bad request body")
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}

	seed, pick := s.nextSeeds()
	sc := scenario.Pick(s.opts.Scenarios, rand.New(rand.NewPCG(pick, pick)))
	if req.ScenarioID != "" {
		found, ok := scenario.Find(s.opts.Scenarios, req.ScenarioID)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("scenario %q not found", req.ScenarioID), nil)
			return
		}
		sc = found
	}
	if req.Seed != nil {
		seed = *req.Seed
	}

	id := uuid.NewString()
	opts := []session.Option{
		session.WithID(id),
		session.WithSeed(seed),
		session.WithScenario(sc),
		session.WithLimit(s.opts.Limit),
		session.WithClock(s.opts.Clock),
		session.WithAPIStatus(s.opts.APIStatus),
		session.WithLogger(s.log.WithSession(id)),
	}
	if s.opts.Generator != nil {
		opts = append(opts, session.WithGenerator(s.opts.Generator))
	}
	sess := session.New(opts...)
	opening, err := sess.Start()
	if err != nil {
		reqLog.WithError(err).Error("start session")
		writeError(w, http.StatusInternalServerError, err, nil)
		return
	}

	s.mu.Lock()
	s.purgeLocked()
	s.sessions[sess.ID()] = &entry{s: sess}
	s.mu.Unlock()

	resp := types.SessionResponse{
		SessionID: sess.ID(),
		Scenario:  sc,
		Persona:   scenario.Persona(sc),
		Opening:   opening,
		APIStatus: s.opts.APIStatus,
	}
	if s.opts.Limit > 0 {
		exp := sess.StartedAt().Add(s.opts.Limit)
		resp.ExpiresAt = &exp
	}
	reqLog.WithFields(logrus.Fields{"session_id": sess.ID(), "scenario": sc.SourceID}).Info("session created")
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) turn(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "turn")
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req types.TurnRequest
	if err := decode(w, r, &req); err != nil {
		reqLog.WithError(err).Warn("bad request body")
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}

	e.mu.Lock()
	res, err := e.s.Turn(r.Context(), req.Text)
	e.mu.Unlock()

	switch {
	case errors.Is(err, session.ErrSessionExpired):
		writeError(w, http.StatusGone, err, &res.Report)
		return
	case errors.Is(err, session.ErrSessionEnded):
		writeError(w, http.StatusConflict, err, nil)
		return
	case err != nil:
		reqLog.WithError(err).Error("turn failed")
		writeError(w, http.StatusInternalServerError, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, types.TurnResponse{
		Customer:     res.Customer.Text,
		Kind:         res.Reply.Classification.Kind.String(),
		Source:       res.Reply.Source,
		Repetition:   res.Reply.Outcome.Repetition,
		Patience:     res.Memory.Patience,
		Satisfaction: res.Memory.Satisfaction,
		Report:       res.Report,
		Summary:      aggregator.Aggregate(res.Report),
	})
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	e.mu.Lock()
	resp := reportOf(e.s)
	e.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "export")
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	e.mu.Lock()
	snap := e.s.Snapshot()
	e.mu.Unlock()

	var err error
	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=session-%s.xlsx", snap.SessionID))
		err = dataset.WriteScoreSheetTo(w, snap)
	} else {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=session-%s.json", snap.SessionID))
		err = snap.Export(w)
	}
	if err != nil {
		reqLog.WithError(err).Error("failed to write export")
	}
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	e.mu.Lock()
	e.s.End()
	resp := reportOf(e.s)
	e.mu.Unlock()

	s.mu.Lock()
	if e.endedAt.IsZero() {
		e.endedAt = s.opts.Clock()
	}
	s.mu.Unlock()

	s.log.WithRequest(r).WithFields(logrus.Fields{
		"session_id": resp.SessionID,
		"retention":  s.opts.Retention.String(),
	}).Info("session closed")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	id := r.PathValue("id")
	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok && s.retired(e) {
		delete(s.sessions, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", id), nil)
	}
	return e, ok
}

// retired reports whether an ended session outlived its retention. Callers
// hold s.mu.
func (s *Server) retired(e *entry) bool {
	return !e.endedAt.IsZero() && s.opts.Clock().Sub(e.endedAt) >= s.opts.Retention
}

func (s *Server) purgeLocked() {
	for id, e := range s.sessions {
		if s.retired(e) {
			delete(s.sessions, id)
		}
	}
}

// nextSeeds draws the reply seed and the scenario pick seed for a session.
func (s *Server) nextSeeds() (uint64, uint64) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Uint64(), s.rng.Uint64()
}

func reportOf(sess *session.Session) types.ReportResponse {
	rep := sess.Report()
	return types.ReportResponse{
		SessionID:  sess.ID(),
		Ended:      sess.Ended(),
		Expired:    sess.Expired(),
		Report:     rep,
		Summary:    aggregator.Aggregate(rep),
		ActionCard: sess.ActionCard(),
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error, report *evaluation.Report) {
	writeJSON(w, status, types.ErrorResponse{Error: err.Error(), Report: report})
}
