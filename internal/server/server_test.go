package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"voice-coach-go/internal/checklist"
	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/types"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func newSession(t *testing.T, h http.Handler, body string) types.SessionResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/sessions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[types.SessionResponse](t, rec)
}

var library = []scenario.Scenario{
	{Type: scenario.TypeWindshield, Context: "trinca no para-brisa", SourceID: "101"},
	{Type: scenario.TypeMirror, Context: "retrovisor quebrado, motorista de caminhão", SourceID: "202"},
}

func TestHealthAndScenarios(t *testing.T) {
	h := New(Options{Scenarios: library}).Handler()

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	list := decodeBody[types.ScenarioList](t, do(t, h, http.MethodGet, "/scenarios", ""))
	assert.Equal(t, 2, list.Count)
	assert.Len(t, list.ByType, 2)

	empty := decodeBody[types.ScenarioList](t, do(t, New(Options{}).Handler(), http.MethodGet, "/scenarios", ""))
	assert.Equal(t, []scenario.Scenario{scenario.Default()}, empty.Scenarios)
}

func TestSessionLifecycle(t *testing.T) {
	srv := New(Options{Scenarios: library, Seed: 7, APIStatus: map[string]string{"llm": "not configured"}})
	h := srv.Handler()

	created := newSession(t, h, `{"scenario_id": "202"}`)
	assert.Equal(t, "202", created.Scenario.SourceID)
	assert.Contains(t, created.Persona, "Truck driver")
	assert.Contains(t, created.Opening.Text, "mirror")
	assert.Nil(t, created.ExpiresAt)
	assert.Equal(t, 1, srv.Len())

	base := "/sessions/" + created.SessionID
	turn := decodeBody[types.TurnResponse](t, do(t, h, http.MethodPost, base+"/turns", `{"text": "Bom dia, Carglass! Qual a placa do veículo?"}`))
	assert.Equal(t, "greeting", turn.Kind)
	assert.Equal(t, 10+3+1, turn.Report.Total)

	turn = decodeBody[types.TurnResponse](t, do(t, h, http.MethodPost, base+"/turns", `{"text": "Qual a placa?"}`))
	assert.Equal(t, "field_request", turn.Kind)
	assert.False(t, turn.Repetition)
	assert.Contains(t, turn.Customer, "ABC1D23")

	turn = decodeBody[types.TurnResponse](t, do(t, h, http.MethodPost, base+"/turns", `{"text": "Qual a placa?"}`))
	assert.True(t, turn.Repetition)
	listening, _ := turn.Report.Item(checklist.ItemListening)
	assert.Equal(t, 2, listening.Points)

	rep := decodeBody[types.ReportResponse](t, do(t, h, http.MethodGet, base+"/report", ""))
	assert.Equal(t, turn.Report, rep.Report)
	assert.Equal(t, rep.Report.Total, rep.Summary.Total)
	assert.NotEmpty(t, rep.ActionCard.Insight)

	exp := do(t, h, http.MethodGet, base+"/export", "")
	require.Equal(t, http.StatusOK, exp.Code)
	assert.Contains(t, exp.Body.String(), "veículo")
	assert.Contains(t, exp.Body.String(), `"api_status"`)

	xlsx := do(t, h, http.MethodGet, base+"/export?format=xlsx", "")
	require.Equal(t, http.StatusOK, xlsx.Code)
	f, err := excelize.OpenReader(bytes.NewReader(xlsx.Body.Bytes()))
	require.NoError(t, err)
	assert.Contains(t, f.GetSheetList(), "Score")
	require.NoError(t, f.Close())

	end := decodeBody[types.ReportResponse](t, do(t, h, http.MethodDelete, base, ""))
	assert.True(t, end.Ended)
	assert.Equal(t, 1, srv.Len())

	ended := decodeBody[types.ReportResponse](t, do(t, h, http.MethodGet, base+"/report", ""))
	assert.True(t, ended.Ended)
	assert.Equal(t, end.Report, ended.Report)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, base+"/turns", `{"text": "Qual a placa?"}`).Code)

	exp = do(t, h, http.MethodGet, base+"/export", "")
	require.Equal(t, http.StatusOK, exp.Code)
	assert.Contains(t, exp.Body.String(), `"ended": true`)
}

func TestEndedSessionRetention(t *testing.T) {
	now := time.Date(2025, 12, 3, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	srv := New(Options{Scenarios: library, Clock: clock, Retention: 10 * time.Minute})
	h := srv.Handler()

	first := newSession(t, h, "")
	base := "/sessions/" + first.SessionID
	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, base, "").Code)

	now = now.Add(9 * time.Minute)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, base+"/export", "").Code)
	second := newSession(t, h, "")
	assert.Equal(t, 2, srv.Len())

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, base+"/export", "").Code)
	assert.Equal(t, 1, srv.Len())

	now = now.Add(time.Hour)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/sessions/"+second.SessionID+"/report", "").Code, "live sessions are kept")
}

func TestSessionErrors(t *testing.T) {
	h := New(Options{Scenarios: library}).Handler()

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/sessions", `{"scenario_id": "nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/sessions", `{"bogus": 1}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/sessions/missing/turns", `{"text": "hi"}`).Code)

	created := newSession(t, h, "")
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/sessions/"+created.SessionID+"/turns", `not json`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/sessions/"+created.SessionID+"/turns", "").Code)
}

func TestExpiredSession(t *testing.T) {
	now := time.Date(2025, 12, 3, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	h := New(Options{Limit: time.Minute, Clock: clock}).Handler()

	created := newSession(t, h, "")
	require.NotNil(t, created.ExpiresAt)
	assert.Equal(t, now.Add(time.Minute), created.ExpiresAt.UTC())

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	rec := do(t, h, http.MethodPost, "/sessions/"+created.SessionID+"/turns", `{"text": "Bom dia, Carglass"}`)
	assert.Equal(t, http.StatusGone, rec.Code)
	body := decodeBody[types.ErrorResponse](t, rec)
	require.NotNil(t, body.Report)
	assert.Equal(t, 0, body.Report.Total)
}

func TestSeededSessionsAreReproducible(t *testing.T) {
	h := New(Options{}).Handler()
	lines := []string{`{"text": "Bom dia, Carglass"}`, `{"text": "hmm"}`, `{"text": "ok"}`, `{"text": "certo"}`}

	play := func() []string {
		created := newSession(t, h, `{"seed": 11}`)
		var out []string
		for _, l := range lines {
			tr := decodeBody[types.TurnResponse](t, do(t, h, http.MethodPost, "/sessions/"+created.SessionID+"/turns", l))
			out = append(out, tr.Customer)
		}
		return out
	}
	assert.Equal(t, play(), play())
}

func TestConcurrentSessions(t *testing.T) {
	srv := New(Options{Seed: 3})
	h := srv.Handler()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("")))
			var created types.SessionResponse
			if json.Unmarshal(rec.Body.Bytes(), &created) != nil {
				return
			}
			for _, text := range []string{"Bom dia, Carglass", "Qual a placa?", "Qual a placa?"} {
				req := httptest.NewRequest(http.MethodPost, "/sessions/"+created.SessionID+"/turns", strings.NewReader(`{"text": "`+text+`"}`))
				h.ServeHTTP(httptest.NewRecorder(), req)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, srv.Len())
}
