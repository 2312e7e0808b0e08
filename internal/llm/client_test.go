package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/intent"
	"voice-coach-go/internal/scenario"
)

func prompt() customer.Prompt {
	return customer.Prompt{
		Persona:        "Truck driver",
		Scenario:       scenario.Default(),
		Profile:        scenario.DefaultProfile(),
		Disclosed:      map[intent.Field]string{intent.FieldPlate: "ABC1D23"},
		Patience:       52,
		Satisfaction:   50,
		Mood:           "neutral",
		LastUtterance:  "What is the plate again?",
		Classification: intent.Classification{Kind: intent.KindFieldRequest, Fields: []intent.Field{intent.FieldPlate}},
		Fallback:       "I already told you that. The plate is ABC1D23.",
	}
}

func chatBody(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return b
}

func client(url string) *Client {
	return New(Config{GatewayURL: url, APIKey: "k", Timeout: time.Second, MaxRetry: 3 * time.Second})
}

func TestGenerateParsesReplyObject(t *testing.T) {
	var gotAuth string
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write(chatBody("```json\n{\"reply\": \"It's ABC1D23, I said that already.\"}\n```"))
	}))
	defer srv.Close()

	out, err := client(srv.URL).Generate(context.Background(), prompt())
	require.NoError(t, err)
	assert.Equal(t, "It's ABC1D23, I said that already.", out)
	assert.Equal(t, "Bearer k", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq["model"])
}

func TestGenerateAcceptsPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatBody("\"Sure, it's ABC1D23.\""))
	}))
	defer srv.Close()

	out, err := client(srv.URL).Generate(context.Background(), prompt())
	require.NoError(t, err)
	assert.Equal(t, "Sure, it's ABC1D23.", out)
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := client(srv.URL).Generate(context.Background(), prompt())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusBadGateway)
			return
		}
		_, _ = w.Write(chatBody(`{"reply": "Okay."}`))
	}))
	defer srv.Close()

	out, err := client(srv.URL).Generate(context.Background(), prompt())
	require.NoError(t, err)
	assert.Equal(t, "Okay.", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateNotConfiguredAndMock(t *testing.T) {
	_, err := New(Config{}).Generate(context.Background(), prompt())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, New(Config{}).Configured())

	mock := New(Config{Mock: true})
	assert.True(t, mock.Configured())
	out, err := mock.Generate(context.Background(), prompt())
	require.NoError(t, err)
	assert.Equal(t, prompt().Fallback, out)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(prompt())
	assert.Contains(t, p, "Persona: Truck driver")
	assert.Contains(t, p, "- plate: ABC1D23")
	assert.Contains(t, p, "field_request (plate)")
	assert.Contains(t, p, `The agent just said: "What is the plate again?"`)

	empty := prompt()
	empty.Disclosed = nil
	assert.Contains(t, BuildPrompt(empty), "- nothing yet")
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":{"b":1}}`, extractJSON("noise {\"a\":{\"b\":1}} tail"))
	assert.Equal(t, "", extractJSON("no object"))
	assert.Equal(t, "", extractJSON("{ unbalanced"))
}
