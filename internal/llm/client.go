package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/logger"
)

var (
	ErrNotConfigured = errors.New("llm gateway not configured")
	ErrNoReply       = errors.New("no reply found in llm output")
)

type Config struct {
	GatewayURL  string
	APIKey      string
	Model       string
	Temperature float64
	// Timeout bounds one HTTP attempt, MaxRetry the whole retry loop.
	Timeout  time.Duration
	MaxRetry time.Duration
	Mock     bool
}

// Client generates customer replies through an OpenAI compatible chat
// completions gateway. It implements customer.Generator.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logrus.Entry
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.MaxRetry <= 0 {
		cfg.MaxRetry = 20 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "llm")
	return c
}

// Configured reports whether Generate can reach a gateway or the mock.
func (c *Client) Configured() bool {
	return c.cfg.Mock || (c.cfg.GatewayURL != "" && c.cfg.APIKey != "")
}

// Generate asks the gateway for the next customer line.
func (c *Client) Generate(ctx context.Context, p customer.Prompt) (string, error) {
	if c.cfg.Mock {
		c.log.Debug("mock LLM mode ON - returning template reply")
		return p.Fallback, nil
	}
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	reqBody := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": BuildPrompt(p)},
		},
		"temperature": c.cfg.Temperature,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode llm request: %w", err)
	}
	c.log.WithField("payload_len", len(data)).Debug("llm request")

	var reply string
	var lastErr error

	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.cfg.GatewayURL, bytes.NewReader(data))
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			c.log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		c.log.WithField("http_status", resp.StatusCode).Debug("llm raw:\n" + string(body))

		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("llm gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			if resp.StatusCode < 500 {
				return backoff.Permanent(lastErr)
			}
			return lastErr
		}

		if text := replyFromBody(body); text != "" {
			reply = text
			lastErr = nil
			return nil
		}
		lastErr = ErrNoReply
		return lastErr
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.cfg.MaxRetry

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return "", fmt.Errorf("llm generate failed: %w", lastErr)
	}
	return reply, nil
}

// replyFromBody reads choices[0].message.content and unwraps the
// {"reply": "..."} object the prompt asks for. Plain text content is
// accepted as is.
func replyFromBody(body []byte) string {
	content := contentFromChoices(body)
	if content == "" {
		return ""
	}
	if raw := extractJSON(content); raw != "" {
		var out struct {
			Reply string `json:"reply"`
		}
		if err := json.Unmarshal([]byte(raw), &out); err == nil && strings.TrimSpace(out.Reply) != "" {
			return strings.TrimSpace(out.Reply)
		}
	}
	return strings.Trim(stripFences(content), " \n\t\"")
}

func contentFromChoices(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}

	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	c0, _ := choices[0].(map[string]any)
	if c0 == nil {
		return ""
	}
	msg, _ := c0["message"].(map[string]any)
	if msg == nil {
		return ""
	}
	content, _ := msg["content"].(string)
	return content
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, r := range []string{"```json", "```text", "```", "`"} {
		s = strings.ReplaceAll(s, r, "")
	}
	return s
}

// extractJSON finds the first balanced JSON object in a string.
func extractJSON(s string) string {
	s = stripFences(s)
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}
