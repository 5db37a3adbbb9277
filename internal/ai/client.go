package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"knowledgebase-backend/internal/shared/telemetry"
)

// Client talks to the processing collaborator over HTTP. A circuit
// breaker guards both operations so a dead collaborator fails fast
// instead of tying up request handlers on timeouts. Failed calls are
// never retried automatically; re-processing is always user-initiated.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[Result]
}

// NewClient constructs a collaborator client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, ErrNotConfigured
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "ai-collaborator",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			telemetry.Warn("ai_breaker_state_change", map[string]any{
				"from": from.String(),
				"to":   to.String(),
			})
		},
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker[Result](settings),
	}, nil
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Process(ctx context.Context, documentID string) (Result, error) {
	return c.breaker.Execute(func() (Result, error) {
		return c.process(ctx, documentID)
	})
}

func (c *Client) process(ctx context.Context, documentID string) (Result, error) {
	url := fmt.Sprintf("%s/documents/%s/process", c.baseURL, documentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return Result{}, &CollaboratorError{Operation: "process", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return Result{}, &CollaboratorError{Operation: "process", Message: "request timeout", Err: err}
		}
		return Result{}, &CollaboratorError{Operation: "process", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &CollaboratorError{Operation: "process", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, &CollaboratorError{
			Operation:  "process",
			StatusCode: resp.StatusCode,
			Message:    envelopeMessage(body),
		}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, &CollaboratorError{Operation: "process", Message: "response parse", Err: err}
	}
	return result, nil
}

func (c *Client) Cleanup(ctx context.Context, documentID string) error {
	_, err := c.breaker.Execute(func() (Result, error) {
		return Result{}, c.cleanup(ctx, documentID)
	})
	return err
}

func (c *Client) cleanup(ctx context.Context, documentID string) error {
	url := fmt.Sprintf("%s/documents/%s/data", c.baseURL, documentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return &CollaboratorError{Operation: "cleanup", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &CollaboratorError{Operation: "cleanup", Err: err}
	}
	defer resp.Body.Close()

	// 404 means there is nothing to clean up, which is fine: the
	// document may never have been processed.
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return &CollaboratorError{
		Operation:  "cleanup",
		StatusCode: resp.StatusCode,
		Message:    envelopeMessage(body),
	}
}

func envelopeMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "unexpected response"
	}
	return msg
}

var (
	_ Processor = (*Client)(nil)
	_ Cleaner   = (*Client)(nil)
)
