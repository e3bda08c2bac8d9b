// Package relay is the HTTP client for the dashboard backend that relays
// messages to the third-party agent platform. It implements the history,
// streaming send, completion, document pipeline and account collaborators.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tailored-agentic-units/interview/account"
	"github.com/tailored-agentic-units/interview/core/protocol"
	"github.com/tailored-agentic-units/interview/observability"
	"github.com/tailored-agentic-units/interview/session"
)

const maxErrorBody = 4096

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithObserver sets the event observer.
func WithObserver(o observability.Observer) Option {
	return func(c *Client) { c.observer = observability.OrNoOp(o) }
}

// Client talks to the relay over HTTP. Safe for concurrent use.
type Client struct {
	base     *url.URL
	timeout  time.Duration
	headers  map[string]string
	http     *http.Client
	observer observability.Observer
}

// New creates a Client from configuration.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid relay base url: %w", err)
	}

	c := &Client{
		base:     base,
		timeout:  cfg.Timeout,
		headers:  cfg.Headers,
		http:     &http.Client{},
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchHistory loads the stored transcript for key. HTTP 404 maps to
// session.ErrHistoryNotFound.
func (c *Client) FetchHistory(ctx context.Context, key session.Key) (*session.History, error) {
	ctx, cancel := c.unary(ctx)
	defer cancel()

	endpoint := c.endpoint("chat", "history", key.String())
	var resp historyResponse
	err := c.do(ctx, "history", http.MethodGet, endpoint, nil, &resp)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", session.ErrHistoryNotFound, key)
		}
		return nil, err
	}

	h := &session.History{
		Messages:     make([]protocol.Message, 0, len(resp.Messages)),
		MessageCount: resp.MessageCount,
		Status:       protocol.StatusActive,
	}
	for _, m := range resp.Messages {
		h.Messages = append(h.Messages, m.message())
	}
	if resp.Session != nil {
		if resp.Session.MessageCount > 0 {
			h.MessageCount = resp.Session.MessageCount
		}
		h.Status = protocol.ParseStatus(resp.Session.SessionStatus)
	}
	return h, nil
}

// OpenStream posts a message and returns the streamed response body once the
// relay has answered with a 2xx status. The caller must close the body. The
// request lives as long as ctx; cancelling it aborts the read.
func (c *Client) OpenStream(ctx context.Context, req SendRequest) (io.ReadCloser, error) {
	path := "agent"
	if req.Mode == protocol.ModeInterview {
		path = "interview"
	}
	endpoint := c.endpoint("chat", path, "send", "stream")

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal send request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	c.emit(ctx, EventRequest, observability.LevelVerbose, map[string]any{
		"op":      "send",
		"session": req.SessionID,
	})

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("relay send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, statusError("send", resp)
	}
	return resp.Body, nil
}

// CompleteInterview marks the session complete on the relay.
func (c *Client) CompleteInterview(ctx context.Context, sessionKey string) (json.RawMessage, error) {
	ctx, cancel := c.unary(ctx)
	defer cancel()

	var raw json.RawMessage
	err := c.do(ctx, "complete", http.MethodPost, c.endpoint("chat", "interview", "complete", sessionKey), nil, &raw)
	return raw, err
}

// ProcessInterview asks the relay to turn a completed interview into a
// document.
func (c *Client) ProcessInterview(ctx context.Context, accountID, contact string) error {
	ctx, cancel := c.unary(ctx)
	defer cancel()

	return c.do(ctx, "process", http.MethodPost, c.endpoint("interview", "process"),
		contactRequest{UserID: accountID, Email: contact}, nil)
}

// TrainKnowledgeBase feeds a processed interview into the account's
// knowledge base.
func (c *Client) TrainKnowledgeBase(ctx context.Context, accountID, contact string) (json.RawMessage, error) {
	ctx, cancel := c.unary(ctx)
	defer cancel()

	var raw json.RawMessage
	err := c.do(ctx, "kb-training", http.MethodPost, c.endpoint("interview", "kb-training"),
		contactRequest{UserID: accountID, Email: contact}, &raw)
	return raw, err
}

// LookupAccount fetches an account's agent configuration.
func (c *Client) LookupAccount(ctx context.Context, id string) (*account.Account, error) {
	ctx, cancel := c.unary(ctx)
	defer cancel()

	var a account.Account
	err := c.do(ctx, "account", http.MethodGet, c.endpoint("accounts", id), nil, &a)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", account.ErrAccountNotFound, id)
		}
		return nil, err
	}
	return &a, nil
}

func (c *Client) unary(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) endpoint(segments ...string) string {
	return c.base.JoinPath(segments...).String()
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.emit(ctx, EventError, observability.LevelWarning, map[string]any{"op": op, "error": err.Error()})
		return fmt.Errorf("relay %s: %w", op, err)
	}
	defer resp.Body.Close()

	c.emit(ctx, EventRequest, observability.LevelVerbose, map[string]any{
		"op":          op,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(data)),
	}
}

func (c *Client) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	c.observer.OnEvent(ctx, observability.NewEvent(typ, level, "relay.Client", data))
}
