package relay_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/interview/account"
	"github.com/tailored-agentic-units/interview/core/protocol"
	"github.com/tailored-agentic-units/interview/observability"
	"github.com/tailored-agentic-units/interview/relay"
	"github.com/tailored-agentic-units/interview/session"
)

func newClient(t *testing.T, h http.HandlerFunc, opts ...relay.Option) *relay.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := relay.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}
	c, err := relay.New(&cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := relay.New(&relay.Config{})
	if !errors.Is(err, relay.ErrNoBaseURL) {
		t.Errorf("got error %v, want ErrNoBaseURL", err)
	}
}

func TestDefaultConfig_EnvOverride(t *testing.T) {
	t.Setenv(relay.EnvBaseURL, "https://relay.example.com")

	cfg := relay.DefaultConfig()
	if cfg.BaseURL != "https://relay.example.com" {
		t.Errorf("got base url %q", cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("got timeout %v, want 30s", cfg.Timeout)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := relay.Config{BaseURL: "http://a", Timeout: time.Second, Headers: map[string]string{"X-A": "1"}}
	cfg.Merge(&relay.Config{Timeout: 5 * time.Second, Headers: map[string]string{"X-B": "2"}})

	if cfg.BaseURL != "http://a" {
		t.Errorf("base url overwritten: %q", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("got timeout %v, want 5s", cfg.Timeout)
	}
	if cfg.Headers["X-A"] != "1" || cfg.Headers["X-B"] != "2" {
		t.Errorf("got headers %v", cfg.Headers)
	}
}

func TestFetchHistory(t *testing.T) {
	var gotPath string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		io.WriteString(w, `{
			"messages": [
				{"id":"m1","role":"user","content":"Hello","timestamp":"2025-01-02T03:04:05Z"},
				{"role":"assistant","content":"Hi","created_at":"2025-01-02T03:04:06Z"}
			],
			"message_count": 1,
			"session": {"message_count": 6, "session_status": "completed"}
		}`)
	})

	key := session.Key{AccountID: "acct", ContactIdentity: "jane@example.com"}
	h, err := c.FetchHistory(context.Background(), key)
	if err != nil {
		t.Fatalf("FetchHistory failed: %v", err)
	}

	if gotPath != "/chat/history/acct+jane@example.com" {
		t.Errorf("got path %q", gotPath)
	}
	if len(h.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(h.Messages))
	}
	if h.Messages[1].ID == "" {
		t.Error("missing id should be generated")
	}
	if h.Messages[1].Role != protocol.RoleAssistant || h.Messages[1].Timestamp.IsZero() {
		t.Errorf("got message %+v", h.Messages[1])
	}
	if h.MessageCount != 6 {
		t.Errorf("got count %d, want session count 6", h.MessageCount)
	}
	if h.Status != protocol.StatusCompleted {
		t.Errorf("got status %q, want completed", h.Status)
	}
}

func TestFetchHistory_NotFound(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such session", http.StatusNotFound)
	})

	_, err := c.FetchHistory(context.Background(), session.Key{AccountID: "a", ContactIdentity: "b"})
	if !errors.Is(err, session.ErrHistoryNotFound) {
		t.Errorf("got error %v, want ErrHistoryNotFound", err)
	}
}

func TestFetchHistory_ServerError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database down", http.StatusInternalServerError)
	})

	_, err := c.FetchHistory(context.Background(), session.Key{AccountID: "a", ContactIdentity: "b"})

	var se *relay.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("got error %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusInternalServerError || se.Body != "database down" {
		t.Errorf("got %+v", se)
	}
}

func TestOpenStream_Endpoints(t *testing.T) {
	tests := []struct {
		mode protocol.Mode
		path string
	}{
		{protocol.ModeAgent, "/chat/agent/send/stream"},
		{protocol.ModeInterview, "/chat/interview/send/stream"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			var gotPath string
			var got map[string]string
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				json.NewDecoder(r.Body).Decode(&got)
				io.WriteString(w, "data: [DONE]\n\n")
			})

			body, err := c.OpenStream(context.Background(), relay.SendRequest{
				UserID:    "acct",
				SessionID: "acct+jane",
				AgentID:   "agent-1",
				Message:   "Hello",
				Mode:      tt.mode,
			})
			if err != nil {
				t.Fatalf("OpenStream failed: %v", err)
			}
			defer body.Close()

			data, _ := io.ReadAll(body)
			if string(data) != "data: [DONE]\n\n" {
				t.Errorf("got body %q", data)
			}
			if gotPath != tt.path {
				t.Errorf("got path %q, want %q", gotPath, tt.path)
			}
			want := map[string]string{
				"user_id":    "acct",
				"session_id": "acct+jane",
				"agent_id":   "agent-1",
				"message":    "Hello",
			}
			for k, v := range want {
				if got[k] != v {
					t.Errorf("body[%s] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestOpenStream_StatusError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "agent unavailable", http.StatusBadGateway)
	})

	_, err := c.OpenStream(context.Background(), relay.SendRequest{Message: "Hello"})

	var se *relay.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("got error %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusBadGateway {
		t.Errorf("got status %d", se.StatusCode)
	}
	if !strings.Contains(se.Error(), "agent unavailable") {
		t.Errorf("error %q should carry the body text", se.Error())
	}
}

func TestCompletionPipelineCalls(t *testing.T) {
	type call struct {
		path string
		body map[string]string
	}
	var calls []call

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %s, want POST", r.Method)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.URL.Path, body})
		io.WriteString(w, `{"success":true}`)
	})

	ctx := context.Background()
	raw, err := c.CompleteInterview(ctx, "acct+jane@example.com")
	if err != nil {
		t.Fatalf("CompleteInterview failed: %v", err)
	}
	if string(raw) != `{"success":true}` {
		t.Errorf("got raw %s", raw)
	}
	if err := c.ProcessInterview(ctx, "acct", "jane@example.com"); err != nil {
		t.Fatalf("ProcessInterview failed: %v", err)
	}
	if _, err := c.TrainKnowledgeBase(ctx, "acct", "jane@example.com"); err != nil {
		t.Fatalf("TrainKnowledgeBase failed: %v", err)
	}

	wantPaths := []string{
		"/chat/interview/complete/acct+jane@example.com",
		"/interview/process",
		"/interview/kb-training",
	}
	if len(calls) != len(wantPaths) {
		t.Fatalf("got %d calls, want %d", len(calls), len(wantPaths))
	}
	for i, p := range wantPaths {
		if calls[i].path != p {
			t.Errorf("call %d path = %q, want %q", i, calls[i].path, p)
		}
	}
	if calls[1].body["user_id"] != "acct" || calls[1].body["email"] != "jane@example.com" {
		t.Errorf("got process body %v", calls[1].body)
	}
}

func TestLookupAccount(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/acct" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `{"user_id":"acct","agent_id":"ag-1","chat_agent_id":"ag-2"}`)
	})

	a, err := c.LookupAccount(context.Background(), "acct")
	if err != nil {
		t.Fatalf("LookupAccount failed: %v", err)
	}
	if a.ID != "acct" || a.AgentID != "ag-1" || a.ChatAgentID != "ag-2" {
		t.Errorf("got %+v", a)
	}

	_, err = c.LookupAccount(context.Background(), "other")
	if !errors.Is(err, account.ErrAccountNotFound) {
		t.Errorf("got error %v, want ErrAccountNotFound", err)
	}
}

func TestClient_Headers(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c, err := relay.New(&relay.Config{BaseURL: srv.URL, Headers: map[string]string{"Authorization": "Bearer t"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := c.CompleteInterview(context.Background(), "a+b"); err != nil {
		t.Fatalf("CompleteInterview failed: %v", err)
	}
	if got != "Bearer t" {
		t.Errorf("got Authorization %q", got)
	}
}

func TestClient_EmitsRequestEvents(t *testing.T) {
	rec := &observability.Recorder{}
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}, relay.WithObserver(rec))

	if _, err := c.CompleteInterview(context.Background(), "a+b"); err != nil {
		t.Fatalf("CompleteInterview failed: %v", err)
	}
	if !rec.Has(relay.EventRequest) {
		t.Errorf("got events %v, want %s", rec.Types(), relay.EventRequest)
	}
}
