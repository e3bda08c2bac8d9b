package relay

import (
	"time"

	"github.com/tailored-agentic-units/interview/core/protocol"
)

// SendRequest is the body of a streaming send.
type SendRequest struct {
	UserID    string        `json:"user_id"`
	SessionID string        `json:"session_id"`
	AgentID   string        `json:"agent_id"`
	Message   string        `json:"message"`
	Mode      protocol.Mode `json:"-"`
}

type historyResponse struct {
	Messages     []wireMessage `json:"messages"`
	MessageCount int           `json:"message_count"`
	Session      *struct {
		MessageCount  int    `json:"message_count"`
		SessionStatus string `json:"session_status"`
	} `json:"session"`
}

type wireMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	CreatedAt string `json:"created_at"`
}

func (w wireMessage) message() protocol.Message {
	m := protocol.Message{
		ID:      w.ID,
		Role:    protocol.Role(w.Role),
		Content: w.Content,
	}
	if m.ID == "" {
		m.ID = protocol.NewID()
	}

	ts := w.Timestamp
	if ts == "" {
		ts = w.CreatedAt
	}
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		m.Timestamp = t
	}
	return m
}

type contactRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
