// Package protocol defines the transcript vocabulary shared by the stream,
// transcript, session, and chat packages.
package protocol

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the sender of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is a role the relay understands.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single transcript entry.
//
// ID is generated locally and is unique within a transcript. Content starts
// empty for an assistant placeholder awaiting stream data and only grows until
// the send that created it resolves.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a Message with a fresh identifier and the current time.
// Identifiers are UUIDv7, so they sort by creation time.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "Hello")
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlaceholder creates an empty assistant message that stream frames fill in.
func NewPlaceholder() Message {
	return NewMessage(RoleAssistant, "")
}

// NewID returns a time-ordered unique message identifier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
