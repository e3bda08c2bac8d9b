// Package account resolves account configuration (agent and knowledge-base
// identifiers) before a session may send anything.
package account

import (
	"context"
	"errors"

	"github.com/tailored-agentic-units/interview/core/protocol"
)

// Sentinel errors for account resolution.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already registered")
	ErrEmptyAccountID  = errors.New("account id is empty")
	ErrNoAgent         = errors.New("no agent configured for account")
)

// Account is the read-only configuration of one dashboard account.
type Account struct {
	ID              string `json:"user_id" yaml:"id"`
	AgentID         string `json:"agent_id,omitempty" yaml:"agent_id,omitempty"`
	ChatAgentID     string `json:"chat_agent_id,omitempty" yaml:"chat_agent_id,omitempty"`
	KnowledgeBaseID string `json:"knowledge_base_id,omitempty" yaml:"knowledge_base_id,omitempty"`
}

// Agent returns the agent that serves mode: the chat agent for agent chats
// and the interview agent for interviews.
func (a Account) Agent(mode protocol.Mode) string {
	if mode == protocol.ModeInterview {
		return a.AgentID
	}
	return a.ChatAgentID
}

// Lookup fetches account configuration from the backend. Implementations
// return an error wrapping ErrAccountNotFound for unknown accounts.
type Lookup interface {
	LookupAccount(ctx context.Context, id string) (*Account, error)
}
