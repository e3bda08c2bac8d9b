package protocol

import "fmt"

// Mode selects which relay endpoint and which account agent a session uses.
type Mode string

const (
	// ModeAgent is a free-form chat with the account's knowledge-base agent.
	ModeAgent Mode = "agent"
	// ModeInterview is a counted interview with a contact.
	ModeInterview Mode = "interview"
)

// ParseMode validates a mode name. The empty string selects ModeAgent.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAgent:
		return ModeAgent, nil
	case ModeInterview:
		return ModeInterview, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}
