package relay

import "github.com/tailored-agentic-units/interview/observability"

// Relay event types.
const (
	EventRequest observability.EventType = "relay.request"
	EventError   observability.EventType = "relay.error"
)
