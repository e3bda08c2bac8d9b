package session

import "github.com/tailored-agentic-units/interview/observability"

// Session event types.
const (
	EventLoad          observability.EventType = "session.load"
	EventExchange      observability.EventType = "session.exchange"
	EventCountMismatch observability.EventType = "session.count.mismatch"
	EventCompleteStart observability.EventType = "session.complete.start"
	EventComplete      observability.EventType = "session.complete"
	EventError         observability.EventType = "session.error"
)
