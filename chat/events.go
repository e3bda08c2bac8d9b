package chat

import "github.com/tailored-agentic-units/interview/observability"

// Chat event types.
const (
	EventSendStart      observability.EventType = "chat.send.start"
	EventStreamOpen     observability.EventType = "chat.stream.open"
	EventStreamFrame    observability.EventType = "chat.stream.frame"
	EventStreamTruncate observability.EventType = "chat.stream.truncated"
	EventSendComplete   observability.EventType = "chat.send.complete"
	EventSendFailed     observability.EventType = "chat.send.failed"
	EventReaderClose    observability.EventType = "chat.reader.close"
)
