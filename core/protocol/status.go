package protocol

// CompletionThreshold is the number of user/assistant exchanges after which a
// session may be explicitly completed.
const CompletionThreshold = 5

// Status is the lifecycle state of an interview or chat session.
//
// Transitions are active -> completed (explicit completion succeeded) and
// completed -> processed (downstream document pipeline finished, observed
// through history, never set locally).
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusProcessed Status = "processed"
)

// ParseStatus maps a relay status string to a Status. Unknown or empty values
// map to StatusActive, matching how a missing session is treated.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusCompleted:
		return StatusCompleted
	case StatusProcessed:
		return StatusProcessed
	default:
		return StatusActive
	}
}

// IsFinished reports whether the session has left the active state.
func (s Status) IsFinished() bool {
	return s == StatusCompleted || s == StatusProcessed
}

// Eligible reports whether count exchanges are enough to allow completion.
func Eligible(count int) bool {
	return count >= CompletionThreshold
}
