package session

import "errors"

// Sentinel errors for session identity and lifecycle operations.
var (
	ErrInvalidKey         = errors.New("invalid session key")
	ErrHistoryNotFound    = errors.New("session history not found")
	ErrAlreadyCompleted   = errors.New("session already completed")
	ErrNotEligible        = errors.New("session not eligible for completion")
	ErrCompletionInFlight = errors.New("completion already in progress")
	ErrNoCompleter        = errors.New("no completion handler configured")
)
