package chat

import (
	"errors"
	"fmt"
)

// Sentinel errors for send preconditions and stream outcomes.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrSendInFlight = errors.New("a send is already in progress")
	ErrStreamError  = errors.New("relay reported an error")
)

// Stage marks how far a failed send got.
type Stage string

const (
	// StagePreStream failures happen before the response stream opens. The
	// transcript is rolled back.
	StagePreStream Stage = "pre-stream"
	// StageMidStream failures happen while reading. The user message stays.
	StageMidStream Stage = "mid-stream"
)

// SendError reports a failed send and the stage it failed in.
type SendError struct {
	Stage Stage
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed (%s): %v", e.Stage, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
