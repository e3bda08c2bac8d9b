package relay

import (
	"errors"
	"fmt"
)

// ErrNoBaseURL is returned by New when the configuration has no base URL.
var ErrNoBaseURL = errors.New("relay base url is empty")

// StatusError reports a non-2xx relay response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("relay %s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("relay %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}
