package observability

import (
	"context"
	"sync"
)

// Recorder keeps every event it receives. It backs tests and the CLI's
// end-of-run diagnostics.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) OnEvent(ctx context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in arrival order.
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// Has reports whether an event of type typ was recorded.
func (r *Recorder) Has(typ EventType) bool {
	for _, t := range r.Types() {
		if t == typ {
			return true
		}
	}
	return false
}
