package observability

import (
	"context"
	"sync"
)

// MultiObserver fans out events to several observers in registration order.
type MultiObserver struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewMultiObserver creates a MultiObserver that forwards events to all
// non-nil observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	m := &MultiObserver{}
	m.Add(observers...)
	return m
}

// Add appends observers; nil entries are skipped.
func (m *MultiObserver) Add(observers ...Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, obs := range observers {
		if obs != nil {
			m.observers = append(m.observers, obs)
		}
	}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
