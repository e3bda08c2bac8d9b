// Package session owns the lifecycle of one chat or interview session: its
// identity, transcript, exchange count, completion eligibility and status.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tailored-agentic-units/interview/core/protocol"
	"github.com/tailored-agentic-units/interview/observability"
	"github.com/tailored-agentic-units/interview/stream"
	"github.com/tailored-agentic-units/interview/transcript"
)

// History is the stored state of an existing session.
type History struct {
	Messages     []protocol.Message
	MessageCount int
	Status       protocol.Status
}

// HistoryFetcher loads stored session history. Implementations return an
// error wrapping ErrHistoryNotFound when the session does not exist yet.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, key Key) (*History, error)
}

// CompletionRequest is handed to the Completer when a session is completed.
type CompletionRequest struct {
	SessionKey      string
	AccountID       string
	ContactIdentity string
	Messages        []protocol.Message
}

// CompletionResult is the Completer's answer.
type CompletionResult struct {
	Success bool
	Data    json.RawMessage
}

// Completer marks a session complete on the backend and triggers downstream
// document processing.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// Listener receives a full transcript snapshot after every mutation. It runs
// synchronously on the mutating goroutine, before the next frame is applied.
type Listener func(msgs []protocol.Message)

// Option configures a Controller.
type Option func(*Controller)

// WithObserver sets the event observer.
func WithObserver(o observability.Observer) Option {
	return func(c *Controller) { c.observer = observability.OrNoOp(o) }
}

// WithListener registers a transcript listener.
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listener = l }
}

// Controller holds the state of one open session. It exclusively owns the
// transcript; all methods are safe for concurrent use.
type Controller struct {
	key       Key
	history   HistoryFetcher
	completer Completer
	observer  observability.Observer
	listener  Listener

	mu          sync.RWMutex
	messages    []protocol.Message
	count       int
	serverCount int
	hasServer   bool
	status      protocol.Status

	completing atomic.Bool
}

// NewController creates a Controller for key in the fresh active state.
// history and completer may be nil; Load then keeps the fresh state and
// Complete fails with ErrNoCompleter.
func NewController(key Key, history HistoryFetcher, completer Completer, opts ...Option) *Controller {
	c := &Controller{
		key:       key,
		history:   history,
		completer: completer,
		observer:  observability.NoOpObserver{},
		status:    protocol.StatusActive,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the session identity.
func (c *Controller) Key() Key {
	return c.key
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []protocol.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]protocol.Message(nil), c.messages...)
}

// MessageCount returns the number of completed exchanges.
func (c *Controller) MessageCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

// Eligible reports whether the session has enough exchanges to be completed.
func (c *Controller) Eligible() bool {
	return protocol.Eligible(c.MessageCount())
}

// Status returns the lifecycle status.
func (c *Controller) Status() protocol.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// ServerCount returns the last message count reported by the relay, if any.
func (c *Controller) ServerCount() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverCount, c.hasServer
}

// Load replaces the local state with stored history. A missing session is a
// valid fresh state, not an error. Other fetch failures are returned and leave
// the fresh state in place.
func (c *Controller) Load(ctx context.Context) error {
	c.reset()

	if c.history == nil {
		return nil
	}

	h, err := c.history.FetchHistory(ctx, c.key)
	if err != nil {
		if errors.Is(err, ErrHistoryNotFound) {
			c.emit(ctx, EventLoad, observability.LevelInfo, map[string]any{
				"session": c.key.String(),
				"new":     true,
			})
			c.notify(nil)
			return nil
		}
		c.emit(ctx, EventError, observability.LevelWarning, map[string]any{
			"session": c.key.String(),
			"error":   err.Error(),
		})
		return fmt.Errorf("load session %s: %w", c.key, err)
	}

	count := h.MessageCount
	if count == 0 {
		count = transcript.Exchanges(h.Messages)
	}
	status := h.Status
	if status == "" {
		status = protocol.StatusActive
	}

	c.mu.Lock()
	c.messages = append([]protocol.Message(nil), h.Messages...)
	c.count = count
	c.status = status
	snapshot := append([]protocol.Message(nil), c.messages...)
	c.mu.Unlock()

	c.emit(ctx, EventLoad, observability.LevelInfo, map[string]any{
		"session":       c.key.String(),
		"messages":      len(snapshot),
		"message_count": count,
		"status":        string(status),
	})
	c.notify(snapshot)
	return nil
}

func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.count = 0
	c.serverCount = 0
	c.hasServer = false
	c.status = protocol.StatusActive
}

// Append adds messages to the end of the transcript.
func (c *Controller) Append(msgs ...protocol.Message) {
	c.mutate(func(cur []protocol.Message) []protocol.Message {
		return transcript.Append(cur, msgs...)
	})
}

// Remove drops the messages with the given IDs.
func (c *Controller) Remove(ids ...string) {
	c.mutate(func(cur []protocol.Message) []protocol.Message {
		return transcript.Remove(cur, ids...)
	})
}

// Apply folds one stream frame into the message targetID.
func (c *Controller) Apply(targetID string, frame stream.Frame) {
	c.mutate(func(cur []protocol.Message) []protocol.Message {
		return transcript.Reduce(cur, targetID, frame)
	})
}

// MarkFailed records a broken stream on the message targetID.
func (c *Controller) MarkFailed(targetID string) {
	c.mutate(func(cur []protocol.Message) []protocol.Message {
		return transcript.MarkFailed(cur, targetID)
	})
}

// Message returns the transcript entry with the given ID.
func (c *Controller) Message(id string) (protocol.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return transcript.Find(c.messages, id)
}

func (c *Controller) mutate(fn func([]protocol.Message) []protocol.Message) {
	c.mu.Lock()
	c.messages = fn(c.messages)
	snapshot := append([]protocol.Message(nil), c.messages...)
	c.mu.Unlock()

	c.notify(snapshot)
}

func (c *Controller) notify(snapshot []protocol.Message) {
	if c.listener != nil {
		c.listener(snapshot)
	}
}

// RecordSentMessage counts one finished exchange and returns the new count.
func (c *Controller) RecordSentMessage() int {
	c.mu.Lock()
	c.count++
	count := c.count
	c.mu.Unlock()

	c.emit(context.Background(), EventExchange, observability.LevelVerbose, map[string]any{
		"session":       c.key.String(),
		"message_count": count,
		"eligible":      protocol.Eligible(count),
	})
	return count
}

// ObserveServerCount records the relay's absolute message count. The local
// count stays authoritative; a disagreement is only reported.
func (c *Controller) ObserveServerCount(n int) {
	c.mu.Lock()
	c.serverCount = n
	c.hasServer = true
	local := c.count
	c.mu.Unlock()

	if n != local && n != local+1 {
		c.emit(context.Background(), EventCountMismatch, observability.LevelWarning, map[string]any{
			"session":      c.key.String(),
			"local_count":  local,
			"server_count": n,
		})
	}
}

// Complete transitions an eligible active session to completed through the
// Completer. Conflicts detectable locally are rejected without calling it. On
// failure the status is left unchanged.
func (c *Controller) Complete(ctx context.Context) (*CompletionResult, error) {
	if !c.completing.CompareAndSwap(false, true) {
		return nil, ErrCompletionInFlight
	}
	defer c.completing.Store(false)

	c.mu.RLock()
	status, count := c.status, c.count
	msgs := append([]protocol.Message(nil), c.messages...)
	c.mu.RUnlock()

	if status != protocol.StatusActive {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyCompleted, status)
	}
	if !protocol.Eligible(count) {
		return nil, fmt.Errorf("%w: %d of %d exchanges", ErrNotEligible, count, protocol.CompletionThreshold)
	}
	if c.completer == nil {
		return nil, ErrNoCompleter
	}

	c.emit(ctx, EventCompleteStart, observability.LevelInfo, map[string]any{
		"session":       c.key.String(),
		"message_count": count,
	})

	res, err := c.completer.Complete(ctx, CompletionRequest{
		SessionKey:      c.key.String(),
		AccountID:       c.key.AccountID,
		ContactIdentity: c.key.ContactIdentity,
		Messages:        msgs,
	})
	if err == nil && (res == nil || !res.Success) {
		err = errors.New("completion rejected by backend")
	}
	if err != nil {
		c.emit(ctx, EventError, observability.LevelError, map[string]any{
			"session": c.key.String(),
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("complete session %s: %w", c.key, err)
	}

	c.mu.Lock()
	if c.status == protocol.StatusActive {
		c.status = protocol.StatusCompleted
	}
	c.mu.Unlock()

	c.emit(ctx, EventComplete, observability.LevelInfo, map[string]any{
		"session": c.key.String(),
	})
	return res, nil
}

func (c *Controller) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	c.observer.OnEvent(ctx, observability.NewEvent(typ, level, "session.Controller", data))
}
