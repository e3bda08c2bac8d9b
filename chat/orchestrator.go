// Package chat drives one session's message exchanges: it appends the user
// message and an assistant placeholder, streams the relay's response into the
// transcript frame by frame, and counts finished exchanges toward completion.
//
// An Orchestrator initializes from configuration via New, creating the relay
// client, account registry, archive and session controller internally.
// Functional options replace any of them for tests.
//
//	o, err := chat.New(&cfg, key)
//	defer o.Close()
//	if err := o.Load(ctx); err != nil { ... }
//	res, err := o.Send(ctx, "Hello")
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/interview/account"
	"github.com/tailored-agentic-units/interview/completion"
	"github.com/tailored-agentic-units/interview/core/protocol"
	"github.com/tailored-agentic-units/interview/memory"
	"github.com/tailored-agentic-units/interview/observability"
	"github.com/tailored-agentic-units/interview/relay"
	"github.com/tailored-agentic-units/interview/session"
	"github.com/tailored-agentic-units/interview/stream"
)

// Streamer opens the relay's response stream for one message.
type Streamer interface {
	OpenStream(ctx context.Context, req relay.SendRequest) (io.ReadCloser, error)
}

// AgentResolver finds the agent that serves an account in a mode.
type AgentResolver interface {
	AgentFor(ctx context.Context, accountID string, mode protocol.Mode) (string, error)
}

// SendResult describes a finished exchange.
type SendResult struct {
	UserMessage      protocol.Message
	AssistantMessage protocol.Message
	MessageCount     int  // exchanges after this one
	Eligible         bool // whether the session may now be completed
	Terminated       bool // false when the stream ended without [DONE]
}

// Option configures an Orchestrator after config-driven initialization.
type Option func(*Orchestrator)

// WithStreamer overrides the config-created relay client for sends.
func WithStreamer(s Streamer) Option {
	return func(o *Orchestrator) { o.streamer = s }
}

// WithHistory overrides the history source used by Load.
func WithHistory(h session.HistoryFetcher) Option {
	return func(o *Orchestrator) { o.history = h }
}

// WithCompleter overrides the completion pipeline.
func WithCompleter(c session.Completer) Option {
	return func(o *Orchestrator) { o.completer = c }
}

// WithAgents overrides the config-created account registry.
func WithAgents(r AgentResolver) Option {
	return func(o *Orchestrator) { o.agents = r }
}

// WithObserver overrides the configured observer.
func WithObserver(obs observability.Observer) Option {
	return func(o *Orchestrator) { o.observer = observability.OrNoOp(obs) }
}

// WithListener registers a transcript listener on the session.
func WithListener(l session.Listener) Option {
	return func(o *Orchestrator) { o.listener = l }
}

// WithMode overrides the configured send mode.
func WithMode(m protocol.Mode) Option {
	return func(o *Orchestrator) { o.mode = m }
}

// WithStreamTimeout overrides the configured per-send timeout.
func WithStreamTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// Orchestrator sends messages for one session. At most one send runs at a
// time; a second concurrent Send is rejected rather than queued.
type Orchestrator struct {
	session   *session.Controller
	streamer  Streamer
	history   session.HistoryFetcher
	completer session.Completer
	agents    AgentResolver
	observer  observability.Observer
	listener  session.Listener
	store     memory.Store
	mode      protocol.Mode
	timeout   time.Duration

	inFlight atomic.Bool
}

// New creates an Orchestrator for key from configuration. Options applied
// after initialization can override any subsystem.
func New(cfg *Config, key session.Key, opts ...Option) (*Orchestrator, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	mode, err := protocol.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	client, err := relay.New(&cfg.Relay, relay.WithObserver(observer))
	if err != nil {
		return nil, fmt.Errorf("failed to create relay client: %w", err)
	}

	store, err := memory.NewStore(&cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive store: %w", err)
	}

	reg := account.NewRegistry(client)
	for _, a := range cfg.Accounts {
		if err := reg.Register(a); err != nil {
			closeStore(store)
			return nil, fmt.Errorf("failed to register account %q: %w", a.ID, err)
		}
	}

	pipelineOpts := []completion.Option{completion.WithObserver(observer)}
	if store != nil {
		pipelineOpts = append(pipelineOpts, completion.WithArchive(memory.NewArchive(store)))
	}

	o := &Orchestrator{
		streamer:  client,
		history:   client,
		completer: completion.New(client, pipelineOpts...),
		agents:    reg,
		observer:  observer,
		store:     store,
		mode:      mode,
		timeout:   cfg.StreamTimeout,
	}

	for _, opt := range opts {
		opt(o)
	}

	o.session = session.NewController(key, o.history, o.completer,
		session.WithObserver(o.observer),
		session.WithListener(o.listener),
	)
	return o, nil
}

// NewOrchestrator wires an Orchestrator around an existing controller without
// any config-driven subsystems.
func NewOrchestrator(ctrl *session.Controller, streamer Streamer, agents AgentResolver, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		session:  ctrl,
		streamer: streamer,
		agents:   agents,
		observer: observability.NoOpObserver{},
		mode:     protocol.ModeAgent,
		timeout:  defaultStreamTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Session returns the session controller.
func (o *Orchestrator) Session() *session.Controller {
	return o.session
}

// Mode returns the send mode.
func (o *Orchestrator) Mode() protocol.Mode {
	return o.mode
}

// Load loads the session's stored history.
func (o *Orchestrator) Load(ctx context.Context) error {
	return o.session.Load(ctx)
}

// Complete completes the session.
func (o *Orchestrator) Complete(ctx context.Context) (*session.CompletionResult, error) {
	return o.session.Complete(ctx)
}

// Sending reports whether a send is in flight.
func (o *Orchestrator) Sending() bool {
	return o.inFlight.Load()
}

// Close releases the archive store, if any.
func (o *Orchestrator) Close() error {
	if o.store == nil {
		return nil
	}
	return o.store.Close()
}

// Send delivers text to the agent and streams the reply into the transcript.
//
// Rejections (blank text, a send in flight, no agent for the account) leave
// the transcript untouched. Once accepted, the user message and an empty
// assistant placeholder are appended before the stream opens. If the stream
// cannot be opened both are removed again. If it breaks after opening, the
// user message stays and the placeholder is marked failed. The returned error
// is then a *SendError.
func (o *Orchestrator) Send(ctx context.Context, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSendInFlight
	}
	defer o.inFlight.Store(false)

	key := o.session.Key()
	agentID, err := o.agents.AgentFor(ctx, key.AccountID, o.mode)
	if err != nil {
		return nil, err
	}

	user := protocol.NewMessage(protocol.RoleUser, text)
	placeholder := protocol.NewPlaceholder()
	o.session.Append(user, placeholder)

	o.emit(ctx, EventSendStart, observability.LevelInfo, map[string]any{
		"session": key.String(),
		"mode":    string(o.mode),
		"length":  len(text),
	})

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	body, err := o.streamer.OpenStream(ctx, relay.SendRequest{
		UserID:    key.AccountID,
		SessionID: key.String(),
		AgentID:   agentID,
		Message:   text,
		Mode:      o.mode,
	})
	if err != nil {
		o.session.Remove(user.ID, placeholder.ID)
		return nil, o.fail(ctx, StagePreStream, err)
	}

	release := o.releaser(ctx, body)
	defer release()
	// a read blocked on a silent connection only returns once the body closes
	stop := context.AfterFunc(ctx, release)
	defer stop()

	o.emit(ctx, EventStreamOpen, observability.LevelVerbose, map[string]any{
		"session": key.String(),
	})

	terminated, err := o.consume(ctx, stream.NewReader(body), placeholder.ID)
	if err != nil {
		return nil, o.fail(ctx, StageMidStream, err)
	}

	if !terminated {
		o.emit(ctx, EventStreamTruncate, observability.LevelWarning, map[string]any{
			"session": key.String(),
		})
	}

	count := o.session.RecordSentMessage()
	reply, _ := o.session.Message(placeholder.ID)

	o.emit(ctx, EventSendComplete, observability.LevelInfo, map[string]any{
		"session":       key.String(),
		"message_count": count,
		"eligible":      protocol.Eligible(count),
	})

	return &SendResult{
		UserMessage:      user,
		AssistantMessage: reply,
		MessageCount:     count,
		Eligible:         protocol.Eligible(count),
		Terminated:       terminated,
	}, nil
}

// consume applies frames to targetID until the stream ends. It reports
// whether [DONE] arrived. Failures leave the placeholder marked failed.
func (o *Orchestrator) consume(ctx context.Context, r *stream.Reader, targetID string) (bool, error) {
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			if !r.Done() && ctx.Err() != nil {
				o.session.MarkFailed(targetID)
				return false, o.interrupted(ctx)
			}
			return r.Done(), nil
		}
		if err != nil {
			o.session.MarkFailed(targetID)
			if ctx.Err() != nil {
				return false, o.interrupted(ctx)
			}
			return false, fmt.Errorf("stream read: %w", err)
		}

		o.emit(ctx, EventStreamFrame, observability.LevelVerbose, map[string]any{
			"kind": f.Kind.String(),
		})

		switch f.Kind {
		case stream.KindDone:
		case stream.KindMetadata:
			o.session.ObserveServerCount(f.MessageCount)
		case stream.KindError:
			o.session.Apply(targetID, f)
			return false, fmt.Errorf("%w: %s", ErrStreamError, f.Text)
		default:
			o.session.Apply(targetID, f)
		}
	}
}

func (o *Orchestrator) interrupted(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("no response within %s: %w", o.timeout, ctx.Err())
	}
	return ctx.Err()
}

func (o *Orchestrator) fail(ctx context.Context, stage Stage, err error) error {
	o.emit(ctx, EventSendFailed, observability.LevelError, map[string]any{
		"session": o.session.Key().String(),
		"stage":   string(stage),
		"error":   err.Error(),
	})
	return &SendError{Stage: stage, Err: err}
}

// releaser returns a function closing body exactly once. Close errors are
// reported as events only.
func (o *Orchestrator) releaser(ctx context.Context, body io.Closer) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := body.Close(); err != nil {
				o.emit(context.WithoutCancel(ctx), EventReaderClose, observability.LevelWarning, map[string]any{
					"error": err.Error(),
				})
			}
		})
	}
}

func (o *Orchestrator) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	o.observer.OnEvent(ctx, observability.NewEvent(typ, level, "chat.Orchestrator", data))
}

func closeStore(s memory.Store) {
	if s != nil {
		s.Close()
	}
}
