// Package completion finishes an eligible session on the backend: it marks
// the interview complete, then runs document processing and knowledge-base
// training, and archives a rendered transcript locally.
//
// Only the first step decides success. The downstream steps are best effort
// and report failures as warning events.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/interview/memory"
	"github.com/tailored-agentic-units/interview/observability"
	"github.com/tailored-agentic-units/interview/session"
)

// Backend is the relay surface the pipeline drives.
type Backend interface {
	CompleteInterview(ctx context.Context, sessionKey string) (json.RawMessage, error)
	ProcessInterview(ctx context.Context, accountID, contact string) error
	TrainKnowledgeBase(ctx context.Context, accountID, contact string) (json.RawMessage, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithArchive stores a rendered transcript after a successful completion.
func WithArchive(a *memory.Archive) Option {
	return func(p *Pipeline) { p.archive = a }
}

// WithObserver sets the event observer.
func WithObserver(o observability.Observer) Option {
	return func(p *Pipeline) { p.observer = observability.OrNoOp(o) }
}

// WithClock overrides the time source used for document headers.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline implements session.Completer.
type Pipeline struct {
	backend  Backend
	archive  *memory.Archive
	observer observability.Observer
	now      func() time.Time
}

var _ session.Completer = (*Pipeline)(nil)

// New creates a Pipeline over backend.
func New(backend Backend, opts ...Option) *Pipeline {
	p := &Pipeline{
		backend:  backend,
		observer: observability.NoOpObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Complete runs the pipeline for one session.
func (p *Pipeline) Complete(ctx context.Context, req session.CompletionRequest) (*session.CompletionResult, error) {
	raw, err := p.backend.CompleteInterview(ctx, req.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to complete interview: %w", err)
	}

	if err := p.backend.ProcessInterview(ctx, req.AccountID, req.ContactIdentity); err != nil {
		p.warn(ctx, StepProcess, req, err)
	} else {
		p.step(ctx, StepProcess, req)
	}

	if _, err := p.backend.TrainKnowledgeBase(ctx, req.AccountID, req.ContactIdentity); err != nil {
		p.warn(ctx, StepTraining, req, err)
	} else {
		p.step(ctx, StepTraining, req)
	}

	if p.archive != nil {
		doc := RenderDocument(req, p.now())
		if err := p.archive.Put(ctx, req.AccountID, req.ContactIdentity, doc); err != nil {
			p.warn(ctx, StepArchive, req, err)
		} else {
			p.step(ctx, StepArchive, req)
		}
	}

	return &session.CompletionResult{Success: true, Data: raw}, nil
}

func (p *Pipeline) step(ctx context.Context, step string, req session.CompletionRequest) {
	p.observer.OnEvent(ctx, observability.NewEvent(EventStep, observability.LevelInfo, "completion.Pipeline", map[string]any{
		"step":    step,
		"session": req.SessionKey,
	}))
}

func (p *Pipeline) warn(ctx context.Context, step string, req session.CompletionRequest, err error) {
	p.observer.OnEvent(ctx, observability.NewEvent(EventStepFailed, observability.LevelWarning, "completion.Pipeline", map[string]any{
		"step":    step,
		"session": req.SessionKey,
		"error":   err.Error(),
	}))
}
