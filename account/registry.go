package account

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/interview/core/protocol"
)

// Registry holds account configurations. Accounts come from static config
// via Register or are fetched through Lookup on first Get and cached.
// Thread-safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	lookup   Lookup
	accounts map[string]Account
}

// NewRegistry creates an empty Registry. lookup may be nil, in which case
// only registered accounts resolve.
func NewRegistry(lookup Lookup) *Registry {
	return &Registry{
		lookup:   lookup,
		accounts: make(map[string]Account),
	}
}

// Get returns the account, fetching and caching it on first access.
func (r *Registry) Get(ctx context.Context, id string) (Account, error) {
	if id == "" {
		return Account{}, ErrEmptyAccountID
	}

	r.mu.RLock()
	a, ok := r.accounts[id]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	if r.lookup == nil {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}

	fetched, err := r.lookup.LookupAccount(ctx, id)
	if err != nil {
		return Account{}, fmt.Errorf("failed to look up account %q: %w", id, err)
	}
	if fetched == nil {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	if fetched.ID == "" {
		fetched.ID = id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.accounts[id]; ok {
		return existing, nil
	}
	r.accounts[id] = *fetched
	return *fetched, nil
}

// AgentFor returns the agent ID serving mode for the account. A missing agent
// is reported as ErrNoAgent: a configuration gap, not a transient failure.
func (r *Registry) AgentFor(ctx context.Context, id string, mode protocol.Mode) (string, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	agent := a.Agent(mode)
	if agent == "" {
		return "", fmt.Errorf("%w: %s (%s mode)", ErrNoAgent, id, mode)
	}
	return agent, nil
}

// List returns all cached accounts sorted by ID.
func (r *Registry) List() []Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		list = append(list, a)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	return list
}

// Register adds a static account configuration.
func (r *Registry) Register(a Account) error {
	if a.ID == "" {
		return ErrEmptyAccountID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[a.ID]; exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, a.ID)
	}

	r.accounts[a.ID] = a
	return nil
}

// Replace updates an existing account configuration.
func (r *Registry) Replace(a Account) error {
	if a.ID == "" {
		return ErrEmptyAccountID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[a.ID]; !exists {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, a.ID)
	}

	r.accounts[a.ID] = a
	return nil
}

// Invalidate drops a cached account so the next Get fetches it again.
func (r *Registry) Invalidate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[id]; !exists {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}

	delete(r.accounts, id)
	return nil
}
