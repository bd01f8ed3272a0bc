// Package memory provides a fully in-memory hook store. Safe for
// concurrent access. Intended for unit testing and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/hookq"
	"github.com/xraph/hookq/hook"
	"github.com/xraph/hookq/id"
	"github.com/xraph/hookq/store"
)

// Ensure Store implements the composite contract at compile time.
var _ store.Store = (*Store)(nil)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu    sync.RWMutex
	hooks map[string]*hook.Hook
}

// New returns a new empty Store.
func New() *Store {
	return &Store{hooks: make(map[string]*hook.Hook)}
}

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// Insert persists a new hook, assigning an ID if none is set.
func (m *Store) Insert(_ context.Context, h *hook.Hook) (id.HookID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h.ID.IsNil() {
		h.ID = id.NewHookID()
	}
	key := h.ID.String()
	if _, exists := m.hooks[key]; exists {
		return id.Nil, hookq.ErrHookAlreadyExists
	}

	cp := *h
	m.hooks[key] = &cp
	return h.ID, nil
}

// Get retrieves a hook by ID.
func (m *Store) Get(_ context.Context, hookID id.HookID) (*hook.Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.hooks[hookID.String()]
	if !ok {
		return nil, hookq.ErrHookNotFound
	}
	cp := *h
	return &cp, nil
}

// ClaimDue atomically claims up to opts.Limit due hooks: matching hooks
// are flipped to processing with attempts incremented under the store
// lock, so concurrent claimers never double-claim.
func (m *Store) ClaimDue(_ context.Context, opts hook.ClaimOpts) ([]*hook.Hook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	statusSet := make(map[hook.Status]struct{}, len(opts.Statuses))
	for _, st := range opts.Statuses {
		statusSet[st] = struct{}{}
	}

	now := time.Now().UTC()

	candidates := make([]*hook.Hook, 0, len(m.hooks))
	for _, h := range m.hooks {
		if _, ok := statusSet[h.Status]; !ok {
			continue
		}
		if h.RunAfter.After(now) {
			continue
		}
		if opts.MaxAttempts > 0 && h.Attempts >= opts.MaxAttempts {
			continue
		}
		candidates = append(candidates, h)
	}

	// Earliest-due first.
	sort.Slice(candidates, func(i, k int) bool {
		return candidates[i].RunAfter.Before(candidates[k].RunAfter)
	})

	if opts.Limit > 0 && len(candidates) > opts.Limit {
		candidates = candidates[:opts.Limit]
	}

	claimed := make([]*hook.Hook, len(candidates))
	for i, h := range candidates {
		h.Status = hook.StatusProcessing
		h.Attempts++
		h.UpdatedAt = now
		// Return a copy so callers can mutate without racing the store.
		cp := *h
		claimed[i] = &cp
	}
	return claimed, nil
}

// Update applies a partial-field update to an existing hook.
func (m *Store) Update(_ context.Context, hookID id.HookID, patch hook.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hooks[hookID.String()]
	if !ok {
		return hookq.ErrHookNotFound
	}

	if patch.Status != nil {
		h.Status = *patch.Status
	}
	if patch.Results != nil {
		h.Results = append([]hook.Result(nil), patch.Results...)
	}
	if patch.Attempts != nil {
		h.Attempts = *patch.Attempts
	}
	if patch.CompletedAt != nil {
		t := *patch.CompletedAt
		h.CompletedAt = &t
	}
	if patch.RunAfter != nil {
		h.RunAfter = *patch.RunAfter
	}
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// CountStatus returns the number of hooks in the given status.
func (m *Store) CountStatus(_ context.Context, status hook.Status) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, h := range m.hooks {
		if h.Status == status {
			n++
		}
	}
	return n, nil
}
