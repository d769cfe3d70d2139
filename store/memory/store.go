// Package memory provides an in-memory Store implementation for tests and
// for sessions that do not persist their journal.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/eventdesk"
	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/journal"
	edstore "github.com/xraph/eventdesk/store"
)

// compile-time interface check.
var _ edstore.Store = (*Store)(nil)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	entries []*journal.Entry          // append order
	byID    map[string]*journal.Entry // keyed by ID string

	closed bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		byID: make(map[string]*journal.Entry),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate is a no-op for the in-memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the store is still open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return eventdesk.ErrStoreClosed
	}
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// journal.Store
// ──────────────────────────────────────────────────

// Append stores a copy of e.
func (s *Store) Append(_ context.Context, e *journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return eventdesk.ErrStoreClosed
	}

	cp := *e
	s.entries = append(s.entries, &cp)
	s.byID[cp.ID.String()] = &cp
	return nil
}

// List returns entries newest first.
func (s *Store) List(_ context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, eventdesk.ErrStoreClosed
	}

	var result []*journal.Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if opts.Action != "" && e.Action != opts.Action {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}
	return applyPagination(result, opts.Offset, opts.Limit), nil
}

// Get returns one entry.
func (s *Store) Get(_ context.Context, entryID id.ID) (*journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, eventdesk.ErrStoreClosed
	}

	e, ok := s.byID[entryID.String()]
	if !ok {
		return nil, eventdesk.ErrEntryNotFound
	}
	cp := *e
	return &cp, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, eventdesk.ErrStoreClosed
	}
	return int64(len(s.entries)), nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func applyPagination[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
