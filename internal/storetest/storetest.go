// Package storetest is a conformance suite shared by the journal store
// backends.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/eventdesk"
	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/journal"
	"github.com/xraph/eventdesk/store"
)

// Factory returns a fresh, migrated, empty store.
type Factory func(t *testing.T) store.Store

// Run exercises every store.Store operation against stores from newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("Lifecycle", func(t *testing.T) { testLifecycle(t, newStore(t)) })
	t.Run("AppendGet", func(t *testing.T) { testAppendGet(t, newStore(t)) })
	t.Run("ListNewestFirst", func(t *testing.T) { testListNewestFirst(t, newStore(t)) })
	t.Run("ListFilterAndPage", func(t *testing.T) { testListFilterAndPage(t, newStore(t)) })
	t.Run("GetNotFound", func(t *testing.T) { testGetNotFound(t, newStore(t)) })
}

// Entry builds an entry created offset seconds after a fixed base time.
func Entry(action journal.Action, eventID int64, offset int) *journal.Entry {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &journal.Entry{
		ID:        id.NewJournalID(),
		Action:    action,
		EventID:   eventID,
		Title:     "event",
		IP:        "203.0.113.7",
		CreatedAt: base.Add(time.Duration(offset) * time.Second),
	}
}

func testLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if n, err := s.Count(ctx); err != nil || n != 0 {
		t.Fatalf("Count on empty store = %d, %v", n, err)
	}
}

func testAppendGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	e := Entry(journal.ActionUpdate, 42, 0)
	e.Error = "DB down"

	if err := s.Append(ctx, e); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID.String() != e.ID.String() {
		t.Fatalf("ID = %s, want %s", got.ID, e.ID)
	}
	if got.Action != journal.ActionUpdate || got.EventID != 42 || got.Title != "event" || got.IP != "203.0.113.7" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.Error != "DB down" || got.Succeeded() {
		t.Fatalf("error not preserved: %+v", got)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, e.CreatedAt)
	}

	if n, err := s.Count(ctx); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func testListNewestFirst(t *testing.T, s store.Store) {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.Append(ctx, Entry(journal.ActionCreate, int64(i+1), i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := s.List(ctx, journal.ListOpts{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []int64{3, 2, 1} {
		if entries[i].EventID != want {
			t.Fatalf("entries[%d].EventID = %d, want %d", i, entries[i].EventID, want)
		}
	}
}

func testListFilterAndPage(t *testing.T, s store.Store) {
	ctx := context.Background()
	actions := []journal.Action{
		journal.ActionCreate, journal.ActionDelete, journal.ActionCreate,
		journal.ActionUpdate, journal.ActionCreate, journal.ActionCreate,
	}
	for i, a := range actions {
		if err := s.Append(ctx, Entry(a, int64(i+1), i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	creates, err := s.List(ctx, journal.ListOpts{Action: journal.ActionCreate})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(creates) != 4 {
		t.Fatalf("expected 4 creates, got %d", len(creates))
	}

	page, err := s.List(ctx, journal.ListOpts{Action: journal.ActionCreate, Offset: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].EventID != 5 || page[1].EventID != 3 {
		t.Fatalf("unexpected page: %+v", eventIDs(page))
	}

	past, err := s.List(ctx, journal.ListOpts{Offset: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(past) != 0 {
		t.Fatalf("expected no entries past the end, got %d", len(past))
	}
}

func testGetNotFound(t *testing.T, s store.Store) {
	_, err := s.Get(context.Background(), id.NewJournalID())
	if !errors.Is(err, eventdesk.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func eventIDs(entries []*journal.Entry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.EventID
	}
	return out
}
