package journal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/eventdesk/event"
	"github.com/xraph/eventdesk/journal"
	"github.com/xraph/eventdesk/observability"
	"github.com/xraph/eventdesk/store/memory"
)

type fakeEvents struct {
	err   error
	calls int
}

func (f *fakeEvents) Create(_ context.Context, in event.Input) (*event.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	e := &event.Event{ID: 7}
	e.Apply(in)
	return e, nil
}

func (f *fakeEvents) Get(_ context.Context, eventID int64) (*event.Event, error) {
	f.calls++
	return &event.Event{ID: eventID}, f.err
}

func (f *fakeEvents) Update(_ context.Context, e *event.Event) (*event.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return e, nil
}

func (f *fakeEvents) Delete(context.Context, int64) error {
	f.calls++
	return f.err
}

func (f *fakeEvents) List(context.Context, string) (*event.Page, error) {
	f.calls++
	return &event.Page{}, f.err
}

type staticIP string

func (s staticIP) IP() (string, bool) { return string(s), s != "" }

type failingStore struct{ journal.Store }

func (failingStore) Append(context.Context, *journal.Entry) error {
	return errors.New("disk full")
}

func TestRecorder_JournalsMutations(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	next := &fakeEvents{}
	r := journal.NewRecorder(next, s, journal.WithIdentity(staticIP("198.51.100.4")))

	created, err := r.Create(ctx, event.Input{Title: "Gala"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	created.Title = "Gala II"
	if _, err := r.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := r.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	entries, err := s.List(ctx, journal.ListOpts{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []struct {
		action journal.Action
		title  string
	}{
		{journal.ActionDelete, ""},
		{journal.ActionUpdate, "Gala II"},
		{journal.ActionCreate, "Gala"},
	}
	for i, w := range want {
		e := entries[i]
		if e.Action != w.action || e.Title != w.title || e.EventID != 7 {
			t.Fatalf("entry %d = %+v, want %s %q", i, e, w.action, w.title)
		}
		if e.IP != "198.51.100.4" || !e.Succeeded() {
			t.Fatalf("entry %d = %+v", i, e)
		}
	}
}

func TestRecorder_JournalsFailures(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	r := journal.NewRecorder(&fakeEvents{err: errors.New("Event not found")}, s)

	if err := r.Delete(ctx, 3); err == nil {
		t.Fatal("expected error")
	}
	if _, err := r.Create(ctx, event.Input{Title: "X"}); err == nil {
		t.Fatal("expected error")
	}

	entries, _ := s.List(ctx, journal.ListOpts{})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].EventID != 0 || entries[0].Error != "Event not found" {
		t.Fatalf("failed create entry = %+v", entries[0])
	}
	if entries[1].Succeeded() || entries[1].EventID != 3 {
		t.Fatalf("failed delete entry = %+v", entries[1])
	}
}

func TestRecorder_ReadsAreNotJournaled(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	next := &fakeEvents{}
	r := journal.NewRecorder(next, s)

	r.Get(ctx, 1)      //nolint:errcheck // read
	r.List(ctx, "a=b") //nolint:errcheck // read

	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("reads journaled %d entries", n)
	}
	if next.calls != 2 {
		t.Fatalf("calls = %d", next.calls)
	}
}

func TestRecorder_AppendFailureDoesNotFailMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	r := journal.NewRecorder(&fakeEvents{}, failingStore{}, journal.WithMetrics(m))

	if _, err := r.Create(context.Background(), event.Input{Title: "X"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var got float64
	for _, f := range families {
		if f.GetName() != "eventdesk_journal_entries_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			got += metric.GetCounter().GetValue()
		}
	}
	if got != 1 {
		t.Fatalf("journal counter = %v", got)
	}
}
