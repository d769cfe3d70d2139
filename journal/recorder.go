package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/eventdesk/event"
	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/observability"
	"github.com/xraph/eventdesk/repository"
)

// IdentitySource reports the caller IP at the time of a mutation.
// *identity.Resolver satisfies it.
type IdentitySource interface {
	IP() (string, bool)
}

// Recorder wraps an event repository and journals every create, update and
// delete, successful or not. Reads pass straight through. A journal write
// failure is logged and never fails the mutation.
type Recorder struct {
	next     repository.Events
	store    Store
	identity IdentitySource
	logger   *slog.Logger
	metrics  *observability.Metrics
}

var _ repository.Events = (*Recorder)(nil)

// Option configures a Recorder.
type Option func(*Recorder)

// WithIdentity stamps entries with the caller IP.
func WithIdentity(src IdentitySource) Option {
	return func(r *Recorder) { r.identity = src }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithMetrics counts journaled mutations.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// NewRecorder wraps next, writing entries to s.
func NewRecorder(next repository.Events, s Store, opts ...Option) *Recorder {
	r := &Recorder{
		next:   next,
		store:  s,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create implements repository.Events.
func (r *Recorder) Create(ctx context.Context, in event.Input) (*event.Event, error) {
	e, err := r.next.Create(ctx, in)
	var eventID int64
	if e != nil {
		eventID = e.ID
	}
	r.record(ctx, ActionCreate, eventID, in.Title, err)
	return e, err
}

// Get implements repository.Events.
func (r *Recorder) Get(ctx context.Context, eventID int64) (*event.Event, error) {
	return r.next.Get(ctx, eventID)
}

// Update implements repository.Events.
func (r *Recorder) Update(ctx context.Context, e *event.Event) (*event.Event, error) {
	out, err := r.next.Update(ctx, e)
	r.record(ctx, ActionUpdate, e.ID, e.Title, err)
	return out, err
}

// Delete implements repository.Events.
func (r *Recorder) Delete(ctx context.Context, eventID int64) error {
	err := r.next.Delete(ctx, eventID)
	r.record(ctx, ActionDelete, eventID, "", err)
	return err
}

// List implements repository.Events.
func (r *Recorder) List(ctx context.Context, query string) (*event.Page, error) {
	return r.next.List(ctx, query)
}

func (r *Recorder) record(ctx context.Context, action Action, eventID int64, title string, opErr error) {
	entry := &Entry{
		ID:        id.NewJournalID(),
		Action:    action,
		EventID:   eventID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	if r.identity != nil {
		entry.IP, _ = r.identity.IP()
	}
	result := "ok"
	if opErr != nil {
		entry.Error = opErr.Error()
		result = "error"
	}

	if r.metrics != nil {
		r.metrics.JournalEntriesTotal.WithLabelValues(string(action), result).Inc()
	}

	if err := r.store.Append(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.WarnContext(ctx, "journal: append failed",
			"action", action,
			"event_id", eventID,
			"error", err,
		)
		return
	}
	r.logger.DebugContext(ctx, "journal: recorded",
		"entry_id", entry.ID.String(),
		"action", action,
		"event_id", eventID,
		"result", result,
	)
}
