// Package listing holds the event list state: the query axes, the current
// page of results and the fetch state machine that keeps them consistent
// under rapid input and overlapping requests.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/eventdesk/event"
	"github.com/xraph/eventdesk/httpclient"
	"github.com/xraph/eventdesk/notify"
	"github.com/xraph/eventdesk/observability"
)

// DefaultDebounce is the quiet period after the last search change before a
// fetch is issued.
const DefaultDebounce = 150 * time.Millisecond

// FallbackErrorMessage is shown when a failed fetch carries no message.
const FallbackErrorMessage = "Failed to fetch events"

var (
	// ErrSuperseded is returned by FetchEvents when a newer fetch replaced
	// this one; its result was discarded.
	ErrSuperseded = errors.New("listing: fetch superseded")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("listing: controller closed")
)

// Source is the data the controller reads. repository.Events satisfies it.
type Source interface {
	List(ctx context.Context, query string) (*event.Page, error)
	Get(ctx context.Context, id int64) (*event.Event, error)
}

// Controller owns the event list state. It is safe for concurrent use and
// meant to be shared by every view of the same session.
type Controller struct {
	src      Source
	notifier notify.Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   *observability.Tracer
	debounce time.Duration

	lifeCtx    context.Context
	lifeCancel context.CancelFunc

	mu          sync.Mutex
	query       Query
	events      []event.Event
	total       int
	state       State
	active      *event.Event
	seq         uint64
	cancelFetch context.CancelFunc
	timer       *time.Timer
	timerGen    uint64
	closed      bool
	subs        map[int]func(Snapshot)
	nextSub     int
	version     uint64

	// pubMu orders delivery; published is the newest version delivered.
	pubMu     sync.Mutex
	published uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets where fetch failures are reported.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithDebounce sets the search quiet period.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithMetrics records fetch outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithTracer opens a span per fetch.
func WithTracer(t *observability.Tracer) Option {
	return func(c *Controller) { c.tracer = t }
}

// WithQuery sets the initial query.
func WithQuery(q Query) Option {
	return func(c *Controller) { c.query = q }
}

// New creates a controller reading from src.
func New(src Source, opts ...Option) *Controller {
	c := &Controller{
		src:      src,
		notifier: notify.Discard,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		query:    DefaultQuery(),
		events:   []event.Event{},
		subs:     make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lifeCtx, c.lifeCancel = context.WithCancel(context.Background())
	return c
}

// ──────────────────────────────────────────────────
// Fetching
// ──────────────────────────────────────────────────

// FetchEvents requests the page described by the current query.
//
// Any fetch still in flight is cancelled and its result discarded. On
// success the events and total are replaced. On failure the previous events
// stay, a notification is raised and the state becomes StateError. A
// cancelled fetch returns to StateIdle without a notification.
func (c *Controller) FetchEvents(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.seq++
	seq := c.seq
	fctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.lifeCtx, cancel)
	c.cancelFetch = cancel
	q := c.query
	c.state = StateLoading
	snap := c.changedLocked()
	c.mu.Unlock()

	defer stop()
	defer cancel()

	c.publish(snap)

	query := q.Encode()
	var span trace.Span
	if c.tracer != nil {
		fctx, span = c.tracer.StartFetchSpan(fctx, seq, query)
	}
	c.logger.DebugContext(fctx, "listing: fetching events", "seq", seq, "query", query)

	page, err := c.src.List(fctx, query)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.finish(span, "stale")
		c.logger.DebugContext(ctx, "listing: discarded superseded response", "seq", seq)
		return ErrSuperseded
	}
	c.cancelFetch = nil

	var outcome string
	switch {
	case err == nil:
		c.events = page.Events
		if c.events == nil {
			c.events = []event.Event{}
		}
		c.total = page.Total
		c.state = StateIdle
		outcome = "ok"
	case httpclient.IsCanceled(err):
		c.state = StateIdle
		outcome = "canceled"
	default:
		c.state = StateError
		outcome = "error"
	}
	snap = c.changedLocked()
	c.mu.Unlock()

	c.finish(span, outcome)
	c.publish(snap)

	if outcome == "error" {
		c.logger.WarnContext(ctx, "listing: fetch failed", "seq", seq, "error", err)
		msg := err.Error()
		if msg == "" {
			msg = FallbackErrorMessage
		}
		if nerr := c.notifier.Notify(context.WithoutCancel(ctx), notify.Error(msg)); nerr != nil {
			c.logger.WarnContext(ctx, "listing: notification failed", "error", nerr)
		}
	}
	return err
}

func (c *Controller) finish(span trace.Span, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordListFetch(outcome)
	}
	if span != nil {
		c.tracer.EndFetchSpan(span, outcome)
	}
}

// Cancel aborts the fetch in flight, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancelFetch
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close stops the search timer and cancels any fetch in flight. Further
// fetches return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.lifeCancel()
}

// ──────────────────────────────────────────────────
// Query axes
// ──────────────────────────────────────────────────

// SetSearch changes the search text. A change restarts the debounce timer;
// when it fires, the page resets to 1 and the events are fetched. Setting
// the current value again does nothing.
func (c *Controller) SetSearch(s string) {
	c.mu.Lock()
	if c.closed || s == c.query.Search {
		c.mu.Unlock()
		return
	}
	c.query.Search = s
	c.timerGen++
	gen := c.timerGen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() { c.fireSearch(gen) })
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Controller) fireSearch(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.query.Page = 1
	c.mu.Unlock()

	c.FetchEvents(c.lifeCtx) //nolint:errcheck // reported through state and notifier
}

// FlushSearch fires a pending search change now instead of waiting for the
// debounce. It reports whether a search was pending; if so the result of
// the fetch is returned as well.
func (c *Controller) FlushSearch(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.closed || c.timer == nil {
		c.mu.Unlock()
		return false, nil
	}
	c.timer.Stop()
	c.timer = nil
	c.timerGen++
	c.query.Page = 1
	c.mu.Unlock()

	return true, c.FetchEvents(ctx)
}

// SetQuery replaces every axis at once without fetching. A pending search
// change is dropped.
func (c *Controller) SetQuery(q Query) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 1
	}
	c.mu.Lock()
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.query = q
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(snap)
}

// SetType sets the type filter. An empty type clears it.
func (c *Controller) SetType(t event.Type) {
	c.update(func(q *Query) { q.Type = t })
}

// SetOrderBy sets the sort field.
func (c *Controller) SetOrderBy(field string) {
	c.update(func(q *Query) { q.OrderBy = field })
}

// SetOrderDirection sets the sort direction.
func (c *Controller) SetOrderDirection(d Direction) {
	c.update(func(q *Query) { q.OrderDirection = d })
}

// SetPage sets the 1-based page. Values below 1 become 1.
func (c *Controller) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.update(func(q *Query) { q.Page = page })
}

// SetPerPage sets the page size. Values below 1 become 1.
func (c *Controller) SetPerPage(n int) {
	if n < 1 {
		n = 1
	}
	c.update(func(q *Query) { q.PerPage = n })
}

// update applies fn to the query without fetching.
func (c *Controller) update(fn func(q *Query)) {
	c.mu.Lock()
	fn(&c.query)
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(snap)
}

// ──────────────────────────────────────────────────
// Active event
// ──────────────────────────────────────────────────

// OpenEvent fetches one event and makes it the active one.
func (c *Controller) OpenEvent(ctx context.Context, id int64) (*event.Event, error) {
	e, err := c.src.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.SetActiveEvent(e)
	return e, nil
}

// SetActiveEvent selects e for the detail view. nil clears the selection.
func (c *Controller) SetActiveEvent(e *event.Event) {
	c.mu.Lock()
	if e != nil {
		cp := *e
		e = &cp
	}
	c.active = e
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(snap)
}

// ActiveEvent returns a copy of the active event, or nil.
func (c *Controller) ActiveEvent() *event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	cp := *c.active
	return &cp
}

// ──────────────────────────────────────────────────
// Read surface
// ──────────────────────────────────────────────────

// Events returns a copy of the current events.
func (c *Controller) Events() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyEvents(c.events)
}

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool {
	return c.State() == StateLoading
}

// State returns the fetch state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Query returns the current query.
func (c *Controller) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Search returns the search text.
func (c *Controller) Search() string { return c.Query().Search }

// TypeFilter returns the type filter, empty when unset.
func (c *Controller) TypeFilter() event.Type { return c.Query().Type }

// OrderBy returns the sort field.
func (c *Controller) OrderBy() string { return c.Query().OrderBy }

// OrderDirection returns the sort direction.
func (c *Controller) OrderDirection() Direction { return c.Query().OrderDirection }

// Pagination returns the page numbers derived from the last total and the
// current page size.
func (c *Controller) Pagination() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paginationLocked()
}

// EventTypes returns the selectable event types.
func (c *Controller) EventTypes() []event.Type {
	return event.Types()
}

// Snapshot returns a consistent copy of the whole state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change and must not block or call
// back into the controller. Snapshots arrive in version order; one that is
// older than a snapshot already delivered is dropped.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	key := c.nextSub
	c.nextSub++
	c.subs[key] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, key)
		c.mu.Unlock()
	}
}

func (c *Controller) publish(snap Snapshot) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if snap.Version <= c.published {
		return // superseded by a newer snapshot
	}
	c.published = snap.Version

	c.mu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (c *Controller) paginationLocked() Pagination {
	return Pagination{
		Page:         c.query.Page,
		PerPage:      c.query.PerPage,
		TotalResults: c.total,
		TotalPages:   TotalPages(c.total, c.query.PerPage),
	}
}

// changedLocked stamps a new version and returns the snapshot to publish.
func (c *Controller) changedLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	var active *event.Event
	if c.active != nil {
		cp := *c.active
		active = &cp
	}
	return Snapshot{
		State:       c.state,
		Events:      copyEvents(c.events),
		Query:       c.query,
		Pagination:  c.paginationLocked(),
		ActiveEvent: active,
		Version:     c.version,
	}
}

func copyEvents(in []event.Event) []event.Event {
	out := make([]event.Event, len(in))
	copy(out, in)
	return out
}
