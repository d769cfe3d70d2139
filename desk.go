package eventdesk

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/xraph/eventdesk/event"
	"github.com/xraph/eventdesk/httpclient"
	"github.com/xraph/eventdesk/identity"
	"github.com/xraph/eventdesk/journal"
	"github.com/xraph/eventdesk/listing"
	"github.com/xraph/eventdesk/notify"
	"github.com/xraph/eventdesk/ratelimit"
	"github.com/xraph/eventdesk/repository"
)

// ErrNoJournal is returned by History when no journal store is configured.
var ErrNoJournal = errors.New("eventdesk: no journal configured")

// wireServices initializes the components after options have been applied.
func (d *Desk) wireServices() {
	hc := d.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: d.config.RequestTimeout}
	}

	d.resolver = identity.New(
		identity.WithServiceURL(d.config.IPServiceURL),
		identity.WithHTTPClient(hc),
		identity.WithLogger(d.logger),
	)

	clientOpts := []httpclient.Option{
		httpclient.WithHTTPClient(hc),
		httpclient.WithIdentity(d.resolver),
		httpclient.WithLogger(d.logger),
	}
	if d.config.RateLimit > 0 {
		clientOpts = append(clientOpts, httpclient.WithLimiter(ratelimit.New(d.config.RateLimit)))
	}
	if d.metrics != nil {
		clientOpts = append(clientOpts, httpclient.WithMetrics(d.metrics))
	}
	if d.tracer != nil {
		clientOpts = append(clientOpts, httpclient.WithTracer(d.tracer))
	}
	d.client = httpclient.New(d.config.BaseURL, clientOpts...)
	d.resolver.SetAPI(d.client)

	d.repo = repository.New(d.client)
	if d.journal != nil {
		d.repo = journal.NewRecorder(d.repo, d.journal,
			journal.WithIdentity(d.resolver),
			journal.WithLogger(d.logger),
			journal.WithMetrics(d.metrics),
		)
	}

	q := listing.DefaultQuery()
	q.PerPage = d.config.PerPage
	ctrlOpts := []listing.Option{
		listing.WithQuery(q),
		listing.WithDebounce(d.config.SearchDebounce),
		listing.WithNotifier(notify.Counted(d.notifier, d.metrics)),
		listing.WithLogger(d.logger),
	}
	if d.metrics != nil {
		ctrlOpts = append(ctrlOpts, listing.WithMetrics(d.metrics))
	}
	if d.tracer != nil {
		ctrlOpts = append(ctrlOpts, listing.WithTracer(d.tracer))
	}
	d.controller = listing.New(d.repo, ctrlOpts...)

	d.validator = event.NewValidator()
}

// Start resolves the caller identity and checks ad authorization. Both are
// best effort: failures are logged and retried lazily by later requests.
func (d *Desk) Start(ctx context.Context) {
	if err := d.resolver.ResolveIP(ctx); err != nil {
		d.logger.WarnContext(ctx, "eventdesk: ip lookup failed at startup", "error", err)
	}
	d.resolver.Authorize(ctx)

	d.logger.DebugContext(ctx, "eventdesk started",
		"base_url", d.config.BaseURL,
		"identity", d.resolver.Snapshot(),
	)
}

// Close stops the list controller and closes the journal store.
func (d *Desk) Close() error {
	d.controller.Close()
	if d.journal != nil {
		if err := d.journal.Close(); err != nil {
			return fmt.Errorf("eventdesk: close journal: %w", err)
		}
	}
	return nil
}

// CreateEvent validates in and creates the event.
func (d *Desk) CreateEvent(ctx context.Context, in event.Input) (*event.Event, error) {
	if err := d.validator.Validate(in); err != nil {
		return nil, err
	}
	return d.repo.Create(ctx, in)
}

// UpdateEvent validates the editable fields of e and sends the full record.
func (d *Desk) UpdateEvent(ctx context.Context, e *event.Event) (*event.Event, error) {
	if err := d.validator.Validate(e.Input()); err != nil {
		return nil, err
	}
	return d.repo.Update(ctx, e)
}

// History returns journal entries newest first.
func (d *Desk) History(ctx context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	if d.journal == nil {
		return nil, ErrNoJournal
	}
	return d.journal.List(ctx, opts)
}

// Config returns the effective configuration.
func (d *Desk) Config() Config {
	return d.config
}

// Identity returns the caller identity resolver.
func (d *Desk) Identity() *identity.Resolver {
	return d.resolver
}

// Client returns the API client.
func (d *Desk) Client() *httpclient.Client {
	return d.client
}

// Events returns the event repository, journaled when a journal is set.
func (d *Desk) Events() repository.Events {
	return d.repo
}

// List returns the shared event list controller.
func (d *Desk) List() *listing.Controller {
	return d.controller
}
