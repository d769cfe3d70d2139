package eventdesk

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/xraph/eventdesk/event"
	"github.com/xraph/eventdesk/httpclient"
	"github.com/xraph/eventdesk/identity"
	"github.com/xraph/eventdesk/listing"
	"github.com/xraph/eventdesk/notify"
	"github.com/xraph/eventdesk/observability"
	"github.com/xraph/eventdesk/repository"
	"github.com/xraph/eventdesk/store"
)

// Desk is the event admin client: the identity, the API client, the event
// repository and the shared list controller, wired together.
type Desk struct {
	config     Config
	httpClient *http.Client
	notifier   notify.Notifier
	journal    store.Store
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	logger     *slog.Logger

	resolver   *identity.Resolver
	client     *httpclient.Client
	repo       repository.Events
	controller *listing.Controller
	validator  *event.Validator
}

// Option configures a Desk.
type Option func(*Desk) error

// New creates a new Desk with the given options.
func New(opts ...Option) (*Desk, error) {
	d := &Desk{
		config:   DefaultConfig(),
		notifier: notify.Discard,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if err := d.config.Validate(); err != nil {
		return nil, err
	}
	d.wireServices()
	return d, nil
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(d *Desk) error {
		d.config = cfg
		return nil
	}
}

// WithBaseURL sets the events API root.
func WithBaseURL(u string) Option {
	return func(d *Desk) error {
		d.config.BaseURL = u
		return nil
	}
}

// WithIPServiceURL sets the public IP echo service.
func WithIPServiceURL(u string) Option {
	return func(d *Desk) error {
		d.config.IPServiceURL = u
		return nil
	}
}

// WithRequestTimeout sets the per-request HTTP timeout.
func WithRequestTimeout(t time.Duration) Option {
	return func(d *Desk) error {
		d.config.RequestTimeout = t
		return nil
	}
}

// WithSearchDebounce sets the search quiet period.
func WithSearchDebounce(t time.Duration) Option {
	return func(d *Desk) error {
		d.config.SearchDebounce = t
		return nil
	}
}

// WithPerPage sets the initial page size.
func WithPerPage(n int) Option {
	return func(d *Desk) error {
		d.config.PerPage = n
		return nil
	}
}

// WithRateLimit caps requests per route per second.
func WithRateLimit(perSecond int) Option {
	return func(d *Desk) error {
		d.config.RateLimit = perSecond
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for API and IP lookups. Its
// Timeout takes precedence over RequestTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Desk) error {
		d.httpClient = hc
		return nil
	}
}

// WithNotifier sets where user-visible notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(d *Desk) error {
		d.notifier = n
		return nil
	}
}

// WithJournal records every mutation to s.
func WithJournal(s store.Store) Option {
	return func(d *Desk) error {
		d.journal = s
		return nil
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Desk) error {
		d.metrics = m
		return nil
	}
}

// WithTracer enables OpenTelemetry spans.
func WithTracer(t *observability.Tracer) Option {
	return func(d *Desk) error {
		d.tracer = t
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Desk) error {
		d.logger = logger
		return nil
	}
}
