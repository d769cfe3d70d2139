// Package httpclient is the single gateway to the events API. It stamps the
// caller identity on every request and normalizes failed responses into
// *APIError values.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/observability"
	"github.com/xraph/eventdesk/ratelimit"
)

// Header names set on every API request.
const (
	HeaderClientIP    = "Client-IP"
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"
)

// IdentitySource supplies the caller's public IP. A lookup failure must not
// block the request; the client sends an empty Client-IP instead.
type IdentitySource interface {
	EnsureIP(ctx context.Context) (string, error)
}

// Client sends JSON requests to the events API.
type Client struct {
	baseURL  string
	http     *http.Client
	identity IdentitySource
	limiter  *ratelimit.Limiter
	metrics  *observability.Metrics
	tracer   *observability.Tracer
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithIdentity sets the source of the Client-IP header.
func WithIdentity(src IdentitySource) Option {
	return func(c *Client) { c.identity = src }
}

// WithLimiter throttles requests per route.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithMetrics records request counts and latency.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer opens a span per request.
func WithTracer(t *observability.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	method  string
	body    []byte
	bodyErr error
	headers []header
}

type header struct{ key, value string }

// RequestOption configures a single request.
type RequestOption func(*request)

// WithMethod sets the HTTP method. The default is GET.
func WithMethod(method string) RequestOption {
	return func(r *request) { r.method = method }
}

// WithBody JSON-encodes v as the request body.
func WithBody(v any) RequestOption {
	return func(r *request) {
		r.body, r.bodyErr = json.Marshal(v)
	}
}

// WithRawBody sends b as the request body unchanged.
func WithRawBody(b []byte) RequestOption {
	return func(r *request) { r.body = b }
}

// WithHeader adds a header. Caller headers are applied after the defaults
// and replace them.
func WithHeader(key, value string) RequestOption {
	return func(r *request) {
		r.headers = append(r.headers, header{key: key, value: value})
	}
}

// Do sends a request to path and returns the raw response body.
//
// DELETE requests that succeed return a nil body regardless of what the
// server sent. A non-2xx response is returned as *APIError. Transport
// failures, including context cancellation, are returned unchanged.
func (c *Client) Do(ctx context.Context, path string, opts ...RequestOption) (json.RawMessage, error) {
	r := &request{method: http.MethodGet}
	for _, opt := range opts {
		opt(r)
	}
	if r.bodyErr != nil {
		return nil, fmt.Errorf("httpclient: encode body: %w", r.bodyErr)
	}

	if err := c.limiter.Wait(ctx, ratelimit.Route(r.method, path)); err != nil {
		return nil, err
	}

	ip := c.clientIP(ctx)
	reqID := id.NewRequestID().String()

	var span trace.Span
	if c.tracer != nil {
		ctx, span = c.tracer.StartRequestSpan(ctx, r.method, path, reqID)
	}
	finish := func(status int, latency time.Duration, err error) {
		if span == nil {
			return
		}
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		c.tracer.EndRequestSpan(span, status, latency.Milliseconds(), msg)
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+path, body)
	if err != nil {
		finish(0, 0, err)
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	req.Header.Set(HeaderContentType, "application/json")
	req.Header.Set(HeaderClientIP, ip)
	req.Header.Set(HeaderRequestID, reqID)
	for _, h := range r.headers {
		req.Header.Set(h.key, h.value)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start)

	if err != nil {
		c.record(r.method, 0, latency)
		finish(0, latency, err)
		c.logger.DebugContext(ctx, "httpclient: request failed",
			"method", r.method,
			"path", path,
			"request_id", reqID,
			"error", err,
		)
		return nil, err
	}
	defer resp.Body.Close()

	c.record(r.method, resp.StatusCode, latency)

	raw, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, raw)
		finish(resp.StatusCode, latency, apiErr)
		c.logger.DebugContext(ctx, "httpclient: api error",
			"method", r.method,
			"path", path,
			"request_id", reqID,
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
		return nil, apiErr
	}

	if readErr != nil {
		finish(resp.StatusCode, latency, readErr)
		return nil, readErr
	}

	finish(resp.StatusCode, latency, nil)

	if r.method == http.MethodDelete {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// JSON sends a request and decodes the response body into out.
func (c *Client) JSON(ctx context.Context, path string, out any, opts ...RequestOption) error {
	raw, err := c.Do(ctx, path, opts...)
	if err != nil {
		return err
	}
	if out == nil || raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}

func (c *Client) clientIP(ctx context.Context) string {
	if c.identity == nil {
		return ""
	}
	ip, err := c.identity.EnsureIP(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "httpclient: client ip unavailable, sending empty header", "error", err)
		return ""
	}
	return ip
}

func (c *Client) record(method string, status int, latency time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordRequest(method, status, latency.Seconds())
	}
}

func newAPIError(status int, raw []byte) *APIError {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		return &APIError{StatusCode: status, Message: DefaultErrorMessage, Malformed: true}
	}
	return &APIError{StatusCode: status, Message: body.Message}
}
