// Package identity resolves the caller's public IP and ad-authorization
// status. Both are process-wide: every consumer of a Resolver sees the same
// values.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/xraph/eventdesk/httpclient"
)

// DefaultServiceURL is the public IP echo service.
const DefaultServiceURL = "https://api.ipify.org?format=json"

// AuthorizePath is the API route that checks ad authorization for an IP.
const AuthorizePath = "/users/authorize"

var (
	// ErrNoIP is returned when the echo service answers without an address.
	ErrNoIP = errors.New("identity: ip service returned no ip")

	// ErrNoAPI is the reason Authorize records false when no API requester
	// is set.
	ErrNoAPI = errors.New("identity: no api requester configured")
)

// Requester sends a request to the events API. *httpclient.Client
// satisfies it.
type Requester interface {
	Do(ctx context.Context, path string, opts ...httpclient.RequestOption) (json.RawMessage, error)
}

// Identity is a point-in-time view of the resolver state.
type Identity struct {
	IP            string `json:"ip,omitempty"`
	Resolved      bool   `json:"resolved"`
	AdsAuthorized bool   `json:"adsAuthorized"`
}

// Resolver owns the caller identity.
type Resolver struct {
	serviceURL string
	http       *http.Client
	api        Requester
	logger     *slog.Logger

	group singleflight.Group

	mu            sync.RWMutex
	ip            string
	resolved      bool
	adsAuthorized bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithServiceURL overrides the IP echo service URL.
func WithServiceURL(u string) Option {
	return func(r *Resolver) { r.serviceURL = u }
}

// WithHTTPClient sets the client used for the IP lookup.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) { r.http = hc }
}

// WithAPI sets the requester used for the authorization check.
func WithAPI(api Requester) Option {
	return func(r *Resolver) { r.api = api }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates an unresolved Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		serviceURL: DefaultServiceURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetAPI sets the requester used by Authorize. The API client itself
// depends on the resolver for its Client-IP header, so the two are usually
// linked after construction.
func (r *Resolver) SetAPI(api Requester) {
	r.mu.Lock()
	r.api = api
	r.mu.Unlock()
}

// ResolveIP looks up the public IP and stores it. On failure the previous
// value is kept. Concurrent callers share one lookup; a caller whose ctx
// ends stops waiting, and a lookup that completes afterwards is still stored.
func (r *Resolver) ResolveIP(ctx context.Context) error {
	lookupCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan("ip", func() (any, error) {
		ip, err := r.lookup(lookupCtx)
		if err != nil {
			r.logger.WarnContext(lookupCtx, "identity: ip lookup failed", "error", err)
			return "", err
		}
		r.mu.Lock()
		r.ip = ip
		r.resolved = true
		r.mu.Unlock()
		r.logger.DebugContext(lookupCtx, "identity: ip resolved", "ip", ip)
		return ip, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// EnsureIP returns the cached IP, resolving it first if needed. A failed
// lookup is retried on the next call.
func (r *Resolver) EnsureIP(ctx context.Context) (string, error) {
	if ip, ok := r.IP(); ok {
		return ip, nil
	}
	if err := r.ResolveIP(ctx); err != nil {
		return "", err
	}
	ip, _ := r.IP()
	return ip, nil
}

// Authorize asks the API whether the caller may see ads and records the
// answer. Any failure records false. The outcome is read with
// AdsAuthorized.
func (r *Resolver) Authorize(ctx context.Context) {
	err := r.authorize(ctx)

	r.mu.Lock()
	r.adsAuthorized = err == nil
	r.mu.Unlock()

	if err != nil {
		r.logger.DebugContext(ctx, "identity: ads authorization denied", "error", err)
	}
}

func (r *Resolver) authorize(ctx context.Context) error {
	ip, err := r.EnsureIP(ctx)
	if err != nil {
		return err
	}

	r.mu.RLock()
	api := r.api
	r.mu.RUnlock()
	if api == nil {
		return ErrNoAPI
	}

	_, err = api.Do(ctx, AuthorizePath+"?ip="+url.QueryEscape(ip))
	return err
}

// IP returns the resolved address and whether one is known.
func (r *Resolver) IP() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ip, r.resolved
}

// AdsAuthorized reports the outcome of the last Authorize call.
func (r *Resolver) AdsAuthorized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adsAuthorized
}

// Snapshot returns the current identity.
func (r *Resolver) Snapshot() Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Identity{
		IP:            r.ip,
		Resolved:      r.resolved,
		AdsAuthorized: r.adsAuthorized,
	}
}

func (r *Resolver) lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.serviceURL, nil)
	if err != nil {
		return "", fmt.Errorf("identity: create request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("identity: ip service returned status %d", resp.StatusCode)
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return "", fmt.Errorf("identity: decode ip response: %w", err)
	}
	if body.IP == "" {
		return "", ErrNoIP
	}
	return body.IP, nil
}
