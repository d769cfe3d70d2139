package eventdesk

import (
	"fmt"
	"time"

	"github.com/xraph/eventdesk/identity"
	"github.com/xraph/eventdesk/listing"
)

// Config holds the configuration for a Desk.
type Config struct {
	// BaseURL is the root of the events API, e.g. "https://api.example.com".
	BaseURL string

	// IPServiceURL is the public IP echo service.
	IPServiceURL string

	// RequestTimeout bounds every HTTP request.
	RequestTimeout time.Duration

	// SearchDebounce is the quiet period after the last search keystroke
	// before the list is fetched.
	SearchDebounce time.Duration

	// PerPage is the initial page size of the event list.
	PerPage int

	// RateLimit caps outgoing requests per route per second.
	// Set to 0 to disable throttling.
	RateLimit int
}

// DefaultConfig returns a Config with sensible defaults. BaseURL has no
// default and must be set.
func DefaultConfig() Config {
	return Config{
		IPServiceURL:   identity.DefaultServiceURL,
		RequestTimeout: 30 * time.Second,
		SearchDebounce: listing.DefaultDebounce,
		PerPage:        listing.DefaultPerPage,
		RateLimit:      0,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return ErrNoBaseURL
	case c.IPServiceURL == "":
		return fmt.Errorf("%w: ip service url is required", ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	case c.SearchDebounce < 0:
		return fmt.Errorf("%w: search debounce must not be negative", ErrInvalidConfig)
	case c.PerPage < 1:
		return fmt.Errorf("%w: per page must be at least 1", ErrInvalidConfig)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
