package eventdesk

import "errors"

// Sentinel errors returned by eventdesk operations.
var (
	// ErrNoBaseURL is returned when a Desk is created without an API base URL.
	ErrNoBaseURL = errors.New("eventdesk: api base url is required")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("eventdesk: invalid configuration")

	// ErrStoreClosed is returned when a journal store operation is attempted
	// after the store is closed.
	ErrStoreClosed = errors.New("eventdesk: store is closed")

	// ErrEntryNotFound is returned when a journal entry cannot be found.
	ErrEntryNotFound = errors.New("eventdesk: journal entry not found")

	// ErrMigrationFailed is returned when a journal schema migration fails.
	ErrMigrationFailed = errors.New("eventdesk: migration failed")
)
