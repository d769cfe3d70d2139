// Package store defines the composite Store interface for eventdesk
// persistence. Backends live in the memory, sqlite, redis and mongo
// subpackages.
package store

import (
	"context"

	"github.com/xraph/eventdesk/journal"
)

// Store is the aggregate persistence interface.
type Store interface {
	journal.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
