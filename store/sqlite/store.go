// Package sqlite provides a journal Store backed by a local SQLite file
// through the grove ORM and its pure-Go sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	_ "github.com/xraph/grove/drivers/sqlitedriver/sqlitemigrate" // registers the "sqlite" migrate executor
	"github.com/xraph/grove/migrate"

	"github.com/xraph/eventdesk"
	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/journal"
	edstore "github.com/xraph/eventdesk/store"
)

// compile-time interface check
var _ edstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Open opens (creating if needed) the database file at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("eventdesk/sqlite: path is required")
	}
	drv := sqlitedriver.New()
	if err := drv.Open(ctx, path); err != nil {
		return nil, fmt.Errorf("eventdesk/sqlite: open: %w", err)
	}
	db, err := grove.Open(drv)
	if err != nil {
		return nil, fmt.Errorf("eventdesk/sqlite: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("%w: create executor: %v", eventdesk.ErrMigrationFailed, err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %v", eventdesk.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// journal.Store
// ──────────────────────────────────────────────────

// Append inserts an entry.
func (s *Store) Append(ctx context.Context, e *journal.Entry) error {
	if _, err := s.sdb.NewInsert(toJournalModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("eventdesk/sqlite: append: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	var models []journalModel
	q := s.sdb.NewSelect(&models)
	if opts.Action != "" {
		q = q.Where("action = ?", string(opts.Action))
	}
	// SQLite only accepts OFFSET after a LIMIT; without one the offset is
	// applied below.
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
		if opts.Offset > 0 {
			q = q.Offset(opts.Offset)
		}
	}
	q = q.OrderExpr("created_at DESC, rowid DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("eventdesk/sqlite: list: %w", err)
	}
	if opts.Limit <= 0 && opts.Offset > 0 {
		if opts.Offset >= len(models) {
			models = nil
		} else {
			models = models[opts.Offset:]
		}
	}

	out := make([]*journal.Entry, 0, len(models))
	for i := range models {
		e, err := fromJournalModel(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Get returns one entry.
func (s *Store) Get(ctx context.Context, entryID id.ID) (*journal.Entry, error) {
	m := new(journalModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", entryID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, eventdesk.ErrEntryNotFound
		}
		return nil, err
	}
	return fromJournalModel(m)
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.sdb.NewSelect((*journalModel)(nil)).
		Count(ctx)
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
