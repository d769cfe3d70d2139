// Package mongo provides a journal Store backed by MongoDB via Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/eventdesk"
	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/journal"
	"github.com/xraph/eventdesk/store"
)

// Collection name constants.
const (
	colJournal = "eventdesk_journal"
)

// DefaultDatabase is used when Open is given no database name.
const DefaultDatabase = "eventdesk"

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Open connects to uri and uses database db. A database already named in
// the uri path wins over db.
func Open(ctx context.Context, uri, db string) (*Store, error) {
	dsn, err := databaseURI(uri, db)
	if err != nil {
		return nil, err
	}
	drv := mongodriver.New()
	if err := drv.Open(ctx, dsn); err != nil {
		return nil, fmt.Errorf("eventdesk/mongo: open: %w", err)
	}
	gdb, err := grove.Open(drv)
	if err != nil {
		return nil, fmt.Errorf("eventdesk/mongo: open: %w", err)
	}
	return New(gdb), nil
}

// databaseURI sets the default database in the path of a mongodb uri.
func databaseURI(uri, db string) (string, error) {
	if uri == "" {
		return "", errors.New("eventdesk/mongo: uri is required")
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("eventdesk/mongo: parse uri: %w", err)
	}
	if strings.Trim(u.Path, "/") != "" {
		return uri, nil
	}
	if db == "" {
		db = DefaultDatabase
	}
	u.Path = "/" + db
	return u.String(), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the journal collection.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.mdb.Collection(colJournal).Indexes().CreateMany(ctx, migrationIndexes())
	if err != nil {
		return fmt.Errorf("%w: eventdesk/mongo: %s indexes: %v", eventdesk.ErrMigrationFailed, colJournal, err)
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

// migrationIndexes returns the index definitions for the journal collection.
func migrationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "event_id", Value: 1}}},
	}
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// ──────────────────────────────────────────────────
// journal.Store
// ──────────────────────────────────────────────────

// Append inserts an entry.
func (s *Store) Append(ctx context.Context, e *journal.Entry) error {
	if _, err := s.mdb.NewInsert(toEntryModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("eventdesk/mongo: append: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	var models []entryModel

	filter := bson.M{}
	if opts.Action != "" {
		filter["action"] = string(opts.Action)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("eventdesk/mongo: list: %w", err)
	}

	out := make([]*journal.Entry, 0, len(models))
	for i := range models {
		e, err := fromEntryModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("eventdesk/mongo: list decode: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Get returns one entry.
func (s *Store) Get(ctx context.Context, entryID id.ID) (*journal.Entry, error) {
	var m entryModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": entryID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, eventdesk.ErrEntryNotFound
		}
		return nil, fmt.Errorf("eventdesk/mongo: get: %w", err)
	}
	return fromEntryModel(&m)
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.mdb.NewFind((*entryModel)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("eventdesk/mongo: count: %w", err)
	}
	return n, nil
}
