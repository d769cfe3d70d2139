// Package redis provides a journal Store backed by Redis via Grove KV.
// Entries are JSON values indexed by sorted sets scored on creation time.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/grove/kv"
	"github.com/xraph/grove/kv/drivers/redisdriver"

	"github.com/xraph/eventdesk"
	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/journal"
	edstore "github.com/xraph/eventdesk/store"
)

// compile-time interface check
var _ edstore.Store = (*Store)(nil)

// Store implements store.Store using Redis via Grove KV.
type Store struct {
	kv  *kv.Store
	rdb goredis.UniversalClient
}

// New creates a new Redis store backed by Grove KV.
func New(store *kv.Store) *Store {
	return &Store{
		kv:  store,
		rdb: redisdriver.UnwrapClient(store),
	}
}

// Open connects to the Redis server described by a redis:// URL.
func Open(ctx context.Context, url string) (*Store, error) {
	if url == "" {
		return nil, errors.New("eventdesk/redis: url is required")
	}
	drv := redisdriver.New()
	if err := drv.Open(ctx, url); err != nil {
		return nil, fmt.Errorf("eventdesk/redis: open: %w", err)
	}
	store, err := kv.Open(drv)
	if err != nil {
		return nil, fmt.Errorf("eventdesk/redis: open: %w", err)
	}
	return New(store), nil
}

// Client returns the underlying Redis client.
func (s *Store) Client() goredis.UniversalClient { return s.rdb }

// Migrate is a no-op for Redis (no schema migrations needed).
func (s *Store) Migrate(_ context.Context) error {
	return nil
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// Close closes the KV store.
func (s *Store) Close() error {
	return s.kv.Close()
}

// ──────────────────────────────────────────────────
// journal.Store
// ──────────────────────────────────────────────────

// Append stores the entry and indexes it.
func (s *Store) Append(ctx context.Context, e *journal.Entry) error {
	key := e.ID.String()
	if err := s.setEntity(ctx, entryKey(key), e); err != nil {
		return fmt.Errorf("eventdesk/redis: append: %w", err)
	}

	z := goredis.Z{Score: scoreFromTime(e.CreatedAt), Member: key}
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZAdd(ctx, zEntryAll, z)
		pipe.ZAdd(ctx, actionKey(string(e.Action)), z)
		return nil
	})
	if err != nil {
		return fmt.Errorf("eventdesk/redis: append index: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	index := zEntryAll
	if opts.Action != "" {
		index = actionKey(string(opts.Action))
	}

	start := int64(max(opts.Offset, 0))
	stop := int64(-1)
	if opts.Limit > 0 {
		stop = start + int64(opts.Limit) - 1
	}

	ids, err := s.rdb.ZRevRange(ctx, index, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("eventdesk/redis: list index: %w", err)
	}

	out := make([]*journal.Entry, 0, len(ids))
	for _, entryID := range ids {
		var e journal.Entry
		if err := s.getEntity(ctx, entryKey(entryID), &e); err != nil {
			if isNotFound(err) {
				continue // index points at a missing entry
			}
			return nil, fmt.Errorf("eventdesk/redis: list entries: %w", err)
		}
		out = append(out, &e)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// Get returns one entry.
func (s *Store) Get(ctx context.Context, entryID id.ID) (*journal.Entry, error) {
	var e journal.Entry
	if err := s.getEntity(ctx, entryKey(entryID.String()), &e); err != nil {
		if isNotFound(err) {
			return nil, eventdesk.ErrEntryNotFound
		}
		return nil, fmt.Errorf("eventdesk/redis: get: %w", err)
	}
	return &e, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.rdb.ZCard(ctx, zEntryAll).Result()
	if err != nil {
		return 0, fmt.Errorf("eventdesk/redis: count: %w", err)
	}
	return n, nil
}

// scoreFromTime converts a time.Time to a sorted set score (unix seconds as float64).
func scoreFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// isNotFound checks if an error is a KV not-found sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, kv.ErrNotFound)
}

// getEntity retrieves and decodes a JSON entity from a KV key.
func (s *Store) getEntity(ctx context.Context, key string, dest any) error {
	raw, err := s.kv.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("eventdesk/redis: decode entity: %w", err)
	}
	return nil
}

// setEntity encodes and stores a JSON entity under a KV key.
func (s *Store) setEntity(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("eventdesk/redis: marshal entity: %w", err)
	}
	return s.kv.SetRaw(ctx, key, raw)
}
