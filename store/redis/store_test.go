package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/eventdesk/internal/storetest"
	"github.com/xraph/eventdesk/journal"
	"github.com/xraph/eventdesk/store"
	edredis "github.com/xraph/eventdesk/store/redis"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := edredis.Open(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, newStore)
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	s, err := edredis.Open(ctx, "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.Append(ctx, storetest.Entry(journal.ActionCreate, 1, 0)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !mr.Exists("eventdesk:z:jrn:all") {
		t.Fatal("expected the index key to exist")
	}

	if _, err := edredis.Open(ctx, ""); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestList_SkipsDanglingIndex(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	s, err := edredis.Open(ctx, "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.Client().ZAdd(ctx, "eventdesk:z:jrn:all", goredis.Z{Score: 1, Member: "jrn_missing"}).Result(); err != nil {
		t.Fatalf("ZAdd: %v", err)
	}
	if err := s.Append(ctx, storetest.Entry(journal.ActionCreate, 1, 0)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.List(ctx, journal.ListOpts{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
}
