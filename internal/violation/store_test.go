package violation

import (
	"context"
	"os"
	"testing"
	"time"

	"luna-guard/internal/config"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

func newMem(scope string) *MemStore {
	return NewMemStore(Options{Scope: scope, DecayWindow: 24 * time.Hour}, 100)
}

func TestDecayAfterWindow(t *testing.T) {
	ctx := context.Background()
	store := newMem(config.ScopeGuild)
	start := time.Unix(0, 0)
	store.WithClock(fakeClock{now: start})

	rec, _ := store.Record(ctx, "g1", "u1")
	if rec.Count != 1 {
		t.Fatalf("expected 1, got %d", rec.Count)
	}

	store.WithClock(fakeClock{now: start.Add(25 * time.Hour)})
	rec, _ = store.Record(ctx, "g1", "u1")
	if rec.Count != 1 {
		t.Fatalf("expected count to reset to 1, got %d", rec.Count)
	}
}

func TestNoDecayWithinWindow(t *testing.T) {
	ctx := context.Background()
	store := newMem(config.ScopeGuild)
	start := time.Unix(0, 0)
	store.WithClock(fakeClock{now: start})
	store.Record(ctx, "g1", "u1")

	store.WithClock(fakeClock{now: start.Add(23 * time.Hour)})
	rec, _ := store.Record(ctx, "g1", "u1")
	if rec.Count != 2 {
		t.Fatalf("expected 2, got %d", rec.Count)
	}

	// the window slides from the latest violation
	store.WithClock(fakeClock{now: start.Add(46 * time.Hour)})
	rec, _ = store.Record(ctx, "g1", "u1")
	if rec.Count != 3 {
		t.Fatalf("expected 3, got %d", rec.Count)
	}
}

func TestGetAppliesDecay(t *testing.T) {
	ctx := context.Background()
	store := newMem(config.ScopeGuild)
	start := time.Unix(0, 0)
	store.WithClock(fakeClock{now: start})
	store.Record(ctx, "g1", "u1")

	rec, _ := store.Get(ctx, "g1", "u1")
	if rec.Count != 1 || !rec.LastAt.Equal(start) {
		t.Fatalf("unexpected record %+v", rec)
	}
	store.WithClock(fakeClock{now: start.Add(48 * time.Hour)})
	rec, _ = store.Get(ctx, "g1", "u1")
	if rec.Count != 0 {
		t.Fatalf("expected decayed record, got %+v", rec)
	}
}

func TestScopes(t *testing.T) {
	ctx := context.Background()

	guild := newMem(config.ScopeGuild)
	guild.Record(ctx, "g1", "u1")
	if rec, _ := guild.Record(ctx, "g2", "u1"); rec.Count != 1 {
		t.Fatalf("guild scope must isolate guilds, got %d", rec.Count)
	}

	global := newMem(config.ScopeGlobal)
	global.Record(ctx, "g1", "u1")
	if rec, _ := global.Record(ctx, "g2", "u1"); rec.Count != 2 {
		t.Fatalf("global scope must share counts, got %d", rec.Count)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newMem(config.ScopeGuild)
	store.Record(ctx, "g1", "u1")
	store.Record(ctx, "g1", "u1")
	if err := store.Reset(ctx, "g1", "u1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if rec, _ := store.Record(ctx, "g1", "u1"); rec.Count != 1 {
		t.Fatalf("expected 1 after reset, got %d", rec.Count)
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("LUNA_TEST_REDIS_URL")
	if url == "" {
		t.Skip("live test, set LUNA_TEST_REDIS_URL")
	}
	ctx := context.Background()
	store, err := NewRedisStore(url, Options{Scope: config.ScopeGuild, DecayWindow: 24 * time.Hour})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	defer store.Close()

	start := time.Now()
	store.WithClock(fakeClock{now: start})
	_ = store.Reset(ctx, "test-guild", "test-user")

	store.Record(ctx, "test-guild", "test-user")
	rec, err := store.Record(ctx, "test-guild", "test-user")
	if err != nil || rec.Count != 2 {
		t.Fatalf("expected 2, got %d (%v)", rec.Count, err)
	}

	store.WithClock(fakeClock{now: start.Add(25 * time.Hour)})
	if rec, _ := store.Get(ctx, "test-guild", "test-user"); rec.Count != 0 {
		t.Fatalf("expected decayed record, got %+v", rec)
	}
	rec, _ = store.Record(ctx, "test-guild", "test-user")
	if rec.Count != 1 {
		t.Fatalf("expected reset to 1, got %d", rec.Count)
	}
	_ = store.Reset(ctx, "test-guild", "test-user")
}
