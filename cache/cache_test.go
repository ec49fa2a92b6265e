package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func newTestCache(t *testing.T, configure func(*Options[string])) *Cache[string] {
	t.Helper()
	opts := NewOptions[string]()
	opts.ShardCount = 1
	opts.L1MaxEntries = 4
	opts.PromotionThreshold = 2
	opts.PreheatInterval = time.Hour // disable the ticking in unit tests
	opts.TunerCycleInterval = time.Hour
	opts.L2CleanupInterval = 0
	if configure != nil {
		configure(&opts)
	}
	c, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestGetPutRoundTrip(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Put(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, ok := c.Get(ctx, "k")
	if !ok || v != "v" {
		t.Fatalf("Get(k) = %q, %v; want v, true", v, ok)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()
	c.Put(ctx, "k", "v", time.Minute)

	if err := c.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss after Remove")
	}

	c.Put(ctx, "a", "1", time.Minute)
	c.Put(ctx, "b", "2", time.Minute)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("expected miss after Clear")
	}
	if _, ok := c.Get(ctx, "b"); ok {
		t.Error("expected miss after Clear")
	}
}

func TestL1EvictsOverCapacity(t *testing.T) {
	c := newTestCache(t, func(o *Options[string]) { o.L1MaxEntries = 4 })
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		c.Put(ctx, string(rune('a'+i)), "v", time.Minute)
	}
	snap := c.Snapshot()
	if snap.Entries > 4 {
		t.Errorf("Entries = %d, want <= 4", snap.Entries)
	}
	if snap.Evictions == 0 {
		t.Error("expected at least one eviction")
	}
}

func TestPromotionFromL2(t *testing.T) {
	dir := t.TempDir()
	c := newTestCache(t, func(o *Options[string]) {
		o.L2Dir = dir
		o.PromotionThreshold = 2
	})
	ctx := context.Background()

	c.Put(ctx, "k", "v", time.Minute)
	// Demote it to L2 directly, simulating an L1 eviction, and drop
	// the L1 copy so the next Get must come from L2.
	c.l2.put("k", "v", time.Minute)
	c.shardFor("k").remove("k")

	for i := 0; i < 2; i++ {
		v, ok := c.Get(ctx, "k")
		if !ok || v != "v" {
			t.Fatalf("Get(k) iteration %d = %q, %v", i, v, ok)
		}
	}

	if _, ok := c.shardFor("k").get("k", time.Now()); !ok {
		t.Error("expected key to be promoted into L1 after crossing promotion threshold")
	}
}

func TestFillCoalescesConcurrentCallers(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()

	var calls int64
	loader := func(ctx context.Context, key string) (string, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return "computed:" + key, nil
	}

	results := make(chan string, 8)
	for i := 0; i < 8; i++ {
		go func() {
			v, err := c.Fill(ctx, "shared", loader)
			if err != nil {
				t.Error(err)
				return
			}
			results <- v
		}()
	}
	for i := 0; i < 8; i++ {
		if got := <-results; got != "computed:shared" {
			t.Errorf("Fill result = %q, want computed:shared", got)
		}
	}
	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Errorf("loader called %d times, want exactly 1", n)
	}
}

func TestSnapshotHitRate(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()
	c.Put(ctx, "k", "v", time.Minute)

	c.Get(ctx, "k")
	c.Get(ctx, "k")
	c.Get(ctx, "missing")

	snap := c.Snapshot()
	if snap.L1Hits != 2 || snap.L1Misses != 1 {
		t.Errorf("hits=%d misses=%d, want 2, 1", snap.L1Hits, snap.L1Misses)
	}
	want := 2.0 / 3.0
	if diff := snap.HitRate - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("HitRate = %v, want %v", snap.HitRate, want)
	}
}

func TestExpiredEntryIsMiss(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()
	c.Put(ctx, "k", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected expired entry to be a miss")
	}
}
