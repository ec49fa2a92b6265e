/*
Package cache implements the two-tier (in-memory + disk) cache
described in spec.md §4.4: a sharded, pluggable-eviction L1 backed by a
per-key-file L2, request-coalesced fills, a predictive preheater, and
an adaptive tuner that nudges capacity and TTL multipliers in response
to observed hit rate, pressure, and latency.
*/
package cache

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache is a typed, two-tier key-value store. The zero value is not
// usable; construct with New.
type Cache[V any] struct {
	opts   Options[V]
	shards []*l1Shard[V]
	l2     *l2Tier[V] // nil when Options.L2Dir is empty: L1-only cache.
	stats  *stats
	tuning *dynamicTuning

	promoMu     sync.Mutex
	promoCounts map[string]int64

	preheater *preheater[V]
	tuner     *tuner[V]
	sf        singleflight.Group
	log       *zap.Logger

	created time.Time

	cancel  context.CancelFunc
	closeWG sync.WaitGroup
	closed  int32
}

// New constructs a Cache and starts its background goroutines
// (preheater, tuner, L2 cleanup). Call Close to stop them.
func New[V any](opts Options[V], log *zap.Logger) (*Cache[V], error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ShardCount < 1 {
		opts.ShardCount = 1
	}

	c := &Cache[V]{
		opts:        opts,
		stats:       &stats{},
		tuning:      newDynamicTuning(),
		promoCounts: make(map[string]int64),
		log:         log,
		created:     time.Now(),
	}

	perShardEntries := opts.L1MaxEntries / opts.ShardCount
	perShardBytes := opts.L1MaxBytes / int64(opts.ShardCount)
	c.shards = make([]*l1Shard[V], opts.ShardCount)
	for i := range c.shards {
		c.shards[i] = newL1Shard[V](opts.Policy, perShardEntries, perShardBytes)
		c.shards[i].tuning = c.tuning
	}

	if opts.L2Dir != "" {
		l2, err := newL2Tier(opts.L2Dir, opts.Codec, opts.L2Compress)
		if err != nil {
			return nil, err
		}
		c.l2 = l2
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.preheater = newPreheater(opts, c.backgroundFill)
	c.tuner = newTuner(opts, c.tuning, c.performanceSnapshot, log)

	c.closeWG.Add(1)
	go func() { defer c.closeWG.Done(); c.preheater.run(ctx) }()
	c.closeWG.Add(1)
	go func() { defer c.closeWG.Done(); c.tuner.run() }()
	if c.l2 != nil && opts.L2CleanupInterval > 0 {
		c.closeWG.Add(1)
		go func() { defer c.closeWG.Done(); c.runL2Cleanup(ctx) }()
	}

	return c, nil
}

// Close stops background goroutines. Safe to call more than once.
func (c *Cache[V]) Close() {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return
	}
	c.cancel()
	c.preheater.close()
	c.tuner.close()
	c.closeWG.Wait()
}

func (c *Cache[V]) shardFor(key string) *l1Shard[V] {
	return c.shards[shardFor(key, len(c.shards))]
}

// Get implements the tier protocol's get(key): an L1 hit returns
// immediately; an L1 miss consults L2 and promotes on crossing the
// promotion threshold.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	start := time.Now()
	defer func() { c.stats.recordGetLatency(time.Since(start)) }()

	var zero V
	now := start

	if e, ok := c.shardFor(key).get(key, now); ok {
		atomic.AddInt64(&c.stats.l1Hits, 1)
		c.preheater.observe(key, now)
		return e.value, true
	}
	atomic.AddInt64(&c.stats.l1Misses, 1)

	if c.l2 == nil {
		c.preheater.observe(key, now)
		return zero, false
	}

	v, ok := c.l2.get(key)
	if !ok {
		atomic.AddInt64(&c.stats.l2Misses, 1)
		c.preheater.observe(key, now)
		return zero, false
	}
	atomic.AddInt64(&c.stats.l2Hits, 1)
	c.preheater.observe(key, now)

	if c.shouldPromote(key) {
		c.putL1(key, v, c.opts.DefaultTTL)
		atomic.AddInt64(&c.stats.promotions, 1)
	}
	return v, true
}

func (c *Cache[V]) shouldPromote(key string) bool {
	c.promoMu.Lock()
	defer c.promoMu.Unlock()
	c.promoCounts[key]++
	if c.promoCounts[key] >= c.opts.PromotionThreshold {
		delete(c.promoCounts, key)
		return true
	}
	return false
}

// Put implements put(key, value): write to L1, evicting per policy if
// over capacity, demoting any evicted-but-unexpired entry to L2.
func (c *Cache[V]) Put(ctx context.Context, key string, value V, ttl time.Duration) error {
	start := time.Now()
	defer func() { c.stats.recordPutLatency(time.Since(start)) }()

	if ttl <= 0 {
		ttl = c.opts.DefaultTTL
	}
	if _, _, ttlMultiplier, _ := c.tuning.snapshot(); ttlMultiplier > 0 {
		ttl = time.Duration(float64(ttl) * ttlMultiplier)
	}

	return c.putL1(key, value, ttl)
}

func (c *Cache[V]) putL1(key string, value V, ttl time.Duration) error {
	now := time.Now()
	e := &entry[V]{
		key:        key,
		value:      value,
		size:       estimateSize(value),
		lastAccess: now,
		inserted:   now,
	}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	evicted := c.shardFor(key).put(e)
	if len(evicted) > 0 {
		atomic.AddInt64(&c.stats.evictions, int64(len(evicted)))
	}
	if c.l2 == nil {
		return nil
	}
	_, _, _, l2SizeMultiplier := c.tuning.snapshot()

	var firstErr error
	for _, ev := range evicted {
		if ev.expired(now) {
			continue
		}
		remaining := time.Duration(0)
		if !ev.expiresAt.IsZero() {
			// l2SizeMultiplier lets the tuner stretch how long a demoted
			// entry survives on disk under sustained high eviction
			// pressure, trading disk space for fewer re-fills.
			remaining = time.Duration(float64(time.Until(ev.expiresAt)) * l2SizeMultiplier)
			if remaining <= 0 {
				continue
			}
		}
		if err := c.l2.put(ev.key, ev.value, remaining); err != nil {
			atomic.AddInt64(&c.stats.errors, 1)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		atomic.AddInt64(&c.stats.demotions, 1)
	}
	return firstErr
}

// Remove implements remove(key): delete from both tiers.
func (c *Cache[V]) Remove(ctx context.Context, key string) error {
	c.shardFor(key).remove(key)
	if c.l2 == nil {
		return nil
	}
	if err := c.l2.remove(key); err != nil {
		atomic.AddInt64(&c.stats.errors, 1)
		return nil // cache errors are non-fatal (spec.md §4.4)
	}
	return nil
}

// Clear implements clear(): flush both tiers and reset statistics.
func (c *Cache[V]) Clear(ctx context.Context) error {
	for _, s := range c.shards {
		s.clear()
	}
	if c.l2 != nil {
		if err := c.l2.clear(); err != nil {
			atomic.AddInt64(&c.stats.errors, 1)
		}
	}
	c.stats = &stats{}
	c.promoMu.Lock()
	c.promoCounts = make(map[string]int64)
	c.promoMu.Unlock()
	return nil
}

// Fill implements the "at-most-one concurrent fill" policy: for a
// given key, at most one caller invokes loader; concurrent callers
// share its result via golang.org/x/sync/singleflight.
func (c *Cache[V]) Fill(ctx context.Context, key string, loader Loader[V]) (V, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}

	result, err, _ := c.sf.Do(key, func() (any, error) {
		if v, ok := c.Get(ctx, key); ok {
			return v, nil
		}
		v, err := loader(ctx, key)
		if err != nil {
			atomic.AddInt64(&c.stats.errors, 1)
			return nil, err
		}
		atomic.AddInt64(&c.stats.fills, 1)
		if putErr := c.Put(ctx, key, v, c.opts.DefaultTTL); putErr != nil {
			atomic.AddInt64(&c.stats.errors, 1)
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// backgroundFill is the preheater's fillFn: it uses the cache's
// configured Loader, if any, discarding errors beyond recording them
// (a failed preheat is not worth surfacing to anyone).
func (c *Cache[V]) backgroundFill(ctx context.Context, key string) {
	if c.opts.Loader == nil {
		return
	}
	if _, err := c.Fill(ctx, key, c.opts.Loader); err != nil {
		c.log.Debug("cache: background preheat fill failed", zap.String("key", key), zap.Error(err))
	}
}

// Snapshot returns a point-in-time view of the cache's statistics
// (spec.md §4.4's "Statistics" section).
func (c *Cache[V]) Snapshot() Snapshot {
	var entries int
	var bytes int64
	for _, s := range c.shards {
		entries += s.len()
		bytes += s.bytes()
	}
	snap := c.stats.snapshot(entries, bytes, c.opts.L1MaxBytes)
	return snap
}

func (c *Cache[V]) performanceSnapshot() PerformanceSnapshot {
	snap := c.Snapshot()
	l2Total := snap.L2Hits + snap.L2Misses
	l2HitRate := 0.0
	if l2Total > 0 {
		l2HitRate = float64(snap.L2Hits) / float64(l2Total)
	}
	totalOps := snap.L1Hits + snap.L1Misses
	opsPerSec := 0.0
	if elapsed := time.Since(c.created).Seconds(); elapsed > 0 {
		opsPerSec = float64(totalOps) / elapsed
	}
	evictionRate := 0.0
	if totalOps > 0 {
		evictionRate = float64(snap.Evictions) / float64(totalOps)
	}
	promotionRate := 0.0
	if totalOps > 0 {
		promotionRate = float64(snap.Promotions) / float64(totalOps)
	}

	return PerformanceSnapshot{
		At:             time.Now(),
		L1HitRate:      snap.HitRate,
		L2HitRate:      l2HitRate,
		MemoryPressure: snap.LoadFactor,
		AvgGetLatency:  c.stats.avgGetLatency(),
		AvgPutLatency:  c.stats.avgPutLatency(),
		OpsPerSec:      opsPerSec,
		EvictionRate:   evictionRate,
		PromotionRate:  promotionRate,
	}
}

func (c *Cache[V]) runL2Cleanup(ctx context.Context) {
	ticker := time.NewTicker(c.opts.L2CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := c.l2.cleanup(ctx, nil)
			if removed > 0 {
				c.log.Debug("cache: L2 cleanup evicted stale entries", zap.Int("count", removed))
			}
		}
	}
}

// estimateSize approximates an entry's memory footprint for the
// byte-budget eviction bound. Exact accounting would require a
// per-type Sizer; reflect.TypeOf's static size plus, for strings and
// slices, their dynamic length is a reasonable approximation for the
// JSON-shaped values (package lists, resolved contexts) this cache
// holds.
func estimateSize[V any](v V) int64 {
	const baseOverhead = 64
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return int64(rv.Len()) + baseOverhead
	case reflect.Slice, reflect.Map:
		return int64(rv.Len())*32 + baseOverhead
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return baseOverhead
		}
		return baseOverhead * 2
	default:
		return int64(rv.Type().Size()) + baseOverhead
	}
}
