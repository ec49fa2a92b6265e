package cache

import (
	"sync/atomic"
	"time"
)

// stats holds the atomic counters named in spec.md §4.4. All fields
// are accessed only via atomic operations, so the struct itself needs
// no lock.
type stats struct {
	l1Hits, l1Misses int64
	l2Hits, l2Misses int64
	evictions        int64
	promotions       int64
	demotions        int64
	fills            int64
	errors           int64

	getLatencySumNs, getLatencyCount int64
	putLatencySumNs, putLatencyCount int64
}

func (s *stats) recordGetLatency(d time.Duration) {
	atomic.AddInt64(&s.getLatencySumNs, d.Nanoseconds())
	atomic.AddInt64(&s.getLatencyCount, 1)
}

func (s *stats) recordPutLatency(d time.Duration) {
	atomic.AddInt64(&s.putLatencySumNs, d.Nanoseconds())
	atomic.AddInt64(&s.putLatencyCount, 1)
}

func (s *stats) avgGetLatency() time.Duration {
	n := atomic.LoadInt64(&s.getLatencyCount)
	if n == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&s.getLatencySumNs) / n)
}

func (s *stats) avgPutLatency() time.Duration {
	n := atomic.LoadInt64(&s.putLatencyCount)
	if n == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&s.putLatencySumNs) / n)
}

// Snapshot is a point-in-time rendering of a Cache's statistics,
// exposed to callers and to the adaptive tuner.
type Snapshot struct {
	L1Hits, L1Misses int64
	L2Hits, L2Misses int64
	Evictions        int64
	Promotions       int64
	Demotions        int64
	Fills            int64
	Errors           int64

	Entries    int
	UsageBytes int64

	HitRate        float64
	LoadFactor     float64
	AvgEntrySize   float64
	EfficiencyScore float64
}

func (s *stats) snapshot(entries int, usageBytes int64, capacityBytes int64) Snapshot {
	hits := atomic.LoadInt64(&s.l1Hits) + atomic.LoadInt64(&s.l2Hits)
	misses := atomic.LoadInt64(&s.l1Misses) + atomic.LoadInt64(&s.l2Misses)
	total := hits + misses

	snap := Snapshot{
		L1Hits:     atomic.LoadInt64(&s.l1Hits),
		L1Misses:   atomic.LoadInt64(&s.l1Misses),
		L2Hits:     atomic.LoadInt64(&s.l2Hits),
		L2Misses:   atomic.LoadInt64(&s.l2Misses),
		Evictions:  atomic.LoadInt64(&s.evictions),
		Promotions: atomic.LoadInt64(&s.promotions),
		Demotions:  atomic.LoadInt64(&s.demotions),
		Fills:      atomic.LoadInt64(&s.fills),
		Errors:     atomic.LoadInt64(&s.errors),
		Entries:    entries,
		UsageBytes: usageBytes,
	}
	if total > 0 {
		snap.HitRate = float64(hits) / float64(total)
	}
	if capacityBytes > 0 {
		snap.LoadFactor = float64(usageBytes) / float64(capacityBytes)
	}
	if entries > 0 {
		snap.AvgEntrySize = float64(usageBytes) / float64(entries)
	}
	memoryPressure := snap.LoadFactor
	if memoryPressure > 1 {
		memoryPressure = 1
	}
	snap.EfficiencyScore = (snap.HitRate + (1 - memoryPressure)) / 2
	return snap
}
