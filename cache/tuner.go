package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// PerformanceSnapshot is one rolling-window sample observed by the
// adaptive tuner (spec.md §4.4).
type PerformanceSnapshot struct {
	At time.Time

	L1HitRate, L2HitRate float64
	MemoryPressure       float64
	DiskPressure         float64

	AvgGetLatency time.Duration
	AvgPutLatency time.Duration
	OpsPerSec     float64

	EvictionRate  float64
	PromotionRate float64
}

// TuningKind identifies which dynamic multiplier a recommendation
// touches.
type TuningKind string

const (
	TuneL1Size          TuningKind = "l1_size_multiplier"
	TuneEvictionAggro   TuningKind = "eviction_aggressiveness"
	TuneTTLMultiplier   TuningKind = "ttl_multiplier"
	TuneL2Size          TuningKind = "l2_size_multiplier"
)

// TuningRecommendation is one proposed adjustment, auto-applied when
// Confidence clears the configured threshold.
type TuningRecommendation struct {
	Kind       TuningKind
	Increase   bool
	Confidence float64
	Reason     string
	Applied    bool
}

// dynamicTuning holds the multipliers the tuner adjusts at runtime.
// Reads/writes go through a mutex since they're touched far less often
// than the cache's hot get/put path.
type dynamicTuning struct {
	mu                     sync.RWMutex
	l1SizeMultiplier       float64
	evictionAggressiveness float64
	ttlMultiplier          float64
	l2SizeMultiplier       float64
}

func newDynamicTuning() *dynamicTuning {
	return &dynamicTuning{
		l1SizeMultiplier:       1.0,
		evictionAggressiveness: 1.0,
		ttlMultiplier:          1.0,
		l2SizeMultiplier:       1.0,
	}
}

func (d *dynamicTuning) snapshot() (l1Size, evictAggro, ttl, l2Size float64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.l1SizeMultiplier, d.evictionAggressiveness, d.ttlMultiplier, d.l2SizeMultiplier
}

func (d *dynamicTuning) apply(rec TuningRecommendation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch rec.Kind {
	case TuneL1Size:
		d.l1SizeMultiplier = clampMultiplier(d.l1SizeMultiplier, rec.Increase, 0.25, 2.0)
	case TuneEvictionAggro:
		d.evictionAggressiveness = clampMultiplier(d.evictionAggressiveness, rec.Increase, 0.25, 3.0)
	case TuneTTLMultiplier:
		d.ttlMultiplier = clampMultiplier(d.ttlMultiplier, rec.Increase, 0.5, 2.0)
	case TuneL2Size:
		d.l2SizeMultiplier = clampMultiplier(d.l2SizeMultiplier, rec.Increase, 0.25, 3.0)
	}
}

func clampMultiplier(cur float64, increase bool, floor, ceiling float64) float64 {
	step := 0.1
	if increase {
		cur += step
	} else {
		cur -= step
	}
	if cur < floor {
		return floor
	}
	if cur > ceiling {
		return ceiling
	}
	return cur
}

// tuner runs the adaptive-tuning cycle described in spec.md §4.4: a
// rolling window of PerformanceSnapshot feeds a fixed rule set, and
// recommendations above the confidence threshold are auto-applied.
type tuner[V any] struct {
	windowSize    int
	cycleInterval time.Duration
	minSamples    int
	minConfidence float64
	sampleFn      func() PerformanceSnapshot
	tuning        *dynamicTuning
	log           *zap.Logger

	mu              sync.Mutex
	window          []PerformanceSnapshot
	recommendations []TuningRecommendation

	stop chan struct{}
	done chan struct{}
}

func newTuner[V any](opts Options[V], tuning *dynamicTuning, sampleFn func() PerformanceSnapshot, log *zap.Logger) *tuner[V] {
	if log == nil {
		log = zap.NewNop()
	}
	return &tuner[V]{
		windowSize:    opts.TunerWindowSize,
		cycleInterval: opts.TunerCycleInterval,
		minSamples:    opts.TunerMinSamples,
		minConfidence: opts.TunerMinConfidenceForAuto,
		sampleFn:      sampleFn,
		tuning:        tuning,
		log:           log,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (t *tuner[V]) run() {
	defer close(t.done)
	ticker := time.NewTicker(t.cycleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.cycle()
		}
	}
}

func (t *tuner[V]) close() {
	close(t.stop)
	<-t.done
}

func (t *tuner[V]) cycle() {
	snap := t.sampleFn()

	t.mu.Lock()
	t.window = append(t.window, snap)
	if len(t.window) > t.windowSize {
		t.window = t.window[len(t.window)-t.windowSize:]
	}
	if len(t.window) < t.minSamples {
		t.mu.Unlock()
		return
	}
	window := append([]PerformanceSnapshot(nil), t.window...)
	t.mu.Unlock()

	recs := evaluateTuningRules(window)

	t.mu.Lock()
	t.recommendations = append(t.recommendations, recs...)
	t.mu.Unlock()

	for _, rec := range recs {
		if rec.Confidence >= t.minConfidence {
			rec.Applied = true
			t.tuning.apply(rec)
			t.log.Info("cache: auto-applied tuning recommendation",
				zap.String("kind", string(rec.Kind)), zap.Bool("increase", rec.Increase),
				zap.Float64("confidence", rec.Confidence), zap.String("reason", rec.Reason))
		} else {
			t.log.Info("cache: tuning recommendation logged for manual review",
				zap.String("kind", string(rec.Kind)), zap.Bool("increase", rec.Increase),
				zap.Float64("confidence", rec.Confidence), zap.String("reason", rec.Reason))
		}
	}
}

// evaluateTuningRules applies spec.md §4.4's four fixed rules to the
// current window, most-recent sample last.
func evaluateTuningRules(window []PerformanceSnapshot) []TuningRecommendation {
	if len(window) == 0 {
		return nil
	}
	last := window[len(window)-1]
	avgHitRate, avgEvictionRate := meanRates(window)

	var recs []TuningRecommendation

	const targetHitRate = 0.7
	if last.L1HitRate < avgHitRate && last.L1HitRate < targetHitRate {
		recs = append(recs, TuningRecommendation{
			Kind:       TuneL1Size,
			Increase:   true,
			Confidence: confidenceFromGap(targetHitRate-last.L1HitRate, 0.3),
			Reason:     "L1 hit rate declining and below target",
		})
	}

	if last.MemoryPressure > 0.9 {
		recs = append(recs, TuningRecommendation{
			Kind:       TuneEvictionAggro,
			Increase:   true,
			Confidence: confidenceFromGap(last.MemoryPressure-0.9, 0.1),
			Reason:     "memory pressure above 90%",
		})
	} else if last.MemoryPressure < 0.5 {
		recs = append(recs, TuningRecommendation{
			Kind:       TuneEvictionAggro,
			Increase:   false,
			Confidence: confidenceFromGap(0.5-last.MemoryPressure, 0.5),
			Reason:     "memory pressure below 50%",
		})
	}

	if last.AvgGetLatency > 1000*time.Microsecond && latencyTrendingUp(window) {
		recs = append(recs, TuningRecommendation{
			Kind:       TuneTTLMultiplier,
			Increase:   false,
			Confidence: confidenceFromGap(float64(last.AvgGetLatency-1000*time.Microsecond)/float64(time.Millisecond), 1.0),
			Reason:     "get latency above 1000µs and trending up",
		})
	}

	if last.EvictionRate > avgEvictionRate && last.EvictionRate > 0.1 {
		recs = append(recs, TuningRecommendation{
			Kind:       TuneL2Size,
			Increase:   true,
			Confidence: confidenceFromGap(last.EvictionRate-0.1, 0.3),
			Reason:     "eviction rate sustained high",
		})
	}

	return recs
}

func meanRates(window []PerformanceSnapshot) (hitRate, evictionRate float64) {
	var hSum, eSum float64
	for _, s := range window {
		hSum += s.L1HitRate
		eSum += s.EvictionRate
	}
	n := float64(len(window))
	return hSum / n, eSum / n
}

func latencyTrendingUp(window []PerformanceSnapshot) bool {
	if len(window) < 2 {
		return false
	}
	return window[len(window)-1].AvgGetLatency > window[len(window)-2].AvgGetLatency
}

func confidenceFromGap(gap, scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	c := gap / scale
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c
}
