package cache

import (
	"context"
	"math"
	"sync"
	"time"
)

// AccessPattern is the preheater's per-key model, updated on every get
// (hit or miss) and consulted on each preheat cycle (spec.md §4.4).
type AccessPattern struct {
	Key          string
	SampleCount  int64
	LastAccess   time.Time
	MeanInterval time.Duration
	Confidence   float64

	AccuracyHits  int64
	AccuracyTotal int64

	varM2 float64 // Welford running variance accumulator, in seconds^2
	mean  float64 // running mean interval, in seconds
}

func (p *AccessPattern) observe(at time.Time) {
	if !p.LastAccess.IsZero() {
		interval := at.Sub(p.LastAccess).Seconds()
		p.SampleCount++
		n := float64(p.SampleCount)
		delta := interval - p.mean
		p.mean += delta / n
		p.varM2 += delta * (interval - p.mean)
		p.MeanInterval = time.Duration(p.mean * float64(time.Second))
		p.Confidence = p.confidenceScore()
	}
	p.LastAccess = at
}

// confidenceScore rewards both sample volume and interval regularity:
// a key accessed at wildly varying intervals predicts poorly even with
// many samples.
func (p *AccessPattern) confidenceScore() float64 {
	if p.SampleCount < 2 || p.mean <= 0 {
		return 0
	}
	variance := p.varM2 / float64(p.SampleCount)
	stddev := math.Sqrt(variance)
	regularity := 1 - stddev/p.mean
	if regularity < 0 {
		regularity = 0
	}
	volume := float64(p.SampleCount) / 10
	if volume > 1 {
		volume = 1
	}
	return regularity * volume
}

func (p *AccessPattern) predictedNext() time.Time {
	return p.LastAccess.Add(p.MeanInterval)
}

type accessEvent struct {
	key string
	at  time.Time
}

// preheater implements spec.md §4.4's predictive preheater: it tracks
// AccessPattern per key and, on a timer, enqueues keys whose predicted
// next access falls inside the preheat window for a background fill.
type preheater[V any] struct {
	interval           time.Duration
	confidenceThresh   float64
	window             time.Duration
	minSamples         int64
	maxConcurrentFills int

	events chan accessEvent
	queue  chan string
	fillFn func(ctx context.Context, key string)

	mu       sync.Mutex
	patterns map[string]*AccessPattern
	queued   map[string]bool

	stop chan struct{}
	done chan struct{}
}

func newPreheater[V any](opts Options[V], fillFn func(ctx context.Context, key string)) *preheater[V] {
	return &preheater[V]{
		interval:           opts.PreheatInterval,
		confidenceThresh:   opts.PreheatConfidenceThreshold,
		window:             opts.PreheatWindow,
		minSamples:         int64(opts.PreheatMinSamples),
		maxConcurrentFills: opts.PreheatMaxConcurrentFills,
		events:             make(chan accessEvent, 4096),
		queue:              make(chan string, opts.PreheatMaxQueue),
		fillFn:             fillFn,
		patterns:           make(map[string]*AccessPattern),
		queued:             make(map[string]bool),
		stop:               make(chan struct{}),
		done:               make(chan struct{}),
	}
}

// observe records an access (hit or miss); never blocks the caller —
// a full event buffer drops the sample rather than stall a Get.
func (p *preheater[V]) observe(key string, at time.Time) {
	select {
	case p.events <- accessEvent{key: key, at: at}:
	default:
	}
}

// run drives the preheater until ctx is canceled or close is called.
// scan does nothing only when fillFn is nil. A Cache always passes its
// backgroundFill, so with no Loader configured keys are still queued
// and each fill returns without loading anything.
func (p *preheater[V]) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	workers := p.maxConcurrentFills
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.fillWorker(ctx)
		}()
	}

	for {
		select {
		case <-ctx.Done():
			close(p.queue)
			wg.Wait()
			return
		case <-p.stop:
			close(p.queue)
			wg.Wait()
			return
		case ev := <-p.events:
			p.record(ev)
		case <-ticker.C:
			p.scan()
		}
	}
}

func (p *preheater[V]) record(ev accessEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pat, ok := p.patterns[ev.key]
	if !ok {
		pat = &AccessPattern{Key: ev.key}
		p.patterns[ev.key] = pat
	}
	pat.observe(ev.at)
}

func (p *preheater[V]) scan() {
	if p.fillFn == nil {
		return
	}
	now := time.Now()

	p.mu.Lock()
	var candidates []string
	for key, pat := range p.patterns {
		if pat.SampleCount < p.minSamples || pat.Confidence < p.confidenceThresh {
			continue
		}
		predicted := pat.predictedNext()
		if predicted.Before(now) || predicted.Sub(now) > p.window {
			continue
		}
		if p.queued[key] {
			continue
		}
		candidates = append(candidates, key)
	}
	for _, key := range candidates {
		p.queued[key] = true
	}
	p.mu.Unlock()

	for _, key := range candidates {
		select {
		case p.queue <- key:
		default:
			p.mu.Lock()
			delete(p.queued, key)
			p.mu.Unlock()
		}
	}
}

func (p *preheater[V]) fillWorker(ctx context.Context) {
	for key := range p.queue {
		p.fillFn(ctx, key)
		p.mu.Lock()
		delete(p.queued, key)
		p.mu.Unlock()
	}
}

func (p *preheater[V]) close() {
	close(p.stop)
	<-p.done
}

func (p *preheater[V]) patternFor(key string) (AccessPattern, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pat, ok := p.patterns[key]
	if !ok {
		return AccessPattern{}, false
	}
	return *pat, true
}
