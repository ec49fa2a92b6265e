package repo

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rez-project/rez/pkg"
)

// scanCacheCapacity bounds the number of memoized file parses a single
// scanner keeps around. A repository tree can hold far more package
// files than will ever be re-scanned in one process lifetime, so the
// cache is bounded rather than left to grow with every path ever seen.
const scanCacheCapacity = 8192

// scanCacheEntry is one memoized parse of a package file, validated by
// (size, mtime) rather than content hashing (spec.md §4.3 phase 3).
type scanCacheEntry struct {
	size    int64
	modTime time.Time
	pkg     *pkg.Package
	err     error
}

// scanCache is the "single shared map guarded by a short critical
// section per entry" named in spec.md §5's shared-resource policy,
// backed by golang-lru/v2 so a long-lived scanner (the fsnotify-driven
// watch path) doesn't accumulate one entry per path ever scanned.
// golang-lru/v2's Cache is internally mutex-guarded, so no additional
// locking is needed here.
type scanCache struct {
	lru *lru.Cache[string, scanCacheEntry]
}

func newScanCache() *scanCache {
	c, err := lru.New[string, scanCacheEntry](scanCacheCapacity)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// scanCacheCapacity never is.
		panic(err)
	}
	return &scanCache{lru: c}
}

// lookup returns the cached parse for path if size/modTime still
// match, reporting a cache hit only in that case.
func (c *scanCache) lookup(path string, size int64, modTime time.Time) (scanCacheEntry, bool) {
	e, ok := c.lru.Get(path)
	if !ok || e.size != size || !e.modTime.Equal(modTime) {
		return scanCacheEntry{}, false
	}
	return e, true
}

func (c *scanCache) store(path string, size int64, modTime time.Time, p *pkg.Package, err error) {
	c.lru.Add(path, scanCacheEntry{size: size, modTime: modTime, pkg: p, err: err})
}

// invalidate drops path's cached entry, used by the fsnotify watcher
// when the backing file changes.
func (c *scanCache) invalidate(path string) {
	c.lru.Remove(path)
}

func (c *scanCache) len() int {
	return c.lru.Len()
}
