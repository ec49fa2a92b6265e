package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rez-project/rez/pkg"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// mmapThreshold is the file-size cutoff above which the scanner reads
// a package file through readLarge (a read-only memory map on Unix);
// readFile still copies the mapped bytes into a fresh buffer before
// the mapping is released.
const mmapThreshold = 64 * 1024

// defaultBatchSize is phase 2's directory batch size.
const defaultBatchSize = 64

// scanner walks a repository root concurrently, discovering and
// loading package definitions (spec.md §4.3, phases 1-3).
type scanner struct {
	root     string
	registry *pkg.Registry
	cache    *scanCache
	log      *zap.Logger

	maxWorkers int

	activeWorkers   int64
	peakConcurrency int64
}

func newScanner(root string, registry *pkg.Registry, log *zap.Logger) *scanner {
	workers := runtime.NumCPU() * 2
	if workers > 20 {
		workers = 20
	}
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &scanner{
		root:       root,
		registry:   registry,
		cache:      newScanCache(),
		log:        log,
		maxWorkers: workers,
	}
}

// scanResult pairs one discovered package with the path it was loaded
// from.
type scanResult struct {
	path string
	pkg  *pkg.Package
}

// scan performs the full phase 1/2/3 walk and returns every
// successfully parsed package.
func (s *scanner) scan(ctx context.Context) ([]*pkg.Package, error) {
	dirs, err := s.collectCandidateDirs()
	if err != nil {
		return nil, fmt.Errorf("repo: %w", err)
	}

	results := make([]*pkg.Package, 0, len(dirs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(s.maxWorkers))

	for start := 0; start < len(dirs); start += defaultBatchSize {
		end := start + defaultBatchSize
		if end > len(dirs) {
			end = len(dirs)
		}
		batch := dirs[start:end]

		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			s.trackConcurrency(1)
			defer s.trackConcurrency(-1)

			for _, dir := range batch {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p, err := s.scanDir(dir)
				if err != nil {
					s.log.Warn("repo: skipping unparseable package file", zap.String("dir", dir), zap.Error(err))
					continue
				}
				if p == nil {
					continue
				}
				mu.Lock()
				results = append(results, p)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// trackConcurrency updates the scanner's high-water mark of
// concurrently running scan batches.
func (s *scanner) trackConcurrency(delta int64) {
	cur := atomic.AddInt64(&s.activeWorkers, delta)
	for {
		peak := atomic.LoadInt64(&s.peakConcurrency)
		if cur <= peak {
			return
		}
		if atomic.CompareAndSwapInt64(&s.peakConcurrency, peak, cur) {
			return
		}
	}
}

// collectCandidateDirs is phase 1: a recursive walk of the whole tree
// (no depth limit is applied) collecting candidate package
// directories, excluding well-known non-package directories.
func (s *scanner) collectCandidateDirs() ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.root && isExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

// scanDir is phase 2+3 for a single directory: find the
// highest-priority package file present, and parse it (consulting the
// scan cache).
func (s *scanner) scanDir(dir string) (*pkg.Package, error) {
	for _, name := range packageFileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		return s.loadFile(path, info.Size(), info)
	}
	return nil, nil
}

func (s *scanner) loadFile(path string, size int64, info os.FileInfo) (*pkg.Package, error) {
	if entry, ok := s.cache.lookup(path, size, info.ModTime()); ok {
		return entry.pkg, entry.err
	}

	data, err := s.readFile(path, size)
	if err != nil {
		s.cache.store(path, size, info.ModTime(), nil, err)
		return nil, err
	}

	if !looksLikePackageFile(sniffHead(data)) {
		s.cache.store(path, size, info.ModTime(), nil, nil)
		return nil, nil
	}

	hint, ok := formatHintFor(path)
	if !ok {
		s.cache.store(path, size, info.ModTime(), nil, nil)
		return nil, nil
	}

	p, err := s.registry.Load(data, hint)
	s.cache.store(path, size, info.ModTime(), p, err)
	return p, err
}

func sniffHead(data []byte) []byte {
	const headLen = 256
	if len(data) <= headLen {
		return data
	}
	return data[:headLen]
}

func (s *scanner) readFile(path string, size int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if size > mmapThreshold {
		data, release, err := readLarge(f, size)
		if err != nil {
			return nil, err
		}
		defer release()
		cp := make([]byte, len(data))
		copy(cp, data)
		return cp, nil
	}
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}

// sortPackagesByVersionDescending sorts in place by name, then
// version-descending within each name, with versionless packages after
// versioned ones (spec.md §4.3 ordering guarantee).
func sortPackagesByVersionDescending(ps []*pkg.Package) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		if ps[i].Versionless != ps[j].Versionless {
			return ps[j].Versionless // versionless sorts after concrete versions
		}
		return ps[j].Version.Less(ps[i].Version)
	})
}
