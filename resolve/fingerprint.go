package resolve

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/rez-project/rez/cache"
	"github.com/rez-project/rez/dep"
	"go.uber.org/zap"
)

// Fingerprint computes the canonical cache key spec.md §4.5's
// "Caching" paragraph describes: a hash of the sorted requirements,
// the repository's own fingerprint (an opaque caller-supplied string,
// e.g. a content digest or generation counter — resolve has no
// opinion on how a Repository computes one), and the solver config.
// Sorting the requirements first makes the key independent of the
// caller's original ordering.
func Fingerprint(requirements []dep.Requirement, repoFingerprint string, cfg SolverConfig) string {
	sorted := append([]dep.Requirement(nil), requirements...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	var b strings.Builder
	for _, r := range sorted {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "repo=%s\n", repoFingerprint)
	fmt.Fprintf(&b, "strategy=%s\n", cfg.Strategy)
	fmt.Fprintf(&b, "preferLatest=%v\n", cfg.PreferLatest)
	fmt.Fprintf(&b, "allowPrerelease=%v\n", cfg.AllowPrerelease)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// CachingSolver fronts a Solver with the §4.4 cache engine, keyed by
// Fingerprint, per spec.md §4.5's "Caching" paragraph.
type CachingSolver struct {
	Solver          *Solver
	Cache           *cache.Cache[*ResolutionResult]
	RepoFingerprint func() string
	Log             *zap.Logger
}

// NewCachingSolver wraps s with c, using fpFn to obtain the
// repository's current fingerprint on every call (so a repository
// change invalidates stale cache entries without requiring an
// explicit cache.Remove).
func NewCachingSolver(s *Solver, c *cache.Cache[*ResolutionResult], fpFn func() string, log *zap.Logger) *CachingSolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachingSolver{Solver: s, Cache: c, RepoFingerprint: fpFn, Log: log}
}

// Solve returns the cached ResolutionResult for this exact
// (requirements, repo state, config) tuple if present, else runs the
// solver and caches the outcome. Cache errors degrade to a plain
// solve, per the cache engine's own "errors are non-fatal" contract
// (spec.md §4.4).
func (cs *CachingSolver) Solve(ctx context.Context, requirements []dep.Requirement) (*ResolutionResult, error) {
	key := Fingerprint(requirements, cs.RepoFingerprint(), cs.Solver.Config)

	if result, ok := cs.Cache.Get(ctx, key); ok {
		return result, nil
	}

	result, err := cs.Cache.Fill(ctx, key, func(ctx context.Context, _ string) (*ResolutionResult, error) {
		return cs.Solver.Solve(ctx, requirements)
	})
	if err != nil {
		cs.Log.Warn("resolve: solve failed, not caching", zap.Error(err))
		return nil, err
	}
	return result, nil
}
