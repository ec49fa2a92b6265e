package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/version"
)

// SolverConfig bounds and steers one Solve call, per spec.md §4.5's
// "solver config" input.
type SolverConfig struct {
	MaxAttempts int           // 0 means unlimited
	MaxTime     time.Duration // 0 means unlimited
	Strategy    ConflictStrategy

	PreferLatest    bool
	AllowPrerelease bool

	// Parallel is carried in the config but Solve does not read it:
	// candidate fetches always run one at a time on the calling
	// goroutine, as does the backtracking state machine.
	Parallel bool
	FailFast bool
}

// DefaultSolverConfig mirrors rez's historical resolver defaults:
// latest-wins candidate ordering, prereleases excluded, fail fast on
// the first unsatisfiable requirement.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MaxAttempts:     10000,
		MaxTime:         30 * time.Second,
		Strategy:        FailOnConflict,
		PreferLatest:    true,
		AllowPrerelease: false,
		FailFast:        true,
	}
}

// ResolvedPackage is one package chosen into a resolution, along with
// the variant selected and who required it.
type ResolvedPackage struct {
	Package    *pkg.Package
	VariantIdx int
	// RequiredBy names every package (or "" for a top-level
	// requirement) that contributed a live range for this name.
	RequiredBy []string
}

// ResolutionStats reports the work the solver performed, per
// spec.md §4.5's "stats" output field.
type ResolutionStats struct {
	Attempts        int
	Backtracks      int
	CandidatesTried int
	Duration        time.Duration
	TimedOut        bool
	HitAttemptCap   bool
}

// ResolutionResult is the solver's complete output.
type ResolutionResult struct {
	ResolvedPackages   map[string]*ResolvedPackage
	FailedRequirements []dep.Requirement
	Conflicts          []ConflictRecord
	Stats              ResolutionStats
	// Graph is built from ResolvedPackages once solving finishes,
	// suitable for Graph.Canon and comparison in tests.
	Graph *Graph
}

// Solver runs the hybrid BFS-with-backtracking algorithm of spec.md
// §4.5 against a Client.
type Solver struct {
	Client Client
	Config SolverConfig
}

// NewSolver constructs a Solver with cfg as given. Unset fields are not
// defaulted (MaxAttempts==0 and MaxTime==0 are treated as "unlimited"
// by Solve — callers who want the historical defaults should start
// from DefaultSolverConfig()).
func NewSolver(c Client, cfg SolverConfig) *Solver {
	return &Solver{Client: c, Config: cfg}
}

// queueItem is one pending requirement, carrying the name of the
// package that introduced it ("" for a top-level requirement) so
// conflicts and the eventual Graph can attribute edges correctly.
type queueItem struct {
	req    dep.Requirement
	source string
}

// solverError is a fatal (non-recoverable) condition — distinct from
// a soft failure recorded in FailedRequirements/Conflicts — mirroring
// spec.md §4.5's "Solver error" failure mode.
type solverError struct {
	msg string
}

func (e *solverError) Error() string { return e.msg }

// Solve performs dependency resolution for the given top-level
// requirements. It never runs the Go toolchain-adjacent operations;
// all candidate data comes from s.Client.
func (s *Solver) Solve(ctx context.Context, requirements []dep.Requirement) (*ResolutionResult, error) {
	start := time.Now()
	deadline := time.Time{}
	if s.Config.MaxTime > 0 {
		deadline = start.Add(s.Config.MaxTime)
	}

	st := &solveState{
		solver: s,
		live:   make(map[string][]liveRequirement),
		chosen: make(map[string]*ResolvedPackage),
		result: &ResolutionResult{ResolvedPackages: make(map[string]*ResolvedPackage)},
	}

	queue := make([]queueItem, 0, len(requirements))
	for _, r := range requirements {
		queue = append(queue, queueItem{req: r, source: ""})
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			st.result.Stats.TimedOut = true
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			st.result.Stats.TimedOut = true
			break
		}
		if s.Config.MaxAttempts > 0 && st.result.Stats.Attempts >= s.Config.MaxAttempts {
			st.result.Stats.HitAttemptCap = true
			break
		}

		item := queue[0]
		queue = queue[1:]
		st.result.Stats.Attempts++

		next, err := st.step(ctx, item, queue)
		if err != nil {
			var se *solverError
			if ok := asSolverError(err, &se); ok {
				return nil, se
			}
			return nil, err
		}
		queue = next
		if !s.Config.FailFast && st.abandoned {
			st.abandoned = false
			continue
		}
		if st.abandoned {
			break
		}
	}

	for name, rp := range st.chosen {
		st.result.ResolvedPackages[name] = rp
	}
	st.result.Stats.Duration = time.Since(start)
	st.buildGraph()
	return st.result, nil
}

func asSolverError(err error, target **solverError) bool {
	se, ok := err.(*solverError)
	if ok {
		*target = se
	}
	return ok
}

// solveState is the mutable resolution-in-progress state threaded
// through step; it exists so Solve's loop stays readable while the
// conflict/backtrack logic has somewhere to keep its bookkeeping.
type solveState struct {
	solver *Solver

	live   map[string][]liveRequirement
	chosen map[string]*ResolvedPackage

	result    *ResolutionResult
	abandoned bool
}

// step processes one queue item: asserting an existing choice still
// satisfies it, or selecting (and recursively expanding) a new
// candidate. It returns the updated queue.
func (st *solveState) step(ctx context.Context, item queueItem, queue []queueItem) ([]queueItem, error) {
	name := item.req.Name

	if item.req.IsConflict() {
		// An ephemeral conflict marker: if a package satisfying it is
		// already chosen, that's a hard conflict; rez's semantics are
		// "must not appear", so record it and let FailFast decide.
		if existing, ok := st.chosen[name]; ok && item.req.Range.Contains(versionOf(existing.Package)) {
			st.result.Conflicts = append(st.result.Conflicts, ConflictRecord{
				Kind:    RequiresConflict,
				Name:    name,
				Message: fmt.Sprintf("%q is present but conflict-marked by %s", name, item.source),
			})
			st.abandoned = st.solver.Config.FailFast
		}
		return queue, nil
	}

	st.live[name] = append(st.live[name], liveRequirement{Range: item.req.Range, Source: item.source})

	if existing, ok := st.chosen[name]; ok {
		if !item.req.SatisfiedBy(versionOf(existing.Package)) {
			// The already-chosen candidate violates this newly live
			// range, a conflict per spec.md §4.5 regardless of whether
			// the live ranges as a whole still intersect.
			return st.backtrack(ctx, name, queue)
		}
		existing.RequiredBy = append(existing.RequiredBy, item.source)
		if item.source != "" && st.hasCycle(name) {
			existing.RequiredBy = existing.RequiredBy[:len(existing.RequiredBy)-1]
			st.result.Conflicts = append(st.result.Conflicts, ConflictRecord{
				Kind:    CircularDependency,
				Name:    name,
				Message: fmt.Sprintf("circular dependency detected at %q", name),
			})
			st.abandoned = st.solver.Config.FailFast
		}
		return queue, nil
	}

	if item.req.IsWeak() {
		// A weak reference never pulls the package in on its own.
		return queue, nil
	}

	if _, conflict := detectRangeConflict(name, st.live[name]); conflict {
		return st.backtrack(ctx, name, queue)
	}

	candidates, err := st.solver.Client.MatchingVersions(ctx, item.req, st.solver.Config.PreferLatest, st.solver.Config.AllowPrerelease)
	if err != nil {
		return nil, fmt.Errorf("resolve: fetching candidates for %q: %w", name, err)
	}
	st.result.Stats.CandidatesTried += len(candidates)

	if len(candidates) == 0 {
		st.result.FailedRequirements = append(st.result.FailedRequirements, item.req)
		st.abandoned = st.solver.Config.FailFast
		return queue, nil
	}

	for _, cand := range candidates {
		for _, variant := range pkg.VariantsOf(cand) {
			extended, ok := st.tryExtend(name, item.source, cand, variant, queue)
			if ok {
				return extended, nil
			}
			st.result.Stats.Backtracks++
		}
	}

	// No candidate/variant combination avoided conflict.
	st.result.FailedRequirements = append(st.result.FailedRequirements, item.req)
	st.abandoned = st.solver.Config.FailFast
	return queue, nil
}

// tryExtend speculatively extends the solution with one candidate
// variant, enqueuing its transitive requirements. It does not mutate
// st.chosen/st.live until it has confirmed the variant itself doesn't
// immediately conflict with an already-chosen package's requirement
// (spec.md §4.5 step 4's "chosen package's requires conflicting with
// an earlier choice" case).
func (st *solveState) tryExtend(name, source string, cand *pkg.Package, variant pkg.Variant, queue []queueItem) ([]queueItem, bool) {
	rp := &ResolvedPackage{Package: cand, VariantIdx: variant.Index, RequiredBy: []string{source}}
	st.chosen[name] = rp

	newQueue := append(append([]queueItem(nil), queue...), reqsToQueueItems(cand.AllRequires(), name)...)
	newQueue = append(newQueue, reqsToQueueItems(variant.OverridingRequires, name)...)

	if st.hasCycle(name) {
		delete(st.chosen, name)
		st.result.Conflicts = append(st.result.Conflicts, ConflictRecord{
			Kind:    CircularDependency,
			Name:    name,
			Message: fmt.Sprintf("circular dependency detected at %q", name),
		})
		return nil, false
	}

	return newQueue, true
}

func reqsToQueueItems(reqs []dep.Requirement, source string) []queueItem {
	out := make([]queueItem, len(reqs))
	for i, r := range reqs {
		out[i] = queueItem{req: r, source: source}
	}
	return out
}

// hasCycle runs a DFS from start over st.chosen's RequiredBy edges
// (inverted: a package is "depended on by" its RequiredBy sources),
// maintaining a per-branch visiting set, per spec.md §4.5's circular
// dependency detection.
func (st *solveState) hasCycle(start string) bool {
	visiting := make(map[string]bool)
	var dfs func(name string) bool
	dfs = func(name string) bool {
		if visiting[name] {
			return true
		}
		visiting[name] = true
		defer delete(visiting, name)
		rp, ok := st.chosen[name]
		if !ok {
			return false
		}
		for _, src := range rp.RequiredBy {
			if src == "" {
				continue
			}
			if dfs(src) {
				return true
			}
		}
		return false
	}
	return dfs(start)
}

// backtrack applies the configured ConflictStrategy to a detected
// range conflict. On success it replaces st.chosen[name] (if already
// chosen) with the resolved candidate and returns the queue with that
// candidate's requirements appended. On failure it records the
// conflict and returns a Solver error under FailOnConflict; under the
// other strategies it marks the state abandoned when FailFast is set.
func (st *solveState) backtrack(ctx context.Context, name string, queue []queueItem) ([]queueItem, error) {
	req := dep.Requirement{Name: name, Range: version.Any()}
	candidates, err := st.solver.Client.MatchingVersions(ctx, req, st.solver.Config.PreferLatest, st.solver.Config.AllowPrerelease)
	if err != nil {
		return nil, fmt.Errorf("resolve: fetching candidates for %q during conflict resolution: %w", name, err)
	}

	chosen, rec, ok := resolveConflict(st.solver.Config.Strategy, name, st.live[name], candidates)
	st.result.Conflicts = append(st.result.Conflicts, rec)
	if !ok {
		if st.solver.Config.Strategy == FailOnConflict {
			return nil, &solverError{msg: rec.Message}
		}
		st.abandoned = st.solver.Config.FailFast
		return queue, nil
	}

	variants := pkg.VariantsOf(chosen)
	rp := &ResolvedPackage{Package: chosen, VariantIdx: variants[0].Index}
	if existing, had := st.chosen[name]; had {
		rp.RequiredBy = existing.RequiredBy
	}
	st.chosen[name] = rp
	return append(append([]queueItem(nil), queue...), reqsToQueueItems(chosen.AllRequires(), name)...), nil
}

// buildGraph projects the final st.chosen map into a Graph, with a
// synthetic root node (index 0) fanning out to every top-level
// resolved package. It is not canonicalized; callers wanting a stable
// comparison should call Graph.Canon themselves.
func (st *solveState) buildGraph() {
	g := &Graph{}
	g.AddNode(Identity{Name: "__root__", Versionless: true}, 0)

	ids := make(map[string]NodeID, len(st.chosen))
	for name, rp := range st.chosen {
		id := g.AddNode(identityOf(rp.Package), rp.VariantIdx)
		ids[name] = id
	}
	for name, rp := range st.chosen {
		to := ids[name]
		for _, src := range rp.RequiredBy {
			from := NodeID(0)
			if src != "" {
				if id, ok := ids[src]; ok {
					from = id
				}
			}
			_ = g.AddEdge(from, to, name, dep.Type{})
		}
	}
	st.result.Graph = g
}

func identityOf(p *pkg.Package) Identity {
	if p.Versionless {
		return Identity{Name: p.Name, Versionless: true}
	}
	return Identity{Name: p.Name, Version: p.Version.String()}
}
