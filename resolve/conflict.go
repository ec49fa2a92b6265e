package resolve

import (
	"fmt"

	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/version"
)

// ConflictStrategy selects how the solver reacts when two live
// requirements on the same package name cannot both be satisfied
// (spec.md §4.5's four named strategies).
type ConflictStrategy int

const (
	// FailOnConflict aborts resolution immediately with a Solver error
	// enumerating the conflict. This is the zero value so a
	// zero-valued SolverConfig fails safe rather than silently
	// relaxing a requirement.
	FailOnConflict ConflictStrategy = iota
	// LatestWins reorders candidates so the highest version
	// compatible with any of the conflicting ranges is chosen; ranges
	// that exclude it are relaxed and the relaxation is recorded.
	LatestWins
	// EarliestWins is LatestWins' symmetric counterpart.
	EarliestWins
	// FindCompatible computes the intersection of all live ranges for
	// the conflicted name and picks the latest version within it,
	// falling back to LatestWins if the intersection is empty.
	FindCompatible
)

func (s ConflictStrategy) String() string {
	switch s {
	case FailOnConflict:
		return "fail_on_conflict"
	case LatestWins:
		return "latest_wins"
	case EarliestWins:
		return "earliest_wins"
	case FindCompatible:
		return "find_compatible"
	default:
		return "unknown"
	}
}

// ConflictKind distinguishes the ways a resolution can conflict, per
// spec.md §4.5's "Conflict detection" paragraph.
type ConflictKind string

const (
	// RangeConflict: two live requirements on the same name have an
	// empty intersection, or a candidate violates a live range.
	RangeConflict ConflictKind = "range_conflict"
	// RequiresConflict: a chosen package's own requires conflicts with
	// an earlier choice already in the solution.
	RequiresConflict ConflictKind = "requires_conflict"
	// CircularDependency: a DFS branch revisited a name already in its
	// own visiting set.
	CircularDependency ConflictKind = "circular_dependency"
)

// ConflictRecord describes one detected conflict, surfaced in
// ResolutionResult.Conflicts regardless of whether the configured
// strategy ultimately resolved it.
type ConflictRecord struct {
	Kind ConflictKind
	Name string

	// Ranges is every live range in force for Name at the time of
	// conflict, in the order they were asserted.
	Ranges []version.Range
	// Sources names the requiring package for each entry in Ranges,
	// parallel by index ("" for an original top-level requirement).
	Sources []string

	Resolution ConflictStrategy
	// Resolved is the version chosen after applying Resolution, if any.
	Resolved   version.Version
	ResolvedOK bool
	Message    string
}

func (c ConflictRecord) String() string {
	return fmt.Sprintf("%s: %s (%s)", c.Kind, c.Name, c.Message)
}

// liveRequirement is one requirement currently in force for a name,
// either an original top-level requirement or one propagated from an
// already-chosen package.
type liveRequirement struct {
	Range  version.Range
	Source string // requiring package's Identity string, "" if top-level
}

// intersectRanges narrows the set of live ranges to their common
// intersection. An empty slice or a slice of a single range is
// trivially satisfiable; version.Range composition already supports
// this via successive Intersect calls.
func intersectRanges(live []liveRequirement) (version.Range, bool) {
	if len(live) == 0 {
		return version.Any(), true
	}
	result := live[0].Range
	for _, lr := range live[1:] {
		result = result.Intersect(lr.Range)
		if result.IsNone() {
			return version.Range{}, false
		}
	}
	return result, true
}

// detectRangeConflict reports whether the live requirements on name
// have a non-empty intersection; if not it builds the ConflictRecord
// spec.md §4.5 describes.
func detectRangeConflict(name string, live []liveRequirement) (ConflictRecord, bool) {
	if _, ok := intersectRanges(live); ok {
		return ConflictRecord{}, false
	}
	rec := ConflictRecord{
		Kind:    RangeConflict,
		Name:    name,
		Message: fmt.Sprintf("no version of %q satisfies all live requirements", name),
	}
	for _, lr := range live {
		rec.Ranges = append(rec.Ranges, lr.Range)
		rec.Sources = append(rec.Sources, lr.Source)
	}
	return rec, true
}

// resolveConflict applies strategy to the live requirements and a
// candidate pool for name, per spec.md §4.5's strategy descriptions.
// It returns the chosen package, or ok=false if the strategy could not
// produce one (FailOnConflict always returns ok=false; callers turn
// that into a Solver error).
func resolveConflict(strategy ConflictStrategy, name string, live []liveRequirement, candidates []*pkg.Package) (*pkg.Package, ConflictRecord, bool) {
	rec := ConflictRecord{Kind: RangeConflict, Name: name, Resolution: strategy}
	for _, lr := range live {
		rec.Ranges = append(rec.Ranges, lr.Range)
		rec.Sources = append(rec.Sources, lr.Source)
	}

	switch strategy {
	case FailOnConflict:
		rec.Message = fmt.Sprintf("conflicting requirements on %q, strategy is fail_on_conflict", name)
		return nil, rec, false

	case LatestWins:
		chosen := highestSatisfyingAny(candidates, live, true)
		if chosen == nil {
			rec.Message = fmt.Sprintf("no candidate of %q satisfies any live range", name)
			return nil, rec, false
		}
		rec.Resolved, rec.ResolvedOK = versionOf(chosen), true
		rec.Message = fmt.Sprintf("relaxed conflicting ranges on %q in favor of %s", name, versionOf(chosen))
		return chosen, rec, true

	case EarliestWins:
		chosen := highestSatisfyingAny(candidates, live, false)
		if chosen == nil {
			rec.Message = fmt.Sprintf("no candidate of %q satisfies any live range", name)
			return nil, rec, false
		}
		rec.Resolved, rec.ResolvedOK = versionOf(chosen), true
		rec.Message = fmt.Sprintf("relaxed conflicting ranges on %q in favor of %s", name, versionOf(chosen))
		return chosen, rec, true

	case FindCompatible:
		if intersection, ok := intersectRanges(live); ok {
			for _, c := range sortedByVersion(candidates, true) {
				if intersection.Contains(versionOf(c)) {
					rec.Resolved, rec.ResolvedOK = versionOf(c), true
					rec.Message = fmt.Sprintf("found %s compatible with all live ranges on %q", versionOf(c), name)
					return c, rec, true
				}
			}
		}
		// Intersection empty or nothing in it; fall back to LatestWins.
		return resolveConflict(LatestWins, name, live, candidates)

	default:
		rec.Message = fmt.Sprintf("unknown conflict strategy %v", strategy)
		return nil, rec, false
	}
}

func versionOf(p *pkg.Package) version.Version {
	if p.Versionless {
		return version.Empty()
	}
	return p.Version
}

func sortedByVersion(ps []*pkg.Package, descending bool) []*pkg.Package {
	out := append([]*pkg.Package(nil), ps...)
	sortCandidates(out, descending)
	return out
}

// highestSatisfyingAny returns the highest (or lowest, if
// preferLatest is false) version candidate that satisfies at least
// one of the live ranges.
func highestSatisfyingAny(candidates []*pkg.Package, live []liveRequirement, preferLatest bool) *pkg.Package {
	for _, c := range sortedByVersion(candidates, preferLatest) {
		v := versionOf(c)
		for _, lr := range live {
			if lr.Range.Contains(v) {
				return c
			}
		}
	}
	return nil
}
