package version

import (
	"fmt"
	"sort"
	"strings"
)

// Range is a version range: a set of versions described by one or
// more '|'-separated clauses, each of which is one or more
// ','-joined bounds ANDed together (so ">=1,<2" means >=1 AND <2, the
// single-bound case being the common one), where each bound is one of:
//
//	==v        exactly v
//	>v  >=v    strictly / inclusively greater than v
//	<v  <=v    strictly / inclusively less than v
//	v+         v or any later version (equivalent to >=v)
//	v..w       inclusive span, v through w
//	v          bare version, equivalent to >=v, <v.Next()
//	*          every version
//
// Internally a Range is normalized to a sorted, non-overlapping list
// of half-open intervals, so Contains, Intersect, and Union are all
// simple interval-list operations rather than clause-by-clause
// special cases.
type Range struct {
	intervals []interval
	raw       string
}

// Any matches every version.
func Any() Range {
	return Range{intervals: []interval{fullInterval()}, raw: "*"}
}

// None matches no version.
func None() Range {
	return Range{raw: "!"}
}

// ParseRange parses s as a rez range expression.
func ParseRange(s string) (Range, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Range{}, fmt.Errorf("range: empty range expression")
	}
	if trimmed == "*" {
		return Any(), nil
	}

	var ivs []interval
	for _, clause := range strings.Split(trimmed, "|") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			return Range{}, fmt.Errorf("range: %q has an empty clause", s)
		}
		iv, err := parseClause(clause)
		if err != nil {
			return Range{}, fmt.Errorf("range: %q: %w", s, err)
		}
		ivs = append(ivs, iv)
	}
	return normalizeRange(ivs, s), nil
}

// MustParseRange is like ParseRange but panics on error.
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// parseClause parses one '|'-separated clause, which is itself one or
// more ','-separated bounds ANDed together (spec.md §8's S2 scenario:
// ">=1,<2" is the two bounds ">=1" and "<2" intersected, not a single
// term). A clause with no comma is just that one bound.
func parseClause(clause string) (interval, error) {
	terms := strings.Split(clause, ",")
	iv, err := parseBound(strings.TrimSpace(terms[0]))
	if err != nil {
		return interval{}, err
	}
	for _, term := range terms[1:] {
		term = strings.TrimSpace(term)
		if term == "" {
			return interval{}, fmt.Errorf("%q has an empty comma-joined bound", clause)
		}
		b, err := parseBound(term)
		if err != nil {
			return interval{}, err
		}
		iv = iv.intersect(b)
	}
	return iv, nil
}

// parseBound parses a single range bound: one of the clause forms
// documented on Range, minus the ','-joining parseClause itself
// handles.
func parseBound(clause string) (interval, error) {
	// above is the least version greater than v: v followed by a
	// numeric token below every parseable one.
	above := func(v Version) Version {
		return Version{tokens: append(append([]token(nil), v.tokens...), token{numeric: true, num: -1})}
	}
	switch {
	case strings.HasPrefix(clause, "=="):
		v, err := Parse(strings.TrimSpace(clause[2:]))
		if err != nil {
			return interval{}, err
		}
		return interval{lo: v, hi: above(v)}, nil
	case strings.HasPrefix(clause, ">="):
		v, err := Parse(strings.TrimSpace(clause[2:]))
		if err != nil {
			return interval{}, err
		}
		return interval{lo: v, hi: Infinity()}, nil
	case strings.HasPrefix(clause, "<="):
		v, err := Parse(strings.TrimSpace(clause[2:]))
		if err != nil {
			return interval{}, err
		}
		return interval{lo: Empty(), hi: above(v)}, nil
	case strings.HasPrefix(clause, ">"):
		v, err := Parse(strings.TrimSpace(clause[1:]))
		if err != nil {
			return interval{}, err
		}
		return interval{lo: above(v), hi: Infinity()}, nil
	case strings.HasPrefix(clause, "<"):
		v, err := Parse(strings.TrimSpace(clause[1:]))
		if err != nil {
			return interval{}, err
		}
		return interval{lo: Empty(), hi: v}, nil
	case strings.HasSuffix(clause, "+"):
		v, err := Parse(strings.TrimSpace(clause[:len(clause)-1]))
		if err != nil {
			return interval{}, err
		}
		return interval{lo: v, hi: Infinity()}, nil
	case strings.Contains(clause, ".."):
		parts := strings.SplitN(clause, "..", 2)
		lo, err := Parse(strings.TrimSpace(parts[0]))
		if err != nil {
			return interval{}, err
		}
		hi, err := Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			return interval{}, err
		}
		if hi.Less(lo) {
			return interval{}, fmt.Errorf("span %q has upper bound less than lower bound", clause)
		}
		return interval{lo: lo, hi: above(hi)}, nil
	default:
		v, err := Parse(clause)
		if err != nil {
			return interval{}, err
		}
		return interval{lo: v, hi: v.Next()}, nil
	}
}

func normalizeRange(ivs []interval, raw string) Range {
	ivs = dropEmpty(ivs)
	if len(ivs) == 0 {
		return Range{raw: raw}
	}
	sort.Slice(ivs, func(i, j int) bool {
		return ivs[i].lo.Less(ivs[j].lo)
	})
	merged := ivs[:1]
	for _, iv := range ivs[1:] {
		last := &merged[len(merged)-1]
		if last.adjoinsOrOverlaps(iv) {
			*last = last.merge(iv)
			continue
		}
		merged = append(merged, iv)
	}
	return Range{intervals: merged, raw: raw}
}

func dropEmpty(ivs []interval) []interval {
	out := ivs[:0]
	for _, iv := range ivs {
		if !iv.empty() {
			out = append(out, iv)
		}
	}
	return out
}

// Contains reports whether v falls within r.
func (r Range) Contains(v Version) bool {
	for _, iv := range r.intervals {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

// IsNone reports whether r matches no version.
func (r Range) IsNone() bool { return len(r.intervals) == 0 }

// IsAny reports whether r matches every version.
func (r Range) IsAny() bool {
	return len(r.intervals) == 1 && r.intervals[0].lo.IsEmpty() && r.intervals[0].hi.IsInfinity()
}

// Intersect returns the range matching versions in both r and other.
// Both operands are already normalized interval lists, so this is a
// standard sorted-interval-list intersection (spec's mandated
// normalize-then-operate discipline: there is no ad hoc clause-pair
// comparison here).
func (r Range) Intersect(other Range) Range {
	var out []interval
	i, j := 0, 0
	for i < len(r.intervals) && j < len(other.intervals) {
		a, b := r.intervals[i], other.intervals[j]
		iv := a.intersect(b)
		if !iv.empty() {
			out = append(out, iv)
		}
		if a.hi.Compare(b.hi) < 0 {
			i++
		} else {
			j++
		}
	}
	return normalizeRange(out, r.raw+" & "+other.raw)
}

// Union returns the range matching versions in either r or other.
func (r Range) Union(other Range) Range {
	all := append(append([]interval{}, r.intervals...), other.intervals...)
	return normalizeRange(all, r.raw+" | "+other.raw)
}

// String renders r back to a canonical clause form.
func (r Range) String() string {
	if len(r.intervals) == 0 {
		return "!"
	}
	parts := make([]string, len(r.intervals))
	for i, iv := range r.intervals {
		parts[i] = iv.String()
	}
	return strings.Join(parts, " | ")
}
