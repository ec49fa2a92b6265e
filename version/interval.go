package version

// interval is a single contiguous span of versions: lo <= v < hi,
// where lo defaults to Empty() and hi defaults to Infinity() when
// unbounded. Both ends are represented as inclusive-lo/exclusive-hi
// internally (a closed upper bound "<=v" is normalized to an
// exclusive bound just above v), which is what makes intersection and
// containment simple value comparisons instead of needing separate
// inclusive/exclusive bookkeeping per side.
type interval struct {
	lo Version // inclusive
	hi Version // exclusive
}

func fullInterval() interval {
	return interval{lo: Empty(), hi: Infinity()}
}

func (iv interval) contains(v Version) bool {
	return !v.Less(iv.lo) && v.Less(iv.hi)
}

// empty reports whether iv contains no versions at all.
func (iv interval) empty() bool {
	return !iv.lo.Less(iv.hi)
}

// intersect returns the overlap of iv and other. The result is empty
// (check with empty()) when the two intervals don't overlap.
func (iv interval) intersect(other interval) interval {
	lo := iv.lo
	if other.lo.Compare(lo) > 0 {
		lo = other.lo
	}
	hi := iv.hi
	if other.hi.Compare(hi) < 0 {
		hi = other.hi
	}
	return interval{lo: lo, hi: hi}
}

// adjoinsOrOverlaps reports whether iv and other describe a single
// contiguous run of versions when merged (used by union to decide
// whether to coalesce two intervals into one or keep them separate).
func (iv interval) adjoinsOrOverlaps(other interval) bool {
	// iv assumed to sort at or before other by lo.
	return !other.lo.Less(iv.lo) && other.lo.Compare(iv.hi) <= 0
}

func (iv interval) merge(other interval) interval {
	lo := iv.lo
	if other.lo.Less(lo) {
		lo = other.lo
	}
	hi := iv.hi
	if other.hi.Compare(hi) > 0 {
		hi = other.hi
	}
	return interval{lo: lo, hi: hi}
}

func (iv interval) String() string {
	// A bound built by parseBound's above() ends in a -1 numeric token;
	// it renders as ">v" (lower) or "<=v" (upper) so the text parses back.
	loOp, lo := ">=", iv.lo
	if n := len(lo.tokens); n > 0 && lo.tokens[n-1].numeric && lo.tokens[n-1].num < 0 {
		loOp, lo = ">", Version{tokens: lo.tokens[:n-1]}
	}
	hiOp, hi := "<", iv.hi
	if n := len(hi.tokens); n > 0 && hi.tokens[n-1].numeric && hi.tokens[n-1].num < 0 {
		hiOp, hi = "<=", Version{tokens: hi.tokens[:n-1]}
	}
	switch {
	case iv.lo.IsEmpty() && iv.hi.IsInfinity():
		return ">=* (unbounded)"
	case iv.hi.IsInfinity():
		return loOp + lo.String()
	case iv.lo.IsEmpty():
		return hiOp + hi.String()
	case loOp == ">=" && iv.hi.Compare(iv.lo.Next()) == 0:
		return iv.lo.String()
	default:
		return loOp + lo.String() + ", " + hiOp + hi.String()
	}
}
