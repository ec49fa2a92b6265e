package version

import "testing"

func TestRangeContains(t *testing.T) {
	tests := []struct {
		rangeExpr string
		version   string
		want      bool
	}{
		{"*", "0.0.1", true},
		{"==1.0.0", "1.0.0", true},
		{"==1.0.0", "1.0.1", false},
		{">1.0", "1.0.1", true},
		{">1.0", "1.0", false},
		{">=1.0", "1.0", true},
		{"<2.0", "1.9.9", true},
		{"<2.0", "2.0", false},
		{"<=2.0", "2.0", true},
		{"1.0+", "1.0", true},
		{"1.0+", "0.9", false},
		{"1.0..2.0", "1.5", true},
		{"1.0..2.0", "2.0", true},
		{"1.0..2.0", "2.0.1", false},
		{"1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", false},
		{"1.0|2.0", "1.0", true},
		{"1.0|2.0", "2.0", true},
		{"1.0|2.0", "1.5", false},
	}
	for _, tt := range tests {
		r, err := ParseRange(tt.rangeExpr)
		if err != nil {
			t.Fatalf("ParseRange(%q) error: %v", tt.rangeExpr, err)
		}
		v := MustParse(tt.version)
		if got := r.Contains(v); got != tt.want {
			t.Errorf("ParseRange(%q).Contains(%q) = %v, want %v", tt.rangeExpr, tt.version, got, tt.want)
		}
	}
}

func TestRangeIntersect(t *testing.T) {
	a := MustParseRange("1.0..2.0")
	b := MustParseRange("1.5..3.0")
	got := a.Intersect(b)

	if !got.Contains(MustParse("1.5")) {
		t.Errorf("intersection should contain 1.5")
	}
	if got.Contains(MustParse("1.2")) {
		t.Errorf("intersection should not contain 1.2")
	}
	if got.Contains(MustParse("2.5")) {
		t.Errorf("intersection should not contain 2.5")
	}
}

func TestRangeIntersectDisjoint(t *testing.T) {
	a := MustParseRange("1.0..2.0")
	b := MustParseRange("3.0..4.0")
	got := a.Intersect(b)
	if !got.IsNone() {
		t.Errorf("disjoint ranges should intersect to none, got %v", got)
	}
}

func TestRangeUnionIdempotentAndCommutative(t *testing.T) {
	a := MustParseRange("1.0..2.0")
	b := MustParseRange("1.5..3.0")

	ab := a.Union(b)
	ba := b.Union(a)
	for _, v := range []string{"1.0", "1.5", "2.5", "3.0", "0.5", "3.5"} {
		pv := MustParse(v)
		if ab.Contains(pv) != ba.Contains(pv) {
			t.Errorf("union not commutative at %v", v)
		}
	}

	aa := a.Union(a)
	for _, v := range []string{"1.0", "1.5", "2.0", "0.5", "2.5"} {
		pv := MustParse(v)
		if aa.Contains(pv) != a.Contains(pv) {
			t.Errorf("union not idempotent at %v", v)
		}
	}
}

// TestRangeCommaJoinedBoundsIntersect is spec.md §8's S2 scenario,
// verbatim: VersionRange(">=1,<2") ∩ VersionRange(">=1.5") ==
// VersionRange(">=1.5,<2").
func TestRangeCommaJoinedBoundsIntersect(t *testing.T) {
	a := MustParseRange(">=1,<2")
	b := MustParseRange(">=1.5")
	got := a.Intersect(b)
	want := MustParseRange(">=1.5,<2")

	if got.String() != want.String() {
		t.Fatalf("ParseRange(%q).Intersect(ParseRange(%q)) = %v, want %v", ">=1,<2", ">=1.5", got, want)
	}
}

func TestRangeCommaJoinedBoundsContains(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"0.9", false},
		{"1.0", true},
		{"1.5", true},
		{"1.9.9", true},
		{"2.0", false},
		{"2.1", false},
	}
	r := MustParseRange(">=1,<2")
	for _, tt := range tests {
		if got := r.Contains(MustParse(tt.version)); got != tt.want {
			t.Errorf("ParseRange(%q).Contains(%q) = %v, want %v", ">=1,<2", tt.version, got, tt.want)
		}
	}
}

func TestRangeCommaJoinedBoundsThreeTerms(t *testing.T) {
	r := MustParseRange(">=1,<3,<2.5")
	want := MustParseRange(">=1,<2.5")
	if r.String() != want.String() {
		t.Fatalf("ParseRange(%q) = %v, want %v", ">=1,<3,<2.5", r, want)
	}
}

func TestRangeAnyNone(t *testing.T) {
	if !Any().IsAny() {
		t.Errorf("Any() should report IsAny")
	}
	if !None().IsNone() {
		t.Errorf("None() should report IsNone")
	}
	if None().Contains(MustParse("1.0")) {
		t.Errorf("None() should contain nothing")
	}
	if !Any().Contains(MustParse("0.0.1")) {
		t.Errorf("Any() should contain everything")
	}
}
