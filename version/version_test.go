package version

import "testing"

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{
		"1",
		"1.2.3",
		"1.2.3-alpha1",
		"2023_04_01",
		"1.0+build5",
		"rc1",
	} {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", s, err)
		}
		if got := v.String(); got != s {
			t.Errorf("Parse(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, s := range []string{
		"",
		".1.2",
		"1.2.",
		"1..2",
		"1.2#3",
		"1.2.3.4.5.6.7.8.9.10.11",
	} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestCompareTotalOrder(t *testing.T) {
	ordered := []string{
		"0.0.1",
		"0.1",
		"1.0-alpha1",
		"1.0-alpha9",
		"1.0-alpha10",
		"1.0-beta",
		"1.0",
		"1.0.1",
		"1.1",
		"2.0",
	}
	for i := 0; i < len(ordered); i++ {
		for j := 0; j < len(ordered); j++ {
			a := MustParse(ordered[i])
			b := MustParse(ordered[j])
			want := 0
			switch {
			case i < j:
				want = -1
			case i > j:
				want = 1
			}
			if got := sign64(int64(a.Compare(b))); got != want {
				t.Errorf("Compare(%q, %q) = %d, want %d", ordered[i], ordered[j], got, want)
			}
		}
	}
}

func sign64(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

func TestEmptyIsSmallest(t *testing.T) {
	e := Empty()
	v := MustParse("0.0.1")
	if !e.Less(v) {
		t.Errorf("Empty() should be less than %v", v)
	}
	if !e.Equal(Empty()) {
		t.Errorf("Empty() should equal itself")
	}
}

func TestInfinityIsLargest(t *testing.T) {
	inf := Infinity()
	v := MustParse("999.999.999")
	if !v.Less(inf) {
		t.Errorf("%v should be less than Infinity()", v)
	}
}

func TestNextIsTightUpperBound(t *testing.T) {
	v := MustParse("1.2.3")
	next := v.Next()
	if !v.Less(next) {
		t.Fatalf("Next() should be greater than v")
	}
	// For a numeric-terminated version, Next increments the last
	// numeric component, so Next of 1.2.3 is exactly 1.2.4.
	between := MustParse("1.2.4")
	if next.Compare(between) != 0 {
		t.Errorf("Next() of %v = %v, want %v", v, next, between)
	}

	alpha := MustParse("1.0-alpha")
	alphaNext := alpha.Next()
	full := MustParse("1.0")
	if !alphaNext.Less(full) {
		t.Errorf("%v.Next() = %v should sort before %v", alpha, alphaNext, full)
	}
}

func TestPrefixExtensionRule(t *testing.T) {
	base := MustParse("1.0")
	numericExt := MustParse("1.0.1")
	alphaExt := MustParse("1.0-alpha")

	if !base.Less(numericExt) {
		t.Errorf("%v should be less than %v (numeric extension)", base, numericExt)
	}
	if !alphaExt.Less(base) {
		t.Errorf("%v should be less than %v (alphanumeric extension is prerelease-like)", alphaExt, base)
	}
}
