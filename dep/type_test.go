package dep

import "testing"

func TestTypeIsRegular(t *testing.T) {
	var t0 Type
	if !t0.IsRegular() {
		t.Errorf("zero value Type should be regular")
	}
	t1 := NewType(Build)
	if t1.IsRegular() {
		t.Errorf("Type with Build attribute should not be regular")
	}
}

func TestTypePropagation(t *testing.T) {
	reg := Type{}
	if !reg.Propagates() {
		t.Errorf("regular dependency should propagate")
	}
	build := NewType(Build)
	if !build.Propagates() {
		t.Errorf("build_requires should still propagate to its own build step")
	}
	priv := NewType(PrivateBuild)
	if priv.Propagates() {
		t.Errorf("private_build_requires should not propagate")
	}
}

func TestTypeEqualAndCompare(t *testing.T) {
	a := NewType(Build)
	b := NewType(Build)
	if !a.Equal(b) {
		t.Errorf("two Types with the same attributes should be equal")
	}
	c := NewType(PrivateBuild)
	if a.Equal(c) {
		t.Errorf("Build and PrivateBuild types should not be equal")
	}
	if a.Compare(c) == 0 {
		t.Errorf("Compare should distinguish Build from PrivateBuild")
	}
}

func TestTypeValueAttr(t *testing.T) {
	var ty Type
	ty.AddAttr(Source, "a-1.0")
	v, ok := ty.GetAttr(Source)
	if !ok || v != "a-1.0" {
		t.Errorf("GetAttr(Source) = (%q, %v), want (\"a-1.0\", true)", v, ok)
	}
	if !ty.HasAttr(Source) {
		t.Errorf("HasAttr(Source) should be true")
	}
}

func TestTypeClone(t *testing.T) {
	a := NewType(Build)
	a.AddAttr(Source, "x-1.0")
	b := a.Clone()
	b.AddAttr(Source, "y-1.0")

	av, _ := a.GetAttr(Source)
	bv, _ := b.GetAttr(Source)
	if av == bv {
		t.Errorf("Clone should not share attribute storage with the original")
	}
}
