package dep

import (
	"testing"

	"github.com/rez-project/rez/version"
)

func TestParseRequirementBare(t *testing.T) {
	r, err := ParseRequirement("python")
	if err != nil {
		t.Fatalf("ParseRequirement error: %v", err)
	}
	if r.Name != "python" || !r.Range.IsAny() {
		t.Errorf("ParseRequirement(%q) = %+v, want name=python, range=any", "python", r)
	}
}

func TestParseRequirementRanged(t *testing.T) {
	r, err := ParseRequirement("python->=3.9")
	if err != nil {
		t.Fatalf("ParseRequirement error: %v", err)
	}
	if r.Name != "python" {
		t.Errorf("name = %q, want python", r.Name)
	}
	if !r.SatisfiedBy(version.MustParse("3.10")) {
		t.Errorf("requirement should be satisfied by 3.10")
	}
	if r.SatisfiedBy(version.MustParse("3.8")) {
		t.Errorf("requirement should not be satisfied by 3.8")
	}
}

func TestParseRequirementWeakAndConflict(t *testing.T) {
	weak, err := ParseRequirement("~python-3.9")
	if err != nil {
		t.Fatalf("ParseRequirement error: %v", err)
	}
	if !weak.IsWeak() {
		t.Errorf("expected weak requirement")
	}

	conflict, err := ParseRequirement("!python-2")
	if err != nil {
		t.Fatalf("ParseRequirement error: %v", err)
	}
	if !conflict.IsConflict() {
		t.Errorf("expected conflict marker")
	}
}

func TestRequirementStringRoundTrip(t *testing.T) {
	for _, s := range []string{"python", "python->=3.9", "~python-3.9", "!python-2"} {
		r, err := ParseRequirement(s)
		if err != nil {
			t.Fatalf("ParseRequirement(%q) error: %v", s, err)
		}
		if got := r.String(); got != s {
			t.Errorf("ParseRequirement(%q).String() = %q", s, got)
		}
	}
}
