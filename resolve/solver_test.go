package resolve

import (
	"context"
	"testing"

	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/version"
)

func mustReq(t *testing.T, s string) dep.Requirement {
	t.Helper()
	r, err := dep.ParseRequirement(s)
	if err != nil {
		t.Fatalf("ParseRequirement(%q): %v", s, err)
	}
	return r
}

func pkgAt(name, ver string, requires ...string) *pkg.Package {
	p := &pkg.Package{Name: name, Version: version.MustParse(ver)}
	for _, r := range requires {
		req, err := dep.ParseRequirement(r)
		if err != nil {
			panic(err)
		}
		p.Requires = append(p.Requires, req)
	}
	return p
}

func TestSolveSimpleChain(t *testing.T) {
	lc := NewLocalClient()
	lc.Add(pkgAt("a", "1.0.0", "b-2"))
	lc.Add(pkgAt("b", "2.0.0"))
	lc.Add(pkgAt("b", "1.0.0"))

	s := NewSolver(lc, DefaultSolverConfig())
	result, err := s.Solve(context.Background(), []dep.Requirement{mustReq(t, "a")})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(result.FailedRequirements) != 0 {
		t.Fatalf("FailedRequirements = %v, want none", result.FailedRequirements)
	}
	a, ok := result.ResolvedPackages["a"]
	if !ok || a.Package.Version.String() != "1.0.0" {
		t.Fatalf("a resolved to %v", a)
	}
	b, ok := result.ResolvedPackages["b"]
	if !ok || b.Package.Version.String() != "2.0.0" {
		t.Fatalf("b resolved to %v, want 2.0.0", b)
	}
}

func TestSolveFailsOnMissingPackage(t *testing.T) {
	lc := NewLocalClient()
	s := NewSolver(lc, DefaultSolverConfig())
	result, err := s.Solve(context.Background(), []dep.Requirement{mustReq(t, "nonexistent")})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(result.FailedRequirements) != 1 {
		t.Fatalf("FailedRequirements = %v, want 1 entry", result.FailedRequirements)
	}
}

func TestSolveFailOnConflictReturnsSolverError(t *testing.T) {
	lc := NewLocalClient()
	lc.Add(pkgAt("a", "1.0.0", "c-1"))
	lc.Add(pkgAt("b", "1.0.0", "c-2"))
	lc.Add(pkgAt("c", "1.0.0"))
	lc.Add(pkgAt("c", "2.0.0"))

	cfg := DefaultSolverConfig()
	cfg.Strategy = FailOnConflict
	s := NewSolver(lc, cfg)
	_, err := s.Solve(context.Background(), []dep.Requirement{mustReq(t, "a"), mustReq(t, "b")})
	if err == nil {
		t.Fatal("Solve: want error, got nil")
	}
}

func TestSolveFindCompatibleResolvesConflict(t *testing.T) {
	lc := NewLocalClient()
	lc.Add(pkgAt("a", "1.0.0", "c-1+"))
	lc.Add(pkgAt("b", "1.0.0", "c-1..2.0.0"))
	lc.Add(pkgAt("c", "1.0.0"))
	lc.Add(pkgAt("c", "2.0.0"))
	lc.Add(pkgAt("c", "3.0.0"))

	cfg := DefaultSolverConfig()
	cfg.Strategy = FindCompatible
	s := NewSolver(lc, cfg)
	result, err := s.Solve(context.Background(), []dep.Requirement{mustReq(t, "a"), mustReq(t, "b")})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	c, ok := result.ResolvedPackages["c"]
	if !ok {
		t.Fatal("c not resolved")
	}
	if c.Package.Version.String() != "2.0.0" {
		t.Fatalf("c resolved to %s, want 2.0.0 (the latest compatible with both ranges)", c.Package.Version)
	}
}

func TestSolveDetectsCircularDependency(t *testing.T) {
	lc := NewLocalClient()
	lc.Add(pkgAt("a", "1.0.0", "b"))
	lc.Add(pkgAt("b", "1.0.0", "a"))

	s := NewSolver(lc, DefaultSolverConfig())
	result, err := s.Solve(context.Background(), []dep.Requirement{mustReq(t, "a")})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	found := false
	for _, c := range result.Conflicts {
		if c.Kind == CircularDependency {
			found = true
		}
	}
	if !found {
		t.Fatalf("Conflicts = %v, want a CircularDependency entry", result.Conflicts)
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	lc := NewLocalClient()
	lc.Add(pkgAt("a", "1.0.0", "b-1+"))
	lc.Add(pkgAt("b", "1.0.0"))
	lc.Add(pkgAt("b", "2.0.0"))
	lc.Add(pkgAt("b", "3.0.0"))

	cfg := DefaultSolverConfig()
	var prev string
	for i := 0; i < 5; i++ {
		s := NewSolver(lc, cfg)
		result, err := s.Solve(context.Background(), []dep.Requirement{mustReq(t, "a")})
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		got := result.ResolvedPackages["b"].Package.Version.String()
		if prev != "" && got != prev {
			t.Fatalf("Solve produced %s then %s for the same input", prev, got)
		}
		prev = got
	}
	if prev != "3.0.0" {
		t.Fatalf("b resolved to %s, want latest 3.0.0", prev)
	}
}

func TestSolveWeakReferenceDoesNotPullPackageIn(t *testing.T) {
	lc := NewLocalClient()
	lc.Add(pkgAt("a", "1.0.0", "~b-1"))

	s := NewSolver(lc, DefaultSolverConfig())
	result, err := s.Solve(context.Background(), []dep.Requirement{mustReq(t, "a")})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if _, ok := result.ResolvedPackages["b"]; ok {
		t.Fatal("weak reference pulled in b, should not have")
	}
}
