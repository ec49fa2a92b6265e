package context

import (
	"strings"
	"testing"

	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/resolve"
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

func testResult(t *testing.T) *resolve.ResolutionResult {
	t.Helper()
	a := &pkg.Package{Name: "a", Version: version.MustParse("1.0.0"), Commands: "setenv A_SEEN 1\nappendenv PATH $A_ROOT\n"}
	b := &pkg.Package{Name: "b", Version: version.MustParse("2.0.0"), Commands: "setenv B_SEEN 1\n"}
	return &resolve.ResolutionResult{
		ResolvedPackages: map[string]*resolve.ResolvedPackage{
			"a": {Package: a, RequiredBy: []string{""}},
			"b": {Package: b, RequiredBy: []string{"a"}},
		},
	}
}

func TestBuildOrdersDependenciesBeforeDependents(t *testing.T) {
	result := testResult(t)
	reqs := []dep.Requirement{mustReq(t, "a")}
	cfg := DefaultBuildConfig()
	cfg.InheritParentEnv = false

	ctx, err := Build(result, reqs, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(ctx.ResolvedPackages) != 2 {
		t.Fatalf("expected 2 resolved package records, got %d", len(ctx.ResolvedPackages))
	}
	if ctx.ResolvedPackages[0].Name != "b" {
		t.Fatalf("expected dependency b before dependent a, order = %+v", ctx.ResolvedPackages)
	}
	if ctx.EnvironmentVars["A_SEEN"] != "1" || ctx.EnvironmentVars["B_SEEN"] != "1" {
		t.Fatalf("unexpected env: %+v", ctx.EnvironmentVars)
	}
	if ctx.EnvironmentVars["A_ROOT"] != "a-1.0.0" {
		t.Fatalf("A_ROOT = %q", ctx.EnvironmentVars["A_ROOT"])
	}
	if ctx.ID == "" {
		t.Fatal("expected a generated context ID")
	}
	if ctx.EnvironmentVars["REZ_CONTEXT_ID"] != ctx.ID {
		t.Fatalf("REZ_CONTEXT_ID mismatch: %q vs %q", ctx.EnvironmentVars["REZ_CONTEXT_ID"], ctx.ID)
	}
}

func TestBuildMarksImplicitPackages(t *testing.T) {
	result := testResult(t)
	reqs := []dep.Requirement{mustReq(t, "a")}
	cfg := DefaultBuildConfig()
	cfg.InheritParentEnv = false

	ctx, err := Build(result, reqs, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(ctx.EnvironmentVars["REZ_USED_IMPLICIT_PACKAGES"], "b-2.0.0") {
		t.Fatalf("expected b to be recorded implicit, got %q", ctx.EnvironmentVars["REZ_USED_IMPLICIT_PACKAGES"])
	}
	if strings.Contains(ctx.EnvironmentVars["REZ_USED_IMPLICIT_PACKAGES"], "a-1.0.0") {
		t.Fatalf("top-level a should not be marked implicit: %q", ctx.EnvironmentVars["REZ_USED_IMPLICIT_PACKAGES"])
	}
}

func pathTestResult() *resolve.ResolutionResult {
	return &resolve.ResolutionResult{
		ResolvedPackages: map[string]*resolve.ResolvedPackage{
			"base": {Package: &pkg.Package{Name: "base", Version: version.MustParse("1.0.0"), Commands: "setenv PATH /usr/bin\n"}, RequiredBy: []string{"a"}},
			"a":    {Package: &pkg.Package{Name: "a", Version: version.MustParse("1.0.0"), Commands: "appendenv PATH /usr/local/bin\n"}, RequiredBy: []string{""}},
		},
	}
}

func TestPathStrategyPrependVsAppend(t *testing.T) {
	cfg := DefaultBuildConfig()
	cfg.InheritParentEnv = false

	prepend := cfg
	prepend.PathStrategy = Prepend
	ctxP, err := Build(pathTestResult(), nil, prepend)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v := ctxP.EnvironmentVars["PATH"]; v != "/usr/local/bin:/usr/bin" {
		t.Fatalf("Prepend PATH = %q", v)
	}

	appendCfg := cfg
	appendCfg.PathStrategy = Append
	ctxA, err := Build(pathTestResult(), nil, appendCfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v := ctxA.EnvironmentVars["PATH"]; v != "/usr/bin:/usr/local/bin" {
		t.Fatalf("Append PATH = %q", v)
	}

	noModCfg := cfg
	noModCfg.PathStrategy = NoModify
	ctxN, err := Build(pathTestResult(), nil, noModCfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v := ctxN.EnvironmentVars["PATH"]; v != "/usr/bin" {
		t.Fatalf("NoModify should drop the appendenv PATH op, got %q", v)
	}
}

func TestValidateDetectsUnsatisfiedRequirement(t *testing.T) {
	result := testResult(t)
	cfg := DefaultBuildConfig()
	cfg.InheritParentEnv = false
	ctx, err := Build(result, []dep.Requirement{mustReq(t, "a-2.0.0")}, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ctx.Validate(); err == nil {
		t.Fatal("expected Validate to reject a-2 against resolved a-1.0.0")
	}
}

func TestValidatePassesForConsistentContext(t *testing.T) {
	result := testResult(t)
	cfg := DefaultBuildConfig()
	cfg.InheritParentEnv = false
	ctx, err := Build(result, []dep.Requirement{mustReq(t, "a-1.0.0")}, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ctx.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	result := testResult(t)
	cfg := DefaultBuildConfig()
	cfg.InheritParentEnv = false
	ctx, err := Build(result, []dep.Requirement{mustReq(t, "a-1.0.0")}, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := ctx.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	round, err := UnmarshalContextJSON(data)
	if err != nil {
		t.Fatalf("UnmarshalContextJSON: %v", err)
	}
	if round.ID != ctx.ID {
		t.Fatalf("ID mismatch: %q vs %q", round.ID, ctx.ID)
	}
	if len(round.ResolvedPackages) != len(ctx.ResolvedPackages) {
		t.Fatalf("resolved package count mismatch: %d vs %d", len(round.ResolvedPackages), len(ctx.ResolvedPackages))
	}
	if round.EnvironmentVars["A_SEEN"] != "1" {
		t.Fatalf("env not preserved: %+v", round.EnvironmentVars)
	}
}
