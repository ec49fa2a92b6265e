/*
Package context builds a ResolvedContext from a resolve.ResolutionResult
(spec.md §4.6): it walks resolved packages in dependency order,
interprets each one's rex commands against a mutable environment
subject to a PATH strategy, and produces a self-contained, serializable
record of "what this environment looks like".
*/
package context

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/resolve"
	"github.com/rez-project/rez/rex"
)

// PathStrategy selects how a package's PATH-like env ops are applied
// during the build, per spec.md §4.6.
type PathStrategy int

const (
	Prepend PathStrategy = iota
	Append
	Replace
	NoModify
)

func (s PathStrategy) String() string {
	switch s {
	case Prepend:
		return "prepend"
	case Append:
		return "append"
	case Replace:
		return "replace"
	case NoModify:
		return "no_modify"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state of a ResolvedContext.
type Status string

const (
	StatusSolved  Status = "solved"
	StatusFailed  Status = "failed"
	StatusPartial Status = "partial"
)

// BuildConfig configures how a ResolvedContext is assembled.
type BuildConfig struct {
	PathStrategy      PathStrategy
	AdditionalEnvVars map[string]string
	UnsetVars         []string
	InheritParentEnv  bool
	// ParserConfig governs how each package's Commands script is
	// parsed; AllowShellSyntax is normally left false for resolved
	// package scripts (they set/append/alias, they don't run arbitrary
	// commands), but callers may override.
	ParserConfig rex.ParserConfig
}

// DefaultBuildConfig mirrors rez's historical context defaults: PATH
// entries prepend (most specific package wins first), and the parent
// process environment is inherited as the starting point.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		PathStrategy:     Prepend,
		InheritParentEnv: true,
	}
}

// PackageRecord is the serializable projection of one resolved
// package: just enough to validate and re-derive requirements without
// keeping the full pkg.Package graph alive.
type PackageRecord struct {
	Name        string
	Version     string
	Versionless bool
	VariantIdx  int
	RequiredBy  []string
	Commands    string
}

// ResolvedContext is a fully built, self-contained environment: the
// requirements that produced it, the packages chosen to satisfy them,
// and the resulting environment variables.
type ResolvedContext struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Platform  string
	Arch      string
	Status    Status
	Config    BuildConfig

	Requirements      []dep.Requirement
	ResolvedPackages  []PackageRecord
	EnvironmentVars   map[string]string
	Metadata          map[string]string

	Fingerprint string

	// ShellCommands is the ordered list of ShellCommand lines collected
	// while interpreting every package's commands script (rex.Interpreter's
	// own "for the caller to hand to the process layer" contract). It is
	// an ephemeral runtime handle, not part of the serialized wire
	// format: spec.md §6 only promises round-trip losslessness "except
	// ephemeral runtime handles", and re-running Build recomputes it
	// identically from ResolvedPackages' Commands text.
	ShellCommands []string
}

// pathLikeNames mirrors rex's own PATH-like variable set; kept local
// (rather than exported from rex) since only the context builder needs
// to special-case PATH ops by name.
var pathLikeNames = map[string]bool{
	"PATH":            true,
	"LD_LIBRARY_PATH": true,
	"PYTHONPATH":      true,
	"CLASSPATH":       true,
}

// Build assembles a ResolvedContext from a completed resolution,
// per spec.md §4.6's 4-step build sequence.
func Build(result *resolve.ResolutionResult, requirements []dep.Requirement, cfg BuildConfig) (*ResolvedContext, error) {
	ordered, err := dependencyOrder(result)
	if err != nil {
		return nil, err
	}

	env := baseEnvironment(cfg)
	strategyEnv := &pathStrategyEnv{inner: env, strategy: cfg.PathStrategy}

	interp := rex.NewInterpreter(strategyEnv, cfg.ParserConfig)

	var records []PackageRecord
	var usedImplicit []string
	for _, rp := range ordered {
		p := rp.Package
		rootName := strings.ToUpper(sanitizeEnvName(p.Name)) + "_ROOT"
		env.Set(rootName, p.Identity())

		if p.Commands != "" {
			parser := rex.NewParser(p.Commands, cfg.ParserConfig)
			script, err := parser.Parse()
			if err != nil {
				return nil, fmt.Errorf("context: package %s: parsing commands: %w", p.Identity(), err)
			}
			if err := interp.Run(script); err != nil {
				return nil, fmt.Errorf("context: package %s: interpreting commands: %w", p.Identity(), err)
			}
		}

		isTop := false
		for _, src := range rp.RequiredBy {
			if src == "" {
				isTop = true
			}
		}
		if !isTop {
			usedImplicit = append(usedImplicit, p.Identity())
		}

		records = append(records, PackageRecord{
			Name:        p.Name,
			Version:     versionString(p),
			Versionless: p.Versionless,
			VariantIdx:  rp.VariantIdx,
			RequiredBy:  rp.RequiredBy,
			Commands:    p.Commands,
		})
	}

	for k, v := range cfg.AdditionalEnvVars {
		env.Set(k, v)
	}
	for _, k := range cfg.UnsetVars {
		env.Unset(k)
	}

	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	sort.Strings(usedImplicit)
	env.Set("REZ_RESOLVED_PACKAGES", strings.Join(names, " "))
	env.Set("REZ_USED_IMPLICIT_PACKAGES", strings.Join(usedImplicit, " "))

	id := uuid.NewString()
	env.Set("REZ_CONTEXT_ID", id)

	ctx := &ResolvedContext{
		ID:               id,
		CreatedAt:        time.Now(),
		Status:           StatusSolved,
		Config:           cfg,
		Requirements:     requirements,
		ResolvedPackages: records,
		EnvironmentVars:  env.Snapshot(),
		Metadata:         make(map[string]string),
		ShellCommands:    interp.Commands,
	}
	ctx.Fingerprint = computeFingerprint(ctx)
	return ctx, nil
}

// baseEnvironment returns the environment Build starts interpreting
// against, honoring InheritParentEnv.
func baseEnvironment(cfg BuildConfig) *rex.MapEnvironment {
	if !cfg.InheritParentEnv {
		return rex.NewMapEnvironment(nil)
	}
	initial := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			initial[k] = v
		}
	}
	return rex.NewMapEnvironment(initial)
}

func sanitizeEnvName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '-' || r == '.' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func versionString(p *pkg.Package) string {
	if p.Versionless {
		return ""
	}
	return p.Version.String()
}

// dependencyOrder walks result's chosen packages leaves-first
// (dependencies before dependents), so a package's commands script
// runs only after every package it requires has already contributed
// its environment changes. Grounded on util/resolve/graph.go's
// BFS-from-roots walk, here run over RequiredBy back-edges via a
// Kahn's-algorithm topological sort for determinism.
func dependencyOrder(result *resolve.ResolutionResult) ([]*resolve.ResolvedPackage, error) {
	indegree := make(map[string]int, len(result.ResolvedPackages))
	dependents := make(map[string][]string)
	for name := range result.ResolvedPackages {
		indegree[name] = 0
	}
	for name, rp := range result.ResolvedPackages {
		for _, src := range rp.RequiredBy {
			if src == "" {
				continue
			}
			if _, ok := result.ResolvedPackages[src]; !ok {
				continue
			}
			// src requires name, so name (the dependency) must be
			// ordered before src (the dependent).
			indegree[src]++
			dependents[name] = append(dependents[name], src)
		}
	}

	var ready []string
	for name, d := range indegree {
		if d == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []*resolve.ResolvedPackage
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, result.ResolvedPackages[name])

		next := append([]string(nil), dependents[name]...)
		sort.Strings(next)
		for _, n := range next {
			indegree[n]--
			if indegree[n] == 0 {
				ready = append(ready, n)
			}
		}
	}
	if len(order) != len(result.ResolvedPackages) {
		return nil, fmt.Errorf("context: dependency order: cycle among resolved packages")
	}
	return order, nil
}

func computeFingerprint(ctx *ResolvedContext) string {
	h := sha256.New()
	reqs := make([]string, len(ctx.Requirements))
	for i, r := range ctx.Requirements {
		reqs[i] = r.String()
	}
	sort.Strings(reqs)
	for _, r := range reqs {
		h.Write([]byte(r))
		h.Write([]byte{0})
	}
	names := make([]string, 0, len(ctx.ResolvedPackages))
	for _, rec := range ctx.ResolvedPackages {
		names = append(names, rec.Name+"-"+rec.Version)
	}
	sort.Strings(names)
	for _, n := range names {
		h.Write([]byte(n))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
