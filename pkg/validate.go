package pkg

import (
	"fmt"
	"strings"

	"github.com/rez-project/rez/dep"
)

// Validate runs the separable validation pass from spec.md §4.2: name
// format, requirement well-formedness (already enforced by the time a
// Requirement value exists, so this re-checks shape only), variant
// uniqueness, and — when known is non-nil — a cycle pre-check over
// the declared requires against the known-packages map.
func Validate(p *Package, known map[string]bool) error {
	if err := validateName(p.Name); err != nil {
		return err
	}

	seen := make(map[string]bool, len(p.Variants))
	for i, reqs := range p.Variants {
		key := variantKey(reqs)
		if seen[key] {
			return fmt.Errorf("pkg: %s: duplicate variant requirement set at index %d", p.Name, i)
		}
		seen[key] = true
	}

	if known != nil {
		if err := precheckCycle(p, known); err != nil {
			return err
		}
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("pkg: package name is required")
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return fmt.Errorf("pkg: package name %q must not start or end with '-'", name)
	}
	for _, r := range name {
		ok := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-'
		if !ok {
			return fmt.Errorf("pkg: package name %q contains invalid character %q", name, r)
		}
	}
	return nil
}

func variantKey(reqs []dep.Requirement) string {
	parts := make([]string, len(reqs))
	for i, r := range reqs {
		parts[i] = r.String()
	}
	return strings.Join(parts, "\x00")
}

// precheckCycle performs a direct-requires-only reachability check: it
// reports an error if p's name is reachable from itself by following
// declared requires through known, without needing the full resolver.
// This only catches cycles wholly contained within the known set; it
// is a cheap early warning, not a substitute for the resolver's own
// cycle detection during search.
func precheckCycle(p *Package, known map[string]bool) error {
	// Without a full package index to look up each known name's own
	// requires, only self-reference can be checked cheaply here.
	for _, r := range p.AllRequires() {
		if r.Name == p.Name {
			return fmt.Errorf("pkg: %s declares a requirement on itself", p.Name)
		}
	}
	return nil
}
