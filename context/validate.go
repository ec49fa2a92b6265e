package context

import (
	"fmt"
	"strings"

	"github.com/rez-project/rez/version"
)

// Validate re-checks that every original requirement is satisfied by
// the resolved packages, that every package record has a non-empty
// name, and that environment variables contain no embedded NULs, per
// spec.md §4.6's "context.validate()". No other per-package check is
// made: records are not run through pkg.Validate.
func (c *ResolvedContext) Validate() error {
	byName := make(map[string]PackageRecord, len(c.ResolvedPackages))
	for _, r := range c.ResolvedPackages {
		if _, dup := byName[r.Name]; dup {
			return fmt.Errorf("context: duplicate resolved package record for %q", r.Name)
		}
		byName[r.Name] = r
	}

	for _, req := range c.Requirements {
		rec, ok := byName[req.Name]
		if !ok {
			return fmt.Errorf("context: requirement %q is not satisfied: no resolved package", req.String())
		}
		v := version.Empty()
		if !rec.Versionless {
			var err error
			v, err = version.Parse(rec.Version)
			if err != nil {
				return fmt.Errorf("context: resolved package %s: %w", rec.Name, err)
			}
		}
		if !req.Range.Contains(v) {
			return fmt.Errorf("context: requirement %q is not satisfied by resolved %s-%s", req.String(), rec.Name, rec.Version)
		}
	}

	for _, r := range c.ResolvedPackages {
		if r.Name == "" {
			return fmt.Errorf("context: resolved package record has empty name")
		}
	}

	for k, v := range c.EnvironmentVars {
		if strings.ContainsRune(k, 0) || strings.ContainsRune(v, 0) {
			return fmt.Errorf("context: environment variable %q contains an embedded NUL", k)
		}
	}
	return nil
}
