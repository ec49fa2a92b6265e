/*
Package pkg holds the in-memory Package/Variant record that every
other component (scanner, resolver, context builder) operates on, and
the PackageLoader interface that format plugins implement to produce
one from bytes.
*/
package pkg

import (
	"fmt"

	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/version"
)

// Package is an immutable record describing one version of a package,
// as loaded from a package definition file.
type Package struct {
	Name string

	// Version is meaningful only when Versionless is false. A
	// versionless package (no version.* in its file, living directly
	// under <root>/<name>/) satisfies any VersionRange that contains
	// the empty version, per the resolver's unversioned-package policy.
	Version     version.Version
	Versionless bool

	Description string
	Authors     []string
	Tools       []string
	Help        string
	UUID        string

	Requires             []dep.Requirement
	BuildRequires        []dep.Requirement
	PrivateBuildRequires []dep.Requirement

	// Variants is the raw declared variant list: each entry is an
	// independent build target's additional (overriding) requirements.
	// A package with no entries has an implicit single empty variant;
	// see VariantsOf.
	Variants [][]dep.Requirement

	// Commands is the package's Rex script fragment, captured verbatim,
	// interpreted by the context builder when this package is active.
	Commands string

	Timestamp   int64
	Revision    string
	Relocatable bool
	Cachable    bool

	// PluginFor names the package this one extends by being resolved
	// alongside it (the rez plugin convention); empty when this package
	// is not a plugin.
	PluginFor string
}

// Identity renders a stable "name-version" identifier, using "(empty)"
// for a versionless package, for diagnostics and ConflictRecord sources.
func (p *Package) Identity() string {
	if p.Versionless {
		return p.Name + "-(empty)"
	}
	return p.Name + "-" + p.Version.String()
}

// AllRequires returns Requires, BuildRequires, and PrivateBuildRequires
// concatenated, each tagged with its dep.Type via dep.Requirement.Type.
// BuildRequires and PrivateBuildRequires are retagged here in case the
// loader populated them without the corresponding attribute.
func (p *Package) AllRequires() []dep.Requirement {
	out := make([]dep.Requirement, 0, len(p.Requires)+len(p.BuildRequires)+len(p.PrivateBuildRequires))
	out = append(out, p.Requires...)
	for _, r := range p.BuildRequires {
		if !r.Type.HasAttr(dep.Build) {
			r.Type.AddAttr(dep.Build, "")
		}
		out = append(out, r)
	}
	for _, r := range p.PrivateBuildRequires {
		if !r.Type.HasAttr(dep.PrivateBuild) {
			r.Type.AddAttr(dep.PrivateBuild, "")
		}
		out = append(out, r)
	}
	return out
}

func (p *Package) String() string {
	return fmt.Sprintf("Package{%s}", p.Identity())
}
