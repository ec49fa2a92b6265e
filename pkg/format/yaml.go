/*
Package format provides concrete pkg.Loader implementations: declarative
YAML (package.yaml/package.yml) and JSON (package.json). Both populate
the same restricted node set described in spec.md §4.2 — assignments
and list/dict literals, with `commands` captured verbatim as Rex
source rather than parsed.
*/
package format

import (
	"fmt"

	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/version"
	"gopkg.in/yaml.v3"
)

// rawPackage mirrors the restricted package-file node set. Fields not
// present in a given file simply keep their zero value. Keys not listed
// here are dropped by the decoder without an error, and no warning is
// recorded for them.
type rawPackage struct {
	Name                 string              `yaml:"name"`
	Version              string              `yaml:"version"`
	Description          string              `yaml:"description"`
	Authors              []string            `yaml:"authors"`
	Tools                []string            `yaml:"tools"`
	Help                 string              `yaml:"help"`
	UUID                 string              `yaml:"uuid"`
	Requires             []string            `yaml:"requires"`
	BuildRequires        []string            `yaml:"build_requires"`
	PrivateBuildRequires []string            `yaml:"private_build_requires"`
	Variants             [][]string          `yaml:"variants"`
	Commands             string              `yaml:"commands"`
	Timestamp            int64               `yaml:"timestamp"`
	Revision             string              `yaml:"revision"`
	Relocatable          bool                `yaml:"relocatable"`
	Cachable             bool                `yaml:"cachable"`
	PluginFor            string   `yaml:"plugin_for"`
	HasPlugins           bool     `yaml:"has_plugins"`
}

// YAML is a pkg.Loader for package.yaml/package.yml files.
type YAML struct{}

// Load implements pkg.Loader.
func (YAML) Load(data []byte, formatHint string) (*pkg.Package, error) {
	var raw rawPackage
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("pkg/format: yaml: %w", err)
	}
	return build(&raw)
}

func build(raw *rawPackage) (*pkg.Package, error) {
	if raw.Name == "" {
		return nil, fmt.Errorf("pkg/format: name is required")
	}

	p := &pkg.Package{
		Name:        raw.Name,
		Description: raw.Description,
		Authors:     raw.Authors,
		Tools:       raw.Tools,
		Help:        raw.Help,
		UUID:        raw.UUID,
		Commands:    raw.Commands,
		Timestamp:   raw.Timestamp,
		Revision:    raw.Revision,
		Relocatable: raw.Relocatable,
		Cachable:    raw.Cachable,
		PluginFor:   raw.PluginFor,
	}

	if raw.Version == "" {
		p.Versionless = true
	} else {
		v, err := version.Parse(raw.Version)
		if err != nil {
			return nil, fmt.Errorf("pkg/format: %s: %w", raw.Name, err)
		}
		p.Version = v
	}

	var err error
	if p.Requires, err = parseRequirements(raw.Requires); err != nil {
		return nil, fmt.Errorf("pkg/format: %s: %w", raw.Name, err)
	}
	if p.BuildRequires, err = parseRequirements(raw.BuildRequires); err != nil {
		return nil, fmt.Errorf("pkg/format: %s: %w", raw.Name, err)
	}
	if p.PrivateBuildRequires, err = parseRequirements(raw.PrivateBuildRequires); err != nil {
		return nil, fmt.Errorf("pkg/format: %s: %w", raw.Name, err)
	}

	for _, variant := range raw.Variants {
		reqs, err := parseRequirements(variant)
		if err != nil {
			return nil, fmt.Errorf("pkg/format: %s: variant: %w", raw.Name, err)
		}
		p.Variants = append(p.Variants, reqs)
	}

	return p, nil
}

func parseRequirements(ss []string) ([]dep.Requirement, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]dep.Requirement, 0, len(ss))
	for _, s := range ss {
		r, err := dep.ParseRequirement(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
