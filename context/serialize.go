package context

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rez-project/rez/dep"
)

// jsonDoc is the wire shape for the `.rxt` JSON form, matching
// spec.md §6's "Context JSON schema (abridged)" field set exactly so
// a written file is inspectable and stable across rez versions.
type jsonDoc struct {
	ID               string            `json:"id"`
	Name             string            `json:"name,omitempty"`
	Requirements     []string          `json:"requirements"`
	ResolvedPackages []jsonPackage     `json:"resolved_packages"`
	EnvironmentVars  map[string]string `json:"environment_vars"`
	Metadata         map[string]string `json:"metadata"`
	CreatedAt        int64             `json:"created_at"`
	Platform         string            `json:"platform,omitempty"`
	Arch             string            `json:"arch,omitempty"`
	Status           string            `json:"status"`
	Config           jsonConfig        `json:"config"`
}

type jsonPackage struct {
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Versionless bool     `json:"versionless,omitempty"`
	VariantIdx  int      `json:"variant_index"`
	RequiredBy  []string `json:"required_by,omitempty"`
	Commands    string   `json:"commands,omitempty"`
}

type jsonConfig struct {
	PathStrategy      string            `json:"path_strategy"`
	AdditionalEnvVars map[string]string `json:"additional_env_vars,omitempty"`
	UnsetVars         []string          `json:"unset_vars,omitempty"`
	InheritParentEnv  bool              `json:"inherit_parent_env"`
}

func (c *ResolvedContext) toJSONDoc() jsonDoc {
	reqs := make([]string, len(c.Requirements))
	for i, r := range c.Requirements {
		reqs[i] = r.String()
	}
	pkgs := make([]jsonPackage, len(c.ResolvedPackages))
	for i, r := range c.ResolvedPackages {
		pkgs[i] = jsonPackage{
			Name:        r.Name,
			Version:     r.Version,
			Versionless: r.Versionless,
			VariantIdx:  r.VariantIdx,
			RequiredBy:  r.RequiredBy,
			Commands:    r.Commands,
		}
	}
	return jsonDoc{
		ID:               c.ID,
		Name:             c.Name,
		Requirements:     reqs,
		ResolvedPackages: pkgs,
		EnvironmentVars:  c.EnvironmentVars,
		Metadata:         c.Metadata,
		CreatedAt:        c.CreatedAt.Unix(),
		Platform:         c.Platform,
		Arch:             c.Arch,
		Status:           string(c.Status),
		Config: jsonConfig{
			PathStrategy:      c.Config.PathStrategy.String(),
			AdditionalEnvVars: c.Config.AdditionalEnvVars,
			UnsetVars:         c.Config.UnsetVars,
			InheritParentEnv:  c.Config.InheritParentEnv,
		},
	}
}

func fromJSONDoc(d jsonDoc) (*ResolvedContext, error) {
	reqs := make([]dep.Requirement, len(d.Requirements))
	for i, s := range d.Requirements {
		r, err := dep.ParseRequirement(s)
		if err != nil {
			return nil, fmt.Errorf("context: requirement %q: %w", s, err)
		}
		reqs[i] = r
	}
	pkgs := make([]PackageRecord, len(d.ResolvedPackages))
	for i, p := range d.ResolvedPackages {
		pkgs[i] = PackageRecord{
			Name:        p.Name,
			Version:     p.Version,
			Versionless: p.Versionless,
			VariantIdx:  p.VariantIdx,
			RequiredBy:  p.RequiredBy,
			Commands:    p.Commands,
		}
	}
	strategy, err := parsePathStrategy(d.Config.PathStrategy)
	if err != nil {
		return nil, err
	}
	c := &ResolvedContext{
		ID:               d.ID,
		Name:             d.Name,
		CreatedAt:        time.Unix(d.CreatedAt, 0).UTC(),
		Platform:         d.Platform,
		Arch:             d.Arch,
		Status:           Status(d.Status),
		Requirements:     reqs,
		ResolvedPackages: pkgs,
		EnvironmentVars:  d.EnvironmentVars,
		Metadata:         d.Metadata,
		Config: BuildConfig{
			PathStrategy:      strategy,
			AdditionalEnvVars: d.Config.AdditionalEnvVars,
			UnsetVars:         d.Config.UnsetVars,
			InheritParentEnv:  d.Config.InheritParentEnv,
		},
	}
	c.Fingerprint = computeFingerprint(c)
	return c, nil
}

func parsePathStrategy(s string) (PathStrategy, error) {
	switch s {
	case "prepend", "":
		return Prepend, nil
	case "append":
		return Append, nil
	case "replace":
		return Replace, nil
	case "no_modify":
		return NoModify, nil
	default:
		return 0, fmt.Errorf("context: unknown path strategy %q", s)
	}
}

// MarshalJSON renders c as the `.rxt` wire format.
func (c *ResolvedContext) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(c.toJSONDoc(), "", "  ")
}

// UnmarshalContextJSON parses the `.rxt` wire format produced by
// MarshalJSON. It is a free function rather than UnmarshalJSON so a
// fresh *ResolvedContext can be returned instead of mutating a
// zero-value receiver.
func UnmarshalContextJSON(data []byte) (*ResolvedContext, error) {
	var d jsonDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("context: unmarshal: %w", err)
	}
	return fromJSONDoc(d)
}

// WriteFile writes c to path in JSON (`.rxt`) or binary gob (`.rxtb`)
// form, selected by path's extension.
func (c *ResolvedContext) WriteFile(path string) error {
	var data []byte
	var err error
	if binaryExt(path) {
		data, err = c.marshalBinary()
	} else {
		data, err = c.MarshalJSON()
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadContextFile reads and parses a ResolvedContext from path,
// dispatching on extension the same way WriteFile does.
func ReadContextFile(path string) (*ResolvedContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if binaryExt(path) {
		return unmarshalBinary(data)
	}
	return UnmarshalContextJSON(data)
}

func binaryExt(path string) bool {
	return len(path) >= 5 && path[len(path)-5:] == ".rxtb"
}

func (c *ResolvedContext) marshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.toJSONDoc()); err != nil {
		return nil, fmt.Errorf("context: binary encode: %w", err)
	}
	return buf.Bytes(), nil
}

func unmarshalBinary(data []byte) (*ResolvedContext, error) {
	var d jsonDoc
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return nil, fmt.Errorf("context: binary decode: %w", err)
	}
	return fromJSONDoc(d)
}
