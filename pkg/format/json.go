package format

import (
	"encoding/json"
	"fmt"

	"github.com/rez-project/rez/pkg"
)

// jsonPackage mirrors rawPackage's shape with JSON field names
// (package.json uses camelCase-free snake_case keys, same as YAML).
type jsonPackage struct {
	Name                 string     `json:"name"`
	Version              string     `json:"version"`
	Description          string     `json:"description"`
	Authors              []string   `json:"authors"`
	Tools                []string   `json:"tools"`
	Help                 string     `json:"help"`
	UUID                 string     `json:"uuid"`
	Requires             []string   `json:"requires"`
	BuildRequires        []string   `json:"build_requires"`
	PrivateBuildRequires []string   `json:"private_build_requires"`
	Variants             [][]string `json:"variants"`
	Commands             string     `json:"commands"`
	Timestamp            int64      `json:"timestamp"`
	Revision             string     `json:"revision"`
	Relocatable          bool       `json:"relocatable"`
	Cachable             bool       `json:"cachable"`
	PluginFor            string     `json:"plugin_for"`
	HasPlugins           bool       `json:"has_plugins"`
}

// JSON is a pkg.Loader for package.json files. It uses stdlib
// encoding/json: JSON has one obvious decoder, and the teacher's own
// util/spdx and util/maven packages reach for encoding/json directly
// rather than a third-party JSON library for their own formats.
type JSON struct{}

// Load implements pkg.Loader.
func (JSON) Load(data []byte, formatHint string) (*pkg.Package, error) {
	var raw jsonPackage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("pkg/format: json: %w", err)
	}
	return build(&rawPackage{
		Name:                 raw.Name,
		Version:              raw.Version,
		Description:          raw.Description,
		Authors:              raw.Authors,
		Tools:                raw.Tools,
		Help:                 raw.Help,
		UUID:                 raw.UUID,
		Requires:             raw.Requires,
		BuildRequires:        raw.BuildRequires,
		PrivateBuildRequires: raw.PrivateBuildRequires,
		Variants:             raw.Variants,
		Commands:             raw.Commands,
		Timestamp:            raw.Timestamp,
		Revision:             raw.Revision,
		Relocatable:          raw.Relocatable,
		Cachable:             raw.Cachable,
		PluginFor:            raw.PluginFor,
		HasPlugins:           raw.HasPlugins,
	})
}
