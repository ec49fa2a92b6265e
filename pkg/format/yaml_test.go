package format

import (
	"testing"

	"github.com/rez-project/rez/version"
)

const samplePackageYAML = `
name: foo
version: 1.2.3
description: a sample package
requires:
  - bar->=1
build_requires:
  - cmake
variants:
  - ["python->=3.9"]
  - ["python->=2.7,<3"]
commands: |
  setenv FOO_ROOT {root}
  appendenv PATH {root}/bin
`

func TestYAMLLoad(t *testing.T) {
	p, err := YAML{}.Load([]byte(samplePackageYAML), "yaml")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if p.Name != "foo" {
		t.Errorf("Name = %q, want foo", p.Name)
	}
	if p.Versionless || !p.Version.Equal(version.MustParse("1.2.3")) {
		t.Errorf("Version = %v, want 1.2.3", p.Version)
	}
	if len(p.Requires) != 1 || p.Requires[0].Name != "bar" {
		t.Errorf("Requires = %+v", p.Requires)
	}
	if len(p.BuildRequires) != 1 || p.BuildRequires[0].Name != "cmake" {
		t.Errorf("BuildRequires = %+v", p.BuildRequires)
	}
	if len(p.Variants) != 2 {
		t.Fatalf("Variants = %d entries, want 2", len(p.Variants))
	}
}

func TestYAMLLoadVersionless(t *testing.T) {
	p, err := YAML{}.Load([]byte("name: foo\n"), "yaml")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !p.Versionless {
		t.Errorf("expected versionless package")
	}
}

func TestYAMLLoadRequiresName(t *testing.T) {
	if _, err := (YAML{}).Load([]byte("description: no name here\n"), "yaml"); err == nil {
		t.Errorf("expected error for missing name")
	}
}
