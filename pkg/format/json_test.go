package format

import "testing"

const samplePackageJSON = `{
  "name": "foo",
  "version": "1.2.3",
  "requires": ["bar->=1"]
}`

func TestJSONLoad(t *testing.T) {
	p, err := JSON{}.Load([]byte(samplePackageJSON), "json")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if p.Name != "foo" {
		t.Errorf("Name = %q, want foo", p.Name)
	}
	if len(p.Requires) != 1 || p.Requires[0].Name != "bar" {
		t.Errorf("Requires = %+v", p.Requires)
	}
}

func TestJSONLoadInvalid(t *testing.T) {
	if _, err := (JSON{}).Load([]byte("not json"), "json"); err == nil {
		t.Errorf("expected error for invalid JSON")
	}
}
