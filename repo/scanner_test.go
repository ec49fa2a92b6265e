package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/pkg/format"
	"github.com/rez-project/rez/version"
)

func mustV(t *testing.T, s string) version.Version {
	t.Helper()
	return version.MustParse(s)
}

func TestScannerExcludesWellKnownDirs(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "good", "1.0", "name: good\nversion: 1.0\n")
	if err := os.MkdirAll(filepath.Join(root, "good", "1.0", ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "node_modules", "leftpad"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "node_modules", "leftpad", "package.json"), []byte(`{"name":"leftpad"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := pkg.NewRegistry()
	reg.Register("yaml", format.YAML{})
	reg.Register("json", format.JSON{})

	s := newScanner(root, reg, nil)
	results, err := s.scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, p := range results {
		if p.Name == "leftpad" {
			t.Errorf("scan descended into node_modules and loaded %v", p)
		}
	}
}

func TestScanCacheValidatesBySizeAndMtime(t *testing.T) {
	c := newScanCache()
	now := time.Now()
	c.store("/x/package.yaml", 10, now, &pkg.Package{Name: "x"}, nil)

	if _, ok := c.lookup("/x/package.yaml", 10, now); !ok {
		t.Fatal("expected cache hit on unchanged (size, mtime)")
	}
	if _, ok := c.lookup("/x/package.yaml", 11, now); ok {
		t.Error("expected cache miss on changed size")
	}
	if _, ok := c.lookup("/x/package.yaml", 10, now.Add(time.Second)); ok {
		t.Error("expected cache miss on changed mtime")
	}

	c.invalidate("/x/package.yaml")
	if _, ok := c.lookup("/x/package.yaml", 10, now); ok {
		t.Error("expected cache miss after invalidate")
	}
}

func TestCompileGlob(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"py*", "python", true},
		{"py*", "numpy", false},
		{"*thon", "python", true},
		{"py?hon", "python", true},
		{"py?hon", "pyyython", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
		{"a.b", "a.b", true},
		{"a.b", "aXb", false}, // '.' must be literal, not regex any-char
	}
	for _, tt := range tests {
		re, err := compileGlob(tt.pattern)
		if err != nil {
			t.Fatalf("compileGlob(%q): %v", tt.pattern, err)
		}
		if got := re.MatchString(tt.input); got != tt.want {
			t.Errorf("compileGlob(%q).MatchString(%q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
		}
	}
}

func TestSortPackagesByVersionDescending(t *testing.T) {
	ps := []*pkg.Package{
		{Name: "a", Version: mustV(t, "1.0")},
		{Name: "a", Version: mustV(t, "2.0")},
		{Name: "a", Versionless: true},
		{Name: "a", Version: mustV(t, "1.5")},
	}
	sortPackagesByVersionDescending(ps)

	want := []string{"2.0", "1.5", "1.0", "(empty)"}
	for i, p := range ps {
		got := "(empty)"
		if !p.Versionless {
			got = p.Version.String()
		}
		if got != want[i] {
			t.Errorf("ps[%d] = %s, want %s", i, got, want[i])
		}
	}
}
