package repo

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/version"
	"go.uber.org/zap"
)

// Filesystem is a Repository backed by a directory tree laid out as
// <root>/<name>/<version>/<package_file>, with an optional
// <root>/<name>/<package_file> for unversioned packages (spec.md §6).
type Filesystem struct {
	root     string
	scanner  *scanner
	log      *zap.Logger

	mu       sync.RWMutex
	byName   map[string][]*pkg.Package // sorted version-descending
	scanned  bool
}

// NewFilesystem constructs a Filesystem repository rooted at root. It
// does not scan until the first query or an explicit call to Refresh.
func NewFilesystem(root string, registry *pkg.Registry, log *zap.Logger) (*Filesystem, error) {
	if registry == nil {
		return nil, fmt.Errorf("repo: registry must not be nil")
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("repo: root %q: %w", root, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Filesystem{
		root:    root,
		scanner: newScanner(root, registry, log),
		log:     log,
		byName:  make(map[string][]*pkg.Package),
	}, nil
}

// Refresh re-scans the repository root, replacing the in-memory index
// under a writer lock (spec.md §5: "Repository package cache:
// read-mostly; refresh rebuilds under a writer lock").
func (f *Filesystem) Refresh(ctx context.Context) error {
	results, err := f.scanner.scan(ctx)
	if err != nil {
		return err
	}

	byName := make(map[string][]*pkg.Package)
	for _, p := range results {
		byName[p.Name] = append(byName[p.Name], p)
	}
	for _, list := range byName {
		sortPackagesByVersionDescending(list)
	}

	f.mu.Lock()
	f.byName = byName
	f.scanned = true
	f.mu.Unlock()
	return nil
}

func (f *Filesystem) ensureScanned(ctx context.Context) error {
	f.mu.RLock()
	scanned := f.scanned
	f.mu.RUnlock()
	if scanned {
		return nil
	}
	return f.Refresh(ctx)
}

// FindPackages implements Repository.
func (f *Filesystem) FindPackages(ctx context.Context, namePattern string, vr version.Range, limit int, includePrerelease bool) ([]*pkg.Package, error) {
	if err := f.ensureScanned(ctx); err != nil {
		return nil, err
	}
	re, err := compileGlob(namePattern)
	if err != nil {
		return nil, fmt.Errorf("repo: invalid pattern %q: %w", namePattern, err)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.byName))
	for name := range f.byName {
		if re.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var out []*pkg.Package
	for _, name := range names {
		for _, p := range f.byName[name] {
			if !vr.IsAny() {
				v := p.Version
				if p.Versionless {
					v = version.Empty()
				}
				if !vr.Contains(v) {
					continue
				}
			}
			if !includePrerelease && isPrerelease(p) {
				continue
			}
			out = append(out, p)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// isPrerelease treats a version whose final token is alphanumeric as
// prerelease-like, matching the ordering convention in version.Compare
// (trailing alphanumeric tokens sort as prerelease qualifiers, e.g.
// "1.0-alpha" sorting below the numeric-terminated "1.0").
func isPrerelease(p *pkg.Package) bool {
	if p.Versionless {
		return false
	}
	return hasAlphaTail(p.Version.String())
}

func hasAlphaTail(s string) bool {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '.', '-', '_', '+':
			return false
		}
		if s[i] < '0' || s[i] > '9' {
			return true
		}
	}
	return false
}

// GetPackage implements Repository.
func (f *Filesystem) GetPackage(ctx context.Context, name string, v *version.Version) (*pkg.Package, error) {
	if err := f.ensureScanned(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	list := f.byName[name]
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	if v == nil {
		return list[0], nil
	}
	for _, p := range list {
		if !p.Versionless && p.Version.Equal(*v) {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// GetPackageVersions implements Repository.
func (f *Filesystem) GetPackageVersions(ctx context.Context, name string) ([]version.Version, error) {
	if err := f.ensureScanned(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	list := f.byName[name]
	out := make([]version.Version, 0, len(list))
	for _, p := range list {
		if !p.Versionless {
			out = append(out, p.Version)
		}
	}
	return out, nil
}

// PackageExists implements Repository.
func (f *Filesystem) PackageExists(ctx context.Context, name string, v *version.Version) (bool, error) {
	_, err := f.GetPackage(ctx, name, v)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListPackageNames implements Repository.
func (f *Filesystem) ListPackageNames(ctx context.Context) ([]string, error) {
	if err := f.ensureScanned(ctx); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.byName))
	for name := range f.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
