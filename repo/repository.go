/*
Package repo provides the Repository contract (spec.md §4.3) and a
concurrent filesystem-backed implementation that discovers package
definitions under a root directory.
*/
package repo

import (
	"context"
	"errors"

	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/version"
)

// ErrNotFound is returned by GetPackage when no matching package exists.
var ErrNotFound = errors.New("repo: package not found")

// Repository is the core's polymorphic query interface: a capability
// interface open to extension (network-backed repositories, etc.),
// per spec.md §9's "open interface for repositories" design note.
type Repository interface {
	// FindPackages returns packages whose name matches namePattern (a
	// glob with '*'/'?' semantics) and whose version lies in vr,
	// limited to at most limit results (0 = unlimited), optionally
	// including prerelease-like versions.
	FindPackages(ctx context.Context, namePattern string, vr version.Range, limit int, includePrerelease bool) ([]*pkg.Package, error)

	// GetPackage returns the package named name. If v is nil, the
	// latest version is returned. Returns ErrNotFound if none matches.
	GetPackage(ctx context.Context, name string, v *version.Version) (*pkg.Package, error)

	// GetPackageVersions returns name's known versions, descending.
	GetPackageVersions(ctx context.Context, name string) ([]version.Version, error)

	// PackageExists reports whether name (at version v, or any version
	// if v is nil) exists in the repository.
	PackageExists(ctx context.Context, name string, v *version.Version) (bool, error)

	// ListPackageNames returns every package name known to the repository.
	ListPackageNames(ctx context.Context) ([]string, error)
}
