package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/pkg/format"
	"github.com/rez-project/rez/repo"
	"github.com/rez-project/rez/resolve"
)

// openRepository wires the format loaders named in spec.md §6's
// filesystem layout (package.yaml/.yml/.json) into a fresh Registry
// and scans cfg.RepoRoot into a repo.Filesystem, generalizing
// examples/go/resolve/main.go's "wire a resolver against a client"
// setup away from a remote gRPC client and onto the local repository.
func openRepository(ctx context.Context, cfg config, log *zap.Logger) (repo.Repository, error) {
	registry := pkg.NewRegistry()
	registry.Register("yaml", format.YAML{})
	registry.Register("yml", format.YAML{})
	registry.Register("json", format.JSON{})

	fs, err := repo.NewFilesystem(cfg.RepoRoot, registry, log)
	if err != nil {
		return nil, fmt.Errorf("rez: opening repository at %q: %w", cfg.RepoRoot, err)
	}
	if err := fs.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("rez: scanning repository at %q: %w", cfg.RepoRoot, err)
	}
	return fs, nil
}

// newResolverClient adapts repo into a resolve.Client, per
// spec.md §4.5 step 3.
func newResolverClient(r repo.Repository) resolve.Client {
	return resolve.NewRepoClient(r)
}

// newSolverForConfig builds a Solver with rez's historical defaults
// against repository r.
func newSolverForConfig(r repo.Repository) *resolve.Solver {
	return resolve.NewSolver(newResolverClient(r), resolve.DefaultSolverConfig())
}
