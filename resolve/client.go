// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package resolve performs dependency resolution over rez packages.

A Client describes how to fetch candidate packages for a requirement;
resolvers use a Client to find a satisfactory set of packages and
produce a Graph describing the chosen versions and how they relate.
*/
package resolve

import (
	"context"
	"fmt"
	"sort"

	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/pkg"
	"github.com/rez-project/rez/repo"
	"github.com/rez-project/rez/version"
)

// Client fetches candidate packages for a requirement. It is the
// resolver's only data dependency, mirroring the teacher's own
// Client/LocalClient split so a resolver can run against a live
// repository or a canned in-memory fixture.
type Client interface {
	// MatchingVersions returns every known package satisfying req,
	// filtered by allowPrerelease, sorted per preferLatest (descending
	// version when true, ascending otherwise).
	MatchingVersions(ctx context.Context, req dep.Requirement, preferLatest, allowPrerelease bool) ([]*pkg.Package, error)
}

// RepoClient adapts a repo.Repository (optionally cache-fronted) into
// a resolve.Client, implementing spec.md §4.5 step 3: "Ask the
// repository (via the cache) for candidate packages."
type RepoClient struct {
	Repo repo.Repository
}

// NewRepoClient constructs a RepoClient over repository r.
func NewRepoClient(r repo.Repository) *RepoClient {
	return &RepoClient{Repo: r}
}

// MatchingVersions implements Client.
func (c *RepoClient) MatchingVersions(ctx context.Context, req dep.Requirement, preferLatest, allowPrerelease bool) ([]*pkg.Package, error) {
	candidates, err := c.Repo.FindPackages(ctx, req.Name, req.Range, 0, allowPrerelease)
	if err != nil {
		return nil, fmt.Errorf("resolve: fetching candidates for %q: %w", req.Name, err)
	}

	sortCandidates(candidates, preferLatest)
	return candidates, nil
}

func sortCandidates(ps []*pkg.Package, preferLatest bool) {
	sort.SliceStable(ps, func(i, j int) bool {
		vi, vj := ps[i].Version, ps[j].Version
		if ps[i].Versionless {
			vi = version.Empty()
		}
		if ps[j].Versionless {
			vj = version.Empty()
		}
		if preferLatest {
			return vj.Less(vi)
		}
		return vi.Less(vj)
	})
}

// LocalClient is an in-memory Client fixture, useful for tests and for
// resolving against a fixed set of packages without a repo.Repository.
// Grounded on the teacher's own LocalClient (util/resolve/client.go).
type LocalClient struct {
	byName map[string][]*pkg.Package
}

// NewLocalClient returns an empty LocalClient.
func NewLocalClient() *LocalClient {
	return &LocalClient{byName: make(map[string][]*pkg.Package)}
}

// Add registers p as a candidate for its own name.
func (lc *LocalClient) Add(p *pkg.Package) {
	lc.byName[p.Name] = append(lc.byName[p.Name], p)
}

// MatchingVersions implements Client. allowPrerelease is ignored:
// every candidate whose version lies in req.Range is returned,
// prerelease or not.
func (lc *LocalClient) MatchingVersions(ctx context.Context, req dep.Requirement, preferLatest, allowPrerelease bool) ([]*pkg.Package, error) {
	var out []*pkg.Package
	for _, p := range lc.byName[req.Name] {
		v := p.Version
		if p.Versionless {
			v = version.Empty()
		}
		if req.Range.Contains(v) {
			out = append(out, p)
		}
	}
	sortCandidates(out, preferLatest)
	return out, nil
}
