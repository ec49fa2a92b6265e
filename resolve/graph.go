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

package resolve

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rez-project/rez/dep"
)

// NodeID identifies a node in a Graph; it indexes Graph.Nodes.
type NodeID int

// Identity is a stable (name, version) pair a Node carries, renamed
// from the teacher's VersionKey since rez has a single package system
// rather than npm/Maven/PyPI's System enum.
type Identity struct {
	Name        string
	Version     string // rendered version string, "" for versionless
	Versionless bool
}

func (k Identity) String() string {
	if k.Versionless {
		return k.Name
	}
	return k.Name + "-" + k.Version
}

func (k Identity) Compare(o Identity) int {
	if c := strings.Compare(k.Name, o.Name); c != 0 {
		return c
	}
	if k.Versionless != o.Versionless {
		if k.Versionless {
			return 1 // versionless sorts after concrete, matching repo's ordering
		}
		return -1
	}
	return strings.Compare(k.Version, o.Version)
}

// Node is a concrete resolved package in a Graph.
type Node struct {
	Version    Identity
	VariantIdx int
	Errors     []NodeError
}

// NodeError records a resolution error attached to a Node's requirement.
type NodeError struct {
	Req   Identity
	Error string
}

func (ne NodeError) Compare(other NodeError) int {
	if c := ne.Req.Compare(other.Req); c != 0 {
		return c
	}
	return strings.Compare(ne.Error, other.Error)
}

// Edge represents a resolution from an importer Node to an imported
// Node, satisfying the importer's requirement.
type Edge struct {
	From        NodeID
	To          NodeID
	Requirement string
	Type        dep.Type
}

// Graph holds the result of a dependency resolution.
type Graph struct {
	// Nodes[0] is the (synthetic) root representing the original
	// requirement list.
	Nodes []Node
	Edges []Edge

	// Error is set if the resolver could not complete, independent of
	// per-requirement failures captured in FailedRequirements.
	Error string

	Duration time.Duration
}

// AddNode inserts a node, unconnected, and returns its ID.
func (g *Graph) AddNode(id Identity, variantIdx int) NodeID {
	g.Nodes = append(g.Nodes, Node{Version: id, VariantIdx: variantIdx})
	return NodeID(len(g.Nodes) - 1)
}

// AddEdge connects two existing nodes.
func (g *Graph) AddEdge(from, to NodeID, req string, t dep.Type) error {
	if !g.contains(from) {
		return fmt.Errorf("resolve: node not in graph: %v", from)
	}
	if !g.contains(to) {
		return fmt.Errorf("resolve: node not in graph: %v", to)
	}
	g.Edges = append(g.Edges, Edge{From: from, To: to, Requirement: req, Type: t})
	return nil
}

// AddError attaches a resolution error to node n.
func (g *Graph) AddError(n NodeID, req Identity, errMsg string) error {
	if !g.contains(n) {
		return fmt.Errorf("resolve: node not in graph: %v", n)
	}
	g.Nodes[n].Errors = append(g.Nodes[n].Errors, NodeError{Req: req, Error: errMsg})
	return nil
}

func (g *Graph) contains(n NodeID) bool {
	return n >= 0 && int(n) < len(g.Nodes)
}

// Canon canonicalizes the graph in place so two graphs representing
// the same resolution compare equal regardless of discovery order.
// Adapted from the teacher's Graph.Canon: a cheap sort-based pass,
// falling back to BFS canonicalization only if the sort finds
// isomorphic (equal) nodes it can't otherwise distinguish.
func (g *Graph) Canon() error {
	for i := range g.Nodes {
		sort.Slice(g.Nodes[i].Errors, func(a, b int) bool {
			return g.Nodes[i].Errors[a].Compare(g.Nodes[i].Errors[b]) < 0
		})
	}

	on := newOrderedNodes(g.Nodes)
	on.keepZero = true
	sort.Sort(on)
	if on.root != 0 {
		panic("resolve: root " + g.Nodes[on.root].Version.String() + " no longer at index 0")
	}
	g.renumber(on.mapping(), false)

	if on.dupe {
		m, err := g.canonBFS()
		if err != nil {
			return err
		}
		g.renumber(m, true)
	}
	return nil
}

func (g *Graph) renumber(oldToNew []int, includeNodes bool) {
	if includeNodes {
		nn := make([]Node, len(g.Nodes))
		for i, j := range oldToNew {
			nn[j] = g.Nodes[i]
		}
		g.Nodes = nn
	}
	for i, e := range g.Edges {
		e.From = NodeID(oldToNew[e.From])
		e.To = NodeID(oldToNew[e.To])
		g.Edges[i] = e
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		ei, ej := g.Edges[i], g.Edges[j]
		if ej.From != ei.From {
			return ei.From < ej.From
		}
		if ei.To != ej.To {
			return ei.To < ej.To
		}
		if ei.Requirement != ej.Requirement {
			return ei.Requirement < ej.Requirement
		}
		return ei.Type.Compare(ej.Type) < 0
	})
}

func (g *Graph) canonBFS() ([]int, error) {
	edges := make([][]int, len(g.Nodes))
	for _, e := range g.Edges {
		edges[int(e.From)] = append(edges[int(e.From)], int(e.To))
	}

	oldToNew := make([]int, len(g.Nodes))
	for i := range oldToNew {
		oldToNew[i] = -1
	}

	nextLabel := 0
	queue := []int{0}
	var scratch orderedNodes
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if oldToNew[n] > -1 {
			continue
		}
		oldToNew[n] = nextLabel
		nextLabel++

		scratch.nodes, scratch.ids = scratch.nodes[:0], scratch.ids[:0]
		for _, to := range edges[n] {
			if oldToNew[to] == -1 {
				scratch.nodes = append(scratch.nodes, g.Nodes[to])
				scratch.ids = append(scratch.ids, to)
			}
		}
		if len(scratch.nodes) > 1 {
			sort.Sort(&scratch)
			if scratch.dupe {
				return nil, fmt.Errorf("resolve: node %v has duplicate direct dependency", g.Nodes[n].Version)
			}
		}
		queue = append(queue, scratch.ids...)
	}
	if rem := len(g.Nodes) - nextLabel; rem > 0 {
		return nil, fmt.Errorf("resolve: %d nodes unreachable from root", rem)
	}
	return oldToNew, nil
}

// orderedNodes is a sort.Interface over parallel Nodes/ids slices,
// used by Canon's cheap sort-based pass and canonBFS's per-level sort.
type orderedNodes struct {
	keepZero bool
	nodes    []Node
	ids      []int
	root     int
	dupe     bool
}

func newOrderedNodes(nodes []Node) *orderedNodes {
	ids := make([]int, len(nodes))
	for i := range ids {
		ids[i] = i
	}
	return &orderedNodes{nodes: nodes, ids: ids}
}

func (n *orderedNodes) mapping() []int {
	m := make([]int, len(n.ids))
	for i, j := range n.ids {
		m[j] = i
	}
	return m
}

func (n *orderedNodes) Len() int { return len(n.ids) }
func (n *orderedNodes) Swap(i, j int) {
	n.nodes[i], n.nodes[j] = n.nodes[j], n.nodes[i]
	n.ids[i], n.ids[j] = n.ids[j], n.ids[i]
	if i == n.root {
		n.root = j
	} else if j == n.root {
		n.root = i
	}
}
func (n *orderedNodes) Less(i, j int) bool {
	ni, nj := n.nodes[i], n.nodes[j]
	c := compareNodes(ni, nj)
	if c == 0 {
		n.dupe = true
	}
	if n.keepZero && (i == n.root || j == n.root) {
		return i == n.root
	}
	return c < 0
}

func compareNodes(n, o Node) int {
	if c := n.Version.Compare(o.Version); c != 0 {
		return c
	}
	if li, lj := len(n.Errors), len(o.Errors); li != lj {
		if li < lj {
			return -1
		}
		return 1
	}
	for i := range n.Errors {
		if c := n.Errors[i].Compare(o.Errors[i]); c != 0 {
			return c
		}
	}
	return 0
}
