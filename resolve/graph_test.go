package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rez-project/rez/dep"
)

func buildTestGraph(order []string) *Graph {
	g := &Graph{}
	g.AddNode(Identity{Name: "__root__", Versionless: true}, 0)
	ids := make(map[string]NodeID)
	for _, name := range order {
		ids[name] = g.AddNode(Identity{Name: name, Version: "1.0.0"}, 0)
	}
	for _, name := range order {
		_ = g.AddEdge(0, ids[name], name, dep.Type{})
	}
	return g
}

func TestGraphCanonIsOrderIndependent(t *testing.T) {
	g1 := buildTestGraph([]string{"a", "b", "c"})
	g2 := buildTestGraph([]string{"c", "a", "b"})

	if err := g1.Canon(); err != nil {
		t.Fatalf("g1.Canon: %v", err)
	}
	if err := g2.Canon(); err != nil {
		t.Fatalf("g2.Canon: %v", err)
	}

	names1 := nodeNames(g1)
	names2 := nodeNames(g2)
	if diff := cmp.Diff(names1, names2); diff != "" {
		t.Fatalf("canonicalized node order differs (-g1 +g2):\n%s", diff)
	}
}

func nodeNames(g *Graph) []string {
	out := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.Version.Name
	}
	return out
}

func TestGraphAddEdgeRejectsUnknownNode(t *testing.T) {
	g := &Graph{}
	g.AddNode(Identity{Name: "root"}, 0)
	if err := g.AddEdge(0, 5, "x", dep.Type{}); err == nil {
		t.Fatal("AddEdge with out-of-range node: want error, got nil")
	}
}
