package depgraph

import "github.com/arlojordan/selectest/internal/symbolgraph"

// FromSymbolGraph builds a dependency graph from a symbol graph: every
// node becomes a vertex (including namespace and test nodes) and every
// usage edge is added, collapsing duplicates.
func FromSymbolGraph(g *symbolgraph.Graph) *Graph {
	dep := New()
	for sym := range g.Nodes {
		dep.AddVertex(sym)
	}
	for _, e := range g.Edges {
		dep.AddEdge(e.From, e.To)
	}
	return dep
}
