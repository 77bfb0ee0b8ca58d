// Package depgraph implements the dependency graph: a directed
// adjacency-list graph over FQS vertices with transitive-successor
// reachability, a reverse-dependency index computed once via DP, and
// shortest-path witnesses for explaining a selection.
package depgraph

import (
	"sort"

	"github.com/arlojordan/selectest/internal/fqs"
)

// Graph is a directed simple graph (duplicate edges collapsed) over FQS
// vertices.
type Graph struct {
	vertices  map[fqs.FQS]struct{}
	adjacency map[fqs.FQS]map[fqs.FQS]struct{} // A -> B meaning "A uses B"
	order     map[fqs.FQS][]fqs.FQS            // A -> successors in first-seen edge order (for witness tie-breaks)
	preds     map[fqs.FQS]map[fqs.FQS]struct{} // B -> {A : A uses B}, maintained alongside adjacency
}

// New builds an empty graph.
func New() *Graph {
	return &Graph{
		vertices:  make(map[fqs.FQS]struct{}),
		adjacency: make(map[fqs.FQS]map[fqs.FQS]struct{}),
		order:     make(map[fqs.FQS][]fqs.FQS),
		preds:     make(map[fqs.FQS]map[fqs.FQS]struct{}),
	}
}

// AddVertex ensures v is present in the graph even if it has no edges.
func (g *Graph) AddVertex(v fqs.FQS) {
	g.vertices[v] = struct{}{}
	if g.adjacency[v] == nil {
		g.adjacency[v] = make(map[fqs.FQS]struct{})
	}
	if g.preds[v] == nil {
		g.preds[v] = make(map[fqs.FQS]struct{})
	}
}

// AddEdge records A -> B ("A uses B"), collapsing duplicates and adding
// both endpoints as vertices if not already present.
func (g *Graph) AddEdge(from, to fqs.FQS) {
	g.AddVertex(from)
	g.AddVertex(to)
	if _, exists := g.adjacency[from][to]; exists {
		return
	}
	g.adjacency[from][to] = struct{}{}
	g.order[from] = append(g.order[from], to)
	g.preds[to][from] = struct{}{}
}

// DirectPredecessors returns the vertices with a direct edge into v, in
// deterministic sorted order.
func (g *Graph) DirectPredecessors(v fqs.FQS) []fqs.FQS {
	out := make([]fqs.FQS, 0, len(g.preds[v]))
	for p := range g.preds[v] {
		out = append(out, p)
	}
	fqs.SortFQS(out)
	return out
}

// Vertices returns all vertices in deterministic order.
func (g *Graph) Vertices() []fqs.FQS {
	out := make([]fqs.FQS, 0, len(g.vertices))
	for v := range g.vertices {
		out = append(out, v)
	}
	fqs.SortFQS(out)
	return out
}

// Has reports whether v is a vertex of the graph.
func (g *Graph) Has(v fqs.FQS) bool {
	_, ok := g.vertices[v]
	return ok
}

// Successors returns v's direct successors in stable edge-insertion order.
func (g *Graph) Successors(v fqs.FQS) []fqs.FQS {
	return append([]fqs.FQS(nil), g.order[v]...)
}

// Reachable returns the set of vertices reachable from v, including v
// itself — a test is always considered to cover its own definition. BFS
// with a sorted frontier keeps the result independent of adjacency map
// iteration order — O(V+E) per call.
func (g *Graph) Reachable(v fqs.FQS) fqs.Set {
	visited := fqs.NewSet(v)
	frontier := []fqs.FQS{v}
	for len(frontier) > 0 {
		sort.Slice(frontier, func(i, j int) bool { return fqs.Less(frontier[i], frontier[j]) })
		next := make([]fqs.FQS, 0)
		for _, cur := range frontier {
			for _, s := range g.sortedSuccessors(cur) {
				if !visited.Has(s) {
					visited.Add(s)
					next = append(next, s)
				}
			}
		}
		frontier = next
	}
	return visited
}

func (g *Graph) sortedSuccessors(v fqs.FQS) []fqs.FQS {
	succ := make([]fqs.FQS, 0, len(g.adjacency[v]))
	for s := range g.adjacency[v] {
		succ = append(succ, s)
	}
	fqs.SortFQS(succ)
	return succ
}

// ReverseIndex computes rev[x] = the set of vertices from which x is
// reachable, excluding x itself.
//
// A vertex's transitive closure can't be computed with a simple per-vertex
// DP when the graph has cycles: entering a vertex that's already mid
// computation has no completed closure to return, and short-circuiting
// with an empty set there permanently truncates whichever vertex is
// entered first on the cycle. Instead this contracts the graph into its
// strongly connected components (Tarjan's algorithm, see
// stronglyConnectedComponents): every vertex in one SCC reaches every
// other member, so the SCC's closure is its own membership plus the
// closures of every SCC it has an edge into. Tarjan emits SCCs in reverse
// topological order of the condensation graph, so by the time an SCC is
// processed, every SCC it points to already has its closure computed — a
// single DP pass over the condensation, no cycle guard needed. Each
// vertex's rev set then excludes only itself, not the rest of its own SCC
// (which legitimately reaches it via the cycle).
func (g *Graph) ReverseIndex() map[fqs.FQS]fqs.Set {
	sccs, sccOf := g.stronglyConnectedComponents()

	closure := make([]fqs.Set, len(sccs))
	for i, members := range sccs {
		c := fqs.NewSet(members...)
		for _, v := range members {
			for _, s := range g.sortedSuccessors(v) {
				j := sccOf[s]
				if j == i {
					continue
				}
				for d := range closure[j] {
					c.Add(d)
				}
			}
		}
		closure[i] = c
	}

	rev := make(map[fqs.FQS]fqs.Set, len(g.vertices))
	for v := range g.vertices {
		rev[v] = fqs.Set{}
	}
	for i, members := range sccs {
		for d := range closure[i] {
			for _, v := range members {
				if v != d {
					rev[d].Add(v)
				}
			}
		}
	}
	return rev
}

// stronglyConnectedComponents partitions the graph's vertices into
// strongly connected components via Tarjan's algorithm. sccs[i] lists SCC
// i's members; sccOf maps each vertex to its SCC's index into sccs. SCCs
// are appended in the order Tarjan completes them, which is a reverse
// topological order of the condensation graph — ReverseIndex depends on
// that ordering to compute each SCC's closure in a single pass.
func (g *Graph) stronglyConnectedComponents() ([][]fqs.FQS, map[fqs.FQS]int) {
	index := make(map[fqs.FQS]int, len(g.vertices))
	lowlink := make(map[fqs.FQS]int, len(g.vertices))
	onStack := make(map[fqs.FQS]bool, len(g.vertices))
	var stack []fqs.FQS
	var sccs [][]fqs.FQS
	next := 0

	var strongconnect func(v fqs.FQS)
	strongconnect = func(v fqs.FQS) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.sortedSuccessors(v) {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var members []fqs.FQS
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				members = append(members, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, members)
		}
	}

	for _, v := range g.Vertices() {
		if _, seen := index[v]; !seen {
			strongconnect(v)
		}
	}

	sccOf := make(map[fqs.FQS]int, len(g.vertices))
	for i, members := range sccs {
		for _, v := range members {
			sccOf[v] = i
		}
	}
	return sccs, sccOf
}

// Witness finds a shortest src -> ... -> dst path via BFS, ties broken by
// edge insertion order. Returns (nil, false) if dst is not reachable from
// src.
func (g *Graph) Witness(src, dst fqs.FQS) ([]fqs.FQS, bool) {
	if src == dst {
		return []fqs.FQS{src}, true
	}
	prev := map[fqs.FQS]fqs.FQS{src: src}
	queue := []fqs.FQS{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, s := range g.Successors(cur) {
			if _, seen := prev[s]; seen {
				continue
			}
			prev[s] = cur
			if s == dst {
				return reconstructPath(prev, src, dst), true
			}
			queue = append(queue, s)
		}
	}
	return nil, false
}

func reconstructPath(prev map[fqs.FQS]fqs.FQS, src, dst fqs.FQS) []fqs.FQS {
	path := []fqs.FQS{dst}
	cur := dst
	for cur != src {
		cur = prev[cur]
		path = append(path, cur)
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
