// Package patch implements the incremental-update path (C7): rehashing a
// subset of files without a full reanalyze, and merging an external
// analyzer's facts for a changed-file set into an existing graph while
// evicting symbols from files that no longer exist or were re-extracted.
package patch

import (
	"github.com/arlojordan/selectest/internal/fact"
	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/hash"
	"github.com/arlojordan/selectest/internal/symbolgraph"
)

// Rehash recomputes content hashes for only the symbols defined in
// files, merging the result over the existing hashes. It never touches
// graph structure (nodes/edges) — valid only when no structural change
// (new/removed definitions, new files, renames) has occurred since the
// last full analyze.
func Rehash(g *symbolgraph.Graph, hashes map[fqs.FQS]string, files map[string]struct{}) map[fqs.FQS]string {
	byFile := make(map[string][]hash.Fragment)
	for path, rec := range g.Files {
		if _, ok := files[path]; !ok {
			continue
		}
		for _, sym := range rec.Symbols {
			n, ok := g.Nodes[sym]
			if !ok {
				continue
			}
			byFile[path] = append(byFile[path], hash.Fragment{Symbol: sym, StartLine: n.Line, EndLine: n.EndLine})
		}
	}

	fresh := hash.BulkHashByFile(byFile)

	merged := make(map[fqs.FQS]string, len(hashes)+len(fresh))
	for sym, h := range hashes {
		merged[sym] = h
	}
	for sym, h := range fresh {
		merged[sym] = h
	}
	return merged
}

// ApplyChangedFiles evicts every symbol defined in a deleted or changed
// file (from nodes, edges, and the files map) — a changed file's prior
// definitions must go too, not just deleted files', or a symbol removed
// or renamed out of an edited file lingers as a ghost node with a frozen
// hash — then re-analyzes the still-existing changed files and merges the
// result into the surviving graph. Edges whose endpoints no longer
// resolve are dropped.
func ApplyChangedFiles(g *symbolgraph.Graph, deletedFiles, changedFiles []string, changedFacts fact.Facts, cfg symbolgraph.Config) *symbolgraph.Graph {
	out := evict(g, deletedFiles, changedFiles)

	delta := symbolgraph.Build(changedFacts, cfg)
	for sym, n := range delta.Nodes {
		out.Nodes[sym] = n
	}
	for path, rec := range delta.Files {
		out.Files[path] = rec
	}
	out.Edges = append(out.Edges, delta.Edges...)

	out.Edges = dropDanglingEdges(out)
	return out
}

func evict(g *symbolgraph.Graph, deletedFiles, changedFiles []string) *symbolgraph.Graph {
	deleted := make(map[string]struct{}, len(deletedFiles)+len(changedFiles))
	for _, f := range deletedFiles {
		deleted[f] = struct{}{}
	}
	for _, f := range changedFiles {
		deleted[f] = struct{}{}
	}

	out := &symbolgraph.Graph{
		Nodes: make(map[fqs.FQS]*symbolgraph.Node, len(g.Nodes)),
		Files: make(map[string]*symbolgraph.FileRecord, len(g.Files)),
	}
	for sym, n := range g.Nodes {
		if _, gone := deleted[n.File]; gone {
			continue
		}
		out.Nodes[sym] = n
	}
	for path, rec := range g.Files {
		if _, gone := deleted[path]; gone {
			continue
		}
		out.Files[path] = rec
	}
	for _, e := range g.Edges {
		if _, gone := deleted[e.File]; gone {
			continue
		}
		out.Edges = append(out.Edges, e)
	}
	return out
}

func dropDanglingEdges(g *symbolgraph.Graph) []symbolgraph.Edge {
	out := make([]symbolgraph.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			continue
		}
		if _, ok := g.Nodes[e.To]; !ok {
			continue
		}
		out = append(out, e)
	}
	return out
}
