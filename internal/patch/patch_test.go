package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlojordan/selectest/internal/fact"
	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/symbolgraph"
)

func TestRehash_OnlyTouchesRequestedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ns.clj")
	require.NoError(t, os.WriteFile(path, []byte("(def a 1)\n(def b 2)\n"), 0o644))

	a := fqs.New("ns", "a")
	b := fqs.New("ns", "b")
	g := &symbolgraph.Graph{
		Nodes: map[fqs.FQS]*symbolgraph.Node{
			a: {Symbol: a, File: path, Line: 1, EndLine: 1},
			b: {Symbol: b, File: "other.clj", Line: 1, EndLine: 1},
		},
		Files: map[string]*symbolgraph.FileRecord{
			path:        {Symbols: []fqs.FQS{a}},
			"other.clj": {Symbols: []fqs.FQS{b}},
		},
	}

	old := map[fqs.FQS]string{a: "stale", b: "untouched"}
	merged := Rehash(g, old, map[string]struct{}{path: {}})

	assert.NotEqual(t, "stale", merged[a])
	assert.Equal(t, "untouched", merged[b])
}

func TestApplyChangedFiles_EvictsDeletedFileSymbols(t *testing.T) {
	a := fqs.New("ns", "a")
	b := fqs.New("ns", "b")
	g := &symbolgraph.Graph{
		Nodes: map[fqs.FQS]*symbolgraph.Node{
			a: {Symbol: a, File: "gone.clj"},
			b: {Symbol: b, File: "keep.clj"},
		},
		Files: map[string]*symbolgraph.FileRecord{
			"gone.clj": {Symbols: []fqs.FQS{a}},
			"keep.clj": {Symbols: []fqs.FQS{b}},
		},
		Edges: []symbolgraph.Edge{{From: b, To: a, File: "keep.clj"}},
	}

	out := ApplyChangedFiles(g, []string{"gone.clj"}, nil, fact.Facts{}, symbolgraph.DefaultConfig())

	assert.NotContains(t, out.Nodes, a)
	assert.Contains(t, out.Nodes, b)
	assert.NotContains(t, out.Files, "gone.clj")
	// The edge from b to the now-deleted a must be dropped as dangling.
	assert.Empty(t, out.Edges)
}

func TestApplyChangedFiles_MergesNewFacts(t *testing.T) {
	a := fqs.New("ns", "a")
	untouched := fqs.New("other", "d")
	g := &symbolgraph.Graph{
		Nodes: map[fqs.FQS]*symbolgraph.Node{
			a:         {Symbol: a, File: "ns.clj"},
			untouched: {Symbol: untouched, File: "other.clj"},
		},
		Files: map[string]*symbolgraph.FileRecord{
			"ns.clj":    {Symbols: []fqs.FQS{a}},
			"other.clj": {Symbols: []fqs.FQS{untouched}},
		},
	}

	changed := fact.Facts{
		Definitions: []fact.Definition{
			{Namespace: "ns", Name: "c", File: "ns.clj", StartLine: 5, EndLine: 5},
		},
	}

	out := ApplyChangedFiles(g, nil, []string{"ns.clj"}, changed, symbolgraph.DefaultConfig())
	assert.Contains(t, out.Nodes, fqs.New("ns", "c"))
	assert.Contains(t, out.Nodes, untouched, "symbol from a file not in changedFiles should remain")
}

func TestApplyChangedFiles_EvictsStaleSymbolsFromChangedFile(t *testing.T) {
	a := fqs.New("ns", "a")
	b := fqs.New("ns", "b")
	g := &symbolgraph.Graph{
		Nodes: map[fqs.FQS]*symbolgraph.Node{
			a: {Symbol: a, File: "ns.clj"},
			b: {Symbol: b, File: "ns.clj"},
		},
		Files: map[string]*symbolgraph.FileRecord{
			"ns.clj": {Symbols: []fqs.FQS{a, b}},
		},
		Edges: []symbolgraph.Edge{{From: a, To: b, File: "ns.clj"}},
	}

	// b was renamed to c within the same (edited, not deleted) file.
	changed := fact.Facts{
		Definitions: []fact.Definition{
			{Namespace: "ns", Name: "a", File: "ns.clj", StartLine: 1, EndLine: 1},
			{Namespace: "ns", Name: "c", File: "ns.clj", StartLine: 2, EndLine: 2},
		},
	}

	out := ApplyChangedFiles(g, nil, []string{"ns.clj"}, changed, symbolgraph.DefaultConfig())
	assert.NotContains(t, out.Nodes, b, "renamed-away symbol must not linger as a ghost node")
	assert.Contains(t, out.Nodes, a)
	assert.Contains(t, out.Nodes, fqs.New("ns", "c"))
}

func TestApplyChangedFiles_DropsEdgeToUnresolvedTarget(t *testing.T) {
	a := fqs.New("ns", "a")
	missing := fqs.New("ns", "missing")
	g := &symbolgraph.Graph{
		Nodes: map[fqs.FQS]*symbolgraph.Node{a: {Symbol: a, File: "ns.clj"}},
		Files: map[string]*symbolgraph.FileRecord{"ns.clj": {Symbols: []fqs.FQS{a}}},
		Edges: []symbolgraph.Edge{{From: a, To: missing, File: "ns.clj"}},
	}

	out := ApplyChangedFiles(g, nil, nil, fact.Facts{}, symbolgraph.DefaultConfig())
	assert.Empty(t, out.Edges)
}
