package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/symbolgraph"
)

func emptyGraph() *symbolgraph.Graph {
	return &symbolgraph.Graph{
		Nodes: make(map[fqs.FQS]*symbolgraph.Node),
		Files: make(map[string]*symbolgraph.FileRecord),
	}
}

func TestSaveLoadSnapshot_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.cache")

	a := fqs.New("ns", "a")
	g := emptyGraph()
	g.Nodes[a] = &symbolgraph.Node{
		Symbol:   a,
		Kind:     symbolgraph.KindVar,
		File:     "ns.clj",
		Line:     3,
		Metadata: symbolgraph.Metadata{IsTest: false, TestTargets: fqs.NewSet(a)},
	}
	g.Edges = []symbolgraph.Edge{{From: a, To: a, File: "ns.clj", Line: 3}}
	g.Files["ns.clj"] = &symbolgraph.FileRecord{Symbols: []fqs.FQS{a}}

	snap := Snapshot{
		AnalyzedAt:    "2026-08-02T00:00:00Z",
		Paths:         []string{"ns.clj"},
		Graph:         g,
		ContentHashes: map[fqs.FQS]string{a: "deadbeef"},
		ReverseIndex:  map[fqs.FQS]fqs.Set{a: fqs.NewSet(a)},
	}

	require.NoError(t, SaveSnapshot(path, snap))

	loaded, ok := LoadSnapshot(path)
	require.True(t, ok)
	assert.Equal(t, snap.AnalyzedAt, loaded.AnalyzedAt)
	assert.Equal(t, snap.Paths, loaded.Paths)
	assert.Equal(t, snap.ContentHashes, loaded.ContentHashes)
	require.Contains(t, loaded.Graph.Nodes, a)
	assert.Equal(t, symbolgraph.KindVar, loaded.Graph.Nodes[a].Kind)
	assert.Equal(t, 3, loaded.Graph.Nodes[a].Line)
	assert.True(t, loaded.Graph.Nodes[a].Metadata.TestTargets.Has(a))
	require.Len(t, loaded.Graph.Edges, 1)
	require.Contains(t, loaded.ReverseIndex, a)
}

func TestLoadSnapshot_MissingFileIsAbsentNotError(t *testing.T) {
	_, ok := LoadSnapshot(filepath.Join(t.TempDir(), "does-not-exist.cache"))
	assert.False(t, ok)
}

func TestLoadSnapshot_CorruptFileIsAbsentNotError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.cache")
	require.NoError(t, os.WriteFile(path, []byte("not valid tagged { content"), 0o644))

	_, ok := LoadSnapshot(path)
	assert.False(t, ok)
}

func TestSaveLoadBaseline_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.cache")

	// Include a mangled macro-test-style FQS to exercise the
	// string-key-encoding caveat noted on SaveBaseline.
	mangled, _ := fqs.Parse("myapp.core-test/test__handles_empty_input")
	baseline := map[fqs.FQS]string{
		fqs.New("ns", "a"): "h1",
		mangled:            "h2",
	}
	require.NoError(t, SaveBaseline(path, baseline))

	loaded := LoadBaseline(path)
	assert.Equal(t, baseline, loaded)
}

func TestLoadBaseline_MissingFileIsEmpty(t *testing.T) {
	out := LoadBaseline(filepath.Join(t.TempDir(), "missing.cache"))
	assert.Empty(t, out)
}

func TestLoadBaseline_CorruptFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.cache")
	require.NoError(t, os.WriteFile(path, []byte("{{{not tagged"), 0o644))
	out := LoadBaseline(path)
	assert.Empty(t, out)
}

func TestUpdateBaseline_MergesWithoutDroppingExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.cache")
	a := fqs.New("ns", "a")
	b := fqs.New("ns", "b")

	require.NoError(t, SaveBaseline(path, map[fqs.FQS]string{a: "h1"}))
	require.NoError(t, UpdateBaseline(path, map[fqs.FQS]string{b: "h2"}))

	loaded := LoadBaseline(path)
	assert.Equal(t, "h1", loaded[a])
	assert.Equal(t, "h2", loaded[b])
}

func TestStatus_ReportsExistenceAndSize(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "snap")
	require.NoError(t, os.WriteFile(snapPath, []byte("hello"), 0o644))

	snap, baseline := Status(Paths{SnapshotPath: snapPath, BaselinePath: filepath.Join(dir, "missing")})
	assert.True(t, snap.Exists)
	assert.Equal(t, int64(5), snap.Size)
	assert.False(t, baseline.Exists)
}

func TestClearAnalysis_RemovesOnlySnapshot(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{SnapshotPath: filepath.Join(dir, "snap"), BaselinePath: filepath.Join(dir, "baseline")}
	require.NoError(t, os.WriteFile(paths.SnapshotPath, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(paths.BaselinePath, []byte("y"), 0o644))

	require.NoError(t, ClearAnalysis(paths))
	_, err := os.Stat(paths.SnapshotPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(paths.BaselinePath)
	assert.NoError(t, err)
}

func TestClearAll_RemovesBothFilesAndTreatsMissingAsNoOp(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{SnapshotPath: filepath.Join(dir, "snap"), BaselinePath: filepath.Join(dir, "baseline")}
	// Neither file exists yet.
	assert.NoError(t, ClearAll(paths))

	require.NoError(t, os.WriteFile(paths.SnapshotPath, []byte("x"), 0o644))
	require.NoError(t, ClearAll(paths))
	_, err := os.Stat(paths.SnapshotPath)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveSnapshot_IsAtomicViaTempFileRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "snap.cache")
	require.NoError(t, SaveSnapshot(path, Snapshot{Graph: emptyGraph(), ContentHashes: map[fqs.FQS]string{}}))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "no leftover temp file expected")
	}
}
