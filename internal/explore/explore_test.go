package explore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/symbolgraph"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func sampleGraph() *symbolgraph.Graph {
	a := fqs.New("ns", "a")
	b := fqs.New("ns", "b")
	c := fqs.New("ns", "c")
	testSym := fqs.New("ns", "test-a")
	return &symbolgraph.Graph{
		Nodes: map[fqs.FQS]*symbolgraph.Node{
			a:       {Symbol: a, Kind: symbolgraph.KindVar, File: "ns.clj", Line: 1},
			b:       {Symbol: b, Kind: symbolgraph.KindVar, File: "ns.clj", Line: 2},
			c:       {Symbol: c, Kind: symbolgraph.KindVar, File: "ns.clj", Line: 3},
			testSym: {Symbol: testSym, Kind: symbolgraph.KindTest, File: "ns.clj", Line: 4, Metadata: symbolgraph.Metadata{IsTest: true}},
		},
		Edges: []symbolgraph.Edge{
			{From: testSym, To: a, File: "ns.clj", Line: 4},
			{From: a, To: b, File: "ns.clj", Line: 1},
			{From: b, To: c, File: "ns.clj", Line: 2},
		},
		Files: map[string]*symbolgraph.FileRecord{"ns.clj": {Symbols: []fqs.FQS{a, b, c, testSym}}},
	}
}

func TestBuild_LoadsNodesAndEdges(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Build(sampleGraph()))

	unused, err := idx.UnusedSymbols()
	require.NoError(t, err)
	// Every var has an incoming edge once the edges are loaded (test-a -> a,
	// a -> b, b -> c), and the test node itself is excluded, so nothing is
	// unused. Had the edges not been loaded, a, b and c would all show up.
	assert.Empty(t, unused)
}

func TestTransitiveCallees_FollowsChainWithinDepth(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Build(sampleGraph()))

	a := fqs.New("ns", "a")
	b := fqs.New("ns", "b")
	c := fqs.New("ns", "c")

	callees, err := idx.TransitiveCallees(a, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []fqs.FQS{b, c}, callees)

	shallow, err := idx.TransitiveCallees(a, 1)
	require.NoError(t, err)
	assert.Equal(t, []fqs.FQS{b}, shallow)
}

func TestTransitiveCallers_FollowsReverseChain(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Build(sampleGraph()))

	c := fqs.New("ns", "c")
	testSym := fqs.New("ns", "test-a")
	a := fqs.New("ns", "a")
	b := fqs.New("ns", "b")

	callers, err := idx.TransitiveCallers(c, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []fqs.FQS{a, b, testSym}, callers)
}

func TestHotspots_RanksByFanInDescending(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Build(sampleGraph()))

	hotspots, err := idx.Hotspots(10)
	require.NoError(t, err)
	require.NotEmpty(t, hotspots)

	// Fan-in should be non-increasing across the ranked results.
	for i := 1; i < len(hotspots); i++ {
		assert.GreaterOrEqual(t, hotspots[i-1].FanIn, hotspots[i].FanIn)
	}
}

func TestUnusedSymbols_ExcludesTestsAndSymbolsWithIncomingEdges(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Build(sampleGraph()))

	unused, err := idx.UnusedSymbols()
	require.NoError(t, err)
	for _, sym := range unused {
		assert.NotEqual(t, "test-a", sym.Name)
	}
}

func TestBuild_IsIdempotentAcrossRebuild(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Build(sampleGraph()))
	require.NoError(t, idx.Build(sampleGraph()))

	hotspots, err := idx.Hotspots(10)
	require.NoError(t, err)
	assert.NotEmpty(t, hotspots)
}
