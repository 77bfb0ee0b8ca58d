package symbolgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlojordan/selectest/internal/fact"
	"github.com/arlojordan/selectest/internal/fqs"
)

func TestBuild_VariableAndNamespaceNodes(t *testing.T) {
	facts := fact.Facts{
		Namespaces: []fact.Namespace{{Name: "myapp.core", File: "myapp/core.clj", StartLine: 1}},
		Definitions: []fact.Definition{
			{Namespace: "myapp.core", Name: "greet", File: "myapp/core.clj", StartLine: 3, EndLine: 5},
		},
	}

	g := Build(facts, DefaultConfig())

	nsSym := fqs.New("myapp.core", "myapp.core")
	varSym := fqs.New("myapp.core", "greet")

	require.Contains(t, g.Nodes, nsSym)
	assert.Equal(t, KindNamespace, g.Nodes[nsSym].Kind)

	require.Contains(t, g.Nodes, varSym)
	assert.Equal(t, KindVar, g.Nodes[varSym].Kind)
	assert.Equal(t, 3, g.Nodes[varSym].Line)
}

func TestBuild_IntegrationNamespaceMarksNodes(t *testing.T) {
	facts := fact.Facts{
		Definitions: []fact.Definition{
			{Namespace: "myapp.integration.smoke", Name: "boots-ok", File: "smoke.clj", StartLine: 1, EndLine: 3},
		},
	}
	g := Build(facts, DefaultConfig())
	sym := fqs.New("myapp.integration.smoke", "boots-ok")
	assert.True(t, g.Nodes[sym].Metadata.IsIntegration)
}

func TestBuild_EdgeEmissionFromEnclosingFunction(t *testing.T) {
	facts := fact.Facts{
		Definitions: []fact.Definition{
			{Namespace: "ns", Name: "a", File: "ns.clj", StartLine: 1, EndLine: 1},
			{Namespace: "ns", Name: "b", File: "ns.clj", StartLine: 2, EndLine: 2},
		},
		Usages: []fact.Usage{
			{Namespace: "ns", Enclosing: "a", Target: "b", TargetNS: "ns", File: "ns.clj", Line: 1},
		},
	}
	g := Build(facts, DefaultConfig())
	require.Len(t, g.Edges, 1)
	assert.Equal(t, fqs.New("ns", "a"), g.Edges[0].From)
	assert.Equal(t, fqs.New("ns", "b"), g.Edges[0].To)
}

func TestBuild_EdgeDroppedWhenTargetUnresolved(t *testing.T) {
	facts := fact.Facts{
		Definitions: []fact.Definition{
			{Namespace: "ns", Name: "a", File: "ns.clj", StartLine: 1, EndLine: 1},
		},
		Usages: []fact.Usage{
			{Namespace: "ns", Enclosing: "a", Target: "unresolved-thing", File: "ns.clj", Line: 1},
		},
	}
	g := Build(facts, DefaultConfig())
	assert.Empty(t, g.Edges)
}

func TestBuild_MacroTestNodeSynthesisAndMangling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core_test.clj")
	content := "(ns myapp.core-test)\n" +
		"(deftest \"handles empty input\"\n" +
		"  (is (= 1 (myapp.core/f))))\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	facts := fact.Facts{
		Definitions: []fact.Definition{
			{Namespace: "myapp.core", Name: "f", File: "myapp/core.clj", StartLine: 1, EndLine: 1},
		},
		Usages: []fact.Usage{
			{Namespace: "myapp.core-test", Target: "test/deftest", TargetNS: "test", File: path, Line: 2},
			{Namespace: "myapp.core-test", Target: "f", TargetNS: "myapp.core", File: path, Line: 3},
		},
	}

	g := Build(facts, DefaultConfig())

	mangled := MangleTestName("myapp.core-test", "handles empty input")
	node, ok := g.Nodes[mangled]
	require.True(t, ok, "expected a synthesized macro-test node")
	assert.Equal(t, KindTest, node.Kind)
	assert.True(t, node.Metadata.IsTest)

	var sawEdgeFromTest bool
	for _, e := range g.Edges {
		if e.From == mangled && e.To == fqs.New("myapp.core", "f") {
			sawEdgeFromTest = true
		}
	}
	assert.True(t, sawEdgeFromTest, "expected an edge from the synthesized test node to the used symbol")
}

func TestBuild_UnreadableMacroTestFileDoesNotAffectOtherFiles(t *testing.T) {
	facts := fact.Facts{
		Definitions: []fact.Definition{
			{Namespace: "ns", Name: "a", File: "ns.clj", StartLine: 1, EndLine: 1},
		},
		Usages: []fact.Usage{
			{Namespace: "missing-ns", Target: "test/deftest", TargetNS: "test", File: "/nonexistent/file.clj", Line: 1},
		},
	}
	g := Build(facts, DefaultConfig())
	assert.Contains(t, g.Nodes, fqs.New("ns", "a"))
}

func TestBuild_DeterministicUnderInputReordering(t *testing.T) {
	defs := []fact.Definition{
		{Namespace: "ns", Name: "a", File: "ns.clj", StartLine: 1, EndLine: 1},
		{Namespace: "ns", Name: "b", File: "ns.clj", StartLine: 2, EndLine: 2},
	}
	usages := []fact.Usage{
		{Namespace: "ns", Enclosing: "a", Target: "b", TargetNS: "ns", File: "ns.clj", Line: 1},
	}

	forward := fact.Facts{Definitions: defs, Usages: usages}
	reversed := fact.Facts{
		Definitions: []fact.Definition{defs[1], defs[0]},
		Usages:      usages,
	}

	g1 := Build(forward, DefaultConfig())
	g2 := Build(reversed, DefaultConfig())

	assert.Equal(t, g1.Nodes, g2.Nodes)
	assert.Equal(t, g1.Edges, g2.Edges)
	assert.Equal(t, g1.Files, g2.Files)
}

func TestBuild_FilesIndex(t *testing.T) {
	facts := fact.Facts{
		Definitions: []fact.Definition{
			{Namespace: "ns", Name: "a", File: "ns.clj", StartLine: 1, EndLine: 1},
			{Namespace: "ns", Name: "b", File: "ns.clj", StartLine: 2, EndLine: 2},
		},
	}
	g := Build(facts, DefaultConfig())
	require.Contains(t, g.Files, "ns.clj")
	assert.Len(t, g.Files["ns.clj"].Symbols, 2)
}
