// Package symbolgraph builds the symbol graph from filtered analyzer
// facts: nodes for variables, namespaces, and macro-declared tests, plus
// usage edges and a files index.
package symbolgraph

import "github.com/arlojordan/selectest/internal/fqs"

// Kind is the node kind.
type Kind string

const (
	KindVar       Kind = "var"
	KindNamespace Kind = "namespace"
	KindTest      Kind = "test"
)

// Node is a symbol node.
type Node struct {
	Symbol    fqs.FQS
	Kind      Kind
	File      string
	Line      int
	EndLine   int // 0 means absent (synthetic namespace nodes)
	DefinedBy fqs.FQS
	Metadata  Metadata
}

// Metadata mirrors the reserved-key metadata map, typed for the keys the
// core reads, with an Extra bag for anything else the analyzer attaches.
type Metadata struct {
	IsTest        bool
	IsIntegration bool
	TestTargets   fqs.Set // nil means absent, not empty
	TestName      string
	Private       bool
	Macro         bool
	Deprecated    bool
	Extra         map[string]any
}

// Edge is a usage edge. Edges are a multiset; duplicate (From, To) pairs
// are legal here and collapsed later by the dependency graph.
type Edge struct {
	From fqs.FQS
	To   fqs.FQS
	File string
	Line int
}

// FileRecord lists the symbols defined in one file, in the order the
// builder encountered them.
type FileRecord struct {
	Symbols []fqs.FQS
}

// Graph is the builder's output: nodes, edges, and a files index.
type Graph struct {
	Nodes map[fqs.FQS]*Node
	Edges []Edge
	Files map[string]*FileRecord
}

func newGraph() *Graph {
	return &Graph{
		Nodes: make(map[fqs.FQS]*Node),
		Edges: nil,
		Files: make(map[string]*FileRecord),
	}
}
