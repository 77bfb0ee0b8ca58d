package selectest

import (
	"github.com/arlojordan/selectest/internal/depgraph"
	"github.com/arlojordan/selectest/internal/fact"
	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/selector"
	"github.com/arlojordan/selectest/internal/symbolgraph"
)

// FQS re-exports the fully-qualified symbol type so callers never need
// to import internal/fqs directly.
type FQS = fqs.FQS

// Facts re-exports the analyzer fact model.
type Facts = fact.Facts

// Analyzer re-exports the external analyzer contract.
type Analyzer = fact.Analyzer

// Graph re-exports the symbol graph.
type Graph = symbolgraph.Graph

// DepGraph re-exports the dependency graph.
type DepGraph = depgraph.Graph

// Selection re-exports the selector's result type.
type Selection = selector.Selection

// Stats re-exports selection statistics.
type Stats = selector.Stats

// VerifyResult re-exports the mark-verified accounting.
type VerifyResult = selector.VerifyResult

// TestsRun re-exports the mark-verified "which tests ran" selector.
type TestsRun = selector.TestsRun

// AllTestsRun is the sentinel meaning every selected test ran and passed.
var AllTestsRun = selector.AllTestsRun

// RanTests builds a TestsRun from an explicit list of tests that ran.
func RanTests(tests ...fqs.FQS) TestsRun {
	return selector.RanTests(tests...)
}

// NewFQS builds an FQS from its namespace and name parts.
func NewFQS(namespace, name string) FQS {
	return fqs.New(namespace, name)
}
