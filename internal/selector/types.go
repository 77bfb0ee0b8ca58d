// Package selector implements the test-selection algorithm: diffing
// current content hashes against a verified baseline, classifying tests
// by integration policy, and reporting coverage gaps and selection
// rationale.
package selector

import (
	"github.com/arlojordan/selectest/internal/depgraph"
	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/symbolgraph"
)

// Stats summarizes a selection for reporting.
type Stats struct {
	TotalTests       int
	SelectedTests    int
	ChangedSymbols   int
	UntestedUsages   int
	SelectionPercent float64
}

// Selection is the result of a Select call. It owns its derived
// collections and holds a read-only reference to the graphs it was
// produced from; those graphs must not be mutated while a Selection is in
// use.
type Selection struct {
	Tests          []fqs.FQS
	ChangedSymbols fqs.Set
	ChangedHashes  map[fqs.FQS]string
	UntestedUsages map[fqs.FQS]fqs.Set
	Stats          Stats

	// Reason is set only on a fast-path selection ("no baseline" or
	// "all tests requested"); empty for an ordinary selection.
	Reason string

	graph *symbolgraph.Graph
	dep   *depgraph.Graph
}

// Trace lazily computes, for each selected test and each changed symbol
// it transitively reaches, a shortest witness path. Not eagerly
// materialized — explanation traces are rarely consumed.
func (s *Selection) Trace() map[fqs.FQS]map[fqs.FQS][]fqs.FQS {
	out := make(map[fqs.FQS]map[fqs.FQS][]fqs.FQS, len(s.Tests))
	for _, t := range s.Tests {
		reachable := s.dep.Reachable(t)
		perChange := make(map[fqs.FQS][]fqs.FQS)
		for c := range s.ChangedSymbols {
			if !reachable.Has(c) {
				continue
			}
			if path, ok := s.dep.Witness(t, c); ok {
				perChange[c] = path
			}
		}
		if len(perChange) > 0 {
			out[t] = perChange
		}
	}
	return out
}

// VerifyResult is returned by MarkVerified, reporting which changed
// symbols were actually covered by the tests that ran.
type VerifyResult struct {
	Verified fqs.Set
	Skipped  fqs.Set
}
