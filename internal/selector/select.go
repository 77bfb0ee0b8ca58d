package selector

import (
	"sort"
	"strings"

	"github.com/arlojordan/selectest/internal/depgraph"
	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/symbolgraph"
)

// Input bundles everything Select needs.
type Input struct {
	Graph         *symbolgraph.Graph
	Dep           *depgraph.Graph // required; build with depgraph.FromSymbolGraph if absent
	CurrentHashes map[fqs.FQS]string
	Baseline      map[fqs.FQS]string
	ReverseIndex  map[fqs.FQS]fqs.Set // optional precomputed index; computed on demand if nil
	AllTests      bool
}

// Select runs the selection algorithm: empty-baseline and all-tests fast
// paths, change detection against the baseline, three-way test
// classification, selection, and the untested-usages coverage report.
func Select(in Input) *Selection {
	allTestNodes := testNodes(in.Graph)

	if len(in.Baseline) == 0 && !in.AllTests {
		return fastPath(in, allTestNodes, "no baseline")
	}
	if in.AllTests {
		return fastPath(in, allTestNodes, "all tests requested")
	}

	changed := detectChanged(in.CurrentHashes, in.Baseline)

	rev := in.ReverseIndex
	if rev == nil {
		rev = in.Dep.ReverseIndex()
	}

	targeted, integration, regular := classify(allTestNodes)

	selected := fqs.NewSet()
	for _, t := range targeted {
		if t.Metadata.TestTargets.Intersects(changed) {
			selected.Add(t.Symbol)
		}
	}
	for _, t := range integration {
		selected.Add(t.Symbol)
	}
	for _, t := range regular {
		if reverseCovers(rev, t.Symbol, changed) {
			selected.Add(t.Symbol)
		}
	}

	tests := selected.Slice()

	changedHashes := make(map[fqs.FQS]string, len(changed))
	for sym := range changed {
		changedHashes[sym] = in.CurrentHashes[sym]
	}

	sel := &Selection{
		Tests:          tests,
		ChangedSymbols: changed,
		ChangedHashes:  changedHashes,
		UntestedUsages: untestedUsages(in.Graph, in.Dep, rev, changed, allTestNodes),
		graph:          in.Graph,
		dep:            in.Dep,
	}
	sel.Stats = computeStats(len(allTestNodes), len(tests), len(changed), sel.UntestedUsages)
	return sel
}

func fastPath(in Input, allTestNodes []*symbolgraph.Node, reason string) *Selection {
	tests := make([]fqs.FQS, 0, len(allTestNodes))
	for _, t := range allTestNodes {
		tests = append(tests, t.Symbol)
	}
	fqs.SortFQS(tests)
	sel := &Selection{
		Tests:          tests,
		ChangedSymbols: fqs.NewSet(),
		ChangedHashes:  map[fqs.FQS]string{},
		UntestedUsages: map[fqs.FQS]fqs.Set{},
		Reason:         reason,
		graph:          in.Graph,
		dep:            in.Dep,
	}
	sel.Stats = computeStats(len(allTestNodes), len(tests), 0, sel.UntestedUsages)
	return sel
}

func testNodes(g *symbolgraph.Graph) []*symbolgraph.Node {
	out := make([]*symbolgraph.Node, 0)
	for _, n := range g.Nodes {
		if n.Kind == symbolgraph.KindTest {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return fqs.Less(out[i].Symbol, out[j].Symbol) })
	return out
}

// detectChanged implements the change-detection rule: sym is changed iff
// baseline[sym] is absent or differs from the current hash. Deletions
// (in baseline but absent from current) are not selected as changed.
func detectChanged(current, baseline map[fqs.FQS]string) fqs.Set {
	changed := fqs.NewSet()
	for sym, h := range current {
		if b, ok := baseline[sym]; !ok || b != h {
			changed.Add(sym)
		}
	}
	return changed
}

// classify partitions test nodes into targeted, unselective integration,
// and regular tests.
func classify(tests []*symbolgraph.Node) (targeted, integration, regular []*symbolgraph.Node) {
	for _, t := range tests {
		switch {
		case len(t.Metadata.TestTargets) > 0:
			targeted = append(targeted, t)
		case t.Metadata.IsIntegration:
			integration = append(integration, t)
		default:
			regular = append(regular, t)
		}
	}
	return
}

// reverseCovers reports whether test is selected by the reverse-index
// rule: some changed symbol is reachable from test, i.e. test appears in
// rev[c] for some c in changed, or test is itself in changed (a test
// always reaches its own definition).
func reverseCovers(rev map[fqs.FQS]fqs.Set, test fqs.FQS, changed fqs.Set) bool {
	if changed.Has(test) {
		return true
	}
	for c := range changed {
		if rev[c].Has(test) {
			return true
		}
	}
	return false
}

// untestedUsages implements the coverage-gap report: for each changed
// symbol, its direct predecessors that are (a) not tests, (b) not
// namespace-named test-file symbols, and (c) reached backward by no test.
func untestedUsages(g *symbolgraph.Graph, dep *depgraph.Graph, rev map[fqs.FQS]fqs.Set, changed fqs.Set, allTests []*symbolgraph.Node) map[fqs.FQS]fqs.Set {
	testSet := fqs.NewSet()
	for _, t := range allTests {
		testSet.Add(t.Symbol)
	}

	out := make(map[fqs.FQS]fqs.Set)
	for _, c := range changed.Slice() {
		var uncovered fqs.Set
		for _, pred := range dep.DirectPredecessors(c) {
			node := g.Nodes[pred]
			if node != nil && node.Kind == symbolgraph.KindTest {
				continue
			}
			if node != nil && node.Kind == symbolgraph.KindNamespace && isTestNamespace(pred.Namespace) {
				continue
			}
			if rev[pred].Intersects(testSet) {
				continue
			}
			if uncovered == nil {
				uncovered = fqs.NewSet()
			}
			uncovered.Add(pred)
		}
		if len(uncovered) > 0 {
			out[c] = uncovered
		}
	}
	return out
}

// isTestNamespace reports whether ns names a test file/namespace by the
// corpus's dot-segment naming convention (e.g. "myapp.core-test").
func isTestNamespace(ns string) bool {
	for _, part := range strings.Split(ns, ".") {
		if part == "test" || strings.HasSuffix(part, "-test") {
			return true
		}
	}
	return false
}

func computeStats(total, selected, changed int, untested map[fqs.FQS]fqs.Set) Stats {
	untestedTotal := 0
	for _, set := range untested {
		untestedTotal += len(set)
	}
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(selected) / float64(total)
	}
	return Stats{
		TotalTests:       total,
		SelectedTests:    selected,
		ChangedSymbols:   changed,
		UntestedUsages:   untestedTotal,
		SelectionPercent: pct,
	}
}
