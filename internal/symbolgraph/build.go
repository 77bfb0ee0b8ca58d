package symbolgraph

import (
	"sort"
	"strings"

	"github.com/arlojordan/selectest/internal/fact"
	"github.com/arlojordan/selectest/internal/fqs"
)

// Config configures the builder.
type Config struct {
	// TestMacros are the FQS values of test-declaring macros whose usages
	// synthesize macro-test nodes. Defaults include a generic "deftest"
	// plus one property-based-test macro form.
	TestMacros []fqs.FQS
}

// DefaultConfig returns the builder's default test-macro set.
func DefaultConfig() Config {
	return Config{
		TestMacros: []fqs.FQS{
			{Namespace: "test", Name: "deftest"},
			{Namespace: "test.check", Name: "defspec"},
		},
	}
}

func (c Config) isTestMacro(target fqs.FQS) bool {
	for _, m := range c.TestMacros {
		if m == target {
			return true
		}
	}
	return false
}

// Build turns filtered facts into a symbol graph. Iteration order over
// the input facts never affects the emitted node/edge/file set:
// intermediate collections are sorted by (file, line, symbol-string)
// before being committed.
func Build(f fact.Facts, cfg Config) *Graph {
	g := newGraph()

	defs := sortedDefinitions(f.Definitions)
	namespaces := sortedNamespaces(f.Namespaces)

	// Rule 2: namespace nodes.
	for _, ns := range namespaces {
		sym := fqs.FQS{Namespace: ns.Name, Name: ns.Name}
		g.Nodes[sym] = &Node{
			Symbol:   sym,
			Kind:     KindNamespace,
			File:     ns.File,
			Line:     ns.StartLine,
			EndLine:  0,
			Metadata: metadataFromFact(ns.Metadata),
		}
	}

	// Rule 1: variable nodes.
	for _, d := range defs {
		sym := fqs.FQS{Namespace: d.Namespace, Name: d.Name}
		meta := metadataFromFact(d.Metadata)
		definedBy, _ := fqs.Parse(d.DefinedBy)

		isTest := meta.IsTest || cfg.isTestMacro(definedBy)

		kind := KindVar
		if isTest {
			kind = KindTest
			meta.IsTest = true
			meta.TestTargets = extractTestTargets(d.Metadata)
		}

		g.Nodes[sym] = &Node{
			Symbol:    sym,
			Kind:      kind,
			File:      d.File,
			Line:      d.StartLine,
			EndLine:   d.EndLine,
			DefinedBy: definedBy,
			Metadata:  meta,
		}
	}

	// Rule 3: macro-test nodes, isolated per file.
	byFile := groupMacroUsagesByFile(f.Usages, cfg)
	files := sortedStringKeys(byFile)
	macroTestRangesByFile := make(map[string][]macroTestCall, len(files))
	for _, file := range files {
		calls, ok := scanMacroTestCalls(file, byFile[file])
		if !ok {
			continue // that file's macro tests are omitted; others proceed.
		}
		macroTestRangesByFile[file] = calls
		for _, c := range calls {
			if _, exists := g.Nodes[c.Name]; exists {
				continue
			}
			g.Nodes[c.Name] = &Node{
				Symbol:    c.Name,
				Kind:      KindTest,
				File:      file,
				Line:      c.StartLine,
				EndLine:   c.EndLine,
				DefinedBy: c.MacroFQS,
				Metadata: Metadata{
					IsTest:   true,
					TestName: c.TestName,
				},
			}
		}
	}

	// Rule 4: integration markers, applied to every node (var + macro test).
	for _, n := range g.Nodes {
		if n.Metadata.Extra != nil {
			if v, ok := n.Metadata.Extra["integration"].(bool); ok && v {
				n.Metadata.IsIntegration = true
			}
		}
		if isIntegrationNamespace(n.Symbol.Namespace) {
			n.Metadata.IsIntegration = true
		}
	}

	// Rule 6: edge emission.
	for _, u := range sortedUsages(f.Usages) {
		to, ok := resolveTarget(u)
		if !ok {
			continue // edge dropped: target endpoint absent.
		}
		from, ok := resolveFrom(u, macroTestRangesByFile[u.File])
		if !ok {
			continue // edge dropped: from endpoint absent.
		}
		g.Edges = append(g.Edges, Edge{From: from, To: to, File: u.File, Line: u.Line})
	}

	// Rule 7: files map, built after all nodes exist.
	symbolsByFile := make(map[string][]fqs.FQS)
	for _, sym := range sortedNodeSymbols(g.Nodes) {
		n := g.Nodes[sym]
		symbolsByFile[n.File] = append(symbolsByFile[n.File], sym)
	}
	for file, syms := range symbolsByFile {
		g.Files[file] = &FileRecord{Symbols: syms}
	}

	return g
}

func metadataFromFact(m fact.Meta) Metadata {
	meta := Metadata{
		IsTest:        m.Bool("is_test"),
		IsIntegration: m.Bool("is_integration"),
		Private:       m.Bool("private"),
		Macro:         m.Bool("macro"),
		Deprecated:    m.Bool("deprecated"),
	}
	if name, ok := m.String("test_name"); ok {
		meta.TestName = name
	}
	if m != nil {
		meta.Extra = map[string]any(m)
	}
	return meta
}

// extractTestTargets normalizes metadata's test_targets/test_target key
// into a set. Absence stays absence (nil), never an
// empty set.
func extractTestTargets(m fact.Meta) fqs.Set {
	raw, ok := m["test_targets"]
	if !ok {
		raw, ok = m["test_target"]
	}
	if !ok {
		return nil
	}

	var strs []string
	switch v := raw.(type) {
	case string:
		strs = []string{v}
	case []string:
		strs = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				strs = append(strs, s)
			}
		}
	}
	if len(strs) == 0 {
		return nil
	}

	set := make(fqs.Set, len(strs))
	for _, s := range strs {
		if sym, ok := fqs.Parse(s); ok {
			set.Add(sym)
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func isIntegrationNamespace(ns string) bool {
	parts := strings.Split(ns, ".")
	for _, p := range parts {
		if p == "integration" {
			return true
		}
	}
	return false
}

// groupMacroUsagesByFile finds usages whose target resolves to a
// configured test macro, grouped by file for per-file scanning.
func groupMacroUsagesByFile(usages []fact.Usage, cfg Config) map[string][]Usage {
	out := make(map[string][]Usage)
	for _, u := range usages {
		target, ok := resolveUsageTarget(u)
		if !ok || !cfg.isTestMacro(target) {
			continue
		}
		out[u.File] = append(out[u.File], Usage{
			Namespace: u.Namespace,
			Line:      u.Line,
			MacroFQS:  target,
		})
	}
	return out
}

func resolveUsageTarget(u fact.Usage) (fqs.FQS, bool) {
	if u.TargetNS != "" {
		if sym, ok := fqs.Parse(u.TargetNS + "/" + lastSegment(u.Target)); ok {
			return sym, true
		}
	}
	return fqs.Parse(u.Target)
}

func lastSegment(target string) string {
	if i := strings.LastIndex(target, "/"); i >= 0 {
		return target[i+1:]
	}
	return target
}

// resolveTarget resolves a usage's "to" endpoint.
func resolveTarget(u fact.Usage) (fqs.FQS, bool) {
	return resolveUsageTarget(u)
}

// resolveFrom resolves a usage's "from" endpoint, following the
// enclosing-function / macro-test-range / namespace precedence.
func resolveFrom(u fact.Usage, macroRanges []macroTestCall) (fqs.FQS, bool) {
	if u.Enclosing != "" {
		return fqs.FQS{Namespace: u.Namespace, Name: u.Enclosing}, true
	}
	for _, r := range macroRanges {
		if u.Line >= r.StartLine && u.Line <= r.EndLine {
			return r.Name, true
		}
	}
	if u.Namespace == "" {
		return fqs.FQS{}, false
	}
	return fqs.FQS{Namespace: u.Namespace, Name: u.Namespace}, true
}

func sortedDefinitions(defs []fact.Definition) []fact.Definition {
	out := append([]fact.Definition(nil), defs...)
	sort.Slice(out, func(i, j int) bool {
		return lessLoc(out[i].File, out[i].StartLine, out[i].Namespace+"/"+out[i].Name,
			out[j].File, out[j].StartLine, out[j].Namespace+"/"+out[j].Name)
	})
	return out
}

func sortedNamespaces(ns []fact.Namespace) []fact.Namespace {
	out := append([]fact.Namespace(nil), ns...)
	sort.Slice(out, func(i, j int) bool {
		return lessLoc(out[i].File, out[i].StartLine, out[i].Name,
			out[j].File, out[j].StartLine, out[j].Name)
	})
	return out
}

func sortedUsages(usages []fact.Usage) []fact.Usage {
	out := append([]fact.Usage(nil), usages...)
	sort.Slice(out, func(i, j int) bool {
		return lessLoc(out[i].File, out[i].Line, out[i].Target,
			out[j].File, out[j].Line, out[j].Target)
	})
	return out
}

func sortedStringKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedNodeSymbols(nodes map[fqs.FQS]*Node) []fqs.FQS {
	out := make([]fqs.FQS, 0, len(nodes))
	for sym := range nodes {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := nodes[out[i]], nodes[out[j]]
		return lessLoc(a.File, a.Line, out[i].String(), b.File, b.Line, out[j].String())
	})
	return out
}

func lessLoc(fileA string, lineA int, symA string, fileB string, lineB int, symB string) bool {
	if fileA != fileB {
		return fileA < fileB
	}
	if lineA != lineB {
		return lineA < lineB
	}
	return symA < symB
}
