package cache

import (
	"fmt"

	"github.com/arlojordan/selectest/internal/cache/tagged"
	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/symbolgraph"
)

// Snapshot is the full analysis-snapshot record: entirely overwritten on
// each analyze, and treated as absent (triggering a fresh analyze) if
// missing or corrupt.
type Snapshot struct {
	AnalyzedAt    string
	Paths         []string
	Graph         *symbolgraph.Graph
	ContentHashes map[fqs.FQS]string
	ReverseIndex  map[fqs.FQS]fqs.Set // nil means absent
}

func encodeSnapshot(s Snapshot) tagged.Map {
	m := tagged.Map{
		{Key: "analyzed_at", Value: s.AnalyzedAt},
		{Key: "paths", Value: stringList(s.Paths)},
		{Key: "nodes", Value: encodeNodes(s.Graph.Nodes)},
		{Key: "edges", Value: encodeEdges(s.Graph.Edges)},
		{Key: "files", Value: encodeFiles(s.Graph.Files)},
		{Key: "content_hashes", Value: encodeHashes(s.ContentHashes)},
	}
	if s.ReverseIndex != nil {
		m = append(m, tagged.MapEntry{Key: "reverse_index", Value: encodeReverseIndex(s.ReverseIndex)})
	}
	return m
}

func stringList(items []string) tagged.List {
	out := make(tagged.List, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

func encodeNodes(nodes map[fqs.FQS]*symbolgraph.Node) tagged.Map {
	m := make(tagged.Map, 0, len(nodes))
	for sym, n := range nodes {
		entry := tagged.Map{
			{Key: "kind", Value: string(n.Kind)},
			{Key: "file", Value: n.File},
			{Key: "line", Value: n.Line},
			{Key: "end_line", Value: n.EndLine},
			{Key: "defined_by", Value: n.DefinedBy.String()},
			{Key: "metadata", Value: encodeMetadata(n.Metadata)},
		}
		m = append(m, tagged.MapEntry{Key: tagged.Symbol(sym.String()), Value: entry})
	}
	return m
}

func encodeMetadata(md symbolgraph.Metadata) tagged.Map {
	m := tagged.Map{
		{Key: "is_test", Value: md.IsTest},
		{Key: "is_integration", Value: md.IsIntegration},
		{Key: "private", Value: md.Private},
		{Key: "macro", Value: md.Macro},
		{Key: "deprecated", Value: md.Deprecated},
	}
	if md.TestName != "" {
		m = append(m, tagged.MapEntry{Key: "test_name", Value: md.TestName})
	}
	if md.TestTargets != nil {
		m = append(m, tagged.MapEntry{Key: "test_targets", Value: symbolSet(md.TestTargets)})
	}
	return m
}

func symbolSet(set fqs.Set) tagged.Set {
	out := make(tagged.Set, 0, len(set))
	for sym := range set {
		out = append(out, sym.String())
	}
	return out
}

func encodeEdges(edges []symbolgraph.Edge) tagged.List {
	out := make(tagged.List, len(edges))
	for i, e := range edges {
		out[i] = tagged.Map{
			{Key: "from", Value: e.From.String()},
			{Key: "to", Value: e.To.String()},
			{Key: "file", Value: e.File},
			{Key: "line", Value: e.Line},
		}
	}
	return out
}

func encodeFiles(files map[string]*symbolgraph.FileRecord) tagged.Map {
	m := make(tagged.Map, 0, len(files))
	for path, rec := range files {
		syms := make(tagged.List, len(rec.Symbols))
		for i, sym := range rec.Symbols {
			syms[i] = sym.String()
		}
		m = append(m, tagged.MapEntry{Key: path, Value: syms})
	}
	return m
}

func encodeHashes(hashes map[fqs.FQS]string) tagged.Map {
	m := make(tagged.Map, 0, len(hashes))
	for sym, h := range hashes {
		m = append(m, tagged.MapEntry{Key: sym.String(), Value: h})
	}
	return m
}

func encodeReverseIndex(rev map[fqs.FQS]fqs.Set) tagged.Map {
	m := make(tagged.Map, 0, len(rev))
	for sym, set := range rev {
		m = append(m, tagged.MapEntry{Key: sym.String(), Value: symbolSet(set)})
	}
	return m
}

func decodeSnapshot(v any) (Snapshot, error) {
	root, ok := v.(tagged.Map)
	if !ok {
		return Snapshot{}, fmt.Errorf("cache: snapshot root is not a map")
	}

	analyzedAt, _ := root.Get("analyzed_at")
	s := Snapshot{
		AnalyzedAt:    asString(analyzedAt),
		Graph:         &symbolgraph.Graph{Nodes: make(map[fqs.FQS]*symbolgraph.Node), Files: make(map[string]*symbolgraph.FileRecord)},
		ContentHashes: make(map[fqs.FQS]string),
	}

	if v, ok := root.Get("paths"); ok {
		s.Paths = decodeStringList(v)
	}
	if v, ok := root.Get("nodes"); ok {
		nodes, err := decodeNodes(v)
		if err != nil {
			return Snapshot{}, err
		}
		s.Graph.Nodes = nodes
	}
	if v, ok := root.Get("edges"); ok {
		edges, err := decodeEdges(v)
		if err != nil {
			return Snapshot{}, err
		}
		s.Graph.Edges = edges
	}
	if v, ok := root.Get("files"); ok {
		files, err := decodeFiles(v)
		if err != nil {
			return Snapshot{}, err
		}
		s.Graph.Files = files
	}
	if v, ok := root.Get("content_hashes"); ok {
		hashes, err := decodeHashes(v)
		if err != nil {
			return Snapshot{}, err
		}
		s.ContentHashes = hashes
	}
	if v, ok := root.Get("reverse_index"); ok {
		rev, err := decodeReverseIndex(v)
		if err != nil {
			return Snapshot{}, err
		}
		s.ReverseIndex = rev
	}

	return s, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func mustFQS(s string) fqs.FQS {
	sym, _ := fqs.Parse(s)
	return sym
}

func decodeStringList(v any) []string {
	list, ok := v.(tagged.List)
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = asString(item)
	}
	return out
}

func decodeNodes(v any) (map[fqs.FQS]*symbolgraph.Node, error) {
	m, ok := v.(tagged.Map)
	if !ok {
		return nil, fmt.Errorf("cache: nodes is not a map")
	}
	out := make(map[fqs.FQS]*symbolgraph.Node, len(m))
	for _, entry := range m {
		symStr, ok := keyString(entry.Key)
		if !ok {
			continue
		}
		sym := mustFQS(symStr)
		fields, ok := entry.Value.(tagged.Map)
		if !ok {
			continue
		}
		md, _ := fields.Get("metadata")
		metaMap, _ := md.(tagged.Map)

		definedBy, _ := fields.Get("defined_by")
		n := &symbolgraph.Node{
			Symbol:    sym,
			Kind:      symbolgraph.Kind(asString(mustGet(fields, "kind"))),
			File:      asString(mustGet(fields, "file")),
			Line:      asInt(mustGet(fields, "line")),
			EndLine:   asInt(mustGet(fields, "end_line")),
			DefinedBy: mustFQS(asString(definedBy)),
			Metadata:  decodeMetadata(metaMap),
		}
		out[sym] = n
	}
	return out, nil
}

func mustGet(m tagged.Map, key string) any {
	v, _ := m.Get(key)
	return v
}

func keyString(key any) (string, bool) {
	switch k := key.(type) {
	case string:
		return k, true
	case tagged.Symbol:
		return string(k), true
	}
	return "", false
}

func decodeMetadata(m tagged.Map) symbolgraph.Metadata {
	md := symbolgraph.Metadata{
		IsTest:        asBool(mustGet(m, "is_test")),
		IsIntegration: asBool(mustGet(m, "is_integration")),
		Private:       asBool(mustGet(m, "private")),
		Macro:         asBool(mustGet(m, "macro")),
		Deprecated:    asBool(mustGet(m, "deprecated")),
	}
	if name, ok := m.Get("test_name"); ok {
		md.TestName = asString(name)
	}
	if targets, ok := m.Get("test_targets"); ok {
		if set, ok := targets.(tagged.Set); ok {
			md.TestTargets = make(fqs.Set, len(set))
			for _, item := range set {
				md.TestTargets.Add(mustFQS(asString(item)))
			}
		}
	}
	return md
}

func decodeEdges(v any) ([]symbolgraph.Edge, error) {
	list, ok := v.(tagged.List)
	if !ok {
		return nil, fmt.Errorf("cache: edges is not a list")
	}
	out := make([]symbolgraph.Edge, 0, len(list))
	for _, item := range list {
		m, ok := item.(tagged.Map)
		if !ok {
			continue
		}
		from, _ := m.Get("from")
		to, _ := m.Get("to")
		out = append(out, symbolgraph.Edge{
			From: mustFQS(asString(from)),
			To:   mustFQS(asString(to)),
			File: asString(mustGet(m, "file")),
			Line: asInt(mustGet(m, "line")),
		})
	}
	return out, nil
}

func decodeFiles(v any) (map[string]*symbolgraph.FileRecord, error) {
	m, ok := v.(tagged.Map)
	if !ok {
		return nil, fmt.Errorf("cache: files is not a map")
	}
	out := make(map[string]*symbolgraph.FileRecord, len(m))
	for _, entry := range m {
		path, ok := keyString(entry.Key)
		if !ok {
			continue
		}
		list, ok := entry.Value.(tagged.List)
		if !ok {
			continue
		}
		syms := make([]fqs.FQS, len(list))
		for i, s := range list {
			syms[i] = mustFQS(asString(s))
		}
		out[path] = &symbolgraph.FileRecord{Symbols: syms}
	}
	return out, nil
}

func decodeHashes(v any) (map[fqs.FQS]string, error) {
	m, ok := v.(tagged.Map)
	if !ok {
		return nil, fmt.Errorf("cache: content_hashes is not a map")
	}
	out := make(map[fqs.FQS]string, len(m))
	for _, entry := range m {
		symStr, ok := keyString(entry.Key)
		if !ok {
			continue
		}
		out[mustFQS(symStr)] = asString(entry.Value)
	}
	return out, nil
}

func decodeReverseIndex(v any) (map[fqs.FQS]fqs.Set, error) {
	m, ok := v.(tagged.Map)
	if !ok {
		return nil, fmt.Errorf("cache: reverse_index is not a map")
	}
	out := make(map[fqs.FQS]fqs.Set, len(m))
	for _, entry := range m {
		symStr, ok := keyString(entry.Key)
		if !ok {
			continue
		}
		set, ok := entry.Value.(tagged.Set)
		if !ok {
			continue
		}
		s := make(fqs.Set, len(set))
		for _, item := range set {
			s.Add(mustFQS(asString(item)))
		}
		out[mustFQS(symStr)] = s
	}
	return out, nil
}
