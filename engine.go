package selectest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/arlojordan/selectest/internal/cache"
	"github.com/arlojordan/selectest/internal/depgraph"
	"github.com/arlojordan/selectest/internal/explore"
	"github.com/arlojordan/selectest/internal/fact"
	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/hash"
	"github.com/arlojordan/selectest/internal/patch"
	"github.com/arlojordan/selectest/internal/selector"
	"github.com/arlojordan/selectest/internal/symbolgraph"
)

// Engine orchestrates the pipeline: analysis via an external Analyzer,
// symbol-graph construction, content hashing, the two caches, and
// selection.
type Engine struct {
	analyzer      Analyzer
	cachePaths    cache.Paths
	filterConfig  fact.FilterConfig
	builderConfig symbolgraph.Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithAnalyzer sets the external Analyzer used by Analyze. Required —
// an Engine constructed without one fails on the first Analyze call.
func WithAnalyzer(a Analyzer) Option {
	return func(e *Engine) { e.analyzer = a }
}

// WithCachePaths overrides the default project-root dotfile locations
// for the two cache files.
func WithCachePaths(p cache.Paths) Option {
	return func(e *Engine) { e.cachePaths = p }
}

// WithFilterConfig sets the single-dialect filter rule applied to
// analyzer facts before graph construction.
func WithFilterConfig(cfg fact.FilterConfig) Option {
	return func(e *Engine) { e.filterConfig = cfg }
}

// WithTestMacros overrides the default set of test-declaring macros the
// symbol-graph builder recognizes.
func WithTestMacros(macros ...fqs.FQS) Option {
	return func(e *Engine) { e.builderConfig = symbolgraph.Config{TestMacros: macros} }
}

// New creates an Engine rooted at projectRoot, with cache files defaulting
// to project-root dotfiles (.selectest-snapshot, .selectest-baseline).
func New(projectRoot string, opts ...Option) *Engine {
	e := &Engine{
		cachePaths: cache.Paths{
			SnapshotPath: filepath.Join(projectRoot, ".selectest-snapshot"),
			BaselinePath: filepath.Join(projectRoot, ".selectest-baseline"),
		},
		builderConfig: symbolgraph.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the external analyzer over paths, builds the symbol
// graph, bulk-hashes every symbol, and overwrites the snapshot cache.
// It never touches the verified baseline.
func (e *Engine) Analyze(ctx context.Context, paths []string, analyzerConfig map[string]any) (*Graph, map[fqs.FQS]string, error) {
	if e.analyzer == nil {
		return nil, nil, fmt.Errorf("selectest: no analyzer configured")
	}

	facts, err := e.analyzer.Analyze(ctx, paths, analyzerConfig)
	if err != nil {
		return nil, nil, &fact.AnalyzeError{Err: err}
	}

	filtered := fact.Filter(facts, e.filterConfig)
	g := symbolgraph.Build(filtered, e.builderConfig)
	hashes := hashGraph(g)
	rev := depgraph.FromSymbolGraph(g).ReverseIndex()

	snap := cache.Snapshot{
		AnalyzedAt:    time.Now().UTC().Format(time.RFC3339),
		Paths:         paths,
		Graph:         g,
		ContentHashes: hashes,
		ReverseIndex:  rev,
	}
	if err := cache.SaveSnapshot(e.cachePaths.SnapshotPath, snap); err != nil {
		return nil, nil, fmt.Errorf("selectest: saving snapshot: %w", err)
	}

	return g, hashes, nil
}

func hashGraph(g *symbolgraph.Graph) map[fqs.FQS]string {
	byFile := make(map[string][]hash.Fragment)
	for path, rec := range g.Files {
		for _, sym := range rec.Symbols {
			n := g.Nodes[sym]
			if n == nil {
				continue
			}
			byFile[path] = append(byFile[path], hash.Fragment{Symbol: sym, StartLine: n.Line, EndLine: n.EndLine})
		}
	}
	return hash.BulkHashByFileParallel(byFile)
}

// Select loads the snapshot (triggering a fresh Analyze if it's absent)
// and the verified baseline, then computes a selection. An absent
// snapshot is a missing-input condition recovered locally: selection
// proceeds after a full reanalyze rather than failing.
func (e *Engine) Select(ctx context.Context, paths []string, analyzerConfig map[string]any, allTests bool) (*Selection, error) {
	snap, ok := cache.LoadSnapshot(e.cachePaths.SnapshotPath)
	if !ok {
		g, hashes, err := e.Analyze(ctx, paths, analyzerConfig)
		if err != nil {
			return nil, err
		}
		snap = cache.Snapshot{Graph: g, ContentHashes: hashes}
	}

	baseline := cache.LoadBaseline(e.cachePaths.BaselinePath)

	dep := depgraph.FromSymbolGraph(snap.Graph)
	return selector.Select(selector.Input{
		Graph:         snap.Graph,
		Dep:           dep,
		CurrentHashes: snap.ContentHashes,
		Baseline:      baseline,
		ReverseIndex:  snap.ReverseIndex,
		AllTests:      allTests,
	}), nil
}

// MarkVerified merges sel's changed hashes into the verified baseline
// according to run, persisting the updated baseline.
func (e *Engine) MarkVerified(sel *Selection, run TestsRun) (VerifyResult, error) {
	baseline := cache.LoadBaseline(e.cachePaths.BaselinePath)
	updated, result, err := selector.MarkVerified(sel, baseline, run)
	if err != nil {
		return VerifyResult{}, err
	}
	if err := cache.SaveBaseline(e.cachePaths.BaselinePath, updated); err != nil {
		return VerifyResult{}, fmt.Errorf("selectest: saving baseline: %w", err)
	}
	return result, nil
}

// PruneStaleBaseline removes baseline entries for symbols no longer
// present in the current snapshot's graph, e.g. after a definition is
// deleted. The spec's default policy is to leave stale entries in place
// (they simply never match again); this is the explicit opt-in for
// callers who want the baseline kept minimal.
func (e *Engine) PruneStaleBaseline() (int, error) {
	snap, ok := cache.LoadSnapshot(e.cachePaths.SnapshotPath)
	if !ok {
		return 0, fmt.Errorf("selectest: no snapshot to prune against; run analyze first")
	}
	baseline := cache.LoadBaseline(e.cachePaths.BaselinePath)

	pruned := make(map[fqs.FQS]string, len(baseline))
	removed := 0
	for sym, h := range baseline {
		if _, ok := snap.Graph.Nodes[sym]; ok {
			pruned[sym] = h
		} else {
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	if err := cache.SaveBaseline(e.cachePaths.BaselinePath, pruned); err != nil {
		return 0, fmt.Errorf("selectest: saving pruned baseline: %w", err)
	}
	return removed, nil
}

// MarkAllVerified overwrites the baseline wholesale with the current
// snapshot's content hashes, for adopting the tool on a legacy codebase.
func (e *Engine) MarkAllVerified() error {
	snap, ok := cache.LoadSnapshot(e.cachePaths.SnapshotPath)
	if !ok {
		return fmt.Errorf("selectest: no snapshot to adopt; run analyze first")
	}
	baseline := selector.MarkAllVerified(snap.ContentHashes)
	return cache.SaveBaseline(e.cachePaths.BaselinePath, baseline)
}

// Patch rehashes changedFiles in place (no structural reanalysis) and
// overwrites the snapshot with the merged hashes. Valid only when no
// structural change (new/removed definitions, new files, renames) has
// occurred since the last full Analyze.
func (e *Engine) Patch(changedFiles []string) error {
	snap, ok := cache.LoadSnapshot(e.cachePaths.SnapshotPath)
	if !ok {
		return fmt.Errorf("selectest: no snapshot to patch; run analyze first")
	}

	set := make(map[string]struct{}, len(changedFiles))
	for _, f := range changedFiles {
		set[f] = struct{}{}
	}
	snap.ContentHashes = patch.Rehash(snap.Graph, snap.ContentHashes, set)

	return cache.SaveSnapshot(e.cachePaths.SnapshotPath, snap)
}

// PatchStructural handles the VCS-driven incremental-update path: it
// evicts symbols from deletedFiles, re-analyzes changedFiles, merges the
// result into the surviving graph, rehashes everything touched, and
// overwrites the snapshot.
func (e *Engine) PatchStructural(ctx context.Context, deletedFiles, changedFiles []string, analyzerConfig map[string]any) error {
	if e.analyzer == nil {
		return fmt.Errorf("selectest: no analyzer configured")
	}
	snap, ok := cache.LoadSnapshot(e.cachePaths.SnapshotPath)
	if !ok {
		return fmt.Errorf("selectest: no snapshot to patch; run analyze first")
	}

	facts, err := e.analyzer.Analyze(ctx, changedFiles, analyzerConfig)
	if err != nil {
		return &fact.AnalyzeError{Err: err}
	}
	filtered := fact.Filter(facts, e.filterConfig)

	merged := patch.ApplyChangedFiles(snap.Graph, deletedFiles, changedFiles, filtered, e.builderConfig)
	hashes := hashGraph(merged)
	rev := depgraph.FromSymbolGraph(merged).ReverseIndex()

	newSnap := cache.Snapshot{
		AnalyzedAt:    time.Now().UTC().Format(time.RFC3339),
		Paths:         snap.Paths,
		Graph:         merged,
		ContentHashes: hashes,
		ReverseIndex:  rev,
	}
	return cache.SaveSnapshot(e.cachePaths.SnapshotPath, newSnap)
}

// Status reports cache file existence/size/mtime for the CLI's status
// command.
func (e *Engine) Status() (snapshot cache.FileStatus, baseline cache.FileStatus) {
	return cache.Status(e.cachePaths)
}

// ClearAnalysis deletes only the snapshot cache.
func (e *Engine) ClearAnalysis() error {
	return cache.ClearAnalysis(e.cachePaths)
}

// ClearAll deletes both cache files.
func (e *Engine) ClearAll() error {
	return cache.ClearAll(e.cachePaths)
}

// CachePaths returns the Engine's resolved cache file locations.
func (e *Engine) CachePaths() cache.Paths {
	return e.cachePaths
}

// Explore builds a disposable SQLite query index at dbPath from the
// current snapshot, for the `explore` CLI surface. The caller owns the
// returned Index and must Close it; the snapshot itself is untouched.
func (e *Engine) Explore(dbPath string) (*explore.Index, error) {
	snap, ok := cache.LoadSnapshot(e.cachePaths.SnapshotPath)
	if !ok {
		return nil, fmt.Errorf("selectest: no snapshot to explore; run analyze first")
	}
	idx, err := explore.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := idx.Build(snap.Graph); err != nil {
		idx.Close()
		return nil, err
	}
	return idx, nil
}
