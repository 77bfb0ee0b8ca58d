// Package explore is an optional, disposable ad hoc query index over a
// symbol graph, backed by SQLite. It exists purely for interactive
// exploration (the `selectest explore` CLI surface) — it is rebuilt from
// scratch from the current snapshot on demand and is explicitly not one
// of the two persistent caches (internal/cache) the core selection
// algorithm depends on.
package explore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/symbolgraph"
)

// Index wraps a SQLite database holding a snapshot of one symbol graph.
type Index struct {
	db *sql.DB
}

const schema = `
CREATE TABLE symbols (
	symbol TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	file TEXT NOT NULL,
	line INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	is_test INTEGER NOT NULL,
	is_integration INTEGER NOT NULL
);
CREATE TABLE edges (
	from_symbol TEXT NOT NULL,
	to_symbol TEXT NOT NULL,
	file TEXT NOT NULL,
	line INTEGER NOT NULL
);
CREATE INDEX idx_edges_from ON edges(from_symbol);
CREATE INDEX idx_edges_to ON edges(to_symbol);
`

// Open creates (or reopens) the SQLite file at path. Callers should
// typically Open a fresh temp file and Build into it rather than reuse
// one across analyze runs.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("explore: open %s: %w", path, err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database handle.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Build drops and recreates the schema, then bulk-loads g's nodes and
// edges inside a single transaction.
func (idx *Index) Build(g *symbolgraph.Graph) error {
	if _, err := idx.db.Exec(`DROP TABLE IF EXISTS symbols; DROP TABLE IF EXISTS edges;`); err != nil {
		return fmt.Errorf("explore: dropping tables: %w", err)
	}
	if _, err := idx.db.Exec(schema); err != nil {
		return fmt.Errorf("explore: creating schema: %w", err)
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("explore: begin: %w", err)
	}
	defer tx.Rollback()

	symStmt, err := tx.Prepare(`INSERT INTO symbols (symbol, kind, file, line, end_line, is_test, is_integration) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer symStmt.Close()
	for sym, n := range g.Nodes {
		if _, err := symStmt.Exec(sym.String(), string(n.Kind), n.File, n.Line, n.EndLine, boolToInt(n.Metadata.IsTest), boolToInt(n.Metadata.IsIntegration)); err != nil {
			return fmt.Errorf("explore: inserting symbol %s: %w", sym, err)
		}
	}

	edgeStmt, err := tx.Prepare(`INSERT INTO edges (from_symbol, to_symbol, file, line) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()
	for _, e := range g.Edges {
		if _, err := edgeStmt.Exec(e.From.String(), e.To.String(), e.File, e.Line); err != nil {
			return fmt.Errorf("explore: inserting edge %s->%s: %w", e.From, e.To, err)
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// TransitiveCallers returns every symbol with a path to target within
// maxDepth hops, bulk-loading the edge table once and doing the BFS in
// memory rather than issuing one query per hop.
func (idx *Index) TransitiveCallers(target fqs.FQS, maxDepth int) ([]fqs.FQS, error) {
	reverse, err := idx.loadReverseAdjacency()
	if err != nil {
		return nil, err
	}
	return bfs(reverse, target.String(), maxDepth), nil
}

// TransitiveCallees returns every symbol reachable from src within
// maxDepth hops.
func (idx *Index) TransitiveCallees(src fqs.FQS, maxDepth int) ([]fqs.FQS, error) {
	forward, err := idx.loadForwardAdjacency()
	if err != nil {
		return nil, err
	}
	return bfs(forward, src.String(), maxDepth), nil
}

func (idx *Index) loadForwardAdjacency() (map[string][]string, error) {
	return idx.loadAdjacency(`SELECT from_symbol, to_symbol FROM edges`)
}

func (idx *Index) loadReverseAdjacency() (map[string][]string, error) {
	return idx.loadAdjacency(`SELECT to_symbol, from_symbol FROM edges`)
}

func (idx *Index) loadAdjacency(query string) (map[string][]string, error) {
	rows, err := idx.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("explore: query: %w", err)
	}
	defer rows.Close()

	adj := make(map[string][]string)
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return nil, err
		}
		adj[a] = append(adj[a], b)
	}
	return adj, rows.Err()
}

func bfs(adj map[string][]string, start string, maxDepth int) []fqs.FQS {
	visited := map[string]bool{start: true}
	frontier := []string{start}
	var out []fqs.FQS

	for depth := 0; len(frontier) > 0 && (maxDepth <= 0 || depth < maxDepth); depth++ {
		var next []string
		for _, cur := range frontier {
			for _, nb := range adj[cur] {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				if sym, ok := fqs.Parse(nb); ok {
					out = append(out, sym)
				}
				next = append(next, nb)
			}
		}
		frontier = next
	}
	fqs.SortFQS(out)
	return out
}

// Hotspot is a symbol ranked by in-degree (fan-in): how many distinct
// symbols directly use it.
type Hotspot struct {
	Symbol fqs.FQS
	FanIn  int
	IsTest bool
}

// Hotspots returns the limit symbols with the highest fan-in.
func (idx *Index) Hotspots(limit int) ([]Hotspot, error) {
	rows, err := idx.db.Query(`
		SELECT s.symbol, s.is_test, COUNT(DISTINCT e.from_symbol) AS fan_in
		FROM symbols s
		LEFT JOIN edges e ON e.to_symbol = s.symbol
		GROUP BY s.symbol
		ORDER BY fan_in DESC, s.symbol ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("explore: hotspots query: %w", err)
	}
	defer rows.Close()

	var out []Hotspot
	for rows.Next() {
		var symStr string
		var isTest int
		var fanIn int
		if err := rows.Scan(&symStr, &isTest, &fanIn); err != nil {
			return nil, err
		}
		sym, ok := fqs.Parse(symStr)
		if !ok {
			continue
		}
		out = append(out, Hotspot{Symbol: sym, FanIn: fanIn, IsTest: isTest != 0})
	}
	return out, rows.Err()
}

// UnusedSymbols returns var-kind, non-test symbols with zero incoming
// edges (namespace nodes are never reported), or nil if there are none — the
// SQLite-backed twin of a reachability sweep, useful for spotting dead
// code while exploring a snapshot.
func (idx *Index) UnusedSymbols() ([]fqs.FQS, error) {
	rows, err := idx.db.Query(`
		SELECT s.symbol FROM symbols s
		LEFT JOIN edges e ON e.to_symbol = s.symbol
		WHERE e.to_symbol IS NULL AND s.is_test = 0 AND s.kind = 'var'
		ORDER BY s.symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("explore: unused-symbols query: %w", err)
	}
	defer rows.Close()

	var out []fqs.FQS
	for rows.Next() {
		var symStr string
		if err := rows.Scan(&symStr); err != nil {
			return nil, err
		}
		if sym, ok := fqs.Parse(symStr); ok {
			out = append(out, sym)
		}
	}
	return out, rows.Err()
}
