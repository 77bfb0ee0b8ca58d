package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arlojordan/selectest/internal/explore"
)

var (
	flagExploreDepth int
	flagExploreLimit int
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Ad hoc queries over the current snapshot",
	Long:  "Builds a disposable SQLite index from the analysis snapshot and answers ad hoc structural queries against it. The index is rebuilt on every invocation and discarded afterward.",
}

func init() {
	exploreCmd.PersistentFlags().IntVar(&flagExploreDepth, "depth", 0, "max BFS depth (0 = unbounded)")
	exploreCmd.AddCommand(exploreCallersCmd)
	exploreCmd.AddCommand(exploreCalleesCmd)
	exploreCmd.AddCommand(exploreHotspotsCmd)
	exploreCmd.AddCommand(exploreUnusedCmd)
}

var exploreCallersCmd = &cobra.Command{
	Use:   "callers <ns/name>",
	Short: "List symbols with a transitive usage path to the target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExploreIndex(func(idx *explore.Index) error {
			sym, ok := parseFQSArg(args[0])
			if !ok {
				return fmt.Errorf("explore callers: invalid symbol %q, expected ns/name", args[0])
			}
			syms, err := idx.TransitiveCallers(sym, flagExploreDepth)
			if err != nil {
				return err
			}
			return emitSymbolList(syms)
		})
	},
}

var exploreCalleesCmd = &cobra.Command{
	Use:   "callees <ns/name>",
	Short: "List symbols transitively used by the target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExploreIndex(func(idx *explore.Index) error {
			sym, ok := parseFQSArg(args[0])
			if !ok {
				return fmt.Errorf("explore callees: invalid symbol %q, expected ns/name", args[0])
			}
			syms, err := idx.TransitiveCallees(sym, flagExploreDepth)
			if err != nil {
				return err
			}
			return emitSymbolList(syms)
		})
	},
}

var exploreHotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "List symbols ranked by fan-in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExploreIndex(func(idx *explore.Index) error {
			limit := flagExploreLimit
			if limit <= 0 {
				limit = 20
			}
			hotspots, err := idx.Hotspots(limit)
			if err != nil {
				return err
			}
			if flagFormat == "json" {
				out := make([]hotspotJSON, len(hotspots))
				for i, h := range hotspots {
					out[i] = hotspotJSON{Symbol: h.Symbol.String(), FanIn: h.FanIn, IsTest: h.IsTest}
				}
				return emitJSON(out)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SYMBOL\tFAN-IN\tIS-TEST")
			for _, h := range hotspots {
				fmt.Fprintf(tw, "%s\t%d\t%t\n", h.Symbol, h.FanIn, h.IsTest)
			}
			return tw.Flush()
		})
	},
}

var exploreUnusedCmd = &cobra.Command{
	Use:   "unused",
	Short: "List var symbols with no incoming usage edges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExploreIndex(func(idx *explore.Index) error {
			syms, err := idx.UnusedSymbols()
			if err != nil {
				return err
			}
			return emitSymbolList(syms)
		})
	},
}

func init() {
	exploreHotspotsCmd.Flags().IntVar(&flagExploreLimit, "limit", 20, "max rows to return")
}

type hotspotJSON struct {
	Symbol string `json:"symbol"`
	FanIn  int    `json:"fan_in"`
	IsTest bool   `json:"is_test"`
}

// withExploreIndex builds a temp SQLite index from the current snapshot,
// runs fn against it, and always removes the temp file afterward.
func withExploreIndex(fn func(idx *explore.Index) error) error {
	root, err := resolveProjectRoot()
	if err != nil {
		return err
	}

	engine, _, err := buildEngine(root)
	if err != nil {
		return err
	}

	dbPath := filepath.Join(os.TempDir(), fmt.Sprintf("selectest-explore-%d.db", os.Getpid()))
	defer os.Remove(dbPath)

	idx, err := engine.Explore(dbPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	return fn(idx)
}
