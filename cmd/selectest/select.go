package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	selectest "github.com/arlojordan/selectest"
	"github.com/arlojordan/selectest/internal/fqs"
)

var flagAllTests bool

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select the minimum set of tests to re-run",
	Long:  "Loads the analysis snapshot (analyzing fresh if absent) and the verified baseline, then reports which tests must re-run given what changed.",
	Args:  cobra.NoArgs,
	RunE:  runSelect,
}

func init() {
	selectCmd.Flags().BoolVar(&flagAllTests, "all", false, "force selection of every test, bypassing change detection")
}

func runSelect(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot()
	if err != nil {
		return err
	}

	engine, _, err := buildEngine(root)
	if err != nil {
		return err
	}

	paths, err := collectGoFiles(root)
	if err != nil {
		return err
	}

	sel, err := engine.Select(context.Background(), paths, nil, flagAllTests)
	if err != nil {
		return fmt.Errorf("selecting: %w", err)
	}

	if flagFormat == "json" {
		return emitJSON(selectResultJSON(sel))
	}

	return formatSelectionText(os.Stdout, sel)
}

type selectJSON struct {
	Tests          []string            `json:"tests"`
	ChangedSymbols []string            `json:"changed_symbols"`
	UntestedUsages map[string][]string `json:"untested_usages,omitempty"`
	Stats          statsJSON           `json:"stats"`
	Reason         string              `json:"reason,omitempty"`
}

type statsJSON struct {
	TotalTests       int     `json:"total_tests"`
	SelectedTests    int     `json:"selected_tests"`
	ChangedSymbols   int     `json:"changed_symbols"`
	UntestedUsages   int     `json:"untested_usages"`
	SelectionPercent float64 `json:"selection_percent"`
}

func selectResultJSON(sel *selectest.Selection) selectJSON {
	out := selectJSON{
		Tests:          fqsStrings(sel.Tests),
		ChangedSymbols: fqsStrings(sel.ChangedSymbols.Slice()),
		Reason:         sel.Reason,
		Stats: statsJSON{
			TotalTests:       sel.Stats.TotalTests,
			SelectedTests:    sel.Stats.SelectedTests,
			ChangedSymbols:   sel.Stats.ChangedSymbols,
			UntestedUsages:   sel.Stats.UntestedUsages,
			SelectionPercent: sel.Stats.SelectionPercent,
		},
	}
	if len(sel.UntestedUsages) > 0 {
		out.UntestedUsages = make(map[string][]string, len(sel.UntestedUsages))
		for sym, users := range sel.UntestedUsages {
			out.UntestedUsages[sym.String()] = fqsStrings(users.Slice())
		}
	}
	return out
}

func fqsStrings(syms []fqs.FQS) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.String()
	}
	return out
}

func formatSelectionText(w *os.File, sel *selectest.Selection) error {
	if sel.Reason != "" {
		fmt.Fprintf(w, "Selection reason: %s\n\n", sel.Reason)
	}

	fmt.Fprintf(w, "Selected %d of %d tests (%.1f%%)\n", sel.Stats.SelectedTests, sel.Stats.TotalTests, sel.Stats.SelectionPercent)
	fmt.Fprintf(w, "Changed symbols: %d\n", sel.Stats.ChangedSymbols)
	fmt.Fprintf(w, "Untested usages: %d\n\n", sel.Stats.UntestedUsages)

	if len(sel.Tests) > 0 {
		fmt.Fprintln(w, "Tests:")
		for _, t := range sel.Tests {
			fmt.Fprintf(w, "  %s\n", t)
		}
		fmt.Fprintln(w)
	}

	if len(sel.UntestedUsages) > 0 {
		fmt.Fprintln(w, "Untested usages of changed symbols:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CHANGED\tUNTESTED USER")
		for _, c := range sel.ChangedSymbols.Slice() {
			users, ok := sel.UntestedUsages[c]
			if !ok {
				continue
			}
			for _, u := range users.Slice() {
				fmt.Fprintf(tw, "%s\t%s\n", c, u)
			}
		}
		tw.Flush()
	}

	return nil
}
