package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	selectest "github.com/arlojordan/selectest"
)

var (
	flagTests      []string
	flagPruneStale bool
)

var markVerifiedCmd = &cobra.Command{
	Use:   "mark-verified",
	Short: "Record which tests ran and passed",
	Long:  "Merges the selection's changed hashes into the verified baseline according to which tests actually ran: --all for every selected test, or --tests for an explicit subset.",
	Args:  cobra.NoArgs,
	RunE:  runMarkVerified,
}

func init() {
	markVerifiedCmd.Flags().BoolVar(&flagAllTests, "all", false, "every selected test ran and passed")
	markVerifiedCmd.Flags().StringSliceVar(&flagTests, "tests", nil, "explicit ns/name list of tests that ran and passed")
	markVerifiedCmd.Flags().BoolVar(&flagPruneStale, "prune-stale", false, "also remove baseline entries for symbols no longer in the snapshot")
}

func runMarkVerified(cmd *cobra.Command, args []string) error {
	if !flagAllTests && len(flagTests) == 0 {
		return fmt.Errorf("mark-verified: one of --all or --tests is required")
	}

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

	sel, err := engine.Select(context.Background(), paths, nil, false)
	if err != nil {
		return fmt.Errorf("selecting: %w", err)
	}

	run := selectest.AllTestsRun
	if !flagAllTests {
		tests := make([]selectest.FQS, 0, len(flagTests))
		for _, t := range flagTests {
			sym, ok := parseFQSArg(t)
			if !ok {
				return fmt.Errorf("mark-verified: invalid test %q, expected ns/name", t)
			}
			tests = append(tests, sym)
		}
		run = selectest.RanTests(tests...)
	}

	result, err := engine.MarkVerified(sel, run)
	if err != nil {
		return fmt.Errorf("marking verified: %w", err)
	}

	var pruned int
	if flagPruneStale {
		pruned, err = engine.PruneStaleBaseline()
		if err != nil {
			return fmt.Errorf("pruning stale baseline entries: %w", err)
		}
	}

	if flagFormat == "json" {
		return emitJSON(verifyResultJSON{
			Verified: fqsStrings(result.Verified.Slice()),
			Skipped:  fqsStrings(result.Skipped.Slice()),
			Pruned:   pruned,
		})
	}

	fmt.Fprintf(os.Stdout, "Verified %d changed symbols, %d skipped\n", len(result.Verified), len(result.Skipped))
	if flagPruneStale {
		fmt.Fprintf(os.Stdout, "Pruned %d stale baseline entries\n", pruned)
	}
	return nil
}

type verifyResultJSON struct {
	Verified []string `json:"verified"`
	Skipped  []string `json:"skipped"`
	Pruned   int      `json:"pruned,omitempty"`
}

func parseFQSArg(s string) (selectest.FQS, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return selectest.NewFQS(s[:i], s[i+1:]), true
		}
	}
	return selectest.FQS{}, false
}
