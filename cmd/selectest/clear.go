package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagClearAll bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cache files",
	Long:  "Deletes the analysis snapshot. With --all, also deletes the verified baseline, putting future selection into no-baseline mode.",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&flagClearAll, "all", false, "also delete the verified baseline")
}

func runClear(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot()
	if err != nil {
		return err
	}

	engine, _, err := buildEngine(root)
	if err != nil {
		return err
	}

	if flagClearAll {
		if err := engine.ClearAll(); err != nil {
			return fmt.Errorf("clearing all caches: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Cleared snapshot and baseline")
		return nil
	}

	if err := engine.ClearAnalysis(); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	fmt.Fprintln(os.Stdout, "Cleared snapshot")
	return nil
}
