package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagProjectRoot string
	flagFormat      string
)

// errorHandled, when true, stops main() from printing the returned error.
// No subcommand in this package sets it, so main() always prints it.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "selectest",
	Short:         "Selective test runner for symbol-graph-tracked source",
	Long:          "selectest determines the minimum set of tests to re-run given a working copy of source and a persisted baseline of previously-passing tests.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProjectRoot, "project-root", "", "project root (default: walk up from cwd looking for .git)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text|json")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(markVerifiedCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exploreCmd)
}
