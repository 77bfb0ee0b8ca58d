package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report cache file status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot()
	if err != nil {
		return err
	}

	engine, _, err := buildEngine(root)
	if err != nil {
		return err
	}

	snapshot, baseline := engine.Status()

	if flagFormat == "json" {
		return emitJSON(statusJSON{
			Snapshot: fileStatusJSON(snapshot.Exists, snapshot.Size, snapshot.ModTime.String()),
			Baseline: fileStatusJSON(baseline.Exists, baseline.Size, baseline.ModTime.String()),
		})
	}

	fmt.Fprintf(os.Stdout, "Snapshot: exists=%t size=%d modified=%s\n", snapshot.Exists, snapshot.Size, snapshot.ModTime)
	fmt.Fprintf(os.Stdout, "Baseline: exists=%t size=%d modified=%s\n", baseline.Exists, baseline.Size, baseline.ModTime)
	return nil
}

type statusJSON struct {
	Snapshot fileStatusEntry `json:"snapshot"`
	Baseline fileStatusEntry `json:"baseline"`
}

type fileStatusEntry struct {
	Exists   bool   `json:"exists"`
	Size     int64  `json:"size"`
	Modified string `json:"modified,omitempty"`
}

func fileStatusJSON(exists bool, size int64, modified string) fileStatusEntry {
	return fileStatusEntry{Exists: exists, Size: size, Modified: modified}
}
