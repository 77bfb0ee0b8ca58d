// Package cache implements the two persistent stores: the ephemeral
// analysis snapshot and the durable verified baseline. Both are single
// files written with the tagged structured-text codec and saved with a
// write-then-rename for crash safety.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arlojordan/selectest/internal/cache/tagged"
)

// Paths locates the two cache files. Both default to project-root
// dotfiles; callers (or internal/config) resolve the defaults.
type Paths struct {
	SnapshotPath string
	BaselinePath string
}

// FileStatus reports the on-disk state of one cache file.
type FileStatus struct {
	Exists  bool
	Size    int64
	ModTime time.Time
}

// Status reports existence, size, and modification time for both cache
// files, for the CLI's `status` command.
func Status(p Paths) (snapshot FileStatus, baseline FileStatus) {
	return statFile(p.SnapshotPath), statFile(p.BaselinePath)
}

func statFile(path string) FileStatus {
	info, err := os.Stat(path)
	if err != nil {
		return FileStatus{}
	}
	return FileStatus{Exists: true, Size: info.Size(), ModTime: info.ModTime()}
}

// SaveSnapshot fully overwrites the snapshot file.
func SaveSnapshot(path string, s Snapshot) error {
	return writeAtomic(path, tagged.Encode(encodeSnapshot(s)))
}

// LoadSnapshot returns the snapshot, or (Snapshot{}, false) if the file
// is missing or corrupt — both are treated identically: absent, never an
// error, since a missing snapshot simply triggers a fresh analyze.
func LoadSnapshot(path string) (Snapshot, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, false
	}
	v, err := tagged.Decode(string(content))
	if err != nil {
		return Snapshot{}, false
	}
	s, err := decodeSnapshot(v)
	if err != nil {
		return Snapshot{}, false
	}
	return s, true
}

// ClearAnalysis deletes the snapshot file only.
func ClearAnalysis(p Paths) error {
	return removeIfExists(p.SnapshotPath)
}

// ClearAll deletes both cache files. Baseline loss is non-recoverable and
// puts future selection into "no baseline" mode.
func ClearAll(p Paths) error {
	if err := removeIfExists(p.SnapshotPath); err != nil {
		return err
	}
	return removeIfExists(p.BaselinePath)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: removing %s: %w", path, err)
	}
	return nil
}

// writeAtomic writes content to a temp file in the same directory as
// path, then renames it into place, so a crash mid-write never leaves a
// half-written cache file.
func writeAtomic(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("cache: writing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("cache: closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("cache: renaming %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
