// Package vcsutil implements the VCS contract consumed by Engine.Patch's
// caller: enumerating locally modified files for fast-iteration
// patching, plus glob-based path filtering. Optional — if git is
// unavailable, the patch facility is simply unused.
package vcsutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// UncommittedFiles lists files under root that are tracked-and-modified,
// staged, or untracked-but-not-ignored — git's definition of "locally
// modified". Returns an error if root isn't a git repository or git
// isn't available; callers should treat that as "patch unavailable", not
// a fatal error.
func UncommittedFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "status", "--porcelain", "--no-renames")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("vcsutil: git status: %w: %s", err, stderr.String())
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if len(line) < 4 {
			continue
		}
		rel := strings.TrimSpace(line[3:])
		if rel == "" {
			continue
		}
		paths = append(paths, filepath.Join(root, rel))
	}
	return paths, nil
}

// DeletedFiles lists paths reported by git status as removed from the
// working tree (status code "D" in either the index or worktree column).
func DeletedFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "status", "--porcelain", "--no-renames")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("vcsutil: git status: %w: %s", err, stderr.String())
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if len(line) < 4 {
			continue
		}
		status := line[:2]
		rel := strings.TrimSpace(line[3:])
		if rel == "" {
			continue
		}
		if strings.Contains(status, "D") {
			paths = append(paths, filepath.Join(root, rel))
		}
	}
	return paths, nil
}

// FilterGlobs keeps only the paths matching at least one of patterns
// (doublestar `**` syntax), relative to root.
func FilterGlobs(root string, paths []string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return paths, nil
	}
	var out []string
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range patterns {
			match, err := doublestar.Match(pattern, rel)
			if err != nil {
				return nil, fmt.Errorf("vcsutil: invalid glob %q: %w", pattern, err)
			}
			if match {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

// FindRepoRoot walks up from startDir looking for a .git directory,
// returning startDir itself if none is found.
func FindRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}
