package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arlojordan/selectest/internal/analyzer/goref"
	"github.com/arlojordan/selectest/internal/cache"
	"github.com/arlojordan/selectest/internal/config"
	"github.com/arlojordan/selectest/internal/fact"
	"github.com/arlojordan/selectest/internal/vcsutil"

	selectest "github.com/arlojordan/selectest"
)

var validFormats = []string{"text", "json"}

// validateFormat checks that --format's value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

// resolveProjectRoot returns --project-root if set, otherwise the
// repository root found by walking up from the current directory.
func resolveProjectRoot() (string, error) {
	if flagProjectRoot != "" {
		abs, err := filepath.Abs(flagProjectRoot)
		if err != nil {
			return "", fmt.Errorf("resolving --project-root %q: %w", flagProjectRoot, err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return vcsutil.FindRepoRoot(cwd), nil
}

// buildEngine loads project configuration and returns a ready-to-use
// Engine wired with the reference goref analyzer.
func buildEngine(root string) (*selectest.Engine, config.Config, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("loading config: %w", err)
	}

	filterCfg := filterConfigFor(cfg)

	opts := []selectest.Option{
		selectest.WithAnalyzer(goref.New()),
		selectest.WithCachePaths(cache.Paths{
			SnapshotPath: resolvePath(root, cfg.SnapshotPath),
			BaselinePath: resolvePath(root, cfg.BaselinePath),
		}),
		selectest.WithFilterConfig(filterCfg),
	}
	if len(cfg.TestMacros) > 0 {
		opts = append(opts, selectest.WithTestMacros(cfg.TestMacros...))
	}

	return selectest.New(root, opts...), cfg, nil
}

// filterConfigFor adapts the project's configured dialect filter to the
// reference goref analyzer, which only ever tags facts with the "go"
// dialect. A .selectest.yaml targeting a Lisp-like source tree would set
// primary_dialect itself; goref's own output is always "go", so the
// filter is pinned to goref.Dialect regardless of config when no
// analyzer override is available.
func filterConfigFor(cfg config.Config) fact.FilterConfig {
	return fact.FilterConfig{
		PrimaryDialect:    goref.Dialect,
		ExcludedExtension: cfg.ExcludedExtension,
	}
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// collectGoFiles walks root collecting .go files, skipping any directory
// named .git, vendor, or node_modules. The cache file locations play no
// part in which directories are skipped.
func collectGoFiles(root string) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			switch info.Name() {
			case ".git", "vendor", "node_modules":
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".go" {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return out, nil
}
