package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlojordan/selectest/internal/analyzer/goref"
	"github.com/arlojordan/selectest/internal/config"
)

func TestValidateFormat_AcceptsKnownFormats(t *testing.T) {
	assert.NoError(t, validateFormat("text"))
	assert.NoError(t, validateFormat("json"))
}

func TestValidateFormat_RejectsUnknownFormat(t *testing.T) {
	err := validateFormat("xml")
	assert.Error(t, err)
}

func TestFilterConfigFor_PinsPrimaryDialectToGoref(t *testing.T) {
	cfg := config.Config{PrimaryDialect: "clj", ExcludedExtension: ".cljs"}
	out := filterConfigFor(cfg)
	assert.Equal(t, goref.Dialect, out.PrimaryDialect)
	assert.Equal(t, ".cljs", out.ExcludedExtension)
}

func TestResolvePath_ReturnsAbsoluteUnchanged(t *testing.T) {
	assert.Equal(t, "/tmp/x", resolvePath("/root", "/tmp/x"))
}

func TestResolvePath_JoinsRelativeToRoot(t *testing.T) {
	assert.Equal(t, filepath.Join("/root", "cache.db"), resolvePath("/root", "cache.db"))
}

func TestCollectGoFiles_FindsGoFilesAndSkipsVendor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor", "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "pkg", "lib.go"), []byte("package pkg"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "config.go"), []byte("package git"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	files, err := collectGoFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "main.go")}, files)
}

func TestResolveProjectRoot_UsesFlagWhenSet(t *testing.T) {
	dir := t.TempDir()
	old := flagProjectRoot
	flagProjectRoot = dir
	defer func() { flagProjectRoot = old }()

	root, err := resolveProjectRoot()
	require.NoError(t, err)
	abs, _ := filepath.Abs(dir)
	assert.Equal(t, abs, root)
}
