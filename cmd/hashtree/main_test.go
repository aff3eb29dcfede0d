package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHashesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	code := run([]string{"--algo", "sha256", path})
	assert.Equal(t, exitSuccess, code)
}

func TestRunRejectsUnknownAlgorithm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	code := run([]string{"--algo", "not-a-real-algorithm", path})
	assert.Equal(t, exitIOOrFormatErr, code)
}

func TestRunScanThenVerifyRoundTrips(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	dbPath := filepath.Join(t.TempDir(), "db.txt")

	code := run([]string{"scan", "--hdd", "--out", dbPath, dir})
	require.Equal(t, exitSuccess, code)

	code = run([]string{"verify", "--hdd", dbPath, dir})
	assert.Equal(t, exitSuccess, code)
}

func TestRunVerifyDetectsMismatchAsLogicalDiff(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	dbPath := filepath.Join(t.TempDir(), "db.txt")

	require.Equal(t, exitSuccess, run([]string{"scan", "--hdd", "--out", dbPath, dir}))
	require.NoError(t, os.WriteFile(target, []byte("changed"), 0o644))

	assert.Equal(t, exitLogicalDiff, run([]string{"verify", "--hdd", dbPath, dir}))
}

func TestRunHashesTextArgument(t *testing.T) {
	assert.Equal(t, exitSuccess, run([]string{"--text", "hello world"}))
}

func TestRunAnalyzeReportsOnDatabase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0o644))
	dbPath := filepath.Join(t.TempDir(), "db.txt")

	require.Equal(t, exitSuccess, run([]string{"scan", "--hdd", "--out", dbPath, dir}))
	assert.Equal(t, exitSuccess, run([]string{"analyze", dbPath}))
}

func TestRunListSucceeds(t *testing.T) {
	assert.Equal(t, exitSuccess, run([]string{"list"}))
}

func TestRunBenchmarkSucceeds(t *testing.T) {
	assert.Equal(t, exitSuccess, run([]string{"benchmark", "--size", "1K", "sha256"}))
}

func TestRunWithNoArgsIsUsageError(t *testing.T) {
	assert.Equal(t, exitUsage, run(nil))
}
