package dedup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGroupsIdenticalFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("unique"), 0o644))

	report, err := Run(Options{Root: dir, Algorithm: "sha256", HDD: true})
	require.NoError(t, err)

	require.Len(t, report.Groups, 1)
	assert.Equal(t, []string{"a.txt", "b.txt"}, report.Groups[0].Paths)
	assert.Equal(t, 2, report.Groups[0].Count)
}

func TestRunNoDuplicatesYieldsEmptyGroups(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("two"), 0o644))

	report, err := Run(Options{Root: dir, Algorithm: "sha256", HDD: true})
	require.NoError(t, err)
	assert.Empty(t, report.Groups)
}
