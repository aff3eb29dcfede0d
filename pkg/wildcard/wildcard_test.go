package wildcard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSortedAcrossDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "2.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "1.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b", "3.txt"), []byte("x"), 0o644))

	out, err := Expand([]string{
		filepath.Join(dir, "a", "*.txt"),
		filepath.Join(dir, "b", "*.txt"),
	}, true)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.True(t, out[0] < out[1] && out[1] < out[2])
}

func TestExpandNoMatchesStrict(t *testing.T) {
	_, err := Expand([]string{filepath.Join(t.TempDir(), "nope-*.txt")}, true)
	require.Error(t, err)
}

func TestExpandNoMatchesLenient(t *testing.T) {
	out, err := Expand([]string{filepath.Join(t.TempDir(), "nope-*.txt")}, false)
	require.NoError(t, err)
	assert.Empty(t, out)
}
