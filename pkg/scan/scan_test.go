package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashtree/hashtree/pkg/database"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunHonoursIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	writeFile(t, filepath.Join(dir, "b.log"), "y")
	writeFile(t, filepath.Join(dir, ".hashignore"), "*.log\n")

	res, err := Run(Options{Root: dir, Algorithms: []string{"sha256"}, HDD: true})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Stats.FilesProcessed)
	assert.Equal(t, int64(0), res.Stats.FilesFailed)
	_, ok := res.Database.Get("a.txt")
	assert.True(t, ok)
	_, ok = res.Database.Get("b.log")
	assert.False(t, ok)
}

func TestRunParallelAndSequentialProduceSameRecordSet(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, filepath.Join(dir, "f", string(rune('a'+i))+".txt"), "content")
	}

	seq, err := Run(Options{Root: dir, Algorithms: []string{"sha256"}, HDD: true})
	require.NoError(t, err)

	par, err := Run(Options{Root: dir, Algorithms: []string{"sha256"}, Workers: 4})
	require.NoError(t, err)

	assert.ElementsMatch(t, seq.Database.Paths(), par.Database.Paths())
}

func TestRunWritesViaWriteRecordCallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")

	var written []string
	res, err := Run(Options{
		Root:       dir,
		Algorithms: []string{"sha256"},
		HDD:        true,
		WriteRecord: func(rec database.Record) error {
			written = append(written, rec.Path)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, written)
	assert.Equal(t, 0, res.Database.Len(), "records go to the callback, not the in-memory database")
}
