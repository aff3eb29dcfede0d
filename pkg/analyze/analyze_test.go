package analyze

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashtree/hashtree/pkg/database"
)

func TestAnalyzeCountsDuplicatesAndWaste(t *testing.T) {
	db := database.New()
	db.Put(database.Record{Algorithm: "sha256", HexDigest: "aaa", Path: "a.bin", Size: 100, HasSize: true})
	db.Put(database.Record{Algorithm: "sha256", HexDigest: "aaa", Path: "a-copy.bin", Size: 100, HasSize: true})
	db.Put(database.Record{Algorithm: "sha256", HexDigest: "aaa", Path: "a-copy2.bin", Size: 100, HasSize: true})
	db.Put(database.Record{Algorithm: "sha256", HexDigest: "bbb", Path: "unique.bin", Size: 7, HasSize: true})

	report := Analyze(db)

	assert.Equal(t, 4, report.Stats.TotalFiles)
	assert.Equal(t, 2, report.Stats.UniqueHashes)
	assert.Equal(t, 1, report.Stats.DuplicateGroups)
	assert.Equal(t, 3, report.Stats.DuplicateFiles)
	assert.EqualValues(t, 307, report.Stats.TotalFileSize)
	assert.EqualValues(t, 200, report.Stats.PotentialSavings)

	require.Len(t, report.Duplicates, 1)
	g := report.Duplicates[0]
	assert.Equal(t, "aaa", g.Digest)
	assert.Equal(t, 3, g.Count)
	assert.EqualValues(t, 200, g.WastedSpace)
	assert.Equal(t, []string{"a-copy.bin", "a-copy2.bin", "a.bin"}, g.Paths)
}

func TestAnalyzeWithoutSizesOmitsSpaceFigures(t *testing.T) {
	db := database.New()
	db.Put(database.Record{Algorithm: "blake3", HexDigest: "aaa", Path: "x", Mode: database.ModeFast})
	db.Put(database.Record{Algorithm: "blake3", HexDigest: "aaa", Path: "y", Mode: database.ModeNormal})

	report := Analyze(db)

	assert.False(t, report.Stats.HasSizes)
	assert.Zero(t, report.Stats.TotalFileSize)
	assert.Zero(t, report.Stats.PotentialSavings)
	assert.Equal(t, 1, report.Stats.FastModeFiles)
	assert.Equal(t, 1, report.Stats.NormalModeFiles)
	assert.Equal(t, []string{"blake3"}, report.Stats.Algorithms)
}

func TestRunReportsDatabaseFileSize(t *testing.T) {
	db := database.New()
	db.Put(database.Record{Algorithm: "sha256", HexDigest: "abc", Path: "f.bin"})
	path := filepath.Join(t.TempDir(), "db.txt")
	require.NoError(t, database.Save(path, db, database.WriteOptions{Format: database.FormatLine}))

	report, err := Run(path)
	require.NoError(t, err)
	assert.Equal(t, path, report.DatabasePath)
	assert.Greater(t, report.Stats.DatabaseFileSize, int64(0))
	assert.Equal(t, 1, report.Stats.TotalFiles)
}
