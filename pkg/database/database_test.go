package database

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashtree/hashtree/pkg/herrors"
)

func TestLineFormatRoundTrip(t *testing.T) {
	db := New()
	db.Put(Record{Algorithm: "sha256", HexDigest: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Mode: ModeNormal, Path: "./data/a.bin"})
	db.Put(Record{Algorithm: "blake3", HexDigest: "deadbeef", Mode: ModeFast, Path: "./data/b with spaces.bin"})

	var buf bytes.Buffer
	require.NoError(t, writeLinesBuffered(&buf, db))

	got, skipped, err := ReadLines(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, db.Len(), got.Len())

	rec, ok := got.Get("./data/b with spaces.bin")
	require.True(t, ok)
	assert.Equal(t, "blake3", rec.Algorithm)
	assert.Equal(t, ModeFast, rec.Mode)
}

func TestLineFormatSkipsMalformedLines(t *testing.T) {
	input := "not a valid line\n" + "deadbeef  sha256  normal  ./ok.bin\n" + "\n"
	db, skipped, err := ReadLines(bytes.NewBufferString(input))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, db.Len())
}

func TestHashdeepRoundTrip(t *testing.T) {
	db := New()
	db.Put(Record{Algorithm: "sha256", HexDigest: "deadbeef", Path: "./data/file.bin", Size: 1024, HasSize: true})

	var buf bytes.Buffer
	require.NoError(t, WriteHashdeep(&buf, db, "/tmp/data"))

	got, skipped, err := ReadHashdeep(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	rec, ok := got.Get("./data/file.bin")
	require.True(t, ok)
	assert.EqualValues(t, 1024, rec.Size)
	assert.True(t, rec.HasSize)
}

func TestHashdeepRejectsMissingHeader(t *testing.T) {
	_, _, err := ReadHashdeep(bytes.NewBufferString("1024,deadbeef,./file.bin\n"))
	assert.Error(t, err)
}

func TestHashdeepMultiHashHeader(t *testing.T) {
	input := "%%%% HASHDEEP-1.0\n" +
		"%%%% size,md5,sha256,filename\n" +
		"## Invoked from: /data\n" +
		"##\n" +
		"1024,d41d8cd98f00b204e9800998ecf8427e,e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855,./f.bin\n" +
		"99,onlyonehash,./short.bin\n"

	db, skipped, err := ReadHashdeep(bytes.NewBufferString(input))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped, "the row with too few columns is skipped")
	rec, ok := db.Get("./f.bin")
	require.True(t, ok)
	assert.Equal(t, "md5", rec.Algorithm)
	assert.EqualValues(t, 1024, rec.Size)
}

func TestHashdeepToleratesAbsentInvocationComment(t *testing.T) {
	input := "%%%% HASHDEEP-1.0\n" +
		"%%%% size,sha256,filename\n" +
		"10,deadbeef,./f.bin\n"
	db, skipped, err := ReadHashdeep(bytes.NewBufferString(input))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 1, db.Len())
}

func TestSaveLoadRoundTripCompressed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.txt.xz")

	db := New()
	db.Put(Record{Algorithm: "sha256", HexDigest: "deadbeef", Mode: ModeNormal, Path: "a.txt"})

	require.NoError(t, Save(path, db, WriteOptions{Format: FormatLine, Compress: true}))

	got, skipped, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 1, got.Len())
}

func TestLoadMissingDatabaseIsDatabaseMissing(t *testing.T) {
	_, _, err := Load("/nonexistent/path/does-not-exist.txt")
	require.Error(t, err)
	assert.True(t, herrors.HasKind(err, herrors.DatabaseMissing))
}
