package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hashtree/hashtree/pkg/database"
)

func TestDiffClassifiesChangedRemovedAdded(t *testing.T) {
	db1 := database.New()
	db1.Put(database.Record{Algorithm: "sha256", HexDigest: "aaa", Path: "a.txt"})
	db1.Put(database.Record{Algorithm: "sha256", HexDigest: "bbb", Path: "b.txt"})

	db2 := database.New()
	db2.Put(database.Record{Algorithm: "sha256", HexDigest: "aaa", Path: "a.txt"})
	db2.Put(database.Record{Algorithm: "sha256", HexDigest: "ccc", Path: "b.txt"})
	db2.Put(database.Record{Algorithm: "sha256", HexDigest: "ddd", Path: "c.txt"})

	report := Diff(db1, db2)

	assert.Equal(t, 1, report.Unchanged)
	assert.Equal(t, []Changed{{Path: "b.txt", Hash1: "bbb", Hash2: "ccc"}}, report.Changed)
	assert.Empty(t, report.Removed)
	assert.Equal(t, []string{"c.txt"}, report.Added)
}

func TestFindDuplicatesGroupsByDigest(t *testing.T) {
	db := database.New()
	db.Put(database.Record{Algorithm: "sha256", HexDigest: "aaa", Path: "a.txt"})
	db.Put(database.Record{Algorithm: "sha256", HexDigest: "aaa", Path: "a-copy.txt"})
	db.Put(database.Record{Algorithm: "sha256", HexDigest: "bbb", Path: "unique.txt"})

	groups := FindDuplicates(db)
	assert.Len(t, groups, 1)
	assert.Equal(t, "aaa", groups[0].Digest)
	assert.Equal(t, []string{"a-copy.txt", "a.txt"}, groups[0].Paths)
}
