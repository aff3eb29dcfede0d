// Package compare diffs two databases' key sets, compares digests for
// intersecting paths, and reports within-database duplicate groups for
// each side.
package compare

import (
	"sort"

	"github.com/hashtree/hashtree/pkg/database"
)

// Changed is one path whose digest differs between the two databases.
type Changed struct {
	Path  string
	Hash1 string
	Hash2 string
}

// DuplicateGroup names every path in one database sharing a digest.
type DuplicateGroup struct {
	Digest string   `json:"hash"`
	Paths  []string `json:"files"`
}

// Report is the outcome of comparing two databases.
type Report struct {
	Unchanged   int
	Changed     []Changed
	Removed     []string // present in db1, absent from db2
	Added       []string // present in db2, absent from db1
	Duplicates1 []DuplicateGroup
	Duplicates2 []DuplicateGroup
}

// Run loads path1 and path2 through the database codec and computes
// their diff and duplicate groups. Complexity is O(n log n), dominated
// by the sorts that make the report deterministic.
func Run(path1, path2 string) (*Report, error) {
	db1, _, err := database.Load(path1)
	if err != nil {
		return nil, err
	}
	db2, _, err := database.Load(path2)
	if err != nil {
		return nil, err
	}
	return Diff(db1, db2), nil
}

// Diff compares two already-loaded databases.
func Diff(db1, db2 *database.Database) *Report {
	report := &Report{
		Duplicates1: FindDuplicates(db1),
		Duplicates2: FindDuplicates(db2),
	}

	for _, p := range db1.Paths() {
		r1, _ := db1.Get(p)
		r2, ok := db2.Get(p)
		if !ok {
			report.Removed = append(report.Removed, p)
			continue
		}
		if r1.HexDigest == r2.HexDigest {
			report.Unchanged++
		} else {
			report.Changed = append(report.Changed, Changed{Path: p, Hash1: r1.HexDigest, Hash2: r2.HexDigest})
		}
	}
	for _, p := range db2.Paths() {
		if _, ok := db1.Get(p); !ok {
			report.Added = append(report.Added, p)
		}
	}

	sort.Strings(report.Removed)
	sort.Strings(report.Added)
	sort.Slice(report.Changed, func(i, j int) bool { return report.Changed[i].Path < report.Changed[j].Path })

	return report
}

// FindDuplicates groups db's records by digest, returning only groups
// with more than one path, sorted by digest for deterministic output.
func FindDuplicates(db *database.Database) []DuplicateGroup {
	byDigest := make(map[string][]string)
	for _, p := range db.Paths() {
		rec, _ := db.Get(p)
		byDigest[rec.HexDigest] = append(byDigest[rec.HexDigest], p)
	}

	var groups []DuplicateGroup
	for digest, paths := range byDigest {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		groups = append(groups, DuplicateGroup{Digest: digest, Paths: paths})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Digest < groups[j].Digest })
	return groups
}
