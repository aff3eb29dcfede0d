// Package analyze inspects a single hash database and produces
// statistics: totals, unique digests, duplicate groups, per-mode
// counts, and (when the format carries sizes) the space wasted by
// duplicates.
package analyze

import (
	"os"
	"sort"

	"github.com/hashtree/hashtree/pkg/database"
	"github.com/hashtree/hashtree/pkg/herrors"
)

// DuplicateGroup is one set of paths sharing a digest. WastedSpace is
// (Count-1) * FileSize and only present when the database carries
// sizes.
type DuplicateGroup struct {
	Digest      string   `json:"hash"`
	Paths       []string `json:"files"`
	Count       int      `json:"count"`
	FileSize    int64    `json:"file_size,omitempty"`
	WastedSpace int64    `json:"wasted_space,omitempty"`
	HasSize     bool     `json:"-"`
}

// Stats summarizes the analyzed database.
type Stats struct {
	TotalFiles       int      `json:"total_files"`
	UniqueHashes     int      `json:"unique_hashes"`
	DuplicateGroups  int      `json:"duplicate_groups"`
	DuplicateFiles   int      `json:"duplicate_files"`
	DatabaseFileSize int64    `json:"database_file_size"`
	Algorithms       []string `json:"algorithms"`
	FastModeFiles    int      `json:"fast_mode_files"`
	NormalModeFiles  int      `json:"normal_mode_files"`
	TotalFileSize    int64    `json:"total_file_size,omitempty"`
	PotentialSavings int64    `json:"potential_savings,omitempty"`
	HasSizes         bool     `json:"-"`
}

// Report is the outcome of analyzing one database.
type Report struct {
	DatabasePath string           `json:"database_path"`
	Stats        Stats            `json:"stats"`
	Duplicates   []DuplicateGroup `json:"duplicate_groups"`
}

// Run loads the database at path and analyzes it.
func Run(path string) (*Report, error) {
	db, _, err := database.Load(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, herrors.Wrap("analyze", path, herrors.IoOpen, err)
	}

	report := Analyze(db)
	report.DatabasePath = path
	report.Stats.DatabaseFileSize = info.Size()
	return report, nil
}

// Analyze computes the statistics for an already-loaded database.
func Analyze(db *database.Database) *Report {
	stats := Stats{TotalFiles: db.Len(), HasSizes: true}

	byDigest := make(map[string][]database.Record)
	algoSeen := make(map[string]bool)
	for _, rec := range db.Records() {
		byDigest[rec.HexDigest] = append(byDigest[rec.HexDigest], rec)
		if !algoSeen[rec.Algorithm] {
			algoSeen[rec.Algorithm] = true
			stats.Algorithms = append(stats.Algorithms, rec.Algorithm)
		}
		if rec.Mode == database.ModeFast {
			stats.FastModeFiles++
		} else {
			stats.NormalModeFiles++
		}
		if rec.HasSize {
			stats.TotalFileSize += rec.Size
		} else {
			stats.HasSizes = false
		}
	}
	sort.Strings(stats.Algorithms)
	stats.UniqueHashes = len(byDigest)

	var groups []DuplicateGroup
	for digest, recs := range byDigest {
		if len(recs) < 2 {
			continue
		}
		g := DuplicateGroup{Digest: digest, Count: len(recs)}
		for _, r := range recs {
			g.Paths = append(g.Paths, r.Path)
		}
		sort.Strings(g.Paths)
		if recs[0].HasSize {
			g.HasSize = true
			g.FileSize = recs[0].Size
			g.WastedSpace = int64(len(recs)-1) * recs[0].Size
		}
		groups = append(groups, g)

		stats.DuplicateFiles += len(recs)
		if g.HasSize {
			stats.PotentialSavings += g.WastedSpace
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].WastedSpace != groups[j].WastedSpace {
			return groups[i].WastedSpace > groups[j].WastedSpace
		}
		return groups[i].Digest < groups[j].Digest
	})
	stats.DuplicateGroups = len(groups)
	if db.Len() == 0 {
		stats.HasSizes = false
	}
	if !stats.HasSizes {
		stats.TotalFileSize = 0
		stats.PotentialSavings = 0
	}

	return &Report{Stats: stats, Duplicates: groups}
}
