// Package verify loads a database, walks the target directory
// re-hashing each file with the algorithm and mode the database
// recorded, and classifies every entry as a match, mismatch, missing,
// or new.
package verify

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/hashtree/hashtree/pkg/database"
	"github.com/hashtree/hashtree/pkg/herrors"
	"github.com/hashtree/hashtree/pkg/pathcache"
	"github.com/hashtree/hashtree/pkg/progress"
	"github.com/hashtree/hashtree/pkg/scan"
	"github.com/hashtree/hashtree/pkg/verbose"
)

// Mismatch is one entry whose digest differs between the database and
// the live file.
type Mismatch struct {
	Path     string
	Expected string
	Actual   string
}

// Report is the outcome of one verify run. The three
// sets (Matches, Mismatches, Missing) partition the database's key set;
// Matches, Mismatches and New partition the filesystem's file set under
// the verify root.
type Report struct {
	Matches    int
	Mismatches []Mismatch
	Missing    []string
	New        []string
	Stats      progress.Stats
}

// Options configures one verify run.
type Options struct {
	DatabasePath   string
	Root           string
	HDD            bool
	Workers        int
	IgnoreFileName string
	Sink           progress.Sink
	Cancel         <-chan struct{}
}

// Run loads Options.DatabasePath and compares it against Options.Root.
func Run(opts Options) (*Report, error) {
	defer verbose.Enter()()
	start := time.Now()

	db, _, err := database.Load(opts.DatabasePath)
	if err != nil {
		return nil, err
	}

	// Group the database's records by algorithm+mode so each group can
	// be re-hashed in one scan pass; a database mixing algorithms across
	// paths (line format allows it; hashdeep is single-algorithm) still
	// verifies correctly because each scan only touches paths carried
	// in its own group.
	groups := groupByAlgoMode(db)

	observed := make(map[string]bool, db.Len())
	var mismatches []Mismatch
	matches := 0

	cache := pathcache.New()
	cacheRel := func(p string) (string, error) {
		return cache.Canonicalize(p, func(p string) (string, error) { return filepath.Clean(p), nil })
	}

	var lastStats progress.Stats
	var fsPaths []string // every regular file the walk observed, from whichever scan ran first
	for key, recs := range groups {
		algo, mode := key.algo, key.mode
		fast := mode == database.ModeFast

		res, err := scan.Run(scan.Options{
			Root:           opts.Root,
			Algorithms:     []string{algo},
			Fast:           fast,
			HDD:            opts.HDD,
			Workers:        opts.Workers,
			IgnoreFileName: opts.IgnoreFileName,
			Sink:           opts.Sink,
			Cancel:         opts.Cancel,
		})
		if err != nil {
			return nil, err
		}
		lastStats = res.Stats
		if fsPaths == nil {
			fsPaths = res.Database.Paths()
		}

		wanted := make(map[string]database.Record, len(recs))
		for _, r := range recs {
			rel, _ := cacheRel(r.Path)
			wanted[rel] = r
		}

		for _, scanned := range res.Database.Records() {
			rel, _ := cacheRel(scanned.Path)
			want, ok := wanted[rel]
			if !ok {
				continue // this path isn't in this algo/mode group
			}
			observed[want.Path] = true
			if scanned.HexDigest == want.HexDigest {
				matches++
			} else {
				mismatches = append(mismatches, Mismatch{Path: want.Path, Expected: want.HexDigest, Actual: scanned.HexDigest})
			}
		}
	}

	// An empty database still needs the filesystem's file set so every
	// entry under root classifies as "new".
	if fsPaths == nil {
		res, err := scan.Run(scan.Options{Root: opts.Root, Algorithms: firstAlgorithm(db), HDD: true, Cancel: opts.Cancel})
		if err != nil {
			return nil, herrors.Wrap("verify", opts.Root, herrors.IoRead, err)
		}
		lastStats = res.Stats
		fsPaths = res.Database.Paths()
	}

	// Database keys are stored as written (possibly "./"-prefixed, as
	// hashdeep emits them); compare against the walk's relative paths in
	// canonical form on both sides.
	dbKeys := make(map[string]bool, db.Len())
	for _, p := range db.Paths() {
		rel, _ := cacheRel(p)
		dbKeys[rel] = true
	}
	var newPaths []string
	for _, fsPath := range fsPaths {
		rel, _ := cacheRel(fsPath)
		if !dbKeys[rel] {
			newPaths = append(newPaths, fsPath)
		}
	}

	var missing []string
	for _, p := range db.Paths() {
		if !observed[p] {
			missing = append(missing, p)
		}
	}

	sort.Strings(newPaths)
	sort.Strings(missing)
	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Path < mismatches[j].Path })

	lastStats.Duration = time.Since(start)
	return &Report{
		Matches:    matches,
		Mismatches: mismatches,
		Missing:    missing,
		New:        newPaths,
		Stats:      lastStats,
	}, nil
}

type algoModeKey struct {
	algo string
	mode database.Mode
}

func groupByAlgoMode(db *database.Database) map[algoModeKey][]database.Record {
	groups := make(map[algoModeKey][]database.Record)
	for _, rec := range db.Records() {
		mode := rec.Mode
		if mode == "" {
			mode = database.ModeNormal
		}
		key := algoModeKey{algo: rec.Algorithm, mode: mode}
		groups[key] = append(groups[key], rec)
	}
	return groups
}

func firstAlgorithm(db *database.Database) []string {
	for _, rec := range db.Records() {
		return []string{rec.Algorithm}
	}
	return []string{"sha256"}
}
