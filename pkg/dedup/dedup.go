// Package dedup hashes a tree through the scan pipeline and groups the
// resulting paths by digest.
package dedup

import (
	"sort"

	"github.com/hashtree/hashtree/pkg/database"
	"github.com/hashtree/hashtree/pkg/progress"
	"github.com/hashtree/hashtree/pkg/scan"
)

// Group names every path under a scanned tree sharing a digest.
type Group struct {
	Digest string   `json:"hash"`
	Paths  []string `json:"files"`
	Count  int      `json:"count"`
}

// Report is the outcome of one dedup run.
type Report struct {
	Groups []Group
	Stats  progress.Stats
}

// Options configures one dedup run. Algorithm is a single algorithm
// name; duplicate detection only makes sense when every file in the
// tree is hashed with the same algorithm.
type Options struct {
	Root           string
	Algorithm      string
	Fast           bool
	HDD            bool
	Workers        int
	IgnoreFileName string
	Sink           progress.Sink
	Cancel         <-chan struct{}
}

// Run scans Options.Root and groups the resulting records by digest,
// dropping groups of size one.
func Run(opts Options) (*Report, error) {
	res, err := scan.Run(scan.Options{
		Root:           opts.Root,
		Algorithms:     []string{opts.Algorithm},
		Fast:           opts.Fast,
		HDD:            opts.HDD,
		Workers:        opts.Workers,
		IgnoreFileName: opts.IgnoreFileName,
		Sink:           opts.Sink,
		Cancel:         opts.Cancel,
	})
	if err != nil {
		return nil, err
	}

	groups := GroupByDigest(res.Database)
	return &Report{Groups: groups, Stats: res.Stats}, nil
}

// GroupByDigest groups db's records by digest, returning only groups
// with more than one path, sorted by digest for deterministic output.
func GroupByDigest(db *database.Database) []Group {
	byDigest := make(map[string][]string)
	for _, rec := range db.Records() {
		byDigest[rec.HexDigest] = append(byDigest[rec.HexDigest], rec.Path)
	}

	var groups []Group
	for digest, paths := range byDigest {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		groups = append(groups, Group{Digest: digest, Paths: paths, Count: len(paths)})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Digest < groups[j].Digest })
	return groups
}
