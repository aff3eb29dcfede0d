// Package database reads and writes hash records in the two on-disk
// formats (a whitespace-delimited line format and a hashdeep CSV
// profile), transparently wrapping an LZMA stream when the target path
// ends ".xz".
package database

import "github.com/hashtree/hashtree/pkg/digest"

// Mode is an alias of digest.Mode, so records loaded from or destined
// for a database carry the same mode values the digest computer produces.
type Mode = digest.Mode

const (
	ModeNormal = digest.ModeNormal
	ModeFast   = digest.ModeFast
)

// Record is one in-memory hash record.
type Record struct {
	Algorithm string
	HexDigest string
	Mode      Mode
	Path      string
	Size      int64 // only meaningful when HasSize is true
	HasSize   bool
}

// Database is a logical path -> record mapping. Path keys compare
// byte-wise as stored.
type Database struct {
	records map[string]Record
	order   []string // arrival order, preserved for deterministic re-write
}

// New returns an empty Database.
func New() *Database {
	return &Database{records: make(map[string]Record)}
}

// Put inserts or overwrites the record for r.Path, tracking first-seen
// order for callers that want to re-emit in arrival order.
func (d *Database) Put(r Record) {
	if _, exists := d.records[r.Path]; !exists {
		d.order = append(d.order, r.Path)
	}
	d.records[r.Path] = r
}

// Get looks up the record stored for path.
func (d *Database) Get(path string) (Record, bool) {
	r, ok := d.records[path]
	return r, ok
}

// Len returns the number of records in the database.
func (d *Database) Len() int { return len(d.records) }

// Paths returns every key, in arrival order.
func (d *Database) Paths() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Records returns every record, in arrival order.
func (d *Database) Records() []Record {
	out := make([]Record, 0, len(d.order))
	for _, p := range d.order {
		out = append(out, d.records[p])
	}
	return out
}

// Delete removes path from the database. It is a no-op if absent.
func (d *Database) Delete(path string) {
	if _, ok := d.records[path]; !ok {
		return
	}
	delete(d.records, path)
	for i, p := range d.order {
		if p == path {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}
