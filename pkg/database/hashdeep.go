package database

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashtree/hashtree/pkg/herrors"
)

const hashdeepMagic = "%%%% HASHDEEP-1.0"

// ReadHashdeep parses a hashdeep-CSV profile:
//
//	%%%% HASHDEEP-1.0
//	%%%% size,<algorithm>,filename
//	## Invoked from: <dir>
//	##
//	1024,e3b0c442...,./data/file.bin
//
// The invocation-comment lines ("## ...") are optional and tolerated
// whether present or absent. The header's column list may name more
// than one algorithm; records whose column count disagrees with the
// header are rejected.
func ReadHashdeep(r io.Reader) (*Database, int, error) {
	db := New()
	skipped := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var algorithms []string
	sawMagic := false
	sawColumns := false
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, hashdeepMagic):
			sawMagic = true
			continue
		case strings.HasPrefix(line, "%%%%"):
			// The column header: "%%%% size,sha256,filename" (or
			// "%%%% size,md5,sha256,filename" for multi-hash headers).
			cols := strings.TrimSpace(strings.TrimPrefix(line, "%%%%"))
			parts := strings.Split(cols, ",")
			if len(parts) < 3 || parts[0] != "size" || parts[len(parts)-1] != "filename" {
				return nil, skipped, herrors.WrapParseLine("database", "", lineNum, line,
					fmt.Errorf("malformed hashdeep column header"))
			}
			algorithms = parts[1 : len(parts)-1]
			sawColumns = true
			continue
		case strings.HasPrefix(line, "##"):
			continue
		}

		if !sawColumns {
			return nil, skipped, herrors.New("database", "", herrors.FormatMismatch)
		}

		rec, ok := parseHashdeepRecord(line, algorithms)
		if !ok {
			skipped++
			continue
		}
		db.Put(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, herrors.Wrap("database", "", herrors.IoRead, err)
	}
	if !sawMagic || !sawColumns {
		return nil, skipped, herrors.New("database", "", herrors.FormatMismatch)
	}
	return db, skipped, nil
}

// parseHashdeepRecord splits "size,hex[,hex...],path" and rejects rows
// whose column count disagrees with the declared algorithm list.
func parseHashdeepRecord(line string, algorithms []string) (Record, bool) {
	wantCols := 1 + len(algorithms) + 1
	parts := strings.SplitN(line, ",", wantCols)
	if len(parts) != wantCols {
		return Record{}, false
	}

	size, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || size < 0 {
		return Record{}, false
	}

	hexDigest := parts[1]
	path := parts[len(parts)-1]
	if hexDigest == "" || path == "" {
		return Record{}, false
	}

	// Multi-hash headers keep the first column as the record's
	// algorithm (the primary column hashdeep tools key output on)
	// rather than fabricating a multi-algorithm Record shape. A header
	// that somehow omitted the algorithm name falls back to inferring
	// it from the hex digest length.
	var algo string
	switch {
	case len(algorithms) > 0:
		algo = algorithms[0]
	default:
		if guess, ok := algorithmForHexLen(len(hexDigest)); ok {
			algo = guess
		} else {
			algo = "sha256"
		}
	}

	return Record{
		Algorithm: strings.ToLower(algo),
		HexDigest: strings.ToLower(hexDigest),
		Mode:      ModeNormal, // hashdeep has no mode column; normal is implied
		Path:      path,
		Size:      size,
		HasSize:   true,
	}, true
}

// WriteHashdeep serializes db in the hashdeep format. All records must
// share one algorithm and carry a size; WriteHashdeep uses the
// algorithm of db's first record for the header.
func WriteHashdeep(w io.Writer, db *Database, invokedFrom string) error {
	records := db.Records()
	algo := "sha256"
	if len(records) > 0 {
		algo = records[0].Algorithm
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n", hashdeepMagic); err != nil {
		return herrors.Wrap("database", "", herrors.IoWrite, err)
	}
	if _, err := fmt.Fprintf(bw, "%%%%%%%% size,%s,filename\n", algo); err != nil {
		return herrors.Wrap("database", "", herrors.IoWrite, err)
	}
	if invokedFrom != "" {
		if _, err := fmt.Fprintf(bw, "## Invoked from: %s\n##\n", invokedFrom); err != nil {
			return herrors.Wrap("database", "", herrors.IoWrite, err)
		}
	}
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, "%d,%s,%s\n", rec.Size, rec.HexDigest, rec.Path); err != nil {
			return herrors.Wrap("database", "", herrors.IoWrite, err)
		}
	}
	return bw.Flush()
}
