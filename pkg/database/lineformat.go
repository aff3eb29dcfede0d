package database

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/google/vectorio"

	"github.com/hashtree/hashtree/pkg/herrors"
	"github.com/hashtree/hashtree/pkg/registry"
)

const fieldSep = "  " // exactly two spaces

// ReadLines parses the whitespace-delimited line format:
//
//	<hex>  <algorithm>  <mode>  <path>
//
// Fields are separated by exactly two spaces, except path, which
// extends to end of line and may itself contain spaces. Lines that
// don't match the format are skipped and counted; they never abort
// the load.
func ReadLines(r io.Reader) (*Database, int, error) {
	db := New()
	skipped := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := parseLine(line)
		if !ok {
			skipped++
			continue
		}
		db.Put(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, herrors.Wrap("database", "", herrors.IoRead, err)
	}
	return db, skipped, nil
}

// parseLine splits on the first three double-space runs, leaving the
// remainder (which may itself contain spaces) as the path.
func parseLine(line string) (Record, bool) {
	first := strings.Index(line, fieldSep)
	if first < 0 {
		return Record{}, false
	}
	hexDigest := line[:first]
	rest := line[first+len(fieldSep):]

	second := strings.Index(rest, fieldSep)
	if second < 0 {
		return Record{}, false
	}
	algorithm := rest[:second]
	rest = rest[second+len(fieldSep):]

	third := strings.Index(rest, fieldSep)
	if third < 0 {
		return Record{}, false
	}
	modeStr := rest[:third]
	path := rest[third+len(fieldSep):]

	if hexDigest == "" || algorithm == "" || path == "" {
		return Record{}, false
	}
	mode := ModeNormal
	if modeStr == string(ModeFast) {
		mode = ModeFast
	} else if modeStr != string(ModeNormal) {
		return Record{}, false
	}

	return Record{Algorithm: algorithm, HexDigest: strings.ToLower(hexDigest), Mode: mode, Path: path}, true
}

// WriteLines serializes db's records in the line format. When w is
// backed by a real file descriptor each batch of records goes out as
// one vectored write instead of many small Write calls.
func WriteLines(w io.Writer, db *Database) error {
	f, ok := w.(interface {
		Fd() uintptr
	})
	if !ok {
		return writeLinesBuffered(w, db)
	}

	const batchSize = 256 // keeps each WritevRaw call comfortably under IOV_MAX
	records := db.Records()
	for offset := 0; offset < len(records); offset += batchSize {
		end := offset + batchSize
		if end > len(records) {
			end = len(records)
		}
		var bufs [][]byte
		for _, rec := range records[offset:end] {
			bufs = append(bufs, []byte(formatLine(rec)))
		}
		iovecs := make([]syscall.Iovec, len(bufs))
		for i, b := range bufs {
			if len(b) == 0 {
				continue
			}
			iovecs[i] = syscall.Iovec{Base: &b[0]}
			iovecs[i].SetLen(len(b))
		}
		if _, err := vectorio.WritevRaw(f.Fd(), iovecs); err != nil {
			return herrors.Wrap("database", "", herrors.IoWrite, err)
		}
	}
	return nil
}

func writeLinesBuffered(w io.Writer, db *Database) error {
	bw := bufio.NewWriter(w)
	for _, rec := range db.Records() {
		if _, err := bw.WriteString(formatLine(rec)); err != nil {
			return herrors.Wrap("database", "", herrors.IoWrite, err)
		}
	}
	return bw.Flush()
}

func formatLine(rec Record) string {
	mode := rec.Mode
	if mode == "" {
		mode = ModeNormal
	}
	return fmt.Sprintf("%s%s%s%s%s%s%s\n", rec.HexDigest, fieldSep, rec.Algorithm, fieldSep, mode, fieldSep, rec.Path)
}

// algorithmForHexLen infers a likely algorithm from a hex digest length
// when the caller needs a fallback guess (e.g. repairing a record whose
// declared algorithm didn't match the registry). It returns the first
// registered descriptor with a matching HexLen, if any.
func algorithmForHexLen(hexLen int) (string, bool) {
	descs := registry.ByOutputBits(hexLen)
	if len(descs) == 0 {
		return "", false
	}
	return descs[0].Name, true
}
