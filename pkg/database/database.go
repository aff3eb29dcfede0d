package database

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/hashtree/hashtree/pkg/herrors"
)

// Format identifies which of the two on-disk record formats to use.
type Format string

const (
	FormatLine     Format = "line"
	FormatHashdeep Format = "hashdeep"
)

// isCompressed reports whether path's final extension is ".xz".
func isCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xz")
}

// Load reads a database from path, auto-detecting compression from the
// ".xz" suffix and the record format from content (hashdeep profiles
// start with the "%%%% HASHDEEP" magic; anything else is treated as
// the line format). It returns the database, the skipped-line count,
// and any fatal error (open failure, malformed hashdeep header).
func Load(path string) (*Database, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, herrors.Wrap("database", path, herrors.DatabaseMissing, err)
		}
		return nil, 0, herrors.Wrap("database", path, herrors.IoOpen, err)
	}
	defer f.Close()

	var r io.Reader = f
	if isCompressed(path) {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, 0, herrors.Wrap("database", path, herrors.FormatMismatch, err)
		}
		r = xr
	}

	pr := &peekReader{r: r}
	format := detectFormat(pr)
	return LoadFormat(pr, format)
}

// peekReader lets Load sniff the first bytes of a stream to detect the
// hashdeep magic without consuming them for the real parse.
type peekReader struct {
	buf []byte
	r   io.Reader
}

func (p *peekReader) Read(b []byte) (int, error) {
	if len(p.buf) > 0 {
		n := copy(b, p.buf)
		p.buf = p.buf[n:]
		if n == len(b) {
			return n, nil
		}
		m, err := p.r.Read(b[n:])
		return n + m, err
	}
	return p.r.Read(b)
}

// detectFormat peeks the stream for the hashdeep magic and pushes the
// peeked bytes back so the real parse sees them again.
func detectFormat(p *peekReader) Format {
	head := make([]byte, len(hashdeepMagic))
	n, _ := io.ReadFull(p, head)
	head = head[:n]
	p.buf = append(head, p.buf...)
	if strings.HasPrefix(string(head), hashdeepMagic) {
		return FormatHashdeep
	}
	return FormatLine
}

// LoadFormat reads from r in the given format without doing any file or
// compression handling; callers that already hold an io.Reader for a
// known format use this directly.
func LoadFormat(r io.Reader, format Format) (*Database, int, error) {
	switch format {
	case FormatHashdeep:
		return ReadHashdeep(r)
	default:
		return ReadLines(r)
	}
}

// WriteOptions controls how Save emits a database.
type WriteOptions struct {
	Format      Format
	Compress    bool   // force .xz wrapping regardless of path suffix
	InvokedFrom string // only used by the hashdeep writer's "## Invoked from:" line
}

// Save writes db to path atomically: it writes to path+".tmp", fsyncs,
// and renames over path on success. When compression is requested the
// uncompressed staging data never touches disk; the xz writer streams
// straight into the temp file, so there is no separate uncompressed
// temporary to clean up.
func Save(path string, db *Database, opts WriteOptions) error {
	compress := opts.Compress || isCompressed(path)

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return herrors.Wrap("database", path, herrors.IoWrite, err)
	}

	writeErr := func() error {
		var w io.Writer = f
		var closer io.Closer
		if compress {
			// ulikunitz/xz has no literal "preset" knob; its default
			// WriterConfig (8 MiB dictionary) matches the xz CLI's
			// preset 6 dictionary size.
			xw, err := xz.NewWriter(f)
			if err != nil {
				return herrors.Wrap("database", path, herrors.IoWrite, err)
			}
			w = xw
			closer = xw
		}
		var writeErr error
		switch opts.Format {
		case FormatHashdeep:
			writeErr = WriteHashdeep(w, db, opts.InvokedFrom)
		default:
			writeErr = WriteLines(w, db)
		}
		if closer != nil {
			if cerr := closer.Close(); writeErr == nil {
				writeErr = cerr
			}
		}
		return writeErr
	}()

	if syncErr := f.Sync(); writeErr == nil {
		writeErr = syncErr
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return herrors.Wrap("database", path, herrors.IoWrite, writeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return herrors.Wrap("database", path, herrors.IoWrite, fmt.Errorf("rename temp database into place: %w", err))
	}
	return nil
}
