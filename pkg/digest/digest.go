// Package digest streams a file or byte source through one or more
// registry.Digest objects in a single pass, and implements the
// bit-exact fast (sampled) hashing mode for large files.
package digest

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"os"

	"github.com/hashtree/hashtree/pkg/herrors"
	"github.com/hashtree/hashtree/pkg/registry"
)

// ChunkSize is the fixed read buffer size for normal-mode hashing.
const ChunkSize = 64 * 1024

// FastModeThreshold is the file size above which fast mode samples
// three regions instead of reading the whole file.
const FastModeThreshold = 300 * 1024 * 1024

// fastRegionSize is the size of each of the three sampled regions.
const fastRegionSize = 100 * 1024 * 1024

// Mode is the hashing mode a record was produced under.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeFast   Mode = "fast"
)

// Result holds one algorithm's hex digest from a single hashing pass.
type Result struct {
	Algorithm string
	HexDigest string
	Mode      Mode
}

// CancelFunc is polled between chunks/files; when it returns true the
// in-flight hash is abandoned. A nil CancelFunc means never cancel.
type CancelFunc func() bool

// Computer streams bytes through one or more algorithms in one pass.
type Computer struct {
	Cancel CancelFunc
}

// New returns a Computer with no cancellation.
func New() *Computer { return &Computer{} }

// HashFile hashes the file at path with the given algorithms. fast
// requests fast mode; for files at or below FastModeThreshold the
// result is identical to normal mode.
func (c *Computer) HashFile(path string, algorithms []string, fast bool) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, herrors.Wrap("hash", path, herrors.IoOpen, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, herrors.Wrap("hash", path, herrors.IoOpen, err)
	}
	size := info.Size()

	digests, err := newDigests(algorithms)
	if err != nil {
		return nil, err
	}

	mode := ModeNormal
	var readErr error
	if fast && size > FastModeThreshold {
		mode = ModeFast
		readErr = c.hashFastRegions(f, size, digests)
	} else {
		readErr = c.hashAllBytes(f, digests)
	}
	if readErr != nil {
		return nil, herrors.Wrap("hash", path, herrors.IoRead, readErr)
	}

	// A file that shrank out from under us mid-read surfaces as Truncated,
	// not as a short digest.
	if info2, statErr := os.Stat(path); statErr == nil && info2.Size() < size && mode == ModeNormal {
		return nil, herrors.New("hash", path, herrors.Truncated)
	}

	return finalize(digests, algorithms, mode), nil
}

// HashStream hashes a non-seekable source in full. Fast mode is not
// applicable to streams and is rejected.
func (c *Computer) HashStream(r io.Reader, algorithms []string, fast bool) ([]Result, error) {
	if fast {
		return nil, herrors.New("hash", "<stream>", herrors.UnsupportedMode)
	}
	digests, err := newDigests(algorithms)
	if err != nil {
		return nil, err
	}
	if err := c.copyThrough(r, digests); err != nil {
		return nil, herrors.Wrap("hash", "<stream>", herrors.IoRead, err)
	}
	return finalize(digests, algorithms, ModeNormal), nil
}

// HashBytes hashes an in-memory buffer in full (used for the "hello
// world" text scenario and the default subcommand's --text input).
func (c *Computer) HashBytes(data []byte, algorithms []string) ([]Result, error) {
	digests, err := newDigests(algorithms)
	if err != nil {
		return nil, err
	}
	if err := c.copyThrough(bytes.NewReader(data), digests); err != nil {
		return nil, herrors.Wrap("hash", "<bytes>", herrors.IoRead, err)
	}
	return finalize(digests, algorithms, ModeNormal), nil
}

func newDigests(algorithms []string) ([]registry.Digest, error) {
	digests := make([]registry.Digest, 0, len(algorithms))
	for _, a := range algorithms {
		d, err := registry.Get(a)
		if err != nil {
			return nil, herrors.Wrap("hash", "", herrors.UnknownAlgorithm, err)
		}
		digests = append(digests, d)
	}
	return digests, nil
}

func finalize(digests []registry.Digest, algorithms []string, mode Mode) []Result {
	out := make([]Result, len(digests))
	for i, d := range digests {
		out[i] = Result{
			Algorithm: algorithms[i],
			HexDigest: hex.EncodeToString(d.Finalize()),
			Mode:      mode,
		}
	}
	return out
}

// hashAllBytes reads r to EOF in ChunkSize pieces, writing each chunk to
// every digest in a single pass.
func (c *Computer) hashAllBytes(r io.Reader, digests []registry.Digest) error {
	return c.copyThrough(r, digests)
}

func (c *Computer) copyThrough(r io.Reader, digests []registry.Digest) error {
	buf := make([]byte, ChunkSize)
	for {
		if c.Cancel != nil && c.Cancel() {
			return errors.New("hashing cancelled")
		}
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			for _, d := range digests {
				d.Update(chunk)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// hashFastRegions hashes the deterministic three-region sample of f:
// bytes [0, 100MiB), the 100MiB window centered on size/2, and the
// last 100MiB, concatenated in that order and fed through the digests
// as a single logical stream. Regions are read and hashed even when
// they overlap (300MiB <= size < 400MiB); the sampled byte sequence
// must be identical for identical content on every run.
func (c *Computer) hashFastRegions(f *os.File, size int64, digests []registry.Digest) error {
	mid := size / 2
	regions := [][2]int64{
		{0, fastRegionSize},
		{mid - fastRegionSize/2, mid + fastRegionSize/2},
		{size - fastRegionSize, size},
	}
	for _, region := range regions {
		if err := c.hashRegion(f, region[0], region[1], digests); err != nil {
			return err
		}
	}
	return nil
}

func (c *Computer) hashRegion(f *os.File, start, end int64, digests []registry.Digest) error {
	if start < 0 {
		start = 0
	}
	remaining := end - start
	if remaining <= 0 {
		return nil
	}
	section := io.NewSectionReader(f, start, remaining)
	return c.copyThrough(section, digests)
}
