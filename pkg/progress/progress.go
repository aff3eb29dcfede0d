// Package progress holds the shared progress-counter record and the
// pluggable sink interface: atomic counts, a short critical section
// around the current path, and a ticker-polled sink that never blocks
// workers.
package progress

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats is the final, consistent snapshot taken after a pipeline
// drains.
type Stats struct {
	FilesProcessed int64
	FilesFailed    int64
	TotalBytes     int64
	Duration       time.Duration
}

// Sink renders progress (a terminal bar, a null sink, or a test spy).
type Sink interface {
	Start(totalFiles int64)
	Tick(filesDone, bytesDone int64, currentPath string)
	Finish(stats Stats)
}

// Counters is the shared, concurrently-updated progress record. Counts
// are plain atomics; CurrentPath is guarded by its own short mutex so
// no single coarse lock covers the whole record.
type Counters struct {
	filesDone   int64
	bytesDone   int64
	filesFailed int64

	pathMu      sync.Mutex
	currentPath string

	errMu  sync.Mutex
	errors []FileError
}

// FileError is one entry in the bounded errors log.
type FileError struct {
	Path string
	Err  error
}

// MaxErrors bounds the error log's memory under pathological failures.
const MaxErrors = 1000

// NewCounters returns a fresh, zeroed Counters.
func NewCounters() *Counters { return &Counters{} }

// AddFile records one file completed, with its byte count.
func (c *Counters) AddFile(bytes int64) {
	atomic.AddInt64(&c.filesDone, 1)
	atomic.AddInt64(&c.bytesDone, bytes)
}

// AddFailure records one failed file and appends to the bounded error log.
func (c *Counters) AddFailure(path string, err error) {
	atomic.AddInt64(&c.filesFailed, 1)
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if len(c.errors) < MaxErrors {
		c.errors = append(c.errors, FileError{Path: path, Err: err})
	}
}

// SetCurrentPath updates the path a worker is actively processing.
func (c *Counters) SetCurrentPath(path string) {
	c.pathMu.Lock()
	c.currentPath = path
	c.pathMu.Unlock()
}

// CurrentPath reads the most recently set current path.
func (c *Counters) CurrentPath() string {
	c.pathMu.Lock()
	defer c.pathMu.Unlock()
	return c.currentPath
}

// Snapshot reads the counters into a Stats value. Duration is left zero;
// callers fill it in once the pipeline has drained.
func (c *Counters) Snapshot() Stats {
	return Stats{
		FilesProcessed: atomic.LoadInt64(&c.filesDone),
		FilesFailed:    atomic.LoadInt64(&c.filesFailed),
		TotalBytes:     atomic.LoadInt64(&c.bytesDone),
	}
}

// Errors returns a copy of the bounded error log.
func (c *Counters) Errors() []FileError {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	out := make([]FileError, len(c.errors))
	copy(out, c.errors)
	return out
}

// Poll drives sink at the given rate until stop is closed, reading from
// c on each tick. It never blocks the workers updating c, since it only
// ever reads atomics and takes the short path-mutex.
func Poll(sink Sink, c *Counters, rate time.Duration, stop <-chan struct{}) {
	if sink == nil {
		<-stop
		return
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s := c.Snapshot()
			sink.Tick(s.FilesProcessed, s.TotalBytes, c.CurrentPath())
		case <-stop:
			return
		}
	}
}
