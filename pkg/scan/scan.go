// Package scan enumerates a directory tree, filters entries through
// the ignore matcher, dispatches files to a bounded worker pool,
// aggregates progress under concurrent mutation, and emits records
// through a single-writer channel.
package scan

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/hashtree/hashtree/pkg/database"
	"github.com/hashtree/hashtree/pkg/digest"
	"github.com/hashtree/hashtree/pkg/herrors"
	"github.com/hashtree/hashtree/pkg/ignore"
	"github.com/hashtree/hashtree/pkg/progress"
	"github.com/hashtree/hashtree/pkg/verbose"
)

// Options configures one scan.
type Options struct {
	Root           string
	Algorithms     []string
	Fast           bool
	HDD            bool // force sequential (single-worker) scheduling
	Workers        int  // 0 = runtime.NumCPU() when !HDD
	IgnoreFileName string
	Sink           progress.Sink
	Cancel         <-chan struct{}

	// WriteRecord, if set, is called exactly once per record from a
	// single dedicated writer goroutine. If nil, records accumulate
	// into the returned Database instead.
	WriteRecord func(database.Record) error
}

// Result is what a completed scan produced.
type Result struct {
	Database *database.Database
	Stats    progress.Stats
	Errors   []progress.FileError
}

// job is one file offered to a hash worker.
type job struct {
	absPath string
	relPath string
	size    int64
}

// Run walks Options.Root, hashes every regular file not excluded by the
// ignore matcher, and returns the accumulated records and statistics.
// A fatal error (bad root, ignore-pattern syntax, writer failure) drains
// the pool before returning.
func Run(opts Options) (*Result, error) {
	defer verbose.Enter()()
	start := time.Now()

	matcher, err := ignore.LoadNamed(opts.Root, ignoreFileName(opts.IgnoreFileName))
	if err != nil {
		return nil, err
	}

	jobs, jobCount, enumErr := enumerate(opts.Root, matcher)
	if enumErr != nil {
		return nil, enumErr
	}
	verbose.Log(2, "scan: %d files queued under %s", jobCount, opts.Root)

	workers := opts.Workers
	if opts.HDD {
		workers = 1
	} else if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}

	counters := progress.NewCounters()
	sink := opts.Sink
	if sink == nil {
		sink = progress.NullSink{}
	}
	sink.Start(int64(jobCount))

	stopTicker := make(chan struct{})
	go func() {
		progress.Poll(sink, counters, 100*time.Millisecond, stopTicker)
	}()

	recordChan := make(chan database.Record, 64)
	db := database.New()
	writerDone := make(chan error, 1)
	go func() {
		defer close(writerDone)
		for rec := range recordChan {
			if opts.WriteRecord != nil {
				if err := opts.WriteRecord(rec); err != nil {
					writerDone <- err
					// Drain the remaining records so workers never block
					// on a full channel after a fatal writer error.
					for range recordChan {
					}
					return
				}
				continue
			}
			db.Put(rec)
		}
	}()

	jobChan := make(chan job, 64)
	doneChan := make(chan struct{})
	for i := 0; i < workers; i++ {
		go worker(jobChan, recordChan, counters, opts, doneChan)
	}

	go func() {
		defer close(jobChan)
		for _, j := range jobs {
			select {
			case jobChan <- j:
			case <-opts.Cancel:
				return
			}
		}
	}()

	for i := 0; i < workers; i++ {
		<-doneChan
	}
	close(recordChan)
	writerErr := <-writerDone

	close(stopTicker)

	stats := counters.Snapshot()
	stats.Duration = time.Since(start)
	sink.Finish(stats)

	if writerErr != nil {
		return nil, herrors.Wrap("scan", opts.Root, herrors.IoWrite, writerErr)
	}

	return &Result{Database: db, Stats: stats, Errors: counters.Errors()}, nil
}

func ignoreFileName(name string) string {
	if name == "" {
		return ignore.FileName
	}
	return name
}

// enumerate walks root, yielding regular files not rejected by matcher,
// in sorted order (directory entries are sorted before descending so
// enumeration order is deterministic for hdd/sequential mode). It does
// not follow symlinks, so cycles are impossible.
func enumerate(root string, matcher *ignore.Matcher) ([]job, int, error) {
	var jobs []job

	info, err := os.Lstat(root)
	if err != nil {
		return nil, 0, herrors.Wrap("scan", root, herrors.IoOpen, err)
	}
	if !info.IsDir() {
		if info.Mode().IsRegular() && !matcher.Match(root, false) {
			jobs = append(jobs, job{absPath: root, relPath: filepath.Base(root), size: info.Size()})
		}
		return jobs, len(jobs), nil
	}

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil // unreadable directory: skip, not fatal
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, e := range entries {
			abs := filepath.Join(dir, e.Name())
			rel, relErr := filepath.Rel(root, abs)
			if relErr != nil {
				continue
			}

			fi, statErr := e.Info()
			if statErr != nil {
				continue
			}
			isDir := fi.IsDir()
			if matcher.Match(abs, isDir) {
				continue
			}

			switch {
			case isDir:
				if err := walk(abs); err != nil {
					return err
				}
			case fi.Mode().IsRegular():
				jobs = append(jobs, job{absPath: abs, relPath: rel, size: fi.Size()})
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, 0, err
	}
	return jobs, len(jobs), nil
}

func worker(jobs <-chan job, out chan<- database.Record, counters *progress.Counters, opts Options, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	computer := &digest.Computer{Cancel: func() bool { return isCancelled(opts.Cancel) }}

	for j := range jobs {
		select {
		case <-opts.Cancel:
			return
		default:
		}

		counters.SetCurrentPath(j.relPath)
		results, err := computer.HashFile(j.absPath, opts.Algorithms, opts.Fast)
		if err != nil {
			counters.AddFailure(j.relPath, err)
			continue
		}
		counters.AddFile(j.size)

		for _, r := range results {
			out <- database.Record{
				Algorithm: r.Algorithm,
				HexDigest: r.HexDigest,
				Mode:      r.Mode,
				Path:      j.relPath,
				Size:      j.size,
				HasSize:   true,
			}
		}
	}
}

func isCancelled(cancel <-chan struct{}) bool {
	if cancel == nil {
		return false
	}
	select {
	case <-cancel:
		return true
	default:
		return false
	}
}
