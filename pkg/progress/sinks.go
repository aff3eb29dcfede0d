package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// NullSink discards every call; it is the default when no sink is
// supplied and for --json invocations, where terminal rendering would be
// noise.
type NullSink struct{}

func (NullSink) Start(int64)               {}
func (NullSink) Tick(int64, int64, string) {}
func (NullSink) Finish(Stats)              {}

// RecordingSink is a test spy: it records every call it receives so
// tests can assert on the sequence without a real terminal.
type RecordingSink struct {
	mu     sync.Mutex
	Starts []int64
	Ticks  []TickCall
	Final  *Stats
}

// TickCall is one recorded Tick invocation.
type TickCall struct {
	FilesDone   int64
	BytesDone   int64
	CurrentPath string
}

func (s *RecordingSink) Start(total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Starts = append(s.Starts, total)
}

func (s *RecordingSink) Tick(filesDone, bytesDone int64, currentPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ticks = append(s.Ticks, TickCall{FilesDone: filesDone, BytesDone: bytesDone, CurrentPath: currentPath})
}

func (s *RecordingSink) Finish(stats Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := stats
	s.Final = &st
}

// TerminalSink renders a schollz/progressbar bar to stdout: a
// file-count bar with a periodically updated MB/s description.
type TerminalSink struct {
	bar    *progressbar.ProgressBar
	lastB  int64
	lastAt time.Time
}

// NewTerminalSink builds a sink with an unknown/growing total; totalFiles
// is supplied later via Start once enumeration has counted the tree.
func NewTerminalSink() *TerminalSink {
	return &TerminalSink{lastAt: time.Now()}
}

func (t *TerminalSink) Start(totalFiles int64) {
	t.bar = progressbar.NewOptions64(
		totalFiles,
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetDescription("hashing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	t.lastAt = time.Now()
}

func (t *TerminalSink) Tick(filesDone, bytesDone int64, currentPath string) {
	if t.bar == nil {
		return
	}
	t.bar.Set64(filesDone)

	now := time.Now()
	dt := now.Sub(t.lastAt).Seconds()
	mbps := 0.0
	if dt > 0 {
		mbps = (float64(bytesDone-t.lastB) / 1_000_000.0) / dt
	}
	t.lastB = bytesDone
	t.lastAt = now

	desc := fmt.Sprintf("hashing %s | %.1f MB/s", currentPath, mbps)
	t.bar.Describe(desc)
}

func (t *TerminalSink) Finish(stats Stats) {
	if t.bar == nil {
		return
	}
	_ = t.bar.Finish()
	fmt.Fprintf(os.Stdout, "\n%d files, %d failed, %d bytes in %s\n",
		stats.FilesProcessed, stats.FilesFailed, stats.TotalBytes, stats.Duration)
}
