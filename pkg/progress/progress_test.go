package progress

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersConcurrentUpdates(t *testing.T) {
	c := NewCounters()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.AddFile(10)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, int64(800), s.FilesProcessed)
	assert.Equal(t, int64(8000), s.TotalBytes)
	assert.Equal(t, int64(0), s.FilesFailed)
}

func TestErrorLogIsBounded(t *testing.T) {
	c := NewCounters()
	for i := 0; i < MaxErrors+50; i++ {
		c.AddFailure(fmt.Sprintf("file-%d", i), errors.New("boom"))
	}

	assert.Equal(t, MaxErrors, len(c.Errors()))
	assert.Equal(t, int64(MaxErrors+50), c.Snapshot().FilesFailed, "the counter keeps counting past the log cap")
}

func TestCurrentPathRoundTrip(t *testing.T) {
	c := NewCounters()
	c.SetCurrentPath("a/b.txt")
	assert.Equal(t, "a/b.txt", c.CurrentPath())
}

func TestPollTicksSink(t *testing.T) {
	c := NewCounters()
	c.AddFile(42)
	c.SetCurrentPath("now.bin")

	sink := &RecordingSink{}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		Poll(sink, c, time.Millisecond, stop)
	}()

	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.Ticks) > 0
	}, time.Second, time.Millisecond)

	close(stop)
	<-done

	sink.mu.Lock()
	defer sink.mu.Unlock()
	first := sink.Ticks[0]
	assert.Equal(t, int64(1), first.FilesDone)
	assert.Equal(t, int64(42), first.BytesDone)
	assert.Equal(t, "now.bin", first.CurrentPath)
}
