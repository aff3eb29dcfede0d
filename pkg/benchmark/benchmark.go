// Package benchmark times every registered digest algorithm over a
// synthetic in-memory buffer and reports decimal megabytes per second.
// No file I/O is involved.
package benchmark

import (
	"math/rand"
	"time"

	"github.com/hashtree/hashtree/pkg/herrors"
	"github.com/hashtree/hashtree/pkg/registry"
)

// defaultBufferSize is the synthetic buffer size used when
// Options.BufferSize is zero.
const defaultBufferSize = 100 * 1024 * 1024

// Result is one algorithm's timing. Run returns results in the order of
// Options.Algorithms, or in registration order when that list is empty.
type Result struct {
	Algorithm   string
	OutputBits  int
	BufferSize  int64
	Duration    time.Duration
	MBPerSecond float64
}

// Options configures one benchmark run.
type Options struct {
	BufferSize int64    // bytes; 0 means defaultBufferSize
	Algorithms []string // empty means every registered algorithm
	Seed       int64    // 0 means a fixed, reproducible seed
}

// Run allocates one pseudo-random buffer and feeds it through every
// requested algorithm in turn, each with a single Update+Finalize call.
func Run(opts Options) ([]Result, error) {
	size := opts.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}

	buf := make([]byte, size)
	rand.New(rand.NewSource(opts.Seed)).Read(buf)

	names := opts.Algorithms
	if len(names) == 0 {
		for _, d := range registry.List() {
			names = append(names, d.Name)
		}
	}

	results := make([]Result, 0, len(names))
	for _, name := range names {
		desc, ok := registry.Describe(name)
		if !ok {
			return nil, herrors.New("benchmark", name, herrors.UnknownAlgorithm)
		}

		digest, err := registry.Get(name)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		digest.Update(buf)
		digest.Finalize()
		elapsed := time.Since(start)

		results = append(results, Result{
			Algorithm:   desc.Name,
			OutputBits:  desc.OutputBits,
			BufferSize:  size,
			Duration:    elapsed,
			MBPerSecond: megabytesPerSecond(size, elapsed),
		})
	}

	return results, nil
}

// megabytesPerSecond reports size/duration in decimal (10^6 byte)
// megabytes per second.
func megabytesPerSecond(size int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	mb := float64(size) / 1_000_000
	seconds := elapsed.Seconds()
	return mb / seconds
}
