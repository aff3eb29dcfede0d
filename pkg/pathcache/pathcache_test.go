package pathcache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstWriterWins(t *testing.T) {
	c := New()
	calls := 0
	var mu sync.Mutex

	compute := func(p string) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "resolved:" + p, nil
	}

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := c.Canonicalize("/same/path", compute)
			results[i] = v
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "resolved:/same/path", r)
	}
	assert.Equal(t, 1, c.Len())
}

func TestResolveCleansRelativePaths(t *testing.T) {
	v, err := Resolve("./a/../b")
	assert.NoError(t, err)
	assert.Contains(t, v, "/b")
}
