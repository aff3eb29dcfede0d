// Package pathcache resolves and normalizes filesystem paths through a
// process-wide cache keyed by the input path, so the verify pipeline's
// database keys and filesystem walk keys compare as stored.
package pathcache

import (
	"path/filepath"
	"sync"
)

// Cache is a concurrent, first-writer-wins canonicalization cache. A
// second lookup for the same input always returns the value the first
// writer computed, even if a concurrent computation would differ.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Canonicalize returns the canonical form of path, computing it with
// compute on first use and reusing the cached value afterward.
func (c *Cache) Canonicalize(path string, compute func(string) (string, error)) (string, error) {
	c.mu.Lock()
	if v, ok := c.entries[path]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := compute(path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[path]; ok {
		return existing, nil
	}
	c.entries[path] = v
	return v, nil
}

// Len returns the number of cached entries, used by tests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var global = New()

// Canonicalize canonicalizes path using the process-wide cache.
func Canonicalize(path string, compute func(string) (string, error)) (string, error) {
	return global.Canonicalize(path, compute)
}

// Resolve is the default canonicalization function: it cleans and
// absolutizes path without following symlinks, consistent with the
// walk's do-not-follow policy.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// ResolveCached resolves path through the process-wide cache using Resolve.
func ResolveCached(path string) (string, error) {
	return Canonicalize(path, Resolve)
}
