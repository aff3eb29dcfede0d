// Package registry enumerates the supported digest algorithms,
// constructs one-shot incremental digest objects for them, and exposes
// their metadata. The set is closed and insertion-ordered; there is no
// plugin hook.
package registry

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// Descriptor is the immutable metadata for one registered algorithm.
type Descriptor struct {
	Name          string
	Family        string // md5, sha1, sha2, sha3, blake2, blake3, xxhash
	OutputBits    int
	Cryptographic bool
	PostQuantum   bool // true for the SHA-3 family
}

// HexLen is the lowercase hex digest length this algorithm produces.
func (d Descriptor) HexLen() int { return d.OutputBits / 4 }

// Digest is a single-use incremental digest object. Update feeds bytes
// through the algorithm; Finalize consumes the object and returns the
// raw digest bytes. Calling Update or Finalize again after Finalize has
// been called is a programming error and panics; a finalized digest is
// never silently reusable.
type Digest interface {
	Update(p []byte)
	Finalize() []byte
}

type newFunc func() Digest

type entry struct {
	desc Descriptor
	new  newFunc
}

// Registry is the closed, immutable-after-construction set of algorithms.
type Registry struct {
	order  []string
	byName map[string]entry
}

var global = New()

// Get constructs a fresh Digest for the named algorithm from the global
// registry. Name matching is case-insensitive.
func Get(name string) (Digest, error) { return global.Get(name) }

// List returns every registered descriptor in registration order.
func List() []Descriptor { return global.List() }

// ByOutputBits returns descriptors whose hex digest length matches
// hexLen, used by database loaders that must infer the algorithm from
// digest length when the on-disk format omits the algorithm name.
func ByOutputBits(hexLen int) []Descriptor { return global.ByOutputBits(hexLen) }

// Describe returns the descriptor for name, if registered.
func Describe(name string) (Descriptor, bool) { return global.Describe(name) }

// New builds the registry. It exists mainly so tests can construct an
// isolated instance; production code uses the package-level helpers
// above, which share one global.Registry.
func New() *Registry {
	r := &Registry{byName: make(map[string]entry)}

	hashDigest := func(n func() hash.Hash) newFunc {
		return func() Digest { return &hashDigestAdapter{h: n()} }
	}

	r.register(Descriptor{Name: "md5", Family: "md5", OutputBits: 128, Cryptographic: true}, hashDigest(md5.New))
	r.register(Descriptor{Name: "sha1", Family: "sha1", OutputBits: 160, Cryptographic: true}, hashDigest(sha1.New))
	r.register(Descriptor{Name: "sha224", Family: "sha2", OutputBits: 224, Cryptographic: true}, hashDigest(sha256.New224))
	r.register(Descriptor{Name: "sha256", Family: "sha2", OutputBits: 256, Cryptographic: true}, hashDigest(sha256.New))
	r.register(Descriptor{Name: "sha384", Family: "sha2", OutputBits: 384, Cryptographic: true}, hashDigest(sha512.New384))
	r.register(Descriptor{Name: "sha512", Family: "sha2", OutputBits: 512, Cryptographic: true}, hashDigest(sha512.New))
	r.register(Descriptor{Name: "sha3-224", Family: "sha3", OutputBits: 224, Cryptographic: true, PostQuantum: true}, hashDigest(sha3.New224))
	r.register(Descriptor{Name: "sha3-256", Family: "sha3", OutputBits: 256, Cryptographic: true, PostQuantum: true}, hashDigest(sha3.New256))
	r.register(Descriptor{Name: "sha3-384", Family: "sha3", OutputBits: 384, Cryptographic: true, PostQuantum: true}, hashDigest(sha3.New384))
	r.register(Descriptor{Name: "sha3-512", Family: "sha3", OutputBits: 512, Cryptographic: true, PostQuantum: true}, hashDigest(sha3.New512))
	r.register(Descriptor{Name: "blake2b", Family: "blake2", OutputBits: 512, Cryptographic: true}, hashDigest(mustBlake2b))
	r.register(Descriptor{Name: "blake2s", Family: "blake2", OutputBits: 256, Cryptographic: true}, hashDigest(mustBlake2s))
	r.register(Descriptor{Name: "blake3", Family: "blake3", OutputBits: 256, Cryptographic: true}, hashDigest(func() hash.Hash { return blake3.New() }))
	r.register(Descriptor{Name: "xxh3", Family: "xxhash", OutputBits: 64, Cryptographic: false}, func() Digest { return &xxh3Digest{h: xxh3.New(), wide: false} })
	r.register(Descriptor{Name: "xxh128", Family: "xxhash", OutputBits: 128, Cryptographic: false}, func() Digest { return &xxh3Digest{h: xxh3.New(), wide: true} })

	return r
}

func mustBlake2b() hash.Hash {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(fmt.Errorf("registry: blake2b.New512: %w", err))
	}
	return h
}

func mustBlake2s() hash.Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(fmt.Errorf("registry: blake2s.New256: %w", err))
	}
	return h
}

func (r *Registry) register(d Descriptor, nf newFunc) {
	if _, exists := r.byName[d.Name]; exists {
		panic(fmt.Sprintf("registry: duplicate algorithm %q", d.Name))
	}
	r.order = append(r.order, d.Name)
	r.byName[d.Name] = entry{desc: d, new: nf}
}

// Get constructs a fresh Digest object for name.
func (r *Registry) Get(name string) (Digest, error) {
	e, ok := r.byName[canonical(name)]
	if !ok {
		return nil, fmt.Errorf("registry: unknown algorithm %q", name)
	}
	return e.new(), nil
}

// List returns descriptors in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.byName[n].desc)
	}
	return out
}

// Describe returns the descriptor for name.
func (r *Registry) Describe(name string) (Descriptor, bool) {
	e, ok := r.byName[canonical(name)]
	return e.desc, ok
}

// ByOutputBits returns every descriptor whose hex digest length equals
// hexLen, in registration order.
func (r *Registry) ByOutputBits(hexLen int) []Descriptor {
	var out []Descriptor
	for _, n := range r.order {
		d := r.byName[n].desc
		if d.HexLen() == hexLen {
			out = append(out, d)
		}
	}
	return out
}

func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// hashDigestAdapter wraps the crypto/hash.Hash incremental-hash interface
// (satisfied by crypto/md5, crypto/sha1, crypto/sha256, crypto/sha512,
// golang.org/x/crypto/sha3, blake2b, blake2s, and zeebo/blake3) as a
// single-use Digest.
type hashDigestAdapter struct {
	h         hash.Hash
	finalized bool
}

func (a *hashDigestAdapter) Update(p []byte) {
	if a.finalized {
		panic("registry: Update called on a finalized digest")
	}
	a.h.Write(p)
}

func (a *hashDigestAdapter) Finalize() []byte {
	if a.finalized {
		panic("registry: Finalize called twice on the same digest")
	}
	a.finalized = true
	return a.h.Sum(nil)
}

// xxh3Digest wraps zeebo/xxh3's streaming Hasher, emitting either the
// 64-bit xxh3 digest or the 128-bit xxh128 digest depending on wide.
type xxh3Digest struct {
	h         *xxh3.Hasher
	wide      bool
	finalized bool
}

func (d *xxh3Digest) Update(p []byte) {
	if d.finalized {
		panic("registry: Update called on a finalized digest")
	}
	d.h.Write(p)
}

func (d *xxh3Digest) Finalize() []byte {
	if d.finalized {
		panic("registry: Finalize called twice on the same digest")
	}
	d.finalized = true
	if d.wide {
		sum := d.h.Sum128().Bytes()
		return sum[:]
	}
	sum := d.h.Sum64()
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(sum >> (8 * (7 - i)))
	}
	return out
}
