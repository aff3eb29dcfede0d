package registry

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUnknownAlgorithm(t *testing.T) {
	_, err := Get("not-a-real-algorithm")
	require.Error(t, err)
}

func TestCaseInsensitiveLookup(t *testing.T) {
	d1, err := Get("SHA256")
	require.NoError(t, err)
	d2, err := Get("sha256")
	require.NoError(t, err)

	d1.Update([]byte("hello world"))
	d2.Update([]byte("hello world"))
	assert.Equal(t, d1.Finalize(), d2.Finalize())
}

func TestHexLengthMatchesOutputBits(t *testing.T) {
	for _, d := range List() {
		dg, err := Get(d.Name)
		require.NoError(t, err)
		dg.Update([]byte("x"))
		sum := dg.Finalize()
		assert.Equal(t, d.OutputBits/8, len(sum), "algorithm %s", d.Name)
		assert.Equal(t, d.HexLen(), len(hex.EncodeToString(sum)), "algorithm %s", d.Name)
	}
}

func TestSHA3IsPostQuantum(t *testing.T) {
	for _, d := range List() {
		wantPQ := strings.HasPrefix(d.Name, "sha3-")
		assert.Equal(t, wantPQ, d.PostQuantum, "algorithm %s", d.Name)
	}
}

func TestFinalizeIsSingleUse(t *testing.T) {
	d, err := Get("md5")
	require.NoError(t, err)
	d.Update([]byte("a"))
	d.Finalize()
	assert.Panics(t, func() { d.Finalize() })
	assert.Panics(t, func() { d.Update([]byte("b")) })
}

func TestKnownVectors(t *testing.T) {
	cases := []struct {
		algo string
		in   string
		want string
	}{
		{"sha256", "hello world", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
		{"md5", "", "d41d8cd98f00b204e9800998ecf8427e"},
		{"sha256", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, c := range cases {
		d, err := Get(c.algo)
		require.NoError(t, err)
		d.Update([]byte(c.in))
		got := hex.EncodeToString(d.Finalize())
		assert.Equal(t, c.want, got, "algorithm %s input %q", c.algo, c.in)
	}
}

func TestByOutputBits(t *testing.T) {
	descs := ByOutputBits(32) // md5's hex length
	found := false
	for _, d := range descs {
		if d.Name == "md5" {
			found = true
		}
	}
	assert.True(t, found)
}
