package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".hashtree")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sha256", cfg.Hash().Default)
	assert.Equal(t, "human", cfg.Output().Format)
	assert.Equal(t, 0, cfg.Performance().HashWorkers)
	assert.False(t, cfg.Performance().HDD)
	assert.Equal(t, ".hashignore", cfg.Ignore().FileName)

	_, err = os.Stat(filepath.Join(dir, "config"))
	assert.NoError(t, err, "defaults are persisted on first load")
}

func TestLoadReadsExistingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".hashtree")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "[hash]\ndefault = blake3\n\n[performance]\nhdd = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "blake3", cfg.Hash().Default)
	assert.True(t, cfg.Performance().HDD)
	assert.Equal(t, "human", cfg.Output().Format, "missing sections fall back to defaults")
}

func TestParseHumanSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"512", 512},
		{"64K", 64 * 1024},
		{"100M", 100 * 1024 * 1024},
		{"1G", 1024 * 1024 * 1024},
		{"1.5K", 1536},
	}
	for _, c := range cases {
		got, err := ParseHumanSize(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseHumanSizeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "K", "10Q", "-5M"} {
		_, err := ParseHumanSize(in)
		assert.Error(t, err, in)
	}
}
