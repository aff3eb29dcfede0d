// Package config loads hashtree's on-disk configuration: a
// lazily-created INI file under a dotdir, with typed section accessors
// instead of ad-hoc flag plumbing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
)

// HashConfig holds the default algorithm used when none is given on the
// command line.
type HashConfig struct {
	Default string
}

// OutputConfig holds the default output rendering.
type OutputConfig struct {
	Format string // "human" or "json"
}

// VerboseConfig holds default logging verbosity.
type VerboseConfig struct {
	Level int
	Debug string
}

// PerformanceConfig holds worker-pool and buffer sizing.
type PerformanceConfig struct {
	HashWorkers int    // 0 means "use runtime.NumCPU()"
	HDD         bool   // force sequential (single worker) scheduling
	HashBuffer  string // e.g. "64K"; read and returned as text, not applied to hashing (digest.ChunkSize is fixed)
}

// IgnoreConfig holds the ignore-file name hashtree looks for.
type IgnoreConfig struct {
	FileName string // default ".hashignore"
}

// Config wraps the loaded INI file and its typed accessors.
type Config struct {
	path string
	ini  *ini.File
}

// Load reads dir/config, creating it with defaults if it doesn't
// exist.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "config")

	cfg := &Config{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("config: set defaults: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("config: create dir %s: %w", dir, err)
		}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("config: save defaults: %w", err)
		}
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg.ini = iniFile
	return cfg, nil
}

// Default returns an in-memory config with no backing file, for callers
// (tests, one-shot CLI invocations) that don't want a dotdir on disk.
func Default() *Config {
	cfg := &Config{ini: ini.Empty()}
	_ = cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() error {
	type kv struct{ section, key, value string }
	defaults := []kv{
		{"hash", "default", "sha256"},
		{"output", "format", "human"},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
		{"performance", "hash_workers", "0"},
		{"performance", "hdd", "false"},
		{"performance", "hash_buffer", "64K"},
		{"ignore", "filename", ".hashignore"},
	}
	for _, d := range defaults {
		sec, err := c.ini.NewSection(d.section)
		if err != nil && sec == nil {
			return fmt.Errorf("create section %s: %w", d.section, err)
		}
		sec = c.ini.Section(d.section)
		if _, err := sec.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("set %s.%s: %w", d.section, d.key, err)
		}
	}
	return nil
}

// Save persists the config to its backing path.
func (c *Config) Save() error {
	if c.path == "" {
		return nil
	}
	return c.ini.SaveTo(c.path)
}

func (c *Config) stringKey(section, key, fallback string) string {
	if !c.ini.HasSection(section) {
		return fallback
	}
	sec := c.ini.Section(section)
	if !sec.HasKey(key) {
		return fallback
	}
	return sec.Key(key).String()
}

// Hash returns the hash section.
func (c *Config) Hash() HashConfig {
	return HashConfig{Default: c.stringKey("hash", "default", "sha256")}
}

// Output returns the output section.
func (c *Config) Output() OutputConfig {
	return OutputConfig{Format: c.stringKey("output", "format", "human")}
}

// Verbose returns the verbose section.
func (c *Config) Verbose() VerboseConfig {
	level := 0
	if v := c.stringKey("verbose", "level", "0"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			level = n
		}
	}
	return VerboseConfig{Level: level, Debug: c.stringKey("verbose", "debug", "")}
}

// Performance returns the performance section.
func (c *Config) Performance() PerformanceConfig {
	workers := 0
	if v := c.stringKey("performance", "hash_workers", "0"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			workers = n
		}
	}
	hdd := strings.EqualFold(c.stringKey("performance", "hdd", "false"), "true")
	return PerformanceConfig{
		HashWorkers: workers,
		HDD:         hdd,
		HashBuffer:  c.stringKey("performance", "hash_buffer", "64K"),
	}
}

// Ignore returns the ignore section.
func (c *Config) Ignore() IgnoreConfig {
	return IgnoreConfig{FileName: c.stringKey("ignore", "filename", ".hashignore")}
}

// ParseHumanSize parses sizes like "64K", "100M", "1.5G" into bytes.
func ParseHumanSize(sizeStr string) (int64, error) {
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}
	s := strings.ToUpper(strings.TrimSpace(sizeStr))

	var numPart, suffix string
	for i, ch := range s {
		if (ch >= '0' && ch <= '9') || ch == '.' {
			numPart += string(ch)
		} else {
			suffix = s[i:]
			break
		}
	}
	if numPart == "" {
		return 0, fmt.Errorf("no numeric part in size string: %s", s)
	}
	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric part in size string %s: %w", s, err)
	}

	var multiplier int64 = 1
	switch suffix {
	case "", "B":
		multiplier = 1
	case "K", "KB", "KIB":
		multiplier = 1024
	case "M", "MB", "MIB":
		multiplier = 1024 * 1024
	case "G", "GB", "GIB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix: %s", suffix)
	}

	result := int64(num * float64(multiplier))
	if result <= 0 {
		return 0, fmt.Errorf("size must be positive: %s", s)
	}
	return result, nil
}
