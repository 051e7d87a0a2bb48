// Package config loads BlackCat settings from an optional YAML file
// (~/.blackcat.yaml by default) with environment-variable overrides.
// Every setting has a working default; no configuration is required.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the recognized configuration surface.
type Config struct {
	// CacheExpirationMinutes is the default TTL for new cache entries.
	CacheExpirationMinutes int `yaml:"cache_expiration_minutes"`

	// MaxCacheSizeBytes is the cache eviction ceiling.
	MaxCacheSizeBytes int64 `yaml:"max_cache_size_bytes"`

	// CompressionEnabled sets the default compress flag for cache writes.
	CompressionEnabled bool `yaml:"compression_enabled"`

	// ThrottleLimit bounds concurrent workers in enumeration fan-outs.
	ThrottleLimit int `yaml:"throttle_limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CacheExpirationMinutes: 60,
		MaxCacheSizeBytes:      50 * 1024 * 1024,
		CompressionEnabled:     true,
		ThrottleLimit:          100,
	}
}

// DefaultPath returns ~/.blackcat.yaml, or empty when the home directory
// cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".blackcat.yaml")
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No config file is fine.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.CacheExpirationMinutes <= 0 {
		cfg.CacheExpirationMinutes = Default().CacheExpirationMinutes
	}
	if cfg.MaxCacheSizeBytes <= 0 {
		cfg.MaxCacheSizeBytes = Default().MaxCacheSizeBytes
	}
	if cfg.ThrottleLimit <= 0 {
		cfg.ThrottleLimit = Default().ThrottleLimit
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := envInt("BLACKCAT_CACHE_EXPIRATION_MINUTES"); ok {
		c.CacheExpirationMinutes = v
	}
	if v, ok := envInt64("BLACKCAT_MAX_CACHE_SIZE_BYTES"); ok {
		c.MaxCacheSizeBytes = v
	}
	if v := os.Getenv("BLACKCAT_COMPRESSION_ENABLED"); v != "" {
		c.CompressionEnabled = v == "true" || v == "1"
	}
	if v, ok := envInt("BLACKCAT_THROTTLE_LIMIT"); ok {
		c.ThrottleLimit = v
	}
}

// CacheTTL returns the default cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheExpirationMinutes) * time.Minute
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envInt64(name string) (int64, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
