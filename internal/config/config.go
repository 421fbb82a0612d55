// Package config provides configuration types and defaults for tdc.
package config

import (
	"fmt"
	"time"

	"github.com/transport-data/tools/internal/paths"
)

// RegistryConfig holds settings for the shared, git-backed registry.
type RegistryConfig struct {
	// RemoteURL is the git remote the registry working copy is cloned
	// from and updated against.
	RemoteURL string `mapstructure:"remote_url"`

	// Maintainers lists the maintainer ids whose artefacts are routed to
	// the registry; every other maintainer routes to the local store.
	Maintainers []string `mapstructure:"maintainers"`
}

// CacheConfig holds settings for the in-process decode cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// Config holds all configuration options for tdc.
type Config struct {
	// DataDir is the root under which the local store and the registry
	// working copy live. Empty means platform default; see paths.
	DataDir string `mapstructure:"data_dir"`

	Registry RegistryConfig `mapstructure:"registry"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DataDir: "", // resolved via paths.ResolveDataDir at startup
		Registry: RegistryConfig{
			RemoteURL:   "https://github.com/transport-data/registry.git",
			Maintainers: []string{"TDCI"},
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
	}
}

// Validate checks the configuration for values the store cannot work
// with. It does not touch the file system.
func (c Config) Validate() error {
	if len(c.Registry.Maintainers) == 0 {
		return fmt.Errorf("registry.maintainers must list at least one maintainer id")
	}
	for _, m := range c.Registry.Maintainers {
		if m == "" {
			return fmt.Errorf("registry.maintainers contains an empty maintainer id")
		}
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when the cache is enabled")
	}
	return nil
}

// ResolvedDataDir returns the effective data directory for this config.
func (c Config) ResolvedDataDir() string {
	return paths.ResolveDataDir(c.DataDir)
}
