// Package config loads depshift tool configuration from a TOML file.
//
// Configuration is optional: every field has a working default, and a missing
// config file is not an error. The file is looked up as depshift.toml in the
// working directory unless an explicit path is given.
//
// # Example
//
//	[registry]
//	url = "https://repo.packagist.org"
//
//	[cache]
//	backend = "file"   # file | redis | none
//	ttl = "24h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[composer]
//	binary = "composer"
//	vendor-dir = "vendor"
//
//	[[rules]]
//	match = "acme/legacy-"
//	replace = "acme/modern-"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depshift/pkg/errors"
)

// Default values applied when the config file omits a field.
const (
	DefaultRegistryURL = "https://repo.packagist.org"
	DefaultCacheTTL    = 24 * time.Hour
	DefaultBinary      = "composer"
	DefaultVendorDir   = "vendor"

	// FileName is the config file looked up in the working directory.
	FileName = "depshift.toml"
)

// Cache backends selectable via [Cache].Backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the root tool configuration.
type Config struct {
	Registry Registry `toml:"registry"`
	Cache    CacheCfg `toml:"cache"`
	Composer Composer `toml:"composer"`
	Rules    []Rule   `toml:"rules"`
}

// Registry configures the package metadata source.
type Registry struct {
	URL string `toml:"url"`
}

// CacheCfg configures the metadata cache backend.
type CacheCfg struct {
	Backend string   `toml:"backend"`
	TTL     Duration `toml:"ttl"`
	Dir     string   `toml:"dir"`
	Redis   Redis    `toml:"redis"`
}

// Redis holds connection settings for the redis cache backend.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Composer configures how the host package manager is located and invoked.
type Composer struct {
	Binary    string `toml:"binary"`
	VendorDir string `toml:"vendor-dir"`
}

// Rule is an additional namespace replacement rule merged with the built-ins.
type Rule struct {
	Match   string `toml:"match"`
	Replace string `toml:"replace"`
	Exact   bool   `toml:"exact"`
}

// Duration wraps time.Duration for TOML string parsing ("24h", "30m").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Registry: Registry{URL: DefaultRegistryURL},
		Cache: CacheCfg{
			Backend: BackendFile,
			TTL:     Duration(DefaultCacheTTL),
			Redis:   Redis{Addr: "localhost:6379"},
		},
		Composer: Composer{
			Binary:    DefaultBinary,
			VendorDir: DefaultVendorDir,
		},
	}
}

// Load reads configuration from path. An empty path means depshift.toml in
// dir; a missing file yields the defaults. Decode and validation failures
// return an INVALID_CONFIG error.
func Load(dir, path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = filepath.Join(dir, FileName)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Registry.URL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "registry url must not be empty")
	}
	for _, r := range c.Rules {
		if r.Match == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "rule with empty match pattern")
		}
	}
	return nil
}
