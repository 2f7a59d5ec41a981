// Package config loads and validates the analyzer's YAML configuration.
//
// The file is decoded strictly: unknown keys are rejected so typos surface
// as load errors instead of silently falling back to defaults. Every field
// is optional; missing keys keep their default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"depviz/pkg/errors"
)

// MaxDepthLimit caps the traversal depth a configuration may request.
const MaxDepthLimit = 10

// CacheConfig selects and tunes the response cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", "mongo", or "none".
	Backend string `yaml:"backend"`

	// Dir is the cache directory for the file backend. Empty uses
	// a "depviz" directory under the OS user cache dir.
	Dir string `yaml:"dir"`

	// Addr is the redis server address (host:port).
	Addr string `yaml:"addr"`

	// URI is the mongodb connection string.
	URI string `yaml:"uri"`

	// TTL is how long responses stay cached, as a Go duration string.
	TTL string `yaml:"ttl"`
}

// Config holds all analyzer settings.
type Config struct {
	// PackageName is the root package to analyze.
	PackageName string `yaml:"package_name"`

	// RepositoryURL is the registry API base, e.g. "https://pypi.org/pypi".
	RepositoryURL string `yaml:"repository_url"`

	// TestRepositoryPath points at a local fixture repository.
	TestRepositoryPath string `yaml:"test_repository_path"`

	// TestMode switches dependency lookup from the registry to the
	// fixture repository.
	TestMode bool `yaml:"test_mode"`

	// MaxDepth bounds the traversal. Zero analyzes only the root.
	MaxDepth int `yaml:"max_depth"`

	// FilterSubstring drops dependencies whose name contains it.
	FilterSubstring string `yaml:"filter_substring"`

	// Output is the path the DOT export is written to.
	Output string `yaml:"output"`

	Cache CacheConfig `yaml:"cache"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		PackageName:        "requests",
		RepositoryURL:      "https://pypi.org/pypi",
		TestRepositoryPath: "./test_repo",
		TestMode:           false,
		MaxDepth:           3,
		FilterSubstring:    "",
		Output:             "graph.dot",
		Cache: CacheConfig{
			Backend: "file",
			TTL:     "24h",
		},
	}
}

// Load reads path, decodes it strictly over the defaults, and validates
// the result. Only .yaml and .yml files are accepted.
func Load(path string) (*Config, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".yaml" && ext != ".yml" {
		return nil, errors.New(errors.ErrCodeInvalidPath,
			"config file %s: expected a .yaml or .yml extension", path)
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "config file %s", path)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and the cross-field mode requirements.
func (c *Config) Validate() error {
	if err := errors.ValidatePackageName(c.PackageName); err != nil {
		return err
	}

	if c.MaxDepth < 0 || c.MaxDepth > MaxDepthLimit {
		return errors.New(errors.ErrCodeInvalidDepth,
			"max_depth must be between 0 and %d, got %d", MaxDepthLimit, c.MaxDepth)
	}

	if c.TestMode {
		if c.TestRepositoryPath == "" {
			return errors.New(errors.ErrCodeInvalidConfig,
				"test_mode requires test_repository_path")
		}
		if _, err := os.Stat(c.TestRepositoryPath); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err,
				"test_repository_path %s", c.TestRepositoryPath)
		}
	} else {
		if c.RepositoryURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig,
				"repository_url is required outside test_mode")
		}
		if !strings.HasPrefix(c.RepositoryURL, "http://") && !strings.HasPrefix(c.RepositoryURL, "https://") {
			return errors.New(errors.ErrCodeInvalidConfig,
				"repository_url must start with http:// or https://, got %s", c.RepositoryURL)
		}
	}

	if c.Output == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output must not be empty")
	}

	return c.Cache.validate()
}

func (c *CacheConfig) validate() error {
	switch c.Backend {
	case "file", "redis", "mongo", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"cache.backend must be file, redis, mongo, or none, got %q", c.Backend)
	}

	if c.Backend == "redis" && c.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend redis requires cache.addr")
	}
	if c.Backend == "mongo" && c.URI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend mongo requires cache.uri")
	}

	if _, err := c.ParseTTL(); err != nil {
		return err
	}
	return nil
}

// ParseTTL returns the cache TTL as a duration. Empty means the default 24h.
func (c *CacheConfig) ParseTTL() (time.Duration, error) {
	if c.TTL == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.ttl %q", c.TTL)
	}
	if d <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must be positive, got %s", c.TTL)
	}
	return d, nil
}

// CacheDir resolves the file cache directory, defaulting to
// <user cache dir>/depviz.
func (c *CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(base, "depviz"), nil
}

// Example returns a commented starter configuration, written by
// "depviz config init".
func Example() string {
	return `# depviz configuration
package_name: requests
repository_url: https://pypi.org/pypi
max_depth: 3
filter_substring: ""
output: graph.dot

# Offline analysis against a local fixture repository:
# test_mode: true
# test_repository_path: ./test_repo

cache:
  backend: file
  ttl: 24h
`
}
