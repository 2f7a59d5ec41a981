package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"depviz/pkg/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "cfg.yaml", `
package_name: flask
max_depth: 5
filter_substring: dev
output: out.dot
cache:
  backend: none
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PackageName != "flask" {
		t.Errorf("PackageName = %q", cfg.PackageName)
	}
	if cfg.MaxDepth != 5 {
		t.Errorf("MaxDepth = %d", cfg.MaxDepth)
	}
	// Unset keys keep their defaults.
	if cfg.RepositoryURL != "https://pypi.org/pypi" {
		t.Errorf("RepositoryURL = %q, want default", cfg.RepositoryURL)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, "cfg.yaml", "max_dept: 5\n")

	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unknown key should be rejected, got %v", err)
	}
}

func TestLoadWrongExtension(t *testing.T) {
	path := writeConfig(t, "cfg.json", "{}")

	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("expected ErrCodeInvalidPath, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected ErrCodeFileNotFound, got %v", err)
	}
}

func TestValidateDepthRange(t *testing.T) {
	for _, depth := range []int{-1, 11, 100} {
		cfg := Default()
		cfg.MaxDepth = depth
		if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidDepth) {
			t.Errorf("max_depth %d: expected ErrCodeInvalidDepth, got %v", depth, err)
		}
	}
	for _, depth := range []int{0, 10} {
		cfg := Default()
		cfg.MaxDepth = depth
		if err := cfg.Validate(); err != nil {
			t.Errorf("max_depth %d should be valid: %v", depth, err)
		}
	}
}

func TestValidateRepositoryURL(t *testing.T) {
	cfg := Default()
	cfg.RepositoryURL = "ftp://mirror"
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected ErrCodeInvalidConfig, got %v", err)
	}

	cfg.RepositoryURL = ""
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("empty URL outside test_mode should fail, got %v", err)
	}
}

func TestValidateTestMode(t *testing.T) {
	cfg := Default()
	cfg.TestMode = true
	cfg.TestRepositoryPath = ""
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("test_mode without path should fail, got %v", err)
	}

	cfg.TestRepositoryPath = filepath.Join(t.TempDir(), "missing")
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("nonexistent fixture path should fail, got %v", err)
	}

	cfg.TestRepositoryPath = t.TempDir()
	cfg.RepositoryURL = "" // irrelevant in test mode
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid test_mode config rejected: %v", err)
	}
}

func TestValidateCache(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "memcached"
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unknown backend should fail, got %v", err)
	}

	cfg.Cache = CacheConfig{Backend: "redis"}
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("redis without addr should fail, got %v", err)
	}

	cfg.Cache = CacheConfig{Backend: "file", TTL: "soon"}
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad ttl should fail, got %v", err)
	}
}

func TestParseTTL(t *testing.T) {
	c := CacheConfig{}
	if d, err := c.ParseTTL(); err != nil || d != 24*time.Hour {
		t.Errorf("empty ttl: got %v, %v", d, err)
	}

	c.TTL = "90m"
	if d, err := c.ParseTTL(); err != nil || d != 90*time.Minute {
		t.Errorf("90m ttl: got %v, %v", d, err)
	}

	c.TTL = "-1h"
	if _, err := c.ParseTTL(); err == nil {
		t.Error("negative ttl should fail")
	}
}

func TestExampleLoads(t *testing.T) {
	path := writeConfig(t, "example.yaml", Example())
	if _, err := Load(path); err != nil {
		t.Errorf("example config must load cleanly: %v", err)
	}
}
