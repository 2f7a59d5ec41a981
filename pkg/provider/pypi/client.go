// Package pypi implements a dependency provider backed by the PyPI JSON
// API. Responses are cached through pkg/cache and transient failures are
// retried with backoff.
package pypi

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"depviz/pkg/cache"
	"depviz/pkg/httputil"
	"depviz/pkg/provider"
)

var (
	depRE    = regexp.MustCompile(`^([a-zA-Z0-9._-]+)`)
	markerRE = regexp.MustCompile(`;\s*(.+)`)
	skipRE   = regexp.MustCompile(`extra|dev|test`)
)

// PackageInfo holds metadata for a Python package from PyPI.
//
// Names are normalized per PEP 503. Dependencies lists only runtime
// dependencies; requirements guarded by extra, dev, or test markers are
// excluded. A nil Dependencies slice means the package has none.
type PackageInfo struct {
	Name         string
	Version      string
	Summary      string
	HomePage     string
	Dependencies []string
}

// Client queries the PyPI registry API. It is safe for concurrent use.
type Client struct {
	*httputil.Client
	baseURL string
}

// NewClient creates a PyPI client against baseURL (e.g.
// "https://pypi.org/pypi") with the given cache backend and TTL. Pass a
// NullCache backend to disable caching.
func NewClient(baseURL string, backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  httputil.NewClient(backend, "pypi:", cacheTTL, map[string]string{"User-Agent": "depviz/1.0"}),
		baseURL: baseURL,
	}
}

// FetchPackage retrieves metadata for pkg from the registry. The name is
// normalized before lookup. With refresh set, the cache is bypassed.
//
// Returns [httputil.ErrNotFound] for unknown packages and
// [httputil.ErrNetwork] for HTTP failures.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = provider.Normalize(pkg)

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Deps returns the direct runtime dependencies of name. Unknown packages
// yield an empty list rather than an error, matching the provider contract:
// a dependency that vanished from the registry is a leaf, not a failure.
func (c *Client) Deps(ctx context.Context, name string) ([]string, error) {
	info, err := c.FetchPackage(ctx, name, false)
	if errors.Is(err, httputil.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return info.Dependencies, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, httputil.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	*info = PackageInfo{
		Name:         provider.Normalize(data.Info.Name),
		Version:      data.Info.Version,
		Summary:      data.Info.Summary,
		HomePage:     data.Info.HomePage,
		Dependencies: extractDeps(data.Info.RequiresDist),
	}
	return nil
}

// extractDeps pulls normalized package names out of requires_dist entries,
// dropping requirements whose environment marker mentions extra, dev, or
// test. Order of first appearance is preserved; duplicates collapse.
func extractDeps(requires []string) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, req := range requires {
		if m := markerRE.FindStringSubmatch(req); len(m) > 1 && skipRE.MatchString(m[1]) {
			continue
		}
		if m := depRE.FindStringSubmatch(req); len(m) > 1 {
			dep := provider.Normalize(m[1])
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return deps
}

type apiResponse struct {
	Info apiInfo `json:"info"`
}

type apiInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Summary      string   `json:"summary"`
	HomePage     string   `json:"home_page"`
	RequiresDist []string `json:"requires_dist"`
}
