// Package fixture implements a filesystem-backed dependency provider for
// offline analysis and tests. A fixture repository is a directory holding
// either per-package pyproject.toml files or a flat deps.txt index.
package fixture

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"depviz/pkg/provider"
)

// reqRE extracts the package name from a PEP 508 requirement string,
// stopping at the first version or marker character.
var reqRE = regexp.MustCompile(`^([a-zA-Z0-9._-]+)`)

// Repository serves dependencies from a local directory tree.
//
// Lookup order for package "name":
//  1. <root>/<name>/pyproject.toml — [project] dependencies
//  2. the "name:" line of <root>/deps.txt, entries comma-separated
//
// Unknown packages yield an empty list. The deps.txt index is parsed once
// and held in memory; pyproject files are read per lookup.
type Repository struct {
	root  string
	index map[string][]string
}

// Open validates path and loads the deps.txt index if present.
func Open(path string) (*Repository, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("fixture repository: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixture repository %s: not a directory", path)
	}

	r := &Repository{root: path, index: make(map[string][]string)}
	if err := r.loadIndex(filepath.Join(path, "deps.txt")); err != nil {
		return nil, err
	}
	return r, nil
}

// Deps returns the direct dependencies of name, normalized and in recorded
// order. It implements the graph engine's Provider interface.
func (r *Repository) Deps(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = provider.Normalize(name)

	deps, err := r.fromPyproject(name)
	if err != nil {
		return nil, err
	}
	if deps != nil {
		return deps, nil
	}
	return r.index[name], nil
}

// loadIndex parses a deps.txt file of "package: dep1, dep2" lines.
// Blank lines and #-comments are skipped. A missing file is fine.
func (r *Repository) loadIndex(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fixture index: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("fixture index %s:%d: missing ':' separator", path, lineNo)
		}
		var deps []string
		for _, d := range strings.Split(rest, ",") {
			if d = strings.TrimSpace(d); d != "" {
				deps = append(deps, provider.Normalize(d))
			}
		}
		r.index[provider.Normalize(name)] = deps
	}
	return scanner.Err()
}

// pyproject is the subset of pyproject.toml the fixture backend reads.
type pyproject struct {
	Project struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// fromPyproject reads <root>/<name>/pyproject.toml. A missing file returns
// (nil, nil) so lookup falls through to the index.
func (r *Repository) fromPyproject(name string) ([]string, error) {
	path := filepath.Join(r.root, name, "pyproject.toml")
	var pp pyproject
	if _, err := toml.DecodeFile(path, &pp); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}

	deps := make([]string, 0, len(pp.Project.Dependencies))
	for _, req := range pp.Project.Dependencies {
		if m := reqRE.FindStringSubmatch(strings.TrimSpace(req)); len(m) > 1 {
			deps = append(deps, provider.Normalize(m[1]))
		}
	}
	return deps, nil
}
