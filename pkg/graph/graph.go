// Package graph implements the dependency graph engine: bounded traversal
// from a root package, cycle detection, deterministic topological ordering,
// and the structural invariants shared by all three.
//
// A [Graph] is rebuilt from scratch by every [Build] call and is owned by a
// single analysis run. Package names are opaque keys; equality is the only
// relational operator. Name normalization is the dependency provider's
// concern, not the engine's.
//
// Graph is not safe for concurrent mutation. The read-only methods are safe
// for concurrent use once Build has returned.
package graph

import (
	"context"
	"errors"
	"slices"
)

var (
	// ErrEmptyRoot is returned by [Build] when the root package name is empty.
	ErrEmptyRoot = errors.New("root package name must not be empty")

	// ErrNegativeDepth is returned by [Build] for a negative depth limit.
	// A negative limit is a programming error, never silently coerced.
	ErrNegativeDepth = errors.New("max depth must not be negative")
)

// Provider supplies the direct dependencies of a package.
//
// Implementations may be network-backed or fixture-backed. An unknown
// package must yield an empty list, not an error; errors are reserved for
// lookup failures (network, parse) and are absorbed by [Build] as "no
// dependencies" for that node.
type Provider interface {
	Deps(ctx context.Context, name string) ([]string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, name string) ([]string, error)

// Deps calls f.
func (f ProviderFunc) Deps(ctx context.Context, name string) ([]string, error) {
	return f(ctx, name)
}

// Graph is the result of one bounded traversal: an adjacency map over the
// expanded nodes plus the full set of visited names.
//
// Invariants maintained by [Build]:
//   - every adjacency key was visited
//   - every edge target was visited
//   - a node has an adjacency entry iff it was expanded (its provider
//     lookup ran); nodes cut off by the depth limit appear only in the
//     visited set, except the root, which always has an entry
type Graph struct {
	root    string
	adj     map[string][]string
	visited map[string]struct{}
}

// Root returns the package name the traversal started from.
func (g *Graph) Root() string { return g.root }

// Nodes returns all visited package names in lexicographic order.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.visited))
	for n := range g.visited {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

// Deps returns the recorded direct dependencies of name in lexicographic
// order, or nil if the node was never expanded. The returned slice is a
// read-only view.
func (g *Graph) Deps(name string) []string { return g.adj[name] }

// Expanded reports whether name was expanded (has an adjacency entry,
// possibly empty).
func (g *Graph) Expanded(name string) bool {
	_, ok := g.adj[name]
	return ok
}

// HasNode reports whether name was visited during traversal.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.visited[name]
	return ok
}

// NodeCount returns the number of visited nodes.
func (g *Graph) NodeCount() int { return len(g.visited) }

// EdgeCount returns the total number of recorded dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.adj {
		n += len(deps)
	}
	return n
}

// Edge is a directed dependency: From requires To.
type Edge struct {
	From string
	To   string
}

// Edges returns all edges sorted by (From, To).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.EdgeCount())
	for _, from := range g.Nodes() {
		for _, to := range g.adj[from] {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}
