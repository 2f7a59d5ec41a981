package graph

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// BuildOptions bounds and filters a traversal.
type BuildOptions struct {
	// MaxDepth is the maximum number of edges to follow from the root.
	// Nodes at this depth are recorded as leaves but never expanded.
	// Zero records only the root; negative is rejected with ErrNegativeDepth.
	MaxDepth int

	// Filter drops any candidate dependency whose name contains this
	// substring. The edge and the candidate's subtree (via that edge) are
	// excluded from the graph entirely, not merely hidden. Empty disables
	// filtering.
	Filter string

	// Logger receives non-fatal traversal diagnostics (absorbed provider
	// failures). Nil discards them.
	Logger func(format string, args ...any)
}

// Build performs a bounded, deduplicated breadth-first traversal from root
// and returns the resulting dependency graph.
//
// Each node is expanded at most once, no matter how many paths reach it;
// its recorded edges are shared by all paths. Dependency lists are sorted
// and deduplicated before recording, so the traversal order and the
// resulting graph are deterministic for a deterministic provider.
//
// Provider failures degrade to "no dependencies" for the failing node; the
// node stays in the visited set and traversal continues. Cancellation of
// ctx aborts the run between expansions and returns the context error; no
// partial graph is returned.
func Build(ctx context.Context, root string, opts BuildOptions, p Provider) (*Graph, error) {
	if root == "" {
		return nil, ErrEmptyRoot
	}
	if opts.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeDepth, opts.MaxDepth)
	}
	if p == nil {
		return nil, fmt.Errorf("nil provider")
	}
	logf := opts.Logger
	if logf == nil {
		logf = func(string, ...any) {}
	}

	g := &Graph{
		root:    root,
		adj:     make(map[string][]string),
		visited: map[string]struct{}{root: {}},
	}

	type item struct {
		name  string
		depth int
	}
	queue := []item{{name: root, depth: 0}}
	expanded := make(map[string]bool)

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("traversal aborted: %w", err)
		}

		it := queue[0]
		queue = queue[1:]

		if expanded[it.name] {
			continue
		}
		if it.depth >= opts.MaxDepth {
			// Depth limit: the node stays a visited leaf. The root still
			// gets an (empty) adjacency entry so a depth-0 run yields
			// {root: []} rather than an edgeless phantom.
			if it.name == root {
				g.ensure(root)
			}
			continue
		}
		expanded[it.name] = true

		deps, err := p.Deps(ctx, it.name)
		if err != nil {
			logf("lookup failed for %s, treating as leaf: %v", it.name, err)
			deps = nil
		}

		deps = slices.Clone(deps)
		slices.Sort(deps)
		deps = slices.Compact(deps)

		g.ensure(it.name)
		for _, dep := range deps {
			if dep == "" {
				continue
			}
			if opts.Filter != "" && strings.Contains(dep, opts.Filter) {
				continue
			}
			g.adj[it.name] = append(g.adj[it.name], dep)
			g.visited[dep] = struct{}{}
			queue = append(queue, item{name: dep, depth: it.depth + 1})
		}
	}

	return g, nil
}

// ensure records an (empty) adjacency entry for name.
func (g *Graph) ensure(name string) {
	if _, ok := g.adj[name]; !ok {
		g.adj[name] = []string{}
	}
}
