package graph

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// mapProvider serves dependencies from a fixed table. Unknown names yield
// an empty list, matching the provider contract.
type mapProvider map[string][]string

func (m mapProvider) Deps(_ context.Context, name string) ([]string, error) {
	return m[name], nil
}

// standard tree: a -> b,c; b -> d; c -> e,f
var treeDeps = mapProvider{
	"a": {"b", "c"},
	"b": {"d"},
	"c": {"e", "f"},
}

func TestBuildTree(t *testing.T) {
	g, err := Build(context.Background(), "a", BuildOptions{MaxDepth: 3}, treeDeps)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if g.NodeCount() != 6 {
		t.Errorf("NodeCount() = %d, want 6", g.NodeCount())
	}
	if g.EdgeCount() != 5 {
		t.Errorf("EdgeCount() = %d, want 5", g.EdgeCount())
	}
	if got := g.Deps("a"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Deps(a) = %v", got)
	}
	if got := g.Deps("c"); !reflect.DeepEqual(got, []string{"e", "f"}) {
		t.Errorf("Deps(c) = %v", got)
	}
	for _, leaf := range []string{"d", "e", "f"} {
		if !g.HasNode(leaf) {
			t.Errorf("leaf %s should be visited", leaf)
		}
		if len(g.Deps(leaf)) != 0 {
			t.Errorf("leaf %s should have no deps", leaf)
		}
	}
}

func TestBuildDepthZero(t *testing.T) {
	g, err := Build(context.Background(), "a", BuildOptions{MaxDepth: 0}, treeDeps)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if got := g.Nodes(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Nodes() = %v, want [a]", got)
	}
	if !g.Expanded("a") {
		t.Error("root should have an adjacency entry at depth 0")
	}
	if len(g.Deps("a")) != 0 {
		t.Errorf("Deps(a) = %v, want empty", g.Deps("a"))
	}
}

func TestBuildDepthBound(t *testing.T) {
	// chain: a -> b -> c -> d
	chain := mapProvider{"a": {"b"}, "b": {"c"}, "c": {"d"}}

	g, err := Build(context.Background(), "a", BuildOptions{MaxDepth: 2}, chain)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// c sits at the depth limit: visited, never expanded.
	if !g.HasNode("c") {
		t.Error("c should be visited")
	}
	if g.Expanded("c") {
		t.Error("c is at the depth limit and must not be expanded")
	}
	if g.HasNode("d") {
		t.Error("d lies beyond the depth limit and must not appear")
	}
}

func TestBuildFilter(t *testing.T) {
	p := mapProvider{"root": {"box", "cat"}}

	g, err := Build(context.Background(), "root", BuildOptions{MaxDepth: 2, Filter: "x"}, p)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if got := g.Deps("root"); !reflect.DeepEqual(got, []string{"cat"}) {
		t.Errorf("Deps(root) = %v, want [cat]", got)
	}
	if g.HasNode("box") {
		t.Error("filtered name must be excluded from the graph entirely")
	}
}

func TestBuildFilterPrunesSubtree(t *testing.T) {
	p := mapProvider{
		"a":     {"bad-x", "ok"},
		"bad-x": {"hidden"},
	}

	g, err := Build(context.Background(), "a", BuildOptions{MaxDepth: 5, Filter: "x"}, p)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if g.HasNode("bad-x") || g.HasNode("hidden") {
		t.Errorf("filtered subtree leaked into graph: %v", g.Nodes())
	}
}

func TestBuildSharedNode(t *testing.T) {
	// diamond: a -> b,c; b -> d; c -> d; d -> e
	calls := map[string]int{}
	p := ProviderFunc(func(_ context.Context, name string) ([]string, error) {
		calls[name]++
		return mapProvider{"a": {"b", "c"}, "b": {"d"}, "c": {"d"}, "d": {"e"}}[name], nil
	})

	g, err := Build(context.Background(), "a", BuildOptions{MaxDepth: 10}, p)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if calls["d"] != 1 {
		t.Errorf("d expanded %d times, want 1", calls["d"])
	}
	if got := g.Deps("d"); !reflect.DeepEqual(got, []string{"e"}) {
		t.Errorf("Deps(d) = %v, want [e] shared across both paths", got)
	}
}

func TestBuildProviderErrorAbsorbed(t *testing.T) {
	var logged []string
	p := ProviderFunc(func(_ context.Context, name string) ([]string, error) {
		if name == "flaky" {
			return nil, errors.New("connection reset")
		}
		return mapProvider{"a": {"flaky", "solid"}}[name], nil
	})

	g, err := Build(context.Background(), "a", BuildOptions{
		MaxDepth: 3,
		Logger:   func(f string, args ...any) { logged = append(logged, f) },
	}, p)
	if err != nil {
		t.Fatalf("Build() should absorb provider failures, got: %v", err)
	}

	if !g.HasNode("flaky") {
		t.Error("failing node should still be recorded as visited")
	}
	if len(g.Deps("flaky")) != 0 {
		t.Error("failing node should degrade to no dependencies")
	}
	if len(logged) == 0 {
		t.Error("absorbed failure should be logged")
	}
}

func TestBuildDuplicateDeps(t *testing.T) {
	p := mapProvider{"a": {"b", "b", "b"}}

	g, err := Build(context.Background(), "a", BuildOptions{MaxDepth: 2}, p)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := g.Deps("a"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Deps(a) = %v, duplicates should collapse", got)
	}
}

func TestBuildSelfLoop(t *testing.T) {
	p := mapProvider{"a": {"a", "b"}}

	g, err := Build(context.Background(), "a", BuildOptions{MaxDepth: 3}, p)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := g.Deps("a"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Deps(a) = %v, self-loop must be recorded", got)
	}
}

func TestBuildCycleTerminates(t *testing.T) {
	p := mapProvider{"a": {"b"}, "b": {"a"}}

	g, err := Build(context.Background(), "a", BuildOptions{MaxDepth: 10}, p)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 2 {
		t.Errorf("got %d nodes / %d edges, want 2/2", g.NodeCount(), g.EdgeCount())
	}
}

func TestBuildIdempotent(t *testing.T) {
	build := func() *Graph {
		g, err := Build(context.Background(), "a", BuildOptions{MaxDepth: 3}, treeDeps)
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		return g
	}

	g1, g2 := build(), build()
	if !reflect.DeepEqual(g1.Nodes(), g2.Nodes()) {
		t.Error("visited sets differ between identical runs")
	}
	if !reflect.DeepEqual(g1.Edges(), g2.Edges()) {
		t.Error("edges differ between identical runs")
	}
}

func TestBuildInvalidInputs(t *testing.T) {
	_, err := Build(context.Background(), "", BuildOptions{MaxDepth: 1}, treeDeps)
	if !errors.Is(err, ErrEmptyRoot) {
		t.Errorf("empty root: error = %v, want ErrEmptyRoot", err)
	}

	_, err = Build(context.Background(), "a", BuildOptions{MaxDepth: -1}, treeDeps)
	if !errors.Is(err, ErrNegativeDepth) {
		t.Errorf("negative depth: error = %v, want ErrNegativeDepth", err)
	}
}

func TestBuildCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := Build(ctx, "a", BuildOptions{MaxDepth: 3}, treeDeps)
	if err == nil {
		t.Fatal("cancelled context should abort the traversal")
	}
	if g != nil {
		t.Error("no partial graph should be returned on cancellation")
	}
}

func TestBuildResultGuarantee(t *testing.T) {
	p := mapProvider{"a": {"b", "ghost"}, "b": {"c"}}

	g, err := Build(context.Background(), "a", BuildOptions{MaxDepth: 2}, p)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	for _, e := range g.Edges() {
		if !g.HasNode(e.From) || !g.HasNode(e.To) {
			t.Errorf("edge %v references an unvisited node", e)
		}
	}
	for _, n := range g.Nodes() {
		if g.Expanded(n) && !g.HasNode(n) {
			t.Errorf("expanded node %s missing from visited set", n)
		}
	}
}
