package graph

import (
	"reflect"
	"slices"
	"testing"
)

// checkOrderRespectsEdges verifies every ordered node appears after all of
// its ordered dependencies.
func checkOrderRespectsEdges(t *testing.T, g *Graph, order []string) {
	t.Helper()
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	for _, n := range order {
		for _, dep := range g.Deps(n) {
			depPos, ok := pos[dep]
			if !ok {
				t.Errorf("%s is ordered but its dependency %s is not", n, dep)
				continue
			}
			if depPos >= pos[n] {
				t.Errorf("%s at %d precedes its dependency %s at %d", n, pos[n], dep, depPos)
			}
		}
	}
}

func TestTopoSortTree(t *testing.T) {
	g := mustBuild(t, "a", 5, treeDeps)

	order, excluded := TopoSort(g)
	if len(excluded) != 0 {
		t.Errorf("acyclic graph excluded nodes: %v", excluded)
	}

	// Deterministic leaves-first order with lexicographic tie-breaks.
	want := []string{"d", "e", "f", "b", "c", "a"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	checkOrderRespectsEdges(t, g, order)
}

func TestTopoSortRootLast(t *testing.T) {
	g := mustBuild(t, "a", 5, treeDeps)
	order, _ := TopoSort(g)
	if order[len(order)-1] != "a" {
		t.Errorf("root should install last, got order %v", order)
	}
}

func TestTopoSortCycleExcluded(t *testing.T) {
	// a -> b -> c -> a, plus c -> d
	p := mapProvider{"a": {"b"}, "b": {"c"}, "c": {"a", "d"}}
	g := mustBuild(t, "a", 10, p)

	order, excluded := TopoSort(g)
	if want := []string{"d"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(excluded, want) {
		t.Errorf("excluded = %v, want %v", excluded, want)
	}
}

func TestTopoSortDependsIntoCycle(t *testing.T) {
	// top depends on a cycle it is not part of: top -> a -> b -> a
	p := mapProvider{"top": {"a"}, "a": {"b"}, "b": {"a"}}
	g := mustBuild(t, "top", 10, p)

	order, excluded := TopoSort(g)
	if len(order) != 0 {
		t.Errorf("nothing is installable, got order %v", order)
	}
	if want := []string{"a", "b", "top"}; !reflect.DeepEqual(excluded, want) {
		t.Errorf("excluded = %v, want %v", excluded, want)
	}
}

func TestTopoSortSelfLoop(t *testing.T) {
	p := mapProvider{"a": {"a", "b"}}
	g := mustBuild(t, "a", 3, p)

	order, excluded := TopoSort(g)
	if !slices.Contains(order, "b") {
		t.Errorf("b has no dependencies and must be ordered, got %v", order)
	}
	if !slices.Contains(excluded, "a") {
		t.Errorf("self-looping node must be excluded, got %v", excluded)
	}
}

func TestTopoSortPartition(t *testing.T) {
	graphs := []mapProvider{
		treeDeps,
		{"a": {"b"}, "b": {"a"}},
		{"a": {"b", "c"}, "b": {"d"}, "c": {"d"}, "d": {"b"}},
	}
	for _, p := range graphs {
		g := mustBuild(t, "a", 10, p)
		order, excluded := TopoSort(g)

		if len(order)+len(excluded) != g.NodeCount() {
			t.Errorf("partition broken: %d + %d != %d nodes",
				len(order), len(excluded), g.NodeCount())
		}
		seen := map[string]bool{}
		for _, n := range append(slices.Clone(order), excluded...) {
			if seen[n] {
				t.Errorf("node %s appears twice across order and excluded", n)
			}
			seen[n] = true
		}
	}
}

func TestTopoSortDeterministic(t *testing.T) {
	g := mustBuild(t, "a", 5, treeDeps)

	firstOrder, firstExcl := TopoSort(g)
	for i := 0; i < 5; i++ {
		order, excl := TopoSort(g)
		if !reflect.DeepEqual(order, firstOrder) || !reflect.DeepEqual(excl, firstExcl) {
			t.Fatalf("run %d differs: %v/%v vs %v/%v", i, order, excl, firstOrder, firstExcl)
		}
	}
}

func TestTopoSortDepthLimitedLeaves(t *testing.T) {
	// b and c sit at the depth limit: visited but never expanded. They
	// have no recorded dependencies and must install before the root.
	g := mustBuild(t, "a", 1, treeDeps)

	order, excluded := TopoSort(g)
	if len(excluded) != 0 {
		t.Errorf("excluded = %v, want none", excluded)
	}
	if want := []string{"b", "c", "a"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}
