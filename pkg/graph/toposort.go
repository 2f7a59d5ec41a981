package graph

import "slices"

// TopoSort computes a deterministic installation order over the acyclic
// portion of g using Kahn's algorithm.
//
// Ordering contract: a package appears in order only after every package it
// depends on has already appeared — leaves first, root last. This is true
// installation order; the reversed convention is deliberately not offered.
//
// The ready queue is seeded with all nodes that have no recorded
// dependencies, in lexicographic order, and processed FIFO. When a node is
// emitted, each of its dependents has its remaining-dependency count
// decremented; dependents reaching zero are enqueued in lexicographic
// order. The result is identical run to run for the same graph.
//
// Nodes whose count never reaches zero have a dependency path into a cycle
// (they are on one, or depend on one transitively) and are returned in
// excluded, sorted lexicographically. order and excluded partition the
// visited set: len(order) + len(excluded) == g.NodeCount().
func TopoSort(g *Graph) (order []string, excluded []string) {
	nodes := g.Nodes()

	// remaining[n] counts the dependencies of n not yet emitted.
	// A self-loop keeps its own count positive forever, which correctly
	// lands the node in excluded.
	remaining := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		remaining[n] = len(g.Deps(n))
		for _, dep := range g.Deps(n) {
			dependents[dep] = append(dependents[dep], n)
		}
	}

	var queue []string
	for _, n := range nodes { // nodes is sorted, so the seed is too
		if remaining[n] == 0 {
			queue = append(queue, n)
		}
	}

	order = make([]string, 0, len(nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		ready := dependents[n]
		slices.Sort(ready)
		for _, parent := range ready {
			remaining[parent]--
			if remaining[parent] == 0 {
				queue = append(queue, parent)
			}
		}
	}

	for _, n := range nodes {
		if remaining[n] > 0 {
			excluded = append(excluded, n)
		}
	}
	return order, excluded
}
