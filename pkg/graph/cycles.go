package graph

// Cycle is a closed walk of package names: consecutive entries are joined
// by real edges and the first entry is repeated at the end.
type Cycle []string

// nodeState is the three-state coloring used by cycle detection.
type nodeState int

const (
	stateUnvisited nodeState = iota // not yet reached
	stateOnPath                     // on the current DFS path
	stateDone                       // fully processed
)

// FindCycles reports every cycle reachable in g.
//
// The search is a depth-first exploration with unvisited / on-path / done
// coloring, started from every visited node in lexicographic order so the
// output is reproducible run to run. When an edge reaches a node already on
// the current path, the path slice from that node through the current one
// is emitted, closed by repeating the entry node. Overlapping cycles are
// all reported; no cycle-basis minimization is attempted.
//
// The exploration never re-descends into an on-path or done node, so it
// terminates on any finite graph, cycles included. The recursion is
// replaced by an explicit frame stack to keep stack usage bounded on
// adversarial inputs.
func FindCycles(g *Graph) []Cycle {
	state := make(map[string]nodeState, g.NodeCount())
	pathPos := make(map[string]int) // name -> index in path
	var cycles []Cycle

	type frame struct {
		name string
		next int // index of the next dependency to examine
	}

	for _, start := range g.Nodes() {
		if state[start] != stateUnvisited {
			continue
		}

		stack := []frame{{name: start}}
		path := []string{start}
		state[start] = stateOnPath
		pathPos[start] = 0

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.Deps(top.name)

			if top.next < len(deps) {
				dep := deps[top.next]
				top.next++

				switch state[dep] {
				case stateOnPath:
					// Back-edge: close the loop from the first occurrence
					// of dep through the current node.
					cyc := make(Cycle, 0, len(path)-pathPos[dep]+1)
					cyc = append(cyc, path[pathPos[dep]:]...)
					cyc = append(cyc, dep)
					cycles = append(cycles, cyc)
				case stateUnvisited:
					state[dep] = stateOnPath
					pathPos[dep] = len(path)
					path = append(path, dep)
					stack = append(stack, frame{name: dep})
				}
			} else {
				state[top.name] = stateDone
				delete(pathPos, top.name)
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
			}
		}
	}

	return cycles
}

// InCycle reports whether name appears in any of the given cycles.
func InCycle(name string, cycles []Cycle) bool {
	for _, c := range cycles {
		for _, n := range c {
			if n == name {
				return true
			}
		}
	}
	return false
}
