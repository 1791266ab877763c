package graph

type color uint8

const (
	white color = iota // not visited
	gray               // on the current DFS path
	black              // fully explored
)

// frame is one entry of the explicit DFS stack: the node being explored
// and the index of its next dependency to visit.
type frame struct {
	id   string
	next int
}

// Cycles returns every dependency cycle found by a depth-first traversal
// of the forward graph. Each cycle starts and ends with the same id, e.g.
// [a b c a] for a → b → c → a. A self dependency yields [a a].
//
// One cycle is reported per back edge. Overlapping cycles, or the same
// cycle reached through a different back edge, are reported separately;
// rotations are not merged.
//
// The traversal uses an explicit stack so arbitrarily deep graphs do not
// grow the goroutine stack.
func (g *Graph) Cycles() [][]string {
	colors := make(map[string]color, len(g.order))
	parent := make(map[string]string, len(g.order))
	cycles := [][]string{}

	for _, start := range g.order {
		if colors[start] != white {
			continue
		}

		colors[start] = gray
		stack := []frame{{id: start}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.forward[top.id]

			if top.next >= len(deps) {
				colors[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}

			dep := deps[top.next]
			top.next++

			switch colors[dep] {
			case white:
				colors[dep] = gray
				parent[dep] = top.id
				stack = append(stack, frame{id: dep})
			case gray:
				cycles = append(cycles, traceCycle(parent, top.id, dep))
			}
		}
	}

	return cycles
}

// traceCycle walks parent pointers from current back to target, reverses
// the walk and closes the loop by appending target again.
func traceCycle(parent map[string]string, current, target string) []string {
	path := []string{current}
	for node := current; node != target; {
		node = parent[node]
		path = append(path, node)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return append(path, target)
}

// HasCycle reports whether the dependency graph contains any cycle.
func (g *Graph) HasCycle() bool {
	return len(g.Cycles()) > 0
}
