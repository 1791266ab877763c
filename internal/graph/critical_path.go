package graph

// CriticalPath returns the longest dependency chain, root dependency first
// and final dependent last. Length is counted in nodes.
//
// A cyclic graph has no meaningful longest chain, so the result is empty
// whenever Cycles reports anything. An empty graph also yields an empty
// path; a graph without edges yields its first node.
//
// The chain is found with Kahn's algorithm over dependency counts: intents
// without dependencies are processed first, and each processed intent
// relaxes dist[dependent] = max(dist[dependent], dist[node]+1). When
// several intents share the maximum distance, the first one to reach it
// in processing order wins. Processing order follows input order, so the
// result is stable for a given input but may change if the input is
// reordered.
func (g *Graph) CriticalPath() []string {
	if len(g.order) == 0 || g.HasCycle() {
		return []string{}
	}

	pending := make(map[string]int, len(g.order))
	dist := make(map[string]int, len(g.order))
	pred := make(map[string]string, len(g.order))

	queue := make([]string, 0, len(g.order))
	for _, id := range g.order {
		pending[id] = len(g.forward[id])
		dist[id] = 1
		if pending[id] == 0 {
			queue = append(queue, id)
		}
	}

	best, bestDist := "", 0
	for head := 0; head < len(queue); head++ {
		id := queue[head]
		if dist[id] > bestDist {
			best, bestDist = id, dist[id]
		}
		for _, dependent := range g.reverse[id] {
			if dist[id]+1 > dist[dependent] {
				dist[dependent] = dist[id] + 1
				pred[dependent] = id
			}
			pending[dependent]--
			if pending[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	path := []string{best}
	for node := best; ; {
		p, ok := pred[node]
		if !ok {
			break
		}
		path = append(path, p)
		node = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
