package algorithms

import (
	"container/heap"

	"routing/pkg/domain"
)

// =============================================================================
// A* Search
// =============================================================================
//
// A* orders the frontier by accumulated weight plus a straight-line estimate
// of the remaining cost, which steers the search towards the target and
// usually settles far fewer nodes than Dijkstra on street graphs.
//
// Time Complexity: O((V + E) log V), typically much better in practice
// Space Complexity: O(V)
//
// The heuristic is the Euclidean distance to the end node in coordinate
// units. Weight factors can push an edge's cost below its geometric length
// (a highway on an empty weekend night, a balanced-strategy correction), so
// the heuristic may overestimate and the first path found is near-optimal
// rather than guaranteed optimal. That trade-off is intentional: route
// quality loss is tiny on realistic factor tables and the search is
// substantially faster. Use Dijkstra when exact optimality matters.
//
// References:
//   - Hart, P. E.; Nilsson, N. J.; Raphael, B. (1968). "A Formal Basis for
//     the Heuristic Determination of Minimum Cost Paths"
// =============================================================================

// Astar searches for a cheap path from start to end, guided by straight-line
// distance to the target.
//
// Behaves like Dijkstra for missing nodes and coinciding endpoints: unknown
// IDs yield an empty not-found result and start == end yields the trivial
// single-node path.
//
// Parameters:
//   - g: the graph to search, weights read from AdjustedWeight
//   - start: starting node ID
//   - end: target node ID
//
// Returns:
//   - *Result with Found=false when end is unreachable from start
func Astar(g *domain.Graph, start, end int64) *Result {
	if g == nil {
		return notFoundResult()
	}
	if _, ok := g.GetNode(start); !ok {
		return notFoundResult()
	}
	endNode, ok := g.GetNode(end)
	if !ok {
		return notFoundResult()
	}
	if start == end {
		return trivialResult(start)
	}

	heuristic := func(node *domain.Node) float64 {
		return domain.Distance(node.X, node.Y, endNode.X, endNode.Y)
	}

	dist := make(map[int64]float64, len(g.NodeList))
	parent := make(map[int64]int64, len(g.NodeList))
	for _, node := range g.NodeList {
		dist[node.ID] = domain.Infinity
		parent[node.ID] = -1
	}
	dist[start] = 0

	startNode, _ := g.GetNode(start)

	var seq uint64
	pq := make(frontier, 0, len(g.NodeList))
	heap.Push(&pq, &queueItem{node: start, priority: heuristic(startNode), seq: seq})

	visited := 0
	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*queueItem)
		u := current.node

		// Stale check against the accumulated part of the priority only;
		// the heuristic of a node never changes between pushes
		uNode, okU := g.GetNode(u)
		if !okU {
			continue
		}
		if current.priority-heuristic(uNode) > dist[u]+domain.Epsilon {
			continue
		}
		visited++

		// First settle of the target ends the search
		if u == end {
			break
		}

		for _, edge := range g.Outgoing(u) {
			v := edge.To
			vNode, okV := g.GetNode(v)
			if !okV {
				continue
			}
			newDist := dist[u] + edge.AdjustedWeight
			if newDist < dist[v]-domain.Epsilon {
				dist[v] = newDist
				parent[v] = u
				seq++
				heap.Push(&pq, &queueItem{
					node:     v,
					priority: newDist + heuristic(vNode),
					seq:      seq,
				})
			}
		}
	}

	if dist[end] >= domain.Infinity {
		return &Result{
			Found:     false,
			Visited:   visited,
			Distances: dist,
			Parent:    parent,
		}
	}

	return &Result{
		Path:        domain.ReconstructPath(parent, start, end),
		TotalWeight: dist[end],
		Found:       true,
		Visited:     visited,
		Distances:   dist,
		Parent:      parent,
	}
}

// Run dispatches a normalized algorithm name to its implementation.
// Unknown names fall back to the default algorithm; Normalize rejects them
// earlier at the request boundary.
func Run(algorithm string, g *domain.Graph, start, end int64) *Result {
	switch algorithm {
	case AlgorithmDijkstra:
		return Dijkstra(g, start, end)
	default:
		return Astar(g, start, end)
	}
}
