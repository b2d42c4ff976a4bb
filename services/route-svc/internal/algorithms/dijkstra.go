package algorithms

import (
	"container/heap"

	"routing/pkg/domain"
)

// =============================================================================
// Dijkstra's Algorithm
// =============================================================================
//
// Dijkstra's algorithm finds the cheapest path between two nodes in a graph
// with non-negative edge weights. Adjusted weights are products of positive
// factors over a positive floor, so the non-negativity precondition always
// holds here.
//
// Time Complexity: O((V + E) log V) with binary heap
// Space Complexity: O(V)
//
// This implementation settles nodes in order of accumulated weight and stops
// as soon as the end node is settled, at which point its distance is final.
// Distance ties resolve by discovery order, matching the frontier's
// tie-breaking rule.
//
// References:
//   - Dijkstra, E. W. (1959). "A note on two problems in connexion with graphs"
// =============================================================================

// Dijkstra searches for the cheapest path from start to end.
//
// Start and end must refer to existing nodes; unknown IDs yield an empty
// not-found result. When start equals end the search returns a trivial
// single-node path with zero weight, never a missing path.
//
// Parameters:
//   - g: the graph to search, weights read from AdjustedWeight
//   - start: starting node ID
//   - end: target node ID
//
// Returns:
//   - *Result with Found=false when end is unreachable from start
func Dijkstra(g *domain.Graph, start, end int64) *Result {
	if g == nil {
		return notFoundResult()
	}
	if _, ok := g.GetNode(start); !ok {
		return notFoundResult()
	}
	if _, ok := g.GetNode(end); !ok {
		return notFoundResult()
	}
	if start == end {
		return trivialResult(start)
	}

	dist := make(map[int64]float64, len(g.NodeList))
	parent := make(map[int64]int64, len(g.NodeList))
	for _, node := range g.NodeList {
		dist[node.ID] = domain.Infinity
		parent[node.ID] = -1
	}
	dist[start] = 0

	var seq uint64
	pq := make(frontier, 0, len(g.NodeList))
	heap.Push(&pq, &queueItem{node: start, priority: 0, seq: seq})

	visited := 0
	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*queueItem)
		u := current.node

		// Skip stale entries already settled with a better distance
		if current.priority > dist[u]+domain.Epsilon {
			continue
		}
		visited++

		// The popped distance is final; no cheaper path can appear later
		if u == end {
			break
		}

		for _, edge := range g.Outgoing(u) {
			v := edge.To
			newDist := dist[u] + edge.AdjustedWeight
			if newDist < dist[v]-domain.Epsilon {
				dist[v] = newDist
				parent[v] = u
				seq++
				heap.Push(&pq, &queueItem{node: v, priority: newDist, seq: seq})
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
