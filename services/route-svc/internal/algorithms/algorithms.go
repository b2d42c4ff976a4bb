// Package algorithms implements point-to-point shortest path searches over
// routable street graphs.
//
// This file contains the shared pieces used by every search:
//   - Algorithm names and case-insensitive normalization
//   - Result: the raw outcome of a search
//   - A deterministic min-heap priority queue
//
// All searches read adjusted edge weights only and visit adjacency lists in
// insertion order, so a given graph always yields the same path. Searches
// run to completion; callers bound latency around the whole call.
package algorithms

import (
	"strings"

	"routing/pkg/apperror"
)

// Supported algorithm names. Incoming requests are matched case-insensitively.
const (
	AlgorithmDijkstra = "dijkstra"
	AlgorithmAstar    = "astar"
)

// DefaultAlgorithm is used when a request does not name an algorithm.
const DefaultAlgorithm = AlgorithmAstar

// Normalize maps a request algorithm string to its canonical name.
// An empty string selects the default. Unknown names are rejected with an
// invalid algorithm error that carries the offending value.
func Normalize(name string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	switch trimmed {
	case "":
		return DefaultAlgorithm, nil
	case AlgorithmDijkstra:
		return AlgorithmDijkstra, nil
	case AlgorithmAstar:
		return AlgorithmAstar, nil
	default:
		return "", apperror.New(apperror.CodeInvalidAlgorithm, "unknown algorithm").
			WithDetails("algorithm", name)
	}
}

// =============================================================================
// Search Result
// =============================================================================

// Result is the raw outcome of a shortest path search.
type Result struct {
	// Path lists node IDs from start to end inclusive. Empty when no path
	// exists. A search with start == end yields a single-node path.
	Path []int64

	// TotalWeight is the sum of adjusted weights along Path. Zero for a
	// trivial single-node path.
	TotalWeight float64

	// Found reports whether the end node is reachable from the start.
	Found bool

	// Visited counts settled nodes, useful for comparing algorithm effort.
	Visited int

	// Distances maps node IDs to the best accumulated weight seen during
	// the search. Unreached nodes stay at domain.Infinity.
	Distances map[int64]float64

	// Parent maps each reached node to its predecessor on the best known
	// path. The start node maps to -1.
	Parent map[int64]int64
}

// trivialResult covers a search whose start and end coincide: the path is
// the single node and costs nothing.
func trivialResult(node int64) *Result {
	return &Result{
		Path:        []int64{node},
		TotalWeight: 0,
		Found:       true,
		Visited:     1,
		Distances:   map[int64]float64{node: 0},
		Parent:      map[int64]int64{node: -1},
	}
}

// notFoundResult covers searches whose endpoints are missing from the graph.
func notFoundResult() *Result {
	return &Result{
		Distances: map[int64]float64{},
		Parent:    map[int64]int64{},
	}
}

// =============================================================================
// Priority Queue
// =============================================================================

// queueItem is one entry of the search frontier.
type queueItem struct {
	node     int64
	priority float64 // Accumulated weight, plus the heuristic for A*
	seq      uint64  // Push order, breaks priority ties
	index    int     // Position in the heap
}

// frontier implements heap.Interface as a min-heap on priority.
//
// Equal priorities resolve by push order, so among equally good candidates
// the one discovered first is settled first. Combined with ordered adjacency
// lists this makes every search fully deterministic.
type frontier []*queueItem

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].priority != f[j].priority {
		return f[i].priority < f[j].priority
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *frontier) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*f)
	*f = append(*f, item)
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // Avoid memory leak
	item.index = -1
	*f = old[0 : n-1]
	return item
}
