package domain

import (
	"testing"
)

// twoWay добавляет пару направленных рёбер, как это делает построитель графа
func twoWay(g *Graph, from, to int64, roadID string, weight float64) {
	g.AddEdge(&Edge{From: from, To: to, RoadID: roadID, BaseWeight: weight, AdjustedWeight: weight})
	g.AddEdge(&Edge{From: to, To: from, RoadID: roadID, BaseWeight: weight, AdjustedWeight: weight})
}

func createLineGraph() *Graph {
	// 1 - 2 - 3, both directions per road
	g := NewGraph()
	for i := int64(1); i <= 3; i++ {
		g.AddNode(&Node{ID: i, X: float64(i * 10)})
	}
	twoWay(g, 1, 2, "r1", 10)
	twoWay(g, 2, 3, "r2", 10)
	return g
}

func TestBFSReachable(t *testing.T) {
	g := createLineGraph()

	reachable := BFSReachable(g, 1)
	for i := int64(1); i <= 3; i++ {
		if !reachable[i] {
			t.Errorf("node %d must be reachable from 1", i)
		}
	}

	// Isolated node is not reachable
	g.AddNode(&Node{ID: 4})
	reachable = BFSReachable(g, 1)
	if reachable[4] {
		t.Error("isolated node must not be reachable")
	}

	// Unknown start yields empty set
	if got := BFSReachable(g, 99); len(got) != 0 {
		t.Errorf("expected empty set for unknown start, got %v", got)
	}
}

func TestIsConnected(t *testing.T) {
	g := createLineGraph()

	if !IsConnected(g, 1, 3) {
		t.Error("expected 1 and 3 to be connected")
	}
	if !IsConnected(g, 3, 1) {
		t.Error("two-way edges must connect in both directions")
	}

	g.AddNode(&Node{ID: 4})
	if IsConnected(g, 1, 4) {
		t.Error("expected no connection to isolated node")
	}
}

func TestFindConnectedComponents(t *testing.T) {
	g := createLineGraph()

	components := FindConnectedComponents(g)
	if len(components) != 1 {
		t.Fatalf("expected 1 component, got %d", len(components))
	}
	if len(components[0]) != 3 {
		t.Errorf("expected component of 3 nodes, got %d", len(components[0]))
	}

	// Second component: 4 - 5
	g.AddNode(&Node{ID: 4, X: 100})
	g.AddNode(&Node{ID: 5, X: 110})
	twoWay(g, 4, 5, "r3", 10)

	components = FindConnectedComponents(g)
	if len(components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(components))
	}

	// Deterministic order: first component starts at the first inserted node
	if components[0][0] != 1 {
		t.Errorf("expected first component to start at node 1, got %d", components[0][0])
	}
	if components[1][0] != 4 {
		t.Errorf("expected second component to start at node 4, got %d", components[1][0])
	}
}

func TestFindConnectedComponents_Empty(t *testing.T) {
	g := NewGraph()
	if got := FindConnectedComponents(g); len(got) != 0 {
		t.Errorf("expected no components for empty graph, got %d", len(got))
	}
}
