package domain

import (
	"testing"
)

func TestNewGraph(t *testing.T) {
	g := NewGraph()

	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	if g.Nodes == nil {
		t.Error("expected non-nil Nodes map")
	}
	if g.Adjacency == nil {
		t.Error("expected non-nil Adjacency map")
	}
	if len(g.NodeList) != 0 {
		t.Errorf("expected 0 nodes, got %d", len(g.NodeList))
	}
}

func TestGraph_AddNode(t *testing.T) {
	g := NewGraph()

	node := &Node{ID: 1, X: 10.5, Y: 20.5}
	g.AddNode(node)

	if len(g.Nodes) != 1 {
		t.Errorf("expected 1 node, got %d", len(g.Nodes))
	}

	got, ok := g.GetNode(1)
	if !ok {
		t.Fatal("expected to find node")
	}
	if got.X != 10.5 || got.Y != 20.5 {
		t.Errorf("unexpected coordinates (%f, %f)", got.X, got.Y)
	}

	// Insertion order is preserved
	g.AddNode(&Node{ID: 2})
	if g.NodeList[0].ID != 1 || g.NodeList[1].ID != 2 {
		t.Error("NodeList must preserve insertion order")
	}
}

func TestGraph_AddEdge(t *testing.T) {
	g := NewGraph()

	g.AddNode(&Node{ID: 1})
	g.AddNode(&Node{ID: 2})

	edge := &Edge{From: 1, To: 2, RoadID: "r1", Length: 50, BaseWeight: 25, AdjustedWeight: 25}
	g.AddEdge(edge)

	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", g.EdgeCount())
	}

	outgoing := g.Outgoing(1)
	if len(outgoing) != 1 || outgoing[0].To != 2 {
		t.Error("expected outgoing edge to node 2")
	}
	if outgoing[0].RoadID != "r1" {
		t.Errorf("expected road id r1, got %s", outgoing[0].RoadID)
	}
}

func TestGraph_FindEdge(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: 1})
	g.AddNode(&Node{ID: 2})

	g.AddEdge(&Edge{From: 1, To: 2, RoadID: "slow", AdjustedWeight: 10})
	g.AddEdge(&Edge{From: 1, To: 2, RoadID: "fast", AdjustedWeight: 3})

	// Parallel edges: the cheaper one wins
	edge, ok := g.FindEdge(1, 2)
	if !ok {
		t.Fatal("expected to find edge")
	}
	if edge.RoadID != "fast" {
		t.Errorf("expected cheaper parallel edge, got %s", edge.RoadID)
	}

	if _, ok := g.FindEdge(2, 1); ok {
		t.Error("reverse edge was never added")
	}
}

func TestGraph_Clone(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: 1, X: 0, Y: 0})
	g.AddNode(&Node{ID: 2, X: 10, Y: 0})
	g.AddEdge(&Edge{From: 1, To: 2, RoadID: "r1", BaseWeight: 10, AdjustedWeight: 10})
	g.AddEdge(&Edge{From: 2, To: 1, RoadID: "r1", BaseWeight: 10, AdjustedWeight: 10})

	clone := g.Clone()

	if clone.NodeCount() != g.NodeCount() {
		t.Errorf("expected %d nodes, got %d", g.NodeCount(), clone.NodeCount())
	}
	if clone.EdgeCount() != g.EdgeCount() {
		t.Errorf("expected %d edges, got %d", g.EdgeCount(), clone.EdgeCount())
	}

	// Deep copy: mutating the clone must not touch the original
	clone.EdgeList[0].AdjustedWeight = 999
	if g.EdgeList[0].AdjustedWeight == 999 {
		t.Error("clone shares edge storage with original")
	}

	clone.NodeList[0].X = -1
	if g.NodeList[0].X == -1 {
		t.Error("clone shares node storage with original")
	}

	// Traversal order survives cloning
	for i := range g.NodeList {
		if clone.NodeList[i].ID != g.NodeList[i].ID {
			t.Fatal("clone changed node order")
		}
	}
}

func TestGraph_Validate(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: 1})
	g.AddNode(&Node{ID: 2})
	g.AddEdge(&Edge{From: 1, To: 2, RoadID: "r1", BaseWeight: 5, AdjustedWeight: 5})

	if errs := g.Validate(); len(errs) != 0 {
		t.Errorf("expected valid graph, got %v", errs)
	}

	g.AddEdge(&Edge{From: 1, To: 99, RoadID: "r2", BaseWeight: 5, AdjustedWeight: 5})
	if errs := g.Validate(); len(errs) == 0 {
		t.Error("expected dangling edge error")
	}

	g2 := NewGraph()
	g2.AddNode(&Node{ID: 1})
	g2.AddNode(&Node{ID: 2})
	g2.AddEdge(&Edge{From: 1, To: 2, RoadID: "r1", BaseWeight: -1, AdjustedWeight: 1})
	if errs := g2.Validate(); len(errs) == 0 {
		t.Error("expected negative weight error")
	}
}
