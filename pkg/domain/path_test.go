package domain

import (
	"testing"
)

func TestReconstructPath(t *testing.T) {
	tests := []struct {
		name     string
		parent   map[int64]int64
		start    int64
		end      int64
		expected []int64
	}{
		{
			name: "simple path",
			parent: map[int64]int64{
				1: -1,
				2: 1,
				3: 2,
			},
			start:    1,
			end:      3,
			expected: []int64{1, 2, 3},
		},
		{
			name: "direct edge",
			parent: map[int64]int64{
				1: -1,
				2: 1,
			},
			start:    1,
			end:      2,
			expected: []int64{1, 2},
		},
		{
			name:     "start equals end",
			parent:   map[int64]int64{1: -1},
			start:    1,
			end:      1,
			expected: []int64{1},
		},
		{
			name:     "unreachable end",
			parent:   map[int64]int64{1: -1, 2: 1},
			start:    1,
			end:      5,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconstructPath(tt.parent, tt.start, tt.end)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected path %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("position %d: expected %d, got %d", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestCalculatePathWeight(t *testing.T) {
	g := NewGraph()
	for i := int64(1); i <= 3; i++ {
		g.AddNode(&Node{ID: i})
	}
	g.AddEdge(&Edge{From: 1, To: 2, RoadID: "r1", AdjustedWeight: 7})
	g.AddEdge(&Edge{From: 2, To: 3, RoadID: "r2", AdjustedWeight: 5})

	if got := CalculatePathWeight(g, []int64{1, 2, 3}); !FloatEquals(got, 12) {
		t.Errorf("expected weight 12, got %f", got)
	}

	// Single node path is weightless
	if got := CalculatePathWeight(g, []int64{1}); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestCalculatePathLength(t *testing.T) {
	g := NewGraph()
	for i := int64(1); i <= 3; i++ {
		g.AddNode(&Node{ID: i})
	}
	g.AddEdge(&Edge{From: 1, To: 2, RoadID: "r1", Length: 100})
	g.AddEdge(&Edge{From: 2, To: 3, RoadID: "r2", Length: 50})

	if got := CalculatePathLength(g, []int64{1, 2, 3}); !FloatEquals(got, 150) {
		t.Errorf("expected length 150, got %f", got)
	}
}

func TestPathResult_IsTrivial(t *testing.T) {
	trivial := &PathResult{NodePath: []int64{5}}
	if !trivial.IsTrivial() {
		t.Error("single-node path must be trivial")
	}

	regular := &PathResult{
		NodePath: []int64{1, 2},
		RoadPath: []RoadInfo{{ID: "r1", Known: true}},
	}
	if regular.IsTrivial() {
		t.Error("two-node path is not trivial")
	}
	if regular.HopCount() != 1 {
		t.Errorf("expected 1 hop, got %d", regular.HopCount())
	}
}
