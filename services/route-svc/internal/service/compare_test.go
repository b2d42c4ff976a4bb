package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routing/pkg/apperror"
	"routing/pkg/audit"
)

func compareRequestFrom(req *RouteRequest) *CompareRequest {
	return &CompareRequest{
		RequestID:  req.RequestID,
		CallerID:   req.CallerID,
		StartX:     req.StartX,
		StartY:     req.StartY,
		EndX:       req.EndX,
		EndY:       req.EndY,
		Segments:   req.Segments,
		Simulation: req.Simulation,
		Events:     req.Events,
	}
}

func TestCompareAlgorithms_TwoSegmentLine(t *testing.T) {
	svc := newTestService()

	resp, err := svc.CompareAlgorithms(context.Background(), compareRequestFrom(lineRequest()))
	require.NoError(t, err)

	require.NotNil(t, resp.Dijkstra)
	require.NotNil(t, resp.Astar)

	assert.Equal(t, "dijkstra", resp.Dijkstra.Algorithm)
	assert.Equal(t, "astar", resp.Astar.Algorithm)

	// На одном и том же графе оба алгоритма находят оптимальный путь
	assert.Equal(t, []int64{1, 2, 3}, resp.Dijkstra.NodePath)
	assert.Equal(t, []int64{1, 2, 3}, resp.Astar.NodePath)
	assert.InDelta(t, 23.0, resp.Dijkstra.TotalWeight, 1e-9)
	assert.InDelta(t, 23.0, resp.Astar.TotalWeight, 1e-9)
	assert.InDelta(t, 0.0, resp.WeightDelta, 1e-9)

	assert.Equal(t, int64(46), resp.Dijkstra.EstimatedTimeMinutes)
	assert.Equal(t, int64(46), resp.Astar.EstimatedTimeMinutes)
	assert.Greater(t, resp.Dijkstra.VisitedNodes, 0)
	assert.Greater(t, resp.Astar.VisitedNodes, 0)

	require.NotNil(t, resp.Graph)
	assert.Equal(t, int64(3), resp.Graph.NodeCount)
}

func TestCompareAlgorithms_Disconnected(t *testing.T) {
	svc := newTestService()

	req := &CompareRequest{
		StartX: 0, StartY: 0,
		EndX: 110, EndY: 100,
		Segments: []SegmentInput{
			{ID: "r1", StartX: 0, StartY: 0, EndX: 10, EndY: 0, RoadType: "NORMAL", Density: "LOW"},
			{ID: "far", StartX: 100, StartY: 100, EndX: 110, EndY: 100, RoadType: "NORMAL", Density: "LOW"},
		},
	}

	resp, err := svc.CompareAlgorithms(context.Background(), req)
	require.NoError(t, err, "no-path comparison is not an error, both sides are just absent")

	assert.Nil(t, resp.Dijkstra)
	assert.Nil(t, resp.Astar)
	assert.Equal(t, 0.0, resp.WeightDelta)
	assert.NotNil(t, resp.Graph)
}

func TestCompareAlgorithms_WithSimulation(t *testing.T) {
	svc := newTestService()

	req := compareRequestFrom(lineRequest())
	req.Simulation = &SimulationParams{
		TimeOfDay:        "NIGHT",
		DayType:          "WEEKEND",
		WeatherCondition: "CLEAR",
		RoutingStrategy:  "SHORTEST_PATH",
	}

	resp, err := svc.CompareAlgorithms(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, resp.Dijkstra)
	require.NotNil(t, resp.Astar)
	assert.InDelta(t, 23.0*0.8*0.85, resp.Dijkstra.TotalWeight, 1e-9)
	assert.InDelta(t, resp.Dijkstra.TotalWeight, resp.Astar.TotalWeight, 1e-9)
}

func TestCompareAlgorithms_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CompareAlgorithms(ctx, nil)
	if !apperror.Is(err, apperror.CodeNilInput) {
		t.Errorf("nil request: code = %v, want %v", apperror.Code(err), apperror.CodeNilInput)
	}

	_, err = svc.CompareAlgorithms(ctx, &CompareRequest{StartX: 0, StartY: 0, EndX: 1, EndY: 1})
	if !apperror.Is(err, apperror.CodeEmptyGraph) {
		t.Errorf("empty segments: code = %v, want %v", apperror.Code(err), apperror.CodeEmptyGraph)
	}
}

func TestCompareAlgorithms_RateLimited(t *testing.T) {
	svc := NewRouteService("test", testEngineConfig(), nil, nil, nil, &audit.NoopLogger{}, newSingleRequestLimiter())
	ctx := context.Background()

	_, err := svc.CompareAlgorithms(ctx, compareRequestFrom(lineRequest()))
	require.NoError(t, err)

	_, err = svc.CompareAlgorithms(ctx, compareRequestFrom(lineRequest()))
	if !apperror.Is(err, apperror.CodeRateLimited) {
		t.Errorf("code = %v, want %v", apperror.Code(err), apperror.CodeRateLimited)
	}
}

func TestCompareAlgorithms_IndependentOfComputeLimit(t *testing.T) {
	// Лимит ведётся по операции: compute не съедает окно compare
	svc := NewRouteService("test", testEngineConfig(), nil, nil, nil, &audit.NoopLogger{}, newSingleRequestLimiter())
	ctx := context.Background()

	_, err := svc.ComputeRoute(ctx, lineRequest())
	require.NoError(t, err)

	_, err = svc.CompareAlgorithms(ctx, compareRequestFrom(lineRequest()))
	require.NoError(t, err)
}
