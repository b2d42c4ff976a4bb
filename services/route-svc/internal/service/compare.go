// Algorithm comparison.
//
// CompareAlgorithms answers the question "do Dijkstra and A* agree here,
// and what does A* save?". The adjusted graph is built once and both
// algorithms search it, so the two sides differ only in the search itself.
// Comparison results are never cached: the per-side timings are the point.

package service

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"routing/pkg/audit"
	"routing/pkg/cache"
	"routing/pkg/domain"
	"routing/pkg/telemetry"
	"routing/services/route-svc/internal/algorithms"
	"routing/services/route-svc/internal/assembler"
	"routing/services/route-svc/internal/graph"
)

// CompareAlgorithms runs both algorithms over one adjusted graph.
//
// Each side is independently nullable: an algorithm that finds no path
// contributes a nil side rather than failing the whole comparison. The
// call itself fails only on invalid input or when the endpoints cannot
// be located at all.
func (s *RouteService) CompareAlgorithms(ctx context.Context, req *CompareRequest) (*CompareResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "RouteService.CompareAlgorithms")
	defer span.End()

	var reqID string
	caller := "anonymous"
	if req != nil {
		reqID = req.RequestID
		if req.CallerID != "" {
			caller = req.CallerID
		}
	}
	if err := s.allow(ctx, "compare", caller); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	parsed, verrs := validateCompareRequest(req)
	if verrs.HasErrors() {
		err := validationFailure(verrs)
		span.SetAttributes(telemetry.ValidationAttributes(len(verrs.Errors), false)...)
		telemetry.SetError(ctx, err)
		s.auditReject(ctx, "CompareAlgorithms", audit.ActionCompare, reqID, err)
		return nil, err
	}

	requestID := ensureRequestID(req.RequestID)
	segmentsHash := cache.SegmentsHash(parsed.segments)

	span.SetAttributes(
		attribute.String("request_id", requestID),
		attribute.Int("segments", len(parsed.segments)),
	)

	start := time.Now()

	adjusted, err := s.prepareGraph(ctx, parsed)
	var endpoints routeEndpoints
	if err == nil {
		endpoints, err = s.locateEndpoints(adjusted, req.StartX, req.StartY, req.EndX, req.EndY)
	}
	if err != nil {
		telemetry.SetError(ctx, err)
		s.auditFailure(ctx, "CompareAlgorithms", audit.ActionCompare, requestID, segmentsHash, time.Since(start), err)
		return nil, err
	}

	resp := &CompareResponse{
		RequestID: requestID,
		Graph:     toGraphSummary(adjusted),
	}
	resp.Dijkstra = s.compareSide(adjusted, parsed.segments, endpoints, algorithms.AlgorithmDijkstra)
	resp.Astar = s.compareSide(adjusted, parsed.segments, endpoints, algorithms.AlgorithmAstar)
	elapsed := time.Since(start)

	if resp.Dijkstra != nil && resp.Astar != nil {
		resp.WeightDelta = math.Abs(resp.Dijkstra.TotalWeight - resp.Astar.TotalWeight)
	}

	if s.metrics != nil {
		s.metrics.RecordGraphSize("compare", len(adjusted.Nodes), len(adjusted.EdgeList))
	}
	s.auditSuccess(ctx, "CompareAlgorithms", audit.ActionCompare, requestID, segmentsHash, elapsed, map[string]any{
		"dijkstra_found": resp.Dijkstra != nil,
		"astar_found":    resp.Astar != nil,
		"weight_delta":   resp.WeightDelta,
	})

	return resp, nil
}

// routeEndpoints is a located start/end node pair.
type routeEndpoints struct {
	start int64
	end   int64
}

// locateEndpoints snaps both query points to graph nodes.
func (s *RouteService) locateEndpoints(g *domain.Graph, startX, startY, endX, endY float64) (routeEndpoints, error) {
	startNode, err := graph.NearestNode(g, startX, startY)
	if err != nil {
		return routeEndpoints{}, err
	}
	endNode, err := graph.NearestNode(g, endX, endY)
	if err != nil {
		return routeEndpoints{}, err
	}
	return routeEndpoints{start: startNode, end: endNode}, nil
}

// compareSide runs one algorithm for the comparison. A no-path outcome
// or a broken assembly yields a nil side.
func (s *RouteService) compareSide(adjusted *domain.Graph, segments []domain.RoadSegment, endpoints routeEndpoints, algorithm string) *CompareSide {
	start := time.Now()
	raw := algorithms.Run(algorithm, adjusted, endpoints.start, endpoints.end)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordRouteOperation(algorithm, raw.Found, elapsed, raw.TotalWeight)
	}
	if !raw.Found {
		return nil
	}

	result, err := assembler.Assemble(adjusted, raw.Path, raw.TotalWeight, segments)
	if err != nil {
		return nil
	}

	return &CompareSide{
		Algorithm:            algorithm,
		NodePath:             result.NodePath,
		RoadPath:             toRouteRoads(result.RoadPath),
		CoordinatePath:       toRoutePoints(result.CoordinatePath),
		TotalWeight:          result.TotalWeight,
		EstimatedTimeMinutes: s.estimateMinutes(result.TotalWeight),
		VisitedNodes:         raw.Visited,
		ComputationTimeMs:    float64(elapsed.Microseconds()) / 1000.0,
	}
}
