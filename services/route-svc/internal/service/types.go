// Package service orchestrates route computation behind a validated
// request boundary.
//
// This file defines the request and response shapes:
//   - RouteRequest / RouteResponse: a single route computation
//   - CompareRequest / CompareResponse: both algorithms on one adjusted graph
//   - SweepRequest / SweepResponse: departure slots across time of day and day type
//
// Requests arrive as explicit structs, never untyped maps. Enum-like fields
// travel as strings ("HIGHWAY", "MORNING") and are parsed during validation,
// so a request that survives validation always converts cleanly to domain
// types.
package service

import (
	"time"

	"routing/pkg/domain"
)

// =============================================================================
// Request Types
// =============================================================================

// SegmentInput is one road segment as supplied by the map owner.
type SegmentInput struct {
	ID       string  `json:"id"`
	StartX   float64 `json:"start_x"`
	StartY   float64 `json:"start_y"`
	EndX     float64 `json:"end_x"`
	EndY     float64 `json:"end_y"`
	RoadType string  `json:"road_type"`
	Density  string  `json:"density"`
}

// EventInput is one active event as supplied by the caller.
type EventInput struct {
	ID      string    `json:"id"`
	Name    string    `json:"name,omitempty"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Impact  string    `json:"impact"`
	Status  string    `json:"status"`
	EndDate time.Time `json:"end_date"`
}

// SimulationParams carries the optional simulation context. Empty fields
// fall back to their defaults (MORNING, WEEKDAY, CLEAR, SHORTEST_PATH)
// rather than failing validation.
type SimulationParams struct {
	TimeOfDay        string `json:"time_of_day,omitempty"`
	DayType          string `json:"day_type,omitempty"`
	WeatherCondition string `json:"weather_condition,omitempty"`
	RoutingStrategy  string `json:"routing_strategy,omitempty"`
}

// RouteRequest asks for a single route over one map snapshot.
type RouteRequest struct {
	RequestID  string            `json:"request_id,omitempty"`
	CallerID   string            `json:"caller_id,omitempty"`
	Algorithm  string            `json:"algorithm,omitempty"`
	StartX     float64           `json:"start_x"`
	StartY     float64           `json:"start_y"`
	EndX       float64           `json:"end_x"`
	EndY       float64           `json:"end_y"`
	Segments   []SegmentInput    `json:"segments"`
	Simulation *SimulationParams `json:"simulation_params,omitempty"`
	Events     []EventInput      `json:"events,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
}

// CompareRequest asks for the same route from both algorithms. The
// adjusted graph is built once so the two sides see identical weights.
type CompareRequest struct {
	RequestID  string            `json:"request_id,omitempty"`
	CallerID   string            `json:"caller_id,omitempty"`
	StartX     float64           `json:"start_x"`
	StartY     float64           `json:"start_y"`
	EndX       float64           `json:"end_x"`
	EndY       float64           `json:"end_y"`
	Segments   []SegmentInput    `json:"segments"`
	Simulation *SimulationParams `json:"simulation_params,omitempty"`
	Events     []EventInput      `json:"events,omitempty"`
}

// SweepRequest asks for the same route across all departure slots.
// TimeOfDay and DayType of the base context are ignored; weather and
// strategy are held fixed while the slots vary.
type SweepRequest struct {
	RequestID  string            `json:"request_id,omitempty"`
	CallerID   string            `json:"caller_id,omitempty"`
	Algorithm  string            `json:"algorithm,omitempty"`
	StartX     float64           `json:"start_x"`
	StartY     float64           `json:"start_y"`
	EndX       float64           `json:"end_x"`
	EndY       float64           `json:"end_y"`
	Segments   []SegmentInput    `json:"segments"`
	Simulation *SimulationParams `json:"simulation_params,omitempty"`
	Events     []EventInput      `json:"events,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// RoutePoint is one vertex of the found route.
type RoutePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RouteRoad is one road on the found route. Known reports whether the
// road id resolved to an input segment; when it did not, only ID is set.
type RouteRoad struct {
	ID       string  `json:"id"`
	StartX   float64 `json:"start_x,omitempty"`
	StartY   float64 `json:"start_y,omitempty"`
	EndX     float64 `json:"end_x,omitempty"`
	EndY     float64 `json:"end_y,omitempty"`
	RoadType string  `json:"road_type,omitempty"`
	Density  string  `json:"density,omitempty"`
	Known    bool    `json:"known"`
}

// GraphSummary describes the graph the search ran on.
type GraphSummary struct {
	NodeCount         int64   `json:"node_count"`
	EdgeCount         int64   `json:"edge_count"`
	SegmentCount      int64   `json:"segment_count"`
	ComponentCount    int64   `json:"component_count"`
	MinAdjustedWeight float64 `json:"min_adjusted_weight"`
	MaxAdjustedWeight float64 `json:"max_adjusted_weight"`
	AverageAdjusted   float64 `json:"average_adjusted_weight"`
	CongestedEdges    int64   `json:"congested_edges"`
}

// RouteMetadata is supporting detail that dashboards consume.
type RouteMetadata struct {
	ComputationTimeMs float64       `json:"computation_time_ms"`
	Cached            bool          `json:"cached"`
	VisitedNodes      int           `json:"visited_nodes,omitempty"`
	StartNodeID       int64         `json:"start_node_id,omitempty"`
	EndNodeID         int64         `json:"end_node_id,omitempty"`
	Graph             *GraphSummary `json:"graph,omitempty"`
	Warnings          []string      `json:"warnings,omitempty"`
}

// RouteResponse is the result of a successful route computation.
type RouteResponse struct {
	RequestID            string         `json:"request_id"`
	Algorithm            string         `json:"algorithm"`
	NodePath             []int64        `json:"node_path"`
	RoadPath             []RouteRoad    `json:"road_path"`
	CoordinatePath       []RoutePoint   `json:"coordinate_path"`
	TotalWeight          float64        `json:"total_weight"`
	EstimatedTimeMinutes int64          `json:"estimated_time_minutes"`
	Metadata             *RouteMetadata `json:"metadata,omitempty"`
}

// CompareSide is one algorithm's result inside a comparison. A nil side
// in CompareResponse means that algorithm found no path.
type CompareSide struct {
	Algorithm            string       `json:"algorithm"`
	NodePath             []int64      `json:"node_path"`
	RoadPath             []RouteRoad  `json:"road_path"`
	CoordinatePath       []RoutePoint `json:"coordinate_path"`
	TotalWeight          float64      `json:"total_weight"`
	EstimatedTimeMinutes int64        `json:"estimated_time_minutes"`
	VisitedNodes         int          `json:"visited_nodes"`
	ComputationTimeMs    float64      `json:"computation_time_ms"`
}

// CompareResponse holds both algorithms' results over one adjusted graph.
type CompareResponse struct {
	RequestID   string        `json:"request_id"`
	Dijkstra    *CompareSide  `json:"dijkstra,omitempty"`
	Astar       *CompareSide  `json:"astar,omitempty"`
	WeightDelta float64       `json:"weight_delta"`
	Graph       *GraphSummary `json:"graph,omitempty"`
}

// SweepSlot is one departure slot's outcome.
type SweepSlot struct {
	TimeOfDay            string  `json:"time_of_day"`
	DayType              string  `json:"day_type"`
	Found                bool    `json:"found"`
	TotalWeight          float64 `json:"total_weight,omitempty"`
	EstimatedTimeMinutes int64   `json:"estimated_time_minutes,omitempty"`
	HopCount             int     `json:"hop_count,omitempty"`
}

// SweepResponse lists every departure slot plus the cheapest one. Slots
// follow a fixed order: morning..night for weekdays, then the same for
// weekends. Best is nil when no slot has a path.
type SweepResponse struct {
	RequestID string      `json:"request_id"`
	Algorithm string      `json:"algorithm"`
	Slots     []SweepSlot `json:"slots"`
	Best      *SweepSlot  `json:"best,omitempty"`
}

// =============================================================================
// Domain Conversion
// =============================================================================

// Parsed segments, events and context of a request that passed validation.
// Validation fills this in so the compute path never re-parses strings.
type parsedRequest struct {
	algorithm string
	segments  []domain.RoadSegment
	events    []domain.ActiveEvent
	sctx      *domain.SimulationContext
	warnings  []string
}

func toDomainSegment(in *SegmentInput, roadType domain.RoadType, density domain.Density) domain.RoadSegment {
	return domain.RoadSegment{
		ID:       in.ID,
		StartX:   in.StartX,
		StartY:   in.StartY,
		EndX:     in.EndX,
		EndY:     in.EndY,
		RoadType: roadType,
		Density:  density,
	}
}

func toDomainEvent(in *EventInput, impact domain.ImpactLevel, status domain.EventStatus) domain.ActiveEvent {
	return domain.ActiveEvent{
		ID:      in.ID,
		Name:    in.Name,
		X:       in.X,
		Y:       in.Y,
		Impact:  impact,
		Status:  status,
		EndDate: in.EndDate,
	}
}

func toRouteRoads(roads []domain.RoadInfo) []RouteRoad {
	out := make([]RouteRoad, len(roads))
	for i := range roads {
		r := &roads[i]
		out[i] = RouteRoad{ID: r.ID, Known: r.Known}
		if r.Known {
			out[i].StartX = r.Start.X
			out[i].StartY = r.Start.Y
			out[i].EndX = r.End.X
			out[i].EndY = r.End.Y
			out[i].RoadType = r.RoadType.String()
			out[i].Density = r.Density.String()
		}
	}
	return out
}

func toRoutePoints(coords []domain.Coordinate) []RoutePoint {
	out := make([]RoutePoint, len(coords))
	for i := range coords {
		out[i] = RoutePoint{X: coords[i].X, Y: coords[i].Y}
	}
	return out
}

func toGraphSummary(g *domain.Graph) *GraphSummary {
	if g == nil {
		return nil
	}
	gs := domain.CalculateGraphStatistics(g)
	ws := domain.CalculateWeightStatistics(g)
	return &GraphSummary{
		NodeCount:         gs.NodeCount,
		EdgeCount:         gs.EdgeCount,
		SegmentCount:      gs.SegmentCount,
		ComponentCount:    gs.ComponentCount,
		MinAdjustedWeight: ws.MinAdjustedWeight,
		MaxAdjustedWeight: ws.MaxAdjustedWeight,
		AverageAdjusted:   ws.AverageAdjusted,
		CongestedEdges:    ws.CongestedEdges,
	}
}
