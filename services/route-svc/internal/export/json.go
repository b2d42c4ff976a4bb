package export

import (
	"context"
	"encoding/json"

	"routing/pkg/config"
)

// JSONGenerator генератор JSON отчётов
type JSONGenerator struct {
	BaseGenerator
}

// NewJSONGenerator создаёт новый генератор
func NewJSONGenerator(cfg *config.ExportConfig) *JSONGenerator {
	return &JSONGenerator{BaseGenerator{cfg: cfg}}
}

// Format возвращает формат генератора
func (g *JSONGenerator) Format() Format {
	return FormatJSON
}

// JSONReport структура JSON отчёта
type JSONReport struct {
	Metadata   JSONMetadata    `json:"metadata"`
	Request    *JSONRequest    `json:"request,omitempty"`
	Route      *JSONRoute      `json:"route,omitempty"`
	Comparison *JSONComparison `json:"comparison,omitempty"`
	Sweep      *JSONSweep      `json:"sweep,omitempty"`
	Graph      *JSONGraph      `json:"graph,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
}

type JSONMetadata struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	GeneratedAt string `json:"generatedAt"`
}

type JSONRequest struct {
	RequestID    string  `json:"requestId,omitempty"`
	Algorithm    string  `json:"algorithm"`
	StartX       float64 `json:"startX"`
	StartY       float64 `json:"startY"`
	EndX         float64 `json:"endX"`
	EndY         float64 `json:"endY"`
	SegmentCount int     `json:"segmentCount"`
	EventCount   int     `json:"eventCount,omitempty"`
	TimeOfDay    string  `json:"timeOfDay,omitempty"`
	DayType      string  `json:"dayType,omitempty"`
	Weather      string  `json:"weather,omitempty"`
	Strategy     string  `json:"strategy,omitempty"`
}

type JSONRoute struct {
	NodePath             []int64     `json:"nodePath"`
	TotalWeight          float64     `json:"totalWeight"`
	EstimatedTimeMinutes int64       `json:"estimatedTimeMinutes"`
	HopCount             int         `json:"hopCount"`
	ComputationTimeMs    float64     `json:"computationTimeMs"`
	Cached               bool        `json:"cached"`
	Roads                []JSONRoad  `json:"roads,omitempty"`
	Points               []JSONPoint `json:"points,omitempty"`
}

type JSONRoad struct {
	ID       string  `json:"id"`
	StartX   float64 `json:"startX"`
	StartY   float64 `json:"startY"`
	EndX     float64 `json:"endX"`
	EndY     float64 `json:"endY"`
	RoadType string  `json:"roadType,omitempty"`
	Density  string  `json:"density,omitempty"`
	Known    bool    `json:"known"`
}

type JSONPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type JSONComparison struct {
	Dijkstra    *JSONComparisonSide `json:"dijkstra,omitempty"`
	Astar       *JSONComparisonSide `json:"astar,omitempty"`
	WeightDelta float64             `json:"weightDelta"`
}

type JSONComparisonSide struct {
	Algorithm            string  `json:"algorithm"`
	TotalWeight          float64 `json:"totalWeight"`
	EstimatedTimeMinutes int64   `json:"estimatedTimeMinutes"`
	HopCount             int     `json:"hopCount"`
	VisitedNodes         int     `json:"visitedNodes"`
	ComputationTimeMs    float64 `json:"computationTimeMs"`
}

type JSONSweep struct {
	Algorithm string          `json:"algorithm"`
	Slots     []JSONSweepSlot `json:"slots"`
	Best      *JSONSweepSlot  `json:"best,omitempty"`
}

type JSONSweepSlot struct {
	TimeOfDay            string  `json:"timeOfDay"`
	DayType              string  `json:"dayType"`
	Found                bool    `json:"found"`
	TotalWeight          float64 `json:"totalWeight,omitempty"`
	EstimatedTimeMinutes int64   `json:"estimatedTimeMinutes,omitempty"`
	HopCount             int     `json:"hopCount,omitempty"`
}

type JSONGraph struct {
	NodeCount         int64   `json:"nodeCount"`
	EdgeCount         int64   `json:"edgeCount"`
	SegmentCount      int64   `json:"segmentCount"`
	ComponentCount    int64   `json:"componentCount"`
	MinAdjustedWeight float64 `json:"minAdjustedWeight"`
	MaxAdjustedWeight float64 `json:"maxAdjustedWeight"`
	AverageAdjusted   float64 `json:"averageAdjusted"`
	CongestedEdges    int64   `json:"congestedEdges"`
}

// Generate генерирует JSON отчёт
func (g *JSONGenerator) Generate(ctx context.Context, data *RouteReportData) ([]byte, error) {
	report := &JSONReport{
		Metadata: JSONMetadata{
			Title:       g.Title(data),
			Author:      g.Author(data),
			Description: g.Description(data),
			GeneratedAt: g.FormatTimestamp(g.GeneratedAt(data)),
		},
		Warnings: data.Warnings,
	}

	if data.Request != nil {
		req := data.Request
		report.Request = &JSONRequest{
			RequestID:    req.RequestID,
			Algorithm:    req.Algorithm,
			StartX:       req.StartX,
			StartY:       req.StartY,
			EndX:         req.EndX,
			EndY:         req.EndY,
			SegmentCount: req.SegmentCount,
			EventCount:   req.EventCount,
			TimeOfDay:    req.TimeOfDay,
			DayType:      req.DayType,
			Weather:      req.Weather,
			Strategy:     req.Strategy,
		}
	}

	if data.Route != nil {
		report.Route = g.toJSONRoute(data, data.Route)
	}

	if data.Comparison != nil {
		report.Comparison = &JSONComparison{
			Dijkstra:    toJSONComparisonSide(data.Comparison.Dijkstra),
			Astar:       toJSONComparisonSide(data.Comparison.Astar),
			WeightDelta: data.Comparison.WeightDelta,
		}
	}

	if data.Sweep != nil {
		sweep := &JSONSweep{
			Algorithm: data.Sweep.Algorithm,
			Slots:     make([]JSONSweepSlot, len(data.Sweep.Slots)),
		}
		for i, slot := range data.Sweep.Slots {
			sweep.Slots[i] = toJSONSweepSlot(slot)
		}
		if data.Sweep.Best != nil {
			best := toJSONSweepSlot(*data.Sweep.Best)
			sweep.Best = &best
		}
		report.Sweep = sweep
	}

	if data.Graph != nil {
		gr := data.Graph
		report.Graph = &JSONGraph{
			NodeCount:         gr.NodeCount,
			EdgeCount:         gr.EdgeCount,
			SegmentCount:      gr.SegmentCount,
			ComponentCount:    gr.ComponentCount,
			MinAdjustedWeight: gr.MinAdjustedWeight,
			MaxAdjustedWeight: gr.MaxAdjustedWeight,
			AverageAdjusted:   gr.AverageAdjusted,
			CongestedEdges:    gr.CongestedEdges,
		}
	}

	return json.MarshalIndent(report, "", "  ")
}

func (g *JSONGenerator) toJSONRoute(data *RouteReportData, rt *RouteData) *JSONRoute {
	route := &JSONRoute{
		NodePath:             rt.NodePath,
		TotalWeight:          rt.TotalWeight,
		EstimatedTimeMinutes: rt.EstimatedTimeMinutes,
		HopCount:             rt.HopCount(),
		ComputationTimeMs:    rt.ComputationTimeMs,
		Cached:               rt.Cached,
	}

	if g.ShouldIncludeRoads(data) {
		route.Roads = make([]JSONRoad, len(rt.Roads))
		for i, road := range rt.Roads {
			route.Roads[i] = JSONRoad{
				ID:       road.ID,
				StartX:   road.StartX,
				StartY:   road.StartY,
				EndX:     road.EndX,
				EndY:     road.EndY,
				RoadType: road.RoadType,
				Density:  road.Density,
				Known:    road.Known,
			}
		}
	}

	if g.ShouldIncludeCoordinates(data) {
		route.Points = make([]JSONPoint, len(rt.Points))
		for i, p := range rt.Points {
			route.Points[i] = JSONPoint{X: p.X, Y: p.Y}
		}
	}

	return route
}

func toJSONComparisonSide(side *ComparisonSide) *JSONComparisonSide {
	if side == nil {
		return nil
	}
	return &JSONComparisonSide{
		Algorithm:            side.Algorithm,
		TotalWeight:          side.TotalWeight,
		EstimatedTimeMinutes: side.EstimatedTimeMinutes,
		HopCount:             side.HopCount,
		VisitedNodes:         side.VisitedNodes,
		ComputationTimeMs:    side.ComputationTimeMs,
	}
}

func toJSONSweepSlot(slot SweepSlotRow) JSONSweepSlot {
	return JSONSweepSlot{
		TimeOfDay:            slot.TimeOfDay,
		DayType:              slot.DayType,
		Found:                slot.Found,
		TotalWeight:          slot.TotalWeight,
		EstimatedTimeMinutes: slot.EstimatedTimeMinutes,
		HopCount:             slot.HopCount,
	}
}
