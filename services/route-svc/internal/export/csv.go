package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"routing/pkg/config"
)

// CSVGenerator генератор CSV отчётов
type CSVGenerator struct {
	BaseGenerator
}

// NewCSVGenerator создаёт новый генератор
func NewCSVGenerator(cfg *config.ExportConfig) *CSVGenerator {
	return &CSVGenerator{BaseGenerator{cfg: cfg}}
}

// Format возвращает формат генератора
func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

func (cw *csvWriter) Error() error {
	return cw.err
}

// Generate генерирует CSV отчёт
func (g *CSVGenerator) Generate(ctx context.Context, data *RouteReportData) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write([]string{"# " + g.Title(data)})
	cw.Write([]string{"Generated", g.FormatTimestamp(g.GeneratedAt(data))})
	cw.Write([]string{""})

	g.writeRequestCSV(cw, data)

	switch {
	case data.Comparison != nil:
		g.writeComparisonCSV(cw, data)
	case data.Sweep != nil:
		g.writeSweepCSV(cw, data)
	default:
		g.writeRouteCSV(cw, data)
	}

	g.writeGraphCSV(cw, data)

	if len(data.Warnings) > 0 {
		cw.Write([]string{"Warnings"})
		for _, w := range data.Warnings {
			cw.Write([]string{w})
		}
		cw.Write([]string{""})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *CSVGenerator) writeRequestCSV(w *csvWriter, data *RouteReportData) {
	if data.Request == nil {
		return
	}
	req := data.Request

	w.Write([]string{"Request"})
	if req.RequestID != "" {
		w.Write([]string{"Request ID", req.RequestID})
	}
	w.Write([]string{"Algorithm", req.Algorithm})
	w.Write([]string{"Start", g.FormatFloat(req.StartX, 4), g.FormatFloat(req.StartY, 4)})
	w.Write([]string{"End", g.FormatFloat(req.EndX, 4), g.FormatFloat(req.EndY, 4)})
	w.Write([]string{"Segments", fmt.Sprintf("%d", req.SegmentCount)})
	if req.EventCount > 0 {
		w.Write([]string{"Events", fmt.Sprintf("%d", req.EventCount)})
	}
	if req.TimeOfDay != "" {
		w.Write([]string{"Time of Day", req.TimeOfDay})
		w.Write([]string{"Day Type", req.DayType})
		w.Write([]string{"Weather", req.Weather})
		w.Write([]string{"Strategy", req.Strategy})
	}
	w.Write([]string{""})
}

func (g *CSVGenerator) writeRouteCSV(w *csvWriter, data *RouteReportData) {
	if data.Route == nil {
		w.Write([]string{"No route data"})
		w.Write([]string{""})
		return
	}
	rt := data.Route

	w.Write([]string{"Route"})
	w.Write([]string{"Total Weight", g.FormatFloat(rt.TotalWeight, 4)})
	w.Write([]string{"Estimated Time", g.FormatMinutes(rt.EstimatedTimeMinutes)})
	w.Write([]string{"Hops", fmt.Sprintf("%d", rt.HopCount())})
	w.Write([]string{"Computation Time", g.FormatDuration(rt.ComputationTimeMs)})
	w.Write([]string{"Cached", fmt.Sprintf("%v", rt.Cached)})
	w.Write([]string{""})

	if len(rt.Roads) > 0 && g.ShouldIncludeRoads(data) {
		w.Write([]string{"Road Path"})
		w.Write([]string{"#", "Road ID", "Start X", "Start Y", "End X", "End Y", "Road Type", "Density"})
		max := g.MaxRoadsInTable()
		for i, road := range rt.Roads {
			if i >= max {
				w.Write([]string{fmt.Sprintf("... and %d more roads", len(rt.Roads)-max)})
				break
			}
			w.Write([]string{
				fmt.Sprintf("%d", i+1),
				road.ID,
				g.FormatFloat(road.StartX, 4),
				g.FormatFloat(road.StartY, 4),
				g.FormatFloat(road.EndX, 4),
				g.FormatFloat(road.EndY, 4),
				road.RoadType,
				road.Density,
			})
		}
		w.Write([]string{""})
	}

	if len(rt.Points) > 0 && g.ShouldIncludeCoordinates(data) {
		w.Write([]string{"Coordinate Path"})
		w.Write([]string{"X", "Y"})
		for _, p := range rt.Points {
			w.Write([]string{g.FormatFloat(p.X, 4), g.FormatFloat(p.Y, 4)})
		}
		w.Write([]string{""})
	}
}

func (g *CSVGenerator) writeComparisonCSV(w *csvWriter, data *RouteReportData) {
	cmp := data.Comparison

	w.Write([]string{"Algorithm Comparison"})
	w.Write([]string{"Algorithm", "Found", "Total Weight", "Estimated Time (min)", "Hops", "Visited Nodes", "Time (ms)"})
	g.writeComparisonSideCSV(w, "dijkstra", cmp.Dijkstra)
	g.writeComparisonSideCSV(w, "astar", cmp.Astar)
	if cmp.Dijkstra != nil && cmp.Astar != nil {
		w.Write([]string{""})
		w.Write([]string{"Weight Delta", g.FormatFloat(cmp.WeightDelta, 6)})
	}
	w.Write([]string{""})
}

func (g *CSVGenerator) writeComparisonSideCSV(w *csvWriter, name string, side *ComparisonSide) {
	if side == nil {
		w.Write([]string{name, "false", "", "", "", "", ""})
		return
	}
	w.Write([]string{
		side.Algorithm,
		"true",
		g.FormatFloat(side.TotalWeight, 4),
		fmt.Sprintf("%d", side.EstimatedTimeMinutes),
		fmt.Sprintf("%d", side.HopCount),
		fmt.Sprintf("%d", side.VisitedNodes),
		g.FormatFloat(side.ComputationTimeMs, 2),
	})
}

func (g *CSVGenerator) writeSweepCSV(w *csvWriter, data *RouteReportData) {
	sw := data.Sweep

	w.Write([]string{"Departure Sweep", sw.Algorithm})
	w.Write([]string{"Time of Day", "Day Type", "Found", "Total Weight", "Estimated Time (min)", "Hops"})
	for _, slot := range sw.Slots {
		if !slot.Found {
			w.Write([]string{slot.TimeOfDay, slot.DayType, "false", "", "", ""})
			continue
		}
		w.Write([]string{
			slot.TimeOfDay,
			slot.DayType,
			"true",
			g.FormatFloat(slot.TotalWeight, 4),
			fmt.Sprintf("%d", slot.EstimatedTimeMinutes),
			fmt.Sprintf("%d", slot.HopCount),
		})
	}
	if sw.Best != nil {
		w.Write([]string{""})
		w.Write([]string{"Best Slot", sw.Best.TimeOfDay, sw.Best.DayType, g.FormatFloat(sw.Best.TotalWeight, 4)})
	}
	w.Write([]string{""})
}

func (g *CSVGenerator) writeGraphCSV(w *csvWriter, data *RouteReportData) {
	if data.Graph == nil {
		return
	}
	gr := data.Graph

	w.Write([]string{"Graph"})
	w.Write([]string{"Nodes", fmt.Sprintf("%d", gr.NodeCount)})
	w.Write([]string{"Edges", fmt.Sprintf("%d", gr.EdgeCount)})
	w.Write([]string{"Segments", fmt.Sprintf("%d", gr.SegmentCount)})
	w.Write([]string{"Components", fmt.Sprintf("%d", gr.ComponentCount)})
	w.Write([]string{"Min Adjusted Weight", g.FormatFloat(gr.MinAdjustedWeight, 6)})
	w.Write([]string{"Max Adjusted Weight", g.FormatFloat(gr.MaxAdjustedWeight, 6)})
	w.Write([]string{"Average Adjusted Weight", g.FormatFloat(gr.AverageAdjusted, 6)})
	w.Write([]string{"Congested Edges", fmt.Sprintf("%d", gr.CongestedEdges)})
	w.Write([]string{""})
}
