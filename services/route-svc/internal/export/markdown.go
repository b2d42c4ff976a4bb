package export

import (
	"bytes"
	"context"
	"fmt"

	"routing/pkg/config"
)

// MarkdownGenerator генератор Markdown отчётов
type MarkdownGenerator struct {
	BaseGenerator
}

// NewMarkdownGenerator создаёт новый генератор
func NewMarkdownGenerator(cfg *config.ExportConfig) *MarkdownGenerator {
	return &MarkdownGenerator{BaseGenerator{cfg: cfg}}
}

// Format возвращает формат генератора
func (g *MarkdownGenerator) Format() Format {
	return FormatMarkdown
}

// Generate генерирует Markdown отчёт
func (g *MarkdownGenerator) Generate(ctx context.Context, data *RouteReportData) ([]byte, error) {
	var buf bytes.Buffer

	g.writeHeader(&buf, data)
	g.writeRequest(&buf, data)

	switch {
	case data.Comparison != nil:
		g.writeComparison(&buf, data)
	case data.Sweep != nil:
		g.writeSweep(&buf, data)
	default:
		g.writeRoute(&buf, data)
	}

	g.writeGraph(&buf, data)
	g.writeWarnings(&buf, data)
	g.writeFooter(&buf, data)

	return buf.Bytes(), nil
}

func (g *MarkdownGenerator) writeHeader(buf *bytes.Buffer, data *RouteReportData) {
	buf.WriteString(fmt.Sprintf("# %s\n\n", g.Title(data)))

	buf.WriteString(fmt.Sprintf("- **Generated:** %s\n", g.FormatTimestamp(g.GeneratedAt(data))))
	buf.WriteString(fmt.Sprintf("- **Author:** %s\n", g.Author(data)))
	if desc := g.Description(data); desc != "" {
		buf.WriteString(fmt.Sprintf("- **Description:** %s\n", desc))
	}
	buf.WriteString("\n---\n\n")
}

func (g *MarkdownGenerator) writeRequest(buf *bytes.Buffer, data *RouteReportData) {
	if data.Request == nil {
		return
	}
	req := data.Request

	buf.WriteString("## Request\n\n")
	if req.RequestID != "" {
		buf.WriteString(fmt.Sprintf("- **Request ID:** %s\n", req.RequestID))
	}
	buf.WriteString(fmt.Sprintf("- **Algorithm:** %s\n", req.Algorithm))
	buf.WriteString(fmt.Sprintf("- **Start:** (%.4f, %.4f)\n", req.StartX, req.StartY))
	buf.WriteString(fmt.Sprintf("- **End:** (%.4f, %.4f)\n", req.EndX, req.EndY))
	buf.WriteString(fmt.Sprintf("- **Segments:** %d\n", req.SegmentCount))
	if req.EventCount > 0 {
		buf.WriteString(fmt.Sprintf("- **Events:** %d\n", req.EventCount))
	}
	if req.TimeOfDay != "" {
		buf.WriteString(fmt.Sprintf("- **Context:** %s / %s / %s / %s\n",
			req.TimeOfDay, req.DayType, req.Weather, req.Strategy))
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeRoute(buf *bytes.Buffer, data *RouteReportData) {
	if data.Route == nil {
		buf.WriteString("*No route data available*\n\n")
		return
	}
	rt := data.Route

	buf.WriteString("## Route\n\n")
	buf.WriteString(fmt.Sprintf("- **Total Weight:** %.4f\n", rt.TotalWeight))
	buf.WriteString(fmt.Sprintf("- **Estimated Time:** %s\n", g.FormatMinutes(rt.EstimatedTimeMinutes)))
	buf.WriteString(fmt.Sprintf("- **Hops:** %d\n", rt.HopCount()))
	buf.WriteString(fmt.Sprintf("- **Computation Time:** %s\n", g.FormatDuration(rt.ComputationTimeMs)))
	if rt.Cached {
		buf.WriteString("- **Cached:** yes\n")
	}
	buf.WriteString("\n")

	if len(rt.Roads) > 0 && g.ShouldIncludeRoads(data) {
		buf.WriteString("### Road Path\n\n")
		buf.WriteString("| # | Road ID | From | To | Road Type | Density |\n")
		buf.WriteString("|---|---------|------|-----|-----------|--------|\n")
		max := g.MaxRoadsInTable()
		for i, road := range rt.Roads {
			if i >= max {
				buf.WriteString(fmt.Sprintf("\n*... and %d more roads*\n", len(rt.Roads)-max))
				break
			}
			buf.WriteString(fmt.Sprintf("| %d | %s | (%.2f, %.2f) | (%.2f, %.2f) | %s | %s |\n",
				i+1, road.ID, road.StartX, road.StartY, road.EndX, road.EndY,
				road.RoadType, road.Density))
		}
		buf.WriteString("\n")
	}

	if len(rt.Points) > 0 && g.ShouldIncludeCoordinates(data) {
		buf.WriteString("### Coordinate Path\n\n")
		buf.WriteString("| X | Y |\n")
		buf.WriteString("|---|---|\n")
		for _, p := range rt.Points {
			buf.WriteString(fmt.Sprintf("| %.4f | %.4f |\n", p.X, p.Y))
		}
		buf.WriteString("\n")
	}
}

func (g *MarkdownGenerator) writeComparison(buf *bytes.Buffer, data *RouteReportData) {
	cmp := data.Comparison

	buf.WriteString("## Algorithm Comparison\n\n")
	buf.WriteString("| Algorithm | Found | Total Weight | Estimated Time | Hops | Visited Nodes | Time |\n")
	buf.WriteString("|-----------|-------|--------------|----------------|------|---------------|------|\n")
	g.writeComparisonRow(buf, "dijkstra", cmp.Dijkstra)
	g.writeComparisonRow(buf, "astar", cmp.Astar)
	buf.WriteString("\n")

	if cmp.Dijkstra != nil && cmp.Astar != nil {
		buf.WriteString(fmt.Sprintf("**Weight Delta:** %.6f\n\n", cmp.WeightDelta))
	}
}

func (g *MarkdownGenerator) writeComparisonRow(buf *bytes.Buffer, name string, side *ComparisonSide) {
	if side == nil {
		buf.WriteString(fmt.Sprintf("| %s | no | — | — | — | — | — |\n", name))
		return
	}
	buf.WriteString(fmt.Sprintf("| %s | yes | %.4f | %s | %d | %d | %s |\n",
		side.Algorithm, side.TotalWeight, g.FormatMinutes(side.EstimatedTimeMinutes),
		side.HopCount, side.VisitedNodes, g.FormatDuration(side.ComputationTimeMs)))
}

func (g *MarkdownGenerator) writeSweep(buf *bytes.Buffer, data *RouteReportData) {
	sw := data.Sweep

	buf.WriteString(fmt.Sprintf("## Departure Sweep (%s)\n\n", sw.Algorithm))
	buf.WriteString("| Time of Day | Day Type | Found | Total Weight | Estimated Time | Hops |\n")
	buf.WriteString("|-------------|----------|-------|--------------|----------------|------|\n")
	for _, slot := range sw.Slots {
		if !slot.Found {
			buf.WriteString(fmt.Sprintf("| %s | %s | no | — | — | — |\n", slot.TimeOfDay, slot.DayType))
			continue
		}
		buf.WriteString(fmt.Sprintf("| %s | %s | yes | %.4f | %s | %d |\n",
			slot.TimeOfDay, slot.DayType, slot.TotalWeight,
			g.FormatMinutes(slot.EstimatedTimeMinutes), slot.HopCount))
	}
	buf.WriteString("\n")

	if sw.Best != nil {
		buf.WriteString(fmt.Sprintf("**Best slot:** %s / %s (weight %.4f)\n\n",
			sw.Best.TimeOfDay, sw.Best.DayType, sw.Best.TotalWeight))
	}
}

func (g *MarkdownGenerator) writeGraph(buf *bytes.Buffer, data *RouteReportData) {
	if data.Graph == nil {
		return
	}
	gr := data.Graph

	buf.WriteString("## Graph\n\n")
	buf.WriteString("| Metric | Value |\n")
	buf.WriteString("|--------|-------|\n")
	buf.WriteString(fmt.Sprintf("| Nodes | %d |\n", gr.NodeCount))
	buf.WriteString(fmt.Sprintf("| Edges | %d |\n", gr.EdgeCount))
	buf.WriteString(fmt.Sprintf("| Segments | %d |\n", gr.SegmentCount))
	buf.WriteString(fmt.Sprintf("| Components | %d |\n", gr.ComponentCount))
	buf.WriteString(fmt.Sprintf("| Min Adjusted Weight | %.6f |\n", gr.MinAdjustedWeight))
	buf.WriteString(fmt.Sprintf("| Max Adjusted Weight | %.6f |\n", gr.MaxAdjustedWeight))
	buf.WriteString(fmt.Sprintf("| Average Adjusted Weight | %.6f |\n", gr.AverageAdjusted))
	buf.WriteString(fmt.Sprintf("| Congested Edges | %d |\n", gr.CongestedEdges))
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeWarnings(buf *bytes.Buffer, data *RouteReportData) {
	if len(data.Warnings) == 0 {
		return
	}
	buf.WriteString("## Warnings\n\n")
	for _, w := range data.Warnings {
		buf.WriteString(fmt.Sprintf("- %s\n", w))
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeFooter(buf *bytes.Buffer, data *RouteReportData) {
	buf.WriteString("---\n\n")
	buf.WriteString(fmt.Sprintf("*Generated by %s*\n", g.CompanyName()))
}
