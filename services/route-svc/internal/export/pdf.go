package export

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"routing/pkg/config"
)

// PDFGenerator генератор PDF отчётов
type PDFGenerator struct {
	BaseGenerator
}

// NewPDFGenerator создаёт новый генератор
func NewPDFGenerator(cfg *config.ExportConfig) *PDFGenerator {
	return &PDFGenerator{BaseGenerator{cfg: cfg}}
}

// Format возвращает формат генератора
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// Стили
var (
	// Цвета
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	successColor   = &props.Color{Red: 39, Green: 174, Blue: 96}   // #27ae60
	dangerColor    = &props.Color{Red: 231, Green: 76, Blue: 60}   // #e74c3c
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	// Стили текста
	titleStyle = props.Text{
		Size:  24,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   5,
	}

	normalStyle = props.Text{
		Size: 10,
	}

	boldStyle = props.Text{
		Size:  10,
		Style: fontstyle.Bold,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	metricValueStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size:  9,
		Align: align.Center,
	}
)

// Generate генерирует PDF отчёт
func (g *PDFGenerator) Generate(ctx context.Context, data *RouteReportData) ([]byte, error) {
	m := maroto.New(g.pageConfig())

	g.addHeader(m, data)

	switch {
	case data.Comparison != nil:
		g.addComparisonContent(m, data)
	case data.Sweep != nil:
		g.addSweepContent(m, data)
	default:
		g.addRouteContent(m, data)
	}

	g.addGraphContent(m, data)
	g.addWarnings(m, data)
	g.addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func (g *PDFGenerator) pageConfig() *entity.Config {
	left, top, right := 15.0, 15.0, 15.0
	pageNumbers := true
	if g.cfg != nil {
		pdf := g.cfg.PDF
		if pdf.MarginLeft > 0 {
			left = pdf.MarginLeft
		}
		if pdf.MarginTop > 0 {
			top = pdf.MarginTop
		}
		if pdf.MarginRight > 0 {
			right = pdf.MarginRight
		}
		pageNumbers = pdf.EnablePageNumbers
	}

	b := marotocfg.NewBuilder().
		WithLeftMargin(left).
		WithTopMargin(top).
		WithRightMargin(right)
	if pageNumbers {
		b = b.WithPageNumber()
	}
	return b.Build()
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *RouteReportData) {
	m.AddRow(15,
		text.NewCol(12, g.Title(data), titleStyle),
	)

	m.AddRow(5,
		line.NewCol(12),
	)

	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Author: %s", g.Author(data)), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", g.FormatTimestamp(g.GeneratedAt(data))),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)

	if desc := g.Description(data); desc != "" {
		m.AddRow(5,
			text.NewCol(12, desc, smallStyle),
		)
	}

	m.AddRow(8)
}

func (g *PDFGenerator) addRouteContent(m core.Maroto, data *RouteReportData) {
	g.addRequestSection(m, data)

	if data.Route == nil {
		g.addSection(m, "No Route Data")
		return
	}
	rt := data.Route

	g.addSection(m, "Route")
	g.addMetricCards(m, []metricCard{
		{Label: "Total Weight", Value: g.FormatFloat(rt.TotalWeight, 4), Highlight: true},
		{Label: "Estimated Time", Value: g.FormatMinutes(rt.EstimatedTimeMinutes), Highlight: true},
		{Label: "Hops", Value: fmt.Sprintf("%d", rt.HopCount())},
	})

	m.AddRow(5)
	g.addKeyValueTable(m, []keyValue{
		{"Computation Time", g.FormatDuration(rt.ComputationTimeMs)},
		{"Cached", fmt.Sprintf("%v", rt.Cached)},
	})

	if len(rt.Roads) > 0 && g.ShouldIncludeRoads(data) {
		g.addSection(m, "Road Path")
		g.addRoadsTable(m, rt.Roads)
	}
}

func (g *PDFGenerator) addRequestSection(m core.Maroto, data *RouteReportData) {
	if data.Request == nil {
		return
	}
	req := data.Request

	g.addSection(m, "Request")

	items := []keyValue{
		{"Algorithm", req.Algorithm},
		{"Start", fmt.Sprintf("(%.4f, %.4f)", req.StartX, req.StartY)},
		{"End", fmt.Sprintf("(%.4f, %.4f)", req.EndX, req.EndY)},
		{"Segments", fmt.Sprintf("%d", req.SegmentCount)},
	}
	if req.RequestID != "" {
		items = append([]keyValue{{"Request ID", req.RequestID}}, items...)
	}
	if req.EventCount > 0 {
		items = append(items, keyValue{"Events", fmt.Sprintf("%d", req.EventCount)})
	}
	if req.TimeOfDay != "" {
		items = append(items, keyValue{"Context",
			fmt.Sprintf("%s / %s / %s / %s", req.TimeOfDay, req.DayType, req.Weather, req.Strategy)})
	}
	g.addKeyValueTable(m, items)
}

func (g *PDFGenerator) addComparisonContent(m core.Maroto, data *RouteReportData) {
	g.addRequestSection(m, data)
	g.addSection(m, "Algorithm Comparison")

	cmp := data.Comparison

	m.AddRow(8,
		text.NewCol(3, "Algorithm", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Weight", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "Estimated Time", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Visited", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Time", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)
	g.addComparisonRow(m, "dijkstra", cmp.Dijkstra)
	g.addComparisonRow(m, "astar", cmp.Astar)

	if cmp.Dijkstra != nil && cmp.Astar != nil {
		m.AddRow(8)
		m.AddRow(6,
			text.NewCol(12, fmt.Sprintf("Weight delta: %.6f", cmp.WeightDelta), boldStyle),
		)
	}
}

func (g *PDFGenerator) addComparisonRow(m core.Maroto, name string, side *ComparisonSide) {
	if side == nil {
		style := tableCellTextStyle
		style.Color = dangerColor
		m.AddRow(6,
			text.NewCol(3, name, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(9, "no path", style).WithStyle(tableCellStyle),
		)
		return
	}
	m.AddRow(6,
		text.NewCol(3, side.Algorithm, tableCellTextStyle).WithStyle(tableCellStyle),
		text.NewCol(2, g.FormatFloat(side.TotalWeight, 4), tableCellTextStyle).WithStyle(tableCellStyle),
		text.NewCol(3, g.FormatMinutes(side.EstimatedTimeMinutes), tableCellTextStyle).WithStyle(tableCellStyle),
		text.NewCol(2, fmt.Sprintf("%d", side.VisitedNodes), tableCellTextStyle).WithStyle(tableCellStyle),
		text.NewCol(2, g.FormatDuration(side.ComputationTimeMs), tableCellTextStyle).WithStyle(tableCellStyle),
	)
}

func (g *PDFGenerator) addSweepContent(m core.Maroto, data *RouteReportData) {
	g.addRequestSection(m, data)
	g.addSection(m, fmt.Sprintf("Departure Sweep (%s)", data.Sweep.Algorithm))

	m.AddRow(8,
		text.NewCol(3, "Time of Day", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "Day Type", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "Weight", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "Estimated Time", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	for _, slot := range data.Sweep.Slots {
		if !slot.Found {
			style := tableCellTextStyle
			style.Color = dangerColor
			m.AddRow(6,
				text.NewCol(3, slot.TimeOfDay, tableCellTextStyle).WithStyle(tableCellStyle),
				text.NewCol(3, slot.DayType, tableCellTextStyle).WithStyle(tableCellStyle),
				text.NewCol(6, "no path", style).WithStyle(tableCellStyle),
			)
			continue
		}

		style := tableCellTextStyle
		if best := data.Sweep.Best; best != nil &&
			best.TimeOfDay == slot.TimeOfDay && best.DayType == slot.DayType {
			style.Color = successColor
			style.Style = fontstyle.Bold
		}

		m.AddRow(6,
			text.NewCol(3, slot.TimeOfDay, style).WithStyle(tableCellStyle),
			text.NewCol(3, slot.DayType, style).WithStyle(tableCellStyle),
			text.NewCol(3, g.FormatFloat(slot.TotalWeight, 4), style).WithStyle(tableCellStyle),
			text.NewCol(3, g.FormatMinutes(slot.EstimatedTimeMinutes), style).WithStyle(tableCellStyle),
		)
	}

	if best := data.Sweep.Best; best != nil {
		m.AddRow(8)
		m.AddRow(6,
			text.NewCol(12,
				fmt.Sprintf("Best departure: %s / %s (weight %.4f)", best.TimeOfDay, best.DayType, best.TotalWeight),
				boldStyle),
		)
	}
}

func (g *PDFGenerator) addGraphContent(m core.Maroto, data *RouteReportData) {
	if data.Graph == nil {
		return
	}
	gr := data.Graph

	g.addSection(m, "Graph")
	g.addMetricCards(m, []metricCard{
		{Label: "Nodes", Value: fmt.Sprintf("%d", gr.NodeCount)},
		{Label: "Edges", Value: fmt.Sprintf("%d", gr.EdgeCount)},
		{Label: "Segments", Value: fmt.Sprintf("%d", gr.SegmentCount)},
		{Label: "Components", Value: fmt.Sprintf("%d", gr.ComponentCount)},
	})

	m.AddRow(5)
	g.addKeyValueTable(m, []keyValue{
		{"Min Adjusted Weight", g.FormatFloat(gr.MinAdjustedWeight, 6)},
		{"Max Adjusted Weight", g.FormatFloat(gr.MaxAdjustedWeight, 6)},
		{"Average Adjusted Weight", g.FormatFloat(gr.AverageAdjusted, 6)},
		{"Congested Edges", fmt.Sprintf("%d", gr.CongestedEdges)},
	})
}

func (g *PDFGenerator) addWarnings(m core.Maroto, data *RouteReportData) {
	if len(data.Warnings) == 0 {
		return
	}

	g.addSection(m, "Warnings")
	for _, w := range data.Warnings {
		m.AddRow(5,
			text.NewCol(12, "• "+w, smallStyle),
		)
	}
}

// === Вспомогательные методы ===

type metricCard struct {
	Label     string
	Value     string
	Highlight bool
}

func (g *PDFGenerator) addMetricCards(m core.Maroto, cards []metricCard) {
	if len(cards) == 0 {
		return
	}

	colSize := 12 / len(cards)
	if colSize < 2 {
		colSize = 2
	}

	var cols []core.Col
	for _, card := range cards {
		valueStyle := metricValueStyle
		if !card.Highlight {
			valueStyle.Size = 14
		}

		cols = append(cols,
			col.New(colSize).Add(
				text.New(card.Value, valueStyle),
				text.New(card.Label, metricLabelStyle),
			),
		)
	}

	m.AddRow(20, cols...)
}

type keyValue struct {
	Key   string
	Value string
}

func (g *PDFGenerator) addKeyValueTable(m core.Maroto, items []keyValue) {
	for _, item := range items {
		m.AddRow(6,
			text.NewCol(6, item.Key, boldStyle),
			text.NewCol(6, item.Value, normalStyle),
		)
	}
}

func (g *PDFGenerator) addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, h2Style),
	)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: primaryColor}),
	)
	m.AddRow(5)
}

func (g *PDFGenerator) addRoadsTable(m core.Maroto, roads []RoadRow) {
	m.AddRow(8,
		text.NewCol(1, "#", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "Road ID", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "From", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "To", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Type", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	max := g.MaxRoadsInTable()
	for i, road := range roads {
		if i >= max {
			m.AddRow(6,
				text.NewCol(12, fmt.Sprintf("... and %d more roads", len(roads)-max), smallStyle),
			)
			break
		}

		m.AddRow(6,
			text.NewCol(1, fmt.Sprintf("%d", i+1), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, road.ID, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, fmt.Sprintf("(%.2f, %.2f)", road.StartX, road.StartY), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, fmt.Sprintf("(%.2f, %.2f)", road.EndX, road.EndY), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, road.RoadType, tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
}

func (g *PDFGenerator) addFooter(m core.Maroto, data *RouteReportData) {
	m.AddRow(10)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: lightGrayColor}),
	)
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by %s | %s", g.CompanyName(), g.FormatTimestamp(g.GeneratedAt(data))),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
