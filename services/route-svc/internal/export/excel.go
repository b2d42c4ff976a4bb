package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"routing/pkg/config"
)

// ExcelGenerator генератор Excel отчётов
type ExcelGenerator struct {
	BaseGenerator
}

// NewExcelGenerator создаёт новый генератор
func NewExcelGenerator(cfg *config.ExportConfig) *ExcelGenerator {
	return &ExcelGenerator{BaseGenerator{cfg: cfg}}
}

// Format возвращает формат генератора
func (g *ExcelGenerator) Format() Format {
	return FormatExcel
}

// Generate генерирует Excel отчёт
func (g *ExcelGenerator) Generate(ctx context.Context, data *RouteReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	switch {
	case data.Comparison != nil:
		g.writeComparisonSheet(f, data, headerStyle)
	case data.Sweep != nil:
		g.writeSweepSheet(f, data, headerStyle)
	default:
		g.writeRouteSheet(f, data, headerStyle)
	}

	if data.Graph != nil {
		g.writeGraphSheet(f, data, headerStyle)
	}

	// Удаляем дефолтный лист
	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel write error: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeRouteSheet(f *excelize.File, data *RouteReportData, headerStyle int) {
	sheetName := "Route"
	f.NewSheet(sheetName)

	row := 1
	f.SetCellValue(sheetName, cellAddr("A", row), g.Title(data))
	f.MergeCell(sheetName, cellAddr("A", row), cellAddr("D", row))
	row += 2

	row = g.writeRequestBlock(f, sheetName, data, headerStyle, row)

	if data.Route != nil {
		rt := data.Route

		f.SetCellValue(sheetName, cellAddr("A", row), "Route")
		f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("B", row), headerStyle)
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Total Weight")
		f.SetCellValue(sheetName, cellAddr("B", row), rt.TotalWeight)
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Estimated Time (min)")
		f.SetCellValue(sheetName, cellAddr("B", row), rt.EstimatedTimeMinutes)
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Hops")
		f.SetCellValue(sheetName, cellAddr("B", row), rt.HopCount())
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Computation Time (ms)")
		f.SetCellValue(sheetName, cellAddr("B", row), rt.ComputationTimeMs)
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Cached")
		f.SetCellValue(sheetName, cellAddr("B", row), rt.Cached)
		row += 2

		if len(rt.Roads) > 0 && g.ShouldIncludeRoads(data) {
			g.writeRoadsSheet(f, data, headerStyle)
		}
	}

	f.SetColWidth(sheetName, "A", "B", 22)
}

func (g *ExcelGenerator) writeRequestBlock(f *excelize.File, sheetName string, data *RouteReportData, headerStyle, row int) int {
	if data.Request == nil {
		return row
	}
	req := data.Request

	f.SetCellValue(sheetName, cellAddr("A", row), "Request")
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row++

	if req.RequestID != "" {
		f.SetCellValue(sheetName, cellAddr("A", row), "Request ID")
		f.SetCellValue(sheetName, cellAddr("B", row), req.RequestID)
		row++
	}

	f.SetCellValue(sheetName, cellAddr("A", row), "Algorithm")
	f.SetCellValue(sheetName, cellAddr("B", row), req.Algorithm)
	row++

	f.SetCellValue(sheetName, cellAddr("A", row), "Start")
	f.SetCellValue(sheetName, cellAddr("B", row), fmt.Sprintf("(%.4f, %.4f)", req.StartX, req.StartY))
	row++

	f.SetCellValue(sheetName, cellAddr("A", row), "End")
	f.SetCellValue(sheetName, cellAddr("B", row), fmt.Sprintf("(%.4f, %.4f)", req.EndX, req.EndY))
	row++

	f.SetCellValue(sheetName, cellAddr("A", row), "Segments")
	f.SetCellValue(sheetName, cellAddr("B", row), req.SegmentCount)
	row++

	if req.TimeOfDay != "" {
		f.SetCellValue(sheetName, cellAddr("A", row), "Context")
		f.SetCellValue(sheetName, cellAddr("B", row),
			fmt.Sprintf("%s / %s / %s / %s", req.TimeOfDay, req.DayType, req.Weather, req.Strategy))
		row++
	}

	return row + 1
}

func (g *ExcelGenerator) writeRoadsSheet(f *excelize.File, data *RouteReportData, headerStyle int) {
	sheetName := "Roads"
	f.NewSheet(sheetName)

	headers := []string{"#", "Road ID", "Start X", "Start Y", "End X", "End Y", "Road Type", "Density", "Known"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", "I1", headerStyle)

	for i, road := range data.Route.Roads {
		row := i + 2
		f.SetCellValue(sheetName, cellAddr("A", row), i+1)
		f.SetCellValue(sheetName, cellAddr("B", row), road.ID)
		f.SetCellValue(sheetName, cellAddr("C", row), road.StartX)
		f.SetCellValue(sheetName, cellAddr("D", row), road.StartY)
		f.SetCellValue(sheetName, cellAddr("E", row), road.EndX)
		f.SetCellValue(sheetName, cellAddr("F", row), road.EndY)
		f.SetCellValue(sheetName, cellAddr("G", row), road.RoadType)
		f.SetCellValue(sheetName, cellAddr("H", row), road.Density)
		f.SetCellValue(sheetName, cellAddr("I", row), road.Known)
	}

	f.SetColWidth(sheetName, "A", "I", 12)
}

func (g *ExcelGenerator) writeComparisonSheet(f *excelize.File, data *RouteReportData, headerStyle int) {
	sheetName := "Comparison"
	f.NewSheet(sheetName)

	row := 1
	f.SetCellValue(sheetName, cellAddr("A", row), g.Title(data))
	row += 2

	row = g.writeRequestBlock(f, sheetName, data, headerStyle, row)

	headers := []string{"Algorithm", "Found", "Total Weight", "Estimated Time (min)", "Hops", "Visited Nodes", "Time (ms)"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddr(string(rune('A'+i)), row), h)
	}
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("G", row), headerStyle)
	row++

	row = g.writeComparisonExcelRow(f, sheetName, "dijkstra", data.Comparison.Dijkstra, row)
	row = g.writeComparisonExcelRow(f, sheetName, "astar", data.Comparison.Astar, row)

	if data.Comparison.Dijkstra != nil && data.Comparison.Astar != nil {
		row++
		f.SetCellValue(sheetName, cellAddr("A", row), "Weight Delta")
		f.SetCellValue(sheetName, cellAddr("B", row), data.Comparison.WeightDelta)
	}

	f.SetColWidth(sheetName, "A", "G", 18)
}

func (g *ExcelGenerator) writeComparisonExcelRow(f *excelize.File, sheetName, name string, side *ComparisonSide, row int) int {
	if side == nil {
		f.SetCellValue(sheetName, cellAddr("A", row), name)
		f.SetCellValue(sheetName, cellAddr("B", row), false)
		return row + 1
	}
	f.SetCellValue(sheetName, cellAddr("A", row), side.Algorithm)
	f.SetCellValue(sheetName, cellAddr("B", row), true)
	f.SetCellValue(sheetName, cellAddr("C", row), side.TotalWeight)
	f.SetCellValue(sheetName, cellAddr("D", row), side.EstimatedTimeMinutes)
	f.SetCellValue(sheetName, cellAddr("E", row), side.HopCount)
	f.SetCellValue(sheetName, cellAddr("F", row), side.VisitedNodes)
	f.SetCellValue(sheetName, cellAddr("G", row), side.ComputationTimeMs)
	return row + 1
}

func (g *ExcelGenerator) writeSweepSheet(f *excelize.File, data *RouteReportData, headerStyle int) {
	sheetName := "Sweep"
	f.NewSheet(sheetName)

	row := 1
	f.SetCellValue(sheetName, cellAddr("A", row), g.Title(data))
	row += 2

	row = g.writeRequestBlock(f, sheetName, data, headerStyle, row)

	headers := []string{"Time of Day", "Day Type", "Found", "Total Weight", "Estimated Time (min)", "Hops"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddr(string(rune('A'+i)), row), h)
	}
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("F", row), headerStyle)
	row++

	for _, slot := range data.Sweep.Slots {
		f.SetCellValue(sheetName, cellAddr("A", row), slot.TimeOfDay)
		f.SetCellValue(sheetName, cellAddr("B", row), slot.DayType)
		f.SetCellValue(sheetName, cellAddr("C", row), slot.Found)
		if slot.Found {
			f.SetCellValue(sheetName, cellAddr("D", row), slot.TotalWeight)
			f.SetCellValue(sheetName, cellAddr("E", row), slot.EstimatedTimeMinutes)
			f.SetCellValue(sheetName, cellAddr("F", row), slot.HopCount)
		}
		row++
	}

	if data.Sweep.Best != nil {
		row++
		f.SetCellValue(sheetName, cellAddr("A", row), "Best Slot")
		f.SetCellValue(sheetName, cellAddr("B", row),
			fmt.Sprintf("%s / %s", data.Sweep.Best.TimeOfDay, data.Sweep.Best.DayType))
		f.SetCellValue(sheetName, cellAddr("C", row), data.Sweep.Best.TotalWeight)
	}

	f.SetColWidth(sheetName, "A", "F", 18)
}

func (g *ExcelGenerator) writeGraphSheet(f *excelize.File, data *RouteReportData, headerStyle int) {
	sheetName := "Graph"
	f.NewSheet(sheetName)

	gr := data.Graph

	f.SetCellValue(sheetName, "A1", "Metric")
	f.SetCellValue(sheetName, "B1", "Value")
	f.SetCellStyle(sheetName, "A1", "B1", headerStyle)

	metrics := []struct {
		name  string
		value any
	}{
		{"Nodes", gr.NodeCount},
		{"Edges", gr.EdgeCount},
		{"Segments", gr.SegmentCount},
		{"Components", gr.ComponentCount},
		{"Min Adjusted Weight", gr.MinAdjustedWeight},
		{"Max Adjusted Weight", gr.MaxAdjustedWeight},
		{"Average Adjusted Weight", gr.AverageAdjusted},
		{"Congested Edges", gr.CongestedEdges},
	}

	for i, m := range metrics {
		row := i + 2
		f.SetCellValue(sheetName, cellAddr("A", row), m.name)
		f.SetCellValue(sheetName, cellAddr("B", row), m.value)
	}

	f.SetColWidth(sheetName, "A", "B", 24)
}

// cellAddr формирует адрес ячейки
func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
