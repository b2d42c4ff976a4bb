package export

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestNewCSVGenerator(t *testing.T) {
	g := NewCSVGenerator(testExportConfig())
	if g == nil {
		t.Fatal("NewCSVGenerator should not return nil")
	}
	if g.Format() != FormatCSV {
		t.Errorf("Format() = %v, want csv", g.Format())
	}
}

func TestCSVGenerator_Generate_Route(t *testing.T) {
	g := NewCSVGenerator(testExportConfig())

	result, err := g.Generate(context.Background(), routeReportFixture())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	csv := string(result)

	if !strings.Contains(csv, "Route Report") {
		t.Error("CSV should contain the report title")
	}
	if !strings.Contains(csv, "23.0000") {
		t.Error("CSV should contain the total weight")
	}
	if !strings.Contains(csv, "46 min") {
		t.Error("CSV should contain the estimated time")
	}
	if !strings.Contains(csv, "r1") || !strings.Contains(csv, "r2") {
		t.Error("CSV should list the road path")
	}
	if !strings.Contains(csv, "morning") {
		t.Error("CSV should echo the simulation context")
	}
}

func TestCSVGenerator_Generate_Comparison(t *testing.T) {
	g := NewCSVGenerator(testExportConfig())

	result, err := g.Generate(context.Background(), comparisonReportFixture())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	csv := string(result)

	if !strings.Contains(csv, "Algorithm Comparison") {
		t.Error("CSV should contain the comparison section")
	}
	if !strings.Contains(csv, "dijkstra") || !strings.Contains(csv, "astar") {
		t.Error("CSV should contain both algorithm rows")
	}
	if !strings.Contains(csv, "Weight Delta") {
		t.Error("CSV should contain the weight delta")
	}
}

func TestCSVGenerator_Generate_Sweep(t *testing.T) {
	g := NewCSVGenerator(testExportConfig())

	result, err := g.Generate(context.Background(), sweepReportFixture())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	csv := string(result)

	if !strings.Contains(csv, "Departure Sweep") {
		t.Error("CSV should contain the sweep section")
	}
	if !strings.Contains(csv, "Best Slot") {
		t.Error("CSV should contain the best slot")
	}
	if !strings.Contains(csv, "weekend") {
		t.Error("CSV should contain the slot day types")
	}
}

func TestCSVGenerator_Generate_NoRoute(t *testing.T) {
	g := NewCSVGenerator(testExportConfig())

	data := routeReportFixture()
	data.Route = nil

	result, err := g.Generate(context.Background(), data)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !strings.Contains(string(result), "No route data") {
		t.Error("CSV should indicate missing route data")
	}
}

func TestCSVGenerator_Generate_RoadLimit(t *testing.T) {
	cfg := testExportConfig()
	cfg.MaxRoadsInTable = 1
	g := NewCSVGenerator(cfg)

	result, err := g.Generate(context.Background(), routeReportFixture())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	csv := string(result)

	if !strings.Contains(csv, "1 more roads") {
		t.Error("CSV should truncate the road table at the configured limit")
	}
	if strings.Contains(csv, "\"r2\"") {
		t.Error("roads past the limit should not be listed")
	}
}

func TestCSVGenerator_Generate_ExcludeRoads(t *testing.T) {
	g := NewCSVGenerator(testExportConfig())

	data := routeReportFixture()
	data.Options = &Options{ExcludeRoads: true}

	result, err := g.Generate(context.Background(), data)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if strings.Contains(string(result), "Road Path") {
		t.Error("road table should be omitted when excluded")
	}
}

func TestCSVGenerator_Generate_Warnings(t *testing.T) {
	g := NewCSVGenerator(testExportConfig())

	data := routeReportFixture()
	data.Warnings = []string{"segment loop has zero length"}

	result, err := g.Generate(context.Background(), data)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !strings.Contains(string(result), "segment loop has zero length") {
		t.Error("CSV should list warnings")
	}
}

func TestCSVGenerator_Generate_ManyRoads(t *testing.T) {
	g := NewCSVGenerator(testExportConfig())

	data := routeReportFixture()
	data.Route.Roads = nil
	for i := 0; i < 60; i++ {
		data.Route.Roads = append(data.Route.Roads, RoadRow{
			ID:     fmt.Sprintf("seg-%03d", i),
			StartX: float64(i), EndX: float64(i + 1),
			RoadType: "normal", Density: "low", Known: true,
		})
	}

	result, err := g.Generate(context.Background(), data)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	csv := string(result)
	if !strings.Contains(csv, "10 more roads") {
		t.Error("CSV should report the overflow count at the default limit")
	}
}
