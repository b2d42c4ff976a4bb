package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"routing/pkg/audit"
	"routing/pkg/cache"
)

// =============================================================================
// MAP GENERATORS
// =============================================================================

// generateLineSegments creates a chain of n segments along the x axis.
// The chain is the only route, so these benchmarks measure pipeline
// overhead rather than search effort.
func generateLineSegments(n int) []SegmentInput {
	segments := make([]SegmentInput, n)
	for i := 0; i < n; i++ {
		segments[i] = SegmentInput{
			ID:       fmt.Sprintf("r%04d", i),
			StartX:   float64(i) * 10,
			StartY:   0,
			EndX:     float64(i+1) * 10,
			EndY:     0,
			RoadType: "NORMAL",
			Density:  "LOW",
		}
	}
	return segments
}

// lineBenchRequest routes across the whole chain.
func lineBenchRequest(n int) *RouteRequest {
	return &RouteRequest{
		StartX: 0, StartY: 0,
		EndX: float64(n) * 10, EndY: 0,
		Segments: generateLineSegments(n),
	}
}

// generateGridSegments creates an n x n intersection grid with seeded
// random road types and densities. Grids keep the search honest: many
// candidate paths of equal hop count, separated only by weight.
func generateGridSegments(n int) []SegmentInput {
	r := rand.New(rand.NewSource(42))

	var segments []SegmentInput
	pick := func() (string, string) {
		roadType := "NORMAL"
		switch v := r.Float64(); {
		case v < 0.2:
			roadType = "HIGHWAY"
		case v < 0.5:
			roadType = "RESIDENTIAL"
		}
		density := "CONGESTED"
		switch v := r.Float64(); {
		case v < 0.4:
			density = "LOW"
		case v < 0.75:
			density = "MEDIUM"
		case v < 0.92:
			density = "HIGH"
		}
		return roadType, density
	}

	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			x := float64(col) * 10
			y := float64(row) * 10

			if col < n-1 {
				roadType, density := pick()
				segments = append(segments, SegmentInput{
					ID:       fmt.Sprintf("h%04d", len(segments)),
					StartX:   x,
					StartY:   y,
					EndX:     x + 10,
					EndY:     y,
					RoadType: roadType,
					Density:  density,
				})
			}
			if row < n-1 {
				roadType, density := pick()
				segments = append(segments, SegmentInput{
					ID:       fmt.Sprintf("v%04d", len(segments)),
					StartX:   x,
					StartY:   y,
					EndX:     x,
					EndY:     y + 10,
					RoadType: roadType,
					Density:  density,
				})
			}
		}
	}
	return segments
}

// gridBenchRequest routes corner to corner across the grid.
func gridBenchRequest(n int) *RouteRequest {
	far := float64(n-1) * 10
	return &RouteRequest{
		StartX: 0, StartY: 0,
		EndX: far, EndY: far,
		Segments: generateGridSegments(n),
	}
}

// generateGridEvents places count active events on interior
// intersections of an n x n grid.
func generateGridEvents(n, count int) []EventInput {
	r := rand.New(rand.NewSource(42))
	endDate := time.Now().Add(24 * time.Hour)

	events := make([]EventInput, count)
	for i := range events {
		col := 1 + r.Intn(n-2)
		row := 1 + r.Intn(n-2)
		impact := "MEDIUM"
		switch v := r.Float64(); {
		case v < 0.4:
			impact = "LOW"
		case v > 0.8:
			impact = "HIGH"
		}
		events[i] = EventInput{
			ID:      fmt.Sprintf("e%02d", i),
			X:       float64(col) * 10,
			Y:       float64(row) * 10,
			Impact:  impact,
			Status:  "ONGOING",
			EndDate: endDate,
		}
	}
	return events
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func benchService() *RouteService {
	return NewRouteService("bench", testEngineConfig(), nil, nil, nil, &audit.NoopLogger{}, nil)
}

// computeBench runs ComputeRoute b.N times against one request.
func computeBench(b *testing.B, req *RouteRequest) {
	svc := benchService()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resp, err := svc.ComputeRoute(ctx, req)
		if err != nil {
			b.Fatalf("ComputeRoute failed: %v", err)
		}
		if len(resp.NodePath) == 0 {
			b.Fatal("ComputeRoute returned an empty path")
		}
	}
}

// compareBench runs CompareAlgorithms b.N times against one request.
func compareBench(b *testing.B, req *CompareRequest) {
	svc := benchService()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resp, err := svc.CompareAlgorithms(ctx, req)
		if err != nil {
			b.Fatalf("CompareAlgorithms failed: %v", err)
		}
		if resp.Dijkstra == nil || resp.Astar == nil {
			b.Fatal("CompareAlgorithms lost a side")
		}
	}
}

// sweepBench runs SweepDepartures b.N times against one request. Every
// iteration recomputes all eight departure slots.
func sweepBench(b *testing.B, req *SweepRequest) {
	svc := benchService()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resp, err := svc.SweepDepartures(ctx, req)
		if err != nil {
			b.Fatalf("SweepDepartures failed: %v", err)
		}
		if resp.Best == nil {
			b.Fatal("SweepDepartures found no usable slot")
		}
	}
}

// exportBench runs ExportRoute b.N times in the given format.
func exportBench(b *testing.B, format string, req *RouteRequest) {
	svc := benchService()
	ctx := context.Background()
	exportReq := &ExportRequest{
		RouteRequest: *req,
		Mode:         ExportModeRoute,
		Format:       format,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := svc.ExportRoute(ctx, exportReq)
		if err != nil {
			b.Fatalf("ExportRoute failed: %v", err)
		}
		if res.SizeBytes == 0 {
			b.Fatal("ExportRoute produced an empty report")
		}
	}
}

// =============================================================================
// COMPUTE BENCHMARKS
// =============================================================================

func BenchmarkComputeRoute_Line_100(b *testing.B) {
	computeBench(b, lineBenchRequest(100))
}

func BenchmarkComputeRoute_Line_500(b *testing.B) {
	computeBench(b, lineBenchRequest(500))
}

func BenchmarkComputeRoute_Line_1000(b *testing.B) {
	computeBench(b, lineBenchRequest(1000))
}

func BenchmarkComputeRoute_Grid_10x10(b *testing.B) {
	computeBench(b, gridBenchRequest(10))
}

func BenchmarkComputeRoute_Grid_20x20(b *testing.B) {
	computeBench(b, gridBenchRequest(20))
}

func BenchmarkComputeRoute_Grid_30x30(b *testing.B) {
	computeBench(b, gridBenchRequest(30))
}

func BenchmarkComputeRoute_Grid_50x50(b *testing.B) {
	computeBench(b, gridBenchRequest(50))
}

func BenchmarkComputeRoute_Grid_20x20_Dijkstra(b *testing.B) {
	req := gridBenchRequest(20)
	req.Algorithm = "dijkstra"
	computeBench(b, req)
}

func BenchmarkComputeRoute_Grid_20x20_EveningRain(b *testing.B) {
	req := gridBenchRequest(20)
	req.Simulation = &SimulationParams{
		TimeOfDay:        "EVENING",
		DayType:          "WEEKDAY",
		WeatherCondition: "RAIN",
		RoutingStrategy:  "AVOID_CONGESTION",
	}
	computeBench(b, req)
}

func BenchmarkComputeRoute_Grid_20x20_Events_10(b *testing.B) {
	req := gridBenchRequest(20)
	req.Events = generateGridEvents(20, 10)
	computeBench(b, req)
}

func BenchmarkComputeRoute_Grid_20x20_Events_50(b *testing.B) {
	req := gridBenchRequest(20)
	req.Events = generateGridEvents(20, 50)
	computeBench(b, req)
}

// Повторный запрос того же маршрута: измеряем путь через кэш, а не поиск.
func BenchmarkComputeRoute_CacheHit_Grid_20x20(b *testing.B) {
	routeCache := cache.NewRouteCache(cache.NewMemoryCache(nil), time.Hour)
	svc := NewRouteService("bench", testEngineConfig(), nil, routeCache, nil, &audit.NoopLogger{}, nil)
	ctx := context.Background()
	req := gridBenchRequest(20)

	if _, err := svc.ComputeRoute(ctx, req); err != nil {
		b.Fatalf("warmup ComputeRoute failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resp, err := svc.ComputeRoute(ctx, req)
		if err != nil {
			b.Fatalf("ComputeRoute failed: %v", err)
		}
		if resp.Metadata == nil || !resp.Metadata.Cached {
			b.Fatal("expected a cache hit after warmup")
		}
	}
}

// =============================================================================
// COMPARE BENCHMARKS
// =============================================================================

func BenchmarkCompareAlgorithms_Line_500(b *testing.B) {
	line := lineBenchRequest(500)
	compareBench(b, &CompareRequest{
		StartX: line.StartX, StartY: line.StartY,
		EndX: line.EndX, EndY: line.EndY,
		Segments: line.Segments,
	})
}

func BenchmarkCompareAlgorithms_Grid_10x10(b *testing.B) {
	grid := gridBenchRequest(10)
	compareBench(b, &CompareRequest{
		StartX: grid.StartX, StartY: grid.StartY,
		EndX: grid.EndX, EndY: grid.EndY,
		Segments: grid.Segments,
	})
}

func BenchmarkCompareAlgorithms_Grid_20x20(b *testing.B) {
	grid := gridBenchRequest(20)
	compareBench(b, &CompareRequest{
		StartX: grid.StartX, StartY: grid.StartY,
		EndX: grid.EndX, EndY: grid.EndY,
		Segments: grid.Segments,
	})
}

func BenchmarkCompareAlgorithms_Grid_30x30(b *testing.B) {
	grid := gridBenchRequest(30)
	compareBench(b, &CompareRequest{
		StartX: grid.StartX, StartY: grid.StartY,
		EndX: grid.EndX, EndY: grid.EndY,
		Segments: grid.Segments,
	})
}

// =============================================================================
// SWEEP BENCHMARKS
// =============================================================================

func BenchmarkSweepDepartures_Line_100(b *testing.B) {
	line := lineBenchRequest(100)
	sweepBench(b, &SweepRequest{
		StartX: line.StartX, StartY: line.StartY,
		EndX: line.EndX, EndY: line.EndY,
		Segments: line.Segments,
	})
}

func BenchmarkSweepDepartures_Grid_10x10(b *testing.B) {
	grid := gridBenchRequest(10)
	sweepBench(b, &SweepRequest{
		StartX: grid.StartX, StartY: grid.StartY,
		EndX: grid.EndX, EndY: grid.EndY,
		Segments: grid.Segments,
	})
}

func BenchmarkSweepDepartures_Grid_20x20(b *testing.B) {
	grid := gridBenchRequest(20)
	sweepBench(b, &SweepRequest{
		StartX: grid.StartX, StartY: grid.StartY,
		EndX: grid.EndX, EndY: grid.EndY,
		Segments: grid.Segments,
	})
}

// =============================================================================
// EXPORT BENCHMARKS
// =============================================================================

func BenchmarkExportRoute_JSON_Grid_10x10(b *testing.B) {
	exportBench(b, "json", gridBenchRequest(10))
}

func BenchmarkExportRoute_CSV_Grid_10x10(b *testing.B) {
	exportBench(b, "csv", gridBenchRequest(10))
}

func BenchmarkExportRoute_Markdown_Grid_10x10(b *testing.B) {
	exportBench(b, "markdown", gridBenchRequest(10))
}

func BenchmarkExportRoute_Excel_Grid_10x10(b *testing.B) {
	exportBench(b, "excel", gridBenchRequest(10))
}

func BenchmarkExportRoute_PDF_Grid_10x10(b *testing.B) {
	exportBench(b, "pdf", gridBenchRequest(10))
}
