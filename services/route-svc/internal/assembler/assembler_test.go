package assembler

import (
	"testing"

	"routing/pkg/apperror"
	"routing/pkg/config"
	"routing/pkg/domain"
	"routing/services/route-svc/internal/algorithms"
	"routing/services/route-svc/internal/graph"
)

func testEngineConfig() *config.EngineConfig {
	return &config.EngineConfig{
		CoordEpsilon: 1e-6,
		WeightFloor:  1e-9,
		RoadType:     config.RoadTypeFactors{Highway: 0.8, Normal: 1.0, Residential: 1.3},
		Density:      config.DensityFactors{Low: 1.0, Medium: 1.3, High: 1.7, Congested: 2.5},
	}
}

func chainSegments() []domain.RoadSegment {
	return []domain.RoadSegment{
		{ID: "main-1", StartX: 0, StartY: 0, EndX: 1, EndY: 0, RoadType: domain.RoadTypeNormal, Density: domain.DensityLow},
		{ID: "main-2", StartX: 1, StartY: 0, EndX: 2, EndY: 0, RoadType: domain.RoadTypeHighway, Density: domain.DensityMedium},
	}
}

func searchChain(t *testing.T) (*domain.Graph, *algorithms.Result, []domain.RoadSegment) {
	t.Helper()
	segments := chainSegments()
	g, err := graph.NewBuilder(testEngineConfig()).Build(segments)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	result := algorithms.Dijkstra(g, 1, 3)
	if !result.Found {
		t.Fatal("path should be found")
	}
	return g, result, segments
}

func TestAssemble_ParallelSequences(t *testing.T) {
	g, raw, segments := searchChain(t)

	result, err := Assemble(g, raw.Path, raw.TotalWeight, segments)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if len(result.NodePath) != 3 {
		t.Errorf("NodePath length = %d, want 3", len(result.NodePath))
	}
	if len(result.CoordinatePath) != 3 {
		t.Errorf("CoordinatePath length = %d, want 3", len(result.CoordinatePath))
	}
	if len(result.RoadPath) != 2 {
		t.Errorf("RoadPath length = %d, want 2", len(result.RoadPath))
	}
	if result.HopCount() != 2 {
		t.Errorf("HopCount() = %d, want 2", result.HopCount())
	}
	if !domain.FloatEquals(result.TotalWeight, raw.TotalWeight) {
		t.Errorf("TotalWeight = %v, want %v", result.TotalWeight, raw.TotalWeight)
	}
}

func TestAssemble_RoadAttributes(t *testing.T) {
	g, raw, segments := searchChain(t)

	result, err := Assemble(g, raw.Path, raw.TotalWeight, segments)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	first := result.RoadPath[0]
	if first.ID != "main-1" {
		t.Errorf("RoadPath[0].ID = %q, want %q", first.ID, "main-1")
	}
	if !first.Known {
		t.Error("RoadPath[0] should be known")
	}
	if first.RoadType != domain.RoadTypeNormal {
		t.Errorf("RoadPath[0].RoadType = %v, want normal", first.RoadType)
	}
	if first.Start != (domain.Coordinate{X: 0, Y: 0}) || first.End != (domain.Coordinate{X: 1, Y: 0}) {
		t.Errorf("RoadPath[0] geometry = %+v -> %+v", first.Start, first.End)
	}

	second := result.RoadPath[1]
	if second.ID != "main-2" {
		t.Errorf("RoadPath[1].ID = %q, want %q", second.ID, "main-2")
	}
	if second.RoadType != domain.RoadTypeHighway || second.Density != domain.DensityMedium {
		t.Errorf("RoadPath[1] attributes = %v/%v, want highway/medium", second.RoadType, second.Density)
	}
}

func TestAssemble_CoordinatesFollowNodes(t *testing.T) {
	g, raw, segments := searchChain(t)

	result, err := Assemble(g, raw.Path, raw.TotalWeight, segments)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	want := []domain.Coordinate{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	for i, coord := range result.CoordinatePath {
		if coord != want[i] {
			t.Errorf("CoordinatePath[%d] = %+v, want %+v", i, coord, want[i])
		}
	}
}

func TestAssemble_UnknownRoadKeepsID(t *testing.T) {
	g, raw, segments := searchChain(t)

	// Drop the second segment from the catalog passed to the assembler.
	result, err := Assemble(g, raw.Path, raw.TotalWeight, segments[:1])
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	second := result.RoadPath[1]
	if second.ID != "main-2" {
		t.Errorf("RoadPath[1].ID = %q, want %q", second.ID, "main-2")
	}
	if second.Known {
		t.Error("RoadPath[1] should be unknown")
	}
	if second.Start != (domain.Coordinate{}) || second.End != (domain.Coordinate{}) {
		t.Error("unknown road should carry no geometry")
	}
	if second.RoadType != domain.RoadTypeUnspecified || second.Density != domain.DensityUnspecified {
		t.Error("unknown road should carry no attributes")
	}
}

func TestAssemble_TrivialPath(t *testing.T) {
	g, _, segments := searchChain(t)

	result, err := Assemble(g, []int64{2}, 0, segments)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if !result.IsTrivial() {
		t.Error("single-node result should be trivial")
	}
	if len(result.CoordinatePath) != 1 {
		t.Errorf("CoordinatePath length = %d, want 1", len(result.CoordinatePath))
	}
	if result.TotalWeight != 0 {
		t.Errorf("TotalWeight = %v, want 0", result.TotalWeight)
	}
}

func TestAssemble_ChoosesCheapestParallelRoad(t *testing.T) {
	// Two roads connect the same pair of intersections; the search relaxes
	// the cheaper one, so the assembler must report it.
	segments := []domain.RoadSegment{
		{ID: "slow", StartX: 0, StartY: 0, EndX: 1, EndY: 0, RoadType: domain.RoadTypeResidential, Density: domain.DensityCongested},
		{ID: "fast", StartX: 0, StartY: 0, EndX: 1, EndY: 0, RoadType: domain.RoadTypeHighway, Density: domain.DensityLow},
	}
	g, err := graph.NewBuilder(testEngineConfig()).Build(segments)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	raw := algorithms.Dijkstra(g, 1, 2)
	if !raw.Found {
		t.Fatal("path should be found")
	}

	result, err := Assemble(g, raw.Path, raw.TotalWeight, segments)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if len(result.RoadPath) != 1 {
		t.Fatalf("RoadPath length = %d, want 1", len(result.RoadPath))
	}
	if result.RoadPath[0].ID != "fast" {
		t.Errorf("RoadPath[0].ID = %q, want %q", result.RoadPath[0].ID, "fast")
	}
}

func TestAssemble_EmptyPath(t *testing.T) {
	g, _, segments := searchChain(t)

	_, err := Assemble(g, nil, 0, segments)
	if err == nil {
		t.Fatal("Assemble with empty path should fail")
	}
	if !apperror.Is(err, apperror.CodeInternal) {
		t.Errorf("error code = %v, want %v", apperror.Code(err), apperror.CodeInternal)
	}
}

func TestAssemble_UnknownNodeInPath(t *testing.T) {
	g, _, segments := searchChain(t)

	_, err := Assemble(g, []int64{1, 99}, 1, segments)
	if err == nil {
		t.Fatal("Assemble with unknown node should fail")
	}
	if !apperror.Is(err, apperror.CodeInternal) {
		t.Errorf("error code = %v, want %v", apperror.Code(err), apperror.CodeInternal)
	}
}
