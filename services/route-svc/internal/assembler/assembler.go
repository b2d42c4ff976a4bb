// Package assembler turns raw node paths into full path results.
//
// The assembler walks consecutive node pairs of a search result, resolves
// the edge actually taken between each pair and decorates it with the
// attributes of the originating road segment. The output keeps three
// parallel sequences (nodes, roads, coordinates) aligned by construction.
package assembler

import (
	"routing/pkg/apperror"
	"routing/pkg/domain"
)

// Assemble builds a PathResult from a raw search path.
//
// Road attributes come from the segment list the graph was built from,
// matched by road ID. An edge whose road ID has no matching segment still
// appears in the result as a record carrying only the ID; the path never
// silently drops a hop. Parallel roads between the same node pair resolve
// to the cheapest edge, matching the choice the search relaxed.
//
// A single-node path (start equals end) produces a trivial result: one
// node, one coordinate, no roads, zero weight.
//
// Parameters:
//   - g: the graph the search ran on
//   - path: node IDs from start to end inclusive, must be non-empty
//   - totalWeight: accumulated weight reported by the search
//   - segments: original road segments for attribute lookup
//
// Returns:
//   - the assembled result, or an internal error when the path references
//     nodes or edges missing from the graph
func Assemble(g *domain.Graph, path []int64, totalWeight float64, segments []domain.RoadSegment) (*domain.PathResult, error) {
	if g == nil {
		return nil, apperror.New(apperror.CodeInternal, "assemble called without graph")
	}
	if len(path) == 0 {
		return nil, apperror.New(apperror.CodeInternal, "assemble called with empty path")
	}

	catalog := make(map[string]*domain.RoadSegment, len(segments))
	for i := range segments {
		catalog[segments[i].ID] = &segments[i]
	}

	result := &domain.PathResult{
		NodePath:       append([]int64(nil), path...),
		RoadPath:       make([]domain.RoadInfo, 0, len(path)-1),
		CoordinatePath: make([]domain.Coordinate, 0, len(path)),
		TotalWeight:    totalWeight,
	}

	for _, id := range path {
		node, ok := g.GetNode(id)
		if !ok {
			return nil, apperror.New(apperror.CodeInternal, "path references unknown node").
				WithDetails("node_id", id)
		}
		result.CoordinatePath = append(result.CoordinatePath, domain.Coordinate{X: node.X, Y: node.Y})
	}

	for i := 0; i+1 < len(path); i++ {
		edge, ok := g.FindEdge(path[i], path[i+1])
		if !ok {
			return nil, apperror.New(apperror.CodeInternal, "path references missing edge").
				WithDetails("from", path[i]).
				WithDetails("to", path[i+1])
		}
		result.RoadPath = append(result.RoadPath, roadInfo(edge, catalog))
	}

	return result, nil
}

// roadInfo resolves the road attributes of a traversed edge.
func roadInfo(edge *domain.Edge, catalog map[string]*domain.RoadSegment) domain.RoadInfo {
	seg, ok := catalog[edge.RoadID]
	if !ok {
		return domain.RoadInfo{ID: edge.RoadID}
	}
	return domain.RoadInfo{
		ID:       seg.ID,
		Start:    domain.Coordinate{X: seg.StartX, Y: seg.StartY},
		End:      domain.Coordinate{X: seg.EndX, Y: seg.EndY},
		RoadType: seg.RoadType,
		Density:  seg.Density,
		Known:    true,
	}
}
