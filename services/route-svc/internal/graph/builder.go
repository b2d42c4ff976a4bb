// Package graph builds routable street graphs from raw road segments.
//
// This file implements graph construction:
//   - Builder: converts a segment list into a weighted directed graph
//   - Endpoint deduplication with an epsilon tolerance
//   - Base weight computation from segment length, road type and density
//
// Construction is fully deterministic: nodes are numbered in discovery order
// and edges are appended in segment order, so the same segment list always
// produces the same graph.
package graph

import (
	"math"

	"routing/pkg/apperror"
	"routing/pkg/config"
	"routing/pkg/domain"
)

// =============================================================================
// Builder
// =============================================================================

// Builder constructs weighted directed graphs from road segments.
//
// Node identity is positional: endpoints closer than the coordinate epsilon
// collapse into a single node, and the first encountered coordinates win.
// Every segment contributes exactly two directed edges (one per direction),
// so the resulting graph always satisfies EdgeCount == 2*len(segments).
//
// The builder expects a validated engine configuration; factor tables are
// read as-is. A nil configuration falls back to neutral factors and the
// domain epsilon constants, which is convenient in tests.
type Builder struct {
	engine *config.EngineConfig
}

// NewBuilder creates a Builder backed by the given engine configuration.
func NewBuilder(engine *config.EngineConfig) *Builder {
	return &Builder{engine: engine}
}

// Build converts road segments into a directed graph.
//
// Each segment produces two directed edges with identical base weight:
//
//	baseWeight = euclideanLength * roadTypeFactor * densityFactor
//
// Adjusted weights start equal to base weights; a search over a freshly
// built graph therefore runs on base weights until a weight model is
// applied. Weights never drop below the configured floor, so a zero-length
// segment still yields traversable edges.
//
// Coordinates are assumed finite; the request boundary rejects non-finite
// values before they reach the builder.
//
// Parameters:
//   - segments: road segments to convert, in authoring order
//
// Returns:
//   - the constructed graph, or an error when the list is nil or empty
func (b *Builder) Build(segments []domain.RoadSegment) (*domain.Graph, error) {
	if segments == nil {
		return nil, apperror.ErrNilSegments
	}
	if len(segments) == 0 {
		return nil, apperror.ErrEmptyGraph
	}

	g := domain.NewGraph()
	index := newNodeIndex(b.coordEpsilon())

	for i := range segments {
		seg := &segments[i]
		from := index.intern(g, seg.StartX, seg.StartY)
		to := index.intern(g, seg.EndX, seg.EndY)
		weight := b.baseWeight(seg)

		g.AddEdge(&domain.Edge{
			From:           from,
			To:             to,
			RoadID:         seg.ID,
			Length:         seg.Length(),
			RoadType:       seg.RoadType,
			Density:        seg.Density,
			BaseWeight:     weight,
			AdjustedWeight: weight,
		})
		g.AddEdge(&domain.Edge{
			From:           to,
			To:             from,
			RoadID:         seg.ID,
			Length:         seg.Length(),
			RoadType:       seg.RoadType,
			Density:        seg.Density,
			BaseWeight:     weight,
			AdjustedWeight: weight,
		})
	}

	return g, nil
}

// baseWeight computes the static cost of traversing a segment.
func (b *Builder) baseWeight(seg *domain.RoadSegment) float64 {
	w := seg.Length() * b.roadTypeFactor(seg.RoadType) * b.densityFactor(seg.Density)
	if floor := b.weightFloor(); w < floor {
		w = floor
	}
	return w
}

func (b *Builder) coordEpsilon() float64 {
	if b.engine != nil && b.engine.CoordEpsilon > 0 {
		return b.engine.CoordEpsilon
	}
	return domain.CoordEpsilon
}

func (b *Builder) weightFloor() float64 {
	if b.engine != nil && b.engine.WeightFloor > 0 {
		return b.engine.WeightFloor
	}
	return domain.WeightFloor
}

// roadTypeFactor maps a road type to its weight multiplier.
// Unspecified types use a neutral multiplier.
func (b *Builder) roadTypeFactor(t domain.RoadType) float64 {
	if b.engine == nil {
		return 1.0
	}
	switch t {
	case domain.RoadTypeHighway:
		return b.engine.RoadType.Highway
	case domain.RoadTypeNormal:
		return b.engine.RoadType.Normal
	case domain.RoadTypeResidential:
		return b.engine.RoadType.Residential
	default:
		return 1.0
	}
}

// densityFactor maps a traffic density to its weight multiplier.
// Unspecified densities use a neutral multiplier.
func (b *Builder) densityFactor(d domain.Density) float64 {
	if b.engine == nil {
		return 1.0
	}
	switch d {
	case domain.DensityLow:
		return b.engine.Density.Low
	case domain.DensityMedium:
		return b.engine.Density.Medium
	case domain.DensityHigh:
		return b.engine.Density.High
	case domain.DensityCongested:
		return b.engine.Density.Congested
	default:
		return 1.0
	}
}

// =============================================================================
// Endpoint Deduplication
// =============================================================================

// nodeIndex interns segment endpoints into graph nodes.
//
// Coordinates are hashed onto a grid whose cell size equals the epsilon, so a
// lookup only scans the 3x3 neighborhood of the target cell. Among candidates
// within the epsilon the lowest node ID wins, which is the first endpoint
// encountered at that position.
type nodeIndex struct {
	epsilon float64
	buckets map[gridCell][]int64
	nextID  int64
}

// gridCell addresses one bucket of the coordinate grid.
type gridCell struct {
	x int64
	y int64
}

func newNodeIndex(epsilon float64) *nodeIndex {
	return &nodeIndex{
		epsilon: epsilon,
		buckets: make(map[gridCell][]int64),
		nextID:  1,
	}
}

// intern returns the node ID for the given coordinates, creating a new node
// in the graph when no existing node lies within the epsilon.
func (ix *nodeIndex) intern(g *domain.Graph, x, y float64) int64 {
	cell := ix.cellFor(x, y)

	best := int64(-1)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			neighbors := ix.buckets[gridCell{x: cell.x + dx, y: cell.y + dy}]
			for _, id := range neighbors {
				node, ok := g.GetNode(id)
				if !ok {
					continue
				}
				if domain.Distance(node.X, node.Y, x, y) <= ix.epsilon {
					if best == -1 || id < best {
						best = id
					}
				}
			}
		}
	}
	if best != -1 {
		return best
	}

	id := ix.nextID
	ix.nextID++
	g.AddNode(&domain.Node{ID: id, X: x, Y: y})
	ix.buckets[cell] = append(ix.buckets[cell], id)
	return id
}

func (ix *nodeIndex) cellFor(x, y float64) gridCell {
	return gridCell{
		x: int64(math.Floor(x / ix.epsilon)),
		y: int64(math.Floor(y / ix.epsilon)),
	}
}
