// This file implements geometry lookups over a built graph:
//   - NearestNode: snaps arbitrary coordinates to the closest graph node
//
// Lookups scan NodeList, which preserves insertion order, so distance ties
// always resolve to the earliest created node.
package graph

import (
	"math"

	"routing/pkg/apperror"
	"routing/pkg/domain"
)

// =============================================================================
// Nearest Node Lookup
// =============================================================================

// NearestNode returns the ID of the graph node closest to (x, y) by
// Euclidean distance.
//
// The scan visits nodes in creation order and only replaces the current best
// on a strictly smaller distance, so equidistant nodes resolve to the first
// one encountered. Arbitrarily distant query points still snap to a node;
// there is no cutoff radius.
//
// Parameters:
//   - g: the graph to search
//   - x, y: query coordinates
//
// Returns:
//   - the nearest node ID
//   - apperror.ErrInvalidCoordinates when x or y is NaN or infinite
//   - apperror.ErrNotFound when the graph has no nodes
//
// Example:
//
//	startID, err := graph.NearestNode(g, req.StartX, req.StartY)
//	if err != nil {
//	    return nil, err
//	}
func NearestNode(g *domain.Graph, x, y float64) (int64, error) {
	if !domain.IsFinite(x) || !domain.IsFinite(y) {
		return 0, apperror.ErrInvalidCoordinates
	}
	if g == nil || len(g.NodeList) == 0 {
		return 0, apperror.ErrNotFound
	}

	bestID := int64(0)
	bestDist := math.Inf(1)
	for _, node := range g.NodeList {
		d := domain.Distance(node.X, node.Y, x, y)
		if d < bestDist {
			bestDist = d
			bestID = node.ID
		}
	}
	return bestID, nil
}
