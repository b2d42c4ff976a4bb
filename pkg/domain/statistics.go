package domain

// GraphStatistics статистика маршрутного графа
type GraphStatistics struct {
	NodeCount         int64
	EdgeCount         int64
	SegmentCount      int64
	ComponentCount    int64
	TotalLength       float64
	AverageEdgeLength float64
	AverageDegree     float64
	MaxDegree         int
	MinDegree         int
}

// WeightStatistics статистика весов рёбер после поправок
type WeightStatistics struct {
	MinBaseWeight     float64
	MaxBaseWeight     float64
	MinAdjustedWeight float64
	MaxAdjustedWeight float64
	AverageAdjusted   float64
	CongestedEdges    int64
}

// CalculateGraphStatistics вычисляет статистику графа
func CalculateGraphStatistics(g *Graph) *GraphStatistics {
	stats := &GraphStatistics{
		NodeCount: int64(len(g.Nodes)),
		EdgeCount: int64(len(g.EdgeList)),
		MinDegree: int(^uint(0) >> 1), // MaxInt
	}

	var totalLength float64
	degree := make(map[int64]int)
	roads := make(map[string]bool)

	for _, edge := range g.EdgeList {
		totalLength += edge.Length
		roads[edge.RoadID] = true
		degree[edge.From]++
	}
	stats.SegmentCount = int64(len(roads))

	if len(degree) > 0 {
		totalDegree := 0
		for _, d := range degree {
			totalDegree += d
			if d > stats.MaxDegree {
				stats.MaxDegree = d
			}
			if d < stats.MinDegree {
				stats.MinDegree = d
			}
		}
		stats.AverageDegree = float64(totalDegree) / float64(len(degree))
	}
	if stats.MinDegree == int(^uint(0)>>1) {
		stats.MinDegree = 0
	}

	stats.TotalLength = totalLength
	if stats.EdgeCount > 0 {
		stats.AverageEdgeLength = totalLength / float64(stats.EdgeCount)
	}

	stats.ComponentCount = int64(len(FindConnectedComponents(g)))

	return stats
}

// CalculateWeightStatistics вычисляет статистику весов рёбер
func CalculateWeightStatistics(g *Graph) *WeightStatistics {
	stats := &WeightStatistics{}
	if len(g.EdgeList) == 0 {
		return stats
	}

	stats.MinBaseWeight = Infinity
	stats.MinAdjustedWeight = Infinity

	var totalAdjusted float64
	for _, edge := range g.EdgeList {
		if edge.BaseWeight < stats.MinBaseWeight {
			stats.MinBaseWeight = edge.BaseWeight
		}
		if edge.BaseWeight > stats.MaxBaseWeight {
			stats.MaxBaseWeight = edge.BaseWeight
		}
		if edge.AdjustedWeight < stats.MinAdjustedWeight {
			stats.MinAdjustedWeight = edge.AdjustedWeight
		}
		if edge.AdjustedWeight > stats.MaxAdjustedWeight {
			stats.MaxAdjustedWeight = edge.AdjustedWeight
		}
		totalAdjusted += edge.AdjustedWeight

		if edge.Density == DensityHigh || edge.Density == DensityCongested {
			stats.CongestedEdges++
		}
	}
	stats.AverageAdjusted = totalAdjusted / float64(len(g.EdgeList))

	return stats
}
