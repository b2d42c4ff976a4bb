package domain

// ReconstructPath восстанавливает путь из parent map от start до end.
// Возвращает nil, если end недостижим.
func ReconstructPath(parent map[int64]int64, start, end int64) []int64 {
	if start == end {
		return []int64{start}
	}
	if _, exists := parent[end]; !exists {
		return nil
	}

	var reversed []int64
	current := end
	for current != start {
		reversed = append(reversed, current)
		p, exists := parent[current]
		if !exists || p == -1 {
			return nil
		}
		current = p
	}
	reversed = append(reversed, start)

	path := make([]int64, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}

// CalculatePathWeight вычисляет суммарный скорректированный вес пути
func CalculatePathWeight(g *Graph, path []int64) float64 {
	if len(path) < 2 {
		return 0
	}

	var weight float64
	for i := 0; i < len(path)-1; i++ {
		if edge, ok := g.FindEdge(path[i], path[i+1]); ok {
			weight += edge.AdjustedWeight
		}
	}
	return weight
}

// CalculatePathLength вычисляет геометрическую длину пути
func CalculatePathLength(g *Graph, path []int64) float64 {
	if len(path) < 2 {
		return 0
	}

	var length float64
	for i := 0; i < len(path)-1; i++ {
		if edge, ok := g.FindEdge(path[i], path[i+1]); ok {
			length += edge.Length
		}
	}
	return length
}
