package domain

// BFSReachable возвращает все вершины, достижимые из start по
// направленным рёбрам
func BFSReachable(g *Graph, start int64) map[int64]bool {
	visited := make(map[int64]bool)
	if _, ok := g.Nodes[start]; !ok {
		return visited
	}

	queue := []int64{start}
	visited[start] = true

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, edge := range g.Outgoing(u) {
			if visited[edge.To] {
				continue
			}
			visited[edge.To] = true
			queue = append(queue, edge.To)
		}
	}

	return visited
}

// IsConnected проверяет, существует ли путь от from к to
func IsConnected(g *Graph, from, to int64) bool {
	reachable := BFSReachable(g, from)
	return reachable[to]
}

// FindConnectedComponents находит компоненты связности. Рёбра
// рассматриваются как неориентированные: каждый отрезок дороги
// проходим в обе стороны. Обход идёт в порядке вставки вершин,
// поэтому состав и порядок компонент детерминированы.
func FindConnectedComponents(g *Graph) [][]int64 {
	visited := make(map[int64]bool)
	components := make([][]int64, 0, len(g.NodeList)/10+1)

	adj := make(map[int64][]int64)
	for _, edge := range g.EdgeList {
		adj[edge.From] = append(adj[edge.From], edge.To)
	}

	for _, node := range g.NodeList {
		if visited[node.ID] {
			continue
		}

		var component []int64
		queue := []int64{node.ID}
		visited[node.ID] = true

		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			component = append(component, u)

			for _, v := range adj[u] {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
		}

		components = append(components, component)
	}

	return components
}
