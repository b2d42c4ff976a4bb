package domain

import "fmt"

// Node вершина маршрутного графа: одна на каждую уникальную координату
// концов отрезков. ID назначается последовательно при построении и
// стабилен только в пределах одного построения.
type Node struct {
	ID int64
	X  float64
	Y  float64
}

// Clone создаёт копию вершины
func (n *Node) Clone() *Node {
	clone := *n
	return &clone
}

// Edge направленное ребро графа. На каждый отрезок дороги создаются два
// ребра, по одному на направление обхода.
type Edge struct {
	From           int64
	To             int64
	RoadID         string
	Length         float64
	RoadType       RoadType
	Density        Density
	BaseWeight     float64
	AdjustedWeight float64
}

// Clone создаёт копию ребра
func (e *Edge) Clone() *Edge {
	clone := *e
	return &clone
}

// Graph маршрутный граф одной карты. Строится заново на каждый запрос и
// принадлежит ровно одному запросу, поэтому синхронизация не нужна.
// NodeList и списки смежности хранят порядок вставки: обход графа
// детерминирован при фиксированном порядке сегментов.
type Graph struct {
	Nodes     map[int64]*Node
	NodeList  []*Node
	Adjacency map[int64][]*Edge
	EdgeList  []*Edge
}

// NewGraph создаёт новый пустой граф
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[int64]*Node),
		Adjacency: make(map[int64][]*Edge),
	}
}

// AddNode добавляет вершину в граф
func (g *Graph) AddNode(node *Node) {
	g.Nodes[node.ID] = node
	g.NodeList = append(g.NodeList, node)
}

// AddEdge добавляет ребро в граф и список смежности
func (g *Graph) AddEdge(edge *Edge) {
	g.Adjacency[edge.From] = append(g.Adjacency[edge.From], edge)
	g.EdgeList = append(g.EdgeList, edge)
}

// GetNode возвращает вершину по ID
func (g *Graph) GetNode(id int64) (*Node, bool) {
	node, ok := g.Nodes[id]
	return node, ok
}

// Outgoing возвращает исходящие рёбра вершины в порядке вставки
func (g *Graph) Outgoing(nodeID int64) []*Edge {
	return g.Adjacency[nodeID]
}

// FindEdge возвращает ребро from→to с минимальным скорректированным
// весом. Между парой вершин может лежать несколько параллельных дорог;
// поиск пути всегда использует самую дешёвую из них.
func (g *Graph) FindEdge(from, to int64) (*Edge, bool) {
	var best *Edge
	for _, edge := range g.Adjacency[from] {
		if edge.To != to {
			continue
		}
		if best == nil || edge.AdjustedWeight < best.AdjustedWeight {
			best = edge
		}
	}
	return best, best != nil
}

// NodeCount возвращает количество вершин
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount возвращает количество рёбер
func (g *Graph) EdgeCount() int {
	return len(g.EdgeList)
}

// Clone создаёт глубокую копию графа с сохранением порядка обхода
func (g *Graph) Clone() *Graph {
	clone := NewGraph()
	clone.NodeList = make([]*Node, 0, len(g.NodeList))
	clone.EdgeList = make([]*Edge, 0, len(g.EdgeList))

	for _, node := range g.NodeList {
		clone.AddNode(node.Clone())
	}
	for _, edge := range g.EdgeList {
		clone.AddEdge(edge.Clone())
	}
	return clone
}

// Validate проверяет корректность графа
func (g *Graph) Validate() []error {
	var errs []error

	for _, edge := range g.EdgeList {
		if _, ok := g.Nodes[edge.From]; !ok {
			errs = append(errs, fmt.Errorf("edge %s references non-existent node %d", edge.RoadID, edge.From))
		}
		if _, ok := g.Nodes[edge.To]; !ok {
			errs = append(errs, fmt.Errorf("edge %s references non-existent node %d", edge.RoadID, edge.To))
		}
		if edge.BaseWeight < 0 {
			errs = append(errs, fmt.Errorf("edge %s has negative base weight", edge.RoadID))
		}
		if edge.AdjustedWeight < 0 {
			errs = append(errs, fmt.Errorf("edge %s has negative adjusted weight", edge.RoadID))
		}
	}
	return errs
}
