package domain

// Coordinate точка на карте
type Coordinate struct {
	X float64
	Y float64
}

// RoadInfo атрибуты дороги на найденном пути. Если сегмент с таким ID
// не найден среди входных данных, заполнено только поле ID.
type RoadInfo struct {
	ID       string
	Start    Coordinate
	End      Coordinate
	RoadType RoadType
	Density  Density
	Known    bool
}

// PathResult результат поиска маршрута: три параллельные
// последовательности и суммарный вес. Путь либо полон и согласован,
// либо отсутствует целиком.
type PathResult struct {
	NodePath       []int64
	RoadPath       []RoadInfo
	CoordinatePath []Coordinate
	TotalWeight    float64
}

// HopCount возвращает количество переходов в пути
func (p *PathResult) HopCount() int {
	return len(p.RoadPath)
}

// IsTrivial проверяет, совпадают ли начало и конец маршрута
func (p *PathResult) IsTrivial() bool {
	return len(p.NodePath) == 1 && len(p.RoadPath) == 0
}
