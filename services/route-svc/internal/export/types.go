package export

import "time"

// Options настройки одного отчёта
type Options struct {
	Title              string
	Author             string
	Description        string
	ExcludeRoads       bool
	IncludeCoordinates bool
}

// RouteReportData данные для генерации отчёта о маршруте. Route заполняется
// для обычного расчёта, Comparison для сравнения алгоритмов, Sweep для
// перебора окон отправления; Graph присутствует всегда, когда граф строился.
type RouteReportData struct {
	Options     *Options
	GeneratedAt time.Time

	Request    *RequestEcho
	Route      *RouteData
	Comparison *ComparisonData
	Sweep      *SweepData
	Graph      *GraphInfo
	Warnings   []string
}

// RequestEcho исходные параметры запроса
type RequestEcho struct {
	RequestID    string
	Algorithm    string
	StartX       float64
	StartY       float64
	EndX         float64
	EndY         float64
	SegmentCount int
	EventCount   int
	TimeOfDay    string
	DayType      string
	Weather      string
	Strategy     string
}

// RouteData найденный маршрут
type RouteData struct {
	NodePath             []int64
	TotalWeight          float64
	EstimatedTimeMinutes int64
	ComputationTimeMs    float64
	Cached               bool
	Roads                []RoadRow
	Points               []PointRow
}

// HopCount возвращает число переходов маршрута
func (r *RouteData) HopCount() int {
	if len(r.NodePath) == 0 {
		return 0
	}
	return len(r.NodePath) - 1
}

// RoadRow строка таблицы дорог
type RoadRow struct {
	ID       string
	StartX   float64
	StartY   float64
	EndX     float64
	EndY     float64
	RoadType string
	Density  string
	Known    bool
}

// PointRow точка пути
type PointRow struct {
	X float64
	Y float64
}

// ComparisonData результаты сравнения двух алгоритмов
type ComparisonData struct {
	Dijkstra    *ComparisonSide
	Astar       *ComparisonSide
	WeightDelta float64
}

// ComparisonSide результат одного алгоритма в сравнении
type ComparisonSide struct {
	Algorithm            string
	TotalWeight          float64
	EstimatedTimeMinutes int64
	HopCount             int
	VisitedNodes         int
	ComputationTimeMs    float64
}

// SweepData результаты перебора окон отправления
type SweepData struct {
	Algorithm string
	Slots     []SweepSlotRow
	Best      *SweepSlotRow
}

// SweepSlotRow строка таблицы слотов
type SweepSlotRow struct {
	TimeOfDay            string
	DayType              string
	Found                bool
	TotalWeight          float64
	EstimatedTimeMinutes int64
	HopCount             int
}

// GraphInfo сводка построенного графа
type GraphInfo struct {
	NodeCount         int64
	EdgeCount         int64
	SegmentCount      int64
	ComponentCount    int64
	MinAdjustedWeight float64
	MaxAdjustedWeight float64
	AverageAdjusted   float64
	CongestedEdges    int64
}
