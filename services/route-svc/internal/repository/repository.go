package repository

import (
	"context"
	"errors"
	"time"
)

// Стандартные ошибки
var (
	ErrCalculationNotFound = errors.New("route calculation not found")
)

// Статусы расчёта
const (
	StatusFound  = "found"
	StatusNoPath = "no_path"
)

// RouteCalculation модель сохранённого расчёта маршрута
type RouteCalculation struct {
	ID                   string
	RequestID            string
	Algorithm            string
	Status               string
	StartX               float64
	StartY               float64
	EndX                 float64
	EndY                 float64
	SegmentsHash         string
	SegmentCount         int
	NodeCount            int
	EdgeCount            int
	HopCount             int
	TotalWeight          float64
	EstimatedTimeMinutes int64
	ComputationTimeMs    float64
	TimeOfDay            string
	DayType              string
	Weather              string
	Strategy             string
	Cached               bool
	RequestData          []byte // JSON
	ResponseData         []byte // JSON
	Tags                 []string
	CreatedAt            time.Time
}

// CalculationSummary краткая информация о расчёте без тяжёлых JSON полей
type CalculationSummary struct {
	ID                   string
	RequestID            string
	Algorithm            string
	Status               string
	TotalWeight          float64
	EstimatedTimeMinutes int64
	ComputationTimeMs    float64
	HopCount             int
	NodeCount            int
	EdgeCount            int
	Cached               bool
	Tags                 []string
	CreatedAt            time.Time
}

// ListFilter фильтры для списка
type ListFilter struct {
	Algorithm    string
	Status       string
	SegmentsHash string
	Tags         []string
	MinWeight    *float64
	MaxWeight    *float64
	StartTime    *time.Time
	EndTime      *time.Time
}

// SortOrder порядок сортировки
type SortOrder string

const (
	SortByCreatedDesc  SortOrder = "created_desc"
	SortByCreatedAsc   SortOrder = "created_asc"
	SortByWeightDesc   SortOrder = "weight_desc"
	SortByDurationDesc SortOrder = "duration_desc"
)

// ListOptions опции для списка
type ListOptions struct {
	Limit  int
	Offset int
	Filter *ListFilter
	Sort   SortOrder
}

// CalculationStatistics сводная статистика по расчётам
type CalculationStatistics struct {
	TotalCalculations        int
	CachedCalculations       int
	NoPathCalculations       int
	AverageTotalWeight       float64
	AverageComputationTimeMs float64
	CalculationsByAlgorithm  map[string]int
	DailyStats               []DailyStats
}

// DailyStats статистика за день
type DailyStats struct {
	Date        string // "2024-01-15"
	Count       int
	TotalWeight float64
}

// RouteRepository интерфейс хранилища расчётов маршрутов
type RouteRepository interface {
	// CRUD
	Create(ctx context.Context, calc *RouteCalculation) error
	GetByID(ctx context.Context, id string) (*RouteCalculation, error)
	Delete(ctx context.Context, id string) error

	// Списки
	List(ctx context.Context, opts *ListOptions) ([]*CalculationSummary, int64, error)

	// Статистика
	GetStatistics(ctx context.Context, startTime, endTime *time.Time) (*CalculationStatistics, error)
}
