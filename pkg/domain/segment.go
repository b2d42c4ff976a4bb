package domain

import (
	"fmt"
	"strings"
)

// RoadType тип дороги
type RoadType int

const (
	RoadTypeUnspecified RoadType = iota
	RoadTypeHighway
	RoadTypeNormal
	RoadTypeResidential
)

// String возвращает строковое представление типа дороги
func (r RoadType) String() string {
	switch r {
	case RoadTypeHighway:
		return "highway"
	case RoadTypeNormal:
		return "normal"
	case RoadTypeResidential:
		return "residential"
	default:
		return "unspecified"
	}
}

// ParseRoadType разбирает тип дороги из строки без учёта регистра
func ParseRoadType(s string) (RoadType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGHWAY":
		return RoadTypeHighway, nil
	case "NORMAL":
		return RoadTypeNormal, nil
	case "RESIDENTIAL":
		return RoadTypeResidential, nil
	default:
		return RoadTypeUnspecified, fmt.Errorf("unknown road type: %q", s)
	}
}

// Density уровень загруженности дороги
type Density int

const (
	DensityUnspecified Density = iota
	DensityLow
	DensityMedium
	DensityHigh
	DensityCongested
)

// String возвращает строковое представление загруженности
func (d Density) String() string {
	switch d {
	case DensityLow:
		return "low"
	case DensityMedium:
		return "medium"
	case DensityHigh:
		return "high"
	case DensityCongested:
		return "congested"
	default:
		return "unspecified"
	}
}

// ParseDensity разбирает загруженность из строки без учёта регистра
func ParseDensity(s string) (Density, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return DensityLow, nil
	case "MEDIUM":
		return DensityMedium, nil
	case "HIGH":
		return DensityHigh, nil
	case "CONGESTED":
		return DensityCongested, nil
	default:
		return DensityUnspecified, fmt.Errorf("unknown density: %q", s)
	}
}

// RoadSegment отрезок дороги, поставляемый внешним хранилищем карт.
// Входные данные запроса: ядро не изменяет и не сохраняет сегменты.
type RoadSegment struct {
	ID       string
	StartX   float64
	StartY   float64
	EndX     float64
	EndY     float64
	RoadType RoadType
	Density  Density
}

// Length возвращает евклидову длину отрезка
func (s *RoadSegment) Length() float64 {
	return Distance(s.StartX, s.StartY, s.EndX, s.EndY)
}

// Midpoint возвращает середину отрезка
func (s *RoadSegment) Midpoint() (float64, float64) {
	return (s.StartX + s.EndX) / 2, (s.StartY + s.EndY) / 2
}

// HasFiniteCoords проверяет, что все координаты отрезка конечны
func (s *RoadSegment) HasFiniteCoords() bool {
	return IsFinite(s.StartX) && IsFinite(s.StartY) && IsFinite(s.EndX) && IsFinite(s.EndY)
}
