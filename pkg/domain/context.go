package domain

import (
	"fmt"
	"strings"
)

// TimeOfDay время суток
type TimeOfDay int

const (
	TimeOfDayUnspecified TimeOfDay = iota
	TimeOfDayMorning
	TimeOfDayAfternoon
	TimeOfDayEvening
	TimeOfDayNight
)

// String возвращает строковое представление времени суток
func (t TimeOfDay) String() string {
	switch t {
	case TimeOfDayMorning:
		return "morning"
	case TimeOfDayAfternoon:
		return "afternoon"
	case TimeOfDayEvening:
		return "evening"
	case TimeOfDayNight:
		return "night"
	default:
		return "unspecified"
	}
}

// ParseTimeOfDay разбирает время суток из строки без учёта регистра
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MORNING":
		return TimeOfDayMorning, nil
	case "AFTERNOON":
		return TimeOfDayAfternoon, nil
	case "EVENING":
		return TimeOfDayEvening, nil
	case "NIGHT":
		return TimeOfDayNight, nil
	default:
		return TimeOfDayUnspecified, fmt.Errorf("unknown time of day: %q", s)
	}
}

// DayType тип дня
type DayType int

const (
	DayTypeUnspecified DayType = iota
	DayTypeWeekday
	DayTypeWeekend
	DayTypeHoliday
)

// String возвращает строковое представление типа дня
func (d DayType) String() string {
	switch d {
	case DayTypeWeekday:
		return "weekday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	default:
		return "unspecified"
	}
}

// ParseDayType разбирает тип дня из строки без учёта регистра
func ParseDayType(s string) (DayType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WEEKDAY":
		return DayTypeWeekday, nil
	case "WEEKEND":
		return DayTypeWeekend, nil
	case "HOLIDAY":
		return DayTypeHoliday, nil
	default:
		return DayTypeUnspecified, fmt.Errorf("unknown day type: %q", s)
	}
}

// WeatherCondition погодные условия
type WeatherCondition int

const (
	WeatherUnspecified WeatherCondition = iota
	WeatherClear
	WeatherRain
	WeatherSnow
	WeatherFog
)

// String возвращает строковое представление погоды
func (w WeatherCondition) String() string {
	switch w {
	case WeatherClear:
		return "clear"
	case WeatherRain:
		return "rain"
	case WeatherSnow:
		return "snow"
	case WeatherFog:
		return "fog"
	default:
		return "unspecified"
	}
}

// ParseWeatherCondition разбирает погоду из строки без учёта регистра
func ParseWeatherCondition(s string) (WeatherCondition, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CLEAR":
		return WeatherClear, nil
	case "RAIN":
		return WeatherRain, nil
	case "SNOW":
		return WeatherSnow, nil
	case "FOG":
		return WeatherFog, nil
	default:
		return WeatherUnspecified, fmt.Errorf("unknown weather condition: %q", s)
	}
}

// RoutingStrategy стратегия маршрутизации
type RoutingStrategy int

const (
	StrategyUnspecified RoutingStrategy = iota
	StrategyShortestPath
	StrategyBalanced
	StrategyAvoidCongestion
)

// String возвращает строковое представление стратегии
func (s RoutingStrategy) String() string {
	switch s {
	case StrategyShortestPath:
		return "shortest_path"
	case StrategyBalanced:
		return "balanced"
	case StrategyAvoidCongestion:
		return "avoid_congestion"
	default:
		return "unspecified"
	}
}

// ParseRoutingStrategy разбирает стратегию из строки без учёта регистра
func ParseRoutingStrategy(s string) (RoutingStrategy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SHORTEST_PATH":
		return StrategyShortestPath, nil
	case "BALANCED":
		return StrategyBalanced, nil
	case "AVOID_CONGESTION":
		return StrategyAvoidCongestion, nil
	default:
		return StrategyUnspecified, fmt.Errorf("unknown routing strategy: %q", s)
	}
}

// SimulationContext условия, при которых вычисляется маршрут.
// Отсутствие контекста означает поиск по базовым весам без поправок.
type SimulationContext struct {
	TimeOfDay TimeOfDay
	DayType   DayType
	Weather   WeatherCondition
	Strategy  RoutingStrategy
}

// DefaultSimulationContext возвращает контекст со значениями по умолчанию
func DefaultSimulationContext() SimulationContext {
	return SimulationContext{
		TimeOfDay: TimeOfDayMorning,
		DayType:   DayTypeWeekday,
		Weather:   WeatherClear,
		Strategy:  StrategyShortestPath,
	}
}

// Normalized возвращает копию контекста, в которой незаполненные поля
// заменены значениями по умолчанию
func (c SimulationContext) Normalized() SimulationContext {
	def := DefaultSimulationContext()
	if c.TimeOfDay == TimeOfDayUnspecified {
		c.TimeOfDay = def.TimeOfDay
	}
	if c.DayType == DayTypeUnspecified {
		c.DayType = def.DayType
	}
	if c.Weather == WeatherUnspecified {
		c.Weather = def.Weather
	}
	if c.Strategy == StrategyUnspecified {
		c.Strategy = def.Strategy
	}
	return c
}
