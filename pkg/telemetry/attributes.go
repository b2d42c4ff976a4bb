package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Граф
	AttrGraphNodes  = "graph.nodes"
	AttrGraphEdges  = "graph.edges"
	AttrStartNodeID = "route.start_node"
	AttrEndNodeID   = "route.end_node"

	// Маршрут
	AttrAlgorithm        = "algorithm.name"
	AttrRouteHops        = "route.hops"
	AttrRouteWeight      = "route.total_weight"
	AttrEstimatedMinutes = "route.estimated_minutes"

	// Контекст симуляции
	AttrTimeOfDay = "simulation.time_of_day"
	AttrDayType   = "simulation.day_type"
	AttrWeather   = "simulation.weather"
	AttrStrategy  = "simulation.strategy"
	AttrEvents    = "simulation.events"

	// Кэш
	AttrCacheHit = "cache.hit"
	AttrCacheKey = "cache.key"

	// Валидация
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"
)

// GraphAttributes возвращает атрибуты графа
func GraphAttributes(nodes, edges int, startNode, endNode int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
		attribute.Int64(AttrStartNodeID, startNode),
		attribute.Int64(AttrEndNodeID, endNode),
	}
}

// RouteAttributes возвращает атрибуты рассчитанного маршрута
func RouteAttributes(algorithm string, hops int, totalWeight float64, estimatedMinutes int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, algorithm),
		attribute.Int(AttrRouteHops, hops),
		attribute.Float64(AttrRouteWeight, totalWeight),
		attribute.Int64(AttrEstimatedMinutes, estimatedMinutes),
	}
}

// ContextAttributes возвращает атрибуты контекста симуляции
func ContextAttributes(timeOfDay, dayType, weather, strategy string, events int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrTimeOfDay, timeOfDay),
		attribute.String(AttrDayType, dayType),
		attribute.String(AttrWeather, weather),
		attribute.String(AttrStrategy, strategy),
		attribute.Int(AttrEvents, events),
	}
}

// CacheAttributes возвращает атрибуты обращения к кэшу
func CacheAttributes(hit bool, key string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheKey, key),
	}
}

// ValidationAttributes возвращает атрибуты валидации
func ValidationAttributes(errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}
