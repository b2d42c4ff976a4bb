package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RouteCache специализированный кэш для результатов поиска маршрутов
type RouteCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedRoute кэшированный результат поиска
type CachedRoute struct {
	NodePath             []int64       `json:"node_path"`
	RoadPath             []CachedRoad  `json:"road_path,omitempty"`
	CoordinatePath       []CachedPoint `json:"coordinate_path"`
	TotalWeight          float64       `json:"total_weight"`
	EstimatedTimeMinutes int64         `json:"estimated_time_minutes"`
	Algorithm            string        `json:"algorithm"`
	ComputedAt           time.Time     `json:"computed_at"`
}

// CachedRoad кэшированная дорога на пути
type CachedRoad struct {
	ID       string  `json:"id"`
	StartX   float64 `json:"start_x"`
	StartY   float64 `json:"start_y"`
	EndX     float64 `json:"end_x"`
	EndY     float64 `json:"end_y"`
	RoadType string  `json:"road_type,omitempty"`
	Density  string  `json:"density,omitempty"`
	Known    bool    `json:"known"`
}

// CachedPoint кэшированная точка маршрута
type CachedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewRouteCache создаёт кэш для результатов маршрутизации
func NewRouteCache(cache Cache, defaultTTL time.Duration) *RouteCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &RouteCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает кэшированный результат по готовому ключу (см. BuildRouteKey)
func (rc *RouteCache) Get(ctx context.Context, key string) (*CachedRoute, bool, error) {
	data, err := rc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedRoute
	if err := json.Unmarshal(data, &result); err != nil {
		// Повреждённый кэш — удаляем, ошибку удаления игнорируем намеренно
		_ = rc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &result, true, nil
}

// Set сохраняет результат в кэш
func (rc *RouteCache) Set(ctx context.Context, key string, result *CachedRoute, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = rc.defaultTTL
	}

	result.ComputedAt = time.Now()

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return rc.cache.Set(ctx, key, data, ttl)
}

// InvalidateMap удаляет все кэшированные маршруты для карты с данным хешем
// сегментов (при любом алгоритме и контексте)
func (rc *RouteCache) InvalidateMap(ctx context.Context, segmentsHash string) error {
	pattern := fmt.Sprintf("route:*:%s", segmentsHash)
	_, err := rc.cache.DeleteByPattern(ctx, pattern)
	return err
}

// InvalidateAll удаляет весь кэш маршрутов
func (rc *RouteCache) InvalidateAll(ctx context.Context) (int64, error) {
	return rc.cache.DeleteByPattern(ctx, "route:*")
}
