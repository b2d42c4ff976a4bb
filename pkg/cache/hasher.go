package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"routing/pkg/domain"
)

// SegmentsHash вычисляет хеш списка дорожных сегментов для использования
// как ключ кэша. Порядок сегментов на хеш не влияет.
func SegmentsHash(segments []domain.RoadSegment) string {
	if len(segments) == 0 {
		return ""
	}

	data := segmentsToCanonical(segments)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// segmentsToCanonical создаёт детерминированное представление списка сегментов
func segmentsToCanonical(segments []domain.RoadSegment) []byte {
	sorted := make([]domain.RoadSegment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	var result []byte
	for _, s := range sorted {
		result = append(result, []byte(fmt.Sprintf("seg:%s:%.6f:%.6f:%.6f:%.6f:%s:%s;",
			s.ID, s.StartX, s.StartY, s.EndX, s.EndY, s.RoadType, s.Density))...)
	}

	return result
}

// QueryHash вычисляет хеш параметров запроса маршрута: координаты концов,
// симуляционный контекст и список активных событий. Порядок событий на хеш
// не влияет.
func QueryHash(startX, startY, endX, endY float64, sctx domain.SimulationContext, events []domain.ActiveEvent) string {
	var result []byte

	result = append(result, []byte(fmt.Sprintf("q:%.6f:%.6f:%.6f:%.6f;",
		startX, startY, endX, endY))...)
	result = append(result, []byte(fmt.Sprintf("ctx:%s:%s:%s:%s;",
		sctx.TimeOfDay, sctx.DayType, sctx.Weather, sctx.Strategy))...)

	sorted := make([]domain.ActiveEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	for _, ev := range sorted {
		result = append(result, []byte(fmt.Sprintf("ev:%s:%.6f:%.6f:%s:%s;",
			ev.ID, ev.X, ev.Y, ev.Impact, ev.Status))...)
	}

	hash := sha256.Sum256(result)
	return hex.EncodeToString(hash[:8])
}

// BuildRouteKey строит ключ кэша для результата поиска маршрута
func BuildRouteKey(algorithm, queryHash, segmentsHash string) string {
	return fmt.Sprintf("route:%s:%s:%s", algorithm, queryHash, segmentsHash)
}

// QuickHash быстрый хеш для произвольных данных
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
