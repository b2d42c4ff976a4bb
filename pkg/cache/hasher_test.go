package cache

import (
	"testing"

	"routing/pkg/domain"
)

func TestSegmentsHash(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		hash := SegmentsHash(nil)
		if hash != "" {
			t.Errorf("SegmentsHash(nil) = %v, want empty string", hash)
		}
	})

	t.Run("same segments produce same hash", func(t *testing.T) {
		segments := []domain.RoadSegment{
			{ID: "r1", StartX: 0, StartY: 0, EndX: 10, EndY: 0, RoadType: domain.RoadTypeHighway, Density: domain.DensityLow},
			{ID: "r2", StartX: 10, StartY: 0, EndX: 10, EndY: 10, RoadType: domain.RoadTypeNormal, Density: domain.DensityMedium},
		}

		hash1 := SegmentsHash(segments)
		hash2 := SegmentsHash(segments)

		if hash1 != hash2 {
			t.Errorf("same segments should produce same hash: %v != %v", hash1, hash2)
		}
	})

	t.Run("different segments produce different hashes", func(t *testing.T) {
		s1 := []domain.RoadSegment{
			{ID: "r1", EndX: 10, RoadType: domain.RoadTypeHighway, Density: domain.DensityLow},
		}
		s2 := []domain.RoadSegment{
			{ID: "r1", EndX: 10, RoadType: domain.RoadTypeHighway, Density: domain.DensityCongested}, // different density
		}

		hash1 := SegmentsHash(s1)
		hash2 := SegmentsHash(s2)

		if hash1 == hash2 {
			t.Error("different segments should produce different hashes")
		}
	})

	t.Run("segment order does not affect hash", func(t *testing.T) {
		a := domain.RoadSegment{ID: "r1", EndX: 10, RoadType: domain.RoadTypeHighway, Density: domain.DensityLow}
		b := domain.RoadSegment{ID: "r2", StartX: 10, EndX: 20, RoadType: domain.RoadTypeNormal, Density: domain.DensityHigh}

		hash1 := SegmentsHash([]domain.RoadSegment{a, b})
		hash2 := SegmentsHash([]domain.RoadSegment{b, a})

		if hash1 != hash2 {
			t.Error("segment order should not affect hash")
		}
	})
}

func TestQueryHash(t *testing.T) {
	base := domain.DefaultSimulationContext()

	t.Run("deterministic", func(t *testing.T) {
		h1 := QueryHash(0, 0, 10, 10, base, nil)
		h2 := QueryHash(0, 0, 10, 10, base, nil)
		if h1 != h2 {
			t.Errorf("same query should produce same hash: %v != %v", h1, h2)
		}
	})

	t.Run("coordinates affect hash", func(t *testing.T) {
		h1 := QueryHash(0, 0, 10, 10, base, nil)
		h2 := QueryHash(0, 0, 10, 20, base, nil)
		if h1 == h2 {
			t.Error("different endpoints should produce different hashes")
		}
	})

	t.Run("context affects hash", func(t *testing.T) {
		snowy := base
		snowy.Weather = domain.WeatherSnow

		h1 := QueryHash(0, 0, 10, 10, base, nil)
		h2 := QueryHash(0, 0, 10, 10, snowy, nil)
		if h1 == h2 {
			t.Error("different contexts should produce different hashes")
		}
	})

	t.Run("event order does not affect hash", func(t *testing.T) {
		e1 := domain.ActiveEvent{ID: "ev1", X: 5, Y: 5, Impact: domain.ImpactHigh, Status: domain.EventStatusOngoing}
		e2 := domain.ActiveEvent{ID: "ev2", X: 7, Y: 2, Impact: domain.ImpactLow, Status: domain.EventStatusUpcoming}

		h1 := QueryHash(0, 0, 10, 10, base, []domain.ActiveEvent{e1, e2})
		h2 := QueryHash(0, 0, 10, 10, base, []domain.ActiveEvent{e2, e1})
		if h1 != h2 {
			t.Error("event order should not affect hash")
		}
	})

	t.Run("events affect hash", func(t *testing.T) {
		ev := domain.ActiveEvent{ID: "ev1", X: 5, Y: 5, Impact: domain.ImpactHigh, Status: domain.EventStatusOngoing}

		h1 := QueryHash(0, 0, 10, 10, base, nil)
		h2 := QueryHash(0, 0, 10, 10, base, []domain.ActiveEvent{ev})
		if h1 == h2 {
			t.Error("events should affect hash")
		}
	})
}

func TestBuildRouteKey(t *testing.T) {
	key := BuildRouteKey("astar", "q123", "m456")
	expected := "route:astar:q123:m456"
	if key != expected {
		t.Errorf("BuildRouteKey() = %v, want %v", key, expected)
	}
}

func TestQuickHash(t *testing.T) {
	data := []byte("test data")
	hash := QuickHash(data)

	if len(hash) != 64 { // SHA256 hex = 64 chars
		t.Errorf("QuickHash length = %d, want 64", len(hash))
	}

	// Same data should produce same hash
	hash2 := QuickHash(data)
	if hash != hash2 {
		t.Error("same data should produce same hash")
	}
}

func TestShortHash(t *testing.T) {
	data := []byte("test data")
	hash := ShortHash(data)

	if len(hash) != 16 {
		t.Errorf("ShortHash length = %d, want 16", len(hash))
	}
}
