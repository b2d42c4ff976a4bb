// Package weights applies simulation conditions to graph edge weights.
//
// This file implements the weight model:
//   - Model: derives adjusted weights from base weights and a simulation context
//   - Event proximity handling with a configurable radius
//   - Strategy corrections that depend on per-edge traffic density
//
// Adjustment never mutates its input graph. The model reads base weights
// only, so applying the same context twice produces identical results.
package weights

import (
	"time"

	"routing/pkg/config"
	"routing/pkg/domain"
)

// =============================================================================
// Model
// =============================================================================

// Model computes adjusted edge weights for a simulation context.
//
// The adjusted weight of every edge is the product of its base weight and
// five context multipliers:
//
//	adjusted = base * time * day * weather * event * strategy
//
// Results never drop below the configured weight floor, so a stack of
// dampening factors cannot produce a zero or negative weight.
type Model struct {
	engine *config.EngineConfig

	// now is replaceable in tests; event activity depends on wall-clock time.
	now func() time.Time
}

// NewModel creates a weight model backed by the given engine configuration.
// A nil configuration yields neutral multipliers, which leaves base weights
// untouched.
func NewModel(engine *config.EngineConfig) *Model {
	return &Model{engine: engine, now: time.Now}
}

// Adjust returns a new graph whose adjusted weights reflect the given
// simulation context and events. The input graph is left untouched.
//
// A nil context applies neutral time, day, weather and strategy multipliers;
// event proximity still applies, so callers can model incidents without
// simulating a full context. Context fields left unspecified fall back to
// their defaults (morning, weekday, clear, shortest path).
//
// Event multipliers compound: an edge within the radius of several active
// events is penalized once per event. Events that are cancelled, completed
// or past their end date are ignored.
//
// Parameters:
//   - g: graph to derive from
//   - segments: original segments, used for edge midpoint lookup
//   - sctx: simulation context, may be nil
//   - events: events to consider, may be empty
//
// Returns:
//   - a new graph with recomputed adjusted weights, or nil for a nil input
func (m *Model) Adjust(g *domain.Graph, segments []domain.RoadSegment, sctx *domain.SimulationContext, events []domain.ActiveEvent) *domain.Graph {
	if g == nil {
		return nil
	}
	adjusted := g.Clone()

	timeFactor := 1.0
	dayFactor := 1.0
	weatherFactor := 1.0
	strategy := domain.StrategyShortestPath
	if sctx != nil {
		norm := sctx.Normalized()
		timeFactor = m.timeFactor(norm.TimeOfDay)
		dayFactor = m.dayFactor(norm.DayType)
		weatherFactor = m.weatherFactor(norm.Weather)
		strategy = norm.Strategy
	}

	active := m.activeEvents(events)
	midpoints := segmentMidpoints(segments)
	floor := m.weightFloor()

	for _, edge := range adjusted.EdgeList {
		w := edge.BaseWeight * timeFactor * dayFactor * weatherFactor
		if len(active) > 0 {
			mx, my := m.edgeMidpoint(adjusted, edge, midpoints)
			w *= m.eventFactor(mx, my, active)
		}
		w *= m.strategyFactor(strategy, edge.Density)
		if w < floor {
			w = floor
		}
		edge.AdjustedWeight = w
	}
	return adjusted
}

// =============================================================================
// Event Proximity
// =============================================================================

// activeEvents filters the raw event list down to events that currently
// affect traffic.
func (m *Model) activeEvents(events []domain.ActiveEvent) []domain.ActiveEvent {
	if len(events) == 0 {
		return nil
	}
	now := m.now()
	active := make([]domain.ActiveEvent, 0, len(events))
	for i := range events {
		if events[i].IsActive(now) {
			active = append(active, events[i])
		}
	}
	return active
}

// eventFactor returns the combined multiplier of all active events within
// the configured radius of the given midpoint.
func (m *Model) eventFactor(mx, my float64, active []domain.ActiveEvent) float64 {
	radius := m.eventRadius()
	if radius <= 0 {
		return 1.0
	}
	factor := 1.0
	for i := range active {
		if domain.Distance(mx, my, active[i].X, active[i].Y) <= radius {
			factor *= m.impactFactor(active[i].Impact)
		}
	}
	return factor
}

// segmentMidpoints indexes segment midpoints by road ID.
func segmentMidpoints(segments []domain.RoadSegment) map[string]domain.Coordinate {
	if len(segments) == 0 {
		return nil
	}
	midpoints := make(map[string]domain.Coordinate, len(segments))
	for i := range segments {
		mx, my := segments[i].Midpoint()
		midpoints[segments[i].ID] = domain.Coordinate{X: mx, Y: my}
	}
	return midpoints
}

// edgeMidpoint resolves the midpoint of an edge, preferring the authored
// segment geometry and falling back to the node coordinates. The two differ
// by at most the merge epsilon.
func (m *Model) edgeMidpoint(g *domain.Graph, edge *domain.Edge, midpoints map[string]domain.Coordinate) (float64, float64) {
	if mid, ok := midpoints[edge.RoadID]; ok {
		return mid.X, mid.Y
	}
	from, okFrom := g.GetNode(edge.From)
	to, okTo := g.GetNode(edge.To)
	if !okFrom || !okTo {
		return 0, 0
	}
	return (from.X + to.X) / 2, (from.Y + to.Y) / 2
}

// =============================================================================
// Factor Tables
// =============================================================================

func (m *Model) weightFloor() float64 {
	if m.engine != nil && m.engine.WeightFloor > 0 {
		return m.engine.WeightFloor
	}
	return domain.WeightFloor
}

func (m *Model) eventRadius() float64 {
	if m.engine == nil {
		return 0
	}
	return m.engine.Event.Radius
}

func (m *Model) timeFactor(t domain.TimeOfDay) float64 {
	if m.engine == nil {
		return 1.0
	}
	switch t {
	case domain.TimeOfDayMorning:
		return m.engine.TimeOfDay.Morning
	case domain.TimeOfDayAfternoon:
		return m.engine.TimeOfDay.Afternoon
	case domain.TimeOfDayEvening:
		return m.engine.TimeOfDay.Evening
	case domain.TimeOfDayNight:
		return m.engine.TimeOfDay.Night
	default:
		return 1.0
	}
}

func (m *Model) dayFactor(d domain.DayType) float64 {
	if m.engine == nil {
		return 1.0
	}
	switch d {
	case domain.DayTypeWeekday:
		return m.engine.DayType.Weekday
	case domain.DayTypeWeekend:
		return m.engine.DayType.Weekend
	case domain.DayTypeHoliday:
		return m.engine.DayType.Holiday
	default:
		return 1.0
	}
}

func (m *Model) weatherFactor(w domain.WeatherCondition) float64 {
	if m.engine == nil {
		return 1.0
	}
	switch w {
	case domain.WeatherClear:
		return m.engine.Weather.Clear
	case domain.WeatherRain:
		return m.engine.Weather.Rain
	case domain.WeatherSnow:
		return m.engine.Weather.Snow
	case domain.WeatherFog:
		return m.engine.Weather.Fog
	default:
		return 1.0
	}
}

func (m *Model) impactFactor(level domain.ImpactLevel) float64 {
	if m.engine == nil {
		return 1.0
	}
	switch level {
	case domain.ImpactLow:
		return m.engine.Event.Low
	case domain.ImpactMedium:
		return m.engine.Event.Medium
	case domain.ImpactHigh:
		return m.engine.Event.High
	default:
		return 1.0
	}
}

// strategyFactor returns the per-density correction of a routing strategy.
// SHORTEST_PATH ignores density and stays neutral.
func (m *Model) strategyFactor(s domain.RoutingStrategy, d domain.Density) float64 {
	if m.engine == nil {
		return 1.0
	}
	var table config.DensityFactors
	switch s {
	case domain.StrategyBalanced:
		table = m.engine.Strategy.Balanced
	case domain.StrategyAvoidCongestion:
		table = m.engine.Strategy.AvoidCongestion
	default:
		return 1.0
	}
	switch d {
	case domain.DensityLow:
		return table.Low
	case domain.DensityMedium:
		return table.Medium
	case domain.DensityHigh:
		return table.High
	case domain.DensityCongested:
		return table.Congested
	default:
		return 1.0
	}
}
