// Departure window sweep.
//
// SweepDepartures evaluates one origin/destination pair across every
// departure slot: four times of day crossed with weekday and weekend.
// Weather and strategy stay fixed from the base context. The graph is
// built once; only the weight adjustment and the search repeat per slot,
// which mirrors how the weight model is meant to be exercised.

package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"routing/pkg/audit"
	"routing/pkg/cache"
	"routing/pkg/domain"
	"routing/pkg/telemetry"
	"routing/services/route-svc/internal/algorithms"
)

// sweepSlots enumerates the departure slots in response order.
var sweepSlots = []struct {
	timeOfDay domain.TimeOfDay
	dayType   domain.DayType
}{
	{domain.TimeOfDayMorning, domain.DayTypeWeekday},
	{domain.TimeOfDayAfternoon, domain.DayTypeWeekday},
	{domain.TimeOfDayEvening, domain.DayTypeWeekday},
	{domain.TimeOfDayNight, domain.DayTypeWeekday},
	{domain.TimeOfDayMorning, domain.DayTypeWeekend},
	{domain.TimeOfDayAfternoon, domain.DayTypeWeekend},
	{domain.TimeOfDayEvening, domain.DayTypeWeekend},
	{domain.TimeOfDayNight, domain.DayTypeWeekend},
}

// SweepDepartures computes the same route under every departure slot and
// reports the cheapest one.
//
// A slot where the search finds no path is reported with Found=false;
// the sweep itself fails only on invalid input, an empty graph or
// endpoints that cannot be located. Best is nil when every slot came up
// empty. Ties on total weight resolve to the earliest slot.
func (s *RouteService) SweepDepartures(ctx context.Context, req *SweepRequest) (*SweepResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "RouteService.SweepDepartures")
	defer span.End()

	var reqID string
	caller := "anonymous"
	if req != nil {
		reqID = req.RequestID
		if req.CallerID != "" {
			caller = req.CallerID
		}
	}
	if err := s.allow(ctx, "sweep", caller); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	parsed, verrs := validateSweepRequest(req)
	if verrs.HasErrors() {
		err := validationFailure(verrs)
		span.SetAttributes(telemetry.ValidationAttributes(len(verrs.Errors), false)...)
		telemetry.SetError(ctx, err)
		s.auditReject(ctx, "SweepDepartures", audit.ActionSweep, reqID, err)
		return nil, err
	}

	requestID := ensureRequestID(req.RequestID)
	segmentsHash := cache.SegmentsHash(parsed.segments)

	span.SetAttributes(
		attribute.String("algorithm", parsed.algorithm),
		attribute.String("request_id", requestID),
		attribute.Int("slots", len(sweepSlots)),
	)

	start := time.Now()

	base, err := s.builder.Build(parsed.segments)
	var endpoints routeEndpoints
	if err == nil {
		endpoints, err = s.locateEndpoints(base, req.StartX, req.StartY, req.EndX, req.EndY)
	}
	if err != nil {
		telemetry.SetError(ctx, err)
		if s.metrics != nil {
			s.metrics.RecordRequest("sweep", "error", time.Since(start))
		}
		s.auditFailure(ctx, "SweepDepartures", audit.ActionSweep, requestID, segmentsHash, time.Since(start), err)
		return nil, err
	}

	// Погода и стратегия фиксируются из базового контекста
	baseCtx := domain.DefaultSimulationContext()
	if parsed.sctx != nil {
		baseCtx = parsed.sctx.Normalized()
	}

	resp := &SweepResponse{
		RequestID: requestID,
		Algorithm: parsed.algorithm,
		Slots:     make([]SweepSlot, 0, len(sweepSlots)),
	}

	bestIdx := -1
	for i, slot := range sweepSlots {
		sctx := domain.SimulationContext{
			TimeOfDay: slot.timeOfDay,
			DayType:   slot.dayType,
			Weather:   baseCtx.Weather,
			Strategy:  baseCtx.Strategy,
		}
		adjusted := s.model.Adjust(base, parsed.segments, &sctx, parsed.events)
		raw := algorithms.Run(parsed.algorithm, adjusted, endpoints.start, endpoints.end)

		entry := SweepSlot{
			TimeOfDay: slot.timeOfDay.String(),
			DayType:   slot.dayType.String(),
			Found:     raw.Found,
		}
		if raw.Found {
			entry.TotalWeight = raw.TotalWeight
			entry.EstimatedTimeMinutes = s.estimateMinutes(raw.TotalWeight)
			entry.HopCount = len(raw.Path) - 1
			if bestIdx < 0 || raw.TotalWeight < resp.Slots[bestIdx].TotalWeight-domain.Epsilon {
				bestIdx = i
			}
		}
		resp.Slots = append(resp.Slots, entry)
	}

	if bestIdx >= 0 {
		best := resp.Slots[bestIdx]
		resp.Best = &best
	}
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordRequest("sweep", "ok", elapsed)
		s.metrics.RecordGraphSize("sweep", len(base.Nodes), len(base.EdgeList))
	}
	s.auditSuccess(ctx, "SweepDepartures", audit.ActionSweep, requestID, segmentsHash, elapsed, map[string]any{
		"algorithm":   parsed.algorithm,
		"slots_found": foundSlots(resp.Slots),
		"best_found":  resp.Best != nil,
	})

	return resp, nil
}

func foundSlots(slots []SweepSlot) int {
	n := 0
	for i := range slots {
		if slots[i].Found {
			n++
		}
	}
	return n
}
