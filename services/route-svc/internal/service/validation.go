// Boundary validation.
//
// Requests are checked before the engine runs, and every problem is
// reported at once instead of failing on the first field. Errors abort
// the request; warnings (zero-length segments) travel to the caller in
// the response metadata. Validation also parses string enums into domain
// types so later stages work with typed values only.

package service

import (
	"fmt"

	"routing/pkg/apperror"
	"routing/pkg/domain"
	"routing/services/route-svc/internal/algorithms"
)

// validateRouteRequest checks a single-route request.
func validateRouteRequest(req *RouteRequest) (*parsedRequest, *apperror.ValidationErrors) {
	verrs := apperror.NewValidationErrors()
	if req == nil {
		verrs.AddError(apperror.CodeNilInput, "request is nil")
		return nil, verrs
	}

	parsed := validateCommon(req.StartX, req.StartY, req.EndX, req.EndY,
		req.Segments, req.Simulation, req.Events, verrs)
	parsed.algorithm = validateAlgorithm(req.Algorithm, verrs)

	return parsed, verrs
}

// validateCompareRequest checks a comparison request. The algorithm field
// is absent: both algorithms always run.
func validateCompareRequest(req *CompareRequest) (*parsedRequest, *apperror.ValidationErrors) {
	verrs := apperror.NewValidationErrors()
	if req == nil {
		verrs.AddError(apperror.CodeNilInput, "request is nil")
		return nil, verrs
	}

	parsed := validateCommon(req.StartX, req.StartY, req.EndX, req.EndY,
		req.Segments, req.Simulation, req.Events, verrs)

	return parsed, verrs
}

// validateSweepRequest checks a departure-sweep request.
func validateSweepRequest(req *SweepRequest) (*parsedRequest, *apperror.ValidationErrors) {
	verrs := apperror.NewValidationErrors()
	if req == nil {
		verrs.AddError(apperror.CodeNilInput, "request is nil")
		return nil, verrs
	}

	parsed := validateCommon(req.StartX, req.StartY, req.EndX, req.EndY,
		req.Segments, req.Simulation, req.Events, verrs)
	parsed.algorithm = validateAlgorithm(req.Algorithm, verrs)

	return parsed, verrs
}

// validateCommon runs the checks shared by every operation: query
// coordinates, the segment list, the simulation context and the events.
func validateCommon(
	startX, startY, endX, endY float64,
	segments []SegmentInput,
	sim *SimulationParams,
	events []EventInput,
	verrs *apperror.ValidationErrors,
) *parsedRequest {
	parsed := &parsedRequest{}

	validateQueryPoint(startX, startY, "start", verrs)
	validateQueryPoint(endX, endY, "end", verrs)

	parsed.segments, parsed.warnings = validateSegments(segments, verrs)
	parsed.sctx = validateSimulation(sim, verrs)
	parsed.events = validateEvents(events, verrs)

	return parsed
}

// validateQueryPoint rejects NaN and infinite query coordinates.
func validateQueryPoint(x, y float64, field string, verrs *apperror.ValidationErrors) {
	if !domain.IsFinite(x) || !domain.IsFinite(y) {
		verrs.Add(apperror.NewWithField(apperror.CodeInvalidCoordinates,
			fmt.Sprintf("%s point coordinates must be finite", field), field))
	}
}

// validateAlgorithm normalizes the algorithm name. An empty name selects
// the default and is not an error.
func validateAlgorithm(name string, verrs *apperror.ValidationErrors) string {
	normalized, err := algorithms.Normalize(name)
	if err != nil {
		verrs.Add(apperror.NewWithField(apperror.CodeInvalidAlgorithm,
			err.Error(), "algorithm"))
		return ""
	}
	return normalized
}

// validateSegments checks the segment list and converts it to domain
// segments. Returns the converted list and warning messages for
// degenerate but tolerated input.
func validateSegments(segments []SegmentInput, verrs *apperror.ValidationErrors) ([]domain.RoadSegment, []string) {
	if len(segments) == 0 {
		verrs.AddError(apperror.CodeEmptyGraph, "no road segments supplied")
		return nil, nil
	}

	converted := make([]domain.RoadSegment, 0, len(segments))
	var warnings []string
	seen := make(map[string]bool, len(segments))

	for i := range segments {
		seg := &segments[i]
		field := fmt.Sprintf("segments[%d]", i)

		if seg.ID == "" {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidSegment,
				"segment id is empty", field))
			continue
		}
		if seen[seg.ID] {
			verrs.Add(apperror.NewWithField(apperror.CodeDuplicateSegment,
				fmt.Sprintf("duplicate segment id %q", seg.ID), field))
			continue
		}
		seen[seg.ID] = true

		if !domain.IsFinite(seg.StartX) || !domain.IsFinite(seg.StartY) ||
			!domain.IsFinite(seg.EndX) || !domain.IsFinite(seg.EndY) {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidSegment,
				fmt.Sprintf("segment %q has non-finite coordinates", seg.ID), field))
			continue
		}

		roadType, err := domain.ParseRoadType(seg.RoadType)
		if err != nil {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidSegment, err.Error(), field))
			continue
		}
		density, err := domain.ParseDensity(seg.Density)
		if err != nil {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidSegment, err.Error(), field))
			continue
		}

		ds := toDomainSegment(seg, roadType, density)
		if ds.Length() < domain.CoordEpsilon {
			// Допустимо: вырожденный сегмент даёт петлю, поиск её не использует
			msg := fmt.Sprintf("segment %q has zero length", seg.ID)
			verrs.AddWarning(apperror.CodeZeroLengthSegment, msg)
			warnings = append(warnings, msg)
		}
		converted = append(converted, ds)
	}

	return converted, warnings
}

// validateSimulation parses the optional simulation context. Empty fields
// default silently; unknown values are errors.
func validateSimulation(sim *SimulationParams, verrs *apperror.ValidationErrors) *domain.SimulationContext {
	if sim == nil {
		return nil
	}

	sctx := &domain.SimulationContext{}

	if sim.TimeOfDay != "" {
		t, err := domain.ParseTimeOfDay(sim.TimeOfDay)
		if err != nil {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidContext, err.Error(), "simulation_params.time_of_day"))
		}
		sctx.TimeOfDay = t
	}
	if sim.DayType != "" {
		d, err := domain.ParseDayType(sim.DayType)
		if err != nil {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidContext, err.Error(), "simulation_params.day_type"))
		}
		sctx.DayType = d
	}
	if sim.WeatherCondition != "" {
		w, err := domain.ParseWeatherCondition(sim.WeatherCondition)
		if err != nil {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidContext, err.Error(), "simulation_params.weather_condition"))
		}
		sctx.Weather = w
	}
	if sim.RoutingStrategy != "" {
		s, err := domain.ParseRoutingStrategy(sim.RoutingStrategy)
		if err != nil {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidContext, err.Error(), "simulation_params.routing_strategy"))
		}
		sctx.Strategy = s
	}

	return sctx
}

// validateEvents checks the optional event list and converts it to
// domain events.
func validateEvents(events []EventInput, verrs *apperror.ValidationErrors) []domain.ActiveEvent {
	if len(events) == 0 {
		return nil
	}

	converted := make([]domain.ActiveEvent, 0, len(events))
	for i := range events {
		ev := &events[i]
		field := fmt.Sprintf("events[%d]", i)

		if !domain.IsFinite(ev.X) || !domain.IsFinite(ev.Y) {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidEvent,
				fmt.Sprintf("event %q has non-finite coordinates", ev.ID), field))
			continue
		}

		impact, err := domain.ParseImpactLevel(ev.Impact)
		if err != nil {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidEvent, err.Error(), field))
			continue
		}
		status, err := domain.ParseEventStatus(ev.Status)
		if err != nil {
			verrs.Add(apperror.NewWithField(apperror.CodeInvalidEvent, err.Error(), field))
			continue
		}

		converted = append(converted, toDomainEvent(ev, impact, status))
	}

	return converted
}

// validationFailure folds a non-empty error collection into one returned
// error. The first error is primary; the rest ride along in details.
func validationFailure(verrs *apperror.ValidationErrors) error {
	first := verrs.Errors[0]
	if len(verrs.Errors) > 1 {
		return first.WithDetails("additional_errors", verrs.ErrorMessages()[1:])
	}
	return first
}
