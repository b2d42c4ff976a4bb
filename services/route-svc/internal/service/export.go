// Report export.
//
// ExportRoute runs one of the three computations and renders the outcome
// as a downloadable report. The computation goes through the regular
// operation, so caching, metrics, audit and history behave exactly as
// for a direct call; the export layer adds format selection, rendering
// and its own audit trail on top.

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"routing/pkg/apperror"
	"routing/pkg/audit"
	"routing/pkg/telemetry"
	"routing/services/route-svc/internal/export"
)

// Export modes select which computation feeds the report.
const (
	ExportModeRoute   = "route"
	ExportModeCompare = "compare"
	ExportModeSweep   = "sweep"
)

// ExportRequest asks for a rendered report of one computation. The
// embedded route request describes the computation itself; Mode selects
// the operation and defaults to a single route. An empty Format falls
// back to the configured default.
type ExportRequest struct {
	RouteRequest

	Mode   string `json:"mode,omitempty"`
	Format string `json:"format,omitempty"`

	Title              string `json:"title,omitempty"`
	Author             string `json:"author,omitempty"`
	Description        string `json:"description,omitempty"`
	ExcludeRoads       bool   `json:"exclude_roads,omitempty"`
	IncludeCoordinates bool   `json:"include_coordinates,omitempty"`
}

// ExportResult is the rendered report plus its delivery metadata.
type ExportResult struct {
	RequestID        string  `json:"request_id"`
	Mode             string  `json:"mode"`
	Format           string  `json:"format"`
	ContentType      string  `json:"content_type"`
	Filename         string  `json:"filename"`
	SizeBytes        int64   `json:"size_bytes"`
	GenerationTimeMs float64 `json:"generation_time_ms"`
	Data             []byte  `json:"data"`
}

// ExportRoute computes a route, comparison or sweep and renders it in
// the requested format.
//
// Computation errors come back unchanged, so callers see the same codes
// as for the direct operations. Export-specific failures (unknown format
// or mode, rendering errors) carry their own codes.
func (s *RouteService) ExportRoute(ctx context.Context, req *ExportRequest) (*ExportResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "RouteService.ExportRoute")
	defer span.End()

	caller := "anonymous"
	if req != nil && req.CallerID != "" {
		caller = req.CallerID
	}
	if err := s.allow(ctx, "export", caller); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	if req == nil {
		err := apperror.New(apperror.CodeNilInput, "request is nil")
		telemetry.SetError(ctx, err)
		s.auditReject(ctx, "ExportRoute", audit.ActionExport, "", err)
		return nil, err
	}

	format, mode, err := s.exportPlan(req)
	if err != nil {
		telemetry.SetError(ctx, err)
		s.auditReject(ctx, "ExportRoute", audit.ActionExport, req.RequestID, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("format", string(format)),
		attribute.String("mode", mode),
	)

	start := time.Now()
	data, requestID, err := s.exportData(ctx, mode, req)
	if err != nil {
		// Ошибка вычисления уже прошла через аудит внутренней операции
		telemetry.SetError(ctx, err)
		return nil, err
	}

	gen, err := export.For(format, s.exportCfg)
	if err != nil {
		wrapped := apperror.Wrap(err, apperror.CodeInternal, "no generator for format")
		telemetry.SetError(ctx, wrapped)
		s.auditExportFailure(ctx, requestID, time.Since(start), wrapped)
		return nil, wrapped
	}

	genStart := time.Now()
	content, err := gen.Generate(ctx, data)
	genElapsed := time.Since(genStart)
	if err != nil {
		wrapped := apperror.Wrap(err, apperror.CodeInternal, "report generation failed")
		telemetry.SetError(ctx, wrapped)
		if s.metrics != nil {
			s.metrics.RecordRequest("export", "error", time.Since(start))
		}
		s.auditExportFailure(ctx, requestID, time.Since(start), wrapped)
		return nil, wrapped
	}
	elapsed := time.Since(start)

	result := &ExportResult{
		RequestID:        requestID,
		Mode:             mode,
		Format:           string(format),
		ContentType:      format.ContentType(),
		Filename:         exportFilename(req.Title, mode, format, time.Now()),
		SizeBytes:        int64(len(content)),
		GenerationTimeMs: float64(genElapsed.Microseconds()) / 1000.0,
		Data:             content,
	}

	if s.metrics != nil {
		s.metrics.RecordRequest("export", "ok", elapsed)
	}
	s.writeAudit(ctx, audit.NewEntry().
		Service("route-svc").
		Method("ExportRoute").
		Action(audit.ActionExport).
		Outcome(audit.OutcomeSuccess).
		Resource("report", result.Filename).
		RequestID(requestID).
		Duration(elapsed).
		Meta("mode", mode).
		Meta("format", string(format)).
		Meta("size_bytes", result.SizeBytes).
		Build())

	return result, nil
}

// exportPlan resolves the format and mode of an export request.
func (s *RouteService) exportPlan(req *ExportRequest) (export.Format, string, error) {
	name := req.Format
	if name == "" && s.exportCfg != nil {
		name = s.exportCfg.DefaultFormat
	}
	if name == "" {
		name = string(export.FormatCSV)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return "", "", apperror.NewWithField(apperror.CodeInvalidArgument, err.Error(), "format")
	}

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	switch mode {
	case "":
		mode = ExportModeRoute
	case ExportModeRoute, ExportModeCompare, ExportModeSweep:
	default:
		return "", "", apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("unknown export mode: %q", req.Mode), "mode")
	}

	return format, mode, nil
}

// exportData runs the selected computation and shapes its outcome for
// the generators.
func (s *RouteService) exportData(ctx context.Context, mode string, req *ExportRequest) (*export.RouteReportData, string, error) {
	opts := &export.Options{
		Title:              req.Title,
		Author:             req.Author,
		Description:        req.Description,
		ExcludeRoads:       req.ExcludeRoads,
		IncludeCoordinates: req.IncludeCoordinates,
	}
	echo := echoRequest(&req.RouteRequest)

	switch mode {
	case ExportModeCompare:
		resp, err := s.CompareAlgorithms(ctx, &CompareRequest{
			RequestID:  req.RequestID,
			CallerID:   req.CallerID,
			StartX:     req.StartX,
			StartY:     req.StartY,
			EndX:       req.EndX,
			EndY:       req.EndY,
			Segments:   req.Segments,
			Simulation: req.Simulation,
			Events:     req.Events,
		})
		if err != nil {
			return nil, "", err
		}
		echo.RequestID = resp.RequestID
		echo.Algorithm = "dijkstra, astar"
		return &export.RouteReportData{
			Options:     opts,
			GeneratedAt: time.Now(),
			Request:     echo,
			Comparison:  toComparisonData(resp),
			Graph:       toGraphInfo(resp.Graph),
		}, resp.RequestID, nil

	case ExportModeSweep:
		resp, err := s.SweepDepartures(ctx, &SweepRequest{
			RequestID:  req.RequestID,
			CallerID:   req.CallerID,
			Algorithm:  req.Algorithm,
			StartX:     req.StartX,
			StartY:     req.StartY,
			EndX:       req.EndX,
			EndY:       req.EndY,
			Segments:   req.Segments,
			Simulation: req.Simulation,
			Events:     req.Events,
		})
		if err != nil {
			return nil, "", err
		}
		echo.RequestID = resp.RequestID
		echo.Algorithm = resp.Algorithm
		return &export.RouteReportData{
			Options:     opts,
			GeneratedAt: time.Now(),
			Request:     echo,
			Sweep:       toSweepData(resp),
		}, resp.RequestID, nil

	default:
		resp, err := s.ComputeRoute(ctx, &req.RouteRequest)
		if err != nil {
			return nil, "", err
		}
		echo.RequestID = resp.RequestID
		echo.Algorithm = resp.Algorithm
		data := &export.RouteReportData{
			Options:     opts,
			GeneratedAt: time.Now(),
			Request:     echo,
			Route:       toRouteData(resp),
		}
		if resp.Metadata != nil {
			data.Graph = toGraphInfo(resp.Metadata.Graph)
			data.Warnings = resp.Metadata.Warnings
		}
		return data, resp.RequestID, nil
	}
}

func (s *RouteService) auditExportFailure(ctx context.Context, requestID string, elapsed time.Duration, err error) {
	entry := audit.NewEntry().
		Service("route-svc").
		Method("ExportRoute").
		Action(audit.ActionExport).
		Outcome(audit.OutcomeFailure).
		RequestID(requestID).
		Duration(elapsed).
		Error(string(apperror.Code(err)), err.Error()).
		Build()
	s.writeAudit(ctx, entry)
}

// =============================================================================
// Report Data Conversion
// =============================================================================

// echoRequest restates the computation parameters for the report header.
// Context fields stay empty when no simulation was requested; a present
// context echoes its normalized form, defaults filled in.
func echoRequest(req *RouteRequest) *export.RequestEcho {
	echo := &export.RequestEcho{
		StartX:       req.StartX,
		StartY:       req.StartY,
		EndX:         req.EndX,
		EndY:         req.EndY,
		SegmentCount: len(req.Segments),
		EventCount:   len(req.Events),
	}
	if req.Simulation != nil {
		sctx := validateSimulation(req.Simulation, apperror.NewValidationErrors())
		n := sctx.Normalized()
		echo.TimeOfDay = n.TimeOfDay.String()
		echo.DayType = n.DayType.String()
		echo.Weather = n.Weather.String()
		echo.Strategy = n.Strategy.String()
	}
	return echo
}

func toRouteData(resp *RouteResponse) *export.RouteData {
	rt := &export.RouteData{
		NodePath:             resp.NodePath,
		TotalWeight:          resp.TotalWeight,
		EstimatedTimeMinutes: resp.EstimatedTimeMinutes,
		Roads:                toRoadRows(resp.RoadPath),
		Points:               toPointRows(resp.CoordinatePath),
	}
	if resp.Metadata != nil {
		rt.ComputationTimeMs = resp.Metadata.ComputationTimeMs
		rt.Cached = resp.Metadata.Cached
	}
	return rt
}

func toComparisonData(resp *CompareResponse) *export.ComparisonData {
	return &export.ComparisonData{
		Dijkstra:    toComparisonSide(resp.Dijkstra),
		Astar:       toComparisonSide(resp.Astar),
		WeightDelta: resp.WeightDelta,
	}
}

func toComparisonSide(side *CompareSide) *export.ComparisonSide {
	if side == nil {
		return nil
	}
	hops := 0
	if len(side.NodePath) > 0 {
		hops = len(side.NodePath) - 1
	}
	return &export.ComparisonSide{
		Algorithm:            side.Algorithm,
		TotalWeight:          side.TotalWeight,
		EstimatedTimeMinutes: side.EstimatedTimeMinutes,
		HopCount:             hops,
		VisitedNodes:         side.VisitedNodes,
		ComputationTimeMs:    side.ComputationTimeMs,
	}
}

func toSweepData(resp *SweepResponse) *export.SweepData {
	data := &export.SweepData{
		Algorithm: resp.Algorithm,
		Slots:     make([]export.SweepSlotRow, len(resp.Slots)),
	}
	for i, slot := range resp.Slots {
		data.Slots[i] = toSweepSlotRow(slot)
	}
	if resp.Best != nil {
		best := toSweepSlotRow(*resp.Best)
		data.Best = &best
	}
	return data
}

func toSweepSlotRow(slot SweepSlot) export.SweepSlotRow {
	return export.SweepSlotRow{
		TimeOfDay:            slot.TimeOfDay,
		DayType:              slot.DayType,
		Found:                slot.Found,
		TotalWeight:          slot.TotalWeight,
		EstimatedTimeMinutes: slot.EstimatedTimeMinutes,
		HopCount:             slot.HopCount,
	}
}

func toRoadRows(roads []RouteRoad) []export.RoadRow {
	out := make([]export.RoadRow, len(roads))
	for i, r := range roads {
		out[i] = export.RoadRow{
			ID:       r.ID,
			StartX:   r.StartX,
			StartY:   r.StartY,
			EndX:     r.EndX,
			EndY:     r.EndY,
			RoadType: r.RoadType,
			Density:  r.Density,
			Known:    r.Known,
		}
	}
	return out
}

func toPointRows(points []RoutePoint) []export.PointRow {
	out := make([]export.PointRow, len(points))
	for i, p := range points {
		out[i] = export.PointRow{X: p.X, Y: p.Y}
	}
	return out
}

func toGraphInfo(g *GraphSummary) *export.GraphInfo {
	if g == nil {
		return nil
	}
	return &export.GraphInfo{
		NodeCount:         g.NodeCount,
		EdgeCount:         g.EdgeCount,
		SegmentCount:      g.SegmentCount,
		ComponentCount:    g.ComponentCount,
		MinAdjustedWeight: g.MinAdjustedWeight,
		MaxAdjustedWeight: g.MaxAdjustedWeight,
		AverageAdjusted:   g.AverageAdjusted,
		CongestedEdges:    g.CongestedEdges,
	}
}

// exportFilename derives the download name from the report title.
func exportFilename(title, mode string, format export.Format, at time.Time) string {
	base := mode + "_report"
	if title != "" {
		base = sanitizeFilename(title)
	}
	return fmt.Sprintf("%s_%s%s", base, at.Format("20060102_150405"), format.Extension())
}

func sanitizeFilename(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			result = append(result, r)
		} else if r == ' ' {
			result = append(result, '_')
		}
	}
	if len(result) == 0 {
		return "report"
	}
	return string(result)
}
