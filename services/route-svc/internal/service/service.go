// RouteService and the single-route operation.
//
// ComputeRoute runs the full pipeline per request:
//
//	rate limit -> validate -> cache lookup -> build -> adjust -> locate
//	endpoints -> search -> assemble -> cache store -> metrics -> audit ->
//	history record
//
// Every request builds a fresh graph from its own segment list; nothing is
// shared between requests, so the service is safe for concurrent use
// without locks. The cache, repository, audit log and rate limiter are all
// optional: a nil collaborator disables that stage and the pipeline runs
// the same way.

package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"routing/pkg/apperror"
	"routing/pkg/audit"
	"routing/pkg/cache"
	"routing/pkg/config"
	"routing/pkg/domain"
	"routing/pkg/logger"
	"routing/pkg/metrics"
	"routing/pkg/ratelimit"
	"routing/pkg/telemetry"
	"routing/services/route-svc/internal/algorithms"
	"routing/services/route-svc/internal/assembler"
	"routing/services/route-svc/internal/graph"
	"routing/services/route-svc/internal/repository"
	"routing/services/route-svc/internal/weights"
)

// defaultMinutesPerWeight converts total weight into the travel estimate
// when the engine configuration does not override it.
const defaultMinutesPerWeight = 2.0

// historyWriteTimeout bounds the asynchronous history insert.
const historyWriteTimeout = 5 * time.Second

// =============================================================================
// RouteService
// =============================================================================

// RouteService computes routes over caller-supplied road maps.
type RouteService struct {
	version   string
	engine    *config.EngineConfig
	exportCfg *config.ExportConfig

	builder *graph.Builder
	model   *weights.Model

	metrics    *metrics.Metrics
	routeCache *cache.RouteCache
	repo       repository.RouteRepository
	auditLog   audit.Logger
	limiter    ratelimit.Limiter
}

// NewRouteService creates the service. exportCfg, routeCache, repo and
// limiter may be nil, which leaves report export on defaults and disables
// caching, history recording and rate limiting. A nil auditLog falls back
// to the process-wide audit logger.
func NewRouteService(
	version string,
	engine *config.EngineConfig,
	exportCfg *config.ExportConfig,
	routeCache *cache.RouteCache,
	repo repository.RouteRepository,
	auditLog audit.Logger,
	limiter ratelimit.Limiter,
) *RouteService {
	if auditLog == nil {
		auditLog = audit.Get()
	}
	return &RouteService{
		version:    version,
		engine:     engine,
		exportCfg:  exportCfg,
		builder:    graph.NewBuilder(engine),
		model:      weights.NewModel(engine),
		metrics:    metrics.Get(),
		routeCache: routeCache,
		repo:       repo,
		auditLog:   auditLog,
		limiter:    limiter,
	}
}

// Version returns the service version string.
func (s *RouteService) Version() string {
	return s.version
}

// =============================================================================
// ComputeRoute
// =============================================================================

// ComputeRoute finds the cheapest route for the request.
//
// A request whose start equals its end yields a trivial single-node route
// with zero weight. A disconnected start/end pair yields a CodeNoPath
// error; no partial routes are ever returned.
func (s *RouteService) ComputeRoute(ctx context.Context, req *RouteRequest) (*RouteResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "RouteService.ComputeRoute")
	defer span.End()

	if err := s.allow(ctx, "compute", callerID(req)); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	parsed, verrs := validateRouteRequest(req)
	if verrs.HasErrors() {
		err := validationFailure(verrs)
		span.SetAttributes(telemetry.ValidationAttributes(len(verrs.Errors), false)...)
		telemetry.SetError(ctx, err)
		s.auditReject(ctx, "ComputeRoute", audit.ActionCompute, requestIDOf(req), err)
		return nil, err
	}

	requestID := ensureRequestID(req.RequestID)
	segmentsHash := cache.SegmentsHash(parsed.segments)

	span.SetAttributes(
		attribute.String("algorithm", parsed.algorithm),
		attribute.String("request_id", requestID),
		attribute.Int("segments", len(parsed.segments)),
	)
	span.SetAttributes(telemetry.ContextAttributes(
		parsed.sctx.TimeOfDay.String(), parsed.sctx.DayType.String(),
		parsed.sctx.Weather.String(), parsed.sctx.Strategy.String(),
		len(parsed.events))...)

	// Кэш
	cacheKey := s.routeKey(parsed, req.StartX, req.StartY, req.EndX, req.EndY, segmentsHash)
	if cached, ok := s.cacheLookup(ctx, cacheKey); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		resp := cachedToResponse(requestID, cached)
		resp.Metadata.Warnings = parsed.warnings
		s.auditSuccess(ctx, "ComputeRoute", audit.ActionCompute, requestID, segmentsHash, 0, map[string]any{
			"algorithm": resp.Algorithm,
			"cached":    true,
		})
		s.recordCalculation(ctx, s.buildCalculation(req, parsed, requestID, segmentsHash,
			repository.StatusFound, nil, resp.EstimatedTimeMinutes, 0, resp))
		return resp, nil
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))

	// Вычисление
	start := time.Now()
	route, err := s.computeOnce(ctx, parsed, req.StartX, req.StartY, req.EndX, req.EndY)
	elapsed := time.Since(start)

	if err != nil {
		telemetry.SetError(ctx, err)
		if s.metrics != nil {
			s.metrics.RecordRouteOperation(parsed.algorithm, false, elapsed, 0)
		}
		s.auditFailure(ctx, "ComputeRoute", audit.ActionCompute, requestID, segmentsHash, elapsed, err)
		if apperror.Is(err, apperror.CodeNoPath) {
			s.recordCalculation(ctx, s.buildCalculation(req, parsed, requestID, segmentsHash,
				repository.StatusNoPath, nil, 0, elapsed, nil))
		}
		return nil, err
	}

	estimated := s.estimateMinutes(route.result.TotalWeight)

	resp := &RouteResponse{
		RequestID:            requestID,
		Algorithm:            parsed.algorithm,
		NodePath:             route.result.NodePath,
		RoadPath:             toRouteRoads(route.result.RoadPath),
		CoordinatePath:       toRoutePoints(route.result.CoordinatePath),
		TotalWeight:          route.result.TotalWeight,
		EstimatedTimeMinutes: estimated,
		Metadata: &RouteMetadata{
			ComputationTimeMs: float64(elapsed.Microseconds()) / 1000.0,
			Cached:            false,
			VisitedNodes:      route.visited,
			StartNodeID:       route.startNode,
			EndNodeID:         route.endNode,
			Graph:             toGraphSummary(route.graph),
			Warnings:          parsed.warnings,
		},
	}

	telemetry.SetAttributes(ctx, telemetry.RouteAttributes(
		parsed.algorithm, route.result.HopCount(), route.result.TotalWeight, estimated)...)
	telemetry.SetAttributes(ctx, telemetry.GraphAttributes(
		len(route.graph.Nodes), len(route.graph.EdgeList), route.startNode, route.endNode)...)

	// Кэш, метрики, аудит, история
	s.cacheStore(ctx, cacheKey, resp)
	if s.metrics != nil {
		s.metrics.RecordRouteOperation(parsed.algorithm, true, elapsed, route.result.TotalWeight)
		s.metrics.RecordPathHops(parsed.algorithm, route.result.HopCount())
		s.metrics.RecordGraphSize("compute", len(route.graph.Nodes), len(route.graph.EdgeList))
	}
	s.auditSuccess(ctx, "ComputeRoute", audit.ActionCompute, requestID, segmentsHash, elapsed, map[string]any{
		"algorithm":    parsed.algorithm,
		"total_weight": route.result.TotalWeight,
		"hops":         route.result.HopCount(),
	})
	s.recordCalculation(ctx, s.buildCalculation(req, parsed, requestID, segmentsHash,
		repository.StatusFound, route, estimated, elapsed, resp))

	return resp, nil
}

// =============================================================================
// Shared Pipeline
// =============================================================================

// computedRoute is the outcome of one search over one adjusted graph.
type computedRoute struct {
	graph     *domain.Graph
	startNode int64
	endNode   int64
	visited   int
	result    *domain.PathResult
}

// computeOnce runs build, adjust, endpoint lookup, search and assembly
// for an already validated request.
func (s *RouteService) computeOnce(ctx context.Context, parsed *parsedRequest, startX, startY, endX, endY float64) (*computedRoute, error) {
	adjusted, err := s.prepareGraph(ctx, parsed)
	if err != nil {
		return nil, err
	}
	return s.searchOn(adjusted, parsed, startX, startY, endX, endY)
}

// prepareGraph builds the fresh per-request graph and applies the
// simulation context to its weights.
func (s *RouteService) prepareGraph(ctx context.Context, parsed *parsedRequest) (*domain.Graph, error) {
	_, span := telemetry.StartSpan(ctx, "RouteService.prepareGraph")
	defer span.End()

	g, err := s.builder.Build(parsed.segments)
	if err != nil {
		return nil, err
	}
	adjusted := s.model.Adjust(g, parsed.segments, parsed.sctx, parsed.events)

	span.SetAttributes(
		attribute.Int("nodes", len(adjusted.Nodes)),
		attribute.Int("edges", len(adjusted.EdgeList)),
	)
	return adjusted, nil
}

// searchOn locates the endpoints on an already adjusted graph and runs
// the search plus assembly.
func (s *RouteService) searchOn(adjusted *domain.Graph, parsed *parsedRequest, startX, startY, endX, endY float64) (*computedRoute, error) {
	endpoints, err := s.locateEndpoints(adjusted, startX, startY, endX, endY)
	if err != nil {
		return nil, err
	}

	raw := algorithms.Run(parsed.algorithm, adjusted, endpoints.start, endpoints.end)
	if !raw.Found {
		return nil, apperror.New(apperror.CodeNoPath, "no path between start and end").
			WithDetails("start_node", endpoints.start).
			WithDetails("end_node", endpoints.end)
	}

	result, err := assembler.Assemble(adjusted, raw.Path, raw.TotalWeight, parsed.segments)
	if err != nil {
		return nil, err
	}

	return &computedRoute{
		graph:     adjusted,
		startNode: endpoints.start,
		endNode:   endpoints.end,
		visited:   raw.Visited,
		result:    result,
	}, nil
}

// estimateMinutes converts a total weight into the coarse travel time
// estimate, rounded to whole minutes.
func (s *RouteService) estimateMinutes(totalWeight float64) int64 {
	mpw := defaultMinutesPerWeight
	if s.engine != nil && s.engine.MinutesPerWeight > 0 {
		mpw = s.engine.MinutesPerWeight
	}
	return int64(math.Round(totalWeight * mpw))
}

// =============================================================================
// Cache
// =============================================================================

// routeKey derives the cache key of a validated request. The simulation
// context is normalized first so that a partially filled context and the
// equivalent fully filled one share an entry; the absence of a context
// keys separately because it means neutral multipliers.
func (s *RouteService) routeKey(parsed *parsedRequest, startX, startY, endX, endY float64, segmentsHash string) string {
	if s.routeCache == nil {
		return ""
	}
	keyCtx := domain.SimulationContext{}
	if parsed.sctx != nil {
		keyCtx = parsed.sctx.Normalized()
	}
	queryHash := cache.QueryHash(startX, startY, endX, endY, keyCtx, parsed.events)
	return cache.BuildRouteKey(parsed.algorithm, queryHash, segmentsHash)
}

func (s *RouteService) cacheLookup(ctx context.Context, key string) (*cache.CachedRoute, bool) {
	if s.routeCache == nil || key == "" {
		return nil, false
	}
	cached, found, err := s.routeCache.Get(ctx, key)
	if err != nil {
		logger.Log.Warn("Route cache lookup failed", "error", err)
		return nil, false
	}
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(found)
	}
	if found {
		telemetry.AddEvent(ctx, "cache_hit", telemetry.CacheAttributes(true, key)...)
	}
	return cached, found
}

func (s *RouteService) cacheStore(ctx context.Context, key string, resp *RouteResponse) {
	if s.routeCache == nil || key == "" {
		return
	}
	entry := &cache.CachedRoute{
		NodePath:             resp.NodePath,
		RoadPath:             toCachedRoads(resp.RoadPath),
		CoordinatePath:       toCachedPoints(resp.CoordinatePath),
		TotalWeight:          resp.TotalWeight,
		EstimatedTimeMinutes: resp.EstimatedTimeMinutes,
		Algorithm:            resp.Algorithm,
	}
	if err := s.routeCache.Set(ctx, key, entry, 0); err != nil {
		logger.Log.Warn("Failed to cache route result", "error", err, "key", key)
	}
}

func cachedToResponse(requestID string, cached *cache.CachedRoute) *RouteResponse {
	roads := make([]RouteRoad, len(cached.RoadPath))
	for i, r := range cached.RoadPath {
		roads[i] = RouteRoad{
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
	points := make([]RoutePoint, len(cached.CoordinatePath))
	for i, p := range cached.CoordinatePath {
		points[i] = RoutePoint{X: p.X, Y: p.Y}
	}
	return &RouteResponse{
		RequestID:            requestID,
		Algorithm:            cached.Algorithm,
		NodePath:             cached.NodePath,
		RoadPath:             roads,
		CoordinatePath:       points,
		TotalWeight:          cached.TotalWeight,
		EstimatedTimeMinutes: cached.EstimatedTimeMinutes,
		Metadata: &RouteMetadata{
			ComputationTimeMs: 0,
			Cached:            true,
		},
	}
}

func toCachedRoads(roads []RouteRoad) []cache.CachedRoad {
	out := make([]cache.CachedRoad, len(roads))
	for i, r := range roads {
		out[i] = cache.CachedRoad{
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

func toCachedPoints(points []RoutePoint) []cache.CachedPoint {
	out := make([]cache.CachedPoint, len(points))
	for i, p := range points {
		out[i] = cache.CachedPoint{X: p.X, Y: p.Y}
	}
	return out
}

// =============================================================================
// Rate Limiting, Audit, History
// =============================================================================

// allow consults the rate limiter. A limiter backend failure fails open:
// the request proceeds and the failure is logged.
func (s *RouteService) allow(ctx context.Context, operation, caller string) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.Allow(ctx, "route:"+operation+":"+caller)
	if err != nil {
		logger.Log.Warn("Rate limiter unavailable", "operation", operation, "error", err)
		return nil
	}
	if !allowed {
		return apperror.New(apperror.CodeRateLimited, "request rate limit exceeded").
			WithDetails("operation", operation)
	}
	return nil
}

func callerID(req *RouteRequest) string {
	if req == nil || req.CallerID == "" {
		return "anonymous"
	}
	return req.CallerID
}

func requestIDOf(req *RouteRequest) string {
	if req == nil {
		return ""
	}
	return req.RequestID
}

func ensureRequestID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *RouteService) auditSuccess(ctx context.Context, method string, action audit.Action, requestID, segmentsHash string, elapsed time.Duration, meta map[string]any) {
	b := audit.NewEntry().
		Service("route-svc").
		Method(method).
		Action(action).
		Outcome(audit.OutcomeSuccess).
		Resource("map", segmentsHash).
		RequestID(requestID).
		Duration(elapsed)
	for k, v := range meta {
		b = b.Meta(k, v)
	}
	s.writeAudit(ctx, b.Build())
}

func (s *RouteService) auditFailure(ctx context.Context, method string, action audit.Action, requestID, segmentsHash string, elapsed time.Duration, err error) {
	entry := audit.NewEntry().
		Service("route-svc").
		Method(method).
		Action(action).
		Outcome(audit.OutcomeFailure).
		Resource("map", segmentsHash).
		RequestID(requestID).
		Duration(elapsed).
		Error(string(apperror.Code(err)), err.Error()).
		Build()
	s.writeAudit(ctx, entry)
}

func (s *RouteService) auditReject(ctx context.Context, method string, action audit.Action, requestID string, err error) {
	entry := audit.NewEntry().
		Service("route-svc").
		Method(method).
		Action(action).
		Outcome(audit.OutcomeRejected).
		RequestID(requestID).
		Error(string(apperror.Code(err)), err.Error()).
		Build()
	s.writeAudit(ctx, entry)
}

func (s *RouteService) writeAudit(ctx context.Context, entry *audit.Entry) {
	if s.auditLog == nil {
		return
	}
	if err := s.auditLog.Log(ctx, entry); err != nil {
		logger.Log.Warn("Failed to write audit entry", "error", err)
	}
}

// buildCalculation assembles the history record for one computation. A
// nil route with a non-nil resp is a cache hit; both nil is a no-path
// outcome.
func (s *RouteService) buildCalculation(
	req *RouteRequest,
	parsed *parsedRequest,
	requestID, segmentsHash, status string,
	route *computedRoute,
	estimated int64,
	elapsed time.Duration,
	resp *RouteResponse,
) *repository.RouteCalculation {
	calc := &repository.RouteCalculation{
		RequestID:         requestID,
		Algorithm:         parsed.algorithm,
		Status:            status,
		StartX:            req.StartX,
		StartY:            req.StartY,
		EndX:              req.EndX,
		EndY:              req.EndY,
		SegmentsHash:      segmentsHash,
		SegmentCount:      len(parsed.segments),
		ComputationTimeMs: float64(elapsed.Microseconds()) / 1000.0,
		Tags:              req.Tags,
	}

	sctx := domain.SimulationContext{}
	if parsed.sctx != nil {
		sctx = parsed.sctx.Normalized()
	}
	calc.TimeOfDay = sctx.TimeOfDay.String()
	calc.DayType = sctx.DayType.String()
	calc.Weather = sctx.Weather.String()
	calc.Strategy = sctx.Strategy.String()

	switch {
	case route != nil:
		calc.NodeCount = len(route.graph.Nodes)
		calc.EdgeCount = len(route.graph.EdgeList)
		calc.HopCount = route.result.HopCount()
		calc.TotalWeight = route.result.TotalWeight
		calc.EstimatedTimeMinutes = estimated
	case resp != nil:
		// Попадание в кэш: граф не строился, размеры недоступны
		calc.Cached = true
		calc.HopCount = len(resp.RoadPath)
		calc.TotalWeight = resp.TotalWeight
		calc.EstimatedTimeMinutes = resp.EstimatedTimeMinutes
	}

	if data, err := json.Marshal(req); err == nil {
		calc.RequestData = data
	}
	if resp != nil {
		if data, err := json.Marshal(resp); err == nil {
			calc.ResponseData = data
		}
	}

	return calc
}

// recordCalculation persists the history record without blocking the
// request. Failures are logged and never surface to the caller.
func (s *RouteService) recordCalculation(ctx context.Context, calc *repository.RouteCalculation) {
	if s.repo == nil || calc == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		cctx, cancel := context.WithTimeout(detached, historyWriteTimeout)
		defer cancel()
		err := telemetry.Operation(cctx, "history.record_calculation", func(ctx context.Context) error {
			return s.repo.Create(ctx, calc)
		})
		if err != nil {
			logger.Log.Warn("Failed to record route calculation",
				"request_id", calc.RequestID, "error", err)
		}
	}()
}
