// Package main is the entry point for the route-svc runner.
//
// route-svc computes cheapest routes over caller-supplied road maps. The
// runner is a one-shot command: it reads a JSON request, executes one
// operation through the full service pipeline and writes the result. It
// exists for operational use (fixtures, benchmarks, report generation,
// debugging production maps) while the HTTP transport lives in a
// separate gateway.
//
// # Operations
//
// The operation is selected with the -op flag:
//
//	compute  - single route (default); reads a RouteRequest, writes a
//	           RouteResponse
//	compare  - Dijkstra vs A* over one adjusted graph; reads a
//	           CompareRequest, writes a CompareResponse
//	sweep    - same route across all departure slots (4 times of day x
//	           weekday/weekend); reads a SweepRequest, writes a
//	           SweepResponse
//	export   - computes and renders a report; reads an ExportRequest,
//	           writes the raw report bytes (CSV, JSON, Markdown, XLSX
//	           or PDF)
//
// # Architecture
//
// Every request runs the same pipeline the service uses behind a server:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                      Service Layer                          │
//	│  (internal/service - RouteService)                          │
//	│  - Validation, rate limiting, caching, audit, history       │
//	├─────────────────────────────────────────────────────────────┤
//	│                     Algorithm Layer                         │
//	│  (internal/algorithms - Dijkstra, A*)                       │
//	├─────────────────────────────────────────────────────────────┤
//	│                  Graph and Weight Layer                     │
//	│  (internal/graph - builder, nearest node)                   │
//	│  (internal/weights - context/event weight adjustment)       │
//	├─────────────────────────────────────────────────────────────┤
//	│                     Assembly Layer                          │
//	│  (internal/assembler - node/road/coordinate paths)          │
//	└─────────────────────────────────────────────────────────────┘
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: ROUTING_)
//  2. Config files (config.yaml, config/config.yaml, /etc/routing/config.yaml)
//  3. Default values
//
// Key configuration options (environment variable format):
//
//	# Application
//	ROUTING_APP_NAME           - Service name (default: route-svc)
//	ROUTING_APP_VERSION        - Service version (default: 1.0.0)
//	ROUTING_APP_ENVIRONMENT    - Environment: development, staging, production
//
//	# Logging
//	ROUTING_LOG_LEVEL     - Log level: debug, info, warn, error (default: info)
//	ROUTING_LOG_FORMAT    - Log format: json, text (default: json)
//	ROUTING_LOG_OUTPUT    - Output: stdout, stderr, file (default: stdout)
//	ROUTING_LOG_FILE_PATH - Log file path when output=file
//
//	# Caching
//	ROUTING_CACHE_ENABLED     - Enable result caching (default: false)
//	ROUTING_CACHE_DRIVER      - Cache backend: memory, redis (default: memory)
//	ROUTING_CACHE_HOST        - Redis host (default: localhost)
//	ROUTING_CACHE_PORT        - Redis port (default: 6379)
//	ROUTING_CACHE_DEFAULT_TTL - Cache TTL duration (default: 5m)
//
//	# History (PostgreSQL)
//	ROUTING_DATABASE_ENABLED      - Record calculations (default: false)
//	ROUTING_DATABASE_HOST         - PostgreSQL host
//	ROUTING_DATABASE_PORT         - PostgreSQL port (default: 5432)
//	ROUTING_DATABASE_DATABASE     - Database name
//	ROUTING_DATABASE_AUTO_MIGRATE - Run goose migrations on start
//
//	# Tracing (OpenTelemetry)
//	ROUTING_TRACING_ENABLED     - Enable distributed tracing (default: false)
//	ROUTING_TRACING_ENDPOINT    - OTLP endpoint (default: localhost:4317)
//	ROUTING_TRACING_SAMPLE_RATE - Sampling rate 0.0-1.0 (default: 0.1)
//
//	# Rate Limiting
//	ROUTING_RATE_LIMIT_ENABLED  - Enable rate limiting (default: true)
//	ROUTING_RATE_LIMIT_REQUESTS - Requests per window (default: 100)
//	ROUTING_RATE_LIMIT_WINDOW   - Time window (default: 1m)
//	ROUTING_RATE_LIMIT_STRATEGY - Strategy: sliding_window, token_bucket
//
//	# Audit Logging
//	ROUTING_AUDIT_ENABLED   - Enable audit logging (default: true)
//	ROUTING_AUDIT_BACKEND   - Backend: stdout, file (default: stdout)
//	ROUTING_AUDIT_FILE_PATH - Audit log file path
//
//	# Engine
//	ROUTING_ENGINE_DEFAULT_ALGORITHM  - dijkstra or astar (default: astar)
//	ROUTING_ENGINE_MINUTES_PER_WEIGHT - Travel time estimate factor
//	(factor tables: engine.road_type, engine.density, engine.time_of_day,
//	engine.day_type, engine.weather, engine.event, engine.strategy)
//
//	# Export
//	ROUTING_EXPORT_DEFAULT_FORMAT     - csv, json, markdown, excel, pdf
//	ROUTING_EXPORT_MAX_ROADS_IN_TABLE - Road table row cap (default: 50)
//	ROUTING_EXPORT_COMPANY_NAME       - Report footer branding
//
// # Input Format
//
// Requests are plain JSON. A minimal compute request:
//
//	{
//	  "algorithm": "astar",
//	  "start_x": 0, "start_y": 0,
//	  "end_x": 20, "end_y": 0,
//	  "segments": [
//	    {"id": "r1", "start_x": 0, "start_y": 0, "end_x": 10, "end_y": 0,
//	     "road_type": "NORMAL", "density": "LOW"},
//	    {"id": "r2", "start_x": 10, "start_y": 0, "end_x": 20, "end_y": 0,
//	     "road_type": "NORMAL", "density": "MEDIUM"}
//	  ],
//	  "simulation_params": {"time_of_day": "MORNING", "weather_condition": "RAIN"},
//	  "events": [
//	    {"id": "e1", "x": 5, "y": 0, "impact": "HIGH", "status": "ONGOING",
//	     "end_date": "2026-01-01T00:00:00Z"}
//	  ]
//	}
//
// An export request additionally carries "mode" (route, compare, sweep),
// "format" and report options (title, author, include_coordinates).
//
// # Usage
//
//	# Route a request from stdin to stdout
//	cat request.json | route-svc -pretty
//
//	# Compare algorithms
//	route-svc -op compare -input request.json -output comparison.json
//
//	# Find the cheapest departure window
//	route-svc -op sweep -input request.json -pretty
//
//	# Render an Excel report
//	route-svc -op export -input export.json -output report.xlsx
//
// # Error Handling
//
// Failures are logged with their error code (INVALID_COORDINATES,
// NO_PATH, RATE_LIMITED, ...) and the process exits non-zero: 2 for
// usage problems (unknown operation, unreadable input), 1 for request
// failures. Successful runs exit 0 and write only the result to the
// output.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"routing/migrations"
	"routing/pkg/apperror"
	"routing/pkg/audit"
	"routing/pkg/cache"
	"routing/pkg/config"
	"routing/pkg/database"
	"routing/pkg/logger"
	"routing/pkg/metrics"
	"routing/pkg/ratelimit"
	"routing/pkg/telemetry"
	"routing/services/route-svc/internal/repository"
	"routing/services/route-svc/internal/service"
)

var (
	opFlag      = flag.String("op", "compute", "operation: compute, compare, sweep, export")
	inputFlag   = flag.String("input", "-", "path to the JSON request, '-' for stdin")
	outputFlag  = flag.String("output", "-", "path for the result, '-' for stdout")
	prettyFlag  = flag.Bool("pretty", false, "indent JSON responses")
	timeoutFlag = flag.Duration("timeout", 2*time.Minute, "request timeout")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	switch *opFlag {
	case "compute", "compare", "sweep", "export":
	default:
		fmt.Fprintf(os.Stderr, "unknown operation %q (want compute, compare, sweep or export)\n", *opFlag)
		return 2
	}

	// =========================================================================
	// Configuration Loading
	// =========================================================================
	//
	// LoadWithServiceDefaults loads configuration with the following priority:
	//   1. Environment variables (ROUTING_* prefix)
	//   2. Config files (config.yaml in standard locations)
	//   3. Default values from pkg/config/loader.go
	cfg, err := config.LoadWithServiceDefaults("route-svc", 9094)
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 2
	}

	// =========================================================================
	// Logger Initialization
	// =========================================================================
	//
	// File output rotates via lumberjack (MaxSize/MaxBackups/MaxAge).
	// The runner writes its result to -output, so logs default to stdout
	// only when the result goes elsewhere; otherwise they move to stderr
	// to keep the output stream clean.
	logOutput := cfg.Log.Output
	if *outputFlag == "-" && (logOutput == "" || logOutput == "stdout") {
		logOutput = "stderr"
	}
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     logOutput,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	// =========================================================================
	// Telemetry Initialization (OpenTelemetry)
	// =========================================================================
	//
	// When enabled, spans cover the full pipeline: validation, graph
	// build, weight adjustment, search and assembly. Shutdown flushes
	// pending spans before the process exits.
	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Log.Warn("Failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	// =========================================================================
	// Metrics Initialization (Prometheus)
	// =========================================================================
	//
	// The runner has no metrics endpoint; counters still feed the default
	// registry so an embedding process can expose them.
	metrics.InitMetrics(cfg.Metrics.Namespace, cfg.App.Name)

	// =========================================================================
	// Cache Initialization
	// =========================================================================
	//
	// Keys combine the algorithm, the query hash (endpoints, normalized
	// context, events) and the segments hash, so any map change misses
	// cleanly. Backends: in-process LRU or Redis. The cache is optional
	// and the runner continues without it on failure.
	var routeCache *cache.RouteCache
	if cfg.Cache.Enabled {
		baseCache, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("Failed to create cache, continuing without cache", "error", err)
		} else {
			defer baseCache.Close()
			routeCache = cache.NewRouteCache(baseCache, cfg.Cache.DefaultTTL)
			logger.Log.Info("Route cache initialized",
				"driver", cfg.Cache.Driver,
				"ttl", cfg.Cache.DefaultTTL,
			)
		}
	}

	// =========================================================================
	// History Repository (PostgreSQL)
	// =========================================================================
	//
	// When enabled, every computation is recorded asynchronously with its
	// request/response JSON for later listing and statistics. Failures
	// here never fail the route call, and the runner itself degrades to
	// no recording when the database is unreachable.
	var repo repository.RouteRepository
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			logger.Log.Warn("Failed to connect to database, continuing without history", "error", err)
		} else {
			defer db.Close()
			if cfg.Database.AutoMigrate {
				if err := database.RunMigrations(ctx, db.Pool(), &cfg.Database,
					migrations.PostgresMigrations, "postgres"); err != nil {
					logger.Log.Warn("Failed to run migrations", "error", err)
				}
			}
			repo = repository.NewPostgresRouteRepository(db)
			logger.Log.Info("History repository initialized",
				"host", cfg.Database.Host,
				"database", cfg.Database.Database,
			)
		}
	}

	// =========================================================================
	// Audit Logging
	// =========================================================================
	//
	// Every operation writes an audit entry (action, outcome, request id,
	// map hash, duration). Backend stdout or file; file output is
	// buffered and flushed on Close.
	auditLog, err := audit.New(&audit.Config{
		Enabled:         cfg.Audit.Enabled,
		Backend:         cfg.Audit.Backend,
		FilePath:        cfg.Audit.FilePath,
		MaxSize:         cfg.Audit.MaxSize,
		MaxAge:          cfg.Audit.MaxAge,
		Compress:        cfg.Audit.Compress,
		BufferSize:      cfg.Audit.BufferSize,
		FlushPeriod:     cfg.Audit.FlushPeriod,
		ExcludeMethods:  cfg.Audit.ExcludeMethods,
		IncludeRequest:  cfg.Audit.IncludeRequest,
		IncludeResponse: cfg.Audit.IncludeResponse,
	})
	if err != nil {
		logger.Log.Warn("Failed to create audit logger, auditing disabled", "error", err)
		auditLog = &audit.NoopLogger{}
	}
	audit.SetGlobal(auditLog)
	defer auditLog.Close()

	// =========================================================================
	// Rate Limiting
	// =========================================================================
	//
	// Limits are keyed per operation and caller. In-memory for a single
	// process, Redis for a shared window across instances.
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.New(&ratelimit.Config{
			Requests:        cfg.RateLimit.Requests,
			Window:          cfg.RateLimit.Window,
			Strategy:        cfg.RateLimit.Strategy,
			Backend:         cfg.RateLimit.Backend,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
			RedisAddr:       cfg.RateLimit.RedisAddr,
		})
		if err != nil {
			logger.Log.Warn("Failed to create rate limiter, continuing without limits", "error", err)
		} else {
			defer limiter.Close()
		}
	}

	// =========================================================================
	// Service Assembly
	// =========================================================================
	svc := service.NewRouteService(
		cfg.App.Version,
		&cfg.Engine,
		&cfg.Export,
		routeCache,
		repo,
		auditLog,
		limiter,
	)

	logger.Info("Starting route request",
		"operation", *opFlag,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"cache_enabled", routeCache != nil,
		"history_enabled", repo != nil,
	)

	// =========================================================================
	// Request Execution
	// =========================================================================
	raw, err := readInput(*inputFlag)
	if err != nil {
		logger.Error("Failed to read request", "error", err, "input", *inputFlag)
		return 2
	}

	result, err := execute(ctx, svc, *opFlag, raw, *prettyFlag)
	if err != nil {
		logger.Error("Request failed",
			"operation", *opFlag,
			"code", string(apperror.Code(err)),
			"error", err,
		)
		return 1
	}

	if err := writeOutput(*outputFlag, result); err != nil {
		logger.Error("Failed to write result", "error", err, "output", *outputFlag)
		return 1
	}
	return 0
}

// execute dispatches one operation and returns the bytes to write.
func execute(ctx context.Context, svc *service.RouteService, op string, raw []byte, pretty bool) ([]byte, error) {
	switch op {
	case "compute":
		var req service.RouteRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "malformed request JSON")
		}
		resp, err := svc.ComputeRoute(ctx, &req)
		if err != nil {
			return nil, err
		}
		logger.Info("Route found",
			"algorithm", resp.Algorithm,
			"total_weight", resp.TotalWeight,
			"estimated_minutes", resp.EstimatedTimeMinutes,
			"hops", len(resp.RoadPath),
		)
		return marshalJSON(resp, pretty)

	case "compare":
		var req service.CompareRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "malformed request JSON")
		}
		resp, err := svc.CompareAlgorithms(ctx, &req)
		if err != nil {
			return nil, err
		}
		logger.Info("Comparison finished",
			"dijkstra_found", resp.Dijkstra != nil,
			"astar_found", resp.Astar != nil,
			"weight_delta", resp.WeightDelta,
		)
		return marshalJSON(resp, pretty)

	case "sweep":
		var req service.SweepRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "malformed request JSON")
		}
		resp, err := svc.SweepDepartures(ctx, &req)
		if err != nil {
			return nil, err
		}
		best := "none"
		if resp.Best != nil {
			best = fmt.Sprintf("%s/%s", resp.Best.TimeOfDay, resp.Best.DayType)
		}
		logger.Info("Sweep finished", "algorithm", resp.Algorithm, "best_slot", best)
		return marshalJSON(resp, pretty)

	case "export":
		var req service.ExportRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "malformed request JSON")
		}
		res, err := svc.ExportRoute(ctx, &req)
		if err != nil {
			return nil, err
		}
		logger.Info("Report generated",
			"format", res.Format,
			"filename", res.Filename,
			"size_bytes", res.SizeBytes,
			"generation_ms", res.GenerationTimeMs,
		)
		return res.Data, nil

	default:
		return nil, apperror.New(apperror.CodeInvalidArgument,
			fmt.Sprintf("unknown operation: %q", op))
	}
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to marshal response")
	}
	return append(data, '\n'), nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
