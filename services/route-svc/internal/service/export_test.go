package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routing/pkg/apperror"
	"routing/pkg/audit"
	"routing/pkg/config"
	"routing/services/route-svc/internal/export"
)

func exportRequestFrom(req *RouteRequest) *ExportRequest {
	return &ExportRequest{RouteRequest: *req}
}

func TestExportRoute_CSV(t *testing.T) {
	svc := newTestService()

	req := exportRequestFrom(lineRequest())
	req.Format = "csv"

	res, err := svc.ExportRoute(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "route", res.Mode)
	assert.Equal(t, "csv", res.Format)
	assert.Equal(t, "text/csv", res.ContentType)
	assert.NotEmpty(t, res.RequestID)
	assert.True(t, strings.HasPrefix(res.Filename, "route_report_"), "filename: %s", res.Filename)
	assert.True(t, strings.HasSuffix(res.Filename, ".csv"), "filename: %s", res.Filename)
	assert.Equal(t, int64(len(res.Data)), res.SizeBytes)

	body := string(res.Data)
	assert.Contains(t, body, "Total Weight")
	assert.Contains(t, body, "23.0000")
	assert.Contains(t, body, "astar")
	assert.Contains(t, body, "r1")
	assert.Contains(t, body, "r2")
}

func TestExportRoute_DefaultFormatFromConfig(t *testing.T) {
	cfg := &config.ExportConfig{DefaultFormat: "markdown"}
	svc := NewRouteService("test", testEngineConfig(), cfg, nil, nil, &audit.NoopLogger{}, nil)

	res, err := svc.ExportRoute(context.Background(), exportRequestFrom(lineRequest()))
	require.NoError(t, err)

	assert.Equal(t, "markdown", res.Format)
	assert.Equal(t, "text/markdown", res.ContentType)
	assert.True(t, strings.HasSuffix(res.Filename, ".md"), "filename: %s", res.Filename)
	assert.True(t, strings.HasPrefix(string(res.Data), "# Route Report"))
}

func TestExportRoute_CompareJSON(t *testing.T) {
	svc := newTestService()

	req := exportRequestFrom(lineRequest())
	req.Mode = "compare"
	req.Format = "json"

	res, err := svc.ExportRoute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "compare", res.Mode)
	assert.True(t, strings.HasPrefix(res.Filename, "compare_report_"), "filename: %s", res.Filename)

	var report export.JSONReport
	require.NoError(t, json.Unmarshal(res.Data, &report))

	assert.Nil(t, report.Route)
	require.NotNil(t, report.Comparison)
	require.NotNil(t, report.Comparison.Dijkstra)
	require.NotNil(t, report.Comparison.Astar)
	assert.InDelta(t, 23.0, report.Comparison.Dijkstra.TotalWeight, 1e-9)
	assert.InDelta(t, 23.0, report.Comparison.Astar.TotalWeight, 1e-9)
	assert.Equal(t, 2, report.Comparison.Astar.HopCount)

	require.NotNil(t, report.Request)
	assert.Equal(t, "dijkstra, astar", report.Request.Algorithm)
	assert.Equal(t, 2, report.Request.SegmentCount)

	require.NotNil(t, report.Graph)
	assert.Equal(t, int64(3), report.Graph.NodeCount)
}

func TestExportRoute_SweepMarkdown(t *testing.T) {
	svc := newTestService()

	req := exportRequestFrom(lineRequest())
	req.Mode = "sweep"
	req.Format = "markdown"

	res, err := svc.ExportRoute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "sweep", res.Mode)

	body := string(res.Data)
	assert.Contains(t, body, "## Departure Sweep (astar)")
	assert.Contains(t, body, "**Best slot:** night / weekend")
}

func TestExportRoute_BinaryFormats(t *testing.T) {
	svc := newTestService()

	excel, err := svc.ExportRoute(context.Background(), &ExportRequest{
		RouteRequest: *lineRequest(),
		Format:       "excel",
	})
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", excel.ContentType)
	assert.True(t, strings.HasSuffix(excel.Filename, ".xlsx"), "filename: %s", excel.Filename)
	require.True(t, len(excel.Data) > 4)
	assert.Equal(t, []byte{'P', 'K'}, excel.Data[:2])

	pdf, err := svc.ExportRoute(context.Background(), &ExportRequest{
		RouteRequest: *lineRequest(),
		Format:       "pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Data, []byte("%PDF")))
}

func TestExportRoute_TitleInFilename(t *testing.T) {
	svc := newTestService()

	req := exportRequestFrom(lineRequest())
	req.Format = "csv"
	req.Title = "Morning Delivery Run"

	res, err := svc.ExportRoute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Filename, "Morning_Delivery_Run_"), "filename: %s", res.Filename)
	assert.Contains(t, string(res.Data), "Morning Delivery Run")
}

func TestExportRoute_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.ExportRoute(ctx, nil)
	assert.True(t, apperror.Is(err, apperror.CodeNilInput))

	req := exportRequestFrom(lineRequest())
	req.Format = "html"
	_, err = svc.ExportRoute(ctx, req)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidArgument), "got: %v", err)

	req = exportRequestFrom(lineRequest())
	req.Mode = "batch"
	_, err = svc.ExportRoute(ctx, req)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidArgument), "got: %v", err)
}

func TestExportRoute_ComputationErrorPassesThrough(t *testing.T) {
	svc := newTestService()

	req := &ExportRequest{
		RouteRequest: RouteRequest{StartX: 0, StartY: 0, EndX: 1, EndY: 1},
		Format:       "csv",
	}
	_, err := svc.ExportRoute(context.Background(), req)
	assert.True(t, apperror.Is(err, apperror.CodeEmptyGraph), "got: %v", err)
}

func TestExportRoute_RateLimited(t *testing.T) {
	svc := NewRouteService("test", testEngineConfig(), nil, nil, nil, &audit.NoopLogger{}, newSingleRequestLimiter())
	ctx := context.Background()

	req := exportRequestFrom(lineRequest())
	req.Format = "csv"

	_, err := svc.ExportRoute(ctx, req)
	require.NoError(t, err)

	_, err = svc.ExportRoute(ctx, req)
	assert.True(t, apperror.Is(err, apperror.CodeRateLimited), "got: %v", err)
}

func TestExportRoute_CachedComputation(t *testing.T) {
	svc := NewRouteService("test", testEngineConfig(), nil, newMemoryRouteCache(), nil, &audit.NoopLogger{}, nil)
	ctx := context.Background()

	req := exportRequestFrom(lineRequest())
	req.Format = "csv"

	first, err := svc.ExportRoute(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, string(first.Data), "Cached,false")

	second, err := svc.ExportRoute(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, string(second.Data), "Cached,true")
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "route_report_20250601_120000.csv",
		exportFilename("", "route", export.FormatCSV, at))
	assert.Equal(t, "Morning_Run_20250601_120000.xlsx",
		exportFilename("Morning Run", "sweep", export.FormatExcel, at))
	assert.Equal(t, "report_20250601_120000.pdf",
		exportFilename("///", "route", export.FormatPDF, at))
}
