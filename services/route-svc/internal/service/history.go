// History reads.
//
// Computation history is written asynchronously by the compute path; this
// file exposes the read side: fetch one record, list with filters, delete,
// and aggregate statistics. All of it requires a configured repository; a
// service without one answers CodeUnavailable.

package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"routing/pkg/apperror"
	"routing/pkg/audit"
	"routing/pkg/telemetry"
	"routing/services/route-svc/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GetCalculation fetches one stored computation by its storage id.
func (s *RouteService) GetCalculation(ctx context.Context, id string) (*repository.RouteCalculation, error) {
	ctx, span := telemetry.StartSpan(ctx, "RouteService.GetCalculation")
	defer span.End()

	span.SetAttributes(attribute.String("calculation_id", id))

	if s.repo == nil {
		return nil, apperror.New(apperror.CodeUnavailable, "history storage is not configured")
	}
	if id == "" {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument, "calculation id is required", "id")
	}

	calc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCalculationNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "calculation not found")
		}
		telemetry.SetError(ctx, err)
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to get calculation")
	}

	s.auditSuccess(ctx, "GetCalculation", audit.ActionRead, calc.RequestID, calc.SegmentsHash, 0, map[string]any{
		"calculation_id": calc.ID,
	})
	return calc, nil
}

// ListCalculations returns a page of stored computations plus the total
// count matching the filter.
func (s *RouteService) ListCalculations(ctx context.Context, opts *repository.ListOptions) ([]*repository.CalculationSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "RouteService.ListCalculations")
	defer span.End()

	if s.repo == nil {
		return nil, 0, apperror.New(apperror.CodeUnavailable, "history storage is not configured")
	}

	if opts == nil {
		opts = &repository.ListOptions{Limit: defaultListLimit, Sort: repository.SortByCreatedDesc}
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, 0, apperror.New(apperror.CodeInvalidPagination, "limit and offset must be non-negative")
	}
	if opts.Limit == 0 {
		opts.Limit = defaultListLimit
	}
	if opts.Limit > maxListLimit {
		return nil, 0, apperror.New(apperror.CodeInvalidPagination, "limit exceeds the maximum page size").
			WithDetails("max_limit", maxListLimit)
	}

	span.SetAttributes(
		attribute.Int("limit", opts.Limit),
		attribute.Int("offset", opts.Offset),
	)

	summaries, total, err := s.repo.List(ctx, opts)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, 0, apperror.Wrap(err, apperror.CodeInternal, "failed to list calculations")
	}

	span.SetAttributes(attribute.Int64("total", total))
	return summaries, total, nil
}

// DeleteCalculation removes one stored computation.
func (s *RouteService) DeleteCalculation(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "RouteService.DeleteCalculation")
	defer span.End()

	span.SetAttributes(attribute.String("calculation_id", id))

	if s.repo == nil {
		return apperror.New(apperror.CodeUnavailable, "history storage is not configured")
	}
	if id == "" {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "calculation id is required", "id")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCalculationNotFound) {
			return apperror.New(apperror.CodeNotFound, "calculation not found")
		}
		telemetry.SetError(ctx, err)
		s.auditFailure(ctx, "DeleteCalculation", audit.ActionDelete, "", "", 0, err)
		return apperror.Wrap(err, apperror.CodeInternal, "failed to delete calculation")
	}

	s.auditSuccess(ctx, "DeleteCalculation", audit.ActionDelete, "", "", 0, map[string]any{
		"calculation_id": id,
	})
	return nil
}

// GetCalculationStatistics aggregates stored computations over an
// optional time range.
func (s *RouteService) GetCalculationStatistics(ctx context.Context, startTime, endTime *time.Time) (*repository.CalculationStatistics, error) {
	ctx, span := telemetry.StartSpan(ctx, "RouteService.GetCalculationStatistics")
	defer span.End()

	if s.repo == nil {
		return nil, apperror.New(apperror.CodeUnavailable, "history storage is not configured")
	}
	if startTime != nil && endTime != nil && endTime.Before(*startTime) {
		return nil, apperror.New(apperror.CodeInvalidArgument, "end time precedes start time")
	}

	stats, err := s.repo.GetStatistics(ctx, startTime, endTime)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to get calculation statistics")
	}

	span.SetAttributes(attribute.Int("total_calculations", stats.TotalCalculations))
	return stats, nil
}
