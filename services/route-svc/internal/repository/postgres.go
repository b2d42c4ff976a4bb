package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"routing/pkg/database"
	"routing/pkg/telemetry"
)

// PostgresRouteRepository PostgreSQL реализация
type PostgresRouteRepository struct {
	db database.DB
}

// NewPostgresRouteRepository создаёт новый репозиторий
func NewPostgresRouteRepository(db database.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{db: db}
}

func (r *PostgresRouteRepository) Create(ctx context.Context, calc *RouteCalculation) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRouteRepository.Create")
	defer span.End()

	query := `
		INSERT INTO route_calculations (
			request_id, algorithm, status,
			start_x, start_y, end_x, end_y,
			segments_hash, segment_count, node_count, edge_count, hop_count,
			total_weight, estimated_time_minutes, computation_time_ms,
			time_of_day, day_type, weather, strategy, cached,
			request_data, response_data, tags
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		calc.RequestID,
		calc.Algorithm,
		calc.Status,
		calc.StartX,
		calc.StartY,
		calc.EndX,
		calc.EndY,
		calc.SegmentsHash,
		calc.SegmentCount,
		calc.NodeCount,
		calc.EdgeCount,
		calc.HopCount,
		calc.TotalWeight,
		calc.EstimatedTimeMinutes,
		calc.ComputationTimeMs,
		calc.TimeOfDay,
		calc.DayType,
		calc.Weather,
		calc.Strategy,
		calc.Cached,
		calc.RequestData,
		calc.ResponseData,
		calc.Tags,
	).Scan(&calc.ID, &calc.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create route calculation: %w", err)
	}

	return nil
}

func (r *PostgresRouteRepository) GetByID(ctx context.Context, id string) (*RouteCalculation, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRouteRepository.GetByID")
	defer span.End()

	query := `
		SELECT
			id, request_id, algorithm, status,
			start_x, start_y, end_x, end_y,
			segments_hash, segment_count, node_count, edge_count, hop_count,
			total_weight, estimated_time_minutes, computation_time_ms,
			time_of_day, day_type, weather, strategy, cached,
			request_data, response_data, tags, created_at
		FROM route_calculations
		WHERE id = $1
	`

	calc := &RouteCalculation{}
	var tags pgtype.Array[string]

	err := r.db.QueryRow(ctx, query, id).Scan(
		&calc.ID,
		&calc.RequestID,
		&calc.Algorithm,
		&calc.Status,
		&calc.StartX,
		&calc.StartY,
		&calc.EndX,
		&calc.EndY,
		&calc.SegmentsHash,
		&calc.SegmentCount,
		&calc.NodeCount,
		&calc.EdgeCount,
		&calc.HopCount,
		&calc.TotalWeight,
		&calc.EstimatedTimeMinutes,
		&calc.ComputationTimeMs,
		&calc.TimeOfDay,
		&calc.DayType,
		&calc.Weather,
		&calc.Strategy,
		&calc.Cached,
		&calc.RequestData,
		&calc.ResponseData,
		&tags,
		&calc.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCalculationNotFound
		}
		return nil, fmt.Errorf("failed to get route calculation: %w", err)
	}

	calc.Tags = tags.Elements

	return calc, nil
}

func (r *PostgresRouteRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRouteRepository.Delete")
	defer span.End()

	query := `DELETE FROM route_calculations WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete route calculation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCalculationNotFound
	}

	return nil
}

// listPage страница списка вместе с общим количеством
type listPage struct {
	summaries []*CalculationSummary
	total     int64
}

func (r *PostgresRouteRepository) List(
	ctx context.Context,
	opts *ListOptions,
) ([]*CalculationSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRouteRepository.List")
	defer span.End()

	if opts == nil {
		opts = &ListOptions{Limit: 20, Offset: 0, Sort: SortByCreatedDesc}
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}

	where, args := r.buildWhereClause(opts.Filter)
	orderBy := r.buildOrderBy(opts.Sort)

	// Количество и страница читаются в одной транзакции, чтобы total
	// соответствовал выбранным строкам
	page, err := database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (listPage, error) {
		var page listPage

		countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM route_calculations WHERE %s`, where)
		if err := tx.QueryRow(ctx, countQuery, args...).Scan(&page.total); err != nil {
			return page, fmt.Errorf("failed to count route calculations: %w", err)
		}

		selectQuery := fmt.Sprintf(`
			SELECT
				id, request_id, algorithm, status,
				total_weight, estimated_time_minutes, computation_time_ms,
				hop_count, node_count, edge_count, cached, tags, created_at
			FROM route_calculations
			WHERE %s
			ORDER BY %s
			LIMIT $%d OFFSET $%d
		`, where, orderBy, len(args)+1, len(args)+2)

		pageArgs := append(append([]any(nil), args...), opts.Limit, opts.Offset)

		rows, err := tx.Query(ctx, selectQuery, pageArgs...)
		if err != nil {
			return page, fmt.Errorf("failed to list route calculations: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			summary := &CalculationSummary{}
			var tags pgtype.Array[string]

			err := rows.Scan(
				&summary.ID,
				&summary.RequestID,
				&summary.Algorithm,
				&summary.Status,
				&summary.TotalWeight,
				&summary.EstimatedTimeMinutes,
				&summary.ComputationTimeMs,
				&summary.HopCount,
				&summary.NodeCount,
				&summary.EdgeCount,
				&summary.Cached,
				&tags,
				&summary.CreatedAt,
			)
			if err != nil {
				return page, fmt.Errorf("failed to scan route calculation: %w", err)
			}

			summary.Tags = tags.Elements
			page.summaries = append(page.summaries, summary)
		}

		if err := rows.Err(); err != nil {
			return page, fmt.Errorf("rows iteration error: %w", err)
		}

		return page, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return page.summaries, page.total, nil
}

func (r *PostgresRouteRepository) buildWhereClause(filter *ListFilter) (string, []any) {
	conditions := []string{"TRUE"}
	args := []any{}
	argNum := 1

	if filter != nil {
		if filter.Algorithm != "" {
			conditions = append(conditions, fmt.Sprintf("algorithm = $%d", argNum))
			args = append(args, filter.Algorithm)
			argNum++
		}

		if filter.Status != "" {
			conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
			args = append(args, filter.Status)
			argNum++
		}

		if filter.SegmentsHash != "" {
			conditions = append(conditions, fmt.Sprintf("segments_hash = $%d", argNum))
			args = append(args, filter.SegmentsHash)
			argNum++
		}

		if len(filter.Tags) > 0 {
			conditions = append(conditions, fmt.Sprintf("tags && $%d", argNum))
			args = append(args, filter.Tags)
			argNum++
		}

		if filter.MinWeight != nil {
			conditions = append(conditions, fmt.Sprintf("total_weight >= $%d", argNum))
			args = append(args, *filter.MinWeight)
			argNum++
		}

		if filter.MaxWeight != nil {
			conditions = append(conditions, fmt.Sprintf("total_weight <= $%d", argNum))
			args = append(args, *filter.MaxWeight)
			argNum++
		}

		if filter.StartTime != nil {
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argNum))
			args = append(args, *filter.StartTime)
			argNum++
		}

		if filter.EndTime != nil {
			conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argNum))
			args = append(args, *filter.EndTime)
		}
	}

	return strings.Join(conditions, " AND "), args
}

func (r *PostgresRouteRepository) buildOrderBy(sort SortOrder) string {
	switch sort {
	case SortByCreatedAsc:
		return "created_at ASC"
	case SortByWeightDesc:
		return "total_weight DESC"
	case SortByDurationDesc:
		return "computation_time_ms DESC"
	default:
		return "created_at DESC"
	}
}

func (r *PostgresRouteRepository) GetStatistics(
	ctx context.Context,
	startTime, endTime *time.Time,
) (*CalculationStatistics, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRouteRepository.GetStatistics")
	defer span.End()

	stats := &CalculationStatistics{
		CalculationsByAlgorithm: make(map[string]int),
		DailyStats:              []DailyStats{},
	}

	// Базовые условия
	where := "TRUE"
	args := []any{}
	argNum := 1

	if startTime != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argNum)
		args = append(args, *startTime)
		argNum++
	}
	if endTime != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argNum)
		args = append(args, *endTime)
	}

	// Общая статистика
	statsQuery := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE cached),
			COUNT(*) FILTER (WHERE status = 'no_path'),
			COALESCE(AVG(total_weight), 0),
			COALESCE(AVG(computation_time_ms), 0)
		FROM route_calculations
		WHERE %s
	`, where)

	err := r.db.QueryRow(ctx, statsQuery, args...).Scan(
		&stats.TotalCalculations,
		&stats.CachedCalculations,
		&stats.NoPathCalculations,
		&stats.AverageTotalWeight,
		&stats.AverageComputationTimeMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	// Статистика по алгоритмам
	algoQuery := fmt.Sprintf(`
		SELECT algorithm, COUNT(*)
		FROM route_calculations
		WHERE %s
		GROUP BY algorithm
	`, where)

	algoRows, err := r.db.Query(ctx, algoQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get algorithm stats: %w", err)
	}
	defer algoRows.Close()

	for algoRows.Next() {
		var algorithm string
		var count int
		if err := algoRows.Scan(&algorithm, &count); err != nil {
			return nil, fmt.Errorf("failed to scan algorithm stats: %w", err)
		}
		stats.CalculationsByAlgorithm[algorithm] = count
	}
	if err := algoRows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	// Дневная статистика
	dailyQuery := fmt.Sprintf(`
		SELECT
			DATE(created_at) as date,
			COUNT(*) as count,
			COALESCE(SUM(total_weight), 0) as total_weight
		FROM route_calculations
		WHERE %s
		GROUP BY DATE(created_at)
		ORDER BY date DESC
		LIMIT 30
	`, where)

	dailyRows, err := r.db.Query(ctx, dailyQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	defer dailyRows.Close()

	for dailyRows.Next() {
		var ds DailyStats
		var date time.Time
		if err := dailyRows.Scan(&date, &ds.Count, &ds.TotalWeight); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		ds.Date = date.Format("2006-01-02")
		stats.DailyStats = append(stats.DailyStats, ds)
	}
	if err := dailyRows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return stats, nil
}

// DeleteBySegmentsHash удаляет расчёты для конкретной карты
func (r *PostgresRouteRepository) DeleteBySegmentsHash(ctx context.Context, segmentsHash string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRouteRepository.DeleteBySegmentsHash")
	defer span.End()

	query := `DELETE FROM route_calculations WHERE segments_hash = $1`

	result, err := r.db.Exec(ctx, query, segmentsHash)
	if err != nil {
		return 0, fmt.Errorf("failed to delete route calculations: %w", err)
	}

	return result.RowsAffected(), nil
}
