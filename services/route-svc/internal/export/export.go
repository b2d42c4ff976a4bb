// Package export renders route computation results into shareable report
// formats: CSV, JSON, Markdown, Excel and PDF. Generators are stateless;
// per-report knobs travel in RouteReportData.Options and deployment-wide
// defaults in config.ExportConfig.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"routing/pkg/config"
)

// Format формат отчёта
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatExcel    Format = "excel"
	FormatPDF      Format = "pdf"
)

// ContentType возвращает MIME-тип формата
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Extension возвращает расширение файла для формата
func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return ".xlsx"
	case FormatMarkdown:
		return ".md"
	default:
		return "." + string(f)
	}
}

// ParseFormat разбирает формат из строки без учёта регистра
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format: %q", s)
	}
}

// Generator интерфейс генератора отчётов
type Generator interface {
	Generate(ctx context.Context, data *RouteReportData) ([]byte, error)
	Format() Format
}

// For возвращает генератор для формата
func For(format Format, cfg *config.ExportConfig) (Generator, error) {
	switch format {
	case FormatCSV:
		return NewCSVGenerator(cfg), nil
	case FormatJSON:
		return NewJSONGenerator(cfg), nil
	case FormatMarkdown:
		return NewMarkdownGenerator(cfg), nil
	case FormatExcel:
		return NewExcelGenerator(cfg), nil
	case FormatPDF:
		return NewPDFGenerator(cfg), nil
	default:
		return nil, fmt.Errorf("no generator for format: %q", format)
	}
}

// BaseGenerator базовые утилиты для генераторов
type BaseGenerator struct {
	cfg *config.ExportConfig
}

// Title возвращает заголовок отчёта
func (b *BaseGenerator) Title(data *RouteReportData) string {
	if data.Options != nil && data.Options.Title != "" {
		return data.Options.Title
	}
	if data.Comparison != nil {
		return "Algorithm Comparison Report"
	}
	if data.Sweep != nil {
		return "Departure Sweep Report"
	}
	return "Route Report"
}

// Author возвращает автора отчёта
func (b *BaseGenerator) Author(data *RouteReportData) string {
	if data.Options != nil && data.Options.Author != "" {
		return data.Options.Author
	}
	return b.CompanyName()
}

// Description возвращает описание
func (b *BaseGenerator) Description(data *RouteReportData) string {
	if data.Options != nil {
		return data.Options.Description
	}
	return ""
}

// CompanyName возвращает имя компании для подписи отчётов
func (b *BaseGenerator) CompanyName() string {
	if b.cfg != nil && b.cfg.CompanyName != "" {
		return b.cfg.CompanyName
	}
	return "Routing Platform"
}

// MaxRoadsInTable возвращает предел строк для табличных форматов
func (b *BaseGenerator) MaxRoadsInTable() int {
	if b.cfg != nil && b.cfg.MaxRoadsInTable > 0 {
		return b.cfg.MaxRoadsInTable
	}
	return 50
}

// ShouldIncludeRoads проверяет нужно ли включать таблицу дорог
func (b *BaseGenerator) ShouldIncludeRoads(data *RouteReportData) bool {
	if data.Options == nil {
		return true
	}
	return !data.Options.ExcludeRoads
}

// ShouldIncludeCoordinates проверяет нужно ли включать координаты пути
func (b *BaseGenerator) ShouldIncludeCoordinates(data *RouteReportData) bool {
	if data.Options == nil {
		return false
	}
	return data.Options.IncludeCoordinates
}

// FormatFloat форматирует число с заданной точностью
func (b *BaseGenerator) FormatFloat(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// FormatDuration форматирует длительность в миллисекундах
func (b *BaseGenerator) FormatDuration(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.2f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

// FormatMinutes форматирует оценку времени в пути
func (b *BaseGenerator) FormatMinutes(minutes int64) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// FormatTimestamp форматирует время
func (b *BaseGenerator) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// GeneratedAt возвращает момент генерации отчёта
func (b *BaseGenerator) GeneratedAt(data *RouteReportData) time.Time {
	if !data.GeneratedAt.IsZero() {
		return data.GeneratedAt
	}
	return time.Now()
}
