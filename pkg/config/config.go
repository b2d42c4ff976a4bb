// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App       AppConfig       `koanf:"app"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Audit     AuditConfig     `koanf:"audit"`
	Engine    EngineConfig    `koanf:"engine"`
	Export    ExportConfig    `koanf:"export"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig - настройки базы данных для истории расчётов
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN возвращает строку подключения
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}

// CacheConfig - настройки кэширования результатов маршрутов
type CacheConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Driver      string        `koanf:"driver"` // redis, memory
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db"`
	DefaultTTL  time.Duration `koanf:"default_ttl"`
	MaxEntries  int           `koanf:"max_entries"`   // для in-memory
	MaxMemoryMB int           `koanf:"max_memory_mb"` // для in-memory, 0 — без ограничения
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitConfig конфигурация rate limiting
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Strategy        string        `koanf:"strategy"`
	Backend         string        `koanf:"backend"`
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	RedisAddr       string        `koanf:"redis_addr"`
}

// AuditConfig конфигурация аудит лога
type AuditConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Backend         string        `koanf:"backend"`
	FilePath        string        `koanf:"file_path"`
	MaxSize         int           `koanf:"max_size"`
	MaxAge          int           `koanf:"max_age"`
	Compress        bool          `koanf:"compress"`
	BufferSize      int           `koanf:"buffer_size"`
	FlushPeriod     time.Duration `koanf:"flush_period"`
	ExcludeMethods  []string      `koanf:"exclude_methods"`
	IncludeRequest  bool          `koanf:"include_request"`
	IncludeResponse bool          `koanf:"include_response"`
}

// EngineConfig - параметры движка маршрутизации.
// Таблицы факторов настраиваемые, но обязаны сохранять монотонность:
// highway < normal < residential, low < medium < high < congested и т.д.
type EngineConfig struct {
	DefaultAlgorithm string  `koanf:"default_algorithm"` // dijkstra, astar
	CoordEpsilon     float64 `koanf:"coord_epsilon"`     // допуск слияния концов сегментов
	WeightFloor      float64 `koanf:"weight_floor"`      // минимальный положительный вес ребра
	MinutesPerWeight float64 `koanf:"minutes_per_weight"`

	RoadType  RoadTypeFactors `koanf:"road_type"`
	Density   DensityFactors  `koanf:"density"`
	TimeOfDay TimeFactors     `koanf:"time_of_day"`
	DayType   DayFactors      `koanf:"day_type"`
	Weather   WeatherFactors  `koanf:"weather"`
	Event     EventFactors    `koanf:"event"`
	Strategy  StrategyFactors `koanf:"strategy"`
}

// RoadTypeFactors - множители стоимости по типу дороги
type RoadTypeFactors struct {
	Highway     float64 `koanf:"highway"`
	Normal      float64 `koanf:"normal"`
	Residential float64 `koanf:"residential"`
}

// DensityFactors - множители стоимости по плотности трафика
type DensityFactors struct {
	Low       float64 `koanf:"low"`
	Medium    float64 `koanf:"medium"`
	High      float64 `koanf:"high"`
	Congested float64 `koanf:"congested"`
}

// TimeFactors - множители по времени суток
type TimeFactors struct {
	Morning   float64 `koanf:"morning"`
	Afternoon float64 `koanf:"afternoon"`
	Evening   float64 `koanf:"evening"`
	Night     float64 `koanf:"night"`
}

// DayFactors - множители по типу дня
type DayFactors struct {
	Weekday float64 `koanf:"weekday"`
	Weekend float64 `koanf:"weekend"`
	Holiday float64 `koanf:"holiday"`
}

// WeatherFactors - множители по погодным условиям
type WeatherFactors struct {
	Clear float64 `koanf:"clear"`
	Rain  float64 `koanf:"rain"`
	Snow  float64 `koanf:"snow"`
	Fog   float64 `koanf:"fog"`
}

// EventFactors - влияние активных событий на близлежащие рёбра
type EventFactors struct {
	Radius float64 `koanf:"radius"` // радиус действия события в координатных единицах
	Low    float64 `koanf:"low"`
	Medium float64 `koanf:"medium"`
	High   float64 `koanf:"high"`
}

// StrategyFactors - поправки стратегий маршрутизации по плотности.
// SHORTEST_PATH таблицы не использует (нейтральный множитель 1.0).
type StrategyFactors struct {
	Balanced        DensityFactors `koanf:"balanced"`
	AvoidCongestion DensityFactors `koanf:"avoid_congestion"`
}

// ExportConfig конфигурация экспорта отчётов о маршрутах
type ExportConfig struct {
	DefaultFormat   string    `koanf:"default_format"` // csv, json, markdown, excel, pdf
	MaxRoadsInTable int       `koanf:"max_roads_in_table"`
	CompanyName     string    `koanf:"company_name"`
	PDF             PDFConfig `koanf:"pdf"`
}

// PDFConfig конфигурация PDF генератора
type PDFConfig struct {
	PageSize          string  `koanf:"page_size"`     // A4, Letter, Legal
	Orientation       string  `koanf:"orientation"`   // portrait, landscape
	MarginTop         float64 `koanf:"margin_top"`    // mm
	MarginBottom      float64 `koanf:"margin_bottom"` // mm
	MarginLeft        float64 `koanf:"margin_left"`   // mm
	MarginRight       float64 `koanf:"margin_right"`  // mm
	EnablePageNumbers bool    `koanf:"enable_page_numbers"`
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port))
	}

	validCacheDrivers := map[string]bool{"memory": true, "redis": true}
	if c.Cache.Enabled && !validCacheDrivers[strings.ToLower(c.Cache.Driver)] {
		errs = append(errs, fmt.Sprintf("cache.driver must be one of: memory, redis, got %s", c.Cache.Driver))
	}

	validStrategies := map[string]bool{"sliding_window": true, "token_bucket": true}
	if c.RateLimit.Enabled && !validStrategies[c.RateLimit.Strategy] {
		errs = append(errs, fmt.Sprintf("rate_limit.strategy must be one of: sliding_window, token_bucket, got %s", c.RateLimit.Strategy))
	}

	errs = append(errs, c.Engine.validate()...)

	validFormats := map[string]bool{"csv": true, "json": true, "markdown": true, "excel": true, "pdf": true}
	if c.Export.DefaultFormat != "" && !validFormats[c.Export.DefaultFormat] {
		errs = append(errs, fmt.Sprintf("export.default_format must be one of: csv, json, markdown, excel, pdf, got %s", c.Export.DefaultFormat))
	}

	validPageSizes := map[string]bool{"A4": true, "Letter": true, "Legal": true, "A3": true}
	if c.Export.PDF.PageSize != "" && !validPageSizes[c.Export.PDF.PageSize] {
		errs = append(errs, fmt.Sprintf("export.pdf.page_size must be one of: A4, Letter, Legal, A3, got %s", c.Export.PDF.PageSize))
	}

	validOrientations := map[string]bool{"portrait": true, "landscape": true}
	if c.Export.PDF.Orientation != "" && !validOrientations[c.Export.PDF.Orientation] {
		errs = append(errs, fmt.Sprintf("export.pdf.orientation must be one of: portrait, landscape, got %s", c.Export.PDF.Orientation))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validate проверяет параметры движка, включая монотонность таблиц факторов
func (e EngineConfig) validate() []string {
	var errs []string

	switch strings.ToLower(e.DefaultAlgorithm) {
	case "dijkstra", "astar":
	default:
		errs = append(errs, fmt.Sprintf("engine.default_algorithm must be dijkstra or astar, got %s", e.DefaultAlgorithm))
	}

	if e.CoordEpsilon <= 0 {
		errs = append(errs, "engine.coord_epsilon must be positive")
	}
	if e.WeightFloor <= 0 {
		errs = append(errs, "engine.weight_floor must be positive")
	}
	if e.MinutesPerWeight <= 0 {
		errs = append(errs, "engine.minutes_per_weight must be positive")
	}

	rt := e.RoadType
	if !(rt.Highway > 0 && rt.Highway < rt.Normal && rt.Normal < rt.Residential) {
		errs = append(errs, "engine.road_type factors must satisfy 0 < highway < normal < residential")
	}

	d := e.Density
	if !(d.Low > 0 && d.Low < d.Medium && d.Medium < d.High && d.High < d.Congested) {
		errs = append(errs, "engine.density factors must satisfy 0 < low < medium < high < congested")
	}

	t := e.TimeOfDay
	if !(t.Night > 0 && t.Night < t.Afternoon && t.Afternoon < t.Morning && t.Afternoon < t.Evening) {
		errs = append(errs, "engine.time_of_day factors must keep night lowest and commute peaks above midday")
	}

	dt := e.DayType
	if !(dt.Weekend > 0 && dt.Weekend < dt.Weekday && dt.Weekday < dt.Holiday) {
		errs = append(errs, "engine.day_type factors must satisfy 0 < weekend < weekday < holiday")
	}

	w := e.Weather
	if w.Clear <= 0 || w.Rain <= w.Clear || w.Fog <= w.Clear || w.Snow < w.Rain || w.Snow < w.Fog {
		errs = append(errs, "engine.weather factors must keep clear neutral and snow the most severe")
	}

	ev := e.Event
	if ev.Radius <= 0 {
		errs = append(errs, "engine.event.radius must be positive")
	}
	if !(ev.Low > 1 && ev.Low < ev.Medium && ev.Medium < ev.High) {
		errs = append(errs, "engine.event factors must satisfy 1 < low < medium < high")
	}

	b := e.Strategy.Balanced
	if !(b.Congested > 0 && b.Congested <= b.High && b.High <= b.Medium && b.Medium <= b.Low && b.Low <= 1) {
		errs = append(errs, "engine.strategy.balanced factors must be non-increasing in density and not exceed 1")
	}

	a := e.Strategy.AvoidCongestion
	if !(a.Low >= 1 && a.Low <= a.Medium && a.Medium <= a.High && a.High <= a.Congested) {
		errs = append(errs, "engine.strategy.avoid_congestion factors must be non-decreasing in density starting at 1")
	}

	return errs
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
