package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "ROUTING_"
	configEnvVar = "CONFIG_PATH"
)

// Loader загружает конфигурацию из разных источников
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader создаёт новый загрузчик конфигурации
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/routing/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption - опция для конфигурации загрузчика
type LoaderOption func(*Loader)

// WithConfigPaths устанавливает пути поиска конфигурации
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix устанавливает префикс переменных окружения
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load загружает конфигурацию с приоритетом:
// 1. Defaults (самый низкий)
// 2. Config file (yaml)
// 3. Environment variables (самый высокий)
func (l *Loader) Load() (*Config, error) {
	// 1. Загружаем значения по умолчанию
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Загружаем из файла конфигурации
	if err := l.loadConfigFile(); err != nil {
		// Файл не обязателен, логируем warning
		fmt.Printf("Warning: %v\n", err)
	}

	// 3. Загружаем из переменных окружения (перезаписывают файл)
	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	// 4. Распаковываем в структуру
	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Валидируем
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDefaults загружает значения по умолчанию
func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		// App
		"app.name":        "routing-service",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.debug":       false,

		// Log
		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "routing",
		"metrics.subsystem": "",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "routing-service",
		"tracing.sample_rate":  0.1,

		// Database
		"database.enabled":            false,
		"database.host":               "localhost",
		"database.port":               5432,
		"database.database":           "routing",
		"database.username":           "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  5 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.auto_migrate":       true,

		// Cache. По умолчанию выключен: граф строится заново на каждый
		// запрос, кэш результатов - опциональная оптимизация.
		"cache.enabled":       false,
		"cache.driver":        "memory",
		"cache.host":          "localhost",
		"cache.port":          6379,
		"cache.db":            0,
		"cache.default_ttl":   5 * time.Minute,
		"cache.max_entries":   10000,
		"cache.max_memory_mb": 0,

		// Rate Limit
		"rate_limit.enabled":          false,
		"rate_limit.requests":         100,
		"rate_limit.window":           time.Minute,
		"rate_limit.strategy":         "sliding_window",
		"rate_limit.backend":          "memory",
		"rate_limit.burst_size":       10,
		"rate_limit.cleanup_interval": 5 * time.Minute,

		// Audit
		"audit.enabled":      true,
		"audit.backend":      "stdout",
		"audit.max_size":     100,
		"audit.max_age":      30,
		"audit.compress":     true,
		"audit.buffer_size":  1000,
		"audit.flush_period": 5 * time.Second,

		// Engine - общие параметры
		"engine.default_algorithm":  "astar",
		"engine.coord_epsilon":      1e-6,
		"engine.weight_floor":       1e-9,
		"engine.minutes_per_weight": 2.0,

		// Engine - факторы типа дороги (шоссе дешевле жилых улиц)
		"engine.road_type.highway":     0.8,
		"engine.road_type.normal":      1.0,
		"engine.road_type.residential": 1.3,

		// Engine - факторы плотности трафика
		"engine.density.low":       1.0,
		"engine.density.medium":    1.3,
		"engine.density.high":      1.7,
		"engine.density.congested": 2.5,

		// Engine - факторы времени суток (утренний и вечерний пики)
		"engine.time_of_day.morning":   1.4,
		"engine.time_of_day.afternoon": 1.1,
		"engine.time_of_day.evening":   1.5,
		"engine.time_of_day.night":     0.8,

		// Engine - факторы типа дня
		"engine.day_type.weekday": 1.0,
		"engine.day_type.weekend": 0.85,
		"engine.day_type.holiday": 1.25,

		// Engine - погодные факторы (снег самый тяжёлый)
		"engine.weather.clear": 1.0,
		"engine.weather.rain":  1.3,
		"engine.weather.snow":  1.6,
		"engine.weather.fog":   1.4,

		// Engine - влияние активных событий
		"engine.event.radius": 5.0,
		"engine.event.low":    1.1,
		"engine.event.medium": 1.25,
		"engine.event.high":   1.5,

		// Engine - поправки стратегий по плотности
		"engine.strategy.balanced.low":               1.0,
		"engine.strategy.balanced.medium":            0.95,
		"engine.strategy.balanced.high":              0.9,
		"engine.strategy.balanced.congested":         0.85,
		"engine.strategy.avoid_congestion.low":       1.0,
		"engine.strategy.avoid_congestion.medium":    1.1,
		"engine.strategy.avoid_congestion.high":      1.5,
		"engine.strategy.avoid_congestion.congested": 2.0,

		// Export
		"export.default_format":     "json",
		"export.max_roads_in_table": 50,
		"export.company_name":       "Routing Platform",

		// Export - PDF
		"export.pdf.page_size":           "A4",
		"export.pdf.orientation":         "portrait",
		"export.pdf.margin_top":          15.0,
		"export.pdf.margin_bottom":       15.0,
		"export.pdf.margin_left":         15.0,
		"export.pdf.margin_right":        15.0,
		"export.pdf.enable_page_numbers": true,
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

// loadConfigFile загружает конфигурацию из файла
func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

// loadEnv загружает конфигурацию из переменных окружения
// Использует умную трансформацию ключей для полей с подчёркиванием
func (l *Loader) loadEnv() error {
	return l.k.Load(env.ProviderWithValue(l.envPrefix, ".", func(envKey string, value string) (string, interface{}) {
		// Убираем префикс и приводим к нижнему регистру
		key := strings.ToLower(strings.TrimPrefix(envKey, l.envPrefix))

		// Маппинг для полей с подчёркиванием в именах
		if mappedKey, ok := envKeyMappings[key]; ok {
			key = mappedKey
		} else {
			// По умолчанию заменяем все подчёркивания на точки
			key = strings.ReplaceAll(key, "_", ".")
		}

		// Для slice-полей разбиваем по запятой
		if isSliceField(key) {
			return key, splitAndTrim(value)
		}

		return key, value
	}), nil)
}

// envKeyMappings - маппинг переменных окружения на ключи конфига
// Необходим для полей, содержащих подчёркивания в именах
var envKeyMappings = map[string]string{
	// Log
	"log_level":       "log.level",
	"log_format":      "log.format",
	"log_output":      "log.output",
	"log_file_path":   "log.file_path",
	"log_max_size":    "log.max_size",
	"log_max_backups": "log.max_backups",
	"log_max_age":     "log.max_age",
	"log_compress":    "log.compress",

	// Metrics
	"metrics_enabled":   "metrics.enabled",
	"metrics_port":      "metrics.port",
	"metrics_path":      "metrics.path",
	"metrics_namespace": "metrics.namespace",
	"metrics_subsystem": "metrics.subsystem",

	// Tracing
	"tracing_enabled":      "tracing.enabled",
	"tracing_endpoint":     "tracing.endpoint",
	"tracing_service_name": "tracing.service_name",
	"tracing_sample_rate":  "tracing.sample_rate",

	// Database
	"database_enabled":            "database.enabled",
	"database_host":               "database.host",
	"database_port":               "database.port",
	"database_database":           "database.database",
	"database_username":           "database.username",
	"database_password":           "database.password",
	"database_ssl_mode":           "database.ssl_mode",
	"database_max_open_conns":     "database.max_open_conns",
	"database_max_idle_conns":     "database.max_idle_conns",
	"database_conn_max_lifetime":  "database.conn_max_lifetime",
	"database_conn_max_idle_time": "database.conn_max_idle_time",
	"database_auto_migrate":       "database.auto_migrate",

	// Cache
	"cache_enabled":       "cache.enabled",
	"cache_driver":        "cache.driver",
	"cache_host":          "cache.host",
	"cache_port":          "cache.port",
	"cache_password":      "cache.password",
	"cache_db":            "cache.db",
	"cache_default_ttl":   "cache.default_ttl",
	"cache_max_entries":   "cache.max_entries",
	"cache_max_memory_mb": "cache.max_memory_mb",

	// Rate limit
	"rate_limit_enabled":          "rate_limit.enabled",
	"rate_limit_requests":         "rate_limit.requests",
	"rate_limit_window":           "rate_limit.window",
	"rate_limit_strategy":         "rate_limit.strategy",
	"rate_limit_backend":          "rate_limit.backend",
	"rate_limit_burst_size":       "rate_limit.burst_size",
	"rate_limit_cleanup_interval": "rate_limit.cleanup_interval",
	"rate_limit_redis_addr":       "rate_limit.redis_addr",

	// Audit
	"audit_enabled":          "audit.enabled",
	"audit_backend":          "audit.backend",
	"audit_file_path":        "audit.file_path",
	"audit_max_size":         "audit.max_size",
	"audit_max_age":          "audit.max_age",
	"audit_compress":         "audit.compress",
	"audit_buffer_size":      "audit.buffer_size",
	"audit_flush_period":     "audit.flush_period",
	"audit_exclude_methods":  "audit.exclude_methods",
	"audit_include_request":  "audit.include_request",
	"audit_include_response": "audit.include_response",

	// Engine (таблицы факторов переопределяются только через yaml)
	"engine_default_algorithm":  "engine.default_algorithm",
	"engine_coord_epsilon":      "engine.coord_epsilon",
	"engine_weight_floor":       "engine.weight_floor",
	"engine_minutes_per_weight": "engine.minutes_per_weight",
	"engine_event_radius":       "engine.event.radius",

	// Export
	"export_default_format":     "export.default_format",
	"export_max_roads_in_table": "export.max_roads_in_table",
	"export_company_name":       "export.company_name",
	"export_pdf_page_size":      "export.pdf.page_size",
	"export_pdf_orientation":    "export.pdf.orientation",
}

// sliceFields - поля, которые должны парситься как слайсы
var sliceFields = map[string]bool{
	"audit.exclude_methods": true,
}

func isSliceField(key string) bool {
	return sliceFields[key]
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// MustLoad загружает конфигурацию или паникует
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load - удобная функция для загрузки с дефолтными настройками
func Load() (*Config, error) {
	return NewLoader().Load()
}

// LoadWithServiceDefaults загружает конфигурацию с переопределением для конкретного сервиса
func LoadWithServiceDefaults(serviceName string, defaultMetricsPort int) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if cfg.Metrics.Port == 9090 && defaultMetricsPort != 0 {
		cfg.Metrics.Port = defaultMetricsPort
	}

	if cfg.App.Name == "routing-service" {
		cfg.App.Name = serviceName
	}

	return cfg, nil
}
