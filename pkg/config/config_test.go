package config

import (
	"testing"
)

// validEngine возвращает корректную конфигурацию движка для тестов
func validEngine() EngineConfig {
	return EngineConfig{
		DefaultAlgorithm: "astar",
		CoordEpsilon:     1e-6,
		WeightFloor:      1e-9,
		MinutesPerWeight: 2.0,
		RoadType:         RoadTypeFactors{Highway: 0.8, Normal: 1.0, Residential: 1.3},
		Density:          DensityFactors{Low: 1.0, Medium: 1.3, High: 1.7, Congested: 2.5},
		TimeOfDay:        TimeFactors{Morning: 1.4, Afternoon: 1.1, Evening: 1.5, Night: 0.8},
		DayType:          DayFactors{Weekday: 1.0, Weekend: 0.85, Holiday: 1.25},
		Weather:          WeatherFactors{Clear: 1.0, Rain: 1.3, Snow: 1.6, Fog: 1.4},
		Event:            EventFactors{Radius: 5.0, Low: 1.1, Medium: 1.25, High: 1.5},
		Strategy: StrategyFactors{
			Balanced:        DensityFactors{Low: 1.0, Medium: 0.95, High: 0.9, Congested: 0.85},
			AvoidCongestion: DensityFactors{Low: 1.0, Medium: 1.1, High: 1.5, Congested: 2.0},
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing app name",
			mutate:  func(c *Config) { c.App.Name = "" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "invalid" },
			wantErr: true,
		},
		{
			name:    "valid debug level",
			mutate:  func(c *Config) { c.Log.Level = "debug" },
			wantErr: false,
		},
		{
			name: "invalid metrics port",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Port = 70000
			},
			wantErr: true,
		},
		{
			name: "metrics disabled ignores port",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.Port = 0
			},
			wantErr: false,
		},
		{
			name:    "invalid default algorithm",
			mutate:  func(c *Config) { c.Engine.DefaultAlgorithm = "bellman-ford" },
			wantErr: true,
		},
		{
			name:    "algorithm name is case-insensitive",
			mutate:  func(c *Config) { c.Engine.DefaultAlgorithm = "Dijkstra" },
			wantErr: false,
		},
		{
			name:    "zero coordinate epsilon",
			mutate:  func(c *Config) { c.Engine.CoordEpsilon = 0 },
			wantErr: true,
		},
		{
			name:    "non-monotonic road type factors",
			mutate:  func(c *Config) { c.Engine.RoadType.Highway = 1.5 },
			wantErr: true,
		},
		{
			name:    "non-monotonic density factors",
			mutate:  func(c *Config) { c.Engine.Density.Congested = 1.0 },
			wantErr: true,
		},
		{
			name:    "night not the lowest time factor",
			mutate:  func(c *Config) { c.Engine.TimeOfDay.Night = 2.0 },
			wantErr: true,
		},
		{
			name:    "holiday below weekday",
			mutate:  func(c *Config) { c.Engine.DayType.Holiday = 0.5 },
			wantErr: true,
		},
		{
			name:    "snow milder than rain",
			mutate:  func(c *Config) { c.Engine.Weather.Snow = 1.0 },
			wantErr: true,
		},
		{
			name:    "event factor below neutral",
			mutate:  func(c *Config) { c.Engine.Event.Low = 0.9 },
			wantErr: true,
		},
		{
			name:    "balanced strategy amplifies instead of damping",
			mutate:  func(c *Config) { c.Engine.Strategy.Balanced.Congested = 1.5 },
			wantErr: true,
		},
		{
			name:    "avoid congestion strategy decreasing",
			mutate:  func(c *Config) { c.Engine.Strategy.AvoidCongestion.Congested = 1.0 },
			wantErr: true,
		},
		{
			name:    "invalid export format",
			mutate:  func(c *Config) { c.Export.DefaultFormat = "docx" },
			wantErr: true,
		},
		{
			name: "valid export config",
			mutate: func(c *Config) {
				c.Export.DefaultFormat = "pdf"
				c.Export.PDF = PDFConfig{PageSize: "A4", Orientation: "landscape"}
			},
			wantErr: false,
		},
		{
			name:    "invalid pdf page size",
			mutate:  func(c *Config) { c.Export.PDF.PageSize = "B5" },
			wantErr: true,
		},
		{
			name: "invalid cache driver",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.Driver = "memcached"
			},
			wantErr: true,
		},
		{
			name: "invalid rate limit strategy",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.Strategy = "leaky_bucket"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				App:    AppConfig{Name: "test-service"},
				Log:    LogConfig{Level: "info"},
				Engine: validEngine(),
			}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "testdb",
		Username: "user",
		Password: "pass",
		SSLMode:  "disable",
	}

	expect := "host=localhost port=5432 user=user password=pass dbname=testdb sslmode=disable"
	if dsn := cfg.DSN(); dsn != expect {
		t.Errorf("expected DSN %s, got %s", expect, dsn)
	}
}

func TestCacheConfig_Address(t *testing.T) {
	cfg := CacheConfig{
		Host: "redis.local",
		Port: 6379,
	}

	addr := cfg.Address()
	if addr != "redis.local:6379" {
		t.Errorf("expected 'redis.local:6379', got %s", addr)
	}
}

func TestPDFConfig_Defaults(t *testing.T) {
	cfg := PDFConfig{
		PageSize:          "A4",
		Orientation:       "portrait",
		MarginTop:         15.0,
		MarginBottom:      15.0,
		MarginLeft:        15.0,
		MarginRight:       15.0,
		EnablePageNumbers: true,
	}

	if cfg.PageSize != "A4" {
		t.Errorf("expected page size A4, got %s", cfg.PageSize)
	}
	if cfg.MarginTop != 15.0 {
		t.Errorf("expected margin 15.0, got %f", cfg.MarginTop)
	}
}
