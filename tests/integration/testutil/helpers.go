// Package testutil собирает общие помощники интеграционных тестов:
// пропуск без внешних сервисов, конфигурация тестовой базы, уникальные ключи.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"routing/pkg/config"
)

// Переменные окружения интеграционного прогона
const (
	EnvIntegrationTests = "INTEGRATION_TESTS"
	EnvRedisAddr        = "REDIS_TEST_ADDR"
	EnvPostgresDSN      = "POSTGRES_TEST_DSN"
)

const defaultTestTimeout = 30 * time.Second

// SkipIfNotIntegration пропускает тест вне интеграционного прогона.
func SkipIfNotIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationTests) != "1" {
		t.Skip("skipping integration test; set INTEGRATION_TESTS=1 to run")
	}
}

// RequireRedis возвращает адрес тестового Redis, предварительно убедившись,
// что до него можно достучаться. Иначе тест пропускается, а не падает.
func RequireRedis(t *testing.T) string {
	t.Helper()
	SkipIfNotIntegration(t)

	addr := os.Getenv(EnvRedisAddr)
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	conn.Close()

	return addr
}

// RequirePostgres возвращает DSN тестового PostgreSQL или пропускает тест.
func RequirePostgres(t *testing.T) string {
	t.Helper()
	SkipIfNotIntegration(t)

	dsn := os.Getenv(EnvPostgresDSN)
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	return dsn
}

// PostgresConfig собирает конфигурацию тестовой базы истории расчётов.
// Порт по умолчанию смещён, чтобы не задеть локальный PostgreSQL разработчика.
func PostgresConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Host:            envOr("POSTGRES_HOST", "localhost"),
		Port:            envIntOr("POSTGRES_PORT", 5433),
		Database:        envOr("POSTGRES_DB", "routing_test"),
		Username:        envOr("POSTGRES_USER", "postgres"),
		Password:        envOr("POSTGRES_PASSWORD", "postgres"),
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// Context возвращает контекст со стандартным для тестов таймаутом.
func Context(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return ContextWithDuration(t, defaultTestTimeout)
}

// ContextWithDuration возвращает контекст с указанным таймаутом.
func ContextWithDuration(t *testing.T, d time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), d)
}

// Cleanup регистрирует функцию очистки.
func Cleanup(t *testing.T, fn func()) {
	t.Helper()
	t.Cleanup(fn)
}

// RandomString возвращает hex-строку длины n.
func RandomString(n int) string {
	b := make([]byte, (n+1)/2)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)[:n]
}

// UniqueKey строит ключ, не пересекающийся между тестами и прогонами:
// параллельные тесты пишут в общий Redis.
func UniqueKey(t *testing.T, prefix string) string {
	t.Helper()
	return fmt.Sprintf("%s:%s:%s", prefix, t.Name(), RandomString(8))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
