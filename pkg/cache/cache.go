// Package cache provides the caching layer for route computation.
//
// A backend-agnostic Cache interface stores raw bytes in memory or in
// Redis. On top of it, RouteCache serializes computed routes under
// deterministic keys derived from the map snapshot and the query
// (see hasher.go), so a repeated request is answered without running
// the search again and a changed map invalidates all of its routes in
// one pattern delete.
package cache

import (
	"context"
	"errors"
	"time"

	"routing/pkg/config"
)

// Поддерживаемые бэкенды
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var (
	// ErrKeyNotFound ключ отсутствует или истёк
	ErrKeyNotFound = errors.New("key not found")
	// ErrCacheClosed операция над закрытым кэшем
	ErrCacheClosed = errors.New("cache is closed")
)

// Cache операции хранилища, общие для memory и Redis бэкендов.
// Значения — непрозрачные байты; сериализацией маршрутов занимается RouteCache.
type Cache interface {
	// Get возвращает значение ключа или ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set записывает значение с TTL; неположительный TTL заменяется дефолтным
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete удаляет ключ; отсутствие ключа не ошибка
	Delete(ctx context.Context, key string) error
	// Exists проверяет наличие живого ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetWithTTL возвращает значение вместе с остатком TTL
	GetWithTTL(ctx context.Context, key string) (value []byte, ttl time.Duration, err error)

	// MGet возвращает найденные ключи; отсутствующих в карте нет
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	// MSet записывает несколько пар с общим TTL
	MSet(ctx context.Context, pairs map[string][]byte, ttl time.Duration) error
	// MDelete удаляет ключи и возвращает число реально удалённых
	MDelete(ctx context.Context, keys []string) (int64, error)

	// Keys возвращает ключи по паттерну с одним wildcard ("route:*:abc")
	Keys(ctx context.Context, pattern string) ([]string, error)
	// DeleteByPattern удаляет ключи по паттерну и возвращает их число.
	// Так инвалидируются все маршруты одной карты.
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)

	// Stats возвращает счётчики попаданий и объём кэша
	Stats(ctx context.Context) (*Stats, error)
	// Clear удаляет всё содержимое
	Clear(ctx context.Context) error
	// Close освобождает ресурсы бэкенда
	Close() error
}

// Stats счётчики кэша
type Stats struct {
	TotalKeys    int64
	Hits         int64
	Misses       int64
	HitRate      float64
	MemoryBytes  int64
	KeysByPrefix map[string]int64 // число ключей по префиксу до первого ":"
	Backend      string
}

// Options параметры создания кэша
type Options struct {
	Backend    string // BackendMemory или BackendRedis
	DefaultTTL time.Duration

	// Только для memory
	MaxEntries      int
	MaxMemoryBytes  int64 // 0 — без ограничения по памяти
	CleanupInterval time.Duration

	// Только для Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
}

// DefaultOptions возвращает опции по умолчанию
func DefaultOptions() *Options {
	return &Options{
		Backend:         BackendMemory,
		DefaultTTL:      5 * time.Minute,
		MaxEntries:      100000,
		MaxMemoryBytes:  256 * 1024 * 1024,
		CleanupInterval: 1 * time.Minute,
		RedisAddr:       "localhost:6379",
		RedisDB:         0,
		RedisPoolSize:   10,
	}
}

// FromConfig создаёт опции из конфигурации
func FromConfig(cfg *config.CacheConfig) *Options {
	return &Options{
		Backend:        cfg.Driver,
		DefaultTTL:     cfg.DefaultTTL,
		MaxEntries:     cfg.MaxEntries,
		MaxMemoryBytes: int64(cfg.MaxMemoryMB) * 1024 * 1024,
		RedisAddr:      cfg.Address(),
		RedisPassword:  cfg.Password,
		RedisDB:        cfg.DB,
		RedisPoolSize:  10,
	}
}

// New создаёт кэш на основе опций. Неизвестный бэкенд трактуется как memory.
func New(opts *Options) (Cache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch opts.Backend {
	case BackendRedis:
		return NewRedisCache(opts)
	case BackendMemory, "":
		return NewMemoryCache(opts), nil
	default:
		return NewMemoryCache(opts), nil
	}
}

// MustNew создаёт кэш или паникует
func MustNew(opts *Options) Cache {
	c, err := New(opts)
	if err != nil {
		panic(err)
	}
	return c
}
