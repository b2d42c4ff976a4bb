package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache хранит записи в памяти процесса с вытеснением по LRU.
// Подходит для одиночного инстанса движка; общий для реплик кэш даёт RedisCache.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	curBytes   int64 // суммарный размер значений, под mu
	defaultTTL time.Duration
	maxEntries int
	maxBytes   int64

	hits   atomic.Int64
	misses atomic.Int64

	closed atomic.Bool
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// entry одна запись кэша. Нулевой deadline означает бессрочную запись.
type entry struct {
	data     []byte
	deadline time.Time
	touched  time.Time
	size     int64
}

func (e *entry) expired(now time.Time) bool {
	return !e.deadline.IsZero() && now.After(e.deadline)
}

// remaining возвращает остаток TTL: -1 для бессрочных, 0 для истёкших.
func (e *entry) remaining(now time.Time) time.Duration {
	if e.deadline.IsZero() {
		return -1
	}
	left := e.deadline.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// NewMemoryCache создаёт in-memory кэш и запускает фоновую очистку истёкших записей.
func NewMemoryCache(opts *Options) *MemoryCache {
	if opts == nil {
		opts = DefaultOptions()
	}

	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 100000
	}

	cleanupInterval := opts.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = 1 * time.Minute
	}

	c := &MemoryCache{
		entries:    make(map[string]*entry),
		defaultTTL: opts.DefaultTTL,
		maxEntries: maxEntries,
		maxBytes:   opts.MaxMemoryBytes,
		stopCh:     make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop(cleanupInterval)

	return c
}

// clone копирует байты: кэш не должен делить backing array с вызывающим.
func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// deadlineFor переводит TTL в абсолютный срок. Неположительный TTL
// заменяется настроенным по умолчанию; нулевой результат — без срока.
func (c *MemoryCache) deadlineFor(ttl time.Duration, now time.Time) time.Time {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

// fetch находит живую запись и отмечает обращение. Вызывается под mu.
func (c *MemoryCache) fetch(key string, now time.Time) (*entry, bool) {
	e, ok := c.entries[key]
	if !ok || e.expired(now) {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	e.touched = now
	return e, true
}

// store кладёт запись, вытесняя самые давние при переполнении по числу
// записей или по памяти. Вызывается под mu.
func (c *MemoryCache) store(key string, value []byte, deadline, now time.Time) {
	if old, ok := c.entries[key]; ok {
		c.curBytes -= old.size
		delete(c.entries, key)
	}

	size := int64(len(value))
	// Запись крупнее лимита памяти всё равно сохраняется: вытеснит остальные
	for len(c.entries) > 0 && c.overLimit(size) {
		c.evictOldest()
	}

	c.entries[key] = &entry{
		data:     clone(value),
		deadline: deadline,
		touched:  now,
		size:     size,
	}
	c.curBytes += size
}

func (c *MemoryCache) overLimit(incoming int64) bool {
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		return true
	}
	return c.maxBytes > 0 && c.curBytes+incoming > c.maxBytes
}

// remove удаляет запись с учётом размера. Вызывается под mu.
func (c *MemoryCache) remove(key string) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.curBytes -= e.size
	delete(c.entries, key)
	return true
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.fetch(key, now)
	if !ok {
		return nil, ErrKeyNotFound
	}
	return clone(e.data), nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	now := time.Now()
	deadline := c.deadlineFor(ttl, now)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store(key, value, deadline, now)
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	c.remove(key)
	c.mu.Unlock()

	return nil
}

func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.closed.Load() {
		return false, ErrCacheClosed
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return ok && !e.expired(now), nil
}

func (c *MemoryCache) GetWithTTL(ctx context.Context, key string) ([]byte, time.Duration, error) {
	if c.closed.Load() {
		return nil, 0, ErrCacheClosed
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.fetch(key, now)
	if !ok {
		return nil, 0, ErrKeyNotFound
	}
	return clone(e.data), e.remaining(now), nil
}

func (c *MemoryCache) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	result := make(map[string][]byte, len(keys))
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if e, ok := c.fetch(key, now); ok {
			result[key] = clone(e.data)
		}
	}

	return result, nil
}

func (c *MemoryCache) MSet(ctx context.Context, pairs map[string][]byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	now := time.Now()
	deadline := c.deadlineFor(ttl, now)

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, value := range pairs {
		c.store(key, value, deadline, now)
	}

	return nil
}

func (c *MemoryCache) MDelete(ctx context.Context, keys []string) (int64, error) {
	if c.closed.Load() {
		return 0, ErrCacheClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int64
	for _, key := range keys {
		if c.remove(key) {
			removed++
		}
	}

	return removed, nil
}

func (c *MemoryCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []string
	for key, e := range c.entries {
		if !e.expired(now) && matchPattern(pattern, key) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

func (c *MemoryCache) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	if c.closed.Load() {
		return 0, ErrCacheClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int64
	for key := range c.entries {
		if matchPattern(pattern, key) {
			c.remove(key)
			removed++
		}
	}

	return removed, nil
}

func (c *MemoryCache) Stats(ctx context.Context) (*Stats, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	stats := &Stats{
		TotalKeys:    int64(len(c.entries)),
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		KeysByPrefix: make(map[string]int64),
		Backend:      "memory",
	}

	if lookups := stats.Hits + stats.Misses; lookups > 0 {
		stats.HitRate = float64(stats.Hits) / float64(lookups)
	}

	for key, e := range c.entries {
		if e.expired(now) {
			continue
		}
		stats.MemoryBytes += e.size
		stats.KeysByPrefix[extractPrefix(key)]++
	}

	return stats, nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.curBytes = 0
	c.mu.Unlock()

	return nil
}

func (c *MemoryCache) Close() error {
	if c.closed.Swap(true) {
		return nil // Уже закрыт
	}

	close(c.stopCh)
	c.wg.Wait()

	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()

	return nil
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.removeExpired(time.Now())
		}
	}
}

// removeExpired выбрасывает истёкшие записи. Записи с живым TTL не трогаем:
// маршруты одной карты истекают вместе, и очистка проходит их одним махом.
func (c *MemoryCache) removeExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if e.expired(now) {
			c.remove(key)
		}
	}
}

// evictOldest удаляет запись с самым давним обращением. Вызывается под mu.
// Линейный проход приемлем: вытеснение случается только при переполнении,
// а кэш маршрутов обычно истекает по TTL задолго до maxEntries.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTouch time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.touched.Before(oldestTouch) {
			oldestKey = key
			oldestTouch = e.touched
		}
	}

	if oldestKey != "" {
		c.remove(oldestKey)
	}
}

// matchPattern проверяет ключ по паттерну с одним wildcard:
// "*", "prefix*", "*suffix", "prefix*suffix". Без wildcard — точное совпадение.
// Этого хватает для ключей кэша маршрутов ("route:*:<hash>").
func matchPattern(pattern, key string) bool {
	if pattern == "*" {
		return true
	}

	prefix, suffix, found := strings.Cut(pattern, "*")
	if !found {
		return pattern == key
	}

	if len(key) < len(prefix)+len(suffix) {
		return false
	}
	return strings.HasPrefix(key, prefix) && strings.HasSuffix(key, suffix)
}

// extractPrefix возвращает сегмент ключа до первого ":" для группировки в статистике.
func extractPrefix(key string) string {
	if idx := strings.Index(key, ":"); idx > 0 {
		return key[:idx]
	}
	return "other"
}
