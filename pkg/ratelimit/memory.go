package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter держит окна запросов в памяти процесса. Подходит для
// одиночного инстанса; несколько реплик считают лимиты каждая у себя,
// общий лимит даёт RedisLimiter.
type MemoryLimiter struct {
	mu      sync.RWMutex
	windows map[string]*window
	config  *Config
	stopCh  chan struct{}
	closed  bool
}

// window состояние одного ключа вида route:<операция>:<вызывающий>.
type window struct {
	tokens    float64
	lastCheck time.Time
	requests  []time.Time // отметки запросов для sliding window
}

// NewMemoryLimiter создаёт in-memory rate limiter
func NewMemoryLimiter(cfg *Config) *MemoryLimiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	l := &MemoryLimiter{
		windows: make(map[string]*window),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.AllowN(ctx, key, 1)
}

func (l *MemoryLimiter) AllowN(ctx context.Context, key string, n int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false, ErrLimiterClosed
	}

	w, ok := l.windows[key]
	if !ok {
		w = &window{
			tokens:    float64(l.config.Requests + l.config.BurstSize),
			lastCheck: time.Now(),
		}
		l.windows[key] = w
	}

	if l.config.Strategy == StrategyTokenBucket {
		return l.allowTokenBucket(w, n), nil
	}
	return l.allowSlidingWindow(w, n), nil
}

func (l *MemoryLimiter) allowTokenBucket(w *window, n int) bool {
	now := time.Now()
	elapsed := now.Sub(w.lastCheck)
	w.lastCheck = now

	// Восполняем токены пропорционально прошедшему времени
	rate := float64(l.config.Requests) / l.config.Window.Seconds()
	w.tokens += elapsed.Seconds() * rate

	maxTokens := float64(l.config.Requests + l.config.BurstSize)
	if w.tokens > maxTokens {
		w.tokens = maxTokens
	}

	if w.tokens >= float64(n) {
		w.tokens -= float64(n)
		return true
	}

	return false
}

func (l *MemoryLimiter) allowSlidingWindow(w *window, n int) bool {
	now := time.Now()
	w.prune(now.Add(-l.config.Window))

	if len(w.requests)+n > l.config.Requests {
		return false
	}

	for i := 0; i < n; i++ {
		w.requests = append(w.requests, now)
	}
	return true
}

// prune выбрасывает отметки старше начала окна. Отметки добавляются в
// хронологическом порядке, поэтому достаточно найти первую живую.
func (w *window) prune(windowStart time.Time) {
	idx := 0
	for idx < len(w.requests) && !w.requests[idx].After(windowStart) {
		idx++
	}
	if idx == 0 {
		return
	}

	// Копируем остаток, чтобы не держать старый backing array
	remaining := make([]time.Time, len(w.requests)-idx)
	copy(remaining, w.requests[idx:])
	w.requests = remaining
}

// countSince возвращает число отметок внутри окна без изменения среза,
// поэтому безопасно под read lock.
func (w *window) countSince(windowStart time.Time) int {
	count := 0
	for _, t := range w.requests {
		if t.After(windowStart) {
			count++
		}
	}
	return count
}

func (l *MemoryLimiter) Wait(ctx context.Context, key string) error {
	for {
		allowed, err := l.Allow(ctx, key)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (l *MemoryLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, key)
	return nil
}

func (l *MemoryLimiter) GetInfo(ctx context.Context, key string) (*LimitInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	w, ok := l.windows[key]
	if !ok {
		return &LimitInfo{
			Limit:     l.config.Requests,
			Remaining: l.config.Requests,
			ResetAt:   time.Now().Add(l.config.Window),
		}, nil
	}

	var remaining int
	switch l.config.Strategy {
	case StrategyTokenBucket:
		remaining = int(w.tokens)
	default:
		used := w.countSince(time.Now().Add(-l.config.Window))
		remaining = l.config.Requests - used
	}

	if remaining < 0 {
		remaining = 0
	}

	return &LimitInfo{
		Limit:     l.config.Requests,
		Remaining: remaining,
		ResetAt:   time.Now().Add(l.config.Window),
	}, nil
}

func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	close(l.stopCh)
	l.windows = nil

	return nil
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.removeStale()
		}
	}
}

// removeStale выбрасывает окна, к которым давно не обращались. Порог в
// два окна оставляет запас для GetInfo сразу после исчерпания лимита.
func (l *MemoryLimiter) removeStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.config.Window * 2)

	for key, w := range l.windows {
		w.prune(cutoff)
		if len(w.requests) == 0 && w.lastCheck.Before(cutoff) {
			delete(l.windows, key)
		}
	}
}
