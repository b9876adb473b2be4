package cache

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimiter backs the limiter when no Redis is configured.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]window
	nowFn   func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{windows: map[string]window{}, nowFn: time.Now}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string, limit int, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowFn()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = window{resetAt: now.Add(ttl)}
	}
	w.count++
	l.windows[key] = w
	if len(l.windows) > 10000 {
		for k, v := range l.windows {
			if !now.Before(v.resetAt) {
				delete(l.windows, k)
			}
		}
	}
	return w.count <= limit, nil
}
