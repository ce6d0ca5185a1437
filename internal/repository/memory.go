package repository

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryRateLimitRepository is a per-process token bucket per key. A bucket holds
// limit tokens and refills at limit per window.
type MemoryRateLimitRepository struct {
	limiters sync.Map // map[string]*rate.Limiter
	now      func() time.Time
}

func NewMemoryRateLimitRepository() *MemoryRateLimitRepository {
	return &MemoryRateLimitRepository{now: time.Now}
}

func (r *MemoryRateLimitRepository) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	return r.getLimiter(key, limit, window).AllowN(r.now(), 1), nil
}

func (r *MemoryRateLimitRepository) getLimiter(key string, limit int, window time.Duration) *rate.Limiter {
	if v, ok := r.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	every := rate.Every(window / time.Duration(limit))
	lim := rate.NewLimiter(every, limit)
	actual, loaded := r.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
