package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/domain"
)

const defaultRetryAfter = time.Minute

// FailoverRateLimitRepository uses primary until it errors, then serves from fallback and
// retries primary once retryAfter has passed.
type FailoverRateLimitRepository struct {
	primary    domain.RateLimitRepository
	fallback   domain.RateLimitRepository
	logger     *zerolog.Logger
	retryAfter time.Duration
	now        func() time.Time

	isDown   atomic.Bool
	downedAt atomic.Int64
}

var _ domain.RateLimitRepository = (*FailoverRateLimitRepository)(nil)

func NewFailoverRateLimitRepository(primary, fallback domain.RateLimitRepository, logger *zerolog.Logger) *FailoverRateLimitRepository {
	return &FailoverRateLimitRepository{
		primary:    primary,
		fallback:   fallback,
		logger:     logger,
		retryAfter: defaultRetryAfter,
		now:        time.Now,
	}
}

func (r *FailoverRateLimitRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() || r.now().Sub(time.Unix(0, r.downedAt.Load())) > r.retryAfter {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			if r.isDown.CompareAndSwap(true, false) {
				r.logger.Info().Msg("primary rate limit store recovered")
			}
			return allowed, nil
		}
		if !r.isDown.Swap(true) {
			r.logger.Error().Err(err).Msg("primary rate limit store failed, falling back to memory")
		}
		r.downedAt.Store(r.now().UnixNano())
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
