package marketdata

import (
	"context"
	"errors"
	"time"

	"SimuTrade/internal/domain/models"
	"SimuTrade/internal/domain/repository"
	"SimuTrade/pkg/cache"
	"SimuTrade/pkg/logger"
)

// CachedSource wraps an OHLCSource with a short-TTL cache so repeated
// analysis cycles inside one candle do not re-hit the upstream API.
type CachedSource struct {
	inner repository.OHLCSource
	cache cache.Service
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedSource wraps src with the given cache service.
func NewCachedSource(src repository.OHLCSource, svc cache.Service, ttl time.Duration, log *logger.Logger) *CachedSource {
	return &CachedSource{inner: src, cache: svc, ttl: ttl, log: log}
}

// Name identifies the wrapped source.
func (c *CachedSource) Name() string { return c.inner.Name() }

func (c *CachedSource) FetchRecentBars(ctx context.Context, symbol, interval string, limit int) ([]models.PriceBar, error) {
	key := cache.Key("bars", c.inner.Name(), symbol, interval, limit)

	var cached []models.PriceBar
	err := c.cache.Get(ctx, key, &cached)
	if err == nil && len(cached) > 0 {
		return cached, nil
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		c.log.Warn("candle cache read failed", logger.Error(err))
	}

	bars, err := c.inner.FetchRecentBars(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, bars, c.ttl); err != nil {
		c.log.Warn("candle cache write failed", logger.Error(err))
	}
	return bars, nil
}
