package marketdata

import (
	"context"
	"errors"
	"fmt"

	"SimuTrade/internal/domain/models"
	"SimuTrade/internal/domain/repository"
	"SimuTrade/internal/service/ratelimit"
	"SimuTrade/pkg/logger"
)

// ErrAllSourcesFailed is returned when every source in the chain failed.
var ErrAllSourcesFailed = errors.New("all candle sources failed")

// Chain is an OHLCSource that tries underlying sources in order and
// returns the first successful result. Each source is rate limited by
// its own token bucket.
type Chain struct {
	sources []repository.OHLCSource
	limiter *ratelimit.Limiter
	metrics repository.Metrics
	log     *logger.Logger

	burst        float64
	refillPerSec float64
}

// ChainOption configures Chain.
type ChainOption func(*Chain)

// WithRateLimit sets the per-source token bucket parameters.
func WithRateLimit(burst, refillPerSec float64) ChainOption {
	return func(c *Chain) {
		c.burst = burst
		c.refillPerSec = refillPerSec
	}
}

// NewChain creates an ordered fallback chain over the given sources.
func NewChain(sources []repository.OHLCSource, metrics repository.Metrics, log *logger.Logger, opts ...ChainOption) *Chain {
	c := &Chain{
		sources:      sources,
		limiter:      ratelimit.New(),
		metrics:      metrics,
		log:          log,
		burst:        5,
		refillPerSec: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the chain in logs and errors.
func (c *Chain) Name() string { return "chain" }

// FetchRecentBars tries each source in order. A source that is rate
// limited or errors is skipped; its failure is logged and counted, and
// the next source is consulted.
func (c *Chain) FetchRecentBars(ctx context.Context, symbol, interval string, limit int) ([]models.PriceBar, error) {
	var lastErr error
	for _, src := range c.sources {
		if !c.limiter.Allow(src.Name(), c.burst, c.refillPerSec) {
			lastErr = fmt.Errorf("%s: rate limited", src.Name())
			continue
		}
		bars, err := src.FetchRecentBars(ctx, symbol, interval, limit)
		if err != nil {
			lastErr = err
			c.metrics.RecordError("source_" + src.Name())
			c.log.Warn("candle source failed, trying next",
				logger.String("source", src.Name()),
				logger.Error(err))
			continue
		}
		return bars, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllSourcesFailed, lastErr)
	}
	return nil, ErrAllSourcesFailed
}
