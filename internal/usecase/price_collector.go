package usecase

import (
	"context"
	"sync"
	"time"

	"SimuTrade/internal/domain/models"
	drepo "SimuTrade/internal/domain/repository"
	mid "SimuTrade/internal/middleware"
	"SimuTrade/pkg/logger"
)

// PriceCollector consumes the live trade stream and keeps the last
// observed price. When a pipeline is attached every accepted tick is
// also forwarded to the archive sink.
type PriceCollector struct {
	stream  drepo.PriceStream
	pipe    *mid.TickPipeline // nil when archival is disabled
	metrics drepo.Metrics
	log     *logger.Logger

	mu     sync.RWMutex
	last   float64
	lastAt time.Time
}

// NewPriceCollector creates a collector over the given stream.
func NewPriceCollector(stream drepo.PriceStream, pipe *mid.TickPipeline, metrics drepo.Metrics, log *logger.Logger) *PriceCollector {
	return &PriceCollector{stream: stream, pipe: pipe, metrics: metrics, log: log}
}

// IsConnected reports stream status.
func (c *PriceCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes, and launches the consume loop.
func (c *PriceCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	ticks, errs := c.stream.Read(ctx)
	go c.consume(ctx, ticks, errs)
	return nil
}

func (c *PriceCollector) consume(ctx context.Context, ticks <-chan *models.Tick, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			if err != nil {
				c.metrics.RecordError("stream")
				c.log.Warn("price stream error, reconnecting", logger.Error(err))
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.log.Error("reconnect failed", logger.Error(rerr))
					continue
				}
				ticks, errs = c.stream.Read(ctx)
			}
		case t := <-ticks:
			if t == nil {
				continue
			}
			c.mu.Lock()
			c.last = t.Price
			c.lastAt = time.Unix(t.Timestamp, 0)
			c.mu.Unlock()
			c.metrics.RecordLastPrice(t.Symbol, t.Price)
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			}
		}
	}
}

// LastPrice returns the most recent live price and its timestamp.
// Zero means no tick has arrived yet.
func (c *PriceCollector) LastPrice() (float64, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.lastAt
}

// Shutdown stops the pipeline and closes the stream.
func (c *PriceCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
