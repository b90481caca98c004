package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SimuTrade/internal/domain/models"
	domrepo "SimuTrade/internal/domain/repository"
)

// Sink is the downstream the pipeline feeds.
type Sink interface {
	Archive(ctx context.Context, t *models.Tick) error
	ArchiveBatch(ctx context.Context, ticks []*models.Tick) error
}

// TickPipeline sits between the live price stream and the archive sink.
// It validates, throttles per symbol, and groups accepted ticks into
// batches flushed on size or on a timer. Failed batches are requeued up
// to a bounded pending depth so short sink outages do not lose data.
type TickPipeline struct {
	sink    Sink
	metrics domrepo.Metrics

	maxRPS     int
	batchSize  int
	flushEvery time.Duration
	maxPending int

	mu       sync.Mutex
	batch    []*models.Tick
	lastSeen map[string]time.Time // per-symbol last accepted time

	stopCh  chan struct{}
	started bool
}

type PipelineOption func(*TickPipeline)

// WithMaxRPS sets max accepted ticks per second per symbol. Zero or
// negative disables throttling.
func WithMaxRPS(n int) PipelineOption {
	return func(p *TickPipeline) {
		p.maxRPS = n
	}
}

// WithBatching sets the flush threshold and the timer interval. A size
// of 1 flushes every tick individually.
func WithBatching(size int, every time.Duration) PipelineOption {
	return func(p *TickPipeline) {
		if size > 0 {
			p.batchSize = size
		}
		if every > 0 {
			p.flushEvery = every
		}
	}
}

// WithMaxPending bounds how many ticks may sit unflushed.
func WithMaxPending(n int) PipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.maxPending = n
		}
	}
}

// NewTickPipeline creates a pipeline in front of sink.
func NewTickPipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *TickPipeline {
	p := &TickPipeline{
		sink:       sink,
		metrics:    metrics,
		maxRPS:     20,
		batchSize:  1,
		flushEvery: time.Second,
		maxPending: 2000,
		lastSeen:   make(map[string]time.Time),
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the timer-driven flusher.
func (p *TickPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.flushEvery)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = p.Flush(ctx)
			}
		}
	}()
}

// Stop stops the flusher and flushes whatever is pending.
func (p *TickPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
	_ = p.Flush(context.Background())
}

// Process validates and throttles a tick, then either forwards it
// directly (batch size 1) or queues it for the next flush.
func (p *TickPipeline) Process(ctx context.Context, t *models.Tick) error {
	if err := validateTick(t); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	now := time.Now()
	if !p.allow(t.Symbol, now) {
		// throttled ticks are dropped, not errors
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if p.batchSize <= 1 {
		if err := p.sink.Archive(ctx, t); err != nil {
			p.metrics.RecordError("pipeline_archive")
			p.requeue([]*models.Tick{t})
			return fmt.Errorf("pipeline sink: %w", err)
		}
		p.metrics.RecordLatency("pipeline_archive", time.Since(now).Seconds())
		return nil
	}

	p.mu.Lock()
	if len(p.batch) >= p.maxPending {
		p.mu.Unlock()
		p.metrics.RecordError("pipeline_buffer_full")
		return nil
	}
	p.batch = append(p.batch, t)
	full := len(p.batch) >= p.batchSize
	p.mu.Unlock()

	if full {
		return p.Flush(ctx)
	}
	return nil
}

// Flush sends the pending batch to the sink. Failed batches are
// requeued up to maxPending.
func (p *TickPipeline) Flush(ctx context.Context) error {
	p.mu.Lock()
	out := p.batch
	p.batch = nil
	p.mu.Unlock()

	if len(out) == 0 {
		return nil
	}

	start := time.Now()
	if err := p.sink.ArchiveBatch(ctx, out); err != nil {
		p.metrics.RecordError("pipeline_flush")
		p.requeue(out)
		return fmt.Errorf("pipeline sink: %w", err)
	}
	p.metrics.RecordLatency("pipeline_flush", time.Since(start).Seconds())
	return nil
}

// Pending reports how many ticks await the next flush.
func (p *TickPipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batch)
}

func (p *TickPipeline) requeue(out []*models.Tick) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(out)+len(p.batch) > p.maxPending {
		p.metrics.RecordError("pipeline_buffer_drop")
		return
	}
	p.batch = append(out, p.batch...)
}

func validateTick(t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick nil")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if t.Price <= 0 || t.Volume < 0 {
		return fmt.Errorf("invalid price/volume")
	}
	return nil
}

func (p *TickPipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[symbol]
	if last.IsZero() || now.Sub(last) >= time.Second/time.Duration(p.maxRPS) {
		p.lastSeen[symbol] = now
		return true
	}
	return false
}
