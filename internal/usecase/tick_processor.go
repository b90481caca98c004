package usecase

import (
	"context"
	"fmt"
	"time"

	"SimuTrade/internal/domain/models"
	drepo "SimuTrade/internal/domain/repository"
)

// TickProcessor routes accepted ticks to the configured archive backend.
// Backend "none" makes every call a no-op so the core runs without any
// external sink attached.
type TickProcessor struct {
	kafka      drepo.Archiver // nil unless backend is kafka
	clickhouse drepo.Archiver // nil unless backend is clickhouse
	metrics    drepo.Metrics
	backend    string
}

// NewTickProcessor creates a processor for the given backend.
func NewTickProcessor(kafka, clickhouse drepo.Archiver, metrics drepo.Metrics, backend string) *TickProcessor {
	return &TickProcessor{kafka: kafka, clickhouse: clickhouse, metrics: metrics, backend: backend}
}

// Archive routes a single tick to the backend.
func (p *TickProcessor) Archive(ctx context.Context, t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick is nil")
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "none", "":
		return nil
	case "kafka":
		err = p.kafka.Archive(ctx, t)
	case "clickhouse":
		err = p.clickhouse.Archive(ctx, t)
	default:
		err = fmt.Errorf("unknown archive backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("archive")
		return fmt.Errorf("archive tick: %w", err)
	}
	p.metrics.RecordLatency("archive", time.Since(start).Seconds())
	return nil
}

// ArchiveBatch routes a batch of ticks to the backend.
func (p *TickProcessor) ArchiveBatch(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "none", "":
		return nil
	case "kafka":
		err = p.kafka.ArchiveBatch(ctx, ticks)
	case "clickhouse":
		err = p.clickhouse.ArchiveBatch(ctx, ticks)
	default:
		err = fmt.Errorf("unknown archive backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("archive_batch")
		return fmt.Errorf("archive batch: %w", err)
	}
	p.metrics.RecordLatency("archive_batch", time.Since(start).Seconds())
	return nil
}

// Close closes whichever backend is attached.
func (p *TickProcessor) Close() {
	if p.kafka != nil {
		_ = p.kafka.Close()
	}
	if p.clickhouse != nil {
		_ = p.clickhouse.Close()
	}
}
