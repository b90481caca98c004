package repository

import (
	"context"

	"SimuTrade/internal/domain/models"
)

// OHLCSource fetches recent bars for a symbol, ordered oldest-to-newest.
// Any failure means "skip this analysis cycle" to the core.
type OHLCSource interface {
	Name() string
	FetchRecentBars(ctx context.Context, symbol, interval string, limit int) ([]models.PriceBar, error)
}

// PriceStream is a push-based live price feed.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Archiver fans live ticks out to an external sink (Kafka, ClickHouse).
// The prediction core never depends on it; it is a boundary collaborator.
type Archiver interface {
	Archive(ctx context.Context, t *models.Tick) error
	ArchiveBatch(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

// Metrics is the domain-facing metrics recorder.
type Metrics interface {
	RecordDecision(decision string)
	RecordPredictionOpened(timeframe, direction string)
	RecordSettlement(timeframe string, correct bool, profit float64)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
