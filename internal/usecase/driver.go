package usecase

import (
	"context"
	"sync"
	"time"

	"SimuTrade/internal/domain/models"
	drepo "SimuTrade/internal/domain/repository"
	"SimuTrade/internal/ledger"
	"SimuTrade/pkg/logger"
)

// DriverConfig holds the cadence and default horizon of the engine.
type DriverConfig struct {
	Timeframe          drepo.Timeframe
	AnalysisInterval   time.Duration
	SettlementInterval time.Duration
}

// Driver owns the engine lifecycle: it runs the periodic analysis loop
// that opens predictions and the faster settlement loop that resolves
// them against the live price.
type Driver struct {
	analyzer  *Analyzer
	ledger    *ledger.Ledger
	collector *PriceCollector
	metrics   drepo.Metrics
	log       *logger.Logger
	cfg       DriverConfig

	mu        sync.RWMutex
	lastClose float64 // settlement fallback before the first live tick
}

// NewDriver wires the engine together.
func NewDriver(analyzer *Analyzer, lg *ledger.Ledger, collector *PriceCollector, metrics drepo.Metrics, log *logger.Logger, cfg DriverConfig) *Driver {
	return &Driver{
		analyzer:  analyzer,
		ledger:    lg,
		collector: collector,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
	}
}

// Run blocks until ctx is cancelled, driving both loops.
func (d *Driver) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		d.analysisLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		d.settlementLoop(ctx)
	}()

	wg.Wait()
}

func (d *Driver) analysisLoop(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.AnalysisInterval)
	defer ticker.Stop()

	// first cycle immediately, then on the ticker
	d.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runCycle(ctx)
		}
	}
}

func (d *Driver) runCycle(ctx context.Context) {
	if _, err := d.Analyze(ctx, d.cfg.Timeframe); err != nil {
		// a failed fetch skips the cycle; the engine carries no partial state
		d.log.Warn("analysis cycle skipped", logger.Error(err))
	}
}

func (d *Driver) settlementLoop(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.SettlementInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			price := d.settlementPrice()
			if price <= 0 {
				continue
			}
			for _, v := range d.ledger.Tick(price, now) {
				d.metrics.RecordSettlement(v.Timeframe, v.Settlement.Correct, v.Settlement.Profit)
				d.log.Info("prediction settled",
					logger.String("id", v.ID),
					logger.String("timeframe", v.Timeframe),
					logger.String("direction", string(v.Direction)),
					logger.Float64("entry", v.EntryPrice),
					logger.Float64("settled", v.Settlement.SettledPrice),
					logger.Float64("profit", v.Settlement.Profit))
			}
		}
	}
}

// Analyze runs one cycle for the given timeframe and opens a prediction
// when the decision is directional. Used by both the loop and the API.
func (d *Driver) Analyze(ctx context.Context, tf drepo.Timeframe) (*models.Analysis, error) {
	res, err := d.analyzer.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.lastClose = res.Price
	d.mu.Unlock()

	entry := res.Price
	if live, _ := d.collector.LastPrice(); live > 0 {
		entry = live
	}
	res.Price = entry

	if v := d.ledger.Create(res.Decision, entry, tf, time.Now()); v != nil {
		res.Opened = v
		d.metrics.RecordPredictionOpened(v.Timeframe, string(v.Direction))
		d.log.Info("prediction opened",
			logger.String("id", v.ID),
			logger.String("timeframe", v.Timeframe),
			logger.String("direction", string(v.Direction)),
			logger.Float64("entry", v.EntryPrice))
	}
	return res, nil
}

// settlementPrice prefers the live stream, falling back to the last
// analysis close until the first tick arrives.
func (d *Driver) settlementPrice() float64 {
	if live, _ := d.collector.LastPrice(); live > 0 {
		return live
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastClose
}

// Predictions returns the ledger snapshot filtered by state, newest
// first, truncated to limit.
func (d *Driver) Predictions(state string, limit int) []models.PredictionView {
	all := d.ledger.Snapshot()

	filtered := make([]models.PredictionView, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		v := all[i]
		switch state {
		case "open":
			if v.Settlement != nil {
				continue
			}
		case "settled":
			if v.Settlement == nil {
				continue
			}
		}
		filtered = append(filtered, v)
		if limit > 0 && len(filtered) >= limit {
			break
		}
	}
	return filtered
}

// Stats returns the accuracy/profit summary.
func (d *Driver) Stats() models.LedgerStats {
	return d.ledger.Stats()
}

// LastPrice returns the latest live price and its timestamp.
func (d *Driver) LastPrice() (float64, time.Time) {
	return d.collector.LastPrice()
}
