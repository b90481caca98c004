package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"SimuTrade/internal/domain/models"
	drepo "SimuTrade/internal/domain/repository"
	"SimuTrade/internal/ledger"
	"SimuTrade/internal/signal"
	"SimuTrade/pkg/logger"
)

type fakeSource struct {
	bars []models.PriceBar
	err  error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchRecentBars(ctx context.Context, symbol, interval string, limit int) ([]models.PriceBar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

type idleStream struct{}

func (idleStream) Connect(ctx context.Context) error   { return nil }
func (idleStream) Subscribe(ctx context.Context) error { return nil }
func (idleStream) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	return make(chan *models.Tick), make(chan error)
}
func (idleStream) Reconnect(ctx context.Context) error { return nil }
func (idleStream) Close() error                        { return nil }
func (idleStream) IsConnected() bool                   { return false }

type nopMetrics struct{}

func (nopMetrics) RecordDecision(string)                  {}
func (nopMetrics) RecordPredictionOpened(string, string)  {}
func (nopMetrics) RecordSettlement(string, bool, float64) {}
func (nopMetrics) RecordLastPrice(string, float64)        {}
func (nopMetrics) RecordError(string)                     {}
func (nopMetrics) RecordLatency(string, float64)          {}

func decliningBars(n int) []models.PriceBar {
	bars := make([]models.PriceBar, 0, n)
	for i := 0; i < n; i++ {
		c := 110.0 - float64(i)
		bars = append(bars, models.PriceBar{Close: c, Low: c, High: c})
	}
	return bars
}

func analyzerCfg() AnalyzerConfig {
	return AnalyzerConfig{
		Symbol:     "BTCUSDT",
		Interval:   "1h",
		WindowSize: 100,
		RSIPeriod:  14,
		BollPeriod: 20,
		BollK:      2,
		KDJPeriod:  9,
	}
}

func newTestDriver(src drepo.OHLCSource) *Driver {
	an := NewAnalyzer(src, signal.NewFuser(signal.DefaultThresholds()), nopMetrics{}, logger.Nop(), analyzerCfg())
	lg := ledger.New(5, map[drepo.Timeframe]float64{drepo.TF10m: 0.80})
	coll := NewPriceCollector(idleStream{}, nil, nopMetrics{}, logger.Nop())
	return NewDriver(an, lg, coll, nopMetrics{}, logger.Nop(), DriverConfig{
		Timeframe:          drepo.TF10m,
		AnalysisInterval:   10 * time.Second,
		SettlementInterval: time.Second,
	})
}

func TestAnalyzeOpensPredictionOnOversoldDecline(t *testing.T) {
	d := newTestDriver(&fakeSource{bars: decliningBars(20)})

	res, err := d.Analyze(context.Background(), drepo.TF10m)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Decision != models.BullishEntry {
		t.Fatalf("expected bullish entry, got %s", res.Decision)
	}
	if res.Opened == nil {
		t.Fatalf("directional decision must open a prediction")
	}
	if res.Opened.Direction != models.Bullish {
		t.Fatalf("expected bullish prediction, got %s", res.Opened.Direction)
	}
	if res.Opened.EntryPrice != 91 {
		t.Fatalf("entry price should fall back to last close, got %v", res.Opened.EntryPrice)
	}
	if got := len(d.Predictions("open", 0)); got != 1 {
		t.Fatalf("expected 1 open prediction, got %d", got)
	}
}

func TestAnalyzeHoldOpensNothing(t *testing.T) {
	// a flat window keeps every indicator neutral
	bars := make([]models.PriceBar, 30)
	for i := range bars {
		bars[i] = models.PriceBar{Close: 100, Low: 99, High: 101}
	}
	d := newTestDriver(&fakeSource{bars: bars})

	res, err := d.Analyze(context.Background(), drepo.TF10m)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Decision != models.Hold {
		t.Fatalf("expected hold, got %s", res.Decision)
	}
	if res.Opened != nil {
		t.Fatalf("hold must not open a prediction")
	}
	if got := d.Stats().Total; got != 0 {
		t.Fatalf("ledger should be empty, got %d records", got)
	}
}

func TestAnalyzeSourceFailureSkipsCycle(t *testing.T) {
	d := newTestDriver(&fakeSource{err: errors.New("upstream down")})

	if _, err := d.Analyze(context.Background(), drepo.TF10m); err == nil {
		t.Fatalf("expected error when the window fetch fails")
	}
	if got := d.Stats().Total; got != 0 {
		t.Fatalf("failed cycle must not touch the ledger, got %d records", got)
	}
}

func TestShortWindowDegradesToNeutralRSI(t *testing.T) {
	// 5 bars cannot feed RSI(14); the neutral substitute blocks both entries
	bars := decliningBars(5)
	d := newTestDriver(&fakeSource{bars: bars})

	res, err := d.Analyze(context.Background(), drepo.TF10m)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Decision != models.Hold {
		t.Fatalf("short window should hold, got %s", res.Decision)
	}
	if res.Indicators.RSI != 50 {
		t.Fatalf("expected neutral rsi 50, got %v", res.Indicators.RSI)
	}
}

func TestPredictionsFilterAndLimit(t *testing.T) {
	d := newTestDriver(&fakeSource{bars: decliningBars(20)})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := d.Analyze(ctx, drepo.TF10m); err != nil {
			t.Fatalf("analyze %d: %v", i, err)
		}
	}

	if got := len(d.Predictions("all", 0)); got != 3 {
		t.Fatalf("expected 3 predictions, got %d", got)
	}
	if got := len(d.Predictions("all", 2)); got != 2 {
		t.Fatalf("limit 2 should cap the result, got %d", got)
	}
	if got := len(d.Predictions("settled", 0)); got != 0 {
		t.Fatalf("nothing is settled yet, got %d", got)
	}
	if got := len(d.Predictions("open", 0)); got != 3 {
		t.Fatalf("expected 3 open, got %d", got)
	}
}
