package marketdata

import (
	"context"
	"errors"
	"testing"

	"SimuTrade/internal/domain/models"
	"SimuTrade/internal/domain/repository"
	"SimuTrade/pkg/logger"
)

type fakeSource struct {
	name  string
	bars  []models.PriceBar
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchRecentBars(ctx context.Context, symbol, interval string, limit int) ([]models.PriceBar, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordDecision(string)                  {}
func (nopMetrics) RecordPredictionOpened(string, string)  {}
func (nopMetrics) RecordSettlement(string, bool, float64) {}
func (nopMetrics) RecordLastPrice(string, float64)        {}
func (nopMetrics) RecordError(string)                     {}
func (nopMetrics) RecordLatency(string, float64)          {}

func TestChainReturnsFirstHealthySource(t *testing.T) {
	primary := &fakeSource{name: "a", bars: []models.PriceBar{{Close: 100, Low: 99, High: 101}}}
	fallback := &fakeSource{name: "b", bars: []models.PriceBar{{Close: 200, Low: 199, High: 201}}}

	chain := NewChain([]repository.OHLCSource{primary, fallback}, nopMetrics{}, logger.Nop())
	bars, err := chain.FetchRecentBars(context.Background(), "BTCUSDT", "1h", 100)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if bars[0].Close != 100 {
		t.Fatalf("expected primary bars, got %v", bars)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback should not be consulted")
	}
}

func TestChainFallsBackOnError(t *testing.T) {
	primary := &fakeSource{name: "a", err: errors.New("upstream 451")}
	fallback := &fakeSource{name: "b", bars: []models.PriceBar{{Close: 200, Low: 199, High: 201}}}

	chain := NewChain([]repository.OHLCSource{primary, fallback}, nopMetrics{}, logger.Nop())
	bars, err := chain.FetchRecentBars(context.Background(), "BTCUSDT", "1h", 100)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if bars[0].Close != 200 {
		t.Fatalf("expected fallback bars, got %v", bars)
	}
	if primary.calls != 1 {
		t.Fatalf("primary should be tried first")
	}
}

func TestChainAllSourcesFailed(t *testing.T) {
	a := &fakeSource{name: "a", err: errors.New("down")}
	b := &fakeSource{name: "b", err: errors.New("also down")}

	chain := NewChain([]repository.OHLCSource{a, b}, nopMetrics{}, logger.Nop())
	if _, err := chain.FetchRecentBars(context.Background(), "BTCUSDT", "1h", 100); !errors.Is(err, ErrAllSourcesFailed) {
		t.Fatalf("expected ErrAllSourcesFailed, got %v", err)
	}
}

func TestChainRateLimitSkipsSource(t *testing.T) {
	a := &fakeSource{name: "a", bars: []models.PriceBar{{Close: 100, Low: 99, High: 101}}}
	b := &fakeSource{name: "b", bars: []models.PriceBar{{Close: 200, Low: 199, High: 201}}}

	chain := NewChain([]repository.OHLCSource{a, b}, nopMetrics{}, logger.Nop(), WithRateLimit(1, 0.001))
	ctx := context.Background()

	if _, err := chain.FetchRecentBars(ctx, "BTCUSDT", "1h", 100); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	bars, err := chain.FetchRecentBars(ctx, "BTCUSDT", "1h", 100)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if bars[0].Close != 200 {
		t.Fatalf("expected fallback after primary exhausted its bucket, got %v", bars)
	}
}
