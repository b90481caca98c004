package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SimuTrade/internal/domain/models"
	drepo "SimuTrade/internal/domain/repository"
	"SimuTrade/internal/indicator"
	"SimuTrade/internal/signal"
	"SimuTrade/pkg/logger"
)

// AnalyzerConfig holds the window and indicator parameters of a cycle.
type AnalyzerConfig struct {
	Symbol     string
	Interval   string // candle interval requested from sources
	WindowSize int
	RSIPeriod  int
	BollPeriod int
	BollK      float64
	KDJPeriod  int
}

// Analyzer runs one analysis cycle: fetch the rolling window, derive the
// indicator snapshot, and fuse it into a decision. It holds no mutable
// state; every cycle recomputes from scratch.
type Analyzer struct {
	source  drepo.OHLCSource
	fuser   *signal.Fuser
	metrics drepo.Metrics
	log     *logger.Logger
	cfg     AnalyzerConfig
}

// NewAnalyzer creates an analyzer over the given candle source.
func NewAnalyzer(source drepo.OHLCSource, fuser *signal.Fuser, metrics drepo.Metrics, log *logger.Logger, cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{source: source, fuser: fuser, metrics: metrics, log: log, cfg: cfg}
}

// Analyze fetches the window and produces a decision. A source failure
// aborts the cycle; the caller decides what skipping means.
func (a *Analyzer) Analyze(ctx context.Context) (*models.Analysis, error) {
	start := time.Now()

	bars, err := a.source.FetchRecentBars(ctx, a.cfg.Symbol, a.cfg.Interval, a.cfg.WindowSize)
	if err != nil {
		a.metrics.RecordError("fetch_bars")
		return nil, fmt.Errorf("fetch window: %w", err)
	}
	if len(bars) == 0 {
		a.metrics.RecordError("fetch_bars")
		return nil, fmt.Errorf("fetch window: no bars")
	}

	lastClose := bars[len(bars)-1].Close

	// A window shorter than the RSI lookback yields the neutral midpoint,
	// which can never trip either entry rule.
	rsi, err := indicator.RSI(bars, a.cfg.RSIPeriod)
	if err != nil {
		if !errors.Is(err, indicator.ErrInsufficientData) {
			return nil, fmt.Errorf("rsi: %w", err)
		}
		rsi = 50
	}

	boll, err := indicator.Bollinger(bars, a.cfg.BollPeriod, a.cfg.BollK)
	if err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}

	kdj, err := indicator.KDJ(bars, a.cfg.KDJPeriod)
	if err != nil {
		return nil, fmt.Errorf("kdj: %w", err)
	}

	snap := models.IndicatorSnapshot{
		RSI:       rsi,
		BollUpper: boll.Upper,
		BollLower: boll.Lower,
		KdjK:      kdj.K,
		KdjD:      kdj.D,
		KdjJ:      kdj.J,
	}

	decision := a.fuser.Fuse(lastClose, snap)
	a.metrics.RecordDecision(string(decision))
	a.metrics.RecordLatency("analyze", time.Since(start).Seconds())

	a.log.Debug("analysis cycle",
		logger.String("decision", string(decision)),
		logger.Float64("close", lastClose),
		logger.Float64("rsi", snap.RSI),
		logger.Float64("kdj_j", snap.KdjJ))

	return &models.Analysis{
		Decision:   decision,
		Price:      lastClose,
		Indicators: snap,
	}, nil
}
