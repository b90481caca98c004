package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	decisions   *prometheus.CounterVec
	opened      *prometheus.CounterVec
	settlements *prometheus.CounterVec
	profit      prometheus.Counter
	lastPrice   *prometheus.GaugeVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simutrade_decisions_total",
				Help: "Total number of fused signal decisions by outcome",
			},
			[]string{"decision"},
		),
		opened: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simutrade_predictions_opened_total",
				Help: "Total number of predictions opened",
			},
			[]string{"timeframe", "direction"},
		),
		settlements: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simutrade_settlements_total",
				Help: "Total number of settled predictions by outcome",
			},
			[]string{"timeframe", "outcome"},
		),
		profit: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "simutrade_profit_units_total",
				Help: "Cumulative absolute profit units moved by settlements",
			},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "simutrade_last_price",
				Help: "Last observed live price for a symbol",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simutrade_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simutrade_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordDecision records one fused decision.
func (r *Recorder) RecordDecision(decision string) {
	r.decisions.WithLabelValues(decision).Inc()
}

// RecordPredictionOpened records a newly opened prediction.
func (r *Recorder) RecordPredictionOpened(timeframe, direction string) {
	r.opened.WithLabelValues(timeframe, direction).Inc()
}

// RecordSettlement records a settled prediction and its profit magnitude.
func (r *Recorder) RecordSettlement(timeframe string, correct bool, profit float64) {
	outcome := "incorrect"
	if correct {
		outcome = "correct"
	}
	r.settlements.WithLabelValues(timeframe, outcome).Inc()
	if profit < 0 {
		profit = -profit
	}
	r.profit.Add(profit)
}

// RecordLastPrice records the last live price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
