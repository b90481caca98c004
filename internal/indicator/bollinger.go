package indicator

import (
	"fmt"
	"math"

	"SimuTrade/internal/domain/models"
)

// Bands is a Bollinger volatility envelope around the trailing mean.
type Bands struct {
	Mean  float64
	Upper float64
	Lower float64
}

// Bollinger computes mean +/- k population standard deviations over the last
// period closes. Unlike RSI it degrades gracefully: a window shorter than
// period is used as-is.
func Bollinger(bars []models.PriceBar, period int, k float64) (Bands, error) {
	if period <= 0 {
		return Bands{}, fmt.Errorf("bollinger: period must be positive, got %d", period)
	}
	closes := models.Closes(bars)
	if len(closes) == 0 {
		return Bands{}, fmt.Errorf("bollinger: empty window: %w", ErrInsufficientData)
	}
	if len(closes) > period {
		closes = closes[len(closes)-period:]
	}

	var sum float64
	for _, c := range closes {
		sum += c
	}
	mean := sum / float64(len(closes))

	var variance float64
	for _, c := range closes {
		d := c - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(closes)))

	return Bands{
		Mean:  mean,
		Upper: mean + k*stddev,
		Lower: mean - k*stddev,
	}, nil
}
