package indicator

import (
	"errors"
	"fmt"

	"SimuTrade/internal/domain/models"
)

// ErrInsufficientData is returned when a window is shorter than an
// indicator's minimum lookback. Callers may substitute a documented neutral
// value; the indicator itself never defaults silently.
var ErrInsufficientData = errors.New("indicator: insufficient data")

// RSI computes the classic Wilder relative strength index over the close
// series and returns the value for the most recent bar. Requires at least
// period+1 closes.
func RSI(bars []models.PriceBar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("rsi: period must be positive, got %d", period)
	}
	closes := models.Closes(bars)
	if len(closes) < period+1 {
		return 0, fmt.Errorf("rsi: need %d closes, have %d: %w", period+1, len(closes), ErrInsufficientData)
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remainder of the window.
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}
