package indicator

import (
	"fmt"

	"SimuTrade/internal/domain/models"
)

// Stochastic holds the K/D/J lines of the oscillator.
type Stochastic struct {
	K float64
	D float64
	J float64
}

// neutralRSV is both the degenerate-range fallback and the smoothing seed.
const neutralRSV = 50.0

// KDJ computes the simplified non-recursive stochastic oscillator over the
// trailing period bars. No prior K/D state is carried between calls: each
// call reseeds smoothing at the neutral 50, matching the simplified form
// this engine standardizes on. A window shorter than period is used as-is.
func KDJ(bars []models.PriceBar, period int) (Stochastic, error) {
	if period <= 0 {
		return Stochastic{}, fmt.Errorf("kdj: period must be positive, got %d", period)
	}
	if len(bars) == 0 {
		return Stochastic{}, fmt.Errorf("kdj: empty window: %w", ErrInsufficientData)
	}
	if len(bars) > period {
		bars = bars[len(bars)-period:]
	}

	lowest, highest := bars[0].Low, bars[0].High
	for _, b := range bars[1:] {
		if b.Low < lowest {
			lowest = b.Low
		}
		if b.High > highest {
			highest = b.High
		}
	}

	rsv := neutralRSV
	if highest != lowest {
		lastClose := bars[len(bars)-1].Close
		rsv = (lastClose - lowest) / (highest - lowest) * 100
	}

	k := (2.0/3.0)*neutralRSV + (1.0/3.0)*rsv
	d := (2.0/3.0)*neutralRSV + (1.0/3.0)*k
	j := 3*k - 2*d

	return Stochastic{K: k, D: d, J: j}, nil
}
