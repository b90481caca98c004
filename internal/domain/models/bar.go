package models

import "fmt"

// PriceBar is one OHLC observation. Open is not carried: the engine only
// consumes close/low/high. A degenerate bar with low == high == close is
// valid (sources without intrabar range report those).
type PriceBar struct {
	Close float64
	Low   float64
	High  float64
}

// Validate checks bar consistency.
func (b PriceBar) Validate() error {
	if b.Close <= 0 || b.Low <= 0 || b.High <= 0 {
		return fmt.Errorf("bar values must be positive: %+v", b)
	}
	if b.Low > b.Close || b.Close > b.High {
		return fmt.Errorf("bar range invalid (low <= close <= high): %+v", b)
	}
	return nil
}

// Closes extracts the close series from a bar window.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Tick is one live trade observation from the price stream.
type Tick struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}
