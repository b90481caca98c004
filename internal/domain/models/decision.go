package models

// Decision is the discrete output of the signal fuser.
type Decision string

const (
	BullishEntry Decision = "bullish_entry"
	BearishEntry Decision = "bearish_entry"
	Hold         Decision = "hold"
)

// Directional reports whether the decision opens a position.
func (d Decision) Directional() bool {
	return d == BullishEntry || d == BearishEntry
}

// IndicatorSnapshot is the per-cycle derived view of the rolling window.
// Recomputed every analysis cycle; never persisted.
type IndicatorSnapshot struct {
	RSI       float64 `json:"rsi"`
	BollUpper float64 `json:"boll_upper"`
	BollLower float64 `json:"boll_lower"`
	KdjK      float64 `json:"kdj_k"`
	KdjD      float64 `json:"kdj_d"`
	KdjJ      float64 `json:"kdj_j"`
}

// Analysis is what one analysis cycle exposes to consumers: the decision,
// the snapshot it came from, and the prediction it opened (nil on Hold).
type Analysis struct {
	Decision   Decision          `json:"decision"`
	Price      float64           `json:"price"`
	Indicators IndicatorSnapshot `json:"indicators"`
	Opened     *PredictionView   `json:"opened,omitempty"`
}
