package signal

import "SimuTrade/internal/domain/models"

// Thresholds are the fixed policy constants of the fusion rule, exposed as
// named configuration instead of literals at the decision site.
type Thresholds struct {
	RSILow  float64
	RSIHigh float64
	KDJLow  float64
	KDJHigh float64
}

// DefaultThresholds returns the standard oversold/overbought bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{RSILow: 30, RSIHigh: 70, KDJLow: 20, KDJHigh: 80}
}

// Fuser combines the indicator snapshot and the latest close into one
// discrete decision. Pure: identical inputs always yield the same output.
type Fuser struct {
	th Thresholds
}

// NewFuser creates a fuser with the given threshold policy.
func NewFuser(th Thresholds) *Fuser {
	return &Fuser{th: th}
}

// Fuse evaluates the entry rules in order; the first match wins. The two
// legs are not mutually exclusive under malformed bounds, so the bullish
// rule is checked first for reproducibility.
func (f *Fuser) Fuse(lastClose float64, snap models.IndicatorSnapshot) models.Decision {
	if lastClose > snap.BollLower && snap.KdjJ < f.th.KDJLow && snap.RSI < f.th.RSILow {
		return models.BullishEntry
	}
	if lastClose < snap.BollUpper && snap.KdjJ > f.th.KDJHigh && snap.RSI > f.th.RSIHigh {
		return models.BearishEntry
	}
	return models.Hold
}
