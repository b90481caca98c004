package models

import "time"

// Direction of an open prediction.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
)

// DirectionFor maps a directional decision to its prediction direction.
// Hold has no direction; callers must not map it.
func DirectionFor(d Decision) Direction {
	if d == BearishEntry {
		return Bearish
	}
	return Bullish
}

// Settlement is set exactly once when a prediction expires and a price
// sample at or after expiry is available. Immutable afterwards.
type Settlement struct {
	SettledPrice float64   `json:"settled_price"`
	SettledAt    time.Time `json:"settled_at"`
	Correct      bool      `json:"correct"`
	Profit       float64   `json:"profit"`
}

// Prediction is the only entity with identity and a lifecycle
// (open -> settled). Owned exclusively by the ledger.
type Prediction struct {
	ID         string
	OpenedAt   time.Time
	Timeframe  string // horizon label, e.g. "10m"
	Horizon    time.Duration
	ExpiresAt  time.Time
	Direction  Direction
	EntryPrice float64
	Settled    *Settlement // nil while open
}

// Open reports whether the prediction has not been settled yet.
func (p *Prediction) Open() bool { return p.Settled == nil }

// View returns the read-only projection served to API consumers.
func (p *Prediction) View() PredictionView {
	v := PredictionView{
		ID:         p.ID,
		OpenedAt:   p.OpenedAt,
		Timeframe:  p.Timeframe,
		ExpiresAt:  p.ExpiresAt,
		Direction:  p.Direction,
		EntryPrice: p.EntryPrice,
	}
	if p.Settled != nil {
		s := *p.Settled
		v.Settlement = &s
	}
	return v
}

// PredictionView is a detached copy; mutating it never touches ledger state.
type PredictionView struct {
	ID         string      `json:"id"`
	OpenedAt   time.Time   `json:"opened_at"`
	Timeframe  string      `json:"timeframe"`
	ExpiresAt  time.Time   `json:"expires_at"`
	Direction  Direction   `json:"direction"`
	EntryPrice float64     `json:"entry_price"`
	Settlement *Settlement `json:"settlement,omitempty"`
}

// LedgerStats summarizes settled predictions for the accuracy/profit report.
type LedgerStats struct {
	Total   int     `json:"total"`
	Open    int     `json:"open"`
	Settled int     `json:"settled"`
	Correct int     `json:"correct"`
	WinRate float64 `json:"win_rate"`
	Profit  float64 `json:"profit"`
}
