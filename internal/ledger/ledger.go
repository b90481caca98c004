package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"SimuTrade/internal/domain/models"
	domrepo "SimuTrade/internal/domain/repository"
)

// Ledger is the ordered, mutex-guarded collection of prediction records.
// Create and Tick serialize against each other, so a prediction becomes
// visible to settlement only after it is fully initialized, and no record
// is ever read mid-settlement.
type Ledger struct {
	mu          sync.Mutex
	records     []*models.Prediction
	baseStake   float64
	profitRates map[domrepo.Timeframe]float64
}

// New creates a ledger with the given settlement policy. Rates are copied.
func New(baseStake float64, profitRates map[domrepo.Timeframe]float64) *Ledger {
	rates := make(map[domrepo.Timeframe]float64, len(profitRates))
	for tf, r := range profitRates {
		rates[tf] = r
	}
	return &Ledger{baseStake: baseStake, profitRates: rates}
}

// Create appends one open prediction for a directional decision and returns
// its view. Hold is a no-op returning nil. Existing records are never touched.
func (l *Ledger) Create(decision models.Decision, price float64, tf domrepo.Timeframe, now time.Time) *models.PredictionView {
	if !decision.Directional() {
		return nil
	}

	horizon := domrepo.Horizon(tf)
	p := &models.Prediction{
		ID:         uuid.NewString(),
		OpenedAt:   now,
		Timeframe:  string(tf),
		Horizon:    horizon,
		ExpiresAt:  now.Add(horizon),
		Direction:  models.DirectionFor(decision),
		EntryPrice: price,
	}

	l.mu.Lock()
	l.records = append(l.records, p)
	l.mu.Unlock()

	v := p.View()
	return &v
}

// Tick settles every open prediction whose expiry has passed, using price as
// the realized sample. Settled records are skipped, so calling Tick twice
// with the same inputs changes nothing. Returns the views settled this pass.
func (l *Ledger) Tick(price float64, now time.Time) []models.PredictionView {
	l.mu.Lock()
	defer l.mu.Unlock()

	var settled []models.PredictionView
	for _, p := range l.records {
		if p.Settled != nil || now.Before(p.ExpiresAt) {
			continue
		}
		correct := (p.Direction == models.Bullish && price > p.EntryPrice) ||
			(p.Direction == models.Bearish && price < p.EntryPrice)
		profit := -l.baseStake
		if correct {
			profit = l.baseStake * l.rate(domrepo.Timeframe(p.Timeframe))
		}
		p.Settled = &models.Settlement{
			SettledPrice: price,
			SettledAt:    now,
			Correct:      correct,
			Profit:       profit,
		}
		settled = append(settled, p.View())
	}
	return settled
}

// Snapshot returns detached copies of all records, oldest first.
func (l *Ledger) Snapshot() []models.PredictionView {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.PredictionView, len(l.records))
	for i, p := range l.records {
		out[i] = p.View()
	}
	return out
}

// Stats summarizes the ledger for the accuracy/profit report.
func (l *Ledger) Stats() models.LedgerStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := models.LedgerStats{Total: len(l.records)}
	for _, p := range l.records {
		if p.Settled == nil {
			s.Open++
			continue
		}
		s.Settled++
		if p.Settled.Correct {
			s.Correct++
		}
		s.Profit += p.Settled.Profit
	}
	if s.Settled > 0 {
		s.WinRate = float64(s.Correct) / float64(s.Settled)
	}
	return s
}

func (l *Ledger) rate(tf domrepo.Timeframe) float64 {
	if r, ok := l.profitRates[tf]; ok {
		return r
	}
	return 0
}
