package ledger

import (
	"math"
	"sync"
	"testing"
	"time"

	"SimuTrade/internal/domain/models"
	domrepo "SimuTrade/internal/domain/repository"
)

var testRates = map[domrepo.Timeframe]float64{
	domrepo.TF10m: 0.80,
	domrepo.TF30m: 0.85,
}

func TestCreateHoldIsNoop(t *testing.T) {
	l := New(5, testRates)
	if v := l.Create(models.Hold, 100, domrepo.TF10m, time.Now()); v != nil {
		t.Fatalf("hold must not open a prediction, got %+v", v)
	}
	if got := len(l.Snapshot()); got != 0 {
		t.Fatalf("expected empty ledger, got %d records", got)
	}
}

func TestCreateOpensOneRecord(t *testing.T) {
	l := New(5, testRates)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	v := l.Create(models.BullishEntry, 100, domrepo.TF10m, now)
	if v == nil {
		t.Fatalf("expected a prediction view")
	}
	if v.Direction != models.Bullish || v.EntryPrice != 100 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if !v.ExpiresAt.Equal(now.Add(10 * time.Minute)) {
		t.Fatalf("expiresAt must be openedAt+horizon, got %v", v.ExpiresAt)
	}
	if v.Settlement != nil {
		t.Fatalf("new prediction must be open")
	}
	if got := len(l.Snapshot()); got != 1 {
		t.Fatalf("expected exactly one record, got %d", got)
	}
}

func TestTickBeforeExpiryLeavesRecordOpen(t *testing.T) {
	l := New(5, testRates)
	now := time.Now()
	l.Create(models.BullishEntry, 100, domrepo.TF10m, now)

	if settled := l.Tick(105, now.Add(30*time.Second)); len(settled) != 0 {
		t.Fatalf("must not settle before expiry, settled %d", len(settled))
	}
	if snap := l.Snapshot(); snap[0].Settlement != nil {
		t.Fatalf("record must remain open")
	}
}

func TestTickSettlesCorrectBullish(t *testing.T) {
	l := New(5, testRates)
	now := time.Now()
	l.Create(models.BullishEntry, 100, domrepo.TF10m, now)

	settled := l.Tick(105, now.Add(10*time.Minute+time.Second))
	if len(settled) != 1 {
		t.Fatalf("expected one settlement, got %d", len(settled))
	}
	s := settled[0].Settlement
	if s == nil || !s.Correct || s.SettledPrice != 105 {
		t.Fatalf("unexpected settlement: %+v", s)
	}
	if math.Abs(s.Profit-5*0.80) > 1e-9 {
		t.Fatalf("expected profit %v, got %v", 5*0.80, s.Profit)
	}
}

func TestTickSettlesIncorrectBearish(t *testing.T) {
	l := New(5, testRates)
	now := time.Now()
	l.Create(models.BearishEntry, 100, domrepo.TF30m, now)

	settled := l.Tick(101, now.Add(31*time.Minute))
	if len(settled) != 1 {
		t.Fatalf("expected one settlement, got %d", len(settled))
	}
	s := settled[0].Settlement
	if s.Correct {
		t.Fatalf("bearish with rising price must be incorrect")
	}
	if s.Profit != -5 {
		t.Fatalf("expected -baseStake, got %v", s.Profit)
	}
}

func TestUnchangedPriceIsIncorrectEitherWay(t *testing.T) {
	l := New(5, testRates)
	now := time.Now()
	l.Create(models.BullishEntry, 100, domrepo.TF10m, now)
	l.Create(models.BearishEntry, 100, domrepo.TF10m, now)

	settled := l.Tick(100, now.Add(11*time.Minute))
	if len(settled) != 2 {
		t.Fatalf("expected two settlements, got %d", len(settled))
	}
	for _, v := range settled {
		if v.Settlement.Correct {
			t.Fatalf("flat price must settle incorrect: %+v", v)
		}
	}
}

func TestTickIsIdempotent(t *testing.T) {
	l := New(5, testRates)
	now := time.Now()
	l.Create(models.BullishEntry, 100, domrepo.TF10m, now)

	first := l.Tick(105, now.Add(11*time.Minute))
	if len(first) != 1 {
		t.Fatalf("expected one settlement")
	}
	// second pass with a different price must not resettle
	second := l.Tick(90, now.Add(12*time.Minute))
	if len(second) != 0 {
		t.Fatalf("already-settled record settled again")
	}
	snap := l.Snapshot()
	if snap[0].Settlement.SettledPrice != 105 || snap[0].Settlement.Profit != 5*0.80 {
		t.Fatalf("settlement mutated by later tick: %+v", snap[0].Settlement)
	}
}

func TestExpiredButUnsettledIsTolerated(t *testing.T) {
	// settlement is polled: a record may sit expired-but-open until the
	// next tick, and the settled price is the sample observed then.
	l := New(5, testRates)
	now := time.Now()
	l.Create(models.BullishEntry, 100, domrepo.TF10m, now)

	if snap := l.Snapshot(); snap[0].Settlement != nil {
		t.Fatalf("no tick ran yet; record must be open past expiry")
	}
	settled := l.Tick(107, now.Add(10*time.Minute+45*time.Second))
	if len(settled) != 1 || settled[0].Settlement.SettledPrice != 107 {
		t.Fatalf("late sample must settle the record: %+v", settled)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	l := New(5, testRates)
	now := time.Now()
	l.Create(models.BullishEntry, 100, domrepo.TF10m, now)
	l.Tick(105, now.Add(11*time.Minute))

	snap := l.Snapshot()
	snap[0].EntryPrice = 0
	snap[0].Settlement.Profit = 999

	again := l.Snapshot()
	if again[0].EntryPrice != 100 || again[0].Settlement.Profit != 5*0.80 {
		t.Fatalf("snapshot mutation leaked into ledger: %+v", again[0])
	}
}

func TestStats(t *testing.T) {
	l := New(5, testRates)
	now := time.Now()
	l.Create(models.BullishEntry, 100, domrepo.TF10m, now) // wins
	l.Create(models.BearishEntry, 100, domrepo.TF10m, now) // loses
	l.Create(models.BullishEntry, 100, domrepo.TF10m, now.Add(5*time.Minute)) // stays open

	l.Tick(105, now.Add(11*time.Minute))

	s := l.Stats()
	if s.Total != 3 || s.Open != 1 || s.Settled != 2 || s.Correct != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if math.Abs(s.WinRate-0.5) > 1e-9 {
		t.Fatalf("expected win rate 0.5, got %v", s.WinRate)
	}
	if math.Abs(s.Profit-(5*0.80-5)) > 1e-9 {
		t.Fatalf("expected profit %v, got %v", 5*0.80-5, s.Profit)
	}
}

func TestConcurrentCreateAndTick(t *testing.T) {
	l := New(5, testRates)
	base := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Create(models.BullishEntry, 100, domrepo.TF10m, base.Add(-time.Hour))
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Tick(105, base)
		}()
	}
	wg.Wait()
	l.Tick(105, base)

	snap := l.Snapshot()
	if len(snap) != 50 {
		t.Fatalf("expected 50 records, got %d", len(snap))
	}
	for _, v := range snap {
		if v.Settlement == nil {
			t.Fatalf("expired record left unsettled after final tick")
		}
		if v.Settlement.Profit != 5*0.80 {
			t.Fatalf("torn settlement: %+v", v.Settlement)
		}
	}
}
