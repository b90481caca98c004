package indicator

import (
	"errors"
	"math"
	"testing"

	"SimuTrade/internal/domain/models"
)

func flatBars(closes ...float64) []models.PriceBar {
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{Close: c, Low: c, High: c}
	}
	return bars
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRSIInsufficientData(t *testing.T) {
	_, err := RSI(flatBars(1, 2, 3), 14)
	if err == nil {
		t.Fatalf("expected error for short window")
	}
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRSIAllGains(t *testing.T) {
	got, err := RSI(flatBars(1, 2, 3), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100 {
		t.Fatalf("expected 100 for all gains, got %v", got)
	}
}

func TestRSIBalanced(t *testing.T) {
	// one loss and one gain of equal size -> RS=1 -> RSI=50
	got, err := RSI(flatBars(2, 1, 2), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(got, 50) {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestRSIMonotonicDecline(t *testing.T) {
	closes := make([]float64, 0, 20)
	for c := 110.0; c > 90.0; c-- {
		closes = append(closes, c)
	}
	got, err := RSI(flatBars(closes...), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got >= 30 {
		t.Fatalf("expected oversold RSI for steady decline, got %v", got)
	}
	if math.IsNaN(got) {
		t.Fatalf("RSI must never be NaN")
	}
}

func TestBollingerKnownWindow(t *testing.T) {
	b, err := Bollinger(flatBars(1, 2, 3, 4), 4, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(b.Mean, 2.5) {
		t.Fatalf("mean: expected 2.5, got %v", b.Mean)
	}
	sd := math.Sqrt(1.25)
	if !almost(b.Upper, 2.5+2*sd) || !almost(b.Lower, 2.5-2*sd) {
		t.Fatalf("bands: got %+v", b)
	}
}

func TestBollingerUsesTrailingPeriodOnly(t *testing.T) {
	// leading outlier must not influence a period-2 band
	b, err := Bollinger(flatBars(1000, 10, 10), 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(b.Mean, 10) || !almost(b.Upper, 10) || !almost(b.Lower, 10) {
		t.Fatalf("expected flat bands at 10, got %+v", b)
	}
}

func TestBollingerDegradesOnShortWindow(t *testing.T) {
	b, err := Bollinger(flatBars(5, 7), 20, 2)
	if err != nil {
		t.Fatalf("short window should degrade gracefully: %v", err)
	}
	if !almost(b.Mean, 6) {
		t.Fatalf("mean: expected 6, got %v", b.Mean)
	}
}

func TestBollingerEmptyWindow(t *testing.T) {
	if _, err := Bollinger(nil, 20, 2); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestKDJDegenerateRange(t *testing.T) {
	// zero-width high/low range: RSV defined as 50, no division fault
	s, err := KDJ(flatBars(100, 100, 100), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(s.K, 50) || !almost(s.D, 50) || !almost(s.J, 50) {
		t.Fatalf("expected neutral 50/50/50, got %+v", s)
	}
}

func TestKDJBottomOfRange(t *testing.T) {
	bars := []models.PriceBar{
		{Close: 110, Low: 110, High: 110},
		{Close: 91, Low: 91, High: 91},
	}
	s, err := KDJ(bars, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// RSV=0 -> K=100/3, D=(2/3)*50+(1/3)*K, J=3K-2D
	k := 100.0 / 3.0
	d := (2.0/3.0)*50 + (1.0/3.0)*k
	if !almost(s.K, k) || !almost(s.D, d) || !almost(s.J, 3*k-2*d) {
		t.Fatalf("unexpected smoothing: %+v", s)
	}
	if s.J >= 20 {
		t.Fatalf("expected oversold J at range bottom, got %v", s.J)
	}
}

func TestKDJUsesTrailingPeriodOnly(t *testing.T) {
	bars := make([]models.PriceBar, 0, 12)
	bars = append(bars, models.PriceBar{Close: 1, Low: 1, High: 1})
	for i := 0; i < 11; i++ {
		bars = append(bars, models.PriceBar{Close: 100, Low: 100, High: 100})
	}
	s, err := KDJ(bars, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the low of 1 is outside the trailing 9 bars; range is degenerate
	if !almost(s.K, 50) {
		t.Fatalf("expected neutral K, got %+v", s)
	}
}
