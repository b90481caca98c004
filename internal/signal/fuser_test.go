package signal

import (
	"testing"

	"SimuTrade/internal/domain/models"
	"SimuTrade/internal/indicator"
)

func TestFuseRules(t *testing.T) {
	f := NewFuser(DefaultThresholds())

	cases := []struct {
		name  string
		close float64
		snap  models.IndicatorSnapshot
		want  models.Decision
	}{
		{
			name:  "oversold bounce",
			close: 95,
			snap:  models.IndicatorSnapshot{RSI: 25, BollLower: 90, BollUpper: 110, KdjJ: 10},
			want:  models.BullishEntry,
		},
		{
			name:  "overbought reversal",
			close: 105,
			snap:  models.IndicatorSnapshot{RSI: 75, BollLower: 90, BollUpper: 110, KdjJ: 85},
			want:  models.BearishEntry,
		},
		{
			name:  "neutral momentum",
			close: 100,
			snap:  models.IndicatorSnapshot{RSI: 50, BollLower: 90, BollUpper: 110, KdjJ: 50},
			want:  models.Hold,
		},
		{
			name:  "oversold but below lower band",
			close: 85,
			snap:  models.IndicatorSnapshot{RSI: 25, BollLower: 90, BollUpper: 110, KdjJ: 10},
			want:  models.Hold,
		},
		{
			name:  "overbought but above upper band",
			close: 115,
			snap:  models.IndicatorSnapshot{RSI: 75, BollLower: 90, BollUpper: 110, KdjJ: 85},
			want:  models.Hold,
		},
		{
			name:  "rsi oversold alone is not enough",
			close: 95,
			snap:  models.IndicatorSnapshot{RSI: 25, BollLower: 90, BollUpper: 110, KdjJ: 50},
			want:  models.Hold,
		},
		{
			// malformed bounds make both legs true; bullish wins by order
			name:  "malformed bounds resolve bullish first",
			close: 100,
			snap:  models.IndicatorSnapshot{RSI: 25, BollLower: 90, BollUpper: 110, KdjJ: 10},
			want:  models.BullishEntry,
		},
	}

	for _, tc := range cases {
		if got := f.Fuse(tc.close, tc.snap); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestFuseIsDeterministic(t *testing.T) {
	f := NewFuser(DefaultThresholds())
	snap := models.IndicatorSnapshot{RSI: 25, BollLower: 90, BollUpper: 110, KdjJ: 10}
	first := f.Fuse(95, snap)
	for i := 0; i < 100; i++ {
		if got := f.Fuse(95, snap); got != first {
			t.Fatalf("fuse not deterministic: %s then %s", first, got)
		}
	}
}

func TestFuseOnDecliningWindow(t *testing.T) {
	// end-to-end over real indicator output: 20 closes falling 110 -> 91
	bars := make([]models.PriceBar, 0, 20)
	for c := 110.0; c > 90.0; c-- {
		bars = append(bars, models.PriceBar{Close: c, Low: c, High: c})
	}

	rsi, err := indicator.RSI(bars, 14)
	if err != nil {
		t.Fatalf("rsi: %v", err)
	}
	bands, err := indicator.Bollinger(bars, 20, 2)
	if err != nil {
		t.Fatalf("bollinger: %v", err)
	}
	kdj, err := indicator.KDJ(bars, 9)
	if err != nil {
		t.Fatalf("kdj: %v", err)
	}

	snap := models.IndicatorSnapshot{
		RSI:       rsi,
		BollUpper: bands.Upper,
		BollLower: bands.Lower,
		KdjK:      kdj.K,
		KdjD:      kdj.D,
		KdjJ:      kdj.J,
	}
	got := NewFuser(DefaultThresholds()).Fuse(bars[len(bars)-1].Close, snap)
	if got != models.BullishEntry {
		t.Fatalf("expected bullish entry on oversold decline, got %s (snap %+v)", got, snap)
	}
}
