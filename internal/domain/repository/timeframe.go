package repository

import "time"

// Timeframe is a prediction horizon label.
type Timeframe string

const (
	TF10m Timeframe = "10m"
	TF30m Timeframe = "30m"
	TF1h  Timeframe = "1h"
	TF1d  Timeframe = "1d"
)

var horizons = map[Timeframe]time.Duration{
	TF10m: 10 * time.Minute,
	TF30m: 30 * time.Minute,
	TF1h:  time.Hour,
	TF1d:  24 * time.Hour,
}

// IsValidTimeframe returns true if tf is a supported horizon label.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := horizons[tf]
	return ok
}

// DefaultTimeframe returns the default horizon label.
func DefaultTimeframe() Timeframe { return TF10m }

// NormalizeTimeframe converts a raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// Horizon returns the holding duration for a timeframe label.
func Horizon(tf Timeframe) time.Duration {
	if d, ok := horizons[tf]; ok {
		return d
	}
	return horizons[DefaultTimeframe()]
}

// Timeframes lists supported labels in ascending horizon order.
func Timeframes() []Timeframe {
	return []Timeframe{TF10m, TF30m, TF1h, TF1d}
}
