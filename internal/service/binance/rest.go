package binance

import (
	"context"
	"fmt"
	"strconv"

	"SimuTrade/internal/domain/models"
	"SimuTrade/internal/domain/repository"
	simuhttp "SimuTrade/pkg/http"
)

// RestClient fetches OHLC candles from the Binance klines endpoint.
type RestClient struct {
	http    *simuhttp.Client
	baseURL string
}

// NewRestClient creates a Binance candle source.
func NewRestClient(baseURL string, httpClient *simuhttp.Client) repository.OHLCSource {
	return &RestClient{http: httpClient, baseURL: baseURL}
}

// Name identifies the source in logs and errors.
func (c *RestClient) Name() string { return "binance" }

// FetchRecentBars returns up to limit most recent candles for symbol.
// Binance returns klines as arrays of mixed types with numeric fields
// encoded as strings: [openTime, open, high, low, close, volume, ...].
func (c *RestClient) FetchRecentBars(ctx context.Context, symbol, interval string, limit int) ([]models.PriceBar, error) {
	var raw [][]any
	url := c.baseURL + "/api/v3/klines"
	query := map[string]string{
		"symbol":   symbol,
		"interval": interval,
		"limit":    strconv.Itoa(limit),
	}
	if err := c.http.GetJSON(ctx, url, query, &raw); err != nil {
		return nil, fmt.Errorf("binance klines: %w", err)
	}

	bars := make([]models.PriceBar, 0, len(raw))
	for i, k := range raw {
		if len(k) < 5 {
			return nil, fmt.Errorf("binance klines: short row at %d", i)
		}
		high, err := klineField(k, 2)
		if err != nil {
			return nil, err
		}
		low, err := klineField(k, 3)
		if err != nil {
			return nil, err
		}
		cl, err := klineField(k, 4)
		if err != nil {
			return nil, err
		}
		bar := models.PriceBar{Close: cl, Low: low, High: high}
		if err := bar.Validate(); err != nil {
			return nil, fmt.Errorf("binance klines: row %d: %w", i, err)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("binance klines: empty response")
	}
	return bars, nil
}

func klineField(row []any, idx int) (float64, error) {
	s, ok := row[idx].(string)
	if !ok {
		return 0, fmt.Errorf("binance klines: field %d is not a string", idx)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("binance klines: parse field %d: %w", idx, err)
	}
	return v, nil
}
