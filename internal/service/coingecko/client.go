package coingecko

import (
	"context"
	"fmt"
	"strconv"

	"SimuTrade/internal/domain/models"
	"SimuTrade/internal/domain/repository"
	simuhttp "SimuTrade/pkg/http"
)

// Client is a fallback OHLC source backed by the CoinGecko market chart API.
// CoinGecko returns close prices only, so every bar is degenerate with
// low = high = close. Indicators that depend on intra-bar range (KDJ)
// degrade to their neutral value on this source.
type Client struct {
	http    *simuhttp.Client
	baseURL string
	days    int
}

// New creates a CoinGecko candle source.
func New(baseURL string, days int, httpClient *simuhttp.Client) repository.OHLCSource {
	return &Client{http: httpClient, baseURL: baseURL, days: days}
}

// Name identifies the source in logs and errors.
func (c *Client) Name() string { return "coingecko" }

type marketChart struct {
	Prices [][2]float64 `json:"prices"` // [ms, price]
}

// FetchRecentBars returns up to limit most recent price points as bars.
// The interval argument is ignored: CoinGecko picks granularity from days.
func (c *Client) FetchRecentBars(ctx context.Context, symbol, interval string, limit int) ([]models.PriceBar, error) {
	var chart marketChart
	url := c.baseURL + "/api/v3/coins/bitcoin/market_chart"
	query := map[string]string{
		"vs_currency": "usd",
		"days":        strconv.Itoa(c.days),
	}
	if err := c.http.GetJSON(ctx, url, query, &chart); err != nil {
		return nil, fmt.Errorf("coingecko market_chart: %w", err)
	}
	if len(chart.Prices) == 0 {
		return nil, fmt.Errorf("coingecko market_chart: empty response")
	}

	points := chart.Prices
	if len(points) > limit {
		points = points[len(points)-limit:]
	}
	bars := make([]models.PriceBar, 0, len(points))
	for i, p := range points {
		price := p[1]
		if price <= 0 {
			return nil, fmt.Errorf("coingecko market_chart: non-positive price at %d", i)
		}
		bars = append(bars, models.PriceBar{Close: price, Low: price, High: price})
	}
	return bars, nil
}
