package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"MacroSentinel/internal/model"
	"MacroSentinel/internal/ratelimit"
)

const DefaultPolygonBaseURL = "https://api.polygon.io"

// PolygonFetcher implements PriceFetcher with Polygon daily aggregates.
type PolygonFetcher struct {
	APIKey string
	Now    func() time.Time
	api    *apiClient
}

// NewPolygonFetcher creates a Polygon fetcher with optional proxy support.
func NewPolygonFetcher(baseURL, apiKey, proxyURL string, limiter *ratelimit.Limiter) *PolygonFetcher {
	if baseURL == "" {
		baseURL = DefaultPolygonBaseURL
	}
	return &PolygonFetcher{APIKey: apiKey, Now: time.Now, api: newAPIClient(baseURL, proxyURL, limiter)}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

type polygonAggs struct {
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Error        string `json:"error"`
	Results      []struct {
		T int64   `json:"t"` // ms
		O float64 `json:"o"`
		H float64 `json:"h"`
		L float64 `json:"l"`
		C float64 `json:"c"`
		V float64 `json:"v"`
	} `json:"results"`
}

// FetchDailyBars returns up to days daily bars ending today.
func (f *PolygonFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("polygon %s: %w", symbol, ErrMissingAPIKey)
	}
	to := f.Now()
	// calendar span large enough to hold the requested trading days
	from := to.AddDate(0, 0, -(days*7/5 + 10))
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s",
		url.PathEscape(symbol), from.Format("2006-01-02"), to.Format("2006-01-02"))

	body, err := f.api.get(ctx, path, map[string]string{
		"adjusted": "true",
		"sort":     "asc",
		"limit":    "50000",
		"apiKey":   f.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("polygon %s: %w", symbol, err)
	}
	var aggs polygonAggs
	if err := json.Unmarshal(body, &aggs); err != nil {
		return nil, fmt.Errorf("polygon %s decode: %w", symbol, err)
	}
	if aggs.Status == "ERROR" {
		return nil, fmt.Errorf("polygon %s: %s", symbol, aggs.Error)
	}
	if len(aggs.Results) == 0 {
		return nil, fmt.Errorf("polygon %s: no data returned", symbol)
	}

	bars := make([]model.OHLCV, len(aggs.Results))
	for i, r := range aggs.Results {
		bars[i] = model.OHLCV{
			Time:   time.UnixMilli(r.T),
			Open:   r.O,
			High:   r.H,
			Low:    r.L,
			Close:  r.C,
			Volume: r.V,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}
