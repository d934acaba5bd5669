package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"MacroSentinel/internal/model"
	"MacroSentinel/internal/ratelimit"
)

const DefaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageFetcher reads economic indicators from Alpha Vantage.
type AlphaVantageFetcher struct {
	APIKey string
	api    *apiClient
}

// NewAlphaVantageFetcher creates an Alpha Vantage fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string, limiter *ratelimit.Limiter) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageBaseURL
	}
	return &AlphaVantageFetcher{APIKey: apiKey, api: newAPIClient(baseURL, proxyURL, limiter)}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

type avResponse struct {
	Name     string `json:"name"`
	Interval string `json:"interval"`
	Unit     string `json:"unit"`
	Data     []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"data"`
	// quota and error replies carry one of these instead of data
	Information  string `json:"Information"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

// FetchTreasuryYield returns the monthly 10-year treasury yield in percent, newest first.
func (f *AlphaVantageFetcher) FetchTreasuryYield(ctx context.Context) ([]model.Observation, error) {
	return f.fetch(ctx, map[string]string{
		"function": "TREASURY_YIELD",
		"interval": "monthly",
		"maturity": "10year",
	})
}

// FetchRealGDP returns annual real GDP levels (billions of chained dollars), newest first.
func (f *AlphaVantageFetcher) FetchRealGDP(ctx context.Context) ([]model.Observation, error) {
	return f.fetch(ctx, map[string]string{
		"function": "REAL_GDP",
		"interval": "annual",
	})
}

func (f *AlphaVantageFetcher) fetch(ctx context.Context, params map[string]string) ([]model.Observation, error) {
	fn := params["function"]
	if f.APIKey == "" {
		return nil, fmt.Errorf("alphavantage %s: %w", fn, ErrMissingAPIKey)
	}
	params["apikey"] = f.APIKey

	body, err := f.api.get(ctx, "/query", params)
	if err != nil {
		return nil, fmt.Errorf("alphavantage %s: %w", fn, err)
	}
	var resp avResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage %s decode: %w", fn, err)
	}
	if len(resp.Data) == 0 {
		msg := resp.ErrorMessage
		if msg == "" {
			msg = resp.Information
		}
		if msg == "" {
			msg = resp.Note
		}
		if msg == "" {
			msg = "no data returned"
		}
		return nil, fmt.Errorf("alphavantage %s: %s", fn, msg)
	}

	obs := make([]model.Observation, 0, len(resp.Data))
	for _, d := range resp.Data {
		v, err := strconv.ParseFloat(d.Value, 64)
		if err != nil {
			continue // "." marks a missing value
		}
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		obs = append(obs, model.Observation{
			Year:       date.Year(),
			Period:     periodCode(resp.Interval, date),
			PeriodName: d.Date,
			Value:      v,
		})
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("alphavantage %s: no parseable observations", fn)
	}
	return obs, nil
}

// periodCode mirrors the BLS period codes: M01..M12 for monthly data, A01 for annual.
func periodCode(interval string, date time.Time) string {
	switch interval {
	case "annual":
		return "A01"
	case "quarterly":
		return fmt.Sprintf("Q%02d", (int(date.Month())-1)/3+1)
	default:
		return fmt.Sprintf("M%02d", int(date.Month()))
	}
}
