package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"MacroSentinel/internal/model"
	"MacroSentinel/internal/ratelimit"
)

// BLS series used by the dashboard.
const (
	CPISeriesID          = "CUSR0000SA0" // CPI for All Urban Consumers, seasonally adjusted
	UnemploymentSeriesID = "LNS14000000" // civilian unemployment rate
	DefaultBLSBaseURL    = "https://api.bls.gov"
)

// BLSFetcher reads time series from the BLS public data API v2.
// The registration key is optional; without it BLS applies its anonymous quota.
type BLSFetcher struct {
	APIKey string
	api    *apiClient
}

// NewBLSFetcher creates a BLS fetcher with optional proxy support.
func NewBLSFetcher(baseURL, apiKey, proxyURL string, limiter *ratelimit.Limiter) *BLSFetcher {
	if baseURL == "" {
		baseURL = DefaultBLSBaseURL
	}
	return &BLSFetcher{APIKey: apiKey, api: newAPIClient(baseURL, proxyURL, limiter)}
}

func (f *BLSFetcher) Name() string { return "bls" }

type blsResponse struct {
	Status       string   `json:"status"`
	ResponseTime int      `json:"responseTime"`
	Message      []string `json:"message"`
	Results      struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year       string `json:"year"`
				Period     string `json:"period"`
				PeriodName string `json:"periodName"`
				Value      string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// FetchSeries returns the observations of one series, newest first.
func (f *BLSFetcher) FetchSeries(ctx context.Context, seriesID string) ([]model.Observation, error) {
	params := map[string]string{}
	if f.APIKey != "" {
		params["registrationkey"] = f.APIKey
	}
	body, err := f.api.get(ctx, "/publicAPI/v2/timeseries/data/"+seriesID, params)
	if err != nil {
		return nil, fmt.Errorf("bls %s: %w", seriesID, err)
	}

	var resp blsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bls %s decode: %w", seriesID, err)
	}
	if resp.Status != "REQUEST_SUCCEEDED" {
		return nil, fmt.Errorf("bls %s: %s: %s", seriesID, resp.Status, strings.Join(resp.Message, "; "))
	}
	if len(resp.Results.Series) == 0 || len(resp.Results.Series[0].Data) == 0 {
		return nil, fmt.Errorf("bls %s: no data returned", seriesID)
	}

	raw := resp.Results.Series[0].Data
	obs := make([]model.Observation, 0, len(raw))
	for _, d := range raw {
		year, err := strconv.Atoi(d.Year)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(d.Value, 64)
		if err != nil {
			continue // "-" marks a missing value
		}
		obs = append(obs, model.Observation{Year: year, Period: d.Period, PeriodName: d.PeriodName, Value: v})
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("bls %s: no parseable observations", seriesID)
	}
	return obs, nil
}
