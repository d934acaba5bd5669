package collector

import (
	"context"
	"errors"

	"MacroSentinel/internal/model"
)

// ErrMissingAPIKey is returned by fetchers whose provider requires a key that is not configured.
var ErrMissingAPIKey = errors.New("api key not configured")

// MacroFetcher supplies the macro series behind the economic snapshot. Series are newest first.
type MacroFetcher interface {
	FetchCPI(ctx context.Context) ([]model.Observation, error)
	FetchUnemployment(ctx context.Context) ([]model.Observation, error)
	FetchTreasuryYield(ctx context.Context) ([]model.Observation, error)
	FetchRealGDP(ctx context.Context) ([]model.Observation, error)
	Name() string
}

// PriceFetcher supplies daily bars in chronological order.
type PriceFetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}

// MacroSource routes BLS series (CPI, unemployment) and Alpha Vantage series (treasury, GDP).
type MacroSource struct {
	BLS          *BLSFetcher
	AlphaVantage *AlphaVantageFetcher
}

func (m *MacroSource) Name() string { return "bls+alphavantage" }

func (m *MacroSource) FetchCPI(ctx context.Context) ([]model.Observation, error) {
	return m.BLS.FetchSeries(ctx, CPISeriesID)
}

func (m *MacroSource) FetchUnemployment(ctx context.Context) ([]model.Observation, error) {
	return m.BLS.FetchSeries(ctx, UnemploymentSeriesID)
}

func (m *MacroSource) FetchTreasuryYield(ctx context.Context) ([]model.Observation, error) {
	return m.AlphaVantage.FetchTreasuryYield(ctx)
}

func (m *MacroSource) FetchRealGDP(ctx context.Context) ([]model.Observation, error) {
	return m.AlphaVantage.FetchRealGDP(ctx)
}
