package main

import (
	"github.com/rs/zerolog"

	"MacroSentinel/internal/collector"
	"MacroSentinel/internal/config"
	"MacroSentinel/internal/metrics"
	"MacroSentinel/internal/ratelimit"
)

// Free-tier request budgets, per minute.
const (
	alphaVantagePerMinute = 5
	polygonPerMinute      = 5
)

// buildCollector wires the live fetchers behind one shared limiter. m may be nil.
func buildCollector(cfg *config.Config, log zerolog.Logger, m *metrics.Recorder) (*collector.Collector, error) {
	src := cfg.Sources
	limiter := ratelimit.New(src.RatePerSecond, src.Burst)
	limiter.SetLimit(ratelimit.HostOf(src.AlphaVantage.BaseURL), alphaVantagePerMinute/60.0, 1)

	macro := &collector.MacroSource{
		BLS:          collector.NewBLSFetcher(src.BLS.BaseURL, src.BLS.APIKey, cfg.Proxy, limiter),
		AlphaVantage: collector.NewAlphaVantageFetcher(src.AlphaVantage.BaseURL, src.AlphaVantage.APIKey, cfg.Proxy, limiter),
	}

	var prices collector.PriceFetcher
	if src.Polygon.APIKey != "" {
		limiter.SetLimit(ratelimit.HostOf(src.Polygon.BaseURL), polygonPerMinute/60.0, 1)
		prices = collector.NewPolygonFetcher(src.Polygon.BaseURL, src.Polygon.APIKey, cfg.Proxy, limiter)
	} else {
		prices = collector.NewYahooFetcher(src.Yahoo.BaseURL, cfg.Proxy, limiter)
	}

	symbols, err := cfg.SymbolOverrides()
	if err != nil {
		return nil, err
	}
	opts := collector.Options{
		Symbols:          symbols,
		MomentumWindow:   cfg.Allocation.MomentumWindow,
		VolatilityWindow: cfg.Allocation.VolatilityWindow,
	}
	if m != nil {
		opts.OnFetchError = m.FetchError
	}

	log.Info().Str("macro", macro.Name()).Str("prices", prices.Name()).Msg("data sources configured")
	return collector.NewCollector(macro, prices, opts, log), nil
}
