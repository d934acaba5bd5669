package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"MacroSentinel/internal/calculator"
	"MacroSentinel/internal/model"
)

// Default lookbacks, in trading days.
const (
	DefaultMomentumWindow   = 63
	DefaultVolatilityWindow = 63
)

// Inputs is everything one allocation cycle needs from the outside world.
type Inputs struct {
	Macro   model.MacroDashboard
	Sectors model.SectorSnapshot
	Missing []model.Sector
}

// Options configures a Collector. Zero values fall back to defaults.
type Options struct {
	Symbols          map[model.Sector]string
	MomentumWindow   int
	VolatilityWindow int
	// OnFetchError is called with the source name of every failed fetch.
	OnFetchError func(source string)
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Macro  MacroFetcher
	Prices PriceFetcher
	opts   Options
	log    zerolog.Logger
	now    func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(macro MacroFetcher, prices PriceFetcher, opts Options, log zerolog.Logger) *Collector {
	if opts.MomentumWindow <= 0 {
		opts.MomentumWindow = DefaultMomentumWindow
	}
	if opts.VolatilityWindow <= 0 {
		opts.VolatilityWindow = DefaultVolatilityWindow
	}
	symbols := make(map[model.Sector]string, model.SectorCount)
	for _, s := range model.AllSectors() {
		symbols[s] = s.ETF()
	}
	for s, sym := range opts.Symbols {
		if s.Valid() && sym != "" {
			symbols[s] = sym
		}
	}
	opts.Symbols = symbols
	return &Collector{
		Macro:  macro,
		Prices: prices,
		opts:   opts,
		log:    log.With().Str("component", "collector").Logger(),
		now:    time.Now,
	}
}

// Symbol returns the price proxy used for s.
func (c *Collector) Symbol(s model.Sector) string { return c.opts.Symbols[s] }

// Collect fetches the macro series and every sector's bars.
// Any macro failure fails the cycle; a failed sector is left out and listed in Missing.
func (c *Collector) Collect(ctx context.Context) (*Inputs, error) {
	macro, err := c.CollectMacro(ctx)
	if err != nil {
		return nil, err
	}
	sectors, missing := c.CollectSectors(ctx)
	return &Inputs{Macro: *macro, Sectors: sectors, Missing: missing}, nil
}

// CollectMacro fetches and derives the headline macro figures.
func (c *Collector) CollectMacro(ctx context.Context) (*model.MacroDashboard, error) {
	src := c.Macro.Name()

	cpi, err := c.Macro.FetchCPI(ctx)
	if err != nil {
		c.fetchFailed(src)
		return nil, fmt.Errorf("fetch cpi: %w", err)
	}
	inflation, err := calculator.InflationFromCPI(cpi)
	if err != nil {
		return nil, fmt.Errorf("inflation: %w", err)
	}

	unemployment, err := c.Macro.FetchUnemployment(ctx)
	if err != nil {
		c.fetchFailed(src)
		return nil, fmt.Errorf("fetch unemployment: %w", err)
	}
	unemploymentRate, err := calculator.Latest(unemployment)
	if err != nil {
		return nil, fmt.Errorf("unemployment: %w", err)
	}

	gdp, err := c.Macro.FetchRealGDP(ctx)
	if err != nil {
		c.fetchFailed(src)
		return nil, fmt.Errorf("fetch real gdp: %w", err)
	}
	gdpGrowth, err := calculator.GrowthRate(gdp)
	if err != nil {
		return nil, fmt.Errorf("gdp growth: %w", err)
	}

	treasury, err := c.Macro.FetchTreasuryYield(ctx)
	if err != nil {
		c.fetchFailed(src)
		return nil, fmt.Errorf("fetch treasury yield: %w", err)
	}
	riskFree, err := calculator.Latest(treasury)
	if err != nil {
		return nil, fmt.Errorf("treasury yield: %w", err)
	}

	d := &model.MacroDashboard{
		Inflation:        inflation,
		UnemploymentRate: unemploymentRate,
		GDPGrowth:        gdpGrowth,
		RiskFreeRate:     riskFree,
		FetchedAt:        c.now(),
	}
	c.log.Info().
		Float64("inflation", d.Inflation).
		Float64("gdp_growth", d.GDPGrowth).
		Float64("risk_free_rate", d.RiskFreeRate).
		Float64("unemployment", d.UnemploymentRate).
		Msg("macro collected")
	return d, nil
}

// CollectSectors computes momentum and volatility for every sector proxy.
func (c *Collector) CollectSectors(ctx context.Context) (model.SectorSnapshot, []model.Sector) {
	need := c.opts.MomentumWindow
	if c.opts.VolatilityWindow > need {
		need = c.opts.VolatilityWindow
	}
	need++ // window returns need window+1 closes

	snap := make(model.SectorSnapshot, model.SectorCount)
	var missing []model.Sector
	for _, s := range model.AllSectors() {
		m, err := c.sectorMetrics(ctx, c.opts.Symbols[s], need)
		if err != nil {
			c.log.Warn().Err(err).Str("sector", s.String()).Str("symbol", c.opts.Symbols[s]).
				Msg("sector metrics unavailable, applying macro tilt only")
			missing = append(missing, s)
			continue
		}
		snap[s] = m
	}
	return snap, missing
}

func (c *Collector) sectorMetrics(ctx context.Context, symbol string, need int) (model.SectorMetrics, error) {
	bars, err := c.Prices.FetchDailyBars(ctx, symbol, need)
	if err != nil {
		c.fetchFailed(c.Prices.Name())
		return model.SectorMetrics{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	closes := model.Closes(bars)
	mom, err := calculator.Momentum(closes, c.opts.MomentumWindow)
	if err != nil {
		return model.SectorMetrics{}, fmt.Errorf("momentum %s: %w", symbol, err)
	}
	vol, err := calculator.AnnualizedVolatility(closes, c.opts.VolatilityWindow)
	if err != nil {
		return model.SectorMetrics{}, fmt.Errorf("volatility %s: %w", symbol, err)
	}
	return model.SectorMetrics{Momentum: mom, Volatility: vol}, nil
}

// Dashboard chart windows.
var Windows = []string{"1w", "1m", "3m"}

// WindowStart returns the first day covered by a chart window ending at end.
func WindowStart(end time.Time, window string) (time.Time, error) {
	switch window {
	case "1w":
		return end.AddDate(0, 0, -7), nil
	case "1m":
		return end.AddDate(0, -1, 0), nil
	case "3m":
		return end.AddDate(0, -3, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown window %q, want one of %v", window, Windows)
	}
}

// CollectSeries returns the daily close series of symbol over a chart window.
func (c *Collector) CollectSeries(ctx context.Context, symbol, window string) (*model.PriceSeries, error) {
	end := c.now()
	start, err := WindowStart(end, window)
	if err != nil {
		return nil, err
	}
	days := int(end.Sub(start).Hours()/24) + 1
	bars, err := c.Prices.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		c.fetchFailed(c.Prices.Name())
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	series := &model.PriceSeries{Symbol: symbol, Window: window, FetchedAt: end}
	cutoff := start.Truncate(24 * time.Hour)
	for _, b := range bars {
		if b.Time.Before(cutoff) {
			continue
		}
		series.Points = append(series.Points, model.PricePoint{Date: b.Time.Format("2006-01-02"), Value: b.Close})
	}
	return series, nil
}

func (c *Collector) fetchFailed(source string) {
	if c.opts.OnFetchError != nil {
		c.opts.OnFetchError(source)
	}
}
