package collector

import (
	"context"
	"fmt"
	"time"

	"MacroSentinel/internal/model"
)

// MockMacro returns fixed series for development and testing.
type MockMacro struct {
	CPI          []model.Observation
	Unemployment []model.Observation
	Treasury     []model.Observation
	GDP          []model.Observation
	Err          error
}

func (m *MockMacro) Name() string { return "mock" }

func (m *MockMacro) FetchCPI(context.Context) ([]model.Observation, error) {
	return m.series(m.CPI, "cpi")
}

func (m *MockMacro) FetchUnemployment(context.Context) ([]model.Observation, error) {
	return m.series(m.Unemployment, "unemployment")
}

func (m *MockMacro) FetchTreasuryYield(context.Context) ([]model.Observation, error) {
	return m.series(m.Treasury, "treasury")
}

func (m *MockMacro) FetchRealGDP(context.Context) ([]model.Observation, error) {
	return m.series(m.GDP, "gdp")
}

func (m *MockMacro) series(obs []model.Observation, name string) ([]model.Observation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("mock %s: no data", name)
	}
	return obs, nil
}

// MockPrices returns controllable bars per symbol. Symbols without fixed bars get a
// generated series drifting by Drift per bar; symbols in Errs fail.
type MockPrices struct {
	Bars  map[string][]model.OHLCV
	Errs  map[string]error
	Price float64
	Drift float64
}

func (m *MockPrices) Name() string { return "mock" }

func (m *MockPrices) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		if len(bars) > days {
			bars = bars[len(bars)-days:]
		}
		return bars, nil
	}
	price := m.Price
	if price == 0 {
		price = 100
	}
	return GenerateBars(price, m.Drift, days, time.Now()), nil
}

// GenerateBars builds count daily bars ending at end, compounding drift per bar.
func GenerateBars(basePrice, drift float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	p := basePrice
	for i := 0; i < count; i++ {
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
		p *= 1 + drift
	}
	return bars
}
