package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PricePoint is one chart point of a close series.
type PricePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// PriceSeries holds a close series for a dashboard window.
type PriceSeries struct {
	Symbol    string       `json:"symbol"`
	Window    string       `json:"window"`
	Points    []PricePoint `json:"points"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Closes extracts the close prices from bars.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// AllocationRun is one evaluated allocation cycle.
type AllocationRun struct {
	Economic EconomicSnapshot `json:"economic"`
	Sectors  SectorSnapshot   `json:"sectors"`
	Weights  SectorWeightMap  `json:"weights"`
	Missing  []Sector         `json:"missing,omitempty"`
	Source   string           `json:"source"`
	At       time.Time        `json:"at"`
}
