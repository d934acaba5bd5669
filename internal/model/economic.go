package model

import "time"

// EconomicSnapshot holds the macro inputs for one evaluation, in percent.
type EconomicSnapshot struct {
	Inflation    float64 `json:"inflation"`
	GDPGrowth    float64 `json:"gdp_growth"`
	InterestRate float64 `json:"interest_rate"`
}

// Observation is a single point of a macro time series.
// Series are ordered newest first.
type Observation struct {
	Year       int     `json:"year"`
	Period     string  `json:"period"`      // "M01".."M12", "A01" etc.
	PeriodName string  `json:"period_name"` // "January", "Annual" etc.
	Value      float64 `json:"value"`
}

// MacroDashboard is the set of headline macro figures shown next to the allocation.
type MacroDashboard struct {
	Inflation        float64   `json:"inflation"`
	UnemploymentRate float64   `json:"unemployment_rate"`
	GDPGrowth        float64   `json:"gdp_growth"`
	RiskFreeRate     float64   `json:"risk_free_rate"`
	FetchedAt        time.Time `json:"fetched_at"`
}

// Snapshot returns the allocation inputs contained in the dashboard.
func (d MacroDashboard) Snapshot() EconomicSnapshot {
	return EconomicSnapshot{
		Inflation:    d.Inflation,
		GDPGrowth:    d.GDPGrowth,
		InterestRate: d.RiskFreeRate,
	}
}
