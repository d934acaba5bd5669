package allocation

import "MacroSentinel/internal/model"

// Macro thresholds, in percent.
const (
	GDPGrowthThreshold = 1.5
	InflationThreshold = 2.5
	MacroTilt          = 0.2
)

// Market thresholds, as dimensionless ratios.
const (
	MomentumThreshold = 0.05
	LowVolatility     = 0.15
	HighVolatility    = 0.2
	MarketAdjustment  = 0.1
)

// Regime is the outcome of the macro phase.
type Regime string

const (
	RegimeExpansion   Regime = "EXPANSION"
	RegimeContraction Regime = "CONTRACTION"
	RegimeNeutral     Regime = "NEUTRAL"
)

// CyclicalSectors receive the tilt in an expansion.
var CyclicalSectors = []model.Sector{
	model.Technology,
	model.ConsumerDiscretionary,
	model.Industrials,
}

// DefensiveSectors receive the tilt in a contraction or when inflation runs hot.
var DefensiveSectors = []model.Sector{
	model.Healthcare,
	model.Utilities,
	model.ConsumerStaples,
}

// ClassifyRegime decides the macro tilt. Interest rate is not consulted.
func ClassifyRegime(e model.EconomicSnapshot) Regime {
	switch {
	case e.GDPGrowth > GDPGrowthThreshold && e.Inflation < InflationThreshold:
		return RegimeExpansion
	case e.GDPGrowth < GDPGrowthThreshold || e.Inflation > InflationThreshold:
		return RegimeContraction
	default:
		// gdp exactly at threshold, inflation not above it
		return RegimeNeutral
	}
}

// tiltedSectors returns the sectors the regime favours, nil for neutral.
func tiltedSectors(r Regime) []model.Sector {
	switch r {
	case RegimeExpansion:
		return CyclicalSectors
	case RegimeContraction:
		return DefensiveSectors
	default:
		return nil
	}
}

// scoreMarket returns a sector's market-phase delta.
// Momentum above threshold with volatility in [0.15, 0.2] falls through to zero.
func scoreMarket(m model.SectorMetrics) float64 {
	switch {
	case m.Momentum > MomentumThreshold && m.Volatility < LowVolatility:
		return MarketAdjustment
	case m.Volatility > HighVolatility:
		return -MarketAdjustment
	default:
		return 0
	}
}
