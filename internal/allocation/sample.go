package allocation

import "MacroSentinel/internal/model"

// SampleEconomic is the reference macro fixture: hot inflation, weak growth.
func SampleEconomic() model.EconomicSnapshot {
	return model.EconomicSnapshot{Inflation: 3.0, GDPGrowth: 1.0, InterestRate: 1.5}
}

// SampleSectors is the reference eleven-sector market fixture.
func SampleSectors() model.SectorSnapshot {
	return model.SectorSnapshot{
		model.Technology:            {Momentum: 0.12, Volatility: 0.15},
		model.Financials:            {Momentum: 0.10, Volatility: 0.18},
		model.Healthcare:            {Momentum: 0.05, Volatility: 0.10},
		model.Energy:                {Momentum: 0.08, Volatility: 0.20},
		model.Utilities:             {Momentum: 0.03, Volatility: 0.08},
		model.ConsumerDiscretionary: {Momentum: 0.11, Volatility: 0.17},
		model.Industrials:           {Momentum: 0.09, Volatility: 0.14},
		model.RealEstate:            {Momentum: 0.04, Volatility: 0.12},
		model.Materials:             {Momentum: 0.07, Volatility: 0.16},
		model.CommunicationServices: {Momentum: 0.06, Volatility: 0.11},
		model.ConsumerStaples:       {Momentum: 0.02, Volatility: 0.07},
	}
}
