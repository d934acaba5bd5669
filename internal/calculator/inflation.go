package calculator

import (
	"errors"
	"fmt"

	"MacroSentinel/internal/model"
)

// ErrInsufficientData is returned when a series is too short for the requested computation.
var ErrInsufficientData = errors.New("insufficient data")

// YearOverYear returns the percentage change from previous to current.
func YearOverYear(current, previous float64) (float64, error) {
	if previous == 0 {
		return 0, errors.New("previous value must be non-zero")
	}
	return (current - previous) / previous * 100, nil
}

// InflationFromCPI computes year-over-year inflation from a newest-first CPI series,
// comparing the latest point with the same period one year earlier.
func InflationFromCPI(obs []model.Observation) (float64, error) {
	if len(obs) == 0 {
		return 0, fmt.Errorf("cpi series: %w", ErrInsufficientData)
	}
	latest := obs[0]
	for _, o := range obs[1:] {
		if o.Year == latest.Year-1 && o.Period == latest.Period {
			return YearOverYear(latest.Value, o.Value)
		}
	}
	return 0, fmt.Errorf("cpi for %s %d not found: %w", latest.Period, latest.Year-1, ErrInsufficientData)
}

// GrowthRate returns the percentage change between the two newest points of a series.
func GrowthRate(obs []model.Observation) (float64, error) {
	if len(obs) < 2 {
		return 0, fmt.Errorf("growth needs 2 points, got %d: %w", len(obs), ErrInsufficientData)
	}
	return YearOverYear(obs[0].Value, obs[1].Value)
}

// Latest returns the newest value of a series.
func Latest(obs []model.Observation) (float64, error) {
	if len(obs) == 0 {
		return 0, fmt.Errorf("empty series: %w", ErrInsufficientData)
	}
	return obs[0].Value, nil
}
