package calculator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDays is used to annualize daily dispersion.
const TradingDays = 252

// Returns converts a close series into simple period returns.
// returns[i] = (p[i+1] - p[i]) / p[i]; a zero price yields a zero return.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return []float64{}
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			out[i-1] = (closes[i] - closes[i-1]) / closes[i-1]
		}
	}
	return out
}

// Momentum returns the trailing simple return over the last window bars.
func Momentum(closes []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	if len(closes) < window+1 {
		return 0, fmt.Errorf("momentum(%d) on %d closes: %w", window, len(closes), ErrInsufficientData)
	}
	start := closes[len(closes)-1-window]
	if start == 0 {
		return 0, errors.New("momentum base price is zero")
	}
	return (closes[len(closes)-1] - start) / start, nil
}

// AnnualizedVolatility returns the sample std-dev of the last window daily returns, times sqrt(252).
func AnnualizedVolatility(closes []float64, window int) (float64, error) {
	if window < 2 {
		return 0, errors.New("window must be at least 2")
	}
	if len(closes) < window+1 {
		return 0, fmt.Errorf("volatility(%d) on %d closes: %w", window, len(closes), ErrInsufficientData)
	}
	rets := Returns(closes[len(closes)-1-window:])
	return stat.StdDev(rets, nil) * math.Sqrt(TradingDays), nil
}
