package calculator

import (
	"errors"
	"math"

	"PrismTracker/internal/model"
)

// CalculateDailyVolatility returns the standard deviation of daily
// close-to-close returns in percent over the given bars.
func CalculateDailyVolatility(dailyBars []model.OHLCV) (float64, error) {
	if len(dailyBars) < 2 {
		return 0, errors.New("not enough data for volatility calculation")
	}

	returns := make([]float64, 0, len(dailyBars)-1)
	for i := 1; i < len(dailyBars); i++ {
		prev := dailyBars[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (dailyBars[i].Close-prev)/prev*100)
	}
	if len(returns) < 2 {
		return 0, errors.New("not enough valid closes for volatility calculation")
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance), nil
}

// DefaultStopLoss derives a stop-loss level from the buy price and daily
// volatility. The stop distance scales with volatility against a 15%
// reference and is clamped to the 3~15% band.
func DefaultStopLoss(buyPrice, volatility float64) float64 {
	pct := clamp(5*volatility/15, 3, 15)
	return buyPrice * (1 - pct/100)
}

// DefaultTargetPrice derives a target level the same way, clamped to 5~30%.
func DefaultTargetPrice(buyPrice, volatility float64) float64 {
	pct := clamp(10*volatility/15, 5, 30)
	return buyPrice * (1 + pct/100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
