package calculator

import (
	"errors"

	"PrismTracker/internal/model"
)

// CalculateTrend scores the recent price direction on a -2..+2 scale from the
// least-squares slope of the closes, normalized by the price range so the
// score is comparable across price levels.
//
//	+2 strong uptrend, +1 mild uptrend, 0 flat,
//	-1 mild downtrend, -2 strong downtrend.
func CalculateTrend(dailyBars []model.OHLCV) (int, error) {
	if len(dailyBars) < 2 {
		return 0, errors.New("not enough data for trend calculation")
	}

	n := float64(len(dailyBars))
	var sumX, sumY, sumXY, sumXX float64
	lo, hi := dailyBars[0].Close, dailyBars[0].Close
	for i, b := range dailyBars {
		x := float64(i)
		sumX += x
		sumY += b.Close
		sumXY += x * b.Close
		sumXX += x * x
		if b.Close < lo {
			lo = b.Close
		}
		if b.Close > hi {
			hi = b.Close
		}
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 || hi == lo {
		return 0, nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	normalized := slope * n / (hi - lo)

	switch {
	case normalized > 0.15:
		return 2, nil
	case normalized > 0.05:
		return 1, nil
	case normalized < -0.15:
		return -2, nil
	case normalized < -0.05:
		return -1, nil
	default:
		return 0, nil
	}
}
