package feed

import (
	"PrismTracker/internal/model"
)

// Fetcher supplies prices for tracked tickers. A zero price with a nil error
// is treated by callers the same as an error: the ticker is skipped for the
// cycle.
type Fetcher interface {
	Name() string
	FetchCurrentPrice(ticker string) (float64, error)
	FetchDailyBars(ticker string, days int) ([]model.OHLCV, error)
}

// FixedFetcher returns controllable fixed data for development and testing.
type FixedFetcher struct {
	Prices    map[string]float64
	DailyData []model.OHLCV
	Err       error
}

func (f *FixedFetcher) Name() string { return "fixed" }

func (f *FixedFetcher) FetchCurrentPrice(ticker string) (float64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Prices[ticker], nil
}

func (f *FixedFetcher) FetchDailyBars(_ string, days int) ([]model.OHLCV, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.DailyData != nil {
		return f.DailyData, nil
	}
	return nil, nil
}
