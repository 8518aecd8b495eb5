package history

import (
	"math"
	"testing"
	"time"

	"PrismTracker/internal/model"
	"PrismTracker/internal/store"
)

func trade(ticker string, profitRate float64, days int) *model.ClosedTrade {
	buy := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	return &model.ClosedTrade{
		Ticker:      ticker,
		CompanyName: ticker + " Corp",
		BuyPrice:    10000,
		SellPrice:   10000 * (1 + profitRate/100),
		BuyDate:     buy,
		SellDate:    buy.AddDate(0, 0, days),
		HoldingDays: days,
		ProfitRate:  profitRate,
		Outcome:     model.ClassifyOutcome(profitRate),
	}
}

func TestStats_EmptyHistory(t *testing.T) {
	a := NewAggregator(store.NewMemoryStore())

	s, err := a.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.Count != 0 || s.WinRate != 0 || s.CumulativeProfitRate != 0 {
		t.Errorf("expected zero-value stats, got %+v", s)
	}
}

func TestStats_RecomputedFromFullSet(t *testing.T) {
	a := NewAggregator(store.NewMemoryStore())

	for _, tr := range []*model.ClosedTrade{
		trade("AAA", 10.0, 5),
		trade("BBB", -5.0, 3),
		trade("CCC", 15.0, 10),
		trade("DDD", 0.0, 2),
	} {
		if err := a.Record(tr); err != nil {
			t.Fatalf("record %s: %v", tr.Ticker, err)
		}
	}

	s, err := a.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.Count != 4 {
		t.Fatalf("expected 4 trades, got %d", s.Count)
	}
	if s.WinCount != 2 || s.LossCount != 1 {
		t.Errorf("expected 2 wins / 1 loss, got %d / %d", s.WinCount, s.LossCount)
	}
	if s.WinRate != 50.0 {
		t.Errorf("expected win rate 50.0, got %v", s.WinRate)
	}
	if s.CumulativeProfitRate != 20.0 {
		t.Errorf("expected cumulative 20.0 (exact sum), got %v", s.CumulativeProfitRate)
	}
	if s.AvgProfitRate != 5.0 {
		t.Errorf("expected avg return 5.0, got %v", s.AvgProfitRate)
	}
	if s.AvgHoldingDays != 5.0 {
		t.Errorf("expected avg holding 5.0, got %v", s.AvgHoldingDays)
	}
}

func TestStats_CumulativeIsExactSum(t *testing.T) {
	a := NewAggregator(store.NewMemoryStore())

	rates := []float64{3.3, -1.1, 0.7, 12.25, -4.05}
	var sum float64
	for i, r := range rates {
		sum += r
		if err := a.Record(trade(string(rune('A'+i)), r, 1)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	s, err := a.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if math.Abs(s.CumulativeProfitRate-sum) > 1e-12 {
		t.Errorf("cumulative %v differs from running sum %v", s.CumulativeProfitRate, sum)
	}
}
