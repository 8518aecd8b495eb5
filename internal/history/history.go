package history

import (
	"sync"

	"PrismTracker/internal/model"
	"PrismTracker/internal/store"
)

// Aggregator rolls closed trades into portfolio statistics. Appends are
// serialized; statistics are derived from the full trade set on every query
// rather than patched incrementally, so they always reconcile exactly with
// the trade records.
type Aggregator struct {
	mu    sync.Mutex
	store store.Store
}

func NewAggregator(st store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// Record appends one closed trade.
func (a *Aggregator) Record(t *model.ClosedTrade) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.InsertTrade(t)
}

// Stats recomputes the rolling statistics from all closed trades.
func (a *Aggregator) Stats() (model.TradeStats, error) {
	trades, err := a.store.Trades()
	if err != nil {
		return model.TradeStats{}, err
	}

	var s model.TradeStats
	s.Count = len(trades)
	if s.Count == 0 {
		return s, nil
	}

	var profitSum float64
	var daysSum int
	for _, t := range trades {
		switch t.Outcome {
		case model.OutcomeWin:
			s.WinCount++
		case model.OutcomeLoss:
			s.LossCount++
		}
		profitSum += t.ProfitRate
		daysSum += t.HoldingDays
	}

	s.WinRate = float64(s.WinCount) / float64(s.Count) * 100
	s.AvgProfitRate = profitSum / float64(s.Count)
	s.AvgHoldingDays = float64(daysSum) / float64(s.Count)
	s.CumulativeProfitRate = profitSum
	return s, nil
}
