package ledger

import (
	"errors"
	"sync"
	"testing"
	"time"

	"PrismTracker/internal/capacity"
	"PrismTracker/internal/model"
	"PrismTracker/internal/store"
)

var testTime = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T, maxSlots int) (*Ledger, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	l, err := NewLedger(st, capacity.NewManager(maxSlots))
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return l, st
}

func candidate(ticker string, price float64) *model.WatchlistCandidate {
	return &model.WatchlistCandidate{
		Ticker:       ticker,
		CompanyName:  ticker + " Corp",
		CurrentPrice: price,
		AnalyzedAt:   testTime,
	}
}

func scenario(target, stop float64) model.Scenario {
	return model.Scenario{
		TargetPrice: target,
		StopLoss:    stop,
		Horizon:     model.HorizonMedium,
	}
}

func TestOpen_DuplicateTicker(t *testing.T) {
	l, _ := newTestLedger(t, 10)

	if _, err := l.Open(candidate("AAA", 10000), scenario(12000, 9000), testTime); err != nil {
		t.Fatalf("first open: %v", err)
	}
	_, err := l.Open(candidate("AAA", 10500), scenario(13000, 9500), testTime)
	if !errors.Is(err, ErrDuplicatePosition) {
		t.Fatalf("expected ErrDuplicatePosition, got %v", err)
	}
	if l.OpenCount() != 1 {
		t.Errorf("expected 1 open position, got %d", l.OpenCount())
	}
}

func TestOpen_CapacityInvariant(t *testing.T) {
	l, _ := newTestLedger(t, 2)

	tickers := []string{"AAA", "BBB", "CCC"}
	var opened, rejected int
	for _, tk := range tickers {
		_, err := l.Open(candidate(tk, 10000), scenario(12000, 9000), testTime)
		switch {
		case err == nil:
			opened++
		case errors.Is(err, ErrCapacityExceeded):
			rejected++
		default:
			t.Fatalf("open %s: %v", tk, err)
		}
	}
	if opened != 2 || rejected != 1 {
		t.Errorf("expected 2 opened / 1 rejected, got %d / %d", opened, rejected)
	}
	if l.OpenCount() > 2 {
		t.Errorf("open count %d exceeds limit 2", l.OpenCount())
	}
}

func TestOpen_InvalidScenario(t *testing.T) {
	l, _ := newTestLedger(t, 10)

	tests := []struct {
		name     string
		scenario model.Scenario
	}{
		{"target below buy", scenario(9000, 8000)},
		{"stop above buy", scenario(12000, 11000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Open(candidate("AAA", 10000), tt.scenario, testTime)
			if !errors.Is(err, ErrInvalidScenario) {
				t.Fatalf("expected ErrInvalidScenario, got %v", err)
			}
			if l.OpenCount() != 0 {
				t.Errorf("invalid open must not create a position")
			}
		})
	}
}

func TestRevise_WholesaleReplacement(t *testing.T) {
	l, _ := newTestLedger(t, 10)

	first := scenario(12000, 9000)
	first.SellTriggers = []string{"earnings miss"}
	if _, err := l.Open(candidate("AAA", 10000), first, testTime); err != nil {
		t.Fatalf("open: %v", err)
	}

	later := testTime.Add(48 * time.Hour)
	revised, err := l.Revise("AAA", scenario(13000, 9500), later)
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	if revised.Scenario.TargetPrice != 13000 || revised.Scenario.StopLoss != 9500 {
		t.Errorf("scenario levels not replaced: %+v", revised.Scenario)
	}
	if len(revised.Scenario.SellTriggers) != 0 {
		t.Errorf("old scenario fields leaked into revision: %v", revised.Scenario.SellTriggers)
	}
	if revised.BuyPrice != 10000 || !revised.BuyDate.Equal(testTime) {
		t.Errorf("revise must not touch buy price or buy date")
	}
}

func TestRevise_UnknownTicker(t *testing.T) {
	l, _ := newTestLedger(t, 10)
	if _, err := l.Revise("ZZZ", scenario(12000, 9000), testTime); !errors.Is(err, ErrUnknownPosition) {
		t.Fatalf("expected ErrUnknownPosition, got %v", err)
	}
}

func TestClose_AtomicTradeAndRemoval(t *testing.T) {
	l, st := newTestLedger(t, 10)

	if _, err := l.Open(candidate("AAA", 10000), scenario(12000, 9000), testTime); err != nil {
		t.Fatalf("open: %v", err)
	}

	sellAt := testTime.Add(5 * 24 * time.Hour)
	trade, err := l.Close("AAA", 11000, "target reached", sellAt)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if trade.ProfitRate != 10.0 {
		t.Errorf("expected profit rate 10.0, got %v", trade.ProfitRate)
	}
	if trade.Outcome != model.OutcomeWin {
		t.Errorf("expected WIN, got %s", trade.Outcome)
	}
	if trade.HoldingDays != 5 {
		t.Errorf("expected 5 holding days, got %d", trade.HoldingDays)
	}

	if _, ok := l.Get("AAA"); ok {
		t.Error("position still open after close")
	}
	trades, err := st.Trades()
	if err != nil {
		t.Fatalf("trades: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected exactly 1 trade record, got %d", len(trades))
	}
	positions, _ := st.Positions()
	if len(positions) != 0 {
		t.Errorf("holding row survived the close")
	}

	if _, err := l.Close("AAA", 11000, "again", sellAt); !errors.Is(err, ErrUnknownPosition) {
		t.Fatalf("expected ErrUnknownPosition on double close, got %v", err)
	}
}

func TestOpen_ConcurrentSameTicker(t *testing.T) {
	l, _ := newTestLedger(t, 10)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Open(candidate("AAA", 10000), scenario(12000, 9000), testTime)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrDuplicatePosition) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful open, got %d", succeeded)
	}
	if l.OpenCount() != 1 {
		t.Errorf("expected 1 open position, got %d", l.OpenCount())
	}
}

func TestSummary(t *testing.T) {
	l, _ := newTestLedger(t, 10)

	l.Open(candidate("AAA", 10000), scenario(12000, 9000), testTime)
	l.Open(candidate("BBB", 20000), scenario(24000, 18000), testTime)
	l.SetPrice("AAA", 11000, testTime)
	l.SetPrice("BBB", 19000, testTime)

	s := l.Summary(100000)
	if s.OpenPositions != 2 {
		t.Fatalf("expected 2 open positions, got %d", s.OpenPositions)
	}
	if s.TotalEval != 30000 {
		t.Errorf("expected eval 30000, got %v", s.TotalEval)
	}
	if s.TotalUnrealized != 0 {
		t.Errorf("expected unrealized 0 (+1000 -1000), got %v", s.TotalUnrealized)
	}
	if s.BestTicker != "AAA" || s.WorstTicker != "BBB" {
		t.Errorf("best/worst wrong: %s / %s", s.BestTicker, s.WorstTicker)
	}
	if s.DeployedWeight != 30 {
		t.Errorf("expected 30%% deployed, got %v", s.DeployedWeight)
	}
}

func TestNewLedger_ReloadsOpenBook(t *testing.T) {
	st := store.NewMemoryStore()
	cm := capacity.NewManager(10)

	l1, err := NewLedger(st, cm)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	sc := scenario(12000, 9000)
	sc.MaxPortfolioSize = 6
	if _, err := l1.Open(candidate("AAA", 10000), sc, testTime); err != nil {
		t.Fatalf("open: %v", err)
	}

	cm2 := capacity.NewManager(10)
	l2, err := NewLedger(st, cm2)
	if err != nil {
		t.Fatalf("reload ledger: %v", err)
	}
	if l2.OpenCount() != 1 {
		t.Fatalf("expected reloaded book with 1 position, got %d", l2.OpenCount())
	}
	if cm2.Limit() != 6 {
		t.Errorf("expected slot limit 6 replayed from stored scenario, got %d", cm2.Limit())
	}
}
