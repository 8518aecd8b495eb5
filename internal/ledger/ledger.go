package ledger

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"PrismTracker/internal/capacity"
	"PrismTracker/internal/model"
	"PrismTracker/internal/store"
)

var (
	// ErrDuplicatePosition is returned when a ticker already has an open position.
	ErrDuplicatePosition = errors.New("position already open")
	// ErrUnknownPosition is returned when a ticker has no open position.
	ErrUnknownPosition = errors.New("unknown position")
	// ErrCapacityExceeded is returned when no free slot is available.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidScenario is returned when a scenario's levels contradict the buy price.
	ErrInvalidScenario = errors.New("invalid scenario")
)

// Ledger is the authoritative owner of open positions. All mutation goes
// through Open/Revise/Close/SetPrice; mutations for the same ticker are
// serialized by a per-ticker lock (overlapping cycles may touch the same
// ticker), and the book-level mutex guards membership and slot counting.
type Ledger struct {
	mu    sync.Mutex
	open  map[string]*model.Position
	locks map[string]*sync.Mutex

	store    store.Store
	capacity *capacity.Manager
}

// NewLedger loads the open book from the store.
func NewLedger(st store.Store, cm *capacity.Manager) (*Ledger, error) {
	positions, err := st.Positions()
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}
	l := &Ledger{
		open:     make(map[string]*model.Position, len(positions)),
		locks:    make(map[string]*sync.Mutex),
		store:    st,
		capacity: cm,
	}
	for i := range positions {
		p := positions[i]
		l.open[p.Ticker] = &p
		if p.Scenario.MaxPortfolioSize > 0 {
			cm.Observe(p.Scenario.MaxPortfolioSize)
		}
	}
	if len(positions) > 0 {
		log.Printf("[INFO] ledger loaded %d open positions", len(positions))
	}
	return l, nil
}

// lockTicker serializes transitions for one ticker. The returned func
// releases the lock.
func (l *Ledger) lockTicker(ticker string) func() {
	l.mu.Lock()
	lk, ok := l.locks[ticker]
	if !ok {
		lk = &sync.Mutex{}
		l.locks[ticker] = lk
	}
	l.mu.Unlock()

	lk.Lock()
	return lk.Unlock
}

// Open creates a position from an admitted candidate and its scenario.
// The scenario must place the stop below and the target above the buy price.
func (l *Ledger) Open(c *model.WatchlistCandidate, sc model.Scenario, now time.Time) (*model.Position, error) {
	if c.Ticker == "" {
		return nil, fmt.Errorf("%w: missing ticker", ErrUnknownPosition)
	}
	unlock := l.lockTicker(c.Ticker)
	defer unlock()

	if sc.TargetPrice <= c.CurrentPrice {
		return nil, fmt.Errorf("%s: %w: target %.2f not above buy price %.2f",
			c.Ticker, ErrInvalidScenario, sc.TargetPrice, c.CurrentPrice)
	}
	if sc.StopLoss >= c.CurrentPrice {
		return nil, fmt.Errorf("%s: %w: stop %.2f not below buy price %.2f",
			c.Ticker, ErrInvalidScenario, sc.StopLoss, c.CurrentPrice)
	}

	l.capacity.Observe(sc.MaxPortfolioSize)

	l.mu.Lock()
	if _, exists := l.open[c.Ticker]; exists {
		l.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", c.Ticker, ErrDuplicatePosition)
	}
	if !l.capacity.HasFreeSlot(len(l.open)) {
		count := len(l.open)
		l.mu.Unlock()
		return nil, fmt.Errorf("%s: %w (%d/%d)", c.Ticker, ErrCapacityExceeded, count, l.capacity.Limit())
	}

	pos := &model.Position{
		Ticker:       c.Ticker,
		CompanyName:  c.CompanyName,
		BuyPrice:     c.CurrentPrice,
		BuyDate:      now,
		CurrentPrice: c.CurrentPrice,
		LastUpdated:  now,
		Scenario:     sc,
	}
	if err := l.store.InsertPosition(pos); err != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("persist open %s: %w", c.Ticker, err)
	}
	l.open[c.Ticker] = pos
	l.mu.Unlock()

	log.Printf("[INFO] opened %s(%s) @ %.2f target=%.2f stop=%.2f",
		c.Ticker, c.CompanyName, pos.BuyPrice, sc.TargetPrice, sc.StopLoss)
	out := *pos
	return &out, nil
}

// Revise replaces a position's scenario wholesale. Buy price and buy date
// are never altered.
func (l *Ledger) Revise(ticker string, sc model.Scenario, now time.Time) (*model.Position, error) {
	unlock := l.lockTicker(ticker)
	defer unlock()

	l.mu.Lock()
	cur, ok := l.open[ticker]
	if !ok {
		l.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", ticker, ErrUnknownPosition)
	}
	next := *cur
	l.mu.Unlock()

	next.Scenario = sc
	next.LastUpdated = now
	if err := l.store.UpdatePosition(&next); err != nil {
		return nil, fmt.Errorf("persist revise %s: %w", ticker, err)
	}

	l.mu.Lock()
	l.open[ticker] = &next
	l.mu.Unlock()

	l.capacity.Observe(sc.MaxPortfolioSize)
	log.Printf("[INFO] revised %s scenario: target=%.2f stop=%.2f", ticker, sc.TargetPrice, sc.StopLoss)
	out := next
	return &out, nil
}

// Close ends a position at the given sell price, hands the resulting trade
// to history and removes the position from the open set. The trade insert
// and the holding removal are one atomic store operation.
func (l *Ledger) Close(ticker string, sellPrice float64, reason string, now time.Time) (*model.ClosedTrade, error) {
	unlock := l.lockTicker(ticker)
	defer unlock()

	l.mu.Lock()
	pos, ok := l.open[ticker]
	if !ok {
		l.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", ticker, ErrUnknownPosition)
	}
	snapshot := *pos
	l.mu.Unlock()

	profitRate := 0.0
	if snapshot.BuyPrice != 0 {
		profitRate = (sellPrice - snapshot.BuyPrice) / snapshot.BuyPrice * 100
	}
	trade := &model.ClosedTrade{
		Ticker:      snapshot.Ticker,
		CompanyName: snapshot.CompanyName,
		BuyPrice:    snapshot.BuyPrice,
		SellPrice:   sellPrice,
		BuyDate:     snapshot.BuyDate,
		SellDate:    now,
		HoldingDays: snapshot.HoldingDays(now),
		ProfitRate:  profitRate,
		Outcome:     model.ClassifyOutcome(profitRate),
		Reason:      reason,
	}

	if err := l.store.CloseOut(ticker, trade); err != nil {
		return nil, fmt.Errorf("persist close %s: %w", ticker, err)
	}

	l.mu.Lock()
	delete(l.open, ticker)
	l.mu.Unlock()

	log.Printf("[INFO] closed %s @ %.2f (%.2f%%, %s): %s",
		ticker, sellPrice, profitRate, trade.Outcome, reason)
	return trade, nil
}

// SetPrice refreshes a position's current price from the price feed.
func (l *Ledger) SetPrice(ticker string, price float64, now time.Time) error {
	unlock := l.lockTicker(ticker)
	defer unlock()

	l.mu.Lock()
	cur, ok := l.open[ticker]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%s: %w", ticker, ErrUnknownPosition)
	}
	next := *cur
	l.mu.Unlock()

	next.CurrentPrice = price
	next.LastUpdated = now
	if err := l.store.UpdatePosition(&next); err != nil {
		return fmt.Errorf("persist price %s: %w", ticker, err)
	}

	l.mu.Lock()
	l.open[ticker] = &next
	l.mu.Unlock()
	return nil
}

// Get returns a copy of the open position for the ticker, if any.
func (l *Ledger) Get(ticker string) (model.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.open[ticker]
	if !ok {
		return model.Position{}, false
	}
	return *p, true
}

// ListOpen returns copies of all open positions, oldest purchase first.
func (l *Ledger) ListOpen() []model.Position {
	l.mu.Lock()
	out := make([]model.Position, 0, len(l.open))
	for _, p := range l.open {
		out = append(out, *p)
	}
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].BuyDate.Equal(out[j].BuyDate) {
			return out[i].Ticker < out[j].Ticker
		}
		return out[i].BuyDate.Before(out[j].BuyDate)
	})
	return out
}

// OpenCount returns the number of open positions.
func (l *Ledger) OpenCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.open)
}

// SectorCounts returns how many open positions each sector holds.
func (l *Ledger) SectorCounts() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.open))
	for _, p := range l.open {
		out[p.Sector()]++
	}
	return out
}

// Summary derives the portfolio snapshot from the open book. totalCapital
// feeds the deployed-weight figure and gates nothing.
func (l *Ledger) Summary(totalCapital float64) model.PortfolioSummary {
	positions := l.ListOpen()

	s := model.PortfolioSummary{
		OpenPositions: len(positions),
		MaxSlots:      l.capacity.Limit(),
	}
	for i, p := range positions {
		s.TotalEval += p.CurrentPrice
		s.TotalUnrealized += p.CurrentPrice - p.BuyPrice
		rate := p.ProfitRate()
		if i == 0 || rate > s.BestProfitRate {
			s.BestTicker, s.BestProfitRate = p.Ticker, rate
		}
		if i == 0 || rate < s.WorstProfitRate {
			s.WorstTicker, s.WorstProfitRate = p.Ticker, rate
		}
	}
	s.DeployedWeight = capacity.WeightOf(s.TotalEval, totalCapital)
	return s
}
