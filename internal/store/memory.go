package store

import (
	"fmt"
	"sync"

	"PrismTracker/internal/model"
)

// MemoryStore keeps everything in process memory. It is the fallback when no
// SQLite path is configured and the backing store for tests.
type MemoryStore struct {
	mu        sync.Mutex
	holdings  map[string]model.Position
	trades    []model.ClosedTrade
	watchlist []model.WatchlistCandidate
	decisions map[string]model.DailyDecision // key: ticker + "\x00" + cycle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		holdings:  make(map[string]model.Position),
		decisions: make(map[string]model.DailyDecision),
	}
}

func decisionKey(ticker, cycle string) string { return ticker + "\x00" + cycle }

func (m *MemoryStore) InsertPosition(p *model.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holdings[p.Ticker]; ok {
		return fmt.Errorf("holding row for %s already exists", p.Ticker)
	}
	m.holdings[p.Ticker] = *p
	return nil
}

func (m *MemoryStore) UpdatePosition(p *model.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holdings[p.Ticker]; !ok {
		return fmt.Errorf("no holding row for %s", p.Ticker)
	}
	m.holdings[p.Ticker] = *p
	return nil
}

func (m *MemoryStore) Positions() ([]model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Position, 0, len(m.holdings))
	for _, p := range m.holdings {
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryStore) CloseOut(ticker string, t *model.ClosedTrade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holdings[ticker]; !ok {
		return fmt.Errorf("no holding row for %s", ticker)
	}
	m.trades = append(m.trades, *t)
	delete(m.holdings, ticker)
	return nil
}

func (m *MemoryStore) InsertTrade(t *model.ClosedTrade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, *t)
	return nil
}

func (m *MemoryStore) Trades() ([]model.ClosedTrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ClosedTrade, len(m.trades))
	copy(out, m.trades)
	return out, nil
}

func (m *MemoryStore) InsertWatchlist(c *model.WatchlistCandidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchlist = append(m.watchlist, *c)
	return nil
}

// Watchlist returns all audit rows in insertion order.
func (m *MemoryStore) Watchlist() []model.WatchlistCandidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.WatchlistCandidate, len(m.watchlist))
	copy(out, m.watchlist)
	return out
}

func (m *MemoryStore) InsertDecision(d *model.DailyDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := decisionKey(d.Ticker, d.Cycle)
	if _, ok := m.decisions[key]; ok {
		return fmt.Errorf("decision for %s in cycle %s already exists", d.Ticker, d.Cycle)
	}
	m.decisions[key] = *d
	return nil
}

func (m *MemoryStore) HasDecision(ticker, cycle string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.decisions[decisionKey(ticker, cycle)]
	return ok, nil
}

func (m *MemoryStore) Close() error { return nil }
