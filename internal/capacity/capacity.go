package capacity

import (
	"log"
	"sync"
)

// Manager enforces how many positions may be open at once. The limit starts
// at the configured hard cap and follows the most recently observed
// max_portfolio_size from incoming scenarios, clamped to the cap.
type Manager struct {
	mu      sync.Mutex
	hardCap int
	limit   int
}

// NewManager creates a Manager with the given hard slot cap.
func NewManager(maxSlots int) *Manager {
	if maxSlots <= 0 {
		maxSlots = 1
	}
	return &Manager{hardCap: maxSlots, limit: maxSlots}
}

// HasFreeSlot reports whether a position may be opened given the current
// number of open positions.
func (m *Manager) HasFreeSlot(open int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return open < m.limit
}

// Limit returns the effective slot limit.
func (m *Manager) Limit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limit
}

// HardCap returns the configured upper bound the limit can never exceed.
func (m *Manager) HardCap() int { return m.hardCap }

// Observe takes a max_portfolio_size seen in scenario data. The most recent
// positive observation becomes authoritative; values above the hard cap are
// clamped, zero and negative values are ignored.
func (m *Manager) Observe(size int) {
	if size <= 0 {
		return
	}
	if size > m.hardCap {
		size = m.hardCap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if size != m.limit {
		log.Printf("[INFO] portfolio slot limit %d -> %d (market-condition observation)", m.limit, size)
		m.limit = size
	}
}

// WeightOf returns a position's share of total capital in percent. It is a
// pure reporting computation and gates nothing.
func WeightOf(positionValue, totalCapital float64) float64 {
	if totalCapital <= 0 {
		return 0
	}
	return positionValue / totalCapital * 100
}
