package model

import "time"

// Horizon is the intended investment period for a position.
type Horizon string

const (
	HorizonShort  Horizon = "short"  // up to 1 month
	HorizonMedium Horizon = "medium" // 1~3 months
	HorizonLong   Horizon = "long"   // 3 months or more
)

// Scenario is the trading plan attached 1:1 to a position: target and
// stop-loss levels, the triggers that end the trade and the conditions that
// keep it open. It is the single canonical source of target/stop values and
// is replaced wholesale on each revision, never patched field by field.
type Scenario struct {
	Rationale        string    `json:"rationale"`
	SupportLevels    []float64 `json:"support_levels,omitempty"`
	ResistanceLevels []float64 `json:"resistance_levels,omitempty"`
	SellTriggers     []string  `json:"sell_triggers,omitempty"`
	HoldConditions   []string  `json:"hold_conditions,omitempty"`
	TargetPrice      float64   `json:"target_price"`
	StopLoss         float64   `json:"stop_loss"`
	Horizon          Horizon   `json:"investment_period"`
	Sector           string    `json:"sector"`
	MaxPortfolioSize int       `json:"max_portfolio_size,omitempty"`
}

// Position is an open, capital-deployed holding tracked by the engine.
type Position struct {
	Ticker       string
	CompanyName  string
	BuyPrice     float64
	BuyDate      time.Time
	CurrentPrice float64
	LastUpdated  time.Time
	Scenario     Scenario
}

// Sector returns the sector recorded in the attached scenario.
func (p *Position) Sector() string { return p.Scenario.Sector }

// HoldingDays derives the holding period from the buy date and the given
// reference time. It is never stored, so it cannot drift.
func (p *Position) HoldingDays(asOf time.Time) int {
	days := int(asOf.Sub(p.BuyDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// ProfitRate returns the unrealized return in percent against the buy price.
func (p *Position) ProfitRate() float64 {
	if p.BuyPrice == 0 {
		return 0
	}
	return (p.CurrentPrice - p.BuyPrice) / p.BuyPrice * 100
}
