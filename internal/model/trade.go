package model

import "time"

// Outcome classifies a closed trade.
type Outcome string

const (
	OutcomeWin       Outcome = "WIN"
	OutcomeLoss      Outcome = "LOSS"
	OutcomeBreakEven Outcome = "BREAK_EVEN"
)

// ClassifyOutcome maps a percent return to a trade outcome.
func ClassifyOutcome(profitRate float64) Outcome {
	switch {
	case profitRate > 0:
		return OutcomeWin
	case profitRate < 0:
		return OutcomeLoss
	default:
		return OutcomeBreakEven
	}
}

// ClosedTrade is the immutable record of a completed buy-to-sell cycle.
type ClosedTrade struct {
	Ticker      string
	CompanyName string
	BuyPrice    float64
	SellPrice   float64
	BuyDate     time.Time
	SellDate    time.Time
	HoldingDays int
	ProfitRate  float64 // percent
	Outcome     Outcome
	Reason      string
}

// TradeStats are rolling statistics over the full closed-trade set. They are
// recomputed from scratch on every query so they always reconcile exactly
// with the trade records.
type TradeStats struct {
	Count                int
	WinCount             int
	LossCount            int
	WinRate              float64 // percent, 0 when Count is 0
	AvgProfitRate        float64
	AvgHoldingDays       float64
	CumulativeProfitRate float64 // arithmetic sum of per-trade returns
}

// PortfolioSummary is a derived snapshot of the open book. It is computed on
// demand from the open positions, never stored.
type PortfolioSummary struct {
	OpenPositions   int
	MaxSlots        int
	TotalEval       float64 // sum of current prices, one notional unit per slot
	TotalUnrealized float64 // sum of (current - buy), same basis
	DeployedWeight  float64 // TotalEval as a percent of total capital
	BestTicker      string
	BestProfitRate  float64
	WorstTicker     string
	WorstProfitRate float64
}
