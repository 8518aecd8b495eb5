package model

import (
	"encoding/json"
	"time"
)

// Urgency grades how quickly a proposed scenario adjustment should apply.
type Urgency string

const (
	UrgencyLow    Urgency = "low"    // proposal only, logged but not applied
	UrgencyMedium Urgency = "medium" // apply within days
	UrgencyHigh   Urgency = "high"   // apply immediately
)

// DailyDecision is one cycle's judgment about one open position. Records are
// append-only: exactly one may exist per (ticker, cycle), and a second
// submission for the same pair is rejected, never overwritten.
type DailyDecision struct {
	Ticker       string
	Cycle        string
	DecidedAt    time.Time
	CurrentPrice float64

	Confidence            int // 1~10
	TechnicalTrend        string
	VolumeAnalysis        string
	MarketConditionImpact string
	TimeFactor            string

	AdjustmentNeeded bool
	AdjustmentReason string
	NewTargetPrice   *float64
	NewStopLoss      *float64
	Urgency          Urgency

	ShouldSell bool
	SellReason string

	// Raw keeps the producer's full payload for audit, including free-text
	// fields the state machine does not depend on.
	Raw json.RawMessage
}
