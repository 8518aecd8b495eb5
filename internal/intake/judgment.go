package intake

import (
	"encoding/json"
	"fmt"
	"time"

	"PrismTracker/internal/model"
)

// judgmentPayload mirrors the producer's holding-judgment document.
type judgmentPayload struct {
	ShouldSell bool    `json:"should_sell"`
	SellReason string  `json:"sell_reason"`
	Confidence FlexInt `json:"confidence"`

	AnalysisSummary struct {
		TechnicalTrend        string `json:"technical_trend"`
		VolumeAnalysis        string `json:"volume_analysis"`
		MarketConditionImpact string `json:"market_condition_impact"`
		TimeFactor            string `json:"time_factor"`
	} `json:"analysis_summary"`

	PortfolioAdjustment struct {
		Needed         bool       `json:"needed"`
		Reason         string     `json:"reason"`
		NewTargetPrice *FlexPrice `json:"new_target_price"`
		NewStopLoss    *FlexPrice `json:"new_stop_loss"`
		Urgency        string     `json:"urgency"`
	} `json:"portfolio_adjustment"`
}

// DecodeJudgment parses one producer judgment for one open position. The
// original payload is retained verbatim in Raw for the audit trail.
func DecodeJudgment(raw []byte, ticker, cycle string, price float64, now time.Time) (*model.DailyDecision, error) {
	doc := ExtractJSON(raw)

	var p judgmentPayload
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode judgment for %s: %w", ticker, err)
	}

	d := &model.DailyDecision{
		Ticker:       ticker,
		Cycle:        cycle,
		DecidedAt:    now,
		CurrentPrice: price,

		Confidence:            int(p.Confidence),
		TechnicalTrend:        p.AnalysisSummary.TechnicalTrend,
		VolumeAnalysis:        p.AnalysisSummary.VolumeAnalysis,
		MarketConditionImpact: p.AnalysisSummary.MarketConditionImpact,
		TimeFactor:            p.AnalysisSummary.TimeFactor,

		AdjustmentNeeded: p.PortfolioAdjustment.Needed,
		AdjustmentReason: p.PortfolioAdjustment.Reason,
		Urgency:          model.Urgency(p.PortfolioAdjustment.Urgency),

		ShouldSell: p.ShouldSell,
		SellReason: p.SellReason,

		Raw: json.RawMessage(doc),
	}
	if p.PortfolioAdjustment.NewTargetPrice != nil {
		v := float64(*p.PortfolioAdjustment.NewTargetPrice)
		d.NewTargetPrice = &v
	}
	if p.PortfolioAdjustment.NewStopLoss != nil {
		v := float64(*p.PortfolioAdjustment.NewStopLoss)
		d.NewStopLoss = &v
	}
	return d, nil
}
