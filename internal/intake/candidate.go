package intake

import (
	"encoding/json"
	"fmt"
	"time"

	"PrismTracker/internal/model"
)

// CandidateScenario pairs a screening candidate with the trading plan that
// would attach to the position if the candidate is admitted.
type CandidateScenario struct {
	Candidate model.WatchlistCandidate
	Scenario  model.Scenario
}

// candidatePayload mirrors the producer's screening document.
type candidatePayload struct {
	Ticker           string     `json:"ticker"`
	CompanyName      string     `json:"company_name"`
	Sector           string     `json:"sector"`
	CurrentPrice     *FlexPrice `json:"current_price"`
	BuyScore         float64    `json:"buy_score"`
	MinScore         float64    `json:"min_score"`
	TargetPrice      *FlexPrice `json:"target_price"`
	StopLoss         *FlexPrice `json:"stop_loss"`
	Horizon          string     `json:"investment_period"`
	Rationale        string     `json:"rationale"`
	MaxPortfolioSize FlexInt    `json:"max_portfolio_size"`

	TradingScenarios struct {
		KeyLevels struct {
			PrimarySupport      *FlexPrice `json:"primary_support"`
			SecondarySupport    *FlexPrice `json:"secondary_support"`
			PrimaryResistance   *FlexPrice `json:"primary_resistance"`
			SecondaryResistance *FlexPrice `json:"secondary_resistance"`
		} `json:"key_levels"`
		SellTriggers   []string `json:"sell_triggers"`
		HoldConditions []string `json:"hold_conditions"`
	} `json:"trading_scenarios"`
}

// DecodeCandidate parses one screening payload into a candidate and its
// scenario. Target and stop may be absent; callers backfill them from
// volatility defaults before opening a position.
func DecodeCandidate(raw []byte, now time.Time) (*CandidateScenario, error) {
	doc := ExtractJSON(raw)

	var p candidatePayload
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode candidate: %w", err)
	}
	if p.Ticker == "" {
		return nil, fmt.Errorf("candidate has no ticker")
	}

	cs := &CandidateScenario{
		Candidate: model.WatchlistCandidate{
			Ticker:      p.Ticker,
			CompanyName: p.CompanyName,
			Sector:      p.Sector,
			AnalyzedAt:  now,
			BuyScore:    p.BuyScore,
			MinScore:    p.MinScore,
			Rationale:   p.Rationale,
		},
		Scenario: model.Scenario{
			Rationale:        p.Rationale,
			SellTriggers:     p.TradingScenarios.SellTriggers,
			HoldConditions:   p.TradingScenarios.HoldConditions,
			Horizon:          model.Horizon(p.Horizon),
			Sector:           p.Sector,
			MaxPortfolioSize: int(p.MaxPortfolioSize),
		},
	}
	if p.CurrentPrice != nil {
		cs.Candidate.CurrentPrice = float64(*p.CurrentPrice)
	}
	if p.TargetPrice != nil {
		cs.Scenario.TargetPrice = float64(*p.TargetPrice)
	}
	if p.StopLoss != nil {
		cs.Scenario.StopLoss = float64(*p.StopLoss)
	}

	levels := p.TradingScenarios.KeyLevels
	for _, v := range []*FlexPrice{levels.PrimarySupport, levels.SecondarySupport} {
		if v != nil && *v > 0 {
			cs.Scenario.SupportLevels = append(cs.Scenario.SupportLevels, float64(*v))
		}
	}
	for _, v := range []*FlexPrice{levels.PrimaryResistance, levels.SecondaryResistance} {
		if v != nil && *v > 0 {
			cs.Scenario.ResistanceLevels = append(cs.Scenario.ResistanceLevels, float64(*v))
		}
	}
	return cs, nil
}
