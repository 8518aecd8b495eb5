package intake

import (
	"testing"
	"time"

	"PrismTracker/internal/model"
)

var decodeTime = time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)

func TestDecodeJudgment(t *testing.T) {
	raw := []byte("```json\n" + `{
		"should_sell": false,
		"sell_reason": "",
		"confidence": "7",
		"analysis_summary": {
			"technical_trend": "higher lows forming",
			"volume_analysis": "above 20-day average",
			"market_condition_impact": "neutral",
			"time_factor": "within horizon"
		},
		"portfolio_adjustment": {
			"needed": true,
			"reason": "support shifted up",
			"new_stop_loss": "9,500",
			"urgency": "medium"
		}
	}` + "\n```")

	d, err := DecodeJudgment(raw, "AAA", "2025-06-02/afternoon", 10200, decodeTime)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Ticker != "AAA" || d.Cycle != "2025-06-02/afternoon" {
		t.Errorf("identity fields wrong: %s %s", d.Ticker, d.Cycle)
	}
	if d.Confidence != 7 {
		t.Errorf("string confidence not coerced: %d", d.Confidence)
	}
	if d.TechnicalTrend != "higher lows forming" {
		t.Errorf("analysis summary lost: %q", d.TechnicalTrend)
	}
	if !d.AdjustmentNeeded || d.Urgency != model.UrgencyMedium {
		t.Errorf("adjustment fields wrong: %+v", d)
	}
	if d.NewStopLoss == nil || *d.NewStopLoss != 9500 {
		t.Errorf("loose stop value not parsed: %v", d.NewStopLoss)
	}
	if d.NewTargetPrice != nil {
		t.Errorf("absent target must stay nil")
	}
	if len(d.Raw) == 0 {
		t.Error("raw payload must be retained")
	}
}

func TestDecodeJudgment_Malformed(t *testing.T) {
	if _, err := DecodeJudgment([]byte("not json at all"), "AAA", "c", 100, decodeTime); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDecodeCandidate(t *testing.T) {
	raw := []byte(`{
		"ticker": "005930",
		"company_name": "Samsung Electronics",
		"sector": "semiconductor",
		"current_price": "71,200",
		"buy_score": 8.5,
		"min_score": 7.0,
		"target_price": "82,000",
		"stop_loss": 66000,
		"investment_period": "medium",
		"rationale": "HBM demand recovery",
		"max_portfolio_size": 8,
		"trading_scenarios": {
			"key_levels": {
				"primary_support": "69,000",
				"secondary_support": 67000,
				"primary_resistance": "75,000~76,000"
			},
			"sell_triggers": ["close below 66,000", "HBM order cancellation"],
			"hold_conditions": ["foreign net buying continues"]
		}
	}`)

	cs, err := DecodeCandidate(raw, decodeTime)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	c, sc := cs.Candidate, cs.Scenario
	if c.Ticker != "005930" || c.CurrentPrice != 71200 {
		t.Errorf("candidate basics wrong: %+v", c)
	}
	if c.BuyScore != 8.5 || c.MinScore != 7.0 {
		t.Errorf("scores wrong: %v / %v", c.BuyScore, c.MinScore)
	}
	if sc.TargetPrice != 82000 || sc.StopLoss != 66000 {
		t.Errorf("levels wrong: %v / %v", sc.TargetPrice, sc.StopLoss)
	}
	if sc.Horizon != model.HorizonMedium || sc.Sector != "semiconductor" {
		t.Errorf("scenario metadata wrong: %+v", sc)
	}
	if sc.MaxPortfolioSize != 8 {
		t.Errorf("max portfolio size wrong: %d", sc.MaxPortfolioSize)
	}
	if len(sc.SupportLevels) != 2 || sc.SupportLevels[0] != 69000 {
		t.Errorf("support levels wrong: %v", sc.SupportLevels)
	}
	if len(sc.ResistanceLevels) != 1 || sc.ResistanceLevels[0] != 75500 {
		t.Errorf("resistance range midpoint wrong: %v", sc.ResistanceLevels)
	}
	if len(sc.SellTriggers) != 2 || len(sc.HoldConditions) != 1 {
		t.Errorf("trigger lists wrong: %v / %v", sc.SellTriggers, sc.HoldConditions)
	}
}

func TestDecodeCandidate_MissingTicker(t *testing.T) {
	if _, err := DecodeCandidate([]byte(`{"buy_score": 8}`), decodeTime); err == nil {
		t.Fatal("expected error for missing ticker")
	}
}
