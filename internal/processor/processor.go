package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"PrismTracker/internal/feed"
	"PrismTracker/internal/ledger"
	"PrismTracker/internal/model"
	"PrismTracker/internal/store"
)

var (
	// ErrDuplicateDecision is returned when a (ticker, cycle) pair already
	// has a recorded judgment. The duplicate causes no mutation.
	ErrDuplicateDecision = errors.New("duplicate decision for cycle")
	// ErrMalformedJudgment is returned when a judgment fails validation.
	ErrMalformedJudgment = errors.New("malformed judgment")
)

// State describes where a position sits within one evaluation cycle. A
// position makes at most one transition per cycle.
type State string

const (
	StateHolding         State = "holding"
	StatePendingRevision State = "pending_revision"
	StateClosing         State = "closing"
)

// Producer supplies one judgment per open position per cycle. It is the
// external analysis collaborator; the engine never produces judgments itself.
type Producer interface {
	Judge(ctx context.Context, pos model.Position, cycle string) (*model.DailyDecision, error)
}

// ProducerFunc adapts a function to the Producer interface.
type ProducerFunc func(ctx context.Context, pos model.Position, cycle string) (*model.DailyDecision, error)

func (f ProducerFunc) Judge(ctx context.Context, pos model.Position, cycle string) (*model.DailyDecision, error) {
	return f(ctx, pos, cycle)
}

// Outcome is the result of processing one position in one cycle.
type Outcome struct {
	Ticker   string
	State    State
	Trade    *model.ClosedTrade // set when State is StateClosing
	Proposal string             // low-urgency adjustment, logged but not applied
	Err      error              // set when the position was skipped on error
}

// CycleReport summarizes one full evaluation cycle.
type CycleReport struct {
	Cycle     string
	StartedAt time.Time
	Held      []string
	Revised   []model.Position
	Closed    []model.ClosedTrade
	Proposals []string // low-urgency adjustments, logged but not applied
	Skipped   []Outcome
}

// Processor walks every open position once per cycle, records the producer's
// judgment and applies the resulting transition through the ledger. One
// position's failure never aborts the cycle; cancellation stops between
// positions, never mid-transition.
type Processor struct {
	ledger   *ledger.Ledger
	store    store.Store
	feed     feed.Fetcher
	producer Producer
	now      func() time.Time
}

func New(l *ledger.Ledger, st store.Store, f feed.Fetcher, p Producer, now func() time.Time) *Processor {
	if now == nil {
		now = time.Now
	}
	return &Processor{ledger: l, store: st, feed: f, producer: p, now: now}
}

// RunCycle evaluates every open position exactly once for the given cycle id.
func (p *Processor) RunCycle(ctx context.Context, cycle string) (*CycleReport, error) {
	report := &CycleReport{Cycle: cycle, StartedAt: p.now()}

	for _, pos := range p.ledger.ListOpen() {
		if err := ctx.Err(); err != nil {
			log.Printf("[WARN] cycle %s cancelled after %d positions", cycle, len(report.Held)+len(report.Revised)+len(report.Closed))
			return report, err
		}
		out := p.processOne(ctx, pos, cycle)
		switch {
		case out.Err != nil:
			log.Printf("[ERROR] cycle %s: %s skipped: %v", cycle, out.Ticker, out.Err)
			report.Skipped = append(report.Skipped, out)
		case out.State == StateClosing:
			report.Closed = append(report.Closed, *out.Trade)
		case out.State == StatePendingRevision:
			if revised, ok := p.ledger.Get(out.Ticker); ok {
				report.Revised = append(report.Revised, revised)
			}
		default:
			report.Held = append(report.Held, out.Ticker)
			if out.Proposal != "" {
				report.Proposals = append(report.Proposals,
					fmt.Sprintf("%s: %s", out.Ticker, out.Proposal))
			}
		}
	}
	return report, nil
}

func (p *Processor) processOne(ctx context.Context, pos model.Position, cycle string) Outcome {
	out := Outcome{Ticker: pos.Ticker, State: StateHolding}

	// Duplicate check happens before any mutation so a replayed cycle
	// leaves the ledger untouched.
	exists, err := p.store.HasDecision(pos.Ticker, cycle)
	if err != nil {
		out.Err = fmt.Errorf("decision lookup: %w", err)
		return out
	}
	if exists {
		out.Err = fmt.Errorf("%s/%s: %w", pos.Ticker, cycle, ErrDuplicateDecision)
		return out
	}

	price, err := p.feed.FetchCurrentPrice(pos.Ticker)
	if err != nil || price <= 0 {
		if err == nil {
			err = fmt.Errorf("no price available")
		}
		out.Err = fmt.Errorf("price fetch: %w", err)
		return out
	}
	if err := p.ledger.SetPrice(pos.Ticker, price, p.now()); err != nil {
		out.Err = err
		return out
	}
	pos.CurrentPrice = price

	decision, err := p.producer.Judge(ctx, pos, cycle)
	if err != nil {
		out.Err = fmt.Errorf("judgment: %w", err)
		return out
	}
	decision.Ticker = pos.Ticker
	decision.Cycle = cycle
	if err := validate(decision); err != nil {
		out.Err = err
		return out
	}

	if err := p.store.InsertDecision(decision); err != nil {
		out.Err = fmt.Errorf("record decision: %w", err)
		return out
	}

	return p.apply(pos, decision, out)
}

// apply picks the single transition for the position. Closing always wins
// over adjustment, and a stop-loss breach wins over a target breach even when
// the price has crossed both levels.
func (p *Processor) apply(pos model.Position, d *model.DailyDecision, out Outcome) Outcome {
	sc := pos.Scenario
	price := pos.CurrentPrice

	var sellPrice float64
	var reason string
	switch {
	case sc.StopLoss > 0 && price <= sc.StopLoss:
		sellPrice, reason = sc.StopLoss, fmt.Sprintf("stop-loss %.2f breached at %.2f", sc.StopLoss, price)
	case sc.TargetPrice > 0 && price >= sc.TargetPrice:
		sellPrice, reason = sc.TargetPrice, fmt.Sprintf("target %.2f reached at %.2f", sc.TargetPrice, price)
	case d.ShouldSell:
		sellPrice, reason = price, d.SellReason
	}

	if sellPrice > 0 {
		trade, err := p.ledger.Close(pos.Ticker, sellPrice, reason, p.now())
		if err != nil {
			out.Err = fmt.Errorf("close: %w", err)
			return out
		}
		out.State = StateClosing
		out.Trade = trade
		return out
	}

	if d.AdjustmentNeeded && (d.NewTargetPrice != nil || d.NewStopLoss != nil) {
		if d.Urgency != model.UrgencyMedium && d.Urgency != model.UrgencyHigh {
			log.Printf("[INFO] %s: adjustment proposed (urgency %s), not applied: %s",
				pos.Ticker, d.Urgency, d.AdjustmentReason)
			out.Proposal = d.AdjustmentReason
			return out
		}
		next := sc
		if d.NewTargetPrice != nil {
			next.TargetPrice = *d.NewTargetPrice
		}
		if d.NewStopLoss != nil {
			next.StopLoss = *d.NewStopLoss
		}
		next.Rationale = d.AdjustmentReason
		if _, err := p.ledger.Revise(pos.Ticker, next, p.now()); err != nil {
			out.Err = fmt.Errorf("revise: %w", err)
			return out
		}
		out.State = StatePendingRevision
		return out
	}

	return out
}

func validate(d *model.DailyDecision) error {
	if d.Confidence < 1 || d.Confidence > 10 {
		return fmt.Errorf("%s: %w: confidence %d outside 1~10", d.Ticker, ErrMalformedJudgment, d.Confidence)
	}
	if d.ShouldSell && d.SellReason == "" {
		return fmt.Errorf("%s: %w: sell without reason", d.Ticker, ErrMalformedJudgment)
	}
	if d.NewTargetPrice != nil && *d.NewTargetPrice <= 0 {
		return fmt.Errorf("%s: %w: non-positive new target price", d.Ticker, ErrMalformedJudgment)
	}
	if d.NewStopLoss != nil && *d.NewStopLoss <= 0 {
		return fmt.Errorf("%s: %w: non-positive new stop loss", d.Ticker, ErrMalformedJudgment)
	}
	return nil
}
