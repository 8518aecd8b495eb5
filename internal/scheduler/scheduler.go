package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"PrismTracker/internal/calculator"
	"PrismTracker/internal/feed"
	"PrismTracker/internal/gate"
	"PrismTracker/internal/history"
	"PrismTracker/internal/intake"
	"PrismTracker/internal/ledger"
	"PrismTracker/internal/model"
	"PrismTracker/internal/notifier"
	"PrismTracker/internal/processor"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// volatilityWindow is how many daily bars feed the default stop/target levels.
const volatilityWindow = 60

// CandidateSource supplies the screening candidates for a cycle.
type CandidateSource interface {
	Candidates(ctx context.Context) ([]intake.CandidateScenario, error)
}

// Sender is the outbound notification channel.
type Sender interface {
	Send(text string) error
}

// Scheduler runs the morning and afternoon evaluation cycles.
type Scheduler struct {
	Cron       *cron.Cron
	Processor  *processor.Processor
	Gate       *gate.Gate
	Ledger     *ledger.Ledger
	History    *history.Aggregator
	Candidates CandidateSource
	Feed       feed.Fetcher
	Notifier   Sender
	Ctx        context.Context

	TotalCapital float64
	MinBuyScore  float64

	nowFn func() time.Time
}

// NewScheduler creates a Scheduler. nowFn may be nil, in which case wall
// clock time is used; tests inject a fixed clock for deterministic cycle ids.
func NewScheduler(ctx context.Context, proc *processor.Processor, g *gate.Gate, l *ledger.Ledger,
	h *history.Aggregator, cs CandidateSource, f feed.Fetcher, n Sender,
	totalCapital, minBuyScore float64, nowFn func() time.Time) *Scheduler {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Processor:    proc,
		Gate:         g,
		Ledger:       l,
		History:      h,
		Candidates:   cs,
		Feed:         f,
		Notifier:     n,
		Ctx:          ctx,
		TotalCapital: totalCapital,
		MinBuyScore:  minBuyScore,
		nowFn:        nowFn,
	}
}

// RegisterAll registers the morning and afternoon cycles.
func (s *Scheduler) RegisterAll(morningCron, afternoonCron string) error {
	if _, err := s.Cron.AddFunc(morningCron, func() { s.RunCycle("morning") }); err != nil {
		return fmt.Errorf("register morning cycle: %w", err)
	}
	if _, err := s.Cron.AddFunc(afternoonCron, func() { s.RunCycle("afternoon") }); err != nil {
		return fmt.Errorf("register afternoon cycle: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// CycleID builds the deterministic cycle identifier for a session.
func (s *Scheduler) CycleID(session string) string {
	return s.nowFn().Format("2006-01-02") + "/" + session
}

// RunCycle executes one full evaluation cycle: judge every open position,
// screen the day's candidates, open admitted ones, and report.
func (s *Scheduler) RunCycle(session string) {
	cycle := s.CycleID(session)
	runID := uuid.NewString()[:8]
	log.Printf("[INFO] cycle %s starting (run %s)", cycle, runID)

	report, err := s.Processor.RunCycle(s.Ctx, cycle)
	if err != nil {
		log.Printf("[ERROR] cycle %s (run %s) aborted: %v", cycle, runID, err)
		return
	}
	for i := range report.Closed {
		s.trySend(notifier.FormatSell(&report.Closed[i]))
	}
	for i := range report.Revised {
		s.trySend(notifier.FormatRevision(&report.Revised[i]))
	}
	for _, p := range report.Proposals {
		log.Printf("[INFO] cycle %s proposal: %s", cycle, p)
	}

	s.screenCandidates(cycle)

	s.trySend(s.portfolioReport())
	log.Printf("[INFO] cycle %s finished (run %s): held=%d revised=%d closed=%d skipped=%d",
		cycle, runID, len(report.Held), len(report.Revised), len(report.Closed), len(report.Skipped))
}

// RunCycleNow executes a cycle immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunCycleNow() {
	session := "morning"
	if s.nowFn().Hour() >= 12 {
		session = "afternoon"
	}
	s.RunCycle(session)
}

func (s *Scheduler) screenCandidates(cycle string) {
	if s.Candidates == nil {
		return
	}
	candidates, err := s.Candidates.Candidates(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] cycle %s: load candidates: %v", cycle, err)
		return
	}

	for i := range candidates {
		cs := &candidates[i]
		s.prepare(cs)

		decision, err := s.Gate.Evaluate(&cs.Candidate)
		if err != nil {
			log.Printf("[ERROR] cycle %s: candidate %s rejected: %v", cycle, cs.Candidate.Ticker, err)
			continue
		}
		if decision != model.DecisionEnter {
			s.trySend(notifier.FormatSkip(&cs.Candidate))
			continue
		}

		pos, err := s.Ledger.Open(&cs.Candidate, cs.Scenario, s.nowFn())
		if err != nil {
			log.Printf("[ERROR] cycle %s: open %s: %v", cycle, cs.Candidate.Ticker, err)
			continue
		}
		s.trySend(notifier.FormatBuy(pos))
	}
}

// prepare fills in the candidate's current price and, when the scenario lacks
// explicit levels, backfills target/stop from recent volatility.
func (s *Scheduler) prepare(cs *intake.CandidateScenario) {
	ticker := cs.Candidate.Ticker

	if cs.Candidate.MinScore <= 0 {
		cs.Candidate.MinScore = s.MinBuyScore
	}
	if cs.Candidate.CurrentPrice <= 0 {
		price, err := s.Feed.FetchCurrentPrice(ticker)
		if err != nil {
			log.Printf("[WARN] %s: price fetch for screening: %v", ticker, err)
			return
		}
		cs.Candidate.CurrentPrice = price
	}
	if cs.Scenario.TargetPrice > 0 && cs.Scenario.StopLoss > 0 {
		return
	}

	vol := 15.0 // conservative default when no history is available
	if bars, err := s.Feed.FetchDailyBars(ticker, volatilityWindow); err == nil {
		if v, err := calculator.CalculateDailyVolatility(bars); err == nil {
			vol = v
		}
		if trend, err := calculator.CalculateTrend(bars); err == nil {
			log.Printf("[INFO] %s: trend score %+d over %d bars", ticker, trend, len(bars))
		}
	}
	if cs.Scenario.StopLoss <= 0 {
		cs.Scenario.StopLoss = calculator.DefaultStopLoss(cs.Candidate.CurrentPrice, vol)
		log.Printf("[INFO] %s: stop-loss defaulted to %.2f (volatility %.1f%%)", ticker, cs.Scenario.StopLoss, vol)
	}
	if cs.Scenario.TargetPrice <= 0 {
		cs.Scenario.TargetPrice = calculator.DefaultTargetPrice(cs.Candidate.CurrentPrice, vol)
		log.Printf("[INFO] %s: target defaulted to %.2f (volatility %.1f%%)", ticker, cs.Scenario.TargetPrice, vol)
	}
}

func (s *Scheduler) portfolioReport() string {
	stats, err := s.History.Stats()
	if err != nil {
		log.Printf("[ERROR] compute stats: %v", err)
	}
	return notifier.FormatPortfolioReport(s.Ledger.ListOpen(), s.Ledger.Summary(s.TotalCapital), stats, s.nowFn())
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/portfolio":
		return s.portfolioReport()
	case "/stats":
		stats, err := s.History.Stats()
		if err != nil {
			return fmt.Sprintf("stats unavailable: %v", err)
		}
		return notifier.FormatStats(stats)
	case "/run":
		go s.RunCycleNow()
		return "cycle started"
	default:
		return "Commands:\n• /portfolio — open positions and P/L\n• /stats — trade history statistics\n• /run — run a cycle now"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Send(text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
