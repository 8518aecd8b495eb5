package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"PrismTracker/internal/model"
)

const disclaimer = "⚠️ Reference only. Not investment advice; decisions and outcomes are your own."

// FormatBuy formats a position-open message with the trading plan.
func FormatBuy(p *model.Position) string {
	var b strings.Builder
	sc := p.Scenario

	b.WriteString(fmt.Sprintf("🛒 <b>New Position</b> | %s (%s)\n\n", p.CompanyName, p.Ticker))
	b.WriteString(fmt.Sprintf("Buy price: %s\n", formatPrice(p.BuyPrice)))
	b.WriteString(fmt.Sprintf("Target: %s (%+.1f%%)\n", formatPrice(sc.TargetPrice), pctFrom(p.BuyPrice, sc.TargetPrice)))
	b.WriteString(fmt.Sprintf("Stop-loss: %s (%.1f%%)\n", formatPrice(sc.StopLoss), pctFrom(p.BuyPrice, sc.StopLoss)))
	b.WriteString(fmt.Sprintf("Horizon: %s", sc.Horizon))
	if sc.Sector != "" {
		b.WriteString(fmt.Sprintf(" | Sector: %s", sc.Sector))
	}
	b.WriteString("\n")

	if len(sc.SupportLevels) > 0 || len(sc.ResistanceLevels) > 0 {
		b.WriteString("\n📐 <b>Key levels</b>\n")
		if len(sc.SupportLevels) > 0 {
			b.WriteString(fmt.Sprintf("  Support: %s\n", joinPrices(sc.SupportLevels)))
		}
		if len(sc.ResistanceLevels) > 0 {
			b.WriteString(fmt.Sprintf("  Resistance: %s\n", joinPrices(sc.ResistanceLevels)))
		}
	}
	if len(sc.SellTriggers) > 0 {
		b.WriteString("\n🔻 <b>Sell triggers</b>\n")
		for _, t := range sc.SellTriggers {
			b.WriteString(fmt.Sprintf("  • %s\n", t))
		}
	}
	if len(sc.HoldConditions) > 0 {
		b.WriteString("\n🤝 <b>Hold while</b>\n")
		for _, c := range sc.HoldConditions {
			b.WriteString(fmt.Sprintf("  • %s\n", c))
		}
	}
	if sc.Rationale != "" {
		b.WriteString(fmt.Sprintf("\n💡 %s\n", sc.Rationale))
	}
	b.WriteString("\n" + disclaimer)
	return b.String()
}

// FormatSell formats a position-close message.
func FormatSell(t *model.ClosedTrade) string {
	arrow := "📈"
	if t.ProfitRate < 0 {
		arrow = "📉"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>Position Closed</b> | %s (%s)\n\n", arrow, t.CompanyName, t.Ticker))
	b.WriteString(fmt.Sprintf("Buy: %s → Sell: %s\n", formatPrice(t.BuyPrice), formatPrice(t.SellPrice)))
	b.WriteString(fmt.Sprintf("Return: %+.2f%% (%s)\n", t.ProfitRate, t.Outcome))
	b.WriteString(fmt.Sprintf("Held: %d days\n", t.HoldingDays))
	if t.Reason != "" {
		b.WriteString(fmt.Sprintf("Reason: %s\n", t.Reason))
	}
	return b.String()
}

// FormatSkip formats a screening rejection.
func FormatSkip(c *model.WatchlistCandidate) string {
	return fmt.Sprintf("⏭ <b>Skipped</b> | %s (%s)\nScore: %.1f / threshold %.1f\n%s",
		c.CompanyName, c.Ticker, c.BuyScore, c.MinScore, c.Rationale)
}

// FormatRevision formats a scenario-revision message.
func FormatRevision(p *model.Position) string {
	sc := p.Scenario
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔧 <b>Scenario Revised</b> | %s (%s)\n\n", p.CompanyName, p.Ticker))
	b.WriteString(fmt.Sprintf("Target: %s\n", formatPrice(sc.TargetPrice)))
	b.WriteString(fmt.Sprintf("Stop-loss: %s\n", formatPrice(sc.StopLoss)))
	if sc.Rationale != "" {
		b.WriteString(fmt.Sprintf("Reason: %s\n", sc.Rationale))
	}
	return b.String()
}

// FormatPortfolioReport formats the full portfolio snapshot: per-position
// P/L, sector distribution, summary line and trade statistics.
func FormatPortfolioReport(positions []model.Position, summary model.PortfolioSummary, stats model.TradeStats, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Portfolio Report</b> | %s\n\n", now.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Open positions: %d/%d\n", summary.OpenPositions, summary.MaxSlots))

	if len(positions) == 0 {
		b.WriteString("\nNo open positions.\n")
	} else {
		b.WriteString("\n")
		for _, p := range positions {
			rate := p.ProfitRate()
			mark := "🟢"
			if rate < 0 {
				mark = "🔴"
			}
			b.WriteString(fmt.Sprintf("%s %s (%s): %s → %s (%+.2f%%, %dd)\n",
				mark, p.CompanyName, p.Ticker,
				formatPrice(p.BuyPrice), formatPrice(p.CurrentPrice),
				rate, p.HoldingDays(now)))
		}
		b.WriteString(fmt.Sprintf("\nUnrealized: %+.0f (eval %.0f", summary.TotalUnrealized, summary.TotalEval))
		if summary.DeployedWeight > 0 {
			b.WriteString(fmt.Sprintf(", %.1f%% deployed", summary.DeployedWeight))
		}
		b.WriteString(")\n")
		if summary.BestTicker != "" {
			b.WriteString(fmt.Sprintf("Best: %s %+.2f%% | Worst: %s %+.2f%%\n",
				summary.BestTicker, summary.BestProfitRate,
				summary.WorstTicker, summary.WorstProfitRate))
		}

		b.WriteString("\n🏷 <b>Sectors</b>\n")
		for _, line := range sectorLines(positions) {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + FormatStats(stats))
	b.WriteString("\n" + disclaimer)
	return b.String()
}

// FormatStats formats the rolling trade statistics.
func FormatStats(stats model.TradeStats) string {
	if stats.Count == 0 {
		return "📒 <b>Trade History</b>\nNo closed trades yet."
	}
	var b strings.Builder
	b.WriteString("📒 <b>Trade History</b>\n")
	b.WriteString(fmt.Sprintf("Trades: %d (W%d / L%d)\n", stats.Count, stats.WinCount, stats.LossCount))
	b.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", stats.WinRate))
	b.WriteString(fmt.Sprintf("Avg return: %+.2f%% | Cumulative: %+.2f%%\n", stats.AvgProfitRate, stats.CumulativeProfitRate))
	b.WriteString(fmt.Sprintf("Avg holding: %.1f days", stats.AvgHoldingDays))
	return b.String()
}

func sectorLines(positions []model.Position) []string {
	counts := make(map[string]int)
	for _, p := range positions {
		sector := p.Sector()
		if sector == "" {
			sector = "unclassified"
		}
		counts[sector]++
	}
	lines := make([]string, 0, len(counts))
	for sector, n := range counts {
		lines = append(lines, fmt.Sprintf("%s: %d (%.0f%%)", sector, n, float64(n)/float64(len(positions))*100))
	}
	sort.Strings(lines)
	return lines
}

func joinPrices(levels []float64) string {
	parts := make([]string, len(levels))
	for i, v := range levels {
		parts[i] = formatPrice(v)
	}
	return strings.Join(parts, " / ")
}

func formatPrice(v float64) string {
	if v == float64(int64(v)) && v < 1e15 {
		return addThousands(fmt.Sprintf("%d", int64(v)))
	}
	return fmt.Sprintf("%.2f", v)
}

func addThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func pctFrom(base, level float64) float64 {
	if base == 0 {
		return 0
	}
	return (level - base) / base * 100
}
