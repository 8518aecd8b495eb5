package gate

import (
	"errors"
	"fmt"
	"log"
	"math"

	"PrismTracker/internal/model"
	"PrismTracker/internal/store"
)

// ErrInvalidCandidate is returned when a candidate cannot be evaluated at all.
// Nothing is persisted for an invalid candidate.
var ErrInvalidCandidate = errors.New("invalid candidate")

const (
	// MaxSameSector caps how many open positions one sector may hold.
	MaxSameSector = 3
	// SectorConcentrationRatio caps one sector's share of the open book.
	SectorConcentrationRatio = 0.3
)

// Book is the view of the open portfolio the gate needs for admission.
type Book interface {
	OpenCount() int
	SectorCounts() map[string]int
}

// Capacity reports whether a slot is available for a new position.
type Capacity interface {
	HasFreeSlot(open int) bool
	Limit() int
}

// Gate screens watchlist candidates. Every evaluated candidate is written to
// the watchlist audit trail exactly once, whether admitted or skipped.
type Gate struct {
	book     Book
	capacity Capacity
	store    store.Store
}

func New(book Book, capacity Capacity, st store.Store) *Gate {
	return &Gate{book: book, capacity: capacity, store: st}
}

// Evaluate decides Enter or Skip for a candidate, stamps the decision and
// rationale onto it, and records the audit row. The candidate's score must
// lie in [0, 10]; a malformed candidate is rejected without persistence.
func (g *Gate) Evaluate(c *model.WatchlistCandidate) (model.Decision, error) {
	if c.Ticker == "" {
		return "", fmt.Errorf("%w: missing ticker", ErrInvalidCandidate)
	}
	if math.IsNaN(c.BuyScore) || c.BuyScore < 0 || c.BuyScore > 10 {
		return "", fmt.Errorf("%s: %w: buy score %v out of range", c.Ticker, ErrInvalidCandidate, c.BuyScore)
	}

	c.Decision, c.Rationale = g.decide(c)

	if err := g.store.InsertWatchlist(c); err != nil {
		return "", fmt.Errorf("record watchlist row for %s: %w", c.Ticker, err)
	}
	if c.Decision == model.DecisionSkip {
		log.Printf("[INFO] gate skipped %s: %s", c.Ticker, c.Rationale)
	} else {
		log.Printf("[INFO] gate admitted %s (score %.1f >= %.1f)", c.Ticker, c.BuyScore, c.MinScore)
	}
	return c.Decision, nil
}

func (g *Gate) decide(c *model.WatchlistCandidate) (model.Decision, string) {
	if c.BuyScore < c.MinScore {
		return model.DecisionSkip,
			fmt.Sprintf("buy score %.1f below threshold %.1f", c.BuyScore, c.MinScore)
	}

	open := g.book.OpenCount()
	if !g.capacity.HasFreeSlot(open) {
		return model.DecisionSkip,
			fmt.Sprintf("no free slot (%d/%d)", open, g.capacity.Limit())
	}

	if c.Sector != "" {
		inSector := g.book.SectorCounts()[c.Sector]
		if inSector >= MaxSameSector {
			return model.DecisionSkip,
				fmt.Sprintf("sector %s already holds %d positions (max %d)", c.Sector, inSector, MaxSameSector)
		}
		// Ratio check against the book after this candidate joins it.
		if share := float64(inSector+1) / float64(open+1); open > 0 && share > SectorConcentrationRatio {
			return model.DecisionSkip,
				fmt.Sprintf("sector %s would take %.0f%% of the book (cap %.0f%%)",
					c.Sector, share*100, SectorConcentrationRatio*100)
		}
	}

	return model.DecisionEnter, fmt.Sprintf("buy score %.1f meets threshold %.1f", c.BuyScore, c.MinScore)
}
