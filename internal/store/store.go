package store

import "PrismTracker/internal/model"

// Store persists the engine's entities. Implementations must make CloseOut
// atomic: the closed trade appears and the holding disappears in one step,
// with no observable state where both or neither exist.
type Store interface {
	// Open positions (one row per ticker).
	InsertPosition(p *model.Position) error
	UpdatePosition(p *model.Position) error
	Positions() ([]model.Position, error)

	// CloseOut removes the holding and appends its closed trade atomically.
	CloseOut(ticker string, t *model.ClosedTrade) error

	// Closed trades (append-only).
	InsertTrade(t *model.ClosedTrade) error
	Trades() ([]model.ClosedTrade, error)

	// Watchlist audit log (append-only).
	InsertWatchlist(c *model.WatchlistCandidate) error

	// Daily decisions (append-only, unique per ticker+cycle).
	InsertDecision(d *model.DailyDecision) error
	HasDecision(ticker, cycle string) (bool, error)

	Close() error
}
