package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"PrismTracker/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists engine state to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the dashboard can read while a cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stock_holdings (
			ticker        TEXT PRIMARY KEY,
			company_name  TEXT NOT NULL,
			buy_price     REAL NOT NULL,
			buy_date      INTEGER NOT NULL,
			current_price REAL,
			last_updated  INTEGER,
			scenario      TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS trading_history (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker       TEXT NOT NULL,
			company_name TEXT NOT NULL,
			buy_price    REAL NOT NULL,
			buy_date     INTEGER NOT NULL,
			sell_price   REAL NOT NULL,
			sell_date    INTEGER NOT NULL,
			profit_rate  REAL NOT NULL,
			holding_days INTEGER NOT NULL,
			outcome      TEXT NOT NULL,
			reason       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_ticker ON trading_history(ticker)`,

		`CREATE TABLE IF NOT EXISTS watchlist_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker        TEXT NOT NULL,
			company_name  TEXT NOT NULL,
			sector        TEXT,
			current_price REAL,
			analyzed_at   INTEGER NOT NULL,
			buy_score     REAL NOT NULL,
			min_score     REAL NOT NULL,
			decision      TEXT NOT NULL,
			rationale     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_ticker ON watchlist_history(ticker)`,

		`CREATE TABLE IF NOT EXISTS holding_decisions (
			id                      INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker                  TEXT NOT NULL,
			cycle                   TEXT NOT NULL,
			decided_at              INTEGER NOT NULL,
			current_price           REAL NOT NULL,
			confidence              INTEGER,
			technical_trend         TEXT,
			volume_analysis         TEXT,
			market_condition_impact TEXT,
			time_factor             TEXT,
			adjustment_needed       INTEGER NOT NULL,
			adjustment_reason       TEXT,
			new_target_price        REAL,
			new_stop_loss           REAL,
			urgency                 TEXT,
			should_sell             INTEGER NOT NULL,
			sell_reason             TEXT,
			raw_json                TEXT,
			UNIQUE(ticker, cycle)
		)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) InsertPosition(p *model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenario, err := json.Marshal(p.Scenario)
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO stock_holdings
		(ticker, company_name, buy_price, buy_date, current_price, last_updated, scenario)
		VALUES (?,?,?,?,?,?,?)`,
		p.Ticker, p.CompanyName, p.BuyPrice, p.BuyDate.Unix(),
		p.CurrentPrice, p.LastUpdated.Unix(), string(scenario),
	)
	return err
}

func (s *SQLiteStore) UpdatePosition(p *model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenario, err := json.Marshal(p.Scenario)
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}
	res, err := s.db.Exec(`UPDATE stock_holdings
		SET current_price = ?, last_updated = ?, scenario = ?
		WHERE ticker = ?`,
		p.CurrentPrice, p.LastUpdated.Unix(), string(scenario), p.Ticker,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no holding row for %s", p.Ticker)
	}
	return nil
}

func (s *SQLiteStore) Positions() ([]model.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT ticker, company_name, buy_price, buy_date,
		current_price, last_updated, scenario FROM stock_holdings ORDER BY buy_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Position
	for rows.Next() {
		var p model.Position
		var buyDate, lastUpdated int64
		var scenario string
		if err := rows.Scan(&p.Ticker, &p.CompanyName, &p.BuyPrice, &buyDate,
			&p.CurrentPrice, &lastUpdated, &scenario); err != nil {
			return nil, err
		}
		p.BuyDate = time.Unix(buyDate, 0)
		p.LastUpdated = time.Unix(lastUpdated, 0)
		if err := json.Unmarshal([]byte(scenario), &p.Scenario); err != nil {
			return nil, fmt.Errorf("unmarshal scenario for %s: %w", p.Ticker, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CloseOut appends the trade and deletes the holding in one transaction.
func (s *SQLiteStore) CloseOut(ticker string, t *model.ClosedTrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(insertTradeSQL, tradeArgs(t)...); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert trade: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM stock_holdings WHERE ticker = ?`, ticker)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("delete holding: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return fmt.Errorf("no holding row for %s", ticker)
	}
	return tx.Commit()
}

const insertTradeSQL = `INSERT INTO trading_history
	(ticker, company_name, buy_price, buy_date, sell_price, sell_date,
	 profit_rate, holding_days, outcome, reason)
	VALUES (?,?,?,?,?,?,?,?,?,?)`

func tradeArgs(t *model.ClosedTrade) []any {
	return []any{
		t.Ticker, t.CompanyName, t.BuyPrice, t.BuyDate.Unix(),
		t.SellPrice, t.SellDate.Unix(), t.ProfitRate, t.HoldingDays,
		string(t.Outcome), t.Reason,
	}
}

func (s *SQLiteStore) InsertTrade(t *model.ClosedTrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(insertTradeSQL, tradeArgs(t)...)
	return err
}

func (s *SQLiteStore) Trades() ([]model.ClosedTrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT ticker, company_name, buy_price, buy_date,
		sell_price, sell_date, profit_rate, holding_days, outcome, reason
		FROM trading_history ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ClosedTrade
	for rows.Next() {
		var t model.ClosedTrade
		var buyDate, sellDate int64
		var outcome string
		if err := rows.Scan(&t.Ticker, &t.CompanyName, &t.BuyPrice, &buyDate,
			&t.SellPrice, &sellDate, &t.ProfitRate, &t.HoldingDays,
			&outcome, &t.Reason); err != nil {
			return nil, err
		}
		t.BuyDate = time.Unix(buyDate, 0)
		t.SellDate = time.Unix(sellDate, 0)
		t.Outcome = model.Outcome(outcome)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertWatchlist(c *model.WatchlistCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO watchlist_history
		(ticker, company_name, sector, current_price, analyzed_at,
		 buy_score, min_score, decision, rationale)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		c.Ticker, c.CompanyName, c.Sector, c.CurrentPrice, c.AnalyzedAt.Unix(),
		c.BuyScore, c.MinScore, string(c.Decision), c.Rationale,
	)
	return err
}

func (s *SQLiteStore) InsertDecision(d *model.DailyDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newTarget, newStop any
	if d.NewTargetPrice != nil {
		newTarget = *d.NewTargetPrice
	}
	if d.NewStopLoss != nil {
		newStop = *d.NewStopLoss
	}
	_, err := s.db.Exec(`INSERT INTO holding_decisions
		(ticker, cycle, decided_at, current_price, confidence,
		 technical_trend, volume_analysis, market_condition_impact, time_factor,
		 adjustment_needed, adjustment_reason, new_target_price, new_stop_loss,
		 urgency, should_sell, sell_reason, raw_json)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.Ticker, d.Cycle, d.DecidedAt.Unix(), d.CurrentPrice, d.Confidence,
		d.TechnicalTrend, d.VolumeAnalysis, d.MarketConditionImpact, d.TimeFactor,
		d.AdjustmentNeeded, d.AdjustmentReason, newTarget, newStop,
		string(d.Urgency), d.ShouldSell, d.SellReason, string(d.Raw),
	)
	return err
}

func (s *SQLiteStore) HasDecision(ticker, cycle string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM holding_decisions WHERE ticker = ? AND cycle = ?`,
		ticker, cycle).Scan(&n)
	return n > 0, err
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
