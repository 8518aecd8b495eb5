package model

import "time"

// Decision is the screening outcome for a candidate.
type Decision string

const (
	DecisionEnter Decision = "ENTER"
	DecisionSkip  Decision = "SKIP"
)

// WatchlistCandidate is one screening of one symbol. Every screening writes
// exactly one record, whatever the outcome; a later re-screening of the same
// ticker supersedes it rather than mutating it.
type WatchlistCandidate struct {
	Ticker       string
	CompanyName  string
	Sector       string
	CurrentPrice float64
	AnalyzedAt   time.Time
	BuyScore     float64 // 0~10
	MinScore     float64 // required score for entry, supplied per cycle
	Decision     Decision
	Rationale    string
}
