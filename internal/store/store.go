package store

import (
	"context"
	"errors"
	"time"

	"github.com/calvinwijaya/blackjack-be/internal/game"
)

// ErrNotFound is returned when no round exists for an id
var ErrNotFound = errors.New("game not found")

// RoundResult records how one settled round ended
type RoundResult struct {
	RoundID     string             `json:"roundId"`
	Bet         int                `json:"bet"`
	Result      game.OutcomeResult `json:"result"`
	Payout      int                `json:"payout"`
	WalletAfter int                `json:"walletAfter"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Stats aggregates the settled results of one game
type Stats struct {
	RoundID      string    `json:"roundId"`
	RoundsPlayed int       `json:"roundsPlayed"`
	RoundsWon    int       `json:"roundsWon"`
	RoundsPushed int       `json:"roundsPushed"`
	TotalBets    int       `json:"totalBets"`
	TotalPayouts int       `json:"totalPayouts"`
	LastPlayed   time.Time `json:"lastPlayed"`
}

// Add folds one result into the stats
func (s *Stats) Add(r RoundResult) {
	s.RoundsPlayed++
	switch r.Result {
	case game.ResultWin:
		s.RoundsWon++
	case game.ResultPush:
		s.RoundsPushed++
	}
	s.TotalBets += r.Bet
	s.TotalPayouts += r.Payout
	if r.CreatedAt.After(s.LastPlayed) {
		s.LastPlayed = r.CreatedAt
	}
}

// Store defines the interface for round storage
type Store interface {
	// Load retrieves a round by ID
	Load(ctx context.Context, id string) (*game.Round, error)

	// Save inserts or replaces a round
	Save(ctx context.Context, r *game.Round) error

	// Remove deletes a round and its results
	Remove(ctx context.Context, id string) error

	// LoadSummaries lists every round as id, creation time and wallet
	LoadSummaries(ctx context.Context) ([]game.Summary, error)

	// RecordResult appends a settled result to a round's history
	RecordResult(ctx context.Context, result RoundResult) error

	// Stats aggregates the recorded results of a round
	Stats(ctx context.Context, id string) (*Stats, error)
}
