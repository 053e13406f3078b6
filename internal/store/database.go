package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/calvinwijaya/blackjack-be/internal/db"
	"github.com/calvinwijaya/blackjack-be/internal/game"
)

// DatabaseStore is a database implementation of round storage
type DatabaseStore struct {
	db *db.Database
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.Database) *DatabaseStore {
	return &DatabaseStore{
		db: database,
	}
}

// Load retrieves a round by ID
func (s *DatabaseStore) Load(ctx context.Context, id string) (*game.Round, error) {
	r, err := s.db.GetGame(ctx, id)
	if errors.Is(err, db.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	return r, nil
}

// Save saves a round to the database
func (s *DatabaseStore) Save(ctx context.Context, r *game.Round) error {
	if err := s.db.SaveGame(ctx, r); err != nil {
		return fmt.Errorf("save game %s: %w", r.ID, err)
	}
	return nil
}

// Remove removes a round from the database
func (s *DatabaseStore) Remove(ctx context.Context, id string) error {
	err := s.db.DeleteGame(ctx, id)
	if errors.Is(err, db.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove game %s: %w", id, err)
	}
	return nil
}

// LoadSummaries lists every round in the database
func (s *DatabaseStore) LoadSummaries(ctx context.Context) ([]game.Summary, error) {
	summaries, err := s.db.GetGameSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return summaries, nil
}

// RecordResult stores a settled result
func (s *DatabaseStore) RecordResult(ctx context.Context, result RoundResult) error {
	err := s.db.SaveGameResult(ctx, db.Result{
		GameID:      result.RoundID,
		Bet:         result.Bet,
		Result:      string(result.Result),
		Payout:      result.Payout,
		WalletAfter: result.WalletAfter,
		CreatedAt:   result.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("record result for %s: %w", result.RoundID, err)
	}
	return nil
}

// Stats aggregates a round's results
func (s *DatabaseStore) Stats(ctx context.Context, id string) (*Stats, error) {
	exists, err := s.db.GameExists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("stats for %s: %w", id, err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	results, err := s.db.GetGameResults(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("stats for %s: %w", id, err)
	}

	stats := &Stats{RoundID: id}
	for _, r := range results {
		stats.Add(RoundResult{
			RoundID:     r.GameID,
			Bet:         r.Bet,
			Result:      game.OutcomeResult(r.Result),
			Payout:      r.Payout,
			WalletAfter: r.WalletAfter,
			CreatedAt:   r.CreatedAt,
		})
	}
	return stats, nil
}
