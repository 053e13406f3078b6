// Package service runs player actions against stored rounds: it loads a
// round, hands it to the game engine, saves what comes back and tells
// subscribers about it.
package service

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/calvinwijaya/blackjack-be/internal/game"
	"github.com/calvinwijaya/blackjack-be/internal/store"
)

// Notifier is told about every round change, accepted or not
type Notifier interface {
	RoundUpdated(r *game.Round, res game.Result)
}

type Service struct {
	store    store.Store
	engine   *game.Engine
	notifier Notifier
	logger   *log.Logger
	locks    *roundLocks
}

// New creates a service. notifier and logger may be nil.
func New(st store.Store, engine *game.Engine, notifier Notifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		store:    st,
		engine:   engine,
		notifier: notifier,
		logger:   logger,
		locks:    newRoundLocks(),
	}
}

// Register creates and stores a new round
func (s *Service) Register(ctx context.Context) (*game.Round, game.Result, error) {
	r, res, err := s.engine.Register()
	if err != nil {
		return nil, game.Result{}, fmt.Errorf("register: %w", err)
	}
	if err := s.store.Save(ctx, &r); err != nil {
		return nil, game.Result{}, err
	}

	s.logger.Info("game registered", "game", r.ID)
	s.notify(&r, res)
	return &r, res, nil
}

// PlaceBet escrows amount as the bet for round id
func (s *Service) PlaceBet(ctx context.Context, id string, amount int) (*game.Round, game.Result, error) {
	return s.apply(ctx, id, func(r game.Round) (game.Round, game.Result, error) {
		return s.engine.PlaceBet(r, amount)
	})
}

// Hit deals the player another card
func (s *Service) Hit(ctx context.Context, id string) (*game.Round, game.Result, error) {
	return s.apply(ctx, id, s.engine.Hit)
}

// Expose plays out the dealer and settles the round
func (s *Service) Expose(ctx context.Context, id string) (*game.Round, game.Result, error) {
	return s.apply(ctx, id, s.engine.Expose)
}

// Restart starts the next round for id
func (s *Service) Restart(ctx context.Context, id string, mode game.RestartMode) (*game.Round, game.Result, error) {
	return s.apply(ctx, id, func(r game.Round) (game.Round, game.Result, error) {
		return s.engine.Restart(r, mode)
	})
}

// Get returns the stored round
func (s *Service) Get(ctx context.Context, id string) (*game.Round, error) {
	return s.store.Load(ctx, id)
}

// List returns a summary of every round
func (s *Service) List(ctx context.Context) ([]game.Summary, error) {
	return s.store.LoadSummaries(ctx)
}

// Delete removes a round
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("game deleted", "game", id)
	return nil
}

// Stats returns the settled-result summary of a round
func (s *Service) Stats(ctx context.Context, id string) (*store.Stats, error) {
	return s.store.Stats(ctx, id)
}

// apply loads round id, runs action on it and saves the result. The round
// lock is held for the whole load, act, save sequence.
func (s *Service) apply(ctx context.Context, id string, action func(game.Round) (game.Round, game.Result, error)) (*game.Round, game.Result, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, game.Result{}, err
	}

	next, res, err := action(*current)
	if err != nil {
		s.logger.Error("action failed", "game", id, "err", err)
		return nil, game.Result{}, err
	}

	if err := s.store.Save(ctx, &next); err != nil {
		return nil, game.Result{}, err
	}

	if res.Outcome != nil {
		err := s.store.RecordResult(ctx, store.RoundResult{
			RoundID:     next.ID,
			Bet:         current.Bet(),
			Result:      res.Outcome.Result,
			Payout:      res.Outcome.Payout,
			WalletAfter: next.Wallet,
			CreatedAt:   next.DtUpdate,
		})
		if err != nil {
			return nil, game.Result{}, err
		}
	}

	logger := s.logger.With("game", id, "action", res.Action)
	switch {
	case res.Outcome != nil:
		logger.Info("round settled", "result", res.Outcome.Result, "payout", res.Outcome.Payout, "wallet", next.Wallet)
	case !res.Accepted:
		logger.Debug("action rejected", "reason", res.Message)
	default:
		logger.Debug("action applied", "state", next.State())
	}

	s.notify(&next, res)
	return &next, res, nil
}

func (s *Service) notify(r *game.Round, res game.Result) {
	if s.notifier != nil {
		s.notifier.RoundUpdated(r, res)
	}
}
