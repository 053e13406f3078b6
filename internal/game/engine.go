package game

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// Result describes what an action did. Rejected actions are not errors:
// they come back with Accepted false and the reason in Message.
type Result struct {
	Action   Action   `json:"action"`
	Accepted bool     `json:"accepted"`
	Outcome  *Outcome `json:"outcome,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// Engine applies player actions to rounds. Each call takes a fully loaded
// round and returns the next one; the input is never modified. Callers
// must not run two actions against the same round at once.
type Engine struct {
	rng    Source
	clock  quartz.Clock
	newID  func() string
	logger *log.Logger
}

type Option func(*Engine)

// WithClock sets the clock used for round timestamps
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithIDGenerator overrides how new round ids are generated
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// WithLogger sets the engine logger
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine drawing cards from rng
func NewEngine(rng Source, opts ...Option) *Engine {
	e := &Engine{
		rng:    rng,
		clock:  quartz.NewReal(),
		newID:  uuid.NewString,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register creates a new round: fresh deck, opening deal, full wallet, no bet.
func (e *Engine) Register() (Round, Result, error) {
	player, dealer, deck, err := DealOpeningHands(NewDeck(), e.rng)
	if err != nil {
		return Round{}, Result{}, err
	}

	now := e.clock.Now()
	r := Round{
		ID:            e.newID(),
		DtInsert:      now,
		DtUpdate:      now,
		PossibleCards: deck,
		Dealer:        dealer,
		Player:        player,
		Wallet:        InitialWallet,
	}

	e.logger.Debug("round registered", "round", r.ID, "player", player.Count, "dealer", dealer.Count)
	return r, Result{Action: ActionRegister, Accepted: true}, nil
}

// PlaceBet escrows amount from the wallet as the round's bet
func (e *Engine) PlaceBet(r Round, amount int) (Round, Result, error) {
	if ok, reason := Allowed(r.State(), ActionBet); !ok {
		return e.reject(r, ActionBet, reason)
	}
	if amount <= 0 {
		return e.reject(r, ActionBet, MsgBetNotPositive)
	}
	if amount > r.Wallet {
		return e.reject(r, ActionBet, MsgInsufficientFunds)
	}

	next := r.Clone()
	next.Wallet -= amount
	next.CurrentBet = &amount
	next.Message = nil
	next.DtUpdate = e.clock.Now()

	e.logger.Debug("bet placed", "round", r.ID, "bet", amount, "wallet", next.Wallet)
	return next, Result{Action: ActionBet, Accepted: true}, nil
}

// Hit deals one more card to the player. Going over 21 settles the round
// as a loss; the escrowed bet is not returned.
func (e *Engine) Hit(r Round) (Round, Result, error) {
	if ok, reason := Allowed(r.State(), ActionHit); !ok {
		return e.reject(r, ActionHit, reason)
	}

	player, deck, err := DealOneCard(r.PossibleCards, r.Player, e.rng)
	if err != nil {
		return r, Result{}, fmt.Errorf("hit round %s: %w", r.ID, err)
	}

	next := r.Clone()
	next.Player = player
	next.PossibleCards = deck
	next.DtUpdate = e.clock.Now()

	result := Result{Action: ActionHit, Accepted: true}
	if player.IsBust() {
		outcome := PlayerBust()
		next.GameOver = true
		next.Message = strPtr(outcome.Message)
		result.Outcome = &outcome
		result.Message = outcome.Message
		e.logger.Debug("player bust", "round", r.ID, "count", player.Count)
	}
	return next, result, nil
}

// Expose ends the player's turn: the dealer reveals and draws, then the
// round is settled and the payout credited.
func (e *Engine) Expose(r Round) (Round, Result, error) {
	if ok, reason := Allowed(r.State(), ActionExpose); !ok {
		return e.reject(r, ActionExpose, reason)
	}

	// StateDealerTurn: no player input until the dealer is done
	dealer, deck, err := PlayDealer(r.Dealer, r.PossibleCards, e.rng)
	if err != nil {
		return r, Result{}, fmt.Errorf("expose round %s: %w", r.ID, err)
	}

	outcome := Resolve(dealer, r.Player, r.Bet())

	next := r.Clone()
	next.Dealer = dealer
	next.PossibleCards = deck
	next.Wallet += outcome.Payout
	next.GameOver = true
	next.Message = strPtr(outcome.Message)
	next.DtUpdate = e.clock.Now()

	e.logger.Debug("round settled", "round", r.ID, "result", outcome.Result,
		"dealer", dealer.Count, "player", r.Player.Count, "payout", outcome.Payout)
	return next, Result{Action: ActionExpose, Accepted: true, Outcome: &outcome, Message: outcome.Message}, nil
}

// Restart starts another round. RestartContinue keeps the wallet and the
// remaining deck, unless the wallet is empty; RestartNew resets everything
// except the round's identity.
func (e *Engine) Restart(r Round, mode RestartMode) (Round, Result, error) {
	if ok, reason := Allowed(r.State(), ActionRestart); !ok {
		return e.reject(r, ActionRestart, reason)
	}

	deck := NewDeck()
	wallet := InitialWallet

	if mode == RestartContinue {
		if r.Wallet <= 0 {
			return e.reject(r, ActionRestart, MsgNoFunds)
		}
		wallet = r.Wallet
		// Keep playing through the same deck until it runs low
		if r.PossibleCards.Remaining() >= ReshuffleThreshold {
			deck = r.PossibleCards
		}
	}

	player, dealer, deck, err := DealOpeningHands(deck, e.rng)
	if err != nil {
		return r, Result{}, fmt.Errorf("restart round %s: %w", r.ID, err)
	}

	next := r.Clone()
	next.PossibleCards = deck
	next.Dealer = dealer
	next.Player = player
	next.Wallet = wallet
	next.CurrentBet = nil
	next.GameOver = false
	next.Message = nil
	next.DtUpdate = e.clock.Now()

	e.logger.Debug("round restarted", "round", r.ID, "mode", mode, "wallet", wallet, "deck", deck.Remaining())
	return next, Result{Action: ActionRestart, Accepted: true}, nil
}

func (e *Engine) reject(r Round, action Action, reason string) (Round, Result, error) {
	next := r.Clone()
	next.Message = strPtr(reason)
	e.logger.Debug("action rejected", "round", r.ID, "action", action, "reason", reason)
	return next, Result{Action: action, Message: reason}, nil
}
