package game

import (
	"errors"
	"time"
)

// InitialWallet is the balance a registered or fully restarted round starts with.
const InitialWallet = 100

type State string

const (
	StateNew        State = "new"        // No round registered yet
	StateBetting    State = "betting"    // Cards dealt, waiting for a bet
	StatePlayerTurn State = "playerTurn" // Bet escrowed, player may hit or stand
	StateDealerTurn State = "dealerTurn" // Dealer is drawing, no player input
	StateSettled    State = "settled"    // Round is over until restarted
)

type Action string

const (
	ActionRegister Action = "register"
	ActionBet      Action = "bet"
	ActionHit      Action = "hit"
	ActionExpose   Action = "expose"
	ActionRestart  Action = "restart"
)

// Player facing messages.
const (
	MsgBetRequired       = "Please place a bet first."
	MsgRoundOver         = "The round is already over! Please restart the game."
	MsgInsufficientFunds = "You don't have enough money for the requested bet."
	MsgBetNotPositive    = "You can only bet a positive amount of money."
	MsgBetAlreadyPlaced  = "A bet has already been placed for this round."
	MsgNoFunds           = "Game over! You have no money left, please start a new game."
	MsgPlayerBust        = "You lost! Your cards add up to more than 21."
	MsgDealerBust        = "The dealer went over 21! You won."
	MsgDealerWins        = "The dealer won."
	MsgPlayerWins        = "You won!"
	MsgPush              = "The round ended in a push."
)

// transitions is the single legality table: for every state it maps an
// action to "" when the action is allowed, or to the rejection message.
// Anything missing from the table is rejected with MsgRoundOver.
var transitions = map[State]map[Action]string{
	StateNew: {
		ActionRegister: "",
	},
	StateBetting: {
		ActionBet:     "",
		ActionHit:     MsgBetRequired,
		ActionExpose:  "",
		ActionRestart: "",
	},
	StatePlayerTurn: {
		ActionBet:     MsgBetAlreadyPlaced,
		ActionHit:     "",
		ActionExpose:  "",
		ActionRestart: "",
	},
	StateSettled: {
		ActionBet:     MsgRoundOver,
		ActionHit:     MsgRoundOver,
		ActionExpose:  MsgRoundOver,
		ActionRestart: "",
	},
}

// Allowed reports whether action may run in state, and if not, why.
func Allowed(state State, action Action) (bool, string) {
	actions, ok := transitions[state]
	if !ok {
		return false, MsgRoundOver
	}
	reason, ok := actions[action]
	if !ok {
		return false, MsgRoundOver
	}
	return reason == "", reason
}

// Round is a single blackjack session between one player and the dealer.
type Round struct {
	ID            string    `json:"id"`
	DtInsert      time.Time `json:"dtInsert"`
	DtUpdate      time.Time `json:"dtUpdate"`
	PossibleCards Deck      `json:"possibleCards"`
	Dealer        Hand      `json:"dealer"`
	Player        Hand      `json:"player"`
	Wallet        int       `json:"wallet"`
	CurrentBet    *int      `json:"currentBet"`
	GameOver      bool      `json:"gameOver"`
	Message       *string   `json:"message"`
}

// State derives the round's position in the state machine
func (r *Round) State() State {
	switch {
	case r == nil:
		return StateNew
	case r.GameOver:
		return StateSettled
	case r.CurrentBet != nil:
		return StatePlayerTurn
	default:
		return StateBetting
	}
}

// Bet returns the escrowed bet, or 0 when none has been placed
func (r *Round) Bet() int {
	if r.CurrentBet == nil {
		return 0
	}
	return *r.CurrentBet
}

// Clone returns a deep copy so callers can mutate the result freely
func (r *Round) Clone() Round {
	out := *r
	out.PossibleCards = r.PossibleCards.Clone()
	out.Dealer = r.Dealer.Clone()
	out.Player = r.Player.Clone()
	if r.CurrentBet != nil {
		bet := *r.CurrentBet
		out.CurrentBet = &bet
	}
	if r.Message != nil {
		msg := *r.Message
		out.Message = &msg
	}
	return out
}

// Summary is the listing view of a round
type Summary struct {
	ID       string    `json:"id"`
	DtInsert time.Time `json:"dtInsert"`
	Wallet   int       `json:"wallet"`
}

// Summary returns the listing view of r
func (r *Round) Summary() Summary {
	return Summary{ID: r.ID, DtInsert: r.DtInsert, Wallet: r.Wallet}
}

type RestartMode string

const (
	RestartNew      RestartMode = "new"
	RestartContinue RestartMode = "continue"
)

// ErrUnknownRestartMode is returned by ParseRestartMode for anything other
// than "", "new" or "continue".
var ErrUnknownRestartMode = errors.New("unknown restart mode")

// ParseRestartMode maps the restart type query value to a mode. An empty
// value means a full restart.
func ParseRestartMode(s string) (RestartMode, error) {
	switch RestartMode(s) {
	case "", RestartNew:
		return RestartNew, nil
	case RestartContinue:
		return RestartContinue, nil
	default:
		return "", ErrUnknownRestartMode
	}
}

func strPtr(s string) *string { return &s }
