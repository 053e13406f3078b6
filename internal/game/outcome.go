package game

// OutcomeResult names how a settled round ended for the player.
type OutcomeResult string

const (
	ResultWin  OutcomeResult = "win"
	ResultLose OutcomeResult = "lose"
	ResultPush OutcomeResult = "push"
	ResultBust OutcomeResult = "bust" // player went over 21 on a hit
)

// Outcome is the settlement of a round. Payout is credited to the wallet
// on top of the already escrowed bet.
type Outcome struct {
	Result  OutcomeResult `json:"result"`
	Payout  int           `json:"payout"`
	Message string        `json:"message"`
}

// Resolve compares the finished dealer hand with the player's hand.
// It must only be called once the dealer has completed its draw.
func Resolve(dealer, player Hand, bet int) Outcome {
	switch {
	case dealer.IsBust():
		return Outcome{Result: ResultWin, Payout: 2 * bet, Message: MsgDealerBust}
	case dealer.Count > player.Count:
		// The escrowed bet stays with the house
		return Outcome{Result: ResultLose, Payout: 0, Message: MsgDealerWins}
	case dealer.Count < player.Count:
		return Outcome{Result: ResultWin, Payout: 2 * bet, Message: MsgPlayerWins}
	default:
		return Outcome{Result: ResultPush, Payout: bet, Message: MsgPush}
	}
}

// PlayerBust is the outcome of a hit that takes the player past 21
func PlayerBust() Outcome {
	return Outcome{Result: ResultBust, Payout: 0, Message: MsgPlayerBust}
}
