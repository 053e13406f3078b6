package game

type Suit string
type Rank string

const (
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
	Hearts   Suit = "♥"
	Spades   Suit = "♠"
)

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

var (
	suits = []Suit{Diamonds, Clubs, Hearts, Spades}
	ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
)

// Card is a single playing card. The zero Card is the dealer's hidden slot.
type Card struct {
	Number Rank `json:"number,omitempty"`
	Suit   Suit `json:"suit,omitempty"`
}

// Hidden is the placeholder occupying the dealer's second slot until the dealer plays.
var Hidden = Card{}

// IsHidden reports whether the card is the face-down placeholder
func (c Card) IsHidden() bool {
	return c.Number == ""
}

// String returns a short form like "A♠" or "?" for the hidden card
func (c Card) String() string {
	if c.IsHidden() {
		return "?"
	}
	return string(c.Number) + string(c.Suit)
}

// Value returns the blackjack value of a non-ace rank.
// Aces are resolved by Evaluate since they depend on the rest of the hand.
func (r Rank) Value() int {
	switch r {
	case Ten, Jack, Queen, King:
		return 10
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	default:
		return 0
	}
}
