package game

// Bust is the highest count a hand can hold without losing.
const Bust = 21

// Hand is the ordered cards held by the dealer or the player, together
// with their cached count.
type Hand struct {
	Cards []Card `json:"cards"`
	Count int    `json:"count"`
}

// NewHand builds a hand from cards and computes its count
func NewHand(cards ...Card) Hand {
	cp := make([]Card, len(cards))
	copy(cp, cards)
	return Hand{Cards: cp, Count: Evaluate(cp)}
}

// With returns a new hand with card appended and the count recomputed.
func (h Hand) With(card Card) Hand {
	cards := make([]Card, 0, len(h.Cards)+1)
	cards = append(cards, h.Cards...)
	cards = append(cards, card)
	return Hand{Cards: cards, Count: Evaluate(cards)}
}

// Clone returns a deep copy of the hand
func (h Hand) Clone() Hand {
	return Hand{Cards: append([]Card(nil), h.Cards...), Count: h.Count}
}

// IsBust reports whether the hand counts more than 21
func (h Hand) IsBust() bool {
	return h.Count > Bust
}

// Evaluate returns the blackjack total of cards.
//
// Non-aces are summed first. Aces are then added one at a time in hand
// order, each counting 11 unless that would take the total past 21, in
// which case it counts 1. Hidden cards are ignored. Busts are not clamped.
func Evaluate(cards []Card) int {
	total := 0
	var aces []Card

	// First pass: everything except aces
	for _, card := range cards {
		switch {
		case card.IsHidden():
			continue
		case card.Number == Ace:
			aces = append(aces, card)
		default:
			total += card.Number.Value()
		}
	}

	// Second pass: each ace takes the highest value that keeps the total legal
	for range aces {
		if total+11 <= Bust {
			total += 11
		} else {
			total++
		}
	}

	return total
}
