package game

import "fmt"

// DealerStandsAt is the count at which the dealer stops drawing.
const DealerStandsAt = 17

// PlayDealer reveals the dealer's hole card and then draws until the
// count reaches DealerStandsAt or more. The hole card is taken from the
// remaining deck at reveal time; since every draw is uniform over the
// undealt cards this is equivalent to having drawn it at the opening deal.
func PlayDealer(dealer Hand, deck Deck, rng Source) (Hand, Deck, error) {
	cards := make([]Card, 0, len(dealer.Cards)+2)
	for _, card := range dealer.Cards {
		if !card.IsHidden() {
			cards = append(cards, card)
		}
	}
	hand := NewHand(cards...)

	// Reveal the hole card. A hand that never had a hidden slot is left as is.
	if len(cards) < len(dealer.Cards) {
		var err error
		hand, deck, err = DealOneCard(deck, hand, rng)
		if err != nil {
			return dealer, deck, fmt.Errorf("reveal hole card: %w", err)
		}
	}

	for hand.Count < DealerStandsAt {
		var err error
		hand, deck, err = DealOneCard(deck, hand, rng)
		if err != nil {
			return dealer, deck, fmt.Errorf("dealer draw: %w", err)
		}
	}

	return hand, deck, nil
}
