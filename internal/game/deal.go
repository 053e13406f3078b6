package game

import "fmt"

// DealOpeningHands deals the opening cards in the fixed order player,
// dealer, player. The dealer's second slot is left Hidden so its count
// only reflects the exposed card.
func DealOpeningHands(deck Deck, rng Source) (player, dealer Hand, rest Deck, err error) {
	playerCard1, rest, err := Draw(deck, rng)
	if err != nil {
		return Hand{}, Hand{}, deck, fmt.Errorf("deal player card: %w", err)
	}
	dealerCard1, rest, err := Draw(rest, rng)
	if err != nil {
		return Hand{}, Hand{}, deck, fmt.Errorf("deal dealer card: %w", err)
	}
	playerCard2, rest, err := Draw(rest, rng)
	if err != nil {
		return Hand{}, Hand{}, deck, fmt.Errorf("deal player card: %w", err)
	}

	player = NewHand(playerCard1, playerCard2)
	dealer = NewHand(dealerCard1, Hidden)
	return player, dealer, rest, nil
}

// DealOneCard draws a single card onto hand
func DealOneCard(deck Deck, hand Hand, rng Source) (Hand, Deck, error) {
	card, rest, err := Draw(deck, rng)
	if err != nil {
		return hand, deck, err
	}
	return hand.With(card), rest, nil
}
