package game

// topSource always picks the first remaining card, so tests can lay out a
// deck in exactly the order it will be dealt.
type topSource struct{}

func (topSource) Intn(int) int { return 0 }

func card(rank Rank) Card {
	return Card{Number: rank, Suit: Spades}
}

func cards(rs ...Rank) []Card {
	out := make([]Card, len(rs))
	for i, r := range rs {
		out[i] = Card{Number: r, Suit: suits[i%len(suits)]}
	}
	return out
}

// stackedDeck returns a deck that deals rs in order under topSource
func stackedDeck(rs ...Rank) Deck {
	return Deck(cards(rs...))
}
