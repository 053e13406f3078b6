package game

import (
	"errors"
	"math/rand"
	"sync"
)

// ReshuffleThreshold is the remaining-card count below which a continued
// round starts from a fresh deck.
const ReshuffleThreshold = 10

// ErrEmptyDeck is returned when a card is requested from a deck with nothing left.
var ErrEmptyDeck = errors.New("deck is empty")

// Source supplies the randomness used to pick cards. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Deck holds the undealt cards. Order carries no meaning; Draw picks at random.
// A Deck is treated as an immutable value: Draw returns a new Deck.
type Deck []Card

// NewDeck creates a new standard 52-card deck
func NewDeck() Deck {
	deck := make(Deck, 0, len(ranks)*len(suits))
	for _, rank := range ranks {
		for _, suit := range suits {
			deck = append(deck, Card{Number: rank, Suit: suit})
		}
	}
	return deck
}

// Draw removes one card chosen uniformly at random and returns it along
// with the remaining deck. The receiver's backing array is left untouched.
func Draw(deck Deck, rng Source) (Card, Deck, error) {
	if len(deck) == 0 {
		return Card{}, deck, ErrEmptyDeck
	}

	i := rng.Intn(len(deck))
	card := deck[i]

	rest := make(Deck, 0, len(deck)-1)
	rest = append(rest, deck[:i]...)
	rest = append(rest, deck[i+1:]...)
	return card, rest, nil
}

// Remaining returns the number of cards left in the deck
func (d Deck) Remaining() int {
	return len(d)
}

// Clone returns a copy that shares no memory with d
func (d Deck) Clone() Deck {
	if d == nil {
		return nil
	}
	out := make(Deck, len(d))
	copy(out, d)
	return out
}

// lockedSource serialises access to a *rand.Rand, which is not safe for
// concurrent use on its own.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedSource returns a goroutine-safe Source seeded with seed
func NewLockedSource(seed int64) Source {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
