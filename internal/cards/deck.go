package cards

import (
	"errors"
	rand "math/rand/v2"
)

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

// ErrDeckExhausted is returned when drawing from an empty deck. The round
// shapes never need more than a fraction of a deck, so hitting this is a bug.
var ErrDeckExhausted = errors.New("deck exhausted")

// Build returns all 52 cards in canonical order: every rank of Spades, then
// Hearts, Diamonds and Clubs.
func Build() []Card {
	out := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			out = append(out, NewCard(rank, suit))
		}
	}
	return out
}

// Deck is a sequence of cards consumed from its end
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a new shuffled 52-card deck. The RNG is required so that
// shuffles are reproducible under a fixed seed.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}
	d := &Deck{cards: Build(), rng: rng}
	d.Shuffle()
	return d
}

// NewStackedDeck creates a deck that yields the given cards in order: the
// first argument is the first card drawn.
func NewStackedDeck(draws ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(draws))}
	for i, c := range draws {
		d.cards[len(draws)-1-i] = c
	}
	return d
}

// Shuffle randomizes the remaining cards in place using Fisher-Yates
func (d *Deck) Shuffle() {
	if d.rng == nil {
		return
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card (the end of the sequence)
func (d *Deck) Draw() (Card, error) {
	n := len(d.cards)
	if n == 0 {
		return Card{}, ErrDeckExhausted
	}
	c := d.cards[n-1]
	d.cards = d.cards[:n-1]
	return c, nil
}

// MustDraw is like Draw but panics when the deck is empty
func (d *Deck) MustDraw() Card {
	c, err := d.Draw()
	if err != nil {
		panic(err)
	}
	return c
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, top card last
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
