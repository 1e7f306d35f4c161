package cards

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in canonical deck order
var Suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the suit symbol
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Letter returns the single-letter suit code used in card identifiers
func (s Suit) Letter() string {
	switch s {
	case Spades:
		return "S"
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	default:
		return "?"
	}
}

// Name returns the lower-case suit name
func (s Suit) Name() string {
	switch s {
	case Spades:
		return "spades"
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	default:
		return "unknown"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. Aces are low; games decide what an Ace is worth.
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists every rank in canonical deck order
var Ranks = [...]Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// String returns the rank as printed on the card face
func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		if r >= Two && r <= Ten {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// Name returns the rank name used for card face assets
func (r Rank) Name() string {
	switch r {
	case Ace:
		return "ace"
	case Jack:
		return "jack"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return r.String()
	}
}

// IsFace returns true for Jack, Queen and King
func (r Rank) IsFace() bool {
	return r >= Jack && r <= King
}

// Card represents a playing card. The zero value is not a valid card and is
// used by snapshots for face-down cards.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the display form of a card (e.g., "A♠", "10♥")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// ID returns the canonical identifier of a card (e.g., "AS", "10H").
// Presentation layers key their visuals on this value.
func (c Card) ID() string {
	return c.Rank.String() + c.Suit.Letter()
}

// FaceName returns the asset name for the card face (e.g., "ace_of_spades").
func (c Card) FaceName() string {
	return c.Rank.Name() + "_of_" + c.Suit.Name()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsValid reports whether the card is one of the 52 real cards
func (c Card) IsValid() bool {
	return c.Rank >= Ace && c.Rank <= King && c.Suit >= Spades && c.Suit <= Clubs
}

// ParseCard parses a card identifier such as "AS", "10h" or "Td".
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	rankPart, suitPart := s[:len(s)-1], s[len(s)-1:]

	var suit Suit
	switch suitPart {
	case "S":
		suit = Spades
	case "H":
		suit = Hearts
	case "D":
		suit = Diamonds
	case "C":
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}

	var rank Rank
	switch rankPart {
	case "A":
		rank = Ace
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "T", "10":
		rank = Ten
	case "2", "3", "4", "5", "6", "7", "8", "9":
		rank = Rank(rankPart[0] - '0')
	default:
		return Card{}, fmt.Errorf("invalid rank in card %q", s)
	}

	return NewCard(rank, suit), nil
}

// ParseCards parses a whitespace or comma separated list of card identifiers.
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests.
func MustParseCards(s string) []Card {
	out, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return out
}

// Hand is an ordered sequence of cards held by one participant. Hands only
// ever grow; scores are always derived from the cards.
type Hand []Card

// Add appends a card to the hand
func (h *Hand) Add(c Card) {
	*h = append(*h, c)
}

// Len returns the number of cards in the hand
func (h Hand) Len() int {
	return len(h)
}

// Clone returns a copy that shares no storage with h
func (h Hand) Clone() Hand {
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// String returns the cards joined by spaces
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// IDs returns the canonical identifiers of the cards in order
func (h Hand) IDs() []string {
	out := make([]string, len(h))
	for i, c := range h {
		out[i] = c.ID()
	}
	return out
}
