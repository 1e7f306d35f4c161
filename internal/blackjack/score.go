package blackjack

import "github.com/lox/minicasino/internal/cards"

// Target is the best possible score; anything above it is bust
const Target = 21

// DealerStandsOn is the score at which the dealer stops drawing
const DealerStandsOn = 17

func cardValue(r cards.Rank) int {
	switch {
	case r == cards.Ace:
		return 11
	case r.IsFace():
		return 10
	default:
		return int(r)
	}
}

// evaluate returns the best total and how many aces still count as 11
func evaluate(hand []cards.Card) (total, softAces int) {
	for _, c := range hand {
		total += cardValue(c.Rank)
		if c.IsAce() {
			softAces++
		}
	}
	for total > Target && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// Score returns the blackjack value of a hand. Aces count 11 unless that
// would bust the hand, in which case as few aces as needed count 1.
func Score(hand []cards.Card) int {
	total, _ := evaluate(hand)
	return total
}

// IsSoft reports whether an ace in the hand is still counted as 11
func IsSoft(hand []cards.Card) bool {
	_, soft := evaluate(hand)
	return soft > 0
}

// IsNatural reports a two-card 21
func IsNatural(hand []cards.Card) bool {
	return len(hand) == 2 && Score(hand) == Target
}

// IsBust reports a total over 21 with no aces left to reduce
func IsBust(hand []cards.Card) bool {
	return Score(hand) > Target
}
