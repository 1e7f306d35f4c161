// Package baccarat implements punto banco: mod-10 scoring, the fixed third
// card tableau and a single-player table.
package baccarat

import "github.com/lox/minicasino/internal/cards"

// PlayerStandsOn is the lowest two-card Player score that does not draw
const PlayerStandsOn = 6

func cardValue(r cards.Rank) int {
	if r.IsFace() || r == cards.Ten {
		return 0
	}
	return int(r)
}

// Score returns the baccarat value of a hand: aces 1, tens and faces 0,
// numerals face value, summed mod 10
func Score(hand []cards.Card) int {
	total := 0
	for _, c := range hand {
		total += cardValue(c.Rank)
	}
	return total % 10
}

// IsNatural reports a two-card 8 or 9
func IsNatural(hand []cards.Card) bool {
	if len(hand) != 2 {
		return false
	}
	s := Score(hand)
	return s == 8 || s == 9
}

// PlayerDraws reports whether the Player takes a third card on a two-card score
func PlayerDraws(playerScore int) bool {
	return playerScore < PlayerStandsOn
}

// BankerDraws applies the tableau to the Banker's two-card score and the
// Player's final score. playerDrew reports whether the Player took a third
// card.
func BankerDraws(bankerScore, playerFinal int, playerDrew bool) bool {
	switch bankerScore {
	case 0, 1, 2:
		return true
	case 3:
		return playerFinal != 8
	case 4:
		switch playerFinal {
		case 0, 1, 2, 3, 4, 5, 6, 9:
			return true
		}
		return false
	case 5:
		return playerFinal >= 4 && playerFinal <= 7
	case 6:
		return playerDrew && (playerFinal == 6 || playerFinal == 7)
	default:
		return false
	}
}
