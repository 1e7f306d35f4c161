// Package autoplay drives tables without a human: simple blackjack
// strategies, baccarat side pickers and runners that play rounds back to back.
package autoplay

import (
	"math/rand/v2"

	"github.com/lox/minicasino/internal/blackjack"
	"github.com/lox/minicasino/internal/cards"
)

// Action is a blackjack decision
type Action int

const (
	Stand Action = iota
	Hit
)

func (a Action) String() string {
	if a == Hit {
		return "hit"
	}
	return "stand"
}

// Strategy decides blackjack actions from the player's hand and the dealer's
// up card
type Strategy interface {
	Name() string
	Decide(player cards.Hand, upCard cards.Card) Action
}

// MimicDealer hits below 17 like the house does
type MimicDealer struct{}

func (MimicDealer) Name() string { return "mimic" }

func (MimicDealer) Decide(player cards.Hand, _ cards.Card) Action {
	if blackjack.Score(player) < blackjack.DealerStandsOn {
		return Hit
	}
	return Stand
}

// Basic plays the hit/stand part of basic strategy. The table offers no
// doubling or splitting, so those cells fall back to hitting.
type Basic struct{}

func (Basic) Name() string { return "basic" }

func (Basic) Decide(player cards.Hand, upCard cards.Card) Action {
	score := blackjack.Score(player)
	up := upValue(upCard)

	if blackjack.IsSoft(player) {
		switch {
		case score >= 19:
			return Stand
		case score == 18:
			if up >= 9 {
				return Hit
			}
			return Stand
		default:
			return Hit
		}
	}

	switch {
	case score >= 17:
		return Stand
	case score >= 13:
		if up <= 6 {
			return Stand
		}
		return Hit
	case score == 12:
		if up >= 4 && up <= 6 {
			return Stand
		}
		return Hit
	default:
		return Hit
	}
}

// upValue counts the dealer's up card with aces high
func upValue(c cards.Card) int {
	return blackjack.Score([]cards.Card{c})
}

// Random hits or stands with equal odds until 21
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a random strategy drawing from rng
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		panic("rng is required")
	}
	return &Random{rng: rng}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Decide(player cards.Hand, _ cards.Card) Action {
	if blackjack.Score(player) >= blackjack.Target {
		return Stand
	}
	if r.rng.IntN(2) == 0 {
		return Hit
	}
	return Stand
}
