package baccarat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/minicasino/internal/settlement"
)

// ErrUnknownSide is returned by ParseSide for anything but player, banker or tie
var ErrUnknownSide = errors.New("unknown bet side")

// Side is what a bet is placed on, and also which hand won a round
type Side int

const (
	Player Side = iota
	Banker
	Tie
)

// Sides lists every side in display order
var Sides = [...]Side{Player, Banker, Tie}

func (s Side) String() string {
	switch s {
	case Player:
		return "player"
	case Banker:
		return "banker"
	case Tie:
		return "tie"
	default:
		return "unknown"
	}
}

// Label returns the upper-case name used in table messages
func (s Side) Label() string {
	return strings.ToUpper(s.String())
}

// Winnings ratios for a winning bet, paid together with the returned stake
var (
	PlayerPayout = settlement.Ratio(1, 1)
	BankerPayout = settlement.Ratio(19, 20)
	TiePayout    = settlement.Ratio(8, 1)
)

// Multiplier returns the payout ratio for a winning bet on s
func (s Side) Multiplier() settlement.Multiplier {
	switch s {
	case Banker:
		return BankerPayout
	case Tie:
		return TiePayout
	default:
		return PlayerPayout
	}
}

// ParseSide accepts a side name or its first letter, in any case
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "player", "p", "punto":
		return Player, nil
	case "banker", "b", "banco":
		return Banker, nil
	case "tie", "t":
		return Tie, nil
	default:
		return Player, fmt.Errorf("%w %q", ErrUnknownSide, v)
	}
}

// Winner compares final scores
func Winner(playerScore, bankerScore int) Side {
	switch {
	case playerScore > bankerScore:
		return Player
	case bankerScore > playerScore:
		return Banker
	default:
		return Tie
	}
}
