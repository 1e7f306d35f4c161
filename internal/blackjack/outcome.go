package blackjack

import "github.com/lox/minicasino/internal/settlement"

// Outcome is the result of a blackjack round from the player's side
type Outcome int

const (
	Pending Outcome = iota
	PlayerNatural
	DealerNatural
	BothNatural
	PlayerBust
	DealerBust
	PlayerWin
	DealerWin
	Push
)

// String returns the outcome name used in logs and the round ledger
func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case PlayerNatural:
		return "player_natural"
	case DealerNatural:
		return "dealer_natural"
	case BothNatural:
		return "both_natural"
	case PlayerBust:
		return "player_bust"
	case DealerBust:
		return "dealer_bust"
	case PlayerWin:
		return "player_win"
	case DealerWin:
		return "dealer_win"
	case Push:
		return "push"
	default:
		return "unknown"
	}
}

// Winnings ratios. A win also returns the stake, debited when the bet was
// placed.
var (
	WinPayout     = settlement.Ratio(1, 1)
	NaturalPayout = settlement.Ratio(3, 2)
)

// Resolution maps the outcome onto the wager
func (o Outcome) Resolution() settlement.Resolution {
	switch {
	case o.IsWin():
		return settlement.Win
	case o.IsPush():
		return settlement.Push
	default:
		return settlement.Loss
	}
}

// Multiplier returns the winnings ratio for the outcome
func (o Outcome) Multiplier() settlement.Multiplier {
	if o == PlayerNatural {
		return NaturalPayout
	}
	return WinPayout
}

// IsWin reports outcomes where the player beats the dealer
func (o Outcome) IsWin() bool {
	return o == PlayerNatural || o == DealerBust || o == PlayerWin
}

// IsPush reports tied outcomes
func (o Outcome) IsPush() bool {
	return o == Push || o == BothNatural
}
