package game

import "errors"

// ErrInvalidAction is returned when an intent is not allowed in the current phase
var ErrInvalidAction = errors.New("action not allowed in current phase")

// Phase is the live state of a table's round
type Phase int

const (
	Idle Phase = iota
	Dealing
	PlayerTurn
	DealerTurn
	Settled
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dealing:
		return "dealing"
	case PlayerTurn:
		return "player"
	case DealerTurn:
		return "dealer"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// BetweenRounds reports whether a new round may be started from this phase
func (p Phase) BetweenRounds() bool {
	return p == Idle || p == Settled
}

// Kind identifies which game a snapshot or record belongs to
type Kind string

const (
	Blackjack Kind = "blackjack"
	Baccarat  Kind = "baccarat"
)

func (k Kind) String() string {
	return string(k)
}

// BalanceKey returns the store key under which the game's balance is kept
func (k Kind) BalanceKey() string {
	return string(k) + "-money"
}
