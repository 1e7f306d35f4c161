// Package settlement applies wagers and payouts to a player's balance.
//
// A wager is debited from the wallet when the bet is placed. When the round
// settles, a winning bet returns the stake plus wager × multiplier, a push
// returns the stake, and a losing bet changes nothing further because the
// stake is already gone.
package settlement

import (
	"errors"
	"fmt"
)

// ErrInvalidWager is returned for non-positive wagers and wagers exceeding the balance
var ErrInvalidWager = errors.New("invalid wager")

// Wallet holds a non-negative balance. It is owned by a single table session.
type Wallet struct {
	balance int64
}

// NewWallet creates a wallet with the given starting balance. Negative
// balances are clamped to zero.
func NewWallet(balance int64) *Wallet {
	return &Wallet{balance: max(balance, 0)}
}

// Balance returns the current balance
func (w *Wallet) Balance() int64 {
	return w.balance
}

// ValidateWager checks 0 < wager ≤ balance without changing anything
func (w *Wallet) ValidateWager(wager int64) error {
	if wager <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidWager, wager)
	}
	if wager > w.balance {
		return fmt.Errorf("%w: %d exceeds balance %d", ErrInvalidWager, wager, w.balance)
	}
	return nil
}

// Debit removes a validated wager from the balance
func (w *Wallet) Debit(wager int64) error {
	if err := w.ValidateWager(wager); err != nil {
		return err
	}
	w.balance -= wager
	return nil
}

// Credit adds a non-negative amount to the balance
func (w *Wallet) Credit(amount int64) {
	if amount <= 0 {
		return
	}
	w.balance += amount
}

// Multiplier is an exact payout ratio. Payouts are truncated to whole units.
type Multiplier struct {
	Num int64
	Den int64
}

// Ratio returns a multiplier of num/den
func Ratio(num, den int64) Multiplier {
	if den <= 0 {
		panic("multiplier denominator must be positive")
	}
	return Multiplier{Num: num, Den: den}
}

// Payout returns floor(wager × Num / Den)
func (m Multiplier) Payout(wager int64) int64 {
	if wager <= 0 || m.Num <= 0 {
		return 0
	}
	return wager * m.Num / m.Den
}

// String returns the ratio as "num:den"
func (m Multiplier) String() string {
	return fmt.Sprintf("%d:%d", m.Num, m.Den)
}

// Resolution is how a wager ended
type Resolution int

const (
	Loss Resolution = iota
	Win
	Push
)

func (r Resolution) String() string {
	switch r {
	case Win:
		return "win"
	case Push:
		return "push"
	default:
		return "loss"
	}
}

// Result describes a settled wager
type Result struct {
	Resolution Resolution
	Wager      int64
	Winnings   int64 // wager × multiplier on a win
	Payout     int64 // Amount credited to the wallet: stake plus winnings, the stake on a push, zero on a loss
	Balance    int64 // Balance after settlement
}

// Won reports whether the bet won
func (r Result) Won() bool {
	return r.Resolution == Win
}

// Net returns the change in balance over the whole round, stake included
func (r Result) Net() int64 {
	return r.Payout - r.Wager
}

// Settle credits the wallet according to how the wager ended and reports the
// result. Callers must invoke it exactly once per round.
func Settle(w *Wallet, wager int64, res Resolution, m Multiplier) Result {
	out := Result{Resolution: res, Wager: wager}
	switch res {
	case Win:
		out.Winnings = m.Payout(wager)
		out.Payout = wager + out.Winnings
	case Push:
		out.Payout = wager
	}
	w.Credit(out.Payout)
	out.Balance = w.Balance()
	return out
}
