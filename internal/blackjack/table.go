package blackjack

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/lox/minicasino/internal/cards"
	"github.com/lox/minicasino/internal/game"
	"github.com/lox/minicasino/internal/settlement"
	"github.com/lox/minicasino/internal/store"
)

// Table is a single-player blackjack session. It is driven from one
// goroutine; events are published synchronously on that goroutine.
type Table struct {
	session *game.Session
	round   *Round
	roundID string
	message string
	settled bool
	result  settlement.Result
}

// NewTable creates a table with the given starting balance
func NewTable(rng *rand.Rand, balance int64, opts ...game.Option) *Table {
	t := &Table{session: game.NewSession(game.Blackjack, rng, balance, opts...)}
	t.session.Logger().Debug("Blackjack table ready", "balance", balance)
	return t
}

// Bus returns the table's event bus
func (t *Table) Bus() game.EventBus { return t.session.Bus() }

// Balance returns the current balance
func (t *Table) Balance() int64 { return t.session.Balance() }

// Session returns the table's session state
func (t *Table) Session() *game.Session { return t.session }

// Round returns the live or last round, nil before the first deal
func (t *Table) Round() *Round { return t.round }

// Phase returns the phase of the live round, Idle before the first deal
func (t *Table) Phase() game.Phase {
	if t.round == nil {
		return game.Idle
	}
	return t.round.Phase()
}

// PlaceBet stakes amount on the next round. Placing again before dealing
// replaces the earlier stake.
func (t *Table) PlaceBet(ctx context.Context, amount int64) error {
	if phase := t.Phase(); !phase.BetweenRounds() {
		return fmt.Errorf("%w: bet during %s", game.ErrInvalidAction, phase)
	}
	if err := t.session.Stake(ctx, amount, ""); err != nil {
		return err
	}
	t.message = fmt.Sprintf("Bet $%d - Deal when ready", amount)
	t.session.Publish(game.NewBetPlacedEvent(t.session.Now(), t.Snapshot(), amount, ""))
	return nil
}

// StartRound shuffles a fresh deck and deals. A round that ends on a
// natural is settled before StartRound returns.
func (t *Table) StartRound(ctx context.Context) error {
	if phase := t.Phase(); !phase.BetweenRounds() {
		return fmt.Errorf("%w: round in progress (%s)", game.ErrInvalidAction, phase)
	}
	if t.session.Wager() == 0 {
		return fmt.Errorf("%w: no bet placed", game.ErrInvalidAction)
	}

	t.roundID = t.session.NewRoundID()
	t.result = settlement.Result{}
	t.settled = false
	t.message = ""
	t.round = NewRound(t.session.NewDeck(), t)

	t.session.Logger().Info("Round started", "round", t.roundID, "wager", t.session.Wager())
	t.session.Publish(game.NewRoundStartEvent(t.session.Now(), t.Snapshot()))

	if err := t.round.Deal(); err != nil {
		return err
	}
	t.settle(ctx)
	return nil
}

// Hit draws a card for the player. It reports false outside the player's turn.
func (t *Table) Hit(ctx context.Context) bool {
	if t.round == nil || t.round.Phase() != game.PlayerTurn {
		t.session.Logger().Debug("Ignoring hit", "phase", t.Phase())
		return false
	}
	t.round.Hit()
	t.settle(ctx)
	return true
}

// Stand ends the player's turn. It reports false outside the player's turn.
func (t *Table) Stand(ctx context.Context) bool {
	if t.round == nil || t.round.Phase() != game.PlayerTurn {
		t.session.Logger().Debug("Ignoring stand", "phase", t.Phase())
		return false
	}
	t.round.Stand()
	t.settle(ctx)
	return true
}

// Snapshot returns the table state as shown to the player
func (t *Table) Snapshot() game.Snapshot {
	s := game.Snapshot{
		Game:    game.Blackjack,
		RoundID: t.roundID,
		Phase:   t.Phase(),
		Player:  game.HandView{Name: PlayerSeat},
		Dealer:  game.HandView{Name: DealerSeat},
		Message: t.message,
		Balance: t.session.Balance(),
		Wager:   t.session.Wager(),
	}
	if t.round != nil {
		s.Player = t.round.PlayerView()
		s.Dealer = t.round.DealerView()
		if t.settled {
			s.Outcome = t.round.Outcome().String()
			s.Wager = t.result.Wager
			s.Payout = t.result.Payout
		}
	}
	return s
}

// OnCard publishes a card dealt by the round
func (t *Table) OnCard(seat string, index int, c cards.Card, faceDown bool) {
	t.session.Publish(game.NewCardDealtEvent(t.session.Now(), t.Snapshot(), seat, index, c, faceDown))
}

// OnReveal publishes the dealer's hole card being turned
func (t *Table) OnReveal(c cards.Card) {
	t.session.Publish(game.NewHoleRevealedEvent(t.session.Now(), t.Snapshot(), c))
}

// OnPhase publishes phase changes
func (t *Table) OnPhase(from, to game.Phase) {
	t.session.Publish(game.NewPhaseChangeEvent(t.session.Now(), t.Snapshot(), from, to))
}

// settle pays out a finished round exactly once
func (t *Table) settle(ctx context.Context) {
	if t.settled || t.round.Phase() != game.Settled {
		return
	}
	t.settled = true

	outcome := t.round.Outcome()
	t.message = t.round.Message()
	t.result = t.session.Settle(ctx, store.RoundRecord{
		ID:      t.roundID,
		Outcome: outcome.String(),
		Player:  t.round.Player().IDs(),
		Dealer:  t.round.Dealer().IDs(),
	}, outcome.Resolution(), outcome.Multiplier())

	t.session.Publish(game.NewRoundSettledEvent(t.session.Now(), t.Snapshot(), outcome.String(), t.result))
}
