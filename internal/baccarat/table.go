package baccarat

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/lox/minicasino/internal/cards"
	"github.com/lox/minicasino/internal/game"
	"github.com/lox/minicasino/internal/settlement"
	"github.com/lox/minicasino/internal/store"
)

// Table status lines
const (
	MessageIdle    = "Baccarat - Place your bet!"
	MessageDealing = "Dealing cards..."
)

// Table is a single-player baccarat session, driven from one goroutine
type Table struct {
	session *game.Session
	round   *Round
	roundID string
	side    Side
	message string
	result  settlement.Result
}

// NewTable creates a table with the given starting balance
func NewTable(rng *rand.Rand, balance int64, opts ...game.Option) *Table {
	t := &Table{
		session: game.NewSession(game.Baccarat, rng, balance, opts...),
		message: MessageIdle,
	}
	t.session.Logger().Debug("Baccarat table ready", "balance", balance)
	return t
}

// Bus returns the table's event bus
func (t *Table) Bus() game.EventBus { return t.session.Bus() }

// Balance returns the current balance
func (t *Table) Balance() int64 { return t.session.Balance() }

// Session returns the table's session state
func (t *Table) Session() *game.Session { return t.session }

// Round returns the last round, nil before the first coup or after Reset
func (t *Table) Round() *Round { return t.round }

// Phase returns the phase of the current round, Idle when there is none
func (t *Table) Phase() game.Phase {
	if t.round == nil {
		return game.Idle
	}
	return t.round.Phase()
}

// PlaceBet stakes amount on side for the next coup. Placing again before
// dealing replaces the earlier stake.
func (t *Table) PlaceBet(ctx context.Context, amount int64, side Side) error {
	if phase := t.Phase(); !phase.BetweenRounds() {
		return fmt.Errorf("%w: bet during %s", game.ErrInvalidAction, phase)
	}
	if err := t.session.Stake(ctx, amount, side.String()); err != nil {
		return err
	}
	t.side = side
	t.session.Publish(game.NewBetPlacedEvent(t.session.Now(), t.Snapshot(), amount, side.String()))
	return nil
}

// StartRound deals a complete coup and settles it before returning
func (t *Table) StartRound(ctx context.Context) error {
	if phase := t.Phase(); !phase.BetweenRounds() {
		return fmt.Errorf("%w: round in progress (%s)", game.ErrInvalidAction, phase)
	}
	if t.session.Wager() == 0 {
		return fmt.Errorf("%w: no bet placed", game.ErrInvalidAction)
	}

	t.roundID = t.session.NewRoundID()
	t.result = settlement.Result{}
	t.message = MessageDealing
	t.round = NewRound(t.session.NewDeck(), t)

	t.session.Logger().Info("Round started",
		"round", t.roundID,
		"wager", t.session.Wager(),
		"side", t.side)
	t.session.Publish(game.NewRoundStartEvent(t.session.Now(), t.Snapshot()))

	if err := t.round.Play(); err != nil {
		return err
	}
	t.settle(ctx)
	return nil
}

// Reset clears the finished coup and invites the next bet
func (t *Table) Reset() {
	if !t.Phase().BetweenRounds() {
		return
	}
	from := t.Phase()
	t.round = nil
	t.roundID = ""
	t.message = MessageIdle
	t.result = settlement.Result{}
	if from != game.Idle {
		t.session.Publish(game.NewPhaseChangeEvent(t.session.Now(), t.Snapshot(), from, game.Idle))
	}
}

// Snapshot returns the table state as shown to the player
func (t *Table) Snapshot() game.Snapshot {
	s := game.Snapshot{
		Game:    game.Baccarat,
		RoundID: t.roundID,
		Phase:   t.Phase(),
		Player:  game.HandView{Name: PlayerSeat},
		Dealer:  game.HandView{Name: BankerSeat},
		Message: t.message,
		Balance: t.session.Balance(),
		Wager:   t.session.Wager(),
	}
	if s.Wager > 0 || t.round != nil {
		s.Bet = t.side.String()
	}
	if t.round != nil {
		s.Player = t.round.PlayerView()
		s.Dealer = t.round.BankerView()
		if t.result.Wager > 0 {
			s.Outcome = t.round.Winner().String()
			s.Wager = t.result.Wager
			s.Payout = t.result.Payout
		}
	}
	return s
}

// OnCard publishes a card dealt by the round
func (t *Table) OnCard(seat string, index int, c cards.Card) {
	t.session.Publish(game.NewCardDealtEvent(t.session.Now(), t.Snapshot(), seat, index, c, false))
}

// OnPhase publishes phase changes
func (t *Table) OnPhase(from, to game.Phase) {
	t.session.Publish(game.NewPhaseChangeEvent(t.session.Now(), t.Snapshot(), from, to))
}

func (t *Table) settle(ctx context.Context) {
	winner := t.round.Winner()
	wager := t.session.Wager()
	resolution := settlement.Loss
	if winner == t.side {
		resolution = settlement.Win
	}

	t.result = t.session.Settle(ctx, store.RoundRecord{
		ID:      t.roundID,
		Outcome: winner.String(),
		Player:  t.round.Player().IDs(),
		Dealer:  t.round.Banker().IDs(),
	}, resolution, t.side.Multiplier())

	if t.result.Won() {
		t.message = fmt.Sprintf("%s wins! You win $%d", winner.Label(), t.result.Winnings)
	} else {
		t.message = fmt.Sprintf("%s wins! You lose $%d", winner.Label(), wager)
	}

	t.session.Publish(game.NewRoundSettledEvent(t.session.Now(), t.Snapshot(), winner.String(), t.result))
}
