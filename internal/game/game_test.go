package game

import (
	"testing"
	"time"

	"github.com/lox/minicasino/internal/cards"
	"github.com/lox/minicasino/internal/settlement"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "player", PlayerTurn.String())
	assert.True(t, Idle.BetweenRounds())
	assert.True(t, Settled.BetweenRounds())
	assert.False(t, Dealing.BetweenRounds())
	assert.False(t, DealerTurn.BetweenRounds())
	assert.Equal(t, "baccarat-money", Baccarat.BalanceKey())
}

func TestNewHandViewHidesHoleCard(t *testing.T) {
	t.Parallel()

	hand := cards.Hand(cards.MustParseCards("9S 8H"))
	hv := NewHandView("Dealer", hand, 17, 1)

	require.Len(t, hv.Cards, 2)
	assert.False(t, hv.Cards[0].FaceDown)
	assert.True(t, hv.Cards[1].FaceDown)
	assert.Equal(t, cards.Card{}, hv.Cards[1].Card, "hidden card must not leak")
	assert.True(t, hv.ScoreHidden)
	assert.Equal(t, 0, hv.Score)
	assert.Equal(t, []string{"9S", "BACK"}, hv.IDs())

	open := NewHandView("Dealer", hand, 17, -1)
	assert.False(t, open.ScoreHidden)
	assert.Equal(t, 17, open.Score)
	assert.Equal(t, []string{"9S", "8H"}, open.IDs())
}

type countingSubscriber struct{ n int }

func (c *countingSubscriber) OnEvent(Event) { c.n++ }

func TestEventBus(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	rec := &Recorder{}
	counter := &countingSubscriber{}
	var seen []EventType

	bus.Subscribe(rec)
	bus.Subscribe(counter)
	bus.Subscribe(SubscriberFunc(func(ev Event) { seen = append(seen, ev.EventType()) }))

	now := time.Unix(0, 0)
	bus.Publish(NewRoundStartEvent(now, Snapshot{Game: Blackjack, RoundID: "r1"}))
	bus.Publish(NewPhaseChangeEvent(now, Snapshot{}, Dealing, PlayerTurn))

	assert.Equal(t, []EventType{EventTypeRoundStart, EventTypePhaseChange}, rec.Types())
	assert.Equal(t, rec.Types(), seen)
	assert.Equal(t, 2, counter.n)

	bus.Unsubscribe(counter)
	bus.Publish(NewPhaseChangeEvent(now, Snapshot{}, PlayerTurn, Settled))
	assert.Equal(t, 2, counter.n)
	assert.Len(t, rec.Events(), 3)

	rec.Reset()
	assert.Empty(t, rec.Events())
}

func TestCardDealtEventHidesFaceDownCard(t *testing.T) {
	ev := NewCardDealtEvent(time.Unix(0, 0), Snapshot{}, "Dealer", 1, cards.NewCard(cards.Ace, cards.Spades), true)
	assert.Equal(t, cards.Card{}, ev.Card)
	assert.True(t, ev.FaceDown)
}

func TestEventFormatter(t *testing.T) {
	t.Parallel()

	ef := NewEventFormatter(FormattingOptions{Profile: termenv.Ascii, ShowBalance: true})
	now := time.Unix(0, 0)
	ace := cards.NewCard(cards.Ace, cards.Spades)

	assert.Equal(t, "Player: A♠", ef.Format(NewCardDealtEvent(now, Snapshot{}, "Player", 0, ace, false)))
	assert.Equal(t, "Dealer: [hole card]", ef.Format(NewCardDealtEvent(now, Snapshot{}, "Dealer", 1, ace, true)))
	assert.Equal(t, "Dealer reveals A♠", ef.Format(NewHoleRevealedEvent(now, Snapshot{}, ace)))
	assert.Equal(t, "Bet $10 on BANKER", ef.Format(NewBetPlacedEvent(now, Snapshot{}, 10, "banker")))
	assert.Equal(t, "Bet $5", ef.Format(NewBetPlacedEvent(now, Snapshot{}, 5, "")))
	assert.Empty(t, ef.Format(NewPhaseChangeEvent(now, Snapshot{}, Idle, Dealing)))
	assert.Equal(t, "*** BLACKJACK round abcdefgh ***",
		ef.Format(NewRoundStartEvent(now, Snapshot{Game: Blackjack, RoundID: "0123abcdefgh"})))

	settled := NewRoundSettledEvent(now, Snapshot{Message: "You win (20 vs 18)"}, "player_win", settlement.Result{Balance: 1010})
	assert.Equal(t, "You win (20 vs 18) (balance $1010)", ef.Format(settled))

	hv := NewHandView("Dealer", cards.Hand(cards.MustParseCards("9S 8H")), 17, 1)
	assert.Equal(t, "[9♠ ??]", ef.FormatHand(hv))
	hv = NewHandView("Player", cards.Hand(cards.MustParseCards("AS KH")), 21, -1)
	assert.Equal(t, "[A♠ K♥] (21)", ef.FormatHand(hv))
}
