package baccarat

import (
	"fmt"

	"github.com/lox/minicasino/internal/cards"
	"github.com/lox/minicasino/internal/game"
)

// Seat names used in events and snapshots
const (
	PlayerSeat = game.PlayerSeat
	BankerSeat = "Banker"
)

// Listener observes a round as it is dealt. Callbacks run after the round
// state has been updated.
type Listener interface {
	OnCard(seat string, index int, c cards.Card)
	OnPhase(from, to game.Phase)
}

type nopListener struct{}

func (nopListener) OnCard(string, int, cards.Card)  {}
func (nopListener) OnPhase(game.Phase, game.Phase) {}

// Round is one coup: Idle → Dealing → Settled with no decisions in between
type Round struct {
	deck       *cards.Deck
	listener   Listener
	phase      game.Phase
	player     cards.Hand
	banker     cards.Hand
	playerDrew bool
	bankerDrew bool
	winner     Side
}

// NewRound creates an idle round drawing from deck. A nil listener is allowed.
func NewRound(deck *cards.Deck, l Listener) *Round {
	if deck == nil {
		panic("deck is required for a round")
	}
	if l == nil {
		l = nopListener{}
	}
	return &Round{deck: deck, listener: l, phase: game.Idle}
}

// Phase returns the current phase
func (r *Round) Phase() game.Phase { return r.phase }

// Player returns a copy of the Player hand
func (r *Round) Player() cards.Hand { return r.player.Clone() }

// Banker returns a copy of the Banker hand
func (r *Round) Banker() cards.Hand { return r.banker.Clone() }

// PlayerDrew reports whether the Player took a third card
func (r *Round) PlayerDrew() bool { return r.playerDrew }

// BankerDrew reports whether the Banker took a third card
func (r *Round) BankerDrew() bool { return r.bankerDrew }

// Winner returns the winning side. Only meaningful once Settled.
func (r *Round) Winner() Side { return r.winner }

// PlayerView returns the Player hand as shown at the table
func (r *Round) PlayerView() game.HandView {
	return game.NewHandView(PlayerSeat, r.player, Score(r.player), -1)
}

// BankerView returns the Banker hand as shown at the table
func (r *Round) BankerView() game.HandView {
	return game.NewHandView(BankerSeat, r.banker, Score(r.banker), -1)
}

// Play deals the whole coup: P, B, P, B, then third cards by the tableau.
func (r *Round) Play() error {
	if r.phase != game.Idle {
		return fmt.Errorf("%w: deal in %s", game.ErrInvalidAction, r.phase)
	}
	r.setPhase(game.Dealing)

	for range 2 {
		r.deal(PlayerSeat, &r.player)
		r.deal(BankerSeat, &r.banker)
	}

	if PlayerDraws(Score(r.player)) {
		r.deal(PlayerSeat, &r.player)
		r.playerDrew = true
	}

	if len(r.banker) == 2 && BankerDraws(Score(r.banker), Score(r.player), r.playerDrew) {
		r.deal(BankerSeat, &r.banker)
		r.bankerDrew = true
	}

	r.winner = Winner(Score(r.player), Score(r.banker))
	r.setPhase(game.Settled)
	return nil
}

func (r *Round) deal(seat string, hand *cards.Hand) {
	c := r.deck.MustDraw()
	hand.Add(c)
	r.listener.OnCard(seat, hand.Len()-1, c)
}

func (r *Round) setPhase(p game.Phase) {
	from := r.phase
	r.phase = p
	r.listener.OnPhase(from, p)
}
