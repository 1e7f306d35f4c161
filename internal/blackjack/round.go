package blackjack

import (
	"fmt"

	"github.com/lox/minicasino/internal/cards"
	"github.com/lox/minicasino/internal/game"
)

// Seat names used in events and snapshots
const (
	PlayerSeat = game.PlayerSeat
	DealerSeat = "Dealer"
)

// holeIndex is the dealer's face-down card: the second one dealt
const holeIndex = 1

// Listener observes a round as it progresses. Callbacks run after the round
// state has been updated, so a listener may snapshot the round.
type Listener interface {
	OnCard(seat string, index int, c cards.Card, faceDown bool)
	OnReveal(c cards.Card)
	OnPhase(from, to game.Phase)
}

type nopListener struct{}

func (nopListener) OnCard(string, int, cards.Card, bool) {}
func (nopListener) OnReveal(cards.Card)                  {}
func (nopListener) OnPhase(game.Phase, game.Phase)       {}

// Round is a single blackjack round: Idle → Dealing → PlayerTurn →
// DealerTurn → Settled, with the natural and bust shortcuts to Settled.
// A round owns its deck and hands; nothing else mutates them.
type Round struct {
	deck       *cards.Deck
	listener   Listener
	phase      game.Phase
	player     cards.Hand
	dealer     cards.Hand
	holeHidden bool
	outcome    Outcome
	message    string
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

// Player returns a copy of the player's hand
func (r *Round) Player() cards.Hand { return r.player.Clone() }

// Dealer returns a copy of the dealer's hand, hole card included
func (r *Round) Dealer() cards.Hand { return r.dealer.Clone() }

// HoleHidden reports whether the dealer's second card is still face down.
// A settled round shows every card.
func (r *Round) HoleHidden() bool { return r.holeHidden && r.phase != game.Settled }

// Outcome returns the result, Pending until the round is settled
func (r *Round) Outcome() Outcome { return r.outcome }

// Message returns the human-readable status line
func (r *Round) Message() string { return r.message }

// PlayerView returns the player's hand as shown to the player
func (r *Round) PlayerView() game.HandView {
	return game.NewHandView(PlayerSeat, r.player, Score(r.player), -1)
}

// DealerView returns the dealer's hand as shown to the player
func (r *Round) DealerView() game.HandView {
	hidden := -1
	if r.HoleHidden() {
		hidden = holeIndex
	}
	return game.NewHandView(DealerSeat, r.dealer, Score(r.dealer), hidden)
}

// Deal deals Player, Dealer, Player, Dealer (hole) and checks for naturals.
// The round ends in PlayerTurn, or in Settled when either side has 21.
func (r *Round) Deal() error {
	if r.phase != game.Idle {
		return fmt.Errorf("%w: deal in %s", game.ErrInvalidAction, r.phase)
	}
	r.setPhase(game.Dealing)
	r.message = ""

	r.deal(PlayerSeat, &r.player, false)
	r.deal(DealerSeat, &r.dealer, false)
	r.deal(PlayerSeat, &r.player, false)
	r.holeHidden = true
	r.deal(DealerSeat, &r.dealer, true)

	playerNatural := IsNatural(r.player)
	dealerNatural := IsNatural(r.dealer)
	if !playerNatural && !dealerNatural {
		r.setPhase(game.PlayerTurn)
		return nil
	}

	r.reveal()
	switch {
	case playerNatural && dealerNatural:
		r.finish(BothNatural, "Push (both Blackjack)")
	case playerNatural:
		r.finish(PlayerNatural, fmt.Sprintf("Blackjack! You win (%d)", Score(r.player)))
	default:
		r.finish(DealerNatural, fmt.Sprintf("Dealer has Blackjack (%d) - You lose", Score(r.dealer)))
	}
	return nil
}

// Hit draws a card for the player. It reports false, changing nothing,
// outside PlayerTurn. A bust settles the round without a dealer turn.
func (r *Round) Hit() bool {
	if r.phase != game.PlayerTurn {
		return false
	}
	r.deal(PlayerSeat, &r.player, false)
	if score := Score(r.player); score > Target {
		r.finish(PlayerBust, fmt.Sprintf("Busted (%d) - You lose", score))
	}
	return true
}

// Stand ends the player's turn and plays the dealer's hand to completion.
// It reports false, changing nothing, outside PlayerTurn.
func (r *Round) Stand() bool {
	if r.phase != game.PlayerTurn {
		return false
	}
	r.setPhase(game.DealerTurn)
	r.reveal()

	for Score(r.dealer) < DealerStandsOn && r.deck.Remaining() > 0 {
		r.deal(DealerSeat, &r.dealer, false)
	}

	r.compare()
	return true
}

func (r *Round) compare() {
	ps, ds := Score(r.player), Score(r.dealer)
	switch {
	case ps > Target:
		r.finish(PlayerBust, fmt.Sprintf("Busted (%d) - You lose", ps))
	case ds > Target:
		r.finish(DealerBust, fmt.Sprintf("Dealer busted (%d) - You win", ds))
	case ps > ds:
		r.finish(PlayerWin, fmt.Sprintf("You win (%d vs %d)", ps, ds))
	case ps < ds:
		r.finish(DealerWin, fmt.Sprintf("You lose (%d vs %d)", ps, ds))
	default:
		r.finish(Push, fmt.Sprintf("Push (%d)", ps))
	}
}

func (r *Round) deal(seat string, hand *cards.Hand, faceDown bool) {
	c := r.deck.MustDraw()
	hand.Add(c)
	r.listener.OnCard(seat, hand.Len()-1, c, faceDown)
}

func (r *Round) reveal() {
	if !r.holeHidden {
		return
	}
	r.holeHidden = false
	r.listener.OnReveal(r.dealer[holeIndex])
}

func (r *Round) finish(o Outcome, msg string) {
	r.outcome = o
	r.message = msg
	r.setPhase(game.Settled)
}

func (r *Round) setPhase(p game.Phase) {
	from := r.phase
	r.phase = p
	r.listener.OnPhase(from, p)
}
