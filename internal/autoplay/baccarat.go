package autoplay

import (
	"math/rand/v2"

	"github.com/lox/minicasino/internal/baccarat"
)

// SidePicker chooses the side for the next baccarat bet. last is the winner
// of the previous coup and ok is false before the first one.
type SidePicker interface {
	Name() string
	Pick(last baccarat.Side, ok bool) baccarat.Side
}

// Fixed always bets the same side
type Fixed baccarat.Side

func (f Fixed) Name() string { return "fixed-" + baccarat.Side(f).String() }

func (f Fixed) Pick(baccarat.Side, bool) baccarat.Side { return baccarat.Side(f) }

// FollowWinner bets on whichever of Player or Banker won last, starting on
// Banker. Ties keep the previous choice.
type FollowWinner struct {
	current baccarat.Side
	started bool
}

func (f *FollowWinner) Name() string { return "follow" }

func (f *FollowWinner) Pick(last baccarat.Side, ok bool) baccarat.Side {
	if !f.started {
		f.current = baccarat.Banker
		f.started = true
	}
	if ok && last != baccarat.Tie {
		f.current = last
	}
	return f.current
}

// RandomSide picks uniformly among the three sides
type RandomSide struct {
	rng *rand.Rand
}

// NewRandomSide creates a picker drawing from rng
func NewRandomSide(rng *rand.Rand) *RandomSide {
	if rng == nil {
		panic("rng is required")
	}
	return &RandomSide{rng: rng}
}

func (r *RandomSide) Name() string { return "random" }

func (r *RandomSide) Pick(baccarat.Side, bool) baccarat.Side {
	return baccarat.Sides[r.rng.IntN(len(baccarat.Sides))]
}
