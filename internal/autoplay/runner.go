package autoplay

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/minicasino/internal/baccarat"
	"github.com/lox/minicasino/internal/blackjack"
	"github.com/lox/minicasino/internal/game"
)

// Plan is how much and how long a runner plays
type Plan struct {
	Rounds int
	Bet    int64
}

func (p Plan) validate() error {
	if p.Rounds < 0 {
		return fmt.Errorf("rounds must be non-negative, got %d", p.Rounds)
	}
	if p.Bet <= 0 {
		return fmt.Errorf("bet must be positive, got %d", p.Bet)
	}
	return nil
}

func discardIfNil(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

// PlayBlackjack plays up to plan.Rounds rounds at t, stopping early when the
// balance cannot cover the bet or ctx is done. It returns the rounds played.
func PlayBlackjack(ctx context.Context, t *blackjack.Table, s Strategy, plan Plan, logger *log.Logger) (int, error) {
	if err := plan.validate(); err != nil {
		return 0, err
	}
	logger = discardIfNil(logger).WithPrefix("autoplay")

	played := 0
	for played < plan.Rounds {
		if err := ctx.Err(); err != nil {
			return played, err
		}
		if t.Balance() < plan.Bet {
			logger.Info("Bankroll exhausted", "balance", t.Balance(), "bet", plan.Bet, "played", played)
			break
		}
		if err := t.PlaceBet(ctx, plan.Bet); err != nil {
			return played, fmt.Errorf("place bet: %w", err)
		}
		if err := t.StartRound(ctx); err != nil {
			return played, fmt.Errorf("start round: %w", err)
		}

		for t.Phase() == game.PlayerTurn {
			round := t.Round()
			action := s.Decide(round.Player(), round.Dealer()[0])
			logger.Debug("Decision", "strategy", s.Name(), "hand", round.Player(), "action", action)
			if action == Hit {
				t.Hit(ctx)
			} else {
				t.Stand(ctx)
			}
		}
		played++
	}
	return played, nil
}

// PlayBaccarat plays up to plan.Rounds coups at t with sides chosen by picker
func PlayBaccarat(ctx context.Context, t *baccarat.Table, picker SidePicker, plan Plan, logger *log.Logger) (int, error) {
	if err := plan.validate(); err != nil {
		return 0, err
	}
	logger = discardIfNil(logger).WithPrefix("autoplay")

	var (
		last   baccarat.Side
		seen   bool
		played int
	)
	for played < plan.Rounds {
		if err := ctx.Err(); err != nil {
			return played, err
		}
		if t.Balance() < plan.Bet {
			logger.Info("Bankroll exhausted", "balance", t.Balance(), "bet", plan.Bet, "played", played)
			break
		}
		side := picker.Pick(last, seen)
		if err := t.PlaceBet(ctx, plan.Bet, side); err != nil {
			return played, fmt.Errorf("place bet: %w", err)
		}
		if err := t.StartRound(ctx); err != nil {
			return played, fmt.Errorf("start round: %w", err)
		}
		last, seen = t.Round().Winner(), true
		logger.Debug("Coup", "picker", picker.Name(), "side", side, "winner", last)
		t.Reset()
		played++
	}
	return played, nil
}
