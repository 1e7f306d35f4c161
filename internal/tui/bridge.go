package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/minicasino/internal/baccarat"
	"github.com/lox/minicasino/internal/blackjack"
	"github.com/lox/minicasino/internal/game"
)

// Table is the surface the TUI drives. BlackjackTable and BaccaratTable
// bridge the game tables onto it.
type Table interface {
	Kind() game.Kind
	Bus() game.EventBus
	Snapshot() game.Snapshot
	// NormalizeSide validates a bet side; games without sides accept only ""
	NormalizeSide(side string) (string, error)
	PlaceBet(ctx context.Context, amount int64, side string) error
	StartRound(ctx context.Context) error
	Hit(ctx context.Context) bool
	Stand(ctx context.Context) bool
	// Reset clears a finished round from the table, if the game does that
	Reset()
}

type blackjackBridge struct {
	*blackjack.Table
}

// BlackjackTable adapts a blackjack table for the TUI
func BlackjackTable(t *blackjack.Table) Table {
	return blackjackBridge{t}
}

func (blackjackBridge) Kind() game.Kind { return game.Blackjack }

func (blackjackBridge) NormalizeSide(side string) (string, error) {
	if side != "" {
		return "", fmt.Errorf("blackjack has no bet sides")
	}
	return "", nil
}

func (b blackjackBridge) PlaceBet(ctx context.Context, amount int64, _ string) error {
	return b.Table.PlaceBet(ctx, amount)
}

func (blackjackBridge) Reset() {}

type baccaratBridge struct {
	*baccarat.Table
}

// BaccaratTable adapts a baccarat table for the TUI
func BaccaratTable(t *baccarat.Table) Table {
	return baccaratBridge{t}
}

func (baccaratBridge) Kind() game.Kind { return game.Baccarat }

func (baccaratBridge) NormalizeSide(side string) (string, error) {
	if side == "" {
		return baccarat.Player.String(), nil
	}
	s, err := baccarat.ParseSide(side)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

func (b baccaratBridge) PlaceBet(ctx context.Context, amount int64, side string) error {
	s, err := baccarat.ParseSide(side)
	if err != nil {
		return err
	}
	return b.Table.PlaceBet(ctx, amount, s)
}

func (baccaratBridge) Hit(context.Context) bool   { return false }
func (baccaratBridge) Stand(context.Context) bool { return false }

// CommandKind identifies a parsed user command
type CommandKind int

const (
	CmdDefault CommandKind = iota // Empty input
	CmdDeal
	CmdHit
	CmdStand
	CmdBet
	CmdBetUp
	CmdBetDown
	CmdSide
	CmdStats
	CmdHelp
	CmdQuit
)

// Command is a parsed line of user input
type Command struct {
	Kind   CommandKind
	Amount int64
	Side   string
}

// ParseCommand parses a line typed at the table prompt
func ParseCommand(input string) (Command, error) {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return Command{Kind: CmdDefault}, nil
	}

	action, args := parts[0], parts[1:]
	switch action {
	case "deal", "d":
		return Command{Kind: CmdDeal}, nil
	case "hit", "h":
		return Command{Kind: CmdHit}, nil
	case "stand", "s":
		return Command{Kind: CmdStand}, nil
	case "+":
		return Command{Kind: CmdBetUp}, nil
	case "-":
		return Command{Kind: CmdBetDown}, nil
	case "player", "banker", "tie":
		return Command{Kind: CmdSide, Side: action}, nil
	case "side":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: side <player|banker|tie>")
		}
		return Command{Kind: CmdSide, Side: args[0]}, nil
	case "stats":
		return Command{Kind: CmdStats}, nil
	case "help", "?":
		return Command{Kind: CmdHelp}, nil
	case "quit", "q", "exit":
		return Command{Kind: CmdQuit}, nil
	case "bet", "b":
		return parseBet(args)
	default:
		return Command{}, fmt.Errorf("unknown command %q, type 'help' for a list", action)
	}
}

func parseBet(args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, fmt.Errorf("usage: bet <amount|+|-> [side]")
	}
	switch args[0] {
	case "+":
		return Command{Kind: CmdBetUp}, nil
	case "-":
		return Command{Kind: CmdBetDown}, nil
	}

	amount, err := strconv.ParseInt(strings.TrimPrefix(args[0], "$"), 10, 64)
	if err != nil {
		return Command{}, fmt.Errorf("invalid bet amount %q", args[0])
	}
	cmd := Command{Kind: CmdBet, Amount: amount}
	if len(args) == 2 {
		cmd.Side = args[1]
	}
	return cmd, nil
}
