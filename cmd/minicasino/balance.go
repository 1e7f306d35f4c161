package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/lox/minicasino/internal/config"
	"github.com/lox/minicasino/internal/game"
	"github.com/lox/minicasino/internal/store"
)

var games = []game.Kind{game.Blackjack, game.Baccarat}

type BalanceCmd struct {
	Show  BalanceShowCmd  `cmd:"" default:"1" help:"Show saved balances and recent rounds"`
	Set   BalanceSetCmd   `cmd:"" help:"Set the saved balance for a game"`
	Reset BalanceResetCmd `cmd:"" help:"Reset saved balances to the starting balance"`
}

type BalanceShowCmd struct {
	Rounds int `short:"n" default:"5" help:"Recent rounds to list when the store keeps a ledger"`
}

type BalanceSetCmd struct {
	Game   string `arg:"" help:"Game whose balance to set (blackjack, baccarat)"`
	Amount int64  `arg:"" help:"New balance"`
}

type BalanceResetCmd struct {
	Game string `arg:"" optional:"" help:"Game to reset; both when omitted"`
}

// withStore runs fn against the configured store and closes it afterwards
func withStore(g *Globals, fn func(ctx context.Context, cfg *config.Config, st store.Store) error) (err error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	st, err := cfg.OpenStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()
	return fn(context.Background(), cfg, st)
}

func (c *BalanceShowCmd) Run(g *Globals) error {
	return withStore(g, func(ctx context.Context, cfg *config.Config, st store.Store) error {
		out := termenv.NewOutput(g.stdout())
		w := g.stdout()

		fmt.Fprintf(w, "Store: %s %s\n", cfg.Store.Backend, cfg.Store.Path)
		for _, kind := range games {
			amount, ok, err := st.Load(ctx, kind.BalanceKey())
			if err != nil {
				return fmt.Errorf("load %s balance: %w", kind, err)
			}
			note := ""
			if !ok {
				amount = cfg.Store.StartingBalance
				note = " (not saved yet)"
			}
			money := out.String(fmt.Sprintf("$%d", amount)).Bold()
			if amount < cfg.Store.StartingBalance {
				money = money.Foreground(out.Color("#FF6B6B"))
			} else {
				money = money.Foreground(out.Color("#04B575"))
			}
			fmt.Fprintf(w, "%-10s %s%s\n", kind, money, note)
		}

		recorder, ok := st.(store.RoundRecorder)
		if !ok || c.Rounds <= 0 {
			return nil
		}
		for _, kind := range games {
			rounds, err := recorder.RecentRounds(ctx, kind.String(), c.Rounds)
			if err != nil {
				return fmt.Errorf("recent %s rounds: %w", kind, err)
			}
			if len(rounds) == 0 {
				continue
			}
			fmt.Fprintf(w, "\nRecent %s rounds:\n", kind)
			for _, r := range rounds {
				printRound(w, out, r)
			}
		}
		return nil
	})
}

func printRound(w io.Writer, out *termenv.Output, r store.RoundRecord) {
	net := r.Payout - r.Wager
	delta := out.String(fmt.Sprintf("%+d", net))
	switch {
	case net > 0:
		delta = delta.Foreground(out.Color("#04B575"))
	case net < 0:
		delta = delta.Foreground(out.Color("#FF6B6B"))
	}
	bet := ""
	if r.Bet != "" {
		bet = " on " + r.Bet
	}
	fmt.Fprintf(w, "  %s  $%d%s  %-14s %s  balance $%d  [%s | %s]\n",
		r.PlayedAt.Format("2006-01-02 15:04"), r.Wager, bet, r.Outcome, delta, r.Balance,
		strings.Join(r.Player, " "), strings.Join(r.Dealer, " "))
}

func (c *BalanceSetCmd) Run(g *Globals) error {
	kind, err := parseKind(c.Game)
	if err != nil {
		return err
	}
	if c.Amount < 0 {
		return fmt.Errorf("balance cannot be negative")
	}
	return withStore(g, func(ctx context.Context, _ *config.Config, st store.Store) error {
		if err := st.Save(ctx, kind.BalanceKey(), c.Amount); err != nil {
			return fmt.Errorf("save %s balance: %w", kind, err)
		}
		fmt.Fprintf(g.stdout(), "%s balance set to $%d\n", kind, c.Amount)
		return nil
	})
}

func (c *BalanceResetCmd) Run(g *Globals) error {
	kinds := games
	if c.Game != "" {
		kind, err := parseKind(c.Game)
		if err != nil {
			return err
		}
		kinds = []game.Kind{kind}
	}
	return withStore(g, func(ctx context.Context, cfg *config.Config, st store.Store) error {
		for _, kind := range kinds {
			if err := st.Save(ctx, kind.BalanceKey(), cfg.Store.StartingBalance); err != nil {
				return fmt.Errorf("reset %s balance: %w", kind, err)
			}
			fmt.Fprintf(g.stdout(), "%s balance reset to $%d\n", kind, cfg.Store.StartingBalance)
		}
		return nil
	})
}
