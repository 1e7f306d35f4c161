package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/minicasino/internal/baccarat"
	"github.com/lox/minicasino/internal/blackjack"
	"github.com/lox/minicasino/internal/game"
	"github.com/lox/minicasino/internal/pacing"
	"github.com/lox/minicasino/internal/randutil"
	"github.com/lox/minicasino/internal/statistics"
	"github.com/lox/minicasino/internal/store"
	"github.com/lox/minicasino/internal/tui"
)

type BlackjackCmd struct{}

func (c *BlackjackCmd) Run(g *Globals) error {
	return play(g, game.Blackjack)
}

type BaccaratCmd struct{}

func (c *BaccaratCmd) Run(g *Globals) error {
	return play(g, game.Baccarat)
}

func play(g *Globals, kind game.Kind) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI, so logs go to a file
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}()

	logger := log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          strings.ToUpper(kind.String()),
		Level:           cfg.LogLevel(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := cfg.OpenStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	balance, err := store.LoadOrDefault(ctx, st, kind.BalanceKey(), cfg.Store.StartingBalance)
	if err != nil {
		return err
	}

	seed, explicit := g.seed()
	logger.Info("Opening table", "game", kind, "balance", balance, "seed", seed, "explicit_seed", explicit, "store", cfg.Store.Backend)

	clock := quartz.NewReal()
	stats := &statistics.Statistics{}
	opts := []game.Option{
		game.WithLogger(logger),
		game.WithClock(clock),
		game.WithStore(st),
		game.WithStatistics(stats),
	}

	var table tui.Table
	switch kind {
	case game.Blackjack:
		table = tui.BlackjackTable(blackjack.NewTable(randutil.New(seed), balance, opts...))
	case game.Baccarat:
		table = tui.BaccaratTable(baccarat.NewTable(randutil.New(seed), balance, opts...))
	default:
		return fmt.Errorf("unknown game %q", kind)
	}

	pacer := pacing.New(clock,
		pacing.WithEnabled(cfg.PacingEnabled()),
		pacing.WithScale(cfg.Pacing.Scale),
	)
	model := tui.NewTUIModel(ctx, table, logger, tui.Options{
		Pacer:  pacer,
		Limits: cfg.Table(kind),
		Stats:  stats,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}

	final := table.Snapshot().Balance
	logger.Info("Leaving table", "balance", final, "rounds", stats.Rounds, "net", stats.Net())

	out := g.stdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf(" %s ", strings.ToUpper(kind.String()))))
	fmt.Fprintf(out, "Played %d rounds, balance $%d (net %+d)\n", stats.Rounds, final, stats.Net())
	return nil
}
