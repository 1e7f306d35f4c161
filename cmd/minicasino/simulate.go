package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/minicasino/internal/autoplay"
	"github.com/lox/minicasino/internal/baccarat"
	"github.com/lox/minicasino/internal/blackjack"
	"github.com/lox/minicasino/internal/game"
	"github.com/lox/minicasino/internal/randutil"
	"github.com/lox/minicasino/internal/statistics"
	"github.com/lox/minicasino/internal/store"
)

type SimulateCmd struct {
	Game     string `short:"g" enum:"blackjack,baccarat" default:"blackjack" help:"Game to simulate (blackjack, baccarat)"`
	Rounds   int    `short:"n" default:"10000" help:"Rounds per session"`
	Sessions int    `default:"4" help:"Independent sessions run in parallel"`
	Bet      int64  `default:"10" help:"Flat bet for every round"`
	Bankroll int64  `default:"1000" help:"Starting balance of each session"`
	Strategy string `enum:"basic,mimic,random" default:"basic" help:"Blackjack strategy (basic, mimic, random)"`
	Side     string `default:"banker" help:"Baccarat side: player, banker, tie, follow or random"`
}

// simOptions is everything a simulation needs, independent of the CLI
type simOptions struct {
	Game     game.Kind
	Rounds   int
	Sessions int
	Bet      int64
	Bankroll int64
	Strategy string
	Side     string
	Seed     int64
}

type sessionResult struct {
	Seed    int64
	Played  int
	Balance int64
	Stats   *statistics.Statistics
}

type simReport struct {
	Sessions []sessionResult
	Total    *statistics.Statistics
	Duration time.Duration
}

func (c *SimulateCmd) Run(g *Globals) error {
	kind, err := parseKind(c.Game)
	if err != nil {
		return err
	}

	level := log.WarnLevel
	if g.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level, Prefix: "simulate"})

	seed, _ := g.seed()
	opts := simOptions{
		Game:     kind,
		Rounds:   c.Rounds,
		Sessions: c.Sessions,
		Bet:      c.Bet,
		Bankroll: c.Bankroll,
		Strategy: c.Strategy,
		Side:     c.Side,
		Seed:     seed,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := g.stdout()
	fmt.Fprintf(out, "Starting simulation: %d x %d %s rounds, $%d bets (seed: %d)\n",
		opts.Sessions, opts.Rounds, kind, opts.Bet, opts.Seed)

	report, err := runSimulation(ctx, opts, logger)
	if err != nil {
		return err
	}
	printReport(out, opts, report)
	return nil
}

func (o simOptions) validate() error {
	if o.Sessions <= 0 {
		return fmt.Errorf("sessions must be positive, got %d", o.Sessions)
	}
	if o.Bankroll < o.Bet {
		return fmt.Errorf("bankroll $%d cannot cover a $%d bet", o.Bankroll, o.Bet)
	}
	var err error
	switch o.Game {
	case game.Blackjack:
		_, err = strategy(o.Strategy, randutil.New(o.Seed))
	case game.Baccarat:
		_, err = sidePicker(o.Side, randutil.New(o.Seed))
	default:
		err = fmt.Errorf("unknown game %q", o.Game)
	}
	return err
}

// runSimulation plays opts.Sessions independent sessions concurrently. Each
// session gets its own table and a seed derived from opts.Seed, so a fixed
// seed always produces the same report.
func runSimulation(ctx context.Context, opts simOptions, logger *log.Logger) (*simReport, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]sessionResult, opts.Sessions)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range opts.Sessions {
		g.Go(func() error {
			res, err := runSession(ctx, opts, i, logger.With("session", i))
			if err != nil {
				return fmt.Errorf("session %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Statistics{}
	for _, res := range results {
		total.Merge(res.Stats)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics ledger: %w", err)
	}

	return &simReport{Sessions: results, Total: total, Duration: time.Since(start)}, nil
}

func runSession(ctx context.Context, opts simOptions, index int, logger *log.Logger) (sessionResult, error) {
	seed := randutil.Derive(opts.Seed, index)
	stats := &statistics.Statistics{}
	tableOpts := []game.Option{
		game.WithLogger(logger),
		game.WithStore(store.NewMemoryStore()),
		game.WithStatistics(stats),
	}
	// Decisions draw from their own stream so strategies never disturb the shoe
	decisions := randutil.New(randutil.Derive(seed, 0))

	var (
		played  int
		balance int64
		err     error
	)
	plan := autoplay.Plan{Rounds: opts.Rounds, Bet: opts.Bet}
	switch opts.Game {
	case game.Blackjack:
		s, serr := strategy(opts.Strategy, decisions)
		if serr != nil {
			return sessionResult{}, serr
		}
		t := blackjack.NewTable(randutil.New(seed), opts.Bankroll, tableOpts...)
		played, err = autoplay.PlayBlackjack(ctx, t, s, plan, logger)
		balance = t.Balance()
	case game.Baccarat:
		p, perr := sidePicker(opts.Side, decisions)
		if perr != nil {
			return sessionResult{}, perr
		}
		t := baccarat.NewTable(randutil.New(seed), opts.Bankroll, tableOpts...)
		played, err = autoplay.PlayBaccarat(ctx, t, p, plan, logger)
		balance = t.Balance()
	default:
		return sessionResult{}, fmt.Errorf("unknown game %q", opts.Game)
	}
	if err != nil {
		return sessionResult{}, err
	}

	logger.Debug("Session complete", "seed", seed, "played", played, "balance", balance)
	return sessionResult{Seed: seed, Played: played, Balance: balance, Stats: stats}, nil
}

func strategy(name string, rng *rand.Rand) (autoplay.Strategy, error) {
	switch strings.ToLower(name) {
	case "", "basic":
		return autoplay.Basic{}, nil
	case "mimic":
		return autoplay.MimicDealer{}, nil
	case "random":
		return autoplay.NewRandom(rng), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (basic, mimic, random)", name)
	}
}

func sidePicker(name string, rng *rand.Rand) (autoplay.SidePicker, error) {
	switch strings.ToLower(name) {
	case "follow":
		return &autoplay.FollowWinner{}, nil
	case "random":
		return autoplay.NewRandomSide(rng), nil
	}
	side, err := baccarat.ParseSide(name)
	if err != nil {
		return nil, fmt.Errorf("%w (or follow, random)", err)
	}
	return autoplay.Fixed(side), nil
}

func printReport(w io.Writer, opts simOptions, r *simReport) {
	stats := r.Total
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n%s\n", titleStyle.Render(fmt.Sprintf(" %s RESULTS ", strings.ToUpper(opts.Game.String()))))
	fmt.Fprintf(w, "Rounds played: %d across %d sessions\n", stats.Rounds, len(r.Sessions))
	if r.Duration > 0 && stats.Rounds > 0 {
		fmt.Fprintf(w, "Total time: %v (%.0f rounds/sec)\n", r.Duration.Round(time.Millisecond), float64(stats.Rounds)/r.Duration.Seconds())
	}

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Won/Lost/Pushed: %d/%d/%d (win rate %.2f%%)\n", stats.Wins, stats.Losses, stats.Pushes, stats.WinRate()*100)
	fmt.Fprintf(w, "Wagered: $%d, returned: $%d (%.2f%%)\n", stats.Wagered, stats.Returned, stats.ReturnRate()*100)
	fmt.Fprintf(w, "Net: $%d\n", stats.Net())
	fmt.Fprintf(w, "Mean: %.4f $/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f $/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] $/round\n", low, high)
	fmt.Fprintf(w, "Longest streaks: %d wins, %d losses\n", stats.LongestWins, stats.LongestLosses)

	if len(stats.Outcomes) > 0 {
		fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
		names := make([]string, 0, len(stats.Outcomes))
		for name := range stats.Outcomes {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			n := stats.Outcomes[name]
			fmt.Fprintf(w, "%-16s %7d (%.2f%%)\n", name, n, float64(n)/float64(stats.Rounds)*100)
		}
	}

	fmt.Fprintf(w, "\n=== SESSIONS ===\n")
	for i, s := range r.Sessions {
		fmt.Fprintf(w, "#%d seed=%d played=%d balance=$%d\n", i, s.Seed, s.Played, s.Balance)
	}
}
