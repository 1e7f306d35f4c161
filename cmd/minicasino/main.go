package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/minicasino/internal/config"
	"github.com/lox/minicasino/internal/game"
	"github.com/lox/minicasino/internal/randutil"
)

// version is set by ldflags during build
var version = "dev"

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

// Globals are the flags shared by every command
type Globals struct {
	Config  string `short:"c" help:"Path to HCL config file" default:"minicasino.hcl" type:"path"`
	EnvFile string `name:"env-file" help:"Environment file loaded before the config" default:".env"`
	Seed    int64  `help:"RNG seed (0 for random)" default:"0"`
	Debug   bool   `help:"Enable debug logging"`

	Stdout io.Writer `kong:"-"`
}

type CLI struct {
	Globals

	Version   kong.VersionFlag `short:"v" help:"Show version"`
	Blackjack BlackjackCmd     `cmd:"" help:"Play blackjack against the dealer"`
	Baccarat  BaccaratCmd      `cmd:"" help:"Play punto banco baccarat"`
	Simulate  SimulateCmd      `cmd:"" help:"Play many rounds automatically and report the results"`
	Balance   BalanceCmd       `cmd:"" help:"Show or change saved balances"`
}

func main() {
	cli := CLI{Globals: Globals{Stdout: os.Stdout}}
	ctx := kong.Parse(&cli,
		kong.Name("minicasino"),
		kong.Description("Blackjack and baccarat in the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// loadConfig reads the environment file and config, then applies overrides
func (g *Globals) loadConfig() (*config.Config, error) {
	if err := config.LoadEnv(g.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.Debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (g *Globals) seed() (int64, bool) {
	if g.Seed == 0 {
		return randutil.Resolve(nil)
	}
	return randutil.Resolve(&g.Seed)
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func parseKind(s string) (game.Kind, error) {
	switch k := game.Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case game.Blackjack, game.Baccarat:
		return k, nil
	default:
		return "", fmt.Errorf("unknown game %q (blackjack or baccarat)", s)
	}
}
