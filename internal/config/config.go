// Package config loads minicasino settings from HCL, with overrides from the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/lox/minicasino/internal/game"
	"github.com/lox/minicasino/internal/store"
)

// Environment variables consulted by ApplyEnv
const (
	EnvStore           = "MINICASINO_STORE"
	EnvStorePath       = "MINICASINO_STORE_PATH"
	EnvLogLevel        = "MINICASINO_LOG_LEVEL"
	EnvStartingBalance = "MINICASINO_STARTING_BALANCE"
)

// DefaultStartingBalance is the balance of a player with nothing saved
const DefaultStartingBalance = 1000

// Config represents the complete minicasino configuration
type Config struct {
	Store  *StoreConfig  `hcl:"store,block"`
	Log    *LogConfig    `hcl:"log,block"`
	Pacing *PacingConfig `hcl:"pacing,block"`
	Tables []TableConfig `hcl:"table,block"`
}

// StoreConfig selects where balances are kept
type StoreConfig struct {
	Backend         string `hcl:"backend,optional"`
	Path            string `hcl:"path,optional"`
	StartingBalance int64  `hcl:"starting_balance,optional"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// PacingConfig controls the delays between dealt cards in the terminal UI
type PacingConfig struct {
	Enabled *bool   `hcl:"enabled,optional"`
	Scale   float64 `hcl:"scale,optional"`
}

// TableConfig contains per-game betting limits
type TableConfig struct {
	Game       string `hcl:"game,label"`
	MinBet     int64  `hcl:"min_bet,optional"`
	BetStep    int64  `hcl:"bet_step,optional"`
	DefaultBet int64  `hcl:"default_bet,optional"`
}

// DefaultStorePath returns the balance file location under the user's
// config directory, or the working directory when that is unknown
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "minicasino-balances.json"
	}
	return filepath.Join(dir, "minicasino", "balances.json")
}

func defaultTable(kind game.Kind) TableConfig {
	return TableConfig{Game: string(kind), MinBet: 5, BetStep: 5, DefaultBet: 10}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	enabled := true
	return &Config{
		Store: &StoreConfig{
			Backend:         store.BackendFile,
			Path:            DefaultStorePath(),
			StartingBalance: DefaultStartingBalance,
		},
		Log: &LogConfig{
			Level: "info",
			File:  "minicasino.log",
		},
		Pacing: &PacingConfig{
			Enabled: &enabled,
			Scale:   1,
		},
		Tables: []TableConfig{
			defaultTable(game.Blackjack),
			defaultTable(game.Baccarat),
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Store == nil {
		c.Store = defaults.Store
	}
	if c.Store.Backend == "" {
		c.Store.Backend = defaults.Store.Backend
	}
	if c.Store.Path == "" && c.Store.Backend == store.BackendSQLite {
		c.Store.Path = strings.TrimSuffix(defaults.Store.Path, ".json") + ".db"
	} else if c.Store.Path == "" && c.Store.Backend != store.BackendMemory {
		c.Store.Path = defaults.Store.Path
	}
	if c.Store.StartingBalance == 0 {
		c.Store.StartingBalance = defaults.Store.StartingBalance
	}

	if c.Log == nil {
		c.Log = defaults.Log
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = defaults.Log.File
	}

	if c.Pacing == nil {
		c.Pacing = defaults.Pacing
	}
	if c.Pacing.Enabled == nil {
		c.Pacing.Enabled = defaults.Pacing.Enabled
	}
	if c.Pacing.Scale == 0 {
		c.Pacing.Scale = defaults.Pacing.Scale
	}

	for i := range c.Tables {
		d := defaultTable(game.Kind(c.Tables[i].Game))
		if c.Tables[i].MinBet == 0 {
			c.Tables[i].MinBet = d.MinBet
		}
		if c.Tables[i].BetStep == 0 {
			c.Tables[i].BetStep = d.BetStep
		}
		if c.Tables[i].DefaultBet == 0 {
			c.Tables[i].DefaultBet = max(d.DefaultBet, c.Tables[i].MinBet)
		}
	}
}

// LoadEnv reads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from MINICASINO_* environment variables
func (c *Config) ApplyEnv() error {
	c.applyDefaults()
	if v := strings.TrimSpace(os.Getenv(EnvStore)); v != "" {
		c.Store.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorePath)); v != "" {
		c.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStartingBalance)); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStartingBalance, err)
		}
		c.Store.StartingBalance = n
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store == nil || c.Log == nil || c.Pacing == nil {
		return fmt.Errorf("configuration has not been loaded")
	}

	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendFile, store.BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store path is required for the %s backend", c.Store.Backend)
		}
	default:
		return fmt.Errorf("%w %q", store.ErrUnknownBackend, c.Store.Backend)
	}
	if c.Store.StartingBalance < 0 {
		return fmt.Errorf("starting balance cannot be negative")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Pacing.Scale < 0 {
		return fmt.Errorf("pacing scale cannot be negative")
	}

	seen := make(map[string]bool)
	for _, t := range c.Tables {
		switch game.Kind(t.Game) {
		case game.Blackjack, game.Baccarat:
		default:
			return fmt.Errorf("unknown table %q", t.Game)
		}
		if seen[t.Game] {
			return fmt.Errorf("table %q defined more than once", t.Game)
		}
		seen[t.Game] = true

		if t.MinBet <= 0 {
			return fmt.Errorf("table %q: min bet must be positive", t.Game)
		}
		if t.BetStep <= 0 {
			return fmt.Errorf("table %q: bet step must be positive", t.Game)
		}
		if t.DefaultBet < t.MinBet {
			return fmt.Errorf("table %q: default bet %d is below the minimum %d", t.Game, t.DefaultBet, t.MinBet)
		}
	}

	return nil
}

// Table returns the settings for kind, falling back to the defaults
func (c *Config) Table(kind game.Kind) TableConfig {
	for _, t := range c.Tables {
		if t.Game == string(kind) {
			return t
		}
	}
	return defaultTable(kind)
}

// LogLevel returns the parsed log level, info when unparseable
func (c *Config) LogLevel() log.Level {
	if c.Log == nil {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// PacingEnabled reports whether card pacing is on
func (c *Config) PacingEnabled() bool {
	return c.Pacing == nil || c.Pacing.Enabled == nil || *c.Pacing.Enabled
}

// OpenStore opens the configured balance store
func (c *Config) OpenStore() (store.Store, error) {
	s, err := store.Open(c.Store.Backend, c.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.Store.Backend, err)
	}
	return s, nil
}

// Step moves bet by one step in direction dir (+1 or -1), clamped to the
// table minimum and the balance
func (t TableConfig) Step(bet int64, dir int, balance int64) int64 {
	next := bet + int64(dir)*t.BetStep
	if dir > 0 {
		next = min(next, balance)
	}
	return max(next, t.MinBet)
}
