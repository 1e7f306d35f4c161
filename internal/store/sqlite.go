package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps balances and the round ledger in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath. Use
// ":memory:" for a throwaway database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pragmas := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the balance saved under key
func (s *SQLiteStore) Load(ctx context.Context, key string) (int64, bool, error) {
	var amount int64
	err := s.db.QueryRowContext(ctx, `SELECT amount FROM balances WHERE key = ?`, key).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load balance: %w", err)
	}
	return amount, true, nil
}

// Save stores amount under key
func (s *SQLiteStore) Save(ctx context.Context, key string, amount int64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO balances (key, amount, updated_at_ms)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET amount = excluded.amount, updated_at_ms = excluded.updated_at_ms
`, key, amount, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	return nil
}

// RecordRound writes a settled round to the ledger. Recording the same round
// twice keeps the first entry.
func (s *SQLiteStore) RecordRound(ctx context.Context, rec RoundRecord) error {
	player, err := json.Marshal(rec.Player)
	if err != nil {
		return fmt.Errorf("encode player cards: %w", err)
	}
	dealer, err := json.Marshal(rec.Dealer)
	if err != nil {
		return fmt.Errorf("encode dealer cards: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO rounds (
    round_id, game, bet, wager, payout, balance, outcome, player_json, dealer_json, played_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (round_id) DO NOTHING
`, rec.ID, rec.Game, rec.Bet, rec.Wager, rec.Payout, rec.Balance, rec.Outcome,
		string(player), string(dealer), rec.PlayedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("record round %s: %w", rec.ID, err)
	}
	return nil
}

// RecentRounds returns up to limit rounds, newest first. An empty game
// matches every game.
func (s *SQLiteStore) RecentRounds(ctx context.Context, game string, limit int) ([]RoundRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT round_id, game, bet, wager, payout, balance, outcome, player_json, dealer_json, played_at_ms
FROM rounds
WHERE ? = '' OR game = ?
ORDER BY played_at_ms DESC, id DESC
LIMIT ?
`, game, game, limit)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var out []RoundRecord
	for rows.Next() {
		var (
			rec            RoundRecord
			player, dealer string
			playedAtMs     int64
		)
		if err := rows.Scan(&rec.ID, &rec.Game, &rec.Bet, &rec.Wager, &rec.Payout, &rec.Balance,
			&rec.Outcome, &player, &dealer, &playedAtMs); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		if err := json.Unmarshal([]byte(player), &rec.Player); err != nil {
			return nil, fmt.Errorf("decode player cards: %w", err)
		}
		if err := json.Unmarshal([]byte(dealer), &rec.Dealer); err != nil {
			return nil, fmt.Errorf("decode dealer cards: %w", err)
		}
		rec.PlayedAt = time.UnixMilli(playedAtMs).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS balances (
    key TEXT PRIMARY KEY,
    amount INTEGER NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS rounds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    round_id TEXT NOT NULL UNIQUE,
    game TEXT NOT NULL,
    bet TEXT NOT NULL DEFAULT '',
    wager INTEGER NOT NULL,
    payout INTEGER NOT NULL,
    balance INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    player_json TEXT NOT NULL DEFAULT '[]',
    dealer_json TEXT NOT NULL DEFAULT '[]',
    played_at_ms INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_game_played ON rounds(game, played_at_ms DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
