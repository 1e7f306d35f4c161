// Package store persists player balances between sessions and, for backends
// that support it, keeps a ledger of settled rounds.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ErrUnknownBackend is returned by Open for unsupported backend names
var ErrUnknownBackend = errors.New("unknown store backend")

// BalanceStore is a key/value store of integer balances. Load reports false
// when the key has never been saved.
type BalanceStore interface {
	Load(ctx context.Context, key string) (int64, bool, error)
	Save(ctx context.Context, key string, amount int64) error
}

// RoundRecord is the ledger entry for one settled round
type RoundRecord struct {
	ID       string
	Game     string
	Bet      string
	Wager    int64
	Payout   int64
	Balance  int64
	Outcome  string
	Player   []string // Card identifiers
	Dealer   []string
	PlayedAt time.Time
}

// RoundRecorder is implemented by stores that keep a round ledger
type RoundRecorder interface {
	RecordRound(ctx context.Context, rec RoundRecord) error
	RecentRounds(ctx context.Context, game string, limit int) ([]RoundRecord, error)
}

// Store is a balance store that may need closing
type Store interface {
	BalanceStore
	Close() error
}

// Open creates the store for backend. path is ignored by the memory backend.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		if path == "" {
			return nil, fmt.Errorf("file store requires a path")
		}
		return NewFileStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendMemory, "mem":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w %q (supported: %s, %s, %s)", ErrUnknownBackend, backend, BackendMemory, BackendFile, BackendSQLite)
	}
}

// LoadOrDefault returns the saved balance for key, or def when nothing has
// been saved yet
func LoadOrDefault(ctx context.Context, s BalanceStore, key string, def int64) (int64, error) {
	amount, ok, err := s.Load(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("load balance %q: %w", key, err)
	}
	if !ok {
		return def, nil
	}
	return amount, nil
}

// MemoryStore keeps balances and rounds in process memory
type MemoryStore struct {
	mu       sync.Mutex
	balances map[string]int64
	rounds   []RoundRecord
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[string]int64)}
}

// Load returns the balance saved under key
func (m *MemoryStore) Load(_ context.Context, key string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	amount, ok := m.balances[key]
	return amount, ok, nil
}

// Save stores amount under key
func (m *MemoryStore) Save(_ context.Context, key string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[key] = amount
	return nil
}

// RecordRound appends a round to the ledger
func (m *MemoryStore) RecordRound(_ context.Context, rec RoundRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, rec)
	return nil
}

// RecentRounds returns up to limit rounds of game, newest first
func (m *MemoryStore) RecentRounds(_ context.Context, game string, limit int) ([]RoundRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RoundRecord
	for i := len(m.rounds) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if game == "" || m.rounds[i].Game == game {
			out = append(out, m.rounds[i])
		}
	}
	return out, nil
}

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }
