package game

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/minicasino/internal/cards"
	"github.com/lox/minicasino/internal/roundid"
	"github.com/lox/minicasino/internal/settlement"
	"github.com/lox/minicasino/internal/statistics"
	"github.com/lox/minicasino/internal/store"
)

// Session holds what a table keeps between rounds: the wallet, the pending
// stake, the event bus and the bindings to persistence and statistics. The
// blackjack and baccarat tables each own one.
type Session struct {
	kind     Kind
	rng      *rand.Rand
	wallet   *settlement.Wallet
	logger   *log.Logger
	clock    quartz.Clock
	bus      EventBus
	balances store.BalanceStore
	key      string
	ids      *roundid.Generator
	stats    *statistics.Statistics
	decks    func() *cards.Deck

	wager int64
	side  string
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock sets the clock used for event timestamps and round IDs
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithBus sets the event bus. The default is a fresh SimpleEventBus.
func WithBus(bus EventBus) Option {
	return func(s *Session) {
		s.bus = bus
	}
}

// WithStore saves the balance to bs after every change. Stores that also
// implement store.RoundRecorder receive a record of every settled round.
func WithStore(bs store.BalanceStore) Option {
	return func(s *Session) {
		s.balances = bs
	}
}

// WithBalanceKey overrides the key the balance is saved under
func WithBalanceKey(key string) Option {
	return func(s *Session) {
		s.key = key
	}
}

// WithStatistics accumulates settled rounds into stats
func WithStatistics(stats *statistics.Statistics) Option {
	return func(s *Session) {
		s.stats = stats
	}
}

// WithRoundIDs sets the round ID generator
func WithRoundIDs(ids *roundid.Generator) Option {
	return func(s *Session) {
		s.ids = ids
	}
}

// WithDeckSource replaces the per-round shuffled deck, typically with
// cards.NewStackedDeck for scripted rounds
func WithDeckSource(fn func() *cards.Deck) Option {
	return func(s *Session) {
		s.decks = fn
	}
}

// NewSession creates a session for kind with a starting balance. The rng
// shuffles every round's deck and is required.
func NewSession(kind Kind, rng *rand.Rand, balance int64, opts ...Option) *Session {
	if rng == nil {
		panic("rng is required for deterministic shuffling")
	}
	s := &Session{
		kind:   kind,
		rng:    rng,
		wallet: settlement.NewWallet(balance),
		key:    kind.BalanceKey(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.bus == nil {
		s.bus = NewEventBus()
	}
	if s.ids == nil {
		s.ids = roundid.NewGenerator(s.clock, nil)
	}
	return s
}

// Kind returns the game the session belongs to
func (s *Session) Kind() Kind { return s.kind }

// Logger returns the session logger
func (s *Session) Logger() *log.Logger { return s.logger }

// Bus returns the event bus
func (s *Session) Bus() EventBus { return s.bus }

// Balance returns the wallet balance
func (s *Session) Balance() int64 { return s.wallet.Balance() }

// Wager returns the pending or in-play stake, zero when none
func (s *Session) Wager() int64 { return s.wager }

// Side returns the side of the pending or in-play bet
func (s *Session) Side() string { return s.side }

// Statistics returns the statistics the session feeds, possibly nil
func (s *Session) Statistics() *statistics.Statistics { return s.stats }

// Now returns the session clock's current time
func (s *Session) Now() time.Time { return s.clock.Now() }

// NewRoundID returns a fresh round identifier
func (s *Session) NewRoundID() string { return s.ids.New() }

// NewDeck returns the deck for the next round
func (s *Session) NewDeck() *cards.Deck {
	if s.decks != nil {
		return s.decks()
	}
	return cards.NewDeck(s.rng)
}

// Publish sends an event on the bus
func (s *Session) Publish(ev Event) {
	s.bus.Publish(ev)
}

// Stake debits a wager, first refunding any stake still pending from an
// earlier call. On error the previous stake stays in place.
func (s *Session) Stake(ctx context.Context, amount int64, side string) error {
	available := s.wallet.Balance() + s.wager
	if amount <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", settlement.ErrInvalidWager, amount)
	}
	if amount > available {
		return fmt.Errorf("%w: %d exceeds balance %d", settlement.ErrInvalidWager, amount, available)
	}
	if s.wager > 0 {
		s.wallet.Credit(s.wager)
	}
	if err := s.wallet.Debit(amount); err != nil {
		return err
	}
	s.wager = amount
	s.side = side
	s.logger.Debug("Bet placed", "amount", amount, "side", side, "balance", s.wallet.Balance())
	s.save(ctx)
	return nil
}

// Settle credits the wallet for the staked round, saves the balance, writes
// the round record and updates statistics. It clears the stake, so a second
// call for the same round settles nothing.
func (s *Session) Settle(ctx context.Context, rec store.RoundRecord, resolution settlement.Resolution, m settlement.Multiplier) settlement.Result {
	if s.wager == 0 {
		return settlement.Result{Balance: s.wallet.Balance()}
	}
	res := settlement.Settle(s.wallet, s.wager, resolution, m)

	s.logger.Info("Round settled",
		"round", rec.ID,
		"outcome", rec.Outcome,
		"wager", res.Wager,
		"payout", res.Payout,
		"balance", res.Balance)

	s.save(ctx)

	if rr, ok := s.balances.(store.RoundRecorder); ok {
		rec.Game = s.kind.String()
		rec.Bet = s.side
		rec.Wager = res.Wager
		rec.Payout = res.Payout
		rec.Balance = res.Balance
		if rec.PlayedAt.IsZero() {
			rec.PlayedAt = s.clock.Now()
		}
		if err := rr.RecordRound(ctx, rec); err != nil {
			s.logger.Error("Failed to record round", "round", rec.ID, "error", err)
		}
	}

	if s.stats != nil {
		s.stats.Add(statistics.RoundResult{
			Outcome: rec.Outcome,
			Wager:   res.Wager,
			Payout:  res.Payout,
			Won:     res.Resolution == settlement.Win,
			Push:    res.Resolution == settlement.Push,
		})
	}

	s.wager = 0
	return res
}

// Save writes the current balance to the store, if one is configured
func (s *Session) Save(ctx context.Context) error {
	if s.balances == nil {
		return nil
	}
	if err := s.balances.Save(ctx, s.key, s.wallet.Balance()); err != nil {
		return fmt.Errorf("save balance %q: %w", s.key, err)
	}
	return nil
}

// Persistence failures never interrupt play; they are logged and the next
// change tries again.
func (s *Session) save(ctx context.Context) {
	if err := s.Save(ctx); err != nil {
		s.logger.Error("Failed to save balance", "error", err)
	}
}
