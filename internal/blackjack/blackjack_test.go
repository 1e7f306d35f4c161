package blackjack

import (
	"context"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/minicasino/internal/cards"
	"github.com/lox/minicasino/internal/game"
	"github.com/lox/minicasino/internal/randutil"
	"github.com/lox/minicasino/internal/settlement"
	"github.com/lox/minicasino/internal/statistics"
	"github.com/lox/minicasino/internal/store"
)

func hand(s string) cards.Hand {
	return cards.Hand(cards.MustParseCards(s))
}

func stacked(s string) *cards.Deck {
	return cards.NewStackedDeck(cards.MustParseCards(s)...)
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		hand  string
		score int
		soft  bool
		bust  bool
	}{
		{"ace king", "AS KH", 21, true, false},
		{"two aces and nine", "AS AH 9D", 21, true, false},
		{"two aces", "AS AH", 12, true, false},
		{"ten nine five", "10S 9H 5D", 24, false, true},
		{"faces", "JS QH", 20, false, false},
		{"hard seventeen with ace", "AS 6H KD", 17, false, false},
		{"soft seventeen", "AS 6H", 17, true, false},
		{"four aces", "AS AH AD AC", 14, true, false},
		{"empty", "", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := hand(tt.hand)
			assert.Equal(t, tt.score, Score(h))
			assert.Equal(t, tt.soft, IsSoft(h))
			assert.Equal(t, tt.bust, IsBust(h))
		})
	}
}

func TestIsNatural(t *testing.T) {
	t.Parallel()
	assert.True(t, IsNatural(hand("AS KH")))
	assert.True(t, IsNatural(hand("10D AC")))
	assert.False(t, IsNatural(hand("7S 7H 7D")))
	assert.False(t, IsNatural(hand("KS QH")))
}

func TestOutcomeSettlement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome Outcome
		credit  int64 // Stake included
	}{
		{PlayerNatural, 25},
		{PlayerWin, 20},
		{DealerBust, 20},
		{Push, 10},
		{BothNatural, 10},
		{DealerWin, 0},
		{PlayerBust, 0},
		{DealerNatural, 0},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			w := settlement.NewWallet(0)
			res := settlement.Settle(w, 10, tt.outcome.Resolution(), tt.outcome.Multiplier())
			assert.Equal(t, tt.credit, res.Payout)
			assert.Equal(t, tt.credit, w.Balance())
		})
	}
}

type phaseLog struct {
	phases   []game.Phase
	reveals  int
	faceDown []int
}

func (l *phaseLog) OnCard(_ string, index int, _ cards.Card, faceDown bool) {
	if faceDown {
		l.faceDown = append(l.faceDown, index)
	}
}

func (l *phaseLog) OnReveal(cards.Card) {
	l.reveals++
}

func (l *phaseLog) OnPhase(_, to game.Phase) {
	l.phases = append(l.phases, to)
}

func TestRound_DealOrderAndHole(t *testing.T) {
	t.Parallel()
	l := &phaseLog{}
	r := NewRound(stacked("2S 3H 4D 5C"), l)

	require.NoError(t, r.Deal())

	assert.Equal(t, []string{"2S", "4D"}, r.Player().IDs())
	assert.Equal(t, []string{"3H", "5C"}, r.Dealer().IDs())
	assert.Equal(t, game.PlayerTurn, r.Phase())
	assert.True(t, r.HoleHidden())
	assert.Equal(t, []int{1}, l.faceDown)

	view := r.DealerView()
	assert.True(t, view.ScoreHidden)
	assert.Zero(t, view.Score)
	assert.Equal(t, []string{"3H", "BACK"}, view.IDs())

	assert.ErrorIs(t, r.Deal(), game.ErrInvalidAction)
}

// Player natural against a dealer 17 settles without a player turn.
func TestRound_PlayerNatural(t *testing.T) {
	t.Parallel()
	l := &phaseLog{}
	r := NewRound(stacked("AS 9H KD 8C"), l)

	require.NoError(t, r.Deal())

	assert.Equal(t, game.Settled, r.Phase())
	assert.Equal(t, PlayerNatural, r.Outcome())
	assert.Equal(t, "Blackjack! You win (21)", r.Message())
	assert.Equal(t, []game.Phase{game.Dealing, game.Settled}, l.phases)
	assert.NotContains(t, l.phases, game.PlayerTurn)
	assert.Equal(t, 1, l.reveals)
	assert.Len(t, r.Dealer(), 2)
	assert.False(t, r.Hit())
	assert.False(t, r.Stand())
}

func TestRound_DealerNatural(t *testing.T) {
	t.Parallel()
	r := NewRound(stacked("9S AH 8D KC"), nil)
	require.NoError(t, r.Deal())

	assert.Equal(t, DealerNatural, r.Outcome())
	assert.Equal(t, "Dealer has Blackjack (21) - You lose", r.Message())
}

func TestRound_BothNatural(t *testing.T) {
	t.Parallel()
	r := NewRound(stacked("AS AH KD QC"), nil)
	require.NoError(t, r.Deal())

	assert.Equal(t, BothNatural, r.Outcome())
	assert.Equal(t, "Push (both Blackjack)", r.Message())
}

// Busting on a hit settles at once and leaves the dealer's two cards alone.
func TestRound_PlayerBust(t *testing.T) {
	t.Parallel()
	l := &phaseLog{}
	r := NewRound(stacked("10S 7H 9D 10C 5H 2S"), l)
	require.NoError(t, r.Deal())
	require.Equal(t, game.PlayerTurn, r.Phase())

	assert.True(t, r.Hit())

	assert.Equal(t, game.Settled, r.Phase())
	assert.Equal(t, PlayerBust, r.Outcome())
	assert.Equal(t, "Busted (24) - You lose", r.Message())
	assert.Equal(t, []string{"7H", "10C"}, r.Dealer().IDs())
	assert.NotContains(t, l.phases, game.DealerTurn)
	assert.Zero(t, l.reveals)
	assert.False(t, r.HoleHidden())
}

func TestRound_DealerDrawsToSeventeen(t *testing.T) {
	t.Parallel()
	// Player 10+8, dealer 6+5 then 2, 4 → 17
	r := NewRound(stacked("10S 6H 8D 5C 2H 4S 9D"), nil)
	require.NoError(t, r.Deal())

	assert.True(t, r.Stand())

	assert.Equal(t, []string{"6H", "5C", "2H", "4S"}, r.Dealer().IDs())
	assert.Equal(t, 17, Score(r.Dealer()))
	assert.Equal(t, PlayerWin, r.Outcome())
	assert.Equal(t, "You win (18 vs 17)", r.Message())
}

func TestRound_DealerStandsOnSoftSeventeen(t *testing.T) {
	t.Parallel()
	r := NewRound(stacked("10S AH 9D 6C 5H"), nil)
	require.NoError(t, r.Deal())

	assert.True(t, r.Stand())

	assert.Len(t, r.Dealer(), 2)
	assert.Equal(t, PlayerWin, r.Outcome())
	assert.Equal(t, "You win (19 vs 17)", r.Message())
}

func TestRound_Compare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		deck    string
		outcome Outcome
		message string
	}{
		{"dealer bust", "10S 10H 8D 6C KD", DealerBust, "Dealer busted (26) - You win"},
		{"dealer higher", "10S 10H 8D KC", DealerWin, "You lose (18 vs 20)"},
		{"push", "10S 10H 9D 9C", Push, "Push (19)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRound(stacked(tt.deck), nil)
			require.NoError(t, r.Deal())
			require.True(t, r.Stand())
			assert.Equal(t, tt.outcome, r.Outcome())
			assert.Equal(t, tt.message, r.Message())
		})
	}
}

func TestRound_ActionsOutsidePlayerTurn(t *testing.T) {
	t.Parallel()
	r := NewRound(stacked("10S 10H 9D 9C"), nil)

	assert.False(t, r.Hit())
	assert.False(t, r.Stand())
	assert.Equal(t, game.Idle, r.Phase())
	assert.Empty(t, r.Player())
}

func TestRound_ExhaustedDeckPanics(t *testing.T) {
	t.Parallel()
	r := NewRound(stacked("10S 10H 9D 9C"), nil)
	require.NoError(t, r.Deal())

	assert.PanicsWithError(t, cards.ErrDeckExhausted.Error(), func() { r.Hit() })
}

type tableFixture struct {
	table    *Table
	store    *store.MemoryStore
	stats    *statistics.Statistics
	recorder *game.Recorder
}

func newFixture(t *testing.T, balance int64, decks ...string) *tableFixture {
	t.Helper()
	f := &tableFixture{
		store:    store.NewMemoryStore(),
		stats:    &statistics.Statistics{},
		recorder: &game.Recorder{},
	}
	next := 0
	f.table = NewTable(randutil.New(1), balance,
		game.WithClock(quartz.NewMock(t)),
		game.WithStore(f.store),
		game.WithStatistics(f.stats),
		game.WithDeckSource(func() *cards.Deck {
			d := stacked(decks[next%len(decks)])
			next++
			return d
		}),
	)
	f.table.Bus().Subscribe(f.recorder)
	return f
}

func (f *tableFixture) saved(t *testing.T) int64 {
	t.Helper()
	amount, ok, err := f.store.Load(context.Background(), "blackjack-money")
	require.NoError(t, err)
	require.True(t, ok)
	return amount
}

func TestTable_NaturalPaysThreeToTwo(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 100, "AS 9H KD 8C")
	ctx := t.Context()

	require.NoError(t, f.table.PlaceBet(ctx, 10))
	assert.Equal(t, int64(90), f.table.Balance())
	assert.Equal(t, int64(90), f.saved(t))

	require.NoError(t, f.table.StartRound(ctx))

	snap := f.table.Snapshot()
	assert.Equal(t, game.Settled, snap.Phase)
	assert.Equal(t, "player_natural", snap.Outcome)
	assert.Equal(t, int64(25), snap.Payout)
	assert.Equal(t, int64(115), snap.Balance)
	assert.Equal(t, int64(115), f.saved(t))
	assert.Equal(t, "Blackjack! You win (21)", snap.Message)
	assert.False(t, snap.Dealer.ScoreHidden)
	assert.Equal(t, 17, snap.Dealer.Score)

	assert.Equal(t, 1, countType(f.recorder, game.EventTypeRoundSettled))
	assert.NotContains(t, phasesOf(f.recorder), game.PlayerTurn)
}

func TestTable_BustSettlesOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 50, "10S 7H 9D 10C 5H")
	ctx := t.Context()

	require.NoError(t, f.table.PlaceBet(ctx, 20))
	require.NoError(t, f.table.StartRound(ctx))
	require.True(t, f.table.Snapshot().CanAct())

	assert.True(t, f.table.Hit(ctx))

	snap := f.table.Snapshot()
	assert.Equal(t, game.Settled, snap.Phase)
	assert.Equal(t, "player_bust", snap.Outcome)
	assert.Equal(t, int64(30), snap.Balance)
	assert.Len(t, snap.Dealer.Cards, 2)

	dealer := f.table.Round().Dealer()
	player := f.table.Round().Player()
	assert.False(t, f.table.Stand(ctx))
	assert.False(t, f.table.Hit(ctx))
	assert.Equal(t, int64(30), f.table.Balance())
	assert.Equal(t, dealer, f.table.Round().Dealer())
	assert.Equal(t, player, f.table.Round().Player())

	assert.Equal(t, 1, f.stats.Rounds)
	assert.Equal(t, 1, f.stats.Losses)
	assert.Equal(t, 1, countType(f.recorder, game.EventTypeRoundSettled))
}

func TestTable_StandTwiceIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 100, "10S 6H 8D 5C 2H 4S")
	ctx := t.Context()

	require.NoError(t, f.table.PlaceBet(ctx, 10))
	require.NoError(t, f.table.StartRound(ctx))
	require.True(t, f.table.Stand(ctx))

	balance := f.table.Balance()
	assert.Equal(t, int64(110), balance)

	assert.False(t, f.table.Stand(ctx))
	assert.Equal(t, balance, f.table.Balance())
	assert.Equal(t, 1, f.stats.Rounds)

	rounds, err := f.store.RecentRounds(ctx, "blackjack", 10)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, "player_win", rounds[0].Outcome)
	assert.Equal(t, []string{"10S", "8D"}, rounds[0].Player)
	assert.Equal(t, int64(20), rounds[0].Payout)
}

func TestTable_PushReturnsStake(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 100, "10S 10H 9D 9C")
	ctx := t.Context()

	require.NoError(t, f.table.PlaceBet(ctx, 40))
	require.NoError(t, f.table.StartRound(ctx))
	require.True(t, f.table.Stand(ctx))

	assert.Equal(t, "push", f.table.Snapshot().Outcome)
	assert.Equal(t, int64(100), f.table.Balance())
	assert.Equal(t, 1, f.stats.Pushes)
}

func TestTable_InvalidWagers(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 100, "10S 10H 9D 9C")
	ctx := t.Context()

	assert.ErrorIs(t, f.table.PlaceBet(ctx, 0), settlement.ErrInvalidWager)
	assert.ErrorIs(t, f.table.PlaceBet(ctx, -5), settlement.ErrInvalidWager)
	assert.ErrorIs(t, f.table.PlaceBet(ctx, 101), settlement.ErrInvalidWager)
	assert.Equal(t, int64(100), f.table.Balance())
	assert.Empty(t, f.recorder.Events())

	assert.ErrorIs(t, f.table.StartRound(ctx), game.ErrInvalidAction)
	assert.Nil(t, f.table.Round())
}

func TestTable_RebetRefundsPreviousStake(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 100, "10S 10H 9D 9C")
	ctx := t.Context()

	require.NoError(t, f.table.PlaceBet(ctx, 60))
	require.NoError(t, f.table.PlaceBet(ctx, 100))
	assert.Equal(t, int64(0), f.table.Balance())

	require.NoError(t, f.table.PlaceBet(ctx, 30))
	assert.Equal(t, int64(70), f.table.Balance())
	assert.Equal(t, int64(30), f.table.Snapshot().Wager)

	assert.ErrorIs(t, f.table.PlaceBet(ctx, 101), settlement.ErrInvalidWager)
	assert.Equal(t, int64(70), f.table.Balance())
}

func TestTable_NoBetsDuringPlayerTurn(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 100, "10S 10H 9D 9C")
	ctx := t.Context()

	require.NoError(t, f.table.PlaceBet(ctx, 10))
	require.NoError(t, f.table.StartRound(ctx))

	assert.ErrorIs(t, f.table.PlaceBet(ctx, 10), game.ErrInvalidAction)
	assert.ErrorIs(t, f.table.StartRound(ctx), game.ErrInvalidAction)
}

func TestTable_EventSequence(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 100, "10S 6H 8D 5C 2H 4S")
	ctx := t.Context()

	require.NoError(t, f.table.PlaceBet(ctx, 10))
	require.NoError(t, f.table.StartRound(ctx))
	require.True(t, f.table.Stand(ctx))

	assert.Equal(t, []game.EventType{
		game.EventTypeBetPlaced,
		game.EventTypeRoundStart,
		game.EventTypePhaseChange, // dealing
		game.EventTypeCardDealt,
		game.EventTypeCardDealt,
		game.EventTypeCardDealt,
		game.EventTypeCardDealt,
		game.EventTypePhaseChange, // player
		game.EventTypePhaseChange, // dealer
		game.EventTypeHoleRevealed,
		game.EventTypeCardDealt,
		game.EventTypeCardDealt,
		game.EventTypePhaseChange, // settled
		game.EventTypeRoundSettled,
	}, f.recorder.Types())

	events := f.recorder.Events()
	hole, ok := events[6].(game.CardDealtEvent)
	require.True(t, ok)
	assert.True(t, hole.FaceDown)
	assert.Equal(t, cards.Card{}, hole.Card)
	assert.True(t, hole.State().Dealer.ScoreHidden)

	settled, ok := events[len(events)-1].(game.RoundSettledEvent)
	require.True(t, ok)
	assert.Equal(t, "player_win", settled.Outcome)
	assert.Equal(t, int64(20), settled.Result.Payout)
	assert.Equal(t, int64(110), settled.State().Balance)
}

func TestTable_ConsecutiveRounds(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 100, "10S 10H 9D 9C", "AS 9H KD 8C")
	ctx := t.Context()

	require.NoError(t, f.table.PlaceBet(ctx, 10))
	require.NoError(t, f.table.StartRound(ctx))
	require.True(t, f.table.Stand(ctx))
	firstID := f.table.Snapshot().RoundID

	assert.ErrorIs(t, f.table.StartRound(ctx), game.ErrInvalidAction, "stake is consumed by settlement")

	require.NoError(t, f.table.PlaceBet(ctx, 10))
	require.NoError(t, f.table.StartRound(ctx))
	assert.NotEqual(t, firstID, f.table.Snapshot().RoundID)
	assert.Equal(t, int64(115), f.table.Balance())
	assert.Equal(t, 2, f.stats.Rounds)
}

func TestNewTable_RequiresRNG(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewTable(nil, 100) })
}

func TestTable_ShuffledRoundsKeepBalanceConsistent(t *testing.T) {
	t.Parallel()
	stats := &statistics.Statistics{}
	table := NewTable(randutil.New(42), 1000, game.WithStatistics(stats))
	ctx := t.Context()

	for range 200 {
		if table.Balance() < 10 {
			break
		}
		require.NoError(t, table.PlaceBet(ctx, 10))
		require.NoError(t, table.StartRound(ctx))
		for table.Phase() == game.PlayerTurn && Score(table.Round().Player()) < 17 {
			table.Hit(ctx)
		}
		table.Stand(ctx)
		require.Equal(t, game.Settled, table.Phase())
	}

	require.NoError(t, stats.Validate())
	assert.Equal(t, int64(1000)+stats.Net(), table.Balance())
}

func countType(r *game.Recorder, et game.EventType) int {
	n := 0
	for _, typ := range r.Types() {
		if typ == et {
			n++
		}
	}
	return n
}

func phasesOf(r *game.Recorder) []game.Phase {
	var out []game.Phase
	for _, ev := range r.Events() {
		if pc, ok := ev.(game.PhaseChangeEvent); ok {
			out = append(out, pc.To)
		}
	}
	return out
}
