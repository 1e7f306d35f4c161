package autoplay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/minicasino/internal/baccarat"
	"github.com/lox/minicasino/internal/blackjack"
	"github.com/lox/minicasino/internal/cards"
	"github.com/lox/minicasino/internal/game"
	"github.com/lox/minicasino/internal/randutil"
	"github.com/lox/minicasino/internal/statistics"
)

func hand(s string) cards.Hand {
	return cards.Hand(cards.MustParseCards(s))
}

func card(s string) cards.Card {
	c, err := cards.ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

func TestMimicDealer(t *testing.T) {
	t.Parallel()
	s := MimicDealer{}
	assert.Equal(t, Hit, s.Decide(hand("10S 6H"), card("7D")))
	assert.Equal(t, Stand, s.Decide(hand("10S 7H"), card("7D")))
	assert.Equal(t, Stand, s.Decide(hand("AS 6H"), card("7D")))
}

func TestBasic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		player string
		up     string
		want   Action
	}{
		{"hard 16 vs 10", "10S 6H", "KD", Hit},
		{"hard 16 vs 6", "10S 6H", "6D", Stand},
		{"hard 12 vs 2", "10S 2H", "2D", Hit},
		{"hard 12 vs 4", "10S 2H", "4D", Stand},
		{"hard 11", "9S 2H", "6D", Hit},
		{"hard 17 vs ace", "10S 7H", "AD", Stand},
		{"soft 18 vs 9", "AS 7H", "9D", Hit},
		{"soft 18 vs 8", "AS 7H", "8D", Stand},
		{"soft 17", "AS 6H", "2D", Hit},
		{"soft 19", "AS 8H", "10D", Stand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Basic{}.Decide(hand(tt.player), card(tt.up)))
		})
	}
}

func TestRandomStandsOnTwentyOne(t *testing.T) {
	t.Parallel()
	r := NewRandom(randutil.New(3))
	for range 20 {
		assert.Equal(t, Stand, r.Decide(hand("AS KH"), card("2D")))
	}
	assert.Panics(t, func() { NewRandom(nil) })
}

func TestSidePickers(t *testing.T) {
	t.Parallel()

	fixed := Fixed(baccarat.Tie)
	assert.Equal(t, baccarat.Tie, fixed.Pick(baccarat.Player, true))
	assert.Equal(t, "fixed-tie", fixed.Name())

	follow := &FollowWinner{}
	assert.Equal(t, baccarat.Banker, follow.Pick(baccarat.Player, false))
	assert.Equal(t, baccarat.Player, follow.Pick(baccarat.Player, true))
	assert.Equal(t, baccarat.Player, follow.Pick(baccarat.Tie, true))
	assert.Equal(t, baccarat.Banker, follow.Pick(baccarat.Banker, true))

	random := NewRandomSide(randutil.New(5))
	seen := map[baccarat.Side]bool{}
	for range 100 {
		seen[random.Pick(baccarat.Player, true)] = true
	}
	assert.Len(t, seen, 3)
}

func TestPlayBlackjack(t *testing.T) {
	t.Parallel()
	stats := &statistics.Statistics{}
	table := blackjack.NewTable(randutil.New(11), 500, game.WithStatistics(stats))

	played, err := PlayBlackjack(t.Context(), table, Basic{}, Plan{Rounds: 50, Bet: 5}, nil)
	require.NoError(t, err)

	assert.Equal(t, played, stats.Rounds)
	assert.LessOrEqual(t, played, 50)
	assert.Equal(t, int64(500)+stats.Net(), table.Balance())
	require.NoError(t, stats.Validate())
}

func TestPlayBlackjackStopsWhenBroke(t *testing.T) {
	t.Parallel()
	table := blackjack.NewTable(randutil.New(1), 4)

	played, err := PlayBlackjack(t.Context(), table, MimicDealer{}, Plan{Rounds: 10, Bet: 5}, nil)
	require.NoError(t, err)
	assert.Zero(t, played)
}

func TestPlayBlackjackRejectsBadPlan(t *testing.T) {
	t.Parallel()
	table := blackjack.NewTable(randutil.New(1), 100)

	_, err := PlayBlackjack(t.Context(), table, MimicDealer{}, Plan{Rounds: 10, Bet: 0}, nil)
	assert.Error(t, err)
}

func TestPlayBaccarat(t *testing.T) {
	t.Parallel()
	stats := &statistics.Statistics{}
	table := baccarat.NewTable(randutil.New(13), 1000, game.WithStatistics(stats))

	played, err := PlayBaccarat(t.Context(), table, &FollowWinner{}, Plan{Rounds: 40, Bet: 10}, nil)
	require.NoError(t, err)

	assert.Equal(t, played, stats.Rounds)
	assert.Equal(t, game.Idle, table.Phase())
	assert.Equal(t, int64(1000)+stats.Net(), table.Balance())
}

func TestPlayBaccaratHonoursContext(t *testing.T) {
	t.Parallel()
	table := baccarat.NewTable(randutil.New(13), 1000)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	played, err := PlayBaccarat(ctx, table, Fixed(baccarat.Banker), Plan{Rounds: 5, Bet: 10}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, played)
}
