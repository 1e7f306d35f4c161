package cards

import (
	"errors"
	"testing"

	"github.com/lox/minicasino/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIsCanonical(t *testing.T) {
	t.Parallel()

	all := Build()
	require.Len(t, all, DeckSize)
	assert.Equal(t, NewCard(Ace, Spades), all[0])
	assert.Equal(t, NewCard(King, Spades), all[12])
	assert.Equal(t, NewCard(Ace, Hearts), all[13])
	assert.Equal(t, NewCard(King, Clubs), all[51])

	seen := make(map[Card]bool)
	for _, c := range all {
		assert.True(t, c.IsValid(), "invalid card %v", c)
		assert.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	t.Parallel()

	for seed := int64(0); seed < 25; seed++ {
		d := NewDeck(randutil.New(seed))
		assert.ElementsMatch(t, Build(), d.Cards(), "seed %d", seed)
	}
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()

	a := NewDeck(randutil.New(42)).Cards()
	b := NewDeck(randutil.New(42)).Cards()
	c := NewDeck(randutil.New(43)).Cards()

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, Build(), a)
}

func TestDrawUntilExhausted(t *testing.T) {
	t.Parallel()

	d := NewDeck(randutil.New(7))
	seen := make(map[Card]bool)
	for i := 0; i < DeckSize; i++ {
		c, err := d.Draw()
		require.NoError(t, err)
		assert.False(t, seen[c], "card %v drawn twice", c)
		seen[c] = true
	}
	assert.Len(t, seen, DeckSize)
	assert.Equal(t, 0, d.Remaining())

	_, err := d.Draw()
	assert.True(t, errors.Is(err, ErrDeckExhausted))
	assert.PanicsWithError(t, ErrDeckExhausted.Error(), func() { d.MustDraw() })
}

func TestDrawTakesFromEnd(t *testing.T) {
	t.Parallel()

	d := NewDeck(randutil.New(1))
	remaining := d.Cards()
	top := remaining[len(remaining)-1]
	assert.Equal(t, top, d.MustDraw())
}

func TestStackedDeckDrawOrder(t *testing.T) {
	t.Parallel()

	want := MustParseCards("AS KH 5D")
	d := NewStackedDeck(want...)
	for _, c := range want {
		assert.Equal(t, c, d.MustDraw())
	}
	assert.Equal(t, 0, d.Remaining())
}

func TestNewDeckRequiresRNG(t *testing.T) {
	assert.Panics(t, func() { NewDeck(nil) })
}
