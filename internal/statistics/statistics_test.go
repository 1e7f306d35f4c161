package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics_Empty(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}

	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.Percentile(0.5))
	assert.Zero(t, stats.WinRate())
	assert.Zero(t, stats.ReturnRate())
	assert.NoError(t, stats.Validate())
}

func TestStatistics_Add(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	stats.Add(RoundResult{Outcome: "player_win", Wager: 10, Payout: 20, Won: true})
	stats.Add(RoundResult{Outcome: "dealer_win", Wager: 10})
	stats.Add(RoundResult{Outcome: "push", Wager: 10, Payout: 10, Push: true})
	stats.Add(RoundResult{Outcome: "player_natural", Wager: 10, Payout: 25, Won: true})

	assert.Equal(t, 4, stats.Rounds)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 1, stats.Pushes)
	assert.Equal(t, int64(40), stats.Wagered)
	assert.Equal(t, int64(55), stats.Returned)
	assert.Equal(t, int64(15), stats.Net())
	assert.InDelta(t, 3.75, stats.Mean(), 1e-9)
	assert.InDelta(t, 0.5, stats.WinRate(), 1e-9)
	assert.InDelta(t, 55.0/40.0, stats.ReturnRate(), 1e-9)
	assert.Equal(t, 1, stats.Outcomes["push"])
	require.NoError(t, stats.Validate())
}

func TestStatistics_VarianceAndInterval(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	for _, net := range []int64{10, -10, 10, -10} {
		r := RoundResult{Outcome: "x", Wager: 10}
		if net > 0 {
			r.Payout = 20
			r.Won = true
		}
		stats.Add(r)
	}

	assert.InDelta(t, 0, stats.Mean(), 1e-9)
	// Sample variance of ±10: 400/3
	assert.InDelta(t, 400.0/3.0, stats.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(400.0/3.0), stats.StdDev(), 1e-9)
	assert.InDelta(t, stats.StdDev()/2, stats.StdError(), 1e-9)

	lo, hi := stats.ConfidenceInterval95()
	assert.InDelta(t, -1.96*stats.StdError(), lo, 1e-9)
	assert.InDelta(t, 1.96*stats.StdError(), hi, 1e-9)
}

func TestStatistics_Streaks(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	win := RoundResult{Outcome: "w", Wager: 5, Payout: 10, Won: true}
	loss := RoundResult{Outcome: "l", Wager: 5}
	push := RoundResult{Outcome: "p", Wager: 5, Payout: 5, Push: true}

	for _, r := range []RoundResult{win, win, loss, loss, loss, push, win, win, win, win} {
		stats.Add(r)
	}

	assert.Equal(t, 4, stats.LongestWins)
	assert.Equal(t, 3, stats.LongestLosses)
}

func TestStatistics_MedianAndPercentile(t *testing.T) {
	t.Parallel()
	stats := &Statistics{Values: []float64{5, -5, 0, 10}, Rounds: 4}

	assert.InDelta(t, 2.5, stats.Median(), 1e-9)
	assert.InDelta(t, -5, stats.Percentile(0), 1e-9)
	assert.InDelta(t, 10, stats.Percentile(1), 1e-9)
}

func TestStatistics_Merge(t *testing.T) {
	t.Parallel()
	a := &Statistics{}
	a.Add(RoundResult{Outcome: "BANKER", Wager: 20, Payout: 19, Won: true})
	b := &Statistics{}
	b.Add(RoundResult{Outcome: "TIE", Wager: 10})
	b.Add(RoundResult{Outcome: "TIE", Wager: 10})

	a.Merge(b)
	a.Merge(nil)

	assert.Equal(t, 3, a.Rounds)
	assert.Equal(t, 2, a.Outcomes["TIE"])
	assert.Equal(t, 2, a.LongestLosses)
	assert.Len(t, a.Values, 3)
	require.NoError(t, a.Validate())
}

func TestStatistics_ValidateDetectsMismatch(t *testing.T) {
	t.Parallel()
	stats := &Statistics{Rounds: 2, Wins: 1}
	assert.Error(t, stats.Validate())
}
