// Package statistics accumulates per-session results of settled rounds.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// RoundResult represents the outcome of a single settled round
type RoundResult struct {
	Outcome string // Outcome name, e.g. "player_win" or "BANKER"
	Wager   int64  // Stake debited for the round
	Payout  int64  // Amount credited back at settlement
	Won     bool   // Bet beat the house
	Push    bool   // Stake returned, nothing won or lost
}

// Net returns the balance change over the round
func (r RoundResult) Net() int64 {
	return r.Payout - r.Wager
}

// Statistics tracks session results. It is not safe for concurrent use;
// simulator sessions each keep their own and Merge them afterwards.
type Statistics struct {
	Rounds int
	Wins   int
	Losses int
	Pushes int

	Wagered  int64
	Returned int64

	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Per-round net for median/percentile calculation

	Outcomes map[string]int

	streak        int // Positive for consecutive wins, negative for losses
	LongestWins   int
	LongestLosses int
}

// Add incorporates a settled round
func (s *Statistics) Add(r RoundResult) {
	net := float64(r.Net())
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)
	s.Wagered += r.Wager
	s.Returned += r.Payout

	if s.Outcomes == nil {
		s.Outcomes = make(map[string]int)
	}
	s.Outcomes[r.Outcome]++

	switch {
	case r.Push:
		s.Pushes++
		s.streak = 0
	case r.Won:
		s.Wins++
		if s.streak < 0 {
			s.streak = 0
		}
		s.streak++
		s.LongestWins = max(s.LongestWins, s.streak)
	default:
		s.Losses++
		if s.streak > 0 {
			s.streak = 0
		}
		s.streak--
		s.LongestLosses = max(s.LongestLosses, -s.streak)
	}
}

// Merge folds other into s. Streaks are kept as the longer of the two.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	s.Rounds += other.Rounds
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Wagered += other.Wagered
	s.Returned += other.Returned
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	if len(other.Outcomes) > 0 && s.Outcomes == nil {
		s.Outcomes = make(map[string]int, len(other.Outcomes))
	}
	for k, v := range other.Outcomes {
		s.Outcomes[k] += v
	}
	s.LongestWins = max(s.LongestWins, other.LongestWins)
	s.LongestLosses = max(s.LongestLosses, other.LongestLosses)
}

// Net returns the total balance change over all rounds
func (s *Statistics) Net() int64 {
	return s.Returned - s.Wagered
}

// WinRate returns the fraction of rounds won
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// ReturnRate returns the amount credited per unit wagered
func (s *Statistics) ReturnRate() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return float64(s.Returned) / float64(s.Wagered)
}

// Mean returns the mean net result per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of per-round results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of per-round results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(max(s.Variance(), 0))
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median per-round result
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks that the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Wins+s.Losses+s.Pushes != s.Rounds {
		return fmt.Errorf("wins (%d) + losses (%d) + pushes (%d) does not match rounds (%d)",
			s.Wins, s.Losses, s.Pushes, s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}
	if math.Abs(s.SumNet-float64(s.Net())) > 1e-6 {
		return fmt.Errorf("ledger mismatch: sum of nets %.2f, returned - wagered %d", s.SumNet, s.Net())
	}
	total := 0
	for _, n := range s.Outcomes {
		total += n
	}
	if total != s.Rounds {
		return fmt.Errorf("outcome total (%d) does not match rounds (%d)", total, s.Rounds)
	}
	return nil
}
