package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/oichokabu/kabu"
)

// RoundResult is the outcome of a single round from the player's seat.
type RoundResult struct {
	Net         float64 // Net result in units of the stake (+1 win, 0 push, -1 loss)
	Seed        int64   // RNG seed of the session that played the round
	Outcome     kabu.Outcome
	PlayerScore int
	DealerScore int
	PlayerDrew  bool // player took a third card
	DealerDrew  bool // dealer took a third card
}

// ScoreStats tracks results for one final player score.
type ScoreStats struct {
	Rounds int
	Wins   int
	SumNet float64
}

// Statistics aggregates simulated rounds.
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // All results for median/percentile calculation

	Wins   int
	Draws  int
	Losses int

	// Net split by the player's third-card decision
	DrawRounds  int
	DrawNet     float64
	StandRounds int
	StandNet    float64

	DealerDraws int

	// Indexed by the player's final score
	ByScore [10]ScoreStats
}

// Mean returns the expected result per round in stakes.
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
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

// WinRate returns the fraction of rounds won.
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// Add incorporates a round result.
func (s *Statistics) Add(r RoundResult) {
	s.Rounds++
	s.SumNet += r.Net
	s.SumNet2 += r.Net * r.Net
	s.Values = append(s.Values, r.Net)

	switch r.Outcome {
	case kabu.Win:
		s.Wins++
	case kabu.Draw:
		s.Draws++
	default:
		s.Losses++
	}

	if r.PlayerDrew {
		s.DrawRounds++
		s.DrawNet += r.Net
	} else {
		s.StandRounds++
		s.StandNet += r.Net
	}
	if r.DealerDrew {
		s.DealerDraws++
	}

	if r.PlayerScore >= 0 && r.PlayerScore < len(s.ByScore) {
		bs := &s.ByScore[r.PlayerScore]
		bs.Rounds++
		bs.SumNet += r.Net
		if r.Outcome == kabu.Win {
			bs.Wins++
		}
	}
}

// Merge folds other into s. Simulator workers keep private Statistics and
// merge them when they finish.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.Wins += other.Wins
	s.Draws += other.Draws
	s.Losses += other.Losses
	s.DrawRounds += other.DrawRounds
	s.DrawNet += other.DrawNet
	s.StandRounds += other.StandRounds
	s.StandNet += other.StandNet
	s.DealerDraws += other.DealerDraws
	for i := range s.ByScore {
		s.ByScore[i].Rounds += other.ByScore[i].Rounds
		s.ByScore[i].Wins += other.ByScore[i].Wins
		s.ByScore[i].SumNet += other.ByScore[i].SumNet
	}
}

// Median returns the median value of all results
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

// ScoreMean returns the mean result for rounds ending on a player score.
func (s *Statistics) ScoreMean(score int) float64 {
	if score < 0 || score >= len(s.ByScore) {
		return 0
	}
	bs := s.ByScore[score]
	if bs.Rounds == 0 {
		return 0
	}
	return bs.SumNet / float64(bs.Rounds)
}

// IsLedgerBalanced checks that the draw/stand split accounts for every stake.
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.SumNet-s.DrawNet-s.StandNet) <= 1e-6
}

// Validate performs consistency checks on the aggregated data.
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: SumNet=%.6f, DrawNet=%.6f, StandNet=%.6f",
			s.SumNet, s.DrawNet, s.StandNet)
	}
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}
	if s.Wins+s.Draws+s.Losses != s.Rounds {
		return fmt.Errorf("outcomes (%d) do not match rounds (%d)", s.Wins+s.Draws+s.Losses, s.Rounds)
	}
	if s.DrawRounds+s.StandRounds != s.Rounds {
		return fmt.Errorf("draw/stand split (%d) does not match rounds (%d)", s.DrawRounds+s.StandRounds, s.Rounds)
	}
	total := 0
	for _, bs := range s.ByScore {
		total += bs.Rounds
	}
	if total != s.Rounds {
		return fmt.Errorf("score buckets total (%d) does not match rounds (%d)", total, s.Rounds)
	}
	return nil
}
