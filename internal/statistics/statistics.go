// Package statistics accumulates results of simulated rounds.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/mahjongdojo/internal/hand"
)

// Outcome is how a simulated round ended
type Outcome string

const (
	Tsumo      Outcome = "tsumo"
	Ron        Outcome = "ron"
	Exhaustive Outcome = "exhaustive"
	// KanLimit is the round ended by the fifth dora indicator
	KanLimit Outcome = "kan-limit"
)

// RoundResult represents the outcome of a single simulated round
type RoundResult struct {
	Seed          string    // Wall seed (for replay)
	Seat          hand.Wind // Observed seat's wind
	Outcome       Outcome
	StartShanten  int  // Shanten of the dealt hand
	Tenpai        bool // Tenpai or better when the round ended
	Points        int  // Points won, zero unless the observed seat won
	Discards      int  // Discards made by the observed seat
	Riichi        bool
	ReactionCalls int // Reaction windows the observed seat saw
}

// SeatStats tracks statistics for one seat wind
type SeatStats struct {
	Rounds    int
	Wins      int
	SumPoints int
}

// Statistics tracks simulation statistics. The distribution fields describe
// the starting shanten.
type Statistics struct {
	Rounds      int
	SumShanten  float64
	SumShanten2 float64   // Sum of squares for variance calculation
	Values      []float64 // All starting shanten values for median/percentile

	Outcomes map[Outcome]int
	Tenpai   int
	Riichi   int

	SumPoints int
	MaxPoints int
	MaxSeed   string // Seed of the highest scoring round

	Seats [4]SeatStats // Indexed by hand.Wind.Index()
}

// Mean returns the mean starting shanten
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumShanten / float64(s.Rounds)
}

// Variance returns the sample variance of the starting shanten
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumShanten2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation
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

// Add incorporates a round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	v := float64(result.StartShanten)
	s.Rounds++
	s.SumShanten += v
	s.SumShanten2 += v * v
	s.Values = append(s.Values, v)

	if s.Outcomes == nil {
		s.Outcomes = map[Outcome]int{}
	}
	s.Outcomes[result.Outcome]++
	if result.Tenpai {
		s.Tenpai++
	}
	if result.Riichi {
		s.Riichi++
	}

	s.SumPoints += result.Points
	if result.Points > s.MaxPoints {
		s.MaxPoints = result.Points
		s.MaxSeed = result.Seed
	}

	seat := &s.Seats[result.Seat.Index()]
	seat.Rounds++
	if result.IsWin() {
		seat.Wins++
		seat.SumPoints += result.Points
	}
}

// IsWin reports whether the observed seat won the round
func (r RoundResult) IsWin() bool {
	return r.Outcome == Tsumo || r.Outcome == Ron
}

// Wins returns the number of rounds the observed seat won
func (s *Statistics) Wins() int {
	return s.Outcomes[Tsumo] + s.Outcomes[Ron]
}

// WinRate returns the share of rounds won
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins()) / float64(s.Rounds)
}

// Median returns the median starting shanten
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
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

// SeatWinRate returns the win rate for a seat wind
func (s *Statistics) SeatWinRate(w hand.Wind) float64 {
	ss := s.Seats[w.Index()]
	if ss.Rounds == 0 {
		return 0
	}
	return float64(ss.Wins) / float64(ss.Rounds)
}

// Validate checks that the accumulated counts agree
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	outcomes := 0
	for _, n := range s.Outcomes {
		outcomes += n
	}
	if outcomes != s.Rounds {
		return fmt.Errorf("outcome total (%d) does not match rounds count (%d)", outcomes, s.Rounds)
	}

	seatRounds, seatWins, seatPoints := 0, 0, 0
	for _, ss := range s.Seats {
		seatRounds += ss.Rounds
		seatWins += ss.Wins
		seatPoints += ss.SumPoints
	}
	if seatRounds != s.Rounds {
		return fmt.Errorf("seat rounds total (%d) does not match rounds count (%d)", seatRounds, s.Rounds)
	}
	if seatWins != s.Wins() {
		return fmt.Errorf("seat wins total (%d) does not match wins (%d)", seatWins, s.Wins())
	}
	if seatPoints != s.SumPoints {
		return fmt.Errorf("seat points total (%d) does not match points (%d)", seatPoints, s.SumPoints)
	}
	if s.Tenpai > s.Rounds {
		return fmt.Errorf("tenpai count (%d) exceeds rounds count (%d)", s.Tenpai, s.Rounds)
	}
	return nil
}
