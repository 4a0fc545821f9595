// Package simulator autoplays rounds with a fixed policy for the observed
// seat, checking tile conservation after every step.
package simulator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/hora"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/internal/round"
	"github.com/lox/mahjongdojo/internal/statistics"
	"github.com/lox/mahjongdojo/tile"
)

// Policies for the observed seat
const (
	// PolicyTsumogiri discards every drawn tile and only takes wins
	PolicyTsumogiri = "tsumogiri"
	// PolicyEfficient discards for the lowest shanten and declares riichi
	// when it can
	PolicyEfficient = "efficient"
)

// maxSteps bounds a round; a full round takes about two hundred
const maxSteps = 2000

// Config holds configuration for running simulations
type Config struct {
	Rounds  int
	Seed    string
	Policy  string
	Workers int
	Timeout time.Duration
	Rule    hand.Rule
	Cache   *outcome.Cache
	Logger  *log.Logger
}

// Simulator runs autoplayed rounds
type Simulator struct {
	config Config
	eval   *outcome.Evaluator
	runID  string
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Policy == "" {
		config.Policy = PolicyEfficient
	}
	return &Simulator{
		config: config,
		eval:   outcome.NewEvaluator(config.Cache, config.Logger),
		runID:  uuid.NewString(),
	}
}

// RunID identifies this simulator's run in logs
func (s *Simulator) RunID() string {
	return s.runID
}

// Run plays every round and returns the accumulated statistics. Rounds run
// in parallel but are added in seed order, so results are reproducible.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	switch s.config.Policy {
	case PolicyTsumogiri, PolicyEfficient:
	default:
		return nil, fmt.Errorf("unknown policy %q", s.config.Policy)
	}

	logger := s.config.Logger.With("run", s.runID)
	logger.Info("Starting simulation", "rounds", s.config.Rounds, "policy", s.config.Policy, "workers", s.config.Workers)

	results := make([]statistics.RoundResult, s.config.Rounds)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range s.config.Rounds {
		seed := fmt.Sprintf("%s-%d", s.config.Seed, i)
		g.Go(func() error {
			r, err := s.playRoundWithTimeout(ctx, seed)
			if err != nil {
				return fmt.Errorf("round %d: %w", i+1, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	logger.Info("Simulation finished", "rounds", stats.Rounds, "wins", stats.Wins())
	return stats, nil
}

func (s *Simulator) playRoundWithTimeout(ctx context.Context, seed string) (statistics.RoundResult, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	return s.PlayRound(ctx, seed)
}

// PlayRound autoplays a single round dealt from seed
func (s *Simulator) PlayRound(ctx context.Context, seed string) (result statistics.RoundResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("seed %s: %v", seed, r)
		}
	}()

	e := round.NewEngine(s.eval, s.config.Logger, round.WithRule(s.config.Rule))
	e.NewGame(seed)
	snap := e.LogShanten()
	start := snap.ShantenHistory[0]

	reactions := 0
	for step := 0; !snap.RoundOver && !snap.GameOver; step++ {
		if err := ctx.Err(); err != nil {
			return statistics.RoundResult{}, fmt.Errorf("seed %s after %d steps: %w", seed, step, err)
		}
		if step >= maxSteps {
			return statistics.RoundResult{}, fmt.Errorf("seed %s did not finish in %d steps", seed, maxSteps)
		}
		if snap.ReactionPhase {
			reactions++
		}
		snap = s.step(e, snap)
		if err := snap.Verify(); err != nil {
			return statistics.RoundResult{}, fmt.Errorf("seed %s step %d: %w", seed, step, err)
		}
	}
	return summarize(snap, start, reactions), nil
}

// step makes the observed seat's choice, or advances the round
func (s *Simulator) step(e *round.Engine, snap *round.Snapshot) *round.Snapshot {
	switch {
	case snap.ReactionPhase:
		if next := e.CallRon(); next.RoundOver || next.GameOver {
			return next
		}
		return e.Pass()
	case snap.Turn == hand.Self && snap.Input.Drawn != nil:
		q := snap.Query()
		q.Options.Tsumo = true
		if len(outcome.Lines(s.eval.Evaluate(q), snap.Input.Drawn)) > 0 {
			if next := e.CallTsumo(); next.RoundOver || next.GameOver {
				return next
			}
		}
		if s.config.Policy == PolicyTsumogiri || snap.Options.Riichi.Active() {
			return e.DiscardDrawn()
		}
		return s.discardEfficient(e, snap)
	default:
		return e.Next()
	}
}

func (s *Simulator) discardEfficient(e *round.Engine, snap *round.Snapshot) *round.Snapshot {
	pd, ok := s.eval.Evaluate(snap.Query()).(outcome.PendingDiscard)
	if !ok || len(pd.Candidates) == 0 {
		return e.DiscardDrawn()
	}

	if outcome.Rank(pd.Candidates[0].Next) == 0 && snap.Input.IsConcealed() {
		next := e.CallRiichi()
		if sel := next.Selection; sel != nil && sel.Kind == round.SelectRiichi {
			return e.SelectTile(tile.Index(next.FullHand(), sel.Approved[0]))
		}
		snap = next
	}
	return e.Discard(tile.Index(snap.FullHand(), pd.Candidates[0].Tile))
}

func summarize(snap *round.Snapshot, start, reactions int) statistics.RoundResult {
	r := statistics.RoundResult{
		Seed:          snap.Seed,
		Seat:          snap.Table.Seat,
		StartShanten:  start,
		Discards:      len(snap.Discards[hand.Self]),
		Riichi:        snap.Options.Riichi.Active(),
		ReactionCalls: reactions,
	}
	switch {
	case len(snap.Win) > 0:
		best := snap.Win[0]
		for _, l := range snap.Win[1:] {
			if l.Points.Total > best.Points.Total {
				best = l
			}
		}
		r.Outcome = statistics.Ron
		if best.Source == hora.Tsumo {
			r.Outcome = statistics.Tsumo
		}
		r.Points = best.Points.Total
		r.Tenpai = true
	case len(snap.Input.Dora) == len(snap.DoraPending):
		r.Outcome = statistics.KanLimit
	default:
		r.Outcome = statistics.Exhaustive
		r.Tenpai = snap.Table.Tenpai
	}
	return r
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics, policy string) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== RESULTS (%s policy) ===\n", policy)
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)

	fmt.Fprintf(w, "\n=== STARTING SHANTEN ===\n")
	fmt.Fprintf(w, "Mean: %.3f\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.1f\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.3f\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.3f, %.3f]\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	for _, o := range []statistics.Outcome{statistics.Tsumo, statistics.Ron, statistics.Exhaustive, statistics.KanLimit} {
		n := stats.Outcomes[o]
		fmt.Fprintf(w, "%-11s %5d (%.1f%%)\n", o+":", n, float64(n)/float64(stats.Rounds)*100)
	}
	fmt.Fprintf(w, "Tenpai at end: %d (%.1f%%)\n", stats.Tenpai, float64(stats.Tenpai)/float64(stats.Rounds)*100)
	fmt.Fprintf(w, "Riichi declared: %d\n", stats.Riichi)
	if stats.MaxPoints > 0 {
		fmt.Fprintf(w, "Best win: %d points (seed %s)\n", stats.MaxPoints, stats.MaxSeed)
	}

	fmt.Fprintf(w, "\n=== SEAT ANALYSIS ===\n")
	for _, wind := range hand.Winds {
		ss := stats.Seats[wind.Index()]
		if ss.Rounds > 0 {
			fmt.Fprintf(w, "%-5s %d rounds, %.1f%% won, %d points\n",
				wind, ss.Rounds, stats.SeatWinRate(wind)*100, ss.SumPoints)
		}
	}
}
