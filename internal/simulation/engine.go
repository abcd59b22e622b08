// Package simulation estimates a competitor's win probability by Monte Carlo over the
// holes still to play.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidScenario indicates scenario or engine parameters that cannot be simulated
	ErrInvalidScenario = errors.New("invalid simulation scenario")

	// ErrSimulationCancelled indicates the run stopped before any trial batch completed
	ErrSimulationCancelled = errors.New("simulation cancelled before any trials completed")
)

const holesPerRound = 18.0

// Config configures the Monte Carlo engine
type Config struct {
	Trials    int
	RoundSD   float64
	Workers   int
	BatchSize int
	Timeout   time.Duration
}

// DefaultConfig returns 5000 trials with a 2.4-stroke round standard deviation.
func DefaultConfig() Config {
	return Config{
		Trials:    5000,
		RoundSD:   2.4,
		Workers:   runtime.GOMAXPROCS(0),
		BatchSize: 500,
	}
}

// Scenario is the live tournament state being simulated.
type Scenario struct {
	ShotsBehind float64
	HolesLeft   int
	SGRate      float64
	Contenders  int
}

// Result is the outcome of a simulation run.
type Result struct {
	Probability float64       `json:"probability"`
	Wins        int64         `json:"wins"`
	Trials      int64         `json:"trials"`
	Requested   int           `json:"requested"`
	Truncated   bool          `json:"truncated"`
	Duration    time.Duration `json:"duration"`
}

// Engine runs trial batches in parallel and sums their win counts.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine, filling zero fields from DefaultConfig.
func NewEngine(cfg Config) (*Engine, error) {
	defaults := DefaultConfig()
	if cfg.Trials == 0 {
		cfg.Trials = defaults.Trials
	}
	if cfg.RoundSD == 0 {
		cfg.RoundSD = defaults.RoundSD
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.Trials < 0 {
		return nil, fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidScenario, cfg.Trials)
	}
	if cfg.RoundSD < 0 || math.IsNaN(cfg.RoundSD) {
		return nil, fmt.Errorf("%w: round standard deviation cannot be negative", ErrInvalidScenario)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the effective engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Estimate simulates the scenario. If ctx is cancelled or the engine timeout elapses the
// estimate covers the batches that finished and Truncated is set.
func (e *Engine) Estimate(ctx context.Context, sc Scenario, streams Streams) (Result, error) {
	if err := validateScenario(sc); err != nil {
		return Result{}, err
	}
	if streams == nil {
		streams = NewStreams(0)
	}
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	batches := (e.cfg.Trials + e.cfg.BatchSize - 1) / e.cfg.BatchSize

	var wins, completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for b := 0; b < batches; b++ {
		if gctx.Err() != nil {
			break
		}
		size := min(e.cfg.BatchSize, e.cfg.Trials-b*e.cfg.BatchSize)
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			wins.Add(runBatch(sc, size, e.cfg.RoundSD, streams.Stream(b)))
			completed.Add(int64(size))
			return nil
		})
	}
	_ = g.Wait()

	result := Result{
		Wins:      wins.Load(),
		Trials:    completed.Load(),
		Requested: e.cfg.Trials,
		Duration:  time.Since(start),
	}
	if result.Trials == 0 {
		cause := context.Cause(ctx)
		if cause == nil {
			cause = context.Canceled
		}
		return result, fmt.Errorf("%w: %w", ErrSimulationCancelled, cause)
	}
	result.Truncated = result.Trials < int64(e.cfg.Trials)
	result.Probability = float64(result.Wins) / float64(result.Trials)
	return result, nil
}

func validateScenario(sc Scenario) error {
	if sc.HolesLeft < 0 {
		return fmt.Errorf("%w: holes left cannot be negative, got %d", ErrInvalidScenario, sc.HolesLeft)
	}
	if sc.Contenders < 1 {
		return fmt.Errorf("%w: contender pool must include the competitor, got %d", ErrInvalidScenario, sc.Contenders)
	}
	if math.IsNaN(sc.ShotsBehind) || math.IsNaN(sc.SGRate) {
		return fmt.Errorf("%w: scenario values must be numbers", ErrInvalidScenario)
	}
	return nil
}

// runBatch plays size trials and returns the number won. Lower is better: the competitor
// wins when its final deficit is no worse than every rival's deviation from the leader.
func runBatch(sc Scenario, size int, roundSD float64, src Source) int64 {
	rounds := float64(sc.HolesLeft) / holesPerRound
	mean := -sc.SGRate * rounds
	sd := roundSD * math.Sqrt(rounds)

	var wins int64
	for i := 0; i < size; i++ {
		you := sc.ShotsBehind + mean + sd*src.NormFloat64()

		// A lone contender only has the leader's pace to beat.
		best := 0.0
		if sc.Contenders > 1 {
			best = math.Inf(1)
			for j := 1; j < sc.Contenders; j++ {
				if other := sd * src.NormFloat64(); other < best {
					best = other
				}
			}
		}
		if you <= best {
			wins++
		}
	}
	return wins
}
