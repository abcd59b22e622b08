// Package engine wires scoring, simulation, pricing, signals and staking into the
// operations callers use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-apex/internal/calibration"
	"github.com/yourusername/odds-apex/internal/logger"
	"github.com/yourusername/odds-apex/internal/metrics"
	"github.com/yourusername/odds-apex/internal/models"
	"github.com/yourusername/odds-apex/internal/pricing"
	"github.com/yourusername/odds-apex/internal/scoring"
	"github.com/yourusername/odds-apex/internal/signals"
	"github.com/yourusername/odds-apex/internal/simulation"
	"github.com/yourusername/odds-apex/internal/staking"
)

// Options configures an Engine. Zero values fall back to the package defaults.
type Options struct {
	Params     models.ModelParams
	Simulation simulation.Config
	Staking    staking.Settings
	Thresholds []signals.Threshold
	Cache      CacheOptions
	Logger     *logrus.Logger
}

// DefaultOptions returns the default model, simulation, staking and cache settings.
func DefaultOptions() Options {
	return Options{
		Params:     models.DefaultModelParams(),
		Simulation: simulation.DefaultConfig(),
		Staking:    staking.DefaultSettings(),
		Thresholds: signals.DefaultThresholds(),
		Cache:      DefaultCacheOptions(),
	}
}

// Engine computes estimates, valuations, signals and stakes. It is safe for concurrent use.
type Engine struct {
	params     models.ModelParams
	scorer     *scoring.Scorer
	calib      *calibration.Calibration
	sim        *simulation.Engine
	comparator *pricing.Comparator
	classifier *signals.Classifier
	registry   *staking.Registry
	cache      *EstimateCache
	log        *logger.EngineLogger
	audit      *logger.AuditLogger
}

// New creates an engine.
func New(opts Options) (*Engine, error) {
	if opts.Params == (models.ModelParams{}) {
		opts.Params = models.DefaultModelParams()
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model parameters: %w", err)
	}
	if opts.Staking == (staking.Settings{}) {
		opts.Staking = staking.DefaultSettings()
	}
	base := opts.Logger
	if base == nil {
		base = logrus.New()
		base.SetOutput(io.Discard)
	}

	calib, err := calibration.New(opts.Params)
	if err != nil {
		return nil, err
	}
	sim, err := simulation.NewEngine(opts.Simulation)
	if err != nil {
		return nil, err
	}
	classifier, err := signals.NewClassifier(opts.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("invalid signal thresholds: %w", err)
	}
	registry, err := staking.NewRegistry(opts.Staking, base.WithField("component", "staking"))
	if err != nil {
		return nil, err
	}

	e := &Engine{
		params:     opts.Params,
		scorer:     scoring.NewScorer(opts.Params),
		calib:      calib,
		sim:        sim,
		comparator: pricing.NewComparator(opts.Params),
		classifier: classifier,
		registry:   registry,
		log:        logger.NewEngineLogger(base),
		audit:      logger.NewAuditLogger(base),
	}
	if opts.Cache.Enabled {
		e.cache = NewEstimateCache(opts.Cache.TTL, opts.Cache.MaxItems)
	}
	return e, nil
}

// Params returns the model parameters.
func (e *Engine) Params() models.ModelParams {
	return e.params
}

// StakingSettings returns the default staking settings.
func (e *Engine) StakingSettings() staking.Settings {
	return e.registry.Settings()
}

// Cache returns the estimate cache, or nil when caching is disabled.
func (e *Engine) Cache() *EstimateCache {
	return e.cache
}

// Breakdown returns the heuristic score terms for an input.
func (e *Engine) Breakdown(input models.CompetitorInput) (scoring.Breakdown, error) {
	if err := e.scorer.Validate(input); err != nil {
		return scoring.Breakdown{}, err
	}
	return e.scorer.Breakdown(input)
}

// EstimateWinProbability scores, calibrates and simulates one competitor and blends the
// two probabilities. A non-zero seed makes the result reproducible; seeded results are
// cached.
func (e *Engine) EstimateWinProbability(ctx context.Context, input models.CompetitorInput, seed int64) (models.ProbabilityEstimate, error) {
	start := time.Now()
	log := e.log.WithRun(uuid.NewString())

	if err := e.scorer.Validate(input); err != nil {
		metrics.RecordEstimate("error")
		return models.ProbabilityEstimate{}, err
	}

	var key CacheKey
	cacheable := e.cache != nil && seed != 0
	if cacheable {
		k, err := NewCacheKey(input, seed, e.sim.Config().Trials)
		if err != nil {
			cacheable = false
		} else {
			key = k
			if est, ok := e.cache.Get(key); ok {
				metrics.RecordEstimate("cached")
				log.LogEstimate(input.Name, est.Score, est.Calibrated, est.Simulated, est.Final, est.Trials, true, msSince(start))
				return est, nil
			}
		}
	}

	score, err := e.scorer.Score(input)
	if err != nil {
		metrics.RecordEstimate("error")
		return models.ProbabilityEstimate{}, err
	}
	calibrated := e.calib.Probability(score)

	scenario := simulation.ScenarioFor(input, e.params)
	result, err := e.sim.Estimate(ctx, scenario, simulation.NewStreams(seed))
	if err != nil {
		metrics.RecordEstimate("error")
		return models.ProbabilityEstimate{}, fmt.Errorf("simulation for %s: %w", input.Name, err)
	}
	metrics.RecordSimulation(result.Duration.Seconds(), result.Trials, result.Truncated)
	if result.Truncated {
		reason := "timeout"
		if cause := context.Cause(ctx); cause != nil {
			reason = cause.Error()
		}
		log.LogSimulationTruncated(input.Name, result.Trials, result.Requested, reason)
	}

	est := models.ProbabilityEstimate{
		Score:      score,
		Calibrated: calibrated,
		Simulated:  result.Probability,
		Final:      pricing.Blend(e.params, calibrated, result.Probability),
		SGRate:     scenario.SGRate,
		Trials:     int(result.Trials),
		Truncated:  result.Truncated,
	}

	if cacheable && !est.Truncated {
		e.cache.Set(key, est)
	}
	metrics.RecordEstimate("ok")
	log.LogEstimate(input.Name, est.Score, est.Calibrated, est.Simulated, est.Final, est.Trials, false, msSince(start))
	return est, nil
}

// ValueAgainstMarket compares an estimate with the live decimal odds.
func (e *Engine) ValueAgainstMarket(estimate models.ProbabilityEstimate, name string, liveOdds float64) (models.Valuation, error) {
	v, err := e.comparator.Value(estimate, name, liveOdds)
	if err != nil {
		metrics.RecordValuation("invalid_odds")
		return models.Valuation{}, err
	}
	metrics.RecordValuation("ok")
	e.log.LogValuation(v.Name, v.Final, v.Implied, v.Edge, v.FairOdds, v.LiveOdds, v.EVBack)
	return v, nil
}

// ClassifySignals ranks the field and grades each entry. The input is not modified.
func (e *Engine) ClassifySignals(field []models.FieldEntry) []models.FieldEntry {
	classified := e.classifier.Classify(field)
	for _, entry := range classified {
		metrics.RecordSignal(entry.Tier.String())
		if entry.Tier.Eligible() {
			e.log.LogSignal(entry.Name, entry.Tier.String(), entry.ModelRank, entry.MarketRank, entry.EdgePercent())
		}
	}
	return classified
}

// StakeRequest selects a policy and bankroll, optionally overriding the flat and
// mini-Kelly percentages.
type StakeRequest struct {
	Policy       string   `json:"policy"`
	Bankroll     float64  `json:"bankroll"`
	FlatPct      *float64 `json:"flat_pct,omitempty"`
	MiniKellyPct *float64 `json:"mini_kelly_pct,omitempty"`
}

// RecommendStakes sizes lays for the candidates under the named policy.
func (e *Engine) RecommendStakes(policyName string, bankroll float64, candidates []staking.Candidate) ([]models.StakeRecommendation, error) {
	return e.recommend(uuid.NewString(), StakeRequest{Policy: policyName, Bankroll: bankroll}, candidates)
}

func (e *Engine) recommend(runID string, req StakeRequest, candidates []staking.Candidate) ([]models.StakeRecommendation, error) {
	settings := e.registry.Settings()
	if req.FlatPct != nil {
		if *req.FlatPct != settings.FlatPct {
			e.audit.LogParameterChange(runID, "staking.flat_pct", settings.FlatPct, *req.FlatPct, "request")
		}
		settings.FlatPct = *req.FlatPct
	}
	if req.MiniKellyPct != nil {
		if *req.MiniKellyPct != settings.MiniKellyPct {
			e.audit.LogParameterChange(runID, "staking.mini_kelly_pct", settings.MiniKellyPct, *req.MiniKellyPct, "request")
		}
		settings.MiniKellyPct = *req.MiniKellyPct
	}

	policy, err := e.registry.Build(req.Policy, settings)
	if err != nil {
		e.audit.LogStakingRejected(runID, req.Policy, req.Bankroll, err.Error())
		return nil, err
	}

	recs, err := policy.Recommend(req.Bankroll, candidates)
	if err != nil {
		e.audit.LogStakingRejected(runID, req.Policy, req.Bankroll, err.Error())
		return nil, err
	}

	var total float64
	for _, r := range recs {
		total += r.Liability
		e.audit.LogStake(runID, r.Policy, r.Name, r.Tier.String(), r.Odds, r.EVLay, r.Stake, r.Liability)
	}
	metrics.RecordStakes(policy.Name(), len(recs), total)
	e.audit.LogStakingPass(runID, policy.Name(), req.Bankroll, len(candidates), len(recs), total)
	return recs, nil
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// IsInputError reports whether err was caused by caller input rather than the engine.
func IsInputError(err error) bool {
	return errors.Is(err, models.ErrValidation) ||
		errors.Is(err, models.ErrInvalidOdds) ||
		errors.Is(err, models.ErrInvalidBankroll) ||
		errors.Is(err, models.ErrUnknownPolicy)
}
