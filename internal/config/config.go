// Package config provides configuration management for the odds-apex engine.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/odds-apex/internal/models"
	"github.com/yourusername/odds-apex/internal/signals"
	"github.com/yourusername/odds-apex/internal/simulation"
	"github.com/yourusername/odds-apex/internal/staking"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Model      ModelConfig      `mapstructure:"model" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Signals    SignalsConfig    `mapstructure:"signals"`
	Staking    StakingConfig    `mapstructure:"staking" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ModelConfig holds the probability model constants
type ModelConfig struct {
	PFloor          float64      `mapstructure:"p_floor" validate:"gte=0,lt=1"`
	MaxFair         float64      `mapstructure:"max_fair" validate:"gt=1"`
	SBScale         float64      `mapstructure:"sb_scale" validate:"gte=0"`
	BlendModel      float64      `mapstructure:"blend_model" validate:"gte=0,lte=1"`
	FairModelWeight float64      `mapstructure:"fair_model_weight" validate:"gte=0,lte=1"`
	TotalHoles      int          `mapstructure:"total_holes" validate:"gt=0"`
	LowAnchor       AnchorConfig `mapstructure:"low_anchor"`
	HighAnchor      AnchorConfig `mapstructure:"high_anchor"`
}

// AnchorConfig is one calibration point
type AnchorConfig struct {
	Score       float64 `mapstructure:"score" validate:"gte=0,lte=100"`
	Probability float64 `mapstructure:"probability" validate:"gt=0,lt=1"`
}

// SimulationConfig represents Monte Carlo engine configuration
type SimulationConfig struct {
	Trials    int           `mapstructure:"trials" validate:"required,gt=0"`
	RoundSD   float64       `mapstructure:"round_sd" validate:"required,gt=0"`
	Workers   int           `mapstructure:"workers" validate:"gte=0"`
	BatchSize int           `mapstructure:"batch_size" validate:"gte=0"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Seed      int64         `mapstructure:"seed"`
}

// SignalsConfig holds the mispricing tier thresholds
type SignalsConfig struct {
	Thresholds []ThresholdConfig `mapstructure:"thresholds" validate:"omitempty,dive"`
}

// ThresholdConfig is the minimum rank divergence and edge for one tier
type ThresholdConfig struct {
	Tier         string  `mapstructure:"tier" validate:"required,oneof=weak medium strong"`
	MinRankDelta int     `mapstructure:"min_rank_delta" validate:"gte=1"`
	MinEdgePct   float64 `mapstructure:"min_edge_pct" validate:"gte=0,lte=100"`
}

// StakingConfig represents staking policy configuration
type StakingConfig struct {
	DefaultPolicy string         `mapstructure:"default_policy" validate:"required,policy"`
	KellyFraction float64        `mapstructure:"kelly_fraction" validate:"gt=0,lte=1"`
	CapFraction   float64        `mapstructure:"cap_fraction" validate:"gt=0,lte=1"`
	FlatPct       float64        `mapstructure:"flat_pct" validate:"gte=0,lte=100"`
	MiniKellyPct  float64        `mapstructure:"mini_kelly_pct" validate:"gte=0,lte=100"`
	TierCaps      TierCapsConfig `mapstructure:"tier_caps"`
}

// TierCapsConfig holds the per-member budget share for each signal tier
type TierCapsConfig struct {
	Strong float64 `mapstructure:"strong" validate:"gte=0,lte=1"`
	Medium float64 `mapstructure:"medium" validate:"gte=0,lte=1"`
	Weak   float64 `mapstructure:"weak" validate:"gte=0,lte=1"`
}

// ServerConfig represents HTTP API configuration
type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	RateLimit       float64       `mapstructure:"rate_limit" validate:"gt=0"`
	RateBurst       int           `mapstructure:"rate_burst" validate:"gt=0"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// CacheConfig represents estimate cache configuration
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
	MaxItems int           `mapstructure:"max_items" validate:"gte=0"`
	// PruneSchedule is a cron expression for purging expired estimates while serving.
	PruneSchedule string `mapstructure:"prune_schedule"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ModelParams converts the model section into engine parameters
func (c *Config) ModelParams() models.ModelParams {
	m := c.Model
	return models.ModelParams{
		PFloor:          m.PFloor,
		MaxFair:         m.MaxFair,
		SBScale:         m.SBScale,
		BlendModel:      m.BlendModel,
		FairModelWeight: m.FairModelWeight,
		TotalHoles:      m.TotalHoles,
		LowAnchor:       models.Anchor{Score: m.LowAnchor.Score, Probability: m.LowAnchor.Probability},
		HighAnchor:      models.Anchor{Score: m.HighAnchor.Score, Probability: m.HighAnchor.Probability},
	}
}

// SimulationSettings converts the simulation section into engine settings
func (c *Config) SimulationSettings() simulation.Config {
	s := c.Simulation
	return simulation.Config{
		Trials:    s.Trials,
		RoundSD:   s.RoundSD,
		Workers:   s.Workers,
		BatchSize: s.BatchSize,
		Timeout:   s.Timeout,
	}
}

// StakingSettings converts the staking section into policy settings
func (c *Config) StakingSettings() staking.Settings {
	s := c.Staking
	return staking.Settings{
		KellyFraction: s.KellyFraction,
		CapFraction:   s.CapFraction,
		FlatPct:       s.FlatPct,
		MiniKellyPct:  s.MiniKellyPct,
		TierCaps: staking.TierCaps{
			Strong: s.TierCaps.Strong,
			Medium: s.TierCaps.Medium,
			Weak:   s.TierCaps.Weak,
		},
	}
}

// SignalThresholds converts the signals section, falling back to the defaults when empty
func (c *Config) SignalThresholds() ([]signals.Threshold, error) {
	if len(c.Signals.Thresholds) == 0 {
		return signals.DefaultThresholds(), nil
	}
	out := make([]signals.Threshold, 0, len(c.Signals.Thresholds))
	for _, th := range c.Signals.Thresholds {
		tier, err := models.ParseSignalTier(th.Tier)
		if err != nil {
			return nil, fmt.Errorf("invalid signal threshold: %w", err)
		}
		out = append(out, signals.Threshold{Tier: tier, MinRankDelta: th.MinRankDelta, MinEdgePct: th.MinEdgePct})
	}
	return out, nil
}
