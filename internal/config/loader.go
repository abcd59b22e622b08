package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override, e.g. ODDS_APEX_STAKING_CAP_FRACTION.
const EnvPrefix = "ODDS_APEX"

// DefaultPath is used when no configuration path is given.
const DefaultPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := readExpanded(v, data); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for every field. A missing
// file is not an error; defaults and environment variables are used instead.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	v := newViper()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := readExpanded(v, data); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Environment overrides
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	return v
}

// setDefaults registers every key so environment overrides apply even when the file
// omits them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "odds-apex")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("model.p_floor", 0.02)
	v.SetDefault("model.max_fair", 50.0)
	v.SetDefault("model.sb_scale", 0.35)
	v.SetDefault("model.blend_model", 0.6)
	v.SetDefault("model.fair_model_weight", 0.7)
	v.SetDefault("model.total_holes", 72)
	v.SetDefault("model.low_anchor.score", 20.0)
	v.SetDefault("model.low_anchor.probability", 0.0064)
	v.SetDefault("model.high_anchor.score", 60.0)
	v.SetDefault("model.high_anchor.probability", 0.10)

	v.SetDefault("simulation.trials", 5000)
	v.SetDefault("simulation.round_sd", 2.4)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.batch_size", 500)
	v.SetDefault("simulation.timeout", "0s")
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("staking.default_policy", "capped-kelly")
	v.SetDefault("staking.kelly_fraction", 0.25)
	v.SetDefault("staking.cap_fraction", 0.10)
	v.SetDefault("staking.flat_pct", 1.0)
	v.SetDefault("staking.mini_kelly_pct", 25.0)
	v.SetDefault("staking.tier_caps.strong", 0.10)
	v.SetDefault("staking.tier_caps.medium", 0.075)
	v.SetDefault("staking.tier_caps.weak", 0.05)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.max_items", 10000)
	v.SetDefault("cache.prune_schedule", "@every 1m")
}

func readExpanded(v *viper.Viper, data []byte) error {
	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
