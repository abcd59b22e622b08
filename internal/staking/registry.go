package staking

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-apex/internal/models"
)

// Policy names accepted by the registry.
const (
	PolicyCappedKelly   = "capped-kelly"
	PolicyFlat          = "flat"
	PolicyFlatMiniKelly = "flat-mini-kelly"
	PolicyTieredEV      = "tiered-ev"
)

// Settings parameterise every policy. Percentages are whole-number percents, fractions are
// shares of the bankroll.
type Settings struct {
	KellyFraction float64  `json:"kelly_fraction"`
	CapFraction   float64  `json:"cap_fraction"`
	FlatPct       float64  `json:"flat_pct"`
	MiniKellyPct  float64  `json:"mini_kelly_pct"`
	TierCaps      TierCaps `json:"tier_caps"`
}

// DefaultSettings returns a quarter Kelly, a 10% per-competitor cap, 1% flat plus 25%
// mini-Kelly and the default tier caps.
func DefaultSettings() Settings {
	return Settings{
		KellyFraction: 0.25,
		CapFraction:   0.10,
		FlatPct:       1,
		MiniKellyPct:  25,
		TierCaps:      DefaultTierCaps(),
	}
}

// Validate checks that every setting is usable.
func (s Settings) Validate() error {
	checks := []struct {
		field string
		value float64
		max   float64
	}{
		{"kelly_fraction", s.KellyFraction, 1},
		{"cap_fraction", s.CapFraction, 1},
		{"flat_pct", s.FlatPct, 100},
		{"mini_kelly_pct", s.MiniKellyPct, 100},
		{"tier_caps.strong", s.TierCaps.Strong, 1},
		{"tier_caps.medium", s.TierCaps.Medium, 1},
		{"tier_caps.weak", s.TierCaps.Weak, 1},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > c.max {
			return models.NewValidationError(c.field, c.value, fmt.Sprintf("must be between 0 and %g", c.max))
		}
	}
	return nil
}

type constructor func(s Settings, logger logrus.FieldLogger) Policy

var constructors = map[string]constructor{
	PolicyCappedKelly: func(s Settings, logger logrus.FieldLogger) Policy {
		return CappedKelly{Fraction: s.KellyFraction, CapFraction: s.CapFraction, Logger: logger}
	},
	PolicyFlat: func(s Settings, logger logrus.FieldLogger) Policy {
		return FlatOnly{CapFraction: s.CapFraction, Logger: logger}
	},
	PolicyFlatMiniKelly: func(s Settings, logger logrus.FieldLogger) Policy {
		return FlatMiniKelly{FlatPct: s.FlatPct, MiniKellyPct: s.MiniKellyPct, CapFraction: s.CapFraction, Logger: logger}
	},
	PolicyTieredEV: func(s Settings, logger logrus.FieldLogger) Policy {
		return TieredEV{Caps: s.TierCaps, Logger: logger}
	},
}

// Names returns the known policy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether name is a registered policy.
func Known(name string) bool {
	_, ok := constructors[name]
	return ok
}

// Registry builds policies by name from shared settings.
type Registry struct {
	settings Settings
	logger   logrus.FieldLogger
}

// NewRegistry creates a registry.
func NewRegistry(settings Settings, logger logrus.FieldLogger) (*Registry, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid staking settings: %w", err)
	}
	return &Registry{settings: settings, logger: logger}, nil
}

// Settings returns the registry defaults.
func (r *Registry) Settings() Settings {
	return r.settings
}

// Lookup returns the named policy built from the registry settings.
func (r *Registry) Lookup(name string) (Policy, error) {
	return r.Build(name, r.settings)
}

// Build returns the named policy built from explicit settings.
func (r *Registry) Build(name string, settings Settings) (Policy, error) {
	build, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' (known: %v)", models.ErrUnknownPolicy, name, Names())
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return build(settings, r.logger), nil
}

// Names returns the known policy names.
func (r *Registry) Names() []string {
	return Names()
}
