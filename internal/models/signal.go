package models

import (
	"fmt"
	"strings"
)

// SignalTier grades a mispricing signal.
type SignalTier int

const (
	TierNone SignalTier = iota
	TierWeak
	TierMedium
	TierStrong
)

var tierNames = map[SignalTier]string{
	TierNone:   "none",
	TierWeak:   "weak",
	TierMedium: "medium",
	TierStrong: "strong",
}

func (t SignalTier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// MarshalText renders the tier name in JSON and YAML.
func (t SignalTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name.
func (t *SignalTier) UnmarshalText(text []byte) error {
	parsed, err := ParseSignalTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseSignalTier parses a tier name, case-insensitively.
func ParseSignalTier(s string) (SignalTier, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for tier, name := range tierNames {
		if name == needle {
			return tier, nil
		}
	}
	return TierNone, fmt.Errorf("unknown signal tier '%s'", s)
}

// Eligible reports whether the tier is selected for staking.
func (t SignalTier) Eligible() bool {
	return t > TierNone
}

// FieldEntry is a valued competitor placed within its field.
type FieldEntry struct {
	Valuation
	ModelRank  int        `json:"model_rank"`
	MarketRank int        `json:"market_rank"`
	RankDelta  int        `json:"rank_delta"`
	Tier       SignalTier `json:"tier"`
}
