package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/odds-apex/internal/models"
)

func entry(name string, final, odds float64) models.FieldEntry {
	return models.FieldEntry{Valuation: models.Valuation{
		Name:     name,
		Final:    final,
		LiveOdds: odds,
		Implied:  1 / odds,
		Edge:     final - 1/odds,
	}}
}

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(nil)
	require.NoError(t, err)
	return c
}

func TestRankStableTies(t *testing.T) {
	field := []models.FieldEntry{
		entry("A", 0.10, 8),
		entry("B", 0.20, 8),
		entry("C", 0.10, 4),
		entry("D", 0.05, 20),
	}

	ranked := Rank(field)

	assert.Equal(t, []int{2, 1, 3, 4}, modelRanks(ranked))
	assert.Equal(t, []int{2, 3, 1, 4}, marketRanks(ranked))
	assert.Zero(t, field[0].ModelRank, "input untouched")
}

func TestTierThresholdTable(t *testing.T) {
	c := defaultClassifier(t)

	tests := []struct {
		name      string
		rankDelta int
		edgePct   float64
		want      models.SignalTier
	}{
		{name: "strong", rankDelta: 3, edgePct: -40, want: models.TierStrong},
		{name: "strong at boundary", rankDelta: 3, edgePct: -35, want: models.TierStrong},
		{name: "large delta small edge", rankDelta: 3, edgePct: -20, want: models.TierNone},
		{name: "larger delta", rankDelta: 6, edgePct: -36, want: models.TierStrong},
		{name: "medium", rankDelta: 2, edgePct: -30, want: models.TierMedium},
		{name: "medium short of edge", rankDelta: 2, edgePct: -24.9, want: models.TierNone},
		{name: "medium delta strong edge", rankDelta: 2, edgePct: -50, want: models.TierMedium},
		{name: "weak", rankDelta: 1, edgePct: -15, want: models.TierWeak},
		{name: "weak short of edge", rankDelta: 1, edgePct: -14.99, want: models.TierNone},
		{name: "positive edge favours a back", rankDelta: 1, edgePct: 18, want: models.TierNone},
		{name: "positive edge at strong delta", rankDelta: 3, edgePct: 40, want: models.TierNone},
		{name: "model agrees with market", rankDelta: 0, edgePct: 60, want: models.TierNone},
		{name: "model more bullish", rankDelta: -3, edgePct: 60, want: models.TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.TierFor(tt.rankDelta, tt.edgePct))
		})
	}
}

func TestClassifyFieldOfFive(t *testing.T) {
	c := defaultClassifier(t)

	// X is the market favourite but only fourth on the model.
	field := []models.FieldEntry{
		entry("P", 0.60, 6),
		entry("Q", 0.50, 5),
		entry("R", 0.35, 4),
		entry("X", 0.10, 2),
		entry("S", 0.05, 10),
	}

	classified := c.Classify(field)
	x := classified[3]
	require.Equal(t, "X", x.Name)
	assert.Equal(t, 4, x.ModelRank)
	assert.Equal(t, 1, x.MarketRank)
	assert.Equal(t, 3, x.RankDelta)
	assert.InDelta(t, -40.0, x.EdgePercent(), 1e-9)
	assert.Equal(t, models.TierStrong, x.Tier)

	for _, e := range classified {
		if e.Name != "X" {
			assert.Equal(t, models.TierNone, e.Tier, e.Name)
		}
	}

	// Same divergence with a 20% edge.
	field[3] = entry("X", 0.30, 2)
	classified = c.Classify(field)
	x = classified[3]
	assert.Equal(t, 3, x.RankDelta)
	assert.InDelta(t, -20.0, x.EdgePercent(), 1e-9)
	assert.Equal(t, models.TierNone, x.Tier)
}

func TestClassifyIgnoresBackSideEdge(t *testing.T) {
	c := defaultClassifier(t)

	// X is the market favourite and ranked second by the model, but the model
	// still rates it above its price.
	classified := c.Classify([]models.FieldEntry{
		entry("Y", 0.90, 2.0),
		entry("X", 0.85, 1.5),
	})

	x := classified[1]
	require.Equal(t, "X", x.Name)
	assert.Equal(t, 1, x.RankDelta)
	assert.Greater(t, x.EdgePercent(), 15.0)
	assert.Equal(t, models.TierNone, x.Tier)
}

func TestNewClassifierValidation(t *testing.T) {
	_, err := NewClassifier([]Threshold{{Tier: models.TierWeak, MinRankDelta: 0, MinEdgePct: 10}})
	assert.Error(t, err)

	_, err = NewClassifier([]Threshold{{Tier: models.TierNone, MinRankDelta: 1, MinEdgePct: 10}})
	assert.Error(t, err)

	_, err = NewClassifier([]Threshold{
		{Tier: models.TierWeak, MinRankDelta: 2, MinEdgePct: 10},
		{Tier: models.TierMedium, MinRankDelta: 2, MinEdgePct: 20},
	})
	assert.Error(t, err)

	c, err := NewClassifier([]Threshold{
		{Tier: models.TierWeak, MinRankDelta: 1, MinEdgePct: 5},
		{Tier: models.TierStrong, MinRankDelta: 4, MinEdgePct: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierStrong, c.Thresholds()[0].Tier)
	assert.Equal(t, models.TierWeak, c.TierFor(3, -10))
}

func modelRanks(entries []models.FieldEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.ModelRank
	}
	return out
}

func marketRanks(entries []models.FieldEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.MarketRank
	}
	return out
}
