package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/odds-apex/internal/models"
)

func TestBlendInvariant(t *testing.T) {
	params := models.DefaultModelParams()

	for c := 0.0; c <= 1.0; c += 0.05 {
		for s := 0.0; s <= 1.0; s += 0.05 {
			cc := params.ClampProbability(c)
			sc := params.ClampProbability(s)
			final := Blend(params, c, s)

			assert.InDelta(t, 0.6*cc+0.4*sc, final, 1e-12)
			assert.GreaterOrEqual(t, final, math.Min(cc, sc)-1e-12)
			assert.LessOrEqual(t, final, math.Max(cc, sc)+1e-12)
		}
	}
}

func TestBlendExample(t *testing.T) {
	params := models.DefaultModelParams()
	assert.InDelta(t, 0.6*0.08+0.4*0.2, Blend(params, 0.08, 0.2), 1e-12)
	assert.InDelta(t, 0.02, Blend(params, 0.001, 0.0), 1e-12, "both sources floored")
}

func TestValueMarketMath(t *testing.T) {
	comparator := NewComparator(models.DefaultModelParams())
	estimate := models.ProbabilityEstimate{Score: 55, Final: 0.10}

	v, err := comparator.Value(estimate, "Jon", 5.0)
	require.NoError(t, err)

	assert.Equal(t, "Jon", v.Name)
	assert.InDelta(t, 0.20, v.Implied, 1e-12)
	assert.InDelta(t, -0.10, v.Edge, 1e-12)
	assert.InDelta(t, -0.50, v.EVBack, 1e-12)
	assert.InDelta(t, 0.50, v.EVLay, 1e-12)
	assert.InDelta(t, 0.7*10+0.3*5, v.FairOdds, 1e-9)
	assert.InDelta(t, -10.0, v.EdgePercent(), 1e-9)
	assert.Equal(t, 55.0, v.Score)
}

func TestFairOddsCappedAtMaxFair(t *testing.T) {
	comparator := NewComparator(models.DefaultModelParams())

	assert.InDelta(t, 0.7*50+0.3*200, comparator.FairOdds(0.005, 200), 1e-9)
	assert.InDelta(t, 0.7*50+0.3*80, comparator.FairOdds(0, 80), 1e-9)
}

func TestValueRejectsInvalidOdds(t *testing.T) {
	comparator := NewComparator(models.DefaultModelParams())

	for _, odds := range []float64{1.0, 0.5, 0, -3, math.NaN(), math.Inf(1)} {
		_, err := comparator.Value(models.ProbabilityEstimate{Final: 0.1}, "Viktor", odds)
		require.Error(t, err, "odds %v", odds)
		assert.True(t, errors.Is(err, models.ErrInvalidOdds))

		var oddsErr *models.InvalidOddsError
		require.ErrorAs(t, err, &oddsErr)
		assert.Equal(t, "Viktor", oddsErr.Name)
	}
}

func TestKellyLayFraction(t *testing.T) {
	assert.InDelta(t, 0.125, KellyLayFraction(0.10, 5.0), 1e-12)
	assert.Equal(t, 0.0, KellyLayFraction(0.5, 5.0), "negative lay EV clamps to zero")
	assert.Equal(t, 0.0, KellyLayFraction(0.1, 1.0))
	assert.InDelta(t, 0.5, LayEV(0.1, 5.0), 1e-12)
}
