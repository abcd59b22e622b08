package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/odds-apex/internal/models"
)

func TestAnchorsReproducedExactly(t *testing.T) {
	c, err := New(models.DefaultModelParams())
	require.NoError(t, err)

	assert.InDelta(t, 0.0064, c.Logistic(20), 1e-9)
	assert.InDelta(t, 0.10, c.Logistic(60), 1e-9)
}

func TestAnchorsWithCustomPoints(t *testing.T) {
	params := models.DefaultModelParams()
	params.LowAnchor = models.Anchor{Score: 10, Probability: 0.05}
	params.HighAnchor = models.Anchor{Score: 90, Probability: 0.75}

	c, err := New(params)
	require.NoError(t, err)

	assert.InDelta(t, 0.05, c.Logistic(10), 1e-9)
	assert.InDelta(t, 0.75, c.Logistic(90), 1e-9)
}

func TestProbabilityNeverBelowFloor(t *testing.T) {
	params := models.DefaultModelParams()
	c := MustNew(params)

	for score := -50.0; score <= 150.0; score += 0.5 {
		p := c.Probability(score)
		assert.GreaterOrEqual(t, p, params.PFloor, "score %v", score)
		assert.LessOrEqual(t, p, 1.0, "score %v", score)
	}

	// The low anchor itself sits under the floor.
	assert.Equal(t, params.PFloor, c.Probability(20))
	assert.InDelta(t, 0.10, c.Probability(60), 1e-9)
}

func TestProbabilityIsMonotonic(t *testing.T) {
	c := MustNew(models.DefaultModelParams())

	prev := c.Logistic(0)
	for score := 1.0; score <= 100; score++ {
		next := c.Logistic(score)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestSolvedCoefficients(t *testing.T) {
	c := MustNew(models.DefaultModelParams())

	l1 := math.Log(0.0064 / 0.9936)
	l2 := math.Log(0.10 / 0.90)
	slope := (l2 - l1) / 40

	assert.InDelta(t, slope, c.Slope(), 1e-12)
	assert.InDelta(t, 20-l1/slope, c.Intercept(), 1e-9)
	assert.InDelta(t, 0.5, c.Logistic(c.Intercept()), 1e-12)
}

func TestInvalidAnchors(t *testing.T) {
	tests := []struct {
		name string
		lo   models.Anchor
		hi   models.Anchor
	}{
		{name: "zero probability", lo: models.Anchor{Score: 20, Probability: 0}, hi: models.Anchor{Score: 60, Probability: 0.1}},
		{name: "unordered probabilities", lo: models.Anchor{Score: 20, Probability: 0.2}, hi: models.Anchor{Score: 60, Probability: 0.1}},
		{name: "certain outcome", lo: models.Anchor{Score: 20, Probability: 0.1}, hi: models.Anchor{Score: 60, Probability: 1}},
		{name: "equal scores", lo: models.Anchor{Score: 40, Probability: 0.01}, hi: models.Anchor{Score: 40, Probability: 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := models.DefaultModelParams()
			params.LowAnchor = tt.lo
			params.HighAnchor = tt.hi

			_, err := New(params)
			assert.ErrorIs(t, err, ErrInvalidCalibration)
		})
	}
}
