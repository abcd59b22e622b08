// Package calibration maps a bounded heuristic score onto a win probability.
package calibration

import (
	"errors"
	"fmt"
	"math"

	"github.com/yourusername/odds-apex/internal/models"
)

// ErrInvalidCalibration indicates the anchor points cannot define a logistic curve
var ErrInvalidCalibration = errors.New("invalid calibration anchors")

// Calibration is a logistic curve solved once from two anchor points.
type Calibration struct {
	slope     float64
	intercept float64
	floor     float64
}

// New solves the logistic coefficients so that the curve passes through both anchors.
func New(params models.ModelParams) (*Calibration, error) {
	lo, hi := params.LowAnchor, params.HighAnchor
	if !(lo.Probability > 0 && lo.Probability < hi.Probability && hi.Probability < 1) {
		return nil, fmt.Errorf("%w: need 0 < p1 < p2 < 1, got p1=%v p2=%v", ErrInvalidCalibration, lo.Probability, hi.Probability)
	}
	if lo.Score == hi.Score {
		return nil, fmt.Errorf("%w: anchor scores must differ", ErrInvalidCalibration)
	}

	l1 := logit(lo.Probability)
	l2 := logit(hi.Probability)
	slope := (l2 - l1) / (hi.Score - lo.Score)

	return &Calibration{
		slope:     slope,
		intercept: lo.Score - l1/slope,
		floor:     params.PFloor,
	}, nil
}

// MustNew is New for parameter sets known to be valid at compile time.
func MustNew(params models.ModelParams) *Calibration {
	c, err := New(params)
	if err != nil {
		panic(err)
	}
	return c
}

// Logistic returns the unfloored curve value. It reproduces both anchors exactly.
func (c *Calibration) Logistic(score float64) float64 {
	return 1.0 / (1.0 + math.Exp(-c.slope*(score-c.intercept)))
}

// Probability returns the calibrated win probability, never below the floor.
func (c *Calibration) Probability(score float64) float64 {
	return math.Max(c.Logistic(score), c.floor)
}

// Slope returns the solved logistic slope.
func (c *Calibration) Slope() float64 {
	return c.slope
}

// Intercept returns the score at which the curve crosses 50%.
func (c *Calibration) Intercept() float64 {
	return c.intercept
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
