// Package pricing blends the model's probability sources and values them against the market.
package pricing

import (
	"math"

	"github.com/yourusername/odds-apex/internal/models"
)

// Blend mixes the calibrated and simulated probabilities with the fixed model weight.
// Both inputs are clamped to [PFloor, 1] first, so the result lies between them.
func Blend(params models.ModelParams, calibrated, simulated float64) float64 {
	c := params.ClampProbability(calibrated)
	s := params.ClampProbability(simulated)
	return params.BlendModel*c + (1-params.BlendModel)*s
}

// Comparator values probability estimates against live decimal odds.
type Comparator struct {
	params models.ModelParams
}

// NewComparator creates a new market comparator
func NewComparator(params models.ModelParams) *Comparator {
	return &Comparator{params: params}
}

// Value computes edge, fair odds and back/lay expected value for one competitor.
func (c *Comparator) Value(estimate models.ProbabilityEstimate, name string, liveOdds float64) (models.Valuation, error) {
	if err := ValidateOdds(name, liveOdds); err != nil {
		return models.Valuation{}, err
	}

	final := estimate.Final
	implied := 1.0 / liveOdds
	evBack := BackEV(final, liveOdds)

	return models.Valuation{
		Name:     name,
		Score:    estimate.Score,
		Final:    final,
		Implied:  implied,
		Edge:     final - implied,
		FairOdds: c.FairOdds(final, liveOdds),
		LiveOdds: liveOdds,
		EVBack:   evBack,
		EVLay:    -evBack,
	}, nil
}

// FairOdds blends the model's break-even price, capped at MaxFair, with the live price.
func (c *Comparator) FairOdds(probability, liveOdds float64) float64 {
	fairModel := c.params.MaxFair
	if probability > 0 {
		fairModel = math.Min(1.0/probability, c.params.MaxFair)
	}
	w := c.params.FairModelWeight
	return w*fairModel + (1-w)*liveOdds
}

// ValidateOdds rejects prices that cannot be valued.
func ValidateOdds(name string, odds float64) error {
	if odds <= 1.0 || math.IsNaN(odds) || math.IsInf(odds, 0) {
		return models.NewInvalidOddsError(name, odds)
	}
	return nil
}

// BackEV is the expected profit per unit backed.
func BackEV(probability, odds float64) float64 {
	return probability*(odds-1) - (1 - probability)
}

// LayEV is the expected profit per unit of backer's stake laid.
func LayEV(probability, odds float64) float64 {
	return -BackEV(probability, odds)
}

// KellyLayFraction is the full Kelly fraction for a lay, never negative.
func KellyLayFraction(probability, odds float64) float64 {
	if odds <= 1.0 {
		return 0
	}
	return math.Max(LayEV(probability, odds)/(odds-1), 0)
}
