package models

import (
	"fmt"
	"math"
)

// Anchor pins the calibration curve: a heuristic score and the win probability it maps to.
type Anchor struct {
	Score       float64 `json:"score"`
	Probability float64 `json:"probability"`
}

// ModelParams holds the fixed constants of the probability model. It is built once at
// start-up and passed by value to every component.
type ModelParams struct {
	PFloor          float64 `json:"p_floor"`
	MaxFair         float64 `json:"max_fair"`
	SBScale         float64 `json:"sb_scale"`
	BlendModel      float64 `json:"blend_model"`
	FairModelWeight float64 `json:"fair_model_weight"`
	TotalHoles      int     `json:"total_holes"`
	LowAnchor       Anchor  `json:"low_anchor"`
	HighAnchor      Anchor  `json:"high_anchor"`
}

// DefaultModelParams returns the production calibration:
// score 20 maps to 0.64% and score 60 maps to 10%.
func DefaultModelParams() ModelParams {
	return ModelParams{
		PFloor:          0.02,
		MaxFair:         50.0,
		SBScale:         0.35,
		BlendModel:      0.6,
		FairModelWeight: 0.7,
		TotalHoles:      72,
		LowAnchor:       Anchor{Score: 20, Probability: 0.0064},
		HighAnchor:      Anchor{Score: 60, Probability: 0.10},
	}
}

// Validate checks the parameter set is internally consistent.
func (p ModelParams) Validate() error {
	if p.PFloor < 0 || p.PFloor >= 1 {
		return fmt.Errorf("%w: p_floor must be in [0,1), got %v", ErrInvalidParameter, p.PFloor)
	}
	if p.MaxFair <= 1 {
		return fmt.Errorf("%w: max_fair must be greater than 1, got %v", ErrInvalidParameter, p.MaxFair)
	}
	if p.BlendModel < 0 || p.BlendModel > 1 {
		return fmt.Errorf("%w: blend_model must be in [0,1], got %v", ErrInvalidParameter, p.BlendModel)
	}
	if p.FairModelWeight < 0 || p.FairModelWeight > 1 {
		return fmt.Errorf("%w: fair_model_weight must be in [0,1], got %v", ErrInvalidParameter, p.FairModelWeight)
	}
	if p.SBScale < 0 {
		return fmt.Errorf("%w: sb_scale cannot be negative", ErrInvalidParameter)
	}
	if p.TotalHoles <= 0 {
		return fmt.Errorf("%w: total_holes must be positive", ErrInvalidParameter)
	}
	return nil
}

// ClampProbability limits p to [PFloor, 1].
func (p ModelParams) ClampProbability(v float64) float64 {
	if math.IsNaN(v) {
		return p.PFloor
	}
	return math.Min(1.0, math.Max(p.PFloor, v))
}
