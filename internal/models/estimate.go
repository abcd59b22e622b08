package models

// ProbabilityEstimate is the output of the probability pipeline for one competitor.
type ProbabilityEstimate struct {
	Score      float64 `json:"score"`
	Calibrated float64 `json:"calibrated"`
	Simulated  float64 `json:"simulated"`
	Final      float64 `json:"final"`

	SGRate    float64 `json:"sg_rate"`
	Trials    int     `json:"trials"`
	Truncated bool    `json:"truncated"`
}

// Valuation compares a probability estimate with the live market price.
type Valuation struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Final    float64 `json:"model"`
	Implied  float64 `json:"market"`
	Edge     float64 `json:"edge"`
	FairOdds float64 `json:"fair_odds"`
	LiveOdds float64 `json:"live_odds"`
	EVBack   float64 `json:"ev_back"`
	EVLay    float64 `json:"ev_lay"`
}

// EdgePercent returns the edge expressed as a percentage.
func (v Valuation) EdgePercent() float64 {
	return v.Edge * 100
}
