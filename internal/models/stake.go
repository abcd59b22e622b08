package models

// BetSide represents the side of a bet. Every recommendation is a lay.
type BetSide string

const BetSideLay BetSide = "LAY"

// StakeRecommendation is the sized lay for one competitor.
type StakeRecommendation struct {
	Name      string     `json:"name"`
	Side      BetSide    `json:"side"`
	Policy    string     `json:"policy"`
	Tier      SignalTier `json:"tier"`
	Odds      float64    `json:"odds"`
	EVLay     float64    `json:"ev_lay"`
	Stake     float64    `json:"stake"`
	Liability float64    `json:"liability"`
}

// LiabilityFor returns the amount at risk when laying stake at odds.
func LiabilityFor(stake, odds float64) float64 {
	return stake * (odds - 1.0)
}

// StakeFor returns the backer's stake that a given lay liability covers at odds.
func StakeFor(liability, odds float64) float64 {
	if odds <= 1.0 {
		return 0
	}
	return liability / (odds - 1.0)
}
