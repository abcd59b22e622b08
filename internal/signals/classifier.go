// Package signals ranks a field by model and by market and grades the mispricings between them.
package signals

import (
	"fmt"
	"sort"

	"github.com/yourusername/odds-apex/internal/models"
)

// Threshold is the minimum rank divergence and edge a tier requires.
type Threshold struct {
	Tier         models.SignalTier `json:"tier" mapstructure:"tier"`
	MinRankDelta int               `json:"min_rank_delta" mapstructure:"min_rank_delta"`
	MinEdgePct   float64           `json:"min_edge_pct" mapstructure:"min_edge_pct"`
}

// DefaultThresholds returns Strong (3, 35%), Medium (2, 25%) and Weak (1, 15%).
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Tier: models.TierStrong, MinRankDelta: 3, MinEdgePct: 35},
		{Tier: models.TierMedium, MinRankDelta: 2, MinEdgePct: 25},
		{Tier: models.TierWeak, MinRankDelta: 1, MinEdgePct: 15},
	}
}

// Classifier assigns signal tiers to a ranked field.
type Classifier struct {
	thresholds []Threshold
}

// NewClassifier creates a classifier. Thresholds are evaluated from the largest rank
// divergence down.
func NewClassifier(thresholds []Threshold) (*Classifier, error) {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}
	ordered := append([]Threshold(nil), thresholds...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinRankDelta > ordered[j].MinRankDelta
	})
	for i, th := range ordered {
		if th.MinRankDelta < 1 {
			return nil, fmt.Errorf("threshold for %s: min rank delta must be at least 1", th.Tier)
		}
		if !th.Tier.Eligible() {
			return nil, fmt.Errorf("threshold %d: tier must be weak, medium or strong", i)
		}
		if i > 0 && th.MinRankDelta == ordered[i-1].MinRankDelta {
			return nil, fmt.Errorf("thresholds for %s and %s share rank delta %d", ordered[i-1].Tier, th.Tier, th.MinRankDelta)
		}
	}
	return &Classifier{thresholds: ordered}, nil
}

// Thresholds returns the thresholds in evaluation order.
func (c *Classifier) Thresholds() []Threshold {
	return append([]Threshold(nil), c.thresholds...)
}

// TierFor grades one competitor from its rank divergence and signed edge percentage. Only a
// competitor the market rates above the model, and prices shorter than the model, is
// eligible. The tier is decided by the first threshold whose rank divergence it reaches:
// if the lay-side edge falls short of that tier's minimum the result is TierNone.
func (c *Classifier) TierFor(rankDelta int, edgePct float64) models.SignalTier {
	if rankDelta <= 0 {
		return models.TierNone
	}
	for _, th := range c.thresholds {
		if rankDelta < th.MinRankDelta {
			continue
		}
		if -edgePct >= th.MinEdgePct {
			return th.Tier
		}
		return models.TierNone
	}
	return models.TierNone
}

// Classify ranks the field and grades every entry. The input slice is left untouched.
func (c *Classifier) Classify(field []models.FieldEntry) []models.FieldEntry {
	ranked := Rank(field)
	for i := range ranked {
		e := &ranked[i]
		e.RankDelta = e.ModelRank - e.MarketRank
		e.Tier = c.TierFor(e.RankDelta, e.EdgePercent())
	}
	return ranked
}

// Rank returns a copy of field with ModelRank (highest probability first) and MarketRank
// (shortest price first) set. Ties keep input order.
func Rank(field []models.FieldEntry) []models.FieldEntry {
	ranked := append([]models.FieldEntry(nil), field...)

	byModel := order(len(ranked), func(i, j int) bool {
		return ranked[i].Final > ranked[j].Final
	})
	for rank, idx := range byModel {
		ranked[idx].ModelRank = rank + 1
	}

	byMarket := order(len(ranked), func(i, j int) bool {
		return ranked[i].LiveOdds < ranked[j].LiveOdds
	})
	for rank, idx := range byMarket {
		ranked[idx].MarketRank = rank + 1
	}

	return ranked
}

func order(n int, less func(i, j int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return less(idx[a], idx[b])
	})
	return idx
}
