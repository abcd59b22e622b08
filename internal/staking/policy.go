// Package staking sizes lay bets for a set of candidates under a named policy.
package staking

import (
	"io"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-apex/internal/models"
)

// Candidate is one competitor offered to a staking policy.
type Candidate struct {
	Name        string            `json:"name"`
	Probability float64           `json:"probability"`
	Odds        float64           `json:"odds"`
	Edge        float64           `json:"edge"`
	EVLay       float64           `json:"ev_lay"`
	Tier        models.SignalTier `json:"tier"`
}

// CandidateFromEntry builds a candidate from a classified field entry.
func CandidateFromEntry(e models.FieldEntry) Candidate {
	return Candidate{
		Name:        e.Name,
		Probability: e.Final,
		Odds:        e.LiveOdds,
		Edge:        e.Edge,
		EVLay:       e.EVLay,
		Tier:        e.Tier,
	}
}

// Policy turns a bankroll and a candidate list into lay recommendations.
type Policy interface {
	Name() string
	Recommend(bankroll float64, candidates []Candidate) ([]models.StakeRecommendation, error)
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func loggerOrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return discard
	}
	return l
}

func checkBankroll(bankroll float64) error {
	if bankroll <= 0 || math.IsNaN(bankroll) || math.IsInf(bankroll, 0) {
		return models.InvalidBankroll(bankroll)
	}
	return nil
}

// layable filters out candidates with no valid lay price.
func layable(candidates []Candidate, log logrus.FieldLogger) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Odds <= 1.0 || math.IsNaN(c.Odds) || math.IsInf(c.Odds, 0) {
			log.WithFields(logrus.Fields{
				"name": c.Name,
				"odds": c.Odds,
			}).Debug("Skipping candidate without a valid lay price")
			continue
		}
		out = append(out, c)
	}
	return out
}

func kellyFraction(c Candidate) float64 {
	if c.EVLay <= 0 {
		return 0
	}
	return c.EVLay / (c.Odds - 1.0)
}

func recommendation(policy string, c Candidate, liability float64) models.StakeRecommendation {
	return models.StakeRecommendation{
		Name:      c.Name,
		Side:      models.BetSideLay,
		Policy:    policy,
		Tier:      c.Tier,
		Odds:      c.Odds,
		EVLay:     c.EVLay,
		Stake:     models.StakeFor(liability, c.Odds),
		Liability: liability,
	}
}

func sortByEV(recs []models.StakeRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].EVLay > recs[j].EVLay
	})
}

// CappedKelly lays every positive-EV candidate at a fraction of the lay Kelly stake,
// with liability capped at a share of the bankroll.
type CappedKelly struct {
	Fraction    float64
	CapFraction float64
	Logger      logrus.FieldLogger
}

func (p CappedKelly) Name() string { return PolicyCappedKelly }

func (p CappedKelly) Recommend(bankroll float64, candidates []Candidate) ([]models.StakeRecommendation, error) {
	if err := checkBankroll(bankroll); err != nil {
		return nil, err
	}
	log := loggerOrDiscard(p.Logger)
	limit := p.CapFraction * bankroll

	recs := make([]models.StakeRecommendation, 0, len(candidates))
	for _, c := range layable(candidates, log) {
		if c.EVLay <= 0 {
			continue
		}
		stake := p.Fraction * kellyFraction(c) * bankroll
		liability := models.LiabilityFor(stake, c.Odds)
		if liability > limit {
			log.WithFields(logrus.Fields{
				"name":      c.Name,
				"liability": liability,
				"cap":       limit,
			}).Debug("Liability capped at maximum")
			liability = limit
		}
		if liability <= 0 {
			continue
		}
		recs = append(recs, recommendation(p.Name(), c, liability))
	}
	sortByEV(recs)
	return recs, nil
}

// FlatOnly lays every signalled candidate for the full per-competitor cap.
type FlatOnly struct {
	CapFraction float64
	Logger      logrus.FieldLogger
}

func (p FlatOnly) Name() string { return PolicyFlat }

func (p FlatOnly) Recommend(bankroll float64, candidates []Candidate) ([]models.StakeRecommendation, error) {
	if err := checkBankroll(bankroll); err != nil {
		return nil, err
	}
	liability := p.CapFraction * bankroll

	recs := make([]models.StakeRecommendation, 0, len(candidates))
	for _, c := range layable(candidates, loggerOrDiscard(p.Logger)) {
		if !c.Tier.Eligible() {
			continue
		}
		recs = append(recs, recommendation(p.Name(), c, liability))
	}
	sortByEV(recs)
	return recs, nil
}

// FlatMiniKelly lays every signalled candidate for a flat share of the bankroll plus a
// small Kelly top-up, capped like CappedKelly. Percentages are whole-number percents.
type FlatMiniKelly struct {
	FlatPct      float64
	MiniKellyPct float64
	CapFraction  float64
	Logger       logrus.FieldLogger
}

func (p FlatMiniKelly) Name() string { return PolicyFlatMiniKelly }

func (p FlatMiniKelly) Recommend(bankroll float64, candidates []Candidate) ([]models.StakeRecommendation, error) {
	if err := checkBankroll(bankroll); err != nil {
		return nil, err
	}
	log := loggerOrDiscard(p.Logger)
	limit := p.CapFraction * bankroll

	recs := make([]models.StakeRecommendation, 0, len(candidates))
	for _, c := range layable(candidates, log) {
		if !c.Tier.Eligible() {
			continue
		}
		flat := p.FlatPct / 100 * bankroll
		mini := p.MiniKellyPct / 100 * kellyFraction(c) * bankroll
		liability := math.Min(flat+mini, limit)
		if liability <= 0 {
			continue
		}
		log.WithFields(logrus.Fields{
			"name":      c.Name,
			"flat":      flat,
			"mini":      mini,
			"liability": liability,
		}).Debug("Flat plus mini-Kelly liability calculated")
		recs = append(recs, recommendation(p.Name(), c, liability))
	}
	sortByEV(recs)
	return recs, nil
}

// TierCaps holds the per-tier budget share of the bankroll, per member.
type TierCaps struct {
	Strong float64 `json:"strong" mapstructure:"strong"`
	Medium float64 `json:"medium" mapstructure:"medium"`
	Weak   float64 `json:"weak" mapstructure:"weak"`
}

// DefaultTierCaps returns 10%, 7.5% and 5%.
func DefaultTierCaps() TierCaps {
	return TierCaps{Strong: 0.10, Medium: 0.075, Weak: 0.05}
}

func (tc TierCaps) For(tier models.SignalTier) float64 {
	switch tier {
	case models.TierStrong:
		return tc.Strong
	case models.TierMedium:
		return tc.Medium
	case models.TierWeak:
		return tc.Weak
	default:
		return 0
	}
}

// TieredEV gives each tier a budget of cap(tier)·bankroll per member and splits it across
// the tier's members in proportion to their lay EV. A single member can therefore receive
// more than its own tier cap.
type TieredEV struct {
	Caps   TierCaps
	Logger logrus.FieldLogger
}

func (p TieredEV) Name() string { return PolicyTieredEV }

func (p TieredEV) Recommend(bankroll float64, candidates []Candidate) ([]models.StakeRecommendation, error) {
	if err := checkBankroll(bankroll); err != nil {
		return nil, err
	}
	log := loggerOrDiscard(p.Logger)

	tiers := make(map[models.SignalTier][]Candidate)
	for _, c := range layable(candidates, log) {
		if c.Tier.Eligible() {
			tiers[c.Tier] = append(tiers[c.Tier], c)
		}
	}

	recs := make([]models.StakeRecommendation, 0, len(candidates))
	for _, tier := range []models.SignalTier{models.TierStrong, models.TierMedium, models.TierWeak} {
		members := tiers[tier]
		if len(members) == 0 {
			continue
		}
		budget := p.Caps.For(tier) * bankroll * float64(len(members))

		var total float64
		for _, c := range members {
			total += c.EVLay
		}

		log.WithFields(logrus.Fields{
			"tier":     tier.String(),
			"members":  len(members),
			"budget":   budget,
			"ev_total": total,
		}).Debug("Allocating tier budget")

		group := make([]models.StakeRecommendation, 0, len(members))
		for _, c := range members {
			weight := 0.0
			if total > 0 {
				weight = c.EVLay / total
			}
			liability := weight * budget
			if liability <= 0 {
				continue
			}
			group = append(group, recommendation(p.Name(), c, liability))
		}
		sortByEV(group)
		recs = append(recs, group...)
	}
	return recs, nil
}
