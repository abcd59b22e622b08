package scoring

import (
	"math"

	"github.com/yourusername/odds-apex/internal/models"
)

// Score weights
const (
	baseScore         = 50.0
	halfWeight        = 0.5
	pressureWeight    = 15.0
	courseFitWeight   = 20.0
	leaderboardWeight = 0.3
	scramblingWeight  = 0.2
	minScore          = 0.0
	maxScore          = 100.0
)

// Breakdown lists each weighted contribution to a heuristic score.
type Breakdown struct {
	Base           float64 `json:"base"`
	ExpectedWins   float64 `json:"expected_wins"`
	StrokesGained  float64 `json:"strokes_gained"`
	Pressure       float64 `json:"pressure"`
	CourseFit      float64 `json:"course_fit"`
	Ranking        float64 `json:"ranking"`
	Leaderboard    float64 `json:"leaderboard"`
	RecentForm     float64 `json:"recent_form"`
	LiveSG         float64 `json:"live_sg"`
	Scrambling     float64 `json:"scrambling"`
	DeficitPenalty float64 `json:"deficit_penalty"`
	Raw            float64 `json:"raw"`
	FieldFactor    float64 `json:"field_factor"`
	Score          float64 `json:"score"`
}

// Scorer computes the heuristic score. Weights are fixed; only the deficit scale comes
// from the model parameters.
type Scorer struct {
	params    models.ModelParams
	validator *InputValidator
}

// NewScorer creates a new scorer
func NewScorer(params models.ModelParams) *Scorer {
	return &Scorer{
		params:    params,
		validator: NewInputValidator(),
	}
}

// Validate checks input ranges before scoring.
func (s *Scorer) Validate(input models.CompetitorInput) error {
	return s.validator.Validate(input)
}

// Score returns the heuristic score in [0, 100].
func (s *Scorer) Score(input models.CompetitorInput) (float64, error) {
	b, err := s.Breakdown(input)
	if err != nil {
		return 0, err
	}
	return b.Score, nil
}

// Breakdown computes the score and every term that went into it.
func (s *Scorer) Breakdown(input models.CompetitorInput) (Breakdown, error) {
	factor, ok := input.FieldQuality.Factor()
	if !ok {
		return Breakdown{}, models.NewValidationError(FieldFieldQuality, string(input.FieldQuality), "must be one of: weak, average, strong")
	}

	b := Breakdown{
		Base:         baseScore,
		ExpectedWins: input.ExpectedWins,
		StrokesGained: halfWeight*input.TotalStrokesGained +
			halfWeight*input.PuttingStrokesGained +
			halfWeight*input.TeeToGreenStrokesGained,
		Pressure:    pressureWeight * (input.TrueStrokesGained - input.ExpectedStrokesGained),
		CourseFit:   courseFitWeight * input.CourseFit,
		Ranking:     -halfWeight * input.Ranking,
		Leaderboard: -leaderboardWeight * input.LeaderboardPosition,
		RecentForm:  -halfWeight * input.AverageFinish(),
		LiveSG: halfWeight*input.SGOffTee +
			halfWeight*input.SGApproach +
			halfWeight*input.SGPutting,
		Scrambling:     -scramblingWeight * (100 - input.Scrambling),
		DeficitPenalty: -s.DeficitPenalty(input.ShotsBehind, input.HolesLeft),
		FieldFactor:    factor,
	}

	b.Raw = b.Base + b.ExpectedWins + b.StrokesGained + b.Pressure + b.CourseFit +
		b.Ranking + b.Leaderboard + b.RecentForm + b.LiveSG + b.Scrambling + b.DeficitPenalty
	if !finite(b.Raw) {
		field, value := b.overflowSource(input)
		return Breakdown{}, models.NewValidationError(field, value, "drives the heuristic score out of range")
	}
	b.Score = math.Min(maxScore, math.Max(minScore, b.Raw/factor))

	return b, nil
}

// overflowSource names the input behind a non-finite raw score. A term that is itself
// non-finite is preferred; otherwise the largest input of any term is blamed.
func (b Breakdown) overflowSource(input models.CompetitorInput) (string, float64) {
	sources := []struct {
		term  float64
		field string
		value float64
	}{
		{b.ExpectedWins, FieldExpectedWins, input.ExpectedWins},
		{b.StrokesGained, FieldTotalStrokesGained, input.TotalStrokesGained},
		{b.StrokesGained, FieldPutt, input.PuttingStrokesGained},
		{b.StrokesGained, FieldTeeToGreen, input.TeeToGreenStrokesGained},
		{b.Pressure, FieldTrueStrokesGained, input.TrueStrokesGained},
		{b.Pressure, FieldExpectedSG, input.ExpectedStrokesGained},
		{b.CourseFit, FieldCourseFit, input.CourseFit},
		{b.Ranking, FieldRanking, input.Ranking},
		{b.Leaderboard, FieldLeaderboardPosition, input.LeaderboardPosition},
		{b.RecentForm, FieldLastFinishes, input.AverageFinish()},
		{b.LiveSG, FieldSGOffTee, input.SGOffTee},
		{b.LiveSG, FieldSGApproach, input.SGApproach},
		{b.LiveSG, FieldSGPutting, input.SGPutting},
		{b.Scrambling, FieldScrambling, input.Scrambling},
		{b.DeficitPenalty, FieldShotsBehind, input.ShotsBehind},
	}

	pick := func(nonFiniteOnly bool) int {
		best := -1
		for i, src := range sources {
			if nonFiniteOnly && finite(src.term) {
				continue
			}
			if best < 0 || magnitude(src.value) > magnitude(sources[best].value) {
				best = i
			}
		}
		return best
	}

	i := pick(true)
	if i < 0 {
		i = pick(false)
	}
	return sources[i].field, sources[i].value
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// magnitude orders NaN above every number.
func magnitude(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return math.Abs(v)
}

// DeficitPenalty scales shots behind by the square root of holes remaining: the same
// deficit costs more with less golf left to recover it.
func (s *Scorer) DeficitPenalty(shotsBehind float64, holesLeft int) float64 {
	holes := math.Max(float64(holesLeft), 1)
	return shotsBehind / math.Sqrt(holes) * s.params.SBScale
}
