package models

// FieldQuality describes the strength of the tournament field.
type FieldQuality string

const (
	FieldQualityWeak    FieldQuality = "weak"
	FieldQualityAverage FieldQuality = "average"
	FieldQualityStrong  FieldQuality = "strong"
)

// Factor returns the divisor applied to the heuristic score. Stronger fields suppress it.
func (q FieldQuality) Factor() (float64, bool) {
	switch q {
	case FieldQualityWeak:
		return 0.9, true
	case FieldQualityAverage:
		return 1.0, true
	case FieldQualityStrong:
		return 1.1, true
	default:
		return 0, false
	}
}

// CompetitorInput is a snapshot of a competitor's pre-event form and live in-event state.
// It is built once per calculation and treated as read-only afterwards.
type CompetitorInput struct {
	Name string `json:"name" validate:"required"`

	// Pre-event form
	ExpectedWins            float64   `json:"xwins"`
	TotalStrokesGained      float64   `json:"total_shots_gained"`
	PuttingStrokesGained    float64   `json:"putt"`
	TeeToGreenStrokesGained float64   `json:"t2g"`
	TrueStrokesGained       float64   `json:"sg_true"`
	ExpectedStrokesGained   float64   `json:"sg_expected"`
	CourseFit               float64   `json:"course_fit"`
	Ranking                 float64   `json:"ranking" validate:"gte=0"`
	LeaderboardPosition     float64   `json:"leaderboard_position" validate:"gte=0"`
	LastFinishes            []float64 `json:"last_finishes" validate:"min=1,dive,gte=0"`

	// Live round statistics
	SGOffTee   float64 `json:"sg_off_tee"`
	SGApproach float64 `json:"sg_approach"`
	SGPutting  float64 `json:"sg_putting"`
	Scrambling float64 `json:"scrambling" validate:"gte=0,lte=100"`

	// Tournament state
	HolesLeft    int          `json:"holes_left" validate:"gte=0,lte=72"`
	Contenders   int          `json:"contenders" validate:"gte=1"`
	ShotsBehind  float64      `json:"shots_behind" validate:"gte=0"`
	FieldQuality FieldQuality `json:"field_quality" validate:"oneof=weak average strong"`
}

// AverageFinish returns the mean of the recent finishing positions.
func (c CompetitorInput) AverageFinish() float64 {
	if len(c.LastFinishes) == 0 {
		return 0
	}
	total := 0.0
	for _, f := range c.LastFinishes {
		total += f
	}
	return total / float64(len(c.LastFinishes))
}

// LiveStrokesGained returns the in-round strokes gained across tee, approach and putting.
func (c CompetitorInput) LiveStrokesGained() float64 {
	return c.SGOffTee + c.SGApproach + c.SGPutting
}

// WithFinishes returns a copy holding its own finishes slice.
func (c CompetitorInput) WithFinishes(finishes []float64) CompetitorInput {
	c.LastFinishes = append([]float64(nil), finishes...)
	return c
}
