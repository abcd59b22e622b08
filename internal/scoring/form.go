// Package scoring turns a competitor's form and live statistics into a bounded heuristic score.
package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yourusername/odds-apex/internal/models"
)

// Form field keys
const (
	FieldName                = "name"
	FieldExpectedWins        = "xwins"
	FieldTotalStrokesGained  = "total_shots_gained"
	FieldPutt                = "putt"
	FieldTeeToGreen          = "t2g"
	FieldTrueStrokesGained   = "sg_true"
	FieldExpectedSG          = "sg_expected"
	FieldCourseFit           = "course_fit"
	FieldRanking             = "ranking"
	FieldLeaderboardPosition = "leaderboard_position"
	FieldShotsBehind         = "shots_behind"
	FieldLastFinishes        = "last_finishes"
	FieldSGOffTee            = "sg_off_tee"
	FieldSGApproach          = "sg_approach"
	FieldSGPutting           = "sg_putting"
	FieldScrambling          = "scrambling"
	FieldHolesLeft           = "holes_left"
	FieldContenders          = "contenders"
	FieldFieldQuality        = "field_quality"
	FieldLiveOdds            = "live_odds"
)

// Form is raw, user-entered competitor data keyed by field name. Values may be numbers
// or numeric text, as they arrive from YAML files, JSON bodies or flags.
type Form map[string]any

// ParseForm converts a form into a CompetitorInput. Every numeric field is required; the
// first missing or non-numeric one is reported as a *models.ValidationError.
func ParseForm(form Form) (models.CompetitorInput, error) {
	var (
		input models.CompetitorInput
		err   error
	)

	name, ok := form[FieldName]
	if !ok || name == nil || strings.TrimSpace(fmt.Sprint(name)) == "" {
		return input, models.NewValidationError(FieldName, nil, "is required")
	}
	input.Name = strings.TrimSpace(fmt.Sprint(name))

	floats := []struct {
		key string
		dst *float64
	}{
		{FieldExpectedWins, &input.ExpectedWins},
		{FieldTotalStrokesGained, &input.TotalStrokesGained},
		{FieldPutt, &input.PuttingStrokesGained},
		{FieldTeeToGreen, &input.TeeToGreenStrokesGained},
		{FieldTrueStrokesGained, &input.TrueStrokesGained},
		{FieldExpectedSG, &input.ExpectedStrokesGained},
		{FieldCourseFit, &input.CourseFit},
		{FieldRanking, &input.Ranking},
		{FieldLeaderboardPosition, &input.LeaderboardPosition},
		{FieldShotsBehind, &input.ShotsBehind},
		{FieldSGOffTee, &input.SGOffTee},
		{FieldSGApproach, &input.SGApproach},
		{FieldSGPutting, &input.SGPutting},
		{FieldScrambling, &input.Scrambling},
	}
	for _, f := range floats {
		if *f.dst, err = requireFloat(form, f.key); err != nil {
			return models.CompetitorInput{}, err
		}
	}

	if input.HolesLeft, err = requireInt(form, FieldHolesLeft); err != nil {
		return models.CompetitorInput{}, err
	}
	if input.Contenders, err = requireInt(form, FieldContenders); err != nil {
		return models.CompetitorInput{}, err
	}

	finishes, err := requireFloatList(form, FieldLastFinishes)
	if err != nil {
		return models.CompetitorInput{}, err
	}
	input = input.WithFinishes(finishes)

	input.FieldQuality = models.FieldQualityAverage
	if raw, ok := form[FieldFieldQuality]; ok && raw != nil {
		if q := strings.ToLower(strings.TrimSpace(fmt.Sprint(raw))); q != "" {
			input.FieldQuality = models.FieldQuality(q)
		}
	}

	return input, nil
}

// LiveOdds extracts the optional live price carried alongside a form.
func LiveOdds(form Form) (float64, error) {
	return requireFloat(form, FieldLiveOdds)
}

func requireFloat(form Form, key string) (float64, error) {
	raw, ok := form[key]
	if !ok || raw == nil {
		return 0, models.NewValidationError(key, nil, "is required")
	}
	v, ok := toFloat(raw)
	if !ok {
		return 0, models.NewValidationError(key, raw, "must be a number")
	}
	return v, nil
}

func requireInt(form Form, key string) (int, error) {
	v, err := requireFloat(form, key)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, models.NewValidationError(key, form[key], "must be a whole number")
	}
	return int(v), nil
}

func requireFloatList(form Form, key string) ([]float64, error) {
	raw, ok := form[key]
	if !ok || raw == nil {
		return nil, models.NewValidationError(key, nil, "is required")
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []float64:
		return append([]float64(nil), v...), nil
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, nil
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
	default:
		return nil, models.NewValidationError(key, raw, "must be a list of numbers")
	}

	if len(items) == 0 {
		return nil, models.NewValidationError(key, raw, "must contain at least one finish")
	}
	out := make([]float64, 0, len(items))
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return nil, models.NewValidationError(fmt.Sprintf("%s[%d]", key, i), item, "must be a number")
		}
		out = append(out, f)
	}
	return out, nil
}

// toFloat accepts numbers and numeric text only. A bool is not a number here.
func toFloat(raw any) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case int32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
