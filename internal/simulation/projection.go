package simulation

import "github.com/yourusername/odds-apex/internal/models"

// ProjectSGRate projects strokes gained over the remaining holes. Once holes have been
// played it averages the pre-event expectation with the live rate scaled to the holes left.
func ProjectSGRate(input models.CompetitorInput, params models.ModelParams) float64 {
	played := params.TotalHoles - input.HolesLeft
	if played <= 0 {
		return input.ExpectedStrokesGained
	}
	perHole := input.LiveStrokesGained() / float64(played)
	return 0.5*input.ExpectedStrokesGained + 0.5*(perHole*float64(input.HolesLeft))
}

// ScenarioFor builds the simulation scenario for a competitor.
func ScenarioFor(input models.CompetitorInput, params models.ModelParams) Scenario {
	return Scenario{
		ShotsBehind: input.ShotsBehind,
		HolesLeft:   input.HolesLeft,
		SGRate:      ProjectSGRate(input, params),
		Contenders:  input.Contenders,
	}
}
