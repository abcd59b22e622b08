package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/yourusername/odds-apex/internal/metrics"
	"github.com/yourusername/odds-apex/internal/models"
	"github.com/yourusername/odds-apex/internal/report"
	"github.com/yourusername/odds-apex/internal/scoring"
	"github.com/yourusername/odds-apex/internal/staking"
)

// Submission is one competitor's raw form and live price. When LiveOdds is zero the
// price is read from the form's live_odds field.
type Submission struct {
	Form     scoring.Form `json:"form"`
	LiveOdds float64      `json:"live_odds,omitempty"`
}

// Evaluation is a competitor's estimate together with its market valuation.
type Evaluation struct {
	Estimate  models.ProbabilityEstimate `json:"estimate"`
	Valuation models.Valuation           `json:"valuation"`
}

// Failure records a competitor dropped from a field.
type Failure struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Err   error  `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("competitor %d (%s): %v", f.Index, f.Name, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// FieldResult is a classified field plus the competitors that could not be valued.
type FieldResult struct {
	RunID    string              `json:"run_id"`
	Entries  []models.FieldEntry `json:"entries"`
	Failures []Failure           `json:"-"`
}

// Evaluate parses a form, estimates the win probability and values it against the market.
func (e *Engine) Evaluate(ctx context.Context, sub Submission, seed int64) (Evaluation, error) {
	input, err := scoring.ParseForm(sub.Form)
	if err != nil {
		return Evaluation{}, err
	}

	odds := sub.LiveOdds
	if odds == 0 {
		odds, err = scoring.LiveOdds(sub.Form)
		if err != nil {
			return Evaluation{}, err
		}
	}

	est, err := e.EstimateWinProbability(ctx, input, seed)
	if err != nil {
		return Evaluation{}, err
	}
	v, err := e.ValueAgainstMarket(est, input.Name, odds)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{Estimate: est, Valuation: v}, nil
}

// EvaluateField values every submission and classifies the field. Each competitor is
// simulated with the same seed. A competitor that fails validation or has an invalid
// price is reported in Failures and left out of the field. Only context cancellation
// stops the batch; the competitors valued before it are still classified and returned
// with the error.
func (e *Engine) EvaluateField(ctx context.Context, subs []Submission, seed int64) (FieldResult, error) {
	result := FieldResult{RunID: uuid.NewString()}
	log := e.log.WithRun(result.RunID)

	field := make([]models.FieldEntry, 0, len(subs))
	stop := func(done int, err error) (FieldResult, error) {
		result.Entries = e.ClassifySignals(field)
		return result, fmt.Errorf("field evaluation stopped after %d of %d competitors: %w", done, len(subs), err)
	}

	for i, sub := range subs {
		if err := ctx.Err(); err != nil {
			return stop(i, err)
		}

		ev, err := e.Evaluate(ctx, sub, seed)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stop(i, ctxErr)
			}
			name := submissionName(sub)
			log.LogRejected(name, err)
			result.Failures = append(result.Failures, Failure{Index: i, Name: name, Err: err})
			continue
		}
		field = append(field, models.FieldEntry{Valuation: ev.Valuation})
	}

	result.Entries = e.ClassifySignals(field)
	return result, nil
}

func submissionName(sub Submission) string {
	if name, ok := sub.Form[scoring.FieldName].(string); ok && name != "" {
		return name
	}
	return "unknown"
}

// StakeReportResult is the outcome of staking from a report.
type StakeReportResult struct {
	RunID           string                       `json:"run_id"`
	Policy          string                       `json:"policy"`
	Bankroll        float64                      `json:"bankroll"`
	CapFraction     float64                      `json:"cap_fraction"`
	Field           []models.FieldEntry          `json:"field"`
	Recommendations []models.StakeRecommendation `json:"recommendations"`
	Skipped         []report.Skip                `json:"skipped"`
}

// StakeReport reads report lines, classifies the parsed field and sizes lays under the
// requested policy. Lay EV is recomputed from each line's Model and LiveOdds.
func (e *Engine) StakeReport(ctx context.Context, r io.Reader, req StakeRequest) (StakeReportResult, error) {
	result := StakeReportResult{
		RunID:       uuid.NewString(),
		Policy:      req.Policy,
		Bankroll:    req.Bankroll,
		CapFraction: e.registry.Settings().CapFraction,
	}
	log := e.log.WithRun(result.RunID)

	if !staking.Known(req.Policy) {
		return result, fmt.Errorf("%w: '%s' (known: %v)", models.ErrUnknownPolicy, req.Policy, staking.Names())
	}
	if req.Bankroll <= 0 {
		e.audit.LogStakingRejected(result.RunID, req.Policy, req.Bankroll, "bankroll must be positive")
		return result, models.InvalidBankroll(req.Bankroll)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	records, skips, err := report.Parse(r)
	if err != nil {
		return result, err
	}
	for _, s := range skips {
		metrics.RecordReportLineSkipped(s.Reason)
		log.LogParseSkip(s.Line, s.Reason)
	}
	result.Skipped = skips

	result.Field = e.ClassifySignals(report.FieldFromRecords(records))
	candidates := make([]staking.Candidate, 0, len(result.Field))
	for _, entry := range result.Field {
		candidates = append(candidates, staking.CandidateFromEntry(entry))
	}

	recs, err := e.recommend(result.RunID, req, candidates)
	if err != nil {
		return result, err
	}
	result.Recommendations = recs
	return result, nil
}
