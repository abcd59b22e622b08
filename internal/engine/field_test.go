package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/odds-apex/internal/models"
	"github.com/yourusername/odds-apex/internal/scoring"
	"github.com/yourusername/odds-apex/internal/staking"
)

func formWith(name string, odds float64, mutate func(scoring.Form)) scoring.Form {
	form := sampleForm()
	form[scoring.FieldName] = name
	form[scoring.FieldLiveOdds] = odds
	if mutate != nil {
		mutate(form)
	}
	return form
}

func TestEvaluate(t *testing.T) {
	e := newTestEngine(t)

	ev, err := e.Evaluate(context.Background(), Submission{Form: sampleForm()}, 11)
	require.NoError(t, err)
	assert.Equal(t, "Rory", ev.Valuation.Name)
	assert.Equal(t, 5.0, ev.Valuation.LiveOdds)
	assert.Equal(t, ev.Estimate.Final, ev.Valuation.Final)

	// An explicit price wins over the form's.
	ev, err = e.Evaluate(context.Background(), Submission{Form: sampleForm(), LiveOdds: 8}, 11)
	require.NoError(t, err)
	assert.Equal(t, 8.0, ev.Valuation.LiveOdds)
}

func TestEvaluateFieldCollectsFailures(t *testing.T) {
	e := newTestEngine(t)

	subs := []Submission{
		{Form: formWith("Leader", 3, func(f scoring.Form) { f[scoring.FieldShotsBehind] = 0 })},
		{Form: formWith("BadPrice", 1.0, nil)},
		{Form: formWith("Chaser", 12, func(f scoring.Form) { f[scoring.FieldShotsBehind] = 5 })},
		{Form: formWith("NoStats", 7, func(f scoring.Form) { delete(f, scoring.FieldPutt) })},
	}

	result, err := e.EvaluateField(context.Background(), subs, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)

	require.Len(t, result.Entries, 2)
	assert.Equal(t, "Leader", result.Entries[0].Name)
	assert.Equal(t, 1, result.Entries[0].ModelRank)
	assert.Equal(t, 1, result.Entries[0].MarketRank)
	assert.Equal(t, 2, result.Entries[1].ModelRank)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.ErrorIs(t, result.Failures[0], models.ErrInvalidOdds)
	assert.Equal(t, "NoStats", result.Failures[1].Name)

	var ve *models.ValidationError
	require.True(t, errors.As(result.Failures[1].Err, &ve))
	assert.Equal(t, scoring.FieldPutt, ve.Field)
}

func TestEvaluateFieldStopsOnCancel(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.EvaluateField(ctx, []Submission{{Form: sampleForm()}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Entries)
	assert.Empty(t, result.Failures)
}

// cancelOnEstimate cancels a context once the first estimate has been logged.
type cancelOnEstimate struct {
	cancel context.CancelFunc
}

func (h cancelOnEstimate) Levels() []logrus.Level {
	return []logrus.Level{logrus.InfoLevel}
}

func (h cancelOnEstimate) Fire(entry *logrus.Entry) error {
	if entry.Message == "Win probability estimated" {
		h.cancel()
	}
	return nil
}

func TestEvaluateFieldReturnsPartialFieldOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logrus.New()
	log.SetOutput(io.Discard)
	log.AddHook(cancelOnEstimate{cancel: cancel})

	opts := DefaultOptions()
	opts.Simulation.Trials = 2000
	opts.Logger = log
	e, err := New(opts)
	require.NoError(t, err)

	subs := []Submission{
		{Form: formWith("First", 12, nil)},
		{Form: formWith("Second", 8, nil)},
		{Form: formWith("Third", 20, nil)},
	}
	result, err := e.EvaluateField(ctx, subs, 5)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "after 1 of 3 competitors")

	require.Len(t, result.Entries, 1)
	entry := result.Entries[0]
	assert.Equal(t, "First", entry.Name)
	assert.Equal(t, 1, entry.ModelRank)
	assert.Equal(t, 1, entry.MarketRank)
	assert.Equal(t, models.TierNone, entry.Tier)
	assert.Empty(t, result.Failures)
}

const fieldReport = `P  |  Model:  60.00%  LiveOdds: 6.00
Q  |  Model:  50.00%  LiveOdds: 5.00
this line is commentary
R  |  Model:  35.00%  LiveOdds: 4.00
X  |  Model:  10.00%  LiveOdds: 2.00
S  |  Model:   5.00%  LiveOdds: 10.00
T  |  Model:   5.00%
`

func TestStakeReportCappedKelly(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.StakeReport(context.Background(),
		strings.NewReader("X  |  Score:  30.00%  Model:  10.00%  LiveOdds: 5.00  EV: -0.500\n"),
		StakeRequest{Policy: staking.PolicyCappedKelly, Bankroll: 1000})
	require.NoError(t, err)

	require.Len(t, res.Recommendations, 1)
	assert.InDelta(t, 100.0, res.Recommendations[0].Liability, 1e-9)
	assert.InDelta(t, 25.0, res.Recommendations[0].Stake, 1e-9)
	assert.Equal(t, 0.10, res.CapFraction)
}

func TestStakeReportTieredUsesSignals(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.StakeReport(context.Background(), strings.NewReader(fieldReport),
		StakeRequest{Policy: staking.PolicyTieredEV, Bankroll: 1000})
	require.NoError(t, err)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 3, res.Skipped[0].Line)
	assert.Equal(t, "missing live odds", res.Skipped[1].Reason)
	require.Len(t, res.Field, 5)

	require.Len(t, res.Recommendations, 1)
	rec := res.Recommendations[0]
	assert.Equal(t, "X", rec.Name)
	assert.Equal(t, models.TierStrong, rec.Tier)
	assert.InDelta(t, 100.0, rec.Liability, 1e-9)
	assert.InDelta(t, 100.0, rec.Stake, 1e-9)
}

func TestStakeReportFlatOverride(t *testing.T) {
	e := newTestEngine(t)
	flat := 5.0
	mini := 0.0

	res, err := e.StakeReport(context.Background(), strings.NewReader(fieldReport),
		StakeRequest{Policy: staking.PolicyFlatMiniKelly, Bankroll: 1000, FlatPct: &flat, MiniKellyPct: &mini})
	require.NoError(t, err)

	require.Len(t, res.Recommendations, 1)
	assert.InDelta(t, 50.0, res.Recommendations[0].Liability, 1e-9)
}

func TestStakeReportAuditsOverrides(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)

	opts := DefaultOptions()
	opts.Simulation.Trials = 2000
	opts.Logger = log
	e, err := New(opts)
	require.NoError(t, err)

	flat := 5.0
	mini := opts.Staking.MiniKellyPct
	res, err := e.StakeReport(context.Background(), strings.NewReader(fieldReport),
		StakeRequest{Policy: staking.PolicyFlatMiniKelly, Bankroll: 1000, FlatPct: &flat, MiniKellyPct: &mini})
	require.NoError(t, err)

	var overrides []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "Parameter overridden" {
			overrides = append(overrides, entry)
		}
	}

	require.Len(t, overrides, 1, "an override equal to the default is not audited")
	assert.Equal(t, "staking.flat_pct", overrides[0]["parameter_name"])
	assert.Equal(t, opts.Staking.FlatPct, overrides[0]["default_value"])
	assert.Equal(t, 5.0, overrides[0]["new_value"])
	assert.Equal(t, "request", overrides[0]["source"])
	assert.Equal(t, res.RunID, overrides[0]["run_id"])
}

func TestStakeReportSkipsBackSideFavourite(t *testing.T) {
	e := newTestEngine(t)
	const lines = "Y  |  Model:  90.00%  LiveOdds: 2.00\nX  |  Model:  85.00%  LiveOdds: 1.50\n"

	for _, policy := range []string{staking.PolicyFlat, staking.PolicyFlatMiniKelly, staking.PolicyTieredEV} {
		t.Run(policy, func(t *testing.T) {
			res, err := e.StakeReport(context.Background(), strings.NewReader(lines),
				StakeRequest{Policy: policy, Bankroll: 1000})
			require.NoError(t, err)
			require.Len(t, res.Field, 2)
			for _, entry := range res.Field {
				assert.Equal(t, models.TierNone, entry.Tier, entry.Name)
			}
			assert.Empty(t, res.Recommendations)
		})
	}
}

func TestStakeReportRejectsBadRequests(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.StakeReport(context.Background(), strings.NewReader(fieldReport),
		StakeRequest{Policy: staking.PolicyFlat, Bankroll: -1})
	assert.ErrorIs(t, err, models.ErrInvalidBankroll)

	_, err = e.StakeReport(context.Background(), strings.NewReader(fieldReport),
		StakeRequest{Policy: "martingale", Bankroll: 1000})
	assert.ErrorIs(t, err, models.ErrUnknownPolicy)
}
