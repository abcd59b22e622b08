package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/odds-apex/internal/engine"
	"github.com/yourusername/odds-apex/internal/metrics"
	"github.com/yourusername/odds-apex/internal/scoring"
)

func sampleForm() scoring.Form {
	return scoring.Form{
		scoring.FieldName:                "Rory",
		scoring.FieldExpectedWins:        2.0,
		scoring.FieldTotalStrokesGained:  1.5,
		scoring.FieldPutt:                0.4,
		scoring.FieldTeeToGreen:          1.1,
		scoring.FieldTrueStrokesGained:   1.2,
		scoring.FieldExpectedSG:          1.0,
		scoring.FieldCourseFit:           0.5,
		scoring.FieldRanking:             10,
		scoring.FieldLeaderboardPosition: 3,
		scoring.FieldShotsBehind:         2,
		scoring.FieldLastFinishes:        []any{5, 10, 2, 8, 15},
		scoring.FieldSGOffTee:            0.6,
		scoring.FieldSGApproach:          1.0,
		scoring.FieldSGPutting:           0.4,
		scoring.FieldScrambling:          60,
		scoring.FieldHolesLeft:           18,
		scoring.FieldContenders:          10,
		scoring.FieldFieldQuality:        "average",
		scoring.FieldLiveOdds:            5.0,
	}
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	opts := engine.DefaultOptions()
	opts.Simulation.Trials = 1000
	opts.Simulation.Workers = 2
	eng, err := engine.New(opts)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(cfg, eng, logger)
}

func post(t *testing.T, s *Server, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, &buf))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestEstimateEndpoint(t *testing.T) {
	s := newTestServer(t, Config{DefaultSeed: 42})

	rec, body := post(t, s, "/v1/estimate", map[string]any{"form": sampleForm()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	est := body["estimate"].(map[string]any)
	assert.EqualValues(t, 1000, est["trials"])
	assert.Greater(t, est["final"].(float64), 0.0)

	val := body["valuation"].(map[string]any)
	assert.Equal(t, "Rory", val["name"])
	assert.EqualValues(t, 5, val["live_odds"])
	assert.True(t, strings.HasPrefix(body["record"].(string), "Rory"))
}

func TestEstimateEndpointWithoutOdds(t *testing.T) {
	s := newTestServer(t, Config{})
	form := sampleForm()
	delete(form, scoring.FieldLiveOdds)

	rec, body := post(t, s, "/v1/estimate", map[string]any{"form": form, "seed": 7})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body, "valuation")
	assert.NotContains(t, body, "record")
}

func TestEstimateEndpointRejectsInput(t *testing.T) {
	s := newTestServer(t, Config{})

	form := sampleForm()
	delete(form, scoring.FieldExpectedWins)
	rec, body := post(t, s, "/v1/estimate", map[string]any{"form": form})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, scoring.FieldExpectedWins, body["field"])

	rec, body = post(t, s, "/v1/estimate", map[string]any{"form": sampleForm(), "live_odds": 1.0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, scoring.FieldLiveOdds, body["field"])

	rec, body = post(t, s, "/v1/estimate", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "invalid request body")
}

func TestFieldEndpoint(t *testing.T) {
	s := newTestServer(t, Config{DefaultSeed: 3})

	a := sampleForm()
	b := sampleForm()
	b[scoring.FieldName] = "Jon"
	b[scoring.FieldLiveOdds] = 2.5
	bad := sampleForm()
	bad[scoring.FieldName] = "Broken"
	delete(bad, scoring.FieldPutt)

	rec, body := post(t, s, "/v1/field", map[string]any{
		"competitors": []map[string]any{{"form": a}, {"form": b}, {"form": bad}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["run_id"])
	assert.Len(t, body["entries"], 2)
	assert.Len(t, body["records"], 2)

	failures := body["failures"].([]any)
	require.Len(t, failures, 1)
	f := failures[0].(map[string]any)
	assert.EqualValues(t, 2, f["index"])
	assert.Equal(t, scoring.FieldPutt, f["field"])
}

func TestFieldEndpointRequiresCompetitors(t *testing.T) {
	s := newTestServer(t, Config{})

	rec, body := post(t, s, "/v1/field", map[string]any{"competitors": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "competitors", body["field"])
}

func TestStakesEndpoint(t *testing.T) {
	s := newTestServer(t, Config{DefaultPolicy: "capped-kelly"})

	rec, body := post(t, s, "/v1/stakes", map[string]any{
		"bankroll": 1000,
		"report":   "X  |  Score:  30.00%  Model:  10.00%  LiveOdds: 5.00  EV: -0.500\nnoise\n",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "capped-kelly", body["policy"])
	assert.Len(t, body["skipped"], 1)

	recs := body["recommendations"].([]any)
	require.Len(t, recs, 1)
	first := recs[0].(map[string]any)
	assert.InDelta(t, 100.0, first["liability"].(float64), 1e-9)
	assert.InDelta(t, 25.0, first["stake"].(float64), 1e-9)
}

func TestStakesEndpointErrors(t *testing.T) {
	s := newTestServer(t, Config{})

	rec, body := post(t, s, "/v1/stakes", map[string]any{"policy": "martingale", "bankroll": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "policy", body["field"])

	rec, body = post(t, s, "/v1/stakes", map[string]any{"policy": "flat", "bankroll": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bankroll", body["field"])
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Config{RateLimit: 0.001, RateBurst: 1})

	rec, _ := post(t, s, "/v1/stakes", map[string]any{"policy": "flat", "bankroll": 100})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := post(t, s, "/v1/stakes", map[string]any{"policy": "flat", "bankroll": 100})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", body["error"])
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, Config{MaxBodyBytes: 16})

	rec, body := post(t, s, "/v1/stakes", map[string]any{"policy": "flat", "bankroll": 100, "report": strings.Repeat("x", 64)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request body too large", body["error"])
}

func TestHealthRoutesMounted(t *testing.T) {
	s := newTestServer(t, Config{Version: "0.1.0"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsRouteToggle(t *testing.T) {
	off := newTestServer(t, Config{})
	rec := httptest.NewRecorder()
	off.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	on := newTestServer(t, Config{MetricsEnabled: true})
	rec = httptest.NewRecorder()
	on.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPMetricsUseFixedRoutes(t *testing.T) {
	s := newTestServer(t, Config{MetricsEnabled: true})
	unmatched := metrics.HTTPRequestsTotal.WithLabelValues(unmatchedRoute, "404")
	before := testutil.CollectAndCount(metrics.HTTPRequestsTotal)
	hitsBefore := testutil.ToFloat64(unmatched)

	for i := 0; i < 200; i++ {
		for _, path := range []string{fmt.Sprintf("/junk-%d", i), fmt.Sprintf("/v1/junk-%d", i)} {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusNotFound, rec.Code)
		}
	}

	assert.Equal(t, before, testutil.CollectAndCount(metrics.HTTPRequestsTotal))
	assert.Equal(t, hitsBefore+400, testutil.ToFloat64(unmatched))

	health := metrics.HTTPRequestsTotal.WithLabelValues("/health", "200")
	healthBefore := testutil.ToFloat64(health)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, healthBefore+1, testutil.ToFloat64(health))
}
