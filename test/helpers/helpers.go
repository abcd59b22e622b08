// Package helpers holds shared fixtures and servers for the end-to-end tests.
package helpers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/odds-apex/internal/engine"
	"github.com/yourusername/odds-apex/internal/scoring"
	"github.com/yourusername/odds-apex/internal/server"
)

// FixtureDir is resolved relative to the test package directory.
var FixtureDir = filepath.Join("..", "fixtures")

// LoadFixture loads test data from a JSON fixture file.
func LoadFixture(t *testing.T, filename string, target any) {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(FixtureDir, filename))
	require.NoError(t, err, "failed to read fixture file: %s", filename)

	err = json.Unmarshal(data, target)
	require.NoError(t, err, "failed to unmarshal fixture: %s", filename)
}

// LoadFieldFixture loads the sample field of competitor forms.
func LoadFieldFixture(t *testing.T) []scoring.Form {
	t.Helper()

	var forms []scoring.Form
	LoadFixture(t, "field.json", &forms)
	require.NotEmpty(t, forms, "field fixture is empty")
	return forms
}

// QuietLogger discards all output.
func QuietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// NewEngine builds an engine with a small, deterministic simulation budget.
func NewEngine(t *testing.T, trials int) *engine.Engine {
	t.Helper()

	opts := engine.DefaultOptions()
	opts.Simulation.Trials = trials
	opts.Simulation.Workers = 2
	opts.Logger = QuietLogger()
	eng, err := engine.New(opts)
	require.NoError(t, err, "failed to build engine")
	return eng
}

// NewAPIServer starts the HTTP API on a loopback listener.
func NewAPIServer(t *testing.T, eng *engine.Engine, cfg server.Config) *httptest.Server {
	t.Helper()

	srv := server.New(cfg, eng, QuietLogger())
	srv.SetReady(true)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}
