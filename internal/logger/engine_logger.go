package logger

import (
	"github.com/sirupsen/logrus"
)

// EngineLogger provides dedicated logging for probability and valuation work.
type EngineLogger struct {
	*logrus.Entry
}

// NewEngineLogger creates a new engine logger.
func NewEngineLogger(baseLogger *logrus.Logger) *EngineLogger {
	return &EngineLogger{
		Entry: baseLogger.WithField("component", "engine"),
	}
}

// WithRun returns a copy of the logger tagged with a run ID.
func (el *EngineLogger) WithRun(runID string) *EngineLogger {
	return &EngineLogger{Entry: el.WithField("run_id", runID)}
}

// LogEstimate logs a completed win probability estimate.
func (el *EngineLogger) LogEstimate(name string, score, calibrated, simulated, final float64, trials int, cached bool, durationMs float64) {
	el.WithFields(logrus.Fields{
		"name":        name,
		"score":       score,
		"calibrated":  calibrated,
		"simulated":   simulated,
		"final":       final,
		"trials":      trials,
		"cached":      cached,
		"duration_ms": durationMs,
	}).Info("Win probability estimated")
}

// LogValuation logs a market valuation.
func (el *EngineLogger) LogValuation(name string, final, implied, edge, fairOdds, liveOdds, evBack float64) {
	el.WithFields(logrus.Fields{
		"name":      name,
		"model":     final,
		"market":    implied,
		"edge":      edge,
		"fair_odds": fairOdds,
		"live_odds": liveOdds,
		"ev_back":   evBack,
	}).Debug("Valuation calculated")
}

// LogSignal logs a classified competitor with a non-empty tier.
func (el *EngineLogger) LogSignal(name, tier string, modelRank, marketRank int, edgePct float64) {
	el.WithFields(logrus.Fields{
		"name":        name,
		"tier":        tier,
		"model_rank":  modelRank,
		"market_rank": marketRank,
		"edge_pct":    edgePct,
	}).Info("Mispricing signal detected")
}

// LogParseSkip logs a dropped report line.
func (el *EngineLogger) LogParseSkip(line int, reason string) {
	el.WithFields(logrus.Fields{
		"line":   line,
		"reason": reason,
	}).Debug("Report line skipped")
}

// LogSimulationTruncated logs a Monte Carlo run stopped before all trials completed.
func (el *EngineLogger) LogSimulationTruncated(name string, completed int64, requested int, reason string) {
	el.WithFields(logrus.Fields{
		"name":      name,
		"completed": completed,
		"requested": requested,
		"reason":    reason,
	}).Warn("Simulation truncated, using partial result")
}

// LogRejected logs a competitor dropped from a batch.
func (el *EngineLogger) LogRejected(name string, err error) {
	el.WithFields(logrus.Fields{
		"name": name,
	}).WithError(err).Warn("Competitor rejected")
}
