package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for staking decisions.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogStake logs one lay recommendation.
func (al *AuditLogger) LogStake(runID, policy, name, tier string, odds, evLay, stake, liability float64) {
	al.WithFields(logrus.Fields{
		"run_id":    runID,
		"policy":    policy,
		"name":      name,
		"tier":      tier,
		"odds":      odds,
		"ev_lay":    evLay,
		"stake":     stake,
		"liability": liability,
	}).Info("Lay recommended")
}

// LogStakingPass logs a completed staking pass.
func (al *AuditLogger) LogStakingPass(runID, policy string, bankroll float64, candidates, recommendations int, totalLiability float64) {
	al.WithFields(logrus.Fields{
		"run_id":          runID,
		"policy":          policy,
		"bankroll":        bankroll,
		"candidates":      candidates,
		"recommendations": recommendations,
		"total_liability": totalLiability,
	}).Info("Staking pass completed")
}

// LogStakingRejected logs a staking pass that could not run.
func (al *AuditLogger) LogStakingRejected(runID, policy string, bankroll float64, reason string) {
	al.WithFields(logrus.Fields{
		"run_id":   runID,
		"policy":   policy,
		"bankroll": bankroll,
		"reason":   reason,
	}).Warn("Staking pass rejected")
}

// LogParameterChange logs a model or staking parameter that differs from its default.
func (al *AuditLogger) LogParameterChange(runID, parameterName string, defaultValue, newValue interface{}, source string) {
	al.WithFields(logrus.Fields{
		"run_id":         runID,
		"parameter_name": parameterName,
		"default_value":  defaultValue,
		"new_value":      newValue,
		"source":         source,
	}).Info("Parameter overridden")
}
