package metrics

import "github.com/prometheus/client_golang/prometheus"

// Simulation metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_duration_seconds",
		Help:      "Duration of Monte Carlo runs in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
	SimulationTrialsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_trials_total",
		Help:      "Total number of completed Monte Carlo trials",
	})
	SimulationsTruncatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulations_truncated_total",
		Help:      "Total number of Monte Carlo runs stopped before all trials completed",
	})
)

// Signal and staking metrics
var (
	SignalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signals_total",
		Help:      "Total number of classified competitors by signal tier",
	}, []string{"tier"})
	StakesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stakes_total",
		Help:      "Total number of lay recommendations by policy",
	}, []string{"policy"})
	StakedLiability = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "staked_liability",
		Help:      "Total liability of the latest staking pass by policy",
	}, []string{"policy"})
)

// RecordSimulation records a finished Monte Carlo run.
func RecordSimulation(durationSeconds float64, trials int64, truncated bool) {
	SimulationDuration.Observe(durationSeconds)
	SimulationTrialsTotal.Add(float64(trials))
	if truncated {
		SimulationsTruncatedTotal.Inc()
	}
}

// RecordSignal records one classified competitor.
func RecordSignal(tier string) {
	SignalsTotal.WithLabelValues(tier).Inc()
}

// RecordStakes records a staking pass.
func RecordStakes(policy string, count int, liability float64) {
	StakesTotal.WithLabelValues(policy).Add(float64(count))
	StakedLiability.WithLabelValues(policy).Set(liability)
}
