// Package metrics provides the centralized Prometheus metrics registry for the engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "odds_apex"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EstimatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimates_total",
		Help:      "Total number of win probability estimates by outcome",
	}, []string{"outcome"})
	ValuationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "valuations_total",
		Help:      "Total number of market valuations by outcome",
	}, []string{"outcome"})
	ReportLinesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_lines_skipped_total",
		Help:      "Total number of report lines dropped while parsing",
	}, []string{"reason"})
)

// Gauge metrics
var (
	EstimateCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "estimate_cache_hit_ratio",
		Help:      "Hit ratio of the seeded estimate cache",
	})
	EstimateCacheItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "estimate_cache_items",
		Help:      "Number of estimates held in the cache",
	})
)

// HTTP metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of API requests by route and status code",
	}, []string{"route", "code"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	HTTPRateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rate_limited_total",
		Help:      "Total number of API requests rejected by the rate limiter",
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(EstimatesTotal)
		registry.MustRegister(ValuationsTotal)
		registry.MustRegister(ReportLinesSkippedTotal)

		registry.MustRegister(EstimateCacheHitRatio)
		registry.MustRegister(EstimateCacheItems)

		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(HTTPRequestDuration)
		registry.MustRegister(HTTPRateLimitedTotal)

		// Register simulation metrics
		registry.MustRegister(SimulationDuration)
		registry.MustRegister(SimulationTrialsTotal)
		registry.MustRegister(SimulationsTruncatedTotal)

		// Register signal and staking metrics
		registry.MustRegister(SignalsTotal)
		registry.MustRegister(StakesTotal)
		registry.MustRegister(StakedLiability)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEstimate records an estimate outcome: ok, cached or error.
func RecordEstimate(outcome string) {
	EstimatesTotal.WithLabelValues(outcome).Inc()
}

// RecordValuation records a valuation outcome: ok or invalid_odds.
func RecordValuation(outcome string) {
	ValuationsTotal.WithLabelValues(outcome).Inc()
}

// RecordReportLineSkipped records a dropped report line.
func RecordReportLineSkipped(reason string) {
	ReportLinesSkippedTotal.WithLabelValues(reason).Inc()
}

// UpdateEstimateCache updates the cache gauges.
func UpdateEstimateCache(hitRatio float64, items int) {
	EstimateCacheHitRatio.Set(hitRatio)
	EstimateCacheItems.Set(float64(items))
}

// RecordHTTPRequest records a served API request.
func RecordHTTPRequest(route, code string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(route, code).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}

// RecordRateLimited records a request rejected by the rate limiter.
func RecordRateLimited() {
	HTTPRateLimitedTotal.Inc()
}
