package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation Prometheus metrics.
var (
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shoprec",
			Name:      "recommendations_total",
			Help:      "Recommendations served by source and fallback reason",
		},
		[]string{"source", "reason"},
	)

	RecommendationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shoprec",
			Name:      "recommendation_duration_seconds",
			Help:      "Recommendation computation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"source"},
	)

	RecommendationItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "shoprec",
			Name:      "recommendation_items",
			Help:      "Number of products returned per recommendation",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	RecommendationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shoprec",
			Name:      "recommendation_errors_total",
			Help:      "Recommendation requests that returned an error",
		},
		[]string{"error_type"},
	)

	RecommendationCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shoprec",
			Name:      "recommendation_cache_total",
			Help:      "Recommendation cache hits, misses and errors",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "shoprec",
			Name:      "snapshot_breaker_state",
			Help:      "Snapshot circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

var recMetricsRegistered bool

// RegisterRecommendMetrics registers recommendation metrics. Must be called once from main.
func RegisterRecommendMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecommendationsTotal)
	prometheus.MustRegister(RecommendationDuration)
	prometheus.MustRegister(RecommendationItems)
	prometheus.MustRegister(RecommendationErrorsTotal)
	prometheus.MustRegister(RecommendationCacheTotal)
	prometheus.MustRegister(BreakerState)
	recMetricsRegistered = true
}
