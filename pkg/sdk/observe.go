package shoprec

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	served     *prometheus.CounterVec
	listSize   *prometheus.HistogramVec
}

// reasonNone labels personalized lists, which carry no fallback reason.
const reasonNone = "none"

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shoprec",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shoprec",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		served: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shoprec",
			Subsystem: "sdk",
			Name:      "recommendations_total",
			Help:      "Recommendation lists returned, by source and fallback reason.",
		}, []string{"source", "reason"}),
		listSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shoprec",
			Subsystem: "sdk",
			Name:      "recommendation_items",
			Help:      "Number of products in a returned recommendation list.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}, []string{"source"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.served); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.listSize); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("shoprec: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("shoprec: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(
	op string, start time.Time, err error,
) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(
			dur.Seconds(),
		)
	}

	if o.logger != nil {
		if err != nil {
			o.logger.Warn("operation failed",
				"op", op,
				"duration", dur,
				"error", err,
			)
		} else {
			o.logger.Debug("operation completed",
				"op", op,
				"duration", dur,
			)
		}
	}
}

// observeRecommendation records which strategy produced a list. A popular
// list is logged with its fallback reason so that a personalization outage
// shows up next to the request.
func (o *observer) observeRecommendation(userID string, recs *Recommendations) {
	if o == nil {
		return
	}
	reason := recs.Reason
	if reason == "" {
		reason = reasonNone
	}

	if o.metrics != nil {
		o.metrics.served.WithLabelValues(string(recs.Source), reason).Inc()
		o.metrics.listSize.WithLabelValues(string(recs.Source)).Observe(float64(len(recs.Items)))
	}

	if o.logger != nil && recs.Source == SourcePopular {
		o.logger.Debug("served popular fallback",
			"user_id", userID,
			"reason", reason,
			"items", len(recs.Items),
		)
	}
}
