package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/recommendation"
	logpkg "github.com/kailas-cloud/shoprec/internal/logger"
	"github.com/kailas-cloud/shoprec/internal/metrics"
)

// InstrumentedRecommender records outcome metrics and a debug line per call.
// It is the outermost decorator so cached results are counted too.
type InstrumentedRecommender struct {
	inner  domain.Recommender
	logger *zap.Logger
}

// NewInstrumentedRecommender wraps a recommender with observability.
func NewInstrumentedRecommender(inner domain.Recommender, logger *zap.Logger) *InstrumentedRecommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedRecommender{inner: inner, logger: logger}
}

// Recommend delegates to the inner recommender and records the outcome.
func (r *InstrumentedRecommender) Recommend(
	ctx context.Context, userID string, limit int,
) (recommendation.Result, error) {
	start := time.Now()
	res, err := r.inner.Recommend(ctx, userID, limit)
	duration := time.Since(start)

	log := logpkg.FromContextOr(ctx, r.logger)
	if err != nil {
		metrics.RecommendationErrorsTotal.WithLabelValues(errorType(err)).Inc()
		log.Error("Recommendation failed",
			zap.String("user_id", userID),
			zap.Int("limit", limit),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return recommendation.Result{}, fmt.Errorf("recommend: %w", err)
	}

	metrics.RecommendationsTotal.WithLabelValues(string(res.Source), string(res.Reason)).Inc()
	metrics.RecommendationDuration.WithLabelValues(string(res.Source)).Observe(duration.Seconds())
	metrics.RecommendationItems.Observe(float64(len(res.Items)))

	log.Debug("Recommendation served",
		zap.String("user_id", userID),
		zap.Int("limit", limit),
		zap.String("source", string(res.Source)),
		zap.String("reason", string(res.Reason)),
		zap.Int("items", len(res.Items)),
		zap.Duration("duration", duration),
	)
	return res, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidUserID), errors.Is(err, domain.ErrInvalidLimit):
		return "invalid_request"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrDataUnavailable):
		return "data_unavailable"
	default:
		return "internal"
	}
}
