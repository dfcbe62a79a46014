package domain

import (
	"context"

	"github.com/kailas-cloud/shoprec/internal/domain/recommendation"
)

// Recommender is the shared recommendation contract between layers.
// Decorators (cache, metrics) wrap the core service behind it.
type Recommender interface {
	Recommend(ctx context.Context, userID string, limit int) (recommendation.Result, error)
}

// MaxUserIDLength bounds user identifiers accepted from callers.
const MaxUserIDLength = 128
