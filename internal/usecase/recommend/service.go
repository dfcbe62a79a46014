package recommend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/product"
	"github.com/kailas-cloud/shoprec/internal/domain/recommendation"
	logpkg "github.com/kailas-cloud/shoprec/internal/logger"
)

// Service computes per-user recommendations with user-based collaborative
// filtering and falls back to the popular list whenever that yields nothing.
type Service struct {
	snapshots SnapshotReader
	products  ProductReader
	popular   *PopularProvider
	breaker   *Breaker
	cfg       domain.RecommendConfig
	logger    *zap.Logger
}

var _ domain.Recommender = (*Service)(nil)

// New creates a recommendation service. Zero config fields take defaults.
func New(snapshots SnapshotReader, products ProductReader, cfg domain.RecommendConfig, logger *zap.Logger) *Service {
	def := domain.DefaultRecommendConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.NeighborhoodSize <= 0 {
		cfg.NeighborhoodSize = def.NeighborhoodSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		snapshots: snapshots,
		products:  products,
		popular:   NewPopularProvider(products),
		cfg:       cfg,
		logger:    logger,
	}
}

// WithBreaker routes snapshot reads through a circuit breaker.
func (s *Service) WithBreaker(b *Breaker) *Service {
	s.breaker = b
	return s
}

// Config returns the effective engine configuration.
func (s *Service) Config() domain.RecommendConfig { return s.cfg }

// Recommend returns up to limit products for userID. Limits above the
// configured maximum are capped; zero yields an empty list. Only a failure of
// the popular fallback itself is returned as an error (domain.ErrDataUnavailable).
func (s *Service) Recommend(ctx context.Context, userID string, limit int) (recommendation.Result, error) {
	if userID == "" || len(userID) > domain.MaxUserIDLength {
		return recommendation.Result{}, domain.ErrInvalidUserID
	}
	if limit < 0 {
		return recommendation.Result{}, fmt.Errorf("%w: %d", domain.ErrInvalidLimit, limit)
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	if limit == 0 {
		return recommendation.NewPopular(nil, recommendation.ReasonZeroLimit), nil
	}

	log := logpkg.FromContextOr(ctx, s.logger)

	pctx, cancel := s.withTimeout(ctx)
	items, reason, err := s.personalize(pctx, userID, limit)
	cancel()
	if err != nil {
		log.Warn("Personalization failed, serving popular products",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	if reason == recommendation.ReasonNone {
		return recommendation.NewPersonalized(items), nil
	}

	log.Debug("Falling back to popular products",
		zap.String("user_id", userID),
		zap.String("reason", string(reason)),
	)

	popular, err := s.popular.Popular(ctx, limit)
	if err != nil {
		return recommendation.Result{}, fmt.Errorf("fallback: %w", err)
	}
	return recommendation.NewPopular(popular, reason), nil
}

// personalize runs the collaborative-filtering path. Any failure is reported
// with ReasonError (or ReasonCircuitOpen) so the caller can fall back.
func (s *Service) personalize(
	ctx context.Context, userID string, limit int,
) (items []product.Product, reason recommendation.Reason, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			items, reason, err = nil, recommendation.ReasonError, fmt.Errorf("personalize panic: %v", rvr)
		}
	}()

	snap, err := s.snapshot(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCircuitOpen) {
			return nil, recommendation.ReasonCircuitOpen, nil
		}
		return nil, recommendation.ReasonError, err
	}

	candidates, reason := rankCandidates(snap, userID, s.cfg.NeighborhoodSize)
	if reason != recommendation.ReasonNone {
		return nil, reason, nil
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ProductID
	}

	found, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, recommendation.ReasonError, fmt.Errorf("get products: %w", err)
	}

	items = orderByIDs(found, ids)
	if len(items) == 0 {
		return nil, recommendation.ReasonNoCandidates, nil
	}
	return items, recommendation.ReasonNone, nil
}

// withTimeout bounds the personalized path when the caller set no deadline.
// The fallback keeps the caller's context.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *Service) snapshot(ctx context.Context) (Snapshot, error) {
	read := func() (Snapshot, error) { return collectSnapshot(ctx, s.snapshots) }
	if s.breaker == nil {
		return read()
	}
	return s.breaker.Execute(read)
}

// orderByIDs returns found products in ids order, skipping ids that are gone.
func orderByIDs(found []product.Product, ids []string) []product.Product {
	byID := make(map[string]product.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
