package shoprec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/shoprec/internal/db/redis"
	"github.com/kailas-cloud/shoprec/internal/db/sqlstore"
	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/recommendation"
	"github.com/kailas-cloud/shoprec/internal/repository/catalog"
	"github.com/kailas-cloud/shoprec/internal/repository/reccache"
	healthuc "github.com/kailas-cloud/shoprec/internal/usecase/health"
	"github.com/kailas-cloud/shoprec/internal/usecase/recommend"
)

const defaultReadinessTimeout = 10 * time.Second

var errCacheDisabled = errors.New("shoprec: result cache not configured (use WithCache)")

// cacheInvalidator drops cached results.
type cacheInvalidator interface {
	Invalidate(ctx context.Context, userID string) (int, error)
	Flush(ctx context.Context) (int, error)
}

// Client is the shoprec SDK entry point.
type Client struct {
	store     *sqlstore.Store
	cache     *redis.Store
	rec       domain.Recommender
	inval     cacheInvalidator
	healthSvc healthUseCase
	obs       *observer
}

// New creates a shoprec Client and connects to the catalog database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn == "" {
		return nil, errors.New("shoprec: database dsn required (use WithPostgres or WithSQLite)")
	}

	store, err := sqlstore.Open(sqlstore.Config{Driver: cfg.driver, DSN: cfg.dsn})
	if err != nil {
		return nil, fmt.Errorf("shoprec: open database: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("shoprec: database not ready: %w", err)
	}

	if cfg.migrate {
		if _, err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("shoprec: migrate: %w", err)
		}
	}

	var cache *redis.Store
	if len(cfg.cacheAddrs) > 0 {
		cache, err = redis.NewStore(redis.Config{Addrs: cfg.cacheAddrs, Password: cfg.cachePassword})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("shoprec: create cache: %w", err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		closeAll(store, cache)
		return nil, err
	}

	return wireClient(store, cache, cfg, obs), nil
}

func wireClient(store *sqlstore.Store, cache *redis.Store, cfg *clientConfig, obs *observer) *Client {
	repo := catalog.New(store)
	svc := recommend.New(repo, repo, domain.RecommendConfig{
		MaxLimit:         cfg.maxLimit,
		NeighborhoodSize: cfg.neighborhoodSize,
		Timeout:          cfg.timeout,
	}, nil)

	var breaker healthuc.BreakerStater
	if cfg.breakerThreshold > 0 {
		b := recommend.NewBreaker(recommend.BreakerConfig{
			Name:             "sdk",
			FailureThreshold: cfg.breakerThreshold,
			OpenTimeout:      cfg.breakerOpenTimeout,
		}, nil)
		svc = svc.WithBreaker(b)
		breaker = b
	}

	c := &Client{store: store, rec: svc, obs: obs}

	// Pass nil interface (not typed nil pointer) when the cache is off.
	var cachePinger healthuc.Pinger
	if cache != nil {
		cached := reccache.New(svc, cache, cfg.cacheTTL, cfg.cachePrefix, nil, nil)
		c.cache = cache
		c.rec = cached
		c.inval = cached
		cachePinger = cache
	}

	c.healthSvc = healthuc.New(store, cachePinger, breaker)
	return c
}

// Close releases all resources.
func (c *Client) Close() {
	closeAll(c.store, c.cache)
}

func closeAll(store *sqlstore.Store, cache *redis.Store) {
	if cache != nil {
		cache.Close()
	}
	if store != nil {
		_ = store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Recommend returns up to limit products for userID that the user has not
// ordered, wishlisted or viewed. limit 0 returns an empty list. An error is
// returned only when even the popular fallback cannot be read.
func (c *Client) Recommend(ctx context.Context, userID string, limit int) (recs Recommendations, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, err) }()

	res, err := c.rec.Recommend(ctx, userID, limit)
	if err != nil {
		return Recommendations{}, fmt.Errorf("recommend %s: %w", userID, err)
	}
	recs = fromResult(&res)
	c.obs.observeRecommendation(userID, &recs)
	return recs, nil
}

// Invalidate drops cached lists of one user. Returns the number of entries removed.
func (c *Client) Invalidate(ctx context.Context, userID string) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("cache.invalidate", start, err) }()

	if c.inval == nil {
		return 0, errCacheDisabled
	}
	n, err = c.inval.Invalidate(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("invalidate %s: %w", userID, err)
	}
	return n, nil
}

// FlushCache drops every cached list.
func (c *Client) FlushCache(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("cache.flush", start, err) }()

	if c.inval == nil {
		return 0, errCacheDisabled
	}
	n, err = c.inval.Flush(ctx)
	if err != nil {
		return 0, fmt.Errorf("flush cache: %w", err)
	}
	return n, nil
}

func fromResult(res *recommendation.Result) Recommendations {
	items := make([]Product, len(res.Items))
	for i, p := range res.Items {
		items[i] = Product{
			ID:         p.ID,
			Name:       p.Name,
			Category:   p.Category,
			ImageURL:   p.ImageURL,
			PriceCents: p.PriceCents,
			CreatedAt:  p.CreatedAt,
		}
	}
	return Recommendations{
		Items:  items,
		Source: Source(res.Source),
		Reason: string(res.Reason),
	}
}
