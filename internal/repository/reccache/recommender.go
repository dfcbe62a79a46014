// Package reccache caches recommendation results in a key-value store.
package reccache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprec/internal/db"
	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/product"
	"github.com/kailas-cloud/shoprec/internal/domain/recommendation"
)

const (
	keySegment = "rec:"
	// entryVersion is bumped whenever the cached layout changes.
	entryVersion = 1
)

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// CachedRecommender serves repeated requests for the same user and limit from
// the cache until the entry expires.
type CachedRecommender struct {
	inner      domain.Recommender
	store      store
	ttl        time.Duration
	prefix     string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var _ domain.Recommender = (*CachedRecommender)(nil)

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(
	inner domain.Recommender,
	s store,
	ttl time.Duration,
	prefix string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedRecommender {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRecommender{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		prefix:     prefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Recommend returns a cached result or calls the inner recommender. Results
// produced by a degraded path (error, open breaker) are not cached.
func (c *CachedRecommender) Recommend(ctx context.Context, userID string, limit int) (recommendation.Result, error) {
	if limit <= 0 || userID == "" {
		return c.inner.Recommend(ctx, userID, limit) //nolint:wrapcheck // validation errors pass through
	}

	key := c.cacheKey(userID, limit)
	if res, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return res, nil
	}
	c.incCache("miss")

	res, err := c.inner.Recommend(ctx, userID, limit)
	if err != nil {
		return recommendation.Result{}, err //nolint:wrapcheck // decorator is transparent
	}

	if cacheable(res) {
		c.putToCache(ctx, key, res)
	}
	return res, nil
}

// Invalidate drops every cached result of one user.
func (c *CachedRecommender) Invalidate(ctx context.Context, userID string) (int, error) {
	return c.deleteMatching(ctx, c.userPrefix(userID)+"*")
}

// Flush drops every cached result.
func (c *CachedRecommender) Flush(ctx context.Context) (int, error) {
	return c.deleteMatching(ctx, c.prefix+keySegment+"*")
}

func (c *CachedRecommender) deleteMatching(ctx context.Context, pattern string) (int, error) {
	keys, err := c.store.Scan(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", pattern, err)
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		return 0, fmt.Errorf("delete cached results: %w", err)
	}
	return len(keys), nil
}

func cacheable(res recommendation.Result) bool {
	switch res.Reason {
	case recommendation.ReasonError, recommendation.ReasonCircuitOpen:
		return false
	default:
		return true
	}
}

func (c *CachedRecommender) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedRecommender) userPrefix(userID string) string {
	h := sha256.Sum256([]byte(userID))
	return c.prefix + keySegment + hex.EncodeToString(h[:16]) + ":"
}

func (c *CachedRecommender) cacheKey(userID string, limit int) string {
	return c.userPrefix(userID) + strconv.Itoa(limit)
}

func (c *CachedRecommender) getFromCache(ctx context.Context, key string) (recommendation.Result, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.incCache("error")
			c.logger.Warn("Failed to get cached recommendation", zap.String("key", key), zap.Error(err))
		}
		return recommendation.Result{}, false
	}
	if len(data) == 0 {
		return recommendation.Result{}, false
	}

	res, err := decodeEntry(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached recommendation", zap.String("key", key), zap.Error(err))
		return recommendation.Result{}, false
	}
	return res, true
}

func (c *CachedRecommender) putToCache(ctx context.Context, key string, res recommendation.Result) {
	data, err := encodeEntry(res)
	if err != nil {
		c.logger.Warn("Failed to encode recommendation", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.incCache("error")
		c.logger.Warn("Failed to cache recommendation", zap.String("key", key), zap.Error(err))
	}
}

// entry is the cached JSON layout.
type entry struct {
	Version int            `json:"v"`
	Source  string         `json:"source"`
	Reason  string         `json:"reason,omitempty"`
	Items   []productEntry `json:"items"`
}

type productEntry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

func encodeEntry(res recommendation.Result) ([]byte, error) {
	e := entry{
		Version: entryVersion,
		Source:  string(res.Source),
		Reason:  string(res.Reason),
		Items:   make([]productEntry, len(res.Items)),
	}
	for i, p := range res.Items {
		e.Items[i] = productEntry{
			ID:         p.ID,
			Name:       p.Name,
			Category:   p.Category,
			ImageURL:   p.ImageURL,
			PriceCents: p.PriceCents,
			CreatedAt:  p.CreatedAt,
		}
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return data, nil
}

func decodeEntry(data []byte) (recommendation.Result, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return recommendation.Result{}, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	if e.Version != entryVersion {
		return recommendation.Result{}, fmt.Errorf("cache entry version %d, want %d", e.Version, entryVersion)
	}

	items := make([]product.Product, len(e.Items))
	for i, p := range e.Items {
		items[i] = product.Product{
			ID:         p.ID,
			Name:       p.Name,
			Category:   p.Category,
			ImageURL:   p.ImageURL,
			PriceCents: p.PriceCents,
			CreatedAt:  p.CreatedAt,
		}
	}

	switch recommendation.Source(e.Source) {
	case recommendation.Personalized:
		return recommendation.NewPersonalized(items), nil
	case recommendation.Popular:
		return recommendation.NewPopular(items, recommendation.Reason(e.Reason)), nil
	default:
		return recommendation.Result{}, fmt.Errorf("unknown cached source %q", e.Source)
	}
}
