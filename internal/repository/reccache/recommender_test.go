package reccache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/product"
	"github.com/kailas-cloud/shoprec/internal/domain/recommendation"
)

var created = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func personalized() recommendation.Result {
	return recommendation.NewPersonalized([]product.Product{
		{ID: "P2", Name: "Mug", Category: "kitchen", ImageURL: "https://img/p2.png", PriceCents: 1299, CreatedAt: created},
	})
}

func TestRecommend_MissThenHit(t *testing.T) {
	inner := &mockRecommender{res: personalized()}
	c, ms, counter := newTestCache(t, inner)
	ctx := context.Background()

	first, err := c.Recommend(ctx, "A", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Recommend(ctx, "A", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
	if testutil.ToFloat64(counter.WithLabelValues("miss")) != 1 || testutil.ToFloat64(counter.WithLabelValues("hit")) != 1 {
		t.Error("expected one miss and one hit")
	}
	if !second.IsPersonalized() || len(second.Items) != 1 {
		t.Fatalf("unexpected cached result: %+v", second)
	}
	got, want := second.Items[0], first.Items[0]
	if got.ID != want.ID || got.Name != want.Name || got.PriceCents != want.PriceCents ||
		got.ImageURL != want.ImageURL || got.Category != want.Category || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("cached product differs: %+v vs %+v", got, want)
	}
	for key, ttl := range ms.ttls {
		if ttl != time.Minute {
			t.Errorf("key %s stored with ttl %s", key, ttl)
		}
	}
}

func TestRecommend_KeyIncludesLimit(t *testing.T) {
	inner := &mockRecommender{res: personalized()}
	c, _, _ := newTestCache(t, inner)
	ctx := context.Background()

	_, _ = c.Recommend(ctx, "A", 5)
	_, _ = c.Recommend(ctx, "A", 3)
	_, _ = c.Recommend(ctx, "B", 5)

	if inner.calls != 3 {
		t.Errorf("expected 3 inner calls, got %d", inner.calls)
	}
}

func TestRecommend_DegradedResultsNotCached(t *testing.T) {
	for _, reason := range []recommendation.Reason{recommendation.ReasonError, recommendation.ReasonCircuitOpen} {
		inner := &mockRecommender{res: recommendation.NewPopular(nil, reason)}
		c, ms, _ := newTestCache(t, inner)

		_, _ = c.Recommend(context.Background(), "A", 5)
		if len(ms.data) != 0 {
			t.Errorf("reason %q: expected nothing cached, got %d keys", reason, len(ms.data))
		}
	}
}

func TestRecommend_PopularCached(t *testing.T) {
	inner := &mockRecommender{res: recommendation.NewPopular(
		[]product.Product{{ID: "P9"}}, recommendation.ReasonUnknownUser,
	)}
	c, _, _ := newTestCache(t, inner)

	_, _ = c.Recommend(context.Background(), "Z", 5)
	res, err := c.Recommend(context.Background(), "Z", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if res.Source != recommendation.Popular || res.Reason != recommendation.ReasonUnknownUser {
		t.Errorf("unexpected cached provenance: %s/%s", res.Source, res.Reason)
	}
}

func TestRecommend_InnerError(t *testing.T) {
	inner := &mockRecommender{err: domain.Unavailable("popular", errors.New("down"))}
	c, ms, _ := newTestCache(t, inner)

	_, err := c.Recommend(context.Background(), "A", 5)
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Error("errors must not be cached")
	}
}

func TestRecommend_StoreErrorsDegradeToInner(t *testing.T) {
	inner := &mockRecommender{res: personalized()}
	c, ms, counter := newTestCache(t, inner)
	ms.getErr = errors.New("connection refused")
	ms.setErr = errors.New("connection refused")

	res, err := c.Recommend(context.Background(), "A", 5)
	if err != nil {
		t.Fatalf("cache failure must not surface: %v", err)
	}
	if !res.IsPersonalized() {
		t.Errorf("expected inner result, got %+v", res)
	}
	if testutil.ToFloat64(counter.WithLabelValues("error")) != 2 {
		t.Errorf("expected 2 cache errors, got %v", testutil.ToFloat64(counter.WithLabelValues("error")))
	}
}

func TestRecommend_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockRecommender{res: personalized()}
	c, ms, _ := newTestCache(t, inner)
	ms.data[c.cacheKey("A", 5)] = []byte("{not json")

	res, err := c.Recommend(context.Background(), "A", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || !res.IsPersonalized() {
		t.Errorf("expected fallthrough to inner, calls=%d", inner.calls)
	}
}

func TestRecommend_BypassesInvalidRequests(t *testing.T) {
	inner := &mockRecommender{err: domain.ErrInvalidLimit}
	c, ms, _ := newTestCache(t, inner)

	if _, err := c.Recommend(context.Background(), "A", -1); !errors.Is(err, domain.ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Error("nothing should be cached")
	}
}

func TestInvalidateAndFlush(t *testing.T) {
	inner := &mockRecommender{res: personalized()}
	c, ms, _ := newTestCache(t, inner)
	ctx := context.Background()

	_, _ = c.Recommend(ctx, "A", 5)
	_, _ = c.Recommend(ctx, "A", 3)
	_, _ = c.Recommend(ctx, "B", 5)

	n, err := c.Invalidate(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || len(ms.data) != 1 {
		t.Fatalf("expected 2 keys removed and 1 left, got %d removed, %d left", n, len(ms.data))
	}

	n, err = c.Flush(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || len(ms.data) != 0 {
		t.Fatalf("expected flush to clear the cache, removed %d, left %d", n, len(ms.data))
	}
}

func TestFlush_ScanError(t *testing.T) {
	c, ms, _ := newTestCache(t, &mockRecommender{})
	ms.scanErr = errors.New("down")

	if _, err := c.Flush(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodeEntry_Rejects(t *testing.T) {
	tests := map[string]string{
		"old version":    `{"v":0,"source":"personalized","items":[]}`,
		"unknown source": `{"v":1,"source":"magic","items":[]}`,
	}
	for name, raw := range tests {
		if _, err := decodeEntry([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
