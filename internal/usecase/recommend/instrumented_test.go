package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/product"
	"github.com/kailas-cloud/shoprec/internal/domain/recommendation"
	"github.com/kailas-cloud/shoprec/internal/metrics"
)

type stubRecommender struct {
	res recommendation.Result
	err error
}

func (s *stubRecommender) Recommend(_ context.Context, _ string, _ int) (recommendation.Result, error) {
	return s.res, s.err
}

func TestInstrumented_Success(t *testing.T) {
	inner := &stubRecommender{res: recommendation.NewPopular(
		[]product.Product{{ID: "P1"}}, recommendation.ReasonNoSimilarUsers,
	)}
	r := NewInstrumentedRecommender(inner, nil)

	counter := metrics.RecommendationsTotal.WithLabelValues("popular", "no_similar_users")
	before := testutil.ToFloat64(counter)

	res, err := r.Recommend(context.Background(), "A", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 {
		t.Errorf("expected result to pass through, got %+v", res)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected counter +1, got %v", got)
	}
}

func TestInstrumented_Error(t *testing.T) {
	inner := &stubRecommender{err: fmt.Errorf("fallback: %w", domain.Unavailable("popular", errors.New("down")))}
	r := NewInstrumentedRecommender(inner, nil)

	counter := metrics.RecommendationErrorsTotal.WithLabelValues("data_unavailable")
	before := testutil.ToFloat64(counter)

	_, err := r.Recommend(context.Background(), "A", 5)
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected error counter +1, got %v", got)
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrInvalidUserID, "invalid_request"},
		{fmt.Errorf("%w: -1", domain.ErrInvalidLimit), "invalid_request"},
		{context.DeadlineExceeded, "timeout"},
		{domain.Unavailable("op", errors.New("x")), "data_unavailable"},
		{errors.New("boom"), "internal"},
	}
	for _, tc := range tests {
		if got := errorType(tc.err); got != tc.want {
			t.Errorf("errorType(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
