package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/shoprec/internal/domain"
)

func TestPopular(t *testing.T) {
	p := NewPopularProvider(&mockProducts{newest: catalog("P1", "P2", "P3")})

	got, err := p.Popular(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertStrings(t, idsOf(got), []string{"P3", "P2"})

	none, err := p.Popular(context.Background(), 0)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v, %v", none, err)
	}
}

func TestPopular_EmptyCatalog(t *testing.T) {
	p := NewPopularProvider(&mockProducts{})

	got, err := p.Popular(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestPopular_StoreError(t *testing.T) {
	p := NewPopularProvider(&mockProducts{popularErr: errors.New("connection refused")})

	_, err := p.Popular(context.Background(), 5)
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}
