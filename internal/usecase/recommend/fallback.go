package recommend

import (
	"context"

	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/product"
)

// PopularProvider serves the non-personalized list, newest first. No sales or
// view counts are consulted.
type PopularProvider struct {
	products ProductReader
}

// NewPopularProvider creates a fallback provider.
func NewPopularProvider(products ProductReader) *PopularProvider {
	return &PopularProvider{products: products}
}

// Popular returns up to limit products, newest first.
func (p *PopularProvider) Popular(ctx context.Context, limit int) ([]product.Product, error) {
	if limit <= 0 {
		return []product.Product{}, nil
	}
	items, err := p.products.PopularProducts(ctx, limit)
	if err != nil {
		return nil, domain.Unavailable("popular products", err)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []product.Product{}
	}
	return items, nil
}
