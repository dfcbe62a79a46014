package recommend

import (
	"context"

	"github.com/kailas-cloud/shoprec/internal/domain/interaction"
	"github.com/kailas-cloud/shoprec/internal/domain/product"
)

// SnapshotReader reads the inputs of one collaborative-filtering pass.
type SnapshotReader interface {
	// ListProductIDs returns every product eligible for recommendation, ordered by id.
	ListProductIDs(ctx context.Context) ([]string, error)
	// ListInteractions returns one profile per user with at least one interaction.
	ListInteractions(ctx context.Context) ([]interaction.Profile, error)
}

// ProductReader reads full product records for rendering.
type ProductReader interface {
	// PopularProducts returns up to limit products, newest first.
	PopularProducts(ctx context.Context, limit int) ([]product.Product, error)
	// GetProductsByIDs returns the products that still exist, in any order.
	GetProductsByIDs(ctx context.Context, ids []string) ([]product.Product, error)
}
