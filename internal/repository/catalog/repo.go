// Package catalog reads the storefront tables the recommendation engine needs.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/shoprec/internal/db"
	"github.com/kailas-cloud/shoprec/internal/db/sqlstore"
	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/interaction"
	"github.com/kailas-cloud/shoprec/internal/domain/product"
)

const (
	queryProductIDs = `SELECT id FROM products ORDER BY id`

	// cancelled orders never reached the customer and carry no signal
	queryInteractions = `
SELECT o.user_id, oi.product_id, 'order' AS kind
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.status <> 'cancelled'
UNION ALL
SELECT user_id, product_id, 'wishlist' AS kind FROM wishlist_items
UNION ALL
SELECT user_id, product_id, 'view' AS kind FROM product_views`

	productColumns = `id, name, category, image_url, price_cents, created_at`

	queryPopular = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id ASC LIMIT ?`

	queryByIDs = `SELECT ` + productColumns + ` FROM products WHERE id IN (%s)`
)

// store is the consumer interface for the SQL store (ISP).
type store interface {
	DB() *sql.DB
	Rebind(query string) string
}

// Repo implements usecase/recommend.SnapshotReader and ProductReader.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// ListProductIDs returns every product id, ascending.
func (r *Repo) ListProductIDs(ctx context.Context) ([]string, error) {
	rows, err := r.store.DB().QueryContext(ctx, queryProductIDs)
	if err != nil {
		return nil, domain.Unavailable("list product ids", &db.Error{Op: db.OpQuery, Err: err})
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", domain.NewMalformedRecord("id", err.Error()))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("list product ids", &db.Error{Op: db.OpQuery, Err: err})
	}
	return ids, nil
}

// ListInteractions returns one profile per user with at least one order line,
// wishlist entry or product view. A row that fails validation aborts the read.
func (r *Repo) ListInteractions(ctx context.Context) ([]interaction.Profile, error) {
	rows, err := r.store.DB().QueryContext(ctx, queryInteractions)
	if err != nil {
		return nil, domain.Unavailable("list interactions", &db.Error{Op: db.OpQuery, Err: err})
	}
	defer func() { _ = rows.Close() }()

	var records []interaction.Record
	for rows.Next() {
		var row interactionRow
		if err := rows.Scan(&row.UserID, &row.ProductID, &row.Kind); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", domain.NewMalformedRecord("row", err.Error()))
		}
		rec, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("interaction of user %q: %w", row.UserID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("list interactions", &db.Error{Op: db.OpQuery, Err: err})
	}
	return interaction.Group(records), nil
}

// PopularProducts returns up to limit products, newest first.
func (r *Repo) PopularProducts(ctx context.Context, limit int) ([]product.Product, error) {
	if limit <= 0 {
		return []product.Product{}, nil
	}
	return r.queryProducts(ctx, "popular products", r.store.Rebind(queryPopular), limit)
}

// GetProductsByIDs returns the products that exist among ids, in no particular order.
func (r *Repo) GetProductsByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	if len(ids) == 0 {
		return []product.Product{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := r.store.Rebind(fmt.Sprintf(queryByIDs, sqlstore.Placeholders(len(ids))))
	return r.queryProducts(ctx, "get products", query, args...)
}

func (r *Repo) queryProducts(ctx context.Context, op, query string, args ...any) ([]product.Product, error) {
	rows, err := r.store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Unavailable(op, &db.Error{Op: db.OpQuery, Err: err})
	}
	defer func() { _ = rows.Close() }()

	out := []product.Product{}
	for rows.Next() {
		var row productRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, domain.NewMalformedRecord("row", err.Error()))
		}
		p, err := row.toProduct()
		if err != nil {
			return nil, fmt.Errorf("%s: product %q: %w", op, row.ID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable(op, &db.Error{Op: db.OpQuery, Err: err})
	}
	return out, nil
}
