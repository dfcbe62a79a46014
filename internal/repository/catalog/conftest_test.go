package catalog

import (
	"testing"

	"github.com/kailas-cloud/shoprec/internal/db/sqlstore"
)

// newTestStore opens a migrated in-memory sqlite store.
func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open(sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if _, err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func newTestRepo(t *testing.T) (*Repo, *sqlstore.Store) {
	t.Helper()
	s := newTestStore(t)
	return New(s), s
}

func exec(t *testing.T, s *sqlstore.Store, query string, args ...any) {
	t.Helper()
	if _, err := s.DB().Exec(s.Rebind(query), args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func insertProduct(t *testing.T, s *sqlstore.Store, id, createdAt string) {
	t.Helper()
	exec(t, s,
		`INSERT INTO products (id, name, category, image_url, price_cents, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, "Product "+id, "general", "https://img.example/"+id+".png", 1999, createdAt,
	)
}

func insertOrder(t *testing.T, s *sqlstore.Store, orderID, userID, status string, productIDs ...string) {
	t.Helper()
	exec(t, s, `INSERT INTO orders (id, user_id, status) VALUES (?, ?, ?)`, orderID, userID, status)
	for _, pid := range productIDs {
		exec(t, s, `INSERT INTO order_items (order_id, product_id, quantity) VALUES (?, ?, 1)`, orderID, pid)
	}
}

func insertWishlist(t *testing.T, s *sqlstore.Store, userID, productID string) {
	t.Helper()
	exec(t, s, `INSERT INTO wishlist_items (user_id, product_id) VALUES (?, ?)`, userID, productID)
}

func insertView(t *testing.T, s *sqlstore.Store, userID, productID string) {
	t.Helper()
	exec(t, s, `INSERT INTO product_views (user_id, product_id) VALUES (?, ?)`, userID, productID)
}
