package product

import "time"

// Product is a catalog entry as the storefront renders it.
// The engine itself only looks at ID.
type Product struct {
	ID         string
	Name       string
	Category   string
	ImageURL   string
	PriceCents int64
	CreatedAt  time.Time
}

// IDs returns the product ids in slice order.
func IDs(products []Product) []string {
	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	return ids
}
