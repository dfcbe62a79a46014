package shoprec

import "time"

// Source tells which strategy produced a recommendation list.
type Source string

// Source constants.
const (
	SourcePersonalized Source = "personalized"
	SourcePopular      Source = "popular"
)

// Product is a recommended catalog entry.
type Product struct {
	ID         string
	Name       string
	Category   string
	ImageURL   string
	PriceCents int64
	CreatedAt  time.Time
}

// Recommendations is a ranked product list.
type Recommendations struct {
	Items  []Product
	Source Source
	// Reason is set when Source is SourcePopular, e.g. "unknown_user".
	Reason string
}

// Personalized reports whether the list came from collaborative filtering.
func (r *Recommendations) Personalized() bool { return r.Source == SourcePersonalized }
