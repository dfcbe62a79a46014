package interaction

import (
	"fmt"
	"sort"
)

// Kind is the type of user action recorded against a product.
type Kind string

const (
	// Order is a product bought through a placed order.
	Order Kind = "order"
	// Wishlist is a product saved to the user's wishlist.
	Wishlist Kind = "wishlist"
	// View is a product page view.
	View Kind = "view"
)

// ParseKind validates a raw kind string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Order, Wishlist, View:
		return k, nil
	default:
		return "", fmt.Errorf("unknown interaction kind %q", s)
	}
}

// Record is one user-product interaction as read from the store.
type Record struct {
	UserID    string
	ProductID string
	Kind      Kind
}

// Profile is the binary interaction signal of one user. Recency and counts are
// deliberately dropped: a product is either touched or not.
type Profile struct {
	userID     string
	ordered    map[string]struct{}
	wishlisted map[string]struct{}
	viewed     map[string]struct{}
}

// NewProfile creates an empty profile.
func NewProfile(userID string) Profile {
	return Profile{
		userID:     userID,
		ordered:    make(map[string]struct{}),
		wishlisted: make(map[string]struct{}),
		viewed:     make(map[string]struct{}),
	}
}

// Add records an interaction. Unknown kinds are ignored.
func (p *Profile) Add(kind Kind, productID string) {
	switch kind {
	case Order:
		p.ordered[productID] = struct{}{}
	case Wishlist:
		p.wishlisted[productID] = struct{}{}
	case View:
		p.viewed[productID] = struct{}{}
	}
}

// UserID returns the profile owner.
func (p *Profile) UserID() string { return p.userID }

// Ordered returns the ordered product ids, sorted.
func (p *Profile) Ordered() []string { return sortedKeys(p.ordered) }

// Wishlisted returns the wishlisted product ids, sorted.
func (p *Profile) Wishlisted() []string { return sortedKeys(p.wishlisted) }

// Viewed returns the viewed product ids, sorted.
func (p *Profile) Viewed() []string { return sortedKeys(p.viewed) }

// Has reports whether the user interacted with the product in any way.
func (p *Profile) Has(productID string) bool {
	if _, ok := p.ordered[productID]; ok {
		return true
	}
	if _, ok := p.wishlisted[productID]; ok {
		return true
	}
	_, ok := p.viewed[productID]
	return ok
}

// All returns the union of ordered, wishlisted and viewed ids, sorted.
func (p *Profile) All() []string {
	union := make(map[string]struct{}, len(p.ordered)+len(p.wishlisted)+len(p.viewed))
	for _, set := range []map[string]struct{}{p.ordered, p.wishlisted, p.viewed} {
		for id := range set {
			union[id] = struct{}{}
		}
	}
	return sortedKeys(union)
}

// Empty reports whether the profile has no interactions at all.
func (p *Profile) Empty() bool {
	return len(p.ordered) == 0 && len(p.wishlisted) == 0 && len(p.viewed) == 0
}

// Group folds records into one profile per user, ordered by user id.
func Group(records []Record) []Profile {
	byUser := make(map[string]*Profile)
	for _, r := range records {
		p, ok := byUser[r.UserID]
		if !ok {
			np := NewProfile(r.UserID)
			p = &np
			byUser[r.UserID] = p
		}
		p.Add(r.Kind, r.ProductID)
	}

	out := make([]Profile, 0, len(byUser))
	for _, p := range byUser {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].userID < out[j].userID })
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
