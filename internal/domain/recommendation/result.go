package recommendation

import "github.com/kailas-cloud/shoprec/internal/domain/product"

// Source tells the caller which strategy produced a Result.
type Source string

const (
	// Personalized results come from collaborative filtering.
	Personalized Source = "personalized"
	// Popular results come from the newest-first fallback.
	Popular Source = "popular"
)

// Reason explains why the fallback path was taken.
type Reason string

// Fallback reasons, also used as metric labels.
const (
	ReasonNone           Reason = ""
	ReasonZeroLimit      Reason = "zero_limit"
	ReasonEmptyCatalog   Reason = "empty_catalog"
	ReasonUnknownUser    Reason = "unknown_user"
	ReasonNoSimilarUsers Reason = "no_similar_users"
	ReasonNoCandidates   Reason = "no_candidates"
	ReasonCircuitOpen    Reason = "circuit_open"
	ReasonError          Reason = "error"
)

// Result is a ranked product list plus its provenance.
type Result struct {
	Items  []product.Product
	Source Source
	Reason Reason
}

// NewPersonalized builds a collaborative-filtering result.
func NewPersonalized(items []product.Product) Result {
	return Result{Items: items, Source: Personalized}
}

// NewPopular builds a fallback result.
func NewPopular(items []product.Product, reason Reason) Result {
	if items == nil {
		items = []product.Product{}
	}
	return Result{Items: items, Source: Popular, Reason: reason}
}

// IsPersonalized reports whether the result came from collaborative filtering.
func (r *Result) IsPersonalized() bool { return r.Source == Personalized }
