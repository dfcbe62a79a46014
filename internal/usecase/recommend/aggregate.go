package recommend

import (
	"sort"

	"github.com/kailas-cloud/shoprec/internal/domain/recommendation"
)

// Candidate is a product the target has not touched, weighted by the summed
// similarity of the neighbors who did.
type Candidate struct {
	ProductID string
	Weight    float64
	// position in the product universe; secondary sort key
	position int
}

// rankCandidates runs the collaborative-filtering pass over a snapshot.
// A non-empty reason means personalization is not possible and the caller
// should fall back.
//
// Candidates are ordered by weight descending. Equal weights keep discovery
// order, which is the snapshot's product order (ascending product id when the
// snapshot comes from the catalog repository).
func rankCandidates(snap Snapshot, userID string, neighborhood int) ([]Candidate, recommendation.Reason) {
	if len(snap.ProductIDs) == 0 {
		return nil, recommendation.ReasonEmptyCatalog
	}

	ix := newIndex(snap.ProductIDs)
	vectors := make(map[string]Vector, len(snap.Profiles))
	for i := range snap.Profiles {
		p := &snap.Profiles[i]
		vectors[p.UserID()] = ix.vectorize(p)
	}

	target, ok := vectors[userID]
	if !ok || magnitude(target) == 0 {
		return nil, recommendation.ReasonUnknownUser
	}

	others := make(map[string]Vector, len(vectors))
	for id, v := range vectors {
		if id != userID {
			others[id] = v
		}
	}

	neighbors := topPositive(Rank(target, others), neighborhood)
	if len(neighbors) == 0 {
		return nil, recommendation.ReasonNoSimilarUsers
	}

	weights := make([]float64, len(snap.ProductIDs))
	for _, n := range neighbors {
		v := vectors[n.UserID]
		for i, x := range v {
			if x > 0 && target[i] == 0 {
				weights[i] += n.Score
			}
		}
	}

	var candidates []Candidate
	for i, w := range weights {
		if w > 0 {
			candidates = append(candidates, Candidate{ProductID: snap.ProductIDs[i], Weight: w, position: i})
		}
	}
	if len(candidates) == 0 {
		return nil, recommendation.ReasonNoCandidates
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Weight != candidates[j].Weight {
			return candidates[i].Weight > candidates[j].Weight
		}
		return candidates[i].position < candidates[j].position
	})
	return candidates, recommendation.ReasonNone
}

// topPositive keeps strictly positive similarities and returns at most k of them.
// ranked must already be sorted descending.
func topPositive(ranked []Similarity, k int) []Similarity {
	n := 0
	for n < len(ranked) && ranked[n].Score > 0 {
		n++
	}
	if n > k {
		n = k
	}
	return ranked[:n]
}
