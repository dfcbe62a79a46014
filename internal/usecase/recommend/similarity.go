package recommend

import (
	"math"
	"sort"
)

// Similarity is the cosine similarity between the target and another user.
type Similarity struct {
	UserID string
	Score  float64
}

// Cosine returns dot(a,b) / (|a|·|b|), or 0 when either vector has zero
// magnitude. The result is always within [-1, 1]. Vectors of different length
// are compared over their common prefix.
func Cosine(a, b Vector) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	for i := n; i < len(a); i++ {
		na += a[i] * a[i]
	}
	for i := n; i < len(b); i++ {
		nb += b[i] * b[i]
	}

	if na == 0 || nb == 0 {
		return 0
	}

	// sqrt of the product keeps self-similarity of binary vectors exactly 1.
	s := dot / math.Sqrt(na*nb)
	switch {
	case math.IsNaN(s):
		return 0
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}

// Rank scores every other user against target, highest first. Equal scores
// are ordered by user id. Nothing is filtered out here.
func Rank(target Vector, others map[string]Vector) []Similarity {
	out := make([]Similarity, 0, len(others))
	for id, v := range others {
		out = append(out, Similarity{UserID: id, Score: Cosine(target, v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func magnitude(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
