package recommend

import "github.com/kailas-cloud/shoprec/internal/domain/interaction"

// Vector is a binary interaction vector over the product universe.
type Vector []float64

// Vectorize maps a profile onto productOrder: position i is 1 when the user
// ordered, wishlisted or viewed productOrder[i]. Ids outside productOrder are
// ignored.
func Vectorize(p *interaction.Profile, productOrder []string) Vector {
	return newIndex(productOrder).vectorize(p)
}

// index maps a product id to its vector position.
type index struct {
	pos  map[string]int
	size int
}

func newIndex(productOrder []string) index {
	pos := make(map[string]int, len(productOrder))
	for i, id := range productOrder {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}
	return index{pos: pos, size: len(productOrder)}
}

func (ix index) vectorize(p *interaction.Profile) Vector {
	v := make(Vector, ix.size)
	for _, id := range p.All() {
		if i, ok := ix.pos[id]; ok {
			v[i] = 1
		}
	}
	return v
}
