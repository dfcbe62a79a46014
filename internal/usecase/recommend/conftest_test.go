package recommend

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/interaction"
	"github.com/kailas-cloud/shoprec/internal/domain/product"
)

// mockSnapshots implements SnapshotReader for tests.
type mockSnapshots struct {
	ids         []string
	profiles    []interaction.Profile
	idsErr      error
	profilesErr error
	profilesBug bool // ListInteractions writes to a nil map
	block       bool // wait for ctx cancellation before answering
	calls       atomic.Int32
}

func (m *mockSnapshots) ListProductIDs(ctx context.Context) ([]string, error) {
	m.calls.Add(1)
	if m.block {
		<-ctx.Done()
		return nil, domain.Unavailable("list product ids", ctx.Err())
	}
	if m.idsErr != nil {
		return nil, m.idsErr
	}
	return m.ids, nil
}

func (m *mockSnapshots) ListInteractions(_ context.Context) ([]interaction.Profile, error) {
	if m.profilesBug {
		var counts map[string]int
		counts["P1"]++
	}
	if m.profilesErr != nil {
		return nil, m.profilesErr
	}
	return m.profiles, nil
}

// mockProducts implements ProductReader for tests. newest is the popular
// order; byIDs looks products up in the same slice.
type mockProducts struct {
	newest     []product.Product
	popularErr error
	byIDsErr   error
	byIDsPanic bool
	popularN   int
}

func (m *mockProducts) PopularProducts(_ context.Context, limit int) ([]product.Product, error) {
	m.popularN++
	if m.popularErr != nil {
		return nil, m.popularErr
	}
	if limit < len(m.newest) {
		return m.newest[:limit], nil
	}
	return m.newest, nil
}

func (m *mockProducts) GetProductsByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.byIDsPanic {
		panic("boom")
	}
	if m.byIDsErr != nil {
		return nil, m.byIDsErr
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []product.Product
	for _, p := range m.newest {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// views builds one profile per user from user -> viewed product ids.
func views(m map[string][]string) []interaction.Profile {
	var records []interaction.Record
	for user, ids := range m {
		for _, id := range ids {
			records = append(records, interaction.Record{UserID: user, ProductID: id, Kind: interaction.View})
		}
	}
	return interaction.Group(records)
}

// catalog builds products whose popular order is the reverse of id order,
// i.e. the highest id is the newest.
func catalog(ids ...string) []product.Product {
	sorted := append([]string(nil), ids...)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
	out := make([]product.Product, len(sorted))
	for i, id := range sorted {
		out[i] = product.Product{ID: id, Name: "Product " + id}
	}
	return out
}

func newTestService(snaps *mockSnapshots, prods *mockProducts) *Service {
	return New(snaps, prods, domain.DefaultRecommendConfig(), nil)
}
