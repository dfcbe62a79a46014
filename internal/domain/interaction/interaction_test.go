package interaction

import (
	"reflect"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"order", Order, false},
		{"wishlist", Wishlist, false},
		{"view", View, false},
		{"", "", true},
		{"purchase", "", true},
	}
	for _, tc := range tests {
		got, err := ParseKind(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseKind(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProfile_UnionAndHas(t *testing.T) {
	p := NewProfile("u1")
	p.Add(Order, "p2")
	p.Add(Wishlist, "p1")
	p.Add(View, "p2")
	p.Add(View, "p3")

	if got := p.All(); !reflect.DeepEqual(got, []string{"p1", "p2", "p3"}) {
		t.Errorf("All() = %v", got)
	}
	if !p.Has("p3") || p.Has("p4") {
		t.Error("Has() mismatch")
	}
	if p.Empty() {
		t.Error("profile with interactions reported empty")
	}
	if got := p.Ordered(); !reflect.DeepEqual(got, []string{"p2"}) {
		t.Errorf("Ordered() = %v", got)
	}
}

func TestProfile_Empty(t *testing.T) {
	p := NewProfile("u1")
	if !p.Empty() {
		t.Error("new profile should be empty")
	}
	if len(p.All()) != 0 {
		t.Error("empty profile should have no products")
	}
}

func TestGroup_SortsByUser(t *testing.T) {
	profiles := Group([]Record{
		{UserID: "b", ProductID: "p1", Kind: Order},
		{UserID: "a", ProductID: "p2", Kind: View},
		{UserID: "b", ProductID: "p3", Kind: Wishlist},
	})
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].UserID() != "a" || profiles[1].UserID() != "b" {
		t.Errorf("unexpected order: %s, %s", profiles[0].UserID(), profiles[1].UserID())
	}
	if got := profiles[1].All(); !reflect.DeepEqual(got, []string{"p1", "p3"}) {
		t.Errorf("b.All() = %v", got)
	}
}

func TestGroup_Empty(t *testing.T) {
	if got := Group(nil); len(got) != 0 {
		t.Errorf("expected no profiles, got %d", len(got))
	}
}
