package graph

import (
	"testing"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

func TestEdgeIDDeterministic(t *testing.T) {
	c := domain.Connection{FromID: "AA1", FromPin: "1", ToID: "SP001", WireDM: "0.35", WireColor: "BU"}
	a := EdgeID("front.svg", c)
	b := EdgeID("front.svg", c)
	if a != b {
		t.Fatalf("same edge must produce the same ID: %s vs %s", a, b)
	}
	if a == EdgeID("rear.svg", c) {
		t.Fatal("IDs must differ across diagrams")
	}

	other := c
	other.ToPin = "2"
	if a == EdgeID("front.svg", other) {
		t.Fatal("IDs must differ across pins")
	}

	// Wire properties are mutable edge attributes, not identity.
	respecced := c
	respecced.WireColor = "RD"
	if a != EdgeID("front.svg", respecced) {
		t.Fatal("wire spec must not change the edge ID")
	}
}

func TestNodeKind(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"SP001", "splice"},
		{"SP_CUSTOM_003", "splice"},
		{"G22B(m)", "ground"},
		{"MAIN38", "connector"},
		{"MH2FL", "connector"},
	}
	for _, tc := range cases {
		if got := nodeKind(tc.id); got != tc.want {
			t.Errorf("nodeKind(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
