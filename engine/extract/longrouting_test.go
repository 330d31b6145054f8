package extract

import (
	"testing"

	"github.com/WessleyAI/wiretrace/engine/domain"
	"github.com/WessleyAI/wiretrace/engine/index"
)

func TestLongRoutingFlowImbalance(t *testing.T) {
	ix := index.New([]domain.Token{
		tok("SP001", 100, 100),
		tok("SP002", 600, 400),
	})
	existing := []domain.Connection{
		{FromID: "AA1", FromPin: "1", ToID: "SP001", WireDM: "0.5", WireColor: "BU"},
		{FromID: "SP002", ToID: "BB1", ToPin: "1", WireDM: "0.5", WireColor: "BU"},
	}

	conns := NewLongRouting(existing, ix).Extract()
	if len(conns) != 1 {
		t.Fatalf("expected 1 inferred connection, got %d: %+v", len(conns), conns)
	}
	want := domain.Connection{FromID: "SP001", ToID: "SP002", WireDM: "0.5", WireColor: "BU"}
	if conns[0] != want {
		t.Fatalf("expected %+v, got %+v", want, conns[0])
	}
}

func TestLongRoutingDistanceGuards(t *testing.T) {
	existing := []domain.Connection{
		{FromID: "AA1", FromPin: "1", ToID: "SP001", WireDM: "0.5", WireColor: "BU"},
		{FromID: "SP002", ToID: "BB1", ToPin: "1", WireDM: "0.5", WireColor: "BU"},
	}

	// Too close overall.
	ix := index.New([]domain.Token{
		tok("SP001", 100, 100),
		tok("SP002", 350, 250),
	})
	if conns := NewLongRouting(existing, ix).Extract(); len(conns) != 0 {
		t.Fatalf("pair under 400 units must not be inferred, got %+v", conns)
	}

	// Far apart but without the dominant vertical run.
	ix = index.New([]domain.Token{
		tok("SP001", 100, 100),
		tok("SP002", 600, 150),
	})
	if conns := NewLongRouting(existing, ix).Extract(); len(conns) != 0 {
		t.Fatalf("pair without vertical separation must not be inferred, got %+v", conns)
	}
}

func TestLongRoutingMinorityColorIgnored(t *testing.T) {
	ix := index.New([]domain.Token{
		tok("SP001", 100, 100),
		tok("SP002", 600, 400),
	})
	existing := []domain.Connection{
		{FromID: "AA1", FromPin: "1", ToID: "SP001", WireDM: "0.5", WireColor: "BU"},
		{FromID: "BB1", FromPin: "2", ToID: "SP001", WireDM: "0.5", WireColor: "BU"},
		{FromID: "CC1", FromPin: "3", ToID: "SP001", WireDM: "0.35", WireColor: "RD"},
		{FromID: "SP002", ToID: "DD1", ToPin: "1", WireDM: "0.5", WireColor: "BU"},
	}

	conns := NewLongRouting(existing, ix).Extract()
	if len(conns) != 1 {
		t.Fatalf("expected 1 inferred connection, got %d: %+v", len(conns), conns)
	}
	if conns[0].WireColor != "BU" {
		t.Fatalf("the stray RD reading must lose to the BU majority, got %+v", conns[0])
	}
}

func TestLongRoutingSkipsExistingPairs(t *testing.T) {
	ix := index.New([]domain.Token{
		tok("SP001", 100, 100),
		tok("SP002", 600, 400),
	})
	existing := []domain.Connection{
		{FromID: "AA1", FromPin: "1", ToID: "SP001", WireDM: "0.5", WireColor: "BU"},
		{FromID: "SP002", ToID: "BB1", ToPin: "1", WireDM: "0.5", WireColor: "BU"},
		{FromID: "SP002", ToID: "SP001"},
	}

	if conns := NewLongRouting(existing, ix).Extract(); len(conns) != 0 {
		t.Fatalf("already connected pair must not be re-inferred, got %+v", conns)
	}
}
