package extract

import (
	"testing"

	"github.com/WessleyAI/wiretrace/engine/domain"
	"github.com/WessleyAI/wiretrace/engine/index"
	"github.com/WessleyAI/wiretrace/engine/resolve"
)

func buildResolver(t *testing.T, tokens []domain.Token) (*index.Index, *resolve.Resolver) {
	t.Helper()
	ix := index.New(tokens)
	return ix, resolve.New(ix, resolve.DefaultConfig())
}

func tok(content string, x, y float64) domain.Token {
	return domain.NewToken(content, x, y)
}

func TestHorizontalAdjacentPairsOnly(t *testing.T) {
	// Three pins in a row under one spec band produce two edges joining
	// neighbors; the outer pins never connect directly.
	tokens := []domain.Token{
		tok("AA1", 10, 50),
		tok("BB2", 50, 50),
		tok("CC3", 90, 50),
		tok("1", 10, 100),
		tok("2", 50, 100),
		tok("3", 90, 100),
		tok("0.35,GY/PU", 50, 95),
	}
	ix, res := buildResolver(t, tokens)
	specs := []domain.WireSpec{{Diameter: "0.35", Color: "GY/PU", X: 50, Y: 95}}

	conns := NewHorizontal(ix, res, specs, nil).Extract()
	if len(conns) != 2 {
		t.Fatalf("expected 2 connections, got %d: %+v", len(conns), conns)
	}
	want := []domain.Connection{
		{FromID: "AA1", FromPin: "1", ToID: "BB2", ToPin: "2", WireDM: "0.35", WireColor: "GY/PU"},
		{FromID: "BB2", FromPin: "2", ToID: "CC3", ToPin: "3", WireDM: "0.35", WireColor: "GY/PU"},
	}
	for i := range want {
		if conns[i] != want[i] {
			t.Fatalf("connection %d: expected %+v, got %+v", i, want[i], conns[i])
		}
	}
}

func TestHorizontalSpliceIsHardStop(t *testing.T) {
	// A splice on the run terminates each side; no edge may jump it.
	tokens := []domain.Token{
		tok("AA1", 10, 50),
		tok("CC3", 90, 50),
		tok("1", 10, 100),
		tok("SP001", 50, 100),
		tok("3", 90, 100),
		tok("0.35,GY/PU", 50, 95),
	}
	ix, res := buildResolver(t, tokens)
	specs := []domain.WireSpec{{Diameter: "0.35", Color: "GY/PU", X: 50, Y: 95}}

	conns := NewHorizontal(ix, res, specs, nil).Extract()
	if len(conns) != 2 {
		t.Fatalf("expected 2 connections, got %d: %+v", len(conns), conns)
	}
	for _, c := range conns {
		if c.FromID == "AA1" && c.ToID == "CC3" {
			t.Fatalf("edge must not jump the splice: %+v", c)
		}
	}
	if conns[0].ToID != "SP001" || conns[1].FromID != "SP001" {
		t.Fatalf("splice should terminate both sides: %+v", conns)
	}
}

func TestHorizontalLongGapWithoutSpecRejected(t *testing.T) {
	tokens := []domain.Token{
		tok("AA1", 10, 40),
		tok("BB2", 280, 40),
		tok("1", 10, 100),
		tok("2", 280, 100),
		tok("0.35,BU", 5, 95),
	}
	ix, res := buildResolver(t, tokens)
	specs := []domain.WireSpec{{Diameter: "0.35", Color: "BU", X: 5, Y: 95}}

	conns := NewHorizontal(ix, res, specs, nil).Extract()
	if len(conns) != 0 {
		t.Fatalf("270-unit gap with no spec between must be rejected, got %+v", conns)
	}
}

func TestHorizontalDifferentWiresInOneBand(t *testing.T) {
	// Endpoints at clearly different vertical offsets from the spec belong
	// to different wires sharing the band.
	tokens := []domain.Token{
		tok("AA1", 10, 40),
		tok("BB2", 60, 40),
		tok("1", 10, 96),
		tok("2", 60, 103),
		tok("0.35,BU", 30, 95),
	}
	ix, res := buildResolver(t, tokens)
	specs := []domain.WireSpec{{Diameter: "0.35", Color: "BU", X: 30, Y: 95}}

	conns := NewHorizontal(ix, res, specs, nil).Extract()
	if len(conns) != 0 {
		t.Fatalf("expected no connection across different wires, got %+v", conns)
	}
}

func TestHorizontalConnectorsTooFar(t *testing.T) {
	// The pins are near each other but their owning connectors are 120 units
	// apart with no spec bridging them.
	tokens := []domain.Token{
		tok("AA1", 60, 40),
		tok("BB2", 180, 40),
		tok("1", 100, 100),
		tok("2", 140, 100),
		tok("0.35,BU", 55, 95),
	}
	ix, res := buildResolver(t, tokens)
	specs := []domain.WireSpec{{Diameter: "0.35", Color: "BU", X: 55, Y: 95}}

	conns := NewHorizontal(ix, res, specs, nil).Extract()
	if len(conns) != 0 {
		t.Fatalf("expected no connection between distant connectors, got %+v", conns)
	}
}

func TestHorizontalSkipsVerticalSplices(t *testing.T) {
	// SP001 sits on a vertical polyline segment; with no spec vouching for
	// the sideways pair it belongs to the routed wire only.
	tokens := []domain.Token{
		tok("AA1", 150, 40),
		tok("1", 150, 100),
		tok("SP001", 200, 100),
		tok("0.35,BU", 350, 95),
	}
	ix, res := buildResolver(t, tokens)
	specs := []domain.WireSpec{{Diameter: "0.35", Color: "BU", X: 350, Y: 95}}
	polylines := [][]domain.Point{{{X: 200, Y: 50}, {X: 200, Y: 150}}}

	conns := NewHorizontal(ix, res, specs, polylines).Extract()
	if len(conns) != 0 {
		t.Fatalf("expected vertical splice to be skipped, got %+v", conns)
	}
}

func TestHorizontalModuleBoundary(t *testing.T) {
	// A foreign connector label drawn between a pin and a splice on the same
	// level marks a module boundary.
	tokens := []domain.Token{
		tok("AA1", 10, 50),
		tok("1", 10, 100),
		tok("DD4", 30, 102),
		tok("SP001", 50, 100),
		tok("0.35,BU", 20, 95),
	}
	ix, res := buildResolver(t, tokens)
	specs := []domain.WireSpec{{Diameter: "0.35", Color: "BU", X: 20, Y: 95}}

	conns := NewHorizontal(ix, res, specs, nil).Extract()
	if len(conns) != 0 {
		t.Fatalf("pair crossing a module boundary must be rejected, got %+v", conns)
	}
}
