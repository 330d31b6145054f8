package extract

import (
	"testing"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

func TestRoutingLShapedPolyline(t *testing.T) {
	tokens := []domain.Token{
		tok("AA1", 50, 40),
		tok("BB1", 320, 260),
		tok("1", 50, 100),
		tok("SP001", 300, 200),
	}
	ix, res := buildResolver(t, tokens)
	specs := []domain.WireSpec{{Diameter: "0.5", Color: "BU", X: 150, Y: 190}}
	polylines := [][]domain.Point{{{X: 50, Y: 105}, {X: 50, Y: 200}, {X: 300, Y: 200}}}

	conns := NewRouting(ix, res, specs, polylines, nil, nil).Extract()
	if len(conns) != 1 {
		t.Fatalf("expected 1 connection, got %d: %+v", len(conns), conns)
	}
	want := domain.Connection{FromID: "AA1", FromPin: "1", ToID: "SP001", WireDM: "0.5", WireColor: "BU"}
	if conns[0] != want {
		t.Fatalf("expected %+v, got %+v", want, conns[0])
	}
}

func TestRoutingExternalPolylineSkipped(t *testing.T) {
	// Both endpoints outside the component bounding box: perimeter bus
	// routing, not a circuit wire.
	tokens := []domain.Token{
		tok("AA1", 50, 40),
		tok("SP001", 900, 900),
		tok("SP002", 900, 400),
	}
	ix, res := buildResolver(t, tokens)
	polylines := [][]domain.Point{{{X: 900, Y: 900}, {X: 900, Y: 400}}}

	conns := NewRouting(ix, res, nil, polylines, nil, nil).Extract()
	if len(conns) != 0 {
		t.Fatalf("expected external polyline to be skipped, got %+v", conns)
	}
}

func TestRoutingSpliceChain(t *testing.T) {
	// An intermediate splice on the vertical segment joins the chain: the
	// pin binds to its nearest splice and the splices link up in path order.
	tokens := []domain.Token{
		tok("AA1", 50, 40),
		tok("BB1", 420, 340),
		tok("1", 50, 100),
		tok("SP001", 50, 200),
		tok("SP002", 400, 300),
	}
	ix, res := buildResolver(t, tokens)
	polylines := [][]domain.Point{{{X: 50, Y: 105}, {X: 50, Y: 300}, {X: 400, Y: 300}}}

	conns := NewRouting(ix, res, nil, polylines, nil, nil).Extract()
	if len(conns) != 2 {
		t.Fatalf("expected 2 connections, got %d: %+v", len(conns), conns)
	}
	if conns[0].FromID != "AA1" || conns[0].FromPin != "1" || conns[0].ToID != "SP001" {
		t.Fatalf("expected AA1/1-SP001, got %+v", conns[0])
	}
	if conns[1].FromID != "SP001" || conns[1].ToID != "SP002" {
		t.Fatalf("expected SP001-SP002, got %+v", conns[1])
	}
}

func TestRoutingRectangle(t *testing.T) {
	tokens := []domain.Token{
		tok("AA1", 100, 40),
		tok("1", 100, 95),
		tok("BB1", 302, 98),
		tok("CC1", 300, 160),
		tok("2", 300, 205),
		tok("SP001", 100, 202),
	}
	ix, res := buildResolver(t, tokens)
	specs := []domain.WireSpec{{Diameter: "0.75", Color: "RD", X: 200, Y: 92}}
	polylines := [][]domain.Point{{
		{X: 100, Y: 100}, {X: 300, Y: 100}, {X: 300, Y: 200}, {X: 100, Y: 200},
	}}

	conns := NewRouting(ix, res, specs, polylines, nil, nil).Extract()
	if len(conns) != 3 {
		t.Fatalf("expected 3 connections, got %d: %+v", len(conns), conns)
	}
	for _, c := range conns {
		if c.WireDM != "0.75" || c.WireColor != "RD" {
			t.Fatalf("rectangle spec should cover every edge, got %+v", c)
		}
	}
	if conns[0].FromID != "AA1" || conns[0].ToID != "BB1" {
		t.Fatalf("unexpected first edge %+v", conns[0])
	}
	if conns[2].FromID != "CC1" || conns[2].ToID != "SP001" {
		t.Fatalf("unexpected last edge %+v", conns[2])
	}
}

func TestRoutingPathSpliceFloor(t *testing.T) {
	// Along a white path, a pin joins the splice it reaches, but two
	// splices under 400 units apart never join directly.
	tokens := []domain.Token{
		tok("AA1", 100, 50),
		tok("BB1", 320, 140),
		tok("1", 100, 105),
		tok("SP002", 200, 102),
		tok("SP001", 300, 100),
	}
	ix, res := buildResolver(t, tokens)
	paths := [][]domain.Point{{{X: 100, Y: 100}, {X: 300, Y: 100}}}

	conns := NewRouting(ix, res, nil, nil, paths, nil).Extract()
	if len(conns) != 1 {
		t.Fatalf("expected 1 connection, got %d: %+v", len(conns), conns)
	}
	if conns[0].FromID != "AA1" || conns[0].ToID != "SP002" {
		t.Fatalf("expected AA1/1-SP002, got %+v", conns[0])
	}
}

func TestRoutingDefersToHorizontal(t *testing.T) {
	tokens := []domain.Token{
		tok("AA1", 50, 40),
		tok("BB1", 120, 220),
		tok("1", 50, 100),
		tok("SP001", 100, 200),
	}
	ix, res := buildResolver(t, tokens)
	horizontal := []domain.Connection{
		{FromID: "AA1", FromPin: "1", ToID: "SP001", WireDM: "0.35", WireColor: "BU"},
	}
	polylines := [][]domain.Point{{{X: 50, Y: 105}, {X: 50, Y: 200}, {X: 100, Y: 200}}}

	conns := NewRouting(ix, res, nil, polylines, nil, horizontal).Extract()
	if len(conns) != 0 {
		t.Fatalf("routing must defer to the horizontal wire, got %+v", conns)
	}
}
