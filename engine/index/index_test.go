package index

import (
	"testing"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

func testTokens() []domain.Token {
	return []domain.Token{
		domain.NewToken("MAIN38", 10, 10),
		domain.NewToken("MH2FL", 200, 20),
		domain.NewToken("SP001", 150, 100),
		domain.NewToken("7", 12, 30),
		domain.NewToken("G22B(m)", 300, 150),
	}
}

func TestOfKind(t *testing.T) {
	ix := New(testTokens())
	if got := len(ix.OfKind(domain.KindConnector)); got != 1 {
		t.Fatalf("expected 1 connector, got %d", got)
	}
	if got := len(ix.OfKind(domain.KindJunction)); got != 1 {
		t.Fatalf("expected 1 junction, got %d", got)
	}
	if got := len(ix.OfKind(domain.KindWireSpec)); got != 0 {
		t.Fatalf("expected no wire specs, got %d", got)
	}
	if got := len(ix.All()); got != 5 {
		t.Fatalf("expected 5 tokens, got %d", got)
	}
}

func TestNear(t *testing.T) {
	ix := New(testTokens())
	near := ix.Near(10, 10, 25)
	if len(near) != 2 {
		t.Fatalf("expected 2 tokens near (10,10), got %d", len(near))
	}
	if near[0].Content != "MAIN38" || near[1].Content != "7" {
		t.Fatalf("unexpected tokens %+v", near)
	}
}

func TestComponentBounds(t *testing.T) {
	ix := New(testTokens())
	b, ok := ix.ComponentBounds(20)
	if !ok {
		t.Fatal("expected bounds")
	}
	want := Bounds{MinX: -10, MinY: -10, MaxX: 320, MaxY: 170}
	if b != want {
		t.Fatalf("expected %+v, got %+v", want, b)
	}
	if !b.Contains(150, 100) {
		t.Fatal("interior point should be inside")
	}
	if b.Contains(500, 100) {
		t.Fatal("exterior point should be outside")
	}

	empty := New([]domain.Token{domain.NewToken("7", 0, 0)})
	if _, ok := empty.ComponentBounds(20); ok {
		t.Fatal("pins alone should not produce bounds")
	}
}

func TestSplicePoints(t *testing.T) {
	ix := New(testTokens())
	pts := ix.SplicePoints()
	if len(pts) != 1 {
		t.Fatalf("expected 1 splice point, got %d", len(pts))
	}
	if pts[0].ConnectorID != "SP001" || pts[0].X != 150 || pts[0].Y != 100 {
		t.Fatalf("unexpected splice point %+v", pts[0])
	}
}
