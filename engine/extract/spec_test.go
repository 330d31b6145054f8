package extract

import (
	"testing"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

func TestWireSpecNearPath(t *testing.T) {
	points := []domain.Point{{X: 50, Y: 105}, {X: 50, Y: 200}, {X: 300, Y: 200}}
	specs := []domain.WireSpec{
		{Diameter: "0.5", Color: "BU", X: 150, Y: 190},
		{Diameter: "0.35", Color: "RD", X: 150, Y: 120}, // too far above the run
	}

	dm, color := wireSpecNearPath(specs, points, domain.Point{X: 50, Y: 105})
	if dm != "0.5" || color != "BU" {
		t.Fatalf("expected 0.5/BU, got %q/%q", dm, color)
	}
}

func TestWireSpecNearPathRejectsDistant(t *testing.T) {
	points := []domain.Point{{X: 50, Y: 200}, {X: 300, Y: 200}}
	specs := []domain.WireSpec{
		{Diameter: "0.5", Color: "BU", X: 150, Y: 152}, // 48 above, still under the ceiling
		{Diameter: "0.75", Color: "GN", X: 400, Y: 195}, // outside the X span
	}

	dm, color := wireSpecNearPath(specs, points, domain.Point{X: 50, Y: 200})
	if dm != "0.5" || color != "BU" {
		t.Fatalf("expected the in-span spec, got %q/%q", dm, color)
	}

	far := []domain.WireSpec{{Diameter: "0.5", Color: "BU", X: 150, Y: 125}}
	if dm, _ := wireSpecNearPath(far, points, domain.Point{X: 50, Y: 200}); dm != "" {
		t.Fatalf("spec above the 50-unit ceiling must be rejected, got %q", dm)
	}
}

func TestWireSpecForRectangle(t *testing.T) {
	points := []domain.Point{
		{X: 100, Y: 100}, {X: 300, Y: 100}, {X: 300, Y: 200}, {X: 100, Y: 200},
	}
	specs := []domain.WireSpec{
		{Diameter: "0.75", Color: "RD", X: 200, Y: 92},
		{Diameter: "0.35", Color: "BU", X: 200, Y: 140}, // between the runs, outside both windows
	}

	dm, color, ok := wireSpecForRectangle(specs, points)
	if !ok {
		t.Fatal("expected a spec")
	}
	if dm != "0.75" || color != "RD" {
		t.Fatalf("expected 0.75/RD, got %q/%q", dm, color)
	}

	if _, _, ok := wireSpecForRectangle(nil, points); ok {
		t.Fatal("no specs means no attribution")
	}
}
