// Package index provides positional lookup over classified diagram tokens.
// Extractors share one Index per document rather than re-scanning the token
// list for every candidate search.
package index

import (
	"math"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

// Index holds the classified tokens of one diagram, bucketed by kind.
type Index struct {
	tokens []domain.Token
	byKind map[domain.TokenKind][]domain.Token
}

func New(tokens []domain.Token) *Index {
	ix := &Index{
		tokens: tokens,
		byKind: make(map[domain.TokenKind][]domain.Token),
	}
	for _, t := range tokens {
		ix.byKind[t.Kind] = append(ix.byKind[t.Kind], t)
	}
	return ix
}

// All returns every token in document order.
func (ix *Index) All() []domain.Token { return ix.tokens }

// OfKind returns the tokens of one kind in document order.
func (ix *Index) OfKind(kind domain.TokenKind) []domain.Token { return ix.byKind[kind] }

// Near returns the tokens within radius (Euclidean) of a position.
func (ix *Index) Near(x, y, radius float64) []domain.Token {
	var out []domain.Token
	for _, t := range ix.tokens {
		if math.Hypot(t.X-x, t.Y-y) <= radius {
			out = append(out, t)
		}
	}
	return out
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether the point lies inside the box.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// ComponentBounds returns the bounding box of all connector, junction and
// ground labels, expanded by pad on every side. Routing polylines entirely
// outside this box belong to external bus bars, not to the circuit.
func (ix *Index) ComponentBounds(pad float64) (Bounds, bool) {
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	found := false
	for _, kind := range []domain.TokenKind{domain.KindConnector, domain.KindJunction, domain.KindGround} {
		for _, t := range ix.byKind[kind] {
			found = true
			b.MinX = math.Min(b.MinX, t.X)
			b.MinY = math.Min(b.MinY, t.Y)
			b.MaxX = math.Max(b.MaxX, t.X)
			b.MaxY = math.Max(b.MaxY, t.Y)
		}
	}
	if !found {
		return Bounds{}, false
	}
	b.MinX -= pad
	b.MinY -= pad
	b.MaxX += pad
	b.MaxY += pad
	return b, true
}

// SplicePoints returns each splice token as a connection point.
func (ix *Index) SplicePoints() []domain.ConnectionPoint {
	splices := ix.byKind[domain.KindSplice]
	out := make([]domain.ConnectionPoint, 0, len(splices))
	for _, t := range splices {
		out = append(out, domain.ConnectionPoint{ConnectorID: t.Content, X: t.X, Y: t.Y})
	}
	return out
}
