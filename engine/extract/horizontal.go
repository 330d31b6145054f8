// Package extract holds the connection extractors. Each extractor consumes
// the shared token index (plus, for the later ones, the partial results of
// earlier extractors) and emits candidate connections for reconciliation.
package extract

import (
	"math"
	"sort"

	"github.com/WessleyAI/wiretrace/engine/domain"
	"github.com/WessleyAI/wiretrace/engine/index"
	"github.com/WessleyAI/wiretrace/engine/resolve"
)

// Horizontal reconstructs same-row wire runs. Wire specs are grouped into
// horizontal bands and connection points under each band are joined
// left-to-right, adjacent pairs only: a run visually touches only its
// neighbors, and a splice on the run is a hard stop, never jumped.
type Horizontal struct {
	ix    *index.Index
	res   *resolve.Resolver
	specs []domain.WireSpec

	// Splices sitting on vertical polyline segments belong to routed
	// wires, not horizontal runs, and must not be joined sideways
	// unless a spec vouches for the pair.
	verticalSplices map[string]bool
}

func NewHorizontal(ix *index.Index, res *resolve.Resolver, specs []domain.WireSpec, polylines [][]domain.Point) *Horizontal {
	return &Horizontal{
		ix:              ix,
		res:             res,
		specs:           specs,
		verticalSplices: splicesOnVerticalSegments(ix, polylines),
	}
}

func splicesOnVerticalSegments(ix *index.Index, polylines [][]domain.Point) map[string]bool {
	out := make(map[string]bool)
	splices := ix.OfKind(domain.KindSplice)
	for _, line := range polylines {
		for i := 0; i+1 < len(line); i++ {
			a, b := line[i], line[i+1]
			if math.Abs(a.X-b.X) >= axisTolerance {
				continue
			}
			lo, hi := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
			for _, sp := range splices {
				if math.Abs(sp.X-a.X) < segmentWindow && lo < sp.Y && sp.Y < hi {
					out[sp.Content] = true
				}
			}
		}
	}
	return out
}

// pairKey identifies a left/right token pair regardless of direction.
type pairKey struct {
	aID, aPin string
	aX, aY    float64
	bID, bPin string
	bX, bY    float64
}

func makePairKey(lid, lpin string, lp domain.Token, rid, rpin string, rp domain.Token) pairKey {
	k := pairKey{lid, lpin, lp.X, lp.Y, rid, rpin, rp.X, rp.Y}
	if k.bID < k.aID || (k.bID == k.aID && k.bPin < k.aPin) {
		k = pairKey{k.bID, k.bPin, k.bX, k.bY, k.aID, k.aPin, k.aX, k.aY}
	}
	return k
}

// Extract returns the horizontal wire connections.
func (h *Horizontal) Extract() []domain.Connection {
	var connections []domain.Connection
	seen := make(map[pairKey]int)

	for _, band := range h.specBands() {
		points := h.pointsUnderBand(band)
		for _, cluster := range clusterByY(points) {
			h.extractCluster(cluster, band, seen, &connections)
		}
	}
	return connections
}

// specBands groups wire specs by Y rounded to bandHeight buckets, ordered by
// bucket for deterministic output.
func (h *Horizontal) specBands() [][]domain.WireSpec {
	byBucket := make(map[int][]domain.WireSpec)
	for _, s := range h.specs {
		bucket := int(math.Round(s.Y/bandHeight)) * bandHeight
		byBucket[bucket] = append(byBucket[bucket], s)
	}
	buckets := make([]int, 0, len(byBucket))
	for b := range byBucket {
		buckets = append(buckets, b)
	}
	sort.Ints(buckets)

	out := make([][]domain.WireSpec, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, byBucket[b])
	}
	return out
}

// pointsUnderBand collects the pin, splice and ground tokens within
// bandHeight Y-units of any spec in the band.
func (h *Horizontal) pointsUnderBand(band []domain.WireSpec) []domain.Token {
	var out []domain.Token
	for _, t := range h.ix.All() {
		switch t.Kind {
		case domain.KindPin, domain.KindSplice, domain.KindGround:
		default:
			continue
		}
		for _, s := range band {
			if math.Abs(t.Y-s.Y) < bandHeight {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// clusterByY splits band points whose Y spread exceeds clusterMaxSpread into
// tighter sub-clusters: specs from distinct wires can round into one bucket.
// Points within clusterJoinGap of a cluster's current range stay together,
// which keeps a vertically offset splice with its pins.
func clusterByY(points []domain.Token) [][]domain.Token {
	if len(points) < 2 {
		return nil
	}
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	if maxY-minY <= clusterMaxSpread {
		return [][]domain.Token{points}
	}

	sorted := append([]domain.Token(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	var clusters [][]domain.Token
	current := []domain.Token{sorted[0]}
	curMin, curMax := sorted[0].Y, sorted[0].Y
	for _, p := range sorted[1:] {
		if math.Abs(p.Y-curMin) <= clusterJoinGap || math.Abs(p.Y-curMax) <= clusterJoinGap {
			current = append(current, p)
			curMin = math.Min(curMin, p.Y)
			curMax = math.Max(curMax, p.Y)
		} else {
			clusters = append(clusters, current)
			current = []domain.Token{p}
			curMin, curMax = p.Y, p.Y
		}
	}
	clusters = append(clusters, current)

	var out [][]domain.Token
	for _, c := range clusters {
		if len(c) >= 2 {
			out = append(out, c)
		}
	}
	return out
}

// collapseDuplicateX keeps one point per X position, preferring the point
// closest in Y to any spec in the band.
func collapseDuplicateX(points []domain.Token, band []domain.WireSpec) []domain.Token {
	var out []domain.Token
	for i := 0; i < len(points); {
		j := i + 1
		best := points[i]
		for j < len(points) && math.Abs(points[j].X-points[i].X) < duplicateXWindow {
			if minSpecYDist(points[j], band) < minSpecYDist(best, band) {
				best = points[j]
			}
			j++
		}
		out = append(out, best)
		i = j
	}
	return out
}

func minSpecYDist(p domain.Token, band []domain.WireSpec) float64 {
	best := math.Inf(1)
	for _, s := range band {
		best = math.Min(best, math.Abs(p.Y-s.Y))
	}
	return best
}

func (h *Horizontal) extractCluster(points []domain.Token, band []domain.WireSpec, seen map[pairKey]int, connections *[]domain.Connection) {
	sorted := append([]domain.Token(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	sorted = collapseDuplicateX(sorted, band)

	for i := 0; i+1 < len(sorted); i++ {
		left, right := sorted[i], sorted[i+1]

		between := specsBetween(band, left.X, right.X)

		if len(between) == 0 && !anySpecNearX(band, left.X, specNearWindow) {
			if h.verticalSplices[left.Content] || h.verticalSplices[right.Content] {
				continue
			}
		}

		// Spec attribution is per pair: a spec between the pair wins,
		// closest in Y; otherwise the band spec nearest the pair's Y.
		pairY := (left.Y + right.Y) / 2
		spec := nearestInY(band, pairY)
		if len(between) > 0 {
			spec = nearestInY(between, pairY)
		}

		// Endpoints at very different Y distances from the spec sit on
		// different wires that happen to share the band.
		leftDist := math.Abs(left.Y - spec.Y)
		rightDist := math.Abs(right.Y - spec.Y)
		if math.Abs(leftDist-rightDist) > sameWireTolerance {
			continue
		}

		leftEnd, ok := h.endpoint(left, resolve.Hints{PreferAsSource: true, DestinationX: right.X, HasDestination: true})
		if !ok {
			continue
		}
		rightEnd, ok := h.endpoint(right, resolve.Hints{SourceX: left.X, HasSourceX: true})
		if !ok {
			continue
		}

		if right.X-left.X > maxUnbackedGap && len(between) == 0 {
			continue
		}
		if leftEnd.id == rightEnd.id && leftEnd.pin != rightEnd.pin && !domain.IsSpliceID(leftEnd.id) {
			continue
		}
		if !domain.IsSpliceID(leftEnd.id) && spliceStrictlyBetween(sorted, left.X, right.X) {
			continue
		}
		if h.crossesModuleBoundary(leftEnd, rightEnd, left, right, pairY) {
			continue
		}
		if h.connectorsTooFar(leftEnd, rightEnd, band) {
			continue
		}

		conn := domain.Connection{
			FromID:    leftEnd.id,
			FromPin:   leftEnd.pin,
			ToID:      rightEnd.id,
			ToPin:     rightEnd.pin,
			WireDM:    spec.Diameter,
			WireColor: spec.Color,
		}
		key := makePairKey(leftEnd.id, leftEnd.pin, left, rightEnd.id, rightEnd.pin, right)
		if idx, dup := seen[key]; dup {
			// Same pair seen from another band: a spec that sits
			// between the endpoints beats one attributed by Y only.
			if len(between) > 0 {
				(*connections)[idx] = conn
			}
			continue
		}
		seen[key] = len(*connections)
		*connections = append(*connections, conn)
	}
}

type resolvedEnd struct {
	id, pin      string
	connX, connY float64
}

// endpoint resolves a cluster point to its identity: splices and grounds
// are endpoints themselves, pins resolve through the connector above.
func (h *Horizontal) endpoint(p domain.Token, hints resolve.Hints) (resolvedEnd, bool) {
	switch p.Kind {
	case domain.KindSplice, domain.KindGround:
		return resolvedEnd{id: p.Content, connX: p.X, connY: p.Y}, true
	default:
		c, ok := h.res.Resolve(p.X, p.Y, hints)
		if !ok {
			return resolvedEnd{}, false
		}
		return resolvedEnd{id: c.ID, pin: p.Content, connX: c.X, connY: c.Y}, true
	}
}

// crossesModuleBoundary rejects splice pairs with a foreign connector label
// drawn between them on the same level. A junction pair label is allowed
// through, since both faces share the pins.
func (h *Horizontal) crossesModuleBoundary(l, r resolvedEnd, left, right domain.Token, pairY float64) bool {
	if !domain.IsSpliceID(l.id) && !domain.IsSpliceID(r.id) {
		return false
	}
	own := map[string]bool{}
	if !domain.IsSpliceID(l.id) {
		own[l.id] = true
	}
	if !domain.IsSpliceID(r.id) {
		own[r.id] = true
	}
	for _, kind := range []domain.TokenKind{domain.KindConnector, domain.KindJunction} {
		for _, t := range h.ix.OfKind(kind) {
			if own[t.Content] || t.X <= left.X || t.X >= right.X || math.Abs(t.Y-pairY) >= boundaryLabelWindow {
				continue
			}
			if domain.IsJunctionPair(t.Content, l.id) || domain.IsJunctionPair(t.Content, r.id) {
				continue
			}
			return true
		}
	}
	return false
}

// connectorsTooFar rejects pin-to-pin pairs whose owning connectors are more
// than maxConnectorSpan apart with no spec bridging them; those pins belong
// to separate modules that merely share a row.
func (h *Horizontal) connectorsTooFar(l, r resolvedEnd, band []domain.WireSpec) bool {
	if domain.IsSpliceID(l.id) || domain.IsSpliceID(r.id) || l.id == r.id {
		return false
	}
	if math.Abs(r.connX-l.connX) <= maxConnectorSpan {
		return false
	}
	lo, hi := math.Min(l.connX, r.connX), math.Max(l.connX, r.connX)
	return len(specsBetween(band, lo, hi)) == 0
}

func spliceStrictlyBetween(points []domain.Token, x1, x2 float64) bool {
	for _, p := range points {
		if p.Kind == domain.KindSplice && x1 < p.X && p.X < x2 {
			return true
		}
	}
	return false
}

func specsBetween(band []domain.WireSpec, x1, x2 float64) []domain.WireSpec {
	var out []domain.WireSpec
	for _, s := range band {
		if x1 < s.X && s.X < x2 {
			out = append(out, s)
		}
	}
	return out
}

func anySpecNearX(band []domain.WireSpec, x, tol float64) bool {
	for _, s := range band {
		if math.Abs(s.X-x) < tol {
			return true
		}
	}
	return false
}

func nearestInY(specs []domain.WireSpec, y float64) domain.WireSpec {
	best := specs[0]
	bestDist := math.Abs(best.Y - y)
	for _, s := range specs[1:] {
		if d := math.Abs(s.Y - y); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}
