package extract

import (
	"math"
	"sort"

	"github.com/WessleyAI/wiretrace/engine/domain"
	"github.com/WessleyAI/wiretrace/engine/index"
	"github.com/WessleyAI/wiretrace/engine/resolve"
)

// Routing traces multi-segment routed wires: L-shaped and staircase
// polylines, rectangular connector-to-connector runs, and the white routing
// paths. Horizontal wire connections take precedence over anything this
// extractor proposes for the same pins.
type Routing struct {
	ix    *index.Index
	res   *resolve.Resolver
	specs []domain.WireSpec

	polylines [][]domain.Point
	paths     [][]domain.Point

	bounds    index.Bounds
	hasBounds bool

	horizontal []domain.Connection
	claimed    map[[2]string]bool
	// passthrough holds splices with horizontal wires on both sides;
	// routing between two of those is always a false positive.
	passthrough map[string]bool
}

func NewRouting(ix *index.Index, res *resolve.Resolver, specs []domain.WireSpec, polylines, paths [][]domain.Point, horizontal []domain.Connection) *Routing {
	r := &Routing{
		ix:          ix,
		res:         res,
		specs:       specs,
		polylines:   polylines,
		paths:       paths,
		horizontal:  horizontal,
		claimed:     make(map[[2]string]bool),
		passthrough: make(map[string]bool),
	}
	r.bounds, r.hasBounds = ix.ComponentBounds(boundsPadding)

	in := make(map[string]int)
	out := make(map[string]int)
	for _, c := range horizontal {
		if c.FromPin != "" && !domain.IsSpliceID(c.FromID) {
			r.claimed[[2]string{c.FromID, c.FromPin}] = true
		}
		if c.ToPin != "" && !domain.IsSpliceID(c.ToID) {
			r.claimed[[2]string{c.ToID, c.ToPin}] = true
		}
		if domain.IsSpliceID(c.FromID) {
			out[c.FromID]++
		}
		if domain.IsSpliceID(c.ToID) {
			in[c.ToID]++
		}
	}
	for id := range in {
		if in[id] >= 1 && out[id] >= 1 {
			r.passthrough[id] = true
		}
	}
	return r
}

// Extract returns the routed connections from all polylines and paths.
func (r *Routing) Extract() []domain.Connection {
	var connections []domain.Connection
	for _, line := range r.polylines {
		connections = append(connections, r.extractPolyline(line)...)
	}
	for _, path := range r.paths {
		connections = append(connections, r.extractPath(path)...)
	}
	return dedupePreferSpec(connections)
}

func (r *Routing) extractPolyline(points []domain.Point) []domain.Connection {
	if len(points) < 2 {
		return nil
	}
	start, end := points[0], points[len(points)-1]

	// A polyline with both endpoints outside the component bounding box is
	// external bus routing around the diagram perimeter. Intermediate
	// points may legitimately leave the box.
	if r.hasBounds && !r.bounds.Contains(start.X, start.Y) && !r.bounds.Contains(end.X, end.Y) {
		return nil
	}

	if isRectangular(points) {
		return r.extractRectangle(points)
	}

	ep1, ok1 := r.res.NearestConnectionPoint(start.X, start.Y, endpointRadius)
	ep2, ok2 := r.res.NearestConnectionPoint(end.X, end.Y, endpointRadius)
	if !ok1 || !ok2 {
		return nil
	}
	// Ground arrows get their own extractor.
	if isGroundID(ep1.ConnectorID) || isGroundID(ep2.ConnectorID) {
		return nil
	}

	if len(points) > 2 {
		if chain := r.spliceChain(points, ep1, ep2); chain != nil {
			return chain
		}
	}

	// Two-endpoint polyline: a splice end is always the destination, else
	// the lower (larger Y) end is the source.
	var src, dst domain.ConnectionPoint
	var srcPoint domain.Point
	switch {
	case ep1.IsSplice() && !ep2.IsSplice():
		src, dst, srcPoint = ep2, ep1, end
	case ep2.IsSplice() && !ep1.IsSplice():
		src, dst, srcPoint = ep1, ep2, start
	case start.Y > end.Y:
		src, dst, srcPoint = ep1, ep2, start
	default:
		src, dst, srcPoint = ep2, ep1, end
	}

	if src.Same(dst) {
		return nil
	}
	if r.existsHorizontally(src, dst) {
		return nil
	}
	if r.passthrough[src.ConnectorID] && r.passthrough[dst.ConnectorID] {
		return nil
	}
	if ep1.IsSplice() && ep2.IsSplice() &&
		math.Hypot(ep1.X-ep2.X, ep1.Y-ep2.Y) < spliceDistanceFloor {
		return nil
	}

	dm, color := wireSpecNearPath(r.specs, points, srcPoint)
	return []domain.Connection{{
		FromID: src.ConnectorID, FromPin: src.Pin,
		ToID: dst.ConnectorID, ToPin: dst.Pin,
		WireDM: dm, WireColor: color,
	}}
}

// spliceChain handles multi-segment polylines with intermediate splices on
// their segments. Returns nil when the polyline has no intermediates, so
// the plain two-endpoint logic applies.
func (r *Routing) spliceChain(points []domain.Point, ep1, ep2 domain.ConnectionPoint) []domain.Connection {
	intermediates := r.splicesOnSegments(points, ep1, ep2)
	if len(intermediates) == 0 {
		// Fall back to vertices, with a tight radius: a long polyline can
		// pass near splices that are not part of the path.
		for _, p := range points[1 : len(points)-1] {
			cp, ok := r.res.NearestConnectionPoint(p.X, p.Y, spliceSnapRadius)
			if ok && cp.IsSplice() && !cp.Same(ep1) && !cp.Same(ep2) && !containsPoint(intermediates, cp) {
				intermediates = append(intermediates, cp)
			}
		}
	}
	if len(intermediates) == 0 {
		return nil
	}

	chain := append([]domain.ConnectionPoint{ep1}, intermediates...)
	chain = append(chain, ep2)

	// Order the chain along the path's dominant axis, not by distance from
	// an arbitrary endpoint.
	vertical := math.Abs(ep1.Y-ep2.Y) > math.Abs(ep1.X-ep2.X)
	sort.SliceStable(chain, func(i, j int) bool {
		if vertical {
			return chain[i].Y < chain[j].Y
		}
		return chain[i].X < chain[j].X
	})

	dm, color := wireSpecNearPath(r.specs, points, points[0])

	hasSplice := false
	for _, p := range chain {
		if p.IsSplice() {
			hasSplice = true
			break
		}
	}

	var out []domain.Connection
	if hasSplice {
		// Each pin joins its nearest splice in the chain; pins never
		// bridge to each other through a splice.
		for i, cur := range chain {
			if cur.IsSplice() {
				continue
			}
			var nearest *domain.ConnectionPoint
			best := math.Inf(1)
			for j := range chain {
				if i == j || !chain[j].IsSplice() {
					continue
				}
				if d := math.Hypot(cur.X-chain[j].X, cur.Y-chain[j].Y); d < best {
					best = d
					nearest = &chain[j]
				}
			}
			if nearest == nil || r.claimed[[2]string{cur.ConnectorID, cur.Pin}] {
				continue
			}
			out = append(out, domain.Connection{
				FromID: cur.ConnectorID, FromPin: cur.Pin,
				ToID: nearest.ConnectorID, ToPin: nearest.Pin,
				WireDM: dm, WireColor: color,
			})
		}
		var spliceIdx []int
		for i, p := range chain {
			if p.IsSplice() {
				spliceIdx = append(spliceIdx, i)
			}
		}
		for i := 0; i+1 < len(spliceIdx); i++ {
			from, to := chain[spliceIdx[i]], chain[spliceIdx[i+1]]
			if r.passthrough[from.ConnectorID] && r.passthrough[to.ConnectorID] {
				continue
			}
			out = append(out, domain.Connection{
				FromID: from.ConnectorID, FromPin: from.Pin,
				ToID: to.ConnectorID, ToPin: to.Pin,
				WireDM: dm, WireColor: color,
			})
		}
	} else {
		for i := 0; i+1 < len(chain); i++ {
			from, to := chain[i], chain[i+1]
			if from.Same(to) || from.ConnectorID == to.ConnectorID {
				continue
			}
			if from.IsSplice() && to.IsSplice() &&
				math.Hypot(from.X-to.X, from.Y-to.Y) < spliceDistanceFloor {
				continue
			}
			out = append(out, domain.Connection{
				FromID: from.ConnectorID, FromPin: from.Pin,
				ToID: to.ConnectorID, ToPin: to.Pin,
				WireDM: dm, WireColor: color,
			})
		}
	}
	return out
}

// splicesOnSegments finds splices lying on the polyline's segments proper,
// not merely near a vertex.
func (r *Routing) splicesOnSegments(points []domain.Point, ep1, ep2 domain.ConnectionPoint) []domain.ConnectionPoint {
	var out []domain.ConnectionPoint
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		for _, sp := range r.ix.OfKind(domain.KindSplice) {
			onSeg := false
			switch {
			case math.Abs(a.Y-b.Y) < axisTolerance: // horizontal
				onSeg = math.Abs(sp.Y-a.Y) < segmentWindow && math.Min(a.X, b.X) < sp.X && sp.X < math.Max(a.X, b.X)
			case math.Abs(a.X-b.X) < axisTolerance: // vertical
				onSeg = math.Abs(sp.X-a.X) < segmentWindow && math.Min(a.Y, b.Y) < sp.Y && sp.Y < math.Max(a.Y, b.Y)
			}
			if !onSeg {
				continue
			}
			cp, ok := r.res.NearestConnectionPoint(sp.X, sp.Y, spliceSnapRadius)
			if !ok || !cp.IsSplice() || cp.Same(ep1) || cp.Same(ep2) || containsPoint(out, cp) {
				continue
			}
			out = append(out, cp)
		}
	}
	return out
}

// extractRectangle resolves all four corners of a rectangular polyline and
// joins adjacent corners. These runs connect whole connectors, so the
// corner search radius is tight and one spec covers the whole shape.
func (r *Routing) extractRectangle(points []domain.Point) []domain.Connection {
	dm, color, hasSpec := wireSpecForRectangle(r.specs, points)

	var corners []domain.ConnectionPoint
	for _, p := range points {
		t, ok := r.nearestEndpointToken(p, cornerRadius)
		if !ok {
			continue
		}
		if t.Kind == domain.KindPin {
			c, ok := r.res.Resolve(t.X, t.Y, resolve.Hints{})
			if !ok {
				continue
			}
			id := c.ID
			// A pin already wired horizontally with a different spec
			// belongs to another connector above the shared column.
			if hasSpec {
				if prev, claimed := r.horizontalSpecFor(id, t.Content); claimed && prev != [2]string{dm, color} {
					if alt, ok := r.alternativeConnector(t, id); ok {
						id = alt
					}
				}
			}
			corners = append(corners, domain.ConnectionPoint{ConnectorID: id, Pin: t.Content, X: t.X, Y: t.Y})
		} else {
			corners = append(corners, domain.ConnectionPoint{ConnectorID: t.Content, X: t.X, Y: t.Y})
		}
	}

	var out []domain.Connection
	for i := 0; i+1 < len(corners); i++ {
		a, b := corners[i], corners[i+1]
		if a.Same(b) {
			continue
		}
		out = append(out, domain.Connection{
			FromID: a.ConnectorID, FromPin: a.Pin,
			ToID: b.ConnectorID, ToPin: b.Pin,
			WireDM: dm, WireColor: color,
		})
	}
	return out
}

func (r *Routing) nearestEndpointToken(p domain.Point, radius float64) (domain.Token, bool) {
	var best domain.Token
	bestDist := radius
	found := false
	for _, t := range r.ix.All() {
		switch t.Kind {
		case domain.KindPin, domain.KindSplice, domain.KindConnector, domain.KindJunction, domain.KindGround:
		default:
			continue
		}
		if d := math.Hypot(t.X-p.X, t.Y-p.Y); d < bestDist {
			best, bestDist, found = t, d, true
		}
	}
	return best, found
}

func (r *Routing) horizontalSpecFor(id, pin string) ([2]string, bool) {
	for _, c := range r.horizontal {
		if c.FromID == id && c.FromPin == pin {
			return [2]string{c.WireDM, c.WireColor}, true
		}
	}
	return [2]string{}, false
}

func (r *Routing) alternativeConnector(pin domain.Token, primary string) (string, bool) {
	for _, c := range r.res.AllAbove(pin.X, pin.Y) {
		if c.ID != primary {
			return c.ID, true
		}
	}
	return "", false
}

// extractPath walks a white routing path, collecting every connection point
// on its vertices and segments, then joins adjacent pairs along the path's
// dominant axis.
func (r *Routing) extractPath(points []domain.Point) []domain.Connection {
	if len(points) < 2 {
		return nil
	}

	var onPath []domain.ConnectionPoint
	add := func(cp domain.ConnectionPoint) {
		if isGroundID(cp.ConnectorID) || containsPoint(onPath, cp) {
			return
		}
		onPath = append(onPath, cp)
	}

	for i, p := range points {
		if cp, ok := r.res.NearestConnectionPoint(p.X, p.Y, endpointRadius); ok {
			add(cp)
		}
		if i+1 >= len(points) {
			continue
		}
		next := points[i+1]
		horizontal := math.Abs(p.Y-next.Y) < axisTolerance
		vertical := math.Abs(p.X-next.X) < axisTolerance
		for _, t := range r.ix.All() {
			if t.Kind != domain.KindPin && t.Kind != domain.KindSplice {
				continue
			}
			onSeg := false
			if horizontal {
				lo, hi := math.Min(p.X, next.X), math.Max(p.X, next.X)
				onSeg = math.Abs(t.Y-p.Y) < pathSegmentWindow && lo-segmentSlack < t.X && t.X < hi+segmentSlack
			} else if vertical {
				lo, hi := math.Min(p.Y, next.Y), math.Max(p.Y, next.Y)
				onSeg = math.Abs(t.X-p.X) < pathSegmentWindow && lo-segmentSlack < t.Y && t.Y < hi+segmentSlack
			}
			if !onSeg {
				continue
			}
			if cp, ok := r.res.NearestConnectionPoint(t.X, t.Y, spliceSnapRadius); ok {
				add(cp)
			}
		}
	}

	if len(onPath) < 2 {
		return nil
	}

	firstHorizontal := math.Abs(points[0].Y-points[1].Y) < math.Abs(points[0].X-points[1].X)
	sort.SliceStable(onPath, func(i, j int) bool {
		if firstHorizontal {
			return onPath[i].X < onPath[j].X
		}
		return onPath[i].Y < onPath[j].Y
	})

	dm, color := wireSpecNearPath(r.specs, points, domain.Point{X: onPath[0].X, Y: onPath[0].Y})

	var out []domain.Connection
	for i := 0; i+1 < len(onPath); i++ {
		cp1, cp2 := onPath[i], onPath[i+1]
		if cp1.Same(cp2) {
			continue
		}

		src, dst := cp1, cp2
		// A splice sitting at the end of the path is a destination; one in
		// the middle passes the signal along in path order.
		if cp1.IsSplice() && !cp2.IsSplice() && i == 0 {
			src, dst = cp2, cp1
		}

		if r.existsHorizontally(src, dst) {
			continue
		}
		if r.conflictsWithHorizontal(src, dst) {
			continue
		}
		if src.IsSplice() && dst.IsSplice() &&
			math.Hypot(src.X-dst.X, src.Y-dst.Y) < spliceDistanceFloor {
			continue
		}
		if !r.colorConsistent(src, dst, dm, color) {
			continue
		}

		out = append(out, domain.Connection{
			FromID: src.ConnectorID, FromPin: src.Pin,
			ToID: dst.ConnectorID, ToPin: dst.Pin,
			WireDM: dm, WireColor: color,
		})
	}
	return out
}

func (r *Routing) existsHorizontally(a, b domain.ConnectionPoint) bool {
	for _, c := range r.horizontal {
		if (c.FromID == a.ConnectorID && c.FromPin == a.Pin && c.ToID == b.ConnectorID && c.ToPin == b.Pin) ||
			(c.FromID == b.ConnectorID && c.FromPin == b.Pin && c.ToID == a.ConnectorID && c.ToPin == a.Pin) {
			return true
		}
	}
	return false
}

// conflictsWithHorizontal rejects a routed edge whose endpoints contradict
// a horizontal wire already binding the same pins to other connectors.
func (r *Routing) conflictsWithHorizontal(src, dst domain.ConnectionPoint) bool {
	for _, c := range r.horizontal {
		if !dst.IsSplice() && !domain.IsSpliceID(c.ToID) &&
			c.FromID == src.ConnectorID && c.FromPin == src.Pin &&
			c.ToPin == dst.Pin && c.ToID != dst.ConnectorID {
			return true
		}
		if !dst.IsSplice() && !domain.IsSpliceID(c.FromID) &&
			c.ToID == src.ConnectorID && c.ToPin == src.Pin &&
			c.FromPin == dst.Pin && c.FromID != dst.ConnectorID {
			return true
		}
		if !dst.IsSplice() && !src.IsSplice() {
			if !domain.IsSpliceID(c.FromID) &&
				c.ToID == dst.ConnectorID && c.ToPin == dst.Pin &&
				c.FromPin == src.Pin && c.FromID != src.ConnectorID {
				return true
			}
			if !domain.IsSpliceID(c.ToID) &&
				c.FromID == dst.ConnectorID && c.FromPin == dst.Pin &&
				c.ToPin == src.Pin && c.ToID != src.ConnectorID {
				return true
			}
		}
	}
	return false
}

// colorConsistent rejects a splice edge whose color disagrees with every
// color the splice already carries; such edges come from paths crossing
// unrelated connection points.
func (r *Routing) colorConsistent(src, dst domain.ConnectionPoint, dm, color string) bool {
	if dm == "" || color == "" {
		return true
	}
	var spliceID string
	switch {
	case src.IsSplice():
		spliceID = src.ConnectorID
	case dst.IsSplice():
		spliceID = dst.ConnectorID
	default:
		return true
	}
	seen := false
	for _, c := range r.horizontal {
		if c.WireColor == "" || (c.FromID != spliceID && c.ToID != spliceID) {
			continue
		}
		seen = true
		if c.WireColor == color {
			return true
		}
	}
	return !seen
}

func isRectangular(points []domain.Point) bool {
	return len(points) == 4 &&
		math.Abs(points[0].Y-points[1].Y) < axisTolerance &&
		math.Abs(points[1].X-points[2].X) < axisTolerance &&
		math.Abs(points[2].Y-points[3].Y) < axisTolerance
}

func isGroundID(id string) bool {
	return domain.Classify(id) == domain.KindGround
}

func containsPoint(list []domain.ConnectionPoint, cp domain.ConnectionPoint) bool {
	for _, p := range list {
		if p.Same(cp) {
			return true
		}
	}
	return false
}

// dedupePreferSpec removes duplicate keys within one extractor's output,
// keeping the variant that carries a wire spec.
func dedupePreferSpec(connections []domain.Connection) []domain.Connection {
	seen := make(map[domain.ConnectionKey]int)
	var out []domain.Connection
	for _, c := range connections {
		if c.IsSelfLoop() {
			continue
		}
		key := c.Key()
		if idx, ok := seen[key]; ok {
			if c.WireDM != "" && out[idx].WireDM == "" {
				out[idx] = c
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, c)
	}
	return out
}
