package extract

import (
	"math"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

// segment is one straight piece of a routed path.
type segment struct {
	X1, Y1, X2, Y2 float64
}

func (s segment) length() float64 { return math.Abs(s.X2 - s.X1) }

func horizontalSegments(points []domain.Point) []segment {
	var out []segment
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		if math.Abs(b.Y-a.Y) < axisTolerance {
			out = append(out, segment{a.X, a.Y, b.X, b.Y})
		}
	}
	return out
}

// wireSpecNearPath attributes a spec to a routed path. Specs are drawn above
// the wire's initial horizontal segment, at its point of origin, so the
// search anchors on the horizontal segment nearest the source endpoint and
// looks for a spec within that segment's X span, above it, weighting
// vertical proximity double. Returns empty strings when nothing plausible
// is found.
func wireSpecNearPath(specs []domain.WireSpec, points []domain.Point, source domain.Point) (dm, color string) {
	if len(specs) == 0 || len(points) < 2 {
		return "", ""
	}

	segs := horizontalSegments(points)
	var anchor []domain.Point
	if len(segs) > 0 {
		best := segs[0]
		bestDist := math.Inf(1)
		for _, s := range segs {
			midX, midY := (s.X1+s.X2)/2, (s.Y1+s.Y2)/2
			if d := math.Hypot(midX-source.X, midY-source.Y); d < bestDist {
				best, bestDist = s, d
			}
		}
		anchor = []domain.Point{{X: best.X1, Y: best.Y1}, {X: best.X2, Y: best.Y2}}
	} else {
		n := len(points)
		if n > 3 {
			n = 3
		}
		anchor = points[:n]
	}

	xMin, xMax := math.Inf(1), math.Inf(-1)
	if len(anchor) >= 2 {
		for _, p := range anchor {
			xMin = math.Min(xMin, p.X)
			xMax = math.Max(xMax, p.X)
		}
	}

	bestDist := math.Inf(1)
	var best *domain.WireSpec
	for i := range specs {
		s := specs[i]
		if len(anchor) >= 2 && !(xMin < s.X && s.X < xMax) {
			continue
		}
		for _, p := range anchor {
			yDist := s.Y - p.Y
			if yDist <= -specAboveReach || yDist >= 0 {
				continue
			}
			d := math.Hypot(s.X-p.X, yDist*specYWeight)
			if d < bestDist {
				bestDist = d
				best = &specs[i]
			}
		}
	}
	if best == nil || bestDist >= specMaxDist {
		return "", ""
	}
	return best.Diameter, best.Color
}

// wireSpecForRectangle attributes one spec to a whole rectangular polyline
// using its longest horizontal segment; the entry stub is short and the
// main run carries the label. Equal-length segments are broken by which has
// a spec closest above it.
func wireSpecForRectangle(specs []domain.WireSpec, points []domain.Point) (dm, color string, ok bool) {
	if len(specs) == 0 || len(points) < 2 {
		return "", "", false
	}
	segs := horizontalSegments(points)
	if len(segs) == 0 {
		return "", "", false
	}

	maxLen := 0.0
	for _, s := range segs {
		maxLen = math.Max(maxLen, s.length())
	}

	bestDist := math.Inf(1)
	var best *domain.WireSpec
	for _, s := range segs {
		if s.length() != maxLen {
			continue
		}
		xMin, xMax := math.Min(s.X1, s.X2), math.Max(s.X1, s.X2)
		segY := (s.Y1 + s.Y2) / 2
		for i := range specs {
			sp := specs[i]
			if math.Abs(sp.Y-segY) >= rectSpecYWindow {
				continue
			}
			if sp.X <= xMin-rectSpecXSlack || sp.X >= xMax+rectSpecXSlack {
				continue
			}
			if d := math.Abs(sp.Y - segY); d < bestDist {
				bestDist = d
				best = &specs[i]
			}
		}
	}
	if best == nil {
		return "", "", false
	}
	return best.Diameter, best.Color, true
}
