package extract

import (
	"math"

	"github.com/WessleyAI/wiretrace/engine/domain"
	"github.com/WessleyAI/wiretrace/engine/index"
	"github.com/WessleyAI/wiretrace/engine/resolve"
)

// Ground resolves arrow-terminated ground connections. Each ground arrow's
// anchor point is matched to nearby ground labels, then to the pin whose
// owning connector label sits closest to the ground label.
type Ground struct {
	ix      *index.Index
	res     *resolve.Resolver
	specs   []domain.WireSpec
	anchors []domain.Point

	// claimed holds pins already bound to a spec-carrying horizontal
	// wire; those pins are not ground returns.
	claimed map[[2]string]bool
}

func NewGround(ix *index.Index, res *resolve.Resolver, specs []domain.WireSpec, anchors []domain.Point, horizontal []domain.Connection) *Ground {
	g := &Ground{
		ix:      ix,
		res:     res,
		specs:   specs,
		anchors: anchors,
		claimed: make(map[[2]string]bool),
	}
	for _, c := range horizontal {
		if c.WireDM == "" {
			continue
		}
		g.claimed[[2]string{c.FromID, c.FromPin}] = true
		if c.ToPin != "" {
			g.claimed[[2]string{c.ToID, c.ToPin}] = true
		}
	}
	return g
}

type groundPin struct {
	x, y      float64
	connector string
	pin       string
	// labelDist is the X distance from the owning connector label to the
	// ground label; ties between shared pins break on it.
	labelDist float64
	hasLabel  bool
}

// Extract returns the ground connections.
func (g *Ground) Extract() []domain.Connection {
	var connections []domain.Connection
	for _, anchor := range g.anchors {
		for _, ground := range g.groundsNear(anchor) {
			if conn, ok := g.connect(anchor, ground); ok {
				connections = append(connections, conn)
			}
		}
	}
	return dedupePreferSpec(connections)
}

// groundsNear matches ground labels to an arrow anchor. Labels can sit
// between stacked arrows, hence the asymmetric window.
func (g *Ground) groundsNear(anchor domain.Point) []domain.Token {
	var out []domain.Token
	for _, t := range g.ix.OfKind(domain.KindGround) {
		if math.Abs(t.Y-anchor.Y) < groundLabelYWindow && math.Abs(t.X-anchor.X) < groundWindow {
			out = append(out, t)
		}
	}
	return out
}

func (g *Ground) connect(anchor domain.Point, ground domain.Token) (domain.Connection, bool) {
	var candidates []groundPin
	for _, t := range g.ix.OfKind(domain.KindPin) {
		if math.Abs(t.Y-anchor.Y) >= groundPinYWindow || math.Abs(t.X-anchor.X) >= groundWindow {
			continue
		}
		id, ok := g.res.ResolveForGround(t.X, t.Y)
		if !ok {
			continue
		}
		gp := groundPin{x: t.X, y: t.Y, connector: id, pin: t.Content}
		if label, ok := g.labelPosition(id); ok {
			gp.labelDist = math.Abs(label.X - ground.X)
			gp.hasLabel = true
		}
		candidates = append(candidates, gp)
	}
	if len(candidates) == 0 {
		return domain.Connection{}, false
	}

	// Only pins in the arrow's own column are ground candidates.
	var near []groundPin
	for _, p := range candidates {
		if math.Abs(p.x-anchor.X) < groundColumnWindow {
			near = append(near, p)
		}
	}
	if len(near) == 0 {
		return domain.Connection{}, false
	}

	var labeled []groundPin
	for _, p := range near {
		if p.hasLabel {
			labeled = append(labeled, p)
		}
	}

	if len(labeled) == 0 {
		// No connector labels found; fall back to the pin closest to the
		// arrow.
		best := near[0]
		for _, p := range near[1:] {
			if math.Abs(p.x-anchor.X) < math.Abs(best.x-anchor.X) {
				best = p
			}
		}
		if domain.IsSpliceID(best.connector) {
			return domain.Connection{}, false
		}
		return g.build(best, ground), true
	}

	best := labeled[0]
	for _, p := range labeled[1:] {
		if p.labelDist < best.labelDist {
			best = p
		}
	}
	if g.claimed[[2]string{best.connector, best.pin}] {
		return domain.Connection{}, false
	}

	unique := make(map[string]bool)
	for _, p := range labeled {
		unique[p.connector] = true
	}
	// With competing connectors the winner must still be plausibly close
	// to the ground label.
	if len(unique) > 1 && best.labelDist >= labelPlausibleDist {
		return domain.Connection{}, false
	}
	return g.build(best, ground), true
}

func (g *Ground) build(p groundPin, ground domain.Token) domain.Connection {
	dm, color := g.wireSpec(p.x, p.y, ground.X, ground.Y)
	return domain.Connection{
		FromID:    p.connector,
		FromPin:   p.pin,
		ToID:      ground.Content,
		WireDM:    dm,
		WireColor: color,
	}
}

func (g *Ground) labelPosition(id string) (domain.Point, bool) {
	for _, kind := range []domain.TokenKind{domain.KindConnector, domain.KindJunction, domain.KindGround} {
		for _, t := range g.ix.OfKind(kind) {
			if t.Content == id {
				return domain.Point{X: t.X, Y: t.Y}, true
			}
		}
	}
	return domain.Point{}, false
}

// wireSpec attributes a spec to the horizontal ground run: between pin and
// ground in X, drawn above the run, vertical proximity weighted double.
func (g *Ground) wireSpec(pinX, pinY, groundX, groundY float64) (string, string) {
	xMin, xMax := math.Min(pinX, groundX), math.Max(pinX, groundX)

	bestDist := math.Inf(1)
	var best *domain.WireSpec
	for i := range g.specs {
		s := g.specs[i]
		if !(xMin < s.X && s.X < xMax) {
			continue
		}
		yDist := s.Y - groundY
		if yDist <= -specAboveReach || yDist >= 0 {
			continue
		}
		d := math.Hypot(math.Abs(s.X-pinX), yDist*specYWeight)
		if d < bestDist {
			bestDist = d
			best = &g.specs[i]
		}
	}
	if best == nil || bestDist >= specMaxDist {
		return "", ""
	}
	return best.Diameter, best.Color
}
