// Package resolve maps pin tokens to their owning connector labels.
//
// A pin number by itself identifies nothing: ownership is encoded purely by
// the connector label drawn above the pin column. Resolution is a proximity
// search with directional tie-breaks for mirrored junction pairs, where
// picking the wrong side of the pair yields a structurally valid but
// electrically wrong edge.
package resolve

import (
	"math"
	"sort"
	"strings"

	"github.com/WessleyAI/wiretrace/engine/domain"
	"github.com/WessleyAI/wiretrace/engine/index"
)

// Config carries the calibrated search tolerances. The values were tuned
// against production diagrams; change them only with a corpus to re-tune
// against.
type Config struct {
	// ConnectorXTol is the horizontal window for ordinary connector labels.
	ConnectorXTol float64
	// JunctionXTol is the wider horizontal window for junction labels,
	// which sit further from the shared pins they own.
	JunctionXTol float64
	// MinVerticalGap excludes labels on the pin's own row; a connector
	// must sit strictly above its pins.
	MinVerticalGap float64
	// BetweenMaxYGap bounds how far above the pin a label may be and
	// still win the "between source and pin" prioritization.
	BetweenMaxYGap float64
	// JunctionHub names the harness hub used in junction naming: the
	// destination side of a pair reads *2<hub>, the source side <hub>2*.
	JunctionHub string
}

func DefaultConfig() Config {
	return Config{
		ConnectorXTol:  50,
		JunctionXTol:   100,
		MinVerticalGap: 5,
		BetweenMaxYGap: 60,
		JunctionHub:    "FL",
	}
}

// Hints carries the directional context a caller already knows about the
// wire being resolved. Zero value means "no context".
type Hints struct {
	// PreferAsSource marks the query as resolving the source end.
	PreferAsSource bool
	// SourceX is the known X of the other (source) end.
	SourceX    float64
	HasSourceX bool
	// DestinationX is the known X of the other (destination) end.
	DestinationX   float64
	HasDestination bool
}

// Candidate is one connector label found above a pin.
type Candidate struct {
	ID       string
	X, Y     float64
	YDist    float64
	Distance float64
}

type Resolver struct {
	ix  *index.Index
	cfg Config
}

func New(ix *index.Index, cfg Config) *Resolver {
	return &Resolver{ix: ix, cfg: cfg}
}

// Resolve finds the connector owning the pin at (pinX, pinY). Returns false
// when no label sits within tolerance, which excludes the pin from the
// candidate connection rather than failing the run.
func (r *Resolver) Resolve(pinX, pinY float64, h Hints) (Candidate, bool) {
	cands := r.candidatesAbove(pinX, pinY, false)
	if len(cands) == 0 {
		return Candidate{}, false
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Distance < cands[j].Distance
	})

	// Shared pins can have several connectors above them; a label lying
	// between the wire's two ends is the one the wire actually reaches,
	// as long as it is reasonably close vertically.
	if h.HasSourceX && !h.PreferAsSource {
		var between, rest []Candidate
		for _, c := range cands {
			if strictlyBetween(c.X, h.SourceX, pinX) && c.YDist < r.cfg.BetweenMaxYGap {
				between = append(between, c)
			} else {
				rest = append(rest, c)
			}
		}
		if len(between) > 0 {
			cands = append(between, rest...)
		}
	}

	if a, b, ok := junctionPair(cands); ok {
		return r.pickJunction(a, b, pinX, h), true
	}
	return cands[0], true
}

// pickJunction disambiguates a mirrored junction pair. The rules form a
// decision table keyed by which directional hints the caller supplied.
func (r *Resolver) pickJunction(a, b Candidate, pinX float64, h Hints) Candidate {
	switch {
	case h.HasDestination:
		// Resolving a source with a known destination: the source-side
		// label sits nearer the destination the wire heads toward.
		if math.Abs(a.X-h.DestinationX) <= math.Abs(b.X-h.DestinationX) {
			return a
		}
		return b

	case h.HasSourceX && !h.PreferAsSource:
		aBetween := strictlyBetween(a.X, h.SourceX, pinX)
		bBetween := strictlyBetween(b.X, h.SourceX, pinX)
		switch {
		case aBetween && !bBetween:
			return a
		case bBetween && !aBetween:
			return b
		default:
			return r.preferNaming(a, b, false)
		}

	default:
		return r.preferNaming(a, b, h.PreferAsSource)
	}
}

// preferNaming applies the hub naming convention: the destination side of a
// junction pair is written *2<hub>, the source side <hub>2*.
func (r *Resolver) preferNaming(a, b Candidate, asSource bool) Candidate {
	var want func(string) bool
	if asSource {
		prefix := r.cfg.JunctionHub + "2"
		want = func(id string) bool { return strings.HasPrefix(id, prefix) }
	} else {
		suffix := "2" + r.cfg.JunctionHub
		want = func(id string) bool { return strings.HasSuffix(id, suffix) }
	}
	if want(a.ID) {
		return a
	}
	if want(b.ID) {
		return b
	}
	return a
}

// ResolveForGround finds the connector above a pin for a ground return,
// preferring junction variants that route into the hub. Ground returns
// conventionally terminate at the hub side of a junction even when another
// label is geometrically closer.
func (r *Resolver) ResolveForGround(pinX, pinY float64) (string, bool) {
	cands := r.candidatesAbove(pinX, pinY, true)
	if len(cands) == 0 {
		return "", false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].YDist < cands[j].YDist
	})
	suffix := "2" + r.cfg.JunctionHub
	for _, c := range cands {
		if strings.HasSuffix(c.ID, suffix) {
			return c.ID, true
		}
	}
	return cands[0].ID, true
}

// AllAbove lists every connector candidate above a pin, closest first in Y.
// Callers use it to pick an alternative when the primary candidate is
// already claimed by a conflicting wire.
func (r *Resolver) AllAbove(pinX, pinY float64) []Candidate {
	cands := r.candidatesAbove(pinX, pinY, true)
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].YDist < cands[j].YDist
	})
	return cands
}

// candidatesAbove collects connector, junction and ground labels above the
// pin within the kind-appropriate horizontal window. hubTol widens the
// window for any hub-related junction name, matching ground-return layout.
func (r *Resolver) candidatesAbove(pinX, pinY float64, hubTol bool) []Candidate {
	var out []Candidate
	for _, kind := range []domain.TokenKind{domain.KindConnector, domain.KindJunction, domain.KindGround} {
		for _, t := range r.ix.OfKind(kind) {
			yDist := pinY - t.Y
			if yDist <= r.cfg.MinVerticalGap {
				continue
			}
			tol := r.cfg.ConnectorXTol
			if hubTol {
				if strings.Contains(t.Content, "2"+r.cfg.JunctionHub) || strings.Contains(t.Content, r.cfg.JunctionHub+"2") {
					tol = r.cfg.JunctionXTol
				}
			} else if kind == domain.KindJunction {
				tol = r.cfg.JunctionXTol
			}
			xDist := math.Abs(t.X - pinX)
			if xDist >= tol {
				continue
			}
			out = append(out, Candidate{
				ID:       t.Content,
				X:        t.X,
				Y:        t.Y,
				YDist:    yDist,
				Distance: math.Hypot(xDist, yDist),
			})
		}
	}
	return out
}

// NearestConnectionPoint finds the pin, splice or ground token nearest to a
// target coordinate, within maxDistance. Pin tokens are resolved to their
// owning connector; an unresolvable pin is skipped. Used where polyline
// endpoints do not land exactly on a token.
func (r *Resolver) NearestConnectionPoint(targetX, targetY, maxDistance float64) (domain.ConnectionPoint, bool) {
	var nearest domain.ConnectionPoint
	found := false
	best := maxDistance

	for _, t := range r.ix.All() {
		switch t.Kind {
		case domain.KindPin, domain.KindSplice, domain.KindGround:
		default:
			continue
		}
		dist := math.Hypot(t.X-targetX, t.Y-targetY)
		if dist >= best {
			continue
		}
		switch t.Kind {
		case domain.KindSplice, domain.KindGround:
			nearest = domain.ConnectionPoint{ConnectorID: t.Content, X: t.X, Y: t.Y}
		case domain.KindPin:
			c, ok := r.Resolve(t.X, t.Y, Hints{})
			if !ok {
				continue
			}
			nearest = domain.ConnectionPoint{ConnectorID: c.ID, Pin: t.Content, X: t.X, Y: t.Y}
		}
		best = dist
		found = true
	}
	return nearest, found
}

func strictlyBetween(x, a, b float64) bool {
	if a < b {
		return a < x && x < b
	}
	return b < x && x < a
}

func junctionPair(cands []Candidate) (Candidate, Candidate, bool) {
	n := len(cands)
	if n > 3 {
		n = 3
	}
	top := cands[:n]
	for i, c := range top {
		if !domain.IsJunctionName(c.ID) {
			continue
		}
		mirror := domain.MirrorJunction(c.ID)
		for j := i + 1; j < n; j++ {
			if top[j].ID == mirror {
				return c, top[j], true
			}
		}
	}
	return Candidate{}, Candidate{}, false
}
