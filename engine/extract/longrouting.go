package extract

import (
	"math"
	"sort"
	"strings"

	"github.com/WessleyAI/wiretrace/engine/domain"
	"github.com/WessleyAI/wiretrace/engine/index"
)

// LongRouting infers long splice-to-splice runs drawn without traceable
// geometry. The evidence is conservation: a splice neither creates nor
// destroys conductors, so for each diameter+color its incoming count must
// equal its outgoing count. A splice with surplus incoming wires of some
// color needs an undiscovered outgoing edge to another splice carrying the
// same color.
type LongRouting struct {
	existing  []domain.Connection
	positions map[string]domain.Point
}

func NewLongRouting(existing []domain.Connection, ix *index.Index) *LongRouting {
	positions := make(map[string]domain.Point)
	for _, t := range ix.OfKind(domain.KindSplice) {
		positions[t.Content] = domain.Point{X: t.X, Y: t.Y}
	}
	return &LongRouting{existing: existing, positions: positions}
}

type flow struct {
	incoming, outgoing int
}

// analyzeFlow tallies per-splice per-wire-key edge counts from the
// already-resolved connections. Spec-less edges carry no color evidence.
func (l *LongRouting) analyzeFlow() map[string]map[string]flow {
	flows := make(map[string]map[string]flow)
	bump := func(splice, key string, in bool) {
		if flows[splice] == nil {
			flows[splice] = make(map[string]flow)
		}
		f := flows[splice][key]
		if in {
			f.incoming++
		} else {
			f.outgoing++
		}
		flows[splice][key] = f
	}
	for _, c := range l.existing {
		if c.WireDM == "" || c.WireColor == "" {
			continue
		}
		key := c.WireDM + "," + c.WireColor
		if domain.IsSpliceID(c.FromID) {
			bump(c.FromID, key, false)
		}
		if domain.IsSpliceID(c.ToID) {
			bump(c.ToID, key, true)
		}
	}
	return flows
}

// Extract returns the inferred long-routing connections.
func (l *LongRouting) Extract() []domain.Connection {
	flows := l.analyzeFlow()

	type need struct {
		splice string
		key    string
	}
	var needs []need
	for splice, byKey := range flows {
		for key, f := range byKey {
			if f.incoming > f.outgoing {
				needs = append(needs, need{splice, key})
			}
		}
	}
	// Map iteration order must not leak into the output.
	sort.Slice(needs, func(i, j int) bool {
		if needs[i].key != needs[j].key {
			return needs[i].key < needs[j].key
		}
		return needs[i].splice < needs[j].splice
	})

	destinations := make([]string, 0, len(flows))
	for splice := range flows {
		destinations = append(destinations, splice)
	}
	sort.Strings(destinations)

	var connections []domain.Connection
	seen := make(map[[2]string]bool)

	for _, n := range needs {
		if l.alreadyPaired(seen, n.splice) {
			continue
		}
		if l.minorityColor(flows[n.splice], n.key) {
			continue
		}

		bestDist := math.Inf(1)
		bestDest := ""
		for _, dest := range destinations {
			if dest == n.splice {
				continue
			}
			if _, carries := flows[dest][n.key]; !carries {
				continue
			}
			if seen[sortedPair(n.splice, dest)] || l.connectionExists(n.splice, dest) {
				continue
			}
			src, dst := l.positions[n.splice], l.positions[dest]
			dist := math.Hypot(dst.X-src.X, dst.Y-src.Y)
			// True long routing only: local pairs the geometric
			// extractors missed stay missed, and these wires are drawn
			// with a dominant vertical run.
			if dist <= spliceDistanceFloor || math.Abs(dst.Y-src.Y) <= longRoutingMinDrop {
				continue
			}
			if dist < bestDist {
				bestDist, bestDest = dist, dest
			}
		}
		if bestDest == "" {
			continue
		}

		seen[sortedPair(n.splice, bestDest)] = true
		dm, color, _ := strings.Cut(n.key, ",")
		connections = append(connections, domain.Connection{
			FromID:    n.splice,
			ToID:      bestDest,
			WireDM:    dm,
			WireColor: color,
		})
	}
	return dedupePreferSpec(connections)
}

// minorityColor guards against a single stray reading outweighing several
// consistent ones: with multiple colors at the splice, a color carrying at
// most one edge while another carries more is treated as noise.
func (l *LongRouting) minorityColor(byKey map[string]flow, key string) bool {
	if len(byKey) <= 1 {
		return false
	}
	maxCount, current := 0, 0
	for k, f := range byKey {
		total := f.incoming + f.outgoing
		if total > maxCount {
			maxCount = total
		}
		if k == key {
			current = total
		}
	}
	return current < maxCount && current <= 1
}

func (l *LongRouting) alreadyPaired(seen map[[2]string]bool, splice string) bool {
	for pair := range seen {
		if pair[0] == splice || pair[1] == splice {
			return true
		}
	}
	return false
}

func (l *LongRouting) connectionExists(a, b string) bool {
	for _, c := range l.existing {
		if (c.FromID == a && c.ToID == b) || (c.FromID == b && c.ToID == a) {
			return true
		}
	}
	return false
}

func sortedPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
