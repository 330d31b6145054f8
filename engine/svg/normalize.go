package svg

import (
	"math"
	"regexp"
	"strings"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

// snapDistance is how far a splice label may sit from the dot that marks its
// electrical position. Labels are typically offset a few units; 35 covers
// all calibrated diagrams without capturing a neighbouring dot.
const snapDistance = 35

// Normalize prepares a parsed document for extraction: splice labels are
// snapped to their dot positions, unlabeled dots get generated IDs, and
// shielded-pair connector labels are merged. The token list is rebuilt; the
// input document is not modified.
func Normalize(doc *Document, gen *domain.IDGenerator) []domain.Token {
	tokens := snapSpliceLabels(doc.Tokens, doc.SpliceDots)
	tokens = labelOrphanDots(tokens, doc.SpliceDots, gen)
	return mergeShieldedPairs(tokens)
}

// WireSpecs extracts the wire specification tokens from the token list.
func WireSpecs(tokens []domain.Token) []domain.WireSpec {
	var specs []domain.WireSpec
	for _, t := range tokens {
		if t.Kind != domain.KindWireSpec {
			continue
		}
		dm, color, ok := domain.ParseWireSpec(t.Content)
		if !ok {
			continue
		}
		specs = append(specs, domain.WireSpec{Diameter: dm, Color: color, X: t.X, Y: t.Y})
	}
	return specs
}

// snapSpliceLabels moves each SP* label to its nearest dot. The dot is the
// actual connection point; the label is only annotation.
func snapSpliceLabels(tokens []domain.Token, dots []domain.Point) []domain.Token {
	out := make([]domain.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind != domain.KindSplice {
			out = append(out, t)
			continue
		}
		best, bestDist := domain.Point{}, math.Inf(1)
		for _, d := range dots {
			if dist := math.Hypot(d.X-t.X, d.Y-t.Y); dist < bestDist {
				best, bestDist = d, dist
			}
		}
		if bestDist < snapDistance {
			t.X, t.Y = best.X, best.Y
		}
		out = append(out, t)
	}
	return out
}

// labelOrphanDots appends generated splice tokens for dots with no label
// within snapDistance.
func labelOrphanDots(tokens []domain.Token, dots []domain.Point, gen *domain.IDGenerator) []domain.Token {
	var labeled []domain.Point
	for _, t := range tokens {
		if t.Kind == domain.KindSplice {
			labeled = append(labeled, domain.Point{X: t.X, Y: t.Y})
		}
	}

	out := tokens
	for _, d := range dots {
		orphan := true
		for _, l := range labeled {
			if math.Hypot(d.X-l.X, d.Y-l.Y) < snapDistance {
				orphan = false
				break
			}
		}
		if orphan {
			out = append(out, domain.NewToken(gen.SpliceID(d.X, d.Y), d.X, d.Y))
		}
	}
	return out
}

var optionLabelRe = regexp.MustCompile(`^\([A-Z]+[+-]\)$`)

// mergeShieldedPairs folds option labels like "(XR-)" into the connector to
// their left, then combines vertically stacked XR-/XR+ connectors into one
// multi-line token at the averaged X. Shielded pairs are drawn as two
// stacked connectors that share pins; treating them as one label keeps the
// resolver's between-in-X logic honest.
func mergeShieldedPairs(tokens []domain.Token) []domain.Token {
	merged := mergeOptionLabels(tokens)

	consumed := make([]bool, len(merged))
	var out []domain.Token
	for i, t := range merged {
		if consumed[i] {
			continue
		}
		if !isShieldOption(t.Content) {
			out = append(out, t)
			consumed[i] = true
			continue
		}

		paired := false
		for j := i + 1; j < len(merged); j++ {
			if consumed[j] || !isShieldOption(merged[j].Content) {
				continue
			}
			o := merged[j]
			xDiff, yDiff := math.Abs(o.X-t.X), math.Abs(o.Y-t.Y)
			if xDiff >= 30 || yDiff <= 5 || yDiff >= 20 {
				continue
			}
			minus, plus := t, o
			if strings.Contains(o.Content, "(XR-)") {
				minus, plus = o, t
			}
			if !strings.Contains(minus.Content, "(XR-)") || !strings.Contains(plus.Content, "(XR+)") {
				continue
			}
			pair := domain.NewToken(minus.Content+"\n"+plus.Content, (t.X+o.X)/2, minus.Y)
			out = append(out, pair)
			consumed[i], consumed[j] = true, true
			paired = true
			break
		}
		if !paired {
			out = append(out, t)
			consumed[i] = true
		}
	}
	return out
}

func mergeOptionLabels(tokens []domain.Token) []domain.Token {
	consumed := make([]bool, len(tokens))
	var out []domain.Token
	for i, t := range tokens {
		if consumed[i] {
			continue
		}
		if t.Kind != domain.KindConnector && t.Kind != domain.KindJunction {
			if !optionLabelRe.MatchString(t.Content) {
				out = append(out, t)
			}
			consumed[i] = true
			continue
		}
		// Look for an option label just to the right on the same line.
		mergedAny := false
		for j, o := range tokens {
			if j == i || consumed[j] || !optionLabelRe.MatchString(o.Content) {
				continue
			}
			if o.X > t.X && o.X-t.X < 30 && math.Abs(o.Y-t.Y) < 3 {
				out = append(out, domain.NewToken(t.Content+" "+o.Content, t.X, t.Y))
				consumed[i], consumed[j] = true, true
				mergedAny = true
				break
			}
		}
		if !mergedAny {
			out = append(out, t)
			consumed[i] = true
		}
	}
	return out
}

func isShieldOption(content string) bool {
	return strings.Contains(content, " (XR-)") || strings.Contains(content, " (XR+)")
}
