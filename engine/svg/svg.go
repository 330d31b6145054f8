// Package svg decodes the vector drawing of a circuit diagram into the
// positioned tokens and path geometry the inference engine consumes. It
// understands only the drawing conventions the engine needs: text elements
// positioned by matrix transforms, splice dots drawn as small unclassed
// bezier circles, and routing/ground primitives tagged by drawing-layer
// class. Anything it cannot parse is treated as absent, never as an error.
package svg

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

// Layers names the drawing-layer classes that carry each primitive role.
// Adobe Illustrator exports number these per document; the defaults match
// the harness diagram exports the engine was calibrated on.
type Layers struct {
	// RoutingPolyline tags multi-point routing arrows (L-shaped, staircase).
	RoutingPolyline string
	// GroundArrow tags ground-symbol arrow paths.
	GroundArrow string
	// WhiteRouting tags white routing wire paths walked point by point.
	WhiteRouting string
	// LShaped tags colored path classes that carry L-shaped routing; only
	// paths with a vertical command are kept, horizontal-only ones duplicate
	// the wire-spec evidence.
	LShaped []string
}

// DefaultLayers is the calibrated layer mapping.
func DefaultLayers() Layers {
	return Layers{
		RoutingPolyline: "st17",
		GroundArrow:     "st17",
		WhiteRouting:    "st1",
		LShaped:         []string{"st3", "st4"},
	}
}

// Document holds everything the engine needs from one diagram.
type Document struct {
	Tokens           []domain.Token
	SpliceDots       []domain.Point
	RoutingPolylines [][]domain.Point
	RoutingPaths     [][]domain.Point
	GroundArrows     []domain.Point
}

// Parse reads an SVG stream and extracts tokens and geometry for the given
// layer mapping. Unparseable primitives are skipped silently.
func Parse(r io.Reader, layers Layers) (*Document, error) {
	doc := &Document{}
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "text":
			transform := attr(start, "transform")
			content, err := collectText(dec, start)
			if err != nil {
				return nil, err
			}
			x, y, ok := transformOrigin(transform)
			if !ok || content == "" {
				continue
			}
			doc.Tokens = append(doc.Tokens, domain.NewToken(content, x, y))

		case "polyline":
			if attr(start, "class") != layers.RoutingPolyline {
				continue
			}
			pts := parsePolylinePoints(attr(start, "points"))
			if len(pts) >= 2 {
				doc.RoutingPolylines = append(doc.RoutingPolylines, pts)
			}

		case "path":
			d := strings.TrimSpace(attr(start, "d"))
			if d == "" {
				continue
			}
			cls := attr(start, "class")

			if cls == "" && looksLikeSpliceDot(d) {
				if p, ok := pathStart(d); ok {
					doc.SpliceDots = append(doc.SpliceDots, p)
				}
				continue
			}
			if cls == layers.GroundArrow {
				if p, ok := pathStart(d); ok {
					doc.GroundArrows = append(doc.GroundArrows, p)
				}
				continue
			}
			if cls == layers.WhiteRouting {
				if pts := PathPoints(d); len(pts) >= 2 {
					doc.RoutingPaths = append(doc.RoutingPaths, pts)
				}
				continue
			}
			for _, lc := range layers.LShaped {
				if cls != lc {
					continue
				}
				// Only L-shaped paths carry routing a wire spec does not
				// already describe.
				if !strings.ContainsAny(d, "vV") {
					break
				}
				if pts := PathPoints(d); pts != nil && len(pts) >= 2 {
					doc.RoutingPaths = append(doc.RoutingPaths, pts)
				}
				break
			}
		}
	}

	doc.RoutingPolylines = dedupePolylines(doc.RoutingPolylines)
	return doc, nil
}

// attr returns the named attribute value or "".
func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// collectText gathers all character data under a text element, including
// tspan children.
func collectText(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			b.Write(t)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// looksLikeSpliceDot recognises the small filled circles marking splice
// points: short unclassed paths built from several cubic bezier arcs.
func looksLikeSpliceDot(d string) bool {
	if len(d) > 200 {
		return false
	}
	return strings.Count(d, "c")+strings.Count(d, "C") >= 3
}

// dedupePolylines drops near-identical polylines. Some exports draw
// decorative outline pairs whose points differ by under two units; keeping
// both would double every connection they imply.
func dedupePolylines(lines [][]domain.Point) [][]domain.Point {
	var out [][]domain.Point
	for _, line := range lines {
		dup := false
		for _, kept := range out {
			if samePolyline(line, kept) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, line)
		}
	}
	return out
}

func samePolyline(a, b []domain.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if manhattan(a[i], b[i]) > 2 {
			return false
		}
	}
	return true
}

func manhattan(a, b domain.Point) float64 {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
