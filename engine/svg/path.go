package svg

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

var (
	transformRe = regexp.MustCompile(`matrix\([^)]*\s([\d.-]+)\s+([\d.-]+)\)`)
	pathStartRe = regexp.MustCompile(`^M([\d.-]+),([\d.-]+)`)
	commandRe   = regexp.MustCompile(`[MmLlHhVvCcSsQqTtAaZz][^MmLlHhVvCcSsQqTtAaZz]*`)
	numberRe    = regexp.MustCompile(`-?\d+\.?\d*`)
)

// transformOrigin extracts the translation of a text element's matrix
// transform ("matrix(1 0 0 1 237.36 331.69)").
func transformOrigin(transform string) (x, y float64, ok bool) {
	m := transformRe.FindStringSubmatch(transform)
	if m == nil {
		return 0, 0, false
	}
	x, errX := strconv.ParseFloat(m[1], 64)
	y, errY := strconv.ParseFloat(m[2], 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

// pathStart returns the initial M coordinate of a path.
func pathStart(d string) (domain.Point, bool) {
	m := pathStartRe.FindStringSubmatch(d)
	if m == nil {
		return domain.Point{}, false
	}
	x, errX := strconv.ParseFloat(m[1], 64)
	y, errY := strconv.ParseFloat(m[2], 64)
	if errX != nil || errY != nil {
		return domain.Point{}, false
	}
	return domain.Point{X: x, Y: y}, true
}

// PathPoints walks a path's d attribute and returns the significant points
// along it. Curves contribute their end points only; the engine works with
// orthogonal runs, so intermediate control points carry no routing
// information. Returns nil when the string cannot be walked.
func PathPoints(d string) []domain.Point {
	commands := commandRe.FindAllString(d, -1)
	if len(commands) == 0 {
		return nil
	}

	first := strings.TrimSpace(commands[0])
	if first == "" || (first[0] != 'M' && first[0] != 'm') {
		return nil
	}
	coords := parseNumbers(first[1:])
	if len(coords) < 2 {
		return nil
	}

	startX, startY := coords[0], coords[1]
	x, y := startX, startY
	points := []domain.Point{{X: x, Y: y}}

	for _, cmdStr := range commands[1:] {
		cmd := cmdStr[0]
		params := parseNumbers(cmdStr[1:])

		switch cmd {
		case 'M':
			if len(params) >= 2 {
				x, y = params[0], params[1]
				points = append(points, domain.Point{X: x, Y: y})
			}
		case 'm':
			if len(params) >= 2 {
				x += params[0]
				y += params[1]
				points = append(points, domain.Point{X: x, Y: y})
			}
		case 'L':
			if len(params) >= 2 {
				x, y = params[len(params)-2], params[len(params)-1]
				points = append(points, domain.Point{X: x, Y: y})
			}
		case 'l':
			if len(params) >= 2 {
				x += params[len(params)-2]
				y += params[len(params)-1]
				points = append(points, domain.Point{X: x, Y: y})
			}
		case 'H':
			if len(params) >= 1 {
				x = params[len(params)-1]
				points = append(points, domain.Point{X: x, Y: y})
			}
		case 'h':
			if len(params) >= 1 {
				x += params[len(params)-1]
				points = append(points, domain.Point{X: x, Y: y})
			}
		case 'V':
			if len(params) >= 1 {
				y = params[len(params)-1]
				points = append(points, domain.Point{X: x, Y: y})
			}
		case 'v':
			if len(params) >= 1 {
				y += params[len(params)-1]
				points = append(points, domain.Point{X: x, Y: y})
			}
		case 'C':
			if len(params) >= 6 {
				x, y = params[len(params)-2], params[len(params)-1]
				points = append(points, domain.Point{X: x, Y: y})
			}
		case 'c':
			if len(params) >= 6 {
				x += params[len(params)-2]
				y += params[len(params)-1]
				points = append(points, domain.Point{X: x, Y: y})
			}
		case 'Z', 'z':
			x, y = startX, startY
			points = append(points, domain.Point{X: x, Y: y})
		}
	}

	return points
}

// parsePolylinePoints decodes a polyline points attribute
// ("x1,y1 x2,y2 ...") into coordinates. Malformed pairs are skipped.
func parsePolylinePoints(points string) []domain.Point {
	var out []domain.Point
	for _, pair := range strings.Fields(points) {
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			continue
		}
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			continue
		}
		out = append(out, domain.Point{X: x, Y: y})
	}
	return out
}

func parseNumbers(s string) []float64 {
	matches := numberRe.FindAllString(s, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
