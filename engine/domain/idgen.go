package domain

import "fmt"

// IDGenerator hands out stable generated IDs for unlabeled splice dots and
// connectors. It is scoped to one diagram's processing run; the same
// coordinate always maps to the same ID within that run.
type IDGenerator struct {
	spliceCounter    int
	connectorCounter int
	byPosition       map[[2]float64]string
}

// NewIDGenerator returns an empty generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{spliceCounter: 1, connectorCounter: 1, byPosition: map[[2]float64]string{}}
}

// SpliceID returns the generated splice ID for the dot at (x, y), creating
// one (SP_CUSTOM_001, SP_CUSTOM_002, ...) on first sight.
func (g *IDGenerator) SpliceID(x, y float64) string {
	key := posKey(x, y)
	if id, ok := g.byPosition[key]; ok {
		return id
	}
	id := fmt.Sprintf("SP_CUSTOM_%03d", g.spliceCounter)
	g.spliceCounter++
	g.byPosition[key] = id
	return id
}

// ConnectorID returns the generated connector ID for the point at (x, y),
// creating one (CON_CUSTOM_001, ...) on first sight.
func (g *IDGenerator) ConnectorID(x, y float64) string {
	key := posKey(x, y)
	if id, ok := g.byPosition[key]; ok {
		return id
	}
	id := fmt.Sprintf("CON_CUSTOM_%03d", g.connectorCounter)
	g.connectorCounter++
	g.byPosition[key] = id
	return id
}

func posKey(x, y float64) [2]float64 {
	// Round to hundredths so float noise from path parsing does not split IDs.
	return [2]float64{roundCent(x), roundCent(y)}
}

func roundCent(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
