package domain

import "strconv"

// ConnectionPoint is a resolved endpoint: a pin mapped to its owning
// connector, or a splice/ground token used directly (empty pin).
type ConnectionPoint struct {
	ConnectorID string  `json:"connector_id"`
	Pin         string  `json:"pin"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// IsSplice reports whether the point is a splice junction node.
func (p ConnectionPoint) IsSplice() bool { return IsSpliceID(p.ConnectorID) }

// Same reports whether two points share connector identity and pin.
func (p ConnectionPoint) Same(o ConnectionPoint) bool {
	return p.ConnectorID == o.ConnectorID && p.Pin == o.Pin
}

// WireSpec is a diagram label describing the wire drawn near it. It is never
// itself an endpoint.
type WireSpec struct {
	Diameter string  `json:"diameter"`
	Color    string  `json:"color"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Key is the "diameter,color" identity used by the color-flow resolver.
func (w WireSpec) Key() string { return w.Diameter + "," + w.Color }

// Connection is one inferred wire between two endpoints. WireDM and
// WireColor are empty when the connection came from routing or ground
// inference with no discoverable spec. Electrically undirected; from/to is
// a canonical assignment for deterministic dedup keys.
type Connection struct {
	FromID    string `json:"from_id"`
	FromPin   string `json:"from_pin"`
	ToID      string `json:"to_id"`
	ToPin     string `json:"to_pin"`
	WireDM    string `json:"wire_dm"`
	WireColor string `json:"wire_color"`
}

// ConnectionKey identifies a connection by its endpoints only.
type ConnectionKey struct {
	FromID, FromPin, ToID, ToPin string
}

// Key returns the dedup key for the connection.
func (c Connection) Key() ConnectionKey {
	return ConnectionKey{c.FromID, c.FromPin, c.ToID, c.ToPin}
}

// Reversed returns the key with endpoints swapped.
func (k ConnectionKey) Reversed() ConnectionKey {
	return ConnectionKey{k.ToID, k.ToPin, k.FromID, k.FromPin}
}

// HasSpec reports whether the connection carries a wire specification.
func (c Connection) HasSpec() bool { return c.WireDM != "" || c.WireColor != "" }

// IsSelfLoop reports whether both endpoints share the same identity.
func (c Connection) IsSelfLoop() bool {
	return c.FromID == c.ToID && c.FromPin == c.ToPin
}

// Less orders connections by from connector, then numerically by from pin.
// Non-numeric pins sort after numeric ones.
func (c Connection) Less(o Connection) bool {
	if c.FromID != o.FromID {
		return c.FromID < o.FromID
	}
	ca, aok := pinOrdinal(c.FromPin)
	cb, bok := pinOrdinal(o.FromPin)
	if aok && bok && ca != cb {
		return ca < cb
	}
	if aok != bok {
		return aok
	}
	if c.FromPin != o.FromPin {
		return c.FromPin < o.FromPin
	}
	if c.ToID != o.ToID {
		return c.ToID < o.ToID
	}
	return c.ToPin < o.ToPin
}

func pinOrdinal(pin string) (int, bool) {
	if pin == "" {
		return 0, true
	}
	n, err := strconv.Atoi(pin)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Point is a bare 2-D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
