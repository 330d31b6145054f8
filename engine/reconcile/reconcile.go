// Package reconcile merges the extractors' outputs into the final
// connectivity graph: self-loops and spec-less same-connector connections
// are dropped, duplicate keys collapse with spec precedence, and optional
// per-diagram exclusions are applied last.
package reconcile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

// Reconcile filters and deduplicates the combined connection list. Order of
// first appearance is preserved, which keeps the output deterministic for
// identical input.
func Reconcile(connections []domain.Connection) []domain.Connection {
	var filtered []domain.Connection
	for _, c := range connections {
		if c.IsSelfLoop() {
			continue
		}
		// Same connector, different pins: a routed jumper is legitimate
		// but always carries a spec; without one this is a misdetected
		// path. Splice-to-splice stays regardless.
		if c.FromID == c.ToID && c.FromPin != c.ToPin &&
			!domain.IsSpliceID(c.FromID) && !c.HasSpec() {
			continue
		}
		filtered = append(filtered, c)
	}

	seen := make(map[domain.ConnectionKey]int)
	var out []domain.Connection
	for _, c := range filtered {
		key := c.Key()
		idx, dup := seen[key]
		if !dup {
			seen[key] = len(out)
			out = append(out, c)
			continue
		}
		// Two extractors proposing the same edge: the one that found a
		// wire spec wins.
		if c.WireDM != "" && out[idx].WireDM == "" {
			out[idx] = c
		}
	}
	return out
}

// Exclusions is the per-diagram drop list: whole pins and exact pairs.
type Exclusions struct {
	Pins  []PinRef  `json:"exclude_pins"`
	Pairs []PairRef `json:"exclude_connections"`
}

type PinRef struct {
	ConnectorID string `json:"connector_id"`
	Pin         string `json:"pin"`
}

type PairRef struct {
	FromID  string `json:"from_id"`
	FromPin string `json:"from_pin"`
	ToID    string `json:"to_id"`
	ToPin   string `json:"to_pin"`
}

// LoadExclusions reads an exclusion config. A missing file means no
// exclusions, not an error.
func LoadExclusions(path string) (*Exclusions, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Exclusions{}, nil
		}
		return nil, fmt.Errorf("open exclusions: %w", err)
	}
	defer f.Close()
	return ParseExclusions(f)
}

func ParseExclusions(r io.Reader) (*Exclusions, error) {
	var ex Exclusions
	if err := json.NewDecoder(r).Decode(&ex); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadExclusionRef, err)
	}
	return &ex, nil
}

// Apply drops connections touching an excluded pin or matching an excluded
// pair in either direction.
func (e *Exclusions) Apply(connections []domain.Connection) []domain.Connection {
	if e == nil || (len(e.Pins) == 0 && len(e.Pairs) == 0) {
		return connections
	}

	pins := make(map[PinRef]bool, len(e.Pins))
	for _, p := range e.Pins {
		pins[p] = true
	}
	pairs := make(map[domain.ConnectionKey]bool, len(e.Pairs))
	for _, p := range e.Pairs {
		key := domain.ConnectionKey{FromID: p.FromID, FromPin: p.FromPin, ToID: p.ToID, ToPin: p.ToPin}
		pairs[key] = true
		pairs[key.Reversed()] = true
	}

	var out []domain.Connection
	for _, c := range connections {
		if pins[PinRef{c.FromID, c.FromPin}] || pins[PinRef{c.ToID, c.ToPin}] {
			continue
		}
		if pairs[c.Key()] {
			continue
		}
		out = append(out, c)
	}
	return out
}
