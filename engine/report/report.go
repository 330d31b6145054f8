// Package report renders the final connection set as markdown tables.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

func sortConnections(connections []domain.Connection) []domain.Connection {
	out := append([]domain.Connection(nil), connections...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Table renders all connections as one markdown table sorted by source
// connector, then numerically by pin.
func Table(connections []domain.Connection) string {
	var b strings.Builder
	b.WriteString("| From | From Pin | To | To Pin | Wire DM | Color |\n")
	b.WriteString("|------|----------|-----|--------|---------|-------|\n")
	for _, c := range sortConnections(connections) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			c.FromID, c.FromPin, c.ToID, c.ToPin, c.WireDM, c.WireColor)
	}
	return b.String()
}

// GroupedBySource renders one table per source connector.
func GroupedBySource(connections []domain.Connection) string {
	groups := make(map[string][]domain.Connection)
	for _, c := range connections {
		groups[c.FromID] = append(groups[c.FromID], c)
	}
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		conns := groups[id]
		fmt.Fprintf(&b, "\n### %s (%d connections)\n\n", id, len(conns))
		b.WriteString("| From Pin | To | To Pin | Wire DM | Color |\n")
		b.WriteString("|----------|-----|--------|---------|-------|\n")
		for _, c := range sortConnections(conns) {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				c.FromPin, c.ToID, c.ToPin, c.WireDM, c.WireColor)
		}
	}
	return b.String()
}

// Render produces the complete markdown report.
func Render(connections []domain.Connection) string {
	var b strings.Builder
	b.WriteString("# Circuit Diagram Wire Connections\n\n")
	fmt.Fprintf(&b, "**Total Connections:** %d\n\n", len(connections))
	b.WriteString("## All Connections (Sorted by From Connector)\n\n")
	b.WriteString(Table(connections))
	b.WriteString("\n## Connections Grouped by Source Connector\n")
	b.WriteString(GroupedBySource(connections))
	b.WriteString("\n")
	return b.String()
}
