package report

import (
	"strings"
	"testing"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

var sample = []domain.Connection{
	{FromID: "MAIN38", FromPin: "10", ToID: "SP001", WireDM: "0.5", WireColor: "BU"},
	{FromID: "AA1", FromPin: "2", ToID: "BB1", ToPin: "3", WireDM: "0.35", WireColor: "GY/PU"},
	{FromID: "MAIN38", FromPin: "2", ToID: "CC1", ToPin: "1"},
}

func TestTable(t *testing.T) {
	got := Table(sample)
	want := "| From | From Pin | To | To Pin | Wire DM | Color |\n" +
		"|------|----------|-----|--------|---------|-------|\n" +
		"| AA1 | 2 | BB1 | 3 | 0.35 | GY/PU |\n" +
		"| MAIN38 | 2 | CC1 | 1 |  |  |\n" +
		"| MAIN38 | 10 | SP001 |  | 0.5 | BU |\n"
	if got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestTableSortsPinsNumerically(t *testing.T) {
	got := Table(sample)
	if strings.Index(got, "| MAIN38 | 2 |") > strings.Index(got, "| MAIN38 | 10 |") {
		t.Fatal("pin 2 must sort before pin 10")
	}
}

func TestGroupedBySource(t *testing.T) {
	got := GroupedBySource(sample)
	if !strings.Contains(got, "### AA1 (1 connections)") {
		t.Fatalf("missing AA1 group:\n%s", got)
	}
	if !strings.Contains(got, "### MAIN38 (2 connections)") {
		t.Fatalf("missing MAIN38 group:\n%s", got)
	}
	if strings.Index(got, "### AA1") > strings.Index(got, "### MAIN38") {
		t.Fatal("groups must be sorted by connector ID")
	}
}

func TestRender(t *testing.T) {
	got := Render(sample)
	for _, want := range []string{
		"# Circuit Diagram Wire Connections",
		"**Total Connections:** 3",
		"## All Connections (Sorted by From Connector)",
		"## Connections Grouped by Source Connector",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in report:\n%s", want, got)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	got := Render(nil)
	if !strings.Contains(got, "**Total Connections:** 0") {
		t.Fatalf("unexpected empty report:\n%s", got)
	}
}
