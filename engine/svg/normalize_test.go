package svg

import (
	"testing"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

func TestNormalizeSnapsSpliceLabels(t *testing.T) {
	doc := &Document{
		Tokens: []domain.Token{
			domain.NewToken("SP001", 105, 208),
			domain.NewToken("MAIN38", 300, 300),
		},
		SpliceDots: []domain.Point{{X: 100, Y: 200}},
	}
	tokens := Normalize(doc, domain.NewIDGenerator())

	var sp domain.Token
	for _, tok := range tokens {
		if tok.Content == "SP001" {
			sp = tok
		}
	}
	if sp.X != 100 || sp.Y != 200 {
		t.Fatalf("expected SP001 snapped to (100,200), got (%v,%v)", sp.X, sp.Y)
	}
}

func TestNormalizeLabelsOrphanDots(t *testing.T) {
	doc := &Document{
		Tokens: []domain.Token{
			domain.NewToken("SP001", 100, 200),
		},
		SpliceDots: []domain.Point{
			{X: 100, Y: 200},
			{X: 500, Y: 400},
		},
	}
	tokens := Normalize(doc, domain.NewIDGenerator())

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	gen := tokens[1]
	if gen.Content != "SP_CUSTOM_001" {
		t.Fatalf("expected SP_CUSTOM_001, got %q", gen.Content)
	}
	if gen.Kind != domain.KindSplice {
		t.Fatalf("generated token should classify as splice, got %v", gen.Kind)
	}
	if gen.X != 500 || gen.Y != 400 {
		t.Fatalf("generated token at wrong position: %+v", gen)
	}
}

func TestNormalizeMergesOptionLabels(t *testing.T) {
	doc := &Document{
		Tokens: []domain.Token{
			domain.NewToken("MH3202C", 100, 100),
			domain.NewToken("(XB+)", 112, 101),
		},
	}
	tokens := Normalize(doc, domain.NewIDGenerator())

	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].Content != "MH3202C (XB+)" {
		t.Fatalf("expected merged label, got %q", tokens[0].Content)
	}
	if tokens[0].Kind != domain.KindConnector {
		t.Fatalf("merged label should stay a connector, got %v", tokens[0].Kind)
	}
}

func TestNormalizeMergesShieldedPairs(t *testing.T) {
	doc := &Document{
		Tokens: []domain.Token{
			domain.NewToken("MH3202C", 100, 100),
			domain.NewToken("(XR-)", 112, 101),
			domain.NewToken("MH3202C", 104, 110),
			domain.NewToken("(XR+)", 116, 111),
		},
	}
	tokens := Normalize(doc, domain.NewIDGenerator())

	if len(tokens) != 1 {
		t.Fatalf("expected 1 merged token, got %d", len(tokens))
	}
	pair := tokens[0]
	if pair.Content != "MH3202C (XR-)\nMH3202C (XR+)" {
		t.Fatalf("unexpected merged content %q", pair.Content)
	}
	if pair.X != 102 || pair.Y != 100 {
		t.Fatalf("expected pair at (102,100), got (%v,%v)", pair.X, pair.Y)
	}
	if pair.Kind != domain.KindConnector {
		t.Fatalf("pair should classify as connector, got %v", pair.Kind)
	}
}

func TestNormalizeDropsStrayOptionLabels(t *testing.T) {
	doc := &Document{
		Tokens: []domain.Token{
			domain.NewToken("MAIN38", 100, 100),
			domain.NewToken("(XB-)", 400, 400),
		},
	}
	tokens := Normalize(doc, domain.NewIDGenerator())

	if len(tokens) != 1 || tokens[0].Content != "MAIN38" {
		t.Fatalf("stray option label should be dropped, got %+v", tokens)
	}
}

func TestWireSpecs(t *testing.T) {
	tokens := []domain.Token{
		domain.NewToken("0.35,GY/PU", 50, 95),
		domain.NewToken("MAIN38", 10, 10),
		domain.NewToken("0.5,BU", 200, 95),
	}
	specs := WireSpecs(tokens)
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}
	if specs[0].Diameter != "0.35" || specs[0].Color != "GY/PU" {
		t.Fatalf("unexpected first spec %+v", specs[0])
	}
	if specs[1].Key() != "0.5,BU" {
		t.Fatalf("unexpected key %q", specs[1].Key())
	}
}
