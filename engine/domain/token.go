// Package domain holds the core vocabulary of the inference engine: tokens
// read off the diagram, classified by string shape alone, and the connection
// records derived from them.
package domain

import (
	"regexp"
	"strings"
)

// TokenKind classifies a diagram text label. Classification happens once,
// at token construction; everything downstream switches on the kind.
type TokenKind int

const (
	// KindLabel is any text the engine does not act on.
	KindLabel TokenKind = iota
	// KindPin is a numbered contact point, "7" or "1-3".
	KindPin
	// KindSplice is a splice point, "SP001" or generated "SP_CUSTOM_001".
	KindSplice
	// KindConnector is a plug/socket label, "MH3202C", "MAIN38".
	KindConnector
	// KindJunction is a harness crossing label, "MH2FL" mirrored by "FL2MH".
	KindJunction
	// KindGround is a chassis termination, "G22B(m)".
	KindGround
	// KindWireSpec is a gauge/color label, "0.35,GY/PU".
	KindWireSpec
)

func (k TokenKind) String() string {
	switch k {
	case KindPin:
		return "pin"
	case KindSplice:
		return "splice"
	case KindConnector:
		return "connector"
	case KindJunction:
		return "junction"
	case KindGround:
		return "ground"
	case KindWireSpec:
		return "wirespec"
	default:
		return "label"
	}
}

// Token is one positioned text label with its classification.
type Token struct {
	Content string
	X, Y    float64
	Kind    TokenKind
}

func NewToken(content string, x, y float64) Token {
	return Token{Content: content, X: x, Y: y, Kind: Classify(content)}
}

var (
	pinRe       = regexp.MustCompile(`^\d+(?:-\d+)?$`)
	spliceRe    = regexp.MustCompile(`^SP\d+$`)
	connectorRe = regexp.MustCompile(`^[A-Z]{2,4}\d{1,5}[A-Z_]{0,5}$`)
	groundRe    = regexp.MustCompile(`^[A-Z_]+\d+[A-Z_]*\([a-z]\)$`)
	wireSpecRe  = regexp.MustCompile(`^([\d.]+),([A-Z]{2,}(?:/[A-Z]{2,})?)$`)
	gndLabelRe  = regexp.MustCompile(`^GND\d*$`)
)

// Classify maps a label to its kind. The checks are ordered: junction names
// also match the connector pattern, so they are tested first, and GND*
// descriptions are excluded from connectors outright.
func Classify(content string) TokenKind {
	switch {
	case pinRe.MatchString(content):
		return KindPin
	case IsSpliceID(content):
		return KindSplice
	case wireSpecRe.MatchString(content):
		return KindWireSpec
	case groundRe.MatchString(content):
		return KindGround
	case IsJunctionName(content):
		return KindJunction
	case isConnectorName(content):
		return KindConnector
	default:
		return KindLabel
	}
}

// IsSpliceID reports whether the label names a splice point, labeled or
// generated.
func IsSpliceID(content string) bool {
	return spliceRe.MatchString(content) || strings.HasPrefix(content, "SP_CUSTOM_")
}

// isConnectorName matches plug/socket labels, excluding splices and GND
// descriptions. Shielded-pair labels arrive as multi-line or option-suffixed
// variants; each line is checked on its own.
func isConnectorName(content string) bool {
	if strings.HasPrefix(content, "SP") || gndLabelRe.MatchString(content) {
		return false
	}
	for _, line := range strings.Split(content, "\n") {
		base, _, _ := strings.Cut(line, " ")
		if connectorRe.MatchString(base) || groundRe.MatchString(base) {
			return true
		}
	}
	return false
}

// IsJunctionName reports whether the label is a harness junction: a '2'
// splitting two 2-3 letter alphabetic parts, like MH2FL or FTL2FL.
func IsJunctionName(content string) bool {
	if len(content) < 5 || !strings.Contains(content, "2") {
		return false
	}
	left, right, _ := strings.Cut(content, "2")
	return isShortAlpha(left) && isShortAlpha(right)
}

func isShortAlpha(s string) bool {
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// MirrorJunction returns the opposite face of a junction name: MH2FL
// becomes FL2MH. Returns the input unchanged for non-junction names.
func MirrorJunction(name string) string {
	if !IsJunctionName(name) {
		return name
	}
	left, right, _ := strings.Cut(name, "2")
	return right + "2" + left
}

// IsJunctionPair reports whether two labels are the two faces of one
// junction.
func IsJunctionPair(a, b string) bool {
	return IsJunctionName(a) && MirrorJunction(a) == b
}

// ParseWireSpec splits a wire spec label into diameter and color code.
func ParseWireSpec(content string) (dm, color string, ok bool) {
	m := wireSpecRe.FindStringSubmatch(content)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
