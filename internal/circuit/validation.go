package circuit

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// maxLabelLength is the maximum label length in runes.
const maxLabelLength = 100

// MaxCoordinate bounds node coordinates in pixels on both axes. Grid
// coordinates derived from larger values no longer fit an int exactly.
const MaxCoordinate = 1 << 50

// ValidPosition reports whether both coordinates of p are finite and within
// MaxCoordinate.
func ValidPosition(p Position) bool {
	return inRange(p.X) && inRange(p.Y)
}

func inRange(f float64) bool {
	return isFinite(f) && math.Abs(f) <= MaxCoordinate
}

// NewLabel validates and trims label text.
//
// Labels are stored verbatim in netlist records, so the record and field
// separators are rejected.
func NewLabel(text string) (*Label, error) {
	if err := ValidateLabel(text); err != nil {
		return nil, err
	}
	l := Label(strings.TrimSpace(text))
	return &l, nil
}

// ValidateLabel checks label text without constructing a Label.
func ValidateLabel(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: label cannot be empty", ErrInvalidLabel)
	}
	if utf8.RuneCountInString(text) > maxLabelLength {
		return fmt.Errorf("%w: label exceeds %d characters", ErrInvalidLabel, maxLabelLength)
	}
	if strings.ContainsAny(text, ";\r\n") {
		return fmt.Errorf("%w: label cannot contain ';' or line breaks", ErrInvalidLabel)
	}
	return nil
}

// ValidateNodes checks the terminal count and that every node is a
// ValidPosition.
func ValidateNodes(spec TypeSpec, nodes []Position) error {
	if len(nodes) != spec.Terminals {
		return fmt.Errorf("%w: %s requires %d node(s), got %d",
			ErrInvalidNodes, spec.Type, spec.Terminals, len(nodes))
	}
	for i, n := range nodes {
		if !ValidPosition(n) {
			return fmt.Errorf("%w: node %d of %s is out of range", ErrInvalidNodes, i, spec.Type)
		}
	}
	return nil
}

// ValidateProperties checks properties against the type's declared set and
// returns a normalised copy in which every declared property is present.
func ValidateProperties(spec TypeSpec, props Properties) (Properties, error) {
	out := make(Properties, len(spec.Properties))
	for _, name := range spec.Properties {
		out[name] = nil
	}
	for name, v := range props {
		if !spec.Accepts(name) {
			return nil, fmt.Errorf("%w: %s does not accept %q", ErrInvalidProperty, spec.Type, name)
		}
		if v == nil {
			continue
		}
		if !isFinite(*v) {
			return nil, fmt.Errorf("%w: %s must be a finite number or undefined", ErrInvalidProperty, name)
		}
		out[name] = Value(*v)
	}
	return out, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
