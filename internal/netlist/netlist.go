// Package netlist reads and writes the circuit netlist text format.
//
// A netlist is a sequence of records separated by "\n":
//
//	TypeCode;x1,y1;x2,y2;value;label
//
// TypeCode is one of R C L J G W. Coordinates are integer grid units.
// value is the element's primary property in minimal scientific notation,
// or empty when undefined. label is the element's label text or empty.
// Single-terminal elements repeat their node in the second pair.
//
// Import is all-or-nothing: any malformed record fails the whole text and
// no elements are returned.
package netlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/schematic-core/internal/circuit"
	"github.com/nerrad567/schematic-core/internal/grid"
)

// fieldCount is the number of ';'-separated fields in a record.
const fieldCount = 5

// Code ties a record type code to an element type and the property written
// in the value field.
type Code struct {
	Code     string
	Type     circuit.Type
	Property string
}

// Codes returns the type code table.
func Codes() []Code {
	return []Code{
		{Code: "R", Type: circuit.TypeResistor, Property: circuit.PropResistance},
		{Code: "C", Type: circuit.TypeCapacitor, Property: circuit.PropCapacitance},
		{Code: "L", Type: circuit.TypeInductor, Property: circuit.PropInductance},
		{Code: "J", Type: circuit.TypeJunction, Property: circuit.PropValue},
		{Code: "G", Type: circuit.TypeGround, Property: circuit.PropValue},
		{Code: "W", Type: circuit.TypeWire, Property: circuit.PropValue},
	}
}

// Adapter converts between circuits and netlist text. Elements are built
// through the registry it was created with.
type Adapter struct {
	registry *circuit.Registry
	byCode   map[string]Code
	byType   map[circuit.Type]Code
}

// New creates an adapter using reg to construct imported elements.
func New(reg *circuit.Registry) *Adapter {
	a := &Adapter{
		registry: reg,
		byCode:   make(map[string]Code),
		byType:   make(map[circuit.Type]Code),
	}
	for _, c := range Codes() {
		a.byCode[c.Code] = c
		a.byType[c.Type] = c
	}
	return a
}

// Export writes elements as netlist text, one record per element in the
// given order, without a trailing newline.
func (a *Adapter) Export(elements []*circuit.Element) (string, error) {
	lines := make([]string, 0, len(elements))
	for _, el := range elements {
		line, err := a.encode(el)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func (a *Adapter) encode(el *circuit.Element) (string, error) {
	code, ok := a.byType[el.Type]
	if !ok {
		return "", fmt.Errorf("%w: no type code for %s", ErrFormat, el.Type)
	}
	if len(el.Nodes) == 0 {
		return "", fmt.Errorf("%w: element %s has no nodes", ErrFormat, el.ID)
	}

	first := el.Nodes[0]
	second := first
	if len(el.Nodes) > 1 {
		second = el.Nodes[1]
	}
	if !circuit.ValidPosition(first) || !circuit.ValidPosition(second) {
		return "", fmt.Errorf("%w: element %s has a node out of range", ErrFormat, el.ID)
	}

	value := ""
	if v, ok := el.Property(code.Property); ok {
		value = FormatValue(v)
	}

	fields := []string{
		code.Code,
		formatCoordinate(grid.PixelToGrid(first)),
		formatCoordinate(grid.PixelToGrid(second)),
		value,
		el.LabelText(),
	}
	return strings.Join(fields, ";"), nil
}

// Import parses netlist text into new elements with fresh ids. Blank lines
// and surrounding whitespace are ignored.
func (a *Adapter) Import(text string) ([]*circuit.Element, error) {
	var elements []*circuit.Element
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		el, err := a.decode(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func (a *Adapter) decode(line string) (*circuit.Element, error) {
	fields := strings.Split(line, ";")
	if len(fields) != fieldCount {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), fieldCount)
	}

	code, ok := a.byCode[strings.TrimSpace(fields[0])]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCode, fields[0])
	}

	first, err := parseCoordinate(fields[1])
	if err != nil {
		return nil, err
	}
	second, err := parseCoordinate(fields[2])
	if err != nil {
		return nil, err
	}

	value, err := ParseValue(fields[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrValue, fields[3])
	}

	var label *circuit.Label
	if text := strings.TrimSpace(fields[4]); text != "" {
		l := circuit.Label(text)
		label = &l
	}

	nodes := []circuit.Position{grid.GridToPixel(first), grid.GridToPixel(second)}
	if a.terminals(code.Type) == 1 {
		nodes = nodes[:1]
	}

	el, err := a.registry.Create(code.Type, "", nodes, circuit.Properties{code.Property: value}, label)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return el, nil
}

// terminals returns the declared terminal count of t, assuming two when
// the type was registered without a spec.
func (a *Adapter) terminals(t circuit.Type) int {
	if spec, ok := a.registry.Spec(t); ok && spec.Terminals > 0 {
		return spec.Terminals
	}
	return 2
}

// ExportCircuit writes the service's circuit as netlist text.
func (a *Adapter) ExportCircuit(svc *circuit.Service) (string, error) {
	return a.Export(svc.Elements())
}

// ImportCircuit replaces the service's circuit with the elements parsed
// from text. On error the circuit is left unchanged.
func (a *Adapter) ImportCircuit(svc *circuit.Service, text string) error {
	elements, err := a.Import(text)
	if err != nil {
		return err
	}
	st := circuit.State{Elements: make([]circuit.Element, len(elements))}
	for i, el := range elements {
		st.Elements[i] = *el
	}
	return svc.ImportState(st)
}

func formatCoordinate(g circuit.GridCoordinate) string {
	return strconv.Itoa(g.X) + "," + strconv.Itoa(g.Y)
}

func parseCoordinate(field string) (circuit.GridCoordinate, error) {
	xs, ys, ok := strings.Cut(field, ",")
	if !ok {
		return circuit.GridCoordinate{}, fmt.Errorf("%w: %q", ErrCoordinate, field)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return circuit.GridCoordinate{}, fmt.Errorf("%w: %q", ErrCoordinate, field)
	}
	return circuit.GridCoordinate{X: x, Y: y}, nil
}
