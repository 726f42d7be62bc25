package circuit

import (
	"maps"
	"slices"
)

// Position is a continuous pixel coordinate. Positions have no identity and
// are compared by value.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Equal reports whether two positions are the same point.
func (p Position) Equal(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

// GridCoordinate is an integer position in logical grid units.
// It is the unit of persistence in the netlist format.
type GridCoordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Label is the optional display text attached to an element.
// A nil *Label means the element has no label.
type Label string

// String returns the label text.
func (l Label) String() string { return string(l) }

// Properties maps a property name to an optional numeric value.
// A nil value means the property is declared but undefined.
type Properties map[string]*float64

// Value returns a pointer to v for use in Properties literals.
func Value(v float64) *float64 {
	return &v
}

// Get returns the value of a property and whether it is defined.
func (p Properties) Get(name string) (float64, bool) {
	v, ok := p[name]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Clone returns an independent copy of the properties.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	cpy := make(Properties, len(p))
	for k, v := range p {
		if v == nil {
			cpy[k] = nil
			continue
		}
		cpy[k] = Value(*v)
	}
	return cpy
}

// Type is the tag of an element variant.
type Type string

// Built-in element types.
const (
	TypeResistor  Type = "Resistor"
	TypeCapacitor Type = "Capacitor"
	TypeInductor  Type = "Inductor"
	TypeJunction  Type = "Junction"
	TypeGround    Type = "Ground"
	TypeWire      Type = "Wire"
)

// Primary property names.
const (
	PropResistance  = "resistance"
	PropCapacitance = "capacitance"
	PropInductance  = "inductance"
	PropValue       = "value"
)

// TypeSpec declares the shape of an element variant: how many terminals it
// has and which properties it accepts. Primary names the property carried in
// the value field of a netlist record.
type TypeSpec struct {
	Type       Type     `json:"type"`
	Terminals  int      `json:"terminals"`
	Primary    string   `json:"primary"`
	Properties []string `json:"properties"`
}

// Accepts reports whether name is a declared property of the type.
func (s TypeSpec) Accepts(name string) bool {
	return slices.Contains(s.Properties, name)
}

// BuiltinSpecs returns the specs of the built-in element types in their
// canonical enumeration order.
func BuiltinSpecs() []TypeSpec {
	return []TypeSpec{
		{Type: TypeResistor, Terminals: 2, Primary: PropResistance, Properties: []string{PropResistance}},
		{Type: TypeCapacitor, Terminals: 2, Primary: PropCapacitance, Properties: []string{PropCapacitance}},
		{Type: TypeInductor, Terminals: 2, Primary: PropInductance, Properties: []string{PropInductance}},
		{Type: TypeJunction, Terminals: 2, Primary: PropValue, Properties: []string{PropValue}},
		{Type: TypeGround, Terminals: 1, Primary: PropValue, Properties: []string{PropValue}},
		{Type: TypeWire, Terminals: 2, Primary: PropValue, Properties: []string{PropValue}},
	}
}

// Element is a typed circuit component. All variants share this shape; the
// variant is selected by Type and validated by the registry's factory.
//
// Once added to a Circuit an element is owned by it. Node positions and
// properties may be changed in place through the Service, which raises the
// matching change notification.
type Element struct {
	ID         string     `json:"id"`
	Type       Type       `json:"type"`
	Nodes      []Position `json:"nodes"`
	Properties Properties `json:"properties"`
	Label      *Label     `json:"label"`
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Nodes = slices.Clone(e.Nodes)
	cpy.Properties = e.Properties.Clone()
	if e.Label != nil {
		l := *e.Label
		cpy.Label = &l
	}
	return &cpy
}

// Property returns a defined property value.
func (e *Element) Property(name string) (float64, bool) {
	return e.Properties.Get(name)
}

// LabelText returns the label text, or "" when the element has no label.
func (e *Element) LabelText() string {
	if e.Label == nil {
		return ""
	}
	return string(*e.Label)
}

// PropertyNames returns the element's property names in sorted order.
func (e *Element) PropertyNames() []string {
	return slices.Sorted(maps.Keys(e.Properties))
}
