package circuit

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Factory constructs and validates an element of one type.
// An empty id is replaced by a freshly generated one.
type Factory func(id string, nodes []Position, props Properties, label *Label) (*Element, error)

// Registry maps element type tags to their factories. It is the single
// source of truth for which nodes and properties a type requires.
//
// A Registry is built once at startup and passed to the Service and the
// adapters that construct elements. It is not safe for concurrent
// registration; lookups after setup are read-only.
type Registry struct {
	factories map[Type]Factory
	specs     map[Type]TypeSpec
	order     []Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Type]Factory),
		specs:     make(map[Type]TypeSpec),
	}
}

// NewDefaultRegistry creates a registry holding the built-in element types.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, spec := range BuiltinSpecs() {
		r.Register(spec, nil)
	}
	return r
}

// Register stores a factory under the spec's type tag. A nil factory
// selects the standard validating constructor for the spec. The last
// registration for a tag wins; the tag keeps its original position in Types().
func (r *Registry) Register(spec TypeSpec, factory Factory) {
	if factory == nil {
		factory = NewFactory(spec)
	}
	if _, ok := r.factories[spec.Type]; !ok {
		r.order = append(r.order, spec.Type)
	}
	r.specs[spec.Type] = spec
	r.factories[spec.Type] = factory
}

// Get returns the factory for a type and whether one is registered.
func (r *Registry) Get(t Type) (Factory, bool) {
	f, ok := r.factories[t]
	return f, ok
}

// Spec returns the declared spec of a registered type.
func (r *Registry) Spec(t Type) (TypeSpec, bool) {
	s, ok := r.specs[t]
	return s, ok
}

// Types returns the registered type tags in registration order.
func (r *Registry) Types() []Type {
	return slices.Clone(r.order)
}

// Create looks up the factory for t and constructs the element.
// Unknown types fail with ErrUnknownType; shape violations fail with an
// ErrValidation error from the factory.
func (r *Registry) Create(t Type, id string, nodes []Position, props Properties, label *Label) (*Element, error) {
	f, ok := r.Get(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return f(id, nodes, props, label)
}

// NewFactory returns the validating constructor for a spec: it enforces the
// terminal count, the declared property set and the label rules, and copies
// every input so the element owns its data.
func NewFactory(spec TypeSpec) Factory {
	return func(id string, nodes []Position, props Properties, label *Label) (*Element, error) {
		if err := ValidateNodes(spec, nodes); err != nil {
			return nil, err
		}

		normalised, err := ValidateProperties(spec, props)
		if err != nil {
			return nil, err
		}

		var lbl *Label
		if label != nil {
			lbl, err = NewLabel(string(*label))
			if err != nil {
				return nil, err
			}
		}

		if id == "" {
			id = uuid.NewString()
		}

		return &Element{
			ID:         id,
			Type:       spec.Type,
			Nodes:      slices.Clone(nodes),
			Properties: normalised,
			Label:      lbl,
		}, nil
	}
}
