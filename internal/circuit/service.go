package circuit

import (
	"fmt"
)

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Service owns a Circuit and is the only component that mutates it.
// Every mutator validates before touching the circuit and raises the
// matching change notification afterwards.
//
// Service is not safe for concurrent use.
type Service struct {
	registry *Registry
	circuit  *Circuit
	logger   Logger
}

// NewService creates a service with an empty circuit.
func NewService(registry *Registry) *Service {
	return &Service{
		registry: registry,
		circuit:  NewCircuit(),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// Registry returns the element registry the service builds elements with.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Subscribe registers an observer for change notifications.
func (s *Service) Subscribe(o Observer) (unsubscribe func()) {
	return s.circuit.Subscribe(o)
}

// Emit raises a notification on behalf of a collaborator, such as
// EventFinalizePlacement after a placement or EventMovePreview while dragging.
func (s *Service) Emit(t EventType, el *Element) error {
	return s.circuit.Emit(t, el)
}

// Elements returns the live elements in collection order.
func (s *Service) Elements() []*Element {
	return s.circuit.Elements()
}

// Len returns the number of elements.
func (s *Service) Len() int {
	return s.circuit.Len()
}

// Element returns the element with the given id.
func (s *Service) Element(id string) (*Element, bool) {
	return s.circuit.Get(id)
}

// IndexOf returns the collection position of an element, or -1.
func (s *Service) IndexOf(id string) int {
	return s.circuit.IndexOf(id)
}

// AddElement appends an element to the circuit.
func (s *Service) AddElement(el *Element) error {
	if err := s.circuit.Add(el); err != nil {
		return fmt.Errorf("adding element: %w", err)
	}
	s.logger.Debug("element added", "id", el.ID, "type", el.Type)
	return nil
}

// InsertElement places an element at a collection position.
func (s *Service) InsertElement(index int, el *Element) error {
	if err := s.circuit.Insert(index, el); err != nil {
		return fmt.Errorf("inserting element: %w", err)
	}
	s.logger.Debug("element inserted", "id", el.ID, "type", el.Type, "index", index)
	return nil
}

// DeleteElement removes an element. Absent ids are ignored.
func (s *Service) DeleteElement(id string) error {
	removed, err := s.circuit.Delete(id)
	if err != nil {
		return fmt.Errorf("deleting element: %w", err)
	}
	if removed {
		s.logger.Debug("element deleted", "id", id)
	}
	return nil
}

// Clear removes every element.
func (s *Service) Clear() error {
	if err := s.circuit.Clear(); err != nil {
		return fmt.Errorf("clearing circuit: %w", err)
	}
	return nil
}

// MoveElement replaces an element's node positions in place.
// The node count must match the element's terminal count.
func (s *Service) MoveElement(id string, nodes []Position) error {
	if err := s.circuit.checkDispatch(); err != nil {
		return err
	}
	el, ok := s.circuit.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	if len(nodes) != len(el.Nodes) {
		return fmt.Errorf("%w: %s has %d node(s), got %d", ErrInvalidNodes, id, len(el.Nodes), len(nodes))
	}
	for i, n := range nodes {
		if !ValidPosition(n) {
			return fmt.Errorf("%w: node %d is out of range", ErrInvalidNodes, i)
		}
	}

	copy(el.Nodes, nodes)
	return s.circuit.Emit(EventMoveElement, el)
}

// TranslateElement shifts every node of an element by (dx, dy).
func (s *Service) TranslateElement(id string, dx, dy float64) error {
	el, ok := s.circuit.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	nodes := make([]Position, len(el.Nodes))
	for i, n := range el.Nodes {
		nodes[i] = Position{X: n.X + dx, Y: n.Y + dy}
	}
	return s.MoveElement(id, nodes)
}

// UpdateElement replaces an element's properties and label. The new values
// are validated by the element type's factory before anything changes.
func (s *Service) UpdateElement(id string, props Properties, label *Label) error {
	if err := s.circuit.checkDispatch(); err != nil {
		return err
	}
	el, ok := s.circuit.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}

	candidate, err := s.registry.Create(el.Type, el.ID, el.Nodes, props, label)
	if err != nil {
		return fmt.Errorf("updating element %s: %w", id, err)
	}

	el.Properties = candidate.Properties
	el.Label = candidate.Label
	return s.circuit.Emit(EventUpdateElement, el)
}

// ElementAt returns the first element, in collection order, lying within
// aura pixels of p.
func (s *Service) ElementAt(p Position, aura float64) (*Element, bool) {
	for _, el := range s.circuit.elements {
		if Contains(el, p, aura) {
			return el, true
		}
	}
	return nil, false
}
