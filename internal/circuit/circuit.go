package circuit

import (
	"fmt"
	"slices"
)

// Circuit is the ordered container of elements. Insertion order is
// preserved and is the order used by exports, snapshots and the netlist.
//
// Every mutation is followed by a change notification to the subscribed
// observers. Circuit is not safe for concurrent use; callers that share one
// across goroutines serialise access (see the editor package).
type Circuit struct {
	elements []*Element
	index    map[string]int

	observers   []subscription
	nextSubID   int
	dispatching bool
}

type subscription struct {
	id  int
	obs Observer
}

// NewCircuit creates an empty circuit.
func NewCircuit() *Circuit {
	return &Circuit{index: make(map[string]int)}
}

// Subscribe registers an observer and returns a function that removes it.
func (c *Circuit) Subscribe(o Observer) (unsubscribe func()) {
	c.nextSubID++
	id := c.nextSubID
	c.observers = append(c.observers, subscription{id: id, obs: o})
	return func() {
		c.observers = slices.DeleteFunc(c.observers, func(s subscription) bool {
			return s.id == id
		})
	}
}

// Len returns the number of elements.
func (c *Circuit) Len() int {
	return len(c.elements)
}

// Elements returns the elements in insertion order. The slice is a copy;
// the elements are not.
func (c *Circuit) Elements() []*Element {
	return slices.Clone(c.elements)
}

// Get returns the element with the given id.
func (c *Circuit) Get(id string) (*Element, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.elements[i], true
}

// IndexOf returns the position of an element, or -1 when absent.
func (c *Circuit) IndexOf(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Add appends an element and emits EventAddElement.
func (c *Circuit) Add(el *Element) error {
	return c.Insert(len(c.elements), el)
}

// Insert places an element at position i (clamped to the valid range) and
// emits EventAddElement.
func (c *Circuit) Insert(i int, el *Element) error {
	if err := c.checkDispatch(); err != nil {
		return err
	}
	if el == nil || el.ID == "" {
		return fmt.Errorf("%w: element must have an id", ErrInvalidElement)
	}
	if _, exists := c.index[el.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, el.ID)
	}

	i = max(0, min(i, len(c.elements)))
	c.elements = slices.Insert(c.elements, i, el)
	c.reindex(i)

	return c.emit(Event{Type: EventAddElement, Element: el})
}

// Delete removes an element by id and emits EventDeleteElement.
// Deleting an absent id is a no-op and reports false.
func (c *Circuit) Delete(id string) (bool, error) {
	if err := c.checkDispatch(); err != nil {
		return false, err
	}
	i, ok := c.index[id]
	if !ok {
		return false, nil
	}

	el := c.elements[i]
	c.elements = slices.Delete(c.elements, i, i+1)
	delete(c.index, id)
	c.reindex(i)

	return true, c.emit(Event{Type: EventDeleteElement, Element: el})
}

// Clear deletes every element in collection order, emitting one
// EventDeleteElement per element.
func (c *Circuit) Clear() error {
	if err := c.checkDispatch(); err != nil {
		return err
	}
	for len(c.elements) > 0 {
		if _, err := c.Delete(c.elements[0].ID); err != nil {
			return err
		}
	}
	return nil
}

// Replace swaps the whole element list and emits EventImportState.
// The caller guarantees that ids are unique.
func (c *Circuit) Replace(elements []*Element) error {
	if err := c.checkDispatch(); err != nil {
		return err
	}
	c.elements = elements
	c.index = make(map[string]int, len(elements))
	c.reindex(0)

	return c.emit(Event{Type: EventImportState})
}

// Emit delivers an event to every observer in subscription order.
// It fails with ErrReentrantEmit when called from inside an observer.
func (c *Circuit) Emit(t EventType, el *Element) error {
	return c.emit(Event{Type: t, Element: el})
}

func (c *Circuit) emit(ev Event) error {
	if err := c.checkDispatch(); err != nil {
		return err
	}
	c.dispatching = true
	defer func() { c.dispatching = false }()

	// Observers may unsubscribe while being notified.
	for _, s := range slices.Clone(c.observers) {
		s.obs.OnCircuitEvent(ev)
	}
	return nil
}

func (c *Circuit) checkDispatch() error {
	if c.dispatching {
		return ErrReentrantEmit
	}
	return nil
}

// reindex refreshes index entries from position from onwards.
func (c *Circuit) reindex(from int) {
	for i := from; i < len(c.elements); i++ {
		c.index[c.elements[i].ID] = i
	}
}
