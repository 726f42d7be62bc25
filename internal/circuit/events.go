package circuit

// EventType names a change notification.
type EventType string

// Change notification types.
const (
	EventAddElement        EventType = "addElement"
	EventMoveElement       EventType = "moveElement"
	EventDeleteElement     EventType = "deleteElement"
	EventUpdateElement     EventType = "updateElement"
	EventImportState       EventType = "importState"
	EventFinalizePlacement EventType = "finalizePlacement"
	EventMovePreview       EventType = "movePreview"
)

// Event is delivered to observers after a circuit mutation.
// Element is nil for whole-circuit events such as EventImportState.
type Event struct {
	Type    EventType
	Element *Element
}

// Observer receives change notifications synchronously, in subscription order.
//
// An observer must not mutate the circuit or emit from inside
// OnCircuitEvent; such calls fail with ErrReentrantEmit.
type Observer interface {
	OnCircuitEvent(Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

// OnCircuitEvent calls f(ev).
func (f ObserverFunc) OnCircuitEvent(ev Event) { f(ev) }
