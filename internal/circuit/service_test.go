package circuit

import (
	"errors"
	"slices"
	"testing"
)

// recorder collects the events it observes.
type recorder struct {
	events []Event
}

func (r *recorder) OnCircuitEvent(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewDefaultRegistry())
}

func mustCreate(t *testing.T, svc *Service, typ Type, id string, nodes ...Position) *Element {
	t.Helper()
	el, err := svc.Registry().Create(typ, id, nodes, nil, nil)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", typ, err)
	}
	return el
}

func ids(elements []*Element) []string {
	out := make([]string, len(elements))
	for i, el := range elements {
		out[i] = el.ID
	}
	return out
}

func TestService_AddElement(t *testing.T) {
	svc := newTestService(t)
	rec := &recorder{}
	svc.Subscribe(rec)

	a := mustCreate(t, svc, TypeWire, "a", Position{0, 0}, Position{10, 0})
	b := mustCreate(t, svc, TypeResistor, "b", Position{10, 0}, Position{60, 0})

	for _, el := range []*Element{a, b} {
		if err := svc.AddElement(el); err != nil {
			t.Fatalf("AddElement(%s) error = %v", el.ID, err)
		}
	}

	if got := ids(svc.Elements()); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Elements() = %v, want [a b]", got)
	}
	if got := rec.types(); !slices.Equal(got, []EventType{EventAddElement, EventAddElement}) {
		t.Errorf("events = %v", got)
	}
	if rec.events[1].Element != b {
		t.Error("addElement event does not carry the added element")
	}
}

func TestService_AddElementDuplicateID(t *testing.T) {
	svc := newTestService(t)
	rec := &recorder{}
	svc.Subscribe(rec)

	if err := svc.AddElement(mustCreate(t, svc, TypeWire, "x", Position{0, 0}, Position{10, 0})); err != nil {
		t.Fatalf("AddElement() error = %v", err)
	}
	err := svc.AddElement(mustCreate(t, svc, TypeWire, "x", Position{0, 10}, Position{10, 10}))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("AddElement() duplicate error = %v, want ErrDuplicateID", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate id error is not a validation error: %v", err)
	}
	if svc.Len() != 1 || len(rec.events) != 1 {
		t.Errorf("duplicate add changed state: len=%d events=%d", svc.Len(), len(rec.events))
	}
}

func TestService_DeleteElement(t *testing.T) {
	svc := newTestService(t)
	el := mustCreate(t, svc, TypeWire, "w", Position{0, 0}, Position{10, 0})
	if err := svc.AddElement(el); err != nil {
		t.Fatalf("AddElement() error = %v", err)
	}

	rec := &recorder{}
	svc.Subscribe(rec)

	if err := svc.DeleteElement("w"); err != nil {
		t.Fatalf("DeleteElement() error = %v", err)
	}
	if svc.Len() != 0 {
		t.Errorf("Len() = %d, want 0", svc.Len())
	}
	if len(rec.events) != 1 || rec.events[0].Type != EventDeleteElement || rec.events[0].Element != el {
		t.Errorf("events = %+v", rec.events)
	}

	// Absent ids are a silent no-op.
	if err := svc.DeleteElement("w"); err != nil {
		t.Fatalf("DeleteElement() second call error = %v", err)
	}
	if len(rec.events) != 1 {
		t.Errorf("deleting an absent id emitted %d extra events", len(rec.events)-1)
	}
}

func TestService_InsertElementKeepsOrder(t *testing.T) {
	svc := newTestService(t)
	for _, id := range []string{"a", "c"} {
		if err := svc.AddElement(mustCreate(t, svc, TypeWire, id, Position{0, 0}, Position{10, 0})); err != nil {
			t.Fatalf("AddElement() error = %v", err)
		}
	}

	if err := svc.InsertElement(1, mustCreate(t, svc, TypeWire, "b", Position{0, 0}, Position{10, 0})); err != nil {
		t.Fatalf("InsertElement() error = %v", err)
	}
	if got := ids(svc.Elements()); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Elements() = %v, want [a b c]", got)
	}
	if svc.IndexOf("c") != 2 || svc.IndexOf("missing") != -1 {
		t.Errorf("IndexOf() c=%d missing=%d", svc.IndexOf("c"), svc.IndexOf("missing"))
	}
}

func TestService_MoveElement(t *testing.T) {
	svc := newTestService(t)
	if err := svc.AddElement(mustCreate(t, svc, TypeResistor, "r", Position{0, 0}, Position{50, 0})); err != nil {
		t.Fatalf("AddElement() error = %v", err)
	}
	rec := &recorder{}
	svc.Subscribe(rec)

	if err := svc.MoveElement("r", []Position{{10, 10}, {60, 10}}); err != nil {
		t.Fatalf("MoveElement() error = %v", err)
	}
	el, _ := svc.Element("r")
	if !el.Nodes[0].Equal(Position{10, 10}) || !el.Nodes[1].Equal(Position{60, 10}) {
		t.Errorf("Nodes = %v", el.Nodes)
	}
	if got := rec.types(); !slices.Equal(got, []EventType{EventMoveElement}) {
		t.Errorf("events = %v", got)
	}

	if err := svc.MoveElement("r", []Position{{0, 0}}); !errors.Is(err, ErrInvalidNodes) {
		t.Errorf("MoveElement() wrong count error = %v, want ErrInvalidNodes", err)
	}
	if err := svc.MoveElement("nope", []Position{{0, 0}, {1, 1}}); !errors.Is(err, ErrElementNotFound) {
		t.Errorf("MoveElement() missing error = %v, want ErrElementNotFound", err)
	}
	if err := svc.MoveElement("r", []Position{{0, 0}, {1e20, 0}}); !errors.Is(err, ErrInvalidNodes) {
		t.Errorf("MoveElement() huge coordinate error = %v, want ErrInvalidNodes", err)
	}
	if err := svc.TranslateElement("r", 0, -2*MaxCoordinate); !errors.Is(err, ErrInvalidNodes) {
		t.Errorf("TranslateElement() past the bound error = %v, want ErrInvalidNodes", err)
	}
	el, _ = svc.Element("r")
	if !el.Nodes[0].Equal(Position{10, 10}) {
		t.Errorf("rejected move changed Nodes to %v", el.Nodes)
	}
}

func TestService_TranslateElement(t *testing.T) {
	svc := newTestService(t)
	if err := svc.AddElement(mustCreate(t, svc, TypeGround, "g", Position{5, 5})); err != nil {
		t.Fatalf("AddElement() error = %v", err)
	}

	if err := svc.TranslateElement("g", 10, -5); err != nil {
		t.Fatalf("TranslateElement() error = %v", err)
	}
	el, _ := svc.Element("g")
	if !el.Nodes[0].Equal(Position{15, 0}) {
		t.Errorf("Nodes[0] = %v, want {15 0}", el.Nodes[0])
	}
}

func TestService_UpdateElement(t *testing.T) {
	svc := newTestService(t)
	if err := svc.AddElement(mustCreate(t, svc, TypeCapacitor, "c", Position{0, 0}, Position{50, 0})); err != nil {
		t.Fatalf("AddElement() error = %v", err)
	}
	rec := &recorder{}
	svc.Subscribe(rec)

	label, _ := NewLabel("C1")
	if err := svc.UpdateElement("c", Properties{PropCapacitance: Value(1e-6)}, label); err != nil {
		t.Fatalf("UpdateElement() error = %v", err)
	}
	el, _ := svc.Element("c")
	if v, ok := el.Property(PropCapacitance); !ok || v != 1e-6 {
		t.Errorf("capacitance = %v, %v", v, ok)
	}
	if el.LabelText() != "C1" {
		t.Errorf("label = %q, want C1", el.LabelText())
	}

	err := svc.UpdateElement("c", Properties{PropResistance: Value(1)}, nil)
	if !errors.Is(err, ErrInvalidProperty) {
		t.Fatalf("UpdateElement() bad property error = %v, want ErrInvalidProperty", err)
	}
	if el.LabelText() != "C1" {
		t.Error("failed update changed the element")
	}
	if got := rec.types(); !slices.Equal(got, []EventType{EventUpdateElement}) {
		t.Errorf("events = %v", got)
	}
}

func TestService_Clear(t *testing.T) {
	svc := newTestService(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := svc.AddElement(mustCreate(t, svc, TypeWire, id, Position{0, 0}, Position{10, 0})); err != nil {
			t.Fatalf("AddElement() error = %v", err)
		}
	}
	rec := &recorder{}
	svc.Subscribe(rec)

	if err := svc.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if svc.Len() != 0 {
		t.Errorf("Len() = %d, want 0", svc.Len())
	}
	if len(rec.events) != 3 {
		t.Errorf("Clear() emitted %d events, want 3", len(rec.events))
	}
}

func TestService_ObserverOrderAndUnsubscribe(t *testing.T) {
	svc := newTestService(t)
	var order []string

	svc.Subscribe(ObserverFunc(func(Event) { order = append(order, "first") }))
	unsubscribe := svc.Subscribe(ObserverFunc(func(Event) { order = append(order, "second") }))

	if err := svc.Emit(EventFinalizePlacement, nil); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	unsubscribe()
	if err := svc.Emit(EventMovePreview, nil); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	want := []string{"first", "second", "first"}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestService_ReentrantEmitRejected(t *testing.T) {
	svc := newTestService(t)
	extra := mustCreate(t, svc, TypeWire, "extra", Position{0, 0}, Position{10, 0})

	var nestedErrs []error
	svc.Subscribe(ObserverFunc(func(ev Event) {
		if ev.Type != EventAddElement || ev.Element.ID == "extra" {
			return
		}
		nestedErrs = append(nestedErrs,
			svc.AddElement(extra),
			svc.DeleteElement(ev.Element.ID),
			svc.Emit(EventMovePreview, nil),
			svc.MoveElement(ev.Element.ID, []Position{{1, 1}, {2, 2}}),
		)
	}))

	if err := svc.AddElement(mustCreate(t, svc, TypeWire, "w", Position{0, 0}, Position{10, 0})); err != nil {
		t.Fatalf("AddElement() error = %v", err)
	}

	for i, err := range nestedErrs {
		if !errors.Is(err, ErrReentrantEmit) {
			t.Errorf("nested call %d error = %v, want ErrReentrantEmit", i, err)
		}
	}
	if got := ids(svc.Elements()); !slices.Equal(got, []string{"w"}) {
		t.Errorf("Elements() = %v, want [w]", got)
	}
	el, _ := svc.Element("w")
	if !el.Nodes[0].Equal(Position{0, 0}) {
		t.Error("re-entrant move mutated the element")
	}

	// Dispatch is usable again after the handler returns.
	if err := svc.AddElement(extra); err != nil {
		t.Fatalf("AddElement() after dispatch error = %v", err)
	}
}

func TestService_ElementAt(t *testing.T) {
	svc := newTestService(t)
	if err := svc.AddElement(mustCreate(t, svc, TypeWire, "h", Position{0, 0}, Position{100, 0})); err != nil {
		t.Fatalf("AddElement() error = %v", err)
	}
	if err := svc.AddElement(mustCreate(t, svc, TypeGround, "g", Position{200, 200})); err != nil {
		t.Fatalf("AddElement() error = %v", err)
	}

	tests := []struct {
		name   string
		p      Position
		wantID string
	}{
		{name: "on wire", p: Position{50, 0}, wantID: "h"},
		{name: "near wire", p: Position{50, 9}, wantID: "h"},
		{name: "past wire end within aura", p: Position{105, 0}, wantID: "h"},
		{name: "past wire end outside aura", p: Position{111, 0}},
		{name: "far from wire", p: Position{50, 11}},
		{name: "near ground", p: Position{205, 205}, wantID: "g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, ok := svc.ElementAt(tt.p, DefaultAura)
			if tt.wantID == "" {
				if ok {
					t.Errorf("ElementAt(%v) = %s, want none", tt.p, el.ID)
				}
				return
			}
			if !ok || el.ID != tt.wantID {
				t.Errorf("ElementAt(%v) = %v, %v; want %s", tt.p, el, ok, tt.wantID)
			}
		})
	}
}
