// Package circuit provides the schematic domain model: element value
// objects, the element type registry, the ordered Circuit container with its
// change notifications, and the Service that mutates it.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                           Service                            │
//	│                                                              │
//	│  ┌──────────────┐    ┌──────────────┐    ┌──────────────┐    │
//	│  │   Registry   │    │   Circuit    │    │    State     │    │
//	│  │ (registry.go)│    │ (circuit.go) │    │  (state.go)  │    │
//	│  │              │    │              │    │              │    │
//	│  │ • factories  │    │ • ordered    │    │ • export     │    │
//	│  │ • type specs │    │ • observers  │    │ • import     │    │
//	│  │ • validation │    │ • no re-entry│    │ • change det.│    │
//	│  └──────────────┘    └──────────────┘    └──────────────┘    │
//	└──────────────────────────────────────────────────────────────┘
//	          ▲                    │
//	          │                    ▼
//	   netlist, wiresplit    history, notify, api
//
// # Key Types
//
//   - Element: a typed component (Resistor, Capacitor, Inductor, Junction,
//     Ground, Wire) with node positions, properties and an optional label
//   - Registry: maps a Type to the Factory that builds and validates it
//   - Circuit: insertion-ordered elements plus synchronous observers
//   - State: a deep snapshot used for undo and persistence
//
// # Change Notifications
//
// Observers are called synchronously in subscription order after every
// mutation. Dispatch is not re-entrant: a mutation or Emit attempted from
// inside an observer fails with ErrReentrantEmit and changes nothing.
//
// # Usage
//
//	reg := circuit.NewDefaultRegistry()
//	svc := circuit.NewService(reg)
//
//	r, err := reg.Create(circuit.TypeResistor, "", []circuit.Position{{X: 0, Y: 0}, {X: 50, Y: 0}},
//	    circuit.Properties{circuit.PropResistance: circuit.Value(4700)}, nil)
//	if err != nil {
//	    return err
//	}
//	if err := svc.AddElement(r); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. Hosts that serve
// concurrent callers serialise access around the Service.
package circuit
