package history

import (
	"errors"
	"fmt"

	"github.com/nerrad567/schematic-core/internal/circuit"
)

// ErrNoGesture is returned when Commit or Cancel is called without Begin.
var ErrNoGesture = errors.New("history: no gesture in progress")

// Gesture records an interactive edit too involved for a delta command,
// such as a drag or a wire split, as a single snapshot command.
//
// Begin captures the state, the caller mutates the circuit live, and Commit
// turns the difference into a SnapshotCommand:
//
//	g := history.NewGesture(svc, h)
//	g.Begin()
//	_ = svc.TranslateElement(id, 10, 0)
//	recorded, err := g.Commit()
type Gesture struct {
	svc     *circuit.Service
	history *History
	changed func(before, after circuit.State) bool
	before  circuit.State
	active  bool
}

// NewGesture creates a gesture recorder bound to a service and history that
// records layout changes, as decided by circuit.HasChanged.
func NewGesture(svc *circuit.Service, h *History) *Gesture {
	return NewGestureFunc(svc, h, circuit.HasChanged)
}

// NewGestureFunc is NewGesture with a custom change test. Use
// circuit.ContentChanged to also record property and label edits.
func NewGestureFunc(svc *circuit.Service, h *History, changed func(before, after circuit.State) bool) *Gesture {
	return &Gesture{svc: svc, history: h, changed: changed}
}

// Begin captures the state the gesture starts from.
func (g *Gesture) Begin() {
	g.before = g.svc.ExportState()
	g.active = true
}

// Active reports whether a gesture is in progress.
func (g *Gesture) Active() bool {
	return g.active
}

// Commit ends the gesture. When the state changed, the circuit is reset to
// the captured state and a SnapshotCommand re-applies the result through
// the history. It reports whether a command was recorded.
func (g *Gesture) Commit() (bool, error) {
	if !g.active {
		return false, ErrNoGesture
	}
	g.active = false

	after := g.svc.ExportState()
	if !g.changed(g.before, after) {
		return false, nil
	}

	if err := g.svc.ImportState(g.before); err != nil {
		return false, fmt.Errorf("restoring gesture start: %w", err)
	}
	if err := g.history.Execute(NewSnapshotCommand(g.svc, g.before, after)); err != nil {
		return false, err
	}
	return true, nil
}

// Cancel abandons the gesture and restores the captured state without
// recording anything.
func (g *Gesture) Cancel() error {
	if !g.active {
		return ErrNoGesture
	}
	g.active = false
	return g.svc.ImportState(g.before)
}
