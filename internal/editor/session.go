package editor

import (
	"fmt"
	"sync"

	"github.com/nerrad567/schematic-core/internal/circuit"
	"github.com/nerrad567/schematic-core/internal/history"
	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
	"github.com/nerrad567/schematic-core/internal/netlist"
	"github.com/nerrad567/schematic-core/internal/project"
	"github.com/nerrad567/schematic-core/internal/wiresplit"
)

// Logger defines the logging interface used by the Session.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Session is one open circuit with its undo history and project binding.
// It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	cfg      config.EditorConfig
	registry *circuit.Registry
	svc      *circuit.Service
	history  *history.History
	gesture  *history.Gesture
	splitter *wiresplit.Service
	netlist  *netlist.Adapter

	projects project.Repository
	current  string
	onSave   func(project.Project)

	logger Logger
}

// NewSession creates a session over an empty circuit with the built-in
// element types. projects may be nil, in which case project operations
// return ErrNoProjectStore.
func NewSession(cfg config.EditorConfig, projects project.Repository) *Session {
	registry := circuit.NewDefaultRegistry()
	svc := circuit.NewService(registry)
	h := history.New(cfg.HistoryLimit)

	return &Session{
		cfg:      cfg,
		registry: registry,
		svc:      svc,
		history:  h,
		gesture:  history.NewGestureFunc(svc, h, circuit.ContentChanged),
		splitter: wiresplit.New(svc),
		netlist:  netlist.New(registry),
		projects: projects,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the session and the core it drives.
func (s *Session) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
	s.svc.SetLogger(logger)
	s.history.SetLogger(logger)
}

// SetSaveHook registers fn to be called after each successful Save.
func (s *Session) SetSaveHook(fn func(project.Project)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSave = fn
}

// Subscribe registers an observer of circuit change events.
// Observers run under the session lock and must not call the session.
func (s *Session) Subscribe(o circuit.Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unsub := s.svc.Subscribe(o)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		unsub()
	}
}

// Types returns the specs of the element types the session can place.
func (s *Session) Types() []circuit.TypeSpec {
	specs := make([]circuit.TypeSpec, 0, len(s.registry.Types()))
	for _, t := range s.registry.Types() {
		if spec, ok := s.registry.Spec(t); ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

// Place creates an element and adds it as one undoable step. Without nodes
// the element is laid out horizontally around DefaultCentre. A
// finalizePlacement event follows the addElement event.
func (s *Session) Place(t circuit.Type, nodes []circuit.Position, props circuit.Properties, label *circuit.Label) (*circuit.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.registry.Create(t, "", s.placementNodes(t, nodes, DefaultCentre), props, label)
	if err != nil {
		return nil, err
	}
	if err := s.history.Execute(history.NewAddElementCommand(s.svc, el)); err != nil {
		return nil, err
	}

	placed, _ := s.svc.Element(el.ID)
	if err := s.svc.Emit(circuit.EventFinalizePlacement, placed); err != nil {
		return nil, err
	}
	s.logger.Debug("element placed", "id", el.ID, "type", t)
	return placed.Clone(), nil
}

// Preview announces a not-yet-placed element of type t centred on centre
// with a movePreview event. Nothing is added or recorded.
func (s *Session) Preview(t circuit.Type, centre circuit.Position) (*circuit.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.registry.Create(t, "", s.placementNodes(t, nil, centre), nil, nil)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Emit(circuit.EventMovePreview, el); err != nil {
		return nil, err
	}
	return el, nil
}

// Delete removes the given elements as one undoable step and returns how
// many were removed. Unknown ids are ignored unless none of them exist.
func (s *Session) Delete(ids ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, id := range ids {
		if _, ok := s.svc.Element(id); ok {
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: %v", circuit.ErrElementNotFound, ids)
	}

	cmd := history.NewDeleteElementsCommand(s.svc, ids...)
	if err := s.history.Execute(cmd); err != nil {
		return 0, err
	}
	return cmd.Removed(), nil
}

// DeleteAll empties the circuit as one undoable step. An empty circuit is
// left alone and nothing is recorded.
func (s *Session) DeleteAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.svc.Len()
	if n == 0 {
		return 0, nil
	}
	if err := s.history.Execute(history.NewDeleteAllCommand(s.svc)); err != nil {
		return 0, err
	}
	return n, nil
}

// Move replaces an element's nodes, snapped when enabled. It reports
// whether anything changed.
func (s *Session) Move(id string, nodes []circuit.Position) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.record(func() error {
		return s.svc.MoveElement(id, s.snap(nodes))
	})
}

// Translate drags an element by (dx, dy). With snapping enabled the first
// node lands on the grid and the others keep their offsets to it.
func (s *Session) Translate(id string, dx, dy float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.svc.Element(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", circuit.ErrElementNotFound, id)
	}
	first := el.Nodes[0]
	target := s.snapPoint(circuit.Position{X: first.X + dx, Y: first.Y + dy})

	return s.record(func() error {
		return s.svc.TranslateElement(id, target.X-first.X, target.Y-first.Y)
	})
}

// Update replaces an element's properties and label.
func (s *Session) Update(id string, props circuit.Properties, label *circuit.Label) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.record(func() error {
		return s.svc.UpdateElement(id, props, label)
	})
}

// SplitWire splits the first wire passing through node, if any, as one
// undoable step.
func (s *Session) SplitWire(node circuit.Position) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node = s.snapPoint(node)
	return s.record(func() error {
		_, err := s.splitter.TrySplitAtNode(node)
		return err
	})
}

// DrawWire adds a wire from start to end and splits any existing wire that
// either endpoint lands on, all as one undoable step. It returns the new
// wire.
func (s *Session) DrawWire(start, end circuit.Position) (*circuit.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := s.snap([]circuit.Position{start, end})
	wire, err := s.registry.Create(circuit.TypeWire, "", nodes, nil, nil)
	if err != nil {
		return nil, err
	}

	_, err = s.record(func() error {
		for _, n := range nodes {
			if _, err := s.splitter.TrySplitAtNode(n); err != nil {
				return err
			}
		}
		if err := s.svc.AddElement(wire.Clone()); err != nil {
			return err
		}
		placed, _ := s.svc.Element(wire.ID)
		return s.svc.Emit(circuit.EventFinalizePlacement, placed)
	})
	if err != nil {
		return nil, err
	}
	return wire, nil
}

// record runs edit inside a gesture so the whole edit becomes one snapshot
// command. A failed edit is rolled back without touching the history.
func (s *Session) record(edit func() error) (bool, error) {
	s.gesture.Begin()
	if err := edit(); err != nil {
		if cancelErr := s.gesture.Cancel(); cancelErr != nil {
			s.logger.Error("rolling back failed edit", "error", cancelErr)
		}
		return false, err
	}
	return s.gesture.Commit()
}

// Undo reverses the most recent step. It is a no-op with nothing to undo.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Undo()
}

// Redo re-applies the most recently undone step.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Redo()
}

// HistoryStatus returns the undo and redo depths.
func (s *Session) HistoryStatus() history.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Status()
}

// State returns a deep copy of the circuit.
func (s *Session) State() circuit.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.ExportState()
}

// Element returns a copy of the element with the given id.
func (s *Session) Element(id string) (*circuit.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.svc.Element(id)
	if !ok {
		return nil, false
	}
	return el.Clone(), true
}

// ElementAt returns a copy of the first element within the configured hit
// aura of p.
func (s *Session) ElementAt(p circuit.Position) (*circuit.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.svc.ElementAt(p, s.cfg.HitAura)
	if !ok {
		return nil, false
	}
	return el.Clone(), true
}

// Netlist exports the circuit as netlist text.
func (s *Session) Netlist() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.netlist.ExportCircuit(s.svc)
}

// LoadNetlist replaces the circuit with the parsed text, clears the history
// and detaches the session from its project. On error nothing changes.
func (s *Session) LoadNetlist(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadNetlist(text); err != nil {
		return err
	}
	s.current = ""
	return nil
}

func (s *Session) loadNetlist(text string) error {
	if err := s.netlist.ImportCircuit(s.svc, text); err != nil {
		return err
	}
	s.history.Clear()
	return nil
}

// Reset empties the circuit, clears the history and detaches the session
// from its project.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.svc.ImportState(circuit.State{}); err != nil {
		return err
	}
	s.history.Clear()
	s.current = ""
	return nil
}
