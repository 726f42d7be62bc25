package history

import (
	"fmt"
)

// Command pairs a forward mutation with its inverse.
//
// Execute may be called again after Undo (redo). Implementations leave the
// circuit unchanged when they return an error.
type Command interface {
	Execute() error
	Undo() error
}

// Logger defines the logging interface used by the History.
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

// History is a linear undo/redo engine over two stacks.
//
// A command moves between the stacks only when its Execute or Undo
// returned nil; errors are returned to the caller unchanged and both stacks
// keep their previous contents.
//
// History is not safe for concurrent use.
type History struct {
	history []Command
	future  []Command
	limit   int
	logger  Logger
}

// Status summarises the stack depths.
type Status struct {
	CanUndo    bool `json:"can_undo"`
	CanRedo    bool `json:"can_redo"`
	UndoLength int  `json:"undo_length"`
	RedoLength int  `json:"redo_length"`
}

// New creates an empty history. A positive limit caps the undo depth;
// the oldest entries are dropped first. Zero means unbounded.
func New(limit int) *History {
	return &History{
		limit:  max(limit, 0),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the history.
func (h *History) SetLogger(logger Logger) {
	h.logger = logger
}

// Execute runs cmd, records it for undo and discards the redo stack.
func (h *History) Execute(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return fmt.Errorf("executing command: %w", err)
	}

	h.history = append(h.history, cmd)
	if h.limit > 0 && len(h.history) > h.limit {
		dropped := len(h.history) - h.limit
		clear(h.history[:dropped])
		h.history = h.history[dropped:]
		h.logger.Debug("history limit reached", "dropped", dropped, "limit", h.limit)
	}
	clear(h.future)
	h.future = h.future[:0]
	return nil
}

// Undo reverses the most recent command. It is a no-op when there is
// nothing to undo.
func (h *History) Undo() error {
	if len(h.history) == 0 {
		return nil
	}
	cmd := h.history[len(h.history)-1]
	if err := cmd.Undo(); err != nil {
		return fmt.Errorf("undoing command: %w", err)
	}

	h.history[len(h.history)-1] = nil
	h.history = h.history[:len(h.history)-1]
	h.future = append(h.future, cmd)
	return nil
}

// Redo re-applies the most recently undone command. It is a no-op when
// there is nothing to redo.
func (h *History) Redo() error {
	if len(h.future) == 0 {
		return nil
	}
	cmd := h.future[len(h.future)-1]
	if err := cmd.Execute(); err != nil {
		return fmt.Errorf("redoing command: %w", err)
	}

	h.future[len(h.future)-1] = nil
	h.future = h.future[:len(h.future)-1]
	h.history = append(h.history, cmd)
	return nil
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.history = nil
	h.future = nil
}

// CanUndo reports whether Undo has a command to reverse.
func (h *History) CanUndo() bool { return len(h.history) > 0 }

// CanRedo reports whether Redo has a command to re-apply.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Len returns the depths of the undo and redo stacks.
func (h *History) Len() (undo, redo int) {
	return len(h.history), len(h.future)
}

// Status returns a summary of both stacks.
func (h *History) Status() Status {
	return Status{
		CanUndo:    h.CanUndo(),
		CanRedo:    h.CanRedo(),
		UndoLength: len(h.history),
		RedoLength: len(h.future),
	}
}
