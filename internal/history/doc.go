// Package history provides the undo/redo engine for circuit edits.
//
// History keeps two stacks of Commands and never inspects what a command
// does. Two kinds of command share the interface:
//
//   - delta commands (AddElementCommand, DeleteElementsCommand,
//     DeleteAllCommand) apply and reverse one specific change
//   - SnapshotCommand swaps whole-circuit states captured before and after
//     an interactive gesture, using the atomic circuit.Service.ImportState
//
// Executing a new command always discards the redo stack.
package history
