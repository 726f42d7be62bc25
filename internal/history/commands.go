package history

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/nerrad567/schematic-core/internal/circuit"
)

// AddElementCommand adds one element. Undo removes it by id.
//
// The command keeps its own copy of the element so that redo re-adds the
// element as it was when the command was created.
type AddElementCommand struct {
	svc     *circuit.Service
	element *circuit.Element
}

// NewAddElementCommand creates a command that adds el to the service's circuit.
func NewAddElementCommand(svc *circuit.Service, el *circuit.Element) *AddElementCommand {
	return &AddElementCommand{svc: svc, element: el.Clone()}
}

// Element returns the element the command adds.
func (c *AddElementCommand) Element() *circuit.Element {
	return c.element.Clone()
}

// Execute adds a fresh copy of the element.
func (c *AddElementCommand) Execute() error {
	return c.svc.AddElement(c.element.Clone())
}

// Undo deletes the element.
func (c *AddElementCommand) Undo() error {
	return c.svc.DeleteElement(c.element.ID)
}

// removal records where a deleted element sat in the collection.
type removal struct {
	index   int
	element *circuit.Element
}

// captureRemovals snapshots the present elements among ids in ascending
// collection order.
func captureRemovals(svc *circuit.Service, ids []string) []removal {
	var out []removal
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		el, ok := svc.Element(id)
		if !ok {
			continue
		}
		out = append(out, removal{index: svc.IndexOf(id), element: el.Clone()})
	}
	slices.SortFunc(out, func(a, b removal) int { return cmp.Compare(a.index, b.index) })
	return out
}

// restoreRemovals reinserts elements at their recorded positions. Ascending
// order makes every recorded index valid at the time of insertion.
func restoreRemovals(svc *circuit.Service, removed []removal) error {
	for _, r := range removed {
		if err := svc.InsertElement(r.index, r.element.Clone()); err != nil {
			return fmt.Errorf("restoring %s: %w", r.element.ID, err)
		}
	}
	return nil
}

// DeleteElementsCommand deletes a set of elements. Ids that are not present
// are ignored. Undo restores the deleted elements at their former positions.
type DeleteElementsCommand struct {
	svc     *circuit.Service
	ids     []string
	removed []removal
}

// NewDeleteElementsCommand creates a command deleting the given ids.
func NewDeleteElementsCommand(svc *circuit.Service, ids ...string) *DeleteElementsCommand {
	return &DeleteElementsCommand{svc: svc, ids: slices.Clone(ids)}
}

// Execute deletes the elements.
func (c *DeleteElementsCommand) Execute() error {
	removed := captureRemovals(c.svc, c.ids)
	for _, r := range removed {
		if err := c.svc.DeleteElement(r.element.ID); err != nil {
			return err
		}
	}
	c.removed = removed
	return nil
}

// Undo restores the deleted elements.
func (c *DeleteElementsCommand) Undo() error {
	return restoreRemovals(c.svc, c.removed)
}

// Removed returns how many elements the last Execute deleted.
func (c *DeleteElementsCommand) Removed() int {
	return len(c.removed)
}

// DeleteAllCommand empties the circuit. Undo restores every element in its
// original order.
type DeleteAllCommand struct {
	svc     *circuit.Service
	removed []removal
}

// NewDeleteAllCommand creates a command clearing the service's circuit.
func NewDeleteAllCommand(svc *circuit.Service) *DeleteAllCommand {
	return &DeleteAllCommand{svc: svc}
}

// Execute deletes every element.
func (c *DeleteAllCommand) Execute() error {
	elements := c.svc.Elements()
	removed := make([]removal, len(elements))
	for i, el := range elements {
		removed[i] = removal{index: i, element: el.Clone()}
	}
	if err := c.svc.Clear(); err != nil {
		return err
	}
	c.removed = removed
	return nil
}

// Undo restores the elements.
func (c *DeleteAllCommand) Undo() error {
	return restoreRemovals(c.svc, c.removed)
}

// SnapshotCommand replaces the whole circuit with a captured state.
// Execute imports after and Undo imports before; both are atomic.
type SnapshotCommand struct {
	svc    *circuit.Service
	before circuit.State
	after  circuit.State
}

// NewSnapshotCommand creates a command switching between two snapshots.
func NewSnapshotCommand(svc *circuit.Service, before, after circuit.State) *SnapshotCommand {
	return &SnapshotCommand{svc: svc, before: before, after: after}
}

// Execute imports the after state.
func (c *SnapshotCommand) Execute() error {
	return c.svc.ImportState(c.after)
}

// Undo imports the before state.
func (c *SnapshotCommand) Undo() error {
	return c.svc.ImportState(c.before)
}
