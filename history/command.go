package history

import (
	"fmt"

	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
)

// Command is a reversible edit. Commands hold value descriptions, never
// live entities, so they stay valid across removal and re-creation.
type Command interface {
	Apply(w *ecs.World) error
	Revert(w *ecs.World) error
	String() string
}

// AddCommand records that an entity described by Desc was added.
type AddCommand struct {
	Desc component.Descriptor
}

func (c AddCommand) Apply(w *ecs.World) error {
	_, err := w.Insert(c.Desc)
	return err
}

func (c AddCommand) Revert(w *ecs.World) error {
	return removeMatching(w, c.Desc)
}

func (c AddCommand) String() string { return "add " + c.Desc.String() }

// RemoveCommand records that an entity described by Desc was removed.
type RemoveCommand struct {
	Desc component.Descriptor
}

func (c RemoveCommand) Apply(w *ecs.World) error {
	return removeMatching(w, c.Desc)
}

func (c RemoveCommand) Revert(w *ecs.World) error {
	_, err := w.Insert(c.Desc)
	return err
}

func (c RemoveCommand) String() string { return "remove " + c.Desc.String() }

// Batch applies its commands in order and reverts them in reverse order, so
// an overwrite undoes as a single step.
type Batch []Command

func (b Batch) Apply(w *ecs.World) error {
	for i, c := range b {
		if err := c.Apply(w); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = b[j].Revert(w)
			}
			return err
		}
	}
	return nil
}

func (b Batch) Revert(w *ecs.World) error {
	for i := len(b) - 1; i >= 0; i-- {
		if err := b[i].Revert(w); err != nil {
			for j := i + 1; j < len(b); j++ {
				_ = b[j].Apply(w)
			}
			return err
		}
	}
	return nil
}

func (b Batch) String() string {
	return fmt.Sprintf("batch of %d", len(b))
}

// removeMatching removes the one entity whose description equals d.
func removeMatching(w *ecs.World, d component.Descriptor) error {
	for _, e := range w.OccupantsAt(d.Cell) {
		got, ok := w.Describe(e)
		if ok && got == d {
			w.Remove(e)
			return nil
		}
	}
	return fmt.Errorf("%w: no %s to remove", ecs.ErrEmptyCell, d)
}
