package editor

import (
	"errors"
	"fmt"

	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
	"github.com/milk9111/fanbuilder/history"
)

func (e *Editor) place(ev PlaceAt) error {
	b := e.world.Bounds()
	cell := b.CellAt(ev.Pos)
	if !b.Contains(cell) {
		return fmt.Errorf("%w %s", ecs.ErrOutOfBounds, cell)
	}
	d := ev.Brush.descriptor(cell)
	if e.holdsOnly(cell, d) {
		return nil
	}

	_, removed, err := e.world.Place(d)
	if err != nil {
		for _, r := range removed {
			_, _ = e.world.Insert(r)
		}
		return err
	}
	if len(removed) == 0 {
		e.history.Push(history.AddCommand{Desc: d})
		return nil
	}
	batch := make(history.Batch, 0, len(removed)+1)
	for _, r := range removed {
		batch = append(batch, history.RemoveCommand{Desc: r})
	}
	e.history.Push(append(batch, history.AddCommand{Desc: d}))
	return nil
}

// holdsOnly reports whether cell already holds exactly d and nothing else,
// in which case placing d again would record a useless overwrite.
func (e *Editor) holdsOnly(cell component.Cell, d component.Descriptor) bool {
	occupants := e.world.OccupantsAt(cell)
	if len(occupants) != 1 {
		return false
	}
	got, ok := e.world.Describe(occupants[0])
	return ok && got == d
}

func (e *Editor) remove(ev RemoveAt) error {
	cell := e.world.Bounds().CellAt(ev.Pos)
	removed, err := e.world.RemoveAt(cell)
	if err != nil {
		return err
	}
	if len(removed) == 1 {
		e.history.Push(history.RemoveCommand{Desc: removed[0]})
		return nil
	}
	batch := make(history.Batch, 0, len(removed))
	for _, r := range removed {
		batch = append(batch, history.RemoveCommand{Desc: r})
	}
	e.history.Push(batch)
	return nil
}

// undo and redo treat an empty stack as a no-op.
func (e *Editor) undo() error {
	_, err := e.history.Undo(e.world)
	if errors.Is(err, history.ErrEmptyHistory) {
		return nil
	}
	return err
}

func (e *Editor) redo() error {
	_, err := e.history.Redo(e.world)
	if errors.Is(err, history.ErrEmptyHistory) {
		return nil
	}
	return err
}
