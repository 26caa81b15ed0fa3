// Package history keeps bounded undo and redo stacks of edit commands.
package history

import (
	"errors"
	"fmt"

	"github.com/milk9111/fanbuilder/ecs"
)

var ErrEmptyHistory = errors.New("history: nothing to undo or redo")

const DefaultCapacity = 20

// History holds at most capacity commands per stack. Pushing onto a full
// undo stack drops the oldest entry.
type History struct {
	capacity int
	undo     []Command
	redo     []Command
}

func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

func (h *History) Capacity() int { return h.capacity }
func (h *History) UndoLen() int  { return len(h.undo) }
func (h *History) RedoLen() int  { return len(h.redo) }

// Push records a command that has already been applied and clears redo.
func (h *History) Push(c Command) {
	if c == nil {
		return
	}
	h.undo = pushBounded(h.undo, c, h.capacity)
	h.redo = h.redo[:0]
}

// Undo reverts the most recent command and moves it to the redo stack.
func (h *History) Undo(w *ecs.World) (Command, error) {
	if len(h.undo) == 0 {
		return nil, ErrEmptyHistory
	}
	c := h.undo[len(h.undo)-1]
	if err := c.Revert(w); err != nil {
		return nil, fmt.Errorf("history: undo %s: %w", c, err)
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = pushBounded(h.redo, c, h.capacity)
	return c, nil
}

// Redo re-applies the most recently undone command.
func (h *History) Redo(w *ecs.World) (Command, error) {
	if len(h.redo) == 0 {
		return nil, ErrEmptyHistory
	}
	c := h.redo[len(h.redo)-1]
	if err := c.Apply(w); err != nil {
		return nil, fmt.Errorf("history: redo %s: %w", c, err)
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = pushBounded(h.undo, c, h.capacity)
	return c, nil
}

// Clear forgets everything, e.g. after a level is replaced wholesale.
func (h *History) Clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}

// Resize changes the capacity, dropping the oldest entries of either stack
// that no longer fit.
func (h *History) Resize(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h.capacity = capacity
	h.undo = keepNewest(h.undo, capacity)
	h.redo = keepNewest(h.redo, capacity)
}

func keepNewest(stack []Command, capacity int) []Command {
	if over := len(stack) - capacity; over > 0 {
		n := copy(stack, stack[over:])
		clear(stack[n:])
		stack = stack[:n]
	}
	return stack
}

func pushBounded(stack []Command, c Command, capacity int) []Command {
	if len(stack) >= capacity {
		copy(stack, stack[1:])
		stack = stack[:len(stack)-1]
	}
	return append(stack, c)
}
