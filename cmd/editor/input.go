package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/fanbuilder/editor"
)

const stickDeadzone = 0.2

// pollKeys reads the held movement keys, with the first gamepad as an
// alternative.
func pollKeys() editor.Keys {
	keys := editor.Keys{
		Left:   ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:  ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Run:    ebiten.IsKeyPressed(ebiten.KeyShift),
		Jump:   ebiten.IsKeyPressed(ebiten.KeySpace) || ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Escape: inpututil.IsKeyJustPressed(ebiten.KeyEscape),
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if math.Abs(x) > stickDeadzone {
			keys.Left = keys.Left || x < 0
			keys.Right = keys.Right || x > 0
		}
		keys.Jump = keys.Jump || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
		keys.Run = keys.Run || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightLeft)
		keys.Escape = keys.Escape || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterRight)
	}
	return keys
}

func ctrlPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
}

func cursor() cp.Vector {
	x, y := ebiten.CursorPosition()
	return cp.Vector{X: float64(x), Y: float64(y)}
}

// pollEvents turns mouse and shortcut input into editor events. Painting
// while dragging only fires when the cursor enters a new cell.
func (g *Game) pollEvents() []editor.Event {
	var events []editor.Event

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		target := editor.ModePlaytest
		if g.ed.Mode() == editor.ModePlaytest {
			target = editor.ModeEdit
		}
		events = append(events, editor.SwitchMode{Target: target})
	}
	if ctrlPressed() && inpututil.IsKeyJustPressed(ebiten.KeyZ) {
		events = append(events, editor.Undo{})
	}
	if ctrlPressed() && inpututil.IsKeyJustPressed(ebiten.KeyY) {
		events = append(events, editor.Redo{})
	}

	if g.ed.Mode() != editor.ModeEdit {
		g.lastCell = nil
		return events
	}

	pos := cursor()
	cell := g.ed.World().Bounds().CellAt(pos)
	fresh := g.lastCell == nil || *g.lastCell != cell
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if fresh || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			events = append(events, editor.PlaceAt{Pos: pos, Brush: g.palette[g.brush]})
		}
		g.lastCell = &cell
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		if fresh || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
			events = append(events, editor.RemoveAt{Pos: pos})
		}
		g.lastCell = &cell
	default:
		g.lastCell = nil
	}
	return events
}

// pollCommands handles the driver-only shortcuts: palette, character,
// templates, saving and the clipboard.
func (g *Game) pollCommands() {
	if g.ed.Mode() != editor.ModeEdit {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyE) && !ctrlPressed():
		g.brush = (g.brush + 1) % len(g.palette)
	case inpututil.IsKeyJustPressed(ebiten.KeyQ) && !ctrlPressed():
		g.brush = (g.brush + len(g.palette) - 1) % len(g.palette)
	case inpututil.IsKeyJustPressed(ebiten.KeyC) && !ctrlPressed():
		g.nextCharacter()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.nextTemplate()
	case ctrlPressed() && inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.save()
	case ctrlPressed() && inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyLevel()
	case ctrlPressed() && inpututil.IsKeyJustPressed(ebiten.KeyV):
		g.pasteLevel()
	}
}
