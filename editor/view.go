package editor

import (
	"github.com/milk9111/fanbuilder/common"
	"github.com/milk9111/fanbuilder/ecs/component"
)

// HUD holds the scalars a renderer shows on top of the level.
type HUD struct {
	Mode       Mode
	Score      int
	Coins      int
	Lives      int
	PMeter     int
	PMeterMax  int
	Power      component.Power
	Character  string
	Invincible bool
	UndoDepth  int
	RedoDepth  int
}

func (e *Editor) HUD() HUD {
	p := e.world.Player()
	return HUD{
		Mode:       e.mode,
		Score:      p.Score,
		Coins:      p.Coins,
		Lives:      p.Lives,
		PMeter:     p.PMeter,
		PMeterMax:  e.cfg.Physics.PMeterMax,
		Power:      p.Power,
		Character:  e.character.Name,
		Invincible: p.Invincible,
		UndoDepth:  e.history.UndoLen(),
		RedoDepth:  e.history.RedoLen(),
	}
}

// Sprite is the visual state of one entity.
type Sprite struct {
	Kind        component.Kind
	Subtype     string
	Rect        common.Rect
	Frame       int
	FacingRight bool
	Power       component.Power
	Triggered   bool
	Invincible  bool
}

// Sprites lists everything to draw: tiles row-major, then enemies, coins,
// powerups and finally the player on top.
func (e *Editor) Sprites() []Sprite {
	w := e.world
	b := w.Bounds()
	out := make([]Sprite, 0, w.Len()+1)

	for _, ent := range w.TilesIn(common.Rect{Width: b.Width(), Height: b.Height()}) {
		t := w.Tiles().Get(ent)
		out = append(out, Sprite{
			Kind:      component.KindTile,
			Subtype:   string(t.Type),
			Rect:      b.CellRect(t.Cell),
			Triggered: t.Triggered,
		})
	}
	for _, ent := range w.Enemies().Entities() {
		en := w.Enemies().Get(ent)
		out = append(out, Sprite{
			Kind:        component.KindEnemy,
			Subtype:     string(en.Type),
			Rect:        en.Rect(),
			Frame:       en.Anim.Frame,
			FacingRight: en.FacingRight,
		})
	}
	for _, ent := range w.Coins().Entities() {
		c := w.Coins().Get(ent)
		out = append(out, Sprite{Kind: component.KindCoin, Rect: c.Rect(), Frame: c.Anim.Frame})
	}
	for _, ent := range w.Powerups().Entities() {
		pu := w.Powerups().Get(ent)
		out = append(out, Sprite{Kind: component.KindPowerup, Subtype: string(pu.Type), Rect: pu.Rect()})
	}

	p := w.Player()
	out = append(out, Sprite{
		Kind:        component.KindPlayer,
		Subtype:     p.Character,
		Rect:        p.Rect(),
		FacingRight: p.FacingRight,
		Power:       p.Power,
		Invincible:  p.Invincible,
	})
	return out
}
