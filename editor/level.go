package editor

import (
	"fmt"

	"github.com/milk9111/fanbuilder/ecs/system"
	"github.com/milk9111/fanbuilder/levels"
	"github.com/milk9111/fanbuilder/prefabs"
)

// Export describes the level being edited. During a playtest that is the
// level as it was when the playtest started.
func (e *Editor) Export() levels.Document {
	if e.mode == ModePlaytest {
		return levels.FromDescriptors(e.saved, e.world.Bounds().GridSize, e.theme)
	}
	return levels.FromWorld(e.world, e.theme)
}

// Import replaces the level with doc. The current level is kept unless all
// of doc loads.
func (e *Editor) Import(doc levels.Document) error {
	if e.mode != ModeEdit {
		return fmt.Errorf("%w: import in %s", ErrModeLocked, e.mode)
	}
	w, err := e.cfg.NewWorld(e.character.Name)
	if err != nil {
		return err
	}
	if err := doc.Populate(w); err != nil {
		return err
	}
	prev := e.world.Player()
	p := w.Player()
	p.Lives, p.Score, p.Coins = prev.Lives, prev.Score, prev.Coins

	e.world = w
	e.theme = doc.Theme
	e.history.Clear()
	e.logger.Printf("editor: imported level with %d entities", w.Len())
	return nil
}

// LoadTemplate imports one of the embedded level templates.
func (e *Editor) LoadTemplate(name string) error {
	if e.mode != ModeEdit {
		return fmt.Errorf("%w: load template in %s", ErrModeLocked, e.mode)
	}
	doc, err := levels.Template(name, e.cfg.World.GridSize)
	if err != nil {
		return err
	}
	return e.Import(doc)
}

// SetCharacter switches the playable character. Edit mode only.
func (e *Editor) SetCharacter(name string) error {
	if e.mode != ModeEdit {
		return fmt.Errorf("%w: change character in %s", ErrModeLocked, e.mode)
	}
	ch, err := e.cfg.Character(name)
	if err != nil {
		return err
	}
	e.character = ch
	e.world.Player().Character = ch.Name
	e.sim = system.NewSimulation(e.cfg, ch)
	e.logger.Printf("editor: character set to %s", ch.Name)
	return nil
}

func (e *Editor) Character() prefabs.CharacterSpec { return e.character }

// SetConfig swaps in new physics and gameplay constants, e.g. after the
// prefab files changed on disk. The level's size and spawn cannot change.
func (e *Editor) SetConfig(cfg prefabs.Config) error {
	if e.mode != ModeEdit {
		return fmt.Errorf("%w: reload config in %s", ErrModeLocked, e.mode)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.World.GridSize != e.cfg.World.GridSize || cfg.World.Cols != e.cfg.World.Cols ||
		cfg.World.Rows != e.cfg.World.Rows || cfg.World.SpawnX != e.cfg.World.SpawnX || cfg.World.SpawnY != e.cfg.World.SpawnY {
		return fmt.Errorf("%w: level dimensions and spawn cannot change on reload", prefabs.ErrInvalidConfig)
	}
	ch, err := cfg.Character(e.character.Name)
	if err != nil {
		e.logger.Printf("editor: character %s gone after reload, using default", e.character.Name)
		if ch, err = cfg.Character(""); err != nil {
			return err
		}
	}

	if cfg.World.HistoryCapacity != e.history.Capacity() {
		e.logger.Printf("editor: history capacity %d -> %d", e.history.Capacity(), cfg.World.HistoryCapacity)
		e.history.Resize(cfg.World.HistoryCapacity)
	}
	e.cfg = cfg
	e.character = ch
	e.world.SetPhysicsConfig(cfg.WorldConfig())
	e.world.Player().Character = ch.Name
	e.sim = system.NewSimulation(cfg, ch)
	e.logger.Printf("editor: config reloaded")
	return nil
}
