// Package editor is the mode controller a driver talks to. It owns the
// World, the undo history and the two schedules, and turns one Frame of
// input into one tick of either editing or simulation.
package editor

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
	"github.com/milk9111/fanbuilder/ecs/system"
	"github.com/milk9111/fanbuilder/history"
	"github.com/milk9111/fanbuilder/prefabs"
)

var ErrModeLocked = errors.New("editor: not allowed in the current mode")

type Mode uint8

const (
	ModeEdit Mode = iota
	ModePlaytest
)

func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModePlaytest:
		return "playtest"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

type Option func(*Editor)

// WithLogger routes the editor's log lines to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

type Editor struct {
	cfg       prefabs.Config
	character prefabs.CharacterSpec
	logger    *log.Logger

	world   *ecs.World
	history *history.History
	mode    Mode
	theme   string

	sim  *ecs.Scheduler
	edit *ecs.Scheduler

	// saved is the level as it was when the playtest started.
	saved  []component.Descriptor
	events []ecs.Event
}

// New builds an editor holding an empty level in Edit mode.
func New(cfg prefabs.Config, opts ...Option) (*Editor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ch, err := cfg.Character("")
	if err != nil {
		return nil, err
	}
	w, err := cfg.NewWorld(ch.Name)
	if err != nil {
		return nil, err
	}
	e := &Editor{
		cfg:       cfg,
		character: ch,
		logger:    log.Default(),
		world:     w,
		history:   history.New(cfg.World.HistoryCapacity),
		mode:      ModeEdit,
		sim:       system.NewSimulation(cfg, ch),
		edit:      system.NewEditSchedule(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Editor) Mode() Mode                { return e.mode }
func (e *Editor) World() *ecs.World         { return e.world }
func (e *Editor) History() *history.History { return e.history }
func (e *Editor) Config() prefabs.Config    { return e.cfg }
func (e *Editor) Theme() string             { return e.theme }
func (e *Editor) SetTheme(theme string)     { e.theme = theme }

// Events returns the simulation events raised during the last Step.
func (e *Editor) Events() []ecs.Event { return e.events }

// Step runs one tick. Events are handled first, in order; a tick that
// switched mode does not also run the new mode's update. Rejected events
// leave the World untouched and are returned joined.
func (e *Editor) Step(f Frame) error {
	e.events = nil
	start := e.mode

	var errs []error
	for _, ev := range f.Events {
		if err := e.handle(ev); err != nil {
			e.logger.Printf("editor: rejected %T: %v", ev, err)
			errs = append(errs, err)
		}
	}
	if e.mode == ModePlaytest && f.Keys.Escape {
		e.stopPlaytest("escape")
	}
	if e.mode != start {
		return errors.Join(errs...)
	}

	switch e.mode {
	case ModeEdit:
		e.edit.Update(e.world)
	case ModePlaytest:
		e.world.SetInput(f.Keys)
		e.sim.Update(e.world)
		e.events = e.world.Events().Drain()
		e.afterTick()
	}
	return errors.Join(errs...)
}

func (e *Editor) handle(ev Event) error {
	switch ev := ev.(type) {
	case SwitchMode:
		return e.SwitchMode(ev.Target)
	case PlaceAt:
		if e.mode != ModeEdit {
			return fmt.Errorf("%w: place in %s", ErrModeLocked, e.mode)
		}
		return e.place(ev)
	case RemoveAt:
		if e.mode != ModeEdit {
			return fmt.Errorf("%w: remove in %s", ErrModeLocked, e.mode)
		}
		return e.remove(ev)
	case Undo:
		if e.mode != ModeEdit {
			return fmt.Errorf("%w: undo in %s", ErrModeLocked, e.mode)
		}
		return e.undo()
	case Redo:
		if e.mode != ModeEdit {
			return fmt.Errorf("%w: redo in %s", ErrModeLocked, e.mode)
		}
		return e.redo()
	default:
		return fmt.Errorf("editor: unknown event %T", ev)
	}
}

// SwitchMode moves to target. Switching to the current mode does nothing.
func (e *Editor) SwitchMode(target Mode) error {
	if target == e.mode {
		return nil
	}
	switch target {
	case ModePlaytest:
		e.startPlaytest()
	case ModeEdit:
		e.stopPlaytest("requested")
	default:
		return fmt.Errorf("editor: unknown mode %s", target)
	}
	return nil
}

func (e *Editor) startPlaytest() {
	e.saved = e.world.Snapshot()
	p := e.world.Player()
	if p.Lives <= 0 {
		p.Lives = e.cfg.World.Lives
		p.Score = 0
		p.Coins = 0
	}
	e.world.RespawnPlayer()
	e.world.SetInput(Keys{})
	e.mode = ModePlaytest
	e.logger.Printf("editor: playtest started as %s with %d lives", e.character.Name, p.Lives)
}

func (e *Editor) stopPlaytest(reason string) {
	if e.mode != ModePlaytest {
		return
	}
	e.restore()
	e.saved = nil
	e.mode = ModeEdit
	e.logger.Printf("editor: back to edit (%s)", reason)
}

// restore puts the level back the way it was when the playtest began and
// respawns the player. Lives, score and coins are left to the caller.
func (e *Editor) restore() {
	e.world.Reset()
	for _, d := range e.saved {
		if _, err := e.world.Insert(d); err != nil {
			e.logger.Printf("editor: restore %s: %v", d, err)
		}
	}
	e.world.SetInput(Keys{})
}

func (e *Editor) afterTick() {
	for _, ev := range e.events {
		if ev.Type == ecs.EventSpawnFailed {
			e.logger.Printf("editor: spawn at %s failed: %s", ev.Cell, ev.Detail)
		}
	}
	p := e.world.Player()
	switch {
	case p.Dead && p.Lives <= 0:
		e.logger.Printf("editor: game over with score %d", p.Score)
		e.stopPlaytest("game over")
	case p.Dead:
		e.logger.Printf("editor: player died, %d lives left", p.Lives)
		if e.cfg.Policy.LifeLoss != prefabs.LifeLossPreserve {
			p.Score = 0
			p.Coins = 0
		}
		e.restore()
	case p.Rect().Right() >= e.world.Bounds().Width():
		e.logger.Printf("editor: level complete with score %d", p.Score)
		e.stopPlaytest("complete")
	}
}
