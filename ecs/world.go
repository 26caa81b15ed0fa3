package ecs

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/fanbuilder/common"
	"github.com/milk9111/fanbuilder/ecs/component"
)

var (
	ErrInvalidPlacement  = errors.New("ecs: invalid placement")
	ErrOutOfBounds       = fmt.Errorf("%w: cell out of bounds", ErrInvalidPlacement)
	ErrProtectedCell     = fmt.Errorf("%w: cell overlaps the player spawn", ErrInvalidPlacement)
	ErrEmptyCell         = fmt.Errorf("%w: nothing to remove", ErrInvalidPlacement)
	ErrCellOccupied      = fmt.Errorf("%w: cell already holds a tile", ErrInvalidPlacement)
	ErrInvalidDescriptor = errors.New("ecs: invalid descriptor")
	ErrInvalidBounds     = errors.New("ecs: invalid bounds")
)

// Bounds is the level size in cells.
type Bounds struct {
	Cols     int
	Rows     int
	GridSize int
}

func (b Bounds) Width() float64  { return float64(b.Cols * b.GridSize) }
func (b Bounds) Height() float64 { return float64(b.Rows * b.GridSize) }

func (b Bounds) Contains(c component.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < b.Cols && c.Y < b.Rows
}

// CellAt returns the cell containing pixel p.
func (b Bounds) CellAt(p cp.Vector) component.Cell {
	return component.Cell{X: common.FloorDiv(p.X, b.GridSize), Y: common.FloorDiv(p.Y, b.GridSize)}
}

// NearestCell snaps a top-left pixel position to the closest cell origin.
func (b Bounds) NearestCell(p cp.Vector) component.Cell {
	g := float64(b.GridSize)
	return component.Cell{X: int(math.Round(p.X / g)), Y: int(math.Round(p.Y / g))}
}

func (b Bounds) Origin(c component.Cell) cp.Vector {
	return cp.Vector{X: float64(c.X * b.GridSize), Y: float64(c.Y * b.GridSize)}
}

func (b Bounds) CellRect(c component.Cell) common.Rect {
	g := float64(b.GridSize)
	return common.Rect{X: float64(c.X) * g, Y: float64(c.Y) * g, Width: g, Height: g}
}

// Config holds what a World needs to build entities from descriptors.
type Config struct {
	Bounds       Bounds
	Spawn        cp.Vector
	EnemySpeed   float64
	PowerupSpeed float64
	AnimTicks    int
	Seed         uint64
}

func (c Config) validate() error {
	if c.Bounds.Cols <= 0 || c.Bounds.Rows <= 0 || c.Bounds.GridSize <= 0 {
		return fmt.Errorf("%w: %dx%d cells of %dpx", ErrInvalidBounds, c.Bounds.Cols, c.Bounds.Rows, c.Bounds.GridSize)
	}
	return nil
}

// World exclusively owns every tile and dynamic entity of a level plus the
// singleton player.
type World struct {
	cfg      Config
	entities entityStore

	grid     map[component.Cell]Entity
	tiles    *SparseSet[component.Tile]
	enemies  *SparseSet[component.Enemy]
	coins    *SparseSet[component.Coin]
	powerups *SparseSet[component.Powerup]

	player     Entity
	playerData component.Player

	input    component.Input
	events   EventQueue
	removals []Entity
	spawns   []component.Descriptor
	rng      *rand.Rand
	tick     uint64
}

// NewWorld creates an empty level holding only the player.
func NewWorld(cfg Config) (*World, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:      cfg,
		grid:     make(map[component.Cell]Entity),
		tiles:    NewSparseSet[component.Tile](),
		enemies:  NewSparseSet[component.Enemy](),
		coins:    NewSparseSet[component.Coin](),
		powerups: NewSparseSet[component.Powerup](),
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
	w.player = w.entities.create()
	g := float64(cfg.Bounds.GridSize)
	w.playerData = component.Player{
		Body: component.Body{Width: g, Height: g},
	}
	w.playerData.ResetForSpawn(cfg.Spawn.X, cfg.Spawn.Y)
	return w, nil
}

func (w *World) Config() Config { return w.cfg }
func (w *World) Bounds() Bounds { return w.cfg.Bounds }

// SetPhysicsConfig replaces everything but the bounds and spawn.
func (w *World) SetPhysicsConfig(cfg Config) {
	cfg.Bounds = w.cfg.Bounds
	cfg.Spawn = w.cfg.Spawn
	w.cfg = cfg
}

func (w *World) Player() *component.Player { return &w.playerData }
func (w *World) PlayerEntity() Entity      { return w.player }

// RespawnPlayer puts the player back at the level start.
func (w *World) RespawnPlayer() {
	w.playerData.ResetForSpawn(w.cfg.Spawn.X, w.cfg.Spawn.Y)
}

func (w *World) Input() component.Input     { return w.input }
func (w *World) SetInput(in component.Input) { w.input = in }
func (w *World) Rand() *rand.Rand            { return w.rng }
func (w *World) Events() *EventQueue         { return &w.events }
func (w *World) Tick() uint64                { return w.tick }

func (w *World) Tiles() *SparseSet[component.Tile]       { return w.tiles }
func (w *World) Enemies() *SparseSet[component.Enemy]    { return w.enemies }
func (w *World) Coins() *SparseSet[component.Coin]       { return w.coins }
func (w *World) Powerups() *SparseSet[component.Powerup] { return w.powerups }

func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// Len counts every live entity except the player.
func (w *World) Len() int {
	return w.tiles.Len() + w.enemies.Len() + w.coins.Len() + w.powerups.Len()
}

// KindOf reports which variant store holds e.
func (w *World) KindOf(e Entity) component.Kind {
	switch {
	case e == w.player:
		return component.KindPlayer
	case w.tiles.Has(e):
		return component.KindTile
	case w.enemies.Has(e):
		return component.KindEnemy
	case w.coins.Has(e):
		return component.KindCoin
	case w.powerups.Has(e):
		return component.KindPowerup
	default:
		return component.KindNone
	}
}

// TileAt returns the tile occupying c.
func (w *World) TileAt(c component.Cell) (Entity, *component.Tile, bool) {
	e, ok := w.grid[c]
	if !ok {
		return 0, nil, false
	}
	return e, w.tiles.Get(e), true
}

// Rect returns the bounding box of any live entity.
func (w *World) Rect(e Entity) (common.Rect, bool) {
	switch w.KindOf(e) {
	case component.KindPlayer:
		return w.playerData.Rect(), true
	case component.KindTile:
		return w.cfg.Bounds.CellRect(w.tiles.Get(e).Cell), true
	case component.KindEnemy:
		return w.enemies.Get(e).Rect(), true
	case component.KindCoin:
		return w.coins.Get(e).Rect(), true
	case component.KindPowerup:
		return w.powerups.Get(e).Rect(), true
	default:
		return common.Rect{}, false
	}
}

// Protected reports whether c overlaps the player's spawn area.
func (w *World) Protected(c component.Cell) bool {
	g := float64(w.cfg.Bounds.GridSize)
	spawn := common.Rect{X: w.cfg.Spawn.X, Y: w.cfg.Spawn.Y, Width: g, Height: g}
	return spawn.Intersects(w.cfg.Bounds.CellRect(c))
}

// OccupantsAt lists every placeable entity whose cell is c, tile first.
func (w *World) OccupantsAt(c component.Cell) []Entity {
	var out []Entity
	if e, ok := w.grid[c]; ok {
		out = append(out, e)
	}
	b := w.cfg.Bounds
	for _, e := range w.enemies.Entities() {
		if b.NearestCell(w.enemies.Get(e).Pos) == c {
			out = append(out, e)
		}
	}
	for _, e := range w.coins.Entities() {
		if b.NearestCell(w.coins.Get(e).Pos) == c {
			out = append(out, e)
		}
	}
	for _, e := range w.powerups.Entities() {
		if b.NearestCell(w.powerups.Get(e).Pos) == c {
			out = append(out, e)
		}
	}
	return out
}

// Place creates an entity for d, first removing whatever occupies its cell.
// The descriptors of the removed occupants are returned so the caller can
// record that removal.
func (w *World) Place(d component.Descriptor) (Entity, []component.Descriptor, error) {
	if err := w.checkPlacement(d); err != nil {
		return 0, nil, err
	}
	if w.Protected(d.Cell) {
		return 0, nil, fmt.Errorf("%w %s", ErrProtectedCell, d.Cell)
	}
	var removed []component.Descriptor
	for _, e := range w.OccupantsAt(d.Cell) {
		if desc, ok := w.Remove(e); ok {
			removed = append(removed, desc)
		}
	}
	e, err := w.Insert(d)
	if err != nil {
		return 0, removed, err
	}
	return e, removed, nil
}

// Insert creates an entity for d without displacing anything. Only tiles
// are exclusive per cell.
func (w *World) Insert(d component.Descriptor) (Entity, error) {
	if err := w.checkPlacement(d); err != nil {
		return 0, err
	}
	if d.Kind == component.KindTile {
		if _, ok := w.grid[d.Cell]; ok {
			return 0, fmt.Errorf("%w %s", ErrCellOccupied, d.Cell)
		}
	}
	e := w.entities.create()
	w.build(e, d)
	return e, nil
}

func (w *World) checkPlacement(d component.Descriptor) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if !w.cfg.Bounds.Contains(d.Cell) {
		return fmt.Errorf("%w %s", ErrOutOfBounds, d.Cell)
	}
	return nil
}

func (w *World) build(e Entity, d component.Descriptor) {
	b := w.cfg.Bounds
	g := float64(b.GridSize)
	body := component.Body{Pos: b.Origin(d.Cell), Width: g, Height: g}
	switch d.Kind {
	case component.KindTile:
		w.tiles.Set(e, component.Tile{Cell: d.Cell, Type: component.TileType(d.Subtype), Item: d.Item})
		w.grid[d.Cell] = e
	case component.KindEnemy:
		t := component.EnemyType(d.Subtype)
		enemy := component.Enemy{
			Body:        body,
			Type:        t,
			FacingRight: true,
			Stompable:   t.Stompable(),
			Alive:       true,
			Anim:        component.NewAnimation(2, w.cfg.AnimTicks),
		}
		if t.Patrols() {
			enemy.Vel.X = w.cfg.EnemySpeed
		}
		w.enemies.Set(e, enemy)
	case component.KindCoin:
		w.coins.Set(e, component.Coin{
			Body:  body,
			Value: d.Value,
			Alive: true,
			Anim:  component.NewAnimation(4, w.cfg.AnimTicks),
		})
	case component.KindPowerup:
		p := component.Powerup{Body: body, Type: component.PowerupType(d.Subtype), Alive: true}
		p.Vel.X = w.cfg.PowerupSpeed
		w.powerups.Set(e, p)
	}
}

// Remove deletes e immediately and returns its description.
func (w *World) Remove(e Entity) (component.Descriptor, bool) {
	desc, ok := w.Describe(e)
	if !ok || e == w.player {
		return component.Descriptor{}, false
	}
	switch desc.Kind {
	case component.KindTile:
		t := w.tiles.Get(e)
		if cur, ok := w.grid[t.Cell]; ok && cur == e {
			delete(w.grid, t.Cell)
		}
		w.tiles.Remove(e)
	case component.KindEnemy:
		w.enemies.Remove(e)
	case component.KindCoin:
		w.coins.Remove(e)
	case component.KindPowerup:
		w.powerups.Remove(e)
	}
	w.entities.destroy(e)
	return desc, true
}

// RemoveAt deletes every occupant of c.
func (w *World) RemoveAt(c component.Cell) ([]component.Descriptor, error) {
	if !w.cfg.Bounds.Contains(c) {
		return nil, fmt.Errorf("%w %s", ErrOutOfBounds, c)
	}
	occupants := w.OccupantsAt(c)
	if len(occupants) == 0 {
		return nil, fmt.Errorf("%w at %s", ErrEmptyCell, c)
	}
	removed := make([]component.Descriptor, 0, len(occupants))
	for _, e := range occupants {
		if desc, ok := w.Remove(e); ok {
			removed = append(removed, desc)
		}
	}
	return removed, nil
}

// Describe returns the value description of e. A triggered question block
// describes as empty.
func (w *World) Describe(e Entity) (component.Descriptor, bool) {
	b := w.cfg.Bounds
	switch w.KindOf(e) {
	case component.KindTile:
		t := w.tiles.Get(e)
		d := component.Descriptor{Kind: component.KindTile, Cell: t.Cell, Subtype: string(t.Type)}
		if !t.Triggered {
			d.Item = t.Item
		}
		return d, true
	case component.KindEnemy:
		en := w.enemies.Get(e)
		return component.Descriptor{Kind: component.KindEnemy, Cell: b.NearestCell(en.Pos), Subtype: string(en.Type)}, true
	case component.KindCoin:
		c := w.coins.Get(e)
		return component.Descriptor{Kind: component.KindCoin, Cell: b.NearestCell(c.Pos), Value: c.Value}, true
	case component.KindPowerup:
		p := w.powerups.Get(e)
		return component.Descriptor{Kind: component.KindPowerup, Cell: b.NearestCell(p.Pos), Subtype: string(p.Type)}, true
	default:
		return component.Descriptor{}, false
	}
}

// Snapshot describes every placeable entity in a canonical order. Two
// worlds with equal snapshots are structurally identical.
func (w *World) Snapshot() []component.Descriptor {
	out := make([]component.Descriptor, 0, w.Len())
	for _, set := range [][]Entity{w.tiles.Entities(), w.enemies.Entities(), w.coins.Entities(), w.powerups.Entities()} {
		for _, e := range set {
			if d, ok := w.Describe(e); ok {
				out = append(out, d)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b component.Descriptor) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	return out
}

// QueryAt returns the placeable entity under pixel p: the tile in that cell,
// otherwise the first dynamic entity whose box contains p.
func (w *World) QueryAt(p cp.Vector) (Entity, bool) {
	if e, ok := w.grid[w.cfg.Bounds.CellAt(p)]; ok {
		return e, true
	}
	for _, e := range w.enemies.Entities() {
		if w.enemies.Get(e).Rect().Contains(p) {
			return e, true
		}
	}
	for _, e := range w.coins.Entities() {
		if w.coins.Get(e).Rect().Contains(p) {
			return e, true
		}
	}
	for _, e := range w.powerups.Entities() {
		if w.powerups.Get(e).Rect().Contains(p) {
			return e, true
		}
	}
	return 0, false
}

// QueryRegion returns every entity, the player included, whose box touches
// bb. Tiles come first in row-major order.
func (w *World) QueryRegion(bb cp.BB) []Entity {
	var out []Entity
	region := common.RectFromBB(bb)
	out = append(out, w.TilesIn(region)...)
	for _, e := range w.enemies.Entities() {
		if w.enemies.Get(e).Rect().BB().Intersects(bb) {
			out = append(out, e)
		}
	}
	for _, e := range w.coins.Entities() {
		if w.coins.Get(e).Rect().BB().Intersects(bb) {
			out = append(out, e)
		}
	}
	for _, e := range w.powerups.Entities() {
		if w.powerups.Get(e).Rect().BB().Intersects(bb) {
			out = append(out, e)
		}
	}
	if w.playerData.Rect().BB().Intersects(bb) {
		out = append(out, w.player)
	}
	return out
}

// TilesIn returns tiles whose cells touch r, row-major.
func (w *World) TilesIn(r common.Rect) []Entity {
	b := w.cfg.Bounds
	minC := b.CellAt(cp.Vector{X: r.X, Y: r.Y})
	maxC := b.CellAt(cp.Vector{X: r.Right(), Y: r.Bottom()})
	minC.X = max(minC.X, 0)
	minC.Y = max(minC.Y, 0)
	maxC.X = min(maxC.X, b.Cols-1)
	maxC.Y = min(maxC.Y, b.Rows-1)
	var out []Entity
	for y := minC.Y; y <= maxC.Y; y++ {
		for x := minC.X; x <= maxC.X; x++ {
			if e, ok := w.grid[component.Cell{X: x, Y: y}]; ok {
				out = append(out, e)
			}
		}
	}
	return out
}

// Solids returns every solid tile, row-major.
func (w *World) Solids() []Entity {
	return w.tilesWhere(func(t *component.Tile) bool { return t.Solid() })
}

// Platforms returns every one-way platform tile, row-major.
func (w *World) Platforms() []Entity {
	return w.tilesWhere(func(t *component.Tile) bool { return t.OneWay() })
}

func (w *World) tilesWhere(pred func(t *component.Tile) bool) []Entity {
	var out []Entity
	for _, e := range w.tiles.Entities() {
		if pred(w.tiles.Get(e)) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b Entity) int {
		ca, cb := w.tiles.Get(a).Cell, w.tiles.Get(b).Cell
		switch {
		case ca.Less(cb):
			return -1
		case cb.Less(ca):
			return 1
		default:
			return 0
		}
	})
	return out
}

// MarkRemoved schedules e for removal at the end of the tick. Dynamic
// entities stop being alive immediately so later systems skip them.
func (w *World) MarkRemoved(e Entity) {
	if !w.IsAlive(e) || e == w.player || slices.Contains(w.removals, e) {
		return
	}
	switch w.KindOf(e) {
	case component.KindEnemy:
		w.enemies.Get(e).Alive = false
	case component.KindCoin:
		w.coins.Get(e).Alive = false
	case component.KindPowerup:
		w.powerups.Get(e).Alive = false
	}
	w.removals = append(w.removals, e)
}

// Spawn schedules d to be created at the end of the tick.
func (w *World) Spawn(d component.Descriptor) {
	w.spawns = append(w.spawns, d)
}

// Pending reports how many deferred removals and spawns are queued.
func (w *World) Pending() (removals, spawns int) {
	return len(w.removals), len(w.spawns)
}

// Flush applies deferred removals, then spawns, and advances the tick.
// A spawn the world rejects is reported as EventSpawnFailed.
func (w *World) Flush() {
	for _, e := range w.removals {
		w.Remove(e)
	}
	w.removals = w.removals[:0]
	for _, d := range w.spawns {
		if _, err := w.Insert(d); err != nil {
			w.events.Push(Event{Type: EventSpawnFailed, Cell: d.Cell, Detail: err.Error()})
		}
	}
	w.spawns = w.spawns[:0]
	w.tick++
}

// Reset removes every entity except the player and respawns it.
func (w *World) Reset() {
	for _, set := range [][]Entity{w.tiles.Entities(), w.enemies.Entities(), w.coins.Entities(), w.powerups.Entities()} {
		for _, e := range slices.Clone(set) {
			w.entities.destroy(e)
		}
	}
	w.tiles.clear()
	w.enemies.clear()
	w.coins.clear()
	w.powerups.clear()
	clear(w.grid)
	w.removals = w.removals[:0]
	w.spawns = w.spawns[:0]
	w.events.Drain()
	w.RespawnPlayer()
}
