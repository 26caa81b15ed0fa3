package levels

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
)

var ErrCorruptLevel = errors.New("levels: corrupt level")

// Document is the saved form of a level. Positions are top-left pixels.
type Document struct {
	Tiles    []TileRecord    `json:"tiles" jsonschema:"required"`
	Enemies  []EnemyRecord   `json:"enemies" jsonschema:"required"`
	Coins    []CoinRecord    `json:"coins" jsonschema:"required"`
	Powerups []PowerupRecord `json:"powerups,omitempty"`
	// Theme is cosmetic and only round-tripped.
	Theme string `json:"theme,omitempty"`
}

type TileRecord struct {
	X            float64 `json:"x" jsonschema:"required"`
	Y            float64 `json:"y" jsonschema:"required"`
	Type         string  `json:"type" jsonschema:"required,enum=ground,enum=brick,enum=question,enum=pipe,enum=platform,enum=water"`
	ContainsItem string  `json:"contains_item,omitempty" jsonschema:"enum=coin,enum=mushroom,enum=fire_flower,enum=star"`
}

type EnemyRecord struct {
	X         float64 `json:"x" jsonschema:"required"`
	Y         float64 `json:"y" jsonschema:"required"`
	EnemyType string  `json:"enemy_type,omitempty" jsonschema:"enum=goomba,enum=koopa,enum=piranha,default=goomba"`
}

type CoinRecord struct {
	X     float64 `json:"x" jsonschema:"required"`
	Y     float64 `json:"y" jsonschema:"required"`
	Value int     `json:"value,omitempty" jsonschema:"minimum=1,default=1"`
}

type PowerupRecord struct {
	X           float64 `json:"x" jsonschema:"required"`
	Y           float64 `json:"y" jsonschema:"required"`
	PowerupType string  `json:"powerup_type,omitempty" jsonschema:"enum=mushroom,enum=fire_flower,enum=star,default=mushroom"`
}

// position is decoded separately so a missing coordinate is an error
// instead of a silent zero.
type position struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (p position) check(kind string, i int) error {
	if p.X == nil || p.Y == nil {
		return fmt.Errorf("%w: %s %d: missing x or y", ErrCorruptLevel, kind, i)
	}
	return nil
}

type rawTile struct {
	position
	Type *string `json:"type"`
}

// rawDocument holds the required arrays as pointers so an absent key differs
// from an empty list. Powerups are optional.
type rawDocument struct {
	Tiles    *[]rawTile  `json:"tiles"`
	Enemies  *[]position `json:"enemies"`
	Coins    *[]position `json:"coins"`
	Powerups []position  `json:"powerups"`
}

// Decode parses a level document, rejecting malformed JSON, documents
// without the tiles, enemies and coins arrays, and records without
// coordinates or tile type.
func Decode(data []byte) (Document, error) {
	var raw *rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorruptLevel, err)
	}
	if raw == nil {
		return Document{}, fmt.Errorf("%w: document is null", ErrCorruptLevel)
	}
	switch {
	case raw.Tiles == nil:
		return Document{}, fmt.Errorf("%w: missing tiles", ErrCorruptLevel)
	case raw.Enemies == nil:
		return Document{}, fmt.Errorf("%w: missing enemies", ErrCorruptLevel)
	case raw.Coins == nil:
		return Document{}, fmt.Errorf("%w: missing coins", ErrCorruptLevel)
	}
	for i, t := range *raw.Tiles {
		if err := t.check("tile", i); err != nil {
			return Document{}, err
		}
		if t.Type == nil || *t.Type == "" {
			return Document{}, fmt.Errorf("%w: tile %d: missing type", ErrCorruptLevel, i)
		}
	}
	for _, group := range []struct {
		kind string
		recs []position
	}{{"enemy", *raw.Enemies}, {"coin", *raw.Coins}, {"powerup", raw.Powerups}} {
		for i, p := range group.recs {
			if err := p.check(group.kind, i); err != nil {
				return Document{}, err
			}
		}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorruptLevel, err)
	}
	return doc, nil
}

// Encode writes doc as indented JSON. The required arrays are always
// written, empty when doc has none.
func Encode(doc Document) ([]byte, error) {
	if doc.Tiles == nil {
		doc.Tiles = []TileRecord{}
	}
	if doc.Enemies == nil {
		doc.Enemies = []EnemyRecord{}
	}
	if doc.Coins == nil {
		doc.Coins = []CoinRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("levels: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// FromDescriptors builds a document from value descriptions.
func FromDescriptors(descs []component.Descriptor, gridSize int, theme string) Document {
	doc := Document{
		Tiles:   []TileRecord{},
		Enemies: []EnemyRecord{},
		Coins:   []CoinRecord{},
		Theme:   theme,
	}
	g := float64(gridSize)
	for _, d := range descs {
		x, y := float64(d.Cell.X)*g, float64(d.Cell.Y)*g
		switch d.Kind {
		case component.KindTile:
			doc.Tiles = append(doc.Tiles, TileRecord{X: x, Y: y, Type: d.Subtype, ContainsItem: string(d.Item)})
		case component.KindEnemy:
			doc.Enemies = append(doc.Enemies, EnemyRecord{X: x, Y: y, EnemyType: d.Subtype})
		case component.KindCoin:
			doc.Coins = append(doc.Coins, CoinRecord{X: x, Y: y, Value: d.Value})
		case component.KindPowerup:
			doc.Powerups = append(doc.Powerups, PowerupRecord{X: x, Y: y, PowerupType: d.Subtype})
		}
	}
	return doc
}

// FromWorld exports the placeable contents of w.
func FromWorld(w *ecs.World, theme string) Document {
	return FromDescriptors(w.Snapshot(), w.Bounds().GridSize, theme)
}

// Descriptors validates doc against the level bounds and returns the
// entities it describes. Tiles must sit exactly on a cell; dynamic entities
// snap to the nearest one. No solid tile may sit on a cell protected reports.
func (doc Document) Descriptors(b ecs.Bounds, protected func(component.Cell) bool) ([]component.Descriptor, error) {
	out := make([]component.Descriptor, 0, len(doc.Tiles)+len(doc.Enemies)+len(doc.Coins)+len(doc.Powerups))
	g := float64(b.GridSize)
	occupied := make(map[component.Cell]bool, len(doc.Tiles))

	add := func(kind string, i int, d component.Descriptor) error {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: %s %d: %v", ErrCorruptLevel, kind, i, err)
		}
		if !b.Contains(d.Cell) {
			return fmt.Errorf("%w: %s %d: cell %s outside the level", ErrCorruptLevel, kind, i, d.Cell)
		}
		out = append(out, d)
		return nil
	}

	for i, t := range doc.Tiles {
		if math.Mod(t.X, g) != 0 || math.Mod(t.Y, g) != 0 {
			return nil, fmt.Errorf("%w: tile %d at (%v,%v) is not on the %dpx grid", ErrCorruptLevel, i, t.X, t.Y, b.GridSize)
		}
		cell := component.Cell{X: int(t.X / g), Y: int(t.Y / g)}
		if occupied[cell] {
			return nil, fmt.Errorf("%w: tile %d: cell %s already holds a tile", ErrCorruptLevel, i, cell)
		}
		occupied[cell] = true
		d := component.Descriptor{Kind: component.KindTile, Cell: cell, Subtype: t.Type, Item: component.Item(t.ContainsItem)}
		if protected != nil && protected(cell) && d.Validate() == nil && component.TileType(t.Type).Solid() {
			return nil, fmt.Errorf("%w: tile %d covers the player spawn", ErrCorruptLevel, i)
		}
		if err := add("tile", i, d); err != nil {
			return nil, err
		}
	}
	for i, e := range doc.Enemies {
		kind := e.EnemyType
		if kind == "" {
			kind = string(component.EnemyGoomba)
		}
		d := component.Descriptor{Kind: component.KindEnemy, Cell: b.NearestCell(point(e.X, e.Y)), Subtype: kind}
		if err := add("enemy", i, d); err != nil {
			return nil, err
		}
	}
	for i, c := range doc.Coins {
		value := c.Value
		if value == 0 {
			value = component.DefaultCoinValue
		}
		d := component.Descriptor{Kind: component.KindCoin, Cell: b.NearestCell(point(c.X, c.Y)), Value: value}
		if err := add("coin", i, d); err != nil {
			return nil, err
		}
	}
	for i, p := range doc.Powerups {
		kind := p.PowerupType
		if kind == "" {
			kind = string(component.PowerupMushroom)
		}
		d := component.Descriptor{Kind: component.KindPowerup, Cell: b.NearestCell(point(p.X, p.Y)), Subtype: kind}
		if err := add("powerup", i, d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func point(x, y float64) cp.Vector {
	return cp.Vector{X: x, Y: y}
}

// Populate inserts everything doc describes into an empty world. On error
// the world may be partially filled and should be discarded.
func (doc Document) Populate(w *ecs.World) error {
	descs, err := doc.Descriptors(w.Bounds(), w.Protected)
	if err != nil {
		return err
	}
	for _, d := range descs {
		if _, err := w.Insert(d); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptLevel, err)
		}
	}
	return nil
}
