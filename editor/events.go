package editor

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/fanbuilder/ecs/component"
)

// Keys is the held-key snapshot for one tick.
type Keys = component.Input

// Event is a single-shot request from the driver.
type Event interface {
	event()
}

// PlaceAt paints Brush into the cell under Pos.
type PlaceAt struct {
	Pos   cp.Vector
	Brush Brush
}

// RemoveAt clears the cell under Pos.
type RemoveAt struct {
	Pos cp.Vector
}

type Undo struct{}

type Redo struct{}

type SwitchMode struct {
	Target Mode
}

func (PlaceAt) event()    {}
func (RemoveAt) event()   {}
func (Undo) event()       {}
func (Redo) event()       {}
func (SwitchMode) event() {}

// Frame is everything the driver hands the editor for one tick.
type Frame struct {
	Keys   Keys
	Events []Event
}

// Brush is a palette entry: what a click places.
type Brush struct {
	Label   string
	Kind    component.Kind
	Subtype string
	Item    component.Item
	Value   int
}

func (b Brush) descriptor(cell component.Cell) component.Descriptor {
	d := component.Descriptor{Kind: b.Kind, Cell: cell, Subtype: b.Subtype, Item: b.Item, Value: b.Value}
	if d.Kind == component.KindCoin && d.Value == 0 {
		d.Value = component.DefaultCoinValue
	}
	return d
}

// Palette lists every placeable brush in display order.
func Palette() []Brush {
	var out []Brush
	for _, t := range component.TileTypes() {
		if t == component.TileQuestion {
			for _, item := range []component.Item{component.ItemCoin, component.ItemMushroom, component.ItemFireFlower, component.ItemStar} {
				out = append(out, Brush{Label: "question:" + string(item), Kind: component.KindTile, Subtype: string(t), Item: item})
			}
			continue
		}
		out = append(out, Brush{Label: string(t), Kind: component.KindTile, Subtype: string(t)})
	}
	for _, e := range []component.EnemyType{component.EnemyGoomba, component.EnemyKoopa, component.EnemyPiranha} {
		out = append(out, Brush{Label: string(e), Kind: component.KindEnemy, Subtype: string(e)})
	}
	out = append(out, Brush{Label: "coin", Kind: component.KindCoin, Value: component.DefaultCoinValue})
	for _, p := range []component.PowerupType{component.PowerupMushroom, component.PowerupFireFlower, component.PowerupStar} {
		out = append(out, Brush{Label: string(p), Kind: component.KindPowerup, Subtype: string(p)})
	}
	return out
}
