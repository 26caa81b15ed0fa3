package component

import "fmt"

// Descriptor is a value description of a placeable entity: enough to create
// an equivalent entity, never a reference to a live one.
type Descriptor struct {
	Kind Kind
	Cell Cell
	// Subtype holds the TileType, EnemyType or PowerupType. Empty for coins.
	Subtype string
	// Item is only used by question block tiles.
	Item Item
	// Value is only used by coins.
	Value int
}

func (d Descriptor) String() string {
	switch d.Kind {
	case KindTile:
		if d.Item != ItemNone {
			return fmt.Sprintf("%s %s[%s]@%s", d.Kind, d.Subtype, d.Item, d.Cell)
		}
		return fmt.Sprintf("%s %s@%s", d.Kind, d.Subtype, d.Cell)
	case KindCoin:
		return fmt.Sprintf("%s x%d@%s", d.Kind, d.Value, d.Cell)
	default:
		return fmt.Sprintf("%s %s@%s", d.Kind, d.Subtype, d.Cell)
	}
}

// Validate checks that the per-variant fields are consistent.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindTile:
		t := TileType(d.Subtype)
		if !t.Valid() {
			return fmt.Errorf("unknown tile type %q", d.Subtype)
		}
		if !d.Item.Valid() {
			return fmt.Errorf("unknown item %q", d.Item)
		}
		if d.Item != ItemNone && t != TileQuestion {
			return fmt.Errorf("tile type %q cannot hold an item", d.Subtype)
		}
	case KindEnemy:
		if !EnemyType(d.Subtype).Valid() {
			return fmt.Errorf("unknown enemy type %q", d.Subtype)
		}
	case KindCoin:
		if d.Value <= 0 {
			return fmt.Errorf("coin value must be positive, got %d", d.Value)
		}
	case KindPowerup:
		if !PowerupType(d.Subtype).Valid() {
			return fmt.Errorf("unknown powerup type %q", d.Subtype)
		}
	default:
		return fmt.Errorf("kind %s is not placeable", d.Kind)
	}
	return nil
}

// Less orders descriptors by kind, then row-major cell.
func (d Descriptor) Less(o Descriptor) bool {
	if d.Kind != o.Kind {
		return d.Kind < o.Kind
	}
	if d.Cell != o.Cell {
		return d.Cell.Less(o.Cell)
	}
	return d.Subtype < o.Subtype
}
