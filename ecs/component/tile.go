package component

// TileType is the subtype of a static grid tile.
type TileType string

const (
	TileGround   TileType = "ground"
	TileBrick    TileType = "brick"
	TileQuestion TileType = "question"
	TilePipe     TileType = "pipe"
	TilePlatform TileType = "platform"
	TileWater    TileType = "water"
)

var tileTypes = []TileType{TileGround, TileBrick, TileQuestion, TilePipe, TilePlatform, TileWater}

// TileTypes lists every tile subtype in palette order.
func TileTypes() []TileType {
	return append([]TileType(nil), tileTypes...)
}

func (t TileType) Valid() bool {
	for _, v := range tileTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Solid tiles block movement from every side.
func (t TileType) Solid() bool {
	switch t {
	case TileGround, TileBrick, TileQuestion, TilePipe:
		return true
	default:
		return false
	}
}

// OneWay tiles block only downward movement approached from above.
func (t TileType) OneWay() bool {
	return t == TilePlatform
}

func (t TileType) Breakable() bool {
	return t == TileBrick
}

// Item is the content of a question block.
type Item string

const (
	ItemNone       Item = ""
	ItemCoin       Item = "coin"
	ItemMushroom   Item = "mushroom"
	ItemFireFlower Item = "fire_flower"
	ItemStar       Item = "star"
)

func (i Item) Valid() bool {
	switch i {
	case ItemNone, ItemCoin, ItemMushroom, ItemFireFlower, ItemStar:
		return true
	default:
		return false
	}
}

// Tile is a grid-aligned static cell.
type Tile struct {
	Cell Cell
	Type TileType
	// Item is only meaningful for question blocks.
	Item      Item
	Triggered bool
}

func (t *Tile) Solid() bool {
	return t.Type.Solid()
}

func (t *Tile) OneWay() bool {
	return t.Type.OneWay()
}

// Trigger empties a question block and returns what it held.
func (t *Tile) Trigger() (Item, bool) {
	if t.Type != TileQuestion || t.Triggered || t.Item == ItemNone {
		return ItemNone, false
	}
	item := t.Item
	t.Item = ItemNone
	t.Triggered = true
	return item, true
}
