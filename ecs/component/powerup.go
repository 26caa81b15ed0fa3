package component

type PowerupType string

const (
	PowerupMushroom   PowerupType = "mushroom"
	PowerupFireFlower PowerupType = "fire_flower"
	PowerupStar       PowerupType = "star"
)

func (t PowerupType) Valid() bool {
	switch t {
	case PowerupMushroom, PowerupFireFlower, PowerupStar:
		return true
	default:
		return false
	}
}

// PowerupFromItem maps question block content to the powerup it releases.
func PowerupFromItem(item Item) (PowerupType, bool) {
	switch item {
	case ItemMushroom:
		return PowerupMushroom, true
	case ItemFireFlower:
		return PowerupFireFlower, true
	case ItemStar:
		return PowerupStar, true
	default:
		return "", false
	}
}

type Powerup struct {
	Body
	Type     PowerupType
	Alive    bool
	Grounded bool
}
